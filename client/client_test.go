package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pylon-protocol/deployer/client"
	"github.com/pylon-protocol/deployer/encoding"
)

func newServer(t *testing.T, handler http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return client.NewClient(srv.URL+"/", 5*time.Second)
}

func TestAccountInfo(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/auth/accounts/terra1plain":
			io.WriteString(w, `{"height":"10","result":{"type":"core/Account","value":{"address":"terra1plain","coins":[],"public_key":null,"account_number":"12","sequence":"34"}}}`)
		case "/auth/accounts/terra1vesting":
			io.WriteString(w, `{"height":"10","result":{"type":"core/LazyGradedVestingAccount","value":{"BaseVestingAccount":{"BaseAccount":{"address":"terra1vesting","account_number":"5","sequence":"6"}}}}}`)
		case "/auth/accounts/terra1empty":
			io.WriteString(w, `{"height":"10","result":{"type":"core/Account","value":{"address":"","coins":[],"public_key":null,"account_number":"0","sequence":"0"}}}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":"boom"}`)
		}
	})
	ctx := context.Background()

	info, err := c.AccountInfo(ctx, "terra1plain")
	require.NoError(t, err)
	require.Equal(t, encoding.AccountInfo{Address: "terra1plain", AccountNumber: 12, Sequence: 34}, *info)

	info, err = c.AccountInfo(ctx, "terra1vesting")
	require.NoError(t, err)
	require.Equal(t, uint64(5), info.AccountNumber)
	require.Equal(t, uint64(6), info.Sequence)

	_, err = c.AccountInfo(ctx, "terra1empty")
	require.ErrorIs(t, err, client.ErrAccountNotFound)

	_, err = c.AccountInfo(ctx, "terra1broken")
	var httpErr *client.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	require.Equal(t, "boom", httpErr.Message)
}

func TestBroadcast(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/txs", r.URL.Path)
		var body struct {
			Tx   json.RawMessage `json:"tx"`
			Mode string          `json:"mode"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "block", body.Mode)
		require.Contains(t, string(body.Tx), `"wasm/MsgStoreCode"`)
		io.WriteString(w, `{"height":"0","txhash":"ABCD","code":32,"codespace":"sdk","raw_log":"account sequence mismatch, expected 5, got 4: incorrect account sequence"}`)
	})

	msg, err := encoding.NewMsgStoreCode("terra1x", []byte{1}).AsMsg()
	require.NoError(t, err)
	tx := encoding.SignDoc{Msgs: []encoding.Msg{msg}}.Tx()

	res, err := c.Broadcast(context.Background(), tx, encoding.BroadcastBlock)
	require.NoError(t, err, "a rejection is not a transport error")
	require.True(t, res.IsError())
	require.Equal(t, uint32(32), res.Code)
	require.Equal(t, "ABCD", res.TxHash)
}

func TestTxInfo(t *testing.T) {
	var calls int32
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":"Tx: tx (ABCD) not found"}`)
			return
		}
		require.Equal(t, "/txs/ABCD", r.URL.Path)
		io.WriteString(w, `{"height":"77","txhash":"ABCD","raw_log":"[]","logs":[{"msg_index":0,"log":"","events":[{"type":"store_code","attributes":[{"key":"sender","value":"terra1x"},{"key":"code_id","value":"10"}]}]}]}`)
	})
	ctx := context.Background()

	_, err := c.TxInfo(ctx, "ABCD")
	require.ErrorIs(t, err, client.ErrTxNotFound)

	info, err := c.TxInfo(ctx, "ABCD")
	require.NoError(t, err)
	require.Equal(t, "77", info.Height)
	require.Len(t, info.Logs, 1)
	require.Equal(t, "store_code", info.Logs[0].Events[0].Type)

	// Settled transactions are served from the cache.
	again, err := c.TxInfo(ctx, "ABCD")
	require.NoError(t, err)
	require.Equal(t, info, again)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBalanceAndEstimateFee(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bank/balances/terra1x":
			io.WriteString(w, `{"height":"1","result":[{"denom":"uluna","amount":"1000"},{"denom":"uusd","amount":"25"}]}`)
		case "/txs/estimate_fee":
			var body map[string]json.RawMessage
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.JSONEq(t, `{
				"from": "terra1x", "memo": "", "chain_id": "localterra",
				"account_number": "3", "sequence": "9", "gas": "auto",
				"gas_adjustment": "1.5", "gas_prices": [{"denom": "uusd", "amount": "0.15"}],
				"simulate": false
			}`, string(body["base_req"]))
			io.WriteString(w, `{"height":"0","result":{"fees":[{"denom":"uusd","amount":"45000"}],"gas":"300000"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	coins, err := c.Balance(ctx, "terra1x")
	require.NoError(t, err)
	require.Equal(t, "1000uluna,25uusd", coins.String())

	fee, err := c.EstimateFee(ctx, client.EstimateFeeRequest{
		From:          "terra1x",
		ChainID:       "localterra",
		AccountNumber: 3,
		Sequence:      9,
		GasAdjustment: 1.5,
		GasPrices:     encoding.DecCoins{{Denom: "uusd", Amount: "0.15"}},
	})
	require.NoError(t, err)
	require.Equal(t, uint64(300000), fee.Gas)
	require.Equal(t, "45000uusd", fee.Amount.String())
}

func TestCanceledContext(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Balance(ctx, "terra1x")
	require.ErrorIs(t, err, context.Canceled)
}

func TestStableTxCache(t *testing.T) {
	cache := client.NewStableTxCache()
	_, ok := cache.Get("A")
	require.False(t, ok)

	info := &encoding.TxInfo{Height: "1", TxHash: "A"}
	require.NoError(t, cache.Set("A", info))
	require.NoError(t, cache.Set("A", &encoding.TxInfo{Height: "1", TxHash: "A"}))
	require.Error(t, cache.Set("A", &encoding.TxInfo{Height: "2", TxHash: "A"}))

	got, ok := cache.Get("A")
	require.True(t, ok)
	require.Same(t, info, got)
}
