package encoding_test

import (
	"encoding/json"
	"testing"

	"github.com/pylon-protocol/deployer/encoding"
	"github.com/stretchr/testify/require"
)

func TestSignDocBytes(t *testing.T) {
	msg, err := encoding.NewMsgStoreCode("terra1x", []byte{1, 2, 3}).AsMsg()
	require.NoError(t, err)

	doc := encoding.SignDoc{
		AccountNumber: 7,
		ChainID:       "localterra",
		Fee: encoding.Fee{
			Amount: encoding.Coins{encoding.NewCoin("uusd", 1000)},
			Gas:    200000,
		},
		Msgs:     []encoding.Msg{msg},
		Sequence: 3,
	}
	bytes, err := doc.Bytes()
	require.NoError(t, err)
	require.Equal(t,
		`{"account_number":"7","chain_id":"localterra",`+
			`"fee":{"amount":[{"amount":"1000","denom":"uusd"}],"gas":"200000"},`+
			`"memo":"","msgs":[{"type":"wasm/MsgStoreCode","value":{"sender":"terra1x","wasm_byte_code":"AQID"}}],`+
			`"sequence":"3"}`,
		string(bytes))
}

func TestSignDocEmptyFee(t *testing.T) {
	bytes, err := encoding.SignDoc{ChainID: "c"}.Bytes()
	require.NoError(t, err)
	require.Equal(t,
		`{"account_number":"0","chain_id":"c","fee":{"amount":[],"gas":"0"},"memo":"","msgs":[],"sequence":"0"}`,
		string(bytes))
}

func TestStdTxJSON(t *testing.T) {
	msg, err := encoding.NewMsgStoreCode("terra1x", []byte{0xff}).AsMsg()
	require.NoError(t, err)
	doc := encoding.SignDoc{Msgs: []encoding.Msg{msg}, Fee: encoding.Fee{Gas: 10}}
	tx := doc.Tx(encoding.StdSignature{
		PubKey:    encoding.NewSecp256k1PubKey([]byte{2, 1}),
		Signature: []byte{9},
	})

	raw, err := json.Marshal(tx)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"msg": [{"type": "wasm/MsgStoreCode", "value": {"sender": "terra1x", "wasm_byte_code": "/w=="}}],
		"fee": {"amount": [], "gas": "10"},
		"signatures": [{"pub_key": {"type": "tendermint/PubKeySecp256k1", "value": "AgE="}, "signature": "CQ=="}],
		"memo": ""
	}`, string(raw))
}

func TestComputeFee(t *testing.T) {
	prices, err := encoding.ParseDecCoins("0.15uusd, 0.0113uluna")
	require.NoError(t, err)
	require.Len(t, prices, 2)

	fee, err := encoding.ComputeFee(200000, prices)
	require.NoError(t, err)
	require.Equal(t, "30000uusd,2260uluna", fee.Amount.String())

	fee, err = encoding.ComputeFee(3, prices[:1])
	require.NoError(t, err)
	require.Equal(t, "1uusd", fee.Amount.String(), "fee amounts round up")
}

func TestParseDecCoinsInvalid(t *testing.T) {
	_, err := encoding.ParseDecCoins("0.15")
	require.ErrorIs(t, err, encoding.ErrInvalidCoin)

	coins, err := encoding.ParseDecCoins("")
	require.NoError(t, err)
	require.Empty(t, coins)
}

func TestAdjustGas(t *testing.T) {
	require.Equal(t, uint64(150), encoding.AdjustGas(100, 1.5))
	require.Equal(t, uint64(151), encoding.AdjustGas(100, 1.501))
	require.Equal(t, uint64(100), encoding.AdjustGas(100, 0))
}

func TestCoinJSON(t *testing.T) {
	var coins encoding.Coins
	require.NoError(t, json.Unmarshal([]byte(`[{"denom":"uusd","amount":"340282366920938463463374607431768211455"}]`), &coins))
	require.Equal(t, "340282366920938463463374607431768211455uusd", coins.String())

	err := json.Unmarshal([]byte(`[{"denom":"uusd","amount":"340282366920938463463374607431768211456"}]`), &coins)
	require.ErrorIs(t, err, encoding.ErrAmountOverflow)

	err = json.Unmarshal([]byte(`[{"denom":"uusd","amount":"1.5"}]`), &coins)
	require.ErrorIs(t, err, encoding.ErrInvalidCoin)
}

func TestEventAttribute(t *testing.T) {
	ev := encoding.Event{
		Type: "store_code",
		Attributes: []encoding.Attribute{
			{Key: "code_id", Value: "10"},
			{Key: "sender", Value: "terra1x"},
		},
	}
	v, ok := ev.Attribute("sender")
	require.True(t, ok)
	require.Equal(t, "terra1x", v)
	_, ok = ev.Attribute("missing")
	require.False(t, ok)
}

func TestAccountInfoJSON(t *testing.T) {
	var info encoding.AccountInfo
	require.NoError(t, json.Unmarshal([]byte(`{"address":"terra1x","account_number":"12","sequence":"4","public_key":null}`), &info))
	require.Equal(t, uint64(12), info.AccountNumber)
	require.Equal(t, uint64(4), info.Sequence)
}
