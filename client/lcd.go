package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"

	"github.com/pylon-protocol/deployer/backend"
	"github.com/pylon-protocol/deployer/encoding"
)

const defaultTimeout = 30 * time.Second

// HTTPError is a non-2xx answer of the node.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return "lcd: status " + strconv.Itoa(e.StatusCode) + ": " + e.Message
}

// Client talks to a Terra LCD node over REST.
type Client struct {
	url     string
	timeout time.Duration
	http    *fasthttp.Client
	cache   StableTxCache
}

var _ NetworkClient = (*Client)(nil)

func NewClient(lcdURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		url:     strings.TrimRight(lcdURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "storecode",
			MaxResponseBodySize: 64 << 20,
		},
		cache: NewStableTxCache(),
	}
}

func NewDefaultClient(network backend.Network) *Client {
	return NewClient(network.URL, network.Timeout)
}

func (c *Client) AccountInfo(ctx context.Context, address string) (*encoding.AccountInfo, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, "/auth/accounts/"+url.PathEscape(address), nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying account")
	}
	info, err := parseAccount(body)
	if err != nil {
		return nil, err
	}
	if info.Address == "" {
		return nil, errors.Wrap(ErrAccountNotFound, address)
	}
	return info, nil
}

func (c *Client) Broadcast(ctx context.Context, tx encoding.StdTx, mode encoding.BroadcastMode) (*encoding.BroadcastResult, error) {
	payload, err := json.Marshal(broadcastJSON{Tx: tx, Mode: mode})
	if err != nil {
		return nil, errors.Wrap(err, "encoding tx")
	}
	body, err := c.do(ctx, fasthttp.MethodPost, "/txs", payload)
	if err != nil {
		return nil, errors.Wrap(err, "broadcasting tx")
	}
	var result encoding.BroadcastResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrapf(ErrMalformedResponse, "broadcast result: %v", err)
	}
	return &result, nil
}

func (c *Client) TxInfo(ctx context.Context, hash string) (*encoding.TxInfo, error) {
	if info, cached := c.cache.Get(hash); cached {
		return info, nil
	}
	body, err := c.do(ctx, fasthttp.MethodGet, "/txs/"+url.PathEscape(hash), nil)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == fasthttp.StatusNotFound {
			return nil, errors.Wrapf(ErrTxNotFound, "%s: %s", hash, httpErr.Message)
		}
		return nil, errors.Wrap(err, "querying tx")
	}
	var info encoding.TxInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, errors.Wrapf(ErrMalformedResponse, "tx info: %v", err)
	}
	if err := c.cache.Set(hash, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Balance(ctx context.Context, address string) (encoding.Coins, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, "/bank/balances/"+url.PathEscape(address), nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying balance")
	}
	var resp struct {
		Result encoding.Coins `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrapf(ErrMalformedResponse, "balance: %v", err)
	}
	return resp.Result, nil
}

func (c *Client) EstimateFee(ctx context.Context, req EstimateFeeRequest) (*encoding.Fee, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encoding fee estimation")
	}
	body, err := c.do(ctx, fasthttp.MethodPost, "/txs/estimate_fee", payload)
	if err != nil {
		return nil, errors.Wrap(err, "estimating fee")
	}
	var resp struct {
		Result struct {
			Fees encoding.Coins `json:"fees"`
			Gas  uint64         `json:"gas,string"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrapf(ErrMalformedResponse, "fee estimation: %v", err)
	}
	return &encoding.Fee{Amount: resp.Result.Fees, Gas: resp.Result.Gas}, nil
}

// do performs a single request and returns a copy of the response body. The
// request deadline is the earlier of the context deadline and the client
// timeout.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	body := append([]byte(nil), resp.Body()...)
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &HTTPError{StatusCode: code, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage extracts the "error" field the LCD puts in failure bodies.
func errorMessage(body []byte) string {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err == nil {
		if msg := v.GetStringBytes("error"); msg != nil {
			return string(msg)
		}
		if msg := v.GetStringBytes("message"); msg != nil {
			return string(msg)
		}
	}
	return strings.TrimSpace(string(body))
}

// parseAccount reads the account from an auth query. Plain accounts carry
// their fields in result.value, vesting accounts nest them further down.
func parseAccount(body []byte) (*encoding.AccountInfo, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedResponse, "account: %v", err)
	}
	value := v.Get("result", "value")
	if value == nil {
		return nil, errors.Wrap(ErrMalformedResponse, "account: missing result.value")
	}
	for _, nested := range [][]string{
		{"BaseVestingAccount", "BaseAccount"},
		{"base_vesting_account", "base_account"},
	} {
		if base := value.Get(nested...); base != nil {
			value = base
			break
		}
	}

	accountNumber, err := parseUint(value, "account_number")
	if err != nil {
		return nil, err
	}
	sequence, err := parseUint(value, "sequence")
	if err != nil {
		return nil, err
	}
	return &encoding.AccountInfo{
		Address:       string(value.GetStringBytes("address")),
		AccountNumber: accountNumber,
		Sequence:      sequence,
	}, nil
}

// parseUint accepts the field as a decimal string or a JSON number. A missing
// field is zero, which is what the node reports for a fresh account.
func parseUint(v *fastjson.Value, key string) (uint64, error) {
	f := v.Get(key)
	if f == nil {
		return 0, nil
	}
	switch f.Type() {
	case fastjson.TypeString:
		n, err := strconv.ParseUint(string(f.GetStringBytes()), 10, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrMalformedResponse, "account %s: %v", key, err)
		}
		return n, nil
	case fastjson.TypeNumber:
		n, err := f.Uint64()
		if err != nil {
			return 0, errors.Wrapf(ErrMalformedResponse, "account %s: %v", key, err)
		}
		return n, nil
	default:
		return 0, errors.Wrapf(ErrMalformedResponse, "account %s: unexpected %s", key, f.Type())
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
