package external

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"

	"github.com/pylon-protocol/deployer/wallet"
)

const defaultTimeout = 30 * time.Second

var ErrSignerRefused = errors.New("remote signer refused the request")

// RemoteClient talks to a signing daemon over HTTP:
//
//	POST /pubkey {"path"}         -> {"pub_key": base64 compressed key}
//	POST /sign   {"path", "data"} -> {"signature": base64 r||s}
//
// Data is sent base64 encoded and signed by the daemon over its SHA-256 digest.
type RemoteClient struct {
	url     string
	timeout time.Duration
	http    *fasthttp.Client
}

var _ Client = (*RemoteClient)(nil)

func NewRemoteClient(url string, timeout time.Duration) *RemoteClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RemoteClient{
		url:     strings.TrimRight(url, "/"),
		timeout: timeout,
		http:    &fasthttp.Client{Name: "storecode"},
	}
}

type remoteRequest struct {
	Path string `json:"path"`
	Data []byte `json:"data,omitempty"`
}

func (c *RemoteClient) PubKey(path wallet.HDPath) (*secp256k1.PublicKey, error) {
	raw, err := c.call("/pubkey", remoteRequest{Path: path.String()}, "pub_key")
	if err != nil {
		return nil, err
	}
	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parsing remote public key")
	}
	return pub, nil
}

func (c *RemoteClient) SignData(path wallet.HDPath, data []byte) ([]byte, error) {
	return c.call("/sign", remoteRequest{Path: path.String(), Data: data}, "signature")
}

// call posts req and returns the base64 decoded field of the answer.
func (c *RemoteClient) call(endpoint string, req remoteRequest, field string) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encoding signer request")
	}

	httpReq := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(httpReq)
	defer fasthttp.ReleaseResponse(resp)

	httpReq.SetRequestURI(c.url + endpoint)
	httpReq.Header.SetMethod(fasthttp.MethodPost)
	httpReq.Header.SetContentType("application/json")
	httpReq.SetBody(payload)
	if err := c.http.DoTimeout(httpReq, resp, c.timeout); err != nil {
		return nil, errors.Wrapf(err, "calling signer %s", endpoint)
	}

	var p fastjson.Parser
	v, err := p.ParseBytes(resp.Body())
	if code := resp.StatusCode(); code < 200 || code > 299 {
		msg := strings.TrimSpace(string(resp.Body()))
		if err == nil && v.Exists("error") {
			msg = string(v.GetStringBytes("error"))
		}
		return nil, errors.Wrapf(ErrSignerRefused, "%s: status %d: %s", endpoint, code, msg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding signer answer from %s", endpoint)
	}
	encoded := v.GetStringBytes(field)
	if encoded == nil {
		return nil, errors.Errorf("signer answer from %s lacks %q", endpoint, field)
	}
	out, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", field)
	}
	return out, nil
}
