// Package oracle fetches gas prices from a price feed that answers with a
// flat JSON object of denom to decimal price, such as the FCD
// /v1/txs/gas_prices endpoint.
package oracle

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"

	"github.com/pylon-protocol/deployer/encoding"
)

var (
	ErrDenomNotQuoted = errors.New("denom not quoted by gas price oracle")
	ErrBadQuote       = errors.New("bad gas price quote")
)

type Oracle struct {
	url     string
	timeout time.Duration
	http    *fasthttp.Client
}

func New(url string, timeout time.Duration) *Oracle {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Oracle{
		url:     url,
		timeout: timeout,
		http:    &fasthttp.Client{Name: "storecode"},
	}
}

// Fetch returns the prices of the given denoms, in the order given.
func (o *Oracle) Fetch(ctx context.Context, denoms []string) (encoding.DecCoins, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(o.url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline := time.Now().Add(o.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := o.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, errors.Wrap(err, "fetching gas prices")
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, errors.Errorf("fetching gas prices: status %d", code)
	}
	return ParsePrices(resp.Body(), denoms)
}

// ParsePrices picks the given denoms out of a price object.
func ParsePrices(body []byte, denoms []string) (encoding.DecCoins, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, errors.Wrap(ErrBadQuote, err.Error())
	}
	prices := make(encoding.DecCoins, 0, len(denoms))
	for _, denom := range denoms {
		f := v.Get(denom)
		if f == nil {
			return nil, errors.Wrap(ErrDenomNotQuoted, denom)
		}
		var amount string
		switch f.Type() {
		case fastjson.TypeString:
			amount = string(f.GetStringBytes())
		case fastjson.TypeNumber:
			amount = f.String()
		default:
			return nil, errors.Wrapf(ErrBadQuote, "%s: %s", denom, f.Type())
		}
		coin := encoding.DecCoin{Denom: denom, Amount: strings.TrimSpace(amount)}
		if _, err := coin.Rat(); err != nil {
			return nil, errors.Wrapf(ErrBadQuote, "%s: %v", denom, err)
		}
		prices = append(prices, coin)
	}
	return prices, nil
}
