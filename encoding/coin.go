package encoding

import (
	"encoding/json"
	"math/big"
	"regexp"
	"strings"

	"github.com/Pilatuz/bigz/uint128"
	"github.com/pkg/errors"
)

var (
	ErrInvalidCoin    = errors.New("invalid coin")
	ErrAmountOverflow = errors.New("uint128 overflow")
)

// Coin is an integer amount of a single denomination.
type Coin struct {
	Denom  string
	Amount uint128.Uint128
}

type Coins []Coin

type coinJSON struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

func NewCoin(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: uint128.From64(amount)}
}

func (c Coin) String() string {
	return c.Amount.Big().String() + c.Denom
}

func (c Coin) MarshalJSON() ([]byte, error) {
	return json.Marshal(coinJSON{Amount: c.Amount.Big().String(), Denom: c.Denom})
}

func (c *Coin) UnmarshalJSON(data []byte) error {
	var raw coinJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, ok := new(big.Int).SetString(raw.Amount, 10)
	if !ok {
		return errors.Wrapf(ErrInvalidCoin, "amount %q", raw.Amount)
	}
	u, err := ToUint128(amount)
	if err != nil {
		return err
	}
	c.Denom = raw.Denom
	c.Amount = u
	return nil
}

func (cs Coins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// ToUint128 converts x, failing when it does not fit.
func ToUint128(x *big.Int) (uint128.Uint128, error) {
	if x.Cmp(uint128.Max().Big()) == 1 {
		return uint128.Uint128{}, ErrAmountOverflow
	}
	if x.Sign() == -1 {
		return uint128.Uint128{}, errors.New("uint128 underflow")
	}
	return uint128.FromBig(x), nil
}

// DecCoin is a decimal amount of a denomination, as used for gas prices.
type DecCoin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type DecCoins []DecCoin

var decCoinPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([a-zA-Z][a-zA-Z0-9/]{1,127})$`)

// ParseDecCoins parses a comma separated list like "0.15uusd,0.0113uluna".
func ParseDecCoins(s string) (DecCoins, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out DecCoins
	for _, part := range strings.Split(s, ",") {
		m := decCoinPattern.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return nil, errors.Wrapf(ErrInvalidCoin, "%q", part)
		}
		out = append(out, DecCoin{Denom: m[2], Amount: m[1]})
	}
	return out, nil
}

func (c DecCoin) String() string {
	return c.Amount + c.Denom
}

func (c DecCoin) Rat() (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(c.Amount)
	if !ok || r.Sign() < 0 {
		return nil, errors.Wrapf(ErrInvalidCoin, "amount %q", c.Amount)
	}
	return r, nil
}

func (cs DecCoins) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}
