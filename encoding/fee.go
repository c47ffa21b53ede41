package encoding

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
)

// Fee is the amino StdFee: the gas limit and the coins paid for it.
type Fee struct {
	Amount Coins
	Gas    uint64
}

type feeJSON struct {
	Amount Coins  `json:"amount"`
	Gas    string `json:"gas"`
}

func (f Fee) MarshalJSON() ([]byte, error) {
	amount := f.Amount
	if amount == nil {
		amount = Coins{}
	}
	return json.Marshal(feeJSON{Amount: amount, Gas: strconv.FormatUint(f.Gas, 10)})
}

func (f *Fee) UnmarshalJSON(data []byte) error {
	var raw feeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	gas, err := strconv.ParseUint(raw.Gas, 10, 64)
	if err != nil {
		return err
	}
	f.Amount = raw.Amount
	f.Gas = gas
	return nil
}

// ComputeFee prices gas at each of the given gas prices, rounding up.
func ComputeFee(gas uint64, prices DecCoins) (Fee, error) {
	fee := Fee{Gas: gas, Amount: make(Coins, 0, len(prices))}
	gasRat := new(big.Rat).SetInt(new(big.Int).SetUint64(gas))
	for _, p := range prices {
		price, err := p.Rat()
		if err != nil {
			return Fee{}, err
		}
		total := new(big.Rat).Mul(gasRat, price)
		amount := ceil(total)
		u, err := ToUint128(amount)
		if err != nil {
			return Fee{}, err
		}
		fee.Amount = append(fee.Amount, Coin{Denom: p.Denom, Amount: u})
	}
	return fee, nil
}

// AdjustGas scales an estimated gas amount by adjustment, rounding up.
func AdjustGas(gas uint64, adjustment float64) uint64 {
	if adjustment <= 0 {
		return gas
	}
	adjusted := math.Ceil(float64(gas) * adjustment)
	if adjusted >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(adjusted)
}

func ceil(r *big.Rat) *big.Int {
	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if m.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}
