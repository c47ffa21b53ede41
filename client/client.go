package client

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/pylon-protocol/deployer/backend"
	"github.com/pylon-protocol/deployer/encoding"
)

var (
	// ErrTxNotFound is returned by TxInfo while the node does not know the
	// transaction yet.
	ErrTxNotFound        = errors.New("tx not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrMalformedResponse = errors.New("malformed response")
)

// NetworkClient is the subset of the LCD REST API used to deploy code.
type NetworkClient interface {
	backend.Transactor

	// AccountInfo returns the account number and the next sequence of the
	// given address.
	AccountInfo(ctx context.Context, address string) (*encoding.AccountInfo, error)

	// TxInfo returns the settled transaction with the given hash. Iff the node
	// answers that it does not know the hash, the returned error is
	// ErrTxNotFound.
	TxInfo(ctx context.Context, hash string) (*encoding.TxInfo, error)

	// Balance returns the bank balance of the given address.
	Balance(ctx context.Context, address string) (encoding.Coins, error)

	// EstimateFee simulates the messages and returns the fee the node
	// suggests for them.
	EstimateFee(ctx context.Context, req EstimateFeeRequest) (*encoding.Fee, error)
}

// EstimateFeeRequest describes a transaction to be simulated.
type EstimateFeeRequest struct {
	From          string
	ChainID       string
	AccountNumber uint64
	Sequence      uint64
	Memo          string
	GasAdjustment float64
	GasPrices     encoding.DecCoins
	Msgs          []encoding.Msg
}

type baseReqJSON struct {
	From          string            `json:"from"`
	Memo          string            `json:"memo"`
	ChainID       string            `json:"chain_id"`
	AccountNumber uint64            `json:"account_number,string"`
	Sequence      uint64            `json:"sequence,string"`
	Gas           string            `json:"gas"`
	GasAdjustment string            `json:"gas_adjustment"`
	GasPrices     encoding.DecCoins `json:"gas_prices"`
	Simulate      bool              `json:"simulate"`
}

type estimateFeeJSON struct {
	BaseReq baseReqJSON    `json:"base_req"`
	Msgs    []encoding.Msg `json:"msgs"`
}

func (r EstimateFeeRequest) MarshalJSON() ([]byte, error) {
	prices := r.GasPrices
	if prices == nil {
		prices = encoding.DecCoins{}
	}
	return json.Marshal(estimateFeeJSON{
		BaseReq: baseReqJSON{
			From:          r.From,
			Memo:          r.Memo,
			ChainID:       r.ChainID,
			AccountNumber: r.AccountNumber,
			Sequence:      r.Sequence,
			Gas:           "auto",
			GasAdjustment: formatFloat(r.GasAdjustment),
			GasPrices:     prices,
		},
		Msgs: r.Msgs,
	})
}

type broadcastJSON struct {
	Tx   encoding.StdTx         `json:"tx"`
	Mode encoding.BroadcastMode `json:"mode"`
}
