package transaction

import (
	"context"

	"github.com/pkg/errors"

	"github.com/pylon-protocol/deployer/artifact"
	"github.com/pylon-protocol/deployer/backend"
	"github.com/pylon-protocol/deployer/client"
	"github.com/pylon-protocol/deployer/encoding"
)

// FeeEstimator simulates transactions to price them.
type FeeEstimator interface {
	EstimateFee(ctx context.Context, req client.EstimateFeeRequest) (*encoding.Fee, error)
}

// FeeConfig decides how a store-code transaction is priced. A fixed Gas limit
// is priced locally at GasPrices; without one the node estimates the fee.
type FeeConfig struct {
	Gas           uint64
	GasPrices     encoding.DecCoins
	GasAdjustment float64
}

// Builder creates signed MsgStoreCode transactions for one account.
type Builder struct {
	signer    backend.Signer
	estimator FeeEstimator
	chainID   string
	fee       FeeConfig
	memo      string
}

func NewBuilder(signer backend.Signer, estimator FeeEstimator, chainID string, fee FeeConfig) *Builder {
	return &Builder{
		signer:    signer,
		estimator: estimator,
		chainID:   chainID,
		fee:       fee,
	}
}

// WithMemo sets the memo attached to every built transaction.
func (b *Builder) WithMemo(memo string) *Builder {
	b.memo = memo
	return b
}

func (b *Builder) Sender() string {
	return b.signer.Address().String()
}

// Build returns the signed transaction storing the artifact's code at the
// given account sequence.
func (b *Builder) Build(ctx context.Context, a *artifact.Artifact, accountNumber, sequence uint64) (encoding.StdTx, error) {
	msg, err := encoding.NewMsgStoreCode(b.Sender(), a.Code).AsMsg()
	if err != nil {
		return encoding.StdTx{}, err
	}
	msgs := []encoding.Msg{msg}

	fee, err := b.computeFee(ctx, msgs, accountNumber, sequence)
	if err != nil {
		return encoding.StdTx{}, err
	}

	doc := encoding.SignDoc{
		AccountNumber: accountNumber,
		ChainID:       b.chainID,
		Fee:           fee,
		Memo:          b.memo,
		Msgs:          msgs,
		Sequence:      sequence,
	}
	sig, err := b.signer.SignTx(doc)
	if err != nil {
		return encoding.StdTx{}, errors.Wrap(err, "signing tx")
	}
	return doc.Tx(sig), nil
}

func (b *Builder) computeFee(ctx context.Context, msgs []encoding.Msg, accountNumber, sequence uint64) (encoding.Fee, error) {
	if b.fee.Gas > 0 {
		return encoding.ComputeFee(b.fee.Gas, b.fee.GasPrices)
	}
	fee, err := b.estimator.EstimateFee(ctx, client.EstimateFeeRequest{
		From:          b.Sender(),
		ChainID:       b.chainID,
		AccountNumber: accountNumber,
		Sequence:      sequence,
		Memo:          b.memo,
		GasAdjustment: b.fee.GasAdjustment,
		GasPrices:     b.fee.GasPrices,
		Msgs:          msgs,
	})
	if err != nil {
		return encoding.Fee{}, newEstimateError(err)
	}
	return *fee, nil
}
