package test

import (
	"context"

	"github.com/pylon-protocol/deployer/client"
	"github.com/pylon-protocol/deployer/encoding"
)

// MockClient is a client.NetworkClient whose behaviour is set per method.
// Methods that were not set panic.
type MockClient struct {
	accountInfo func(ctx context.Context, address string) (*encoding.AccountInfo, error)
	broadcast   func(ctx context.Context, tx encoding.StdTx, mode encoding.BroadcastMode) (*encoding.BroadcastResult, error)
	txInfo      func(ctx context.Context, hash string) (*encoding.TxInfo, error)
	balance     func(ctx context.Context, address string) (encoding.Coins, error)
	estimateFee func(ctx context.Context, req client.EstimateFeeRequest) (*encoding.Fee, error)
}

var _ client.NetworkClient = (*MockClient)(nil)

func NewMockClient() *MockClient {
	return &MockClient{
		accountInfo: func(ctx context.Context, address string) (*encoding.AccountInfo, error) {
			panic("unimplemented")
		},
		broadcast: func(ctx context.Context, tx encoding.StdTx, mode encoding.BroadcastMode) (*encoding.BroadcastResult, error) {
			panic("unimplemented")
		},
		txInfo: func(ctx context.Context, hash string) (*encoding.TxInfo, error) {
			panic("unimplemented")
		},
		balance: func(ctx context.Context, address string) (encoding.Coins, error) {
			panic("unimplemented")
		},
		estimateFee: func(ctx context.Context, req client.EstimateFeeRequest) (*encoding.Fee, error) {
			panic("unimplemented")
		},
	}
}

func (m *MockClient) SetAccountInfo(f func(ctx context.Context, address string) (*encoding.AccountInfo, error)) {
	m.accountInfo = f
}
func (m *MockClient) SetBroadcast(f func(ctx context.Context, tx encoding.StdTx, mode encoding.BroadcastMode) (*encoding.BroadcastResult, error)) {
	m.broadcast = f
}
func (m *MockClient) SetTxInfo(f func(ctx context.Context, hash string) (*encoding.TxInfo, error)) {
	m.txInfo = f
}
func (m *MockClient) SetBalance(f func(ctx context.Context, address string) (encoding.Coins, error)) {
	m.balance = f
}
func (m *MockClient) SetEstimateFee(f func(ctx context.Context, req client.EstimateFeeRequest) (*encoding.Fee, error)) {
	m.estimateFee = f
}

func (m *MockClient) AccountInfo(ctx context.Context, address string) (*encoding.AccountInfo, error) {
	return m.accountInfo(ctx, address)
}

func (m *MockClient) Broadcast(ctx context.Context, tx encoding.StdTx, mode encoding.BroadcastMode) (*encoding.BroadcastResult, error) {
	return m.broadcast(ctx, tx, mode)
}

func (m *MockClient) TxInfo(ctx context.Context, hash string) (*encoding.TxInfo, error) {
	return m.txInfo(ctx, hash)
}

func (m *MockClient) Balance(ctx context.Context, address string) (encoding.Coins, error) {
	return m.balance(ctx, address)
}

func (m *MockClient) EstimateFee(ctx context.Context, req client.EstimateFeeRequest) (*encoding.Fee, error) {
	return m.estimateFee(ctx, req)
}
