package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"

	btest "github.com/pylon-protocol/deployer/backend/test"
	"github.com/pylon-protocol/deployer/client"
	ctest "github.com/pylon-protocol/deployer/client/test"
	"github.com/pylon-protocol/deployer/encoding"
	"github.com/pylon-protocol/deployer/transaction"
)

func newPoller(mock *ctest.MockClient, maxAttempts int) *transaction.Poller {
	p := transaction.NewPoller(mock, zerolog.Nop(), nil)
	p.PollingInterval = time.Millisecond
	p.MaxAttempts = maxAttempts
	return p
}

func TestAwaitTransientErrors(t *testing.T) {
	rng := pkgtest.Prng(t)
	want := btest.NewRandomTxInfo(rng, "terra1x", "10")
	failures := []error{
		client.ErrTxNotFound,
		&client.HTTPError{StatusCode: 500, Message: "internal"},
		errors.New("connection reset by peer"),
	}

	calls := 0
	mock := ctest.NewMockClient()
	mock.SetTxInfo(func(_ context.Context, hash string) (*encoding.TxInfo, error) {
		require.Equal(t, want.TxHash, hash)
		calls++
		if calls <= len(failures) {
			return nil, failures[calls-1]
		}
		return want, nil
	})

	info, err := newPoller(mock, 10).Await(context.Background(), want.TxHash)
	require.NoError(t, err)
	require.Equal(t, want, info)
	require.Equal(t, len(failures)+1, calls)
}

func TestAwaitTimeout(t *testing.T) {
	calls := 0
	mock := ctest.NewMockClient()
	mock.SetTxInfo(func(context.Context, string) (*encoding.TxInfo, error) {
		calls++
		return nil, client.ErrTxNotFound
	})

	_, err := newPoller(mock, 4).Await(context.Background(), "AB")
	require.ErrorIs(t, err, transaction.ErrConfirmationTimeout)
	require.Equal(t, 4, calls)
}

func TestAwaitCanceled(t *testing.T) {
	mock := ctest.NewMockClient()
	mock.SetTxInfo(func(context.Context, string) (*encoding.TxInfo, error) {
		return nil, client.ErrTxNotFound
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newPoller(mock, 0).Await(ctx, "AB")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtractCodeID(t *testing.T) {
	rng := pkgtest.Prng(t)
	info := btest.NewRandomTxInfo(rng, "terra1sender", "42")

	res, err := transaction.ExtractCodeID(info)
	require.NoError(t, err)
	require.Equal(t, transaction.StoreCodeResult{Sender: "terra1sender", CodeID: "42"}, *res)
}

func TestExtractCodeIDAttributeOrder(t *testing.T) {
	rng := pkgtest.Prng(t)
	info := btest.NewRandomTxInfo(rng, "", "", btest.WithEvents(encoding.Event{
		Type: "store_code",
		Attributes: []encoding.Attribute{
			{Key: "code_id", Value: "7"},
			{Key: "builder", Value: "pylon"},
			{Key: "sender", Value: "terra1sender"},
		},
	}))

	res, err := transaction.ExtractCodeID(info)
	require.NoError(t, err)
	require.Equal(t, "7", res.CodeID)
	require.Equal(t, "terra1sender", res.Sender)
}

func TestExtractCodeIDFirstMatch(t *testing.T) {
	rng := pkgtest.Prng(t)
	info := btest.NewRandomTxInfo(rng, "terra1a", "1")
	info.Logs = append(info.Logs, encoding.TxLog{
		MsgIndex: 1,
		Events:   []encoding.Event{btest.StoreCodeEvent("terra1b", "2")},
	})

	res, err := transaction.ExtractCodeID(info)
	require.NoError(t, err)
	require.Equal(t, "1", res.CodeID)
}

func TestExtractCodeIDErrors(t *testing.T) {
	rng := pkgtest.Prng(t)

	noEvent := btest.NewRandomTxInfo(rng, "", "", btest.WithEvents(encoding.Event{
		Type:       "message",
		Attributes: []encoding.Attribute{{Key: "action", Value: "store_code"}},
	}))
	_, err := transaction.ExtractCodeID(noEvent)
	require.ErrorIs(t, err, transaction.ErrMissingStoreCodeEvent)

	noLogs := btest.NewRandomTxInfo(rng, "", "")
	noLogs.Logs = nil
	_, err = transaction.ExtractCodeID(noLogs)
	require.ErrorIs(t, err, transaction.ErrMissingStoreCodeEvent)

	noCodeID := btest.NewRandomTxInfo(rng, "", "", btest.WithEvents(encoding.Event{
		Type:       "store_code",
		Attributes: []encoding.Attribute{{Key: "sender", Value: "terra1x"}},
	}))
	_, err = transaction.ExtractCodeID(noCodeID)
	require.ErrorIs(t, err, transaction.ErrMissingStoreCodeAttribute)

	failed := btest.NewRandomTxInfo(rng, "terra1x", "3", btest.WithCode(11, "out of gas"))
	_, err = transaction.ExtractCodeID(failed)
	require.ErrorIs(t, err, transaction.ErrTxFailed)
}
