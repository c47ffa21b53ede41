package transaction

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/pylon-protocol/deployer/client"
	"github.com/pylon-protocol/deployer/encoding"
)

var (
	// ErrTxRejected matches every *RejectionError.
	ErrTxRejected          = errors.New("transaction rejected")
	ErrResyncLimit         = errors.New("sequence resync limit reached")
	ErrConfirmationTimeout = errors.New("transaction not confirmed in time")
	// ErrFeeEstimation matches every *EstimateError.
	ErrFeeEstimation = errors.New("fee estimation failed")

	ErrTxFailed                  = errors.New("transaction failed")
	ErrMissingStoreCodeEvent     = errors.New("store_code event not found")
	ErrMissingStoreCodeAttribute = errors.New("store_code attribute not found")
)

// RejectionError is a broadcast the node refused to accept.
type RejectionError struct {
	Code      uint32
	Codespace string
	RawLog    string
	Class     RejectionClass
}

func newRejectionError(r *encoding.BroadcastResult) *RejectionError {
	return &RejectionError{
		Code:      r.Code,
		Codespace: r.Codespace,
		RawLog:    r.RawLog,
		Class:     Classify(r),
	}
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("transaction rejected (%s, codespace %q, code %d): %s", e.Class, e.Codespace, e.Code, e.RawLog)
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrTxRejected
}

// EstimateError is a failed fee simulation. The node simulates against the
// account's current sequence, so a stale one is reported here before any
// broadcast happens.
type EstimateError struct {
	Err   error
	Class RejectionClass
}

func newEstimateError(err error) *EstimateError {
	class := RejectionFatal
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == fasthttp.StatusBadRequest && isSequenceLog(httpErr.Message) {
		class = RejectionSequence
	}
	return &EstimateError{Err: err, Class: class}
}

func (e *EstimateError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrFeeEstimation, e.Class, e.Err)
}

func (e *EstimateError) Unwrap() error {
	return e.Err
}

func (e *EstimateError) Is(target error) bool {
	return target == ErrFeeEstimation
}

// RejectionClass tells whether resubmitting after a resync can help.
type RejectionClass int

const (
	RejectionFatal RejectionClass = iota
	// RejectionSequence means the transaction was signed for a stale sequence.
	RejectionSequence
	// RejectionMempool means the node's mempool refused the transaction for
	// now: it already holds it or is full.
	RejectionMempool
)

// Root codespace error codes of the cosmos sdk.
const (
	codeTxInMempool   = 19
	codeMempoolFull   = 20
	codeWrongSequence = 32
)

var sequenceLogs = []string{
	"account sequence mismatch",
	"incorrect account sequence",
	"verify correct account sequence",
}

func (c RejectionClass) String() string {
	switch c {
	case RejectionSequence:
		return "sequence"
	case RejectionMempool:
		return "mempool"
	default:
		return "fatal"
	}
}

func (c RejectionClass) Retryable() bool {
	return c != RejectionFatal
}

// Classify sorts a rejected broadcast. Older nodes report a stale sequence
// as an unauthorized signature, so the raw log is consulted too.
func Classify(r *encoding.BroadcastResult) RejectionClass {
	if r.Code == 0 {
		return RejectionFatal
	}
	if r.Codespace == "" || r.Codespace == "sdk" {
		switch r.Code {
		case codeWrongSequence:
			return RejectionSequence
		case codeTxInMempool, codeMempoolFull:
			return RejectionMempool
		}
	}
	if isSequenceLog(r.RawLog) {
		return RejectionSequence
	}
	return RejectionFatal
}

func isSequenceLog(log string) bool {
	log = strings.ToLower(log)
	for _, s := range sequenceLogs {
		if strings.Contains(log, s) {
			return true
		}
	}
	return false
}
