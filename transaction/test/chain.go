package test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/pylon-protocol/deployer/client"
	ctest "github.com/pylon-protocol/deployer/client/test"
	"github.com/pylon-protocol/deployer/encoding"
	"github.com/pylon-protocol/deployer/wallet"
)

// Chain is an in-memory node for a single account. It verifies signatures
// against its own account sequence, assigns increasing code ids to stored
// code and answers tx queries only after PollDelay misses.
type Chain struct {
	mu sync.Mutex

	ChainID       string
	AccountNumber uint64
	Sequence      uint64
	NextCodeID    uint64
	PollDelay     int
	// StrictEstimates makes fee estimation fail like a node does when the
	// request carries a sequence other than the account's.
	StrictEstimates bool
	// StoreCodeEvents builds the events of a successful store. Tests replace
	// it to emit malformed logs.
	StoreCodeEvents func(sender, codeID string) []encoding.Event

	forced     []forcedRejection
	txs        map[string]*storedTx
	broadcasts int
	accepted   []uint64
	estimates  int
	stored     []string
	queries    int
}

type storedTx struct {
	info  *encoding.TxInfo
	polls int
}

type forcedRejection struct {
	result       encoding.BroadcastResult
	bumpSequence bool
}

type ChainOpt func(*Chain)

func NewChain(opts ...ChainOpt) *Chain {
	c := &Chain{
		ChainID:       "localterra",
		AccountNumber: 1,
		NextCodeID:    1,
		StoreCodeEvents: func(sender, codeID string) []encoding.Event {
			return []encoding.Event{
				{Type: "message", Attributes: []encoding.Attribute{{Key: "module", Value: "wasm"}}},
				{Type: "store_code", Attributes: []encoding.Attribute{
					{Key: "sender", Value: sender},
					{Key: "code_id", Value: codeID},
				}},
			}
		},
		txs: make(map[string]*storedTx),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithSequence(seq uint64) ChainOpt {
	return func(c *Chain) { c.Sequence = seq }
}

func WithNextCodeID(id uint64) ChainOpt {
	return func(c *Chain) { c.NextCodeID = id }
}

func WithPollDelay(n int) ChainOpt {
	return func(c *Chain) { c.PollDelay = n }
}

func WithStrictEstimates() ChainOpt {
	return func(c *Chain) { c.StrictEstimates = true }
}

// RaceSequence makes the next n broadcasts lose against a concurrent sender:
// each is rejected for a stale sequence and the account sequence moves on.
func (c *Chain) RaceSequence(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < n; i++ {
		c.forced = append(c.forced, forcedRejection{
			result: encoding.BroadcastResult{
				Code:      32,
				Codespace: "sdk",
				RawLog:    "account sequence mismatch: incorrect account sequence",
			},
			bumpSequence: true,
		})
	}
}

// Reject makes the next broadcast fail with the given code and raw log.
func (c *Chain) Reject(code uint32, codespace, rawLog string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forced = append(c.forced, forcedRejection{
		result: encoding.BroadcastResult{Code: code, Codespace: codespace, RawLog: rawLog},
	})
}

// Broadcasts is the number of broadcasts received.
func (c *Chain) Broadcasts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.broadcasts
}

// Stored returns the code ids assigned so far, in order.
func (c *Chain) Stored() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.stored...)
}

// Accepted returns the sequences of the accepted broadcasts, in order.
func (c *Chain) Accepted() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint64(nil), c.accepted...)
}

// Estimates is the number of fee estimations received.
func (c *Chain) Estimates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.estimates
}

// Queries is the number of tx info queries received.
func (c *Chain) Queries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queries
}

func (c *Chain) Client() *ctest.MockClient {
	m := ctest.NewMockClient()
	m.SetAccountInfo(c.accountInfo)
	m.SetBroadcast(c.broadcast)
	m.SetTxInfo(c.txInfo)
	m.SetBalance(func(context.Context, string) (encoding.Coins, error) {
		return encoding.Coins{encoding.NewCoin("uusd", 1_000_000_000)}, nil
	})
	m.SetEstimateFee(c.estimateFee)
	return m
}

func (c *Chain) estimateFee(ctx context.Context, req client.EstimateFeeRequest) (*encoding.Fee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.estimates++
	if c.StrictEstimates && req.Sequence != c.Sequence {
		return nil, errors.Wrap(&client.HTTPError{
			StatusCode: 400,
			Message: fmt.Sprintf("account sequence mismatch, expected %d, got %d: incorrect account sequence",
				c.Sequence, req.Sequence),
		}, "estimating fee")
	}
	gas := encoding.AdjustGas(1_000_000, req.GasAdjustment)
	fee, err := encoding.ComputeFee(gas, req.GasPrices)
	return &fee, err
}

func (c *Chain) accountInfo(ctx context.Context, address string) (*encoding.AccountInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return &encoding.AccountInfo{Address: address, AccountNumber: c.AccountNumber, Sequence: c.Sequence}, nil
}

func (c *Chain) broadcast(ctx context.Context, tx encoding.StdTx, _ encoding.BroadcastMode) (*encoding.BroadcastResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcasts++

	hash := txHash(tx)
	if len(c.forced) > 0 {
		f := c.forced[0]
		c.forced = c.forced[1:]
		if f.bumpSequence {
			c.Sequence++
		}
		res := f.result
		res.TxHash = hash
		return &res, nil
	}

	if len(tx.Signatures) != 1 || len(tx.Msgs) != 1 {
		return &encoding.BroadcastResult{TxHash: hash, Code: 2, Codespace: "sdk", RawLog: "tx parse error"}, nil
	}
	sig := tx.Signatures[0]
	pub, err := secp256k1.ParsePubKey(sig.PubKey.Value)
	if err != nil {
		return &encoding.BroadcastResult{TxHash: hash, Code: 8, Codespace: "sdk", RawLog: "invalid pubkey"}, nil
	}
	doc := encoding.SignDoc{
		AccountNumber: c.AccountNumber,
		ChainID:       c.ChainID,
		Fee:           tx.Fee,
		Memo:          tx.Memo,
		Msgs:          tx.Msgs,
		Sequence:      c.Sequence,
	}
	signBytes, err := doc.Bytes()
	if err != nil {
		return nil, err
	}
	if ok, _ := wallet.VerifySignature(signBytes, sig.Signature, pub); !ok {
		return &encoding.BroadcastResult{
			TxHash:    hash,
			Code:      4,
			Codespace: "sdk",
			RawLog:    "signature verification failed; verify correct account sequence and chain-id",
		}, nil
	}

	var msg encoding.MsgStoreCode
	if tx.Msgs[0].Type != encoding.TypeMsgStoreCode {
		return &encoding.BroadcastResult{TxHash: hash, Code: 6, Codespace: "sdk", RawLog: "unknown message type"}, nil
	}
	if err := json.Unmarshal(tx.Msgs[0].Value, &msg); err != nil {
		return nil, errors.Wrap(err, "decoding msg")
	}

	c.accepted = append(c.accepted, c.Sequence)
	c.Sequence++
	codeID := strconv.FormatUint(c.NextCodeID, 10)
	c.NextCodeID++
	c.stored = append(c.stored, codeID)
	c.txs[hash] = &storedTx{info: &encoding.TxInfo{
		Height: strconv.Itoa(100 + len(c.stored)),
		TxHash: hash,
		RawLog: "[]",
		Logs:   []encoding.TxLog{{Events: c.StoreCodeEvents(msg.Sender, codeID)}},
	}}
	return &encoding.BroadcastResult{Height: "0", TxHash: hash, RawLog: "[]"}, nil
}

func (c *Chain) txInfo(ctx context.Context, hash string) (*encoding.TxInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries++
	stx, ok := c.txs[hash]
	if !ok || stx.polls < c.PollDelay {
		if ok {
			stx.polls++
		}
		return nil, errors.Wrap(client.ErrTxNotFound, hash)
	}
	return stx.info, nil
}

func txHash(tx encoding.StdTx) string {
	raw, _ := json.Marshal(tx)
	h := sha256.Sum256(raw)
	return strings.ToUpper(hex.EncodeToString(h[:]))
}
