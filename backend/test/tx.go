package test

import (
	"encoding/hex"
	"math/rand"
	"strconv"
	"strings"

	"github.com/pylon-protocol/deployer/encoding"
)

func NewRandomTxHash(rng *rand.Rand) string {
	var h [32]byte
	rng.Read(h[:])
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

func NewRandomCode(rng *rand.Rand) []byte {
	code := make([]byte, 16+rng.Intn(256))
	rng.Read(code)
	return code
}

type BroadcastResultOpt func(*encoding.BroadcastResult)

// NewRandomBroadcastResult returns an accepted broadcast result.
func NewRandomBroadcastResult(rng *rand.Rand, opts ...BroadcastResultOpt) *encoding.BroadcastResult {
	r := &encoding.BroadcastResult{
		Height: strconv.Itoa(1 + rng.Intn(1000000)),
		TxHash: NewRandomTxHash(rng),
		RawLog: "[]",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func WithRejection(code uint32, rawLog string) BroadcastResultOpt {
	return func(r *encoding.BroadcastResult) {
		r.Code = code
		r.Codespace = "sdk"
		r.RawLog = rawLog
	}
}

func WithTxHash(hash string) BroadcastResultOpt {
	return func(r *encoding.BroadcastResult) {
		r.TxHash = hash
	}
}

type TxInfoOpt func(*encoding.TxInfo)

// NewRandomTxInfo returns a confirmed transaction carrying a single store_code
// event with the given sender and code id.
func NewRandomTxInfo(rng *rand.Rand, sender, codeID string, opts ...TxInfoOpt) *encoding.TxInfo {
	info := &encoding.TxInfo{
		Height: strconv.Itoa(1 + rng.Intn(1000000)),
		TxHash: NewRandomTxHash(rng),
		Logs: []encoding.TxLog{{
			MsgIndex: 0,
			Events: []encoding.Event{
				{
					Type: "message",
					Attributes: []encoding.Attribute{
						{Key: "action", Value: "store_code"},
						{Key: "module", Value: "wasm"},
					},
				},
				StoreCodeEvent(sender, codeID),
			},
		}},
	}
	for _, opt := range opts {
		opt(info)
	}
	return info
}

func StoreCodeEvent(sender, codeID string) encoding.Event {
	return encoding.Event{
		Type: "store_code",
		Attributes: []encoding.Attribute{
			{Key: "sender", Value: sender},
			{Key: "code_id", Value: codeID},
		},
	}
}

func WithEvents(events ...encoding.Event) TxInfoOpt {
	return func(info *encoding.TxInfo) {
		info.Logs = []encoding.TxLog{{Events: events}}
	}
}

func WithCode(code uint32, rawLog string) TxInfoOpt {
	return func(info *encoding.TxInfo) {
		info.Code = code
		info.RawLog = rawLog
	}
}
