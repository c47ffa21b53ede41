package transaction

import (
	"github.com/pkg/errors"

	"github.com/pylon-protocol/deployer/encoding"
)

const (
	EventTypeStoreCode = "store_code"
	AttributeSender    = "sender"
	AttributeCodeID    = "code_id"
)

// StoreCodeResult is what a confirmed MsgStoreCode reports.
type StoreCodeResult struct {
	Sender string
	CodeID string
}

// ExtractCodeID reads the code id from the first store_code event of a
// confirmed transaction. Attributes are matched by key.
func ExtractCodeID(info *encoding.TxInfo) (*StoreCodeResult, error) {
	if info.Code != 0 {
		return nil, errors.Wrapf(ErrTxFailed, "%s: code %d: %s", info.TxHash, info.Code, info.RawLog)
	}

	var events []encoding.Event
	for _, log := range info.Logs {
		for _, ev := range log.Events {
			if ev.Type == EventTypeStoreCode {
				events = append(events, ev)
			}
		}
	}
	if len(events) == 0 {
		return nil, errors.Wrap(ErrMissingStoreCodeEvent, info.TxHash)
	}

	ev := events[0]
	sender, ok := ev.Attribute(AttributeSender)
	if !ok {
		return nil, errors.Wrapf(ErrMissingStoreCodeAttribute, "%s: %s", info.TxHash, AttributeSender)
	}
	codeID, ok := ev.Attribute(AttributeCodeID)
	if !ok {
		return nil, errors.Wrapf(ErrMissingStoreCodeAttribute, "%s: %s", info.TxHash, AttributeCodeID)
	}
	return &StoreCodeResult{Sender: sender, CodeID: codeID}, nil
}
