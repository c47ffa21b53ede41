package encoding

import (
	"encoding/json"

	"github.com/pkg/errors"
)

const TypeMsgStoreCode = "wasm/MsgStoreCode"

// Msg is an amino JSON message envelope.
type Msg struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MsgStoreCode uploads wasm bytecode. The byte code is base64 encoded on the
// wire by encoding/json.
type MsgStoreCode struct {
	Sender       string `json:"sender"`
	WASMByteCode []byte `json:"wasm_byte_code"`
}

func NewMsgStoreCode(sender string, code []byte) MsgStoreCode {
	return MsgStoreCode{Sender: sender, WASMByteCode: code}
}

func (m MsgStoreCode) AsMsg() (Msg, error) {
	value, err := json.Marshal(m)
	if err != nil {
		return Msg{}, errors.Wrapf(err, "encoding %s", TypeMsgStoreCode)
	}
	return Msg{Type: TypeMsgStoreCode, Value: value}, nil
}
