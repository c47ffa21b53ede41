package encoding

import (
	"encoding/json"
	"strconv"
)

const TypePubKeySecp256k1 = "tendermint/PubKeySecp256k1"

type PubKey struct {
	Type  string `json:"type"`
	Value []byte `json:"value"`
}

func NewSecp256k1PubKey(compressed []byte) PubKey {
	return PubKey{Type: TypePubKeySecp256k1, Value: compressed}
}

type StdSignature struct {
	PubKey    PubKey `json:"pub_key"`
	Signature []byte `json:"signature"`
}

// StdTx is the legacy amino transaction accepted by the LCD /txs endpoint.
type StdTx struct {
	Msgs       []Msg          `json:"msg"`
	Fee        Fee            `json:"fee"`
	Signatures []StdSignature `json:"signatures"`
	Memo       string         `json:"memo"`
}

// SignDoc is the document a signer commits to. Its JSON form must have
// lexicographically sorted keys, so the fields below are declared in key
// order and every nested type does the same.
type SignDoc struct {
	AccountNumber uint64
	ChainID       string
	Fee           Fee
	Memo          string
	Msgs          []Msg
	Sequence      uint64
}

type signDocJSON struct {
	AccountNumber string `json:"account_number"`
	ChainID       string `json:"chain_id"`
	Fee           Fee    `json:"fee"`
	Memo          string `json:"memo"`
	Msgs          []Msg  `json:"msgs"`
	Sequence      string `json:"sequence"`
}

// Bytes returns the canonical sign bytes.
func (d SignDoc) Bytes() ([]byte, error) {
	msgs := d.Msgs
	if msgs == nil {
		msgs = []Msg{}
	}
	return json.Marshal(signDocJSON{
		AccountNumber: strconv.FormatUint(d.AccountNumber, 10),
		ChainID:       d.ChainID,
		Fee:           d.Fee,
		Memo:          d.Memo,
		Msgs:          msgs,
		Sequence:      strconv.FormatUint(d.Sequence, 10),
	})
}

// Tx attaches signatures to the signed document.
func (d SignDoc) Tx(sigs ...StdSignature) StdTx {
	return StdTx{
		Msgs:       d.Msgs,
		Fee:        d.Fee,
		Signatures: sigs,
		Memo:       d.Memo,
	}
}
