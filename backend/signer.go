package backend

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/pylon-protocol/deployer/encoding"
	"github.com/pylon-protocol/deployer/wallet"
)

type Signer interface {
	// SignTx signs the canonical bytes of the given sign document and returns
	// the amino signature carrying the signer's public key.
	SignTx(doc encoding.SignDoc) (encoding.StdSignature, error)
	// Address returns the address of the signer.
	Address() wallet.Address
}

// Account is a key able to sign raw bytes, held in memory (*wallet.Account)
// or by an external wallet (*external.Account).
type Account interface {
	Address() wallet.Address
	PubKey() *secp256k1.PublicKey
	SignData(data []byte) ([]byte, error)
}

// LocalSigner is the signer used by the backend implementation.
type LocalSigner struct {
	account Account
}

func NewSigner(account Account) *LocalSigner {
	return &LocalSigner{account: account}
}

func (s LocalSigner) SignTx(doc encoding.SignDoc) (encoding.StdSignature, error) {
	bytes, err := doc.Bytes()
	if err != nil {
		return encoding.StdSignature{}, err
	}
	sig, err := s.account.SignData(bytes)
	if err != nil {
		return encoding.StdSignature{}, err
	}
	return encoding.StdSignature{
		PubKey:    encoding.NewSecp256k1PubKey(s.account.PubKey().SerializeCompressed()),
		Signature: sig,
	}, nil
}

func (s LocalSigner) Address() wallet.Address {
	return s.account.Address()
}
