package wallet

import (
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Account is a secp256k1 key controlling a single chain account. The account
// address is derived from the compressed public key.
type Account struct {
	key *secp256k1.PrivateKey
	hrp string
}

func (a Account) Address() Address {
	return NewAddress(a.key.PubKey(), a.hrp)
}

func (a Account) PubKey() *secp256k1.PublicKey {
	return a.key.PubKey()
}

// SignData signs the SHA-256 digest of data and returns the 64 byte r||s
// signature expected by amino StdSignature.
func (a Account) SignData(data []byte) ([]byte, error) {
	hash := sha256.Sum256(data)
	return signCompact(a.key, hash[:])
}

func NewAccount() (*Account, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &Account{key: key, hrp: DefaultHRP}, nil
}

func NewAccountFromKey(key *secp256k1.PrivateKey, hrp string) *Account {
	if hrp == "" {
		hrp = DefaultHRP
	}
	return &Account{key: key, hrp: hrp}
}
