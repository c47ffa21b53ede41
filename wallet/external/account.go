package external

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/pylon-protocol/deployer/wallet"
)

var ErrBadSignature = errors.New("external signer returned an invalid signature")

type Account struct {
	client Client
	path   wallet.HDPath
	pub    *secp256k1.PublicKey
	hrp    string
}

func (a Account) Address() wallet.Address {
	return wallet.NewAddress(a.pub, a.hrp)
}

func (a Account) PubKey() *secp256k1.PublicKey {
	return a.pub
}

// SignData asks the client for a signature and checks it against the
// account's public key before returning it.
func (a Account) SignData(data []byte) ([]byte, error) {
	sig, err := a.client.SignData(a.path, data)
	if err != nil {
		return nil, errors.Wrapf(err, "signing with %s", a.path)
	}
	ok, err := wallet.VerifySignature(data, sig, a.pub)
	if err != nil || !ok {
		return nil, ErrBadSignature
	}
	return sig, nil
}
