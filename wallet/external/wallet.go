package external

import (
	"github.com/pylon-protocol/deployer/wallet"
)

type Wallet struct {
	client Client
	hrp    string
}

func NewWallet(client Client, hrp string) *Wallet {
	if hrp == "" {
		hrp = wallet.DefaultHRP
	}
	return &Wallet{client: client, hrp: hrp}
}

// Unlock returns the account at path. The key never leaves the client.
func (w Wallet) Unlock(path wallet.HDPath) (*Account, error) {
	pub, err := w.client.PubKey(path)
	if err != nil {
		return nil, err
	}
	return &Account{client: w.client, path: path, pub: pub, hrp: w.hrp}, nil
}
