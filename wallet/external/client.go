package external

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/pylon-protocol/deployer/wallet"
)

// Client is a key store outside this process, such as a hardware wallet or a
// signing daemon. Keys are addressed by their derivation path.
type Client interface {
	// PubKey returns the public key at path.
	PubKey(path wallet.HDPath) (*secp256k1.PublicKey, error)
	// SignData signs the SHA-256 digest of data with the key at path and
	// returns the 64 byte r||s signature.
	SignData(path wallet.HDPath, data []byte) ([]byte, error)
}
