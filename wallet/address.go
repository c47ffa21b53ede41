package wallet

import (
	"bytes"
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

const (
	AddressLength = 20
	DefaultHRP    = "terra"
)

var ErrInvalidAddress = errors.New("invalid account address")

// Address is a bech32 account address: RIPEMD160(SHA256(compressed pubkey))
// under a human readable prefix.
type Address struct {
	hrp   string
	bytes [AddressLength]byte
}

func NewAddress(pubKey *secp256k1.PublicKey, hrp string) Address {
	sha := sha256.Sum256(pubKey.SerializeCompressed())
	hasher := ripemd160.New()
	hasher.Write(sha[:])
	var a Address
	a.hrp = hrp
	copy(a.bytes[:], hasher.Sum(nil))
	return a
}

func ParseAddress(s string) (Address, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return Address{}, errors.Wrapf(ErrInvalidAddress, "%v", err)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, errors.Wrapf(ErrInvalidAddress, "%v", err)
	}
	if len(raw) != AddressLength {
		return Address{}, errors.Wrapf(ErrInvalidAddress, "expected %d bytes, got %d", AddressLength, len(raw))
	}
	a := Address{hrp: hrp}
	copy(a.bytes[:], raw)
	return a, nil
}

func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes[:], 8, 5, true)
	if err != nil {
		return ""
	}
	s, err := bech32.Encode(a.hrp, conv)
	if err != nil {
		return ""
	}
	return s
}

func (a Address) Bytes() []byte {
	return a.bytes[:]
}

func (a Address) HRP() string {
	return a.hrp
}

func (a Address) Equal(b Address) bool {
	return a.hrp == b.hrp && bytes.Equal(a.bytes[:], b.bytes[:])
}
