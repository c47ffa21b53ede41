package test

import (
	"math/rand"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pylon-protocol/deployer/wallet"
)

// NewRandomAccount returns an account whose key is drawn from rng, so that
// seeded tests get reproducible addresses.
func NewRandomAccount(rng *rand.Rand) *wallet.Account {
	var buf [32]byte
	rng.Read(buf[:])
	// A zero or out-of-range scalar is reduced by the library; force a non-zero key.
	buf[0] |= 0x01
	return wallet.NewAccountFromKey(secp256k1.PrivKeyFromBytes(buf[:]), wallet.DefaultHRP)
}
