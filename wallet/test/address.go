package test

import (
	"math/rand"

	"github.com/pylon-protocol/deployer/wallet"
)

func NewRandomAddress(rng *rand.Rand) wallet.Address {
	return NewRandomAccount(rng).Address()
}
