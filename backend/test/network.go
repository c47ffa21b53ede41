package test

import (
	"fmt"
	"math/rand"

	"github.com/pylon-protocol/deployer/backend"
	"github.com/pylon-protocol/deployer/encoding"
)

type NetworkOpt func(*backend.Network)

func NewRandomNetwork(rng *rand.Rand, opts ...NetworkOpt) backend.Network {
	n := backend.Network{
		Name:          fmt.Sprintf("net%d", rng.Intn(1000)),
		URL:           fmt.Sprintf("http://127.0.0.1:%d", 1024+rng.Intn(60000)),
		ChainID:       fmt.Sprintf("chain-%d", rng.Intn(1000)),
		HRP:           "terra",
		GasPrices:     fmt.Sprintf("0.%duusd", 1+rng.Intn(99)),
		FeeDenoms:     []string{backend.DefaultFeeDenom},
		GasAdjustment: backend.DefaultGasAdjustment,
		Gas:           uint64(100000 + rng.Intn(1000000)),
		BroadcastMode: encoding.BroadcastBlock,
		Timeout:       backend.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

func WithURL(url string) NetworkOpt {
	return func(n *backend.Network) {
		n.URL = url
	}
}

func WithChainID(id string) NetworkOpt {
	return func(n *backend.Network) {
		n.ChainID = id
	}
}

func WithGas(gas uint64) NetworkOpt {
	return func(n *backend.Network) {
		n.Gas = gas
	}
}

func WithGasPrices(prices string) NetworkOpt {
	return func(n *backend.Network) {
		n.GasPrices = prices
	}
}
