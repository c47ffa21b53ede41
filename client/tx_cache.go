package client

import (
	"github.com/pkg/errors"
	"polycry.pt/poly-go/sync"

	"github.com/pylon-protocol/deployer/encoding"
)

// StableTxCache is a concurrently safe cache for settled transactions.
// It is stable in the sense that it does not allow overwriting of entries.
type StableTxCache interface {
	// Set stores the tx info for the given hash.
	// It errors if the cache already holds a different settlement for the hash.
	Set(hash string, info *encoding.TxInfo) error

	// Get returns the tx info for the given hash and true, iff there is a cache
	// entry for that hash.
	Get(hash string) (*encoding.TxInfo, bool)
}

type txCache struct {
	cacheLock sync.Mutex
	cache     map[string]*encoding.TxInfo
}

func NewStableTxCache() StableTxCache {
	return &txCache{
		cache: make(map[string]*encoding.TxInfo),
	}
}

func (c *txCache) Get(hash string) (*encoding.TxInfo, bool) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	info, cached := c.cache[hash]
	return info, cached
}

func (c *txCache) Set(hash string, info *encoding.TxInfo) error {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	old, cached := c.cache[hash]
	if cached {
		if sameSettlement(old, info) {
			return nil
		}
		return errors.New("rewrite on constant cache")
	}
	c.cache[hash] = info
	return nil
}

func sameSettlement(a, b *encoding.TxInfo) bool {
	return a.Height == b.Height && a.Code == b.Code && a.RawLog == b.RawLog
}
