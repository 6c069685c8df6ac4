package modulo

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/cask/internal/core/domain"
)

const shardCount = 32

// Cache memoizes modulo hashes by recipe path for one session.
// It is safe for concurrent use. Recipes are immutable, so a racing second
// Store writes an identical value and the last writer wins.
type Cache struct {
	shards [shardCount]cacheShard
}

type cacheShard struct {
	mu sync.RWMutex
	m  map[domain.StorePath]DrvHash
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	for i := range c.shards {
		c.shards[i].m = make(map[domain.StorePath]DrvHash)
	}
	return c
}

func (c *Cache) shard(p domain.StorePath) *cacheShard {
	return &c.shards[xxhash.Sum64String(p.HashPart())%shardCount]
}

// Load returns the memoized hash of drvPath.
func (c *Cache) Load(drvPath domain.StorePath) (DrvHash, bool) {
	s := c.shard(drvPath)
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.m[drvPath]
	return h, ok
}

// Store memoizes h for drvPath.
func (c *Cache) Store(drvPath domain.StorePath, h DrvHash) {
	s := c.shard(drvPath)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[drvPath] = h.clone()
}

// Len returns the number of memoized recipes.
func (c *Cache) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}
