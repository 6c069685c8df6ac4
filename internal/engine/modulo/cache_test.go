package modulo_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/engine/modulo"
)

func TestCache(t *testing.T) {
	t.Parallel()

	c := modulo.NewCache()
	p := mustParsePath(t, "x8w05bc8gw6nhdf9gs7p64vc9gd9w96f-dep.drv")

	_, ok := c.Load(p)
	assert.False(t, ok)

	hashes := map[string]domain.Hash{"out": domain.HashString("a")}
	c.Store(p, modulo.DrvHash{Hashes: hashes, Kind: modulo.Deferred})
	hashes["out"] = domain.HashString("b")

	got, ok := c.Load(p)
	require.True(t, ok)
	assert.Equal(t, modulo.Deferred, got.Kind)
	h, _ := got.Hash("out")
	assert.True(t, domain.HashEqual(domain.HashString("a"), h), "stored value must not alias the caller's map")
	assert.Equal(t, 1, c.Len())
}

func TestCache_ConcurrentStores(t *testing.T) {
	t.Parallel()

	c := modulo.NewCache()
	paths := []string{
		"5824psh4k4mlx1hxqawapbidy2g3l2dc-a.drv",
		"x8w05bc8gw6nhdf9gs7p64vc9gd9w96f-b.drv",
		"3l48w6inh026dicjrjxqx40nznqc9n7h-c.drv",
		"d42al3f1j6yyfy5mvh1isdxapp1wi6ir-d.drv",
	}

	var wg sync.WaitGroup
	for range 8 {
		for _, base := range paths {
			p := mustParsePath(t, base)
			wg.Go(func() {
				c.Store(p, modulo.DrvHash{Hashes: map[string]domain.Hash{"out": domain.HashString(base)}})
				_, _ = c.Load(p)
			})
		}
	}
	wg.Wait()

	assert.Equal(t, len(paths), c.Len())
}
