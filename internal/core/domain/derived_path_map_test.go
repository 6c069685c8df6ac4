package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/core/domain"
)

func TestDerivedPathMap_SharesPrefixes(t *testing.T) {
	t.Parallel()

	m := domain.NewDerivedPathMap[int]()
	dep := domain.SingleDerivedPathOpaque{Path: mustParsePath(t, depDrv)}
	out := domain.SingleDerivedPathBuilt{DrvPath: dep, Output: "out"}
	outBin := domain.SingleDerivedPathBuilt{DrvPath: out, Output: "bin"}
	outLib := domain.SingleDerivedPathBuilt{DrvPath: out, Output: "lib"}

	m.EnsureSlot(outBin).Value = 1
	m.EnsureSlot(outLib).Value = 2
	m.EnsureSlot(out).Value += 10

	assert.Equal(t, 4, m.Len(), "root, out, out!bin and out!lib")

	node, ok := m.FindSlot(outBin)
	require.True(t, ok)
	assert.Equal(t, 1, node.Value)

	node, ok = m.FindSlot(out)
	require.True(t, ok)
	assert.Equal(t, 10, node.Value)
	assert.Len(t, node.Children, 2)

	_, ok = m.FindSlot(domain.SingleDerivedPathBuilt{DrvPath: dep, Output: "dev"})
	assert.False(t, ok)
	assert.Equal(t, 4, m.Len(), "FindSlot must not create nodes")
}

func TestDerivedPathMap_WalkOrder(t *testing.T) {
	t.Parallel()

	m := domain.NewDerivedPathMap[string]()
	a := domain.SingleDerivedPathOpaque{Path: mustParsePath(t, "5824psh4k4mlx1hxqawapbidy2g3l2dc-a.drv")}
	b := domain.SingleDerivedPathOpaque{Path: mustParsePath(t, "x8w05bc8gw6nhdf9gs7p64vc9gd9w96f-b.drv")}

	m.EnsureSlot(domain.SingleDerivedPathBuilt{DrvPath: b, Output: "out"})
	m.EnsureSlot(domain.SingleDerivedPathBuilt{DrvPath: a, Output: "z"})
	m.EnsureSlot(domain.SingleDerivedPathBuilt{DrvPath: a, Output: "b"})

	var visited []string
	m.Walk(func(k domain.SingleDerivedPath, _ *domain.DerivedPathMapNode[string]) bool {
		visited = append(visited, k.Render(storeDir))
		return true
	})
	assert.Equal(t, []string{
		"/nix/store/5824psh4k4mlx1hxqawapbidy2g3l2dc-a.drv",
		"/nix/store/5824psh4k4mlx1hxqawapbidy2g3l2dc-a.drv!b",
		"/nix/store/5824psh4k4mlx1hxqawapbidy2g3l2dc-a.drv!z",
		"/nix/store/x8w05bc8gw6nhdf9gs7p64vc9gd9w96f-b.drv",
		"/nix/store/x8w05bc8gw6nhdf9gs7p64vc9gd9w96f-b.drv!out",
	}, visited)

	count := 0
	m.Walk(func(domain.SingleDerivedPath, *domain.DerivedPathMapNode[string]) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}
