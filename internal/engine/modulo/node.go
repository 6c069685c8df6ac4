package modulo

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/cas" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/core/ports"
)

// NodeID is the unique identifier for the modulo hasher Graft node.
const NodeID graft.ID = "engine.modulo"

func init() {
	graft.Register(graft.Node[*Hasher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{cas.NodeID},
		Run: func(ctx context.Context) (*Hasher, error) {
			store, err := graft.Dep[ports.RecipeStore](ctx)
			if err != nil {
				return nil, err
			}
			return NewHasher(store, NewCache()), nil
		},
	})
}
