package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/config"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/outputs" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID, outputs.NodeID},
		Run: func(ctx context.Context) (*Resolver, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			registry, err := graft.Dep[ports.OutputRegistry](ctx)
			if err != nil {
				return nil, err
			}
			return NewResolver(registry, cfg.StoreDir), nil
		},
	})
}
