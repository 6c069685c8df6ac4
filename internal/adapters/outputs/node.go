package outputs

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/config"
	"go.trai.ch/cask/internal/adapters/logger"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
)

// NodeID is the unique identifier for the output registry Graft node.
const NodeID graft.ID = "adapter.output_registry"

func init() {
	graft.Register(graft.Node[ports.OutputRegistry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.OutputRegistry, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRegistry(filepath.Join(cfg.StateDir, RegistryFile), log)
		},
	})
}
