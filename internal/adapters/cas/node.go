package cas

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/config" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/cask/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
)

// NodeID is the unique identifier for the recipe store Graft node.
const NodeID graft.ID = "adapter.recipe_store"

// RecipesDir is the directory under the state directory holding recipe files.
const RecipesDir = "recipes"

func init() {
	graft.Register(graft.Node[ports.RecipeStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ConfigNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.RecipeStore, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFileStore(filepath.Join(cfg.StateDir, RecipesDir), cfg.StoreDir, cfg.RecipeCacheSize, log)
		},
	})
}
