package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/cask/internal/engine/modulo"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cas.NodeID,
			modulo.NodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			store, err := graft.Dep[ports.RecipeStore](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[*modulo.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(store, hasher, log).WithTelemetry(tel), nil
		},
	})
}
