package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/cask/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/cask/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/cask/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/cask/internal/adapters/outputs"   //nolint:depguard // Wired in app layer
	"go.trai.ch/cask/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/cask/internal/engine/modulo"
	"go.trai.ch/cask/internal/engine/resolver"
	"go.trai.ch/cask/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// jsonLogger is implemented by loggers that can switch to JSON output.
type jsonLogger interface {
	SetJSON(enable bool)
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.ConfigNodeID,
			cas.NodeID,
			modulo.NodeID,
			scheduler.NodeID,
			resolver.NodeID,
			outputs.NodeID,
			fs.IngestorNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.ConfigNodeID,
			telemetry.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.RecipeStore](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[*modulo.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	res, err := graft.Dep[*resolver.Resolver](ctx)
	if err != nil {
		return nil, err
	}

	registry, err := graft.Dep[ports.OutputRegistry](ctx)
	if err != nil {
		return nil, err
	}

	ingestor, err := graft.Dep[ports.Ingestor](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(cfg, store, hasher, sched, res, registry, ingestor, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	if jl, ok := log.(jsonLogger); ok && cfg.LogFormat == domain.LogFormatJSON {
		jl.SetJSON(true)
	}

	return NewComponents(app, log, cfg, tel), nil
}
