// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/cask/internal/adapters/cas"
	_ "go.trai.ch/cask/internal/adapters/config"
	_ "go.trai.ch/cask/internal/adapters/fs"
	_ "go.trai.ch/cask/internal/adapters/logger"
	_ "go.trai.ch/cask/internal/adapters/outputs"
	_ "go.trai.ch/cask/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/cask/internal/app"
	_ "go.trai.ch/cask/internal/engine/modulo"
	_ "go.trai.ch/cask/internal/engine/resolver"
	_ "go.trai.ch/cask/internal/engine/scheduler"
)
