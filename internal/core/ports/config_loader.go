package ports

import "go.trai.ch/cask/internal/core/domain"

// ConfigLoader defines the interface for loading the cask configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration for the given working directory.
	// A missing file yields the defaults.
	Load(cwd string) (*domain.Config, error)
}
