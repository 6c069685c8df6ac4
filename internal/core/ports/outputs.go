package ports

import (
	"context"

	"go.trai.ch/cask/internal/core/domain"
)

// OutputMapProvider answers which outputs of a recipe are already built.
//
//go:generate go run go.uber.org/mock/mockgen -source=outputs.go -destination=mocks/mock_outputs.go -package=mocks
type OutputMapProvider interface {
	// QueryOutputs returns every declared output of drvPath. An output that is
	// declared but not built maps to nil. An unknown recipe is
	// domain.ErrUnknownDerivation.
	QueryOutputs(ctx context.Context, drvPath domain.StorePath) (map[string]*domain.StorePath, error)
}

// OutputRegistry is an OutputMapProvider that records declarations and builds.
type OutputRegistry interface {
	OutputMapProvider

	// Declare makes drvPath known with the given outputs, none of them built.
	// Declaring a known recipe again adds missing names and keeps existing bindings.
	Declare(ctx context.Context, drvPath domain.StorePath, outputs []string) error

	// Register binds output of drvPath to a built path.
	Register(ctx context.Context, drvPath domain.StorePath, output string, path domain.StorePath) error
}
