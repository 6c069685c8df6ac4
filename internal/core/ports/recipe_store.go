package ports

import (
	"context"

	"go.trai.ch/cask/internal/core/domain"
)

// RecipeStore persists recipes under the store path of their text.
//
//go:generate go run go.uber.org/mock/mockgen -source=recipe_store.go -destination=mocks/mock_recipe_store.go -package=mocks
type RecipeStore interface {
	// ReadRecipe loads and parses the recipe at drvPath.
	// It returns domain.ErrUnknownDerivation when the store has no such recipe.
	ReadRecipe(ctx context.Context, drvPath domain.StorePath) (*domain.Derivation, error)

	// WriteRecipe serializes drv and stores it under its computed path.
	WriteRecipe(ctx context.Context, drv *domain.Derivation) (domain.StorePath, error)

	// StoreDir returns the store directory the recipes are addressed in.
	StoreDir() domain.StoreDir
}
