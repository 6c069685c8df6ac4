package modulo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

const storeDir = domain.DefaultStoreDir

var _ ports.RecipeStore = (*recipeMap)(nil)

// recipeMap is a minimal in-memory recipe store.
type recipeMap struct {
	mu    sync.Mutex
	drvs  map[domain.StorePath]*domain.Derivation
	reads int
}

func newRecipeMap() *recipeMap {
	return &recipeMap{drvs: make(map[domain.StorePath]*domain.Derivation)}
}

func (m *recipeMap) ReadRecipe(_ context.Context, p domain.StorePath) (*domain.Derivation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	drv, ok := m.drvs[p]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownDerivation, "recipe not in store"), "drv_path", p.String())
	}
	return drv.Clone(), nil
}

func (m *recipeMap) WriteRecipe(_ context.Context, drv *domain.Derivation) (domain.StorePath, error) {
	p, err := domain.DerivationPath(storeDir, drv)
	if err != nil {
		return domain.StorePath{}, err
	}
	m.put(p, drv)
	return p, nil
}

func (m *recipeMap) put(p domain.StorePath, drv *domain.Derivation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drvs[p] = drv.Clone()
}

func (m *recipeMap) StoreDir() domain.StoreDir { return storeDir }

func mustParsePath(t *testing.T, base string) domain.StorePath {
	t.Helper()
	p, err := domain.ParseStorePathBase(base)
	require.NoError(t, err)
	return p
}
