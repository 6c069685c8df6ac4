package cas

import (
	"context"
	"sync"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/zerr"
)

// MemoryStore implements ports.RecipeStore in memory.
type MemoryStore struct {
	dir  domain.StoreDir
	mu   sync.RWMutex
	drvs map[domain.StorePath]*domain.Derivation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(dir domain.StoreDir) *MemoryStore {
	return &MemoryStore{dir: dir, drvs: make(map[domain.StorePath]*domain.Derivation)}
}

// StoreDir returns the store directory recipes are addressed in.
func (s *MemoryStore) StoreDir() domain.StoreDir {
	return s.dir
}

// ReadRecipe returns a copy of the recipe at drvPath.
func (s *MemoryStore) ReadRecipe(_ context.Context, drvPath domain.StorePath) (*domain.Derivation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drv, ok := s.drvs[drvPath]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownDerivation, "recipe not in store"), "drv_path", drvPath.String())
	}
	return drv.Clone(), nil
}

// WriteRecipe validates and stores a copy of drv.
func (s *MemoryStore) WriteRecipe(_ context.Context, drv *domain.Derivation) (domain.StorePath, error) {
	if err := drv.Validate(); err != nil {
		return domain.StorePath{}, err
	}
	p, err := domain.DerivationPath(s.dir, drv)
	if err != nil {
		return domain.StorePath{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drvs[p] = drv.Clone()
	return p, nil
}
