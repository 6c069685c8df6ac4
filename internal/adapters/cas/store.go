// Package cas implements the recipe store: recipe texts addressed by the
// store path of their own content.
package cas

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// FileStore implements ports.RecipeStore with one file per recipe, named
// after the base name of its store path. Parsed recipes are kept in an LRU.
type FileStore struct {
	root   string
	dir    domain.StoreDir
	cache  *lru.Cache[domain.StorePath, *domain.Derivation]
	logger ports.Logger
}

// NewFileStore creates a store keeping recipe files under root.
func NewFileStore(root string, dir domain.StoreDir, cacheSize int, logger ports.Logger) (*FileStore, error) {
	if cacheSize <= 0 {
		cacheSize = domain.DefaultRecipeCacheSize
	}
	cache, err := lru.New[domain.StorePath, *domain.Derivation](cacheSize)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create recipe cache")
	}
	return &FileStore{
		root:   filepath.Clean(root),
		dir:    dir,
		cache:  cache,
		logger: logger,
	}, nil
}

// StoreDir returns the store directory recipes are addressed in.
func (s *FileStore) StoreDir() domain.StoreDir {
	return s.dir
}

// ReadRecipe loads the recipe at drvPath and checks that its text still
// hashes to drvPath.
func (s *FileStore) ReadRecipe(_ context.Context, drvPath domain.StorePath) (*domain.Derivation, error) {
	if !drvPath.IsDerivation() {
		return nil, zerr.With(zerr.Wrap(domain.ErrNotADerivation, "not a recipe path"), "drv_path", drvPath.String())
	}
	if drv, ok := s.cache.Get(drvPath); ok {
		return drv.Clone(), nil
	}

	//nolint:gosec // Path is built from a validated store path base name
	data, err := os.ReadFile(s.filename(drvPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnknownDerivation, "recipe not in store"), "drv_path", drvPath.String())
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreReadFailed, err.Error()), "drv_path", drvPath.String())
	}

	drv, err := domain.ParseDerivation(s.dir, string(data), drvPath.DerivationName())
	if err != nil {
		return nil, zerr.With(err, "drv_path", drvPath.String())
	}
	actual, err := domain.DerivationPath(s.dir, drv)
	if err != nil {
		return nil, err
	}
	if actual != drvPath {
		return nil, zerr.With(
			zerr.With(zerr.Wrap(domain.ErrInvalidDerivation, "recipe text does not match its path"), "drv_path", drvPath.String()),
			"actual", actual.String(),
		)
	}

	s.cache.Add(drvPath, drv)
	return drv.Clone(), nil
}

// WriteRecipe validates drv, writes its text atomically and returns its path.
// Writing an existing recipe is a no-op.
func (s *FileStore) WriteRecipe(_ context.Context, drv *domain.Derivation) (domain.StorePath, error) {
	if err := drv.Validate(); err != nil {
		return domain.StorePath{}, err
	}
	text, err := drv.Unparse(s.dir, false)
	if err != nil {
		return domain.StorePath{}, err
	}
	p, err := s.dir.ComputeStorePathForText(drv.Name+domain.DerivationExt, text, drv.References())
	if err != nil {
		return domain.StorePath{}, err
	}

	filename := s.filename(p)
	if _, err := os.Stat(filename); err == nil {
		return p, nil
	}
	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return domain.StorePath{}, zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "dir", s.root)
	}
	if err := renameio.WriteFile(filename, []byte(text), filePerm); err != nil {
		return domain.StorePath{}, zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "drv_path", p.String())
	}

	s.cache.Add(p, drv.Clone())
	if s.logger != nil {
		s.logger.Info("wrote recipe " + s.dir.Print(p))
	}
	return p, nil
}

func (s *FileStore) filename(p domain.StorePath) string {
	return filepath.Join(s.root, p.BaseName())
}
