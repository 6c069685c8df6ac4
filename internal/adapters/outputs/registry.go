// Package outputs records which outputs of a recipe have been built, and where.
package outputs

import (
	"context"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/renameio"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

// RegistryFile is the name of the registry file inside the state directory.
const RegistryFile = "outputs.cbor"

// Registry implements ports.OutputRegistry. With a non-empty path every change
// is persisted atomically as deterministic CBOR.
type Registry struct {
	mu      sync.RWMutex
	path    string
	recipes map[string]map[string]string
	logger  ports.Logger
}

var _ ports.OutputRegistry = (*Registry)(nil)

// NewRegistry loads the registry at path. A missing file is an empty registry.
// An empty path keeps the registry in memory only.
func NewRegistry(path string, logger ports.Logger) (*Registry, error) {
	r := &Registry{
		path:    path,
		recipes: make(map[string]map[string]string),
		logger:  logger,
	}
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrRegistryReadFailed, err.Error()), "path", path)
	}

	f, err := decode(data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrRegistryReadFailed, err.Error()), "path", path)
	}
	if f.Version != registryVersion {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrRegistryReadFailed, "unsupported registry version"), "path", path), "version", f.Version)
	}
	for drv, outs := range f.Recipes {
		if err := checkEntry(drv, outs); err != nil {
			return nil, zerr.With(err, "path", path)
		}
		r.recipes[drv] = maps.Clone(outs)
	}
	return r, nil
}

func checkEntry(drv string, outs map[string]string) error {
	p, err := domain.ParseStorePathBase(drv)
	if err != nil || !p.IsDerivation() {
		return zerr.With(zerr.Wrap(domain.ErrRegistryReadFailed, "corrupt recipe key"), "drv_path", drv)
	}
	for name, out := range outs {
		if out == "" {
			continue
		}
		if _, err := domain.ParseStorePathBase(out); err != nil {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrRegistryReadFailed, "corrupt output path"), "drv_path", drv), "output", name)
		}
	}
	return nil
}

// QueryOutputs returns every declared output of drvPath; unbuilt outputs map to nil.
func (r *Registry) QueryOutputs(_ context.Context, drvPath domain.StorePath) (map[string]*domain.StorePath, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	outs, ok := r.recipes[drvPath.BaseName()]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownDerivation, "no registered outputs"), "drv_path", drvPath.String())
	}

	res := make(map[string]*domain.StorePath, len(outs))
	for name, base := range outs {
		if base == "" {
			res[name] = nil
			continue
		}
		p, err := domain.ParseStorePathBase(base)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "drv_path", drvPath.String()), "output", name)
		}
		res[name] = &p
	}
	return res, nil
}

// Declare makes drvPath known with outputs. Existing bindings are kept.
func (r *Registry) Declare(ctx context.Context, drvPath domain.StorePath, outputs []string) error {
	if !drvPath.IsDerivation() {
		return zerr.With(zerr.Wrap(domain.ErrNotADerivation, "declare outputs"), "drv_path", drvPath.String())
	}
	if err := ctx.Err(); err != nil {
		return zerr.Wrap(err, "declare outputs cancelled")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := drvPath.BaseName()
	prev, known := r.recipes[key]
	outs := maps.Clone(prev)
	if outs == nil {
		outs = make(map[string]string, len(outputs))
	}
	changed := !known
	for _, name := range outputs {
		if _, exists := outs[name]; !exists {
			outs[name] = ""
			changed = true
		}
	}
	if !changed {
		return nil
	}

	r.recipes[key] = outs
	if err := r.persistLocked(); err != nil {
		if known {
			r.recipes[key] = prev
		} else {
			delete(r.recipes, key)
		}
		return err
	}
	return nil
}

// Register binds output of drvPath to path. The output must have been declared.
func (r *Registry) Register(ctx context.Context, drvPath domain.StorePath, output string, path domain.StorePath) error {
	if err := ctx.Err(); err != nil {
		return zerr.Wrap(err, "register output cancelled")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	outs, ok := r.recipes[drvPath.BaseName()]
	if !ok {
		return zerr.With(zerr.Wrap(domain.ErrUnknownDerivation, "register output"), "drv_path", drvPath.String())
	}
	prev, declared := outs[output]
	if !declared {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrNoSuchOutput, "register output"), "drv_path", drvPath.String()), "output", output)
	}
	if prev == path.BaseName() {
		return nil
	}

	outs[output] = path.BaseName()
	if err := r.persistLocked(); err != nil {
		outs[output] = prev
		return err
	}
	return nil
}

// persistLocked writes the registry file. Callers hold mu.
func (r *Registry) persistLocked() error {
	if r.path == "" {
		return nil
	}

	data, err := encode(&registryFile{Version: registryVersion, Recipes: r.recipes})
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrRegistryWriteFailed, err.Error()), "path", r.path)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrRegistryWriteFailed, err.Error()), "path", r.path)
	}
	if err := renameio.WriteFile(r.path, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrRegistryWriteFailed, err.Error()), "path", r.path)
	}
	if r.logger != nil {
		r.logger.Info("persisted output registry (" + strconv.Itoa(len(r.recipes)) + " recipes)")
	}
	return nil
}
