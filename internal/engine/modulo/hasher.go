package modulo

import (
	"context"
	"maps"
	"slices"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Hasher computes modulo hashes of stored recipes, memoizing them in a Cache.
// It is safe for concurrent use; concurrent requests for the same recipe
// share one computation.
type Hasher struct {
	store ports.RecipeStore
	cache *Cache
	group singleflight.Group
}

// NewHasher creates a hasher reading input recipes from store.
func NewHasher(store ports.RecipeStore, cache *Cache) *Hasher {
	if cache == nil {
		cache = NewCache()
	}
	return &Hasher{store: store, cache: cache}
}

// Cache returns the session cache.
func (h *Hasher) Cache() *Cache {
	return h.cache
}

// HashDerivationModulo returns the modulo hash of drv, which need not be stored.
// Its input recipes are read from the store.
func (h *Hasher) HashDerivationModulo(ctx context.Context, drv *domain.Derivation, mask bool) (DrvHash, error) {
	if !drv.IsFixedOutput() {
		for _, p := range slices.SortedFunc(maps.Keys(drv.InputDrvs), domain.StorePath.Compare) {
			if _, err := h.PathDerivationModulo(ctx, p); err != nil {
				return DrvHash{}, err
			}
		}
	}
	return Compute(h.store.StoreDir(), drv, mask, h.cache.Load)
}

// PathDerivationModulo returns the modulo hash of the stored recipe at drvPath.
func (h *Hasher) PathDerivationModulo(ctx context.Context, drvPath domain.StorePath) (DrvHash, error) {
	if v, ok := h.cache.Load(drvPath); ok {
		return v, nil
	}
	v, err, _ := h.group.Do(drvPath.HashPart(), func() (any, error) {
		return h.walk(ctx, drvPath)
	})
	if err != nil {
		return DrvHash{}, err
	}
	return v.(DrvHash), nil
}

type walkFrame struct {
	path domain.StorePath
	drv  *domain.Derivation
	deps []domain.StorePath
	next int
}

// walk hashes drvPath and every unhashed recipe below it with an explicit
// stack, so deep chains do not grow the goroutine stack and cycles are
// reported instead of looping.
func (h *Hasher) walk(ctx context.Context, root domain.StorePath) (DrvHash, error) {
	dir := h.store.StoreDir()
	var stack []*walkFrame
	onStack := make(map[domain.StorePath]bool)

	push := func(p domain.StorePath) error {
		drv, err := h.store.ReadRecipe(ctx, p)
		if err != nil {
			return err
		}
		f := &walkFrame{path: p, drv: drv}
		if !drv.IsFixedOutput() {
			f.deps = slices.SortedFunc(maps.Keys(drv.InputDrvs), domain.StorePath.Compare)
		}
		stack = append(stack, f)
		onStack[p] = true
		return nil
	}

	if err := push(root); err != nil {
		return DrvHash{}, err
	}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return DrvHash{}, zerr.Wrap(err, "modulo hashing cancelled")
		}
		top := stack[len(stack)-1]
		if top.next < len(top.deps) {
			dep := top.deps[top.next]
			top.next++
			if _, ok := h.cache.Load(dep); ok {
				continue
			}
			if onStack[dep] {
				path := make([]domain.StorePath, len(stack))
				for i, f := range stack {
					path[i] = f.path
				}
				return DrvHash{}, domain.CycleError(path, dep)
			}
			if err := push(dep); err != nil {
				return DrvHash{}, err
			}
			continue
		}

		v, err := Compute(dir, top.drv, false, h.cache.Load)
		if err != nil {
			return DrvHash{}, zerr.With(zerr.Wrap(err, "modulo hash"), "drv_path", top.path.String())
		}
		h.cache.Store(top.path, v)
		stack = stack[:len(stack)-1]
		delete(onStack, top.path)
	}

	v, _ := h.cache.Load(root)
	return v, nil
}
