// Package scheduler hashes whole recipe closures with bounded parallelism.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/cask/internal/engine/modulo"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// RecipeStatus represents the progress of one recipe in a closure run.
type RecipeStatus string

const (
	// StatusPending indicates the recipe waits for its inputs.
	StatusPending RecipeStatus = "Pending"
	// StatusHashing indicates the recipe is being hashed.
	StatusHashing RecipeStatus = "Hashing"
	// StatusHashed indicates the recipe hash was computed in this run.
	StatusHashed RecipeStatus = "Hashed"
	// StatusFailed indicates hashing or visiting the recipe failed.
	StatusFailed RecipeStatus = "Failed"
	// StatusCached indicates the hash was already in the session cache.
	StatusCached RecipeStatus = "Cached"
)

// Visitor is called once per recipe, after its modulo hash is known and
// after every input recipe has been visited.
type Visitor func(ctx context.Context, drvPath domain.StorePath, drv *domain.Derivation, h modulo.DrvHash) error

// Scheduler hashes the closure of a set of recipes in dependency order.
type Scheduler struct {
	store     ports.RecipeStore
	hasher    *modulo.Hasher
	logger    ports.Logger
	telemetry ports.Telemetry

	mu           sync.RWMutex
	recipeStatus map[domain.StorePath]RecipeStatus
}

// NewScheduler creates a Scheduler reading recipes from store and memoizing
// hashes in the cache of hasher.
func NewScheduler(store ports.RecipeStore, hasher *modulo.Hasher, logger ports.Logger) *Scheduler {
	return &Scheduler{
		store:        store,
		hasher:       hasher,
		logger:       logger,
		recipeStatus: make(map[domain.StorePath]RecipeStatus),
	}
}

// WithTelemetry records one vertex per hashed recipe on t.
func (s *Scheduler) WithTelemetry(t ports.Telemetry) *Scheduler {
	s.telemetry = t
	return s
}

func (s *Scheduler) updateStatus(p domain.StorePath, status RecipeStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipeStatus[p] = status
}

// Status returns the status of drvPath in the most recent run.
func (s *Scheduler) Status(drvPath domain.StorePath) RecipeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recipeStatus[drvPath]
}

// LoadClosure reads roots and every recipe they transitively depend on into a
// validated graph. Each frontier is read with at most parallelism concurrent reads.
func (s *Scheduler) LoadClosure(ctx context.Context, roots []domain.StorePath, parallelism int) (*domain.RecipeGraph, error) {
	g := domain.NewRecipeGraph()
	seen := domain.NewStorePathSet()
	frontier := make([]domain.StorePath, 0, len(roots))
	for _, r := range roots {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			frontier = append(frontier, r)
		}
	}

	for len(frontier) > 0 {
		drvs := make([]*domain.Derivation, len(frontier))
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(max(parallelism, 1))
		for i, p := range frontier {
			eg.Go(func() error {
				drv, err := s.store.ReadRecipe(egCtx, p)
				if err != nil {
					return zerr.With(zerr.Wrap(err, "read recipe"), "drv_path", p.String())
				}
				drvs[i] = drv
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

		var next []domain.StorePath
		for i, p := range frontier {
			if err := g.AddRecipe(p, drvs[i]); err != nil {
				return nil, err
			}
			for _, dep := range slices.SortedFunc(maps.Keys(drvs[i].InputDrvs), domain.StorePath.Compare) {
				if _, ok := seen[dep]; !ok {
					seen[dep] = struct{}{}
					next = append(next, dep)
				}
			}
		}
		frontier = next
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// HashClosure hashes every recipe in the closure of roots, inputs before
// dependents, with at most parallelism recipes in flight. The first failure
// stops scheduling; recipes already in flight finish before it returns.
func (s *Scheduler) HashClosure(
	ctx context.Context,
	roots []domain.StorePath,
	parallelism int,
	visit Visitor,
) (map[domain.StorePath]modulo.DrvHash, error) {
	parallelism = max(parallelism, 1)
	g, err := s.LoadClosure(ctx, roots, parallelism)
	if err != nil {
		return nil, err
	}

	state := s.newRunState(ctx, g, parallelism, visit)
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil {
			if state.active == 0 {
				return nil, errors.Join(state.errs, state.ctx.Err())
			}
			state.handleResult(<-state.resultsCh)
			continue
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}
	if state.errs != nil {
		return nil, state.errs
	}

	if s.logger != nil {
		s.logger.Info(fmt.Sprintf("hashed %d recipes (%d cached)", g.RecipeCount(), state.cached))
	}
	return state.hashes, nil
}

type result struct {
	path   domain.StorePath
	hash   modulo.DrvHash
	cached bool
	err    error
}

type runState struct {
	graph       *domain.RecipeGraph
	inDegree    map[domain.StorePath]int
	ready       []domain.StorePath
	active      int
	resultsCh   chan result
	errs        error
	ctx         context.Context
	parallelism int
	visit       Visitor
	hashes      map[domain.StorePath]modulo.DrvHash
	cached      int
	s           *Scheduler
}

func (s *Scheduler) newRunState(ctx context.Context, g *domain.RecipeGraph, parallelism int, visit Visitor) *runState {
	inDegree := make(map[domain.StorePath]int, g.RecipeCount())
	var ready []domain.StorePath
	for p := range g.Walk() {
		s.updateStatus(p, StatusPending)
		inDegree[p] = len(g.Dependencies(p))
		if inDegree[p] == 0 {
			ready = append(ready, p)
		}
	}

	return &runState{
		graph:       g,
		inDegree:    inDegree,
		ready:       ready,
		resultsCh:   make(chan result, parallelism),
		ctx:         ctx,
		parallelism: parallelism,
		visit:       visit,
		hashes:      make(map[domain.StorePath]modulo.DrvHash, g.RecipeCount()),
		s:           s,
	}
}

func (state *runState) isDone() bool {
	return state.active == 0 && (len(state.ready) == 0 || state.errs != nil)
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.errs == nil && state.ctx.Err() == nil {
		p := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(p, StatusHashing)

		drv, _ := state.graph.Recipe(p)
		go func() {
			state.resultsCh <- state.hashRecipe(p, drv)
		}()
	}
}

func (state *runState) hashRecipe(p domain.StorePath, drv *domain.Derivation) (res result) {
	ctx := state.ctx
	if t := state.s.telemetry; t != nil {
		var vertex ports.Vertex
		ctx, vertex = t.Record(ctx, "hash "+p.String())
		defer func() {
			if res.cached {
				vertex.Cached()
			} else if res.err == nil {
				for _, name := range slices.Sorted(maps.Keys(res.hash.Hashes)) {
					_, _ = fmt.Fprintf(vertex.Stdout(), "%s %s %s\n",
						name, domain.FormatHash(res.hash.Hashes[name], domain.Base32), res.hash.Kind)
				}
			}
			vertex.Complete(res.err)
		}()
	}

	cache := state.s.hasher.Cache()
	h, cached := cache.Load(p)
	if !cached {
		var err error
		h, err = modulo.Compute(state.s.store.StoreDir(), drv, false, cache.Load)
		if err != nil {
			return result{path: p, err: err}
		}
		cache.Store(p, h)
	}
	if state.visit != nil {
		if err := state.visit(ctx, p, drv, h); err != nil {
			return result{path: p, err: err}
		}
	}
	return result{path: p, hash: h, cached: cached}
}

func (state *runState) handleResult(res result) {
	state.active--
	if res.err != nil {
		wrappedErr := zerr.With(zerr.Wrap(res.err, "recipe hashing failed"), "drv_path", res.path.String())
		state.errs = errors.Join(state.errs, wrappedErr)
		state.s.updateStatus(res.path, StatusFailed)
		return
	}

	state.hashes[res.path] = res.hash
	if res.cached {
		state.cached++
		state.s.updateStatus(res.path, StatusCached)
	} else {
		state.s.updateStatus(res.path, StatusHashed)
	}
	for _, dep := range state.graph.Dependents(res.path) {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}
