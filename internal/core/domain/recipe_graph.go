package domain

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// RecipeGraph is the input-recipe DAG of a set of derivations, keyed by recipe path.
type RecipeGraph struct {
	recipes        map[StorePath]*Derivation
	dependents     map[StorePath][]StorePath
	executionOrder []StorePath
}

// NewRecipeGraph creates an empty RecipeGraph.
func NewRecipeGraph() *RecipeGraph {
	return &RecipeGraph{
		recipes:    make(map[StorePath]*Derivation),
		dependents: make(map[StorePath][]StorePath),
	}
}

// AddRecipe adds a recipe under its path.
// It returns an error if the path is already present.
func (g *RecipeGraph) AddRecipe(path StorePath, drv *Derivation) error {
	if _, exists := g.recipes[path]; exists {
		return zerr.With(zerr.Wrap(ErrDuplicateRecipe, "add recipe"), "drv_path", path.String())
	}
	g.recipes[path] = drv
	g.executionOrder = nil
	return nil
}

// Recipe returns the recipe stored under path.
func (g *RecipeGraph) Recipe(path StorePath) (*Derivation, bool) {
	drv, ok := g.recipes[path]
	return drv, ok
}

// RecipeCount returns the number of recipes in the graph.
func (g *RecipeGraph) RecipeCount() int {
	return len(g.recipes)
}

// Dependencies returns the input recipes of path in sorted order.
func (g *RecipeGraph) Dependencies(path StorePath) []StorePath {
	drv, ok := g.recipes[path]
	if !ok {
		return nil
	}
	return slices.SortedFunc(maps.Keys(drv.InputDrvs), StorePath.Compare)
}

// Dependents returns the recipes that list path as an input. Valid after Validate.
func (g *RecipeGraph) Dependents(path StorePath) []StorePath {
	return g.dependents[path]
}

// Validate checks that every input recipe is present and that there are no cycles,
// using an iterative depth-first topological sort. On success the execution order
// (inputs before dependents) is available through Walk.
func (g *RecipeGraph) Validate() error {
	const (
		unvisited = iota
		visiting
		visited
	)

	type frame struct {
		path StorePath
		deps []StorePath
		next int
	}

	state := make(map[StorePath]int, len(g.recipes))
	order := make([]StorePath, 0, len(g.recipes))
	dependents := make(map[StorePath][]StorePath, len(g.recipes))

	for _, root := range slices.SortedFunc(maps.Keys(g.recipes), StorePath.Compare) {
		if state[root] != unvisited {
			continue
		}
		stack := []frame{{path: root, deps: g.Dependencies(root)}}
		state[root] = visiting

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.deps) {
				state[top.path] = visited
				order = append(order, top.path)
				stack = stack[:len(stack)-1]
				continue
			}

			dep := top.deps[top.next]
			top.next++
			dependents[dep] = append(dependents[dep], top.path)

			if _, ok := g.recipes[dep]; !ok {
				return zerr.With(
					zerr.With(zerr.Wrap(ErrRecipeNotFound, "missing input recipe"), "drv_path", dep.String()),
					"required_by", top.path.String(),
				)
			}
			switch state[dep] {
			case visiting:
				path := make([]StorePath, 0, len(stack))
				for _, f := range stack {
					path = append(path, f.path)
				}
				return CycleError(path, dep)
			case unvisited:
				state[dep] = visiting
				stack = append(stack, frame{path: dep, deps: g.Dependencies(dep)})
			}
		}
	}

	g.executionOrder = order
	g.dependents = dependents
	return nil
}

// CycleError constructs an error with cycle path metadata for a chain of
// recipe paths that leads back to dep.
func CycleError(path []StorePath, dep StorePath) error {
	return zerr.With(zerr.Wrap(ErrCyclicDependency, "input recipes form a cycle"), "cycle", formatCycle(path, dep))
}

func formatCycle(path []StorePath, dep StorePath) string {
	start := slices.Index(path, dep)
	if start < 0 {
		start = 0
	}
	parts := make([]string, 0, len(path)-start+1)
	for _, p := range path[start:] {
		parts = append(parts, p.String())
	}
	parts = append(parts, dep.String())
	return strings.Join(parts, " -> ")
}

// Walk returns an iterator that yields recipe paths in execution order.
// It assumes Validate() has been called and returned nil.
func (g *RecipeGraph) Walk() iter.Seq2[StorePath, *Derivation] {
	return func(yield func(StorePath, *Derivation) bool) {
		for _, p := range g.executionOrder {
			if !yield(p, g.recipes[p]) {
				return
			}
		}
	}
}
