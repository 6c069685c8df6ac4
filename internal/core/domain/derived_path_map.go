package domain

import (
	"maps"
	"slices"
)

// DerivedPathMapNode holds the value for one SingleDerivedPath and the nodes of
// outputs built from it.
type DerivedPathMapNode[V any] struct {
	Value    V
	Children map[string]*DerivedPathMapNode[V]
}

// DerivedPathMap is a trie keyed by the structure of SingleDerivedPath: first the
// innermost store path, then one output name per link of the chain. Overlapping
// chains share nodes.
type DerivedPathMap[V any] struct {
	roots map[StorePath]*DerivedPathMapNode[V]
}

// NewDerivedPathMap returns an empty map.
func NewDerivedPathMap[V any]() *DerivedPathMap[V] {
	return &DerivedPathMap[V]{roots: make(map[StorePath]*DerivedPathMapNode[V])}
}

// unroll splits a chain into its base path and the output names from the inside out.
func unroll(k SingleDerivedPath) (StorePath, []string) {
	var outputs []string
	for {
		switch v := k.(type) {
		case SingleDerivedPathBuilt:
			outputs = append(outputs, v.Output)
			k = v.DrvPath
		case SingleDerivedPathOpaque:
			slices.Reverse(outputs)
			return v.Path, outputs
		default:
			return StorePath{}, nil
		}
	}
}

// EnsureSlot returns the node for k, creating it and every ancestor as needed.
func (m *DerivedPathMap[V]) EnsureSlot(k SingleDerivedPath) *DerivedPathMapNode[V] {
	base, outputs := unroll(k)
	node, ok := m.roots[base]
	if !ok {
		node = &DerivedPathMapNode[V]{}
		m.roots[base] = node
	}
	for _, out := range outputs {
		if node.Children == nil {
			node.Children = make(map[string]*DerivedPathMapNode[V])
		}
		child, ok := node.Children[out]
		if !ok {
			child = &DerivedPathMapNode[V]{}
			node.Children[out] = child
		}
		node = child
	}
	return node
}

// FindSlot returns the node for k without creating anything.
func (m *DerivedPathMap[V]) FindSlot(k SingleDerivedPath) (*DerivedPathMapNode[V], bool) {
	base, outputs := unroll(k)
	node, ok := m.roots[base]
	if !ok {
		return nil, false
	}
	for _, out := range outputs {
		node, ok = node.Children[out]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// Len returns the number of nodes in the trie.
func (m *DerivedPathMap[V]) Len() int {
	n := 0
	m.Walk(func(SingleDerivedPath, *DerivedPathMapNode[V]) bool {
		n++
		return true
	})
	return n
}

// Walk visits every node depth-first, roots in store path order and children in
// output name order. Returning false stops the walk.
func (m *DerivedPathMap[V]) Walk(fn func(SingleDerivedPath, *DerivedPathMapNode[V]) bool) {
	type frame struct {
		key  SingleDerivedPath
		node *DerivedPathMapNode[V]
	}

	roots := slices.SortedFunc(maps.Keys(m.roots), StorePath.Compare)
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{key: SingleDerivedPathOpaque{Path: roots[i]}, node: m.roots[roots[i]]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.key, f.node) {
			return
		}
		names := slices.Sorted(maps.Keys(f.node.Children))
		for i := len(names) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				key:  SingleDerivedPathBuilt{DrvPath: f.key, Output: names[i]},
				node: f.node.Children[names[i]],
			})
		}
	}
}
