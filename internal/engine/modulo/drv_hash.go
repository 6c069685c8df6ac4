// Package modulo computes recipe identities modulo fixed-output inputs.
package modulo

import (
	"maps"

	"go.trai.ch/cask/internal/core/domain"
)

// Kind tells whether a modulo hash can already name output paths.
type Kind uint8

const (
	// Regular hashes name output paths directly.
	Regular Kind = iota
	// Deferred hashes depend on a floating output; paths are known only after a build.
	Deferred
)

func (k Kind) String() string {
	if k == Deferred {
		return "deferred"
	}
	return "regular"
}

// DrvHash is the modulo hash of a recipe, per output name.
type DrvHash struct {
	Hashes map[string]domain.Hash
	Kind   Kind
}

// Hash returns the hash of output name.
func (h DrvHash) Hash(name string) (domain.Hash, bool) {
	v, ok := h.Hashes[name]
	return v, ok
}

func (h DrvHash) clone() DrvHash {
	return DrvHash{Hashes: maps.Clone(h.Hashes), Kind: h.Kind}
}
