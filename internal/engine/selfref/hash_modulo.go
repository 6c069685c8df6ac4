package selfref

import (
	"hash"
	"strconv"

	"go.trai.ch/cask/internal/core/domain"
)

// HashModuloWriter hashes a stream with every occurrence of a modulus erased.
// The offsets of the erased occurrences are folded into the digest, so two
// streams that differ only in where they reference themselves hash differently.
type HashModuloWriter struct {
	algo domain.HashAlgorithm
	h    hash.Hash
	rw   *Rewriter
	n    int64
}

// NewHashModuloWriter returns a writer hashing with algo modulo the given hash part.
func NewHashModuloWriter(algo domain.HashAlgorithm, modulus string) (*HashModuloWriter, error) {
	h, err := domain.NewDigest(algo)
	if err != nil {
		return nil, err
	}
	rw, err := NewRewriter(h, modulus)
	if err != nil {
		return nil, err
	}
	return &HashModuloWriter{algo: algo, h: h, rw: rw}, nil
}

// Write implements io.Writer.
func (w *HashModuloWriter) Write(p []byte) (int, error) {
	n, err := w.rw.Write(p)
	w.n += int64(n)
	return n, err
}

// Sum finishes the stream and returns its hash and the number of bytes written.
// The writer must not be used afterwards.
func (w *HashModuloWriter) Sum() (domain.Hash, int64, error) {
	if err := w.rw.Close(); err != nil {
		return domain.Hash{}, 0, err
	}
	for _, off := range w.rw.Offsets() {
		_, _ = w.h.Write([]byte("|" + strconv.FormatInt(off, 10)))
	}
	h, err := domain.HashFromDigest(w.algo, w.h.Sum(nil))
	if err != nil {
		return domain.Hash{}, 0, err
	}
	return h, w.n, nil
}

// Offsets returns the erased occurrences seen so far.
func (w *HashModuloWriter) Offsets() []int64 {
	return w.rw.Offsets()
}
