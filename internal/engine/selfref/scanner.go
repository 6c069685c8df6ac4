package selfref

import (
	"maps"
	"slices"

	"go.trai.ch/cask/internal/core/domain"
)

// RefScanner is an io.Writer that records which candidate hash parts occur in
// the stream written to it, including occurrences split across writes.
type RefScanner struct {
	candidates map[string]struct{}
	found      map[string]struct{}
	tail       []byte
}

// NewRefScanner returns a scanner looking for the given hash parts.
func NewRefScanner(hashParts []string) *RefScanner {
	s := &RefScanner{
		candidates: make(map[string]struct{}, len(hashParts)),
		found:      make(map[string]struct{}),
	}
	for _, h := range hashParts {
		if len(h) == domain.HashPartLen {
			s.candidates[h] = struct{}{}
		}
	}
	return s
}

// Write implements io.Writer.
func (s *RefScanner) Write(p []byte) (int, error) {
	if len(s.candidates) == 0 {
		return len(p), nil
	}
	data := append(s.tail, p...)
	s.search(data)

	keep := min(len(data), domain.HashPartLen-1)
	s.tail = append(s.tail[:0:0], data[len(data)-keep:]...)
	return len(p), nil
}

func (s *RefScanner) search(data []byte) {
	const n = domain.HashPartLen
	for i := 0; i+n <= len(data); {
		// A hash part is all base-32; skip past any byte that cannot belong to one.
		j := n - 1
		for j >= 0 && domain.IsBase32Char(data[i+j]) {
			j--
		}
		if j >= 0 {
			i += j + 1
			continue
		}
		if _, ok := s.candidates[string(data[i:i+n])]; ok {
			s.found[string(data[i:i+n])] = struct{}{}
		}
		i++
	}
}

// Found returns the candidates seen so far in ascending order.
func (s *RefScanner) Found() []string {
	return slices.Sorted(maps.Keys(s.found))
}
