package cas

import (
	"os"

	"go.trai.ch/cask/internal/core/domain"
)

// ReadRecipeText returns the stored text of drvPath.
// This is exported for testing purposes only.
func (s *FileStore) ReadRecipeText(drvPath domain.StorePath) (string, error) {
	data, err := os.ReadFile(s.filename(drvPath))
	return string(data), err
}

// Len returns the number of stored recipes.
// This is exported for testing purposes only.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drvs)
}
