package scheduler

import (
	"maps"

	"go.trai.ch/cask/internal/core/domain"
)

// GetRecipeStatusMap returns a copy of the internal recipe status map.
// This is exported for testing purposes only.
func (s *Scheduler) GetRecipeStatusMap() map[domain.StorePath]RecipeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.recipeStatus)
}
