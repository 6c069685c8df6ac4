package outputs

// Len returns the number of known recipes.
// This is exported for testing purposes only.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recipes)
}
