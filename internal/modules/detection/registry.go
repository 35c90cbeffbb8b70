package detection

import (
	"fmt"
	"sort"
	"sync"

	"github.com/avelara/beacon/internal/domain"
	"github.com/rs/zerolog"
)

// Registry manages all registered detectors.
type Registry struct {
	detectors map[string]Detector
	mu        sync.RWMutex
	log       zerolog.Logger
}

// NewRegistry creates an empty detector registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		detectors: make(map[string]Detector),
		log:       log.With().Str("component", "detector_registry").Logger(),
	}
}

// Register registers a detector under its name. Registering the same name
// twice replaces the previous detector.
func (r *Registry) Register(detector Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := detector.Name()
	r.detectors[name] = detector
	r.log.Debug().
		Str("name", name).
		Str("category", string(detector.Category())).
		Msg("Registered detector")
}

// Get retrieves a detector by name.
func (r *Registry) Get(name string) (Detector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	detector, ok := r.detectors[name]
	if !ok {
		return nil, fmt.Errorf("detector not found: %s", name)
	}
	return detector, nil
}

// List returns all registered detectors in name order. Deterministic ordering
// keeps batch runs and their logs reproducible.
func (r *Registry) List() []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	detectors := make([]Detector, 0, len(r.detectors))
	for _, d := range r.detectors {
		detectors = append(detectors, d)
	}
	sort.Slice(detectors, func(i, j int) bool { return detectors[i].Name() < detectors[j].Name() })
	return detectors
}

// ByCategory returns the registered detectors of one category, in name order.
// Category subsetting is a filter over the registry, not a separate path.
func (r *Registry) ByCategory(category domain.SignalCategory) []Detector {
	all := r.List()
	filtered := make([]Detector, 0, len(all))
	for _, d := range all {
		if d.Category() == category {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
