package marker

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/saviobatista/telemetry-map/internal/types"
)

// ErrUnknownMarker is returned when moving a marker that was never placed
var ErrUnknownMarker = errors.New("unknown marker")

// Set holds the placed markers by name
type Set struct {
	mu      sync.RWMutex
	catalog *Catalog
	markers map[string]*Marker
}

// NewSet creates an empty set resolving icons from catalog
func NewSet(catalog *Catalog) *Set {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Set{catalog: catalog, markers: make(map[string]*Marker)}
}

// Catalog returns the icon catalog markers are resolved against
func (s *Set) Catalog() *Catalog {
	return s.catalog
}

// Place adds a marker, replacing any marker with the same name
func (s *Set) Place(cfg types.MarkerConfig) *Marker {
	m := New(cfg, s.catalog)
	s.mu.Lock()
	s.markers[cfg.Name] = m
	s.mu.Unlock()
	return m
}

// Get returns the marker called name
func (s *Set) Get(name string) (*Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markers[name]
	return m, ok
}

// Move updates the position of a placed marker
func (s *Set) Move(name string, lon, lat float64) (*Marker, error) {
	m, ok := s.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMarker, name)
	}
	m.UpdatePosition(lon, lat)
	return m, nil
}

// Delete removes a marker and reports whether it existed
func (s *Set) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.markers[name]
	delete(s.markers, name)
	return ok
}

// Reset replaces every marker with cfgs and returns the names that were dropped
func (s *Set) Reset(cfgs []types.MarkerConfig) []string {
	next := make(map[string]*Marker, len(cfgs))
	for _, cfg := range cfgs {
		next[cfg.Name] = New(cfg, s.catalog)
	}

	s.mu.Lock()
	var dropped []string
	for name := range s.markers {
		if _, ok := next[name]; !ok {
			dropped = append(dropped, name)
		}
	}
	s.markers = next
	s.mu.Unlock()

	sort.Strings(dropped)
	return dropped
}

// Names returns the placed marker names in sorted order
func (s *Set) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.markers))
	for name := range s.markers {
		names = append(names, name)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}
