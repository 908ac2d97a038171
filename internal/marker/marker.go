package marker

import (
	"sync"

	"github.com/saviobatista/telemetry-map/internal/geo"
	"github.com/saviobatista/telemetry-map/internal/types"
)

// Label styling shared by every marker
const (
	LabelFont    = "bold 12px sans-serif"
	LabelOffsetY = 24
)

// Marker is a named static point. The name is fixed at creation; the position can move.
type Marker struct {
	mu       sync.RWMutex
	name     string
	icon     string
	color    string
	iconSrc  string
	label    bool
	lon, lat float64
}

// New builds a marker from cfg. An icon id missing from catalog leaves the marker without an
// icon instead of failing; check HasIcon.
func New(cfg types.MarkerConfig, catalog *Catalog) *Marker {
	m := &Marker{
		name:  cfg.Name,
		icon:  cfg.Icon,
		color: cfg.Color,
		label: cfg.LabelVisible(),
		lon:   cfg.Lon,
		lat:   cfg.Lat,
	}
	if catalog != nil {
		m.iconSrc, _ = catalog.IconDataURL(cfg.Icon, cfg.Color)
	}
	return m
}

// Name returns the marker's identity
func (m *Marker) Name() string {
	return m.name
}

// HasIcon reports whether the configured icon resolved
func (m *Marker) HasIcon() bool {
	return m.iconSrc != ""
}

// UpdatePosition moves the marker in place
func (m *Marker) UpdatePosition(lon, lat float64) {
	m.mu.Lock()
	m.lon, m.lat = lon, lat
	m.mu.Unlock()
}

// Position returns the current longitude and latitude
func (m *Marker) Position() (lon, lat float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lon, m.lat
}

// Config returns the marker's configuration at its current position
func (m *Marker) Config() types.MarkerConfig {
	lon, lat := m.Position()
	label := m.label
	return types.MarkerConfig{
		Name:      m.name,
		Lat:       lat,
		Lon:       lon,
		Icon:      m.icon,
		Color:     m.color,
		ShowLabel: &label,
	}
}

// Style is the icon and optional label used to draw the marker
func (m *Marker) Style() geo.Style {
	var s geo.Style
	if m.iconSrc != "" {
		s.Icon = &geo.Icon{Src: m.iconSrc, Scale: 1, Anchor: [2]float64{0.5, 0.5}}
	}
	if m.label {
		s.Text = &geo.Text{
			Text:    m.name,
			Font:    LabelFont,
			Fill:    "#ffffff",
			Stroke:  geo.Stroke{Color: "#000000", Width: 4},
			OffsetY: LabelOffsetY,
		}
	}
	return s
}

// Feature returns a renderable snapshot of the marker
func (m *Marker) Feature() geo.Feature {
	lon, lat := m.Position()
	return geo.NewMarkerFeature(m.name, geo.Coord{Lon: lon, Lat: lat}, m.Style(), map[string]interface{}{
		"name":  m.name,
		"icon":  m.icon,
		"color": m.color,
	})
}
