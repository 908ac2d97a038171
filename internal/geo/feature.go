package geo

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Feature is an immutable renderable snapshot. Coordinates are kept in degrees; the
// published geometry is built on demand for the requested projection.
type Feature struct {
	ID         string
	Kind       Kind
	Style      Style
	Coords     []Coord   // point (0 or 1 entries), waypoints, marker
	Segments   [][]Coord // trail only
	Properties map[string]interface{}
}

// NewPositionFeature builds the current-position point. A nil position yields an empty point.
func NewPositionFeature(id string, c *Coord, color string) Feature {
	f := Feature{ID: id, Kind: KindPoint, Style: PositionStyle(color)}
	if c != nil {
		f.Coords = []Coord{*c}
	}
	return f
}

// NewTrailFeature builds the segmented trail line
func NewTrailFeature(id string, segments [][]Coord, color string) Feature {
	return Feature{ID: id, Kind: KindTrail, Style: TrailStyle(color), Segments: segments}
}

// NewWaypointsFeature builds the waypoint cloud, one dot per retained sample
func NewWaypointsFeature(id string, coords []Coord, color string) Feature {
	return Feature{ID: id, Kind: KindWaypoints, Style: WaypointStyle(color), Coords: coords}
}

// NewMarkerFeature builds a static marker point with its icon/label style
func NewMarkerFeature(id string, c Coord, style Style, props map[string]interface{}) Feature {
	return Feature{ID: id, Kind: KindMarker, Style: style, Coords: []Coord{c}, Properties: props}
}

// IsEmpty reports whether the feature has no coordinates
func (f Feature) IsEmpty() bool {
	return len(f.Coords) == 0 && len(f.Segments) == 0
}

// Geometry builds the simplefeatures geometry for the feature in projection p. Validation is
// disabled: a trail segment may hold a single vertex or repeat one coordinate.
func (f Feature) Geometry(p Projection) (geom.Geometry, error) {
	switch f.Kind {
	case KindTrail:
		lines := make([]geom.LineString, 0, len(f.Segments))
		for _, seg := range f.Segments {
			ls, err := geom.NewLineString(sequence(seg, p), geom.DisableAllValidations)
			if err != nil {
				return geom.Geometry{}, err
			}
			lines = append(lines, ls)
		}
		return geom.NewMultiLineString(lines, geom.DisableAllValidations).AsGeometry(), nil
	case KindWaypoints:
		points := make([]geom.Point, 0, len(f.Coords))
		for _, c := range f.Coords {
			pt, err := point(c, p)
			if err != nil {
				return geom.Geometry{}, err
			}
			points = append(points, pt)
		}
		return geom.NewMultiPoint(points, geom.DisableAllValidations).AsGeometry(), nil
	default:
		if len(f.Coords) == 0 {
			return geom.NewEmptyPoint(geom.DimXY).AsGeometry(), nil
		}
		pt, err := point(f.Coords[0], p)
		if err != nil {
			return geom.Geometry{}, err
		}
		return pt.AsGeometry(), nil
	}
}

// GeoJSON encodes the feature as a GeoJSON Feature in projection p
func (f Feature) GeoJSON(p Projection) ([]byte, error) {
	g, err := f.Geometry(p)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s geometry: %w", f.Kind, err)
	}
	geometry, err := g.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s geometry: %w", f.Kind, err)
	}

	props := make(map[string]interface{}, len(f.Properties)+2)
	for k, v := range f.Properties {
		props[k] = v
	}
	props["kind"] = f.Kind
	props["style"] = f.Style

	return json.Marshal(struct {
		Type       string                 `json:"type"`
		ID         string                 `json:"id"`
		Geometry   json.RawMessage        `json:"geometry"`
		Properties map[string]interface{} `json:"properties"`
	}{
		Type:       "Feature",
		ID:         f.ID,
		Geometry:   geometry,
		Properties: props,
	})
}

// MarshalJSON encodes the feature as geographic GeoJSON
func (f Feature) MarshalJSON() ([]byte, error) {
	return f.GeoJSON(Geographic)
}

func point(c Coord, p Projection) (geom.Point, error) {
	x, y := p.Apply(c)
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: x, Y: y},
		Type: geom.DimXY,
	}, geom.DisableAllValidations)
}

func sequence(seg []Coord, p Projection) geom.Sequence {
	flat := make([]float64, 0, len(seg)*2)
	for _, c := range seg {
		x, y := p.Apply(c)
		flat = append(flat, x, y)
	}
	return geom.NewSequence(flat, geom.DimXY)
}
