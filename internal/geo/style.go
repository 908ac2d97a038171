package geo

// Kind tags a renderable feature. Each kind carries exactly one style, chosen when the
// feature is built.
type Kind int

const (
	KindPoint Kind = iota + 1
	KindTrail
	KindWaypoints
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "position"
	case KindTrail:
		return "trail"
	case KindWaypoints:
		return "waypoints"
	case KindMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Stroke is a line or outline
type Stroke struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// Circle draws a point as a filled circle
type Circle struct {
	Radius float64 `json:"radius"`
	Fill   string  `json:"fill"`
	Stroke Stroke  `json:"stroke"`
}

// Icon draws a point as an image
type Icon struct {
	Src    string     `json:"src"`
	Scale  float64    `json:"scale"`
	Anchor [2]float64 `json:"anchor"`
}

// Text is a label drawn next to a point
type Text struct {
	Text    string  `json:"text"`
	Font    string  `json:"font"`
	Fill    string  `json:"fill"`
	Stroke  Stroke  `json:"stroke"`
	OffsetY float64 `json:"offsetY"`
}

// Style describes how a feature is drawn. Strokes are painted in order.
type Style struct {
	Circle  *Circle  `json:"circle,omitempty"`
	Strokes []Stroke `json:"strokes,omitempty"`
	Icon    *Icon    `json:"icon,omitempty"`
	Text    *Text    `json:"text,omitempty"`
}

// PositionStyle is the current-position dot of a track
func PositionStyle(color string) Style {
	return Style{Circle: &Circle{Radius: 8, Fill: color, Stroke: Stroke{Color: "#ffffff", Width: 2}}}
}

// TrailStyle is a black outline under the track-colored line
func TrailStyle(color string) Style {
	return Style{Strokes: []Stroke{
		{Color: "#000000", Width: 5},
		{Color: color, Width: 3},
	}}
}

// WaypointStyle is the small dot drawn at each retained sample
func WaypointStyle(color string) Style {
	return Style{Circle: &Circle{Radius: 4, Fill: color, Stroke: Stroke{Color: "#000000", Width: 1}}}
}
