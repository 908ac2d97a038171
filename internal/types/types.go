package types

// TelemetryValue is a single converted telemetry item value as delivered by the decom feed
type TelemetryValue struct {
	Target    string  `json:"target"`
	Packet    string  `json:"packet"`
	Item      string  `json:"item"`
	Value     float64 `json:"value"`
	TimeNanos int64   `json:"time"`
	Source    string  `json:"source,omitempty"`
}

// Sample is a paired longitude/latitude reading for one tracked object
type Sample struct {
	TrackID   string  `json:"track_id"`
	Lon       float64 `json:"lon"`
	Lat       float64 `json:"lat"`
	TimeNanos int64   `json:"time"`
}

// Position is a retained trail sample. TimeMillis is the millisecond time base used
// for all window arithmetic.
type Position struct {
	Lon        float64 `json:"lon"`
	Lat        float64 `json:"lat"`
	TimeMillis int64   `json:"time"`
}

// TrackConfig describes how a tracked object is fed and drawn
type TrackConfig struct {
	Name      string `json:"name" mapstructure:"name" validate:"required"`
	Color     string `json:"color" mapstructure:"color"`
	TrailTime int    `json:"trailTime" mapstructure:"trailTime" validate:"gte=0"`
	Target    string `json:"target" mapstructure:"target" validate:"required"`
	Packet    string `json:"packet" mapstructure:"packet" validate:"required"`
	LonItem   string `json:"lonItem" mapstructure:"lonItem" validate:"required"`
	LatItem   string `json:"latItem" mapstructure:"latItem" validate:"required"`
}

// MarkerConfig describes a static map marker
type MarkerConfig struct {
	Name      string  `json:"name" mapstructure:"name" validate:"required"`
	Lat       float64 `json:"lat" mapstructure:"lat" validate:"latitude"`
	Lon       float64 `json:"lon" mapstructure:"lon" validate:"longitude"`
	Icon      string  `json:"icon" mapstructure:"icon"`
	Color     string  `json:"color" mapstructure:"color" validate:"omitempty,iscolor"`
	ShowLabel *bool   `json:"showLabel,omitempty" mapstructure:"showLabel"`
}

// LabelVisible reports whether the marker name is drawn; labels are on unless disabled
func (c MarkerConfig) LabelVisible() bool {
	return c.ShowLabel == nil || *c.ShowLabel
}

// Tile layer kinds
const (
	TileKindXYZ  = "xyz"
	TileKindWMTS = "wmts"
)

// TileLayerConfig describes a background tile layer
type TileLayerConfig struct {
	Name      string `json:"name" mapstructure:"name" validate:"required"`
	Kind      string `json:"kind" mapstructure:"kind" validate:"oneof=xyz wmts"`
	URL       string `json:"url" mapstructure:"url" validate:"required,url"`
	Layer     string `json:"layer" mapstructure:"layer" validate:"required_if=Kind wmts"`
	MatrixSet string `json:"matrixSet" mapstructure:"matrixSet"`
}
