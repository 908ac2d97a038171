package marker

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/saviobatista/telemetry-map/internal/geo"
	"github.com/saviobatista/telemetry-map/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestNewMarker(t *testing.T) {
	m := New(types.MarkerConfig{Name: "KSC", Lat: 28.57, Lon: -80.65, Icon: "satellite-uplink", Color: "#00ff00"}, DefaultCatalog())

	assert.Equal(t, "KSC", m.Name())
	assert.True(t, m.HasIcon())

	style := m.Style()
	require.NotNil(t, style.Icon)
	assert.Equal(t, 1.0, style.Icon.Scale)
	assert.Equal(t, [2]float64{0.5, 0.5}, style.Icon.Anchor)

	require.NotNil(t, style.Text, "label is shown by default")
	assert.Equal(t, "KSC", style.Text.Text)
	assert.Equal(t, "bold 12px sans-serif", style.Text.Font)
	assert.Equal(t, "#ffffff", style.Text.Fill)
	assert.Equal(t, geo.Stroke{Color: "#000000", Width: 4}, style.Text.Stroke)
	assert.Equal(t, 24.0, style.Text.OffsetY)
}

func TestNewMarkerUnknownIcon(t *testing.T) {
	m := New(types.MarkerConfig{Name: "X", Icon: "submarine", Color: "#fff"}, DefaultCatalog())

	assert.False(t, m.HasIcon())
	assert.Nil(t, m.Style().Icon)
	assert.NotNil(t, m.Style().Text)
}

func TestNewMarkerHiddenLabel(t *testing.T) {
	m := New(types.MarkerConfig{Name: "X", Icon: "star", ShowLabel: boolPtr(false)}, DefaultCatalog())

	assert.Nil(t, m.Style().Text)
	assert.NotNil(t, m.Style().Icon)
}

func TestMarkerUpdatePosition(t *testing.T) {
	m := New(types.MarkerConfig{Name: "Buoy", Lat: 1, Lon: 2, Icon: "ferry"}, DefaultCatalog())
	m.UpdatePosition(179.5, -45)

	lon, lat := m.Position()
	assert.Equal(t, 179.5, lon)
	assert.Equal(t, -45.0, lat)
	assert.Equal(t, "Buoy", m.Name())

	cfg := m.Config()
	assert.Equal(t, 179.5, cfg.Lon)
	assert.Equal(t, -45.0, cfg.Lat)
	assert.True(t, cfg.LabelVisible())
}

func TestMarkerFeature(t *testing.T) {
	m := New(types.MarkerConfig{Name: "Pad", Lat: 10, Lon: 20, Icon: "flag", Color: "#123456"}, DefaultCatalog())
	f := m.Feature()

	assert.Equal(t, geo.KindMarker, f.Kind)
	assert.Equal(t, "Pad", f.ID)
	assert.Equal(t, []geo.Coord{{Lon: 20, Lat: 10}}, f.Coords)

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var decoded struct {
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]interface{} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Point", decoded.Geometry.Type)
	assert.Equal(t, []float64{20, 10}, decoded.Geometry.Coordinates)
	assert.Equal(t, "marker", decoded.Properties["kind"])
	assert.Equal(t, "flag", decoded.Properties["icon"])
}

func TestMarkerConcurrentMoves(t *testing.T) {
	m := New(types.MarkerConfig{Name: "M"}, DefaultCatalog())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.UpdatePosition(float64(i), float64(i))
			_ = m.Feature()
		}(i)
	}
	wg.Wait()

	lon, lat := m.Position()
	assert.Equal(t, lon, lat)
}
