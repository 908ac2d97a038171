package tiles

import (
	"context"
	"testing"

	"github.com/saviobatista/telemetry-map/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveXYZ(t *testing.T) {
	src, err := Resolve(context.Background(), NewClient(nil), NewProjections(), types.TileLayerConfig{
		Name: "osm", Kind: types.TileKindXYZ, URL: "https://tile.example.com/{z}/{x}/{y}.png",
	})
	require.NoError(t, err)

	url, ok := src.TileURL(0, 0, 0)
	assert.True(t, ok)
	assert.Equal(t, "https://tile.example.com/0/0/0.png", url)
}

func TestResolveWMTS(t *testing.T) {
	srv := capabilitiesServer(t)
	projections := NewProjections()

	src, err := Resolve(context.Background(), NewClient(srv.Client()), projections, types.TileLayerConfig{
		Name: "blue", Kind: types.TileKindWMTS, URL: srv.URL + "/wmts/capabilities.xml", Layer: "BlueMarble",
	})
	require.NoError(t, err)

	wmts, ok := src.(*WMTSSource)
	require.True(t, ok)
	assert.Equal(t, "500m", wmts.MatrixSet)

	_, ok = projections.Get("urn:ogc:def:crs:OGC:2:84")
	assert.True(t, ok)
}

func TestResolveFailures(t *testing.T) {
	srv := capabilitiesServer(t)

	tests := []struct {
		name string
		cfg  types.TileLayerConfig
	}{
		{"bad xyz template", types.TileLayerConfig{Name: "x", Kind: types.TileKindXYZ, URL: "https://e.com/tile.png"}},
		{"fetch failure", types.TileLayerConfig{Name: "w", Kind: types.TileKindWMTS, URL: srv.URL + "/missing", Layer: "BlueMarble"}},
		{"unknown layer", types.TileLayerConfig{Name: "w", Kind: types.TileKindWMTS, URL: srv.URL + "/wmts/capabilities.xml", Layer: "Nope"}},
		{"unknown kind", types.TileLayerConfig{Name: "k", Kind: "wms", URL: "https://e.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Resolve(context.Background(), NewClient(srv.Client()), NewProjections(), tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, src)
		})
	}
}
