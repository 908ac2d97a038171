package tiles

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCapabilities(t *testing.T) *Capabilities {
	t.Helper()
	data, err := os.ReadFile("testdata/capabilities.xml")
	require.NoError(t, err)
	caps, err := ParseCapabilities(data)
	require.NoError(t, err)
	return caps
}

func TestParseCapabilities(t *testing.T) {
	caps := loadCapabilities(t)

	assert.Equal(t, "1.0.0", caps.Version)
	require.Len(t, caps.Contents.Layers, 3)
	require.Len(t, caps.Contents.TileMatrixSets, 2)

	l, ok := caps.Layer("BlueMarble")
	require.True(t, ok)
	assert.Equal(t, "Blue Marble", l.Title)
	assert.Equal(t, []string{"image/jpeg"}, l.Formats)
	require.Len(t, l.Styles, 1)
	assert.True(t, l.Styles[0].IsDefault)
	require.Len(t, l.ResourceURLs, 1)
	assert.Equal(t, "tile", l.ResourceURLs[0].ResourceType)

	tms, ok := caps.MatrixSet("500m")
	require.True(t, ok)
	assert.Equal(t, "urn:ogc:def:crs:OGC:2:84", tms.SupportedCRS)
	require.Len(t, tms.TileMatrices, 2)
	assert.Equal(t, 3, tms.TileMatrices[1].MatrixWidth)
	assert.Equal(t, 512, tms.TileMatrices[1].TileWidth)
}

func TestCapabilitiesLayers(t *testing.T) {
	caps := loadCapabilities(t)

	assert.Equal(t, []LayerInfo{
		{Identifier: "BlueMarble", Title: "Blue Marble"},
		{Identifier: "Coastlines", Title: "Coastlines"},
		{Identifier: "Orphan", Title: "Orphan"},
	}, caps.Layers())
}

func TestLayerMatrixSets(t *testing.T) {
	caps := loadCapabilities(t)

	assert.Equal(t, []string{"500m", "GoogleMapsCompatible"}, caps.LayerMatrixSets("BlueMarble"))
	assert.Empty(t, caps.LayerMatrixSets("Orphan"))
	assert.Nil(t, caps.LayerMatrixSets("missing"))
}

func TestGetTileKVP(t *testing.T) {
	caps := loadCapabilities(t)

	endpoint, ok := caps.GetTileKVP()
	assert.True(t, ok)
	assert.Equal(t, "https://tiles.example.com//wmts?", endpoint)
}

func TestParseCapabilitiesInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not xml", "this is not xml"},
		{"no contents", `<Capabilities version="1.0.0"></Capabilities>`},
		{"empty contents", `<Capabilities><Contents></Contents></Capabilities>`},
		{"wrong root", `<WMS_Capabilities><Contents><Layer/></Contents></WMS_Capabilities>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCapabilities([]byte(tt.doc))
			assert.True(t, errors.Is(err, ErrInvalidCapabilities), "got %v", err)
		})
	}
}
