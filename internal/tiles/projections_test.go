package tiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectionsSeeded(t *testing.T) {
	p := NewProjections()

	for _, code := range []string{"EPSG:4326", "CRS:84", "EPSG:3857", "EPSG:900913", "urn:ogc:def:crs:EPSG::3857"} {
		_, ok := p.Get(code)
		assert.True(t, ok, code)
	}

	wgs, _ := p.Get("EPSG:4326")
	assert.Equal(t, "degrees", wgs.Units)
	assert.Equal(t, "neu", wgs.AxisOrientation)

	crs84, _ := p.Get("CRS:84")
	assert.Equal(t, "enu", crs84.AxisOrientation)
}

func TestProjectionsRegister(t *testing.T) {
	p := NewProjections()

	assert.True(t, p.Register(Projection{Code: "EPSG:32661", Units: "m"}))
	assert.False(t, p.Register(Projection{Code: "EPSG:32661", Units: "degrees"}))

	got, _ := p.Get("EPSG:32661")
	assert.Equal(t, "m", got.Units)
	assert.Contains(t, p.Codes(), "EPSG:32661")
}

func TestRegisterFromCapabilities(t *testing.T) {
	p := NewProjections()
	caps := &Capabilities{Contents: Contents{TileMatrixSets: []TileMatrixSet{
		{Identifier: "a", SupportedCRS: "urn:ogc:def:crs:OGC:2:84"},
		{Identifier: "b", SupportedCRS: "EPSG:4326"},
		{Identifier: "c"},
		{Identifier: "d", SupportedCRS: "urn:ogc:def:crs:OGC:2:84"},
	}}}

	added := p.RegisterFromCapabilities(caps)
	require.Equal(t, []string{"urn:ogc:def:crs:OGC:2:84"}, added)

	assert.Empty(t, p.RegisterFromCapabilities(caps), "second pass adds nothing")
	assert.Nil(t, p.RegisterFromCapabilities(nil))
}
