package geo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wroge/wgs84"
)

// ErrUnsupportedProjection is returned for output projections we cannot produce
var ErrUnsupportedProjection = errors.New("unsupported output projection")

// Projection maps degrees to the coordinate system geometry is published in
type Projection struct {
	Code string
	fn   func(lon, lat float64) (float64, float64)
}

// Geographic publishes plain longitude/latitude
var Geographic = Projection{Code: "EPSG:4326"}

// WebMercator publishes EPSG:3857 meters
func WebMercator() Projection {
	f := wgs84.EPSG().Transform(4326, 3857)
	return Projection{
		Code: "EPSG:3857",
		fn: func(lon, lat float64) (float64, float64) {
			x, y, _ := f(lon, lat, 0)
			return x, y
		},
	}
}

// ProjectionFor resolves an output projection code
func ProjectionFor(code string) (Projection, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "", "EPSG:4326", "CRS:84", "WGS84":
		return Geographic, nil
	case "EPSG:3857", "EPSG:900913":
		return WebMercator(), nil
	default:
		return Projection{}, fmt.Errorf("%w: %s", ErrUnsupportedProjection, code)
	}
}

// Apply projects a single coordinate
func (p Projection) Apply(c Coord) (x, y float64) {
	if p.fn == nil {
		return c.Lon, c.Lat
	}
	return p.fn(c.Lon, c.Lat)
}
