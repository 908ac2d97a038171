package tiles

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrNoLayerOptions is returned when a capability document cannot yield a tile source for the
// requested layer
var ErrNoLayerOptions = errors.New("could not create WMTS options for layer")

// WMTSSource builds tile URLs for one layer and tile matrix set of a WMTS server
type WMTSSource struct {
	Layer      string
	MatrixSet  string
	Style      string
	Format     string
	Projection Projection

	matrices []TileMatrix
	template string
	endpoint string
}

// NewWMTSSource registers the document's coordinate systems in projections, then resolves the
// layer, matrix set (the layer's first link when matrixSet is empty), style, format and URL
// scheme. A REST ResourceURL template is preferred over the KVP GetTile endpoint.
func NewWMTSSource(caps *Capabilities, layer, matrixSet string, projections *Projections) (*WMTSSource, error) {
	if caps == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoLayerOptions, layer)
	}
	if projections != nil {
		projections.RegisterFromCapabilities(caps)
	}

	l, ok := caps.Layer(layer)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoLayerOptions, layer)
	}

	links := caps.LayerMatrixSets(layer)
	if matrixSet == "" {
		if len(links) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoLayerOptions, layer)
		}
		matrixSet = links[0]
	} else if !contains(links, matrixSet) {
		return nil, fmt.Errorf("%w: %s (matrix set %s not linked)", ErrNoLayerOptions, layer, matrixSet)
	}

	tms, ok := caps.MatrixSet(matrixSet)
	if !ok || len(tms.TileMatrices) == 0 {
		return nil, fmt.Errorf("%w: %s (matrix set %s not defined)", ErrNoLayerOptions, layer, matrixSet)
	}

	src := &WMTSSource{
		Layer:     layer,
		MatrixSet: matrixSet,
		Style:     pickStyle(l.Styles),
		matrices:  tms.TileMatrices,
	}
	if len(l.Formats) > 0 {
		src.Format = l.Formats[0]
	}
	if projections != nil {
		src.Projection, _ = projections.Get(tms.SupportedCRS)
	}

	if tmpl, format, ok := pickResourceURL(l.ResourceURLs, src.Format); ok {
		src.template = tmpl
		src.Format = format
	} else if endpoint, ok := caps.GetTileKVP(); ok {
		src.endpoint = endpoint
	} else {
		return nil, fmt.Errorf("%w: %s (no tile endpoint)", ErrNoLayerOptions, layer)
	}

	return src, nil
}

// Levels returns the number of zoom levels in the matrix set
func (s *WMTSSource) Levels() int {
	return len(s.matrices)
}

// TileURL implements Source. z indexes the matrix set's TileMatrix list.
func (s *WMTSSource) TileURL(z, x, y int) (string, bool) {
	if z < 0 || z >= len(s.matrices) || x < 0 || y < 0 {
		return "", false
	}
	m := s.matrices[z]
	if (m.MatrixWidth > 0 && x >= m.MatrixWidth) || (m.MatrixHeight > 0 && y >= m.MatrixHeight) {
		return "", false
	}

	row, col := strconv.Itoa(y), strconv.Itoa(x)
	if s.template != "" {
		r := strings.NewReplacer(
			"{TileMatrixSet}", s.MatrixSet,
			"{TileMatrix}", m.Identifier,
			"{TileRow}", row,
			"{TileCol}", col,
			"{Style}", s.Style,
		)
		return CleanURL(r.Replace(s.template)), true
	}

	q := url.Values{}
	q.Set("SERVICE", "WMTS")
	q.Set("REQUEST", "GetTile")
	q.Set("VERSION", "1.0.0")
	q.Set("LAYER", s.Layer)
	q.Set("STYLE", s.Style)
	q.Set("FORMAT", s.Format)
	q.Set("TILEMATRIXSET", s.MatrixSet)
	q.Set("TILEMATRIX", m.Identifier)
	q.Set("TILEROW", row)
	q.Set("TILECOL", col)

	sep := "?"
	if strings.Contains(s.endpoint, "?") {
		sep = "&"
		if strings.HasSuffix(s.endpoint, "?") || strings.HasSuffix(s.endpoint, "&") {
			sep = ""
		}
	}
	return CleanURL(s.endpoint + sep + q.Encode()), true
}

func pickStyle(styles []LayerStyle) string {
	for _, st := range styles {
		if st.IsDefault {
			return st.Identifier
		}
	}
	if len(styles) > 0 {
		return styles[0].Identifier
	}
	return "default"
}

// pickResourceURL returns the first tile template, preferring one in format
func pickResourceURL(urls []ResourceURL, format string) (string, string, bool) {
	var fallback *ResourceURL
	for i := range urls {
		u := &urls[i]
		if !strings.EqualFold(u.ResourceType, "tile") || u.Template == "" {
			continue
		}
		if format == "" || u.Format == format {
			return u.Template, u.Format, true
		}
		if fallback == nil {
			fallback = u
		}
	}
	if fallback != nil {
		return fallback.Template, fallback.Format, true
	}
	return "", "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
