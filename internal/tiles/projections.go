package tiles

import (
	"sort"
	"sync"
)

// Projection describes a named coordinate reference system known to the map
type Projection struct {
	Code            string     `json:"code"`
	Units           string     `json:"units"`
	Extent          [4]float64 `json:"extent"`
	WorldExtent     [4]float64 `json:"worldExtent"`
	AxisOrientation string     `json:"axisOrientation"`
	Global          bool       `json:"global"`
}

var (
	geographicExtent = [4]float64{-180, -90, 180, 90}
	mercatorExtent   = [4]float64{-20037508.342789244, -20037508.342789244, 20037508.342789244, 20037508.342789244}
)

// Projections is the set of coordinate systems tile sources may use
type Projections struct {
	mu    sync.RWMutex
	known map[string]Projection
}

// NewProjections returns a registry seeded with the geographic and web mercator codes,
// including their OGC URN aliases
func NewProjections() *Projections {
	p := &Projections{known: make(map[string]Projection)}
	for code, axis := range map[string]string{
		"EPSG:4326":                     "neu",
		"urn:ogc:def:crs:EPSG::4326":    "neu",
		"CRS:84":                        "enu",
		"urn:ogc:def:crs:OGC:1.3:CRS84": "enu",
	} {
		p.known[code] = geographic(code, axis)
	}
	for _, code := range []string{
		"EPSG:3857", "EPSG:900913", "EPSG:102100", "EPSG:102113", "urn:ogc:def:crs:EPSG::3857",
	} {
		p.known[code] = Projection{
			Code:            code,
			Units:           "m",
			Extent:          mercatorExtent,
			WorldExtent:     [4]float64{-180, -85, 180, 85},
			AxisOrientation: "enu",
			Global:          true,
		}
	}
	return p
}

func geographic(code, axis string) Projection {
	return Projection{
		Code:            code,
		Units:           "degrees",
		Extent:          geographicExtent,
		WorldExtent:     geographicExtent,
		AxisOrientation: axis,
		Global:          true,
	}
}

// Get returns the projection registered under code
func (p *Projections) Get(code string) (Projection, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	proj, ok := p.known[code]
	return proj, ok
}

// Register adds proj unless its code is already known, and reports whether it was added
func (p *Projections) Register(proj Projection) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.known[proj.Code]; ok {
		return false
	}
	p.known[proj.Code] = proj
	return true
}

// RegisterFromCapabilities registers every SupportedCRS in caps that is not yet known as a
// global geographic projection, returning the newly added codes
func (p *Projections) RegisterFromCapabilities(caps *Capabilities) []string {
	if caps == nil {
		return nil
	}
	var added []string
	for _, tms := range caps.Contents.TileMatrixSets {
		crs := tms.SupportedCRS
		if crs == "" {
			continue
		}
		if p.Register(geographic(crs, "enu")) {
			added = append(added, crs)
		}
	}
	return added
}

// Codes returns every registered code in sorted order
func (p *Projections) Codes() []string {
	p.mu.RLock()
	codes := make([]string, 0, len(p.known))
	for code := range p.known {
		codes = append(codes, code)
	}
	p.mu.RUnlock()
	sort.Strings(codes)
	return codes
}
