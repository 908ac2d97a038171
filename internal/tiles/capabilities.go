package tiles

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCapabilities is returned for a document that is not XML or has no layer list
var ErrInvalidCapabilities = errors.New("invalid WMTS capabilities response")

// Capabilities is the subset of a WMTS GetCapabilities document needed to build tile URLs
type Capabilities struct {
	XMLName    xml.Name    `xml:"Capabilities"`
	Version    string      `xml:"version,attr"`
	Operations []Operation `xml:"OperationsMetadata>Operation"`
	Contents   Contents    `xml:"Contents"`
}

// Contents lists the layers and tile matrix sets a server offers
type Contents struct {
	Layers         []Layer         `xml:"Layer"`
	TileMatrixSets []TileMatrixSet `xml:"TileMatrixSet"`
}

// Operation is an OWS operation such as GetTile
type Operation struct {
	Name string    `xml:"name,attr"`
	Gets []HTTPGet `xml:"DCP>HTTP>Get"`
}

// HTTPGet is one GET endpoint of an operation
type HTTPGet struct {
	Href      string   `xml:"href,attr"`
	Encodings []string `xml:"Constraint>AllowedValues>Value"`
}

// Layer is a WMTS Contents/Layer
type Layer struct {
	Identifier         string              `xml:"Identifier"`
	Title              string              `xml:"Title"`
	Formats            []string            `xml:"Format"`
	Styles             []LayerStyle        `xml:"Style"`
	TileMatrixSetLinks []TileMatrixSetLink `xml:"TileMatrixSetLink"`
	ResourceURLs       []ResourceURL       `xml:"ResourceURL"`
}

// LayerStyle is a layer's named style
type LayerStyle struct {
	Identifier string `xml:"Identifier"`
	IsDefault  bool   `xml:"isDefault,attr"`
}

// TileMatrixSetLink ties a layer to a tile matrix set
type TileMatrixSetLink struct {
	TileMatrixSet string `xml:"TileMatrixSet"`
}

// ResourceURL is a RESTful URL template
type ResourceURL struct {
	Format       string `xml:"format,attr"`
	ResourceType string `xml:"resourceType,attr"`
	Template     string `xml:"template,attr"`
}

// TileMatrixSet is a named zoom pyramid in one coordinate system
type TileMatrixSet struct {
	Identifier   string       `xml:"Identifier"`
	SupportedCRS string       `xml:"SupportedCRS"`
	TileMatrices []TileMatrix `xml:"TileMatrix"`
}

// TileMatrix is one zoom level of a TileMatrixSet
type TileMatrix struct {
	Identifier       string  `xml:"Identifier"`
	ScaleDenominator float64 `xml:"ScaleDenominator"`
	TopLeftCorner    string  `xml:"TopLeftCorner"`
	TileWidth        int     `xml:"TileWidth"`
	TileHeight       int     `xml:"TileHeight"`
	MatrixWidth      int     `xml:"MatrixWidth"`
	MatrixHeight     int     `xml:"MatrixHeight"`
}

// LayerInfo identifies a layer for selection
type LayerInfo struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
}

// ParseCapabilities decodes a GetCapabilities document
func ParseCapabilities(data []byte) (*Capabilities, error) {
	var caps Capabilities
	if err := xml.Unmarshal(data, &caps); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCapabilities, err)
	}
	if len(caps.Contents.Layers) == 0 {
		return nil, ErrInvalidCapabilities
	}
	return &caps, nil
}

// Layers lists the document's layers; a missing title falls back to the identifier
func (c *Capabilities) Layers() []LayerInfo {
	out := make([]LayerInfo, 0, len(c.Contents.Layers))
	for _, l := range c.Contents.Layers {
		title := l.Title
		if title == "" {
			title = l.Identifier
		}
		out = append(out, LayerInfo{Identifier: l.Identifier, Title: title})
	}
	return out
}

// Layer returns the layer with the given identifier
func (c *Capabilities) Layer(identifier string) (*Layer, bool) {
	for i := range c.Contents.Layers {
		if c.Contents.Layers[i].Identifier == identifier {
			return &c.Contents.Layers[i], true
		}
	}
	return nil, false
}

// LayerMatrixSets lists the tile matrix sets linked to a layer, nil for an unknown layer
func (c *Capabilities) LayerMatrixSets(identifier string) []string {
	l, ok := c.Layer(identifier)
	if !ok {
		return nil
	}
	sets := make([]string, 0, len(l.TileMatrixSetLinks))
	for _, link := range l.TileMatrixSetLinks {
		sets = append(sets, link.TileMatrixSet)
	}
	return sets
}

// MatrixSet returns the tile matrix set with the given identifier
func (c *Capabilities) MatrixSet(identifier string) (*TileMatrixSet, bool) {
	for i := range c.Contents.TileMatrixSets {
		if c.Contents.TileMatrixSets[i].Identifier == identifier {
			return &c.Contents.TileMatrixSets[i], true
		}
	}
	return nil, false
}

// GetTileKVP returns the KVP GetTile endpoint, if the server advertises one
func (c *Capabilities) GetTileKVP() (string, bool) {
	for _, op := range c.Operations {
		if op.Name != "GetTile" {
			continue
		}
		for _, get := range op.Gets {
			if len(get.Encodings) == 0 {
				return get.Href, get.Href != ""
			}
			for _, enc := range get.Encodings {
				if strings.EqualFold(enc, "KVP") {
					return get.Href, get.Href != ""
				}
			}
		}
	}
	return "", false
}
