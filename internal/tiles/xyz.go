package tiles

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTemplate is returned for an XYZ template missing a required placeholder
var ErrInvalidTemplate = errors.New("invalid tile URL template")

// maxZoom keeps 1<<z inside an int on every platform
const maxZoom = 30

// XYZSource fills {z}, {x} and {y} (or {-y} for bottom-origin TMS rows) in a URL template
type XYZSource struct {
	template string
}

// NewXYZSource validates template and returns a source for it
func NewXYZSource(template string) (*XYZSource, error) {
	for _, p := range []string{"{z}", "{x}"} {
		if !strings.Contains(template, p) {
			return nil, fmt.Errorf("%w: missing %s in %q", ErrInvalidTemplate, p, template)
		}
	}
	if !strings.Contains(template, "{y}") && !strings.Contains(template, "{-y}") {
		return nil, fmt.Errorf("%w: missing {y} or {-y} in %q", ErrInvalidTemplate, template)
	}
	return &XYZSource{template: template}, nil
}

// TileURL implements Source
func (s *XYZSource) TileURL(z, x, y int) (string, bool) {
	if z < 0 || z > maxZoom {
		return "", false
	}
	n := 1 << z
	if x < 0 || x >= n || y < 0 || y >= n {
		return "", false
	}

	r := strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
		"{-y}", strconv.Itoa(n-1-y),
	)
	return CleanURL(r.Replace(s.template)), true
}
