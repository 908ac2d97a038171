package tiles

import (
	"context"
	"fmt"

	"github.com/saviobatista/telemetry-map/internal/types"
)

// Resolve builds the tile source described by cfg. WMTS layers fetch their capabilities
// first; on any failure nothing is returned.
func Resolve(ctx context.Context, client *Client, projections *Projections, cfg types.TileLayerConfig) (Source, error) {
	switch cfg.Kind {
	case types.TileKindXYZ:
		src, err := NewXYZSource(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", cfg.Name, err)
		}
		return src, nil
	case types.TileKindWMTS:
		result, err := client.FetchCapabilities(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", cfg.Name, err)
		}
		src, err := NewWMTSSource(result.Capabilities, cfg.Layer, cfg.MatrixSet, projections)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", cfg.Name, err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("layer %s: unsupported kind %q", cfg.Name, cfg.Kind)
	}
}
