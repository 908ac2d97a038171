// Package testutils holds helpers shared by tests across packages.
package testutils

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/saviobatista/telemetry-map/internal/types"
)

// TelemetryLine formats a capture line for one item value
func TelemetryLine(target, packet, item string, value float64, timeNanos int64) string {
	return fmt.Sprintf("%s,%s,%s,%s,%d", target, packet, item, strconv.FormatFloat(value, 'f', -1, 64), timeNanos)
}

// TrackValues returns the longitude and latitude values a configured track is built from
func TrackValues(cfg types.TrackConfig, lon, lat float64, timeNanos int64) []*types.TelemetryValue {
	return []*types.TelemetryValue{
		{Target: cfg.Target, Packet: cfg.Packet, Item: cfg.LonItem, Value: lon, TimeNanos: timeNanos, Source: "test-source"},
		{Target: cfg.Target, Packet: cfg.Packet, Item: cfg.LatItem, Value: lat, TimeNanos: timeNanos, Source: "test-source"},
	}
}

// TestTrack is a track configuration for tests
func TestTrack(name string) types.TrackConfig {
	return types.TrackConfig{
		Name:    name,
		Target:  name,
		Packet:  "POSITION",
		LonItem: "LON",
		LatItem: "LAT",
	}
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
		}
	}
}
