package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/saviobatista/telemetry-map/internal/types"
)

// ErrMarkerNotFound is returned when a marker name has no row
var ErrMarkerNotFound = errors.New("marker not found")

type Client struct {
	db *sql.DB
}

// New creates a new database client
func New(connStr string) (*Client, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// Ping verifies the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// DB exposes the underlying pool, used by the migrator
func (c *Client) DB() *sql.DB {
	return c.db
}

// ListMarkers returns every stored marker ordered by name
func (c *Client) ListMarkers(ctx context.Context) ([]types.MarkerConfig, error) {
	query := `
		SELECT name, latitude, longitude, icon, color, show_label
		FROM markers
		ORDER BY name
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("error closing rows", "error", cerr)
		}
	}()

	var markers []types.MarkerConfig
	for rows.Next() {
		m, err := scanMarker(rows)
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

// GetMarker returns the marker called name
func (c *Client) GetMarker(ctx context.Context, name string) (types.MarkerConfig, error) {
	query := `
		SELECT name, latitude, longitude, icon, color, show_label
		FROM markers
		WHERE name = $1
	`
	m, err := scanMarker(c.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return types.MarkerConfig{}, fmt.Errorf("%w: %s", ErrMarkerNotFound, name)
	}
	return m, err
}

// UpsertMarker creates the marker or replaces the stored one with the same name
func (c *Client) UpsertMarker(ctx context.Context, m types.MarkerConfig) error {
	query := `
		INSERT INTO markers (name, latitude, longitude, icon, color, show_label, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			icon = EXCLUDED.icon,
			color = EXCLUDED.color,
			show_label = EXCLUDED.show_label,
			updated_at = EXCLUDED.updated_at
	`
	_, err := c.db.ExecContext(ctx, query,
		m.Name, m.Lat, m.Lon, m.Icon, m.Color, m.LabelVisible(), time.Now().UTC(),
	)
	return err
}

// UpdateMarkerPosition moves a stored marker
func (c *Client) UpdateMarkerPosition(ctx context.Context, name string, lon, lat float64) error {
	query := `
		UPDATE markers SET latitude = $1, longitude = $2, updated_at = $3
		WHERE name = $4
	`
	res, err := c.db.ExecContext(ctx, query, lat, lon, time.Now().UTC(), name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrMarkerNotFound, name)
	}
	return nil
}

// DeleteMarkers removes the named markers and returns how many rows went away
func (c *Client) DeleteMarkers(ctx context.Context, names ...string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	res, err := c.db.ExecContext(ctx, `DELETE FROM markers WHERE name = ANY($1)`, pq.Array(names))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMarker(s scanner) (types.MarkerConfig, error) {
	var (
		m         types.MarkerConfig
		showLabel bool
	)
	if err := s.Scan(&m.Name, &m.Lat, &m.Lon, &m.Icon, &m.Color, &showLabel); err != nil {
		return types.MarkerConfig{}, err
	}
	m.ShowLabel = &showLabel
	return m, nil
}

// StoreTrackerStats stores a statistics snapshot as produced by stats.GetStats
func (c *Client) StoreTrackerStats(ctx context.Context, stats map[string]interface{}) error {
	query := `
		INSERT INTO tracker_stats (
			time, received_samples, accepted_samples, rejected_samples, evicted_samples,
			created_tracks, removed_tracks, cleared_trails, active_tracks,
			processing_time_ms, uptime_seconds
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	counters := []string{
		"received_samples", "accepted_samples", "rejected_samples", "evicted_samples",
		"created_tracks", "removed_tracks", "cleared_trails", "active_tracks",
	}
	args := []interface{}{time.Now().UTC()}
	for _, key := range counters {
		v, ok := stats[key].(uint64)
		if !ok {
			return fmt.Errorf("stats field %s missing or not a counter", key)
		}
		args = append(args, int64(v))
	}

	processing, _ := stats["processing_time"].(time.Duration)
	uptime, _ := stats["uptime"].(time.Duration)
	args = append(args, processing.Milliseconds(), int64(uptime.Seconds()))

	_, err := c.db.ExecContext(ctx, query, args...)
	return err
}

// GetTrackerStats retrieves statistics snapshots for a time range, newest first
func (c *Client) GetTrackerStats(ctx context.Context, start, end time.Time) ([]map[string]interface{}, error) {
	query := `
		SELECT
			time, received_samples, accepted_samples, rejected_samples, evicted_samples,
			created_tracks, removed_tracks, cleared_trails, active_tracks,
			processing_time_ms, uptime_seconds
		FROM tracker_stats
		WHERE time BETWEEN $1 AND $2
		ORDER BY time DESC
	`

	rows, err := c.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("error closing rows", "error", cerr)
		}
	}()

	var out []map[string]interface{}
	for rows.Next() {
		var (
			timestamp        time.Time
			receivedSamples  int64
			acceptedSamples  int64
			rejectedSamples  int64
			evictedSamples   int64
			createdTracks    int64
			removedTracks    int64
			clearedTrails    int64
			activeTracks     int64
			processingTimeMs int64
			uptimeSeconds    int64
		)

		if err := rows.Scan(
			&timestamp,
			&receivedSamples,
			&acceptedSamples,
			&rejectedSamples,
			&evictedSamples,
			&createdTracks,
			&removedTracks,
			&clearedTrails,
			&activeTracks,
			&processingTimeMs,
			&uptimeSeconds,
		); err != nil {
			return nil, err
		}

		out = append(out, map[string]interface{}{
			"time":             timestamp,
			"received_samples": receivedSamples,
			"accepted_samples": acceptedSamples,
			"rejected_samples": rejectedSamples,
			"evicted_samples":  evictedSamples,
			"created_tracks":   createdTracks,
			"removed_tracks":   removedTracks,
			"cleared_trails":   clearedTrails,
			"active_tracks":    activeTracks,
			"processing_time":  time.Duration(processingTimeMs) * time.Millisecond,
			"uptime_seconds":   uptimeSeconds,
		})
	}

	return out, rows.Err()
}
