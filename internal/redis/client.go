// Package redis is the rendering sink of the tracker. Track and marker features are kept as
// GeoJSON documents and every change is announced on a pub/sub channel for map clients.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saviobatista/telemetry-map/internal/geo"
	"github.com/saviobatista/telemetry-map/internal/track"
)

// UpdatesChannel carries an Update for every published or dropped feature
const UpdatesChannel = "map.updates"

// Track feature layers
const (
	LayerPosition  = "position"
	LayerTrail     = "trail"
	LayerWaypoints = "waypoints"
)

// Update actions
const (
	ActionUpdate = "update"
	ActionRemove = "remove"
)

// Update is the notification sent on UpdatesChannel
type Update struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Action string `json:"action"`
}

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// Client manages Redis connections and operations
type Client struct {
	client     RedisClientInterface
	projection geo.Projection
}

// New connects to addr (host:port or a redis:// URL). Geometry is published in projection.
func New(addr string, projection geo.Projection) (*Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}
		opts = parsed
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client, projection: projection}, nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface, projection geo.Projection) *Client {
	return &Client{client: client, projection: projection}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// TrackKey is the key of one layer of a track
func TrackKey(id, layer string) string {
	return fmt.Sprintf("track:%s:%s", id, layer)
}

// MarkerKey is the key of a marker feature
func MarkerKey(name string) string {
	return fmt.Sprintf("marker:%s", name)
}

// PublishTrack stores the three layers of a track and announces the change
func (c *Client) PublishTrack(ctx context.Context, id string, g track.Geometries) error {
	layers := []struct {
		name    string
		feature geo.Feature
	}{
		{LayerPosition, g.Position},
		{LayerTrail, g.Trail},
		{LayerWaypoints, g.Waypoints},
	}
	for _, l := range layers {
		if err := c.storeFeature(ctx, TrackKey(id, l.name), l.feature); err != nil {
			return fmt.Errorf("track %s: %w", id, err)
		}
	}
	return c.notify(ctx, Update{Type: "track", ID: id, Action: ActionUpdate})
}

// DropTrack deletes every layer of a track
func (c *Client) DropTrack(ctx context.Context, id string) error {
	keys := []string{TrackKey(id, LayerPosition), TrackKey(id, LayerTrail), TrackKey(id, LayerWaypoints)}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete track %s: %w", id, err)
	}
	return c.notify(ctx, Update{Type: "track", ID: id, Action: ActionRemove})
}

// PublishMarker stores a marker feature under its name
func (c *Client) PublishMarker(ctx context.Context, f geo.Feature) error {
	if err := c.storeFeature(ctx, MarkerKey(f.ID), f); err != nil {
		return fmt.Errorf("marker %s: %w", f.ID, err)
	}
	return c.notify(ctx, Update{Type: "marker", ID: f.ID, Action: ActionUpdate})
}

// DropMarker deletes a marker feature
func (c *Client) DropMarker(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, MarkerKey(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete marker %s: %w", name, err)
	}
	return c.notify(ctx, Update{Type: "marker", ID: name, Action: ActionRemove})
}

// GetFeature returns the GeoJSON stored under key, or nil if there is none
func (c *Client) GetFeature(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid GeoJSON stored under %s", key)
	}
	return data, nil
}

func (c *Client) storeFeature(ctx context.Context, key string, f geo.Feature) error {
	data, err := f.GeoJSON(c.projection)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (c *Client) notify(ctx context.Context, u Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}
	if err := c.client.Publish(ctx, UpdatesChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish update: %w", err)
	}
	return nil
}
