package nats

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/saviobatista/telemetry-map/internal/telemetry"
	"github.com/saviobatista/telemetry-map/internal/types"
)

const (
	// StreamTelemetry holds converted telemetry values
	StreamTelemetry = "TELEMETRY"
	// SubjectPrefix precedes the telemetry key in every subject
	SubjectPrefix = "tlm."
	// SubjectAll matches every telemetry subject
	SubjectAll = SubjectPrefix + ">"
)

// ErrInvalidSubject is returned for a telemetry key that cannot be used as a subject token
var ErrInvalidSubject = errors.New("telemetry key is not a valid subject token")

// Subject returns the subject a telemetry key is published on
func Subject(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, ". *>\t\r\n") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSubject, key)
	}
	return SubjectPrefix + key, nil
}

// Client represents a NATS client
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// New connects and makes sure the telemetry stream exists
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url, nats.Name("telemetry-map"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     StreamTelemetry,
		Subjects: []string{SubjectAll},
		Storage:  nats.FileStorage,
		MaxAge:   time.Hour,
	})
	if err != nil && !strings.Contains(err.Error(), "stream name already in use") {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{
		conn: nc,
		js:   js,
	}, nil
}

// PublishTelemetry publishes a value under its telemetry key
func (c *Client) PublishTelemetry(v *types.TelemetryValue) error {
	subject, err := Subject(telemetry.BuildKey(v.Target, v.Packet, v.Item))
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if _, err := c.js.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish value: %w", err)
	}
	return nil
}

// SubscribeTelemetry delivers new values for keys to handler. No keys subscribes to all.
func (c *Client) SubscribeTelemetry(keys []string, handler func(*types.TelemetryValue)) error {
	subjects := []string{SubjectAll}
	if len(keys) > 0 {
		subjects = subjects[:0]
		for _, key := range keys {
			subject, err := Subject(key)
			if err != nil {
				return err
			}
			subjects = append(subjects, subject)
		}
	}

	for _, subject := range subjects {
		sub, err := c.js.Subscribe(subject, func(msg *nats.Msg) {
			v, err := decodeValue(msg.Data)
			if err != nil {
				slog.Warn("Error unmarshaling telemetry", "subject", msg.Subject, "error", err)
				return
			}
			handler(v)
		}, nats.DeliverNew())
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		c.subs = append(c.subs, sub)
	}

	return nil
}

func decodeValue(data []byte) (*types.TelemetryValue, error) {
	var v types.TelemetryValue
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v.Target == "" || v.Packet == "" || v.Item == "" {
		return nil, fmt.Errorf("telemetry value missing target, packet or item")
	}
	return &v, nil
}

// Close unsubscribes and closes the NATS connection
func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.subs = nil
	if c.conn != nil {
		c.conn.Close()
	}
}
