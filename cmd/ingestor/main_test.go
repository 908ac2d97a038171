package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/saviobatista/telemetry-map/internal/capture"
	"github.com/saviobatista/telemetry-map/internal/testutils"
	"github.com/saviobatista/telemetry-map/internal/types"
)

// Mock NATS client for testing
type mockNATSClient struct {
	mu           sync.Mutex
	published    []*types.TelemetryValue
	publishError error
	closed       bool
}

func (m *mockNATSClient) PublishTelemetry(v *types.TelemetryValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishError != nil {
		return m.publishError
	}
	m.published = append(m.published, v)
	return nil
}

func (m *mockNATSClient) Close() {
	m.closed = true
}

func feed(lines ...capture.Line) <-chan capture.Line {
	ch := make(chan capture.Line, len(lines))
	for _, l := range lines {
		ch <- l
	}
	close(ch)
	return ch
}

func TestForward(t *testing.T) {
	received := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	lines := feed(
		capture.Line{Source: "src:1", Text: testutils.TelemetryLine("ISS", "POSITION", "LON", 179.5, 100), Timestamp: received},
		capture.Line{Source: "src:1", Text: "garbage", Timestamp: received},
		capture.Line{Source: "src:2", Text: "ISS,POSITION,LAT,51.6", Timestamp: received},
		capture.Line{Source: "src:2", Text: "ISS,POSITION,LAT,NaN", Timestamp: received},
	)

	client := &mockNATSClient{}
	var c counters
	forward(context.Background(), lines, client, &c)

	if len(client.published) != 2 {
		t.Fatalf("Expected 2 published values, got %d", len(client.published))
	}

	lon := client.published[0]
	if lon.Item != "LON" || lon.Value != 179.5 || lon.TimeNanos != 100 || lon.Source != "src:1" {
		t.Errorf("Unexpected longitude value %+v", lon)
	}

	lat := client.published[1]
	if lat.TimeNanos != received.UnixNano() {
		t.Errorf("Expected line without time to use the receive time, got %d", lat.TimeNanos)
	}
	if lat.Source != "src:2" {
		t.Errorf("Expected source src:2, got %s", lat.Source)
	}

	if c.lines.Load() != 4 || c.invalid.Load() != 2 || c.published.Load() != 2 || c.failed.Load() != 0 {
		t.Errorf("Unexpected counters lines=%d invalid=%d published=%d failed=%d",
			c.lines.Load(), c.invalid.Load(), c.published.Load(), c.failed.Load())
	}
}

func TestForward_PublishError(t *testing.T) {
	client := &mockNATSClient{publishError: errors.New("nats down")}
	var c counters

	forward(context.Background(), feed(
		capture.Line{Source: "s", Text: "A,B,C,1,1"},
		capture.Line{Source: "s", Text: "A,B,C,2,2"},
	), client, &c)

	if c.failed.Load() != 2 {
		t.Errorf("Expected 2 failed publishes, got %d", c.failed.Load())
	}
	if c.published.Load() != 0 {
		t.Errorf("Expected no published values, got %d", c.published.Load())
	}
}

func TestForward_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lines := make(chan capture.Line)
	done := make(chan struct{})

	go func() {
		forward(ctx, lines, &mockNATSClient{}, &counters{})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("forward did not return after cancel")
	}
}
