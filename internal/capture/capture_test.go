package capture

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	sources := []string{"localhost:30003", "localhost:30004"}
	capture := New(sources)

	if capture == nil {
		t.Fatal("New() returned nil")
	}
	if len(capture.sources) != len(sources) {
		t.Errorf("Expected %d sources, got %d", len(sources), len(capture.sources))
	}
	if capture.reconnectDelay != defaultReconnectDelay {
		t.Errorf("Expected default reconnect delay, got %v", capture.reconnectDelay)
	}
	if capture.idleTimeout != defaultIdleTimeout {
		t.Errorf("Expected default idle timeout, got %v", capture.idleTimeout)
	}
	if cap(capture.lines) != 1000 {
		t.Errorf("Expected line buffer of 1000, got %d", cap(capture.lines))
	}
}

func TestNew_Options(t *testing.T) {
	logger := quietLogger()
	capture := New(nil, WithReconnectDelay(time.Second), WithIdleTimeout(2*time.Second), WithLogger(logger))

	if capture.reconnectDelay != time.Second {
		t.Errorf("Expected reconnect delay 1s, got %v", capture.reconnectDelay)
	}
	if capture.idleTimeout != 2*time.Second {
		t.Errorf("Expected idle timeout 2s, got %v", capture.idleTimeout)
	}
	if capture.logger != logger {
		t.Error("Expected custom logger")
	}
}

func TestCapture_StopWithoutStart(t *testing.T) {
	capture := New([]string{"localhost:1"})
	capture.Stop()
	capture.Stop()

	if _, ok := <-capture.Lines(); ok {
		t.Error("Expected lines channel to be closed")
	}
}

func TestCapture_StopWhileReconnecting(t *testing.T) {
	// nothing listens on port 1
	capture := New([]string{"127.0.0.1:1"}, WithReconnectDelay(time.Hour), WithLogger(quietLogger()))
	if err := capture.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		capture.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() blocked during the reconnect delay")
	}
}

func TestCapture_Wait(t *testing.T) {
	capture := New(nil)
	if !capture.wait(time.Millisecond) {
		t.Error("Expected wait to complete")
	}
	close(capture.stopChan)
	if capture.wait(time.Hour) {
		t.Error("Expected wait to be interrupted")
	}
}

func TestCapture_ConfigureTCPKeepaliveNonTCP(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	// must not panic for a non-TCP connection
	New(nil, WithLogger(quietLogger())).configureTCPKeepalive(client, "pipe")
}

func TestCapture_ReadLines(t *testing.T) {
	client, server := net.Pipe()
	capture := New(nil, WithLogger(quietLogger()))

	errc := make(chan error, 1)
	go func() { errc <- capture.readLines("pipe", client) }()

	go func() {
		_, _ = server.Write([]byte("ISS,POSITION,LON,179.5,100\r\n\n  \nISS,POSITION,LAT,0,100\n"))
		server.Close()
	}()

	want := []string{"ISS,POSITION,LON,179.5,100", "ISS,POSITION,LAT,0,100"}
	for i, w := range want {
		select {
		case line := <-capture.Lines():
			if line.Text != w {
				t.Errorf("line %d: expected %q, got %q", i, w, line.Text)
			}
			if line.Source != "pipe" {
				t.Errorf("Expected source pipe, got %s", line.Source)
			}
			if line.Timestamp.IsZero() {
				t.Error("Expected timestamp to be set")
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Timed out waiting for line %d", i)
		}
	}

	select {
	case err := <-errc:
		if err == nil || err.Error() != "closed by peer" {
			t.Errorf("Expected closed by peer, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("readLines did not return after close")
	}
}

func TestCapture_ReadLinesDrainsBufferAfterClose(t *testing.T) {
	client, server := net.Pipe()
	capture := New(nil, WithLogger(quietLogger()))

	var payload strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&payload, "ISS,POSITION,LON,%d,%d\n", i, i)
	}
	go func() {
		_, _ = server.Write([]byte(payload.String()))
		server.Close()
	}()

	if err := capture.readLines("pipe", client); err == nil || err.Error() != "closed by peer" {
		t.Errorf("Expected closed by peer, got %v", err)
	}
	if got := len(capture.Lines()); got != 50 {
		t.Errorf("Expected 50 buffered lines delivered, got %d", got)
	}
}

func TestCapture_ReadLinesIdleTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	capture := New(nil, WithIdleTimeout(50*time.Millisecond), WithLogger(quietLogger()))

	start := time.Now()
	err := capture.readLines("pipe", client)
	if err == nil || err.Error() != "idle timeout" {
		t.Errorf("Expected idle timeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Idle timeout took too long")
	}
}
