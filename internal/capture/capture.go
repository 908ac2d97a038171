// Package capture reads newline-delimited telemetry from TCP sources, reconnecting when a
// source drops or goes quiet.
package capture

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	defaultReconnectDelay = 5 * time.Second
	defaultIdleTimeout    = 30 * time.Second
	maxLineLength         = 64 * 1024
)

// Line is one telemetry line read from a source
type Line struct {
	Source    string
	Text      string
	Timestamp time.Time
}

// Capture reads lines from every source into one channel
type Capture struct {
	sources        []string
	conns          map[string]net.Conn
	lines          chan Line
	wg             sync.WaitGroup
	stopChan       chan struct{}
	stopOnce       sync.Once
	mu             sync.Mutex
	reconnectDelay time.Duration
	idleTimeout    time.Duration
	logger         *slog.Logger
}

// Option configures a Capture
type Option func(*Capture)

// WithReconnectDelay sets the wait between connection attempts
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Capture) { c.reconnectDelay = d }
}

// WithIdleTimeout drops a connection that sends nothing for d
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Capture) { c.idleTimeout = d }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Capture) { c.logger = l }
}

// New creates a new Capture instance
func New(sources []string, opts ...Option) *Capture {
	c := &Capture{
		sources:        sources,
		conns:          make(map[string]net.Conn),
		lines:          make(chan Line, 1000),
		stopChan:       make(chan struct{}),
		reconnectDelay: defaultReconnectDelay,
		idleTimeout:    defaultIdleTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start connects to every source in the background
func (c *Capture) Start() error {
	for _, source := range c.sources {
		c.wg.Add(1)
		go c.connectToSource(source)
	}
	return nil
}

// Stop closes all connections and the lines channel. It is safe to call more than once.
func (c *Capture) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
		c.mu.Lock()
		for _, conn := range c.conns {
			conn.Close()
		}
		c.mu.Unlock()
		c.wg.Wait()
		close(c.lines)
	})
}

// Lines returns the channel for receiving lines
func (c *Capture) Lines() <-chan Line {
	return c.lines
}

func (c *Capture) stopped() bool {
	select {
	case <-c.stopChan:
		return true
	default:
		return false
	}
}

// wait sleeps for d unless the capture is stopped first
func (c *Capture) wait(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.stopChan:
		return false
	case <-t.C:
		return true
	}
}

func (c *Capture) configureTCPKeepalive(conn net.Conn, source string) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	if err := tcpConn.SetKeepAlive(true); err != nil {
		c.logger.Warn("Failed to set keepalive", "source", source, "error", err)
	}
	if err := tcpConn.SetKeepAlivePeriod(2 * time.Second); err != nil {
		c.logger.Warn("Failed to set keepalive period", "source", source, "error", err)
	}
}

func (c *Capture) connectToSource(source string) {
	defer c.wg.Done()

	var disconnectTime time.Time
	c.logger.Info("Connecting", "source", source)

	for !c.stopped() {
		conn, err := net.DialTimeout("tcp", source, c.reconnectDelay)
		if err != nil {
			if disconnectTime.IsZero() {
				disconnectTime = time.Now()
				c.logger.Warn("Source unavailable", "source", source, "error", err)
			}
			if !c.wait(c.reconnectDelay) {
				return
			}
			continue
		}

		c.configureTCPKeepalive(conn, source)
		if disconnectTime.IsZero() {
			c.logger.Info("Connected", "source", source)
		} else {
			c.logger.Info("Reconnected", "source", source, "after", time.Since(disconnectTime).Round(time.Millisecond))
			disconnectTime = time.Time{}
		}

		c.mu.Lock()
		if c.stopped() {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conns[source] = conn
		c.mu.Unlock()

		err = c.readLines(source, conn)

		c.mu.Lock()
		delete(c.conns, source)
		c.mu.Unlock()

		if c.stopped() {
			return
		}
		disconnectTime = time.Now()
		c.logger.Warn("Connection lost", "source", source, "error", err)
		if !c.wait(c.reconnectDelay) {
			return
		}
	}
}

// readLines forwards lines until the connection fails, goes idle or the capture stops
func (c *Capture) readLines(source string, conn net.Conn) error {
	defer conn.Close()

	scanner := bufio.NewScanner(&deadlineReader{conn: conn, timeout: c.idleTimeout})
	scanner.Buffer(make([]byte, 4096), maxLineLength)

	for {
		if !scanner.Scan() {
			err := scanner.Err()
			var netErr net.Error
			switch {
			case err == nil, errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed):
				return errors.New("closed by peer")
			case errors.As(err, &netErr) && netErr.Timeout():
				return errors.New("idle timeout")
			default:
				return err
			}
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		select {
		case c.lines <- Line{Source: source, Text: text, Timestamp: time.Now().UTC()}:
		case <-c.stopChan:
			return nil
		}
	}
}

// deadlineReader arms the idle deadline only when the scanner needs more bytes, so lines
// already buffered are delivered even after the peer has gone.
type deadlineReader struct {
	conn    net.Conn
	timeout time.Duration
}

func (r *deadlineReader) Read(p []byte) (int, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(r.timeout)); err != nil {
		return 0, err
	}
	return r.conn.Read(p)
}
