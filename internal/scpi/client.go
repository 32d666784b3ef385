// internal/scpi/client.go
package scpi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tamzrod/flogmeter/internal/frame"
)

// DefaultResetDelay is the settle time after *RST before the first query.
const DefaultResetDelay = 500 * time.Millisecond

// ErrNotConnected is returned by every call on a closed client.
var ErrNotConnected = errors.New("scpi: not connected")

// Config is minimal transport config.
type Config struct {
	Endpoint   string
	Timeout    time.Duration // per read/write
	ResetDelay time.Duration // 0 = DefaultResetDelay, <0 = none
}

// Client is one SCPI-over-TCP session with an NGM20x.
// Requests are serialized; a query owns the connection until its reply is read.
type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
	idn     string
}

// Dial connects to the instrument and runs the reset handshake.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("scpi: endpoint required")
	}

	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	c, err := Open(conn, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

// Open runs the handshake on an established connection:
// flush, *RST, settle, *IDN?.
func Open(conn net.Conn, cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}

	c := &Client{
		conn:    conn,
		r:       bufio.NewReaderSize(conn, frame.DefaultReadSize),
		timeout: cfg.Timeout,
	}

	if err := c.send("\r\n\r\n\r\n"); err != nil {
		return nil, err
	}
	if err := c.Command("*RST"); err != nil {
		return nil, err
	}

	delay := cfg.ResetDelay
	if delay == 0 {
		delay = DefaultResetDelay
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	idn, err := c.Query("*IDN?")
	if err != nil {
		return nil, fmt.Errorf("scpi: identify: %w", err)
	}
	c.idn = idn
	return c, nil
}

// Identity returns the *IDN? reply captured at connect.
func (c *Client) Identity() string { return c.idn }

// Close closes the TCP connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Command sends one program message that has no reply.
func (c *Client) Command(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(cmd)
}

// Query sends cmd and returns its reply line without the terminator.
func (c *Client) Query(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(cmd); err != nil {
		return "", err
	}
	return c.readLine(cmd)
}

func (c *Client) queryInt(cmd string) (int, error) {
	s, err := c.Query(cmd)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("scpi: %s: bad integer reply %q", cmd, s)
	}
	return n, nil
}

// ---- wire ----

func (c *Client) send(cmd string) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if _, err := c.conn.Write([]byte(cmd + "\r\n")); err != nil {
		return fmt.Errorf("scpi: write %q: %w", cmd, err)
	}
	return nil
}

// readLine returns the next non-blank reply line.
// A source that gives out mid-reply is a truncated source.
func (c *Client) readLine(cmd string) (string, error) {
	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
		line, err := c.r.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", frame.ErrTruncatedSource, cmd, err)
		}
		if s := strings.TrimSpace(line); s != "" {
			return s, nil
		}
	}
}

// connSource feeds frame.Reassemble from the buffered connection,
// re-arming the read deadline before every physical read.
type connSource struct {
	c   *Client
	buf []byte
}

func (s *connSource) Next() ([]byte, error) {
	for {
		_ = s.c.conn.SetReadDeadline(time.Now().Add(s.c.timeout))
		n, err := s.c.r.Read(s.buf)
		if n > 0 {
			return s.buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
}
