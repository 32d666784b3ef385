// internal/scpi/logger.go
package scpi

import (
	"fmt"
	"time"

	"github.com/tamzrod/flogmeter/internal/frame"
	"github.com/tamzrod/flogmeter/internal/sample"
)

// dataAvailableBit is FastLogDataAvailable in STAT:OPER:INST:ISUMn.
const dataAvailableBit = 1 << 12

// ---- instrument setup ----

// SyncDateTime sets the instrument clock to now.
func (c *Client) SyncDateTime(now time.Time) error {
	if err := c.Command(fmt.Sprintf("SYST:DATE %d, %d, %d", now.Day(), int(now.Month()), now.Year())); err != nil {
		return err
	}
	return c.Command(fmt.Sprintf("SYST:TIME %d, %d, %d", now.Hour(), now.Minute(), now.Second()))
}

// SetOutput selects channel ch and programs its voltage and current limits.
func (c *Client) SetOutput(ch int, volt, curr float64) error {
	for _, cmd := range []string{
		fmt.Sprintf("INST OUT%d", ch),
		fmt.Sprintf("VOLT %3.3f", volt),
		fmt.Sprintf("CURR %3.3f", curr),
	} {
		if err := c.Command(cmd); err != nil {
			return err
		}
	}
	return nil
}

// OutputEnable switches channel ch on or off.
func (c *Client) OutputEnable(ch int, on bool) error {
	if err := c.Command(fmt.Sprintf("INST OUT%d", ch)); err != nil {
		return err
	}
	state := 0
	if on {
		state = 1
	}
	return c.Command(fmt.Sprintf("OUTP:STATE %d", state))
}

// ---- fast log ----

// StartLogger (re)starts fast logging of channel ch to the SCPI target.
func (c *Client) StartLogger(ch int, rateToken string) error {
	for _, cmd := range []string{
		"FLOG:STAT 0",
		"FLOG:FILE 0",
		"FLOG:TARG SCPI",
		fmt.Sprintf("STAT:OPER:INST:ISUM%d:ENAB %d", ch, dataAvailableBit),
		"FLOG:SRAT " + rateToken,
		"FLOG:STAT 1",
	} {
		if err := c.Command(cmd); err != nil {
			return err
		}
	}
	return nil
}

// StopLogger stops fast logging.
func (c *Client) StopLogger() error {
	return c.Command("FLOG:STAT 0")
}

// LoggerRunning queries FLOG:STAT?.
func (c *Client) LoggerRunning() (bool, error) {
	n, err := c.queryInt("FLOG:STAT?")
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// DataAvailable reports whether a fast-log block is ready for channel ch.
func (c *Client) DataAvailable(ch int) (bool, error) {
	reg, err := c.queryInt(fmt.Sprintf("STAT:OPER:INST:ISUM%d?", ch))
	if err != nil {
		return false, err
	}
	return reg&dataAvailableBit != 0, nil
}

// ReadLoggerData fetches one fast-log block and returns its payload.
// The line terminator after the payload is consumed so the next reply
// starts on a clean boundary.
func (c *Client) ReadLoggerData() (frame.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send("FLOG:DATA?"); err != nil {
		return frame.Frame{}, err
	}

	src := &connSource{c: c, buf: make([]byte, frame.DefaultReadSize)}
	f, err := frame.Reassemble(nil, src)
	if err != nil {
		return frame.Frame{}, err
	}

	// a payload with one byte past whole samples already carries the filler
	if f.Trailing == 0 && len(f.Payload)%sample.Size == 0 {
		n, err := c.consumeTerminator()
		if err != nil {
			return frame.Frame{}, err
		}
		f.Trailing = n
	}
	return f, nil
}

// consumeTerminator reads "\n" or "\r\n" following a block.
func (c *Client) consumeTerminator() (int, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))

	b, err := c.r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: terminator: %w", frame.ErrTruncatedSource, err)
	}
	switch b {
	case '\n':
		return 1, nil
	case '\r':
		b, err = c.r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: terminator: %w", frame.ErrTruncatedSource, err)
		}
		if b == '\n' {
			return 2, nil
		}
	}
	return 0, fmt.Errorf("%w (terminator 0x%02x)", frame.ErrDesync, b)
}
