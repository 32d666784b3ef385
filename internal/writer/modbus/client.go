// internal/writer/modbus/client.go
package modbus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// maxRegistersPerWrite is the FC16 quantity limit.
const maxRegistersPerWrite = 123

// EndpointClient exports meter blocks to one Modbus TCP register server.
// Writes are serialized because the unit id lives on the shared handler.
// A failed write drops the connection; the next write dials again.
type EndpointClient struct {
	mu        sync.Mutex
	handler   *modbus.TCPClientHandler
	client    modbus.Client
	connected bool
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// NewEndpointClient dials once so a bad endpoint fails at startup.
func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	c := &EndpointClient{handler: h, client: modbus.NewClient(h)}
	if err := c.connect(); err != nil {
		return nil, fmt.Errorf("writer modbus: connect: %w", err)
	}
	return c, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return c.handler.Close()
}

// WriteRegisters writes a register block with FC16, split into
// protocol-sized requests when the block is wider than one request.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}
	if int(addr)+len(regs) > 0x10000 {
		return fmt.Errorf("writer modbus: block at %d (%d regs) exceeds address space", addr, len(regs))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(); err != nil {
		return err
	}
	c.handler.SlaveId = unitID

	for _, ch := range chunks(addr, regs) {
		if _, err := c.client.WriteMultipleRegisters(ch.addr, uint16(len(ch.regs)), pack(ch.regs)); err != nil {
			_ = c.handler.Close()
			c.connected = false
			return fmt.Errorf("writer modbus: write %d@%d: %w", len(ch.regs), ch.addr, err)
		}
	}
	return nil
}

func (c *EndpointClient) connect() error {
	if c.connected {
		return nil
	}
	if err := c.handler.Connect(); err != nil {
		return err
	}
	c.connected = true
	return nil
}

type chunk struct {
	addr uint16
	regs []uint16
}

func chunks(addr uint16, regs []uint16) []chunk {
	var out []chunk
	for len(regs) > 0 {
		n := min(len(regs), maxRegistersPerWrite)
		out = append(out, chunk{addr: addr, regs: regs[:n]})
		addr += uint16(n)
		regs = regs[n:]
	}
	return out
}

// pack lays registers out big-endian, as they appear on the wire.
func pack(regs []uint16) []byte {
	out := make([]byte, 0, len(regs)*2)
	for _, r := range regs {
		out = binary.BigEndian.AppendUint16(out, r)
	}
	return out
}
