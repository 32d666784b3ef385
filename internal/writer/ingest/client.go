// internal/writer/ingest/client.go
package ingest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// Raw Ingest v1 wire constants. The 10-byte header layout is fixed:
//
//	0-1 magic "RI", 2 version, 3 area, 4-5 unit id, 6-7 address, 8-9 count
//
// followed by count big-endian registers. The server answers with one status byte.
const (
	headerLen = 10
	version   = 0x01

	areaHoldingRegisters = 3

	statusOK       = 0x00
	statusRejected = 0x01
)

var magic = [2]byte{'R', 'I'}

// ErrRejected is returned when the ingest endpoint refuses a packet.
var ErrRejected = errors.New("writer ingest: rejected")

// packet is one holding-register block.
type packet struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

func (p packet) MarshalBinary() ([]byte, error) {
	if len(p.regs) > 0xFFFF {
		return nil, fmt.Errorf("writer ingest: %d registers in one packet", len(p.regs))
	}

	var b bytes.Buffer
	b.Grow(headerLen + 2*len(p.regs))
	b.Write(magic[:])
	b.WriteByte(version)
	b.WriteByte(areaHoldingRegisters)

	hdr := []uint16{uint16(p.unitID), p.addr, uint16(len(p.regs))}
	if err := binary.Write(&b, binary.BigEndian, hdr); err != nil {
		return nil, err
	}
	if err := binary.Write(&b, binary.BigEndian, p.regs); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// EndpointClient pushes meter blocks to a Raw Ingest endpoint.
// Each block is its own short-lived connection, so there is nothing to reconnect.
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
	dialer   net.Dialer
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &EndpointClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		dialer:   net.Dialer{Timeout: cfg.Timeout},
	}, nil
}

func (c *EndpointClient) Close() error { return nil }

// WriteRegisters sends one block and waits for the status byte.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	pkt, err := packet{unitID: unitID, addr: addr, regs: regs}.MarshalBinary()
	if err != nil {
		return err
	}

	conn, err := c.dialer.Dial("tcp", c.endpoint)
	if err != nil {
		return fmt.Errorf("writer ingest: dial %s: %w", c.endpoint, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("writer ingest: deadline: %w", err)
	}

	// net.Conn.Write returns an error on short writes
	if _, err := conn.Write(pkt); err != nil {
		return fmt.Errorf("writer ingest: write: %w", err)
	}

	var status [1]byte
	if _, err := io.ReadFull(conn, status[:]); err != nil {
		return fmt.Errorf("writer ingest: read status: %w", err)
	}

	switch status[0] {
	case statusOK:
		return nil
	case statusRejected:
		return ErrRejected
	default:
		return fmt.Errorf("writer ingest: unknown status 0x%02x", status[0])
	}
}
