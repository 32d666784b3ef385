// internal/writer/ingest/client_test.go
package ingest

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacket_Layout(t *testing.T) {
	b, err := packet{unitID: 7, addr: 0x0102, regs: []uint16{0xABCD, 0x0001}}.MarshalBinary()
	require.NoError(t, err)

	want := []byte{
		'R', 'I', 0x01, 0x03,
		0x00, 0x07,
		0x01, 0x02,
		0x00, 0x02,
		0xAB, 0xCD, 0x00, 0x01,
	}
	assert.Equal(t, want, b)
}

// serveOnce accepts one connection, captures the packet and answers with status.
func serveOnce(t *testing.T, status byte) (string, <-chan []byte) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		hdr := make([]byte, headerLen)
		if _, err := io.ReadFull(conn, hdr); err != nil {
			return
		}
		count := int(hdr[8])<<8 | int(hdr[9])
		body := make([]byte, 2*count)
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}
		got <- append(hdr, body...)
		_, _ = conn.Write([]byte{status})
	}()
	return ln.Addr().String(), got
}

func TestWriteRegisters_OK(t *testing.T) {
	addr, got := serveOnce(t, statusOK)

	c, err := NewEndpointClient(Config{Endpoint: addr, Timeout: time.Second})
	require.NoError(t, err)

	require.NoError(t, c.WriteRegisters(1, 96, []uint16{1, 2, 3}))

	pkt := <-got
	assert.Equal(t, byte('R'), pkt[0])
	assert.Equal(t, []byte{0x00, 0x60}, pkt[6:8])
	assert.Len(t, pkt, headerLen+6)
}

func TestWriteRegisters_Rejected(t *testing.T) {
	addr, _ := serveOnce(t, statusRejected)

	c, err := NewEndpointClient(Config{Endpoint: addr, Timeout: time.Second})
	require.NoError(t, err)

	assert.ErrorIs(t, c.WriteRegisters(1, 0, []uint16{9}), ErrRejected)
}

func TestNewEndpointClient_RequiresEndpoint(t *testing.T) {
	_, err := NewEndpointClient(Config{})
	assert.Error(t, err)
}
