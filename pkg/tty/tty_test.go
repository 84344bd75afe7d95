package tty

import (
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/rv32i/pkg/vm"
)

func TestStdoutTTYWritesOnMatchingAddress(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	sink := NewStdoutTTY(Config{Address: 0x200}, &buf)

	require.NoError(t, sink.Observe(&vm.LastStore{Addr: 0x200, Value: 'A'}))
	assert.Equal(t, "A", buf.String())
	require.NoError(t, sink.Close())
}

func TestStdoutTTYIgnoresNonMatchingAddress(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	sink := NewStdoutTTY(Config{Address: 0x200}, &buf)

	require.NoError(t, sink.Observe(&vm.LastStore{Addr: 0x300, Value: 'X'}))
	assert.Empty(t, buf.String())
}

func TestStdoutTTYIgnoresNilStore(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	sink := NewStdoutTTY(Config{Address: 0x200}, &buf)

	require.NoError(t, sink.Observe(nil))
	assert.Empty(t, buf.String())
}

func TestStdoutTTYTruncatesToLowByte(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	sink := NewStdoutTTY(Config{Address: 0x200}, &buf)

	require.NoError(t, sink.Observe(&vm.LastStore{Addr: 0x200, Value: 0xFF41}))
	assert.Equal(t, "A", buf.String())
}

func TestSerialTTYRoundTrip(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	clientDone := make(chan net.Conn, 1)
	go func() {
		conn, err := net.Dial("tcp", ln.Addr().String())
		require.NoError(t, err)
		clientDone <- conn
	}()

	serverConn, err := ln.Accept()
	require.NoError(t, err)
	defer serverConn.Close()
	clientConn := <-clientDone
	defer clientConn.Close()

	sink := &SerialTTY{cfg: Config{Address: 0x200}, conn: serverConn}
	defer sink.Close()

	require.NoError(t, sink.Observe(&vm.LastStore{Addr: 0x300, Value: 'Y'})) // no-op: wrong address
	require.NoError(t, sink.Observe(&vm.LastStore{Addr: 0x200, Value: 'Z'}))

	var b [1]byte
	_, err = clientConn.Read(b[:])
	require.NoError(t, err)
	assert.Equal(t, byte('Z'), b[0])
	assert.Equal(t, serverConn.LocalAddr(), sink.LocalAddr())
}
