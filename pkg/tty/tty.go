// Package tty implements the simulator's TTY output convention: a
// store to a fixed address is interpreted as one byte of program
// output (§4.7/§6 of the specification), namely the low byte of the
// stored value. The width of the store is not checked: vm.LastStore
// does not record it, so half-word and word stores to the address
// emit their low byte as well. The vm.CPU
// itself knows nothing about this convention; it only exposes the
// address and value of the last store performed by a cycle. This
// package watches that record and forwards matching bytes to a sink.
//
// The TCP-attached SerialTTY is adapted from the teacher's
// pkg/vm/tty.go SerialTTY, which polled a status register to decide
// when to read/write a byte; RV32I has no status registers of its
// own, so this version keys off the store address instead and has no
// polling loop of its own — the driver calls Observe once per cycle.
package tty

import (
	"errors"
	"io"
	"log"
	"net"

	"github.com/bassosimone/rv32i/pkg/vm"
)

// ErrDetached indicates the underlying connection has gone away.
var ErrDetached = errors.New("tty: detach")

// TTY is the sink a driver forwards TTY-convention output bytes to.
type TTY interface {
	// Observe is called once per CPU cycle with that cycle's last
	// store, or nil if the cycle performed no store. Observe decides,
	// based on the configured address, whether to emit a byte.
	Observe(last *vm.LastStore) error

	io.Closer
}

// Config carries the parameters of the TTY convention: which address
// is watched for single-byte stores.
type Config struct {
	Address uint32
}

// StdoutTTY forwards matching bytes to an io.Writer (typically
// os.Stdout). It is the default sink when no TCP console is
// requested.
type StdoutTTY struct {
	cfg Config
	w   io.Writer
}

// NewStdoutTTY constructs a StdoutTTY watching the configured address
// and writing matching bytes to w.
func NewStdoutTTY(cfg Config, w io.Writer) *StdoutTTY {
	return &StdoutTTY{cfg: cfg, w: w}
}

// Observe implements TTY.
func (t *StdoutTTY) Observe(last *vm.LastStore) error {
	if last == nil || last.Addr != t.cfg.Address {
		return nil
	}
	_, err := t.w.Write([]byte{byte(last.Value)})
	return err
}

// Close implements io.Closer. StdoutTTY owns no resource of its own.
func (t *StdoutTTY) Close() error {
	return nil
}

var _ TTY = &StdoutTTY{}

// SerialTTY is a TTY backed by a single controlling TCP connection,
// the shape the teacher's pkg/vm/tty.go used for its serial console.
//
// The caller constructs one with AcceptConn, which blocks until a
// console attaches, and is expected to defer Close.
type SerialTTY struct {
	cfg  Config
	conn net.Conn
}

// AcceptConn waits for a controlling TCP connection to attach to the
// console, then returns a SerialTTY instance wired to it.
func AcceptConn(cfg Config) (*SerialTTY, error) {
	nl, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	defer nl.Close()
	log.Printf("tty: waiting for console to attach on %s/tcp...", nl.Addr())
	conn, err := nl.Accept()
	if err != nil {
		return nil, err
	}
	return &SerialTTY{cfg: cfg, conn: conn}, nil
}

// Observe implements TTY.
func (t *SerialTTY) Observe(last *vm.LastStore) error {
	if last == nil || last.Addr != t.cfg.Address {
		return nil
	}
	if _, err := t.conn.Write([]byte{byte(last.Value)}); err != nil {
		return errors.Join(ErrDetached, err)
	}
	return nil
}

// Close closes the underlying connection.
func (t *SerialTTY) Close() error {
	return t.conn.Close()
}

// LocalAddr returns the address the console listener accepted on.
func (t *SerialTTY) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

var _ TTY = &SerialTTY{}
