package vm

import (
	"encoding/binary"
	"fmt"
)

// OutOfBoundsError reports an access whose last touched byte lies
// outside the memory array.
type OutOfBoundsError struct {
	Addr uint32
	Max  int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("vm: memory access out of bounds: addr=0x%08x max=%d", e.Addr, e.Max)
}

// Memory is a flat, zero-initialized, byte-addressable array with
// little-endian multi-byte accessors. It performs no alignment
// checks: any access whose last touched byte is within bounds
// succeeds regardless of address alignment.
type Memory struct {
	data []byte
}

// NewMemory allocates a zero-initialized memory of the given size in
// bytes.
func NewMemory(size int) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Len returns the size of the memory in bytes.
func (m *Memory) Len() int {
	return len(m.data)
}

func (m *Memory) checkBounds(addr uint32, width int) error {
	if int(addr)+width > len(m.data) {
		return &OutOfBoundsError{Addr: addr, Max: len(m.data)}
	}
	return nil
}

// ReadU8 reads a byte at addr, zero-extended to a word.
func (m *Memory) ReadU8(addr uint32) (uint32, error) {
	if err := m.checkBounds(addr, 1); err != nil {
		return 0, err
	}
	return uint32(m.data[addr]), nil
}

// ReadI8 reads a byte at addr, sign-extended to a word.
func (m *Memory) ReadI8(addr uint32) (uint32, error) {
	if err := m.checkBounds(addr, 1); err != nil {
		return 0, err
	}
	return uint32(int32(int8(m.data[addr]))), nil
}

// ReadU16 reads a little-endian half-word at addr, zero-extended.
func (m *Memory) ReadU16(addr uint32) (uint32, error) {
	if err := m.checkBounds(addr, 2); err != nil {
		return 0, err
	}
	return uint32(binary.LittleEndian.Uint16(m.data[addr:])), nil
}

// ReadI16 reads a little-endian half-word at addr, sign-extended.
func (m *Memory) ReadI16(addr uint32) (uint32, error) {
	if err := m.checkBounds(addr, 2); err != nil {
		return 0, err
	}
	return uint32(int32(int16(binary.LittleEndian.Uint16(m.data[addr:])))), nil
}

// ReadU32 reads a little-endian word at addr.
func (m *Memory) ReadU32(addr uint32) (uint32, error) {
	if err := m.checkBounds(addr, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[addr:]), nil
}

// Write8 stores the low 8 bits of v at addr.
func (m *Memory) Write8(addr uint32, v uint32) error {
	if err := m.checkBounds(addr, 1); err != nil {
		return err
	}
	m.data[addr] = byte(v)
	return nil
}

// Write16 stores the low 16 bits of v, little-endian, at addr.
func (m *Memory) Write16(addr uint32, v uint32) error {
	if err := m.checkBounds(addr, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.data[addr:], uint16(v))
	return nil
}

// Write32 stores v, little-endian, at addr.
func (m *Memory) Write32(addr uint32, v uint32) error {
	if err := m.checkBounds(addr, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[addr:], v)
	return nil
}

// loadSegment is the PT_LOAD-style bulk copy used by the ELF loader:
// it copies src into memory starting at addr, without any width
// interpretation, and zero-fills [addr+len(src), addr+zeroTo) beyond it.
func (m *Memory) loadSegment(addr uint32, src []byte, zeroTo uint32) error {
	if err := m.checkBounds(addr, int(zeroTo)); err != nil {
		return err
	}
	n := copy(m.data[addr:], src)
	for i := int(addr) + n; i < int(addr)+int(zeroTo); i++ {
		m.data[i] = 0
	}
	return nil
}

// Dump renders a diagnostic, fixed-width hex/binary listing of memory
// words, in the style used by the teacher's VM.String for its stack
// dump. Intended for use behind a trace/verbose flag, not by default.
func (m *Memory) Dump(from, to uint32) string {
	s := fmt.Sprintf("MEMORY | size: %d\n", len(m.data))
	for addr := from; addr < to; addr += 4 {
		word, err := m.ReadU32(addr)
		if err != nil {
			break
		}
		s += fmt.Sprintf("0x%08x: 0x%08x | 0b%032b\n", addr, word, word)
	}
	return s
}
