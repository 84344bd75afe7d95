package vm

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
)

// ElfParseError wraps a failure to parse the ELF container itself.
type ElfParseError struct {
	Err error
}

func (e *ElfParseError) Error() string {
	return fmt.Sprintf("vm: elf parse error: %s", e.Err)
}

func (e *ElfParseError) Unwrap() error {
	return e.Err
}

// ElfTooLittleMemoryError reports that a PT_LOAD segment does not fit
// in the CPU's memory.
type ElfTooLittleMemoryError struct {
	Vaddr   uint64
	Memsz   uint64
	MemSize int
}

func (e *ElfTooLittleMemoryError) Error() string {
	return fmt.Sprintf(
		"vm: elf segment at 0x%x size %d does not fit in %d bytes of memory",
		e.Vaddr, e.Memsz, e.MemSize,
	)
}

// LoadELF parses data as an ELF32 object, copies every PT_LOAD
// segment into memory at its virtual address (zero-filling the BSS
// tail where p_memsz > p_filesz), and sets PC to the entry point.
//
// Only the entry point and PT_LOAD program headers are consulted: no
// dynamic linking, relocation, or interpreter support is attempted,
// matching §4.6/§6.
func (c *CPU) LoadELF(data []byte) error {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return &ElfParseError{Err: err}
	}
	defer f.Close()

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if prog.Vaddr+prog.Memsz > uint64(c.Mem.Len()) {
			return &ElfTooLittleMemoryError{
				Vaddr:   prog.Vaddr,
				Memsz:   prog.Memsz,
				MemSize: c.Mem.Len(),
			}
		}
		segment := make([]byte, prog.Filesz)
		if prog.Filesz > 0 {
			if _, err := io.ReadFull(prog.Open(), segment); err != nil {
				return &ElfParseError{Err: err}
			}
		}
		if err := c.Mem.loadSegment(uint32(prog.Vaddr), segment, uint32(prog.Memsz)); err != nil {
			return &ElfTooLittleMemoryError{
				Vaddr:   prog.Vaddr,
				Memsz:   prog.Memsz,
				MemSize: c.Mem.Len(),
			}
		}
	}

	c.PC.Set(uint32(f.Entry))
	return nil
}
