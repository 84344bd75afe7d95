package vm

import "fmt"

// NumRegisters is the number of architectural integer registers.
const NumRegisters = 32

// FetchError wraps a memory failure that occurred while fetching the
// instruction word at pc.
type FetchError struct {
	Pc  uint32
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("vm: fetch error at pc=0x%08x: %s", e.Pc, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExecuteError wraps an execute-stage failure at pc.
type ExecuteError struct {
	Pc  uint32
	Err error
}

func (e *ExecuteError) Error() string {
	return fmt.Sprintf("vm: execute error at pc=0x%08x: %s", e.Pc, e.Err)
}

func (e *ExecuteError) Unwrap() error {
	return e.Err
}

// MemoryAccessError wraps a load/store failure that occurred while
// applying an instruction's effect, at the pc of the instruction that
// caused it. It is distinct from the lower-level OutOfBoundsError it
// wraps, which Memory itself returns with no notion of "current pc".
type MemoryAccessError struct {
	Pc  uint32
	Err error
}

func (e *MemoryAccessError) Error() string {
	return fmt.Sprintf("vm: memory error at pc=0x%08x: %s", e.Pc, e.Err)
}

func (e *MemoryAccessError) Unwrap() error {
	return e.Err
}

// LastStore records the address and value of the most recent memory
// store performed by a cycle, for the driver's TTY convention (§4.7,
// §6). It is nil if the most recent cycle performed no store.
type LastStore struct {
	Addr  uint32
	Value uint32
}

// CPU owns the register file, program counter, and memory for a
// single simulated machine, and implements the fetch/decode/execute
// cycle. A CPU is not safe for concurrent use: a single goroutine
// should own it.
type CPU struct {
	Regs [NumRegisters]uint32
	PC   ProgramCounter
	Mem  *Memory

	// LastStore is set at the end of every cycle that performed a
	// memory write, and reset to nil by every successful cycle that
	// did not. Callers that want to observe a cycle's store should
	// check it immediately after Cycle returns.
	LastStore *LastStore
}

// NewCPU constructs a CPU with the given memory size in bytes, all
// registers zeroed, and PC at zero.
func NewCPU(memSize int) *CPU {
	return &CPU{Mem: NewMemory(memSize)}
}

// regRead returns the value of register r as the CPU sees it: x0
// always reads as zero.
func (c *CPU) regRead(r uint32) int32 {
	if r == 0 {
		return 0
	}
	return int32(c.Regs[r])
}

// regWrite writes value to register r, unless r is x0, whose writes
// are always silently discarded.
func (c *CPU) regWrite(r, value uint32) {
	if r != 0 {
		c.Regs[r] = value
	}
}

// Cycle performs one fetch/decode/execute/apply step, per the
// ordering mandated by §4.5/§4.7:
//
//  1. fetch the instruction word at PC;
//  2. decode it;
//  3. read rs1/rs2 from the register file (zero for U/J formats);
//  4. execute, producing an Effect;
//  5. apply any read, then any write, then any write-back;
//  6. advance PC to the branch target, or else PC+4.
//
// When the decoder reports the end-of-program sentinel it returns a
// *DecodeError wrapping ErrEndOfProgram; callers should detect it with
// errors.Is and treat it as a clean stop rather than a fault. Any
// other non-nil error is a fault: *FetchError, *DecodeError,
// *ExecuteError, or *MemoryAccessError. Every error carries the pc at
// which it occurred.
func (c *CPU) Cycle() error {
	pc := c.PC.Address()

	word, err := c.Mem.ReadU32(pc)
	if err != nil {
		return &FetchError{Pc: pc, Err: err}
	}

	instr, err := Decode(word)
	if err != nil {
		return &DecodeError{Pc: pc, Err: err}
	}

	var rs1Val, rs2Val int32
	switch instr.Format {
	case FormatR:
		rs1Val, rs2Val = c.regRead(instr.Rs1), c.regRead(instr.Rs2)
	case FormatI:
		rs1Val = c.regRead(instr.Rs1)
	case FormatS:
		rs1Val, rs2Val = c.regRead(instr.Rs1), c.regRead(instr.Rs2)
	case FormatB:
		rs1Val, rs2Val = c.regRead(instr.Rs1), c.regRead(instr.Rs2)
	case FormatU, FormatJ:
		// no source registers
	}

	effect, err := Execute(instr, rs1Val, rs2Val, pc)
	if err != nil {
		return &ExecuteError{Pc: pc, Err: err}
	}

	c.LastStore = nil

	if effect.Read != nil {
		data, err := c.readMem(*effect.Read)
		if err != nil {
			return &MemoryAccessError{Pc: pc, Err: err}
		}
		if effect.Read.Rd != 0 {
			c.regWrite(effect.Read.Rd, data)
		}
	}

	if effect.Write != nil {
		if err := c.writeMem(*effect.Write); err != nil {
			return &MemoryAccessError{Pc: pc, Err: err}
		}
		c.LastStore = &LastStore{Addr: effect.Write.Addr, Value: effect.Write.Data}
	}

	if effect.WriteBack != nil {
		c.regWrite(effect.WriteBack.Rd, effect.WriteBack.Value)
	}

	if effect.Branch != nil {
		c.PC.Set(*effect.Branch)
	} else {
		c.PC.Increment()
	}

	return nil
}

func (c *CPU) readMem(r ReadMem) (uint32, error) {
	switch {
	case r.Width == WidthByte && r.Signed:
		return c.Mem.ReadI8(r.Addr)
	case r.Width == WidthByte:
		return c.Mem.ReadU8(r.Addr)
	case r.Width == WidthHalf && r.Signed:
		return c.Mem.ReadI16(r.Addr)
	case r.Width == WidthHalf:
		return c.Mem.ReadU16(r.Addr)
	default:
		return c.Mem.ReadU32(r.Addr)
	}
}

func (c *CPU) writeMem(w WriteMem) error {
	switch w.Width {
	case WidthByte:
		return c.Mem.Write8(w.Addr, w.Data)
	case WidthHalf:
		return c.Mem.Write16(w.Addr, w.Data)
	default:
		return c.Mem.Write32(w.Addr, w.Data)
	}
}

// String renders a one-line diagnostic summary of CPU state, in the
// style of the teacher's VM.String.
func (c *CPU) String() string {
	return fmt.Sprintf("{pc:0x%08x regs:%v}", c.PC.Address(), c.Regs)
}
