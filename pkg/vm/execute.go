package vm

import "fmt"

// MemWidth is the width in bytes of a memory access described by an
// Effect.
type MemWidth int

// The access widths an Effect may describe.
const (
	WidthByte MemWidth = 1
	WidthHalf MemWidth = 2
	WidthWord MemWidth = 4
)

// ReadMem describes a memory load an instruction requires. Rd is
// carried here, rather than on the instruction alone, so the CPU
// knows where to write the loaded value back to once the access
// completes.
type ReadMem struct {
	Addr   uint32
	Width  MemWidth
	Signed bool
	Rd     uint32
}

// WriteMem describes a memory store an instruction requires.
type WriteMem struct {
	Addr  uint32
	Data  uint32
	Width MemWidth
}

// WriteBack describes a register write-back.
type WriteBack struct {
	Rd    uint32
	Value uint32
}

// Effect describes everything a single instruction does, without
// doing any of it. At most one of Read/Write is meaningful per
// instruction (no instruction both loads and stores); a Read carries
// its own destination register (ReadMem.Rd) and comes without a
// WriteBack; a Branch may accompany a WriteBack (JAL, JALR) or stand
// alone. The
// absence of all four fields means the instruction retires with
// PC += 4 and no other side effect.
type Effect struct {
	Read      *ReadMem
	Write     *WriteMem
	WriteBack *WriteBack
	Branch    *uint32
}

// UnimplementedInstructionError reports a decoded instruction whose
// opcode is recognized but whose semantics are not implemented
// (SYSTEM/ECALL/EBREAK/CSR*, or a reserved funct3/funct7 combination).
type UnimplementedInstructionError struct {
	Format      Format
	Instruction Instruction
}

func (e *UnimplementedInstructionError) Error() string {
	return fmt.Sprintf("vm: unimplemented instruction: format=%s raw=0x%08x", e.Format, e.Instruction.Raw)
}

// Execute computes the effect of a decoded instruction. rs1Val and
// rs2Val are the signed XLEN values read from the register file for
// the instruction's source registers (zero for U/J formats, which
// carry none); pc is the address of the instruction being executed.
//
// Execute performs no memory, register, or PC mutation: it only
// describes what the CPU must do. It is a pure, deterministic
// function of its inputs.
func Execute(instr Instruction, rs1Val, rs2Val int32, pc uint32) (Effect, error) {
	switch instr.Format {
	case FormatR:
		return executeR(instr, rs1Val, rs2Val)
	case FormatI:
		return executeI(instr, rs1Val, pc)
	case FormatS:
		return executeS(instr, rs1Val, rs2Val)
	case FormatB:
		return executeB(instr, rs1Val, rs2Val, pc)
	case FormatU:
		return executeU(instr, pc)
	case FormatJ:
		return executeJ(instr, pc)
	default:
		return Effect{}, &UnimplementedInstructionError{Format: instr.Format, Instruction: instr}
	}
}

func unimplemented(instr Instruction) (Effect, error) {
	return Effect{}, &UnimplementedInstructionError{Format: instr.Format, Instruction: instr}
}

func writeBack(rd, value uint32) Effect {
	return Effect{WriteBack: &WriteBack{Rd: rd, Value: value}}
}

func executeR(instr Instruction, rs1Val, rs2Val int32) (Effect, error) {
	switch [2]uint32{instr.Funct7, instr.Funct3} {
	case [2]uint32{0x00, 0}: // ADD
		return writeBack(instr.Rd, uint32(rs1Val+rs2Val)), nil
	case [2]uint32{0x20, 0}: // SUB
		return writeBack(instr.Rd, uint32(rs1Val-rs2Val)), nil
	case [2]uint32{0x00, 1}: // SLL
		return writeBack(instr.Rd, uint32(rs1Val<<(uint32(rs2Val)&0x1F))), nil
	case [2]uint32{0x00, 2}: // SLT
		return writeBack(instr.Rd, boolToWord(rs1Val < rs2Val)), nil
	case [2]uint32{0x00, 3}: // SLTU
		return writeBack(instr.Rd, boolToWord(uint32(rs1Val) < uint32(rs2Val))), nil
	case [2]uint32{0x00, 4}: // XOR
		return writeBack(instr.Rd, uint32(rs1Val^rs2Val)), nil
	case [2]uint32{0x00, 5}: // SRL
		return writeBack(instr.Rd, uint32(rs1Val)>>(uint32(rs2Val)&0x1F)), nil
	case [2]uint32{0x20, 5}: // SRA
		return writeBack(instr.Rd, uint32(rs1Val>>(uint32(rs2Val)&0x1F))), nil
	case [2]uint32{0x00, 6}: // OR
		return writeBack(instr.Rd, uint32(rs1Val|rs2Val)), nil
	case [2]uint32{0x00, 7}: // AND
		return writeBack(instr.Rd, uint32(rs1Val&rs2Val)), nil
	default:
		return unimplemented(instr)
	}
}

func executeI(instr Instruction, rs1Val int32, pc uint32) (Effect, error) {
	switch instr.Opcode {
	case OpcodeJALR:
		target := (uint32(rs1Val+instr.Imm)) &^ 1
		return Effect{
			WriteBack: &WriteBack{Rd: instr.Rd, Value: pc + 4},
			Branch:    &target,
		}, nil
	case OpcodeLoad:
		addr := uint32(rs1Val + instr.Imm)
		switch instr.Funct3 {
		case 0x0: // LB
			return Effect{Read: &ReadMem{Addr: addr, Width: WidthByte, Signed: true, Rd: instr.Rd}}, nil
		case 0x1: // LH
			return Effect{Read: &ReadMem{Addr: addr, Width: WidthHalf, Signed: true, Rd: instr.Rd}}, nil
		case 0x2: // LW
			return Effect{Read: &ReadMem{Addr: addr, Width: WidthWord, Signed: true, Rd: instr.Rd}}, nil
		case 0x4: // LBU
			return Effect{Read: &ReadMem{Addr: addr, Width: WidthByte, Signed: false, Rd: instr.Rd}}, nil
		case 0x5: // LHU
			return Effect{Read: &ReadMem{Addr: addr, Width: WidthHalf, Signed: false, Rd: instr.Rd}}, nil
		default:
			return unimplemented(instr)
		}
	case OpcodeI:
		switch instr.Funct3 {
		case 0x0: // ADDI
			return writeBack(instr.Rd, uint32(rs1Val+instr.Imm)), nil
		case 0x2: // SLTI
			return writeBack(instr.Rd, boolToWord(rs1Val < instr.Imm)), nil
		case 0x3: // SLTIU
			return writeBack(instr.Rd, boolToWord(uint32(rs1Val) < uint32(instr.Imm))), nil
		case 0x4: // XORI
			return writeBack(instr.Rd, uint32(rs1Val^instr.Imm)), nil
		case 0x6: // ORI
			return writeBack(instr.Rd, uint32(rs1Val|instr.Imm)), nil
		case 0x7: // ANDI
			return writeBack(instr.Rd, uint32(rs1Val&instr.Imm)), nil
		case 0x1: // SLLI
			return writeBack(instr.Rd, uint32(rs1Val<<instr.Shamt)), nil
		case 0x5:
			switch instr.Funct7 {
			case 0x00: // SRLI
				return writeBack(instr.Rd, uint32(rs1Val)>>instr.Shamt), nil
			case 0x20: // SRAI
				return writeBack(instr.Rd, uint32(rs1Val>>instr.Shamt)), nil
			default:
				return unimplemented(instr)
			}
		default:
			return unimplemented(instr)
		}
	case OpcodeFence:
		// FENCE/FENCE.I retire as a no-op: a single in-order retiring
		// core has nothing to order against.
		return Effect{}, nil
	case OpcodeSystem:
		// ECALL, EBREAK, and the CSR* instructions are recognized but
		// not implemented.
		return unimplemented(instr)
	default:
		return unimplemented(instr)
	}
}

func executeS(instr Instruction, rs1Val, rs2Val int32) (Effect, error) {
	addr := uint32(rs1Val + instr.Imm)
	switch instr.Funct3 {
	case 0x0: // SB
		return Effect{Write: &WriteMem{Addr: addr, Data: uint32(rs2Val) & 0xFF, Width: WidthByte}}, nil
	case 0x1: // SH
		return Effect{Write: &WriteMem{Addr: addr, Data: uint32(rs2Val) & 0xFFFF, Width: WidthHalf}}, nil
	case 0x2: // SW
		return Effect{Write: &WriteMem{Addr: addr, Data: uint32(rs2Val), Width: WidthWord}}, nil
	default:
		return unimplemented(instr)
	}
}

func executeB(instr Instruction, rs1Val, rs2Val int32, pc uint32) (Effect, error) {
	var taken bool
	switch instr.Funct3 {
	case 0x0: // BEQ
		taken = rs1Val == rs2Val
	case 0x1: // BNE
		taken = rs1Val != rs2Val
	case 0x4: // BLT
		taken = rs1Val < rs2Val
	case 0x5: // BGE
		taken = rs1Val >= rs2Val
	case 0x6: // BLTU
		taken = uint32(rs1Val) < uint32(rs2Val)
	case 0x7: // BGEU
		taken = uint32(rs1Val) >= uint32(rs2Val)
	default:
		return unimplemented(instr)
	}
	if !taken {
		return Effect{}, nil
	}
	target := uint32(int64(pc) + int64(instr.Imm))
	return Effect{Branch: &target}, nil
}

func executeU(instr Instruction, pc uint32) (Effect, error) {
	switch instr.Opcode {
	case OpcodeLUI:
		return writeBack(instr.Rd, uint32(instr.Imm)), nil
	case OpcodeAUIPC:
		return writeBack(instr.Rd, pc+uint32(instr.Imm)), nil
	default:
		return unimplemented(instr)
	}
}

func executeJ(instr Instruction, pc uint32) (Effect, error) {
	target := uint32(int64(pc) + int64(instr.Imm))
	return Effect{
		WriteBack: &WriteBack{Rd: instr.Rd, Value: pc + 4},
		Branch:    &target,
	}, nil
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
