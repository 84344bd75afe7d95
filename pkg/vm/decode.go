package vm

import (
	"errors"
	"fmt"
)

// The opcodes recognized by Decode, per the RV32I base ISA.
const (
	OpcodeR      = uint32(0b0110011) // integer reg-reg
	OpcodeI      = uint32(0b0010011) // integer reg-imm
	OpcodeLoad   = uint32(0b0000011) // loads
	OpcodeStore  = uint32(0b0100011) // stores
	OpcodeBranch = uint32(0b1100011) // branches
	OpcodeJAL    = uint32(0b1101111)
	OpcodeJALR   = uint32(0b1100111)
	OpcodeLUI    = uint32(0b0110111)
	OpcodeAUIPC  = uint32(0b0010111)
	OpcodeSystem = uint32(0b1110011) // ECALL/EBREAK/CSR*
	OpcodeFence  = uint32(0b0001111)

	// opcodeEndOfProgram is a sentinel, not an architectural opcode: an
	// all-ones low byte conventionally marks a trailing guard word so a
	// driver can detect a clean end of program.
	opcodeEndOfProgram = uint32(0b1111111)
)

// ErrEndOfProgram is the normal clean-termination signal produced by
// Decode when it sees the end-of-program sentinel opcode. It is not a
// bug; callers should treat it as "stop cycling".
var ErrEndOfProgram = errors.New("vm: end of program")

// UnknownOpcodeError reports an opcode Decode does not recognize.
type UnknownOpcodeError struct {
	Opcode uint32
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("vm: unknown opcode 0b%07b", e.Opcode)
}

// DecodeError wraps a decode-stage failure with the PC it occurred at.
type DecodeError struct {
	Pc  uint32
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("vm: decode error at pc=0x%08x: %s", e.Pc, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode classifies the opcode of a raw 32-bit instruction word and
// constructs the corresponding format record, with its immediate (if
// any) already reconstructed and sign-extended. Decode is pure: it
// performs no memory, register, or PC access.
//
// It returns ErrEndOfProgram for the conventional all-ones sentinel
// opcode, and an *UnknownOpcodeError for any opcode not listed below.
func Decode(word uint32) (Instruction, error) {
	op := opcode(word)
	switch op {
	case OpcodeR:
		return decodeR(word), nil
	case OpcodeI, OpcodeLoad, OpcodeJALR, OpcodeSystem, OpcodeFence:
		return decodeI(word), nil
	case OpcodeStore:
		return decodeS(word), nil
	case OpcodeBranch:
		return decodeB(word), nil
	case OpcodeJAL:
		return decodeJ(word), nil
	case OpcodeLUI, OpcodeAUIPC:
		return decodeU(word), nil
	case opcodeEndOfProgram:
		return Instruction{}, ErrEndOfProgram
	default:
		return Instruction{}, &UnknownOpcodeError{Opcode: op}
	}
}
