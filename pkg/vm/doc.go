// Package vm contains the RV32I instruction-set simulator.
//
// The architecture is the 32-bit base integer subset of RISC-V
// (RV32I), unprivileged. Each instruction is 32 bits wide and is
// decoded into one of six formats:
//
//	R - register, register, register     (e.g. ADD, SUB, AND)
//	I - register, register, immediate    (e.g. ADDI, loads, JALR)
//	S - register, register, immediate    (stores)
//	B - register, register, immediate    (branches)
//	U - register, immediate              (LUI, AUIPC)
//	J - register, immediate              (JAL)
//
// Decoding is pure: Decode never touches the CPU state, and
// Execute never touches memory or the register file directly. It
// returns an Effect describing what the instruction would do; the
// CPU is the only component that applies an Effect. This separation
// mirrors the teacher's design where decode/encode are pure
// functions of a raw word and the VM is the sole mutator of state.
//
// Memory is a flat, zero-initialized byte array addressed by byte
// offset, little-endian throughout, with no alignment
// enforcement. Register x0 is hard-wired to zero: writes to it are
// silently discarded and reads always yield zero.
//
// CSR, FENCE, ECALL and EBREAK are recognized by the decoder but
// FENCE retires as a no-op and the rest surface as
// UnimplementedInstructionError at the execute stage.
package vm
