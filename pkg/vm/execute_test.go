package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rType(funct7, rs2, rs1, funct3, rd uint32) Instruction {
	return Instruction{Format: FormatR, Opcode: OpcodeR, Funct7: funct7, Rs2: rs2, Rs1: rs1, Funct3: funct3, Rd: rd}
}

func TestExecuteIsPure(t *testing.T) {
	t.Parallel()
	instr := rType(0x00, 2, 1, 0, 3) // ADD
	e1, err1 := Execute(instr, 10, 20, 0)
	e2, err2 := Execute(instr, 10, 20, 0)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, e1, e2)
}

func TestExecuteAddWraps(t *testing.T) {
	t.Parallel()
	instr := rType(0x00, 2, 1, 0, 3)
	e, err := Execute(instr, int32(0x7FFFFFFF), 1, 0)
	require.NoError(t, err)
	require.NotNil(t, e.WriteBack)
	assert.Equal(t, uint32(0x80000000), e.WriteBack.Value)
}

func TestExecuteRTypeOpcodes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name           string
		funct7, funct3 uint32
		a, b           int32
		want           uint32
	}{
		{"ADD", 0x00, 0, 5, 3, 8},
		{"SUB", 0x20, 0, 5, 3, 2},
		{"SLL", 0x00, 1, 1, 4, 16},
		{"SLT true", 0x00, 2, -1, 1, 1},
		{"SLT false", 0x00, 2, 1, -1, 0},
		{"SLTU", 0x00, 3, 1, -1, 1}, // -1 as unsigned is huge, so 1 < huge
		{"XOR", 0x00, 4, 0b1100, 0b1010, 0b0110},
		{"SRL", 0x00, 5, -1, 1, 0x7FFFFFFF},
		{"SRA", 0x20, 5, -4, 1, uint32(int32(-2))},
		{"OR", 0x00, 6, 0b1100, 0b0010, 0b1110},
		{"AND", 0x00, 7, 0b1100, 0b1010, 0b1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			instr := rType(tc.funct7, 0, 0, tc.funct3, 1)
			e, err := Execute(instr, tc.a, tc.b, 0)
			require.NoError(t, err)
			require.NotNil(t, e.WriteBack)
			assert.Equal(t, tc.want, e.WriteBack.Value)
		})
	}
}

func TestExecuteRTypeUnimplemented(t *testing.T) {
	t.Parallel()
	instr := rType(0x01, 0, 0, 0, 1) // MUL's funct7, not implemented
	_, err := Execute(instr, 1, 1, 0)
	var unimpl *UnimplementedInstructionError
	assert.ErrorAs(t, err, &unimpl)
}

func TestExecuteITypeArithmetic(t *testing.T) {
	t.Parallel()
	instr := Instruction{Format: FormatI, Opcode: OpcodeI, Funct3: 0, Rd: 1, Imm: 5}
	e, err := Execute(instr, 10, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(15), e.WriteBack.Value)
}

func TestExecuteITypeLoad(t *testing.T) {
	t.Parallel()
	instr := Instruction{Format: FormatI, Opcode: OpcodeLoad, Funct3: 0x4, Rd: 2, Imm: 4} // LBU
	e, err := Execute(instr, 100, 0, 0)
	require.NoError(t, err)
	require.NotNil(t, e.Read)
	assert.Equal(t, uint32(104), e.Read.Addr)
	assert.Equal(t, WidthByte, e.Read.Width)
	assert.False(t, e.Read.Signed)
}

func TestExecuteJALRMasksLSB(t *testing.T) {
	t.Parallel()
	instr := Instruction{Format: FormatI, Opcode: OpcodeJALR, Rd: 1, Imm: 3}
	e, err := Execute(instr, 8, 0, 100)
	require.NoError(t, err)
	require.NotNil(t, e.Branch)
	assert.Equal(t, uint32(10), *e.Branch, "bit 0 of rs1+imm must be cleared")
	assert.Equal(t, uint32(104), e.WriteBack.Value)
}

func TestExecuteFenceIsNoop(t *testing.T) {
	t.Parallel()
	instr := Instruction{Format: FormatI, Opcode: OpcodeFence}
	e, err := Execute(instr, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Effect{}, e)
}

func TestExecuteSystemUnimplemented(t *testing.T) {
	t.Parallel()
	instr := Instruction{Format: FormatI, Opcode: OpcodeSystem}
	_, err := Execute(instr, 0, 0, 0)
	var unimpl *UnimplementedInstructionError
	assert.ErrorAs(t, err, &unimpl)
}

func TestExecuteSType(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		funct3 uint32
		want   MemWidth
		data   uint32
	}{
		{"SB", 0x0, WidthByte, 0xFF},
		{"SH", 0x1, WidthHalf, 0xFFFF},
		{"SW", 0x2, WidthWord, 0xFFFFFFFF},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			instr := Instruction{Format: FormatS, Opcode: OpcodeStore, Funct3: tc.funct3, Imm: 0}
			e, err := Execute(instr, 0, -1, 0)
			require.NoError(t, err)
			require.NotNil(t, e.Write)
			assert.Equal(t, tc.want, e.Write.Width)
			assert.Equal(t, tc.data, e.Write.Data)
		})
	}
}

func TestExecuteBranchTaken(t *testing.T) {
	t.Parallel()
	instr := Instruction{Format: FormatB, Opcode: OpcodeBranch, Funct3: 0x0, Imm: 16} // BEQ
	e, err := Execute(instr, 5, 5, 100)
	require.NoError(t, err)
	require.NotNil(t, e.Branch)
	assert.Equal(t, uint32(116), *e.Branch)
}

func TestExecuteBranchNotTaken(t *testing.T) {
	t.Parallel()
	instr := Instruction{Format: FormatB, Opcode: OpcodeBranch, Funct3: 0x0, Imm: 16}
	e, err := Execute(instr, 5, 6, 100)
	require.NoError(t, err)
	assert.Nil(t, e.Branch)
}

func TestExecuteBranchUnsignedVariants(t *testing.T) {
	t.Parallel()
	// BLTU: -1 as unsigned is huge, so 1 < -1(unsigned) is true
	instr := Instruction{Format: FormatB, Opcode: OpcodeBranch, Funct3: 0x6, Imm: 8}
	e, err := Execute(instr, 1, -1, 0)
	require.NoError(t, err)
	assert.NotNil(t, e.Branch)

	// BLT: signed comparison, 1 < -1 is false
	instrSigned := Instruction{Format: FormatB, Opcode: OpcodeBranch, Funct3: 0x4, Imm: 8}
	e2, err := Execute(instrSigned, 1, -1, 0)
	require.NoError(t, err)
	assert.Nil(t, e2.Branch)
}

func TestExecuteUType(t *testing.T) {
	t.Parallel()
	lui := Instruction{Format: FormatU, Opcode: OpcodeLUI, Rd: 11, Imm: int32(0x12345000)}
	e, err := Execute(lui, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345000), e.WriteBack.Value)

	auipc := Instruction{Format: FormatU, Opcode: OpcodeAUIPC, Rd: 1, Imm: int32(0x12345000)}
	e2, err := Execute(auipc, 0, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345004), e2.WriteBack.Value)
}

func TestExecuteJType(t *testing.T) {
	t.Parallel()
	instr := Instruction{Format: FormatJ, Opcode: OpcodeJAL, Rd: 1, Imm: 32}
	e, err := Execute(instr, 0, 0, 4)
	require.NoError(t, err)
	require.NotNil(t, e.Branch)
	assert.Equal(t, uint32(36), *e.Branch)
	assert.Equal(t, uint32(8), e.WriteBack.Value)
}
