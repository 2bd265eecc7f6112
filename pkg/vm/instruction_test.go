package vm

import (
	"testing"

	f "github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, word uint64) *Instruction {
	t.Helper()
	var felt f.Element
	felt.SetUint64(word)
	instruction, err := DecodeInstruction(&felt)
	require.NoError(t, err)
	return instruction
}

func TestDecodeInstruction_OffsetsWithZeroFlags(t *testing.T) {
	// 0x0000_8001_8000_7FFF: off0=-1, off1=0, off2=1, all flags zero (NOP)
	instruction := decode(t, 0x0000_8001_8000_7FFF)

	assert.EqualValues(t, -1, instruction.OffDest)
	assert.EqualValues(t, 0, instruction.OffOp0)
	assert.EqualValues(t, 1, instruction.OffOp1)
	assert.Equal(t, Ap, instruction.DstRegister)
	assert.Equal(t, Ap, instruction.Op0Register)
	assert.Equal(t, Op0, instruction.Op1Source)
	assert.Equal(t, Op1, instruction.Res)
	assert.Equal(t, NextInstr, instruction.PcUpdate)
	assert.Equal(t, SameAp, instruction.ApUpdate)
	assert.Equal(t, SameFp, instruction.FpUpdate)
	assert.Equal(t, Nop, instruction.Opcode)
	assert.EqualValues(t, 1, instruction.Size())
}

func TestDecodeInstruction_CallAbsImm(t *testing.T) {
	// 0x14A7_8000_8000_8000 with imm=7: CALL, op1=imm, res=add, pc jump abs, ap += imm
	instruction := decode(t, 0x14A7_8000_8000_8000)

	assert.EqualValues(t, 0, instruction.OffDest)
	assert.EqualValues(t, 0, instruction.OffOp0)
	assert.EqualValues(t, 0, instruction.OffOp1)
	assert.Equal(t, Imm, instruction.Op1Source)
	assert.Equal(t, Call, instruction.Opcode)
	assert.Equal(t, APPlus2, instruction.FpUpdate)
	assert.Equal(t, AddImm, instruction.ApUpdate)
	assert.EqualValues(t, 2, instruction.Size())
}

func TestDecodeInstruction_JnzUnconstrainedAssertEq(t *testing.T) {
	// 0x4200_8000_8000_8000: JNZ with res unconstrained, opcode ASSERT_EQ
	instruction := decode(t, 0x4200_8000_8000_8000)

	assert.Equal(t, AssertEq, instruction.Opcode)
	assert.Equal(t, SameFp, instruction.FpUpdate)
	assert.EqualValues(t, 1, instruction.Size())
	assert.Equal(t, Jnz, instruction.PcUpdate)
	assert.Equal(t, Unconstrained, instruction.Res)
}

func TestDecodeInstruction_ReservedBitSet(t *testing.T) {
	var felt f.Element
	felt.SetUint64(1 << (48 + 15))
	_, err := DecodeInstruction(&felt)
	assert.ErrorContains(t, err, "reserved bit 15")
}

func TestDecodeInstruction_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		word uint64
	}{
		{"op1 src", 0b011 << (48 + 2)},
		{"pc update", 0b011 << (48 + 7)},
		{"ap update", 0b011 << (48 + 10)},
		{"opcode", 0b011 << (48 + 12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var felt f.Element
			felt.SetUint64(tt.word)
			_, err := DecodeInstruction(&felt)
			assert.Error(t, err)
		})
	}
}

func TestInstructionEncodeDecodeRoundTrip(t *testing.T) {
	words := []uint64{
		0x0000_8001_8000_7FFF,
		0x14A7_8000_8000_8000,
		0x4200_8000_8000_8000,
		0x0000_8000_8000_8000, // NOP
	}
	for _, word := range words {
		instruction := decode(t, word)
		assert.Equal(t, word, instruction.Encode())
	}
}
