package vm

import (
	"testing"

	mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVM(t *testing.T, ctx Context) *VirtualMachine {
	t.Helper()
	memory := mem.InitializeEmptyMemory()
	memory.AllocateEmptySegment() // program segment
	memory.AllocateEmptySegment() // execution segment

	virtualMachine, err := NewVirtualMachine(ctx, memory, VirtualMachineConfig{})
	require.NoError(t, err)
	return virtualMachine
}

// [ap] = [fp - 1] + [fp - 2], ap++
func TestRunInstructionAssertEqAdd(t *testing.T) {
	virtualMachine := newTestVM(t, Context{Ap: 5, Fp: 5})

	op0 := mem.MemoryValueFromInt(3)
	op1 := mem.MemoryValueFromInt(4)
	require.NoError(t, virtualMachine.Memory.Write(ExecutionSegment, 4, &op0)) // [fp - 1]
	require.NoError(t, virtualMachine.Memory.Write(ExecutionSegment, 3, &op1)) // [fp - 2]

	instruction := &Instruction{
		OffDest:     0,
		OffOp0:      -1,
		OffOp1:      -2,
		DstRegister: Ap,
		Op0Register: Fp,
		Op1Source:   FpPlusOffOp1,
		Res:         AddOperands,
		PcUpdate:    NextInstr,
		ApUpdate:    Add1,
		Opcode:      AssertEq,
	}

	require.NoError(t, virtualMachine.RunInstruction(instruction))

	dst, err := virtualMachine.Memory.Read(ExecutionSegment, 5)
	require.NoError(t, err)
	dstFelt, err := dst.ToFieldElement()
	require.NoError(t, err)
	assert.Equal(t, "7", dstFelt.Text(10))

	assert.Equal(t, uint64(6), virtualMachine.Context.Ap)
	assert.Equal(t, uint64(5), virtualMachine.Context.Fp)
	assert.EqualValues(t, 1, virtualMachine.Context.Pc.Offset)
}

// call abs <op1>, writing [ap] = fp and [ap + 1] = pc + instruction size
func TestRunInstructionCallWritesFpAndReturnPcOnce(t *testing.T) {
	virtualMachine := newTestVM(t, Context{
		Pc: mem.MemoryAddress{SegmentIndex: ProgramSegment, Offset: 10},
		Ap: 5,
		Fp: 5,
	})

	target := mem.MemoryValueFromSegmentAndOffset(ProgramSegment, 20)
	require.NoError(t, virtualMachine.Memory.Write(ProgramSegment, 11, &target)) // immediate

	instruction := &Instruction{
		OffDest:     0,
		OffOp0:      1,
		OffOp1:      1,
		DstRegister: Ap,
		Op0Register: Ap,
		Op1Source:   Imm,
		Res:         Op1,
		PcUpdate:    Jump,
		ApUpdate:    SameAp,
		Opcode:      Call,
	}

	require.NoError(t, virtualMachine.RunInstruction(instruction))

	savedFp, err := virtualMachine.Memory.Read(ExecutionSegment, 5)
	require.NoError(t, err)
	fpAddr, err := savedFp.ToMemoryAddress()
	require.NoError(t, err)
	assert.EqualValues(t, 5, fpAddr.Offset)

	returnPc, err := virtualMachine.Memory.Read(ExecutionSegment, 6)
	require.NoError(t, err)
	returnAddr, err := returnPc.ToMemoryAddress()
	require.NoError(t, err)
	assert.EqualValues(t, 12, returnAddr.Offset) // pc (10) + instruction size (2)

	assert.EqualValues(t, 20, virtualMachine.Context.Pc.Offset)
	assert.Equal(t, uint64(7), virtualMachine.Context.Fp) // ap (5) + 2
}

func TestRunInstructionRetRestoresFp(t *testing.T) {
	virtualMachine := newTestVM(t, Context{Ap: 10, Fp: 10})

	returnFp := mem.MemoryValueFromSegmentAndOffset(ExecutionSegment, 3)
	require.NoError(t, virtualMachine.Memory.Write(ExecutionSegment, 8, &returnFp)) // [fp - 2]

	instruction := &Instruction{
		OffDest:     -2,
		OffOp0:      -1,
		OffOp1:      -1,
		DstRegister: Fp,
		Op0Register: Fp,
		Op1Source:   FpPlusOffOp1,
		Res:         Unconstrained,
		PcUpdate:    NextInstr,
		ApUpdate:    SameAp,
		Opcode:      Ret,
	}

	require.NoError(t, virtualMachine.RunInstruction(instruction))
	assert.Equal(t, uint64(3), virtualMachine.Context.Fp)
}
