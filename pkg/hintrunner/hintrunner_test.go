package hintrunner

import (
	"testing"

	"github.com/NethermindEth/cairo-vm-go/pkg/vm"
	mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
	"github.com/stretchr/testify/require"
)

// newTestVM builds a minimal VirtualMachine with an execution segment
// ready to read/write through, ap at offset 50 and fp at offset 10.
func newTestVM(t *testing.T) *vm.VirtualMachine {
	t.Helper()
	memory := mem.CreateMemoryManager().Memory
	memory.AllocateEmptySegment() // program segment
	memory.AllocateEmptySegment() // execution segment

	virtualMachine, err := vm.NewVirtualMachine(vm.Context{Ap: 50, Fp: 10}, memory, vm.VirtualMachineConfig{})
	require.NoError(t, err)
	return virtualMachine
}

// idAt builds a Reference naming a fixed fp-relative offset and writes
// val to the memory cell it resolves to.
func idAt(t *testing.T, virtualMachine *vm.VirtualMachine, fpOffset int16, val mem.MemoryValue) Reference {
	t.Helper()
	ref := Reference{Register: vm.Fp, Offset1: fpOffset}
	addr, ok, err := ref.Resolve(virtualMachine, ApTracking{})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, virtualMachine.Memory.WriteToAddress(&addr, &val))
	return ref
}

// idSlot builds a Reference naming a fixed fp-relative offset without
// writing anything there yet, for output ids a hint will populate.
func idSlot(fpOffset int16) Reference {
	return Reference{Register: vm.Fp, Offset1: fpOffset}
}

func apValue(t *testing.T, virtualMachine *vm.VirtualMachine) mem.MemoryValue {
	t.Helper()
	apAddr := virtualMachine.Context.AddressAp()
	value, err := virtualMachine.Memory.ReadFromAddress(&apAddr)
	require.NoError(t, err)
	return value
}

func feltOf(v uint64) mem.MemoryValue {
	return mem.MemoryValueFromUint(v)
}
