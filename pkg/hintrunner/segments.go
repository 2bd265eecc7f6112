package hintrunner

import (
	"github.com/NethermindEth/cairo-vm-go/pkg/vm"
	mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
)

// AddSegmentHint implements `memory[ap] = segments.add()`: it allocates
// a fresh memory segment and writes its base address to [ap].
type AddSegmentHint struct {
	HintData
}

func (h *AddSegmentHint) Execute(virtualMachine *vm.VirtualMachine) error {
	segmentIndex := virtualMachine.Memory.AllocateEmptySegment()
	base := mem.MemoryValueFromSegmentAndOffset(uint64(segmentIndex), 0)
	apAddr := virtualMachine.Context.AddressAp()
	return virtualMachine.Memory.WriteToAddress(&apAddr, &base)
}

func (h *AddSegmentHint) String() string {
	return "AddSegmentHint"
}
