package hintrunner

import (
	"fmt"

	"github.com/NethermindEth/cairo-vm-go/pkg/vm"
)

// Hinter is a single non-deterministic hint body. Resolution of its
// `ids` table and its ApTracking snapshot are bound into the concrete
// implementation when the hint is built from the program file.
type Hinter interface {
	Execute(vm *vm.VirtualMachine) error
	fmt.Stringer
}

// HintsAtPc is the ordered list of hints attached to a single PC; it
// is itself a Hinter so a HintRunner can hold exactly one Hinter value
// per PC while still running several hints in order.
type HintsAtPc []Hinter

func (hints HintsAtPc) Execute(vm *vm.VirtualMachine) error {
	for _, hint := range hints {
		if err := hint.Execute(vm); err != nil {
			return fmt.Errorf("%s: %w", hint, err)
		}
	}
	return nil
}

func (hints HintsAtPc) String() string {
	return fmt.Sprintf("%d hints", len(hints))
}

// HintRunner dispatches to the hint(s) registered at the VM's current
// PC, implementing vm.HintRunner.
type HintRunner struct {
	hints map[uint64]Hinter
}

func NewHintRunner(hints map[uint64]Hinter) HintRunner {
	return HintRunner{hints: hints}
}

func (h *HintRunner) RunHint(virtualMachine *vm.VirtualMachine) error {
	hint, ok := h.hints[virtualMachine.Context.Pc.Offset]
	if !ok {
		return nil
	}
	return hint.Execute(virtualMachine)
}
