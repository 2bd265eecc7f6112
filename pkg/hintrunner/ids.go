package hintrunner

import (
	"fmt"
	"math/big"

	"github.com/NethermindEth/cairo-vm-go/pkg/vm"
	mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
)

// HintData is embedded by every concrete Hinter: the symbolic `ids`
// table and the ApTracking snapshot taken when the hint was emitted,
// both bound at program-load time, never read from RunContext.
type HintData struct {
	Ids        map[string]Reference
	ApTracking ApTracking
}

func (h *HintData) reference(name string) (Reference, error) {
	ref, ok := h.Ids[name]
	if !ok {
		return Reference{}, fmt.Errorf("IncorrectIds: no id named %q", name)
	}
	return ref, nil
}

// address resolves the named id to the memory address it points at,
// without dereferencing it.
func (h *HintData) address(virtualMachine *vm.VirtualMachine, name string) (mem.MemoryAddress, error) {
	ref, err := h.reference(name)
	if err != nil {
		return mem.UnknownValue, err
	}
	addr, ok, err := ref.Resolve(virtualMachine, h.ApTracking)
	if err != nil {
		return mem.UnknownValue, fmt.Errorf("resolving id %q: %w", name, err)
	}
	if !ok {
		return mem.UnknownValue, fmt.Errorf("FailedToGetIds: id %q has no address yet", name)
	}
	return addr, nil
}

// felt resolves the named id, reads it from memory, and requires it
// be a field element.
func (h *HintData) felt(virtualMachine *vm.VirtualMachine, name string) (*big.Int, error) {
	addr, err := h.address(virtualMachine, name)
	if err != nil {
		return nil, err
	}
	value, err := virtualMachine.Memory.ReadFromAddress(&addr)
	if err != nil {
		return nil, fmt.Errorf("FailedToGetIds: reading id %q: %w", name, err)
	}
	felt, err := value.ToFieldElement()
	if err != nil {
		return nil, fmt.Errorf("ExpectedInteger: id %q is not a felt: %w", name, err)
	}
	var regular big.Int
	felt.BigInt(&regular)
	return &regular, nil
}

// value resolves the named id and reads its raw MemoryValue, without
// requiring it be a felt — assert_not_equal compares either kind.
func (h *HintData) value(virtualMachine *vm.VirtualMachine, name string) (mem.MemoryValue, error) {
	addr, err := h.address(virtualMachine, name)
	if err != nil {
		return mem.MemoryValue{}, err
	}
	value, err := virtualMachine.Memory.ReadFromAddress(&addr)
	if err != nil {
		return mem.MemoryValue{}, fmt.Errorf("FailedToGetIds: reading id %q: %w", name, err)
	}
	return value, nil
}

// signedFelt resolves the named id and returns its signed, as_int view.
func (h *HintData) signedFelt(virtualMachine *vm.VirtualMachine, name string) (*big.Int, error) {
	addr, err := h.address(virtualMachine, name)
	if err != nil {
		return nil, err
	}
	value, err := virtualMachine.Memory.ReadFromAddress(&addr)
	if err != nil {
		return nil, fmt.Errorf("FailedToGetIds: reading id %q: %w", name, err)
	}
	felt, err := value.ToFieldElement()
	if err != nil {
		return nil, fmt.Errorf("ExpectedInteger: id %q is not a felt: %w", name, err)
	}
	return mem.AsInt(felt), nil
}

// writeFelt resolves the named id to an address and writes val there.
func (h *HintData) writeFelt(virtualMachine *vm.VirtualMachine, name string, val *big.Int) error {
	addr, err := h.address(virtualMachine, name)
	if err != nil {
		return err
	}
	mv := mem.MemoryValueFromBigInt(val)
	if err := virtualMachine.Memory.WriteToAddress(&addr, &mv); err != nil {
		return fmt.Errorf("writing id %q: %w", name, err)
	}
	return nil
}

// writeToAp writes a value directly to [ap], the convention most
// boolean-result hints use (is_nn, is_le_felt, ...).
func writeToAp(virtualMachine *vm.VirtualMachine, val uint64) error {
	apAddr := virtualMachine.Context.AddressAp()
	mv := mem.MemoryValueFromUint(val)
	return virtualMachine.Memory.WriteToAddress(&apAddr, &mv)
}
