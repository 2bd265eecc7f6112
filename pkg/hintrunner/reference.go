package hintrunner

import (
	"fmt"

	"github.com/NethermindEth/cairo-vm-go/pkg/vm"
	mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
)

// Reference names a memory location symbolically, relative to the
// current frame, the way a hint's `ids` table does. It never holds a
// pointer into RunContext: resolution is a pure function of
// (reference, ap, fp, memory, ap tracking).
type Reference struct {
	Register         vm.Register
	Offset1          int16
	Offset2          int16
	InnerDereference bool
	ApTrackingData   *ApTracking
}

// Resolve implements the five-step algorithm: compute the AP-tracking
// corrected base, apply offset1/offset2, and optionally dereference
// once more. A negative offset1 that would underflow the base offset
// is "unresolvable", reported via the second return value rather than
// an error.
func (r *Reference) Resolve(virtualMachine *vm.VirtualMachine, hintApTracking ApTracking) (mem.MemoryAddress, bool, error) {
	base, err := r.resolveBase(virtualMachine, hintApTracking)
	if err != nil {
		return mem.UnknownValue, false, err
	}

	if r.Offset1 < 0 && base.Offset < uint64(-r.Offset1) {
		return mem.UnknownValue, false, nil
	}

	var afterOffset1 mem.MemoryAddress
	if err := afterOffset1.AddOffset(&base, int64(r.Offset1)); err != nil {
		return mem.UnknownValue, false, nil
	}

	if !r.InnerDereference {
		var addr mem.MemoryAddress
		if err := addr.AddOffset(&afterOffset1, int64(r.Offset2)); err != nil {
			return mem.UnknownValue, false, fmt.Errorf("resolving reference: %w", err)
		}
		return addr, true, nil
	}

	midValue, err := virtualMachine.Memory.ReadFromAddress(&afterOffset1)
	if err != nil {
		return mem.UnknownValue, false, fmt.Errorf("resolving inner dereference: %w", err)
	}
	mid, err := midValue.ToMemoryAddress()
	if err != nil {
		return mem.UnknownValue, false, fmt.Errorf("inner dereference is not an address: %w", err)
	}

	var addr mem.MemoryAddress
	if err := addr.AddOffset(mid, int64(r.Offset2)); err != nil {
		return mem.UnknownValue, false, fmt.Errorf("resolving reference: %w", err)
	}
	return addr, true, nil
}

func (r *Reference) resolveBase(virtualMachine *vm.VirtualMachine, hintApTracking ApTracking) (mem.MemoryAddress, error) {
	if r.Register == vm.Fp {
		return virtualMachine.Context.AddressFp(), nil
	}

	if r.ApTrackingData == nil {
		return mem.UnknownValue, fmt.Errorf("ap-relative reference is missing its ap tracking data")
	}
	if r.ApTrackingData.Group != hintApTracking.Group {
		return mem.UnknownValue, fmt.Errorf(
			"ap tracking group mismatch: reference group %d, hint group %d",
			r.ApTrackingData.Group, hintApTracking.Group,
		)
	}

	// correction = ap - (H.offset - R.offset)
	correction := int64(hintApTracking.Offset) - int64(r.ApTrackingData.Offset)
	ap := virtualMachine.Context.AddressAp()
	var corrected mem.MemoryAddress
	if err := corrected.AddOffset(&ap, -correction); err != nil {
		return mem.UnknownValue, fmt.Errorf("correcting ap-tracking reference: %w", err)
	}
	return corrected, nil
}
