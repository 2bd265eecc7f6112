package hintrunner

import (
	"fmt"
	"math/big"

	"github.com/NethermindEth/cairo-vm-go/pkg/vm"
	"github.com/NethermindEth/cairo-vm-go/pkg/vm/builtins"
	mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
)

// IsNNHint implements `memory[ap] = 0 if 0 <= (ids.a % PRIME) <
// range_check_builtin.bound else 1`. `a` is already canonical (in
// [0, P)) by the time it's read out of memory, so the lower bound
// check is unconditionally true and only the upper bound matters.
type IsNNHint struct {
	HintData
}

func (h *IsNNHint) Execute(virtualMachine *vm.VirtualMachine) error {
	a, err := h.felt(virtualMachine, "a")
	if err != nil {
		return err
	}
	if a.Cmp(builtins.RangeCheckBound) < 0 {
		return writeToAp(virtualMachine, 0)
	}
	return writeToAp(virtualMachine, 1)
}

func (h *IsNNHint) String() string { return "IsNNHint" }

// IsNNOutOfRangeHint implements `memory[ap] = 0 if 0 <= ((-ids.a - 1)
// % PRIME) < range_check_builtin.bound else 1`.
type IsNNOutOfRangeHint struct {
	HintData
}

func (h *IsNNOutOfRangeHint) Execute(virtualMachine *vm.VirtualMachine) error {
	a, err := h.felt(virtualMachine, "a")
	if err != nil {
		return err
	}
	negAMinus1 := new(big.Int).Neg(a)
	negAMinus1.Sub(negAMinus1, big.NewInt(1))
	reduced := mem.ReduceModP(negAMinus1)
	if reduced.Cmp(builtins.RangeCheckBound) < 0 {
		return writeToAp(virtualMachine, 0)
	}
	return writeToAp(virtualMachine, 1)
}

func (h *IsNNOutOfRangeHint) String() string { return "IsNNOutOfRangeHint" }

// AssertLEFeltHint implements `assert (ids.a % PRIME) <= (ids.b %
// PRIME)` plus the arc-composition small_inputs side channel the
// compiler-emitted hint also sets. The small_inputs comparison is
// done against the same already-reduced a/b this hint reads, matching
// the literal behaviour observed in the reference implementation
// rather than re-deriving an unreduced "raw" value that the VM never
// materializes.
type AssertLEFeltHint struct {
	HintData
}

func (h *AssertLEFeltHint) Execute(virtualMachine *vm.VirtualMachine) error {
	a, err := h.felt(virtualMachine, "a")
	if err != nil {
		return err
	}
	b, err := h.felt(virtualMachine, "b")
	if err != nil {
		return err
	}
	if a.Cmp(b) > 0 {
		return fmt.Errorf("AssertLEFelt: a = %s is not less than or equal to b = %s", a, b)
	}

	addr, err := h.address(virtualMachine, "small_inputs")
	if err != nil {
		return err
	}
	existing, err := virtualMachine.Memory.ReadFromAddress(&addr)
	if err == nil && existing.Known() {
		return fmt.Errorf("AssertLEFelt: small_inputs is already set")
	}

	small := big.NewInt(0)
	if a.Cmp(builtins.RangeCheckBound) < 0 && new(big.Int).Sub(a, b).Cmp(builtins.RangeCheckBound) < 0 {
		small = big.NewInt(1)
	}
	return h.writeFelt(virtualMachine, "small_inputs", small)
}

func (h *AssertLEFeltHint) String() string { return "AssertLEFeltHint" }

// IsLEFeltHint implements `memory[ap] = 0 if (ids.a % PRIME) <= (ids.b
// % PRIME) else 1`.
type IsLEFeltHint struct {
	HintData
}

func (h *IsLEFeltHint) Execute(virtualMachine *vm.VirtualMachine) error {
	a, err := h.felt(virtualMachine, "a")
	if err != nil {
		return err
	}
	b, err := h.felt(virtualMachine, "b")
	if err != nil {
		return err
	}
	if a.Cmp(b) <= 0 {
		return writeToAp(virtualMachine, 0)
	}
	return writeToAp(virtualMachine, 1)
}

func (h *IsLEFeltHint) String() string { return "IsLEFeltHint" }

// AssertNotEqualHint implements `assert ids.a != ids.b`. Two
// relocatables are compared by segment and offset; mixing a
// relocatable with a felt is rejected as a type error here, since the
// underlying memory value comparison would only report them unequal.
type AssertNotEqualHint struct {
	HintData
}

func (h *AssertNotEqualHint) Execute(virtualMachine *vm.VirtualMachine) error {
	a, err := h.value(virtualMachine, "a")
	if err != nil {
		return err
	}
	b, err := h.value(virtualMachine, "b")
	if err != nil {
		return err
	}
	if a.IsAddress() != b.IsAddress() {
		return fmt.Errorf("AssertNotEqual: cannot compare a felt with a relocatable")
	}
	if a.Equal(&b) {
		return fmt.Errorf("AssertNotEqual: assertion failed, %s = %s", &a, &b)
	}
	return nil
}

func (h *AssertNotEqualHint) String() string { return "AssertNotEqualHint" }

// AssertNNHint implements `assert 0 <= ids.a % PRIME <
// range_check_builtin.bound`.
type AssertNNHint struct {
	HintData
}

func (h *AssertNNHint) Execute(virtualMachine *vm.VirtualMachine) error {
	a, err := h.felt(virtualMachine, "a")
	if err != nil {
		return err
	}
	if a.Cmp(builtins.RangeCheckBound) >= 0 {
		return fmt.Errorf("AssertNN: ValueOutOfRange: a = %s is out of range", a)
	}
	return nil
}

func (h *AssertNNHint) String() string { return "AssertNNHint" }

// AssertNotZeroHint implements `assert ids.value % PRIME != 0`.
type AssertNotZeroHint struct {
	HintData
}

func (h *AssertNotZeroHint) Execute(virtualMachine *vm.VirtualMachine) error {
	value, err := h.felt(virtualMachine, "value")
	if err != nil {
		return err
	}
	if value.Sign() == 0 {
		return fmt.Errorf("AssertNotZero: assertion failed, value is zero")
	}
	return nil
}

func (h *AssertNotZeroHint) String() string { return "AssertNotZeroHint" }

// AssertLtFeltHint implements `assert (ids.a % PRIME) < (ids.b %
// PRIME)`.
type AssertLtFeltHint struct {
	HintData
}

func (h *AssertLtFeltHint) Execute(virtualMachine *vm.VirtualMachine) error {
	a, err := h.felt(virtualMachine, "a")
	if err != nil {
		return err
	}
	b, err := h.felt(virtualMachine, "b")
	if err != nil {
		return err
	}
	if a.Cmp(b) >= 0 {
		return fmt.Errorf("AssertLtFelt: a = %s is not less than b = %s", a, b)
	}
	return nil
}

func (h *AssertLtFeltHint) String() string { return "AssertLtFeltHint" }
