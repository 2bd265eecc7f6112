package builtins

import (
	"fmt"
	"math/big"

	mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
)

// RangeCheckBound is the upper bound (exclusive) every value written
// to the range-check segment must satisfy: 0 <= v < 2^128.
var RangeCheckBound = new(big.Int).Lsh(big.NewInt(1), 128)

// RangeCheckBuiltinRunner enforces that every felt written to its
// segment fits in 128 bits. It never deduces a value: range-check
// cells are always supplied by the program or a hint.
type RangeCheckBuiltinRunner struct {
	base mem.MemoryAddress
}

func NewRangeCheckBuiltinRunner() *RangeCheckBuiltinRunner {
	return &RangeCheckBuiltinRunner{}
}

func (r *RangeCheckBuiltinRunner) Name() string { return RangeCheckName }

func (r *RangeCheckBuiltinRunner) SetBase(segmentIndex uint64) {
	r.base = mem.MemoryAddress{SegmentIndex: segmentIndex, Offset: 0}
}

func (r *RangeCheckBuiltinRunner) Base() mem.MemoryAddress { return r.base }

func (r *RangeCheckBuiltinRunner) CheckWrite(segment *mem.Segment, offset uint64, value *mem.MemoryValue) error {
	felt, err := value.ToFieldElement()
	if err != nil {
		return fmt.Errorf("range check builtin expects a felt at offset %d: %w", offset, err)
	}
	var asBig big.Int
	felt.BigInt(&asBig)
	if asBig.Cmp(RangeCheckBound) >= 0 {
		return fmt.Errorf("range check builtin: value %s at offset %d exceeds bound %s", asBig.String(), offset, RangeCheckBound.String())
	}
	return nil
}

func (r *RangeCheckBuiltinRunner) InferValue(segment *mem.Segment, offset uint64) error {
	segment.Data[offset] = mem.EmptyMemoryValueAsFelt()
	return nil
}

func (r *RangeCheckBuiltinRunner) DeduceMemoryCell(addr mem.MemoryAddress, memory *mem.Memory) (*mem.MemoryValue, error) {
	return nil, nil
}

func (r *RangeCheckBuiltinRunner) FinalStackCheck(segment *mem.Segment) error {
	if segment.HasHoles() {
		return fmt.Errorf("range check builtin: segment has holes")
	}
	return nil
}
