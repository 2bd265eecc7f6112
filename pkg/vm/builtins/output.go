package builtins

import mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"

// OutputBuiltinRunner is a pure write-through segment: no validation,
// no deduction. Cairo programs append their public output here via
// the `[ap] = value; ap++` convention.
type OutputBuiltinRunner struct {
	base mem.MemoryAddress
}

func NewOutputBuiltinRunner() *OutputBuiltinRunner {
	return &OutputBuiltinRunner{}
}

func (o *OutputBuiltinRunner) Name() string { return OutputName }

func (o *OutputBuiltinRunner) SetBase(segmentIndex uint64) {
	o.base = mem.MemoryAddress{SegmentIndex: segmentIndex, Offset: 0}
}

func (o *OutputBuiltinRunner) Base() mem.MemoryAddress { return o.base }

func (o *OutputBuiltinRunner) CheckWrite(segment *mem.Segment, offset uint64, value *mem.MemoryValue) error {
	return nil
}

func (o *OutputBuiltinRunner) InferValue(segment *mem.Segment, offset uint64) error {
	segment.Data[offset] = mem.EmptyMemoryValueAsFelt()
	return nil
}

func (o *OutputBuiltinRunner) DeduceMemoryCell(addr mem.MemoryAddress, memory *mem.Memory) (*mem.MemoryValue, error) {
	return nil, nil
}

// FinalStackCheck is a no-op: the output segment is whatever the
// program chose to append to it, holes included.
func (o *OutputBuiltinRunner) FinalStackCheck(segment *mem.Segment) error {
	return nil
}
