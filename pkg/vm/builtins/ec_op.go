package builtins

import (
	"fmt"

	mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
)

// ECOpBuiltinRunner exposes the ec-op interface named by spec's scope:
// its body (elliptic-curve scalar multiplication over the stark
// curve) is explicitly out of scope, so it validates writes are felts
// and never deduces a cell.
type ECOpBuiltinRunner struct {
	base mem.MemoryAddress
}

func NewECOpBuiltinRunner() *ECOpBuiltinRunner {
	return &ECOpBuiltinRunner{}
}

func (e *ECOpBuiltinRunner) Name() string { return ECOpName }

func (e *ECOpBuiltinRunner) SetBase(segmentIndex uint64) {
	e.base = mem.MemoryAddress{SegmentIndex: segmentIndex, Offset: 0}
}

func (e *ECOpBuiltinRunner) Base() mem.MemoryAddress { return e.base }

func (e *ECOpBuiltinRunner) CheckWrite(segment *mem.Segment, offset uint64, value *mem.MemoryValue) error {
	if _, err := value.ToFieldElement(); err != nil {
		return fmt.Errorf("ec_op builtin expects a felt at offset %d: %w", offset, err)
	}
	return nil
}

func (e *ECOpBuiltinRunner) InferValue(segment *mem.Segment, offset uint64) error {
	segment.Data[offset] = mem.EmptyMemoryValueAsFelt()
	return nil
}

func (e *ECOpBuiltinRunner) DeduceMemoryCell(addr mem.MemoryAddress, memory *mem.Memory) (*mem.MemoryValue, error) {
	return nil, nil
}

func (e *ECOpBuiltinRunner) FinalStackCheck(segment *mem.Segment) error {
	if segment.HasHoles() {
		return fmt.Errorf("ec_op builtin: segment has holes")
	}
	return nil
}
