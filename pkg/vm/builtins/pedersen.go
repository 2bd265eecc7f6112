package builtins

import (
	"fmt"

	mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
)

// PedersenBuiltinRunner exposes the pedersen-hash interface; its body
// (the actual hash computation) is out of scope per spec, so only
// felt validation is enforced and no cell is ever deduced.
type PedersenBuiltinRunner struct {
	base mem.MemoryAddress
}

func NewPedersenBuiltinRunner() *PedersenBuiltinRunner {
	return &PedersenBuiltinRunner{}
}

func (p *PedersenBuiltinRunner) Name() string { return PedersenName }

func (p *PedersenBuiltinRunner) SetBase(segmentIndex uint64) {
	p.base = mem.MemoryAddress{SegmentIndex: segmentIndex, Offset: 0}
}

func (p *PedersenBuiltinRunner) Base() mem.MemoryAddress { return p.base }

func (p *PedersenBuiltinRunner) CheckWrite(segment *mem.Segment, offset uint64, value *mem.MemoryValue) error {
	if _, err := value.ToFieldElement(); err != nil {
		return fmt.Errorf("pedersen builtin expects a felt at offset %d: %w", offset, err)
	}
	return nil
}

func (p *PedersenBuiltinRunner) InferValue(segment *mem.Segment, offset uint64) error {
	segment.Data[offset] = mem.EmptyMemoryValueAsFelt()
	return nil
}

func (p *PedersenBuiltinRunner) DeduceMemoryCell(addr mem.MemoryAddress, memory *mem.Memory) (*mem.MemoryValue, error) {
	return nil, nil
}

func (p *PedersenBuiltinRunner) FinalStackCheck(segment *mem.Segment) error {
	if segment.HasHoles() {
		return fmt.Errorf("pedersen builtin: segment has holes")
	}
	return nil
}
