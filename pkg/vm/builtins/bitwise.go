package builtins

import (
	"fmt"
	"math/big"

	mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
)

// cellsPerInstance is the bitwise builtin's group size: each group
// holds (x, y, x&y, x^y, x|y), per the program's own addressing
// convention ([ptr+0]=x, [ptr+1]=y, [ptr+2]=x&y, [ptr+3]=x^y, [ptr+4]=x|y).
const cellsPerInstance = 5

// BitwiseBuiltinRunner deduces x&y, x^y and x|y from a known (x, y)
// pair written at the start of a 5-cell group.
type BitwiseBuiltinRunner struct {
	base mem.MemoryAddress
}

func NewBitwiseBuiltinRunner() *BitwiseBuiltinRunner {
	return &BitwiseBuiltinRunner{}
}

func (b *BitwiseBuiltinRunner) Name() string { return BitwiseName }

func (b *BitwiseBuiltinRunner) SetBase(segmentIndex uint64) {
	b.base = mem.MemoryAddress{SegmentIndex: segmentIndex, Offset: 0}
}

func (b *BitwiseBuiltinRunner) Base() mem.MemoryAddress { return b.base }

func (b *BitwiseBuiltinRunner) CheckWrite(segment *mem.Segment, offset uint64, value *mem.MemoryValue) error {
	if _, err := value.ToFieldElement(); err != nil {
		return fmt.Errorf("bitwise builtin expects a felt at offset %d: %w", offset, err)
	}
	return nil
}

func (b *BitwiseBuiltinRunner) InferValue(segment *mem.Segment, offset uint64) error {
	group := offset / cellsPerInstance
	cell := offset % cellsPerInstance
	if cell < 2 {
		segment.Data[offset] = mem.EmptyMemoryValueAsFelt()
		return nil
	}

	xOffset := group * cellsPerInstance
	yOffset := xOffset + 1
	if xOffset >= uint64(len(segment.Data)) || yOffset >= uint64(len(segment.Data)) {
		segment.Data[offset] = mem.EmptyMemoryValueAsFelt()
		return nil
	}

	xCell := segment.Data[xOffset]
	yCell := segment.Data[yOffset]
	if !xCell.Known() || !yCell.Known() {
		segment.Data[offset] = mem.EmptyMemoryValueAsFelt()
		return nil
	}

	xFelt, err := xCell.ToFieldElement()
	if err != nil {
		return fmt.Errorf("bitwise builtin: x operand is not a felt: %w", err)
	}
	yFelt, err := yCell.ToFieldElement()
	if err != nil {
		return fmt.Errorf("bitwise builtin: y operand is not a felt: %w", err)
	}

	var xBig, yBig, result big.Int
	xFelt.BigInt(&xBig)
	yFelt.BigInt(&yBig)

	switch cell {
	case 2:
		result.And(&xBig, &yBig)
	case 3:
		result.Xor(&xBig, &yBig)
	case 4:
		result.Or(&xBig, &yBig)
	}

	mv := mem.MemoryValueFromBigInt(&result)
	segment.Data[offset] = mv
	return nil
}

func (b *BitwiseBuiltinRunner) DeduceMemoryCell(addr mem.MemoryAddress, memory *mem.Memory) (*mem.MemoryValue, error) {
	return nil, nil
}

func (b *BitwiseBuiltinRunner) FinalStackCheck(segment *mem.Segment) error {
	if segment.Len()%cellsPerInstance != 0 {
		return fmt.Errorf("bitwise builtin: segment length %d is not a multiple of %d", segment.Len(), cellsPerInstance)
	}
	if segment.HasHoles() {
		return fmt.Errorf("bitwise builtin: segment has holes")
	}
	return nil
}
