package memory

import (
	"fmt"

	f "github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// MemoryManager is the spec's SegmentManager: it owns the Memory and
// is responsible for segment allocation, effective-size computation
// and post-run relocation into a single flat address space.
type MemoryManager struct {
	Memory *Memory

	effectiveSizes []uint64
	relocationTable []uint64
}

func CreateMemoryManager() *MemoryManager {
	return &MemoryManager{Memory: InitializeEmptyMemory()}
}

// LoadData writes values[i] at ptr+i and returns ptr+len(values), per
// spec's load_data.
func (m *MemoryManager) LoadData(ptr MemoryAddress, values []*MemoryValue) (MemoryAddress, error) {
	for i, val := range values {
		addr, err := ptr.AddUint(uint64(i))
		if err != nil {
			return UnknownValue, err
		}
		if err := m.Memory.WriteToAddress(&addr, val); err != nil {
			return UnknownValue, err
		}
	}
	return ptr.AddUint(uint64(len(values)))
}

// ComputeSegmentsEffectiveSizes materializes, per segment, 1 + the max
// written offset (0 if the segment is empty). Calling it again
// recomputes the sizes from the segments' current state.
func (m *MemoryManager) ComputeSegmentsEffectiveSizes() []uint64 {
	sizes := make([]uint64, len(m.Memory.Segments))
	for i, segment := range m.Memory.Segments {
		sizes[i] = segment.Len()
	}
	m.effectiveSizes = sizes
	return sizes
}

// RelocateSegments produces the flat-address table T where T[0] = 1
// and T[i+1] = T[i] + size[i]. Returns false if effective sizes have
// not been computed yet.
func (m *MemoryManager) RelocateSegments() ([]uint64, bool) {
	if m.effectiveSizes == nil {
		return nil, false
	}
	table := make([]uint64, len(m.effectiveSizes)+1)
	table[0] = 1
	for i, size := range m.effectiveSizes {
		table[i+1] = table[i] + size
	}
	m.relocationTable = table
	return table, true
}

// RelocateMemory flattens every written cell into a single slice
// indexed by its relocated address (index 0 is reserved for "null" and
// is always nil). Relocatable values stored in memory are themselves
// flattened to their absolute offset before being written out.
func (m *MemoryManager) RelocateMemory() []*f.Element {
	if m.relocationTable == nil {
		return nil
	}

	total := uint64(0)
	if len(m.relocationTable) > 0 {
		total = m.relocationTable[len(m.relocationTable)-1]
	}

	flat := make([]*f.Element, total)
	for segIdx, segment := range m.Memory.Segments {
		base := m.relocationTable[segIdx]
		for offset := 0; offset < len(segment.Data); offset++ {
			cell := segment.Data[offset]
			if !cell.Known() {
				continue
			}
			flatAddr := base + uint64(offset)
			if cell.IsAddress() {
				relocated := m.relocateAddress(&cell.address)
				flat[flatAddr] = &relocated
				continue
			}
			felt := cell.felt
			flat[flatAddr] = &felt
		}
	}
	return flat
}

func (m *MemoryManager) relocateAddress(addr *MemoryAddress) f.Element {
	var result f.Element
	flat := m.relocationTable[addr.SegmentIndex] + addr.Offset
	result.SetUint64(flat)
	return result
}

func (m *MemoryManager) String() string {
	return fmt.Sprintf("MemoryManager{segments: %d}", len(m.Memory.Segments))
}
