package memory

import (
	"fmt"

	f "github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// MemoryAddress is a Relocatable: a segment index paired with an
// offset into that segment. It only becomes an absolute address once
// the owning Memory has been relocated.
type MemoryAddress struct {
	SegmentIndex uint64
	Offset       uint64
}

// UnknownValue is returned by address-producing operations on failure.
// It must never be dereferenced as a valid address.
var UnknownValue = MemoryAddress{}

func (addr *MemoryAddress) Equal(other *MemoryAddress) bool {
	return addr.SegmentIndex == other.SegmentIndex && addr.Offset == other.Offset
}

func (addr *MemoryAddress) String() string {
	return fmt.Sprintf("%d:%d", addr.SegmentIndex, addr.Offset)
}

// AddOffset adds a signed offset to the address's offset, erroring on
// underflow past zero. Relocatable + Int from spec's arithmetic table.
func (addr *MemoryAddress) AddOffset(base *MemoryAddress, offset int64) error {
	if offset >= 0 {
		addr.SegmentIndex = base.SegmentIndex
		addr.Offset = base.Offset + uint64(offset)
		return nil
	}

	abs := uint64(-offset)
	if abs > base.Offset {
		return fmt.Errorf("address %s minus %d is negative", base, abs)
	}
	addr.SegmentIndex = base.SegmentIndex
	addr.Offset = base.Offset - abs
	return nil
}

// Add adds a field element, interpreted as a signed integer (spec's
// as_int view), to base, writing the result into addr. The offset must
// fit in an int64; Cairo jump/ap deltas always do in practice.
func (addr *MemoryAddress) Add(base *MemoryAddress, val *f.Element) error {
	signed := AsInt(val)
	if !signed.IsInt64() {
		return fmt.Errorf("offset %s does not fit in an address delta", signed)
	}
	return addr.AddOffset(base, signed.Int64())
}

// AddUint adds an unsigned amount to base, writing the result into a
// freshly returned MemoryAddress.
func (base MemoryAddress) AddUint(amount uint64) (MemoryAddress, error) {
	var result MemoryAddress
	err := result.AddOffset(&base, int64(amount))
	return result, err
}

// Sub computes base - other, which is only defined within the same
// segment (spec's Addr - Addr -> Int rule).
func (base *MemoryAddress) Sub(other *MemoryAddress) (*f.Element, error) {
	if base.SegmentIndex != other.SegmentIndex {
		return nil, fmt.Errorf(
			"addresses %s and %s belong to different segments", base, other,
		)
	}
	if base.Offset < other.Offset {
		return nil, fmt.Errorf("subtraction %s - %s is negative", base, other)
	}
	var result f.Element
	result.SetUint64(base.Offset - other.Offset)
	return &result, nil
}
