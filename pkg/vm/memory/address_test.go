package memory

import (
	"testing"

	f "github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAddressAddOffset(t *testing.T) {
	base := MemoryAddress{SegmentIndex: 3, Offset: 10}

	var forward MemoryAddress
	require.NoError(t, forward.AddOffset(&base, 5))
	assert.Equal(t, MemoryAddress{SegmentIndex: 3, Offset: 15}, forward)

	var backward MemoryAddress
	require.NoError(t, backward.AddOffset(&base, -5))
	assert.Equal(t, MemoryAddress{SegmentIndex: 3, Offset: 5}, backward)

	var underflow MemoryAddress
	assert.Error(t, underflow.AddOffset(&base, -11))
}

func TestMemoryAddressSub(t *testing.T) {
	a := MemoryAddress{SegmentIndex: 1, Offset: 10}
	b := MemoryAddress{SegmentIndex: 1, Offset: 4}
	diff, err := a.Sub(&b)
	require.NoError(t, err)
	assert.Equal(t, "6", diff.Text(10))

	c := MemoryAddress{SegmentIndex: 2, Offset: 4}
	_, err = a.Sub(&c)
	assert.Error(t, err)
}

func TestMemoryAddressEqual(t *testing.T) {
	a := MemoryAddress{SegmentIndex: 1, Offset: 2}
	b := MemoryAddress{SegmentIndex: 1, Offset: 2}
	c := MemoryAddress{SegmentIndex: 1, Offset: 3}
	assert.True(t, a.Equal(&b))
	assert.False(t, a.Equal(&c))
}

func TestMemoryAddressAdd(t *testing.T) {
	base := MemoryAddress{SegmentIndex: 0, Offset: 5}
	var delta f.Element
	delta.SetUint64(3)

	var result MemoryAddress
	require.NoError(t, result.Add(&base, &delta))
	assert.Equal(t, MemoryAddress{SegmentIndex: 0, Offset: 8}, result)
}
