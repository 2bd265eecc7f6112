package hintrunner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSegmentHint(t *testing.T) {
	virtualMachine := newTestVM(t)
	segmentsBefore := len(virtualMachine.Memory.Segments)

	hint := &AddSegmentHint{}
	require.NoError(t, hint.Execute(virtualMachine))

	assert.Len(t, virtualMachine.Memory.Segments, segmentsBefore+1)

	got := apValue(t, virtualMachine)
	addr, err := got.ToMemoryAddress()
	require.NoError(t, err)
	assert.EqualValues(t, segmentsBefore, addr.SegmentIndex)
	assert.EqualValues(t, 0, addr.Offset)
}
