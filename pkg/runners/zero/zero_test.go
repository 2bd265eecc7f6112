package zero

import (
	"testing"

	"github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, builtinNames []string) *Runner {
	t.Helper()
	sp := newTestStarknetProgram()
	sp.Builtins = builtinNames
	program, err := LoadProgram(sp)
	require.NoError(t, err)

	runner, err := NewRunner(program, false, 1000)
	require.NoError(t, err)
	return runner
}

func TestCheckBuiltinsAcceptsContiguousRangeCheckSegment(t *testing.T) {
	runner := newTestRunner(t, []string{"range_check"})
	segIdx := runner.builtins[0].Base().SegmentIndex
	segment := runner.segments()[segIdx]

	for i := uint64(0); i < 3; i++ {
		v := memory.MemoryValueFromUint(i)
		require.NoError(t, segment.Write(i, &v))
	}

	assert.NoError(t, runner.checkBuiltins())
}

func TestCheckBuiltinsRejectsRangeCheckSegmentWithHoles(t *testing.T) {
	runner := newTestRunner(t, []string{"range_check"})
	segIdx := runner.builtins[0].Base().SegmentIndex
	segment := runner.segments()[segIdx]

	zero := memory.MemoryValueFromUint(uint64(0))
	require.NoError(t, segment.Write(0, &zero))
	two := memory.MemoryValueFromUint(uint64(2))
	require.NoError(t, segment.Write(2, &two)) // offset 1 left as a hole

	assert.Error(t, runner.checkBuiltins())
}

func TestCheckBuiltinsIgnoresOutputSegmentHoles(t *testing.T) {
	runner := newTestRunner(t, []string{"output"})
	segIdx := runner.builtins[0].Base().SegmentIndex
	segment := runner.segments()[segIdx]

	five := memory.MemoryValueFromUint(uint64(5))
	require.NoError(t, segment.Write(3, &five)) // offsets 0-2 are a hole

	assert.NoError(t, runner.checkBuiltins())
}
