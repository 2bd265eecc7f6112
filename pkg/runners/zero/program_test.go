package zero

import (
	"testing"

	"github.com/NethermindEth/cairo-vm-go/pkg/hintrunner/hintcode"
	"github.com/NethermindEth/cairo-vm-go/pkg/parsers/starknet"
	"github.com/NethermindEth/cairo-vm-go/pkg/vm/builtins"
	f "github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStarknetProgram() *starknet.Program {
	return &starknet.Program{
		Data: []*f.Element{{}, {}},
		Identifiers: map[string]starknet.Identifier{
			"__main__.main": {
				Pc:         0,
				Type:       "function",
				Decorators: nil,
			},
			"__main__.done": {
				Pc:   1,
				Type: "label",
			},
		},
		Hints: map[uint64][]starknet.Hint{
			0: {
				{
					Code: hintcode.IsPositiveCode,
					FlowTrackingData: starknet.FlowTrackingData{
						ReferenceIds: map[string]int{
							"starkware.cairo.common.math.is_positive.value":       0,
							"starkware.cairo.common.math.is_positive.is_positive": 1,
						},
					},
				},
			},
		},
		ReferenceManager: starknet.ReferenceManager{
			References: []starknet.ReferenceRecord{
				{Value: "cast(fp + (-4), felt)"},
				{Value: "cast(fp + (-3), felt)"},
			},
		},
		Builtins: []string{"range_check"},
	}
}

func TestLoadProgramResolvesLabelsAndEntrypoints(t *testing.T) {
	program, err := LoadProgram(newTestStarknetProgram())
	require.NoError(t, err)

	assert.EqualValues(t, 0, program.Entrypoints["main"])
	assert.EqualValues(t, 1, program.Labels["done"])
	assert.Equal(t, []string{"range_check"}, program.Builtins)
}

func TestLoadProgramCompilesHints(t *testing.T) {
	program, err := LoadProgram(newTestStarknetProgram())
	require.NoError(t, err)

	hinter, ok := program.Hints[0]
	require.True(t, ok)
	assert.NotEmpty(t, hinter.String())
}

func TestLoadProgramRejectsUnknownHintCode(t *testing.T) {
	sp := newTestStarknetProgram()
	sp.Hints[0][0].Code = "not a real hint"
	_, err := LoadProgram(sp)
	assert.Error(t, err)
}

func TestLoadProgramRejectsOutOfRangeReferenceId(t *testing.T) {
	sp := newTestStarknetProgram()
	sp.Hints[0][0].FlowTrackingData.ReferenceIds["bogus"] = 99
	_, err := LoadProgram(sp)
	assert.Error(t, err)
}

func TestNewRunnerWiresOneSegmentPerBuiltin(t *testing.T) {
	sp := newTestStarknetProgram()
	sp.Builtins = []string{"range_check", "bitwise"}
	program, err := LoadProgram(sp)
	require.NoError(t, err)

	runner, err := NewRunner(program, false, 1000)
	require.NoError(t, err)

	require.Len(t, runner.builtins, 2)
	assert.Equal(t, builtins.RangeCheckName, runner.builtins[0].Name())
	assert.Equal(t, builtins.BitwiseName, runner.builtins[1].Name())
	// segments: program(0), execution(1), range_check(2), bitwise(3)
	assert.Len(t, runner.segments(), 4)
}

func TestNewRunnerRejectsUnknownBuiltin(t *testing.T) {
	sp := newTestStarknetProgram()
	sp.Builtins = []string{"not_a_builtin"}
	program, err := LoadProgram(sp)
	require.NoError(t, err)

	_, err = NewRunner(program, false, 1000)
	assert.Error(t, err)
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "main", shortName("__main__.main"))
	assert.Equal(t, "value", shortName("starkware.cairo.common.math.is_positive.value"))
	assert.Equal(t, "bare", shortName("bare"))
}
