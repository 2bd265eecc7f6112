package hintrunner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqrtHint(t *testing.T) {
	virtualMachine := newTestVM(t)
	rootRef := idSlot(1)
	hint := &SqrtHint{HintData{Ids: map[string]Reference{
		"value": idAt(t, virtualMachine, 0, feltOf(81)),
		"root":  rootRef,
	}}}
	require.NoError(t, hint.Execute(virtualMachine))

	addr, _, _ := rootRef.Resolve(virtualMachine, ApTracking{})
	value, err := virtualMachine.Memory.ReadFromAddress(&addr)
	require.NoError(t, err)
	got, err := value.Uint64()
	require.NoError(t, err)
	assert.EqualValues(t, 9, got)
}

func TestUnsignedDivRemHint(t *testing.T) {
	virtualMachine := newTestVM(t)
	qRef, rRef := idSlot(2), idSlot(3)
	hint := &UnsignedDivRemHint{HintData{Ids: map[string]Reference{
		"value": idAt(t, virtualMachine, 0, feltOf(17)),
		"div":   idAt(t, virtualMachine, 1, feltOf(5)),
		"q":     qRef,
		"r":     rRef,
	}}}
	require.NoError(t, hint.Execute(virtualMachine))

	qAddr, _, _ := qRef.Resolve(virtualMachine, ApTracking{})
	qVal, err := virtualMachine.Memory.ReadFromAddress(&qAddr)
	require.NoError(t, err)
	q, err := qVal.Uint64()
	require.NoError(t, err)
	assert.EqualValues(t, 3, q)

	rAddr, _, _ := rRef.Resolve(virtualMachine, ApTracking{})
	rVal, err := virtualMachine.Memory.ReadFromAddress(&rAddr)
	require.NoError(t, err)
	r, err := rVal.Uint64()
	require.NoError(t, err)
	assert.EqualValues(t, 2, r)
}

func TestIsPositiveHint(t *testing.T) {
	virtualMachine := newTestVM(t)
	isPosRef := idSlot(1)
	hint := &IsPositiveHint{HintData{Ids: map[string]Reference{
		"value":       idAt(t, virtualMachine, 0, feltOf(5)),
		"is_positive": isPosRef,
	}}}
	require.NoError(t, hint.Execute(virtualMachine))

	addr, _, _ := isPosRef.Resolve(virtualMachine, ApTracking{})
	value, err := virtualMachine.Memory.ReadFromAddress(&addr)
	require.NoError(t, err)
	got, err := value.Uint64()
	require.NoError(t, err)
	assert.EqualValues(t, 1, got)
}

func TestAssert250BitHint(t *testing.T) {
	virtualMachine := newTestVM(t)
	lowRef, highRef := idSlot(1), idSlot(2)
	hint := &Assert250BitHint{HintData{Ids: map[string]Reference{
		"value": idAt(t, virtualMachine, 0, feltOf(5)),
		"low":   lowRef,
		"high":  highRef,
	}}}
	assert.NoError(t, hint.Execute(virtualMachine))
}
