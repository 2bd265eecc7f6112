package hintrunner

import (
	"testing"

	"github.com/NethermindEth/cairo-vm-go/pkg/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceResolveFpRelative(t *testing.T) {
	virtualMachine := newTestVM(t)
	ref := Reference{Register: vm.Fp, Offset1: -2}
	addr, ok, err := ref.Resolve(virtualMachine, ApTracking{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, virtualMachine.Context.Fp-2, addr.Offset)
}

func TestReferenceResolveApTrackingCorrection(t *testing.T) {
	virtualMachine := newTestVM(t)
	virtualMachine.Context.Ap = 20

	ref := Reference{
		Register:       vm.Ap,
		Offset1:        0,
		ApTrackingData: &ApTracking{Group: 1, Offset: 5},
	}
	// hint runs with ap tracking (group 1, offset 8): ap has moved 3
	// further since the reference was taken, so the corrected base is
	// ap - (8 - 5) = ap - 3.
	addr, ok, err := ref.Resolve(virtualMachine, ApTracking{Group: 1, Offset: 8})
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 17, addr.Offset)
}

func TestReferenceResolveApTrackingGroupMismatch(t *testing.T) {
	virtualMachine := newTestVM(t)
	ref := Reference{
		Register:       vm.Ap,
		ApTrackingData: &ApTracking{Group: 1, Offset: 0},
	}
	_, _, err := ref.Resolve(virtualMachine, ApTracking{Group: 2, Offset: 0})
	assert.Error(t, err)
}

func TestReferenceResolveUnderflowIsUnresolvable(t *testing.T) {
	virtualMachine := newTestVM(t)
	ref := Reference{Register: vm.Fp, Offset1: -1000}
	_, ok, err := ref.Resolve(virtualMachine, ApTracking{})
	require.NoError(t, err)
	assert.False(t, ok)
}
