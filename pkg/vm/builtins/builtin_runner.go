// Package builtins implements the VM's pluggable memory-validating
// collaborators: range-check, bitwise, ec-op, pedersen and output.
// Each owns a dedicated memory segment and is consulted by the
// executor only through this interface, never by type tests.
package builtins

import mem "github.com/NethermindEth/cairo-vm-go/pkg/vm/memory"

// BuiltinRunner is the richer, executor-facing contract a built-in
// exposes (name, base, validation, deduction, final stack check). It
// is a superset of mem.BuiltinRunner: every concrete runner below also
// satisfies that narrower interface so it can be attached directly to
// a Segment via Segment.WithBuiltinRunner.
type BuiltinRunner interface {
	mem.BuiltinRunner

	// Name returns the built-in's identifier, as named in a program's
	// "builtins" list.
	Name() string

	// SetBase records the segment index this built-in was allocated
	// at, once the runner orchestration has created its segment.
	SetBase(segmentIndex uint64)

	// Base returns the first address of the built-in's segment.
	Base() mem.MemoryAddress

	// DeduceMemoryCell attempts to compute the value of addr, which
	// must belong to this built-in's segment. Returns a nil value and
	// nil error when the built-in has no deduction for addr.
	DeduceMemoryCell(addr mem.MemoryAddress, memory *mem.Memory) (*mem.MemoryValue, error)

	// FinalStackCheck validates a built-in's segment once the run has
	// stopped touching it. Built-ins whose cells the prover later reads
	// as a contiguous block (range-check, bitwise, ec-op, pedersen)
	// reject a segment with holes; output has no such requirement.
	FinalStackCheck(segment *mem.Segment) error
}

const (
	RangeCheckName = "range_check"
	BitwiseName    = "bitwise"
	ECOpName       = "ec_op"
	PedersenName   = "pedersen"
	OutputName     = "output"
)

// Runner builds the concrete BuiltinRunner named by a program's
// "builtins" list entry. Returns an error for unknown names, per
// spec's RunnerError("missing required built-in").
func Runner(name string) (BuiltinRunner, error) {
	switch name {
	case RangeCheckName:
		return NewRangeCheckBuiltinRunner(), nil
	case BitwiseName:
		return NewBitwiseBuiltinRunner(), nil
	case ECOpName:
		return NewECOpBuiltinRunner(), nil
	case PedersenName:
		return NewPedersenBuiltinRunner(), nil
	case OutputName:
		return NewOutputBuiltinRunner(), nil
	default:
		return nil, unknownBuiltinError(name)
	}
}

type unknownBuiltinError string

func (e unknownBuiltinError) Error() string {
	return "unknown builtin: " + string(e)
}
