package zero

import (
	"fmt"

	"github.com/NethermindEth/cairo-vm-go/pkg/hintrunner"
	"github.com/NethermindEth/cairo-vm-go/pkg/hintrunner/hintcode"
	"github.com/NethermindEth/cairo-vm-go/pkg/parsers/starknet"
	f "github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// Program is the runner-ready form of a compiled Cairo zero program:
// flat bytecode plus the label/entrypoint/hint tables NewRunner and
// InitializeMainEntrypoint/InitializeEntrypoint already assume exist.
type Program struct {
	Bytecode    []*f.Element
	Labels      map[string]uint64
	Entrypoints map[string]uint64
	Builtins    []string
	Hints       map[uint64]hintrunner.Hinter
}

// NewProgram builds a Program directly, for callers that already hold
// decoded bytecode and tables (tests, embedders).
func NewProgram(bytecode []*f.Element, labels, entrypoints map[string]uint64, builtins []string, hints map[uint64]hintrunner.Hinter) *Program {
	return &Program{
		Bytecode:    bytecode,
		Labels:      labels,
		Entrypoints: entrypoints,
		Builtins:    builtins,
		Hints:       hints,
	}
}

// LoadProgram converts a decoded compiler-output starknet.Program into
// the runner-ready Program, resolving every identifier marked as a
// label or function into the Labels/Entrypoints maps and compiling
// each hint record into a Hinter keyed by the instruction's PC.
func LoadProgram(sp *starknet.Program) (*Program, error) {
	labels := make(map[string]uint64)
	entrypoints := make(map[string]uint64)
	for name, id := range sp.Identifiers {
		switch id.Type {
		case "label":
			labels[shortName(name)] = id.Pc
		case "function":
			entrypoints[shortName(name)] = id.Pc
			for _, decorator := range id.Decorators {
				if decorator == "external" || decorator == "constructor" {
					entrypoints[shortName(name)] = id.Pc
				}
			}
		}
	}

	hints := make(map[uint64]hintrunner.Hinter, len(sp.Hints))
	for pc, hintsAtPc := range sp.Hints {
		compiled, err := compileHintsAtPc(sp, hintsAtPc)
		if err != nil {
			return nil, fmt.Errorf("compiling hints at pc %d: %w", pc, err)
		}
		hints[pc] = compiled
	}

	return &Program{
		Bytecode:    sp.Data,
		Labels:      labels,
		Entrypoints: entrypoints,
		Builtins:    sp.Builtins,
		Hints:       hints,
	}, nil
}

// compileHintsAtPc builds the composite Hinter for every hint record
// compiled against one pc, resolving each hint's ids table through the
// program's shared reference manager.
func compileHintsAtPc(sp *starknet.Program, hints []starknet.Hint) (hintrunner.Hinter, error) {
	compiled := make(hintrunner.HintsAtPc, 0, len(hints))
	for _, raw := range hints {
		hint, err := compileHint(sp, raw)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, hint)
	}
	return compiled, nil
}

func compileHint(sp *starknet.Program, raw starknet.Hint) (hintrunner.Hinter, error) {
	apTracking := hintrunner.ApTracking{
		Group:  raw.FlowTrackingData.ApTracking.Group,
		Offset: raw.FlowTrackingData.ApTracking.Offset,
	}

	ids := make(map[string]hintrunner.Reference, len(raw.FlowTrackingData.ReferenceIds))
	for name, refID := range raw.FlowTrackingData.ReferenceIds {
		if refID < 0 || refID >= len(sp.ReferenceManager.References) {
			return nil, fmt.Errorf("reference id %d for %q is out of range", refID, name)
		}
		ref, err := starknet.ParseReference(sp.ReferenceManager.References[refID].Value, &apTracking)
		if err != nil {
			return nil, fmt.Errorf("resolving id %q: %w", name, err)
		}
		ids[shortName(name)] = ref
	}

	data := hintrunner.HintData{Ids: ids, ApTracking: apTracking}
	hinter, err := newHinter(raw.Code, data)
	if err != nil {
		return nil, err
	}
	return hinter, nil
}

// newHinter selects the concrete Hinter implementation a hint's
// literal code string identifies.
func newHinter(code string, data hintrunner.HintData) (hintrunner.Hinter, error) {
	switch code {
	case hintcode.AddSegmentCode:
		return &hintrunner.AddSegmentHint{HintData: data}, nil
	case hintcode.IsNNCode:
		return &hintrunner.IsNNHint{HintData: data}, nil
	case hintcode.IsNNOutOfRangeCode:
		return &hintrunner.IsNNOutOfRangeHint{HintData: data}, nil
	case hintcode.AssertLEFeltCode:
		return &hintrunner.AssertLEFeltHint{HintData: data}, nil
	case hintcode.IsLEFeltCode:
		return &hintrunner.IsLEFeltHint{HintData: data}, nil
	case hintcode.AssertNotEqualCode:
		return &hintrunner.AssertNotEqualHint{HintData: data}, nil
	case hintcode.AssertNNCode:
		return &hintrunner.AssertNNHint{HintData: data}, nil
	case hintcode.AssertNotZeroCode:
		return &hintrunner.AssertNotZeroHint{HintData: data}, nil
	case hintcode.SplitIntAssertRangeCode:
		return &hintrunner.SplitIntAssertRangeHint{HintData: data}, nil
	case hintcode.SplitIntCode:
		return &hintrunner.SplitIntHint{HintData: data}, nil
	case hintcode.IsPositiveCode:
		return &hintrunner.IsPositiveHint{HintData: data}, nil
	case hintcode.SplitFeltCode:
		return &hintrunner.SplitFeltHint{HintData: data}, nil
	case hintcode.SqrtCode:
		return &hintrunner.SqrtHint{HintData: data}, nil
	case hintcode.UnsignedDivRemCode:
		return &hintrunner.UnsignedDivRemHint{HintData: data}, nil
	case hintcode.SignedDivRemCode:
		return &hintrunner.SignedDivRemHint{HintData: data}, nil
	case hintcode.Assert250BitCode:
		return &hintrunner.Assert250BitHint{HintData: data}, nil
	case hintcode.AssertLtFeltCode:
		return &hintrunner.AssertLtFeltHint{HintData: data}, nil
	default:
		return nil, fmt.Errorf("unknown hint code: %q", code)
	}
}

// shortName strips the module path a Cairo compiler prefixes onto
// every identifier ("__main__.main" -> "main"), since Labels and
// Entrypoints are looked up by their bare name elsewhere in the
// runner.
func shortName(fullName string) string {
	for i := len(fullName) - 1; i >= 0; i-- {
		if fullName[i] == '.' {
			return fullName[i+1:]
		}
	}
	return fullName
}
