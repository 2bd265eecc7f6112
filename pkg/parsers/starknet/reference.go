package starknet

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/NethermindEth/cairo-vm-go/pkg/hintrunner"
	"github.com/NethermindEth/cairo-vm-go/pkg/vm"
)

// referencePattern matches the value strings the Cairo compiler emits
// for a reference manager entry, e.g. `cast(fp + (-4), felt)`,
// `cast(ap + 2, felt*)`, `[cast(fp + (-3), felt*)]`, or the
// double-dereference form `cast([fp + (-3)] + 1, felt)`. It does not
// attempt to parse the full reference-expression grammar (field
// access, struct casts with nested offsets) — only the register +
// one or two integer offsets shape every hint body in this package
// actually dereferences through.
var referencePattern = regexp.MustCompile(
	`^(\[)?cast\(\s*(\[)?\s*(ap|fp)\s*([+-]\s*\(?-?\d+\)?)?\s*(\])?\s*([+-]\s*\(?-?\d+\)?)?\s*,`,
)

// ParseReference turns a compiler-emitted reference string into a
// hintrunner.Reference, given the ApTracking snapshot the hint that
// uses it was emitted under.
func ParseReference(value string, apTracking *hintrunner.ApTracking) (hintrunner.Reference, error) {
	m := referencePattern.FindStringSubmatch(value)
	if m == nil {
		return hintrunner.Reference{}, fmt.Errorf("unrecognized reference expression: %q", value)
	}

	outerBracket := m[1] == "["
	innerBracket := m[2] == "["
	register := vm.Ap
	if m[3] == "fp" {
		register = vm.Fp
	}
	offset1, err := parseOffset(m[4])
	if err != nil {
		return hintrunner.Reference{}, fmt.Errorf("parsing first offset in %q: %w", value, err)
	}
	offset2, err := parseOffset(m[6])
	if err != nil {
		return hintrunner.Reference{}, fmt.Errorf("parsing second offset in %q: %w", value, err)
	}

	// A leading "[reg + off1]" makes the first offset an inner
	// dereference the second offset is applied after; an outer "[...]"
	// around the whole cast does the same when there's no inner one.
	innerDeref := innerBracket || (outerBracket && !innerBracket)

	ref := hintrunner.Reference{
		Register:         register,
		InnerDereference: innerDeref,
	}
	if innerBracket {
		ref.Offset1 = offset1
		ref.Offset2 = offset2
	} else {
		ref.Offset1 = offset1
	}
	if register == vm.Ap {
		ref.ApTrackingData = apTracking
	}
	return ref, nil
}

// parseOffset parses a captured "+ 5", "- 3", "+ (-3)" style fragment
// into its signed int16 value. An empty match means no offset term
// was present, i.e. zero.
func parseOffset(fragment string) (int16, error) {
	stripped := make([]byte, 0, len(fragment))
	for i := 0; i < len(fragment); i++ {
		if fragment[i] != ' ' {
			stripped = append(stripped, fragment[i])
		}
	}
	if len(stripped) == 0 {
		return 0, nil
	}

	outerSign := int64(1)
	if stripped[0] == '-' {
		outerSign = -1
	}
	rest := stripped[1:]

	cleaned := make([]byte, 0, len(rest))
	for _, c := range rest {
		if c != '(' && c != ')' {
			cleaned = append(cleaned, c)
		}
	}
	n, err := strconv.ParseInt(string(cleaned), 10, 16)
	if err != nil {
		return 0, err
	}
	return int16(outerSign * n), nil
}
