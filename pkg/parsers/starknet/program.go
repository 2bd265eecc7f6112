// Package starknet decodes the JSON a Cairo compiler emits for a
// compiled program into the plain Go structures pkg/runners/zero
// builds a runnable Program from. Parsing itself stays on the
// standard library encoding/json: the core executor never imports
// this package directly.
package starknet

import (
	"encoding/json"
	"fmt"

	f "github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// Identifier is one entry of the compiler's `identifiers` table: a
// label, function, member, or constant, keyed by its fully qualified
// name in Program.Identifiers.
type Identifier struct {
	Pc         uint64   `json:"pc"`
	Type       string   `json:"type"`
	Decorators []string `json:"decorators"`
}

// FlowTrackingData carries the ApTracking snapshot a hint was emitted
// under, plus the reference ids its `ids` table resolves through
// Program.ReferenceManager.
type FlowTrackingData struct {
	ApTracking struct {
		Group  uint64 `json:"group"`
		Offset uint64 `json:"offset"`
	} `json:"ap_tracking"`
	ReferenceIds map[string]int `json:"reference_ids"`
}

// Hint is one compiled hint record: the literal Python/Cairo hint body
// identified by Code, plus the flow tracking data needed to resolve
// its ids at runtime.
type Hint struct {
	Code             string           `json:"code"`
	FlowTrackingData FlowTrackingData `json:"flow_tracking_data"`
}

// ReferenceRecord is one entry of the compiler's reference manager: a
// string expression like `cast(fp + (-3), felt)` naming a symbolic
// memory location.
type ReferenceRecord struct {
	Value string `json:"value"`
}

// ReferenceManager is the flat, index-addressed table FlowTrackingData
// reference ids point into.
type ReferenceManager struct {
	References []ReferenceRecord `json:"references"`
}

// Program is the decoded form of a Cairo compiler's JSON output, the
// boundary artifact pkg/runners/zero.LoadProgram consumes.
type Program struct {
	Prime            string                `json:"prime"`
	Data             []*f.Element          `json:"-"`
	RawData          []string              `json:"data"`
	Identifiers      map[string]Identifier `json:"identifiers"`
	Hints            map[uint64][]Hint     `json:"-"`
	RawHints         map[string][]Hint     `json:"hints"`
	ReferenceManager ReferenceManager      `json:"reference_manager"`
	Builtins         []string              `json:"builtins"`
}

// Load decodes a compiled program's JSON bytes, converting its
// hex-string bytecode words and string-keyed hint table into their
// runtime forms.
func Load(content []byte) (*Program, error) {
	var program Program
	if err := json.Unmarshal(content, &program); err != nil {
		return nil, fmt.Errorf("decoding program json: %w", err)
	}

	program.Data = make([]*f.Element, len(program.RawData))
	for i, word := range program.RawData {
		value, err := decodeElement(word)
		if err != nil {
			return nil, fmt.Errorf("decoding data word %d (%q): %w", i, word, err)
		}
		program.Data[i] = value
	}

	program.Hints = make(map[uint64][]Hint, len(program.RawHints))
	for pcStr, hints := range program.RawHints {
		pc, err := parsePc(pcStr)
		if err != nil {
			return nil, fmt.Errorf("decoding hint pc %q: %w", pcStr, err)
		}
		program.Hints[pc] = hints
	}

	return &program, nil
}

func parsePc(s string) (uint64, error) {
	var pc uint64
	_, err := fmt.Sscanf(s, "%d", &pc)
	return pc, err
}

// decodeElement parses a bytecode word, which the compiler emits as
// either a "0x..." hex string or a plain decimal string.
func decodeElement(word string) (*f.Element, error) {
	var felt f.Element
	if _, err := felt.SetString(word); err != nil {
		return nil, err
	}
	return &felt, nil
}
