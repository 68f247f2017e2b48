package turing

import (
	"fmt"
	"sort"
	"strings"
)

// Sigma is the fixed binary tape alphabet size; larger alphabets are not
// supported.
const Sigma uint8 = 2

// TransitionFunction is a mapping (state, symbol) -> (state, symbol,
// direction), plus the constants Q (number of logical states, excluding
// Halt) and Sigma (alphabet size, fixed to 2). Key uniqueness — at most one
// transition per (state, symbol) — is the determinism invariant.
type TransitionFunction struct {
	Q     uint8
	Sigma uint8
	table map[Key]Transition
}

// NewTransitionFunction returns an empty function over q ordinary states.
func NewTransitionFunction(q uint8) *TransitionFunction {
	return &TransitionFunction{
		Q:     q,
		Sigma: Sigma,
		table: make(map[Key]Transition, int(q)*int(Sigma)),
	}
}

// ErrDuplicateKey is returned by Set when a key is already populated. Two
// transitions can never share a (state, symbol) key: the machine is
// deterministic by construction.
var ErrDuplicateKey = fmt.Errorf("turing: duplicate transition key")

// Set installs t at its key, failing if the key is already populated.
func (f *TransitionFunction) Set(t Transition) error {
	k := t.Key()
	if _, exists := f.table[k]; exists {
		return fmt.Errorf("%w: (%d,%d)", ErrDuplicateKey, k.State, k.Symbol)
	}
	f.table[k] = t
	return nil
}

// Get returns the transition for k, if any.
func (f *TransitionFunction) Get(k Key) (Transition, bool) {
	t, ok := f.table[k]
	return t, ok
}

// Len returns the number of populated entries.
func (f *TransitionFunction) Len() int {
	return len(f.table)
}

// Complete reports whether the function has exactly Q*Sigma entries —
// every (state, symbol) pair mapped.
func (f *TransitionFunction) Complete() bool {
	return len(f.table) == int(f.Q)*int(f.Sigma)
}

// Keys returns the populated keys in a stable (sorted) order. Ordering is
// otherwise unspecified; sorting here makes encoding and iteration
// deterministic, which static-filter template comparison and tests rely
// on.
func (f *TransitionFunction) Keys() []Key {
	keys := make([]Key, 0, len(f.table))
	for k := range f.table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].State != keys[j].State {
			return keys[i].State < keys[j].State
		}
		return keys[i].Symbol < keys[j].Symbol
	})
	return keys
}

// Transitions returns the populated transitions in Keys() order.
func (f *TransitionFunction) Transitions() []Transition {
	keys := f.Keys()
	out := make([]Transition, 0, len(keys))
	for _, k := range keys {
		out = append(out, f.table[k])
	}
	return out
}

// Clone returns a deep copy. TransitionFunctions are small (at most
// Q*Sigma entries) so cloning is cheap; the TuringMachine owns a private
// clone of whatever function it is constructed from.
func (f *TransitionFunction) Clone() *TransitionFunction {
	clone := &TransitionFunction{
		Q:     f.Q,
		Sigma: f.Sigma,
		table: make(map[Key]Transition, len(f.table)),
	}
	for k, v := range f.table {
		clone.table[k] = v
	}
	return clone
}

// Encode renders the function as `|`-joined transition encodings. Entry
// order follows Keys() for determinism, though correctness only requires
// the decoded mapping to match, not byte-for-byte string equality across
// distinct in-memory orderings.
func (f *TransitionFunction) Encode() string {
	parts := make([]string, 0, len(f.table))
	for _, t := range f.Transitions() {
		parts = append(parts, t.Encode())
	}
	return strings.Join(parts, "|")
}

// DecodeTransitionFunction parses a `|`-joined encoding into a function
// over q logical states. The caller supplies q (persisted alongside the
// encoded string) since the encoding alone does not guarantee every
// ordinary state appears as a FromState — a dead state devoid of outgoing
// transitions is not representable, but q still bounds the function's
// arity for completeness checks.
func DecodeTransitionFunction(s string, q uint8) (*TransitionFunction, error) {
	f := NewTransitionFunction(q)
	if s == "" {
		return f, nil
	}
	for _, part := range strings.Split(s, "|") {
		t, err := DecodeTransition(part)
		if err != nil {
			return nil, err
		}
		if err := f.Set(t); err != nil {
			return nil, err
		}
	}
	return f, nil
}
