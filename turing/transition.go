package turing

import (
	"fmt"
	"strconv"
	"strings"
)

// Symbol is a tape cell value. The tape alphabet is fixed to {0,1};
// larger alphabets are future work.
type Symbol uint8

// Transition is a single five-tuple rule: reading FromSymbol while in
// FromState yields ToState/ToSymbol/Direction.
type Transition struct {
	FromState  State
	FromSymbol Symbol
	ToState    State
	ToSymbol   Symbol
	Direction  Direction
}

// Key identifies the (state, symbol) pair a Transition fires on.
type Key struct {
	State  State
	Symbol Symbol
}

// Key returns the (FromState, FromSymbol) pair that selects this transition.
func (t Transition) Key() Key {
	return Key{State: t.FromState, Symbol: t.FromSymbol}
}

// Encode renders t as "fs,fv,ts,tv,d" with decimal fields. Encoding is a
// total function: every Transition has exactly one encoding.
func (t Transition) Encode() string {
	return fmt.Sprintf("%d,%d,%d,%d,%d",
		t.FromState, t.FromSymbol, t.ToState, t.ToSymbol, uint8(t.Direction))
}

// DecodeTransition parses a single "fs,fv,ts,tv,d" field. It is the exact
// inverse of Encode: DecodeTransition(t.Encode()) == t for every Transition.
// Malformed input is a decode error, fatal to the caller's operation,
// since all well-formed strings originate from Encode.
func DecodeTransition(s string) (Transition, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 5 {
		return Transition{}, fmt.Errorf("turing: malformed transition %q: want 5 fields, got %d", s, len(fields))
	}

	vals := make([]uint64, 5)
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return Transition{}, fmt.Errorf("turing: malformed transition %q: field %d: %w", s, i, err)
		}
		vals[i] = v
	}

	return Transition{
		FromState:  State(vals[0]),
		FromSymbol: Symbol(vals[1]),
		ToState:    State(vals[2]),
		ToSymbol:   Symbol(vals[3]),
		Direction:  Direction(vals[4]),
	}, nil
}
