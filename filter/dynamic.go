package filter

import (
	"crypto/sha256"
	"encoding/binary"

	"busybeaver/turing"
)

// translatedKey identifies an arrival point for the TranslatedCycler
// observer: the state the machine is in and the direction it grew the
// tape in to get there.
type translatedKey struct {
	state     turing.State
	direction turing.Direction
}

// DynamicFilter is a bundle of four stateful observers run in lockstep
// with a single TuringMachine's execution. One bundle is constructed per
// machine run; no state is ever shared or reused across machines, which
// would risk false rejections on unrelated machines that happen to
// traverse similar tapes.
type DynamicFilter struct {
	q uint8

	// LongEscapee: consecutive fresh-cell visits.
	consecutiveFresh uint64

	// Cycler: configurations (tape hash, head, state) seen so far.
	seenConfigurations map[[32]byte]struct{}

	// TranslatedCycler: last snapshot of the tape's growth-edge window,
	// keyed by (state, direction) at first/most-recent arrival.
	translatedSnapshots map[translatedKey][]turing.Symbol
	// translatedWindow (L) is the number of cells compared at the tape's
	// growth edge. Scaling it to Q keeps the window proportional to the
	// number of states that could plausibly repeat a sub-cycle.
	translatedWindow int
}

// NewDynamicFilter returns a fresh bundle for simulating a Q-state machine.
func NewDynamicFilter(q uint8) *DynamicFilter {
	window := int(q)
	if window < 1 {
		window = 1
	}
	return &DynamicFilter{
		q:                   q,
		seenConfigurations:  make(map[[32]byte]struct{}),
		translatedSnapshots: make(map[translatedKey][]turing.Symbol),
		translatedWindow:    window,
	}
}

// Observe runs the four observers in order against m's post-Step state and
// returns the first non-None verdict, short-circuiting the rest: once a
// machine is proven non-halting there is no need (and no further steps)
// to consult the remaining observers.
func (d *DynamicFilter) Observe(m *turing.TuringMachine) turing.FilterVerdict {
	if v := d.shortEscapee(m); v != turing.VerdictNone {
		return v
	}
	if v := d.longEscapee(m); v != turing.VerdictNone {
		return v
	}
	if v := d.cycler(m); v != turing.VerdictNone {
		return v
	}
	if v := d.translatedCycler(m); v != turing.VerdictNone {
		return v
	}
	return turing.VerdictNone
}

// shortEscapee rejects a machine that, having just grown the tape, is
// about to re-enter the same fresh-cell self-loop it just took: the
// transition for (current_state, 0) maps back to (current_state, 0,
// same direction), so it will escape in that direction forever.
func (d *DynamicFilter) shortEscapee(m *turing.TuringMachine) turing.FilterVerdict {
	if !m.TapeIncreased {
		return turing.VerdictNone
	}
	next, ok := m.Function.Get(turing.Key{State: m.CurrentState, Symbol: 0})
	if ok && next.ToState == m.CurrentState && next.ToSymbol == 0 && next.Direction == m.LastDirection {
		return turing.VerdictShortEscapee
	}
	return turing.VerdictNone
}

// longEscapee rejects a machine that has visited more than Q consecutive
// fresh cells: by pigeonhole, it has not revisited any previously-seen
// state configuration relative to the tape's frontier in that span, so it
// is escaping in a simple direction.
func (d *DynamicFilter) longEscapee(m *turing.TuringMachine) turing.FilterVerdict {
	if m.TapeIncreased {
		d.consecutiveFresh++
	} else {
		d.consecutiveFresh = 0
	}
	if d.consecutiveFresh > uint64(d.q) {
		return turing.VerdictLongEscapee
	}
	return turing.VerdictNone
}

// cycler rejects a machine whose full configuration (tape, head, state)
// repeats: it is in a pure cycle and will loop forever. The tape is
// hashed with SHA-256 so distinct long tapes cannot be mistaken for equal
// ones; hash equality is treated as tape equality.
func (d *DynamicFilter) cycler(m *turing.TuringMachine) turing.FilterVerdict {
	key := configurationHash(m)
	if _, seen := d.seenConfigurations[key]; seen {
		return turing.VerdictCycler
	}
	d.seenConfigurations[key] = struct{}{}
	return turing.VerdictNone
}

func configurationHash(m *turing.TuringMachine) [32]byte {
	h := sha256.New()
	buf := make([]byte, 0, len(m.Tape)+16)
	for _, s := range m.Tape {
		buf = append(buf, byte(s))
	}
	var hdr [16]byte
	binary.BigEndian.PutUint64(hdr[0:8], uint64(m.Head))
	binary.BigEndian.PutUint64(hdr[8:16], uint64(m.CurrentState))
	buf = append(buf, hdr[:]...)
	h.Write(buf)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// translatedCycler rejects a machine whose relative configuration (state,
// tape contents near the growth edge) repeats at a shifted absolute
// position: a drifting cycle that will repeat forever once established.
func (d *DynamicFilter) translatedCycler(m *turing.TuringMachine) turing.FilterVerdict {
	if !m.TapeIncreased {
		return turing.VerdictNone
	}

	key := translatedKey{state: m.CurrentState, direction: m.LastDirection}
	window := edgeWindow(m.Tape, m.LastDirection, d.translatedWindow)

	if prev, ok := d.translatedSnapshots[key]; ok {
		if equalSymbols(prev, window) {
			return turing.VerdictTranslatedCycler
		}
	}
	d.translatedSnapshots[key] = window
	return turing.VerdictNone
}

// edgeWindow returns the last L cells of tape for RIGHT growth, or the
// first L cells for LEFT growth, clipped to the tape's current length.
func edgeWindow(tape []turing.Symbol, growth turing.Direction, l int) []turing.Symbol {
	n := len(tape)
	if l > n {
		l = n
	}
	window := make([]turing.Symbol, l)
	if growth == turing.Left {
		copy(window, tape[:l])
		return window
	}
	copy(window, tape[n-l:])
	return window
}

func equalSymbols(a, b []turing.Symbol) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
