package turing

import "time"

// FilterVerdict reports which dynamic filter, if any, proved a machine
// non-halting.
type FilterVerdict uint8

const (
	VerdictNone FilterVerdict = iota
	VerdictShortEscapee
	VerdictLongEscapee
	VerdictCycler
	VerdictTranslatedCycler
)

func (v FilterVerdict) String() string {
	switch v {
	case VerdictShortEscapee:
		return "ShortEscapee"
	case VerdictLongEscapee:
		return "LongEscapee"
	case VerdictCycler:
		return "Cycler"
	case VerdictTranslatedCycler:
		return "TranslatedCycler"
	default:
		return "None"
	}
}

// TuringMachine owns a TransitionFunction and the mutable execution state
// of one run: the tape, head, current state, and bookkeeping counters. It
// is constructed from a TransitionFunction (which it clones), mutated
// only by the Simulator, and dropped once terminated.
type TuringMachine struct {
	Function *TransitionFunction

	Tape          []Symbol
	Head          int
	CurrentState  State
	Halted        bool
	TapeIncreased bool

	Steps uint64
	Score int

	Runtime       time.Duration
	FilterVerdict FilterVerdict

	// LastDirection is the direction applied by the most recent Step, i.e.
	// the direction of tape growth when TapeIncreased is true. Dynamic
	// filters (ShortEscapee, TranslatedCycler) consult it to tell which
	// way the machine is escaping.
	LastDirection Direction
}

// New constructs a TuringMachine from fn, cloning it so the machine owns
// its own transition table independent of the caller's copy.
func New(fn *TransitionFunction) *TuringMachine {
	return &TuringMachine{
		Function:     fn.Clone(),
		Tape:         []Symbol{0},
		Head:         0,
		CurrentState: Start,
	}
}

// Step applies one transition. It returns false (with m.Halted set) if no
// transition exists for the current (state, symbol) pair — an
// undefined-transition halt.
func (m *TuringMachine) Step() bool {
	if m.Halted {
		return false
	}

	key := Key{State: m.CurrentState, Symbol: m.Tape[m.Head]}
	t, ok := m.Function.Get(key)
	if !ok {
		m.Halted = true
		return false
	}

	m.TapeIncreased = false
	m.Tape[m.Head] = t.ToSymbol
	m.CurrentState = t.ToState
	m.LastDirection = t.Direction
	m.move(t.Direction)
	m.Steps++

	if m.CurrentState == Halt {
		m.Halted = true
	}
	return true
}

// move advances the head by d, growing the tape when it runs off either
// end. Moving LEFT at head=0 prepends a fresh blank cell and keeps the
// head at 0; moving RIGHT past the tape's end appends a fresh blank cell.
// Both cases set TapeIncreased, which the ShortEscapee/LongEscapee/
// TranslatedCycler filters rely on to detect fresh-cell visits. The
// prepend-and-grow choice for LEFT is required for TranslatedCycler to
// observe leftward growth at all.
func (m *TuringMachine) move(d Direction) {
	switch d {
	case Left:
		if m.Head == 0 {
			m.Tape = append([]Symbol{0}, m.Tape...)
			m.TapeIncreased = true
			return
		}
		m.Head--
	case Right:
		m.Head++
		if m.Head > len(m.Tape)-1 {
			m.Tape = append(m.Tape, 0)
			m.TapeIncreased = true
		}
	}
}

// ScoreTape counts the 1s on the final tape. Called once a machine's run
// ends (halted, rejected by a dynamic filter, or stopped at the step cap);
// this count is the machine's Score.
func (m *TuringMachine) ScoreTape() int {
	count := 0
	for _, s := range m.Tape {
		if s == 1 {
			count++
		}
	}
	return count
}
