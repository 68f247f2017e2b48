package filter

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"busybeaver/turing"
)

// longEscapeeFunction is a Q=2 machine that crosses fresh cells rightward
// without ever revisiting an old one.
func longEscapeeFunction() *turing.TransitionFunction {
	f := turing.NewTransitionFunction(2)
	_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 0, ToState: 1, ToSymbol: 1, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 1, ToState: 1, ToSymbol: 1, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 0, ToState: 0, ToSymbol: 0, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 1, ToState: 1, ToSymbol: 1, Direction: turing.Left})
	return f
}

func TestDynamicFilterLongEscapee(t *testing.T) {
	Convey("Given a rightward escapee", t, func() {
		m := turing.New(longEscapeeFunction())
		d := NewDynamicFilter(2)

		Convey("LongEscapee fires once more than Q consecutive fresh cells are crossed, and not before", func() {
			const cap = 50
			verdict := turing.VerdictNone
			steps := 0
			for steps < cap && !m.Halted {
				if !m.Step() {
					break
				}
				steps++
				verdict = d.Observe(m)
				if verdict != turing.VerdictNone {
					break
				}
			}

			So(verdict, ShouldEqual, turing.VerdictLongEscapee)
			So(steps, ShouldBeLessThan, cap)
			// Every step of this machine visits a fresh cell, so the
			// counter first exceeds Q=2 on step Q+1.
			So(steps, ShouldEqual, 3)
		})
	})
}

// cyclerFunction is a Q=3 machine whose (tape, head, state)
// configuration repeats exactly.
func cyclerFunction() *turing.TransitionFunction {
	f := turing.NewTransitionFunction(3)
	_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 0, ToState: 1, ToSymbol: 0, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 0, ToState: 2, ToSymbol: 0, Direction: turing.Left})
	_ = f.Set(turing.Transition{FromState: 2, FromSymbol: 0, ToState: 1, ToSymbol: 0, Direction: turing.Right})
	return f
}

func TestDynamicFilterCycler(t *testing.T) {
	Convey("Given a known-cycling machine", t, func() {
		m := turing.New(cyclerFunction())
		d := NewDynamicFilter(3)

		Convey("Cycler fires exactly when the (tape, head, state) configuration first repeats", func() {
			const cap = 50
			seen := make(map[[32]byte]struct{})
			verdict := turing.VerdictNone
			steps := 0
			repeatsAtStep := -1

			for steps < cap && !m.Halted {
				if !m.Step() {
					break
				}
				steps++

				h := configurationHash(m)
				if _, ok := seen[h]; ok && repeatsAtStep == -1 {
					repeatsAtStep = steps
				}
				seen[h] = struct{}{}

				verdict = d.Observe(m)
				if verdict != turing.VerdictNone {
					break
				}
			}

			So(repeatsAtStep, ShouldBeGreaterThan, 0)
			So(verdict, ShouldEqual, turing.VerdictCycler)
			So(steps, ShouldEqual, repeatsAtStep)
		})
	})
}

// TestDynamicFilterTranslatedCycler exercises the TranslatedCycler observer
// directly against two synthetic arrivals at the same (state, direction)
// key whose growth-edge windows match: a drifting cycle that re-enters
// the same local pattern after a lateral shift.
func TestDynamicFilterTranslatedCycler(t *testing.T) {
	Convey("Given two rightward arrivals at the same state with identical edge windows", t, func() {
		q := uint8(5)
		d := NewDynamicFilter(q)

		f := turing.NewTransitionFunction(q)
		m := turing.New(f)
		m.CurrentState = 3
		m.LastDirection = turing.Right
		m.TapeIncreased = true
		m.Tape = []turing.Symbol{1, 0, 1, 1, 0}

		Convey("the first arrival only records the window", func() {
			So(d.Observe(m), ShouldEqual, turing.VerdictNone)

			Convey("a second arrival at the same key with the same trailing window is rejected", func() {
				m.Tape = []turing.Symbol{0, 1, 0, 1, 1, 0}
				So(d.Observe(m), ShouldEqual, turing.VerdictTranslatedCycler)
			})

			Convey("a second arrival with a different trailing window is accepted", func() {
				m.Tape = []turing.Symbol{0, 0, 1, 0, 1, 1}
				So(d.Observe(m), ShouldEqual, turing.VerdictNone)
			})
		})
	})
}
