package filter

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"busybeaver/turing"
)

func TestStaticFilterStartSelfLoop(t *testing.T) {
	Convey("Given a start-state self-loop", t, func() {
		f := turing.NewTransitionFunction(2)
		_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 0, ToState: 0, ToSymbol: 0, Direction: turing.Right})
		sf := NewStaticFilter(2)

		Convey("AcceptPartial rejects it with StartSelfLoop", func() {
			ok, reason := sf.AcceptPartial(f)
			So(ok, ShouldBeFalse)
			So(reason, ShouldEqual, StartSelfLoop)
			So(sf.Counters().StartLoopers, ShouldEqual, 1)
		})
	})
}

func TestStaticFilterImmediateHalt(t *testing.T) {
	Convey("Given a machine that halts from the start state", t, func() {
		f := turing.NewTransitionFunction(2)
		_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 0, ToState: turing.Halt, ToSymbol: 1, Direction: turing.Right})
		sf := NewStaticFilter(2)

		Convey("AcceptPartial rejects it with ImmediateHalt", func() {
			ok, reason := sf.AcceptPartial(f)
			So(ok, ShouldBeFalse)
			So(reason, ShouldEqual, ImmediateHalt)
		})
	})
}

func TestStaticFilterNeighbourLoop(t *testing.T) {
	Convey("Given a start transition that enters a state looping back", t, func() {
		f := turing.NewTransitionFunction(2)
		_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 0, ToState: 1, ToSymbol: 1, Direction: turing.Right})
		_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 0, ToState: 1, ToSymbol: 0, Direction: turing.Right})
		sf := NewStaticFilter(2)

		Convey("AcceptPartial rejects it with StartNeighbourLoop", func() {
			ok, reason := sf.AcceptPartial(f)
			So(ok, ShouldBeFalse)
			So(reason, ShouldEqual, StartNeighbourLoop)
		})
	})
}

func TestStaticFilterCompletePredicates(t *testing.T) {
	Convey("Given a complete function with no transition reaching Halt", t, func() {
		f := turing.NewTransitionFunction(2)
		_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 0, ToState: 1, ToSymbol: 1, Direction: turing.Right})
		_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 1, ToState: 1, ToSymbol: 1, Direction: turing.Left})
		_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 0, ToState: 0, ToSymbol: 1, Direction: turing.Left})
		_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 1, ToState: 0, ToSymbol: 1, Direction: turing.Right})
		sf := NewStaticFilter(2)

		Convey("AcceptComplete rejects it with NoTransitionReachesHalt", func() {
			ok, reason := sf.AcceptComplete(f)
			So(ok, ShouldBeFalse)
			So(reason, ShouldEqual, NoTransitionReachesHalt)
		})
	})

	Convey("Given a complete function that reaches Halt but never writes a 1", t, func() {
		f := turing.NewTransitionFunction(2)
		_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 0, ToState: 1, ToSymbol: 0, Direction: turing.Right})
		_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 1, ToState: 1, ToSymbol: 0, Direction: turing.Left})
		_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 0, ToState: 0, ToSymbol: 0, Direction: turing.Left})
		_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 1, ToState: turing.Halt, ToSymbol: 0, Direction: turing.Right})
		sf := NewStaticFilter(2)

		Convey("AcceptComplete rejects it with NoTransitionWritesOne", func() {
			ok, reason := sf.AcceptComplete(f)
			So(ok, ShouldBeFalse)
			So(reason, ShouldEqual, NoTransitionWritesOne)
		})
	})
}

// threeStateA and threeStateB are two Q=3 functions related by the
// state-swap pi = {1<->2}.
func threeStateA() *turing.TransitionFunction {
	f := turing.NewTransitionFunction(3)
	_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 0, ToState: 1, ToSymbol: 0, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 1, ToState: 2, ToSymbol: 1, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 0, ToState: 2, ToSymbol: 0, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 1, ToState: 0, ToSymbol: 1, Direction: turing.Left})
	_ = f.Set(turing.Transition{FromState: 2, FromSymbol: 0, ToState: turing.Halt, ToSymbol: 1, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 2, FromSymbol: 1, ToState: 1, ToSymbol: 1, Direction: turing.Left})
	return f
}

func threeStateBSwapped() *turing.TransitionFunction {
	f := turing.NewTransitionFunction(3)
	_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 0, ToState: 2, ToSymbol: 0, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 1, ToState: 1, ToSymbol: 1, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 2, FromSymbol: 0, ToState: 1, ToSymbol: 0, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 2, FromSymbol: 1, ToState: 0, ToSymbol: 1, Direction: turing.Left})
	_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 0, ToState: turing.Halt, ToSymbol: 1, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 1, ToState: 2, ToSymbol: 1, Direction: turing.Left})
	return f
}

func TestStaticFilterSymmetryDuplicate(t *testing.T) {
	Convey("Given two Q=3 functions related by the state-swap 1<->2", t, func() {
		a := threeStateA()
		b := threeStateBSwapped()
		sf := NewStaticFilter(3)

		Convey("the first is accepted and the second is rejected as a symmetry duplicate", func() {
			ok, reason := sf.AcceptComplete(a)
			So(ok, ShouldBeTrue)
			So(reason, ShouldEqual, AcceptedReason)

			ok, reason = sf.AcceptComplete(b)
			So(ok, ShouldBeFalse)
			So(reason, ShouldEqual, SymmetryDuplicate)
			So(sf.Counters().SymmetryDuplicates, ShouldEqual, 1)
		})
	})
}

func TestHaltingSkipCount(t *testing.T) {
	Convey("HaltingSkipCount scales with Q*Sigma*(Sigma*|D|-1)", t, func() {
		So(HaltingSkipCount(2), ShouldEqual, uint64(2*2*3))
		So(HaltingSkipCount(5), ShouldEqual, uint64(5*2*3))
	})
}
