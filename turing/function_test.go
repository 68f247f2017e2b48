package turing

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// bb2Champion returns the classical BB(2) champion:
// {(0,0)->(1,1,R), (0,1)->(1,1,L), (1,0)->(0,1,L), (1,1)->(Halt,1,R)}.
func bb2Champion() *TransitionFunction {
	f := NewTransitionFunction(2)
	_ = f.Set(Transition{FromState: 0, FromSymbol: 0, ToState: 1, ToSymbol: 1, Direction: Right})
	_ = f.Set(Transition{FromState: 0, FromSymbol: 1, ToState: 1, ToSymbol: 1, Direction: Left})
	_ = f.Set(Transition{FromState: 1, FromSymbol: 0, ToState: 0, ToSymbol: 1, Direction: Left})
	_ = f.Set(Transition{FromState: 1, FromSymbol: 1, ToState: Halt, ToSymbol: 1, Direction: Right})
	return f
}

func TestTransitionFunctionEncodeDecode(t *testing.T) {
	Convey("Given the BB(2) champion transition function", t, func() {
		f := bb2Champion()

		Convey("it is complete with no duplicate keys", func() {
			So(f.Complete(), ShouldBeTrue)
			So(f.Len(), ShouldEqual, int(f.Q)*int(Sigma))
		})

		Convey("decode(encode(f)) has the same key-value mapping", func() {
			decoded, err := DecodeTransitionFunction(f.Encode(), f.Q)
			So(err, ShouldBeNil)
			So(decoded.Len(), ShouldEqual, f.Len())

			for _, k := range f.Keys() {
				want, _ := f.Get(k)
				got, ok := decoded.Get(k)
				So(ok, ShouldBeTrue)
				So(got, ShouldResemble, want)
			}
		})
	})

	Convey("Given a function with a duplicate key", t, func() {
		f := NewTransitionFunction(2)
		So(f.Set(Transition{FromState: 0, FromSymbol: 0, ToState: 1, ToSymbol: 1, Direction: Right}), ShouldBeNil)

		Convey("Set rejects the second transition for the same key", func() {
			err := f.Set(Transition{FromState: 0, FromSymbol: 0, ToState: 0, ToSymbol: 0, Direction: Left})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an empty encoding", t, func() {
		Convey("DecodeTransitionFunction returns an empty function", func() {
			f, err := DecodeTransitionFunction("", 2)
			So(err, ShouldBeNil)
			So(f.Len(), ShouldEqual, 0)
		})
	})
}
