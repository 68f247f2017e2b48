package pipeline

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"busybeaver/persistence"
	"busybeaver/turing"
)

func TestPipelineFindsChampionForQ2(t *testing.T) {
	Convey("Given a fresh Q=2 pipeline with a small step cap", t, func() {
		store := persistence.NewMemoryStore()
		p := New(Config{
			Q:          2,
			MaxSteps:   20,
			BatchSize:  32,
			Workers:    4,
			StatsEvery: 10 * time.Millisecond,
		}, store, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		statsCh, err := p.Run(ctx)
		So(err, ShouldBeNil)

		var last Stats
		for s := range statsCh {
			last = s
		}

		Convey("it finishes with every simulated machine accounted for", func() {
			So(last.Simulated, ShouldBeGreaterThan, uint64(0))
			So(last.Simulated, ShouldEqual, last.Halted+last.Holdouts+sumVerdicts(last.DynamicRejected))
		})

		Convey("the classical BB(2) champion (score 4) is found", func() {
			champ, ok, err := store.Champion(context.Background(), 2, turing.Sigma)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(champ.Score, ShouldEqual, 4)
		})
	})
}

func bb2Champion() *turing.TransitionFunction {
	f := turing.NewTransitionFunction(2)
	_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 0, ToState: 1, ToSymbol: 1, Direction: turing.Right})
	_ = f.Set(turing.Transition{FromState: 0, FromSymbol: 1, ToState: 1, ToSymbol: 1, Direction: turing.Left})
	_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 0, ToState: 0, ToSymbol: 1, Direction: turing.Left})
	_ = f.Set(turing.Transition{FromState: 1, FromSymbol: 1, ToState: turing.Halt, ToSymbol: 1, Direction: turing.Right})
	return f
}

func TestPipelineResumesExistingRowInPlace(t *testing.T) {
	Convey("Given a store already holding an unhalted row for the champion function", t, func() {
		store := persistence.NewMemoryStore()
		f := bb2Champion()
		So(store.InsertBatch(context.Background(), []persistence.Record{{
			Function: f,
			Q:        2,
			Sigma:    turing.Sigma,
			Halted:   false,
		}}), ShouldBeNil)

		p := New(Config{
			Q:          2,
			MaxSteps:   20,
			BatchSize:  32,
			Workers:    1,
			StatsEvery: 10 * time.Millisecond,
		}, store, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		statsCh, err := p.Run(ctx)
		So(err, ShouldBeNil)
		for range statsCh {
		}

		Convey("the resumed row is overwritten in place rather than duplicated", func() {
			unhalted, err := store.LoadUnhalted(context.Background(), 2, turing.Sigma)
			So(err, ShouldBeNil)
			So(unhalted, ShouldBeEmpty)

			champ, ok, err := store.Champion(context.Background(), 2, turing.Sigma)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(champ.Score, ShouldEqual, 4)
		})
	})
}

func sumVerdicts(m map[turing.FilterVerdict]uint64) uint64 {
	var total uint64
	for _, v := range m {
		total += v
	}
	return total
}
