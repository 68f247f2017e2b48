// Package simulate drives a stream of accepted TransitionFunctions to
// termination in parallel, consulting a fresh DynamicFilter bundle at
// every step of every machine.
package simulate

import (
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"busybeaver/filter"
	"busybeaver/turing"
)

// Simulator shards TuringMachine execution across a fixed worker pool:
// each machine is independent, there is no shared mutable state across
// workers, and output carries no ordering guarantee.
type Simulator struct {
	q        uint8
	maxSteps uint64
	workers  int
}

// New returns a Simulator for q-state machines, each capped at maxSteps,
// sharded across workers goroutines (workers <= 0 falls back to 1).
func New(q uint8, maxSteps uint64, workers int) *Simulator {
	if workers <= 0 {
		workers = 1
	}
	return &Simulator{q: q, maxSteps: maxSteps, workers: workers}
}

// Run consumes batches of TransitionFunctions already accepted by
// AcceptComplete and returns a channel of terminated TuringMachines,
// closed once in is drained or done is closed.
func (s *Simulator) Run(done <-chan struct{}, in <-chan turing.Batch) <-chan *turing.TuringMachine {
	functions := s.flatten(done, in)

	workers := make([]<-chan *turing.TuringMachine, s.workers)
	for i := range workers {
		workers[i] = s.worker(done, functions)
	}
	return channerics.Merge(done, workers...)
}

// flatten unpacks batches into a single stream of functions so the worker
// pool below can shard at function granularity rather than batch
// granularity — a batch of 100 should not tie up one worker alone.
func (s *Simulator) flatten(done <-chan struct{}, in <-chan turing.Batch) <-chan *turing.TransitionFunction {
	out := make(chan *turing.TransitionFunction)
	go func() {
		defer close(out)
		for batch := range channerics.OrDone(done, in) {
			for _, f := range batch {
				select {
				case out <- f:
				case <-done:
					return
				}
			}
		}
	}()
	return out
}

func (s *Simulator) worker(done <-chan struct{}, functions <-chan *turing.TransitionFunction) <-chan *turing.TuringMachine {
	out := make(chan *turing.TuringMachine)
	go func() {
		defer close(out)
		for f := range channerics.OrDone(done, functions) {
			m := s.simulate(f)
			select {
			case out <- m:
			case <-done:
				return
			}
		}
	}()
	return out
}

// simulate runs one machine to halt, MAX_STEPS, or a dynamic-filter
// verdict, whichever comes first.
func (s *Simulator) simulate(f *turing.TransitionFunction) *turing.TuringMachine {
	m := turing.New(f)
	dyn := filter.NewDynamicFilter(s.q)

	start := time.Now()
	for !m.Halted && m.Steps < s.maxSteps {
		if !m.Step() {
			break
		}
		if m.Halted {
			break
		}
		if v := dyn.Observe(m); v != turing.VerdictNone {
			m.FilterVerdict = v
			break
		}
	}
	m.Runtime = time.Since(start)
	m.Score = m.ScoreTape()
	return m
}
