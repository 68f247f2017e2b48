// Package enumerate generates every complete TransitionFunction over Q
// states and binary symbols via breadth-first search, pruned along the
// way by a StaticFilter's partial-function predicates, and emits accepted
// functions in bounded batches.
package enumerate

import (
	"busybeaver/filter"
	"busybeaver/turing"
)

// candidate is one value a key can take: a target state (or the canonical
// Halt target), the symbol written, and the direction moved.
type candidate struct {
	toState   turing.State
	toSymbol  turing.Symbol
	direction turing.Direction
}

// candidatesForKey builds the M = Q*Sigma*|D|+1 candidate values for a
// single key: every (state, symbol, direction) combination over the
// ordinary states, plus one canonical Halt transition. All Halt-bound
// transitions collapse to (Halt, 1, Right), since Halt's symbol/direction
// never affect behavior and a nonzero score requires writing 1 somewhere.
func candidatesForKey(q uint8) []candidate {
	cands := make([]candidate, 0, int(q)*int(turing.Sigma)*2+1)
	for s := turing.State(0); s < turing.State(q); s++ {
		for sym := turing.Symbol(0); sym < turing.Symbol(turing.Sigma); sym++ {
			cands = append(cands,
				candidate{toState: s, toSymbol: sym, direction: turing.Left},
				candidate{toState: s, toSymbol: sym, direction: turing.Right},
			)
		}
	}
	cands = append(cands, candidate{toState: turing.Halt, toSymbol: 1, direction: turing.Right})
	return cands
}

// Enumerator is single-threaded by design: the queue is inherently
// sequential, and parallelising it would add coordination overhead
// without improving the prune rate.
type Enumerator struct {
	q          uint8
	batchSize  int
	static     *filter.StaticFilter
	keys       []turing.Key
	candidates []candidate
}

// New returns an Enumerator for q states. batchSize <= 0 falls back to
// turing.DefaultBatchSize.
func New(q uint8, batchSize int, static *filter.StaticFilter) *Enumerator {
	if batchSize <= 0 {
		batchSize = turing.DefaultBatchSize
	}
	return &Enumerator{
		q:          q,
		batchSize:  batchSize,
		static:     static,
		keys:       turing.AllKeys(q),
		candidates: candidatesForKey(q),
	}
}

// Run starts the BFS in its own goroutine and returns the channel it
// sends batches on. The channel is closed once the queue is exhausted or
// done is closed.
func (e *Enumerator) Run(done <-chan struct{}) <-chan turing.Batch {
	out := make(chan turing.Batch)
	go func() {
		defer close(out)
		e.run(done, out)
	}()
	return out
}

func (e *Enumerator) run(done <-chan struct{}, out chan<- turing.Batch) {
	total := int(e.q) * int(turing.Sigma)

	queue := make([]*turing.TransitionFunction, 0, len(e.candidates))
	for _, c := range e.candidates {
		f := turing.NewTransitionFunction(e.q)
		_ = f.Set(turing.Transition{
			FromState:  e.keys[0].State,
			FromSymbol: e.keys[0].Symbol,
			ToState:    c.toState,
			ToSymbol:   c.toSymbol,
			Direction:  c.direction,
		})
		if ok, _ := e.static.AcceptPartial(f); ok {
			queue = append(queue, f)
		}
	}

	batch := make(turing.Batch, 0, e.batchSize)
	for len(queue) > 0 {
		select {
		case <-done:
			return
		default:
		}

		f := queue[0]
		queue = queue[1:]

		if f.Len() == total {
			batch = append(batch, f)
			if len(batch) >= e.batchSize {
				select {
				case out <- batch:
				case <-done:
					return
				}
				batch = make(turing.Batch, 0, e.batchSize)
			}
			continue
		}

		nextKey := e.keys[f.Len()]
		for _, c := range e.candidates {
			child := f.Clone()
			t := turing.Transition{
				FromState:  nextKey.State,
				FromSymbol: nextKey.Symbol,
				ToState:    c.toState,
				ToSymbol:   c.toSymbol,
				Direction:  c.direction,
			}
			if err := child.Set(t); err != nil {
				continue
			}
			if ok, _ := e.static.AcceptPartial(child); ok {
				queue = append(queue, child)
			}
		}
	}

	if len(batch) > 0 {
		select {
		case out <- batch:
		case <-done:
		}
	}
}
