// Package filter implements a two-phase filtering pipeline: StaticFilter
// rejects provably non-halting transition-function shapes before any
// simulation runs; DynamicFilter watches a running TuringMachine
// step-by-step for non-halting trajectories.
package filter

import (
	"sync"

	"busybeaver/turing"
)

// RejectReason names which static predicate rejected a candidate, or
// AcceptedReason when none did.
type RejectReason uint8

const (
	AcceptedReason RejectReason = iota
	StartSelfLoop
	StartNeighbourLoop
	ImmediateHalt
	NoTransitionReachesHalt
	NoTransitionWritesOne
	SymmetryDuplicate
)

func (r RejectReason) String() string {
	switch r {
	case StartSelfLoop:
		return "start-state self-loop"
	case StartNeighbourLoop:
		return "start-enters-neighbour-loop"
	case ImmediateHalt:
		return "immediate halt"
	case NoTransitionReachesHalt:
		return "no transition reaches Halt"
	case NoTransitionWritesOne:
		return "no transition writes 1"
	case SymmetryDuplicate:
		return "symmetry-equivalent duplicate"
	default:
		return "accepted"
	}
}

// StaticCounters are the rejection totals of the partial-function
// predicates and the symmetry check, plus the precomputed halting_skippers
// reduction. They are reported as raw counts (pipeline.Stats), not as
// percentages of the theoretical total; the no-transition-reaches-Halt and
// no-transition-writes-1 rejections are not counted.
type StaticCounters struct {
	StartLoopers       uint64
	NeighbourLoopers   uint64
	ImmediateHalters   uint64
	HaltingSkippers    uint64
	SymmetryDuplicates uint64
}

// HaltingSkipCount is the known-before-enumeration reduction from |Q|+1
// targets to |Q| ordinary targets plus one canonical Halt transition. Per
// key there are normally
// (Q+1)*Sigma*|D| candidate values (Q ordinary target states plus Halt,
// crossed with symbol and direction); canonicalizing all Halt-target
// transitions to a single (Halt,1,Right) per key collapses that to
// Q*Sigma*|D| + 1. The difference, summed over all Q*Sigma keys, is the
// number of candidates the canonicalization already prunes before a
// single StaticFilter predicate runs.
func HaltingSkipCount(q uint8) uint64 {
	sigma := uint64(turing.Sigma)
	d := uint64(2) // |D| = |{Left, Right}|
	perKey := sigma*d - 1
	return uint64(q) * sigma * perKey
}

// StaticFilter holds the mutable state shared across one enumeration run:
// rejection counters and the set of canonical templates used for
// symmetry-equivalence deduplication.
//
// A StaticFilter is safe for concurrent use: the Enumerator is single
// threaded, but the static-filter stage may dispatch per-batch symmetry
// checks to a worker pool, so the shared counters and template set are
// mutex-guarded.
type StaticFilter struct {
	mu        sync.Mutex
	counters  StaticCounters
	templates []*turing.TransitionFunction
}

// NewStaticFilter returns a filter with HaltingSkippers pre-seeded for q,
// since that counter reflects a known reduction rather than a predicate
// outcome discovered during filtering.
func NewStaticFilter(q uint8) *StaticFilter {
	return &StaticFilter{
		counters: StaticCounters{HaltingSkippers: HaltingSkipCount(q)},
	}
}

// Counters returns a snapshot of the current rejection totals.
func (sf *StaticFilter) Counters() StaticCounters {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.counters
}

// AcceptPartial applies the predicates that are meaningful on a partial
// (incomplete) function: start-state self-loop, start-enters-neighbour-loop,
// and immediate halt. The Enumerator calls this after every transition it
// adds while building up a candidate BFS-style.
func (sf *StaticFilter) AcceptPartial(f *turing.TransitionFunction) (bool, RejectReason) {
	startKey := turing.Key{State: turing.Start, Symbol: 0}
	start, ok := f.Get(startKey)
	if !ok {
		return true, AcceptedReason
	}

	if start.ToState == turing.Start {
		sf.reject(&sf.counters.StartLoopers)
		return false, StartSelfLoop
	}

	if start.ToState == turing.Halt {
		sf.reject(&sf.counters.ImmediateHalters)
		return false, ImmediateHalt
	}

	neighbourKey := turing.Key{State: start.ToState, Symbol: 0}
	if neighbour, ok := f.Get(neighbourKey); ok {
		if neighbour.ToState == start.ToState && neighbour.Direction == start.Direction {
			sf.reject(&sf.counters.NeighbourLoopers)
			return false, StartNeighbourLoop
		}
	}

	return true, AcceptedReason
}

// AcceptComplete applies the predicates that require a complete function
// (no-transition-reaches-Halt, no-transition-writes-1) plus the
// symmetry-equivalence deduplication. It must only be called once f is
// complete (f.Complete() == true).
func (sf *StaticFilter) AcceptComplete(f *turing.TransitionFunction) (bool, RejectReason) {
	reachesHalt := false
	writesOne := false
	for _, t := range f.Transitions() {
		if t.ToState == turing.Halt {
			reachesHalt = true
		}
		if t.ToSymbol == 1 {
			writesOne = true
		}
	}
	if !reachesHalt {
		return false, NoTransitionReachesHalt
	}
	if !writesOne {
		return false, NoTransitionWritesOne
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()
	if sf.isSymmetryDuplicateLocked(f) {
		sf.counters.SymmetryDuplicates++
		return false, SymmetryDuplicate
	}
	sf.templates = append(sf.templates, f.Clone())
	return true, AcceptedReason
}

func (sf *StaticFilter) reject(counter *uint64) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	*counter++
}

// isSymmetryDuplicateLocked reports whether f is equivalent, under some
// state permutation fixing Start and Halt, to an already-accepted
// template. Callers must hold sf.mu.
func (sf *StaticFilter) isSymmetryDuplicateLocked(f *turing.TransitionFunction) bool {
	for _, template := range sf.templates {
		if statePermutationEquivalent(f, template) {
			return true
		}
	}
	return false
}

// statePermutationEquivalent reports whether there exists a bijection pi
// over {0..Q-1} with pi(Start)=Start such that renaming a's states by pi
// yields b. The mapping is built incrementally by walking a's transition
// graph from Start and propagating the forced target-state correspondence
// at each step (matching transitions and propagating constraints); any
// states left unreached from Start (possible for states the enumeration
// still generates, since every ordinary state has entries even if no path
// from Start visits it) are resolved by trying permutations over the
// leftover state sets, then the full candidate mapping is validated
// transition-by-transition.
func statePermutationEquivalent(a, b *turing.TransitionFunction) bool {
	if a.Q != b.Q || !a.Complete() || !b.Complete() {
		return false
	}

	forward := map[turing.State]turing.State{turing.Start: turing.Start}
	backward := map[turing.State]turing.State{turing.Start: turing.Start}

	queue := []turing.State{turing.Start}
	ok := true
	for len(queue) > 0 && ok {
		s := queue[0]
		queue = queue[1:]
		ms := forward[s]

		for symbol := turing.Symbol(0); symbol < turing.Symbol(turing.Sigma); symbol++ {
			ta, hasA := a.Get(turing.Key{State: s, Symbol: symbol})
			tb, hasB := b.Get(turing.Key{State: ms, Symbol: symbol})
			if hasA != hasB {
				ok = false
				break
			}
			if !hasA {
				continue
			}
			if ta.ToSymbol != tb.ToSymbol || ta.Direction != tb.Direction {
				ok = false
				break
			}

			if ta.ToState == turing.Halt || tb.ToState == turing.Halt {
				if ta.ToState != tb.ToState {
					ok = false
					break
				}
				continue
			}

			if existing, seen := forward[ta.ToState]; seen {
				if existing != tb.ToState {
					ok = false
					break
				}
				continue
			}
			if _, taken := backward[tb.ToState]; taken {
				ok = false
				break
			}
			forward[ta.ToState] = tb.ToState
			backward[tb.ToState] = ta.ToState
			queue = append(queue, ta.ToState)
		}
	}
	if !ok {
		return false
	}

	return completeMapping(forward, backward, a.Q, func() bool {
		return validateMapping(a, b, forward)
	})
}

// completeMapping extends a partial bijection over leftover (unreached)
// states by brute-force permutation, stopping at the first permutation for
// which valid reports true; Q is small in practice (2..7), so this is
// cheap.
func completeMapping(forward, backward map[turing.State]turing.State, q uint8, valid func() bool) bool {
	var leftA, leftB []turing.State
	for s := turing.State(0); s < turing.State(q); s++ {
		if _, ok := forward[s]; !ok {
			leftA = append(leftA, s)
		}
		if _, ok := backward[s]; !ok {
			leftB = append(leftB, s)
		}
	}
	if len(leftA) != len(leftB) {
		return false
	}
	if len(leftA) == 0 {
		return valid()
	}

	perm := make([]int, len(leftB))
	for i := range perm {
		perm[i] = i
	}
	return permute(perm, 0, func(p []int) bool {
		for i, s := range leftA {
			forward[s] = leftB[p[i]]
			backward[leftB[p[i]]] = s
		}
		return valid()
	})
}

// permute calls visit with each permutation of perm[k:], stopping at the
// first one for which visit returns true.
func permute(perm []int, k int, visit func([]int) bool) bool {
	if k == len(perm) {
		return visit(perm)
	}
	for i := k; i < len(perm); i++ {
		perm[k], perm[i] = perm[i], perm[k]
		if permute(perm, k+1, visit) {
			return true
		}
		perm[k], perm[i] = perm[i], perm[k]
	}
	return false
}

// validateMapping checks every one of a's transitions against b under the
// fully-built forward mapping, as ground truth for equivalence.
func validateMapping(a, b *turing.TransitionFunction, forward map[turing.State]turing.State) bool {
	for _, ta := range a.Transitions() {
		ms, ok := forward[ta.FromState]
		if !ok {
			return false
		}
		tb, ok := b.Get(turing.Key{State: ms, Symbol: ta.FromSymbol})
		if !ok {
			return false
		}
		if ta.ToSymbol != tb.ToSymbol || ta.Direction != tb.Direction {
			return false
		}
		if ta.ToState == turing.Halt || tb.ToState == turing.Halt {
			if ta.ToState != tb.ToState {
				return false
			}
			continue
		}
		if forward[ta.ToState] != tb.ToState {
			return false
		}
	}
	return true
}
