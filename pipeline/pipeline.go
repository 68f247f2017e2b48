// Package pipeline wires the Enumerator, StaticFilter, Simulator, and
// Persistence stages into a single orchestrator: bounded channels carry
// work between stages, and a fixed set of long-lived goroutines is
// supervised with golang.org/x/sync/errgroup.
package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"busybeaver/enumerate"
	"busybeaver/filter"
	"busybeaver/persistence"
	"busybeaver/simulate"
	"busybeaver/turing"
)

// Config is the pipeline-level configuration: Q, MAX_STEPS, batch size,
// and worker count. Sigma is fixed at turing.Sigma (binary alphabet)
// throughout this module.
type Config struct {
	Q          uint8
	MaxSteps   uint64
	BatchSize  int
	Workers    int
	StatsEvery time.Duration
}

// Stats is an immutable snapshot of running pipeline counters, taken
// under a lock.
type Stats struct {
	Enumerated      uint64
	StaticRejected  filter.StaticCounters
	Simulated       uint64
	Halted          uint64
	Holdouts        uint64
	DynamicRejected map[turing.FilterVerdict]uint64
	ChampionScore   int
	ChampionFound   bool
}

// Pipeline owns the stages and the counters their results feed.
type Pipeline struct {
	cfg    Config
	static *filter.StaticFilter
	store  persistence.Store
	logger *log.Logger

	mu              sync.Mutex
	enumerated      uint64
	simulated       uint64
	halted          uint64
	holdouts        uint64
	dynamicRejected map[turing.FilterVerdict]uint64
	championScore   int
	championFound   bool

	// resumed holds the encoded transition functions of machines loaded via
	// LoadUnhalted: once they terminate, record() must overwrite their
	// existing row (Update) rather than insert a new one.
	resumed map[string]struct{}
}

// New constructs a Pipeline. logger defaults to log.Default() if nil.
func New(cfg Config, store persistence.Store, logger *log.Logger) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = turing.DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.StatsEvery <= 0 {
		cfg.StatsEvery = time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		cfg:             cfg,
		static:          filter.NewStaticFilter(cfg.Q),
		store:           store,
		logger:          logger,
		dynamicRejected: make(map[turing.FilterVerdict]uint64),
		resumed:         make(map[string]struct{}),
	}
}

// markResumed records which encoded transition functions came from
// LoadUnhalted, so record() knows to overwrite their existing row instead
// of inserting a new one. Called once, synchronously, before any stage
// goroutine starts consuming the resumed batches.
func (p *Pipeline) markResumed(records []persistence.Record) {
	for _, r := range records {
		p.resumed[r.Function.Encode()] = struct{}{}
	}
}

// Run starts the full pipeline in the background: enumeration (or resume),
// static filtering, simulation, and persistence. It returns the Stats
// channel immediately; the channel is closed once every stage has drained,
// ctx is cancelled, or a stage reports an unrecoverable error.
func (p *Pipeline) Run(ctx context.Context) (<-chan Stats, error) {
	group, groupCtx := errgroup.WithContext(ctx)
	done := groupCtx.Done()

	accepted, err := p.source(groupCtx, group, done)
	if err != nil {
		return nil, err
	}

	sim := simulate.New(p.cfg.Q, p.cfg.MaxSteps, p.cfg.Workers)
	machines := sim.Run(done, accepted)

	statsCh := make(chan Stats)
	group.Go(func() error {
		defer close(statsCh)
		return p.consume(groupCtx, machines, statsCh)
	})

	go func() {
		if err := group.Wait(); err != nil {
			p.logger.Printf("pipeline: terminated with error: %v", err)
		}
	}()

	return statsCh, nil
}

// source decides the resume policy: if unhalted machines with Q states
// already exist in the store, simulate them directly; otherwise enumerate
// and static-filter from scratch.
func (p *Pipeline) source(ctx context.Context, group *errgroup.Group, done <-chan struct{}) (<-chan turing.Batch, error) {
	unhalted, err := p.store.LoadUnhalted(ctx, p.cfg.Q, turing.Sigma)
	if err != nil {
		p.logger.Printf("pipeline: LoadUnhalted failed, proceeding to fresh enumeration: %v", err)
		unhalted = nil
	}

	if len(unhalted) > 0 {
		p.logger.Printf("pipeline: resuming %d unhalted machines for Q=%d", len(unhalted), p.cfg.Q)
		p.markResumed(unhalted)
		return p.resumeBatches(unhalted), nil
	}

	enumerator := enumerate.New(p.cfg.Q, p.cfg.BatchSize, p.static)
	unfiltered := enumerator.Run(done)
	return p.filterStage(group, done, unfiltered), nil
}

func (p *Pipeline) resumeBatches(records []persistence.Record) <-chan turing.Batch {
	out := make(chan turing.Batch, 1)
	go func() {
		defer close(out)
		batch := make(turing.Batch, 0, p.cfg.BatchSize)
		for _, r := range records {
			batch = append(batch, r.Function)
			if len(batch) >= p.cfg.BatchSize {
				out <- batch
				batch = make(turing.Batch, 0, p.cfg.BatchSize)
			}
		}
		if len(batch) > 0 {
			out <- batch
		}
	}()
	return out
}

// filterStage runs AcceptComplete over every enumerated batch, forwarding
// only accepted functions downstream.
func (p *Pipeline) filterStage(group *errgroup.Group, done <-chan struct{}, in <-chan turing.Batch) <-chan turing.Batch {
	out := make(chan turing.Batch)
	group.Go(func() error {
		defer close(out)
		for batch := range channerics.OrDone(done, in) {
			p.mu.Lock()
			p.enumerated += uint64(len(batch))
			p.mu.Unlock()

			accepted := make(turing.Batch, 0, len(batch))
			for _, f := range batch {
				if ok, _ := p.static.AcceptComplete(f); ok {
					accepted = append(accepted, f)
				}
			}
			if len(accepted) == 0 {
				continue
			}
			select {
			case out <- accepted:
			case <-done:
				return nil
			}
		}
		return nil
	})
	return out
}

// consume persists terminated machines and periodically emits Stats
// snapshots until machines is drained or ctx is cancelled.
func (p *Pipeline) consume(ctx context.Context, machines <-chan *turing.TuringMachine, statsCh chan<- Stats) error {
	ticker := channerics.NewTicker(ctx.Done(), p.cfg.StatsEvery)

	for {
		select {
		case m, ok := <-machines:
			if !ok {
				p.emit(ctx, statsCh)
				return nil
			}
			p.record(ctx, m)

		case _, ok := <-ticker:
			if !ok {
				return nil
			}
			p.emit(ctx, statsCh)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Pipeline) record(ctx context.Context, m *turing.TuringMachine) {
	rec := persistence.FromMachine(m)

	var err error
	if _, wasResumed := p.resumed[rec.Function.Encode()]; wasResumed {
		err = p.store.Update(ctx, rec)
	} else {
		err = p.store.InsertBatch(ctx, []persistence.Record{rec})
	}
	if err != nil {
		p.logger.Printf("pipeline: persistence error (non-fatal): %v", err)
	}

	p.mu.Lock()
	p.simulated++
	if m.Halted {
		p.halted++
		if !p.championFound || m.Score > p.championScore {
			p.championScore = m.Score
			p.championFound = true
		}
	} else if m.FilterVerdict == turing.VerdictNone {
		p.holdouts++
	} else {
		p.dynamicRejected[m.FilterVerdict]++
	}
	p.mu.Unlock()
}

func (p *Pipeline) emit(ctx context.Context, statsCh chan<- Stats) {
	snapshot := p.snapshot()
	p.logger.Printf("pipeline: stats: %+v", snapshot)
	select {
	case statsCh <- snapshot:
	case <-ctx.Done():
	}
}

func (p *Pipeline) snapshot() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	dynamic := make(map[turing.FilterVerdict]uint64, len(p.dynamicRejected))
	for k, v := range p.dynamicRejected {
		dynamic[k] = v
	}

	return Stats{
		Enumerated:      p.enumerated,
		StaticRejected:  p.static.Counters(),
		Simulated:       p.simulated,
		Halted:          p.halted,
		Holdouts:        p.holdouts,
		DynamicRejected: dynamic,
		ChampionScore:   p.championScore,
		ChampionFound:   p.championFound,
	}
}
