/*
Busybeaver searches for the longest-running halting Turing machines with a
given number of states, over the binary alphabet: enumerate candidate
transition functions, statically reject the ones provably non-halting,
simulate the rest under a dynamic filter bundle and a step budget, and
persist the champion (the halted machine with the highest score) as it is
found. Progress is served as a small live dashboard while the search runs.
*/
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"busybeaver/config"
	"busybeaver/dashboard"
	"busybeaver/persistence"
	"busybeaver/pipeline"
)

func runApp() error {
	cfg, err := config.FromYaml("./config.yaml")
	if err != nil {
		log.Printf("busybeaver: no usable config.yaml (%v), using defaults", err)
		cfg = config.Default()
	}
	if cfg, err = config.ParseFlags(cfg, os.Args[1:]); err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	appCtx, cancelDeadline := cfg.WithDeadline(signalCtx)
	defer cancelDeadline()

	store := persistence.NewMemoryStore()
	pl := pipeline.New(pipeline.Config{
		Q:          cfg.Q,
		MaxSteps:   cfg.MaxSteps,
		BatchSize:  cfg.BatchSize,
		Workers:    cfg.Workers,
		StatsEvery: cfg.StatsEvery,
	}, store, log.Default())

	statsCh, err := pl.Run(appCtx)
	if err != nil {
		return err
	}

	srv := dashboard.NewServer(appCtx, cfg.Addr(), statsCh)
	log.Printf("busybeaver: Q=%d MAX_STEPS=%d dashboard on %s", cfg.Q, cfg.MaxSteps, cfg.Addr())

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()
	select {
	case err := <-serveErr:
		return err
	case <-appCtx.Done():
		return nil
	}
}

func main() {
	if err := runApp(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
