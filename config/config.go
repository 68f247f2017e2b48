// Package config loads pipeline and dashboard configuration: a YAML file
// is read through viper into an outer envelope, then re-marshalled and
// unmarshalled into a concrete yaml-tagged struct with gopkg.in/yaml.v3,
// and CLI flags (stdlib flag) override whatever the file specifies.
package config

import (
	"context"
	"flag"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// outerConfig is the envelope viper unmarshals into: a free-form "def"
// block whose shape depends on "kind".
type outerConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// fileConfig is the concrete shape of the "def" block for kind: pipeline.
// viper lower-cases every key it reads, so the yaml tags are lower-case.
type fileConfig struct {
	Q             uint8  `yaml:"q"`
	MaxSteps      uint64 `yaml:"maxsteps"`
	BatchSize     int    `yaml:"batchsize"`
	Workers       int    `yaml:"workers"`
	StatsEvery    string `yaml:"statsevery"`
	DashboardHost string `yaml:"dashboardhost"`
	DashboardPort string `yaml:"dashboardport"`
	Deadline      string `yaml:"deadline"`
}

// Config is the resolved, typed pipeline configuration: Q, MAX_STEPS,
// batch size B, worker count W, plus the dashboard's listen address.
type Config struct {
	Q             uint8
	MaxSteps      uint64
	BatchSize     int
	Workers       int
	StatsEvery    time.Duration
	DashboardHost string
	DashboardPort string
	// Deadline is the overall run duration, zero meaning unbounded.
	Deadline time.Duration
}

// Default returns the configuration used when no file and no flags
// override anything: a small Q=2 search with one worker per core.
func Default() Config {
	return Config{
		Q:             2,
		MaxSteps:      100_000,
		BatchSize:     100,
		Workers:       runtime.NumCPU(),
		StatsEvery:    time.Second,
		DashboardHost: "",
		DashboardPort: "8080",
	}
}

// FromYaml reads a pipeline configuration file in a viper-envelope-then-
// yaml.v3 shape, returning a Default() baseline overlaid with whatever
// the file sets. Callers typically fall back to Default() on error
// (e.g. a missing file) rather than treating it as fatal.
func FromYaml(path string) (Config, error) {
	cfg := Default()

	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return cfg, err
	}

	outer := &outerConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return cfg, err
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return cfg, err
	}

	file := fileConfig{}
	if err := yaml.Unmarshal(spec, &file); err != nil {
		return cfg, err
	}

	applyFile(&cfg, file)
	return cfg, nil
}

func applyFile(cfg *Config, file fileConfig) {
	if file.Q != 0 {
		cfg.Q = file.Q
	}
	if file.MaxSteps != 0 {
		cfg.MaxSteps = file.MaxSteps
	}
	if file.BatchSize != 0 {
		cfg.BatchSize = file.BatchSize
	}
	if file.Workers != 0 {
		cfg.Workers = file.Workers
	}
	if file.StatsEvery != "" {
		if d, err := time.ParseDuration(file.StatsEvery); err == nil {
			cfg.StatsEvery = d
		}
	}
	if file.DashboardHost != "" {
		cfg.DashboardHost = file.DashboardHost
	}
	if file.DashboardPort != "" {
		cfg.DashboardPort = file.DashboardPort
	}
	if file.Deadline != "" {
		if d, err := time.ParseDuration(file.Deadline); err == nil {
			cfg.Deadline = d
		}
	}
}

// ParseFlags overrides cfg's fields with any flags explicitly passed in
// args.
func ParseFlags(cfg Config, args []string) (Config, error) {
	fs := flag.NewFlagSet("busybeaver", flag.ContinueOnError)

	q := fs.Int("q", int(cfg.Q), "number of logical states Q")
	maxSteps := fs.Uint64("maxSteps", cfg.MaxSteps, "per-machine step budget")
	batchSize := fs.Int("batchSize", cfg.BatchSize, "enumerator batch size")
	workers := fs.Int("workers", cfg.Workers, "simulator worker count")
	host := fs.String("host", cfg.DashboardHost, "dashboard listen host")
	port := fs.String("port", cfg.DashboardPort, "dashboard listen port")
	deadline := fs.Duration("deadline", cfg.Deadline, "overall run duration, 0 for unbounded")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	cfg.Q = uint8(*q)
	cfg.MaxSteps = *maxSteps
	cfg.BatchSize = *batchSize
	cfg.Workers = *workers
	cfg.DashboardHost = *host
	cfg.DashboardPort = *port
	cfg.Deadline = *deadline
	return cfg, nil
}

// Addr is the dashboard's listen address, host:port.
func (c Config) Addr() string {
	return c.DashboardHost + ":" + c.DashboardPort
}

// WithDeadline returns ctx bounded by c.Deadline, or ctx unchanged if no
// deadline was configured. The caller owns cancellation either way.
func (c Config) WithDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Deadline <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.Deadline)
}
