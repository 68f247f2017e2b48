package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefault(t *testing.T) {
	Convey("Default returns a sane Q=2 baseline", t, func() {
		cfg := Default()
		So(cfg.Q, ShouldEqual, uint8(2))
		So(cfg.BatchSize, ShouldBeGreaterThan, 0)
		So(cfg.Workers, ShouldBeGreaterThan, 0)
	})
}

func TestFromYaml(t *testing.T) {
	Convey("Given a YAML file in the kind/def envelope shape", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "busybeaver.yaml")
		contents := `
kind: pipeline
def:
  q: 3
  maxSteps: 5000
  batchSize: 50
  workers: 2
  statsEvery: 500ms
  dashboardHost: "127.0.0.1"
  dashboardPort: "9090"
  deadline: 2h
`
		So(os.WriteFile(path, []byte(contents), 0o644), ShouldBeNil)

		Convey("FromYaml decodes the def block into a Config", func() {
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)
			So(cfg.Q, ShouldEqual, uint8(3))
			So(cfg.MaxSteps, ShouldEqual, uint64(5000))
			So(cfg.BatchSize, ShouldEqual, 50)
			So(cfg.Workers, ShouldEqual, 2)
			So(cfg.StatsEvery, ShouldEqual, 500*time.Millisecond)
			So(cfg.Addr(), ShouldEqual, "127.0.0.1:9090")
			So(cfg.Deadline, ShouldEqual, 2*time.Hour)
		})
	})

	Convey("Given a nonexistent file", t, func() {
		Convey("FromYaml returns an error and the Default baseline", func() {
			cfg, err := FromYaml("/nonexistent/busybeaver.yaml")
			So(err, ShouldNotBeNil)
			So(cfg.Q, ShouldEqual, Default().Q)
		})
	})
}

func TestParseFlagsOverridesDefaults(t *testing.T) {
	Convey("Given a base config and explicit flag overrides", t, func() {
		base := Default()

		Convey("ParseFlags applies the overrides", func() {
			cfg, err := ParseFlags(base, []string{"-q", "5", "-workers", "8"})
			So(err, ShouldBeNil)
			So(cfg.Q, ShouldEqual, uint8(5))
			So(cfg.Workers, ShouldEqual, 8)
			So(cfg.MaxSteps, ShouldEqual, base.MaxSteps)
		})
	})
}

func TestWithDeadline(t *testing.T) {
	Convey("Given a config with no deadline", t, func() {
		cfg := Default()

		Convey("WithDeadline returns the parent context unchanged", func() {
			ctx, cancel := cfg.WithDeadline(context.Background())
			defer cancel()
			_, hasDeadline := ctx.Deadline()
			So(hasDeadline, ShouldBeFalse)
		})
	})

	Convey("Given a config with a deadline set", t, func() {
		cfg := Default()
		cfg.Deadline = time.Minute

		Convey("WithDeadline bounds the returned context", func() {
			ctx, cancel := cfg.WithDeadline(context.Background())
			defer cancel()
			_, hasDeadline := ctx.Deadline()
			So(hasDeadline, ShouldBeTrue)
		})
	})
}
