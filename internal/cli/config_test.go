package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tarper/pkg/errors"
	"github.com/matzehuels/tarper/pkg/pipeline"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[search]
strategy = "hillclimb"
scheme = "zst"
iterations = 250
seed = 7
mutate = true

[cache]
ttl = "36h"
namespace = "ci"

[metrics]
addr = ":9999"
`)
	cfg, used, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if used != path {
		t.Errorf("used path = %q, want %q", used, path)
	}
	if cfg.Search.Strategy != "hillclimb" || cfg.Search.Scheme != "zst" {
		t.Errorf("search section = %+v", cfg.Search)
	}
	if cfg.Search.Iterations != 250 || cfg.Search.Seed == nil || *cfg.Search.Seed != 7 || !cfg.Search.Mutate {
		t.Errorf("search section = %+v", cfg.Search)
	}
	if cfg.Cache.TTL.Duration != 36*time.Hour {
		t.Errorf("cache ttl = %s, want 36h", cfg.Cache.TTL.Duration)
	}
	if cfg.Cache.Namespace != "ci" {
		t.Errorf("cache namespace = %q", cfg.Cache.Namespace)
	}
	if cfg.Metrics.Addr != ":9999" {
		t.Errorf("metrics addr = %q", cfg.Metrics.Addr)
	}
}

func TestLoadConfigMissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, used, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if used != "" {
		t.Errorf("used path = %q, want none", used)
	}
	if cfg.Search.Strategy != "" {
		t.Errorf("expected an empty config, got %+v", cfg)
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "tarper")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[search]\nstrategy = \"size\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, used, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if used != filepath.Join(dir, "config.toml") {
		t.Errorf("used path = %q", used)
	}
	if cfg.Search.Strategy != "size" {
		t.Errorf("strategy = %q, want size", cfg.Search.Strategy)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"explicit missing", filepath.Join(t.TempDir(), "nope.toml"), errors.ErrCodeNotFound},
		{"syntax", writeConfig(t, "[search\n"), errors.ErrCodeInvalidConfig},
		{"unknown key", writeConfig(t, "[search]\nstrategee = \"mcts\"\n"), errors.ErrCodeInvalidConfig},
		{"bad duration", writeConfig(t, "[cache]\nttl = \"soon\"\n"), errors.ErrCodeInvalidConfig},
		{"negative ttl", writeConfig(t, "[cache]\nttl = \"-1h\"\n"), errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := loadConfig(tt.path)
			if !errors.Is(err, tt.code) {
				t.Errorf("loadConfig() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestConfigApplyFlagsWin(t *testing.T) {
	seed := uint64(9)
	cfg := &Config{
		Search: SearchConfig{Strategy: "hillclimb", Scheme: "zst", Iterations: 100, Seed: &seed, Candidates: 8},
		Cache:  CacheConfig{TTL: duration{time.Hour}},
	}
	opts := pipeline.Options{Strategy: "mcts", Iterations: 50}
	cfg.apply(&opts)

	if opts.Strategy != "mcts" {
		t.Errorf("flag strategy overridden: %q", opts.Strategy)
	}
	if opts.Iterations != 50 {
		t.Errorf("flag iterations overridden: %d", opts.Iterations)
	}
	if opts.Scheme != "zst" || opts.Seed == nil || *opts.Seed != 9 || opts.Candidates != 8 {
		t.Errorf("file values not applied: %+v", opts)
	}
	if opts.CacheTTL != time.Hour {
		t.Errorf("cache ttl = %s, want 1h", opts.CacheTTL)
	}
}

func TestRunFlagsExplicitZero(t *testing.T) {
	c := New(io.Discard, LogInfo)
	seed, restart := uint64(9), 0.3
	c.Config.Search.Seed = &seed
	c.Config.Search.RestartProbability = &restart

	parse := func(args ...string) pipeline.Options {
		t.Helper()
		var f runFlags
		cmd := &cobra.Command{Use: "run"}
		f.register(cmd)
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("ParseFlags(%v) error: %v", args, err)
		}
		return f.options(c, "src")
	}

	opts := parse("--seed", "0", "--restart-probability", "0")
	if opts.Seed == nil || *opts.Seed != 0 {
		t.Errorf("explicit --seed 0 lost: %v", opts.Seed)
	}
	if opts.RestartProbability == nil || *opts.RestartProbability != 0 {
		t.Errorf("explicit --restart-probability 0 lost: %v", opts.RestartProbability)
	}

	opts = parse()
	if opts.Seed == nil || *opts.Seed != 9 {
		t.Errorf("config seed not applied: %v", opts.Seed)
	}
	if opts.RestartProbability == nil || *opts.RestartProbability != 0.3 {
		t.Errorf("config restart probability not applied: %v", opts.RestartProbability)
	}
}
