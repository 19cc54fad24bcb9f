package cli

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	tarerrors "github.com/matzehuels/tarper/pkg/errors"
	"github.com/matzehuels/tarper/pkg/pipeline"
)

// configFile is the file name looked up in the config directory.
const configFile = "config.toml"

// Config mirrors config.toml. Every field is optional; command-line flags
// override the file.
//
//	[search]
//	strategy = "mcts"
//	scheme = "zst"
//	iterations = 5000
//	seed = 7
//
//	[cache]
//	ttl = "72h"
//	redis_url = "redis://localhost:6379/0"
//
//	[metrics]
//	addr = ":9090"
type Config struct {
	Search  SearchConfig  `toml:"search"`
	Cache   CacheConfig   `toml:"cache"`
	Metrics MetricsConfig `toml:"metrics"`
}

// SearchConfig holds defaults for run and compare.
type SearchConfig struct {
	Strategy           string   `toml:"strategy"`
	Scheme             string   `toml:"scheme"`
	Seed               *uint64  `toml:"seed"`
	Iterations         int      `toml:"iterations"`
	ExplorationRatio   float64  `toml:"exploration_ratio"`
	PruneCount         int      `toml:"prune_count"`
	PruneInterval      int      `toml:"prune_interval"`
	InitSamples        int      `toml:"init_samples"`
	InitSwaps          int      `toml:"init_swaps"`
	Mutate             bool     `toml:"mutate"`
	Candidates         int      `toml:"candidates"`
	RestartProbability *float64 `toml:"restart_probability"`
	Binsort            string   `toml:"binsort"`
}

// CacheConfig selects and tunes the cost cache backend.
type CacheConfig struct {
	Disabled    bool     `toml:"disabled"`
	Dir         string   `toml:"dir"`
	TTL         duration `toml:"ttl"`
	Namespace   string   `toml:"namespace"`
	RedisURL    string   `toml:"redis_url"`
	RedisPrefix string   `toml:"redis_prefix"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes TOML strings such as "36h" into a time.Duration.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func defaultConfig() *Config {
	return &Config{}
}

// loadConfig reads the config file at path. An empty path falls back to the
// XDG location, where a missing file is not an error. It returns the path
// actually read, or "" when no file was used.
func loadConfig(path string) (*Config, string, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return defaultConfig(), "", nil
		}
		path = filepath.Join(dir, configFile)
	}

	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return defaultConfig(), "", nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", tarerrors.Wrap(tarerrors.ErrCodeNotFound, err, "config file %s", path)
		}
		return nil, "", tarerrors.Wrap(tarerrors.ErrCodeInvalidConfig, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, "", tarerrors.New(tarerrors.ErrCodeInvalidConfig,
			"config file %s: unknown key %s", path, undecoded[0])
	}
	if cfg.Cache.TTL.Duration < 0 {
		return nil, "", tarerrors.New(tarerrors.ErrCodeInvalidConfig,
			"config file %s: cache ttl must not be negative", path)
	}
	return cfg, path, nil
}

// apply copies the file's settings into opts. Fields already set on opts
// (from flags) are left alone.
func (cfg *Config) apply(opts *pipeline.Options) {
	s := cfg.Search
	setString(&opts.Strategy, s.Strategy)
	setString(&opts.Scheme, s.Scheme)
	setString(&opts.Binsort, s.Binsort)
	if opts.Seed == nil {
		opts.Seed = s.Seed
	}
	setInt(&opts.Iterations, s.Iterations)
	setInt(&opts.PruneCount, s.PruneCount)
	setInt(&opts.PruneInterval, s.PruneInterval)
	setInt(&opts.InitSamples, s.InitSamples)
	setInt(&opts.InitSwaps, s.InitSwaps)
	setInt(&opts.Candidates, s.Candidates)
	setFloat(&opts.ExplorationRatio, s.ExplorationRatio)
	if opts.RestartProbability == nil {
		opts.RestartProbability = s.RestartProbability
	}
	opts.Mutate = opts.Mutate || s.Mutate
	if opts.CacheTTL == 0 {
		opts.CacheTTL = cfg.Cache.TTL.Duration
	}
}

func setString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if *dst == 0 {
		*dst = v
	}
}
