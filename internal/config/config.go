package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// FileName is the config file looked up from the working directory upward.
const FileName = ".proposals.toml"

const (
	// OnCorruptDiscard replaces an unparsable store with a fresh collection.
	OnCorruptDiscard = "discard"
	// OnCorruptFail refuses to touch an unparsable store.
	OnCorruptFail = "fail"
)

// Config captures the user editable settings stored in .proposals.toml.
type Config struct {
	Store       string `toml:"store" env:"PROPOSALS_STORE"`
	OnCorrupt   string `toml:"on_corrupt" env:"PROPOSALS_ON_CORRUPT"`
	LockTimeout string `toml:"lock_timeout" env:"PROPOSALS_LOCK_TIMEOUT"`

	// Dir is the directory relative store paths resolve against.
	Dir string `toml:"-"`
}

var (
	// ErrMissingStore indicates the config names no backing file.
	ErrMissingStore = errors.New("config.store must be set")
	// ErrInvalidOnCorrupt indicates the corruption policy is not recognized.
	ErrInvalidOnCorrupt = errors.New("config.on_corrupt must be discard or fail")
	// ErrInvalidLockTimeout indicates lock_timeout is not a positive duration.
	ErrInvalidLockTimeout = errors.New("config.lock_timeout must be a positive duration such as 5s")
)

// Default returns the baseline configuration rooted at dir.
func Default(dir string) Config {
	cfg := Config{Dir: dir}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Store == "" {
		c.Store = "proposals.json"
	}
	if c.OnCorrupt == "" {
		c.OnCorrupt = OnCorruptDiscard
	} else {
		c.OnCorrupt = strings.ToLower(c.OnCorrupt)
	}
	if c.LockTimeout == "" {
		c.LockTimeout = "5s"
	}
}

// Validate ensures the configuration can drive the store.
func (c Config) Validate() error {
	if c.Store == "" {
		return ErrMissingStore
	}
	switch c.OnCorrupt {
	case OnCorruptDiscard, OnCorruptFail:
	default:
		return ErrInvalidOnCorrupt
	}
	if _, err := c.LockTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// LockTimeoutDuration parses lock_timeout.
func (c Config) LockTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.LockTimeout)
	if err != nil || d <= 0 {
		return 0, ErrInvalidLockTimeout
	}
	return d, nil
}

// StorePath resolves the backing file against the config directory.
func (c Config) StorePath() string {
	if filepath.IsAbs(c.Store) || c.Dir == "" {
		return c.Store
	}
	return filepath.Join(c.Dir, c.Store)
}

// Load reads configuration from disk. A missing file yields the defaults
// for the file's directory. Environment overrides are applied either way.
func Load(path string) (Config, error) {
	cfg := Config{Dir: filepath.Dir(path)}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, err
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Discover walks upward from start looking for FileName and loads it. When
// none exists the defaults are rooted at start.
func Discover(start string) (Config, string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return Config{}, "", err
	}
	path, ok := locate(dir)
	if !ok {
		path = filepath.Join(dir, FileName)
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

func locate(cur string) (string, bool) {
	for {
		candidate := filepath.Join(cur, FileName)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, true
		}
		next := filepath.Dir(cur)
		if next == cur {
			return "", false
		}
		cur = next
	}
}

// Save writes configuration to disk, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
