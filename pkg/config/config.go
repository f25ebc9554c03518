// Package config loads the obvious configuration file.
//
// Configuration is TOML. Every key is optional; missing keys keep the
// values from [Default]. Environment variables override the file:
//
//	OBVIOUS_BACKEND     backend tag (memory, append-only, ...)
//	OBVIOUS_STORE       snapshot store kind (none, file, redis)
//	OBVIOUS_REDIS_ADDR  redis address for the redis store
//
// A complete file:
//
//	backend = "memory"
//
//	[table]
//	can_add_row = true
//	can_remove_row = true
//
//	[network]
//	source_column = "source"
//	target_column = "target"
//	node_key = "id"
//	directed = true
//
//	[log]
//	level = "info"
//
//	[store]
//	kind = "file"
//	dir = "/var/cache/obvious"
//	ttl = "24h"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
)

// FileName is the configuration file looked up by [DefaultPath].
const FileName = "obvious.toml"

// Environment variables read by [Config.FromEnv].
const (
	EnvBackend   = "OBVIOUS_BACKEND"
	EnvStore     = "OBVIOUS_STORE"
	EnvRedisAddr = "OBVIOUS_REDIS_ADDR"
)

// Snapshot store kinds.
const (
	StoreNone  = "none"
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config is the parsed configuration file.
type Config struct {
	Backend string        `toml:"backend"`
	Table   TableConfig   `toml:"table"`
	Network NetworkConfig `toml:"network"`
	Log     LogConfig     `toml:"log"`
	Store   StoreConfig   `toml:"store"`
}

// TableConfig holds table capability overrides. Nil fields keep the
// backend's defaults.
type TableConfig struct {
	CanAddRow    *bool `toml:"can_add_row"`
	CanRemoveRow *bool `toml:"can_remove_row"`
}

// NetworkConfig holds the default network layout.
type NetworkConfig struct {
	SourceColumn string `toml:"source_column"`
	TargetColumn string `toml:"target_column"`
	NodeKey      string `toml:"node_key"`
	Directed     bool   `toml:"directed"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// StoreConfig selects where snapshots are kept.
type StoreConfig struct {
	Kind      string   `toml:"kind"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a string ("90s", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: "memory",
		Network: NetworkConfig{
			SourceColumn: "source",
			TargetColumn: "target",
			Directed:     true,
		},
		Log: LogConfig{Level: "info"},
		Store: StoreConfig{
			Kind:      StoreFile,
			Dir:       defaultStoreDir(),
			RedisAddr: "localhost:6379",
			TTL:       Duration{7 * 24 * time.Hour},
		},
	}
}

// DefaultPath returns the user-level configuration file path, or "" when
// the config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "obvious", FileName)
}

// Load reads path over [Default]. A missing file is not an error when path
// is empty or the default path; an explicitly named missing file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !explicit && os.IsNotExist(err) {
				return cfg, nil
			}
			return nil, oerrors.Wrap(oerrors.ErrCodeConfiguration, err, "load %s", path)
		}
	}
	return cfg, nil
}

// Parse decodes TOML text over [Default].
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, oerrors.Wrap(oerrors.ErrCodeConfiguration, err, "parse config")
	}
	return cfg, nil
}

// FromEnv applies environment overrides using lookup, which is normally
// os.LookupEnv.
func (c *Config) FromEnv(lookup func(string) (string, bool)) *Config {
	if v, ok := lookup(EnvBackend); ok && v != "" {
		c.Backend = v
	}
	if v, ok := lookup(EnvStore); ok && v != "" {
		c.Store.Kind = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Store.RedisAddr = v
	}
	return c
}

// Validate checks the configuration for values no component accepts.
func (c *Config) Validate() error {
	if c == nil {
		return oerrors.New(oerrors.ErrCodeConfiguration, "no configuration")
	}
	if err := oerrors.ValidateBackendName(c.Backend); err != nil {
		return oerrors.Wrap(oerrors.ErrCodeConfiguration, err, "backend")
	}
	if c.Network.SourceColumn != "" && c.Network.SourceColumn == c.Network.TargetColumn {
		return oerrors.New(oerrors.ErrCodeConfiguration, "network source and target columns are both %q", c.Network.SourceColumn)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Store.Kind {
	case StoreNone:
	case StoreFile:
		if c.Store.Dir == "" {
			return oerrors.New(oerrors.ErrCodeConfiguration, "file store needs a directory")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return oerrors.New(oerrors.ErrCodeConfiguration, "redis store needs an address")
		}
		if c.Store.RedisDB < 0 {
			return oerrors.New(oerrors.ErrCodeConfiguration, "redis db %d is negative", c.Store.RedisDB)
		}
	default:
		return oerrors.New(oerrors.ErrCodeConfiguration, "unknown store kind %q", c.Store.Kind)
	}
	if c.Store.TTL.Duration < 0 {
		return oerrors.New(oerrors.ErrCodeConfiguration, "store ttl is negative")
	}
	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, oerrors.Wrap(oerrors.ErrCodeConfiguration, err, "log level")
	}
	return lvl, nil
}

func defaultStoreDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "obvious", "snapshots")
}
