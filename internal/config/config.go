// Package config resolves the trc home directory and user settings.
//
// Settings come from three layers, strongest first: TRC_* environment
// variables, ~/.trace/config.yaml, and built-in defaults. Per-project
// overrides live in .trace/config.toml next to the log.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultLockTimeout = 5 * time.Second
	DefaultPriority    = 2

	homeDirName  = ".trace"
	dbFileName   = "trace.db"
	lockFileName = ".lock"
	logFileName  = "trace.log"
)

// Config is the resolved user configuration.
type Config struct {
	// Home is the per-user state directory, ~/.trace unless overridden.
	Home string

	// LockTimeout bounds how long commands wait for the advisory lock.
	LockTimeout time.Duration

	// DefaultPriority applies to issues created without --priority.
	DefaultPriority int

	// Verbose mirrors the config-file setting; the --verbose flag wins.
	Verbose bool
}

// Load reads the user configuration. A missing config file is not an error;
// a malformed one is.
func Load() (*Config, error) {
	home, err := Home()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("lock_timeout", DefaultLockTimeout)
	v.SetDefault("default_priority", DefaultPriority)
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("TRC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(home)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", filepath.Join(home, "config.yaml"), err)
		}
	}

	cfg := &Config{
		Home:            home,
		LockTimeout:     v.GetDuration("lock_timeout"),
		DefaultPriority: v.GetInt("default_priority"),
		Verbose:         v.GetBool("verbose"),
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	return cfg, nil
}

// Home returns the per-user state directory, creating it if needed.
// TRC_HOME overrides the default ~/.trace.
func Home() (string, error) {
	dir := os.Getenv("TRC_HOME")
	if dir == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(userHome, homeDirName)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", dir, err)
	}
	return dir, nil
}

// DBPath returns the cache database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.Home, dbFileName)
}

// LockPath returns the advisory lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Home, lockFileName)
}

// DebugLogPath returns the rotated debug log location.
func (c *Config) DebugLogPath() string {
	return filepath.Join(c.Home, logFileName)
}
