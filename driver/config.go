// SPDX-License-Identifier: MIT

package driver

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the launch settings that may come from a file or flags.
//
// Mode is chosen by the networked fields: Listen set makes this process the
// coordinator of a Size-rank group; Coordinator set makes it rank Rank of
// that group; neither runs NP ranks in-process.
type Config struct {
	NP          int    `toml:"np" yaml:"np"`
	Seed        int64  `toml:"seed" yaml:"seed"`
	MaxValue    int    `toml:"max_value" yaml:"max_value"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	Listen      string `toml:"listen" yaml:"listen"`
	Coordinator string `toml:"coordinator" yaml:"coordinator"`
	Size        int    `toml:"size" yaml:"size"`
	Rank        int    `toml:"rank" yaml:"rank"`
}

// DefaultConfig returns a single in-process rank with entries in [0,10).
func DefaultConfig() Config {
	return Config{
		NP:       1,
		MaxValue: DefaultMaxValue,
		LogLevel: "info",
	}
}

// LoadConfig reads a TOML (.toml) or YAML (.yaml, .yml) file on top of
// DefaultConfig. Keys absent from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("LoadConfig: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("LoadConfig(%s): %w: %q", path, ErrConfigFormat, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("LoadConfig(%s): %w", path, err)
	}

	return cfg, nil
}

// Networked reports whether the config describes one rank of a networked group.
func (c Config) Networked() bool { return c.Listen != "" || c.Coordinator != "" }

// Validate checks the ranges Execute relies on.
func (c Config) Validate() error {
	switch {
	case c.MaxValue <= 0:
		return fmt.Errorf("%w: max_value %d must be > 0", ErrInvalidConfig, c.MaxValue)
	case c.Listen != "" && c.Coordinator != "":
		return fmt.Errorf("%w: listen and coordinator are mutually exclusive", ErrInvalidConfig)
	case c.Networked() && c.Size < 1:
		return fmt.Errorf("%w: size %d must be > 0 for a networked group", ErrInvalidConfig, c.Size)
	case !c.Networked() && c.NP < 1:
		return fmt.Errorf("%w: np %d must be > 0", ErrInvalidConfig, c.NP)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// ParseLevel maps a level name ("debug", "info", "warn", "error", any case)
// to a slog.Level. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}

	return l, nil
}

// NewLogger returns a text logger on w at the named level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}
