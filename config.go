package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"vecsketch/internal/editor"
	"vecsketch/internal/history"
	"vecsketch/internal/shape"
)

const configFileName = ".vecsketchrc.toml"

type Config struct {
	SaveDirectory  string   `toml:"save_directory"`
	Confirmations  bool     `toml:"confirmations"`
	Snap           bool     `toml:"snap"`
	ShowGrid       bool     `toml:"show_grid"`
	GridSize       float64  `toml:"grid_size"`
	SmoothFreehand bool     `toml:"smooth_freehand"`
	HoldDelay      duration `toml:"hold_delay"`
	UndoDepth      int      `toml:"undo_depth"`
	StrokeColor    string   `toml:"stroke_color"`
	Palette        []string `toml:"palette"`
	ExportScale    float64  `toml:"export_scale"`
	LogFile        string   `toml:"log_file"`
	LogLevel       string   `toml:"log_level"`
}

// duration decodes TOML strings such as "300ms".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func defaultConfig() *Config {
	return &Config{
		Confirmations:  true,
		Snap:           true,
		GridSize:       0,
		SmoothFreehand: true,
		HoldDelay:      duration{300 * time.Millisecond},
		UndoDepth:      history.DefaultMaxDepth,
		StrokeColor:    "#000000",
		Palette:        []string{"#000000", "#e03131", "#2f9e44", "#1971c2", "#f08c00", "#9c36b5"},
		ExportScale:    2,
		LogLevel:       "info",
	}
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// loadConfig reads the rc file at path over the defaults. A missing file is
// not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return defaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	if config.SaveDirectory, err = expandPath(config.SaveDirectory); err != nil {
		return config, err
	}
	if config.LogFile, err = expandPath(config.LogFile); err != nil {
		return config, err
	}
	if _, err := parseColor(config.StrokeColor); err != nil {
		return config, fmt.Errorf("stroke_color: %w", err)
	}
	for _, hex := range config.Palette {
		if _, err := parseColor(hex); err != nil {
			return config, fmt.Errorf("palette: %w", err)
		}
	}
	return config, nil
}

func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if strings.HasPrefix(value, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		value = filepath.Join(home, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		abs, err := filepath.Abs(value)
		if err != nil {
			return "", err
		}
		value = abs
	}
	return value, nil
}

// parseColor converts a #rrggbb string to an opaque shape color.
func parseColor(hex string) (shape.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return shape.ARGB(0xff, r, g, b), nil
}

// palette returns the configured colors, skipping invalid entries.
func (c *Config) palette() []shape.Color {
	var out []shape.Color
	for _, hex := range c.Palette {
		if col, err := parseColor(hex); err == nil {
			out = append(out, col)
		}
	}
	if len(out) == 0 {
		out = append(out, shape.DefaultStyle().Color)
	}
	return out
}

func (c *Config) editorConfig() editor.Config {
	ec := editor.DefaultConfig()
	ec.SnapEnabled = c.Snap
	ec.ShowGrid = c.ShowGrid
	ec.GridSize = c.GridSize
	ec.SmoothFreehand = c.SmoothFreehand
	if c.HoldDelay.Duration > 0 {
		ec.HoldDelay = c.HoldDelay.Duration
	}
	ec.MaxUndoSteps = c.UndoDepth
	return ec
}

// newLogger writes to the configured log file, or discards when none is set.
// The terminal belongs to the UI, so nothing is ever logged to stderr.
func (c *Config) newLogger() (*slog.Logger, io.Closer, error) {
	if c.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
