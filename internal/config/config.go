// Package config loads mazebot settings from .mazebot/config.yaml in the
// working directory, with .env and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/example/mazebot/internal/core/classify"
	"github.com/example/mazebot/internal/core/motion"
	"github.com/example/mazebot/internal/core/navigate"
	"github.com/example/mazebot/internal/core/pose"
)

// Version is written by SaveConfig.
const Version = "1"

// Environment overrides, read from the process environment or .env.
const (
	EnvDevice = "MAZEBOT_DEVICE"
	EnvBaud   = "MAZEBOT_BAUD"
	EnvDB     = "MAZEBOT_DB"
)

// Sensor modes.
const (
	SensorColor    = "color"
	SensorDistance = "dist"
)

// Config represents the mazebot configuration
type Config struct {
	Version string `yaml:"version"`

	Grid  GridConfig `yaml:"grid"`
	Start string     `yaml:"start"`          // x,y,H
	Goal  string     `yaml:"goal,omitempty"` // x,y

	Sensor        SensorConfig     `yaml:"sensor"`
	Indeterminate PolicyConfig     `yaml:"indeterminate"`
	Navigation    NavigationConfig `yaml:"navigation"`

	MaxMoveFailures   int     `yaml:"max_move_failures"`
	DriftToleranceDeg float64 `yaml:"drift_tolerance_deg"`

	Calibration motion.Calibration `yaml:"calibration"`
	Serial      SerialConfig       `yaml:"serial"`
	Database    DatabaseConfig     `yaml:"database"`
}

type GridConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// SensorConfig selects the cell sensor and how its readings are classified.
type SensorConfig struct {
	Mode                string   `yaml:"mode"` // color or dist
	ObstacleColors      []string `yaml:"obstacle_colors"`
	TraversableColors   []string `yaml:"traversable_colors"`
	DistanceThresholdMM int      `yaml:"distance_threshold_mm"`
}

type PolicyConfig struct {
	Mode       string `yaml:"mode"` // retry, traversable or obstacle
	MaxRetries int    `yaml:"max_retries"`
}

type NavigationConfig struct {
	TieBreak string `yaml:"tie_break"` // right or random
	Seed     int64  `yaml:"seed"`
	MaxSteps int    `yaml:"max_steps"` // 0 = rows*cols*4
}

type SerialConfig struct {
	Device         string `yaml:"device,omitempty"`
	Baud           int    `yaml:"baud"`
	ReadTimeoutMS  int    `yaml:"read_timeout_ms"`
	ReplyTimeoutMS int    `yaml:"reply_timeout_ms"`
}

type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"` // empty = ~/.mazebot/mazebot.db
}

// Default returns the competition setup: a 4x4 mat with the goal in the far
// corner, BLACK/RED obstacles, WHITE/BROWN floor.
func Default() *Config {
	return &Config{
		Version: Version,
		Grid:    GridConfig{Rows: 4, Cols: 4},
		Start:   "0,0,N",
		Goal:    "3,3",
		Sensor: SensorConfig{
			Mode:                SensorColor,
			ObstacleColors:      []string{"black", "red"},
			TraversableColors:   []string{"white", "brown"},
			DistanceThresholdMM: 150,
		},
		Indeterminate: PolicyConfig{
			Mode:       string(classify.ModeRetry),
			MaxRetries: classify.DefaultMaxRetries,
		},
		Navigation:        NavigationConfig{TieBreak: string(navigate.TieBreakRight)},
		MaxMoveFailures:   3,
		DriftToleranceDeg: 15,
		Calibration:       motion.DefaultCalibration(),
		Serial: SerialConfig{
			Baud:           115200,
			ReadTimeoutMS:  100,
			ReplyTimeoutMS: 500,
		},
	}
}

// Validate checks every field that a run depends on.
func (c *Config) Validate() error {
	if c.Grid.Rows <= 0 || c.Grid.Cols <= 0 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Grid.Cols, c.Grid.Rows)
	}
	start, err := c.StartPose()
	if err != nil {
		return err
	}
	if !inGrid(c.Grid, start.Position) {
		return fmt.Errorf("start %s is outside the %dx%d grid", start.Position, c.Grid.Cols, c.Grid.Rows)
	}
	if c.Goal != "" {
		goal, err := c.GoalPosition()
		if err != nil {
			return err
		}
		if !inGrid(c.Grid, goal) {
			return fmt.Errorf("goal %s is outside the %dx%d grid", goal, c.Grid.Cols, c.Grid.Rows)
		}
	}

	switch c.Sensor.Mode {
	case SensorColor:
		if _, err := c.ColorClassifier(); err != nil {
			return err
		}
	case SensorDistance:
		if c.Sensor.DistanceThresholdMM <= 0 {
			return fmt.Errorf("distance threshold must be positive, got %d", c.Sensor.DistanceThresholdMM)
		}
	default:
		return fmt.Errorf("unknown sensor mode %q (want %s or %s)", c.Sensor.Mode, SensorColor, SensorDistance)
	}

	if err := c.Policy().Validate(); err != nil {
		return err
	}
	if _, err := navigate.ParseTieBreak(c.Navigation.TieBreak); err != nil {
		return err
	}
	if c.Navigation.MaxSteps < 0 {
		return fmt.Errorf("max steps must be >= 0, got %d", c.Navigation.MaxSteps)
	}
	if c.MaxMoveFailures < 0 {
		return fmt.Errorf("max move failures must be >= 0, got %d", c.MaxMoveFailures)
	}
	if c.DriftToleranceDeg < 0 {
		return fmt.Errorf("drift tolerance must be >= 0, got %.1f", c.DriftToleranceDeg)
	}
	if err := c.Calibration.Validate(); err != nil {
		return fmt.Errorf("invalid calibration: %w", err)
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", c.Serial.Baud)
	}
	if c.Serial.ReadTimeoutMS <= 0 {
		return fmt.Errorf("serial read timeout must be positive, got %dms", c.Serial.ReadTimeoutMS)
	}
	if c.Serial.ReplyTimeoutMS <= 0 {
		return fmt.Errorf("serial reply timeout must be positive, got %dms", c.Serial.ReplyTimeoutMS)
	}
	return nil
}

// StartPose parses the configured start.
func (c *Config) StartPose() (pose.Pose, error) {
	p, err := pose.ParsePose(c.Start)
	if err != nil {
		return pose.Pose{}, fmt.Errorf("invalid start: %w", err)
	}
	return p, nil
}

// GoalPosition parses the configured goal.
func (c *Config) GoalPosition() (pose.Position, error) {
	if c.Goal == "" {
		return pose.Position{}, fmt.Errorf("no goal configured")
	}
	p, err := pose.ParsePosition(c.Goal)
	if err != nil {
		return pose.Position{}, fmt.Errorf("invalid goal: %w", err)
	}
	return p, nil
}

// ColorClassifier builds the colour classifier from the configured names.
func (c *Config) ColorClassifier() (*classify.Classifier, error) {
	obstacle, err := parseColors(c.Sensor.ObstacleColors)
	if err != nil {
		return nil, fmt.Errorf("invalid obstacle colours: %w", err)
	}
	traversable, err := parseColors(c.Sensor.TraversableColors)
	if err != nil {
		return nil, fmt.Errorf("invalid traversable colours: %w", err)
	}
	return classify.New(obstacle, traversable)
}

// Policy returns the indeterminate-reading policy.
func (c *Config) Policy() classify.IndeterminatePolicy {
	return classify.IndeterminatePolicy{
		Mode:       classify.PolicyMode(c.Indeterminate.Mode),
		MaxRetries: c.Indeterminate.MaxRetries,
	}
}

func parseColors(names []string) ([]int, error) {
	codes := make([]int, 0, len(names))
	for _, n := range names {
		code, err := classify.ParseColor(n)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func inGrid(g GridConfig, p pose.Position) bool {
	return p.X >= 0 && p.X < g.Cols && p.Y >= 0 && p.Y < g.Rows
}

// LoadConfig reads .mazebot/config.yaml from the specified directory.
// Resolution order: cwd only (no home fallback).
// Fields missing from the file keep their defaults.
func LoadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(configPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Load returns the config for dir with overrides applied. A missing config
// file falls back to Default.
func Load(dir string) (*Config, error) {
	cfg, err := LoadConfig(dir)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	env, err := Overrides(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(env); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes config.yaml to directory
func SaveConfig(dir string, cfg *Config) error {
	mazebotDir := filepath.Join(dir, ".mazebot")
	if err := os.MkdirAll(mazebotDir, 0755); err != nil {
		return fmt.Errorf("failed to create .mazebot dir: %w", err)
	}

	if cfg.Version == "" {
		cfg.Version = Version
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ConfigPath returns where LoadConfig looks in dir.
func ConfigPath(dir string) string {
	return configPath(dir)
}

func configPath(dir string) string {
	return filepath.Join(dir, ".mazebot", "config.yaml")
}

// Overrides collects MAZEBOT_* values from dir/.env and the process
// environment. The process environment wins.
func Overrides(dir string) (map[string]string, error) {
	out := make(map[string]string)

	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	for _, key := range []string{EnvDevice, EnvBaud, EnvDB} {
		if v, ok := dotenv[key]; ok {
			out[key] = v
		}
		if v, ok := os.LookupEnv(key); ok {
			out[key] = v
		}
	}
	return out, nil
}

// ApplyOverrides applies MAZEBOT_* values to the config.
func (c *Config) ApplyOverrides(env map[string]string) error {
	if v := env[EnvDevice]; v != "" {
		c.Serial.Device = v
	}
	if v := env[EnvBaud]; v != "" {
		baud, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", EnvBaud, err)
		}
		c.Serial.Baud = baud
	}
	if v := env[EnvDB]; v != "" {
		c.Database.Path = v
	}
	return nil
}
