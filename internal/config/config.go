package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"redlight_tui/internal/round"
	"redlight_tui/internal/timer"
)

type Config struct {
	Game         GameConfig    `yaml:"game"`
	Input        InputConfig   `yaml:"input"`
	Sound        SoundConfig   `yaml:"sound"`
	Storage      StorageConfig `yaml:"storage"`
	Stats        StatsConfig   `yaml:"stats"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

type RangeConfig struct {
	Min  time.Duration `yaml:"min"`
	Max  time.Duration `yaml:"max"`
	Step time.Duration `yaml:"step,omitempty"`
}

type GameConfig struct {
	GreenDuration      RangeConfig   `yaml:"green_duration"`
	RedDuration        RangeConfig   `yaml:"red_duration"`
	RoundDuration      RangeConfig   `yaml:"round_duration"`
	MovementThreshold  float64       `yaml:"movement_threshold"`
	VolumeCeiling      float64       `yaml:"volume_ceiling"`
	TransitionGrace    time.Duration `yaml:"transition_grace"`
	StartPosition      float64       `yaml:"start_position"`
	FinishLinePosition float64       `yaml:"finish_line_position"`
	BaseSpeed          float64       `yaml:"base_speed"`
	MaxSpeedBonus      float64       `yaml:"max_speed_bonus"`
	RawExpiry          bool          `yaml:"raw_expiry"`
}

// InputConfig shapes the keyboard stand-in for the microphone.
type InputConfig struct {
	ShoutLevel float64       `yaml:"shout_level"`
	Hold       time.Duration `yaml:"hold"`
	PitchHz    float64       `yaml:"pitch_hz"`
}

type SoundConfig struct {
	Enabled    bool `yaml:"enabled"`
	SampleRate int  `yaml:"sample_rate"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type StatsConfig struct {
	Addr string `yaml:"addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Game: GameConfig{
			GreenDuration:      RangeConfig{Min: 2 * time.Second, Max: 5 * time.Second, Step: time.Second},
			RedDuration:        RangeConfig{Min: time.Second, Max: 3 * time.Second, Step: time.Second},
			RoundDuration:      RangeConfig{Min: 50 * time.Second, Max: 61 * time.Second, Step: time.Second},
			MovementThreshold:  0.01,
			VolumeCeiling:      0.2,
			TransitionGrace:    500 * time.Millisecond,
			StartPosition:      55,
			FinishLinePosition: 660,
			BaseSpeed:          15,
			MaxSpeedBonus:      7.5,
		},
		Input: InputConfig{
			ShoutLevel: 0.15,
			Hold:       250 * time.Millisecond,
			PitchHz:    240,
		},
		Sound: SoundConfig{
			Enabled:    true,
			SampleRate: 44100,
		},
		Storage: StorageConfig{
			Path: "redlight.db",
		},
		TickInterval: 33 * time.Millisecond,
	}
}

func (r RangeConfig) durationRange() timer.DurationRange {
	return timer.DurationRange{Min: r.Min, Max: r.Max, Step: r.Step}
}

// Round translates the game section into controller configuration.
func (c *Config) Round() round.Config {
	g := c.Game
	return round.Config{
		Timer: timer.Config{
			Green:     g.GreenDuration.durationRange(),
			Red:       g.RedDuration.durationRange(),
			Round:     g.RoundDuration.durationRange(),
			RawExpiry: g.RawExpiry,
		},
		MovementThreshold:  g.MovementThreshold,
		VolumeCeiling:      g.VolumeCeiling,
		TransitionGrace:    g.TransitionGrace,
		StartPosition:      g.StartPosition,
		FinishLinePosition: g.FinishLinePosition,
		BaseSpeed:          g.BaseSpeed,
		MaxSpeedBonus:      g.MaxSpeedBonus,
	}
}

func (c *Config) Validate() error {
	if err := c.Round().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.Input.ShoutLevel < 0 || c.Input.Hold <= 0 {
		return fmt.Errorf("input: shout_level must be >= 0 and hold positive")
	}
	if c.Sound.Enabled && c.Sound.SampleRate <= 0 {
		return fmt.Errorf("sound: sample_rate must be positive, got %d", c.Sound.SampleRate)
	}
	return nil
}

// Manager owns the on-disk configuration file.
type Manager struct {
	config     *Config
	configPath string
}

// NewManager loads path, writing the defaults there when it does not exist yet.
func NewManager(path string) (*Manager, error) {
	m := &Manager{configPath: path}

	err := m.loadConfig()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		m.config = DefaultConfig()
		if err := m.SaveConfig(); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	m.applyEnv()
	if err := m.config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return err
	}

	m.config = config
	return nil
}

func (m *Manager) SaveConfig() error {
	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(m.configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(m.configPath, data, 0644)
}

// LoadDotEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is fine.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// applyEnv lets REDLIGHT_DB and REDLIGHT_STATS_ADDR override the file.
func (m *Manager) applyEnv() {
	if v := os.Getenv("REDLIGHT_DB"); v != "" {
		m.config.Storage.Path = v
	}
	if v := os.Getenv("REDLIGHT_STATS_ADDR"); v != "" {
		m.config.Stats.Addr = v
	}
}

func (m *Manager) GetConfig() *Config {
	return m.config
}

func (m *Manager) Path() string {
	return m.configPath
}
