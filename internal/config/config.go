package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tempo/pkg/motion"
	"github.com/san-kum/tempo/pkg/ticker"
)

const (
	DefaultFPS       = 60
	DefaultSampleFPS = 60.0
	DefaultMaxSample = 30.0
	DefaultTheme     = "ocean"
	DefaultHistory   = 240
)

type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Ticker TickerConfig `yaml:"ticker"`
	Player PlayerConfig `yaml:"player"`
}

// EngineConfig mirrors motion.Config.
type EngineConfig struct {
	Precision        float64 `yaml:"precision"`
	Tiny             float64 `yaml:"tiny"`
	InfiniteDuration float64 `yaml:"infinite_duration"`
	DefaultDuration  float64 `yaml:"default_duration"`
	DefaultEase      string  `yaml:"default_ease"`
	AutoSleep        int     `yaml:"auto_sleep"`
	StringPrecision  float64 `yaml:"string_precision"`
	Lazy             bool    `yaml:"lazy"`
}

type TickerConfig struct {
	LagThreshold  time.Duration `yaml:"lag_threshold"`
	AdjustedLag   time.Duration `yaml:"adjusted_lag"`
	FPS           float64       `yaml:"fps"`
	FrameInterval time.Duration `yaml:"frame_interval"`
}

type PlayerConfig struct {
	FPS     int    `yaml:"fps"`
	Theme   string `yaml:"theme"`
	History int    `yaml:"history"`
	// SampleFPS is the rate used by sample, plot and analyze.
	SampleFPS float64 `yaml:"sample_fps"`
	// MaxSample caps the sampled span of infinitely repeating scenes.
	MaxSample float64 `yaml:"max_sample"`
}

func DefaultConfig() *Config {
	mc := motion.DefaultConfig()
	tc := ticker.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			Precision:        mc.Precision,
			Tiny:             mc.Tiny,
			InfiniteDuration: mc.InfiniteDuration,
			DefaultDuration:  mc.DefaultDuration,
			DefaultEase:      mc.DefaultEase,
			AutoSleep:        mc.AutoSleep,
			StringPrecision:  mc.StringPrecision,
			Lazy:             mc.Lazy,
		},
		Ticker: TickerConfig{
			LagThreshold:  tc.LagThreshold,
			AdjustedLag:   tc.AdjustedLag,
			FPS:           tc.FPS,
			FrameInterval: tc.FrameInterval,
		},
		Player: PlayerConfig{
			FPS:       DefaultFPS,
			Theme:     DefaultTheme,
			History:   DefaultHistory,
			SampleFPS: DefaultSampleFPS,
			MaxSample: DefaultMaxSample,
		},
	}
}

// Load reads path over the defaults, so a file only names what it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Engine.Precision <= 0:
		return fmt.Errorf("config: engine.precision must be positive, got %v", c.Engine.Precision)
	case c.Engine.Tiny <= 0:
		return fmt.Errorf("config: engine.tiny must be positive, got %v", c.Engine.Tiny)
	case c.Engine.DefaultDuration < 0:
		return fmt.Errorf("config: engine.default_duration must not be negative, got %v", c.Engine.DefaultDuration)
	case c.Player.FPS <= 0:
		return fmt.Errorf("config: player.fps must be positive, got %d", c.Player.FPS)
	case c.Player.SampleFPS <= 0:
		return fmt.Errorf("config: player.sample_fps must be positive, got %v", c.Player.SampleFPS)
	}
	return nil
}

func (c *Config) MotionConfig() motion.Config {
	return motion.Config{
		Precision:        c.Engine.Precision,
		Tiny:             c.Engine.Tiny,
		InfiniteDuration: c.Engine.InfiniteDuration,
		DefaultDuration:  c.Engine.DefaultDuration,
		DefaultEase:      c.Engine.DefaultEase,
		AutoSleep:        c.Engine.AutoSleep,
		StringPrecision:  c.Engine.StringPrecision,
		Lazy:             c.Engine.Lazy,
	}
}

func (c *Config) TickerConfig() ticker.Config {
	return ticker.Config{
		LagThreshold:  c.Ticker.LagThreshold,
		AdjustedLag:   c.Ticker.AdjustedLag,
		FPS:           c.Ticker.FPS,
		FrameInterval: c.Ticker.FrameInterval,
	}
}
