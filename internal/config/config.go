// Package config loads the YAML configuration file for cookmode.
// The file is the primary tuning surface; flags stay for small
// overrides. Missing file means defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration.
type Config struct {
	Timers TimersConfig `yaml:"timers"`
	Alarm  AlarmConfig  `yaml:"alarm"`
	Voice  VoiceConfig  `yaml:"voice"`
	Feed   FeedConfig   `yaml:"feed"`
}

// TimersConfig tunes the countdown engine and the hub.
type TimersConfig struct {
	// TickMS is the countdown resolution in milliseconds. One tick
	// decrements one tick's worth of remaining time. Default 1000.
	TickMS int `yaml:"tick_ms"`

	// CancelGraceMS is how long a cancelled timer stays visible in the
	// hub before it is removed from the step map. Default 1500.
	CancelGraceMS int `yaml:"cancel_grace_ms"`
}

// AlarmConfig tunes the completion alarm.
type AlarmConfig struct {
	// CeilingSeconds bounds alarm tone playback even when no dismiss
	// ever arrives. Default 30.
	CeilingSeconds int `yaml:"ceiling_seconds"`
}

// VoiceConfig tunes voice input.
type VoiceConfig struct {
	WhisperBin   string `yaml:"whisper_bin"`
	WhisperModel string `yaml:"whisper_model"`
	RecordSecs   int    `yaml:"record_secs"`
}

// FeedConfig configures the optional websocket state feed.
type FeedConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:7465". Empty = off.
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timers: TimersConfig{TickMS: 1000, CancelGraceMS: 1500},
		Alarm:  AlarmConfig{CeilingSeconds: 30},
		Voice:  VoiceConfig{WhisperBin: "whisper-cli", WhisperModel: "bin/ggml-small.bin", RecordSecs: 2},
	}
}

// Load reads the config file at path. A missing file is not an error:
// defaults are returned. A malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Timers.TickMS <= 0 {
		return fmt.Errorf("timers.tick_ms must be positive, got %d", c.Timers.TickMS)
	}
	if c.Timers.CancelGraceMS < 0 {
		return fmt.Errorf("timers.cancel_grace_ms must not be negative, got %d", c.Timers.CancelGraceMS)
	}
	if c.Alarm.CeilingSeconds <= 0 {
		return fmt.Errorf("alarm.ceiling_seconds must be positive, got %d", c.Alarm.CeilingSeconds)
	}
	if c.Voice.RecordSecs <= 0 {
		return fmt.Errorf("voice.record_secs must be positive, got %d", c.Voice.RecordSecs)
	}
	return nil
}

// Tick returns the countdown resolution as a duration.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Timers.TickMS) * time.Millisecond
}

// CancelGrace returns the hub's cancelled-timer display grace period.
func (c *Config) CancelGrace() time.Duration {
	return time.Duration(c.Timers.CancelGraceMS) * time.Millisecond
}

// AlarmCeiling returns the maximum alarm tone playback duration.
func (c *Config) AlarmCeiling() time.Duration {
	return time.Duration(c.Alarm.CeilingSeconds) * time.Second
}
