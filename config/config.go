// Package config loads run settings from a YAML file, a .env file and
// SYNTH_* environment variables, in increasing order of precedence.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SYNTH_"

// Config is the full configuration surface of a generation run.
type Config struct {
	OutputDir     string  `yaml:"outputDir"`
	FontDir       string  `yaml:"fontDir"`
	BackgroundDir string  `yaml:"backgroundDir"`
	NumImages     int     `yaml:"numImages"`
	TrainRatio    float64 `yaml:"trainRatio"`
	Seed          uint64  `yaml:"seed"`
	Workers       int     `yaml:"workers"`
	// Profile is a built-in profile name or a path to a profile file.
	Profile string `yaml:"profile"`
	// VocabularyFile replaces the profile vocabulary, one entry per line.
	VocabularyFile string `yaml:"vocabularyFile"`
	DebugDir       string `yaml:"debugDir"`
	MetricsFile    string `yaml:"metricsFile"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		OutputDir:     ".",
		FontDir:       "fonts",
		BackgroundDir: "backgrounds",
		NumImages:     10,
		TrainRatio:    0.7,
		Seed:          42,
		Workers:       1,
		Profile:       "extended",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the optional YAML file at path, then .env from the working
// directory, then SYNTH_* variables.
func Load(path string) (*Config, error) {
	return LoadWithEnvFile(path, ".env")
}

// LoadWithEnvFile is Load with an explicit .env location. A missing env file
// is not an error.
func LoadWithEnvFile(path, envFile string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.OutputDir = getEnv("OUTPUT_DIR", c.OutputDir)
	c.FontDir = getEnv("FONT_DIR", c.FontDir)
	c.BackgroundDir = getEnv("BACKGROUND_DIR", c.BackgroundDir)
	c.Profile = getEnv("PROFILE", c.Profile)
	c.VocabularyFile = getEnv("VOCABULARY_FILE", c.VocabularyFile)
	c.DebugDir = getEnv("DEBUG_DIR", c.DebugDir)
	c.MetricsFile = getEnv("METRICS_FILE", c.MetricsFile)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	var err error
	if c.NumImages, err = getEnvInt("NUM_IMAGES", c.NumImages); err != nil {
		return err
	}
	if c.Workers, err = getEnvInt("WORKERS", c.Workers); err != nil {
		return err
	}
	if c.TrainRatio, err = getEnvFloat("TRAIN_RATIO", c.TrainRatio); err != nil {
		return err
	}
	if c.Seed, err = getEnvUint("SEED", c.Seed); err != nil {
		return err
	}
	return nil
}

// Validate checks ranges that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch {
	case c.OutputDir == "":
		return errors.New("outputDir must not be empty")
	case c.FontDir == "":
		return errors.New("fontDir must not be empty")
	case c.BackgroundDir == "":
		return errors.New("backgroundDir must not be empty")
	case c.NumImages < 0:
		return fmt.Errorf("numImages must not be negative, got %d", c.NumImages)
	case c.TrainRatio < 0 || c.TrainRatio > 1:
		return fmt.Errorf("trainRatio must be within [0,1], got %g", c.TrainRatio)
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return v, nil
}

func getEnvUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return v, nil
}
