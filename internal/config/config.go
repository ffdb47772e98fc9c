// Package config provides configuration management for FileCabinet.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/filecabinet/filecabinet/internal/record"
	"github.com/filecabinet/filecabinet/internal/validate"
)

// Config holds the FileCabinet configuration.
type Config struct {
	// Storage
	DataDir    string `yaml:"data_dir"`
	Storage    string `yaml:"storage"` // memory, file
	FileName   string `yaml:"file_name"`
	SyncWrites bool   `yaml:"sync_writes"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Validation
	Validation ValidationConfig `yaml:"validation"`
}

// ValidationConfig selects a validation profile and optionally overrides
// individual rules of it. Dates use YYYY-MM-DD and weights are decimal strings.
type ValidationConfig struct {
	Profile     string      `yaml:"profile"` // default, custom
	FirstName   *LengthRule `yaml:"first_name,omitempty"`
	LastName    *LengthRule `yaml:"last_name,omitempty"`
	DateOfBirth *DateRule   `yaml:"date_of_birth,omitempty"`
	Genders     string      `yaml:"genders,omitempty"`
	Height      *HeightRule `yaml:"height,omitempty"`
	Weight      *WeightRule `yaml:"weight,omitempty"`
}

type LengthRule struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type DateRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to,omitempty"`
}

type HeightRule struct {
	Min int16 `yaml:"min"`
	Max int16 `yaml:"max"`
}

type WeightRule struct {
	Min string `yaml:"min"`
	Max string `yaml:"max"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:    "data",
		Storage:    "file",
		FileName:   "cabinet.db",
		SyncWrites: true,
		LogLevel:   "info",
		Validation: ValidationConfig{Profile: validate.ProfileDefault},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks enumerated settings and the validation overrides.
func (c *Config) Validate() error {
	switch c.Storage {
	case "memory", "file":
	default:
		return fmt.Errorf("config: unknown storage %q, want memory or file", c.Storage)
	}
	if c.Storage == "file" && c.FileName == "" {
		return errors.New("config: file_name is required for file storage")
	}
	if _, err := c.Validation.Rules(); err != nil {
		return err
	}
	return nil
}

// StorePath returns the location of the record file.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, c.FileName)
}

// SnapshotDir returns the directory snapshots are kept in.
func (c *Config) SnapshotDir() string {
	return filepath.Join(c.DataDir, "snapshots")
}

// Rules resolves the profile and applies the overrides.
func (v ValidationConfig) Rules() (validate.Rules, error) {
	rules, err := validate.ProfileRules(v.Profile)
	if err != nil {
		return validate.Rules{}, fmt.Errorf("config: %w", err)
	}

	if v.FirstName != nil {
		rules.FirstName = validate.Length{Min: v.FirstName.Min, Max: v.FirstName.Max}
	}
	if v.LastName != nil {
		rules.LastName = validate.Length{Min: v.LastName.Min, Max: v.LastName.Max}
	}
	if v.DateOfBirth != nil {
		from, err := parseDate("date_of_birth.from", v.DateOfBirth.From)
		if err != nil {
			return validate.Rules{}, err
		}
		to, err := parseDate("date_of_birth.to", v.DateOfBirth.To)
		if err != nil {
			return validate.Rules{}, err
		}
		rules.DateOfBirth = validate.DateRange{From: from, To: to}
	}
	if v.Genders != "" {
		for _, g := range v.Genders {
			if g > unicode.MaxASCII {
				return validate.Rules{}, fmt.Errorf("config: genders: %q is not an ASCII character", g)
			}
		}
		rules.Genders = v.Genders
	}
	if v.Height != nil {
		rules.Height = validate.HeightRange{Min: v.Height.Min, Max: v.Height.Max}
	}
	if v.Weight != nil {
		lo, err := decimal.NewFromString(v.Weight.Min)
		if err != nil {
			return validate.Rules{}, fmt.Errorf("config: weight.min: %w", err)
		}
		hi, err := decimal.NewFromString(v.Weight.Max)
		if err != nil {
			return validate.Rules{}, fmt.Errorf("config: weight.max: %w", err)
		}
		rules.Weight = validate.WeightRange{Min: lo, Max: hi}
	}

	return rules, nil
}

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(record.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: %s: %w", name, err)
	}
	return t, nil
}
