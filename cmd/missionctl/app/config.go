package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/mission-control/internal/config"
	"github.com/roman-kulish/mission-control/internal/preview"
)

const (
	defaultDataDirectory = "data"
	defaultDatabase      = "missions.sqlite"
	defaultVehicleID     = "vehicle-1"
)

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Storage  StorageConfig `yaml:"storage"`
	Vehicle  VehicleConfig `yaml:"vehicle"`
	Journal  JournalConfig `yaml:"journal"`
	Preview  PreviewConfig `yaml:"preview"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel slog.Level `yaml:"logLevel"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	Database      string `yaml:"database"`
}

// VehicleConfig identifies the vehicle recorded sessions belong to
type VehicleConfig struct {
	ID string `yaml:"id"`
}

// JournalConfig represents journal reading settings
type JournalConfig struct {
	Window    config.TimeDuration `yaml:"window"` // Only read messages newer than this, zero reads everything
	BatchSize int                 `yaml:"batchSize"`
}

// PreviewConfig represents plan preview image settings
type PreviewConfig struct {
	Width         int  `yaml:"width"`
	Height        int  `yaml:"height"`
	Margin        int  `yaml:"margin"`
	NoAnnotations bool `yaml:"noAnnotations"`
}

// NewConfig returns the configuration used when no file overrides a setting
func NewConfig() *Config {
	return &Config{
		Settings: Settings{LogLevel: slog.LevelInfo},
		Storage: StorageConfig{
			DataDirectory: defaultDataDirectory,
			Database:      defaultDatabase,
		},
		Vehicle: VehicleConfig{ID: defaultVehicleID},
		Preview: PreviewConfig{
			Width:  preview.DefaultWidth,
			Height: preview.DefaultHeight,
			Margin: preview.DefaultMargin,
		},
	}
}

// LoadConfig reads the YAML configuration file at path over the defaults
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := NewConfig()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err = c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	var err error
	switch {
	case c.Storage.Database == "":
		err = errors.New("storage.database is required")
	case c.Vehicle.ID == "":
		err = errors.New("vehicle.id is required")
	case c.Journal.Window < 0:
		err = errors.New("journal.window must not be negative")
	case c.Journal.BatchSize < 0:
		err = errors.New("journal.batchSize must not be negative")
	}
	return err
}
