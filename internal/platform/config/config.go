// Package config loads the YAML file shared by the server and the CLIs.
//
// The scenario section is applied over the preset of its mode, so a file only
// needs the fields it changes:
//
//	scenario:
//	  mode: network
//	  population: 500
//	server:
//	  addr: ":8080"
//	  tick_interval: 250ms
//	run:
//	  ticks: 300
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/platform/optimization"
)

// Tuning profiles accepted by server.profile.
const (
	ProfileDefault     = "default"
	ProfileLowResource = "low_resource"
)

// ServerConfig controls the HTTP/WebSocket server and the history store.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	TickInterval time.Duration `yaml:"tick_interval"`
	SQLitePath   string        `yaml:"sqlite_path"` // empty disables the history store
	LogLevel     string        `yaml:"log_level"`
	Profile      string        `yaml:"profile"`
}

// RunConfig bounds one run.
type RunConfig struct {
	Ticks int `yaml:"ticks"`
}

// File is the parsed configuration file.
type File struct {
	Scenario scenario.Config `yaml:"scenario"`
	Server   ServerConfig    `yaml:"server"`
	Run      RunConfig       `yaml:"run"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{
		Scenario: scenario.DefaultGrid(),
		Server: ServerConfig{
			Addr:         ":8080",
			TickInterval: 200 * time.Millisecond,
			SQLitePath:   "data/epicurves.db",
			LogLevel:     "info",
			Profile:      ProfileDefault,
		},
		Run: RunConfig{Ticks: 100},
	}
}

// Load reads and parses path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes data over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var probe struct {
		Scenario struct {
			Mode scenario.Mode `yaml:"mode"`
		} `yaml:"scenario"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	f := Default()
	if mode := probe.Scenario.Mode; mode != "" {
		preset, ok := scenario.Preset(mode)
		if !ok {
			return nil, &scenario.ConfigurationError{Field: "mode", Value: mode, Reason: "must be grid or network"}
		}
		f.Scenario = preset
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the scenario and the server and run sections.
func (f *File) Validate() error {
	var errs []error
	if err := f.Scenario.Validate(); err != nil {
		errs = append(errs, err)
	}
	if f.Run.Ticks <= 0 {
		errs = append(errs, fmt.Errorf("run.ticks must be positive, got %d", f.Run.Ticks))
	}
	if f.Server.TickInterval < 0 {
		errs = append(errs, fmt.Errorf("server.tick_interval must not be negative, got %s", f.Server.TickInterval))
	}
	switch f.Server.Profile {
	case ProfileDefault, ProfileLowResource:
	default:
		errs = append(errs, fmt.Errorf("server.profile must be %s or %s, got %q", ProfileDefault, ProfileLowResource, f.Server.Profile))
	}
	return errors.Join(errs...)
}

// Optimization returns the tuning profile named by the server section.
func (s ServerConfig) Optimization() *optimization.Config {
	if s.Profile == ProfileLowResource {
		return optimization.LowResourceConfig()
	}
	return optimization.DefaultConfig()
}
