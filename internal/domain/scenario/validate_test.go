package scenario

import (
	"errors"
	"math"
	"testing"
)

func TestPresetsAreValid(t *testing.T) {
	for _, mode := range []Mode{ModeGrid, ModeNetwork} {
		cfg, ok := Preset(mode)
		if !ok {
			t.Fatalf("Expected a preset for %s", mode)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Expected preset %s to validate, got %v", mode, err)
		}
	}
}

func TestValidateRejectsOversizedZones(t *testing.T) {
	cfg := DefaultGrid()
	cfg.Grid.RecoverySize = 11

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected a configuration error for a zone larger than the grid")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected error to match ErrInvalidConfig, got %v", err)
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "grid.recovery_size" {
		t.Errorf("Expected grid.recovery_size violation, got %v", err)
	}
}

func TestValidateRejectsGraphParameters(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"m equals population", func(c *Config) { c.Population = 3; c.Graph.M = 3 }, "graph.m"},
		{"m zero", func(c *Config) { c.Graph.M = 0 }, "graph.m"},
		{"p above domain", func(c *Config) { c.Graph.P = 10.5 }, "graph.p"},
		{"p negative", func(c *Config) { c.Graph.Type = GraphErdosRenyi; c.Graph.P = -1 }, "graph.p"},
		{"unknown family", func(c *Config) { c.Graph.Type = "lattice" }, "graph.type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultNetwork()
			tc.edit(&cfg)
			var cfgErr *ConfigurationError
			if err := cfg.Validate(); !errors.As(err, &cfgErr) || cfgErr.Field != tc.field {
				t.Errorf("Expected %s violation, got %v", tc.field, err)
			}
		})
	}
}

func TestValidateIgnoresMForFamiliesWithoutIt(t *testing.T) {
	cfg := DefaultNetwork()
	cfg.Graph.Type = GraphErdosRenyi
	cfg.Population = 1
	cfg.Graph.M = 5
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected Erdos-Renyi to ignore m, got %v", err)
	}
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	cfg := DefaultGrid()
	cfg.Population = 0
	cfg.ChanceOfInfection = 101
	cfg.Risk.IncomeMultiplier = 0.5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation to fail")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("Expected a joined error, got %T", err)
	}
	if n := len(joined.Unwrap()); n != 3 {
		t.Errorf("Expected 3 violations, got %d: %v", n, err)
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := DefaultGrid()
	cfg.Mode = "hex"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected unknown mode to be rejected, got %v", err)
	}
}

func TestGraphProbabilityScaling(t *testing.T) {
	g := GraphConfig{P: 4}
	if got := g.Probability(); got != 0.4 {
		t.Errorf("Expected p=4 to scale to 0.4, got %v", got)
	}
}

func TestValidateRejectsNaN(t *testing.T) {
	cases := []struct {
		field string
		cfg   func() Config
	}{
		{"chance_of_infection", func() Config { c := DefaultNetwork(); c.ChanceOfInfection = math.NaN(); return c }},
		{"graph.p", func() Config { c := DefaultNetwork(); c.Graph.P = math.NaN(); return c }},
		{"risk.income_multiplier", func() Config { c := DefaultNetwork(); c.Risk.IncomeMultiplier = math.NaN(); return c }},
		{"death_risk", func() Config { c := DefaultGrid(); c.DeathRisk = math.NaN(); return c }},
		{"vaccination_rate", func() Config { c := DefaultGrid(); c.VaccinationRate = math.NaN(); return c }},
	}
	for _, tc := range cases {
		err := tc.cfg().Validate()
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) || cfgErr.Field != tc.field {
			t.Errorf("Expected NaN %s to be rejected, got %v", tc.field, err)
		}
	}
}
