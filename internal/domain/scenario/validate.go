package scenario

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidConfig is wrapped by every ConfigurationError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigurationError reports one out-of-range or inconsistent field.
type ConfigurationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfig
}

// Validate checks every field and returns all violations joined, or nil.
func (c Config) Validate() error {
	var errs []error
	fail := func(field string, value interface{}, reason string) {
		errs = append(errs, &ConfigurationError{Field: field, Value: value, Reason: reason})
	}
	// Comparisons are written so NaN fails them.
	percent := func(field string, v float64) {
		if !(v >= 0 && v <= 100) {
			fail(field, v, "must be within [0, 100]")
		}
	}

	if c.Population <= 0 {
		fail("population", c.Population, "must be positive")
	}
	if c.InitialInfected < 0 || c.InitialInfected > c.Population {
		fail("initial_infected", c.InitialInfected, "must be within [0, population]")
	}

	percent("chance_of_infection", c.ChanceOfInfection)
	percent("risk.age", c.Risk.Age)
	percent("risk.genetic", c.Risk.Genetic)
	percent("risk.tobacco", c.Risk.Tobacco)
	percent("risk.diet", c.Risk.Diet)
	percent("risk.activity", c.Risk.Activity)
	percent("risk.alcohol", c.Risk.Alcohol)
	if !(c.Risk.IncomeMultiplier >= 1) {
		fail("risk.income_multiplier", c.Risk.IncomeMultiplier, "must be >= 1")
	}
	percent("vaccination_rate", c.VaccinationRate)
	percent("vaccination_efficacy", c.VaccinationEfficacy)
	if c.ImmunityThreshold < 0 {
		fail("num_recoveries_for_immune", c.ImmunityThreshold, "must not be negative")
	}
	if c.StepsToRecovery < 0 {
		fail("steps_to_recovery", c.StepsToRecovery, "must not be negative")
	}

	switch c.Mode {
	case ModeGrid:
		errs = append(errs, c.validateGrid()...)
	case ModeNetwork:
		errs = append(errs, c.validateGraph()...)
	default:
		fail("mode", c.Mode, "must be grid or network")
	}

	return errors.Join(errs...)
}

func (c Config) validateGrid() []error {
	var errs []error
	g := c.Grid
	if g.Width <= 0 || g.Height <= 0 {
		errs = append(errs, &ConfigurationError{Field: "grid", Value: fmt.Sprintf("%dx%d", g.Width, g.Height), Reason: "dimensions must be positive"})
		return errs
	}
	limit := min(g.Width, g.Height)
	if g.RecoverySize < 0 || g.RecoverySize > limit {
		errs = append(errs, &ConfigurationError{Field: "grid.recovery_size", Value: g.RecoverySize, Reason: fmt.Sprintf("must be within [0, %d]", limit)})
	}
	if g.InfectiousSize < 0 || g.InfectiousSize > limit {
		errs = append(errs, &ConfigurationError{Field: "grid.infectious_size", Value: g.InfectiousSize, Reason: fmt.Sprintf("must be within [0, %d]", limit)})
	}
	if !(c.DeathRisk >= 0 && c.DeathRisk <= 100) {
		errs = append(errs, &ConfigurationError{Field: "death_risk", Value: c.DeathRisk, Reason: "must be within [0, 100]"})
	}
	if c.StepsToDeath < 0 {
		errs = append(errs, &ConfigurationError{Field: "steps_to_death", Value: c.StepsToDeath, Reason: "must not be negative"})
	}
	return errs
}

func (c Config) validateGraph() []error {
	var errs []error
	g := c.Graph
	if !slices.Contains(GraphTypes, g.Type) {
		errs = append(errs, &ConfigurationError{Field: "graph.type", Value: g.Type, Reason: "unknown graph family"})
	}
	if !(g.P >= 0 && g.P <= 10) {
		errs = append(errs, &ConfigurationError{Field: "graph.p", Value: g.P, Reason: "must be within [0, 10]"})
	}
	if g.Type.UsesM() {
		if g.M < 1 {
			errs = append(errs, &ConfigurationError{Field: "graph.m", Value: g.M, Reason: "must be at least 1"})
		} else if g.M >= c.Population {
			errs = append(errs, &ConfigurationError{Field: "graph.m", Value: g.M, Reason: "must be smaller than population"})
		}
	}
	return errs
}
