// Package rules contains the pure probability formulas of the disease model.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
)

const (
	// ElevatedMultiplier is applied for every risk factor an agent carries.
	ElevatedMultiplier = 1.2
	// AgeDeathMultiplier: the chance of death grows with age faster than
	// the chance of infection.
	AgeDeathMultiplier = 1.5

	// SurvivorChanceFactor attenuates the base infection chance of an
	// age-risk agent after its first recovery.
	SurvivorChanceFactor = 0.75
	// AgeAttenuationFactor is applied to the age multiplier of other agents
	// when literal age attenuation is enabled.
	AgeAttenuationFactor = 0.5

	// Vaccine effectiveness relative to efficacy: 30-40% prevention at 65+,
	// 70-90% otherwise.
	EffectivenessAgeRisk = 0.35
	EffectivenessDefault = 0.80
)

// Roller draws one uniform value and compares it against p.
type Roller interface {
	Chance(p float64) bool
}

// SampleProfile draws the risk factors of one agent, one value per factor in
// the order age, genetic, tobacco, diet, activity, alcohol.
func SampleProfile(r Roller, p scenario.RiskProportions, compat scenario.Compat) agent.RiskProfile {
	profile := agent.BaselineProfile()

	if r.Chance(p.Age / 100) {
		profile.AgeRisk = true
		profile.Age = ElevatedMultiplier
		profile.AgeDeath = AgeDeathMultiplier
	}
	if r.Chance(p.Genetic / 100) {
		profile.Genetic = ElevatedMultiplier
	}
	if r.Chance(p.Tobacco / 100) {
		profile.Tobacco = ElevatedMultiplier
	}
	if r.Chance(p.Diet / 100) {
		profile.Diet = ElevatedMultiplier
	}
	if r.Chance(p.Activity / 100) {
		profile.Activity = ElevatedMultiplier
	}
	drewAlcohol := r.Chance(p.Alcohol / 100)
	if drewAlcohol {
		profile.Alcohol = ElevatedMultiplier
	}

	if !compat.LifestyleGatedOnAlcohol || drewAlcohol {
		profile.Lifestyle = profile.Tobacco * profile.Diet * profile.Activity * profile.Alcohol * p.IncomeMultiplier
	}
	return profile
}

// InfectionProbability is the chance that one exposure infects target.
func InfectionProbability(target *agent.Agent) float64 {
	return target.BaseInfectionChance / 100 * target.Risk.Susceptibility()
}

// DeathProbability is the per-check chance of death; deathRisk is a percentage.
func DeathProbability(a *agent.Agent, deathRisk float64) float64 {
	return deathRisk / 100 * a.Risk.AgeDeath * a.Risk.Genetic * a.Risk.Lifestyle
}

// VaccinationEffectiveness converts efficacy (0-100) into the per-agent veto
// probability. Age reduces effectiveness.
func VaccinationEffectiveness(ageRisk bool, efficacy float64) float64 {
	if ageRisk {
		return EffectivenessAgeRisk * efficacy / 100
	}
	return EffectivenessDefault * efficacy / 100
}

// ApplyFirstRecovery applies the one-time effect of surviving the disease.
func ApplyFirstRecovery(a *agent.Agent, compat scenario.Compat) {
	if a.Risk.AgeRisk {
		a.BaseInfectionChance *= SurvivorChanceFactor
		return
	}
	if compat.LiteralAgeAttenuation {
		a.Risk.Age *= AgeAttenuationFactor
	}
}
