package engine

import (
	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/domain/rules"
	"github.com/MRamiBalles/epicurves/internal/events"
)

// VaccinationPayload records the effectiveness drawn for a vaccination.
type VaccinationPayload struct {
	Effectiveness float64 `json:"effectiveness"`
	AgeRisk       bool    `json:"age_risk"`
}

// VaccinationSystem offers a vaccine to every agent at the moment it
// recovers. Acceptance is drawn against the vaccination rate; every new
// vaccination replaces the previous effectiveness.
type VaccinationSystem struct {
	w        *world
	rate     float64 // 0-1
	efficacy float64 // 0-100
}

func newVaccinationSystem(w *world) *VaccinationSystem {
	return &VaccinationSystem{
		w:        w,
		rate:     w.cfg.VaccinationRate / 100,
		efficacy: w.cfg.VaccinationEfficacy,
	}
}

// OnRecovery draws acceptance for a and reports whether it was vaccinated.
func (vs *VaccinationSystem) OnRecovery(a *agent.Agent) bool {
	if !vs.w.rng.Chance(vs.rate) {
		return false
	}
	a.VaccinationEffectiveness = rules.VaccinationEffectiveness(a.Risk.AgeRisk, vs.efficacy)
	vs.w.vaccinations++
	vs.w.record(events.EventTypeVaccination, a.ID, events.NoAgent, VaccinationPayload{
		Effectiveness: a.VaccinationEffectiveness,
		AgeRisk:       a.Risk.AgeRisk,
	})
	return true
}
