package engine

import (
	"github.com/MRamiBalles/epicurves/internal/domain/agent"
)

// FactorPrevalence is, per risk factor, the fraction of live carriers that
// are Infected. A factor nobody carries reports 0.
type FactorPrevalence struct {
	Age       float64 `json:"age" db:"prev_age"`
	Genetic   float64 `json:"genetic" db:"prev_genetic"`
	Tobacco   float64 `json:"tobacco" db:"prev_tobacco"`
	Diet      float64 `json:"diet" db:"prev_diet"`
	Activity  float64 `json:"activity" db:"prev_activity"`
	Alcohol   float64 `json:"alcohol" db:"prev_alcohol"`
	Lifestyle float64 `json:"lifestyle" db:"prev_lifestyle"`
}

// Of returns the prevalence of f.
func (fp FactorPrevalence) Of(f agent.Factor) float64 {
	switch f {
	case agent.FactorAge:
		return fp.Age
	case agent.FactorGenetic:
		return fp.Genetic
	case agent.FactorTobacco:
		return fp.Tobacco
	case agent.FactorDiet:
		return fp.Diet
	case agent.FactorActivity:
		return fp.Activity
	case agent.FactorAlcohol:
		return fp.Alcohol
	case agent.FactorLifestyle:
		return fp.Lifestyle
	}
	return 0
}

func (fp *FactorPrevalence) set(f agent.Factor, v float64) {
	switch f {
	case agent.FactorAge:
		fp.Age = v
	case agent.FactorGenetic:
		fp.Genetic = v
	case agent.FactorTobacco:
		fp.Tobacco = v
	case agent.FactorDiet:
		fp.Diet = v
	case agent.FactorActivity:
		fp.Activity = v
	case agent.FactorAlcohol:
		fp.Alcohol = v
	case agent.FactorLifestyle:
		fp.Lifestyle = v
	}
}

// Snapshot is the aggregate state of the population after a tick.
// Susceptible+Infected+Recovered+Dead always equals the agents created;
// Immune is the subset of Recovered that can never be infected again.
type Snapshot struct {
	Tick int `json:"tick" db:"tick"`

	Susceptible int `json:"susceptible" db:"susceptible"`
	Infected    int `json:"infected" db:"infected"`
	Recovered   int `json:"recovered" db:"recovered"`
	Immune      int `json:"immune" db:"immune"`
	Dead        int `json:"dead" db:"dead"`

	TotalInfections int `json:"total_infections" db:"total_infections"` // currently Infected
	Vaccinations    int `json:"vaccinations" db:"vaccinations"`         // cumulative

	NewCases        int `json:"new_cases" db:"new_cases"`
	NewRecoveries   int `json:"new_recoveries" db:"new_recoveries"`
	Deaths          int `json:"deaths" db:"deaths"`
	CumulativeCases int `json:"cumulative_cases" db:"cumulative_cases"` // initial seeds included

	Prevalence float64 `json:"prevalence" db:"prevalence"`
	Incidence  float64 `json:"incidence" db:"incidence"`

	FactorPrevalence `json:"factor_prevalence"`
}

// Total is the number of agents ever created.
func (s Snapshot) Total() int {
	return s.Susceptible + s.Infected + s.Recovered + s.Dead
}

// StatsCollector derives a Snapshot from the live agents of a world.
type StatsCollector struct {
	w *world
}

func newStatsCollector(w *world) *StatsCollector {
	return &StatsCollector{w: w}
}

// Collect computes the snapshot of the current tick.
func (sc *StatsCollector) Collect() Snapshot {
	w := sc.w
	s := Snapshot{
		Tick:            w.tick,
		Vaccinations:    w.vaccinations,
		NewCases:        w.perTick.newCases,
		NewRecoveries:   w.perTick.newRecoveries,
		Deaths:          w.perTick.deaths,
		CumulativeCases: w.cumulativeCases,
	}

	carriers := make([]int, len(agent.Factors))
	infectedCarriers := make([]int, len(agent.Factors))
	for _, a := range w.agents {
		switch a.State {
		case agent.Dead:
			s.Dead++
			continue
		case agent.Susceptible:
			s.Susceptible++
		case agent.Infected:
			s.Infected++
		case agent.Recovered:
			s.Recovered++
			if a.IsImmune(w.cfg.ImmunityThreshold) {
				s.Immune++
			}
		}
		for i, f := range agent.Factors {
			if !a.Risk.Has(f) {
				continue
			}
			carriers[i]++
			if a.State == agent.Infected {
				infectedCarriers[i]++
			}
		}
	}

	total := len(w.agents)
	s.TotalInfections = s.Infected
	s.Prevalence = ratio(s.Infected, total)
	s.Incidence = ratio(s.NewCases, total)
	for i, f := range agent.Factors {
		s.FactorPrevalence.set(f, ratio(infectedCarriers[i], carriers[i]))
	}
	return s
}

// ratio is n/d, defined as 0 when d is 0.
func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
