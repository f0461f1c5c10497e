package engine

import (
	"testing"

	"github.com/MRamiBalles/epicurves/internal/domain/agent"
	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/platform/logger"
	"github.com/MRamiBalles/epicurves/internal/rng"
)

func testWorld(cfg scenario.Config) *world {
	r := rng.New(cfg.Seed)
	return &world{
		cfg:    cfg,
		rng:    r,
		logger: logger.NewNop(),
		sched:  NewRandomActivation(r),
	}
}

func TestFullyEffectiveVaccineBlocksInfection(t *testing.T) {
	w := testWorld(scenario.DefaultNetwork())
	target := agent.New(0, 100, agent.BaselineProfile())
	target.VaccinationEffectiveness = 1

	for i := 0; i < 100; i++ {
		if w.expose(target) {
			t.Fatal("A fully effective vaccine must veto every exposure")
		}
	}
}

func TestExposureDrawsVetoOnlyAfterSuccess(t *testing.T) {
	w := testWorld(scenario.DefaultNetwork())
	target := agent.New(0, 0, agent.BaselineProfile())
	target.VaccinationEffectiveness = 0.5

	before := w.rng.Draws()
	w.expose(target)
	if got := w.rng.Draws() - before; got != 1 {
		t.Errorf("Expected one draw for a failed exposure, got %d", got)
	}

	target.BaseInfectionChance = 100
	before = w.rng.Draws()
	w.expose(target)
	if got := w.rng.Draws() - before; got != 2 {
		t.Errorf("Expected the veto draw after a successful exposure, got %d", got)
	}
}

func TestDurationRecoveryDisabledAtZero(t *testing.T) {
	cfg := scenario.DefaultNetwork()
	cfg.StepsToRecovery = 0
	w := testWorld(cfg)

	a := agent.New(0, 30, agent.BaselineProfile())
	a.Infect()
	a.InfectedTicks = 1000
	if w.durationRecover(a) || a.State != agent.Infected {
		t.Error("StepsToRecovery 0 must never recover")
	}
}

func TestLiteralAgeAttenuationCompat(t *testing.T) {
	cfg := scenario.DefaultNetwork()
	cfg.StepsToRecovery = 1
	cfg.Compat.LiteralAgeAttenuation = true
	w := testWorld(cfg)

	a := agent.New(0, 30, agent.BaselineProfile())
	a.Infect()
	a.InfectedTicks = 1
	w.durationRecover(a)
	if a.Risk.Age != 0.5 || a.BaseInfectionChance != 30 {
		t.Errorf("Expected the age multiplier halved and chance kept, got %v and %v", a.Risk.Age, a.BaseInfectionChance)
	}

	// a second recovery has no survivor effect
	a.Infect()
	a.InfectedTicks = 1
	w.durationRecover(a)
	if a.Risk.Age != 0.5 || a.RecoveryCount != 2 {
		t.Errorf("Expected attenuation only once, got age %v after %d recoveries", a.Risk.Age, a.RecoveryCount)
	}
}
