package agent

import "testing"

func TestNewAgentIsSusceptible(t *testing.T) {
	a := New(7, 30, BaselineProfile())
	if a.State != Susceptible {
		t.Errorf("Expected new agent to be Susceptible, got %s", a.State)
	}
	if a.IsVaccinated() {
		t.Error("Expected new agent to be unvaccinated")
	}
	if !a.IsInfectable(3) {
		t.Error("Expected new agent to be infectable")
	}
}

func TestRecoverCountsAndResets(t *testing.T) {
	a := New(1, 30, BaselineProfile())
	a.Infect()
	a.InfectedTicks = 4

	if first := a.Recover(); !first {
		t.Error("Expected first recovery to be reported")
	}
	if a.State != Recovered || a.InfectedTicks != 0 || a.RecoveryCount != 1 {
		t.Errorf("Unexpected agent after recovery: %+v", a)
	}

	a.Infect()
	if first := a.Recover(); first {
		t.Error("Expected second recovery not to be reported as first")
	}
}

func TestImmunityThreshold(t *testing.T) {
	a := New(1, 30, BaselineProfile())
	a.Infect()
	a.Recover()

	if !a.IsInfectable(2) {
		t.Error("Recovered agent below threshold should be infectable")
	}
	if a.IsInfectable(1) {
		t.Error("Recovered agent at threshold should be immune")
	}
	if !a.IsInfectable(0) {
		t.Error("Threshold 0 should disable immunity")
	}
	if a.State != Recovered {
		t.Errorf("Immune agent keeps nominal state Recovered, got %s", a.State)
	}
}

func TestDeadAndInfectedAreNotInfectable(t *testing.T) {
	a := New(1, 30, BaselineProfile())
	a.Infect()
	if a.IsInfectable(0) {
		t.Error("Infected agent must not be infectable")
	}
	a.Kill()
	if a.IsInfectable(0) || a.Alive() {
		t.Error("Dead agent must be neither infectable nor alive")
	}
}

func TestRiskProfileHasFactor(t *testing.T) {
	r := BaselineProfile()
	for _, f := range Factors {
		if r.Has(f) {
			t.Errorf("Baseline profile should not carry %s", f)
		}
	}
	r.Diet = 1.2
	if !r.Has(FactorDiet) {
		t.Error("Expected diet factor to be carried")
	}
	if got := r.Susceptibility(); got != 1 {
		t.Errorf("Diet alone must not change susceptibility without lifestyle, got %v", got)
	}
}

func TestAgeCarriageFollowsDrawnFlag(t *testing.T) {
	r := BaselineProfile()
	r.Age = 0.5
	if r.Has(FactorAge) {
		t.Error("Attenuated age multiplier must not count as age carriage")
	}
	r.AgeRisk = true
	r.Age = 1.2
	if !r.Has(FactorAge) {
		t.Error("Expected age factor to be carried when drawn")
	}
}

func TestStateText(t *testing.T) {
	b, err := Infected.MarshalText()
	if err != nil || string(b) != "INFECTED" {
		t.Errorf("Expected INFECTED, got %q (%v)", b, err)
	}
}
