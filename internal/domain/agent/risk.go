package agent

// Factor names a risk factor tracked by prevalence-by-factor statistics.
type Factor string

const (
	FactorAge       Factor = "age"
	FactorGenetic   Factor = "genetic"
	FactorTobacco   Factor = "tobacco"
	FactorDiet      Factor = "diet"
	FactorActivity  Factor = "activity"
	FactorAlcohol   Factor = "alcohol"
	FactorLifestyle Factor = "lifestyle"
)

// Factors lists every factor in reporting order.
var Factors = []Factor{FactorAge, FactorGenetic, FactorTobacco, FactorDiet, FactorActivity, FactorAlcohol, FactorLifestyle}

// Baseline is the multiplier of an agent that does not carry a factor.
const Baseline = 1.0

// RiskProfile holds the multiplicative modifiers drawn at creation.
// Only Age may change afterwards (first-recovery attenuation).
type RiskProfile struct {
	AgeRisk bool `json:"age_risk"` // drawn the age factor (65+)

	Age       float64 `json:"age"`
	AgeDeath  float64 `json:"age_death"`
	Genetic   float64 `json:"genetic"`
	Lifestyle float64 `json:"lifestyle"`

	Tobacco  float64 `json:"tobacco"`
	Diet     float64 `json:"diet"`
	Activity float64 `json:"activity"`
	Alcohol  float64 `json:"alcohol"`
}

// BaselineProfile returns a profile with no elevated factor.
func BaselineProfile() RiskProfile {
	return RiskProfile{
		Age:       Baseline,
		AgeDeath:  Baseline,
		Genetic:   Baseline,
		Lifestyle: Baseline,
		Tobacco:   Baseline,
		Diet:      Baseline,
		Activity:  Baseline,
		Alcohol:   Baseline,
	}
}

// Multiplier returns the multiplier for f.
func (r RiskProfile) Multiplier(f Factor) float64 {
	switch f {
	case FactorAge:
		return r.Age
	case FactorGenetic:
		return r.Genetic
	case FactorTobacco:
		return r.Tobacco
	case FactorDiet:
		return r.Diet
	case FactorActivity:
		return r.Activity
	case FactorAlcohol:
		return r.Alcohol
	case FactorLifestyle:
		return r.Lifestyle
	}
	return Baseline
}

// Has reports whether the agent carries f, i.e. its multiplier is not baseline.
// Age carriage follows the drawn AgeRisk flag, so an attenuated multiplier
// does not make a survivor an age carrier.
func (r RiskProfile) Has(f Factor) bool {
	if f == FactorAge {
		return r.AgeRisk
	}
	return r.Multiplier(f) != Baseline
}

// Susceptibility is the product applied to the infection chance.
func (r RiskProfile) Susceptibility() float64 {
	return r.Age * r.Genetic * r.Lifestyle
}
