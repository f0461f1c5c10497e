// Package scenario defines the immutable configuration of a simulation run.
// This package is PURE and must NOT import any infrastructure packages.
package scenario

// Mode selects the substrate agents live on.
type Mode string

const (
	ModeGrid    Mode = "grid"
	ModeNetwork Mode = "network"
)

// GraphType names a random-graph family for network mode.
type GraphType string

const (
	GraphBarabasiAlbert  GraphType = "barabasi_albert"
	GraphWattsStrogatz   GraphType = "watts_strogatz"
	GraphErdosRenyi      GraphType = "erdos_renyi"
	GraphPowerLawCluster GraphType = "powerlaw_cluster"
)

// GraphTypes lists every supported family.
var GraphTypes = []GraphType{GraphBarabasiAlbert, GraphWattsStrogatz, GraphErdosRenyi, GraphPowerLawCluster}

// UsesM reports whether the family consumes the preferential-attachment edge count.
func (g GraphType) UsesM() bool {
	return g == GraphBarabasiAlbert || g == GraphPowerLawCluster
}

// GridConfig describes the toroidal lattice and its two zones.
type GridConfig struct {
	Width          int `yaml:"width" json:"width"`
	Height         int `yaml:"height" json:"height"`
	RecoverySize   int `yaml:"recovery_size" json:"recovery_size"`     // top-left square side
	InfectiousSize int `yaml:"infectious_size" json:"infectious_size"` // bottom-right square side
}

// GraphConfig describes the random graph for network mode.
type GraphConfig struct {
	Type GraphType `yaml:"type" json:"type"`
	M    int       `yaml:"m" json:"m"`
	P    float64   `yaml:"p" json:"p"` // 0-10, scaled to a probability by /10
}

// Probability returns P scaled to [0, 1].
func (g GraphConfig) Probability() float64 {
	return g.P / 10
}

// RiskProportions are the population shares (0-100) carrying each risk factor.
type RiskProportions struct {
	Age              float64 `yaml:"age" json:"age"`
	Genetic          float64 `yaml:"genetic" json:"genetic"`
	Tobacco          float64 `yaml:"tobacco" json:"tobacco"`
	Diet             float64 `yaml:"diet" json:"diet"`
	Activity         float64 `yaml:"activity" json:"activity"`
	Alcohol          float64 `yaml:"alcohol" json:"alcohol"`
	IncomeMultiplier float64 `yaml:"income_multiplier" json:"income_multiplier"`
}

// Compat holds switches that reproduce quirks of the reference model.
type Compat struct {
	// LifestyleGatedOnAlcohol only computes the lifestyle product for agents
	// that drew the alcohol factor; everyone else keeps 1.0.
	LifestyleGatedOnAlcohol bool `yaml:"lifestyle_gated_on_alcohol" json:"lifestyle_gated_on_alcohol"`
	// LiteralAgeAttenuation halves the age multiplier of non-age-risk agents
	// on their first recovery.
	LiteralAgeAttenuation bool `yaml:"literal_age_attenuation" json:"literal_age_attenuation"`
}

// Config is the full, immutable configuration consumed when an engine is built.
type Config struct {
	Seed            uint64 `yaml:"seed" json:"seed"`
	Mode            Mode   `yaml:"mode" json:"mode"`
	Population      int    `yaml:"population" json:"population"`
	InitialInfected int    `yaml:"initial_infected" json:"initial_infected"`

	Grid  GridConfig  `yaml:"grid" json:"grid"`
	Graph GraphConfig `yaml:"graph" json:"graph"`

	ChanceOfInfection float64         `yaml:"chance_of_infection" json:"chance_of_infection"` // 0-100
	Risk              RiskProportions `yaml:"risk" json:"risk"`

	// Grid only. DeathRisk is a percentage; StepsToDeath <= 0 disables death.
	DeathRisk    float64 `yaml:"death_risk" json:"death_risk"`
	StepsToDeath int     `yaml:"steps_to_death" json:"steps_to_death"`

	// ImmunityThreshold <= 0 means agents never become immune.
	ImmunityThreshold int `yaml:"num_recoveries_for_immune" json:"num_recoveries_for_immune"`
	// StepsToRecovery <= 0 disables duration-based recovery.
	StepsToRecovery int `yaml:"steps_to_recovery" json:"steps_to_recovery"`

	// Network only, both 0-100.
	VaccinationRate     float64 `yaml:"vaccination_rate" json:"vaccination_rate"`
	VaccinationEfficacy float64 `yaml:"vaccination_efficacy" json:"vaccination_efficacy"`

	EarlyStop bool   `yaml:"early_stop" json:"early_stop"`
	Compat    Compat `yaml:"compat" json:"compat"`
}

// DefaultGrid mirrors the grid dashboard defaults.
func DefaultGrid() Config {
	return Config{
		Seed:            1,
		Mode:            ModeGrid,
		Population:      50,
		InitialInfected: 0,
		Grid: GridConfig{
			Width:          10,
			Height:         10,
			RecoverySize:   2,
			InfectiousSize: 2,
		},
		ChanceOfInfection: 40,
		Risk: RiskProportions{
			Age:              30,
			Genetic:          30,
			Tobacco:          30,
			Diet:             30,
			Activity:         30,
			Alcohol:          30,
			IncomeMultiplier: 1.0,
		},
		DeathRisk:         5,
		StepsToDeath:      5,
		ImmunityThreshold: 1,
		StepsToRecovery:   0,
		EarlyStop:         true,
	}
}

// DefaultNetwork mirrors the network dashboard defaults.
func DefaultNetwork() Config {
	return Config{
		Seed:            1,
		Mode:            ModeNetwork,
		Population:      200,
		InitialInfected: 1,
		Graph: GraphConfig{
			Type: GraphBarabasiAlbert,
			M:    3,
			P:    4,
		},
		ChanceOfInfection: 30,
		Risk: RiskProportions{
			Age:              30,
			Genetic:          30,
			Tobacco:          30,
			Diet:             30,
			Activity:         30,
			Alcohol:          30,
			IncomeMultiplier: 1.2,
		},
		ImmunityThreshold:   3,
		StepsToRecovery:     10,
		VaccinationRate:     30,
		VaccinationEfficacy: 75,
		EarlyStop:           true,
	}
}

// Preset returns the default configuration for mode.
func Preset(mode Mode) (Config, bool) {
	switch mode {
	case ModeGrid:
		return DefaultGrid(), true
	case ModeNetwork:
		return DefaultNetwork(), true
	}
	return Config{}, false
}
