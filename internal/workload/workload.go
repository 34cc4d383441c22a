// Package workload provides the task-load multipliers layered onto the
// fatigue model: per-phase cockpit workload, linear sector-fatigue
// accumulation, and flat factors for training duties.
//
// Phase multipliers: Bourgeois-Bougrine et al. (2003), Cabon et al. (1993),
// Gander et al. (1994). Training factors: Fuentes-Garcia et al. (2021),
// Hamann & Carstengerdes (2023).
package workload

import "github.com/cianfru/aerowake/pkg/models"

// Parameters holds the workload lookup tables.
type Parameters struct {
	PhaseMultipliers map[models.FlightPhase]float64

	// Each sector flown past the first adds this fraction of fatigue load.
	SectorPenaltyRate float64

	// Simulator sessions carry high cognitive load but ~32% lower
	// physiological stress than line flying; ground training is passive
	// engagement, below cruise vigilance.
	SimulatorMultiplier      float64
	GroundTrainingMultiplier float64
}

// DefaultParameters returns the literature-calibrated tables.
func DefaultParameters() Parameters {
	return Parameters{
		PhaseMultipliers: map[models.FlightPhase]float64{
			models.PhasePreflight:  1.1,
			models.PhaseTaxiOut:    1.0,
			models.PhaseTakeoff:    1.8,
			models.PhaseClimb:      1.3,
			models.PhaseCruise:     0.8,
			models.PhaseDescent:    1.2,
			models.PhaseApproach:   1.5,
			models.PhaseLanding:    2.0,
			models.PhaseTaxiIn:     1.0,
			models.PhaseTurnaround: 1.2,
		},
		SectorPenaltyRate:        0.15,
		SimulatorMultiplier:      1.3,
		GroundTrainingMultiplier: 0.7,
	}
}

// Model is a stateless workload lookup.
type Model struct {
	params Parameters
}

// NewModel creates a Model; a zero Parameters value falls back to defaults.
func NewModel(p Parameters) *Model {
	if p.PhaseMultipliers == nil {
		p = DefaultParameters()
	}
	return &Model{params: p}
}

// Phase returns the base multiplier for a flight phase.
func (m *Model) Phase(phase models.FlightPhase) float64 {
	if v, ok := m.params.PhaseMultipliers[phase]; ok {
		return v
	}
	return 1.0
}

// Sector returns the sector-fatigue multiplier for the 1-indexed sector
// currently being flown: 1 + (n-1) * penalty rate.
func (m *Model) Sector(sectorNumber int) float64 {
	if sectorNumber < 1 {
		sectorNumber = 1
	}
	return 1.0 + float64(sectorNumber-1)*m.params.SectorPenaltyRate
}

// Combined returns the product of phase and sector multipliers.
func (m *Model) Combined(phase models.FlightPhase, sectorNumber int) float64 {
	return m.Phase(phase) * m.Sector(sectorNumber)
}

// Training returns the flat multiplier for a non-flight duty. Training
// duties have no flight phases; one constant covers the whole period.
func (m *Model) Training(t models.DutyType) float64 {
	switch t {
	case models.DutySimulator:
		return m.params.SimulatorMultiplier
	case models.DutyGroundTraining:
		return m.params.GroundTrainingMultiplier
	default:
		return 1.0
	}
}
