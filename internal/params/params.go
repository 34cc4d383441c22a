// Package params holds the immutable model configuration for a fatigue
// analysis run. A Config is built once from a preset, never mutated, and
// shared by pointer across every computation in that run.
//
// Constants are literature-derived: Borbély & Achermann (1999), Jewett &
// Kronauer (1999), Van Dongen et al. (2003), Signal et al. (2013),
// Brooks & Lack (2006), Waterhouse et al. (2007).
package params

import (
	"github.com/cianfru/aerowake/pkg/models"
)

// ---------------------------------------------------------------------------
// Presets
// ---------------------------------------------------------------------------

// Preset selects a named parameter set.
type Preset uint8

const (
	PresetDefault Preset = iota
	PresetConservative
	PresetLiberal
	PresetResearch
	presetCount
)

var presetNames = [presetCount]string{
	PresetDefault:      "default",
	PresetConservative: "conservative",
	PresetLiberal:      "liberal",
	PresetResearch:     "research",
}

func (p Preset) String() string {
	if p < presetCount {
		return presetNames[p]
	}
	return "unknown"
}

// ParsePreset converts a string like "conservative" to its Preset.
func ParsePreset(s string) (Preset, bool) {
	for i, name := range presetNames {
		if name == s {
			return Preset(i), true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// EASA FTL framework (EU Regulation 965/2012)
// ---------------------------------------------------------------------------

// EASAFramework holds the regulatory time definitions.
type EASAFramework struct {
	// WOCL - AMC1 ORO.FTL.105(10): 02:00-05:59 biological time.
	WOCLStartHour float64
	WOCLEndHour   float64

	// Acclimatization - AMC1 ORO.FTL.105(1).
	AcclimatizationBandHours   float64
	AcclimatizationLocalNights int

	LocalNightStartHour     float64
	LocalNightEndHour       float64
	EarlyStartThresholdHour float64
	LateFinishThresholdHour float64

	// Rest - ORO.FTL.235.
	MinimumRestHours             float64
	MinimumSleepOpportunityHours float64

	// FDP - ORO.FTL.205.
	MaxFDPBasicHours float64
	MaxDutyHours     float64
}

func defaultEASAFramework() EASAFramework {
	return EASAFramework{
		WOCLStartHour:                2,
		WOCLEndHour:                  6,
		AcclimatizationBandHours:     2.0,
		AcclimatizationLocalNights:   3,
		LocalNightStartHour:          22,
		LocalNightEndHour:            8,
		EarlyStartThresholdHour:      6,
		LateFinishThresholdHour:      2,
		MinimumRestHours:             12.0,
		MinimumSleepOpportunityHours: 8.0,
		MaxFDPBasicHours:             13.0,
		MaxDutyHours:                 14.0,
	}
}

// ---------------------------------------------------------------------------
// Borbély two-process parameters
// ---------------------------------------------------------------------------

// Borbely holds the two-process model parameters.
type Borbely struct {
	SMax float64
	SMin float64

	// Time constants, hours (Jewett & Kronauer 1999).
	TauRise  float64 // buildup during wake
	TauDecay float64 // decay during sleep

	// Process C fundamental.
	CircadianAmplitude      float64
	CircadianMesor          float64
	CircadianPeriodHours    float64
	CircadianAcrophaseHours float64 // peak alertness clock time

	// Second harmonic: the 12h term that creates the evening Wake
	// Maintenance Zone plateau (Dijk & Czeisler 1994, Lavie 1986).
	// A2 is roughly 0.3 x A1, peaking near 20:00.
	SecondHarmonicAmplitude float64
	SecondHarmonicPhase     float64

	// Performance integration. The 55/45 homeostatic/circadian split is an
	// operational adaptation, not the textbook 50/50: sleep recovery
	// dominates over circadian phase for well-rested pilots (Gander 2013).
	// The research preset restores 50/50 with a unit exponent.
	WeightCircadian     float64
	WeightHomeostatic   float64
	InteractionExponent float64

	// Score calibration: a fully degraded weighted alertness maps to
	// ScoreOffset, a perfect one to ScoreOffset+ScoreRange, before the
	// multiplicative penalty factors apply.
	ScoreOffset float64
	ScoreRange  float64

	// Sleep inertia (Tassi & Muzet 2000).
	InertiaDurationMinutes float64
	InertiaMaxMagnitude    float64

	// Time-on-task: tot = k1*log(1+h) + k2*max(0, h-hInf)^2
	// (Folkard & Åkerstedt 1999 linear ramp; Cabon 2008 acceleration
	// beyond ~8h).
	TOTLogCoeff        float64
	TOTQuadraticCoeff  float64
	TOTInflectionHours float64

	// Sleep debt. Decay 0.35/day is a ~2 day half-life; quality feeds
	// Process S recovery separately, debt tracks raw time in bed.
	BaselineSleepNeedHours float64
	SleepDebtDecayRate     float64

	// Debt-driven recovery sleep extension (Banks 2010, Kitamura 2016).
	SleepReboundCoeff   float64 // extra hours per hour of debt
	SleepReboundMaxDebt float64

	// SWA diminishing returns: tauDecayEff = TauDecay*(1 + coeff*t/8).
	SWADiminishingCoeff float64

	// Cabin altitude hypoxia (Nesthus 2007, Muhm 2007):
	// factor = 1 - coeff*max(0, alt-floor)/1000.
	HypoxiaCoeff           float64
	HypoxiaAltitudeFloorFt float64
	DefaultCabinAltitudeFt float64

	// Circadian amplitude dampening under chronic debt (McCauley 2013).
	CircadianDampeningCoeff   float64
	CircadianDampeningMaxDebt float64

	// Chronic debt also lowers the circadian contribution to performance.
	// Dampening alone pulls both harmonics toward the mesor and raises
	// the night trough; this term must exceed the dampening lift
	// (CircadianDampeningCoeff / 2 in normalized units) so the trough
	// falls, not rises, as debt accumulates.
	CircadianDebtDepression float64

	// Debt vulnerability: 0.025/h means 4h debt -> -10%, floored so debt
	// alone cannot push performance below 80% of its debt-free value
	// (Van Dongen 2003, Banks & Dinges 2007).
	DebtVulnerabilityCoeff float64
	DebtVulnerabilityFloor float64

	// Trait modifiers (Roenneberg 2007, Van Dongen 2004).
	ChronotypeOffsetHours   float64 // shifts acrophase, larks negative
	IndividualVulnerability float64 // 0.7 resilient .. 1.3 sensitive

	// Pinch detection: conjunctive C-low AND S-high rule.
	PinchCircadianThreshold     float64
	PinchSleepPressureThreshold float64
}

func defaultBorbely() Borbely {
	return Borbely{
		SMax:                        1.0,
		SMin:                        0.0,
		TauRise:                     18.2,
		TauDecay:                    4.2,
		CircadianAmplitude:          0.25,
		CircadianMesor:              0.5,
		CircadianPeriodHours:        24.0,
		CircadianAcrophaseHours:     17.0,
		SecondHarmonicAmplitude:     0.08,
		SecondHarmonicPhase:         20.0,
		WeightCircadian:             0.45,
		WeightHomeostatic:           0.55,
		InteractionExponent:         1.5,
		ScoreOffset:                 35.0,
		ScoreRange:                  65.0,
		InertiaDurationMinutes:      30.0,
		InertiaMaxMagnitude:         0.30,
		TOTLogCoeff:                 0.012,
		TOTQuadraticCoeff:           0.0005,
		TOTInflectionHours:          8.0,
		BaselineSleepNeedHours:      8.0,
		SleepDebtDecayRate:          0.35,
		SleepReboundCoeff:           0.15,
		SleepReboundMaxDebt:         20.0,
		SWADiminishingCoeff:         0.15,
		HypoxiaCoeff:                0.01,
		HypoxiaAltitudeFloorFt:      5000.0,
		DefaultCabinAltitudeFt:      7000.0,
		CircadianDampeningCoeff:     0.25,
		CircadianDampeningMaxDebt:   20.0,
		CircadianDebtDepression:     0.15,
		DebtVulnerabilityCoeff:      0.025,
		DebtVulnerabilityFloor:      0.80,
		ChronotypeOffsetHours:       0.0,
		IndividualVulnerability:     1.0,
		PinchCircadianThreshold:     0.40,
		PinchSleepPressureThreshold: 0.70,
	}
}

// ---------------------------------------------------------------------------
// Sleep quality parameters
// ---------------------------------------------------------------------------

// SleepQuality holds the multiplicative sleep-quality model constants.
// Environment efficiencies calibrated to Signal et al. (2013) PSG data
// (hotel 88%, inflight bunk 70%).
type SleepQuality struct {
	EnvironmentEfficiency map[models.SleepEnvironment]float64

	MaxRealisticSleepHours float64 // biological ceiling, naps exempt

	// Combined multiplicative efficiency bounds.
	EfficiencyFloor   float64
	EfficiencyCeiling float64

	// WOCL overlap bonus (one-sided by design: non-WOCL sleep is never
	// penalized here).
	WOCLFullBoost     float64 // overlap >= WOCLFullHours
	WOCLPartialBoost  float64 // overlap >= WOCLPartialHours
	WOCLFullHours     float64
	WOCLPartialHours  float64
	WOCLMinSleepHours float64 // boost requires a non-trivial sleep

	// Late onset bands (biological clock).
	LateOnsetDeepPenalty float64 // onset 01:00-04:00
	LateOnsetEdgePenalty float64 // onset 00:00-01:00
	WMZStartHour         float64
	WMZEndHour           float64
	WMZCenterHour        float64
	WMZMaxPenalty        float64 // penalty multiplier at the WMZ center

	// Recovery boost after duty (SWA rebound).
	RecoveryFastHours float64
	RecoveryFastBoost float64
	RecoverySlowHours float64
	RecoverySlowBoost float64

	// Time pressure before the next event.
	PressureTightHours  float64
	PressureTightFactor float64
	PressureShortHours  float64
	PressureShortFactor float64
	PressureSomeHours   float64
	PressureSomeFactor  float64

	// Sleep onset latency model (Åkerstedt 2008, Lavie 1986).
	SOLBaseMinutes   float64
	SOLWMZAmplitude  float64
	SOLGateFloor     float64
	SOLPressureFloor float64
	SOLNapPressure   float64
	SOLMinMinutes    float64
	SOLMaxMinutes    float64

	// Nap recovery efficiency by duration band (Brooks & Lack 2006,
	// Tietzel & Lack 2002). Non-monotonic: peaks at 10-20 min.
	NapEffUnder10 float64
	NapEff10to20  float64
	NapEff20to30  float64
	NapEff30to60  float64
	NapEffOver60  float64

	// First-night effect (Agnew 1966, Tamaki 2016).
	FirstNightSOLExtraMinutes  float64
	SecondNightSOLExtraMinutes float64

	// Split sleep by shortest fragment (Jackson 2014, Kosmadopoulos 2017).
	SplitEff4hPlus  float64
	SplitEff3hPlus  float64
	SplitEffUnder3h float64

	// Anticipatory arousal (Kecklund & Åkerstedt 2004).
	EarlyReportHour     float64
	AlarmAnxietyPenalty float64

	// Warning thresholds on effective sleep.
	WarnCriticalHours float64
	WarnHighHours     float64
	WarnModerateHours float64
}

func defaultSleepQuality() SleepQuality {
	return SleepQuality{
		EnvironmentEfficiency: map[models.SleepEnvironment]float64{
			models.EnvHome:         0.95,
			models.EnvCrewHouse:    0.90,
			models.EnvHotel:        0.88,
			models.EnvAirportHotel: 0.85,
			models.EnvCrewRest:     0.70,
		},
		MaxRealisticSleepHours: 10.0,
		EfficiencyFloor:        0.70,
		EfficiencyCeiling:      1.0,

		WOCLFullBoost:     1.05,
		WOCLPartialBoost:  1.02,
		WOCLFullHours:     2.0,
		WOCLPartialHours:  1.0,
		WOCLMinSleepHours: 0.5,

		LateOnsetDeepPenalty: 0.93,
		LateOnsetEdgePenalty: 0.97,
		WMZStartHour:         17,
		WMZEndHour:           21,
		WMZCenterHour:        19,
		WMZMaxPenalty:        0.93,

		RecoveryFastHours: 2.0,
		RecoveryFastBoost: 1.05,
		RecoverySlowHours: 4.0,
		RecoverySlowBoost: 1.03,

		PressureTightHours:  1.5,
		PressureTightFactor: 0.93,
		PressureShortHours:  3.0,
		PressureShortFactor: 0.96,
		PressureSomeHours:   6.0,
		PressureSomeFactor:  0.98,

		SOLBaseMinutes:   15.0,
		SOLWMZAmplitude:  0.8,
		SOLGateFloor:     0.2,
		SOLPressureFloor: 0.3,
		SOLNapPressure:   0.6,
		SOLMinMinutes:    5.0,
		SOLMaxMinutes:    60.0,

		NapEffUnder10: 0.75,
		NapEff10to20:  0.90,
		NapEff20to30:  0.92,
		NapEff30to60:  0.88,
		NapEffOver60:  0.85,

		FirstNightSOLExtraMinutes:  12.0,
		SecondNightSOLExtraMinutes: 5.0,

		SplitEff4hPlus:  0.92,
		SplitEff3hPlus:  0.85,
		SplitEffUnder3h: 0.78,

		EarlyReportHour:     6.0,
		AlarmAnxietyPenalty: 0.97,

		WarnCriticalHours: 5.0,
		WarnHighHours:     6.0,
		WarnModerateHours: 7.0,
	}
}

// ---------------------------------------------------------------------------
// Adaptation, risk, augmented / ULR
// ---------------------------------------------------------------------------

// Adaptation holds the asymmetric circadian shift rates (Waterhouse 2007):
// phase delay (westward) is easier than phase advance (eastward).
type Adaptation struct {
	WestwardHoursPerDay float64
	EastwardHoursPerDay float64
}

// Rate returns the daily adaptation rate for a remaining shift. Negative
// shift means the body clock must delay (westward travel).
func (a Adaptation) Rate(shiftHours float64) float64 {
	if shiftHours < 0 {
		return a.WestwardHoursPerDay
	}
	return a.EastwardHoursPerDay
}

// RiskBand is one performance band of the risk scale.
type RiskBand struct {
	Level models.RiskLevel
	Low   float64 // inclusive
	High  float64 // exclusive, except the top band
}

// RiskThresholds is the ordered risk scale, best to worst.
type RiskThresholds struct {
	Bands []RiskBand
}

// Classify maps a performance score to a risk level.
func (r RiskThresholds) Classify(performance float64) models.RiskLevel {
	for _, b := range r.Bands {
		if performance >= b.Low && (performance < b.High || b.High >= 100) {
			return b.Level
		}
	}
	return models.RiskExtreme
}

// Action returns the operational action for a risk level.
func (r RiskThresholds) Action(level models.RiskLevel) string {
	switch level {
	case models.RiskLow:
		return "None required"
	case models.RiskModerate:
		return "Enhanced monitoring"
	case models.RiskHigh:
		return "Mitigation required"
	case models.RiskCritical:
		return "MANDATORY roster modification"
	default:
		return "UNSAFE - Do not fly"
	}
}

func defaultRiskThresholds() RiskThresholds {
	return bandsAt(75, 65, 55, 45)
}

// bandsAt builds the five-band scale from its four boundaries.
func bandsAt(low, moderate, high, critical float64) RiskThresholds {
	return RiskThresholds{Bands: []RiskBand{
		{models.RiskLow, low, 100},
		{models.RiskModerate, moderate, low},
		{models.RiskHigh, high, moderate},
		{models.RiskCritical, critical, high},
		{models.RiskExtreme, 0, critical},
	}}
}

// Augmented holds augmented-crew FDP extension parameters (in-flight rest
// with additional crew, by certified rest facility class).
type Augmented struct {
	// Max FDP hours by facility class for 3- and 4-pilot crews.
	MaxFDPClass1Crew3 float64
	MaxFDPClass2Crew3 float64
	MaxFDPClass3Crew3 float64
	MaxFDPClass1Crew4 float64
	MaxFDPClass2Crew4 float64
	MaxFDPClass3Crew4 float64

	// Minimum credited in-flight rest per resting pilot.
	MinInflightRestHours float64

	// Sleep inertia buffer required before return to controls.
	ReturnToDeckBufferMinutes float64
}

func defaultAugmented() Augmented {
	return Augmented{
		MaxFDPClass1Crew3:         16.0,
		MaxFDPClass2Crew3:         15.0,
		MaxFDPClass3Crew3:         14.0,
		MaxFDPClass1Crew4:         17.0,
		MaxFDPClass2Crew4:         16.0,
		MaxFDPClass3Crew4:         15.0,
		MinInflightRestHours:      1.5,
		ReturnToDeckBufferMinutes: 20.0,
	}
}

// ULR holds ultra-long-range operation limits (modelled on Qatar FTL 7.18).
type ULR struct {
	MinSectorHours       float64 // a duty is ULR when a sector exceeds this
	MaxFDPHours          float64
	MinPreRestHours      float64 // rest before a ULR duty
	MinPostRestHours     float64
	RequiredCrew         models.CrewComposition
	RequiredFacility     models.RestFacilityClass
	MinTotalInflightRest float64
}

func defaultULR() ULR {
	return ULR{
		MinSectorHours:       11.0,
		MaxFDPHours:          18.0,
		MinPreRestHours:      24.0,
		MinPostRestHours:     36.0,
		RequiredCrew:         models.CrewAugmented4,
		RequiredFacility:     models.RestFacilityClass1,
		MinTotalInflightRest: 4.0,
	}
}

// ---------------------------------------------------------------------------
// Master configuration
// ---------------------------------------------------------------------------

// Config is the immutable master configuration for one analysis run.
type Config struct {
	Preset       Preset
	EASA         EASAFramework
	Borbely      Borbely
	SleepQuality SleepQuality
	Adaptation   Adaptation
	Risk         RiskThresholds
	Augmented    Augmented
	ULR          ULR

	// Timeline sampling cadence in simulated minutes. Explicit so
	// reproducibility can be tested at multiple resolutions.
	SampleIntervalMinutes float64
}

// New builds the configuration for a preset.
func New(p Preset) *Config {
	switch p {
	case PresetConservative:
		return conservative()
	case PresetLiberal:
		return liberal()
	case PresetResearch:
		return research()
	default:
		return Default()
	}
}

// Default returns the operational EASA configuration.
func Default() *Config {
	return &Config{
		Preset:                PresetDefault,
		EASA:                  defaultEASAFramework(),
		Borbely:               defaultBorbely(),
		SleepQuality:          defaultSleepQuality(),
		Adaptation:            Adaptation{WestwardHoursPerDay: 1.5, EastwardHoursPerDay: 1.0},
		Risk:                  defaultRiskThresholds(),
		Augmented:             defaultAugmented(),
		ULR:                   defaultULR(),
		SampleIntervalMinutes: 6.0,
	}
}

// conservative: safety-first analysis. Faster pressure buildup, slower
// recovery, higher baseline need, stricter hotel assumptions, risk bands
// shifted up ~5 points.
func conservative() *Config {
	c := Default()
	c.Preset = PresetConservative
	c.Borbely.TauRise = 16.0
	c.Borbely.TauDecay = 4.8
	c.Borbely.BaselineSleepNeedHours = 8.5
	c.Borbely.InertiaDurationMinutes = 40.0
	c.Borbely.InertiaMaxMagnitude = 0.35
	c.Risk = bandsAt(80, 70, 60, 50)
	c.Adaptation = Adaptation{WestwardHoursPerDay: 1.0, EastwardHoursPerDay: 0.7}
	c.SleepQuality.EnvironmentEfficiency = map[models.SleepEnvironment]float64{
		models.EnvHome:         0.95,
		models.EnvCrewHouse:    0.85,
		models.EnvHotel:        0.80,
		models.EnvAirportHotel: 0.75,
		models.EnvCrewRest:     0.60,
	}
	return c
}

// liberal: experienced-crew / low-risk route analysis. Slower buildup,
// faster recovery, lower baseline need, bands shifted down ~5 points.
func liberal() *Config {
	c := Default()
	c.Preset = PresetLiberal
	c.Borbely.TauRise = 20.0
	c.Borbely.TauDecay = 3.8
	c.Borbely.BaselineSleepNeedHours = 7.5
	c.Borbely.InertiaDurationMinutes = 20.0
	c.Borbely.InertiaMaxMagnitude = 0.25
	c.Risk = bandsAt(70, 60, 50, 40)
	c.Adaptation = Adaptation{WestwardHoursPerDay: 1.8, EastwardHoursPerDay: 1.2}
	return c
}

// research: textbook Borbély parameters for academic comparison, without
// the operational adjustments (50/50 weighting, unit exponent).
func research() *Config {
	c := Default()
	c.Preset = PresetResearch
	c.Borbely.CircadianAmplitude = 0.30
	c.Borbely.WeightCircadian = 0.5
	c.Borbely.WeightHomeostatic = 0.5
	c.Borbely.InteractionExponent = 1.0
	return c
}
