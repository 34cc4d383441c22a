package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cianfru/aerowake/pkg/models"
)

func TestParsePreset(t *testing.T) {
	for _, tc := range []struct {
		in  string
		out Preset
		ok  bool
	}{
		{"default", PresetDefault, true},
		{"conservative", PresetConservative, true},
		{"liberal", PresetLiberal, true},
		{"research", PresetResearch, true},
		{"strict", 0, false},
	} {
		got, ok := ParsePreset(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if ok {
			assert.Equal(t, tc.out, got, tc.in)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 2.0, cfg.EASA.WOCLStartHour)
	assert.Equal(t, 6.0, cfg.EASA.WOCLEndHour)

	// A perfect score maps to 100.
	assert.InDelta(t, 100.0, cfg.Borbely.ScoreOffset+cfg.Borbely.ScoreRange, 1e-9)

	// The operational 55/45 split, not the textbook 50/50.
	assert.InDelta(t, 0.55, cfg.Borbely.WeightHomeostatic, 1e-9)
	assert.InDelta(t, 0.45, cfg.Borbely.WeightCircadian, 1e-9)
	assert.InDelta(t, 1.0, cfg.Borbely.WeightHomeostatic+cfg.Borbely.WeightCircadian, 1e-9)

	// The debt depression must outpace the trough lift from amplitude
	// dampening, which is half the dampening coefficient in normalized
	// units.
	assert.Greater(t, cfg.Borbely.CircadianDebtDepression, cfg.Borbely.CircadianDampeningCoeff/2)

	assert.Greater(t, cfg.SampleIntervalMinutes, 0.0)
}

func TestPresetsAreLoadBearing(t *testing.T) {
	def := New(PresetDefault)
	cons := New(PresetConservative)
	lib := New(PresetLiberal)
	res := New(PresetResearch)

	// Conservative: faster buildup, slower recovery, more sleep needed.
	assert.Less(t, cons.Borbely.TauRise, def.Borbely.TauRise)
	assert.Greater(t, cons.Borbely.TauDecay, def.Borbely.TauDecay)
	assert.Greater(t, cons.Borbely.BaselineSleepNeedHours, def.Borbely.BaselineSleepNeedHours)

	// Liberal is the mirror image.
	assert.Greater(t, lib.Borbely.TauRise, def.Borbely.TauRise)
	assert.Less(t, lib.Borbely.TauDecay, def.Borbely.TauDecay)
	assert.Less(t, lib.Borbely.BaselineSleepNeedHours, def.Borbely.BaselineSleepNeedHours)

	// Research restores the textbook weighting.
	assert.InDelta(t, 0.5, res.Borbely.WeightCircadian, 1e-9)
	assert.InDelta(t, 1.0, res.Borbely.InteractionExponent, 1e-9)

	// Conservative hotels assumed worse than liberal's.
	assert.Less(t,
		cons.SleepQuality.EnvironmentEfficiency[models.EnvHotel],
		lib.SleepQuality.EnvironmentEfficiency[models.EnvHotel])
}

func TestRiskClassify(t *testing.T) {
	r := Default().Risk
	for _, tc := range []struct {
		perf float64
		want models.RiskLevel
	}{
		{100, models.RiskLow},
		{75, models.RiskLow},
		{74.9, models.RiskModerate},
		{65, models.RiskModerate},
		{60, models.RiskHigh},
		{50, models.RiskCritical},
		{45, models.RiskCritical},
		{44.9, models.RiskExtreme},
		{0, models.RiskExtreme},
	} {
		assert.Equal(t, tc.want, r.Classify(tc.perf), "perf %.1f", tc.perf)
	}
}

func TestRiskBandsShiftWithPreset(t *testing.T) {
	// The same score reads one band stricter under conservative and one
	// band looser under liberal.
	assert.Equal(t, models.RiskLow, Default().Risk.Classify(77))
	assert.Equal(t, models.RiskModerate, New(PresetConservative).Risk.Classify(77))
	assert.Equal(t, models.RiskLow, New(PresetLiberal).Risk.Classify(77))

	assert.Equal(t, models.RiskCritical, Default().Risk.Classify(52))
	assert.Equal(t, models.RiskCritical, New(PresetConservative).Risk.Classify(52))
	assert.Equal(t, models.RiskHigh, New(PresetLiberal).Risk.Classify(52))
}

func TestRiskAction(t *testing.T) {
	r := Default().Risk
	assert.Equal(t, "None required", r.Action(models.RiskLow))
	assert.Contains(t, r.Action(models.RiskCritical), "MANDATORY")
	assert.Contains(t, r.Action(models.RiskExtreme), "UNSAFE")
}

func TestAdaptationRateAsymmetry(t *testing.T) {
	a := Default().Adaptation
	require.Greater(t, a.WestwardHoursPerDay, a.EastwardHoursPerDay)

	// Negative remaining shift means delaying (westward).
	assert.Equal(t, a.WestwardHoursPerDay, a.Rate(-5))
	assert.Equal(t, a.EastwardHoursPerDay, a.Rate(5))
}

func TestEnvironmentEfficiencyOrdering(t *testing.T) {
	eff := Default().SleepQuality.EnvironmentEfficiency
	assert.Greater(t, eff[models.EnvHome], eff[models.EnvHotel])
	assert.Greater(t, eff[models.EnvHotel], eff[models.EnvAirportHotel])
	assert.Greater(t, eff[models.EnvAirportHotel], eff[models.EnvCrewRest])
}

func TestULRDefaults(t *testing.T) {
	ulr := Default().ULR
	assert.Equal(t, models.CrewAugmented4, ulr.RequiredCrew)
	assert.Equal(t, models.RestFacilityClass1, ulr.RequiredFacility)
	assert.Greater(t, ulr.MaxFDPHours, Default().EASA.MaxFDPBasicHours)
}
