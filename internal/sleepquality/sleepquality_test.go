package sleepquality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cianfru/aerowake/internal/params"
	"github.com/cianfru/aerowake/pkg/models"
)

func testEngine() *Engine {
	return NewEngine(params.Default())
}

func window(start time.Time, hours float64, env models.SleepEnvironment) models.SleepWindow {
	return models.SleepWindow{
		StartUTC:    start,
		EndUTC:      start.Add(time.Duration(hours * float64(time.Hour))),
		Environment: env,
	}
}

// ---------------------------------------------------------------------------
// Core invariants
// ---------------------------------------------------------------------------

func TestEffectiveNeverExceedsActual(t *testing.T) {
	e := testEngine()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, startHour := range []int{0, 4, 9, 14, 19, 22} {
		for _, hours := range []float64{0.25, 2, 5, 8, 10, 14} {
			w := window(base.Add(time.Duration(startHour)*time.Hour), hours, models.EnvHotel)
			qa := e.Evaluate(w, Context{NextEvent: w.EndUTC.Add(12 * time.Hour)})

			assert.LessOrEqual(t, qa.EffectiveSleepHours, qa.ActualSleepHours,
				"start %d len %.2f", startHour, hours)
			assert.GreaterOrEqual(t, qa.SleepEfficiency, 0.70)
			assert.LessOrEqual(t, qa.SleepEfficiency, 1.0)
		}
	}
}

func TestBiologicalCeiling(t *testing.T) {
	e := testEngine()
	w := window(time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC), 14, models.EnvHome)
	qa := e.Evaluate(w, Context{NextEvent: w.EndUTC.Add(6 * time.Hour)})

	assert.InDelta(t, 14.0, qa.TotalSleepHours, 1e-9)
	assert.InDelta(t, 10.0, qa.ActualSleepHours, 1e-9)
}

func TestOnsetLatencyBounds(t *testing.T) {
	e := testEngine()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for hour := 0; hour < 24; hour++ {
		w := window(base.Add(time.Duration(hour)*time.Hour), 8, models.EnvHotel)
		qa := e.Evaluate(w, Context{NextEvent: w.EndUTC.Add(12 * time.Hour)})
		assert.GreaterOrEqual(t, qa.SleepOnsetLatencyMin, 5.0, "hour %d", hour)
		assert.LessOrEqual(t, qa.SleepOnsetLatencyMin, 60.0, "hour %d", hour)
	}
}

// ---------------------------------------------------------------------------
// Nap bands
// ---------------------------------------------------------------------------

func TestNapBandsNonMonotonic(t *testing.T) {
	e := testEngine()
	start := time.Date(2026, 2, 1, 14, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		minutes float64
		want    float64
	}{
		{8, 0.75},
		{15, 0.90},
		{25, 0.92},
		{45, 0.88},
		{90, 0.85},
	} {
		w := models.SleepWindow{
			StartUTC:    start,
			EndUTC:      start.Add(time.Duration(tc.minutes * float64(time.Minute))),
			Environment: models.EnvHome,
			IsNap:       true,
		}
		qa := e.Evaluate(w, Context{NextEvent: w.EndUTC.Add(4 * time.Hour)})
		assert.InDelta(t, tc.want, qa.NapEfficiencyModifier, 1e-9, "%.0f min", tc.minutes)
	}
}

// ---------------------------------------------------------------------------
// WOCL boost
// ---------------------------------------------------------------------------

func TestWOCLBoostIsOneSided(t *testing.T) {
	e := testEngine()

	// Full night covering the WOCL earns the full boost.
	night := window(time.Date(2026, 2, 1, 23, 0, 0, 0, time.UTC), 8, models.EnvHome)
	qa := e.Evaluate(night, Context{NextEvent: night.EndUTC.Add(12 * time.Hour)})
	assert.InDelta(t, 1.05, qa.WOCLBoost, 1e-9)
	assert.InDelta(t, 4.0, qa.WOCLOverlapHours, 1e-9)

	// Daytime sleep missing the WOCL entirely: no boost, but no penalty
	// from this factor either.
	day := window(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), 8, models.EnvHome)
	qa = e.Evaluate(day, Context{NextEvent: day.EndUTC.Add(12 * time.Hour)})
	assert.InDelta(t, 1.0, qa.WOCLBoost, 1e-9)
	assert.InDelta(t, 0.0, qa.WOCLOverlapHours, 1e-9)
}

func TestWOCLOverlapRespectsBodyClock(t *testing.T) {
	e := testEngine()

	// 23:00-07:00 UTC at a +3 base is 02:00-10:00 biological: full
	// WOCL coverage despite the UTC hours.
	w := window(time.Date(2026, 2, 1, 23, 0, 0, 0, time.UTC), 8, models.EnvHome)
	qa := e.Evaluate(w, Context{
		NextEvent:             w.EndUTC.Add(12 * time.Hour),
		BiologicalOffsetHours: 3,
	})
	assert.InDelta(t, 4.0, qa.WOCLOverlapHours, 1e-9)
}

// ---------------------------------------------------------------------------
// Context factors
// ---------------------------------------------------------------------------

func TestEnvironmentOrdering(t *testing.T) {
	e := testEngine()
	start := time.Date(2026, 2, 1, 22, 0, 0, 0, time.UTC)
	ctx := Context{NextEvent: start.Add(20 * time.Hour)}

	home := e.Evaluate(window(start, 8, models.EnvHome), ctx)
	hotel := e.Evaluate(window(start, 8, models.EnvHotel), ctx)
	bunk := e.Evaluate(window(start, 8, models.EnvCrewRest), ctx)

	assert.Greater(t, home.EffectiveSleepHours, hotel.EffectiveSleepHours)
	assert.Greater(t, hotel.EffectiveSleepHours, bunk.EffectiveSleepHours)
}

func TestTimePressure(t *testing.T) {
	e := testEngine()
	start := time.Date(2026, 2, 1, 22, 0, 0, 0, time.UTC)
	w := window(start, 8, models.EnvHotel)

	relaxed := e.Evaluate(w, Context{NextEvent: w.EndUTC.Add(12 * time.Hour)})
	tight := e.Evaluate(w, Context{NextEvent: w.EndUTC.Add(1 * time.Hour)})

	assert.InDelta(t, 1.0, relaxed.TimePressureFactor, 1e-9)
	assert.InDelta(t, 0.93, tight.TimePressureFactor, 1e-9)
	assert.Less(t, tight.EffectiveSleepHours, relaxed.EffectiveSleepHours)
}

func TestAlarmAnxietyBeforeEarlyReport(t *testing.T) {
	e := testEngine()
	start := time.Date(2026, 2, 1, 21, 0, 0, 0, time.UTC)
	w := window(start, 7, models.EnvHome)

	early := e.Evaluate(w, Context{
		NextEvent:      w.EndUTC.Add(2 * time.Hour),
		NextReportHour: 5.0,
		HasNextReport:  true,
	})
	normal := e.Evaluate(w, Context{
		NextEvent:      w.EndUTC.Add(2 * time.Hour),
		NextReportHour: 10.0,
		HasNextReport:  true,
	})

	assert.InDelta(t, 0.97, early.AlarmAnxietyFactor, 1e-9)
	assert.InDelta(t, 1.0, normal.AlarmAnxietyFactor, 1e-9)
}

func TestFirstNightEffect(t *testing.T) {
	e := testEngine()
	start := time.Date(2026, 2, 1, 22, 0, 0, 0, time.UTC)
	ctx := Context{NextEvent: start.Add(20 * time.Hour)}

	base := window(start, 8, models.EnvHotel)
	first := base
	first.IsFirstNight = true
	second := base
	second.IsSecondNight = true

	qaBase := e.Evaluate(base, ctx)
	qaFirst := e.Evaluate(first, ctx)
	qaSecond := e.Evaluate(second, ctx)

	assert.InDelta(t, qaBase.SleepOnsetLatencyMin+12, qaFirst.SleepOnsetLatencyMin, 1e-9)
	assert.InDelta(t, qaBase.SleepOnsetLatencyMin+5, qaSecond.SleepOnsetLatencyMin, 1e-9)
	assert.Less(t, qaFirst.EffectiveSleepHours, qaSecond.EffectiveSleepHours)
	assert.Less(t, qaSecond.EffectiveSleepHours, qaBase.EffectiveSleepHours)
}

func TestSplitSleepBands(t *testing.T) {
	e := testEngine()
	start := time.Date(2026, 2, 1, 22, 0, 0, 0, time.UTC)
	ctx := Context{NextEvent: start.Add(20 * time.Hour)}

	for _, tc := range []struct {
		minHours float64
		want     float64
	}{
		{4.5, 0.92},
		{3.5, 0.85},
		{2.0, 0.78},
	} {
		w := window(start, 6, models.EnvHotel)
		w.IsSplit = true
		w.SplitMinHours = tc.minHours
		qa := e.Evaluate(w, ctx)
		assert.InDelta(t, tc.want, qa.SplitModifier, 1e-9, "min %.1fh", tc.minHours)
	}
}

// ---------------------------------------------------------------------------
// Warnings
// ---------------------------------------------------------------------------

func TestWarnings(t *testing.T) {
	e := testEngine()

	// 3h of sleep lands well under the critical threshold.
	short := window(time.Date(2026, 2, 1, 23, 0, 0, 0, time.UTC), 3, models.EnvHotel)
	qa := e.Evaluate(short, Context{NextEvent: short.EndUTC.Add(12 * time.Hour)})
	require.NotEmpty(t, qa.Warnings)
	assert.Equal(t, models.SeverityCritical, qa.Warnings[0].Severity)

	// Short sleep straight into a short turnaround adds the turnaround
	// warning.
	rushed := window(time.Date(2026, 2, 1, 23, 0, 0, 0, time.UTC), 3, models.EnvHotel)
	qa = e.Evaluate(rushed, Context{NextEvent: rushed.EndUTC.Add(1 * time.Hour)})
	found := false
	for _, w := range qa.Warnings {
		if w.Severity == models.SeverityCritical && w.Message == "Very short turnaround with minimal sleep" {
			found = true
		}
	}
	assert.True(t, found)

	// A full night draws no warnings.
	good := window(time.Date(2026, 2, 1, 21, 0, 0, 0, time.UTC), 9, models.EnvHome)
	qa = e.Evaluate(good, Context{NextEvent: good.EndUTC.Add(12 * time.Hour)})
	assert.Empty(t, qa.Warnings)
}
