package simulation

import (
	"math"
	"time"

	"github.com/cianfru/aerowake/internal/params"
)

// circadianAt evaluates Process C at a UTC instant for the given body-clock
// offset and current sleep debt.
//
// C is a fundamental 24h cosine peaking at the acrophase (~17:00) plus a
// 12h second harmonic peaking near 20:00 — the term that produces the
// evening Wake Maintenance Zone plateau. Under chronic debt the effective
// amplitude is dampened (flattened day-night rhythm, McCauley 2013).
func circadianAt(b params.Borbely, t time.Time, bioOffset, debt float64) float64 {
	h := bodyClockHour(t, bioOffset)

	damp := 1.0
	if b.CircadianDampeningMaxDebt > 0 {
		capped := math.Min(debt, b.CircadianDampeningMaxDebt)
		damp = 1.0 - b.CircadianDampeningCoeff*capped/b.CircadianDampeningMaxDebt
	}

	fundamental := b.CircadianAmplitude * damp *
		math.Cos(2*math.Pi*(h-b.CircadianAcrophaseHours)/b.CircadianPeriodHours)
	harmonic := b.SecondHarmonicAmplitude * damp *
		math.Cos(2*math.Pi*(h-b.SecondHarmonicPhase)/(b.CircadianPeriodHours/2))

	return b.CircadianMesor + fundamental + harmonic
}

// normalizeCircadian maps a raw C value onto [0, 1] against the undampened
// physiological range, for the weighted performance combination.
func normalizeCircadian(b params.Borbely, c float64) float64 {
	span := b.CircadianAmplitude + b.SecondHarmonicAmplitude
	lo := b.CircadianMesor - span
	return clamp((c-lo)/(2*span), 0, 1)
}

// bodyClockHour converts a UTC instant to the hour of day [0, 24) on the
// pilot's body clock.
func bodyClockHour(t time.Time, bioOffset float64) float64 {
	utc := t.UTC()
	h := float64(utc.Hour()) + float64(utc.Minute())/60.0 + float64(utc.Second())/3600.0
	return math.Mod(math.Mod(h+bioOffset, 24)+24, 24)
}
