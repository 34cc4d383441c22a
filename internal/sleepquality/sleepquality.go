// Package sleepquality evaluates one sleep opportunity into an effective
// sleep value and an itemized quality-factor breakdown. The evaluator is a
// pure function of the window and its schedule context; ten multiplicative
// factors are combined and clamped, then sleep onset latency is subtracted
// from time in bed.
//
// References: Signal et al. (2013) PSG hotel/bunk efficiencies, Brooks &
// Lack (2006) nap bands, Åkerstedt et al. (2008) and Lavie (1986) onset
// latency gates, Agnew et al. (1966) first-night effect, Kecklund &
// Åkerstedt (2004) anticipatory arousal, Jackson et al. (2014) split sleep.
package sleepquality

import (
	"fmt"
	"math"
	"time"

	"github.com/cianfru/aerowake/internal/params"
	"github.com/cianfru/aerowake/pkg/models"
)

// Context supplies the schedule surroundings of a sleep window.
type Context struct {
	// PreviousDutyEnd is the release time of the preceding duty; zero when
	// the window is not post-duty (e.g. start of roster).
	PreviousDutyEnd time.Time

	// NextEvent is the next commitment after the window (usually the next
	// report time).
	NextEvent time.Time

	// BiologicalOffsetHours converts UTC to the pilot's current body-clock
	// time: reference timezone offset plus accumulated adaptation shift.
	BiologicalOffsetHours float64

	// NextReportHour is the body-clock hour of the next duty report.
	// Meaningful only when HasNextReport is set.
	NextReportHour float64
	HasNextReport  bool
}

// Engine computes sleep quality against a fixed configuration.
type Engine struct {
	cfg *params.Config
}

// NewEngine creates an Engine bound to the run configuration.
func NewEngine(cfg *params.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate analyzes one sleep window. Pure: no state is retained between
// calls.
func (e *Engine) Evaluate(w models.SleepWindow, ctx Context) models.SleepQualityAnalysis {
	sq := e.cfg.SleepQuality

	// 1. Raw duration, then the biological ceiling. Naps are exempt from
	// the cap; nobody naps past it anyway.
	totalHours := w.Hours()
	if totalHours < 0 {
		totalHours = 0
	}
	actual := totalHours
	if !w.IsNap && actual > sq.MaxRealisticSleepHours {
		actual = sq.MaxRealisticSleepHours
	}

	// 2. Base efficiency by environment.
	base, ok := sq.EnvironmentEfficiency[w.Environment]
	if !ok {
		base = 0.85
	}

	// 3. Nap duration band. Non-monotonic: 10-20 min is the sweet spot,
	// longer naps trade restoration against slow-wave inertia.
	napModifier := 1.0
	napBand := ""
	if w.IsNap {
		napMinutes := totalHours * 60
		switch {
		case napMinutes <= 10:
			napModifier, napBand = sq.NapEffUnder10, "<=10 min (light)"
		case napMinutes <= 20:
			napModifier, napBand = sq.NapEff10to20, "10-20 min (optimal)"
		case napMinutes <= 30:
			napModifier, napBand = sq.NapEff20to30, "20-30 min (SWS entry)"
		case napMinutes <= 60:
			napModifier, napBand = sq.NapEff30to60, "30-60 min (inertia risk)"
		default:
			napModifier, napBand = sq.NapEffOver60, ">60 min (full cycle)"
		}
		base *= napModifier
	}

	// 4. WOCL overlap bonus. One-sided by design: sleep covering the WOCL
	// concentrates slow-wave sleep and earns a boost; non-WOCL sleep is
	// not penalized.
	woclOverlap := e.woclOverlap(w.StartUTC, w.EndUTC, ctx.BiologicalOffsetHours)
	woclBoost := 1.0
	if actual > sq.WOCLMinSleepHours {
		if woclOverlap >= sq.WOCLFullHours {
			woclBoost = sq.WOCLFullBoost
		} else if woclOverlap >= sq.WOCLPartialHours {
			woclBoost = sq.WOCLPartialBoost
		}
	}

	// 5. Late-onset and Wake Maintenance Zone penalties, combined by
	// taking the stronger (minimum) multiplier.
	startHour := biologicalHour(w.StartUTC, ctx.BiologicalOffsetHours)
	lateOnset := 1.0
	switch {
	case startHour >= 1 && startHour < 4:
		lateOnset = sq.LateOnsetDeepPenalty
	case startHour >= 0 && startHour < 1:
		lateOnset = sq.LateOnsetEdgePenalty
	}
	if startHour >= sq.WMZStartHour && startHour < sq.WMZEndHour {
		dist := math.Abs(startHour-sq.WMZCenterHour) / 2.0
		wmz := sq.WMZMaxPenalty + (1.0-sq.WMZMaxPenalty)*math.Min(1.0, dist)
		lateOnset = math.Min(lateOnset, wmz)
	}

	// 6. Recovery boost: sleep started soon after release rides the
	// post-duty SWA rebound. Naps excluded.
	recovery := 1.0
	hoursSinceDuty := -1.0
	if !ctx.PreviousDutyEnd.IsZero() {
		hoursSinceDuty = w.StartUTC.Sub(ctx.PreviousDutyEnd).Hours()
		if !w.IsNap {
			if hoursSinceDuty < sq.RecoveryFastHours {
				recovery = sq.RecoveryFastBoost
			} else if hoursSinceDuty < sq.RecoverySlowHours {
				recovery = sq.RecoverySlowBoost
			}
		}
	}

	// 7. Time pressure before the next event.
	hoursUntil := ctx.NextEvent.Sub(w.EndUTC).Hours()
	pressure := 1.0
	switch {
	case hoursUntil < sq.PressureTightHours:
		pressure = sq.PressureTightFactor
	case hoursUntil < sq.PressureShortHours:
		pressure = sq.PressureShortFactor
	case hoursUntil < sq.PressureSomeHours:
		pressure = sq.PressureSomeFactor
	}

	// 8. Anticipatory arousal: early report means earlier alarms and
	// lighter sleep.
	alarmAnxiety := 1.0
	if ctx.HasNextReport && ctx.NextReportHour < sq.EarlyReportHour {
		alarmAnxiety = sq.AlarmAnxietyPenalty
	}

	// 9. Split sleep, banded by the shortest fragment.
	splitModifier := 1.0
	if w.IsSplit && !w.IsNap {
		switch {
		case w.SplitMinHours >= 4.0:
			splitModifier = sq.SplitEff4hPlus
		case w.SplitMinHours >= 3.0:
			splitModifier = sq.SplitEff3hPlus
		default:
			splitModifier = sq.SplitEffUnder3h
		}
	}

	// 10. Combine and clamp.
	combined := base * woclBoost * lateOnset * recovery * pressure * alarmAnxiety * splitModifier
	if combined < sq.EfficiencyFloor {
		combined = sq.EfficiencyFloor
	}
	if combined > sq.EfficiencyCeiling {
		combined = sq.EfficiencyCeiling
	}

	// 11. Sleep onset latency, plus the first/second-night extra in a
	// novel environment.
	sol := e.onsetLatency(startHour, actual, w.IsNap)
	firstNightExtra := 0.0
	if !w.IsNap {
		if w.IsFirstNight {
			firstNightExtra = sq.FirstNightSOLExtraMinutes
		} else if w.IsSecondNight {
			firstNightExtra = sq.SecondNightSOLExtraMinutes
		}
	}
	totalSOL := sol + firstNightExtra

	// 12. Effective sleep: SOL reduces time actually asleep, efficiency
	// scales what that time was worth.
	effectiveDuration := actual - totalSOL/60.0
	if effectiveDuration < 0 {
		effectiveDuration = 0
	}
	effective := effectiveDuration * combined

	analysis := models.SleepQualityAnalysis{
		TotalSleepHours:       totalHours,
		ActualSleepHours:      actual,
		EffectiveSleepHours:   effective,
		SleepEfficiency:       combined,
		BaseEfficiency:        base,
		WOCLBoost:             woclBoost,
		LateOnsetPenalty:      lateOnset,
		RecoveryBoost:         recovery,
		TimePressureFactor:    pressure,
		AlarmAnxietyFactor:    alarmAnxiety,
		SplitModifier:         splitModifier,
		NapEfficiencyModifier: napModifier,
		NapDurationBand:       napBand,
		SleepOnsetLatencyMin:  totalSOL,
		FirstNightExtraMin:    firstNightExtra,
		WOCLOverlapHours:      woclOverlap,
		SleepStartHour:        startHour,
		HoursSinceDuty:        hoursSinceDuty,
		HoursUntilDuty:        hoursUntil,
	}
	analysis.Warnings = e.warnings(effective, actual, woclOverlap, hoursUntil, w.IsNap)
	return analysis
}

// onsetLatency estimates minutes to fall asleep:
//
//	SOL = base * circadianGate / max(floor, pressureProxy)
//
// The gate is a cosine peaking at the WMZ center (~19:00, hardest) and
// troughing near the WOCL (easiest). The pressure proxy reads planned
// duration: longer planned sleep implies higher homeostatic drive and a
// shorter latency.
func (e *Engine) onsetLatency(startHour, plannedHours float64, isNap bool) float64 {
	sq := e.cfg.SleepQuality

	gateAngle := 2 * math.Pi * (startHour - sq.WMZCenterHour) / 24.0
	gate := 1.0 + sq.SOLWMZAmplitude*math.Cos(gateAngle)
	if gate < sq.SOLGateFloor {
		gate = sq.SOLGateFloor
	}

	proxy := sq.SOLNapPressure
	if !isNap {
		proxy = plannedHours / 8.0
		if proxy < sq.SOLPressureFloor {
			proxy = sq.SOLPressureFloor
		}
		if proxy > 1.5 {
			proxy = 1.5
		}
	}

	sol := sq.SOLBaseMinutes * gate / math.Max(sq.SOLPressureFloor, proxy)
	if sol < sq.SOLMinMinutes {
		sol = sq.SOLMinMinutes
	}
	if sol > sq.SOLMaxMinutes {
		sol = sq.SOLMaxMinutes
	}
	return sol
}

// woclOverlap returns hours of the window falling inside the WOCL
// (02:00-06:00 body-clock time), handling windows that cross midnight.
func (e *Engine) woclOverlap(start, end time.Time, bioOffset float64) float64 {
	woclStart := e.cfg.EASA.WOCLStartHour
	woclEnd := e.cfg.EASA.WOCLEndHour

	startHour := biologicalHour(start, bioOffset)
	endHour := startHour + end.Sub(start).Hours()

	// Walk at most two biological days; a capped sleep never spans more.
	overlap := 0.0
	for day := 0.0; day < 48; day += 24 {
		lo := math.Max(startHour, woclStart+day)
		hi := math.Min(endHour, woclEnd+day)
		if hi > lo {
			overlap += hi - lo
		}
	}
	return overlap
}

// warnings produces the graduated advisories for this window.
func (e *Engine) warnings(effective, actual, woclOverlap, hoursUntil float64, isNap bool) []models.SleepWarning {
	sq := e.cfg.SleepQuality
	var out []models.SleepWarning

	if !isNap {
		switch {
		case effective < sq.WarnCriticalHours:
			out = append(out, models.SleepWarning{
				Severity:       models.SeverityCritical,
				Message:        fmt.Sprintf("Critically insufficient sleep: %.1fh effective", effective),
				Recommendation: "Consider fatigue mitigation or duty adjustment",
			})
		case effective < sq.WarnHighHours:
			out = append(out, models.SleepWarning{
				Severity:       models.SeverityHigh,
				Message:        fmt.Sprintf("Insufficient sleep: %.1fh effective", effective),
				Recommendation: "Extra vigilance required on next duty",
			})
		case effective < sq.WarnModerateHours:
			out = append(out, models.SleepWarning{
				Severity:       models.SeverityModerate,
				Message:        fmt.Sprintf("Below optimal sleep: %.1fh effective", effective),
				Recommendation: "Monitor fatigue levels during duty",
			})
		}
	}

	if woclOverlap > 2.5 && effective < 6 {
		out = append(out, models.SleepWarning{
			Severity:       models.SeverityInfo,
			Message:        fmt.Sprintf("%.1fh sleep during WOCL may reduce quality", woclOverlap),
			Recommendation: "Circadian misalignment detected",
		})
	}

	if hoursUntil < 2 && actual < 5 {
		out = append(out, models.SleepWarning{
			Severity:       models.SeverityCritical,
			Message:        "Very short turnaround with minimal sleep",
			Recommendation: "Report fatigue concerns to operations",
		})
	}

	return out
}

// biologicalHour maps a UTC instant to the body-clock hour of day [0, 24).
func biologicalHour(t time.Time, offsetHours float64) float64 {
	utc := t.UTC()
	h := float64(utc.Hour()) + float64(utc.Minute())/60.0 + float64(utc.Second())/3600.0
	return math.Mod(math.Mod(h+offsetHours, 24)+24, 24)
}
