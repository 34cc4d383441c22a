package simulation

import (
	"math"
	"time"

	"github.com/cianfru/aerowake/internal/params"
	"github.com/cianfru/aerowake/pkg/models"
)

// State is the evolving physiological state threaded through the roster
// walk. One instance per analysis run; the state at the end of duty N is
// the initial condition for duty N+1.
type State struct {
	// S is the homeostatic sleep pressure, bounded [SMin, SMax].
	S float64

	// Debt is the accumulated sleep shortfall in hours.
	Debt float64

	// PhaseShift is the body clock's offset from the reference timezone,
	// in hours. Nonzero while adapting after timezone travel.
	PhaseShift float64

	// TargetShift is where adaptation is heading: the offset between the
	// current operating base and the reference timezone.
	TargetShift float64

	// RefOffset / RefTimezone describe the home-base clock the body is
	// anchored to.
	RefOffset   float64
	RefTimezone string

	// LastWake is when the pilot last woke; drives sleep inertia and
	// pre-duty awake time.
	LastWake time.Time

	// RecentSleep is a short history of effective sleep hours per night,
	// newest last, for rebound context.
	RecentSleep []float64
}

// newState builds the initial state for a roster, optionally seeded from a
// prior month's snapshot.
func newState(home models.Airport, startUTC time.Time, prior *models.StateSnapshot) *State {
	st := &State{
		S:           0.30,
		RefOffset:   home.UTCOffsetHours,
		RefTimezone: home.Timezone,
		LastWake:    startUTC,
	}
	if prior != nil {
		st.S = clamp(prior.SleepPressure, 0, 1)
		st.Debt = math.Max(0, prior.SleepDebtHours)
		st.PhaseShift = prior.PhaseShiftHours
		if !prior.LastWakeUTC.IsZero() {
			st.LastWake = prior.LastWakeUTC
		}
	}
	return st
}

// Snapshot serializes the state for cross-month chaining.
func (st *State) Snapshot(asOf time.Time) models.StateSnapshot {
	return models.StateSnapshot{
		SleepPressure:     st.S,
		SleepDebtHours:    st.Debt,
		PhaseShiftHours:   st.PhaseShift,
		ReferenceTimezone: st.RefTimezone,
		ReferenceOffset:   st.RefOffset,
		LastWakeUTC:       st.LastWake,
		AsOfUTC:           asOf,
	}
}

// BiologicalOffset converts UTC to body-clock time: reference offset plus
// the not-yet-adapted phase shift and chronotype.
func (st *State) BiologicalOffset(b params.Borbely) float64 {
	return st.RefOffset + st.PhaseShift + b.ChronotypeOffsetHours
}

// ---------------------------------------------------------------------------
// Integration steps
// ---------------------------------------------------------------------------

// stepAwake advances S toward SMax over dt hours (exponential buildup with
// time constant TauRise) and moves circadian adaptation.
func (st *State) stepAwake(b params.Borbely, a params.Adaptation, dtHours float64) {
	if dtHours <= 0 {
		return
	}
	st.S = b.SMax + (st.S-b.SMax)*math.Exp(-dtHours/b.TauRise)
	st.S = clamp(st.S, b.SMin, b.SMax)
	st.adapt(a, dtHours)
}

// stepAsleep advances S toward SMin over dt hours of sleep that began
// elapsedHours ago. The decay constant stretches as sleep progresses
// (slow-wave-rich early sleep recovers fastest) and the amount recovered
// is scaled by the window's sleep quality, not its raw duration.
func (st *State) stepAsleep(b params.Borbely, a params.Adaptation, dtHours, elapsedHours, qualityRatio float64) {
	if dtHours <= 0 {
		return
	}
	tau := b.TauDecay * (1 + b.SWADiminishingCoeff*elapsedHours/8.0)
	next := b.SMin + (st.S-b.SMin)*math.Exp(-dtHours/tau)
	recovered := (st.S - next) * clamp(qualityRatio, 0, 1)
	st.S = clamp(st.S-recovered, b.SMin, b.SMax)
	st.adapt(a, dtHours)
}

// adapt moves the phase shift toward the target at the asymmetric daily
// rate: westward delays adapt faster than eastward advances.
func (st *State) adapt(a params.Adaptation, dtHours float64) {
	remaining := st.TargetShift - st.PhaseShift
	if remaining == 0 {
		return
	}
	rate := a.Rate(remaining) / 24.0 * dtHours
	if math.Abs(remaining) <= rate {
		st.PhaseShift = st.TargetShift
		return
	}
	if remaining > 0 {
		st.PhaseShift += rate
	} else {
		st.PhaseShift -= rate
	}
}

// settleDebt applies one sleep window's raw duration against the baseline
// need: shortfall accrues, a full night decays existing debt exponentially.
// Debt tracks time in bed; quality feeds Process S recovery separately.
func (st *State) settleDebt(b params.Borbely, rawHours float64, isNap bool) {
	if isNap {
		return
	}
	shortfall := b.BaselineSleepNeedHours - rawHours
	if shortfall > 0 {
		st.Debt += shortfall
	} else {
		st.Debt *= math.Exp(-b.SleepDebtDecayRate)
	}
	if st.Debt < 0 {
		st.Debt = 0
	}
}

// recordSleep appends an effective-sleep value to the bounded history.
func (st *State) recordSleep(effectiveHours float64) {
	st.RecentSleep = append(st.RecentSleep, effectiveHours)
	if len(st.RecentSleep) > 7 {
		st.RecentSleep = st.RecentSleep[len(st.RecentSleep)-7:]
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
