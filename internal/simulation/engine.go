// Package simulation implements the Borbély two-process fatigue engine: a
// continuous-time walk over one roster month, alternating awake and asleep
// regimes, sampling a performance timeline per duty and folding the results
// into a monthly aggregate.
//
// The walk is inherently serial: the physiological state at the end of duty
// N is the initial condition for duty N+1. Parallelism belongs across
// independent rosters, each with its own Config and State.
package simulation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cianfru/aerowake/internal/easa"
	"github.com/cianfru/aerowake/internal/params"
	"github.com/cianfru/aerowake/internal/sleepplan"
	"github.com/cianfru/aerowake/internal/sleepquality"
	"github.com/cianfru/aerowake/internal/workload"
	"github.com/cianfru/aerowake/pkg/models"
)

// ErrEmptyRoster is the only fatal input error: with no duties there is
// nothing to simulate. Everything else degrades to per-duty warnings.
var ErrEmptyRoster = errors.New("simulation: roster has no duties")

// Rest facility quality relative to a class 1 bunk.
const (
	facilityClass2Factor = 0.93
	facilityClass3Factor = 0.85
	maxInflightRestHours = 4.5
	leadInHours          = 16.0 // awake span assumed before the first event
	implausibleDutyHours = 20.0
	clampedDutyHours     = 16.0
)

// Simulator runs fatigue analyses against one immutable configuration.
// Safe for concurrent use across rosters: all mutable state lives in the
// per-run State.
type Simulator struct {
	cfg     *params.Config
	sleep   *sleepquality.Engine
	load    *workload.Model
	planner *sleepplan.Planner
}

// New creates a Simulator for the given configuration.
func New(cfg *params.Config) *Simulator {
	return &Simulator{
		cfg:     cfg,
		sleep:   sleepquality.NewEngine(cfg),
		load:    workload.NewModel(workload.DefaultParameters()),
		planner: sleepplan.New(cfg),
	}
}

// SimulateRoster analyzes a roster from a rested baseline.
func (s *Simulator) SimulateRoster(r models.Roster) (*models.MonthlyAnalysis, error) {
	return s.SimulateRosterFrom(r, nil)
}

// SimulateRosterFrom analyzes a roster, optionally seeding the
// physiological state from a prior month's snapshot to chain fatigue
// continuity across months.
func (s *Simulator) SimulateRosterFrom(r models.Roster, prior *models.StateSnapshot) (*models.MonthlyAnalysis, error) {
	if len(r.Duties) == 0 {
		return nil, ErrEmptyRoster
	}

	duties := make([]models.Duty, len(r.Duties))
	copy(duties, r.Duties)
	sort.SliceStable(duties, func(i, j int) bool {
		return duties[i].ReportUTC.Before(duties[j].ReportUTC)
	})
	for i := range duties {
		duties[i].IsULR = easa.DetectULR(duties[i], s.cfg.ULR)
	}

	windows := r.SleepWindows
	if len(windows) == 0 {
		initialDebt := 0.0
		if prior != nil {
			initialDebt = prior.SleepDebtHours
		}
		windows = s.planner.Plan(models.Roster{
			PilotID: r.PilotID, Month: r.Month, HomeBase: r.HomeBase, Duties: duties,
		}, initialDebt)
	}
	windows = append([]models.SleepWindow(nil), windows...)
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].StartUTC.Before(windows[j].StartUTC)
	})

	simStart := duties[0].ReportUTC.Add(-time.Duration(leadInHours * float64(time.Hour)))
	if len(windows) > 0 && windows[0].StartUTC.Before(simStart) {
		simStart = windows[0].StartUTC
	}
	st := newState(r.HomeBase, simStart, prior)

	analysis := &models.MonthlyAnalysis{
		PilotID:  r.PilotID,
		Month:    r.Month,
		HomeBase: r.HomeBase.Code,
	}

	cursor := simStart
	wi := 0
	maxDebt := st.Debt
	totalEffective, nightCount := 0.0, 0
	var sleepLog []sleptWindow // for prior-sleep lookback per duty

	var prevRelease time.Time
	for di := range duties {
		d := duties[di]

		// Sleep windows before this duty's report.
		var mainQA *models.SleepQualityAnalysis
		for wi < len(windows) && windows[wi].StartUTC.Before(d.ReportUTC) {
			w := windows[wi]
			wi++
			if w.EndUTC.After(d.ReportUTC) {
				w.EndUTC = d.ReportUTC // planner overlap, clip to report
			}
			if !w.EndUTC.After(w.StartUTC) {
				continue
			}

			s.advanceAwake(st, cursor, w.StartUTC)

			qa := s.sleep.Evaluate(w, sleepquality.Context{
				PreviousDutyEnd:       prevRelease,
				NextEvent:             d.ReportUTC,
				BiologicalOffsetHours: st.BiologicalOffset(s.cfg.Borbely),
				NextReportHour:        bodyClockHour(d.ReportUTC, st.RefOffset+st.PhaseShift),
				HasNextReport:         true,
			})
			s.advanceAsleep(st, w, qa)
			cursor = w.EndUTC

			sleepLog = append(sleepLog, sleptWindow{end: w.EndUTC, effective: qa.EffectiveSleepHours})
			if !w.IsNap {
				copied := qa
				mainQA = &copied
				totalEffective += qa.EffectiveSleepHours
				nightCount++
			}
		}

		s.advanceAwake(st, cursor, d.ReportUTC)
		if st.Debt > maxDebt {
			maxDebt = st.Debt
		}

		priorSleep := effectiveSleepSince(sleepLog, d.ReportUTC.Add(-24*time.Hour))
		preRest := -1.0
		if !prevRelease.IsZero() {
			preRest = d.ReportUTC.Sub(prevRelease).Hours()
		}
		postRest := -1.0
		if di+1 < len(duties) {
			postRest = duties[di+1].ReportUTC.Sub(correctedRelease(d)).Hours()
		}

		dt := s.simulateDuty(st, d, mainQA, priorSleep, preRest, postRest)
		analysis.Duties = append(analysis.Duties, dt)
		analysis.BodyClock = append(analysis.BodyClock, models.BodyClockPoint{
			UTC:               d.ReportUTC,
			PhaseShiftHours:   st.PhaseShift,
			ReferenceTimezone: st.RefTimezone,
		})

		// Adaptation now heads for the timezone the duty left the pilot
		// in; the shift accrues through the following rest period.
		if arr, ok := d.LastArrival(); ok {
			st.TargetShift = arr.UTCOffsetHours - st.RefOffset
		}

		cursor = laterOf(d.ReportUTC, correctedRelease(d))
		prevRelease = cursor
		if st.Debt > maxDebt {
			maxDebt = st.Debt
		}
	}

	// Trailing windows advance the end-state for next month's chaining.
	for ; wi < len(windows); wi++ {
		w := windows[wi]
		if !w.EndUTC.After(w.StartUTC) || w.EndUTC.Before(cursor) {
			continue
		}
		s.advanceAwake(st, cursor, w.StartUTC)
		qa := s.sleep.Evaluate(w, sleepquality.Context{
			PreviousDutyEnd:       prevRelease,
			NextEvent:             w.EndUTC.Add(12 * time.Hour),
			BiologicalOffsetHours: st.BiologicalOffset(s.cfg.Borbely),
		})
		s.advanceAsleep(st, w, qa)
		cursor = w.EndUTC
		if !w.IsNap {
			totalEffective += qa.EffectiveSleepHours
			nightCount++
		}
	}

	s.aggregate(analysis, duties, totalEffective, nightCount, maxDebt)
	analysis.EndState = st.Snapshot(cursor)
	return analysis, nil
}

type sleptWindow struct {
	end       time.Time
	effective float64
}

func effectiveSleepSince(log []sleptWindow, since time.Time) float64 {
	total := 0.0
	for _, w := range log {
		if w.end.After(since) {
			total += w.effective
		}
	}
	return total
}

// ---------------------------------------------------------------------------
// State advancement between duties
// ---------------------------------------------------------------------------

// advanceAwake walks the state through an awake stretch in hourly steps so
// circadian adaptation accrues incrementally.
func (s *Simulator) advanceAwake(st *State, from, to time.Time) {
	if !to.After(from) {
		return
	}
	remaining := to.Sub(from).Hours()
	for remaining > 0 {
		dt := math.Min(remaining, 1.0)
		st.stepAwake(s.cfg.Borbely, s.cfg.Adaptation, dt)
		remaining -= dt
	}
}

// advanceAsleep walks the state through one sleep window. The recovery per
// step is scaled by the window's quality ratio and the decay constant
// stretches with elapsed sleep.
func (s *Simulator) advanceAsleep(st *State, w models.SleepWindow, qa models.SleepQualityAnalysis) {
	qr := 1.0
	if qa.ActualSleepHours > 0 {
		qr = qa.EffectiveSleepHours / qa.ActualSleepHours
	}
	total := qa.ActualSleepHours
	elapsed := 0.0
	for elapsed < total {
		dt := math.Min(total-elapsed, 0.5)
		st.stepAsleep(s.cfg.Borbely, s.cfg.Adaptation, dt, elapsed, qr)
		elapsed += dt
	}
	// Time in bed beyond the biological cap passes awake-neutral: no
	// recovery, no buildup.
	st.settleDebt(s.cfg.Borbely, qa.ActualSleepHours, w.IsNap)
	st.recordSleep(qa.EffectiveSleepHours)
	st.LastWake = w.EndUTC
}

// ---------------------------------------------------------------------------
// Duty simulation
// ---------------------------------------------------------------------------

// simSpan is a phase span annotated with the asleep regime for in-flight
// rest blocks.
type simSpan struct {
	phaseSpan
	asleep    bool
	quality   float64 // effective/actual ratio while asleep
	restIndex int     // index into the duty's rest blocks, -1 otherwise
}

func (s *Simulator) simulateDuty(st *State, d models.Duty, mainQA *models.SleepQualityAnalysis, priorSleep, preRestHours, postRestHours float64) models.DutyTimeline {
	b := s.cfg.Borbely

	dt := models.DutyTimeline{
		DutyID:            d.ID,
		Date:              d.Date,
		Type:              d.Type,
		SleepDebt:         st.Debt,
		PriorSleep:        priorSleep,
		PreDutyAwakeHours: math.Max(0, d.ReportUTC.Sub(st.LastWake).Hours()),
		CircadianShift:    st.PhaseShift,
		SleepQuality:      mainQA,
	}

	release := correctedRelease(d)
	dt.Warnings = dutyWarnings(d, release)

	// Phase decomposition, with in-flight rest carved out for
	// augmented crews.
	var spans []simSpan
	var restBlocks []models.InflightRestBlock
	if d.Type == models.DutyFlight && len(d.Segments) > 0 {
		base := buildPhaseTimeline(withRelease(d, release), b.DefaultCabinAltitudeFt)
		spans, restBlocks = s.carveInflightRest(d, base)
	} else {
		spans = []simSpan{{
			phaseSpan: phaseSpan{start: d.ReportUTC, end: release, phase: models.PhaseTurnaround},
			restIndex: -1,
		}}
	}

	sampleStep := s.cfg.SampleIntervalMinutes / 60.0
	var points []models.TimelinePoint
	var pinches []models.PinchEvent
	var woclHours float64
	restPerf := make(map[int]float64) // rest index -> first post-rest performance

	landingPerf := math.NaN()
	pendingRest := -1

	for _, span := range spans {
		t := span.start
		for t.Before(span.end) {
			step := math.Min(sampleStep, span.end.Sub(t).Hours())

			if span.asleep {
				elapsed := t.Sub(span.start).Hours()
				st.stepAsleep(b, s.cfg.Adaptation, step, elapsed, span.quality)
				t = t.Add(time.Duration(step * float64(time.Hour)))
				continue
			}

			p := s.samplePoint(st, d, t, span)
			points = append(points, p)
			if p.Phase == models.PhaseLanding {
				landingPerf = p.Performance
			}
			if pendingRest >= 0 {
				restPerf[pendingRest] = p.Performance
				pendingRest = -1
			}

			h := bodyClockHour(t, st.BiologicalOffset(b))
			if h >= s.cfg.EASA.WOCLStartHour && h < s.cfg.EASA.WOCLEndHour {
				woclHours += step
			}

			if p.Circadian < b.PinchCircadianThreshold && p.SleepPressure > b.PinchSleepPressureThreshold {
				pinches = append(pinches, models.PinchEvent{
					UTC:           t,
					Performance:   p.Performance,
					SleepPressure: p.SleepPressure,
					Circadian:     p.Circadian,
					Phase:         p.Phase,
					Cause:         pinchCause(b, p.SleepPressure, p.Circadian),
				})
			}

			st.stepAwake(b, s.cfg.Adaptation, step)
			t = t.Add(time.Duration(step * float64(time.Hour)))
		}
		if span.asleep {
			st.LastWake = span.end
			pendingRest = span.restIndex
		}
	}

	dt.Points = points
	dt.PinchEvents = pinches
	dt.WOCLHours = woclHours
	dt.InflightRest = restBlocks
	if perf, ok := restPerf[0]; ok {
		dt.ReturnToDeckScore = &perf
	}

	s.summarize(&dt, d, landingPerf, preRestHours, postRestHours, restBlocks)
	return dt
}

// samplePoint computes one timeline point from the current state without
// mutating it.
func (s *Simulator) samplePoint(st *State, d models.Duty, t time.Time, span simSpan) models.TimelinePoint {
	b := s.cfg.Borbely
	bio := st.BiologicalOffset(b)

	cRaw := circadianAt(b, t, bio, st.Debt)
	cNorm := normalizeCircadian(b, cRaw)

	// Chronic debt depresses the circadian contribution beyond the
	// amplitude dampening, which on its own lifts the night trough.
	if b.CircadianDampeningMaxDebt > 0 {
		frac := math.Min(st.Debt, b.CircadianDampeningMaxDebt) / b.CircadianDampeningMaxDebt
		cNorm = clamp(cNorm-b.CircadianDebtDepression*frac, 0, 1)
	}

	base := b.WeightHomeostatic*(1-st.S) + b.WeightCircadian*cNorm
	combined := math.Pow(clamp(base, 0, 1), 1.0/b.InteractionExponent)
	perf := b.ScoreOffset + b.ScoreRange*combined

	// Sleep inertia: linear decay over the configured window after waking.
	inertia := 1.0
	sinceWake := t.Sub(st.LastWake).Minutes()
	if sinceWake >= 0 && sinceWake < b.InertiaDurationMinutes {
		inertia = 1 - b.InertiaMaxMagnitude*(1-sinceWake/b.InertiaDurationMinutes)
	}
	perf *= inertia

	// Time-on-task, scaled by the workload of the current phase/sector
	// or training type.
	hoursOn := t.Sub(d.ReportUTC).Hours()
	tot := b.TOTLogCoeff * math.Log(1+hoursOn)
	if over := hoursOn - b.TOTInflectionHours; over > 0 {
		tot += b.TOTQuadraticCoeff * over * over
	}
	wl := 1.0
	switch d.Type {
	case models.DutyFlight:
		sector := span.sector
		if sector < 1 {
			sector = 1
		}
		wl = s.load.Combined(span.phase, sector)
	default:
		wl = s.load.Training(d.Type)
	}
	totFactor := clamp(1-tot*wl, 0, 1)
	perf *= totFactor

	// Cabin altitude hypoxia while airborne.
	if span.airborne && span.cabinAlt > b.HypoxiaAltitudeFloorFt {
		perf *= 1 - b.HypoxiaCoeff*(span.cabinAlt-b.HypoxiaAltitudeFloorFt)/1000.0
	}

	// Sleep-debt vulnerability, floored so debt alone cannot sink the
	// score below the configured fraction of its debt-free value.
	debtFactor := math.Max(b.DebtVulnerabilityFloor, 1-b.DebtVulnerabilityCoeff*st.Debt)
	perf *= debtFactor

	// Trait vulnerability scales the deficit, not the processes.
	perf = 100 - (100-perf)*b.IndividualVulnerability
	perf = clamp(perf, 0, 100)

	return models.TimelinePoint{
		UTC:            t,
		BiologicalHour: bodyClockHour(t, bio),
		Performance:    perf,
		SleepPressure:  st.S,
		Circadian:      cRaw,
		SleepInertia:   inertia,
		TimeOnTask:     totFactor,
		HoursOnDuty:    hoursOn,
		Phase:          span.phase,
		CriticalPhase:  span.phase.Critical(),
	}
}

// carveInflightRest splits the phase timeline around a rest block in the
// longest cruise for augmented crews.
func (s *Simulator) carveInflightRest(d models.Duty, base []phaseSpan) ([]simSpan, []models.InflightRestBlock) {
	out := make([]simSpan, 0, len(base)+2)
	if d.Crew == models.CrewStandard {
		for _, sp := range base {
			out = append(out, simSpan{phaseSpan: sp, restIndex: -1})
		}
		return out, nil
	}

	// Longest cruise span hosts the rest rotation.
	cruiseIdx, cruiseLen := -1, 0.0
	for i, sp := range base {
		if sp.phase == models.PhaseCruise {
			if l := sp.end.Sub(sp.start).Hours(); l > cruiseLen {
				cruiseIdx, cruiseLen = i, l
			}
		}
	}

	aug := s.cfg.Augmented
	share := 1.0 / 3.0
	if d.Crew == models.CrewAugmented4 {
		share = 1.0 / 2.0
	}
	restLen := clamp(cruiseLen*share, aug.MinInflightRestHours, maxInflightRestHours)
	buffer := aug.ReturnToDeckBufferMinutes / 60.0
	if cruiseIdx < 0 || cruiseLen < restLen+buffer+0.5 {
		for _, sp := range base {
			out = append(out, simSpan{phaseSpan: sp, restIndex: -1})
		}
		return out, nil
	}

	cruise := base[cruiseIdx]
	restStart := cruise.start.Add(time.Duration((cruiseLen - restLen - buffer) / 2 * float64(time.Hour)))
	restEnd := restStart.Add(time.Duration(restLen * float64(time.Hour)))

	quality := s.restQuality(d, restStart, restEnd)
	block := models.InflightRestBlock{
		StartUTC:       restStart,
		EndUTC:         restEnd,
		EffectiveHours: quality * restLen,
	}

	for i, sp := range base {
		if i != cruiseIdx {
			out = append(out, simSpan{phaseSpan: sp, restIndex: -1})
			continue
		}
		pre := sp
		pre.end = restStart
		rest := sp
		rest.start, rest.end = restStart, restEnd
		post := sp
		post.start = restEnd
		out = append(out, simSpan{phaseSpan: pre, restIndex: -1})
		out = append(out, simSpan{phaseSpan: rest, asleep: true, quality: quality, restIndex: 0})
		out = append(out, simSpan{phaseSpan: post, restIndex: -1})
	}
	return out, []models.InflightRestBlock{block}
}

// restQuality grades a crew-rest block: the sleep quality engine evaluates
// the bunk environment, degraded further for lower facility classes.
func (s *Simulator) restQuality(d models.Duty, start, end time.Time) float64 {
	w := models.SleepWindow{
		StartUTC:    start,
		EndUTC:      end,
		Environment: models.EnvCrewRest,
	}
	qa := s.sleep.Evaluate(w, sleepquality.Context{NextEvent: d.ReleaseUTC})
	q := 0.0
	if qa.ActualSleepHours > 0 {
		q = qa.EffectiveSleepHours / qa.ActualSleepHours
	}
	switch d.RestFacility {
	case models.RestFacilityClass2:
		q *= facilityClass2Factor
	case models.RestFacilityClass3:
		q *= facilityClass3Factor
	}
	return q
}

// summarize fills the timeline's statistics, risk band, and regulatory
// assessment.
func (s *Simulator) summarize(dt *models.DutyTimeline, d models.Duty, landingPerf, preRestHours, postRestHours float64, rest []models.InflightRestBlock) {
	min, sum := math.Inf(1), 0.0
	for _, p := range dt.Points {
		if p.Performance < min {
			min = p.Performance
		}
		sum += p.Performance
	}
	if len(dt.Points) == 0 {
		min = 0
	} else {
		dt.AvgPerformance = sum / float64(len(dt.Points))
	}
	dt.MinPerformance = min

	riskScore := min
	if d.Type == models.DutyFlight && !math.IsNaN(landingPerf) {
		lp := landingPerf
		dt.LandingPerformance = &lp
		riskScore = lp
	}
	dt.Risk = s.cfg.Risk.Classify(riskScore)

	reportHour := localReportHour(d)
	dt.FDP = easa.Assess(d, reportHour, preRestHours, s.cfg)

	if d.IsULR {
		// Regulatory credit counts the scheduled rest opportunity, not
		// the physiologically effective sleep.
		restTotal := 0.0
		for _, rb := range rest {
			restTotal += rb.EndUTC.Sub(rb.StartUTC).Hours()
		}
		dt.ULRViolations = easa.CheckULR(d, dt.FDP.ActualHours, preRestHours, postRestHours, restTotal, s.cfg.ULR)
	}
}

// pinchCause tags the deeper of the two conjunctive violations.
func pinchCause(b params.Borbely, s, c float64) models.PinchCause {
	if (b.PinchCircadianThreshold - c) >= (s - b.PinchSleepPressureThreshold) {
		return models.PinchCircadianLow
	}
	return models.PinchPressureHigh
}

// ---------------------------------------------------------------------------
// Duty validation and correction
// ---------------------------------------------------------------------------

// correctedRelease returns a usable release time for a duty, repairing
// inverted or implausible periods so the walk can continue.
func correctedRelease(d models.Duty) time.Time {
	release := d.ReleaseUTC
	if !release.After(d.ReportUTC) {
		if n := len(d.Segments); n > 0 && d.Segments[n-1].ArrivalUTC.After(d.ReportUTC) {
			release = d.Segments[n-1].ArrivalUTC.Add(30 * time.Minute)
		} else {
			release = d.ReportUTC.Add(time.Hour)
		}
	}
	if release.Sub(d.ReportUTC).Hours() > implausibleDutyHours && !d.IsULR {
		release = d.ReportUTC.Add(time.Duration(clampedDutyHours * float64(time.Hour)))
	}
	return release
}

// dutyWarnings collects the non-fatal anomalies of a duty.
func dutyWarnings(d models.Duty, corrected time.Time) []string {
	var out []string
	if !d.ReleaseUTC.After(d.ReportUTC) {
		out = append(out, fmt.Sprintf(
			"duty %s: release %s not after report %s, using %s",
			d.ID, d.ReleaseUTC.Format(time.RFC3339), d.ReportUTC.Format(time.RFC3339),
			corrected.Format(time.RFC3339)))
	} else if d.Hours() > implausibleDutyHours && !d.IsULR {
		out = append(out, fmt.Sprintf(
			"duty %s: implausible %.1fh duration, clamped to %.0fh",
			d.ID, d.Hours(), clampedDutyHours))
	}
	if d.Type == models.DutyFlight && len(d.Segments) == 0 {
		out = append(out, fmt.Sprintf("duty %s: flight duty without segments", d.ID))
	}
	return out
}

// withRelease clones a duty with the corrected release applied.
func withRelease(d models.Duty, release time.Time) models.Duty {
	d.ReleaseUTC = release
	return d
}

// localReportHour returns the local clock hour at the reporting airport
// (first departure airport, falling back to 12:00 when unknown so the
// neutral FDP band applies).
func localReportHour(d models.Duty) float64 {
	if len(d.Segments) == 0 {
		return 12.0
	}
	off := d.Segments[0].Departure.UTCOffsetHours
	local := d.ReportUTC.UTC().Add(time.Duration(off * float64(time.Hour)))
	return float64(local.Hour()) + float64(local.Minute())/60.0
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// ---------------------------------------------------------------------------
// Aggregation
// ---------------------------------------------------------------------------

// aggregate folds the per-duty timelines into the roster-level summary.
func (s *Simulator) aggregate(a *models.MonthlyAnalysis, duties []models.Duty, totalEffective float64, nights int, maxDebt float64) {
	a.TotalDuties = len(a.Duties)
	a.MaxSleepDebt = maxDebt
	if nights > 0 {
		a.AvgSleepPerNight = totalEffective / float64(nights)
	}

	worst := math.Inf(1)
	for i, dt := range a.Duties {
		d := duties[i]
		a.TotalSectors += d.Sectors()
		a.TotalDutyHours += math.Max(0, correctedRelease(d).Sub(d.ReportUTC).Hours())
		for _, seg := range d.Segments {
			if seg.Activity == models.ActivityNormal {
				a.TotalBlockHours += math.Max(0, seg.BlockHours())
			}
		}

		if dt.Risk == models.RiskHigh {
			a.HighRiskDuties++
		}
		if dt.Risk.AtLeast(models.RiskCritical) {
			a.CriticalRiskDuties++
		}
		a.TotalPinchEvents += len(dt.PinchEvents)

		score := dt.MinPerformance
		if dt.LandingPerformance != nil {
			score = *dt.LandingPerformance
		}
		if score < worst {
			worst = score
			a.WorstDutyID = dt.DutyID
			a.WorstPerformance = score
		}

		if d.IsULR {
			a.TotalULRDuties++
		}
		if d.Crew != models.CrewStandard {
			a.TotalAugmentedDuties++
		}
		a.ULRViolations = append(a.ULRViolations, dt.ULRViolations...)
	}
}
