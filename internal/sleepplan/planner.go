// Package sleepplan decides how a pilot plausibly sleeps between duties:
// one main block anchored to the biological night at the layover, plus
// strategic naps ahead of night and ultra-long-range duties. The plan is
// deterministic; the sleep quality engine grades whatever is planned here.
package sleepplan

import (
	"math"
	"time"

	"github.com/cianfru/aerowake/internal/params"
	"github.com/cianfru/aerowake/pkg/models"
)

const (
	windDownHours   = 1.0 // release to lights-out, minimum
	prepBufferHours = 1.5 // wake-up to report: transport and briefing prep
	nightAnchorHour = 23.0
	minNapHours     = 0.5
	maxGapNoSleep   = 3.0 // gaps shorter than this get at most a nap
)

// Planner builds sleep windows for the gaps of a roster.
type Planner struct {
	cfg *params.Config
}

// New creates a Planner bound to the run configuration.
func New(cfg *params.Config) *Planner {
	return &Planner{cfg: cfg}
}

// Plan produces the chronological sleep windows for a roster: a lead-in
// night before the first duty, then one plan per inter-duty gap. initialDebt
// carries prior-month sleep debt into the rebound formula.
func (p *Planner) Plan(roster models.Roster, initialDebt float64) []models.SleepWindow {
	if len(roster.Duties) == 0 {
		return nil
	}

	var windows []models.SleepWindow
	debt := initialDebt

	// Lead-in: assume a full home night ending before the first report.
	first := roster.Duties[0]
	lead := p.gapPlan(gap{
		start:    first.ReportUTC.Add(-16 * time.Hour),
		end:      first.ReportUTC,
		location: roster.HomeBase,
		atHome:   true,
		nextDuty: &first,
		leadIn:   true,
	}, debt)
	windows = append(windows, lead...)
	debt = p.rollDebt(debt, lead)

	nightsAway := 0
	for i := 0; i < len(roster.Duties); i++ {
		d := roster.Duties[i]
		var next *models.Duty
		if i+1 < len(roster.Duties) {
			next = &roster.Duties[i+1]
		}
		if next == nil {
			break
		}

		loc := roster.HomeBase
		atHome := true
		if arr, ok := d.LastArrival(); ok && arr.Code != roster.HomeBase.Code {
			loc = arr
			atHome = false
		}
		if atHome {
			nightsAway = 0
		}

		g := gap{
			start:      d.ReleaseUTC,
			end:        next.ReportUTC,
			location:   loc,
			atHome:     atHome,
			prevDuty:   &d,
			nextDuty:   next,
			nightsAway: nightsAway,
		}
		planned := p.gapPlan(g, debt)
		windows = append(windows, planned...)
		debt = p.rollDebt(debt, planned)

		if !atHome {
			nightsAway += countNights(planned)
		}
	}

	return windows
}

// gap describes one inter-duty rest opportunity.
type gap struct {
	start, end time.Time
	location   models.Airport
	atHome     bool
	prevDuty   *models.Duty
	nextDuty   *models.Duty
	nightsAway int
	leadIn     bool
}

// gapPlan lays out the sleep blocks for one gap.
func (p *Planner) gapPlan(g gap, debt float64) []models.SleepWindow {
	gapHours := g.end.Sub(g.start).Hours()
	if gapHours <= minNapHours {
		return nil
	}

	env := p.environment(g)
	avStart := g.start
	if !g.leadIn {
		avStart = g.start.Add(time.Duration(windDownHours * float64(time.Hour)))
	}
	avEnd := g.end.Add(-time.Duration(prepBufferHours * float64(time.Hour)))
	if !avEnd.After(avStart) {
		return nil
	}
	available := avEnd.Sub(avStart).Hours()

	// Short turnaround: a nap is all that fits.
	if gapHours < maxGapNoSleep+prepBufferHours {
		napLen := math.Min(available, 1.5)
		if napLen < minNapHours {
			return nil
		}
		return []models.SleepWindow{{
			StartUTC:    avStart,
			EndUTC:      avStart.Add(time.Duration(napLen * float64(time.Hour))),
			Environment: env,
			Location:    g.location,
			IsNap:       true,
		}}
	}

	// Desired duration: baseline plus debt-driven rebound, capped by the
	// biological ceiling and what the gap offers.
	b := p.cfg.Borbely
	desired := b.BaselineSleepNeedHours + b.SleepReboundCoeff*math.Min(debt, b.SleepReboundMaxDebt)
	desired = math.Min(desired, p.cfg.SleepQuality.MaxRealisticSleepHours)
	desired = math.Min(desired, available)

	// Anchor the main block to the local night, then slide it inside the
	// available window. Early reports pull sleep earlier; late releases
	// push it later.
	localOffset := g.location.UTCOffsetHours
	anchor := anchorNight(avStart, avEnd, localOffset, desired)

	main := models.SleepWindow{
		StartUTC:    anchor,
		EndUTC:      anchor.Add(time.Duration(desired * float64(time.Hour))),
		Environment: env,
		Location:    g.location,
	}
	if !g.atHome {
		main.IsFirstNight = g.nightsAway == 0
		main.IsSecondNight = g.nightsAway == 1
	}

	out := []models.SleepWindow{main}

	// Fragmented gap: when the main block had to be cut well below need
	// and usable time remains after it, add a second fragment and mark the
	// set as split sleep.
	remaining := avEnd.Sub(main.EndUTC).Hours()
	if desired < b.BaselineSleepNeedHours-2 && remaining >= 2 {
		fragLen := math.Min(remaining-0.5, b.BaselineSleepNeedHours-desired)
		if fragLen >= 1.5 {
			frag := models.SleepWindow{
				StartUTC:      main.EndUTC.Add(30 * time.Minute),
				EndUTC:        main.EndUTC.Add(30 * time.Minute).Add(time.Duration(fragLen * float64(time.Hour))),
				Environment:   env,
				Location:      g.location,
				IsSplit:       true,
				SplitMinHours: math.Min(desired, fragLen),
			}
			out[0].IsSplit = true
			out[0].SplitMinHours = frag.SplitMinHours
			out = append(out, frag)
		}
	}

	// Strategic nap ahead of a night duty or a ULR departure, when the
	// afternoon before report is free.
	if g.nextDuty != nil && p.wantsPreDutyNap(*g.nextDuty) {
		nap := p.preDutyNap(*g.nextDuty, main.EndUTC, avEnd, g, env)
		if nap != nil {
			out = append(out, *nap)
		}
	}

	return out
}

// wantsPreDutyNap reports whether the next duty merits an afternoon nap:
// night-time reports and ULR departures.
func (p *Planner) wantsPreDutyNap(d models.Duty) bool {
	if d.IsULR {
		return true
	}
	h := localHour(d.ReportUTC, reportOffset(d))
	return h >= 18 || h < 2
}

// preDutyNap schedules a 14:00-15:30 local nap before the duty when that
// slot is free of the main sleep block.
func (p *Planner) preDutyNap(d models.Duty, mainEnd, avEnd time.Time, g gap, env models.SleepEnvironment) *models.SleepWindow {
	offset := g.location.UTCOffsetHours
	napStart := atLocalHour(d.ReportUTC, offset, 14.0)
	for napStart.After(d.ReportUTC) {
		napStart = napStart.Add(-24 * time.Hour)
	}
	napEnd := napStart.Add(90 * time.Minute)

	latestEnd := d.ReportUTC.Add(-time.Duration(prepBufferHours * float64(time.Hour)))
	if napEnd.After(latestEnd) || napStart.Before(mainEnd.Add(2*time.Hour)) || napEnd.After(avEnd.Add(time.Hour)) {
		return nil
	}
	return &models.SleepWindow{
		StartUTC:    napStart,
		EndUTC:      napEnd,
		Environment: env,
		Location:    g.location,
		IsNap:       true,
	}
}

// environment picks where the pilot sleeps during a gap.
func (p *Planner) environment(g gap) models.SleepEnvironment {
	if g.atHome {
		return models.EnvHome
	}
	if g.end.Sub(g.start).Hours() < 12 {
		return models.EnvAirportHotel
	}
	return models.EnvHotel
}

// rollDebt advances the planner's raw-duration debt estimate across one
// gap's plan: shortfall against baseline accrues, surplus decays existing
// debt exponentially.
func (p *Planner) rollDebt(debt float64, planned []models.SleepWindow) float64 {
	b := p.cfg.Borbely
	raw := 0.0
	for _, w := range planned {
		raw += w.Hours()
	}
	shortfall := b.BaselineSleepNeedHours - raw
	if shortfall > 0 {
		debt += shortfall
	} else {
		debt *= math.Exp(-b.SleepDebtDecayRate)
	}
	if debt < 0 {
		debt = 0
	}
	return debt
}

// countNights counts non-nap blocks, approximating nights spent at the
// layover for first/second-night bookkeeping.
func countNights(planned []models.SleepWindow) int {
	n := 0
	for _, w := range planned {
		if !w.IsNap {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Local-time helpers (fixed-offset arithmetic; timezone resolution is the
// roster supplier's precondition)
// ---------------------------------------------------------------------------

// anchorNight places a block of the given length over the local night
// anchored at 23:00, clamped into [avStart, avEnd].
func anchorNight(avStart, avEnd time.Time, offsetHours, lengthHours float64) time.Time {
	length := time.Duration(lengthHours * float64(time.Hour))

	// Candidate: the 23:00 local preceding the latest possible wake-up.
	candidate := atLocalHour(avEnd, offsetHours, nightAnchorHour)
	for candidate.Add(length).After(avEnd) {
		candidate = candidate.Add(-24 * time.Hour)
	}
	// Slide forward if the night began before the window opened.
	if candidate.Before(avStart) {
		candidate = avStart
	}
	// Still must fit; pull back to the latest feasible start.
	if candidate.Add(length).After(avEnd) {
		candidate = avEnd.Add(-length)
	}
	return candidate
}

// atLocalHour returns the instant on ref's local calendar day with the given
// local clock hour.
func atLocalHour(ref time.Time, offsetHours, hour float64) time.Time {
	local := ref.UTC().Add(time.Duration(offsetHours * float64(time.Hour)))
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return day.Add(time.Duration(hour * float64(time.Hour))).Add(-time.Duration(offsetHours * float64(time.Hour)))
}

// localHour returns the local clock hour of a UTC instant.
func localHour(t time.Time, offsetHours float64) float64 {
	local := t.UTC().Add(time.Duration(offsetHours * float64(time.Hour)))
	return float64(local.Hour()) + float64(local.Minute())/60.0
}

// reportOffset picks the offset governing a duty's report time: departure
// airport of the first segment when present.
func reportOffset(d models.Duty) float64 {
	if len(d.Segments) > 0 {
		return d.Segments[0].Departure.UTCOffsetHours
	}
	return 0
}
