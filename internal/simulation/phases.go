package simulation

import (
	"time"

	"github.com/cianfru/aerowake/pkg/models"
)

// phaseSpan is one contiguous stretch of a duty in a single flight phase.
type phaseSpan struct {
	start    time.Time
	end      time.Time
	phase    models.FlightPhase
	sector   int // 1-indexed operating sector; 0 for ground spans
	cabinAlt float64
	airborne bool
}

// Nominal in-block phase durations. Short sectors compress these
// proportionally so every block still gets a takeoff and a landing.
const (
	taxiOutMin  = 10 * time.Minute
	takeoffMin  = 5 * time.Minute
	climbMin    = 20 * time.Minute
	descentMin  = 20 * time.Minute
	approachMin = 12 * time.Minute
	landingMin  = 5 * time.Minute
	taxiInMin   = 8 * time.Minute
)

// buildPhaseTimeline decomposes a flight duty into ordered phase spans:
// preflight from report, then per segment taxi/takeoff/climb/cruise/
// descent/approach/landing/taxi-in, with ground turnarounds between
// segments and after the last one until release.
func buildPhaseTimeline(d models.Duty, defaultCabinAlt float64) []phaseSpan {
	var spans []phaseSpan
	cursor := d.ReportUTC
	sector := 0

	for i, seg := range d.Segments {
		// Ground time before this segment: preflight for the first,
		// turnaround for the rest.
		if seg.DepartureUTC.After(cursor) {
			phase := models.PhaseTurnaround
			if i == 0 {
				phase = models.PhasePreflight
			}
			spans = append(spans, phaseSpan{start: cursor, end: seg.DepartureUTC, phase: phase, sector: sector})
			cursor = seg.DepartureUTC
		}

		if !seg.ArrivalUTC.After(seg.DepartureUTC) {
			continue // degenerate segment, flagged upstream
		}
		if seg.Activity == models.ActivityNormal {
			sector++
		}

		cabin := seg.CabinAltitudeFt
		if cabin == 0 {
			cabin = defaultCabinAlt
		}
		spans = append(spans, blockSpans(seg, sector, cabin)...)
		cursor = seg.ArrivalUTC
	}

	if d.ReleaseUTC.After(cursor) {
		spans = append(spans, phaseSpan{start: cursor, end: d.ReleaseUTC, phase: models.PhaseTurnaround, sector: sector})
	}
	return spans
}

// blockSpans splits one block (off-block to on-block) into phases.
func blockSpans(seg models.FlightSegment, sector int, cabinAlt float64) []phaseSpan {
	block := seg.ArrivalUTC.Sub(seg.DepartureUTC)

	fixed := []struct {
		phase    models.FlightPhase
		d        time.Duration
		airborne bool
	}{
		{models.PhaseTaxiOut, taxiOutMin, false},
		{models.PhaseTakeoff, takeoffMin, true},
		{models.PhaseClimb, climbMin, true},
		{models.PhaseCruise, 0, true}, // remainder
		{models.PhaseDescent, descentMin, true},
		{models.PhaseApproach, approachMin, true},
		{models.PhaseLanding, landingMin, true},
		{models.PhaseTaxiIn, taxiInMin, false},
	}

	var fixedTotal time.Duration
	for _, f := range fixed {
		fixedTotal += f.d
	}

	// Compress everything proportionally when the block is shorter than
	// the nominal phase budget; otherwise cruise absorbs the remainder.
	scale := 1.0
	cruise := block - fixedTotal
	if cruise < 0 {
		scale = float64(block) / float64(fixedTotal)
		cruise = 0
	}

	var spans []phaseSpan
	cursor := seg.DepartureUTC
	for _, f := range fixed {
		d := time.Duration(float64(f.d) * scale)
		if f.phase == models.PhaseCruise {
			d = cruise
		}
		if d <= 0 {
			continue
		}
		end := cursor.Add(d)
		alt := 0.0
		if f.airborne {
			alt = cabinAlt
		}
		spans = append(spans, phaseSpan{
			start: cursor, end: end, phase: f.phase,
			sector: sector, cabinAlt: alt, airborne: f.airborne,
		})
		cursor = end
	}
	// Absorb rounding drift into the final span.
	if len(spans) > 0 {
		spans[len(spans)-1].end = seg.ArrivalUTC
	}
	return spans
}
