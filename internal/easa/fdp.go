// Package easa evaluates flight duty periods against the EASA FTL limits
// (EU Regulation 965/2012, ORO.FTL.205) plus the augmented-crew and
// ultra-long-range extensions. The tables here are the acclimatized-crew
// case; acclimatization state itself is tracked by the simulator.
package easa

import (
	"fmt"

	"github.com/cianfru/aerowake/internal/params"
	"github.com/cianfru/aerowake/pkg/models"
)

// fdpBand is one row of the ORO.FTL.205 table: maximum FDP for a report
// time inside [startHour, endHour) at 1-2 sectors.
type fdpBand struct {
	startHour float64
	endHour   float64
	maxHours  float64
}

// Acclimatized table, condensed to the operationally significant bands.
// Reports touching the WOCL carry the shortest limits.
var fdpBands = []fdpBand{
	{6.0, 13.5, 13.0},
	{13.5, 17.0, 12.5},
	{17.0, 22.0, 12.0},
	{22.0, 24.0, 11.0},
	{0.0, 5.0, 11.0},
	{5.0, 6.0, 12.0},
}

const (
	sectorReductionHours = 0.5 // per sector beyond the second
	minFDPHours          = 9.0
	discretionStandard   = 2.0 // commander's discretion, ORO.FTL.205(f)
	discretionAugmented  = 3.0
	postLandingMinutes   = 30.0 // FDP ends 30 min after the last landing
)

// MaxFDP returns the basic maximum FDP in hours for a report at the given
// local clock hour with the given number of sectors.
func MaxFDP(reportLocalHour float64, sectors int) float64 {
	max := 13.0
	for _, b := range fdpBands {
		if reportLocalHour >= b.startHour && reportLocalHour < b.endHour {
			max = b.maxHours
			break
		}
	}
	if sectors > 2 {
		max -= float64(sectors-2) * sectorReductionHours
	}
	if max < minFDPHours {
		max = minFDPHours
	}
	return max
}

// augmentedMaxFDP returns the extended limit for augmented crews by rest
// facility class, or 0 when the duty does not qualify.
func augmentedMaxFDP(d models.Duty, aug params.Augmented) float64 {
	switch d.Crew {
	case models.CrewAugmented3:
		switch d.RestFacility {
		case models.RestFacilityClass1:
			return aug.MaxFDPClass1Crew3
		case models.RestFacilityClass2:
			return aug.MaxFDPClass2Crew3
		case models.RestFacilityClass3:
			return aug.MaxFDPClass3Crew3
		}
	case models.CrewAugmented4:
		switch d.RestFacility {
		case models.RestFacilityClass1:
			return aug.MaxFDPClass1Crew4
		case models.RestFacilityClass2:
			return aug.MaxFDPClass2Crew4
		case models.RestFacilityClass3:
			return aug.MaxFDPClass3Crew4
		}
	}
	return 0
}

// ActualFDPHours computes the flight duty period of a duty: report to last
// landing plus 30 minutes for flight duties, report to release otherwise.
// Inverted timestamps yield 0; the caller flags those separately.
func ActualFDPHours(d models.Duty) float64 {
	if d.Type != models.DutyFlight || len(d.Segments) == 0 {
		h := d.Hours()
		if h < 0 {
			return 0
		}
		return h
	}
	last := d.Segments[len(d.Segments)-1].ArrivalUTC
	fdp := last.Sub(d.ReportUTC).Hours() + postLandingMinutes/60.0
	if fdp < 0 {
		return 0
	}
	return fdp
}

// DetectULR reports whether a duty is ultra-long-range: either rostered
// as such, or carrying an operating sector at or beyond the ULR sector
// threshold.
func DetectULR(d models.Duty, ulr params.ULR) bool {
	if d.IsULR {
		return true
	}
	if d.Type != models.DutyFlight || ulr.MinSectorHours <= 0 {
		return false
	}
	for _, seg := range d.Segments {
		if seg.Activity == models.ActivityNormal && seg.BlockHours() >= ulr.MinSectorHours {
			return true
		}
	}
	return false
}

// Assess evaluates a duty's FDP against its applicable limit and the
// preceding rest against the ORO.FTL.235 minimum. reportLocalHour is the
// local clock hour at the reporting airport; preRestHours is negative
// when the prior rest is unknown.
func Assess(d models.Duty, reportLocalHour, preRestHours float64, cfg *params.Config) models.FDPAssessment {
	actual := ActualFDPHours(d)

	max := MaxFDP(reportLocalHour, d.Sectors())
	if d.Type != models.DutyFlight {
		// Simulator and ground duties are not FDP but still cap at the
		// basic duty-period limit.
		max = cfg.EASA.MaxDutyHours
	}
	discretion := discretionStandard
	if aug := augmentedMaxFDP(d, cfg.Augmented); aug > max {
		max = aug
		discretion = discretionAugmented
	}
	if d.IsULR && cfg.ULR.MaxFDPHours > max {
		max = cfg.ULR.MaxFDPHours
	}

	extended := max + discretion
	return models.FDPAssessment{
		ActualHours:     actual,
		MaxHours:        max,
		ExtendedHours:   extended,
		UsedDiscretion:  actual > max && actual <= extended,
		Compliant:       actual <= extended,
		RestBeforeHours: preRestHours,
		RestCompliant:   preRestHours < 0 || preRestHours >= cfg.EASA.MinimumRestHours,
	}
}

// CheckULR validates an ultra-long-range duty: crewing, rest facility,
// FDP ceiling, pre- and post-duty rest, and total credited in-flight
// rest. Returns human-readable violations, empty when compliant. Rest
// hours are negative when the adjacent rest period is unknown.
func CheckULR(d models.Duty, fdpHours, preRestHours, postRestHours, inflightRestHours float64, ulr params.ULR) []string {
	if !d.IsULR {
		return nil
	}
	var violations []string
	if d.Crew != ulr.RequiredCrew {
		violations = append(violations, fmt.Sprintf(
			"ULR duty %s requires %s crew, rostered %s", d.ID, ulr.RequiredCrew, d.Crew))
	}
	if d.RestFacility != ulr.RequiredFacility {
		violations = append(violations, fmt.Sprintf(
			"ULR duty %s requires %s rest facility, has %s", d.ID, ulr.RequiredFacility, d.RestFacility))
	}
	if fdpHours > ulr.MaxFDPHours {
		violations = append(violations, fmt.Sprintf(
			"ULR duty %s FDP %.1fh exceeds %.1fh limit", d.ID, fdpHours, ulr.MaxFDPHours))
	}
	if preRestHours >= 0 && preRestHours < ulr.MinPreRestHours {
		violations = append(violations, fmt.Sprintf(
			"ULR duty %s preceded by %.1fh rest, minimum %.1fh", d.ID, preRestHours, ulr.MinPreRestHours))
	}
	if postRestHours >= 0 && postRestHours < ulr.MinPostRestHours {
		violations = append(violations, fmt.Sprintf(
			"ULR duty %s followed by %.1fh rest, minimum %.1fh", d.ID, postRestHours, ulr.MinPostRestHours))
	}
	if inflightRestHours < ulr.MinTotalInflightRest {
		violations = append(violations, fmt.Sprintf(
			"ULR duty %s credits %.1fh in-flight rest, minimum %.1fh", d.ID, inflightRestHours, ulr.MinTotalInflightRest))
	}
	return violations
}
