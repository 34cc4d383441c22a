package easa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cianfru/aerowake/internal/params"
	"github.com/cianfru/aerowake/pkg/models"
)

// ---------------------------------------------------------------------------
// Basic FDP table
// ---------------------------------------------------------------------------

func TestMaxFDPBands(t *testing.T) {
	for _, tc := range []struct {
		hour    float64
		sectors int
		want    float64
	}{
		{6.0, 1, 13.0},
		{13.25, 2, 13.0},
		{13.5, 2, 12.5},
		{16.99, 1, 12.5},
		{17.0, 1, 12.0},
		{21.5, 2, 12.0},
		{22.0, 1, 11.0},
		{23.75, 2, 11.0},
		{0.0, 1, 11.0},
		{4.99, 1, 11.0},
		{5.0, 1, 12.0},
		{5.5, 2, 12.0},
	} {
		assert.InDelta(t, tc.want, MaxFDP(tc.hour, tc.sectors), 1e-9,
			"report %.2f, %d sectors", tc.hour, tc.sectors)
	}
}

func TestMaxFDPSectorReduction(t *testing.T) {
	// 30 min off per sector beyond the second.
	assert.InDelta(t, 13.0, MaxFDP(8.0, 2), 1e-9)
	assert.InDelta(t, 12.5, MaxFDP(8.0, 3), 1e-9)
	assert.InDelta(t, 11.0, MaxFDP(8.0, 6), 1e-9)

	// Never below the 9h floor, even for extreme sector counts.
	assert.InDelta(t, 9.0, MaxFDP(8.0, 12), 1e-9)
	assert.InDelta(t, 9.0, MaxFDP(3.0, 8), 1e-9)
}

// ---------------------------------------------------------------------------
// Actual FDP
// ---------------------------------------------------------------------------

func TestActualFDPHours(t *testing.T) {
	report := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)
	d := models.Duty{
		Type:       models.DutyFlight,
		ReportUTC:  report,
		ReleaseUTC: report.Add(13 * time.Hour),
		Segments: []models.FlightSegment{
			{DepartureUTC: report.Add(1 * time.Hour), ArrivalUTC: report.Add(5 * time.Hour)},
			{DepartureUTC: report.Add(6 * time.Hour), ArrivalUTC: report.Add(11 * time.Hour)},
		},
	}

	// Last landing plus 30 minutes, not release.
	assert.InDelta(t, 11.5, ActualFDPHours(d), 1e-9)

	// Non-flight duties fall back to report-to-release.
	ground := models.Duty{
		Type:       models.DutySimulator,
		ReportUTC:  report,
		ReleaseUTC: report.Add(4 * time.Hour),
	}
	assert.InDelta(t, 4.0, ActualFDPHours(ground), 1e-9)

	// Inverted timestamps collapse to zero.
	inverted := models.Duty{
		Type:       models.DutySimulator,
		ReportUTC:  report,
		ReleaseUTC: report.Add(-time.Hour),
	}
	assert.Zero(t, ActualFDPHours(inverted))
}

// ---------------------------------------------------------------------------
// Assessment
// ---------------------------------------------------------------------------

func dutyWithFDP(report time.Time, fdpHours float64) models.Duty {
	landing := report.Add(time.Duration((fdpHours - 0.5) * float64(time.Hour)))
	return models.Duty{
		Type:       models.DutyFlight,
		ReportUTC:  report,
		ReleaseUTC: landing.Add(time.Hour),
		Segments: []models.FlightSegment{
			{DepartureUTC: report.Add(time.Hour), ArrivalUTC: landing},
		},
	}
}

func TestAssessCompliance(t *testing.T) {
	cfg := params.Default()
	report := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	// 12h against a 13h limit: compliant, no discretion.
	a := Assess(dutyWithFDP(report, 12.0), 8.0, -1.0, cfg)
	assert.True(t, a.Compliant)
	assert.False(t, a.UsedDiscretion)
	assert.InDelta(t, 13.0, a.MaxHours, 1e-9)
	assert.InDelta(t, 15.0, a.ExtendedHours, 1e-9)

	// 14h: over the basic limit but inside commander's discretion.
	a = Assess(dutyWithFDP(report, 14.0), 8.0, -1.0, cfg)
	assert.True(t, a.Compliant)
	assert.True(t, a.UsedDiscretion)

	// 16h: beyond discretion for a standard crew.
	a = Assess(dutyWithFDP(report, 16.0), 8.0, -1.0, cfg)
	assert.False(t, a.Compliant)
	assert.False(t, a.UsedDiscretion)
}

func TestAssessAugmentedLimits(t *testing.T) {
	cfg := params.Default()
	report := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	d := dutyWithFDP(report, 15.5)
	d.Crew = models.CrewAugmented3
	d.RestFacility = models.RestFacilityClass2

	a := Assess(d, 8.0, -1.0, cfg)
	assert.InDelta(t, 15.0, a.MaxHours, 1e-9)
	assert.InDelta(t, 18.0, a.ExtendedHours, 1e-9)
	assert.True(t, a.Compliant)
	assert.True(t, a.UsedDiscretion)

	// A class 1 facility with a four-pilot crew stretches further.
	d.Crew = models.CrewAugmented4
	d.RestFacility = models.RestFacilityClass1
	a = Assess(d, 8.0, -1.0, cfg)
	assert.InDelta(t, 17.0, a.MaxHours, 1e-9)
	assert.False(t, a.UsedDiscretion)
}

func TestAssessULRCeiling(t *testing.T) {
	cfg := params.Default()
	report := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	d := dutyWithFDP(report, 17.5)
	d.IsULR = true
	d.Crew = models.CrewAugmented4
	d.RestFacility = models.RestFacilityClass1

	a := Assess(d, 8.0, -1.0, cfg)
	assert.InDelta(t, 18.0, a.MaxHours, 1e-9)
	assert.True(t, a.Compliant)
	assert.False(t, a.UsedDiscretion)
}

func TestAssessMinimumRest(t *testing.T) {
	cfg := params.Default()
	report := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	d := dutyWithFDP(report, 10.0)

	a := Assess(d, 8.0, 9.0, cfg)
	assert.False(t, a.RestCompliant)
	assert.InDelta(t, 9.0, a.RestBeforeHours, 1e-9)

	assert.True(t, Assess(d, 8.0, 14.0, cfg).RestCompliant)

	// The first duty of the month carries no rest history.
	assert.True(t, Assess(d, 8.0, -1.0, cfg).RestCompliant)
}

func TestAssessGroundDutyCap(t *testing.T) {
	cfg := params.Default()
	report := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	sim := models.Duty{
		Type:       models.DutySimulator,
		ReportUTC:  report,
		ReleaseUTC: report.Add(17 * time.Hour),
	}

	a := Assess(sim, 8.0, -1.0, cfg)
	assert.InDelta(t, cfg.EASA.MaxDutyHours, a.MaxHours, 1e-9)
	assert.False(t, a.Compliant)

	sim.ReleaseUTC = report.Add(8 * time.Hour)
	assert.True(t, Assess(sim, 8.0, -1.0, cfg).Compliant)
}

// ---------------------------------------------------------------------------
// ULR checks
// ---------------------------------------------------------------------------

func TestDetectULR(t *testing.T) {
	ulr := params.Default().ULR
	report := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	// An explicit roster flag always wins.
	flagged := dutyWithFDP(report, 10.0)
	flagged.IsULR = true
	assert.True(t, DetectULR(flagged, ulr))

	// A sector at the threshold qualifies even without the flag.
	long := dutyWithFDP(report, ulr.MinSectorHours+1.5)
	assert.True(t, DetectULR(long, ulr))

	short := dutyWithFDP(report, 9.0)
	assert.False(t, DetectULR(short, ulr))

	// Deadhead block time does not trigger detection.
	dead := dutyWithFDP(report, ulr.MinSectorHours+1.5)
	dead.Segments[0].Activity = models.ActivityDeadhead
	assert.False(t, DetectULR(dead, ulr))
}

func TestCheckULR(t *testing.T) {
	ulr := params.Default().ULR
	report := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	d := dutyWithFDP(report, 17.0)
	d.ID = "QR001"
	d.IsULR = true
	d.Crew = models.CrewAugmented4
	d.RestFacility = models.RestFacilityClass1

	assert.Empty(t, CheckULR(d, 17.0, 26.0, 40.0, 4.5, ulr))

	// Each violated requirement reports separately.
	bad := d
	bad.Crew = models.CrewAugmented3
	bad.RestFacility = models.RestFacilityClass2
	violations := CheckULR(bad, 18.5, 20.0, 24.0, 3.0, ulr)
	assert.Len(t, violations, 6)

	// Unknown adjacent rest (negative sentinels) is not a violation.
	assert.Empty(t, CheckULR(d, 17.0, -1.0, -1.0, 4.5, ulr))

	// Non-ULR duties are never checked.
	plain := dutyWithFDP(report, 12.0)
	assert.Nil(t, CheckULR(plain, 12.0, 10.0, 10.0, 0, ulr))
}
