package api

import (
	"fmt"
	"time"

	"github.com/cianfru/aerowake/internal/airports"
	"github.com/cianfru/aerowake/pkg/models"
)

// Request DTOs reference airports by IATA code; toRoster resolves them
// against the registry so the engine always sees full airport records.

// RosterRequest is the analysis submission body.
type RosterRequest struct {
	PilotID  string `json:"pilot_id"`
	Month    string `json:"month"` // YYYY-MM
	HomeBase string `json:"home_base"`
	Preset   string `json:"preset,omitempty"`

	Duties       []DutyRequest         `json:"duties"`
	SleepWindows []SleepWindowRequest  `json:"sleep_windows,omitempty"`
	PriorState   *models.StateSnapshot `json:"prior_state,omitempty"`

	Persist bool `json:"persist,omitempty"`
}

// DutyRequest is one duty period in the submission.
type DutyRequest struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"`
	Type       string    `json:"type"`
	ReportUTC  time.Time `json:"report_utc"`
	ReleaseUTC time.Time `json:"release_utc"`

	Crew         string `json:"crew,omitempty"`
	RestFacility string `json:"rest_facility,omitempty"`
	IsULR        bool   `json:"is_ulr,omitempty"`

	Segments []SegmentRequest `json:"segments,omitempty"`
}

// SegmentRequest is one flight segment in the submission.
type SegmentRequest struct {
	FlightNumber    string    `json:"flight_number"`
	Departure       string    `json:"departure"`
	Arrival         string    `json:"arrival"`
	DepartureUTC    time.Time `json:"departure_utc"`
	ArrivalUTC      time.Time `json:"arrival_utc"`
	Activity        string    `json:"activity,omitempty"`
	CabinAltitudeFt float64   `json:"cabin_altitude_ft,omitempty"`
}

// SleepWindowRequest is an observed (actigraphy or self-reported) sleep
// window; when any are supplied the planner is bypassed entirely.
type SleepWindowRequest struct {
	StartUTC    time.Time `json:"start_utc"`
	EndUTC      time.Time `json:"end_utc"`
	Environment string    `json:"environment,omitempty"`
	Location    string    `json:"location,omitempty"`
	IsNap       bool      `json:"is_nap,omitempty"`
}

// toRoster validates the request and resolves airport codes.
func (req *RosterRequest) toRoster(reg *airports.Registry) (models.Roster, error) {
	if req.PilotID == "" {
		return models.Roster{}, fmt.Errorf("pilot_id is required")
	}
	if len(req.Duties) == 0 {
		return models.Roster{}, fmt.Errorf("duties must not be empty")
	}

	home, err := reg.Resolve(req.HomeBase)
	if err != nil {
		return models.Roster{}, fmt.Errorf("home_base: %w", err)
	}

	r := models.Roster{
		PilotID:  req.PilotID,
		Month:    req.Month,
		HomeBase: home,
	}

	for i, dr := range req.Duties {
		d, err := dr.toDuty(reg)
		if err != nil {
			return models.Roster{}, fmt.Errorf("duties[%d]: %w", i, err)
		}
		r.Duties = append(r.Duties, d)
	}

	for i, wr := range req.SleepWindows {
		w, err := wr.toWindow(reg)
		if err != nil {
			return models.Roster{}, fmt.Errorf("sleep_windows[%d]: %w", i, err)
		}
		r.SleepWindows = append(r.SleepWindows, w)
	}

	return r, nil
}

func (dr *DutyRequest) toDuty(reg *airports.Registry) (models.Duty, error) {
	dt, ok := models.ParseDutyType(orDefault(dr.Type, "flight"))
	if !ok {
		return models.Duty{}, fmt.Errorf("unknown type %q", dr.Type)
	}
	crew, ok := models.ParseCrewComposition(orDefault(dr.Crew, "standard"))
	if !ok {
		return models.Duty{}, fmt.Errorf("unknown crew %q", dr.Crew)
	}
	facility, ok := models.ParseRestFacilityClass(dr.RestFacility)
	if !ok {
		return models.Duty{}, fmt.Errorf("unknown rest_facility %q", dr.RestFacility)
	}

	d := models.Duty{
		ID:           dr.ID,
		Date:         dr.Date,
		Type:         dt,
		ReportUTC:    dr.ReportUTC,
		ReleaseUTC:   dr.ReleaseUTC,
		Crew:         crew,
		RestFacility: facility,
		IsULR:        dr.IsULR,
	}
	if d.ReportUTC.IsZero() {
		return models.Duty{}, fmt.Errorf("report_utc is required")
	}

	for i, sr := range dr.Segments {
		seg, err := sr.toSegment(reg)
		if err != nil {
			return models.Duty{}, fmt.Errorf("segments[%d]: %w", i, err)
		}
		d.Segments = append(d.Segments, seg)
	}
	return d, nil
}

func (sr *SegmentRequest) toSegment(reg *airports.Registry) (models.FlightSegment, error) {
	dep, err := reg.Resolve(sr.Departure)
	if err != nil {
		return models.FlightSegment{}, err
	}
	arr, err := reg.Resolve(sr.Arrival)
	if err != nil {
		return models.FlightSegment{}, err
	}
	activity, ok := models.ParseActivityCode(orDefault(sr.Activity, "normal"))
	if !ok {
		return models.FlightSegment{}, fmt.Errorf("unknown activity %q", sr.Activity)
	}
	if !sr.ArrivalUTC.After(sr.DepartureUTC) {
		return models.FlightSegment{}, fmt.Errorf("arrival_utc must be after departure_utc")
	}
	return models.FlightSegment{
		FlightNumber:    sr.FlightNumber,
		Departure:       dep,
		Arrival:         arr,
		DepartureUTC:    sr.DepartureUTC,
		ArrivalUTC:      sr.ArrivalUTC,
		Activity:        activity,
		CabinAltitudeFt: sr.CabinAltitudeFt,
	}, nil
}

func (wr *SleepWindowRequest) toWindow(reg *airports.Registry) (models.SleepWindow, error) {
	env, ok := models.ParseSleepEnvironment(orDefault(wr.Environment, "hotel"))
	if !ok {
		return models.SleepWindow{}, fmt.Errorf("unknown environment %q", wr.Environment)
	}
	if !wr.EndUTC.After(wr.StartUTC) {
		return models.SleepWindow{}, fmt.Errorf("end_utc must be after start_utc")
	}
	w := models.SleepWindow{
		StartUTC:    wr.StartUTC,
		EndUTC:      wr.EndUTC,
		Environment: env,
		IsNap:       wr.IsNap,
	}
	if wr.Location != "" {
		loc, err := reg.Resolve(wr.Location)
		if err != nil {
			return models.SleepWindow{}, err
		}
		w.Location = loc
	}
	return w, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
