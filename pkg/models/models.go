// Package models defines the shared domain model for roster fatigue
// analysis: duties, flight segments, sleep windows, and the simulation
// output types (timelines, pinch events, monthly aggregates).
package models

import "time"

// ---------------------------------------------------------------------------
// Duty types
// ---------------------------------------------------------------------------

// DutyType classifies a work period.
type DutyType uint8

const (
	DutyFlight         DutyType = iota
	DutySimulator               // full-flight simulator session
	DutyGroundTraining          // classroom / CBT / briefing
	dutyTypeCount               // must be last
)

var dutyTypeNames = [dutyTypeCount]string{
	DutyFlight:         "flight",
	DutySimulator:      "simulator",
	DutyGroundTraining: "ground_training",
}

func (d DutyType) String() string {
	if d < dutyTypeCount {
		return dutyTypeNames[d]
	}
	return "unknown"
}

// ParseDutyType converts a string like "flight" to its DutyType constant.
func ParseDutyType(s string) (DutyType, bool) {
	for i, name := range dutyTypeNames {
		if name == s {
			return DutyType(i), true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Flight phases
// ---------------------------------------------------------------------------

// FlightPhase identifies the segment of flight a sampled instant falls in.
type FlightPhase uint8

const (
	PhasePreflight FlightPhase = iota
	PhaseTaxiOut
	PhaseTakeoff
	PhaseClimb
	PhaseCruise
	PhaseDescent
	PhaseApproach
	PhaseLanding
	PhaseTaxiIn
	PhaseTurnaround
	flightPhaseCount
)

var flightPhaseNames = [flightPhaseCount]string{
	PhasePreflight:  "preflight",
	PhaseTaxiOut:    "taxi_out",
	PhaseTakeoff:    "takeoff",
	PhaseClimb:      "climb",
	PhaseCruise:     "cruise",
	PhaseDescent:    "descent",
	PhaseApproach:   "approach",
	PhaseLanding:    "landing",
	PhaseTaxiIn:     "taxi_in",
	PhaseTurnaround: "ground_turnaround",
}

func (p FlightPhase) String() string {
	if p < flightPhaseCount {
		return flightPhaseNames[p]
	}
	return "unknown"
}

// ParseFlightPhase converts a string like "cruise" to its FlightPhase.
func ParseFlightPhase(s string) (FlightPhase, bool) {
	for i, name := range flightPhaseNames {
		if name == s {
			return FlightPhase(i), true
		}
	}
	return 0, false
}

// Critical reports whether the phase is safety-critical (takeoff through
// landing, excluding cruise).
func (p FlightPhase) Critical() bool {
	switch p {
	case PhaseTakeoff, PhaseClimb, PhaseDescent, PhaseApproach, PhaseLanding:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Activity codes
// ---------------------------------------------------------------------------

// ActivityCode marks how a crew member is employed on a segment.
type ActivityCode uint8

const (
	ActivityNormal       ActivityCode = iota
	ActivityInflightRest              // resting in the crew bunk (augmented ops)
	ActivityDeadhead                  // positioning as a passenger
	activityCodeCount
)

var activityCodeNames = [activityCodeCount]string{
	ActivityNormal:       "normal",
	ActivityInflightRest: "inflight_rest",
	ActivityDeadhead:     "deadhead",
}

func (a ActivityCode) String() string {
	if a < activityCodeCount {
		return activityCodeNames[a]
	}
	return "unknown"
}

// ParseActivityCode converts a string like "deadhead" to its ActivityCode.
func ParseActivityCode(s string) (ActivityCode, bool) {
	for i, name := range activityCodeNames {
		if name == s {
			return ActivityCode(i), true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Sleep environments
// ---------------------------------------------------------------------------

// SleepEnvironment identifies where a sleep opportunity takes place. The
// ordering roughly tracks expected sleep efficiency (home best, onboard
// crew rest worst).
type SleepEnvironment uint8

const (
	EnvHome SleepEnvironment = iota
	EnvCrewHouse
	EnvHotel
	EnvAirportHotel
	EnvCrewRest
	sleepEnvCount
)

var sleepEnvNames = [sleepEnvCount]string{
	EnvHome:         "home",
	EnvCrewHouse:    "crew_house",
	EnvHotel:        "hotel",
	EnvAirportHotel: "airport_hotel",
	EnvCrewRest:     "crew_rest",
}

func (e SleepEnvironment) String() string {
	if e < sleepEnvCount {
		return sleepEnvNames[e]
	}
	return "unknown"
}

// ParseSleepEnvironment converts a string like "hotel" to its constant.
func ParseSleepEnvironment(s string) (SleepEnvironment, bool) {
	for i, name := range sleepEnvNames {
		if name == s {
			return SleepEnvironment(i), true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Risk levels
// ---------------------------------------------------------------------------

// RiskLevel is the post-hoc classification of a duty's fatigue risk.
type RiskLevel uint8

const (
	RiskLow RiskLevel = iota
	RiskModerate
	RiskHigh
	RiskCritical
	RiskExtreme
	riskLevelCount
)

var riskLevelNames = [riskLevelCount]string{
	RiskLow:      "low",
	RiskModerate: "moderate",
	RiskHigh:     "high",
	RiskCritical: "critical",
	RiskExtreme:  "extreme",
}

func (r RiskLevel) String() string {
	if r < riskLevelCount {
		return riskLevelNames[r]
	}
	return "unknown"
}

// ParseRiskLevel converts a string like "critical" to its RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	for i, name := range riskLevelNames {
		if name == s {
			return RiskLevel(i), true
		}
	}
	return 0, false
}

// AtLeast reports whether r is the given severity or worse.
func (r RiskLevel) AtLeast(min RiskLevel) bool { return r >= min }

// ---------------------------------------------------------------------------
// Crew composition / rest facilities
// ---------------------------------------------------------------------------

// CrewComposition describes the flight-deck crewing of a duty.
type CrewComposition uint8

const (
	CrewStandard   CrewComposition = iota // 2 pilots
	CrewAugmented3                        // 3 pilots
	CrewAugmented4                        // 4 pilots (ULR)
	crewCompCount
)

var crewCompNames = [crewCompCount]string{
	CrewStandard:   "standard",
	CrewAugmented3: "augmented_3",
	CrewAugmented4: "augmented_4",
}

func (c CrewComposition) String() string {
	if c < crewCompCount {
		return crewCompNames[c]
	}
	return "unknown"
}

// ParseCrewComposition converts a string like "augmented_3" to its constant.
func ParseCrewComposition(s string) (CrewComposition, bool) {
	for i, name := range crewCompNames {
		if name == s {
			return CrewComposition(i), true
		}
	}
	return 0, false
}

// RestFacilityClass is the certified class of onboard crew rest facility.
// Class 1 (bunk) best, class 3 (reclining seat) worst, RestFacilityNone for
// unaugmented aircraft.
type RestFacilityClass uint8

const (
	RestFacilityNone RestFacilityClass = iota
	RestFacilityClass1
	RestFacilityClass2
	RestFacilityClass3
)

func (f RestFacilityClass) String() string {
	switch f {
	case RestFacilityClass1:
		return "class_1"
	case RestFacilityClass2:
		return "class_2"
	case RestFacilityClass3:
		return "class_3"
	default:
		return "none"
	}
}

// ParseRestFacilityClass converts "class_1".."class_3" or "none".
func ParseRestFacilityClass(s string) (RestFacilityClass, bool) {
	switch s {
	case "none", "":
		return RestFacilityNone, true
	case "class_1":
		return RestFacilityClass1, true
	case "class_2":
		return RestFacilityClass2, true
	case "class_3":
		return RestFacilityClass3, true
	}
	return RestFacilityNone, false
}

// ---------------------------------------------------------------------------
// Core entities
// ---------------------------------------------------------------------------

// Airport carries the resolved location data the engine needs. Timezone
// resolution is a precondition: the roster supplier (or the airports
// registry) fills Timezone and UTCOffsetHours before simulation.
type Airport struct {
	Code           string  `json:"code"`     // IATA
	Timezone       string  `json:"timezone"` // IANA name, informational
	UTCOffsetHours float64 `json:"utc_offset_hours"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// FlightSegment is one flight within a duty. Immutable once parsed.
type FlightSegment struct {
	FlightNumber    string       `json:"flight_number"`
	Departure       Airport      `json:"departure"`
	Arrival         Airport      `json:"arrival"`
	DepartureUTC    time.Time    `json:"departure_utc"`
	ArrivalUTC      time.Time    `json:"arrival_utc"`
	Activity        ActivityCode `json:"activity"`
	CabinAltitudeFt float64      `json:"cabin_altitude_ft,omitempty"` // 0 = use config default
	IsLineTraining  bool         `json:"is_line_training,omitempty"`
	TrainingCode    string       `json:"training_code,omitempty"` // raw roster code, e.g. "FFS"
}

// BlockHours returns the scheduled block time of the segment.
func (s FlightSegment) BlockHours() float64 {
	return s.ArrivalUTC.Sub(s.DepartureUTC).Hours()
}

// Duty is one work period. Constructed by the roster supplier; read-only to
// the engine except for derived fields it attaches after evaluation.
type Duty struct {
	ID         string          `json:"id"`
	Date       string          `json:"date"` // YYYY-MM-DD, roster calendar day
	Type       DutyType        `json:"type"`
	ReportUTC  time.Time       `json:"report_utc"`
	ReleaseUTC time.Time       `json:"release_utc"`
	Segments   []FlightSegment `json:"segments,omitempty"`

	// Augmented / ULR metadata.
	Crew         CrewComposition   `json:"crew"`
	RestFacility RestFacilityClass `json:"rest_facility"`
	IsULR        bool              `json:"is_ulr,omitempty"`
}

// Hours returns the scheduled duty length; negative when report/release are
// inverted (the engine flags and clamps that case rather than failing).
func (d Duty) Hours() float64 {
	return d.ReleaseUTC.Sub(d.ReportUTC).Hours()
}

// Sectors returns the number of operating flight segments (deadhead and
// in-flight-rest legs do not count as flown sectors).
func (d Duty) Sectors() int {
	n := 0
	for _, s := range d.Segments {
		if s.Activity == ActivityNormal {
			n++
		}
	}
	return n
}

// LastArrival returns the arrival airport of the final segment, ok=false for
// non-flight duties.
func (d Duty) LastArrival() (Airport, bool) {
	if len(d.Segments) == 0 {
		return Airport{}, false
	}
	return d.Segments[len(d.Segments)-1].Arrival, true
}

// Roster is one pilot-month of duties, ordered chronologically.
type Roster struct {
	PilotID      string        `json:"pilot_id"`
	Month        string        `json:"month"` // YYYY-MM
	HomeBase     Airport       `json:"home_base"`
	Duties       []Duty        `json:"duties"`
	SleepWindows []SleepWindow `json:"sleep_windows,omitempty"` // planner output, keyed by time
}

// ---------------------------------------------------------------------------
// Sleep
// ---------------------------------------------------------------------------

// SleepWindow is a planned sleep opportunity between (or within) duties.
type SleepWindow struct {
	StartUTC    time.Time        `json:"start_utc"`
	EndUTC      time.Time        `json:"end_utc"`
	Environment SleepEnvironment `json:"environment"`
	Location    Airport          `json:"location"`

	IsNap         bool    `json:"is_nap,omitempty"`
	IsSplit       bool    `json:"is_split,omitempty"`
	SplitMinHours float64 `json:"split_min_hours,omitempty"` // shortest fragment in the split set
	IsFirstNight  bool    `json:"is_first_night,omitempty"`  // first night at a novel location
	IsSecondNight bool    `json:"is_second_night,omitempty"`
}

// Hours returns the raw window duration.
func (w SleepWindow) Hours() float64 { return w.EndUTC.Sub(w.StartUTC).Hours() }

// WarningSeverity grades a sleep or duty warning.
type WarningSeverity uint8

const (
	SeverityInfo WarningSeverity = iota
	SeverityModerate
	SeverityHigh
	SeverityCritical
	severityCount
)

var severityNames = [severityCount]string{
	SeverityInfo:     "info",
	SeverityModerate: "moderate",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

func (s WarningSeverity) String() string {
	if s < severityCount {
		return severityNames[s]
	}
	return "unknown"
}

// SleepWarning is a human-readable advisory produced by the sleep quality
// engine.
type SleepWarning struct {
	Severity       WarningSeverity `json:"severity"`
	Message        string          `json:"message"`
	Recommendation string          `json:"recommendation"`
}

// SleepQualityAnalysis is the itemized result of evaluating one sleep
// window. All factor fields are multiplicative efficiencies.
type SleepQualityAnalysis struct {
	TotalSleepHours     float64 `json:"total_sleep_hours"`     // raw window length
	ActualSleepHours    float64 `json:"actual_sleep_hours"`    // after biological cap
	EffectiveSleepHours float64 `json:"effective_sleep_hours"` // after SOL and efficiency
	SleepEfficiency     float64 `json:"sleep_efficiency"`      // combined, clamped [0.70, 1.0]

	BaseEfficiency     float64 `json:"base_efficiency"`
	WOCLBoost          float64 `json:"wocl_boost"`
	LateOnsetPenalty   float64 `json:"late_onset_penalty"`
	RecoveryBoost      float64 `json:"recovery_boost"`
	TimePressureFactor float64 `json:"time_pressure_factor"`
	AlarmAnxietyFactor float64 `json:"alarm_anxiety_factor"`
	SplitModifier      float64 `json:"split_modifier"`

	NapEfficiencyModifier float64 `json:"nap_efficiency_modifier"`
	NapDurationBand       string  `json:"nap_duration_band,omitempty"`

	SleepOnsetLatencyMin float64 `json:"sleep_onset_latency_minutes"`
	FirstNightExtraMin   float64 `json:"first_night_extra_minutes"`

	WOCLOverlapHours float64 `json:"wocl_overlap_hours"`
	SleepStartHour   float64 `json:"sleep_start_hour"` // biological local clock
	HoursSinceDuty   float64 `json:"hours_since_duty"` // -1 when no prior duty
	HoursUntilDuty   float64 `json:"hours_until_duty"`

	Warnings []SleepWarning `json:"warnings,omitempty"`
}

// ---------------------------------------------------------------------------
// Simulation output
// ---------------------------------------------------------------------------

// TimelinePoint is one sampled instant during a duty.
type TimelinePoint struct {
	UTC            time.Time   `json:"utc"`
	BiologicalHour float64     `json:"biological_hour"` // body-clock hour of day
	Performance    float64     `json:"performance"`     // 0-100
	SleepPressure  float64     `json:"sleep_pressure"`  // Process S
	Circadian      float64     `json:"circadian"`       // Process C
	SleepInertia   float64     `json:"sleep_inertia"`   // multiplicative factor
	TimeOnTask     float64     `json:"time_on_task"`    // multiplicative factor
	HoursOnDuty    float64     `json:"hours_on_duty"`
	Phase          FlightPhase `json:"phase"`
	CriticalPhase  bool        `json:"critical_phase"`
}

// PinchCause tags why a pinch event fired. Always the conjunctive rule;
// the tag records which side was deeper.
type PinchCause uint8

const (
	PinchCircadianLow PinchCause = iota
	PinchPressureHigh
	pinchCauseCount
)

var pinchCauseNames = [pinchCauseCount]string{
	PinchCircadianLow: "circadian_low",
	PinchPressureHigh: "pressure_high",
}

func (c PinchCause) String() string {
	if c < pinchCauseCount {
		return pinchCauseNames[c]
	}
	return "unknown"
}

// PinchEvent is a detected dangerous-fatigue instant: circadian alertness
// below threshold while sleep pressure is above threshold, simultaneously.
type PinchEvent struct {
	UTC           time.Time   `json:"utc"`
	Performance   float64     `json:"performance"`
	SleepPressure float64     `json:"sleep_pressure"`
	Circadian     float64     `json:"circadian"`
	Phase         FlightPhase `json:"phase"`
	Cause         PinchCause  `json:"cause"`
}

// FDPAssessment carries the regulatory evaluation attached to a duty.
type FDPAssessment struct {
	ActualHours    float64 `json:"actual_hours"`
	MaxHours       float64 `json:"max_hours"`
	ExtendedHours  float64 `json:"extended_hours"` // with commander's discretion
	UsedDiscretion bool    `json:"used_discretion"`
	Compliant      bool    `json:"compliant"`

	// Rest preceding the duty, ORO.FTL.235. -1 on the first duty of the
	// analyzed month, where the prior rest is unknown.
	RestBeforeHours float64 `json:"rest_before_hours"`
	RestCompliant   bool    `json:"rest_compliant"`
}

// InflightRestBlock records a credited in-flight rest rotation on an
// augmented duty.
type InflightRestBlock struct {
	StartUTC       time.Time `json:"start_utc"`
	EndUTC         time.Time `json:"end_utc"`
	EffectiveHours float64   `json:"effective_hours"`
}

// DutyTimeline aggregates one duty's simulation output.
type DutyTimeline struct {
	DutyID string   `json:"duty_id"`
	Date   string   `json:"date"`
	Type   DutyType `json:"type"`

	Points      []TimelinePoint `json:"points"`
	PinchEvents []PinchEvent    `json:"pinch_events,omitempty"`

	MinPerformance     float64  `json:"min_performance"`
	AvgPerformance     float64  `json:"avg_performance"`
	LandingPerformance *float64 `json:"landing_performance,omitempty"` // nil for non-flight duties

	SleepDebt         float64 `json:"sleep_debt"`  // hours, at report
	WOCLHours         float64 `json:"wocl_hours"`  // duty time inside the WOCL
	PriorSleep        float64 `json:"prior_sleep"` // effective hours before report
	PreDutyAwakeHours float64 `json:"pre_duty_awake_hours"`
	CircadianShift    float64 `json:"circadian_phase_shift"` // hours vs home body clock

	Risk RiskLevel     `json:"risk"`
	FDP  FDPAssessment `json:"fdp"`

	SleepQuality *SleepQualityAnalysis `json:"sleep_quality,omitempty"` // main pre-duty sleep

	// Augmented / ULR derived fields.
	InflightRest      []InflightRestBlock `json:"inflight_rest,omitempty"`
	ReturnToDeckScore *float64            `json:"return_to_deck_performance,omitempty"`
	ULRViolations     []string            `json:"ulr_violations,omitempty"`

	Warnings []string `json:"warnings,omitempty"` // per-duty anomalies, non-fatal
}

// BodyClockPoint samples the circadian adaptation state for the chronogram.
type BodyClockPoint struct {
	UTC               time.Time `json:"utc"`
	PhaseShiftHours   float64   `json:"phase_shift_hours"`
	ReferenceTimezone string    `json:"reference_timezone"`
}

// MonthlyAnalysis is the whole-roster aggregate.
type MonthlyAnalysis struct {
	PilotID  string `json:"pilot_id"`
	Month    string `json:"month"`
	HomeBase string `json:"home_base"`

	Duties []DutyTimeline `json:"duties"`

	TotalDuties     int     `json:"total_duties"`
	TotalSectors    int     `json:"total_sectors"`
	TotalDutyHours  float64 `json:"total_duty_hours"`
	TotalBlockHours float64 `json:"total_block_hours"`

	HighRiskDuties     int `json:"high_risk_duties"`
	CriticalRiskDuties int `json:"critical_risk_duties"`
	TotalPinchEvents   int `json:"total_pinch_events"`

	AvgSleepPerNight float64 `json:"avg_sleep_per_night"`
	MaxSleepDebt     float64 `json:"max_sleep_debt"`

	WorstDutyID      string  `json:"worst_duty_id"`
	WorstPerformance float64 `json:"worst_performance"`

	TotalULRDuties       int      `json:"total_ulr_duties"`
	TotalAugmentedDuties int      `json:"total_augmented_duties"`
	ULRViolations        []string `json:"ulr_violations,omitempty"`

	BodyClock []BodyClockPoint `json:"body_clock,omitempty"`

	EndState StateSnapshot `json:"end_state"`
}

// StateSnapshot is the serializable physiological end-state used to chain
// fatigue continuity across months. A handful of floats and timestamps;
// no version-specific internals.
type StateSnapshot struct {
	SleepPressure     float64   `json:"sleep_pressure"`
	SleepDebtHours    float64   `json:"sleep_debt_hours"`
	PhaseShiftHours   float64   `json:"phase_shift_hours"`
	ReferenceTimezone string    `json:"reference_timezone"`
	ReferenceOffset   float64   `json:"reference_offset_hours"`
	LastWakeUTC       time.Time `json:"last_wake_utc"`
	AsOfUTC           time.Time `json:"as_of_utc"`
}
