package models

import (
	"encoding/json"
	"fmt"
)

// Enums travel as their string names on the wire; the uint8 values are an
// in-process representation only.

func marshalName(s string) ([]byte, error) {
	return json.Marshal(s)
}

func unmarshalName(data []byte, kind string) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("models: %s: %w", kind, err)
	}
	return s, nil
}

func (d DutyType) MarshalJSON() ([]byte, error) { return marshalName(d.String()) }

func (d *DutyType) UnmarshalJSON(data []byte) error {
	s, err := unmarshalName(data, "duty type")
	if err != nil {
		return err
	}
	v, ok := ParseDutyType(s)
	if !ok {
		return fmt.Errorf("models: unknown duty type %q", s)
	}
	*d = v
	return nil
}

func (p FlightPhase) MarshalJSON() ([]byte, error) { return marshalName(p.String()) }

func (p *FlightPhase) UnmarshalJSON(data []byte) error {
	s, err := unmarshalName(data, "flight phase")
	if err != nil {
		return err
	}
	v, ok := ParseFlightPhase(s)
	if !ok {
		return fmt.Errorf("models: unknown flight phase %q", s)
	}
	*p = v
	return nil
}

func (a ActivityCode) MarshalJSON() ([]byte, error) { return marshalName(a.String()) }

func (a *ActivityCode) UnmarshalJSON(data []byte) error {
	s, err := unmarshalName(data, "activity code")
	if err != nil {
		return err
	}
	v, ok := ParseActivityCode(s)
	if !ok {
		return fmt.Errorf("models: unknown activity code %q", s)
	}
	*a = v
	return nil
}

func (e SleepEnvironment) MarshalJSON() ([]byte, error) { return marshalName(e.String()) }

func (e *SleepEnvironment) UnmarshalJSON(data []byte) error {
	s, err := unmarshalName(data, "sleep environment")
	if err != nil {
		return err
	}
	v, ok := ParseSleepEnvironment(s)
	if !ok {
		return fmt.Errorf("models: unknown sleep environment %q", s)
	}
	*e = v
	return nil
}

func (r RiskLevel) MarshalJSON() ([]byte, error) { return marshalName(r.String()) }

func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	s, err := unmarshalName(data, "risk level")
	if err != nil {
		return err
	}
	v, ok := ParseRiskLevel(s)
	if !ok {
		return fmt.Errorf("models: unknown risk level %q", s)
	}
	*r = v
	return nil
}

func (c CrewComposition) MarshalJSON() ([]byte, error) { return marshalName(c.String()) }

func (c *CrewComposition) UnmarshalJSON(data []byte) error {
	s, err := unmarshalName(data, "crew composition")
	if err != nil {
		return err
	}
	v, ok := ParseCrewComposition(s)
	if !ok {
		return fmt.Errorf("models: unknown crew composition %q", s)
	}
	*c = v
	return nil
}

func (f RestFacilityClass) MarshalJSON() ([]byte, error) { return marshalName(f.String()) }

func (f *RestFacilityClass) UnmarshalJSON(data []byte) error {
	s, err := unmarshalName(data, "rest facility class")
	if err != nil {
		return err
	}
	v, ok := ParseRestFacilityClass(s)
	if !ok {
		return fmt.Errorf("models: unknown rest facility class %q", s)
	}
	*f = v
	return nil
}

func (c PinchCause) MarshalJSON() ([]byte, error) { return marshalName(c.String()) }

func (s WarningSeverity) MarshalJSON() ([]byte, error) { return marshalName(s.String()) }
