package models

import (
	"fmt"
	"strings"
	"time"
)

const civilDateLayout = "2006-01-02"

// CivilDate is a calendar date with no time-of-day component. Scheduling
// works in whole days, so quotes never shift with the hour they were asked.
type CivilDate struct {
	t time.Time
}

func NewCivilDate(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse(civilDateLayout, strings.TrimSpace(s))
	if err != nil {
		return CivilDate{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return CivilDate{t: t}, nil
}

func (d CivilDate) Time() time.Time        { return d.t }
func (d CivilDate) AddDays(n int) CivilDate {
	return CivilDate{t: d.t.AddDate(0, 0, n)}
}
func (d CivilDate) Weekday() time.Weekday { return d.t.Weekday() }
func (d CivilDate) IsZero() bool          { return d.t.IsZero() }
func (d CivilDate) String() string        { return d.t.Format(civilDateLayout) }

// MonthDay renders "MM-DD", the key used by the holiday calendar.
func (d CivilDate) MonthDay() string { return d.t.Format("01-02") }

func (d CivilDate) Before(other CivilDate) bool { return d.t.Before(other.t) }
func (d CivilDate) After(other CivilDate) bool  { return d.t.After(other.t) }
func (d CivilDate) Equal(other CivilDate) bool  { return d.t.Equal(other.t) }

func (d CivilDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *CivilDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = CivilDate{}
		return nil
	}
	parsed, err := ParseCivilDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
