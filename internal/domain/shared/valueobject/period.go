package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PeriodLayout is the year-month form used on the wire and in storage
const PeriodLayout = "2006-01"

// Period is a calendar month identifying one billing cycle.
// It is immutable; ordering is chronological.
type Period struct {
	year  int
	month time.Month
}

// NewPeriod creates a period from a year and month
func NewPeriod(year int, month time.Month) (Period, error) {
	if year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("invalid period year: %d", year)
	}
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("invalid period month: %d", month)
	}
	return Period{year: year, month: month}, nil
}

// ParsePeriod parses a YYYY-MM string
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(PeriodLayout, s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: expected YYYY-MM", s)
	}
	return Period{year: t.Year(), month: t.Month()}, nil
}

// MustParsePeriod is ParsePeriod for constants and tests
func MustParsePeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{year: t.Year(), month: t.Month()}
}

// Year returns the calendar year
func (p Period) Year() int { return p.year }

// Month returns the calendar month
func (p Period) Month() time.Month { return p.month }

// IsZero reports whether p is the zero value
func (p Period) IsZero() bool { return p.year == 0 }

// String renders the period as YYYY-MM
func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", p.year, int(p.month))
}

// Start returns midnight UTC on the first day of the period
func (p Period) Start() time.Time {
	return time.Date(p.year, p.month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last instant of the period
func (p Period) End() time.Time {
	return p.Next().Start().Add(-time.Nanosecond)
}

// Days returns the number of days in the period
func (p Period) Days() int {
	return p.End().Day()
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return PeriodOf(t.UTC()) == p
}

// Previous returns the preceding calendar month
func (p Period) Previous() Period {
	t := p.Start().AddDate(0, -1, 0)
	return Period{year: t.Year(), month: t.Month()}
}

// Next returns the following calendar month
func (p Period) Next() Period {
	t := p.Start().AddDate(0, 1, 0)
	return Period{year: t.Year(), month: t.Month()}
}

// Before reports whether p is earlier than other
func (p Period) Before(other Period) bool {
	if p.year != other.year {
		return p.year < other.year
	}
	return p.month < other.month
}

// After reports whether p is later than other
func (p Period) After(other Period) bool {
	return other.Before(p)
}

// DayDate returns the given day-of-month in this period, clamped to the
// period's last day. The result is the end of that day in UTC.
func (p Period) DayDate(day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := p.Days(); day > last {
		day = last
	}
	return time.Date(p.year, p.month, day, 23, 59, 59, 0, time.UTC)
}

// MarshalJSON implements json.Marshaler
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Period) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*p = Period{}
		return nil
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer
func (p Period) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements sql.Scanner
func (p *Period) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		*p = Period{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Period", value)
	}
	if s == "" {
		*p = Period{}
		return nil
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
