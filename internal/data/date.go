package data

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strconv"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("must be a date in YYYY-MM-DD format")

// Date is a calendar date without a time of day. The zero Date means "no date".
type Date struct {
	time.Time
}

// NewDate returns the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON emits the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// UnmarshalJSON accepts a quoted YYYY-MM-DD string. An empty string leaves
// the zero Date, which callers treat as absent.
func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return ErrInvalidDate
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value binds the date as a YYYY-MM-DD string so comparisons behave the
// same on every supported driver.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// dateFromNull converts a nullable column value to an optional Date.
func dateFromNull(t sql.NullTime) *Date {
	if !t.Valid {
		return nil
	}
	d := NewDate(t.Time.Year(), t.Time.Month(), t.Time.Day())
	return &d
}
