package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	PeriodThisMonth PeriodSelector = "this_month"
	PeriodLastMonth PeriodSelector = "last_month"
	PeriodAllTime   PeriodSelector = "all_time"
)

// DateLayout is the wire format for dates throughout the service.
const DateLayout = "2006-01-02"

type (
	// PeriodSelector names a date-range filter applied to a transaction set.
	PeriodSelector string

	// Date is a calendar date with day granularity. The time-of-day portion
	// is always UTC midnight.
	Date struct {
		time.Time
	}

	// Transaction is a single income or expense entry. Amount is always
	// non-negative; direction is carried by IsIncome, never by sign.
	Transaction struct {
		ID          string
		Date        Date
		Amount      Money
		IsIncome    bool
		Category    string
		Description string
		Merchant    string
	}

	// Budget is a per-category spending limit for one calendar month.
	Budget struct {
		ID           string
		Category     string
		Month        Date
		MonthlyLimit Money
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidPeriod    = errors.New("invalid period selector")
	ErrEmptyDescription = errors.New("empty description")
	ErrNotFound         = errors.New("not found")
)

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ISO returns the date in YYYY-MM-DD form.
func (d Date) ISO() string {
	return d.Format(DateLayout)
}

// Label returns the short display form used by the daily series, e.g. "2 Jun".
func (d Date) Label() string {
	return d.Format("2 Jan")
}

// FirstOfMonth returns the first day of the date's month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// MarshalJSON writes the date in its YYYY-MM-DD wire form.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
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

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ParsePeriod validates a period selector from the wire. Unknown values are
// an error, never a silent fallback to all-time.
func ParsePeriod(s string) (PeriodSelector, error) {
	p := PeriodSelector(s)
	switch p {
	case PeriodThisMonth, PeriodLastMonth, PeriodAllTime:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Amount.Paise <= 0 {
		return ErrInvalidAmount
	}
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if len(desc) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return errors.New("empty category")
	}
	if err := b.Month.Validate(); err != nil {
		return err
	}
	if b.MonthlyLimit.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
