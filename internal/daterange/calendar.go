// Package daterange computes calendar-day boundaries in a single civil
// timezone and turns them into query predicates.
package daterange

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // civil timezone must resolve on hosts without zoneinfo
)

const (
	// DateLayout is the format of every civil date boundary.
	DateLayout = "2006-01-02"
	// InstantLayout renders absolute instants with millisecond precision.
	InstantLayout = "2006-01-02T15:04:05.000Z07:00"
	// DefaultTimezone is the civil timezone the stalls operate in (UTC+8).
	DefaultTimezone = "Asia/Manila"
)

// ErrInvalidDate is returned for boundaries that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")

// Range is a pair of civil dates. Either bound may be empty.
type Range struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool {
	return r.StartDate == "" && r.EndDate == ""
}

// Calendar answers "what day is it" questions for one civil timezone.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// Option customizes a Calendar.
type Option func(*Calendar)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Calendar) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCalendar builds a calendar for loc. A nil loc falls back to a fixed UTC+8 zone.
func NewCalendar(loc *time.Location, opts ...Option) *Calendar {
	if loc == nil {
		loc = time.FixedZone("UTC+8", 8*60*60)
	}
	c := &Calendar{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadCalendar resolves an IANA timezone name. Empty means DefaultTimezone.
func LoadCalendar(name string, opts ...Option) (*Calendar, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return NewCalendar(loc, opts...), nil
}

// Location returns the civil timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the civil timezone.
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// today renders now into the civil timezone and keeps only the calendar date.
// The result is a UTC midnight used purely for date arithmetic.
func (c *Calendar) today() time.Time {
	n := c.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current civil date.
func (c *Calendar) Today() string {
	return formatDate(c.today())
}

// DaysAgo returns the civil date n days before today.
func (c *Calendar) DaysAgo(n int) string {
	return formatDate(c.today().AddDate(0, 0, -n))
}

// Resolve maps a preset to concrete bounds as of now. Custom and unknown
// presets have no canonical mapping and yield an empty range.
func (c *Calendar) Resolve(p Preset) Range {
	return resolveAt(p, c.today())
}

func resolveAt(p Preset, today time.Time) Range {
	switch p {
	case Today:
		return Range{StartDate: formatDate(today), EndDate: formatDate(today)}
	case Yesterday:
		day := formatDate(today.AddDate(0, 0, -1))
		return Range{StartDate: day, EndDate: day}
	case Last7Days:
		return Range{StartDate: formatDate(today.AddDate(0, 0, -6)), EndDate: formatDate(today)}
	case Last30Days:
		return Range{StartDate: formatDate(today.AddDate(0, 0, -29)), EndDate: formatDate(today)}
	case ThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Range{StartDate: formatDate(first), EndDate: formatDate(today)}
	case LastMonth:
		first := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(today.Year(), today.Month(), 0, 0, 0, 0, 0, time.UTC)
		return Range{StartDate: formatDate(first), EndDate: formatDate(last)}
	default:
		return Range{}
	}
}

// Detect finds the preset that produces r as of now. An empty range selects
// no preset; a range matching none of them is custom.
func (c *Calendar) Detect(r Range) Preset {
	if r.IsZero() {
		return ""
	}
	today := c.today()
	for _, p := range orderedPresets {
		if resolveAt(p, today) == r {
			return p
		}
	}
	return Custom
}

// ValidateOptions tunes Validate.
type ValidateOptions struct {
	// MaxDays caps the inclusive span. Zero disables the cap.
	MaxDays int
	// AllowFuture permits bounds after today.
	AllowFuture bool
}

// Validation is the outcome of Validate. Reason is set only when invalid.
type Validation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"error,omitempty"`
}

// Err converts an invalid result into an error.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	return errors.New(v.Reason)
}

func invalid(reason string) Validation {
	return Validation{Valid: false, Reason: reason}
}

// Validate checks a candidate range. It never clamps.
func (c *Calendar) Validate(r Range, opts ValidateOptions) Validation {
	if r.IsZero() {
		return Validation{Valid: true}
	}

	var start, end time.Time
	var err error
	if r.StartDate != "" {
		if start, err = ParseDate(r.StartDate); err != nil {
			return invalid("Invalid date format, expected YYYY-MM-DD")
		}
	}
	if r.EndDate != "" {
		if end, err = ParseDate(r.EndDate); err != nil {
			return invalid("Invalid date format, expected YYYY-MM-DD")
		}
	}

	// Open-ended ranges are accepted as-is.
	if r.StartDate == "" || r.EndDate == "" {
		return Validation{Valid: true}
	}

	if start.After(end) {
		return invalid("Start date must be before or equal to end date")
	}

	if opts.MaxDays > 0 {
		span := int(end.Sub(start).Hours()/24) + 1
		if span > opts.MaxDays {
			return invalid(fmt.Sprintf("Date range cannot exceed %d days", opts.MaxDays))
		}
	}

	if !opts.AllowFuture {
		today := c.today()
		if start.After(today) || end.After(today) {
			return invalid("Future dates are not allowed")
		}
	}

	return Validation{Valid: true}
}

// StartOfDay returns 00:00:00.000 of date in the civil timezone, as a UTC instant.
func (c *Calendar) StartOfDay(date string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.loc).UTC(), nil
}

// EndOfDay returns 23:59:59.999 of date in the civil timezone, as a UTC instant.
func (c *Calendar) EndOfDay(date string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), c.loc).UTC(), nil
}

// CivilDate reduces a stored date value to YYYY-MM-DD, dropping any time
// suffix. The date part is already civil and is not shifted.
func CivilDate(value string) string {
	if len(value) < len(DateLayout) {
		return ""
	}
	if _, err := ParseDate(value[:len(DateLayout)]); err != nil {
		return ""
	}
	return value[:len(DateLayout)]
}

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatInstant renders t in UTC with millisecond precision.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}
