package report

import (
	"strings"
	"time"
)

// DateLayout is the wire format for range bounds.
const DateLayout = "2006-01-02"

// DateRange is a closed interval of calendar dates. A zero bound means the
// bound has not been selected.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalises both bounds to calendar dates.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: dateOf(start), End: dateOf(end)}
}

// ParseDateRange parses YYYY-MM-DD bounds. Either bound may be empty, which
// yields a partial (or empty) range. Malformed dates and inverted ranges are
// reported as *ValidationError.
func ParseDateRange(start, end string) (DateRange, error) {
	var rng DateRange
	var err error
	if rng.Start, err = parseBound("start_date", start); err != nil {
		return DateRange{}, err
	}
	if rng.End, err = parseBound("end_date", end); err != nil {
		return DateRange{}, err
	}
	if err := rng.Validate(); err != nil {
		return DateRange{}, err
	}
	return rng, nil
}

func parseBound(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Value: s, Reason: "expected YYYY-MM-DD"}
	}
	return t, nil
}

// Complete reports whether both bounds are selected.
func (r DateRange) Complete() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// Partial reports whether exactly one bound is selected.
func (r DateRange) Partial() bool {
	return r.Start.IsZero() != r.End.IsZero()
}

// Validate rejects a complete range whose start falls after its end.
func (r DateRange) Validate() error {
	if !r.Complete() {
		return nil
	}
	if dateOf(r.Start).After(dateOf(r.End)) {
		return &ValidationError{
			Field:  "date_range",
			Value:  r.String(),
			Reason: "start_date is after end_date",
		}
	}
	return nil
}

// Contains reports whether t's calendar date lies within the range,
// inclusive of both bounds. Only meaningful for a complete range.
func (r DateRange) Contains(t time.Time) bool {
	d := dateOf(t)
	return !d.Before(dateOf(r.Start)) && !d.After(dateOf(r.End))
}

func (r DateRange) String() string {
	return formatBound(r.Start) + ".." + formatBound(r.End)
}

// SpanOf returns the range covering the earliest and latest timestamps in
// records, the dashboard's default selection.
func SpanOf(timestamps []time.Time) DateRange {
	var rng DateRange
	for _, t := range timestamps {
		if t.IsZero() {
			continue
		}
		d := dateOf(t)
		if rng.Start.IsZero() || d.Before(rng.Start) {
			rng.Start = d
		}
		if rng.End.IsZero() || d.After(rng.End) {
			rng.End = d
		}
	}
	return rng
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// dateOf drops the time of day, keeping the calendar date as observed in
// t's own location.
func dateOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
