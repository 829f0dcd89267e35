// Package availability decides whether a requested rental period is free for a car.
package availability

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const dayLayout = "2006-01-02"

var (
	// ErrOverlap means the request includes a day already booked.
	ErrOverlap = errors.New("selected date range includes unavailable dates")
	// ErrOrder means the return day is not after the pick-up day.
	ErrOrder = errors.New("to date must be after from date")
	// ErrPast means the pick-up day is before today.
	ErrPast = errors.New("from date is in the past")
	// ErrTooLong means the request spans more than MaxDays days.
	ErrTooLong = errors.New("date range is too long")
)

// MaxDays is the longest rental, in days, a single booking may cover.
const MaxDays = 365

// ValidationError is a rejected booking request. Conflicts lists the booked days it hit.
type ValidationError struct {
	Err       error
	Conflicts []time.Time
}

func (e *ValidationError) Error() string {
	if len(e.Conflicts) > 0 {
		return fmt.Sprintf("%v: %s", e.Err, e.Conflicts[0].Format(dayLayout))
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Range is an inclusive span of calendar days.
type Range struct {
	From time.Time
	To   time.Time
}

// Days enumerates every calendar day in the range, From and To included.
func (r Range) Days() []time.Time {
	from, to := Day(r.From), Day(r.To)
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MinTo is the earliest allowed return day for a pick-up on from.
func MinTo(from time.Time) time.Time {
	return Day(from).AddDate(0, 0, 1)
}

// BookedDates holds the day ranges covered by a car's active bookings.
type BookedDates []Range

// Booked collects the ranges, truncated to whole days. Ranges ending before they start are dropped.
func Booked(ranges ...Range) BookedDates {
	set := make(BookedDates, 0, len(ranges))
	for _, r := range ranges {
		r = Range{From: Day(r.From), To: Day(r.To)}
		if r.To.Before(r.From) {
			continue
		}
		set = append(set, r)
	}
	return set
}

// Contains reports whether day is booked.
func (b BookedDates) Contains(day time.Time) bool {
	day = Day(day)
	for _, r := range b {
		if !day.Before(r.From) && !day.After(r.To) {
			return true
		}
	}
	return false
}

// Conflicts returns the booked days inside r, in order. Only the overlap of r with
// each booking is enumerated, so the work is bounded by the shorter of the two.
func (b BookedDates) Conflicts(r Range) []time.Time {
	from, to := Day(r.From), Day(r.To)
	seen := map[time.Time]struct{}{}
	var hits []time.Time
	for _, br := range b {
		lo, hi := later(from, br.From), earlier(to, br.To)
		for d := lo; !d.After(hi); d = d.AddDate(0, 0, 1) {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			hits = append(hits, d)
		}
	}
	slices.SortFunc(hits, func(a, b time.Time) int { return a.Compare(b) })
	return hits
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// Validate checks a request against today and the booked set.
func Validate(req Range, today time.Time, booked BookedDates) error {
	if Day(req.From).Before(Day(today)) {
		return &ValidationError{Err: ErrPast}
	}
	if Day(req.To).Before(MinTo(req.From)) {
		return &ValidationError{Err: ErrOrder}
	}
	if Day(req.To).After(Day(req.From).AddDate(0, 0, MaxDays)) {
		return &ValidationError{Err: ErrTooLong}
	}
	if hits := booked.Conflicts(req); len(hits) > 0 {
		return &ValidationError{Err: ErrOverlap, Conflicts: hits}
	}
	return nil
}
