// Package stats derives weekly and period-level summaries from
// already-reconciled journal data. Everything here is a pure function
// over sessions loaded from the store; tombstones never reach it.
package stats

import (
	"fmt"
	"time"
)

// Range is a canonical reporting window.
type Range string

const (
	RangeWeek     Range = "1w"
	RangeMonth    Range = "1m"
	RangeQuarter  Range = "3m"
	RangeHalfYear Range = "6m"
)

// Ranges lists the supported windows in display order.
var Ranges = []Range{RangeWeek, RangeMonth, RangeQuarter, RangeHalfYear}

// Resolve expands a range into inclusive [start, end] dates anchored at
// the given day. Month-based ranges are calendar-aligned and then
// widened to full ISO weeks so week buckets never straddle the edges.
func Resolve(r Range, anchor time.Time) (start, end time.Time, err error) {
	switch r {
	case RangeWeek:
		start, end = weekBounds(anchor)
		return start, end, nil

	case RangeMonth:
		first, last := monthBounds(anchor)
		start, _ = weekBounds(first)
		_, end = weekBounds(last)
		return start, end, nil

	case RangeQuarter:
		return monthsBack(anchor, 2)

	case RangeHalfYear:
		return monthsBack(anchor, 5)

	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown range %q", r)
	}
}

// monthsBack resolves a window starting at the first day of the month n
// months before the anchor's month, week-aligned on both ends.
func monthsBack(anchor time.Time, n int) (start, end time.Time, err error) {
	year, month := anchor.Year(), int(anchor.Month())-n
	for month <= 0 {
		month += 12
		year--
	}

	firstOfStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	_, lastOfAnchor := monthBounds(anchor)

	start, _ = weekBounds(firstOfStart)
	_, end = weekBounds(lastOfAnchor)
	return start, end, nil
}

// weekBounds returns Monday and Sunday of the ISO week containing d.
func weekBounds(d time.Time) (monday, sunday time.Time) {
	offset := int(d.Weekday()+6) % 7 // Monday=0 .. Sunday=6
	monday = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// monthBounds returns the first and last day of d's calendar month.
func monthBounds(d time.Time) (first, last time.Time) {
	first = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}
