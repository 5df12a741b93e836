package stats

import (
	"math"
	"time"

	"github.com/dojolog/dojo/internal/journal"
)

// PeriodSummary condenses a reporting window for reflection.
type PeriodSummary struct {
	Sessions     int
	TotalMinutes int
	ActiveDays   int
	MaxGapDays   int

	// DominantActivity is the most frequent modality in the period.
	DominantActivity journal.Activity

	// LoadDensity is minutes per active day, rounded to one decimal.
	LoadDensity float64
}

// PeriodDelta compares the current period against the previous one.
type PeriodDelta struct {
	Minutes                 int
	ActiveDays              int
	MaxGapDays              int
	LoadDensity             float64
	DominantActivityChanged bool
}

// Periods resolves a range into the current window and the window of
// equal shape immediately before it, for side-by-side reflection.
func Periods(r Range, anchor time.Time) (curStart, curEnd, prevStart, prevEnd time.Time, err error) {
	curStart, curEnd, err = Resolve(r, anchor)
	if err != nil {
		return
	}
	prevStart, prevEnd, err = Resolve(r, curStart.AddDate(0, 0, -1))
	return
}

// FilterByDate keeps sessions whose date falls inside [start, end].
func FilterByDate(sessions []*journal.Session, start, end time.Time) []*journal.Session {
	var out []*journal.Session
	for _, s := range sessions {
		d, err := time.Parse(journal.DateFormat, s.Date)
		if err != nil {
			continue
		}
		if !d.Before(start) && !d.After(end) {
			out = append(out, s)
		}
	}
	return out
}

// Summarize condenses a period. Returns nil for an empty period so
// callers can distinguish "no training" from "quiet week".
func Summarize(sessions []*journal.Session) *PeriodSummary {
	if len(sessions) == 0 {
		return nil
	}

	sum := &PeriodSummary{Sessions: len(sessions)}
	counts := make(map[journal.Activity]int)
	for _, s := range sessions {
		sum.TotalMinutes += s.Duration
		counts[s.Activity]++
	}

	best := 0
	for activity, n := range counts {
		if n > best || (n == best && activity < sum.DominantActivity) {
			best = n
			sum.DominantActivity = activity
		}
	}

	sum.ActiveDays, sum.MaxGapDays = dayCoverage(sessions)
	if sum.ActiveDays > 0 {
		sum.LoadDensity = round1(float64(sum.TotalMinutes) / float64(sum.ActiveDays))
	}
	return sum
}

// Deltas compares two period summaries. Returns nil unless both
// periods have data.
func Deltas(cur, prev *PeriodSummary) *PeriodDelta {
	if cur == nil || prev == nil {
		return nil
	}
	return &PeriodDelta{
		Minutes:                 cur.TotalMinutes - prev.TotalMinutes,
		ActiveDays:              cur.ActiveDays - prev.ActiveDays,
		MaxGapDays:              cur.MaxGapDays - prev.MaxGapDays,
		LoadDensity:             round1(cur.LoadDensity - prev.LoadDensity),
		DominantActivityChanged: cur.DominantActivity != prev.DominantActivity,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
