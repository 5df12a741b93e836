package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/dojolog/dojo/internal/journal"
)

// WeekSummary aggregates one ISO week of training.
type WeekSummary struct {
	WeekID string // e.g. "2025-W11"
	Start  time.Time
	End    time.Time

	SessionCount int
	TotalMinutes int

	// ModalityCounts is the number of sessions per activity.
	ModalityCounts map[journal.Activity]int

	// HardSessions counts rated sessions at or above the hard-RPE
	// threshold. Unrated sessions never count as hard.
	HardSessions int
	// Energy1Sessions counts sessions logged at the lowest readiness.
	Energy1Sessions int

	// TrainingLoad is the sum of duration x RPE over rated sessions.
	TrainingLoad int
	// AvgRPE is nil when the week has no rated sessions.
	AvgRPE *float64

	ActiveDays int
	// MaxGapDays is the longest run of idle days between two active
	// days inside the week.
	MaxGapDays int

	// Deltas compare against the previous summarized week; nil on the
	// first week.
	DeltaSessionCount *int
	DeltaTotalMinutes *int
	DeltaHardSessions *int
}

// WeekSummaries buckets sessions into ISO weeks and summarizes each,
// ordered chronologically. Sessions with unparseable dates are skipped.
func WeekSummaries(sessions []*journal.Session) []WeekSummary {
	buckets := make(map[string][]*journal.Session)
	starts := make(map[string]time.Time)

	for _, s := range sessions {
		d, err := time.Parse(journal.DateFormat, s.Date)
		if err != nil {
			continue
		}
		id := weekID(d)
		buckets[id] = append(buckets[id], s)
		if _, ok := starts[id]; !ok {
			monday, _ := weekBounds(d)
			starts[id] = monday
		}
	}

	ids := make([]string, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return starts[ids[i]].Before(starts[ids[j]]) })

	summaries := make([]WeekSummary, 0, len(ids))
	var previous *WeekSummary

	for _, id := range ids {
		week := summarizeWeek(id, starts[id], buckets[id])

		if previous != nil {
			week.DeltaSessionCount = intPtr(week.SessionCount - previous.SessionCount)
			week.DeltaTotalMinutes = intPtr(week.TotalMinutes - previous.TotalMinutes)
			week.DeltaHardSessions = intPtr(week.HardSessions - previous.HardSessions)
		}

		summaries = append(summaries, week)
		previous = &summaries[len(summaries)-1]
	}

	return summaries
}

func summarizeWeek(id string, start time.Time, sessions []*journal.Session) WeekSummary {
	week := WeekSummary{
		WeekID:         id,
		Start:          start,
		End:            start.AddDate(0, 0, 6),
		SessionCount:   len(sessions),
		ModalityCounts: make(map[journal.Activity]int),
	}

	var rpeSum, rpeCount int
	for _, s := range sessions {
		week.TotalMinutes += s.Duration
		week.ModalityCounts[s.Activity]++
		if s.Energy == 1 {
			week.Energy1Sessions++
		}
		if s.RPE != nil {
			rpeSum += *s.RPE
			rpeCount++
			week.TrainingLoad += s.Duration * *s.RPE
			if *s.RPE >= journal.HardRPEThreshold {
				week.HardSessions++
			}
		}
	}
	if rpeCount > 0 {
		avg := float64(rpeSum) / float64(rpeCount)
		week.AvgRPE = &avg
	}

	week.ActiveDays, week.MaxGapDays = dayCoverage(sessions)
	return week
}

// dayCoverage returns the number of distinct training days and the
// longest idle gap between consecutive active days.
func dayCoverage(sessions []*journal.Session) (activeDays, maxGap int) {
	seen := make(map[string]bool)
	var days []time.Time
	for _, s := range sessions {
		if seen[s.Date] {
			continue
		}
		d, err := time.Parse(journal.DateFormat, s.Date)
		if err != nil {
			continue
		}
		seen[s.Date] = true
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	for i := 1; i < len(days); i++ {
		gap := int(days[i].Sub(days[i-1]).Hours()/24) - 1
		if gap > maxGap {
			maxGap = gap
		}
	}
	return len(days), maxGap
}

// weekID renders the ISO week identity, e.g. "2025-W07".
func weekID(d time.Time) string {
	year, week := d.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func intPtr(v int) *int { return &v }
