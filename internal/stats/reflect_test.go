package stats

import (
	"testing"
	"time"

	"github.com/dojolog/dojo/internal/journal"
)

func TestSummarize(t *testing.T) {
	sessions := []*journal.Session{
		session("2025-03-10", journal.ActivityKarate, 90, 4, nil),
		session("2025-03-10", journal.ActivityWeights, 30, 3, nil),
		session("2025-03-14", journal.ActivityKarate, 60, 3, nil),
	}

	sum := Summarize(sessions)
	if sum == nil {
		t.Fatal("expected a summary")
	}
	if sum.Sessions != 3 || sum.TotalMinutes != 180 {
		t.Errorf("count/minutes mismatch: %+v", sum)
	}
	if sum.DominantActivity != journal.ActivityKarate {
		t.Errorf("expected karate dominant, got %s", sum.DominantActivity)
	}
	if sum.ActiveDays != 2 {
		t.Errorf("expected 2 active days, got %d", sum.ActiveDays)
	}
	if sum.MaxGapDays != 3 {
		t.Errorf("expected max gap 3 (11th-13th), got %d", sum.MaxGapDays)
	}
	if sum.LoadDensity != 90 {
		t.Errorf("expected load density 90.0 min/day, got %v", sum.LoadDensity)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if Summarize(nil) != nil {
		t.Error("empty period must summarize to nil")
	}
}

func TestDeltas(t *testing.T) {
	cur := Summarize([]*journal.Session{
		session("2025-03-10", journal.ActivityKarate, 120, 4, nil),
		session("2025-03-12", journal.ActivityKarate, 60, 3, nil),
	})
	prev := Summarize([]*journal.Session{
		session("2025-03-03", journal.ActivityRun, 30, 3, nil),
		session("2025-03-04", journal.ActivityRun, 30, 3, nil),
	})

	d := Deltas(cur, prev)
	if d == nil {
		t.Fatal("expected deltas")
	}
	if d.Minutes != 120 {
		t.Errorf("expected minutes delta 120, got %d", d.Minutes)
	}
	if d.ActiveDays != 0 {
		t.Errorf("expected active-days delta 0, got %d", d.ActiveDays)
	}
	if !d.DominantActivityChanged {
		t.Error("dominant activity change not detected")
	}

	if Deltas(cur, nil) != nil || Deltas(nil, prev) != nil {
		t.Error("deltas require both periods")
	}
}

func TestFilterByDate(t *testing.T) {
	sessions := []*journal.Session{
		session("2025-03-09", journal.ActivityKarate, 60, 3, nil),
		session("2025-03-10", journal.ActivityKarate, 60, 3, nil),
		session("2025-03-16", journal.ActivityKarate, 60, 3, nil),
		session("2025-03-17", journal.ActivityKarate, 60, 3, nil),
	}
	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC)

	got := FilterByDate(sessions, start, end)
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions inside the window, got %d", len(got))
	}
	if got[0].Date != "2025-03-10" || got[1].Date != "2025-03-16" {
		t.Error("window must be inclusive on both ends")
	}
}
