package stats

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveWeek(t *testing.T) {
	// Wednesday 2025-03-12 lies in the ISO week Mon 10th - Sun 16th.
	start, end, err := Resolve(RangeWeek, date(2025, time.March, 12))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !start.Equal(date(2025, time.March, 10)) {
		t.Errorf("expected Monday 2025-03-10, got %v", start)
	}
	if !end.Equal(date(2025, time.March, 16)) {
		t.Errorf("expected Sunday 2025-03-16, got %v", end)
	}

	// A Sunday anchors to the same week, not the next one.
	start, _, _ = Resolve(RangeWeek, date(2025, time.March, 16))
	if !start.Equal(date(2025, time.March, 10)) {
		t.Errorf("Sunday anchored to wrong week: %v", start)
	}
}

func TestResolveMonth(t *testing.T) {
	// March 2025: the 1st is a Saturday, the 31st a Monday. The window
	// widens to full ISO weeks on both sides.
	start, end, err := Resolve(RangeMonth, date(2025, time.March, 12))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !start.Equal(date(2025, time.February, 24)) {
		t.Errorf("expected week-aligned start 2025-02-24, got %v", start)
	}
	if !end.Equal(date(2025, time.April, 6)) {
		t.Errorf("expected week-aligned end 2025-04-06, got %v", end)
	}
}

func TestResolveQuarterCrossesYear(t *testing.T) {
	// Anchored in January, the three-month window starts in November
	// of the previous year.
	start, _, err := Resolve(RangeQuarter, date(2025, time.January, 15))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if start.After(date(2024, time.November, 1)) {
		t.Errorf("quarter window should start by 2024-11-01, got %v", start)
	}
	if start.Weekday() != time.Monday {
		t.Errorf("window start must be a Monday, got %v", start.Weekday())
	}
}

func TestResolveHalfYear(t *testing.T) {
	start, end, err := Resolve(RangeHalfYear, date(2025, time.August, 20))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if start.Month() != time.March && start.Month() != time.February {
		t.Errorf("six-month window should reach back to March, got %v", start)
	}
	if end.Before(date(2025, time.August, 31)) {
		t.Errorf("window must cover the anchor month, got end %v", end)
	}
}

func TestResolveUnknownRange(t *testing.T) {
	if _, _, err := Resolve("2y", date(2025, time.March, 12)); err == nil {
		t.Fatal("expected error for unknown range")
	}
}

func TestPeriodsAreAdjacent(t *testing.T) {
	curStart, _, _, prevEnd, err := Periods(RangeWeek, date(2025, time.March, 12))
	if err != nil {
		t.Fatalf("Periods failed: %v", err)
	}
	if !prevEnd.Equal(curStart.AddDate(0, 0, -1)) {
		t.Errorf("previous period must end the day before the current starts: %v vs %v",
			prevEnd, curStart)
	}
}
