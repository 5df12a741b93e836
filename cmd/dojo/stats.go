package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dojolog/dojo/internal/journal"
	"github.com/dojolog/dojo/internal/stats"
	"github.com/dojolog/dojo/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats [range]",
	Short: "Weekly training summaries",
	Long: `Show per-week training summaries over a reporting window.

Each ISO week gets volume, modality mix, hard-session count, training
load (sum of duration x RPE over rated sessions) and consistency, with
week-over-week deltas. The range is one of 1w, 1m, 3m, 6m (default 1m).`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		rng := stats.RangeMonth
		if len(args) > 0 {
			rng = stats.Range(args[0])
		}
		start, end, err := stats.Resolve(rng, time.Now())
		if err != nil {
			fatal("%v", err)
		}

		st := openStore(ctx)
		defer st.Close()

		sessions, err := st.SessionsBetween(ctx, start, end)
		if err != nil {
			fatal("Error reading sessions: %v", err)
		}

		weeks := stats.WeekSummaries(sessions)
		if len(weeks) == 0 {
			fmt.Printf("%s Nothing logged between %s and %s\n",
				ui.RenderDim("·"), start.Format(journal.DateFormat), end.Format(journal.DateFormat))
			return
		}

		for _, w := range weeks {
			fmt.Printf("\n%s  %s\n", ui.RenderHeader(w.WeekID),
				ui.RenderDim(w.Start.Format(journal.DateFormat)+" – "+w.End.Format(journal.DateFormat)))

			fmt.Printf("  sessions  %d%s\n", w.SessionCount, renderDelta(w.DeltaSessionCount))
			fmt.Printf("  minutes   %d%s\n", w.TotalMinutes, renderDelta(w.DeltaTotalMinutes))
			fmt.Printf("  modality  %s\n", renderModality(w.ModalityCounts))
			fmt.Printf("  hard      %d%s", w.HardSessions, renderDelta(w.DeltaHardSessions))
			if w.AvgRPE != nil {
				fmt.Printf("   load %d   avg rpe %.1f", w.TrainingLoad, *w.AvgRPE)
			}
			fmt.Println()
			fmt.Printf("  days      %d active, longest gap %d\n", w.ActiveDays, w.MaxGapDays)
			if w.Energy1Sessions > 0 {
				fmt.Printf("  %s\n", ui.RenderWarn(fmt.Sprintf("⚠ %d session(s) started very tired", w.Energy1Sessions)))
			}
		}
		fmt.Println()
	},
}

func renderDelta(d *int) string {
	if d == nil {
		return ""
	}
	switch {
	case *d > 0:
		return ui.RenderPass(fmt.Sprintf(" (+%d)", *d))
	case *d < 0:
		return ui.RenderWarn(fmt.Sprintf(" (%d)", *d))
	default:
		return ui.RenderDim(" (±0)")
	}
}

func renderModality(counts map[journal.Activity]int) string {
	if len(counts) == 0 {
		return ui.RenderDim("-")
	}
	parts := make([]string, 0, len(counts))
	for a, n := range counts {
		parts = append(parts, fmt.Sprintf("%s ×%d", a, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, "  ")
}
