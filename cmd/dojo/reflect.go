package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dojolog/dojo/internal/journal"
	"github.com/dojolog/dojo/internal/stats"
	"github.com/dojolog/dojo/internal/ui"
)

var reflectCmd = &cobra.Command{
	Use:   "reflect [range]",
	Short: "Compare a training period against the one before it",
	Long: `Summarize a reporting window next to the equally shaped window
that precedes it: total volume, consistency, dominant modality and load
density (minutes per active day). The range is one of 1w, 1m, 3m, 6m
(default 1m).`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		rng := stats.RangeMonth
		if len(args) > 0 {
			rng = stats.Range(args[0])
		}
		curStart, curEnd, prevStart, prevEnd, err := stats.Periods(rng, time.Now())
		if err != nil {
			fatal("%v", err)
		}

		st := openStore(ctx)
		defer st.Close()

		// One read covers both windows; the windows are adjacent.
		sessions, err := st.SessionsBetween(ctx, prevStart, curEnd)
		if err != nil {
			fatal("Error reading sessions: %v", err)
		}

		cur := stats.Summarize(stats.FilterByDate(sessions, curStart, curEnd))
		prev := stats.Summarize(stats.FilterByDate(sessions, prevStart, prevEnd))

		fmt.Printf("\n%s %s – %s\n", ui.RenderHeader("This period"),
			curStart.Format(journal.DateFormat), curEnd.Format(journal.DateFormat))
		printPeriod(cur)

		fmt.Printf("\n%s %s – %s\n", ui.RenderHeader("Previous period"),
			prevStart.Format(journal.DateFormat), prevEnd.Format(journal.DateFormat))
		printPeriod(prev)

		if d := stats.Deltas(cur, prev); d != nil {
			fmt.Printf("\n%s\n", ui.RenderHeader("Change"))
			fmt.Printf("  minutes      %+d\n", d.Minutes)
			fmt.Printf("  active days  %+d\n", d.ActiveDays)
			fmt.Printf("  longest gap  %+d\n", d.MaxGapDays)
			fmt.Printf("  load density %+.1f min/day\n", d.LoadDensity)
			if d.DominantActivityChanged {
				fmt.Printf("  %s\n", ui.RenderAccent(fmt.Sprintf("focus shifted from %s to %s",
					prev.DominantActivity, cur.DominantActivity)))
			}
		}
		fmt.Println()
	},
}

func printPeriod(p *stats.PeriodSummary) {
	if p == nil {
		fmt.Printf("  %s\n", ui.RenderDim("no training logged"))
		return
	}
	fmt.Printf("  %d sessions, %d minutes over %d active days\n",
		p.Sessions, p.TotalMinutes, p.ActiveDays)
	fmt.Printf("  mostly %s, %.1f min per active day, longest gap %d days\n",
		p.DominantActivity, p.LoadDensity, p.MaxGapDays)
}
