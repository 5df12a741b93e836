package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dojolog/dojo/internal/journal"
	"github.com/dojolog/dojo/internal/stats"
	"github.com/dojolog/dojo/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list [range]",
	Short: "List recent sessions",
	Long: `List sessions in a reporting window, newest first.

The range is one of 1w, 1m, 3m, 6m (default 1w). Windows are aligned to
whole ISO weeks: the month containing "now" is widened to the Monday of
its first week and the Sunday of its last.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		rng := stats.RangeWeek
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
		if len(sessions) == 0 {
			fmt.Printf("%s No sessions between %s and %s\n",
				ui.RenderDim("·"), start.Format(journal.DateFormat), end.Format(journal.DateFormat))
			return
		}

		fmt.Println(ui.RenderHeader(fmt.Sprintf("%-10s %-12s %-8s %6s  %-6s %-10s %4s  %s",
			"ID", "DATE", "ACTIVITY", "MIN", "ENERGY", "EMPHASIS", "RPE", "NOTES")))
		// Newest first for reading; storage returns oldest first.
		for i := len(sessions) - 1; i >= 0; i-- {
			s := sessions[i]
			rpe := ui.RenderDim("-")
			if s.RPE != nil {
				rpe = fmt.Sprintf("%d", *s.RPE)
				if *s.RPE >= journal.HardRPEThreshold {
					rpe = ui.RenderAccent(rpe)
				}
			}
			fmt.Printf("%-10s %-12s %-8s %6d  %d/5    %-10s %4s  %s\n",
				shortUID(s.UID), s.Date, s.Activity, s.Duration, s.Energy,
				s.Emphasis, rpe, clip(s.Notes, 40))
		}
		fmt.Printf("\n%s\n", ui.RenderDim(fmt.Sprintf("%d sessions, %s to %s",
			len(sessions), start.Format(journal.DateFormat), end.Format(journal.DateFormat))))
	},
}

// shortUID returns the display prefix of a session uid, accepted back
// by rate/delete.
func shortUID(uid string) string {
	if len(uid) > 8 {
		return uid[:8]
	}
	return uid
}

func clip(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
