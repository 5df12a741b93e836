package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/dojolog/dojo/internal/journal"
	"github.com/dojolog/dojo/internal/ui"
)

var (
	logDate     string
	logActivity string
	logMinutes  int
	logEnergy   int
	logEmphasis string
	logRPE      int
	logNotes    string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record a training session",
	Long: `Record a training session in the journal.

With no flags, an interactive form walks through the entry. Flags fill
fields ahead of time; when --activity is given the form is skipped
entirely and the entry is written directly.

The date accepts YYYY-MM-DD or natural language ("yesterday",
"last tuesday"). Rest days take a duration of 0.`,
	Example: `  dojo log
  dojo log -a karate -m 90 -e 4 --emphasis technical -n "kumite night"
  dojo log -a run -m 30 -e 3 --emphasis physical -d yesterday`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		date, err := parseDate(logDate)
		if err != nil {
			fatal("%v", err)
		}

		sess := &journal.Session{
			Date:     date,
			Activity: journal.Activity(logActivity),
			Duration: logMinutes,
			Energy:   logEnergy,
			Emphasis: journal.Emphasis(logEmphasis),
			Notes:    logNotes,
		}
		if cmd.Flags().Changed("rpe") {
			rpe := logRPE
			sess.RPE = &rpe
		}

		if logActivity == "" {
			if err := runLogForm(sess); err != nil {
				fatal("%v", err)
			}
		}

		st := openStore(ctx)
		defer st.Close()

		if err := st.Insert(ctx, sess); err != nil {
			fatal("%v", err)
		}
		logger.Printf("logged session %s (%s %s, %d min)", sess.UID, sess.Date, sess.Activity, sess.Duration)

		fmt.Printf("%s Logged %s on %s (%d min, energy %d/5)\n",
			ui.RenderPass("✓"), sess.Activity, sess.Date, sess.Duration, sess.Energy)
		fmt.Printf("  %s\n", ui.RenderDim("id "+shortUID(sess.UID)))
	},
}

func init() {
	logCmd.Flags().StringVarP(&logDate, "date", "d", "", "session date (YYYY-MM-DD or natural language, default today)")
	logCmd.Flags().StringVarP(&logActivity, "activity", "a", "", "activity type (karate, weights, run, rowing, cardio, rest)")
	logCmd.Flags().IntVarP(&logMinutes, "minutes", "m", 0, "duration in minutes")
	logCmd.Flags().IntVarP(&logEnergy, "energy", "e", 3, "energy level 1-5")
	logCmd.Flags().StringVar(&logEmphasis, "emphasis", "", "session emphasis (technical, physical, mixed)")
	logCmd.Flags().IntVar(&logRPE, "rpe", 0, "rating of perceived exertion 1-10")
	logCmd.Flags().StringVarP(&logNotes, "notes", "n", "", "key focus or takeaway")
}

// parseDate turns user input into a journal date. Empty input means
// today; otherwise try the canonical layout, then natural language.
func parseDate(s string) (string, error) {
	if s == "" {
		return time.Now().Format(journal.DateFormat), nil
	}
	if d, err := time.Parse(journal.DateFormat, s); err == nil {
		return d.Format(journal.DateFormat), nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(s, time.Now())
	if err != nil || r == nil {
		return "", fmt.Errorf("could not understand date %q (try YYYY-MM-DD)", s)
	}
	return r.Time.Format(journal.DateFormat), nil
}

// runLogForm fills the remaining session fields interactively.
// Flag-provided values become the form defaults.
func runLogForm(sess *journal.Session) error {
	if sess.Activity == "" {
		sess.Activity = journal.ActivityKarate
	}
	if sess.Emphasis == "" {
		sess.Emphasis = journal.EmphasisMixed
	}
	minutes := strconv.Itoa(sess.Duration)
	rpe := ""
	if sess.RPE != nil {
		rpe = strconv.Itoa(*sess.RPE)
	}

	activityOpts := make([]huh.Option[journal.Activity], len(journal.Activities))
	for i, a := range journal.Activities {
		activityOpts[i] = huh.NewOption(string(a), a)
	}
	emphasisOpts := make([]huh.Option[journal.Emphasis], len(journal.Emphases))
	for i, e := range journal.Emphases {
		emphasisOpts[i] = huh.NewOption(string(e), e)
	}
	energyOpts := make([]huh.Option[int], 0, 5)
	for level := 1; level <= 5; level++ {
		label := fmt.Sprintf("%d - %s", level, journal.EnergyLabels[level])
		energyOpts = append(energyOpts, huh.NewOption(label, level))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[journal.Activity]().
				Title("Activity").
				Options(activityOpts...).
				Value(&sess.Activity),
			huh.NewInput().
				Title("Duration (minutes)").
				Description("0 for a rest day").
				Value(&minutes).
				Validate(validateMinutes),
			huh.NewSelect[int]().
				Title("Energy going in").
				Options(energyOpts...).
				Value(&sess.Energy),
			huh.NewSelect[journal.Emphasis]().
				Title("Emphasis").
				Options(emphasisOpts...).
				Value(&sess.Emphasis),
			huh.NewInput().
				Title("Effort (RPE 1-10)").
				Description("leave blank to rate later").
				Value(&rpe).
				Validate(validateRPE),
			huh.NewInput().
				Title("Key focus / takeaway").
				Value(&sess.Notes),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	m, err := strconv.Atoi(minutes)
	if err != nil {
		return fmt.Errorf("invalid duration %q", minutes)
	}
	sess.Duration = m

	if rpe != "" {
		v, err := strconv.Atoi(rpe)
		if err != nil {
			return fmt.Errorf("invalid rpe %q", rpe)
		}
		sess.RPE = &v
	}
	return nil
}

func validateMinutes(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("enter a number of minutes")
	}
	if v < 0 || v > journal.MaxSessionMinutes {
		return fmt.Errorf("minutes must be 0-%d", journal.MaxSessionMinutes)
	}
	return nil
}

func validateRPE(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 || v > 10 {
		return fmt.Errorf("rpe must be 1-10")
	}
	return nil
}
