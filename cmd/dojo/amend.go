package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dojolog/dojo/internal/ui"
)

var rateNotes string

var rateCmd = &cobra.Command{
	Use:   "rate <id> <rpe>",
	Short: "Rate a session's effort after the fact",
	Long: `Attach a rating of perceived exertion (1-10) to an existing
session. The id is the prefix shown by 'dojo list'. Rating advances the
session's clock, so the change propagates on the next sync.`,
	Example: `  dojo rate 3f2a91bc 8
  dojo rate 3f2a91bc 6 --notes "legs were gone by round three"`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		rpe, err := strconv.Atoi(args[1])
		if err != nil || rpe < 1 || rpe > 10 {
			fatal("rpe must be 1-10 (got %q)", args[1])
		}

		st := openStore(ctx)
		defer st.Close()

		uid := resolveUID(ctx, st, args[0])
		if err := st.SetRPE(ctx, uid, rpe); err != nil {
			fatal("%v", err)
		}
		if cmd.Flags().Changed("notes") {
			if err := st.SetNotes(ctx, uid, rateNotes); err != nil {
				fatal("%v", err)
			}
		}
		logger.Printf("rated session %s rpe=%d", uid, rpe)
		fmt.Printf("%s Rated %s at %d/10\n", ui.RenderPass("✓"), shortUID(uid), rpe)
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a session",
	Long: `Delete a session from the journal.

The record is kept locally as a tombstone until the next sync carries
the deletion to other devices; it disappears from lists and summaries
immediately.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		st := openStore(ctx)
		defer st.Close()

		uid := resolveUID(ctx, st, args[0])
		if err := st.SoftDelete(ctx, uid); err != nil {
			fatal("%v", err)
		}
		logger.Printf("deleted session %s", uid)
		fmt.Printf("%s Deleted %s\n", ui.RenderPass("✓"), shortUID(uid))
	},
}

func init() {
	rateCmd.Flags().StringVar(&rateNotes, "notes", "", "replace the session notes as well")
}
