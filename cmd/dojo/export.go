package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dojolog/dojo/internal/export"
	"github.com/dojolog/dojo/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the journal as JSONL",
	Long: `Write every session, tombstones included, as JSON Lines.

With no file the export goes to stdout. The format is the same one the
sync endpoint speaks, so an export is a complete portable backup.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		st := openStore(ctx)
		defer st.Close()

		if len(args) == 0 {
			if _, err := export.Write(ctx, st, os.Stdout); err != nil {
				fatal("%v", err)
			}
			return
		}

		result, err := export.WriteFile(ctx, st, args[0])
		if err != nil {
			fatal("%v", err)
		}
		logger.Printf("exported %d session(s) to %s", result.Sessions, args[0])
		fmt.Printf("%s Exported %d session(s) to %s\n", ui.RenderPass("✓"), result.Sessions, args[0])
		if result.Tombstones > 0 {
			fmt.Printf("   %s\n", ui.RenderDim(fmt.Sprintf("including %d tombstone(s)", result.Tombstones)))
		}
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import sessions from a JSONL export",
	Long: `Merge a JSONL export into the journal.

Records merge under the same rules as a sync pull: for each session the
newest copy wins, so importing an old backup never clobbers newer local
edits. Tombstones in the export remove matching local sessions.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		sessions, err := export.ReadFile(args[0])
		if err != nil {
			fatal("%v", err)
		}

		st := openStore(ctx)
		defer st.Close()

		result, err := export.Restore(ctx, st, sessions)
		if err != nil {
			fatal("%v", err)
		}
		logger.Printf("imported %d of %d session(s) from %s", result.Applied, result.Sessions, args[0])
		fmt.Printf("%s Imported %d session(s), %d applied\n",
			ui.RenderPass("✓"), result.Sessions, result.Applied)
		if skipped := result.Sessions - result.Applied - result.Tombstones; skipped > 0 {
			fmt.Printf("   %s\n", ui.RenderDim(fmt.Sprintf("%d record(s) were already current here", skipped)))
		}
	},
}
