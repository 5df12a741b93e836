package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dojolog/dojo/internal/store"
	"github.com/dojolog/dojo/internal/sync"
	"github.com/dojolog/dojo/internal/transport"
	"github.com/dojolog/dojo/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the journal with the configured endpoint",
	Long: `Run one sync pass against the configured endpoint.

Local changes are pushed first, then remote changes are pulled and
merged; for each session the newest edit wins. Each phase records its
own checkpoint, so an interrupted pass resumes where it stopped without
resending or reapplying anything.

Requires sync.endpoint and sync.token in config (or DOJO_SYNC_ENDPOINT
and DOJO_SYNC_TOKEN).`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		if cfg.Sync.Endpoint == "" || cfg.Sync.Token == "" {
			fatal("sync is not configured: set sync.endpoint and sync.token")
		}

		st := openStore(ctx)
		defer st.Close()

		engine := sync.New(st, transport.New(cfg.Sync.Endpoint, cfg.Sync.Token), logger)
		result, err := engine.Run(ctx)
		if err != nil {
			// Push progress made before the failure is already
			// checkpointed; the next pass picks up from there.
			fatal("%v", err)
		}

		if result.Empty() {
			fmt.Printf("%s Already up to date\n", ui.RenderPass("✓"))
			return
		}
		fmt.Printf("%s Sync complete\n", ui.RenderPass("✓"))
		fmt.Printf("   Pushed:  %d\n", result.Pushed)
		fmt.Printf("   Pulled:  %d\n", result.Pulled)
		fmt.Printf("   Applied: %d\n", result.Applied)
		if skipped := result.Pulled - result.Applied; skipped > 0 {
			fmt.Printf("   %s\n", ui.RenderDim(fmt.Sprintf("%d pulled record(s) were already current here", skipped)))
		}
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync checkpoints",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		st := openStore(ctx)
		defer st.Close()

		push, err := st.Cursor(ctx, store.CursorLastPush, store.EpochCursor)
		if err != nil {
			fatal("Error reading checkpoints: %v", err)
		}
		pull, err := st.Cursor(ctx, store.CursorLastPull, store.EpochCursor)
		if err != nil {
			fatal("Error reading checkpoints: %v", err)
		}

		pending, err := st.ChangesSince(ctx, push)
		if err != nil {
			fatal("Error reading pending changes: %v", err)
		}

		fmt.Printf("Endpoint:  %s\n", orDim(cfg.Sync.Endpoint, "not configured"))
		fmt.Printf("Last push: %s\n", orDim(cursorDisplay(push), "never"))
		fmt.Printf("Last pull: %s\n", orDim(cursorDisplay(pull), "never"))
		if len(pending) > 0 {
			fmt.Printf("%s %d local change(s) waiting to push\n", ui.RenderAccent("●"), len(pending))
		} else {
			fmt.Printf("%s nothing to push\n", ui.RenderDim("·"))
		}
	},
}

func cursorDisplay(cursor string) string {
	if cursor == store.EpochCursor {
		return ""
	}
	return cursor
}

func orDim(value, fallback string) string {
	if value == "" {
		return ui.RenderDim(fallback)
	}
	return value
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
}
