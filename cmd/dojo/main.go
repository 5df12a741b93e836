// Command dojo is an offline-first training journal. Sessions are
// logged to a local SQLite database and synchronized across devices
// on demand with `dojo sync`.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dojolog/dojo/internal/config"
	"github.com/dojolog/dojo/internal/store"
)

var (
	cfgDir string
	cfg    config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dojo",
	Short: "Offline-first training journal",
	Long: `dojo is a training journal that works fully offline.

Sessions live in a local SQLite database. Every entry carries a stable
identity and a logical clock, so journals on multiple devices can be
reconciled with 'dojo sync' against a shared endpoint; the newest edit
of each session wins.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return err
		}
		logger = log.New(&lumberjack.Logger{
			Filename:   cfg.Log.Path,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}, "[dojo] ", log.LstdFlags|log.LUTC)
		return nil
	},
}

// openStore opens and initializes the journal database from config.
func openStore(ctx context.Context) *store.Store {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		fatal("Error opening journal database: %v", err)
	}
	if err := st.Init(ctx); err != nil {
		st.Close()
		fatal("Error initializing journal database: %v", err)
	}
	return st
}

// resolveUID expands a uid prefix (as shown by `dojo list`) to a full
// session uid. Exact matches win; a prefix must be unambiguous.
func resolveUID(ctx context.Context, st *store.Store, prefix string) string {
	sessions, err := st.ActiveSessions(ctx)
	if err != nil {
		fatal("Error reading sessions: %v", err)
	}

	var matches []string
	for _, s := range sessions {
		if s.UID == prefix {
			return s.UID
		}
		if len(prefix) >= 4 && len(s.UID) >= len(prefix) && s.UID[:len(prefix)] == prefix {
			matches = append(matches, s.UID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0]
	case 0:
		fatal("No session matches %q", prefix)
	default:
		fatal("%q is ambiguous: matches %d sessions", prefix, len(matches))
	}
	return "" // unreachable
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", config.DefaultDir(),
		"directory containing config.yaml")

	rootCmd.AddCommand(
		logCmd,
		listCmd,
		statsCmd,
		reflectCmd,
		rateCmd,
		deleteCmd,
		syncCmd,
		exportCmd,
		importCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
