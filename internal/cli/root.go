package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"aethel-cli/internal/config"
	"aethel-cli/internal/format"
	"aethel-cli/internal/history"
	"aethel-cli/internal/store"
	"aethel-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string

	Config config.Config
	Logger *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "aethel",
		Short:        "Aethel narrative timeline CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  aethel

  # Scriptable commands
  aethel objects list
  aethel placements add --object obj-xxxx --track 0 --at 12

  # Object state at a timeline position
  aethel state obj-xxxx --at 30
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		app.Config = cfg
		app.Logger = newLogger(cfg.LogLevel)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("AETHEL_DIR", ""), "Path to store dir (overrides workspace discovery)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("AETHEL_FORMAT", "json"), "Output format (json|md)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newObjectsCmd(app))
	cmd.AddCommand(newTypesCmd(app))
	cmd.AddCommand(newPlacementsCmd(app))
	cmd.AddCommand(newTracksCmd(app))
	cmd.AddCommand(newMarkersCmd(app))
	cmd.AddCommand(newMilestonesCmd(app))
	cmd.AddCommand(newThreadsCmd(app))
	cmd.AddCommand(newStateCmd(app))
	cmd.AddCommand(newCursorCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newRedoCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newSnapshotCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newExportCmd(app))

	return cmd
}

func runTUI(app *App) error {
	sess, err := openSession(app)
	if err != nil {
		return err
	}
	return tui.Run(sess.DB, sess.History, sess.Store, app.Config.NoColor)
}

// session bundles the loaded document with its rehydrated undo history.
// CLI invocations are one-shot processes; persisting the history stacks in
// the store is what makes `aethel undo` work across them.
type session struct {
	DB      *store.DB
	Store   store.Store
	History *history.History
}

func openSession(app *App) (*session, error) {
	dir := app.Dir
	if dir == "" {
		dir = app.Config.Dir
	}
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	app.Dir = dir

	s := store.Store{Dir: dir}
	db, err := s.Load()
	if err != nil {
		return nil, err
	}
	h := history.New(db, app.Config.HistoryLimit, app.Logger)
	h.LoadFrom(db)
	return &session{DB: db, Store: s, History: h}, nil
}

// save persists document and history together. Event-log appends happen at
// the call sites that know what changed.
func (sess *session) save() error {
	if err := sess.History.SaveTo(sess.DB); err != nil {
		return err
	}
	return sess.Store.Save(sess.DB)
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = slog.LevelDebug
	case "info":
		lv = slog.LevelInfo
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
