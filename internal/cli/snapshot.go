package cli

import (
	"os"

	"aethel-cli/internal/store"

	"github.com/spf13/cobra"
)

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Whole-document snapshot export/import",
	}
	cmd.AddCommand(newSnapshotExportCmd(app))
	cmd.AddCommand(newSnapshotImportCmd(app))
	return cmd
}

func newSnapshotExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full document as JSON (stdout or --out)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			raw, err := sess.DB.EncodeSnapshot()
			if err != nil {
				return writeErr(cmd, err)
			}
			if out == "" {
				_, err := cmd.OutOrStdout().Write(append(raw, '\n'))
				return err
			}
			if err := os.WriteFile(out, raw, 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": out, "bytes": len(raw)}})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (default: stdout)")
	return cmd
}

func newSnapshotImportCmd(app *App) *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the document from a snapshot file (clears history)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			raw, err := os.ReadFile(in)
			if err != nil {
				return writeErr(cmd, err)
			}
			snap, err := store.DecodeSnapshot(raw)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.DB.LoadSnapshot(snap); err != nil {
				return writeErr(cmd, err)
			}
			// LoadSnapshot resets the persisted stacks; drop the in-memory
			// history too rather than saving stale entries back.
			if err := sess.Store.Save(sess.DB); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("snapshot.import", "", map[string]any{"path": in})
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"objects":    len(sess.DB.Objects),
				"placements": len(sess.DB.Placements),
				"tracks":     len(sess.DB.Tracks),
			}})
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Snapshot file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
