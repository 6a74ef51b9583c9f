package cli

import (
	"github.com/spf13/cobra"
)

func newUndoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the last command",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !sess.History.CanUndo() {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"undone": false}})
			}
			desc := sess.History.UndoDescription()
			if err := sess.History.Undo(); err != nil {
				// The entry was dropped; persist the trimmed stacks.
				_ = sess.save()
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("history.undo", "", map[string]any{"description": desc})
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"undone": true, "description": desc}})
		},
	}
	return cmd
}

func newRedoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redo",
		Short: "Redo the last undone command",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !sess.History.CanRedo() {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"redone": false}})
			}
			desc := sess.History.RedoDescription()
			if err := sess.History.Redo(); err != nil {
				_ = sess.save()
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("history.redo", "", map[string]any{"description": desc})
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"redone": true, "description": desc}})
		},
	}
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show undo/redo stack depths",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			undo, redo := sess.History.Depths()
			out := map[string]any{
				"undo": undo,
				"redo": redo,
			}
			if sess.History.CanUndo() {
				out["next_undo"] = sess.History.UndoDescription()
			}
			if sess.History.CanRedo() {
				out["next_redo"] = sess.History.RedoDescription()
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}
