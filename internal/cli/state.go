package cli

import (
	"aethel-cli/internal/mutate"
	"aethel-cli/internal/timeline"

	"github.com/spf13/cobra"
)

func newStateCmd(app *App) *cobra.Command {
	var at float64

	cmd := &cobra.Command{
		Use:   "state <object-id>",
		Short: "Object state at a timeline position (default: the cursor)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			pos := sess.DB.Cursor
			if cmd.Flags().Changed("at") {
				pos = at
			}
			st, ok := timeline.StateAt(sess.DB, args[0], pos)
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "object", ID: args[0]})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"position":   pos,
				"attributes": st.ComputedAttributes,
				"applied":    len(st.Mutations),
				"future":     len(st.FutureMutations),
			}})
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "Timeline position (default: the stored cursor)")
	return cmd
}

func newCursorCmd(app *App) *cobra.Command {
	var at float64

	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Show or set the timeline cursor",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("set") {
				mutate.SetCursor(sess.DB, at)
				if err := sess.save(); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"cursor": sess.DB.Cursor}})
		},
	}

	cmd.Flags().Float64Var(&at, "set", 0, "Set the cursor to this position")
	return cmd
}
