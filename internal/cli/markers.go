package cli

import (
	"aethel-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newMarkersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markers",
		Short: "Timeline marker commands",
	}
	cmd.AddCommand(newMarkersAddCmd(app))
	cmd.AddCommand(newMarkersListCmd(app))
	cmd.AddCommand(newMarkersUpdateCmd(app))
	cmd.AddCommand(newMarkersRemoveCmd(app))
	return cmd
}

func newMarkersAddCmd(app *App) *cobra.Command {
	var at float64
	var label, color string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a marker",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			m, err := mutate.AddMarker(sess.DB, sess.History, at, label, color)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("marker.add", m.ID, m)
			return writeOut(cmd, app, map[string]any{"data": m})
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "Timeline position")
	cmd.Flags().StringVar(&label, "label", "", "Marker label")
	cmd.Flags().StringVar(&color, "color", "", "Marker color")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newMarkersListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess.DB.Markers})
		},
	}
	return cmd
}

func newMarkersUpdateCmd(app *App) *cobra.Command {
	var at float64
	var label, color string

	cmd := &cobra.Command{
		Use:   "update <marker-id>",
		Short: "Update a marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var upd mutate.MarkerUpdate
			if cmd.Flags().Changed("at") {
				upd.Position = &at
			}
			if cmd.Flags().Changed("label") {
				upd.Label = &label
			}
			if cmd.Flags().Changed("color") {
				upd.Color = &color
			}
			changed, err := mutate.UpdateMarker(sess.DB, sess.History, args[0], upd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if changed {
				if err := sess.save(); err != nil {
					return writeErr(cmd, err)
				}
				_ = sess.Store.AppendEvent("marker.update", args[0], nil)
			}
			m, _ := sess.DB.FindMarker(args[0])
			return writeOut(cmd, app, map[string]any{"data": m, "meta": map[string]any{"changed": changed}})
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "New position")
	cmd.Flags().StringVar(&label, "label", "", "New label")
	cmd.Flags().StringVar(&color, "color", "", "New color")
	return cmd
}

func newMarkersRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <marker-id>",
		Short: "Remove a marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := mutate.RemoveMarker(sess.DB, sess.History, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("marker.remove", args[0], nil)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
		},
	}
	return cmd
}
