package cli

import (
	"aethel-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newMilestonesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Milestone commands (book part boundaries)",
	}
	cmd.AddCommand(newMilestonesAddCmd(app))
	cmd.AddCommand(newMilestonesListCmd(app))
	cmd.AddCommand(newMilestonesUpdateCmd(app))
	cmd.AddCommand(newMilestonesMoveCmd(app))
	cmd.AddCommand(newMilestonesRemoveCmd(app))
	return cmd
}

func newMilestonesAddCmd(app *App) *cobra.Command {
	var name string
	var after int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a milestone after a rendered index",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			m, err := mutate.AddMilestone(sess.DB, sess.History, name, after)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("milestone.add", m.ID, m)
			return writeOut(cmd, app, map[string]any{"data": m})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Milestone name")
	cmd.Flags().IntVar(&after, "after", 0, "Rendered object index the milestone follows")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newMilestonesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List milestones",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess.DB.Milestones})
		},
	}
	return cmd
}

func newMilestonesUpdateCmd(app *App) *cobra.Command {
	var name, exportTitle string
	var separator bool

	cmd := &cobra.Command{
		Use:   "update <milestone-id>",
		Short: "Update a milestone's name or export metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var upd mutate.MilestoneUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("export-title") {
				upd.ExportTitle = &exportTitle
			}
			if cmd.Flags().Changed("separator") {
				upd.ExportSeparator = &separator
			}
			changed, err := mutate.UpdateMilestone(sess.DB, sess.History, args[0], upd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if changed {
				if err := sess.save(); err != nil {
					return writeErr(cmd, err)
				}
				_ = sess.Store.AppendEvent("milestone.update", args[0], nil)
			}
			m, _ := sess.DB.FindMilestone(args[0])
			return writeOut(cmd, app, map[string]any{"data": m, "meta": map[string]any{"changed": changed}})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&exportTitle, "export-title", "", "Part title used in manuscript export")
	cmd.Flags().BoolVar(&separator, "separator", false, "Emit a separator before the next part")
	return cmd
}

func newMilestonesMoveCmd(app *App) *cobra.Command {
	var after int

	cmd := &cobra.Command{
		Use:   "move <milestone-id>",
		Short: "Move a milestone to follow a different rendered index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := mutate.MoveMilestone(sess.DB, sess.History, args[0], after); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("milestone.move", args[0], map[string]any{"after": after})
			m, _ := sess.DB.FindMilestone(args[0])
			return writeOut(cmd, app, map[string]any{"data": m})
		},
	}

	cmd.Flags().IntVar(&after, "after", 0, "Rendered object index the milestone follows")
	_ = cmd.MarkFlagRequired("after")
	return cmd
}

func newMilestonesRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <milestone-id>",
		Short: "Remove a milestone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := mutate.DeleteMilestone(sess.DB, sess.History, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("milestone.remove", args[0], nil)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
		},
	}
	return cmd
}
