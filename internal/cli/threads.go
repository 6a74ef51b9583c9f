package cli

import (
	"aethel-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newThreadsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Narrative thread commands",
	}
	cmd.AddCommand(newThreadsCreateCmd(app))
	cmd.AddCommand(newThreadsListCmd(app))
	cmd.AddCommand(newThreadsDeleteCmd(app))
	cmd.AddCommand(newThreadsAddCmd(app))
	cmd.AddCommand(newThreadsRemoveCmd(app))
	return cmd
}

func newThreadsCreateCmd(app *App) *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a thread",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			th, err := mutate.CreateThread(sess.DB, sess.History, name, color)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("thread.create", th.ID, th)
			return writeOut(cmd, app, map[string]any{"data": th})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Thread name")
	cmd.Flags().StringVar(&color, "color", "", "Thread color")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newThreadsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List threads",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess.DB.Threads})
		},
	}
	return cmd
}

func newThreadsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <thread-id>",
		Short: "Delete a thread (objects are detached)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := mutate.DeleteThread(sess.DB, sess.History, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("thread.delete", args[0], nil)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	}
	return cmd
}

func newThreadsAddCmd(app *App) *cobra.Command {
	var object string

	cmd := &cobra.Command{
		Use:   "add <thread-id>",
		Short: "Associate an object with a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := mutate.AssociateThread(sess.DB, sess.History, object, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("thread.associate", args[0], map[string]any{"object": object})
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"thread": args[0], "object": object}})
		},
	}

	cmd.Flags().StringVar(&object, "object", "", "Object id")
	_ = cmd.MarkFlagRequired("object")
	return cmd
}

func newThreadsRemoveCmd(app *App) *cobra.Command {
	var object string

	cmd := &cobra.Command{
		Use:   "remove <thread-id>",
		Short: "Dissociate an object from a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := mutate.DissociateThread(sess.DB, sess.History, object, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("thread.dissociate", args[0], map[string]any{"object": object})
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"thread": args[0], "object": object}})
		},
	}

	cmd.Flags().StringVar(&object, "object", "", "Object id")
	_ = cmd.MarkFlagRequired("object")
	return cmd
}
