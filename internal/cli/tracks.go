package cli

import (
	"aethel-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newTracksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Track commands",
	}
	cmd.AddCommand(newTracksListCmd(app))
	cmd.AddCommand(newTracksInsertCmd(app))
	cmd.AddCommand(newTracksRemoveCmd(app))
	cmd.AddCommand(newTracksUpdateCmd(app))
	return cmd
}

func newTracksListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess.DB.Tracks})
		},
	}
	return cmd
}

func newTracksInsertCmd(app *App) *cobra.Command {
	var at int
	var name string

	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Insert a track (placements below shift down)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var namePtr *string
			if cmd.Flags().Changed("name") {
				namePtr = &name
			}
			if err := mutate.InsertTrack(sess.DB, sess.History, at, namePtr); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("track.insert", "", map[string]any{"at": at})
			return writeOut(cmd, app, map[string]any{"data": sess.DB.Tracks})
		},
	}

	cmd.Flags().IntVar(&at, "at", 0, "Index to insert at")
	cmd.Flags().StringVar(&name, "name", "", "Track name")
	return cmd
}

func newTracksRemoveCmd(app *App) *cobra.Command {
	var at int

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a track and its placements",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := mutate.RemoveTrack(sess.DB, sess.History, at); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("track.remove", "", map[string]any{"at": at})
			return writeOut(cmd, app, map[string]any{"data": sess.DB.Tracks})
		},
	}

	cmd.Flags().IntVar(&at, "at", 0, "Index to remove")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newTracksUpdateCmd(app *App) *cobra.Command {
	var (
		at     int
		name   string
		color  string
		locked bool
		muted  bool
		solo   bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a track (name, color, lock, mute, solo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var upd mutate.TrackUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("color") {
				upd.Color = &color
			}
			if cmd.Flags().Changed("locked") {
				upd.Locked = &locked
			}
			if cmd.Flags().Changed("muted") {
				upd.Muted = &muted
			}
			if cmd.Flags().Changed("solo") {
				upd.Solo = &solo
			}
			changed, err := mutate.UpdateTrack(sess.DB, sess.History, at, upd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if changed {
				if err := sess.save(); err != nil {
					return writeErr(cmd, err)
				}
				_ = sess.Store.AppendEvent("track.update", "", map[string]any{"at": at})
			}
			track, _ := sess.DB.FindTrack(at)
			return writeOut(cmd, app, map[string]any{"data": track, "meta": map[string]any{"changed": changed}})
		},
	}

	cmd.Flags().IntVar(&at, "at", 0, "Track index")
	cmd.Flags().StringVar(&name, "name", "", "Track name")
	cmd.Flags().StringVar(&color, "color", "", "Track color")
	cmd.Flags().BoolVar(&locked, "locked", false, "Lock the track")
	cmd.Flags().BoolVar(&muted, "muted", false, "Mute the track (hidden from state computation)")
	cmd.Flags().BoolVar(&solo, "solo", false, "Solo the track")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}
