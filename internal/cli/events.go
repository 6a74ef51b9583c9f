package cli

import (
	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var entity string
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the append-only change log",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if entity != "" {
				evs, err := sess.Store.ReadEventsForEntity(entity, limit)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": evs})
			}
			evs, err := sess.Store.ReadEvents(limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": evs})
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Filter by entity id")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum events to return (newest first)")
	return cmd
}
