package cli

import (
	"aethel-cli/internal/format"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the rendered manuscript, partitioned by milestones",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			parts := format.BuildManuscript(sess.DB)
			return writeOut(cmd, app, map[string]any{"data": parts})
		},
	}
	return cmd
}
