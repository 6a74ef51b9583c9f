package cli

import (
	"errors"
	"strings"

	"aethel-cli/internal/model"
	"aethel-cli/internal/mutate"

	"github.com/spf13/cobra"
)

// Type definitions are document scaffolding, not timeline content: editing
// them is rare and deliberate, so they bypass the undo history.

func newTypesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Object type commands",
	}
	cmd.AddCommand(newTypesListCmd(app))
	cmd.AddCommand(newTypesCreateCmd(app))
	return cmd
}

func newTypesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List object types",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess.DB.Types})
		},
	}
	return cmd
}

func newTypesCreateCmd(app *App) *cobra.Command {
	var id, name, color, icon string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an object type",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id = strings.TrimSpace(strings.ToLower(id))
			if id == "" {
				return writeErr(cmd, errors.New("type id required"))
			}
			for _, t := range sess.DB.Types {
				if t.ID == id {
					return writeErr(cmd, mutate.ErrDuplicateCreation)
				}
			}
			t := model.TypeDef{ID: id, Name: strings.TrimSpace(name), Color: color, Icon: icon}
			if t.Name == "" {
				t.Name = id
			}
			sess.DB.Types = append(sess.DB.Types, t)
			sess.DB.Bump()
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("type.create", t.ID, t)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Type id (lowercase)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&color, "color", "", "Default color")
	cmd.Flags().StringVar(&icon, "icon", "", "Default icon")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
