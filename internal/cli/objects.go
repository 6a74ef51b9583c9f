package cli

import (
	"encoding/json"
	"fmt"

	"aethel-cli/internal/model"
	"aethel-cli/internal/mutate"
	"aethel-cli/internal/registry"
	"aethel-cli/internal/store"

	"github.com/spf13/cobra"
)

func newObjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objects",
		Short: "Object commands",
	}
	cmd.AddCommand(newObjectsCreateCmd(app))
	cmd.AddCommand(newObjectsListCmd(app))
	cmd.AddCommand(newObjectsShowCmd(app))
	cmd.AddCommand(newObjectsUpdateCmd(app))
	cmd.AddCommand(newObjectsDeleteCmd(app))
	cmd.AddCommand(newObjectsReparentCmd(app))
	cmd.AddCommand(newObjectsTreeCmd(app))
	return cmd
}

func newObjectsCreateCmd(app *App) *cobra.Command {
	var (
		name       string
		typeID     string
		parent     string
		color      string
		icon       string
		rendered   bool
		attrsJSON  string
		aliases    []string
		contentRef string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an object",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			params := mutate.ObjectParams{
				Name:       name,
				TypeID:     typeID,
				Rendered:   rendered,
				Aliases:    aliases,
				ContentRef: contentRef,
			}
			if parent != "" {
				params.ParentID = &parent
			}
			if color != "" {
				params.Color = &color
			}
			if icon != "" {
				params.Icon = &icon
			}
			if attrsJSON != "" {
				var attrs map[string]any
				if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
					return writeErr(cmd, fmt.Errorf("parse --attrs: %w", err))
				}
				params.Attributes = attrs
			}
			obj, err := mutate.CreateObject(sess.DB, sess.History, params)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("object.create", obj.ID, obj)
			return writeOut(cmd, app, map[string]any{"data": obj})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Object name")
	cmd.Flags().StringVar(&typeID, "type", "note", "Type id (character|location|chapter|note|...)")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent object id")
	cmd.Flags().StringVar(&color, "color", "", "Color override")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon override")
	cmd.Flags().BoolVar(&rendered, "rendered", false, "Include in the rendered book output")
	cmd.Flags().StringVar(&attrsJSON, "attrs", "", "Base attributes as a JSON object")
	cmd.Flags().StringSliceVar(&aliases, "alias", nil, "Alias (repeatable)")
	cmd.Flags().StringVar(&contentRef, "content", "", "Prose content (or reference)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newObjectsListCmd(app *App) *cobra.Command {
	var typeID string
	var renderedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := []model.Object{}
			for _, o := range sess.DB.Objects {
				if typeID != "" && o.TypeID != typeID {
					continue
				}
				if renderedOnly && !o.Rendered {
					continue
				}
				out = append(out, o)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&typeID, "type", "", "Filter by type id")
	cmd.Flags().BoolVar(&renderedOnly, "rendered", false, "Only rendered objects")
	return cmd
}

func newObjectsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <object-id>",
		Short: "Show one object with resolved appearance and placements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			obj, ok := registry.Get(sess.DB, args[0])
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "object", ID: args[0]})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"object":         obj,
				"effectiveColor": registry.EffectiveColor(sess.DB, obj.ID),
				"effectiveIcon":  registry.EffectiveIcon(sess.DB, obj.ID),
				"children":       registry.Children(sess.DB, obj.ID),
				"placements":     sess.DB.PlacementsForObject(obj.ID),
			}})
		},
	}
	return cmd
}

func newObjectsUpdateCmd(app *App) *cobra.Command {
	var (
		name       string
		color      string
		clearColor bool
		icon       string
		clearIcon  bool
		rendered   bool
		attrsJSON  string
		contentRef string
	)

	cmd := &cobra.Command{
		Use:   "update <object-id>",
		Short: "Update an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var upd mutate.ObjectUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("color") {
				upd.Color = &color
			}
			upd.ClearColor = clearColor
			if cmd.Flags().Changed("icon") {
				upd.Icon = &icon
			}
			upd.ClearIcon = clearIcon
			if cmd.Flags().Changed("rendered") {
				upd.Rendered = &rendered
			}
			if cmd.Flags().Changed("content") {
				upd.ContentRef = &contentRef
			}
			if attrsJSON != "" {
				var attrs map[string]any
				if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
					return writeErr(cmd, fmt.Errorf("parse --attrs: %w", err))
				}
				upd.Attributes = attrs
			}
			obj, changed, err := mutate.UpdateObject(sess.DB, sess.History, args[0], upd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if changed {
				if err := sess.save(); err != nil {
					return writeErr(cmd, err)
				}
				_ = sess.Store.AppendEvent("object.update", obj.ID, obj)
			}
			return writeOut(cmd, app, map[string]any{"data": obj, "meta": map[string]any{"changed": changed}})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&color, "color", "", "Color override")
	cmd.Flags().BoolVar(&clearColor, "clear-color", false, "Drop the color override")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon override")
	cmd.Flags().BoolVar(&clearIcon, "clear-icon", false, "Drop the icon override")
	cmd.Flags().BoolVar(&rendered, "rendered", false, "Include in the rendered book output")
	cmd.Flags().StringVar(&attrsJSON, "attrs", "", "Replace base attributes (JSON object)")
	cmd.Flags().StringVar(&contentRef, "content", "", "Prose content (or reference)")
	return cmd
}

func newObjectsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <object-id>",
		Short: "Delete an object (children are promoted, placements removed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := mutate.DeleteObject(sess.DB, sess.History, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("object.delete", args[0], nil)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	}
	return cmd
}

func newObjectsReparentCmd(app *App) *cobra.Command {
	var parent string
	var sortOrder int

	cmd := &cobra.Command{
		Use:   "reparent <object-id>",
		Short: "Move an object in the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var parentID *string
			if parent != "" {
				parentID = &parent
			}
			if err := mutate.Reparent(sess.DB, sess.History, args[0], parentID, sortOrder); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("object.reparent", args[0], map[string]any{"parent": parent, "sortOrder": sortOrder})
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"reparented": args[0]}})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "New parent object id (empty = root)")
	cmd.Flags().IntVar(&sortOrder, "sort", 0, "Sort order among the new siblings")
	return cmd
}

type treeNode struct {
	Object   model.Object `json:"object"`
	Children []treeNode   `json:"children,omitempty"`
}

func buildTree(db *store.DB, parentID string) []treeNode {
	var out []treeNode
	for _, o := range registry.Children(db, parentID) {
		out = append(out, treeNode{Object: o, Children: buildTree(db, o.ID)})
	}
	return out
}

func newObjectsTreeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the object hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var roots []treeNode
			for _, o := range registry.Roots(sess.DB) {
				roots = append(roots, treeNode{Object: o, Children: buildTree(sess.DB, o.ID)})
			}
			return writeOut(cmd, app, map[string]any{"data": roots})
		},
	}
	return cmd
}
