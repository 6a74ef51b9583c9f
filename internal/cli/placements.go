package cli

import (
	"encoding/json"
	"fmt"

	"aethel-cli/internal/model"
	"aethel-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newPlacementsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "placements",
		Short: "Timeline placement commands",
	}
	cmd.AddCommand(newPlacementsAddCmd(app))
	cmd.AddCommand(newPlacementsListCmd(app))
	cmd.AddCommand(newPlacementsMoveCmd(app))
	cmd.AddCommand(newPlacementsResizeCmd(app))
	cmd.AddCommand(newPlacementsSplitCmd(app))
	cmd.AddCommand(newPlacementsRemoveCmd(app))
	cmd.AddCommand(newPlacementsLockCmd(app))
	cmd.AddCommand(newPlacementsMutateCmd(app))
	return cmd
}

func parseMutationFlags(label, changesJSON string) (*model.MutationPayload, error) {
	if label == "" && changesJSON == "" {
		return nil, nil
	}
	payload := &model.MutationPayload{Label: label}
	if changesJSON != "" {
		var changes map[string]model.AttrChange
		if err := json.Unmarshal([]byte(changesJSON), &changes); err != nil {
			return nil, fmt.Errorf("parse --changes: %w", err)
		}
		payload.Changes = changes
	}
	return payload, nil
}

func newPlacementsAddCmd(app *App) *cobra.Command {
	var (
		objectID    string
		kind        string
		track       int
		at          float64
		end         float64
		group       string
		label       string
		changesJSON string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Place an object on the timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			params := mutate.PlacementParams{
				ObjectID: objectID,
				Type:     model.PlacementType(kind),
				Track:    track,
				Position: at,
			}
			if cmd.Flags().Changed("end") {
				params.EndPosition = &end
			}
			if group != "" {
				params.GroupID = &group
			}
			payload, err := parseMutationFlags(label, changesJSON)
			if err != nil {
				return writeErr(cmd, err)
			}
			params.Mutation = payload
			plc, err := mutate.AddPlacement(sess.DB, sess.History, params)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("placement.add", plc.ID, plc)
			return writeOut(cmd, app, map[string]any{"data": plc})
		},
	}

	cmd.Flags().StringVar(&objectID, "object", "", "Object id")
	cmd.Flags().StringVar(&kind, "kind", string(model.PlacementCreation), "Placement kind (creation|mutation)")
	cmd.Flags().IntVar(&track, "track", 0, "Track index")
	cmd.Flags().Float64Var(&at, "at", 0, "Timeline position")
	cmd.Flags().Float64Var(&end, "end", 0, "End position (ranged placement)")
	cmd.Flags().StringVar(&group, "group", "", "Group id")
	cmd.Flags().StringVar(&label, "label", "", "Mutation label")
	cmd.Flags().StringVar(&changesJSON, "changes", "", `Mutation attribute changes, JSON: {"attr":{"from":...,"to":...}}`)
	_ = cmd.MarkFlagRequired("object")
	return cmd
}

func newPlacementsListCmd(app *App) *cobra.Command {
	var objectID string
	var track int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List placements",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var out []model.Placement
			switch {
			case objectID != "":
				out = sess.DB.PlacementsForObject(objectID)
			case cmd.Flags().Changed("track"):
				out = sess.DB.PlacementsOnTrack(track)
			default:
				out = sess.DB.Placements
			}
			if out == nil {
				out = []model.Placement{}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&objectID, "object", "", "Filter by object id")
	cmd.Flags().IntVar(&track, "track", 0, "Filter by track index")
	return cmd
}

func newPlacementsMoveCmd(app *App) *cobra.Command {
	var (
		track    int
		at       float64
		magnetic bool
	)

	cmd := &cobra.Command{
		Use:   "move <placement-id>",
		Short: "Move a placement (magnetic by default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("track") {
				if plc, ok := sess.DB.FindPlacement(args[0]); ok {
					track = plc.Track
				}
			}
			plc, err := mutate.MovePlacement(sess.DB, sess.History, args[0], track, at, magnetic)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("placement.move", plc.ID, plc)
			return writeOut(cmd, app, map[string]any{"data": plc})
		},
	}

	cmd.Flags().IntVar(&track, "track", 0, "Target track index (default: keep)")
	cmd.Flags().Float64Var(&at, "at", 0, "Target position")
	cmd.Flags().BoolVar(&magnetic, "magnetic", true, "Resolve overlaps magnetically")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newPlacementsResizeCmd(app *App) *cobra.Command {
	var start, end float64

	cmd := &cobra.Command{
		Use:   "resize <placement-id>",
		Short: "Resize a ranged placement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var newStart, newEnd *float64
			if cmd.Flags().Changed("start") {
				newStart = &start
			}
			if cmd.Flags().Changed("end") {
				newEnd = &end
			}
			plc, err := mutate.ResizePlacement(sess.DB, sess.History, args[0], newStart, newEnd)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("placement.resize", plc.ID, plc)
			return writeOut(cmd, app, map[string]any{"data": plc})
		},
	}

	cmd.Flags().Float64Var(&start, "start", 0, "New start position")
	cmd.Flags().Float64Var(&end, "end", 0, "New end position")
	return cmd
}

func newPlacementsSplitCmd(app *App) *cobra.Command {
	var at float64

	cmd := &cobra.Command{
		Use:   "split <placement-id>",
		Short: "Split a ranged placement at a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			first, second, err := mutate.SplitPlacement(sess.DB, sess.History, args[0], at)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("placement.split", first.ID, map[string]any{"first": first, "second": second})
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"first": first, "second": second}})
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "Split position (inside the range)")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newPlacementsRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <placement-id>",
		Short: "Remove a placement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := mutate.RemovePlacement(sess.DB, sess.History, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("placement.remove", args[0], nil)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
		},
	}
	return cmd
}

func newPlacementsLockCmd(app *App) *cobra.Command {
	var unlock bool

	cmd := &cobra.Command{
		Use:   "lock <placement-id>",
		Short: "Lock (or --unlock) a placement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			locked := !unlock
			plc, changed, err := mutate.UpdatePlacement(sess.DB, sess.History, args[0], mutate.PlacementUpdate{Locked: &locked})
			if err != nil {
				return writeErr(cmd, err)
			}
			if changed {
				if err := sess.save(); err != nil {
					return writeErr(cmd, err)
				}
				_ = sess.Store.AppendEvent("placement.lock", plc.ID, plc)
			}
			return writeOut(cmd, app, map[string]any{"data": plc})
		},
	}

	cmd.Flags().BoolVar(&unlock, "unlock", false, "Unlock instead")
	return cmd
}

func newPlacementsMutateCmd(app *App) *cobra.Command {
	var (
		track       int
		at          float64
		label       string
		changesJSON string
	)

	cmd := &cobra.Command{
		Use:   "mutate <object-id>",
		Short: "Add a mutation placement for an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var changes map[string]model.AttrChange
			if changesJSON != "" {
				if err := json.Unmarshal([]byte(changesJSON), &changes); err != nil {
					return writeErr(cmd, fmt.Errorf("parse --changes: %w", err))
				}
			}
			plc, err := mutate.AddMutation(sess.DB, sess.History, args[0], label, changes, track, at)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.save(); err != nil {
				return writeErr(cmd, err)
			}
			_ = sess.Store.AppendEvent("placement.mutate", plc.ID, plc)
			return writeOut(cmd, app, map[string]any{"data": plc})
		},
	}

	cmd.Flags().IntVar(&track, "track", 0, "Track index")
	cmd.Flags().Float64Var(&at, "at", 0, "Timeline position")
	cmd.Flags().StringVar(&label, "label", "", "Mutation label")
	cmd.Flags().StringVar(&changesJSON, "changes", "", `Attribute changes, JSON: {"attr":{"from":...,"to":...}}`)
	_ = cmd.MarkFlagRequired("at")
	return cmd
}
