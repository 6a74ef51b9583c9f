package mutate

import (
	"io"
	"log/slog"
	"testing"

	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

func newEnv(t *testing.T) (*store.DB, *history.History) {
	t.Helper()
	db := store.NewDB()
	h := history.New(db, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return db, h
}

func mustCreateObject(t *testing.T, db *store.DB, h *history.History, name string) *model.Object {
	t.Helper()
	obj, err := CreateObject(db, h, ObjectParams{Name: name, TypeID: "note"})
	if err != nil {
		t.Fatalf("create object %s: %v", name, err)
	}
	return obj
}

func mustPlace(t *testing.T, db *store.DB, h *history.History, objID string, track int, pos float64, end *float64) *model.Placement {
	t.Helper()
	plc, err := AddPlacement(db, h, PlacementParams{
		ObjectID:    objID,
		Type:        model.PlacementCreation,
		Track:       track,
		Position:    pos,
		EndPosition: end,
	})
	if err != nil {
		t.Fatalf("place %s: %v", objID, err)
	}
	return plc
}

func sp(s string) *string   { return &s }
func bp(b bool) *bool       { return &b }
func fp(f float64) *float64 { return &f }
