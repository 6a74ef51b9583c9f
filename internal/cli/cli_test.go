package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Every invocation builds a fresh root command: CLI runs are one-shot
// processes, so undo/redo working across them exercises the persisted
// history stacks.

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"AETHEL_DIR", "AETHEL_FORMAT", "AETHEL_HISTORY_LIMIT", "AETHEL_NO_COLOR", "AETHEL_LOG_LEVEL"} {
		// Setenv registers the restore; Unsetenv clears it for the test body.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func runRaw(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) map[string]any {
	t.Helper()
	out, err := runRaw(t, dir, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	var v map[string]any
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("parse output of %v: %v\n%s", args, err, out)
	}
	return v
}

func dataMap(t *testing.T, v map[string]any) map[string]any {
	t.Helper()
	d, ok := v["data"].(map[string]any)
	if !ok {
		t.Fatalf("no data object in %v", v)
	}
	return d
}

func dataList(t *testing.T, v map[string]any) []any {
	t.Helper()
	d, ok := v["data"].([]any)
	if !ok {
		t.Fatalf("no data array in %v", v)
	}
	return d
}

func createObject(t *testing.T, dir, name string, extra ...string) string {
	t.Helper()
	args := append([]string{"objects", "create", "--name", name}, extra...)
	d := dataMap(t, mustRun(t, dir, args...))
	id, _ := d["id"].(string)
	if id == "" {
		t.Fatalf("create %s: no id in %v", name, d)
	}
	return id
}

func TestInitSeedsDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	d := dataMap(t, mustRun(t, dir, "init"))
	if d["types"].(float64) != 4 || d["tracks"].(float64) != 1 {
		t.Fatalf("init: %v", d)
	}
	if _, err := os.Stat(filepath.Join(dir, "aethel.sqlite")); err != nil {
		t.Fatalf("sqlite file: %v", err)
	}
}

func TestObjectAndPlacementFlow(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	id := createObject(t, dir, "Hero", "--type", "character")
	if got := dataList(t, mustRun(t, dir, "objects", "list")); len(got) != 1 {
		t.Fatalf("list: %v", got)
	}

	dataMap(t, mustRun(t, dir, "placements", "add", "--object", id, "--track", "0", "--at", "5"))
	dataMap(t, mustRun(t, dir, "placements", "mutate", id, "--at", "20",
		"--label", "grows up", "--changes", `{"age":{"to":42}}`))

	st := dataMap(t, mustRun(t, dir, "state", id, "--at", "30"))
	attrs, _ := st["attributes"].(map[string]any)
	if attrs["age"] != 42.0 || st["applied"].(float64) != 1 {
		t.Fatalf("state after mutation: %v", st)
	}

	st = dataMap(t, mustRun(t, dir, "state", id, "--at", "10"))
	if st["applied"].(float64) != 0 || st["future"].(float64) != 1 {
		t.Fatalf("state before mutation: %v", st)
	}

	if _, err := runRaw(t, dir, "state", "obj-missing", "--at", "10"); err == nil {
		t.Fatalf("unknown object must fail")
	}
}

func TestUndoRedoAcrossInvocations(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	createObject(t, dir, "Ghost")

	h := dataMap(t, mustRun(t, dir, "history"))
	if h["undo"].(float64) != 1 || h["redo"].(float64) != 0 {
		t.Fatalf("history: %v", h)
	}

	u := dataMap(t, mustRun(t, dir, "undo"))
	if u["undone"] != true || u["description"] == "" {
		t.Fatalf("undo: %v", u)
	}
	if got := dataList(t, mustRun(t, dir, "objects", "list")); len(got) != 0 {
		t.Fatalf("after undo: %v", got)
	}

	r := dataMap(t, mustRun(t, dir, "redo"))
	if r["redone"] != true {
		t.Fatalf("redo: %v", r)
	}
	if got := dataList(t, mustRun(t, dir, "objects", "list")); len(got) != 1 {
		t.Fatalf("after redo: %v", got)
	}

	// Nothing left to redo.
	r = dataMap(t, mustRun(t, dir, "redo"))
	if r["redone"] != false {
		t.Fatalf("exhausted redo: %v", r)
	}
}

func TestMoveMagneticViaCLI(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	a := createObject(t, dir, "Scene A", "--type", "chapter")
	b := createObject(t, dir, "Scene B", "--type", "chapter")

	dataMap(t, mustRun(t, dir, "placements", "add", "--object", a, "--track", "0", "--at", "10", "--end", "20"))
	pb := dataMap(t, mustRun(t, dir, "placements", "add", "--object", b, "--track", "0", "--at", "50"))
	pid := pb["id"].(string)

	moved := dataMap(t, mustRun(t, dir, "placements", "move", pid, "--at", "11"))
	if moved["position"].(float64) != 10 {
		t.Fatalf("magnetic move into a block must land on its edge: %v", moved)
	}

	moved = dataMap(t, mustRun(t, dir, "placements", "move", pid, "--at", "11", "--magnetic=false"))
	if moved["position"].(float64) != 11 {
		t.Fatalf("non-magnetic move keeps the exact position: %v", moved)
	}
}

func TestSnapshotRoundTripBetweenDirs(t *testing.T) {
	clearEnv(t)
	src := t.TempDir()
	dst := t.TempDir()

	id := createObject(t, src, "Keep Me")
	dataMap(t, mustRun(t, src, "placements", "add", "--object", id, "--track", "0", "--at", "7"))

	snapFile := filepath.Join(t.TempDir(), "snap.json")
	exp := dataMap(t, mustRun(t, src, "snapshot", "export", "--out", snapFile))
	if exp["bytes"].(float64) <= 0 {
		t.Fatalf("export: %v", exp)
	}

	imp := dataMap(t, mustRun(t, dst, "snapshot", "import", "--in", snapFile))
	if imp["objects"].(float64) != 1 || imp["placements"].(float64) != 1 {
		t.Fatalf("import: %v", imp)
	}
	got := dataList(t, mustRun(t, dst, "objects", "list"))
	if len(got) != 1 || got[0].(map[string]any)["name"] != "Keep Me" {
		t.Fatalf("imported objects: %v", got)
	}
}

func TestExportMarkdownManuscript(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	createObject(t, dir, "One", "--type", "chapter", "--rendered", "--content", "First.")
	createObject(t, dir, "Two", "--type", "chapter", "--rendered", "--content", "Second.")

	m := dataMap(t, mustRun(t, dir, "milestones", "add", "--name", "Part I", "--after", "0"))
	mid := m["id"].(string)
	dataMap(t, mustRun(t, dir, "milestones", "update", mid, "--export-title", "Part One", "--separator"))

	out, err := runRaw(t, dir, "export", "--format", "md")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, want := range []string{"# Part One", "## One", "First.", "* * *", "## Two", "Second."} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Fatalf("manuscript missing %q:\n%s", want, out)
		}
	}
}

func TestTracksInsertViaCLI(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tracks := dataList(t, mustRun(t, dir, "tracks", "insert", "--at", "0", "--name", "Flashbacks"))
	if len(tracks) != 2 {
		t.Fatalf("tracks: %v", tracks)
	}
	first := tracks[0].(map[string]any)
	if first["index"].(float64) != 0 || first["name"] != "Flashbacks" {
		t.Fatalf("inserted track: %v", first)
	}
}

func TestEventsLogViaCLI(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	id := createObject(t, dir, "Traced")
	dataMap(t, mustRun(t, dir, "placements", "add", "--object", id, "--track", "0", "--at", "3"))

	evs := dataList(t, mustRun(t, dir, "events", "--entity", id))
	if len(evs) != 1 {
		t.Fatalf("entity events: %v", evs)
	}
	if evs[0].(map[string]any)["type"] != "object.create" {
		t.Fatalf("event type: %v", evs[0])
	}
	all := dataList(t, mustRun(t, dir, "events"))
	if len(all) < 2 {
		t.Fatalf("all events: %v", all)
	}
}
