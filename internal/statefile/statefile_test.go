package statefile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"galley/internal/logging"
	"galley/internal/statefile"
)

func TestWriteThenReadRoundTrips(t *testing.T) {
	store := statefile.NewStore(logging.NewNop())
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	if err := store.Write(path, map[string]any{"name": "test", "count": 3}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	var doc map[string]any
	found, err := store.ReadInto(path, &doc)
	if err != nil {
		t.Fatalf("ReadInto returned error: %v", err)
	}
	if !found {
		t.Fatal("expected document to exist")
	}
	if doc["name"] != "test" {
		t.Fatalf("unexpected name: %v", doc["name"])
	}
	if doc["count"].(float64) != 3 {
		t.Fatalf("unexpected count: %v", doc["count"])
	}
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	store := statefile.NewStore(logging.NewNop())
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	if err := store.Write(path, map[string]any{"a": 1}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := store.Write(path, map[string]any{"a": 2}); err != nil {
		t.Fatalf("second Write returned error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != "doc.json" {
			t.Fatalf("unexpected sibling file after write: %s", entry.Name())
		}
	}
}

func TestReadMissingFileReturnsNil(t *testing.T) {
	store := statefile.NewStore(logging.NewNop())

	data, err := store.Read(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data for missing file, got %q", data)
	}
}

func TestReadRecoversFromBackup(t *testing.T) {
	store := statefile.NewStore(logging.NewNop())
	path := filepath.Join(t.TempDir(), "doc.json")

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if err := os.WriteFile(path+statefile.BackupSuffix, []byte(`{"ok":true}`), 0o644); err != nil {
		t.Fatalf("write backup file: %v", err)
	}

	data, err := store.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("expected backup contents, got %q", data)
	}

	// Recovery should also heal the primary file.
	healed, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read healed file: %v", err)
	}
	if string(healed) != `{"ok":true}` {
		t.Fatalf("expected healed primary file, got %q", healed)
	}
}

func TestReadFailsWhenPrimaryAndBackupCorrupt(t *testing.T) {
	store := statefile.NewStore(logging.NewNop())
	path := filepath.Join(t.TempDir(), "doc.json")

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if err := os.WriteFile(path+statefile.BackupSuffix, []byte("also bad"), 0o644); err != nil {
		t.Fatalf("write corrupt backup: %v", err)
	}

	_, err := store.Read(path)
	if !errors.Is(err, statefile.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestWriteKeepsPreviousContentOnMarshalFailure(t *testing.T) {
	store := statefile.NewStore(logging.NewNop())
	path := filepath.Join(t.TempDir(), "doc.json")

	if err := store.Write(path, map[string]any{"a": 1}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := store.Write(path, map[string]any{"bad": func() {}}); err == nil {
		t.Fatal("expected marshal error")
	}

	var doc map[string]any
	found, err := store.ReadInto(path, &doc)
	if err != nil || !found {
		t.Fatalf("ReadInto after failed write: found=%v err=%v", found, err)
	}
	if doc["a"].(float64) != 1 {
		t.Fatalf("expected original content to survive, got %v", doc)
	}
}
