package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func openMemoryDB(t *testing.T) *SQLite {
	t.Helper()

	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteGetMissing(t *testing.T) {
	s := openMemoryDB(t)

	v, ok, err := s.Get("missing")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok || v != "" {
		t.Errorf("expected no value, got %q (ok=%v)", v, ok)
	}
}

func TestSQLiteSetAndOverwrite(t *testing.T) {
	s := openMemoryDB(t)

	if err := s.Set("session", "first"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := s.Set("session", "second"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	v, ok, err := s.Get("session")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok || v != "second" {
		t.Errorf("expected second, got %q (ok=%v)", v, ok)
	}
}

func TestSQLiteDelete(t *testing.T) {
	s := openMemoryDB(t)

	s.Set("session", "value")
	if err := s.Delete("session"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, ok, _ := s.Get("session"); ok {
		t.Error("value should be gone after delete")
	}

	// deleting a missing key is not an error
	if err := s.Delete("session"); err != nil {
		t.Errorf("second delete failed: %v", err)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget.db")

	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := first.Set("session", "kept"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	first.Close()

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("failed to reopen db: %v", err)
	}
	defer second.Close()

	v, ok, err := second.Get("session")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok || v != "kept" {
		t.Errorf("expected kept, got %q (ok=%v)", v, ok)
	}
}

func TestSQLiteClosed(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	s.Close()

	if err := s.Set("k", "v"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, _, err := s.Get("k"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()

	if _, ok, _ := m.Get("k"); ok {
		t.Fatal("expected empty store")
	}

	m.Set("k", "v")
	if v, ok, _ := m.Get("k"); !ok || v != "v" {
		t.Errorf("expected v, got %q", v)
	}

	m.Delete("k")
	if _, ok, _ := m.Get("k"); ok {
		t.Error("expected key removed")
	}
}
