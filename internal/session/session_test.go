package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bowerhall/chatwidget/internal/storage"
)

type failingKV struct{}

func (failingKV) Get(string) (string, bool, error) { return "", false, errors.New("unavailable") }
func (failingKV) Set(string, string) error         { return errors.New("unavailable") }
func (failingKV) Delete(string) error              { return errors.New("unavailable") }

func TestIDCreatesAndPersists(t *testing.T) {
	store := storage.NewMemory()
	m := NewManager(store)

	id := m.ID()
	if !strings.HasPrefix(id, "session_") {
		t.Errorf("unexpected id format: %s", id)
	}

	stored, ok, _ := store.Get(StorageKey)
	if !ok || stored != id {
		t.Errorf("expected %s persisted, got %q", id, stored)
	}

	if again := m.ID(); again != id {
		t.Errorf("ID should be stable, got %s then %s", id, again)
	}
}

func TestIDSurvivesNewManager(t *testing.T) {
	store := storage.NewMemory()

	first := NewManager(store).ID()
	second := NewManager(store).ID()

	if first != second {
		t.Errorf("expected same id across managers, got %s and %s", first, second)
	}
}

func TestIDSurvivesSQLiteStore(t *testing.T) {
	db, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	first := NewManager(db).ID()
	second := NewManager(db).ID()

	if first != second {
		t.Errorf("expected same id across managers, got %s and %s", first, second)
	}
}

func TestAdoptOverwritesStoredID(t *testing.T) {
	store := storage.NewMemory()
	m := NewManager(store)
	m.ID()

	if err := m.Adopt("server-issued"); err != nil {
		t.Fatalf("adopt failed: %v", err)
	}

	if got := m.ID(); got != "server-issued" {
		t.Errorf("expected server-issued, got %s", got)
	}

	stored, _, _ := store.Get(StorageKey)
	if stored != "server-issued" {
		t.Errorf("expected stored value replaced, got %s", stored)
	}

	// a later manager on the same storage sees the adopted id
	if got := NewManager(store).ID(); got != "server-issued" {
		t.Errorf("expected adopted id after reload, got %s", got)
	}
}

func TestAdoptIgnoresEmpty(t *testing.T) {
	store := storage.NewMemory()
	m := NewManager(store)
	id := m.ID()

	if err := m.Adopt("  "); err != nil {
		t.Fatalf("adopt failed: %v", err)
	}
	if got := m.ID(); got != id {
		t.Errorf("empty adopt should keep %s, got %s", id, got)
	}
}

func TestAdoptBeforeFirstUse(t *testing.T) {
	m := NewManager(storage.NewMemory())

	if err := m.Adopt("early"); err != nil {
		t.Fatalf("adopt failed: %v", err)
	}
	if got := m.ID(); got != "early" {
		t.Errorf("expected early, got %s", got)
	}
}

func TestStorageFailureKeepsSessionUsable(t *testing.T) {
	m := NewManager(failingKV{})

	id := m.ID()
	if id == "" {
		t.Fatal("expected an in-memory id despite storage failure")
	}
	if again := m.ID(); again != id {
		t.Errorf("expected stable in-memory id, got %s then %s", id, again)
	}

	if err := m.Adopt("rotated"); err == nil {
		t.Error("expected persist error from adopt")
	}
	if got := m.ID(); got != "rotated" {
		t.Errorf("in-memory id should still rotate, got %s", got)
	}
}

func TestReset(t *testing.T) {
	store := storage.NewMemory()
	m := NewManager(store)
	m.Adopt("old")

	if err := m.Reset(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if _, ok := m.Current(); ok {
		t.Error("expected no current session after reset")
	}
	if _, ok, _ := store.Get(StorageKey); ok {
		t.Error("expected stored key removed")
	}
	if got := m.ID(); got == "old" || got == "" {
		t.Errorf("expected a fresh id, got %q", got)
	}
}

func TestNewIDFormat(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	a := NewID(at)
	b := NewID(at)

	if !strings.HasPrefix(a, "session_1700000000123_") {
		t.Errorf("unexpected format: %s", a)
	}
	if len(a) != len("session_1700000000123_")+9 {
		t.Errorf("unexpected suffix length: %s", a)
	}
	if a == b {
		t.Error("ids generated at the same instant should differ")
	}
}
