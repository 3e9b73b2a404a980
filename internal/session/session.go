package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/bowerhall/chatwidget/internal/logger"
	"github.com/bowerhall/chatwidget/internal/storage"
	"github.com/google/uuid"
)

func NewManager(store storage.KV) *Manager {
	return &Manager{store: store, now: time.Now}
}

// NewID builds a time-based id with a random suffix.
func NewID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", t.UnixMilli(), suffix)
}

// ID returns the active session id, loading it from storage or creating and
// persisting a new one on first use. Storage failures are logged and the id
// stays in memory for the lifetime of the manager.
func (m *Manager) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return m.current.ID
	}

	id, ok, err := m.store.Get(StorageKey)
	if err != nil {
		logger.Warn("session load failed", "error", err)
	}

	if !ok || id == "" {
		id = NewID(m.now())
		if err := m.store.Set(StorageKey, id); err != nil {
			logger.Warn("session persist failed", "error", err)
		}
		logger.Debug("session created", "id", id)
	} else {
		logger.Debug("session loaded", "id", id)
	}

	m.current = &Session{ID: id, LoadedAt: m.now()}
	return id
}

// Adopt replaces the local id with one supplied by the server. The server is
// authoritative, so any non-empty id wins. The in-memory id is updated even
// when persisting fails.
func (m *Manager) Adopt(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.ID == id {
		return nil
	}

	prev := ""
	if m.current != nil {
		prev = m.current.ID
	}
	m.current = &Session{ID: id, LoadedAt: m.now()}

	if err := m.store.Set(StorageKey, id); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	logger.Debug("session adopted", "previous", prev, "id", id)
	return nil
}

// Current returns the active session without creating one.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Reset forgets the stored id. The next call to ID creates a fresh one.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	if err := m.store.Delete(StorageKey); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}
