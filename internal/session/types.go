package session

import (
	"sync"
	"time"

	"github.com/bowerhall/chatwidget/internal/storage"
)

// StorageKey is the single persistent key holding the session id.
const StorageKey = "chatwidget_session_id"

// Session is the active opaque identifier. The id is never parsed.
type Session struct {
	ID       string
	LoadedAt time.Time
}

type Manager struct {
	mu      sync.Mutex
	store   storage.KV
	now     func() time.Time
	current *Session
}
