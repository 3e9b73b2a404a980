package transcript

import (
	"sync"
	"time"
)

// Product is one carousel card, taken verbatim from a reply payload.
type Product struct {
	Name      string
	Price     string
	ImageURL  string
	DetailURL string
}

type Sender int

const (
	User Sender = iota
	Bot
)

func (s Sender) String() string {
	switch s {
	case User:
		return "user"
	case Bot:
		return "bot"
	default:
		return "unknown"
	}
}

// Entry is immutable once appended.
type Entry struct {
	Sender   Sender
	RawText  string
	Markup   string
	Products []Product
	Notice   bool
	At       time.Time
}

// Log is the scrollable container the rendered markup is written into.
type Log interface {
	Append(markup string)
	ScrollToBottom()
}

type Options struct {
	BotName          string
	ViewProductLabel string
	PlaceholderImage string
	BrokenImage      string
	PrevLabel        string
	NextLabel        string
}

type Renderer struct {
	mu      sync.Mutex
	log     Log
	opts    Options
	entries []Entry
	now     func() time.Time
}
