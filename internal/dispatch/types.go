package dispatch

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval is the shortest gap allowed between accepted sends.
const DefaultMinInterval = 800 * time.Millisecond

var (
	ErrEmptyInput     = errors.New("message is empty")
	ErrAlreadySending = errors.New("a send is already in flight")
	ErrThrottled      = errors.New("send rejected by minimum interval")
)

type State int

const (
	Idle State = iota
	Sending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	default:
		return "unknown"
	}
}

// Pending is the state of one admitted send. It exists between Admit and
// Release.
type Pending struct {
	Message     string
	SubmittedAt time.Time
}

// StateFunc observes guard transitions. It runs outside the guard lock.
type StateFunc func(State)

type Guard struct {
	mu      sync.Mutex
	state   State
	pending *Pending
	limiter *rate.Limiter
	now     func() time.Time
	onState StateFunc
}

type Option func(*Guard)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

// WithStateFunc registers a transition observer, typically the send control.
func WithStateFunc(fn StateFunc) Option {
	return func(g *Guard) {
		g.onState = fn
	}
}
