package dispatch

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bowerhall/chatwidget/internal/logger"
)

// New creates an idle guard. A non-positive minInterval disables throttling.
func New(minInterval time.Duration, opts ...Option) *Guard {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	g := &Guard{
		state:   Idle,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Admit moves the guard to Sending if message is non-empty, no send is in
// flight and the minimum interval since the last accepted send has passed.
// Rejected submissions leave no trace.
func (g *Guard) Admit(message string) (Pending, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Pending{}, ErrEmptyInput
	}

	g.mu.Lock()

	if g.state == Sending {
		g.mu.Unlock()
		logger.Debug("send dropped", "reason", "already sending")
		return Pending{}, ErrAlreadySending
	}

	now := g.now()
	if !g.limiter.AllowN(now, 1) {
		g.mu.Unlock()
		logger.Debug("send dropped", "reason", "throttled")
		return Pending{}, ErrThrottled
	}

	p := Pending{Message: message, SubmittedAt: now}
	g.state = Sending
	g.pending = &p
	fn := g.onState
	g.mu.Unlock()

	logger.Debug("send admitted", "length", len(message))
	if fn != nil {
		fn(Sending)
	}
	return p, nil
}

// Release returns the guard to Idle. It is safe to call when already idle.
func (g *Guard) Release() {
	g.mu.Lock()
	if g.state == Idle {
		g.mu.Unlock()
		return
	}

	elapsed := time.Duration(0)
	if g.pending != nil {
		elapsed = g.now().Sub(g.pending.SubmittedAt)
	}
	g.state = Idle
	g.pending = nil
	fn := g.onState
	g.mu.Unlock()

	logger.Debug("send released", "elapsed", elapsed)
	if fn != nil {
		fn(Idle)
	}
}

// Dispatch admits message and runs send with it. The guard is released when
// send returns, whether it failed, succeeded or panicked.
func (g *Guard) Dispatch(ctx context.Context, message string, send func(context.Context, Pending) error) error {
	p, err := g.Admit(message)
	if err != nil {
		return err
	}
	defer g.Release()

	return send(ctx, p)
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Pending returns the in-flight send, if any.
func (g *Guard) Pending() (Pending, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return Pending{}, false
	}
	return *g.pending, true
}
