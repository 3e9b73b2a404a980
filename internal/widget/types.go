package widget

import (
	"context"
	"time"

	"github.com/bowerhall/chatwidget/internal/dispatch"
	"github.com/bowerhall/chatwidget/internal/normalize"
	"github.com/bowerhall/chatwidget/internal/session"
	"github.com/bowerhall/chatwidget/internal/transcript"
	"github.com/bowerhall/chatwidget/internal/transport"
)

// Input is the host's text field.
type Input interface {
	Value() string
	SetValue(v string)
	Focus()
}

// SendButton is the host's send control.
type SendButton interface {
	SetEnabled(enabled bool)
	SetLabel(label string)
}

// Sender performs one exchange with the chat endpoint. *transport.Client
// satisfies it.
type Sender interface {
	Send(ctx context.Context, message, sessionID string) (*transport.Envelope, error)
}

type Labels struct {
	Send       string
	Sending    string
	EmptyInput string
}

type Deps struct {
	Input      Input
	Button     SendButton
	Transcript *transcript.Renderer
	Sessions   *session.Manager
	Transport  Sender
	Normalizer *normalize.Normalizer
	// Alert shows a short inline notice outside the transcript.
	Alert       func(text string)
	Labels      Labels
	MinInterval time.Duration
	Clock       func() time.Time
}

// Controller is constructed once per widget. It owns the guard and routes
// every accepted submission through transport, normalizer and transcript.
type Controller struct {
	input      Input
	button     SendButton
	transcript *transcript.Renderer
	sessions   *session.Manager
	transport  Sender
	normalizer *normalize.Normalizer
	alert      func(string)
	labels     Labels
	guard      *dispatch.Guard
}
