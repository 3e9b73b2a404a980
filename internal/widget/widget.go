package widget

import (
	"context"
	"errors"
	"regexp"

	"github.com/tidwall/gjson"

	"github.com/bowerhall/chatwidget/internal/dispatch"
	"github.com/bowerhall/chatwidget/internal/logger"
	"github.com/bowerhall/chatwidget/internal/normalize"
	"github.com/bowerhall/chatwidget/internal/transport"
)

const enterKey = "Enter"

// leadingToken matches the emoji (or any first word) on example buttons.
var leadingToken = regexp.MustCompile(`^\S+\s`)

func DefaultLabels() Labels {
	return Labels{
		Send:       "Trimite ▶",
		Sending:    "Se trimite...",
		EmptyInput: "Te rog scrie un mesaj.",
	}
}

func New(deps Deps) *Controller {
	def := DefaultLabels()
	if deps.Labels.Send == "" {
		deps.Labels.Send = def.Send
	}
	if deps.Labels.Sending == "" {
		deps.Labels.Sending = def.Sending
	}
	if deps.Labels.EmptyInput == "" {
		deps.Labels.EmptyInput = def.EmptyInput
	}
	if deps.Normalizer == nil {
		deps.Normalizer = normalize.New(normalize.Messages{})
	}
	if deps.Alert == nil {
		deps.Alert = func(string) {}
	}

	c := &Controller{
		input:      deps.Input,
		button:     deps.Button,
		transcript: deps.Transcript,
		sessions:   deps.Sessions,
		transport:  deps.Transport,
		normalizer: deps.Normalizer,
		alert:      deps.Alert,
		labels:     deps.Labels,
	}

	opts := []dispatch.Option{dispatch.WithStateFunc(c.onState)}
	if deps.Clock != nil {
		opts = append(opts, dispatch.WithClock(deps.Clock))
	}
	c.guard = dispatch.New(deps.MinInterval, opts...)

	return c
}

// Start puts the controls in their idle state and focuses the input.
func (c *Controller) Start() {
	c.button.SetEnabled(true)
	c.button.SetLabel(c.labels.Send)
	c.input.Focus()
	logger.Info("chat initialized", "session", c.sessions.ID())
}

// Submit sends the current input value. Rejections come back as the
// dispatch sentinel errors; endpoint failures are rendered into the
// transcript and do not return an error.
func (c *Controller) Submit(ctx context.Context) error {
	err := c.guard.Dispatch(ctx, c.input.Value(), c.exchange)

	if errors.Is(err, dispatch.ErrEmptyInput) {
		c.alert(c.labels.EmptyInput)
	}
	return err
}

// SubmitExample fills the input from an example button label, minus its
// leading token, and submits it.
func (c *Controller) SubmitExample(ctx context.Context, label string) error {
	c.input.SetValue(leadingToken.ReplaceAllString(label, ""))
	return c.Submit(ctx)
}

// HandleKey submits on Enter without Shift. It reports whether the key was
// consumed.
func (c *Controller) HandleKey(ctx context.Context, key string, shift bool) (bool, error) {
	if key != enterKey || shift {
		return false, nil
	}
	return true, c.Submit(ctx)
}

func (c *Controller) HandleClick(ctx context.Context) error {
	return c.Submit(ctx)
}

func (c *Controller) State() dispatch.State {
	return c.guard.State()
}

func (c *Controller) exchange(ctx context.Context, p dispatch.Pending) error {
	c.transcript.AppendUser(p.Message)
	c.input.SetValue("")

	sessionID := c.sessions.ID()
	logger.Debug("dispatching message", "session", sessionID, "length", len(p.Message))

	env, err := c.transport.Send(ctx, p.Message, sessionID)
	if err != nil {
		logger.Debug("exchange failed", "kind", transport.KindOf(err))
	}

	payload := gjson.Result{}
	if env != nil {
		payload = env.Payload
	}

	res := c.normalizer.Normalize(payload, normalize.OutcomeOf(err))
	if res.Kind == normalize.KindMalformed && env != nil {
		logger.Debug("unusable response body", "status", env.StatusCode, "body", string(env.Body))
	}

	if res.SessionID != "" && res.SessionID != sessionID {
		if err := c.sessions.Adopt(res.SessionID); err != nil {
			logger.Warn("failed to persist server session id", "error", err)
		}
	}

	if res.IsReply() {
		c.transcript.AppendBot(res.Text, res.Products)
	} else {
		c.transcript.AppendNotice(res.Text)
	}
	return nil
}

func (c *Controller) onState(s dispatch.State) {
	switch s {
	case dispatch.Sending:
		c.button.SetEnabled(false)
		c.button.SetLabel(c.labels.Sending)
	case dispatch.Idle:
		c.button.SetEnabled(true)
		c.button.SetLabel(c.labels.Send)
		c.input.Focus()
	}
}
