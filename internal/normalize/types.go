package normalize

import "github.com/bowerhall/chatwidget/internal/transcript"

// Payload status markers observed from the backend.
const (
	StatusSuccess     = "success"
	StatusRateLimited = "rate_limited"
)

// Outcome is the HTTP-level result of one exchange.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeRateLimited
	OutcomeForbidden
	OutcomeServerError
	OutcomeNetwork
)

// Kind says what a Result represents. Only KindReply is a normal bot answer;
// every other kind is rendered as a notice.
type Kind string

const (
	KindReply        Kind = "reply"
	KindRateLimited  Kind = "rate_limited"
	KindForbidden    Kind = "forbidden"
	KindServerError  Kind = "server_error"
	KindNetworkError Kind = "network_error"
	KindBackendError Kind = "backend_error"
	KindMalformed    Kind = "malformed"
)

type Result struct {
	Text      string
	Kind      Kind
	Products  []transcript.Product
	SessionID string
}

func (r Result) IsReply() bool {
	return r.Kind == KindReply
}

// Messages are the fixed texts shown instead of server content.
type Messages struct {
	RateLimited   string
	Forbidden     string
	Communication string
	Network       string
}

func DefaultMessages() Messages {
	generic := "A apărut o eroare. Te rog încearcă din nou."
	return Messages{
		RateLimited:   "Ai trimis prea multe mesaje. Te rog așteaptă puțin și încearcă din nou.",
		Forbidden:     generic,
		Communication: generic,
		Network:       "Eroare de conexiune. Verifică conexiunea la internet și încearcă din nou.",
	}
}

type Normalizer struct {
	msgs Messages
}
