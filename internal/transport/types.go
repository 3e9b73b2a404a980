package transport

import (
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

type Config struct {
	Endpoint string
	APIKey   string
	// Timeout of zero leaves the request bounded only by ctx and the
	// underlying stack.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// Request is the outbound body.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	APIKey    string `json:"api_key,omitempty"`
}

// Envelope is one raw response. Payload is the parsed body; it has type
// gjson.Null when the body was empty or not valid JSON.
type Envelope struct {
	StatusCode int
	Payload    gjson.Result
	Body       []byte
}
