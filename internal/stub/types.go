package stub

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Shape selects which historical response layout the stub answers with.
type Shape string

const (
	ShapePlain   Shape = "plain"
	ShapeNested  Shape = "nested"
	ShapeEncoded Shape = "encoded"
	ShapeEscaped Shape = "escaped"
	ShapeText    Shape = "text"
)

const (
	statusSuccess     = "success"
	statusError       = "error"
	statusRateLimited = "rate_limited"

	maxMatches = 3

	// a limiter idle this long has refilled completely, so dropping it
	// changes nothing for the caller
	visitorIdle = time.Minute
)

type Product struct {
	Name  string   `json:"name"`
	Price string   `json:"price"`
	Image string   `json:"image,omitempty"`
	Link  string   `json:"link"`
	Tags  []string `json:"-"`
}

type Config struct {
	// RatePerMinute caps requests per session. Zero disables the limit.
	RatePerMinute int
	// APIKeys lists accepted tenant keys. Empty accepts any key.
	APIKeys []string
	Shape   Shape
	Catalog []Product
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	APIKey    string `json:"api_key"`
}

type chatResponse struct {
	Status    string    `json:"status"`
	Response  any       `json:"response"`
	Products  []Product `json:"products,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
}

// visitor is one rate-limited caller.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Handler struct {
	cfg       Config
	keys      map[string]struct{}
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}
