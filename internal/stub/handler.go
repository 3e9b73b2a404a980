package stub

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bowerhall/chatwidget/internal/logger"
)

const (
	textEmpty       = "Te rog scrie un mesaj."
	textBadKey      = "API key invalid."
	textRateLimited = "Ai trimis prea multe mesaje. Te rog așteaptă puțin și încearcă din nou."
	textInternal    = "A apărut o eroare. Te rog încearcă din nou."
	textMatched     = "Iată câteva produse care s-ar putea să-ți placă:"
	textNoMatch     = "Îți pot recomanda rochii, genți sau pantofi. Vezi toată colecția pe https://ejolie.ro."
)

func NewHandler(cfg Config) *Handler {
	if cfg.Shape == "" {
		cfg.Shape = ShapePlain
	}
	if cfg.Catalog == nil {
		cfg.Catalog = Seed()
	}

	keys := make(map[string]struct{}, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys[k] = struct{}{}
		}
	}

	return &Handler{
		cfg:      cfg,
		keys:     keys,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	// a missing or broken body is treated like an empty message
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		respondJSON(w, http.StatusBadRequest, chatResponse{Status: statusError, Response: textEmpty})
		return
	}

	if key := strings.TrimSpace(req.APIKey); key != "" && len(h.keys) > 0 {
		if _, ok := h.keys[key]; !ok {
			respondJSON(w, http.StatusForbidden, chatResponse{Status: statusError, Response: textBadKey})
			return
		}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "session_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	if !h.allow(limiterKey(req.SessionID, r)) {
		logger.Debug("stub rate limited", "session", sessionID)
		respondJSON(w, http.StatusTooManyRequests, chatResponse{Status: statusRateLimited, Response: textRateLimited})
		return
	}

	products := match(h.cfg.Catalog, message)
	text := textNoMatch
	if len(products) > 0 {
		text = textMatched
	}

	shape := h.cfg.Shape
	if q := r.URL.Query().Get("shape"); q != "" {
		shape = Shape(q)
	}

	body, err := render(shape, text, products, sessionID)
	if err != nil {
		logger.Error("stub render failed", "shape", shape, "error", err)
		respondJSON(w, http.StatusInternalServerError, chatResponse{Status: statusError, Response: textInternal})
		return
	}

	logger.Debug("stub reply", "session", sessionID, "shape", shape, "products", len(products))
	respondJSON(w, http.StatusOK, body)
}

func (h *Handler) allow(key string) bool {
	if h.cfg.RatePerMinute <= 0 {
		return true
	}

	h.mu.Lock()
	now := h.now()
	h.sweep(now)

	v, ok := h.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(h.cfg.RatePerMinute)), h.cfg.RatePerMinute)}
		h.visitors[key] = v
	}
	v.lastSeen = now
	h.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// sweep drops visitors idle for longer than visitorIdle, at most once per
// visitorIdle. Caller holds h.mu.
func (h *Handler) sweep(now time.Time) {
	if now.Sub(h.lastSweep) < visitorIdle {
		return
	}
	h.lastSweep = now

	for key, v := range h.visitors {
		if now.Sub(v.lastSeen) > visitorIdle {
			delete(h.visitors, key)
		}
	}
}

func limiterKey(sessionID string, r *http.Request) string {
	if sessionID != "" {
		return sessionID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// render lays the reply out the way one generation of the backend did.
func render(shape Shape, text string, products []Product, sessionID string) (any, error) {
	switch shape {
	case ShapePlain:
		return chatResponse{Status: statusSuccess, Response: text, Products: products, SessionID: sessionID}, nil

	case ShapeNested:
		inner := map[string]string{"status": statusSuccess, "response": text, "session_id": sessionID}
		return chatResponse{Status: statusSuccess, Response: inner, Products: products}, nil

	case ShapeEncoded, ShapeEscaped:
		raw, err := json.Marshal(map[string]string{"status": statusSuccess, "response": text})
		if err != nil {
			return nil, err
		}
		encoded := string(raw)
		if shape == ShapeEscaped {
			encoded = unicodeEscape(encoded)
		}
		return chatResponse{Status: statusSuccess, Response: encoded, Products: products, SessionID: sessionID}, nil

	case ShapeText:
		return text, nil

	default:
		return nil, fmt.Errorf("unknown shape %q", shape)
	}
}

// unicodeEscape rewrites quotes and non-ASCII runes as \uXXXX sequences.
func unicodeEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '"':
			b.WriteString(`\u0022`)
		case r < 0x80:
			b.WriteRune(r)
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, r1, r2)
		default:
			fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	return b.String()
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}
