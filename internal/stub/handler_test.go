package stub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func post(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, gjson.Result) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if !gjson.Valid(w.Body.String()) {
		t.Fatalf("response is not json: %s", w.Body.String())
	}
	return w, gjson.Parse(w.Body.String())
}

func TestEmptyMessage(t *testing.T) {
	r := NewRouter(NewHandler(Config{}))

	for _, body := range []string{`{"message":"   "}`, `{}`, `not json`} {
		w, res := post(t, r, "/api/chat", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, w.Code)
		}
		if res.Get("status").String() != statusError || res.Get("response").String() != textEmpty {
			t.Errorf("body %q: unexpected payload %s", body, res.Raw)
		}
	}
}

func TestUnknownAPIKey(t *testing.T) {
	r := NewRouter(NewHandler(Config{APIKeys: []string{"tenant-1"}}))

	w, _ := post(t, r, "/api/chat", `{"message":"salut","api_key":"nope"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}

	w, _ = post(t, r, "/api/chat", `{"message":"salut","api_key":"tenant-1"}`)
	if w.Code != http.StatusOK {
		t.Errorf("known key should pass, got %d", w.Code)
	}

	w, _ = post(t, r, "/api/chat", `{"message":"salut"}`)
	if w.Code != http.StatusOK {
		t.Errorf("missing key should pass, got %d", w.Code)
	}
}

func TestRateLimitPerSession(t *testing.T) {
	r := NewRouter(NewHandler(Config{RatePerMinute: 2}))

	for i := 0; i < 2; i++ {
		if w, _ := post(t, r, "/api/chat", `{"message":"salut","session_id":"a"}`); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w, res := post(t, r, "/api/chat", `{"message":"salut","session_id":"a"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if res.Get("status").String() != statusRateLimited {
		t.Errorf("expected rate_limited marker, got %s", res.Raw)
	}

	if w, _ := post(t, r, "/api/chat", `{"message":"salut","session_id":"b"}`); w.Code != http.StatusOK {
		t.Errorf("other sessions should not be limited, got %d", w.Code)
	}
}

func TestPlainReplyWithProducts(t *testing.T) {
	r := NewRouter(NewHandler(Config{}))

	w, res := post(t, r, "/api/chat", `{"message":"Caut o rochie","session_id":"s1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("unexpected content type %q", w.Header().Get("Content-Type"))
	}
	if res.Get("status").String() != statusSuccess || res.Get("response").String() != textMatched {
		t.Errorf("unexpected payload %s", res.Raw)
	}
	if n := len(res.Get("products").Array()); n != maxMatches {
		t.Errorf("expected %d products, got %d", maxMatches, n)
	}
	if res.Get("session_id").String() != "s1" {
		t.Errorf("session id should be echoed, got %s", res.Get("session_id").Raw)
	}
}

func TestNoMatchOmitsProducts(t *testing.T) {
	r := NewRouter(NewHandler(Config{}))

	_, res := post(t, r, "/api/chat", `{"message":"bună ziua"}`)
	if res.Get("products").Exists() {
		t.Errorf("no products expected, got %s", res.Get("products").Raw)
	}
	if !strings.HasPrefix(res.Get("session_id").String(), "session_") {
		t.Errorf("a session id should be issued, got %q", res.Get("session_id").String())
	}
}

func TestShapes(t *testing.T) {
	r := NewRouter(NewHandler(Config{}))

	_, res := post(t, r, "/api/chat?shape=nested", `{"message":"geanta","session_id":"s"}`)
	if res.Get("response.response").String() != textMatched || res.Get("response.session_id").String() != "s" {
		t.Errorf("nested: unexpected payload %s", res.Raw)
	}

	_, res = post(t, r, "/api/chat?shape=encoded", `{"message":"geanta"}`)
	inner := res.Get("response").String()
	if gjson.Get(inner, "response").String() != textMatched {
		t.Errorf("encoded: inner payload %q", inner)
	}

	_, res = post(t, r, "/api/chat?shape=escaped", `{"message":"geanta"}`)
	escaped := res.Get("response").String()
	if !strings.Contains(escaped, `\u0022response\u0022`) || strings.Contains(escaped, `"`) {
		t.Errorf("escaped: unexpected inner payload %q", escaped)
	}

	_, res = post(t, r, "/api/chat?shape=text", `{"message":"geanta"}`)
	if res.Type != gjson.String || res.String() != textMatched {
		t.Errorf("text: unexpected payload %s", res.Raw)
	}

	w, _ := post(t, r, "/api/chat?shape=bogus", `{"message":"geanta"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("unknown shape should fail, got %d", w.Code)
	}
}

func TestMatchLimitsAndIgnoresShortWords(t *testing.T) {
	if got := match(Seed(), "o si de"); len(got) != 0 {
		t.Errorf("short words should not match, got %v", got)
	}
	if got := match(Seed(), "pantofi!"); len(got) != 1 || got[0].Name != "Pantofi stiletto Elena" {
		t.Errorf("unexpected match %v", got)
	}
}

func TestUnicodeEscapeRoundTrip(t *testing.T) {
	in := `{"response":"Bună 😀"}`
	escaped := unicodeEscape(in)

	var out string
	if err := json.Unmarshal([]byte(`"`+escaped+`"`), &out); err != nil {
		t.Fatalf("escaped text is not a valid json string body: %v", err)
	}
	if out != in {
		t.Errorf("round trip changed text: %q", out)
	}
}

func TestIdleVisitorsEvicted(t *testing.T) {
	now := time.Unix(1700000000, 0)
	h := NewHandler(Config{RatePerMinute: 1})
	h.now = func() time.Time { return now }

	if !h.allow("a") || !h.allow("b") {
		t.Fatal("first requests should pass")
	}
	if h.allow("a") {
		t.Fatal("second request within the minute should be limited")
	}

	now = now.Add(30 * time.Second)
	h.allow("c")
	if len(h.visitors) != 3 {
		t.Errorf("no visitor is idle yet, got %d", len(h.visitors))
	}

	now = now.Add(45 * time.Second)
	if !h.allow("d") {
		t.Error("new visitor should pass")
	}
	if len(h.visitors) != 2 {
		t.Errorf("idle visitors should be dropped, %d left", len(h.visitors))
	}
	if _, ok := h.visitors["c"]; !ok {
		t.Error("recently seen visitor was dropped")
	}
	if h.allow("c") {
		t.Error("kept visitor should still be limited")
	}
}
