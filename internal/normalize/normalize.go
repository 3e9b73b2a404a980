package normalize

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/tidwall/gjson"

	"github.com/bowerhall/chatwidget/internal/transcript"
	"github.com/bowerhall/chatwidget/internal/transport"
)

// New returns a normalizer. Empty fields in msgs fall back to the defaults.
func New(msgs Messages) *Normalizer {
	def := DefaultMessages()
	if msgs.RateLimited == "" {
		msgs.RateLimited = def.RateLimited
	}
	if msgs.Communication == "" {
		msgs.Communication = def.Communication
	}
	if msgs.Forbidden == "" {
		msgs.Forbidden = msgs.Communication
	}
	if msgs.Network == "" {
		msgs.Network = def.Network
	}
	return &Normalizer{msgs: msgs}
}

// OutcomeOf maps an error from transport.Client.Send to an Outcome.
func OutcomeOf(err error) Outcome {
	switch transport.KindOf(err) {
	case transport.KindNone:
		return OutcomeOK
	case transport.KindRateLimited:
		return OutcomeRateLimited
	case transport.KindForbidden:
		return OutcomeForbidden
	case transport.KindServer:
		return OutcomeServerError
	default:
		return OutcomeNetwork
	}
}

// Normalize resolves a loosely-typed payload into display text. The HTTP
// outcome is checked first and wins over anything in the body.
func (n *Normalizer) Normalize(payload gjson.Result, outcome Outcome) Result {
	switch outcome {
	case OutcomeRateLimited:
		return Result{Text: n.msgs.RateLimited, Kind: KindRateLimited}
	case OutcomeForbidden:
		return Result{Text: n.msgs.Forbidden, Kind: KindForbidden}
	case OutcomeServerError:
		return Result{Text: n.msgs.Communication, Kind: KindServerError}
	case OutcomeNetwork:
		return Result{Text: n.msgs.Network, Kind: KindNetworkError}
	}

	res, ok := n.resolve(payload)
	if !ok {
		return Result{Text: n.msgs.Communication, Kind: KindMalformed}
	}

	// an id on the outer payload wins over one inside an embedded object
	if id := sessionID(payload); id != "" {
		res.SessionID = id
	}
	if res.IsReply() {
		res.Products = products(payload)
	}
	return res
}

func (n *Normalizer) resolve(payload gjson.Result) (Result, bool) {
	if payload.Type == gjson.String {
		return n.fromString(payload.String())
	}
	if !payload.IsObject() {
		return Result{}, false
	}

	status := payload.Get("status").String()
	if status == StatusRateLimited {
		return n.rateLimited(), true
	}

	resp := payload.Get("response")
	switch {
	case resp.IsObject():
		if resp.Get("status").String() == StatusRateLimited {
			return n.rateLimited(), true
		}

		kind := statusKind(status, resp.Get("status").String())
		inner := resp.Get("response")
		switch {
		case inner.Type == gjson.String && strings.TrimSpace(inner.String()) != "":
			return Result{Text: inner.String(), Kind: kind}, true
		case inner.Exists() && inner.Type != gjson.String && inner.Type != gjson.Null:
			return Result{Text: inner.Raw, Kind: kind}, true
		default:
			return Result{Text: resp.Raw, Kind: kind}, true
		}

	case resp.Type == gjson.String:
		res, ok := n.fromString(resp.String())
		if ok && res.IsReply() {
			res.Kind = statusKind(status, "")
		}
		return res, ok
	}

	return Result{}, false
}

// fromString handles text that may itself be a JSON object encoded as a
// string, possibly with \uXXXX escapes left in.
func (n *Normalizer) fromString(s string) (Result, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Result{}, false
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if res, ok := n.fromEmbedded(trimmed); ok {
			return res, true
		}
		if decoded := unescape(trimmed); decoded != trimmed {
			if res, ok := n.fromEmbedded(decoded); ok {
				return res, true
			}
		}
	}

	return Result{Text: s, Kind: KindReply}, true
}

func (n *Normalizer) fromEmbedded(s string) (Result, bool) {
	if !gjson.Valid(s) {
		return Result{}, false
	}

	obj := gjson.Parse(s)
	if !obj.IsObject() {
		return Result{}, false
	}

	res, ok := n.embeddedText(obj)
	if ok {
		res.SessionID = sessionID(obj)
	}
	return res, ok
}

func (n *Normalizer) embeddedText(obj gjson.Result) (Result, bool) {
	status := obj.Get("status").String()
	if status == StatusRateLimited {
		return n.rateLimited(), true
	}

	resp := obj.Get("response")
	if resp.IsObject() {
		if resp.Get("status").String() == StatusRateLimited {
			return n.rateLimited(), true
		}
		inner := resp.Get("response")
		if inner.Type == gjson.String && strings.TrimSpace(inner.String()) != "" {
			return Result{Text: inner.String(), Kind: statusKind(status, resp.Get("status").String())}, true
		}
		return Result{}, false
	}

	if resp.Type == gjson.String && strings.TrimSpace(resp.String()) != "" {
		return Result{Text: resp.String(), Kind: statusKind(status, "")}, true
	}

	return Result{}, false
}

func (n *Normalizer) rateLimited() Result {
	return Result{Text: n.msgs.RateLimited, Kind: KindRateLimited}
}

// statusKind treats a missing or success status as a reply and anything
// else as a backend-reported error whose text is still shown.
func statusKind(statuses ...string) Kind {
	for _, s := range statuses {
		switch s {
		case "", StatusSuccess:
		default:
			return KindBackendError
		}
	}
	return KindReply
}

func sessionID(payload gjson.Result) string {
	if !payload.IsObject() {
		return ""
	}
	if id := payload.Get("session_id"); id.Type == gjson.String && id.String() != "" {
		return id.String()
	}
	if id := payload.Get("response.session_id"); id.Type == gjson.String {
		return id.String()
	}
	return ""
}

func products(payload gjson.Result) []transcript.Product {
	list := payload.Get("products")
	if !list.IsArray() {
		return nil
	}

	var out []transcript.Product
	list.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}

		name := field(item, "name")
		if name == "" {
			return true
		}

		out = append(out, transcript.Product{
			Name:      name,
			Price:     field(item, "price"),
			ImageURL:  field(item, "image", "image_url", "imageUrl"),
			DetailURL: field(item, "link", "url", "detail_url", "detailUrl"),
		})
		return true
	})

	return out
}

// field returns the first string or number value found under keys.
func field(item gjson.Result, keys ...string) string {
	for _, k := range keys {
		v := item.Get(k)
		switch v.Type {
		case gjson.String, gjson.Number:
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

// unescape is a best-effort decode of backslash escapes. It tries a full
// Go string unquote first, then falls back to \uXXXX sequences alone.
func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return decodeUnicodeEscapes(s)
}

func decodeUnicodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		r, ok := hex4(s, i)
		if !ok {
			b.WriteByte(s[i])
			i++
			continue
		}
		i += 6

		if utf16.IsSurrogate(r) {
			if r2, ok := hex4(s, i); ok {
				if d := utf16.DecodeRune(r, r2); d != unicode.ReplacementChar {
					b.WriteRune(d)
					i += 6
					continue
				}
			}
		}
		b.WriteRune(r)
	}

	return b.String()
}

func hex4(s string, i int) (rune, bool) {
	if i+6 > len(s) || s[i] != '\\' || s[i+1] != 'u' {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i+2:i+6], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
