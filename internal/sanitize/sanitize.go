package sanitize

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

// urlPattern runs over already-escaped text. The only entity allowed inside
// a match is &amp; (query strings); any other entity ends the URL.
var urlPattern = regexp.MustCompile(`https?://(?:[^\s&<>"']|&amp;)+`)

const trailingPunct = ").,!?;:]"

// Escape converts HTML metacharacters to entities so the result carries no
// live markup.
func Escape(text string) string {
	if text == "" {
		return ""
	}
	return html.EscapeString(text)
}

// Linkify escapes text, turns newlines into <br>, and wraps http(s) URLs in
// anchors that open in a new tab. Sentence punctuation after a URL stays
// outside the anchor.
func Linkify(text string) string {
	escaped := Escape(text)
	if escaped == "" {
		return ""
	}

	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")

	return urlPattern.ReplaceAllStringFunc(escaped, func(match string) string {
		link, tail := splitTrailing(match)
		if link == "" {
			return match
		}
		return `<a href="` + link + `" target="_blank" rel="noopener noreferrer">` + link + `</a>` + tail
	})
}

func splitTrailing(match string) (string, string) {
	end := len(match)
	for end > 0 && strings.IndexByte(trailingPunct, match[end-1]) >= 0 {
		// the ; closing an escaped ampersand belongs to the entity
		if match[end-1] == ';' && strings.HasSuffix(match[:end], "&amp;") {
			break
		}
		end--
	}

	link := match[:end]
	// a bare scheme is not a link
	if strings.HasSuffix(link, "://") {
		return "", ""
	}
	return link, match[end:]
}

// SafeURL returns raw escaped for use in an attribute when it is an absolute
// http(s) URL, and the escaped fallback otherwise.
func SafeURL(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return html.EscapeString(fallback)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return html.EscapeString(fallback)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return html.EscapeString(raw)
	default:
		return html.EscapeString(fallback)
	}
}
