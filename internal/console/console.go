package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func (i *Input) Value() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.value
}

func (i *Input) SetValue(v string) {
	i.mu.Lock()
	i.value = v
	i.mu.Unlock()
}

func (i *Input) Focus() {
	i.mu.Lock()
	i.focused = true
	i.mu.Unlock()
}

// Focused reports and clears the focus flag.
func (i *Input) Focused() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	f := i.focused
	i.focused = false
	return f
}

func NewButton() *Button {
	return &Button{enabled: true}
}

func (b *Button) SetEnabled(enabled bool) {
	b.mu.Lock()
	b.enabled = enabled
	b.mu.Unlock()
}

func (b *Button) SetLabel(label string) {
	b.mu.Lock()
	b.label = label
	b.mu.Unlock()
}

func (b *Button) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

func (b *Button) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

func NewLog(w io.Writer) *Log {
	return &Log{w: w}
}

func (l *Log) Append(markup string) {
	text, err := Render(markup)
	if err != nil {
		text = markup
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, text)
}

// ScrollToBottom is a no-op: terminal output always ends at the newest line.
func (l *Log) ScrollToBottom() {}

// Alert prints a short notice that is not part of the transcript.
func (l *Log) Alert(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, "! "+text)
}

// Render converts one transcript entry's markup to terminal text. Links
// print as their URL; products print as a numbered list.
func Render(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}
	doc.Find("br").ReplaceWithHtml("\n")

	var lines []string

	doc.Find(".user-message-content").Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, userPrefix+s.Text())
	})
	doc.Find(".bot-message-content").Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, s.Text())
	})
	doc.Find(".product-card").Each(func(i int, s *goquery.Selection) {
		line := fmt.Sprintf("  [%d] %s", i+1, strings.TrimSpace(s.Find("h4").Text()))
		if price := strings.TrimSpace(s.Find(".price").Text()); price != "" {
			line += " | " + price
		}
		if href, ok := s.Find("a.btn-view").Attr("href"); ok && href != "#" {
			line += " | " + href
		}
		lines = append(lines, line)
	})

	if len(lines) == 0 {
		return strings.TrimSpace(doc.Text()), nil
	}
	return strings.Join(lines, "\n"), nil
}
