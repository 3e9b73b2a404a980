package transcript

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bowerhall/chatwidget/internal/sanitize"
)

const (
	noticeMarker = "⚠️ "
	paginateOver = 2
)

func DefaultOptions() Options {
	return Options{
		BotName:          "Ejolie",
		ViewProductLabel: "Vezi Produs",
		PlaceholderImage: "https://via.placeholder.com/220x260?text=No+Image",
		BrokenImage:      "https://via.placeholder.com/220x260?text=Image+Not+Found",
		PrevLabel:        "Previous products",
		NextLabel:        "Next products",
	}
}

// New returns a renderer writing into log. log may be nil, in which case
// entries are only kept in memory.
func New(log Log, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.BotName == "" {
		opts.BotName = def.BotName
	}
	if opts.ViewProductLabel == "" {
		opts.ViewProductLabel = def.ViewProductLabel
	}
	if opts.PlaceholderImage == "" {
		opts.PlaceholderImage = def.PlaceholderImage
	}
	if opts.BrokenImage == "" {
		opts.BrokenImage = def.BrokenImage
	}
	if opts.PrevLabel == "" {
		opts.PrevLabel = def.PrevLabel
	}
	if opts.NextLabel == "" {
		opts.NextLabel = def.NextLabel
	}

	return &Renderer{
		log:  log,
		opts: opts,
		now:  time.Now,
	}
}

func (r *Renderer) AppendUser(text string) Entry {
	markup := `<div class="message user-message"><div class="user-message-content">` +
		sanitize.Escape(text) + `</div></div>`

	return r.append(Entry{Sender: User, RawText: text, Markup: markup})
}

// AppendBot link-ifies text and, when products is non-empty, adds a carousel.
func (r *Renderer) AppendBot(text string, products []Product) Entry {
	markup := r.botMessage(sanitize.Linkify(text))
	if len(products) > 0 {
		markup += r.carousel(products)
	}

	var kept []Product
	if len(products) > 0 {
		kept = append([]Product(nil), products...)
	}
	return r.append(Entry{Sender: Bot, RawText: text, Markup: markup, Products: kept})
}

// AppendNotice renders a bot entry marked as a warning. Used for every
// error and rate-limit text.
func (r *Renderer) AppendNotice(text string) Entry {
	markup := r.botMessage(noticeMarker + sanitize.Linkify(text))
	return r.append(Entry{Sender: Bot, RawText: text, Markup: markup, Notice: true})
}

// Entries returns a copy of the transcript in append order.
func (r *Renderer) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	for i := range out {
		out[i].Products = slices.Clone(out[i].Products)
	}
	return out
}

// HTML returns the concatenated markup of every entry.
func (r *Renderer) HTML() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	for _, e := range r.entries {
		b.WriteString(e.Markup)
	}
	return b.String()
}

func (r *Renderer) append(e Entry) Entry {
	e.At = r.now()

	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()

	if r.log != nil {
		r.log.Append(e.Markup)
		r.log.ScrollToBottom()
	}
	return e
}

func (r *Renderer) botMessage(body string) string {
	return `<div class="message bot-message"><div class="bot-message-content"><strong>` +
		sanitize.Escape(r.opts.BotName) + `:</strong> ` + body + `</div></div>`
}

func (r *Renderer) carousel(products []Product) string {
	var b strings.Builder

	b.WriteString(`<div class="product-carousel-container`)
	switch len(products) {
	case 1:
		b.WriteString(` single-product`)
	case 2:
		b.WriteString(` few-products`)
	}
	b.WriteString(`"><div class="product-carousel">`)

	for i, p := range products {
		r.card(&b, i, p)
	}
	b.WriteString(`</div>`)

	if len(products) > paginateOver {
		r.navButton(&b, "prev", r.opts.PrevLabel, -1, "←")
		r.navButton(&b, "next", r.opts.NextLabel, 1, "→")
	}

	b.WriteString(`</div>`)
	return b.String()
}

func (r *Renderer) card(b *strings.Builder, index int, p Product) {
	name := sanitize.Escape(p.Name)
	src := sanitize.SafeURL(p.ImageURL, r.opts.PlaceholderImage)
	broken := sanitize.SafeURL(r.opts.BrokenImage, "")

	b.WriteString(`<div class="product-card" data-product-index="` + strconv.Itoa(index) + `">`)
	b.WriteString(`<img src="` + src + `" alt="` + name + `" decoding="async" data-fallback="` + broken +
		`" onerror="this.onerror=null;this.src=this.dataset.fallback">`)
	b.WriteString(`<h4 title="` + name + `">` + name + `</h4>`)
	b.WriteString(`<p class="price">` + sanitize.Escape(p.Price) + `</p>`)
	b.WriteString(`<a href="` + sanitize.SafeURL(p.DetailURL, "#") +
		`" class="btn-view" target="_blank" rel="noopener noreferrer">` +
		sanitize.Escape(r.opts.ViewProductLabel) + `</a>`)
	b.WriteString(`</div>`)
}

func (r *Renderer) navButton(b *strings.Builder, class, label string, direction int, glyph string) {
	b.WriteString(`<button type="button" class="carousel-btn ` + class + `" aria-label="` + sanitize.Escape(label) +
		`" data-direction="` + strconv.Itoa(direction) + `">` + glyph + `</button>`)
}
