package view

import (
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"cribz-gateway/internal/domain"
)

// PlaceholderImage is served when an item has no photos.
const PlaceholderImage = "/api/placeholder/350/180"

const emptyStateMessage = "You don't have any listing at this moment."

const defaultCurrency = "XAF"

// Options carries per-projection presentation policy. Privileged turns on the
// moderation affordances for pending items; it is a parameter, not state.
type Options struct {
	Privileged bool
	Currency   string
}

// Actions are the buttons a card offers.
type Actions struct {
	Edit    bool `json:"edit"`
	Delete  bool `json:"delete"`
	Approve bool `json:"approve"`
	Decline bool `json:"decline"`
}

// Card is the per-item view record of a render directive.
type Card struct {
	ID          string             `json:"id"`
	Kind        domain.ListingKind `json:"listingKind"`
	Badge       string             `json:"badge"`
	Title       string             `json:"title"`
	ImageURL    string             `json:"imageUrl"`
	PriceLabel  string             `json:"priceLabel"`
	StatusLabel string             `json:"statusLabel"`
	StatusClass string             `json:"statusClass"`
	Bedrooms    int                `json:"bedrooms"`
	Bathrooms   int                `json:"bathrooms"`
	SizeLabel   string             `json:"sizeLabel"`
	Address     string             `json:"address"`
	Actions     Actions            `json:"actions"`
}

// RenderDirective is the full, ordered instruction set for one render pass.
type RenderDirective struct {
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"emptyMessage,omitempty"`
	Cards        []Card `json:"cards"`
}

// Projector turns unified items into render directives and keeps, per viewer,
// the snapshot of what is currently rendered. The snapshot is replaced
// wholesale on every projection so it always equals the visible set.
type Projector struct {
	mu        sync.RWMutex
	snapshots map[string][]domain.UnifiedItem
}

func NewProjector() *Projector {
	return &Projector{snapshots: make(map[string][]domain.UnifiedItem)}
}

// Project maps every item to exactly one card, in input order, and replaces
// the viewer's rendered snapshot with exactly these items.
func (p *Projector) Project(viewer string, items []domain.UnifiedItem, opts Options) RenderDirective {
	p.mu.Lock()
	p.snapshots[viewer] = items
	p.mu.Unlock()

	if len(items) == 0 {
		return RenderDirective{Empty: true, EmptyMessage: emptyStateMessage, Cards: []Card{}}
	}

	currency := opts.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	cards := make([]Card, len(items))
	for i, item := range items {
		cards[i] = buildCard(item, opts, currency)
	}
	return RenderDirective{Cards: cards}
}

// Lookup recovers a rendered item by id for mutation kind resolution.
func (p *Projector) Lookup(viewer, id string) (domain.UnifiedItem, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, item := range p.snapshots[viewer] {
		if item.ID == id {
			return item, true
		}
	}
	return domain.UnifiedItem{}, false
}

// Snapshot returns the currently rendered items for a viewer.
func (p *Projector) Snapshot(viewer string) []domain.UnifiedItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshots[viewer]
}

func buildCard(item domain.UnifiedItem, opts Options, currency string) Card {
	title := item.Title
	if title == "" {
		title = "Property Title"
	}
	imageURL := PlaceholderImage
	if len(item.Images) > 0 {
		imageURL = item.Images[0]
	}

	moderatable := opts.Privileged && item.Status == domain.StatusPending
	return Card{
		ID:          item.ID,
		Kind:        item.Kind,
		Badge:       badgeText(item.Kind),
		Title:       title,
		ImageURL:    imageURL,
		PriceLabel:  formatPrice(item.Price) + " " + currency,
		StatusLabel: statusLabel(item.Status),
		StatusClass: statusClass(item.Status),
		Bedrooms:    item.Bedrooms,
		Bathrooms:   item.Bathrooms,
		SizeLabel:   sizeLabel(item.Size, item.UnitMeasure),
		Address:     item.Address,
		Actions: Actions{
			Edit:    true,
			Delete:  true,
			Approve: moderatable,
			Decline: moderatable,
		},
	}
}

func badgeText(kind domain.ListingKind) string {
	switch kind {
	case domain.KindHotel:
		return "HOTEL"
	case domain.KindRent:
		return "FOR RENT"
	default:
		return "FOR SALE"
	}
}

func statusLabel(s domain.Status) string {
	if s == "" {
		return ""
	}
	// Statuses pass through unnormalized, so the first character may be any
	// rune; capitalize by rune, not by byte.
	str := string(s)
	r, size := utf8.DecodeRuneInString(str)
	return string(unicode.ToUpper(r)) + str[size:]
}

func statusClass(s domain.Status) string {
	switch s {
	case domain.StatusPending:
		return "badge-pending"
	case domain.StatusDraft:
		return "badge-draft"
	default:
		return "badge-published"
	}
}

func sizeLabel(size float64, unit string) string {
	if size == 0 {
		return strings.TrimSpace(" " + unit)
	}
	return strings.TrimSpace(trimFloat(size) + " " + unit)
}

// formatPrice renders a price with thousands separators, two decimals when
// the amount is fractional.
func formatPrice(price float64) string {
	if price == 0 {
		return "0"
	}
	s := trimFloat(price)
	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + fracPart
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
