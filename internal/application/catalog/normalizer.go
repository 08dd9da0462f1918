package catalog

import (
	"strings"

	"cribz-gateway/internal/domain"
)

// Cosmetic display defaults for absent numeric fields. These exist so cards
// always render a spec line; they are never written back upstream.
const (
	defaultBedrooms  = 2
	defaultBathrooms = 1
	defaultBeds      = 1
)

// Normalize converts the two raw upstream collections into one unified
// sequence: all listings first, then all hotels, each group in input order.
// It is pure and total — no raw field combination makes it fail.
func Normalize(listings []domain.RawListing, hotels []domain.RawHotel) []domain.UnifiedItem {
	out := make([]domain.UnifiedItem, 0, len(listings)+len(hotels))
	for _, l := range listings {
		out = append(out, normalizeListing(l))
	}
	for _, h := range hotels {
		out = append(out, normalizeHotel(h))
	}
	return out
}

func normalizeListing(r domain.RawListing) domain.UnifiedItem {
	bedrooms := r.Bedrooms
	if bedrooms == 0 {
		bedrooms = r.Rooms
	}
	address := r.Address
	if address == "" {
		address = r.Location
	}
	kind := r.ListingType
	if kind == "" {
		kind = r.Type
	}
	return domain.UnifiedItem{
		ID:          r.ID,
		Title:       r.Title,
		Kind:        normalizeKind(kind),
		Images:      nonNil(r.Images),
		Price:       r.Price,
		Status:      normalizeStatus(r.Status),
		Bedrooms:    orDefault(bedrooms, defaultBedrooms),
		Bathrooms:   orDefault(r.Bathrooms, defaultBathrooms),
		Beds:        orDefault(r.Beds, defaultBeds),
		Size:        r.Size,
		UnitMeasure: r.UnitMeasure,
		Address:     address,
	}
}

func normalizeHotel(r domain.RawHotel) domain.UnifiedItem {
	return domain.UnifiedItem{
		ID:          r.ID,
		Title:       r.Name,
		Kind:        domain.KindHotel,
		Images:      nonNil(r.Images),
		Price:       r.Price,
		Status:      normalizeStatus(r.Status),
		Bedrooms:    orDefault(r.Rooms, defaultBedrooms),
		Bathrooms:   orDefault(r.Bathrooms, defaultBathrooms),
		Beds:        orDefault(r.Beds, defaultBeds),
		Size:        r.Size,
		UnitMeasure: r.UnitMeasure,
		Address:     r.Address,
	}
}

// normalizeKind maps the free-form upstream listing type onto the fixed kind
// enum. Anything unrecognized sells as a sale, same as the card badge rule.
func normalizeKind(raw string) domain.ListingKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hotel":
		return domain.KindHotel
	case "rent":
		return domain.KindRent
	default:
		return domain.KindSale
	}
}

// normalizeStatus lowercases known lifecycle values and passes anything else
// through untouched (including the empty string).
func normalizeStatus(raw string) domain.Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch domain.Status(s) {
	case domain.StatusPending, domain.StatusDraft, domain.StatusPublished:
		return domain.Status(s)
	}
	return domain.Status(raw)
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func nonNil(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
