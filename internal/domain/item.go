package domain

// ListingKind tags which upstream entity an item came from and how it is
// marketed. Hotels always carry KindHotel; listings default to KindSale when
// the upstream record omits the type.
type ListingKind string

const (
	KindSale  ListingKind = "Sale"
	KindRent  ListingKind = "Rent"
	KindHotel ListingKind = "Hotel"
)

// Status is the moderation lifecycle of an item. Unknown upstream values pass
// through unchanged; the empty string means the upstream record had none.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// RawListing is the upstream listings collection record, decoded only from
// the /api/listings endpoints. It is never inferred from field presence.
type RawListing struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ListingType string   `json:"listingType"`
	Type        string   `json:"type"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Beds        int      `json:"beds"`
	Rooms       int      `json:"rooms"`
	Guests      int      `json:"guests"`
	Size        float64  `json:"size"`
	UnitMeasure string   `json:"unitMeasure"`
	Price       float64  `json:"price"`
	Address     string   `json:"address"`
	Location    string   `json:"location"`
	Status      string   `json:"status"`
	Images      []string `json:"images"`
}

// RawHotel is the upstream hotels collection record, decoded only from the
// /api/hotels endpoints. Structurally distinct from RawListing: the display
// name lives in "name" and the bedroom count in "rooms".
type RawHotel struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rooms       int      `json:"rooms"`
	Bathrooms   int      `json:"bathrooms"`
	Beds        int      `json:"beds"`
	Size        float64  `json:"size"`
	UnitMeasure string   `json:"unitMeasure"`
	Price       float64  `json:"price"`
	Address     string   `json:"address"`
	Status      string   `json:"status"`
	Amenities   []string `json:"amenities"`
	Images      []string `json:"images"`
}

// UnifiedItem is the normalized, kind-agnostic view-model record the rest of
// the gateway works with. It is a derived, disposable projection of a raw
// record; numeric defaults here are cosmetic and never written back upstream.
type UnifiedItem struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Kind        ListingKind `json:"listingKind"`
	Images      []string    `json:"images"`
	Price       float64     `json:"price"`
	Status      Status      `json:"status"`
	Bedrooms    int         `json:"bedrooms"`
	Bathrooms   int         `json:"bathrooms"`
	Beds        int         `json:"beds"`
	Size        float64     `json:"size"`
	UnitMeasure string      `json:"unitMeasure"`
	Address     string      `json:"address"`
}

// IsHotel reports whether the item came from the hotels collection and must
// therefore use the hotel endpoint paths for mutations.
func (u UnifiedItem) IsHotel() bool {
	return u.Kind == KindHotel
}
