package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cribz-gateway/internal/domain"
	"cribz-gateway/internal/upstream"

	"github.com/rs/zerolog/log"
)

// ErrFetchFailed marks a reconcile aborted because one of the two collection
// reads failed. The prior cache, if any, is left untouched.
var ErrFetchFailed = errors.New("catalog fetch failed")

// ErrNotFound marks an item that exists in neither upstream collection.
var ErrNotFound = errors.New("item not found")

// Upstream is the slice of the CribzConnect client the catalog needs.
type Upstream interface {
	FetchListings(ctx context.Context, token string, scope upstream.Scope) ([]domain.RawListing, error)
	FetchHotels(ctx context.Context, token string, scope upstream.Scope) ([]domain.RawHotel, error)
	GetListing(ctx context.Context, token, id string) (*domain.RawListing, error)
	GetHotel(ctx context.Context, token, id string) (*domain.RawHotel, error)
	CreateListing(ctx context.Context, token, contentType string, form io.Reader) error
	UpdateItem(ctx context.Context, token string, isHotel bool, id string, fields map[string]interface{}) error
	DeleteItem(ctx context.Context, token string, isHotel bool, id string) error
	ApproveItem(ctx context.Context, token string, isHotel bool, id string) error
	DeclineItem(ctx context.Context, token string, isHotel bool, id, reason string) error
}

// SnapshotResolver recovers a rendered item by id so mutations can decide
// between the listing and hotel endpoints without re-fetching. The view
// projector implements it.
type SnapshotResolver interface {
	Lookup(viewer, id string) (domain.UnifiedItem, bool)
}

// Service owns the merged-collection cache. Entries are keyed per viewer and
// replaced wholesale on each reconcile — never patched in place once stored.
type Service struct {
	Upstream Upstream
	Snapshot SnapshotResolver // optional; mutations fall back to detail fetches

	mu     sync.Mutex
	caches map[string]*cacheEntry
}

type cacheEntry struct {
	items []domain.UnifiedItem
	gen   uint64 // generation of the stored items
	seq   uint64 // last issued reconcile ticket
}

// ViewerKey derives the cache key for a bearer token. Unauthenticated
// requests share the public slot.
func ViewerKey(token string) string {
	if token == "" {
		return "public"
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

func (s *Service) entry(viewer string) *cacheEntry {
	if s.caches == nil {
		s.caches = make(map[string]*cacheEntry)
	}
	e, ok := s.caches[viewer]
	if !ok {
		e = &cacheEntry{}
		s.caches[viewer] = e
	}
	return e
}

// beginReconcile issues a monotonic ticket so a slow, stale reconcile can
// never overwrite a newer cache.
func (s *Service) beginReconcile(viewer string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(viewer)
	e.seq++
	return e.seq
}

func (s *Service) storeCache(viewer string, ticket uint64, items []domain.UnifiedItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(viewer)
	if ticket < e.gen {
		return false
	}
	e.gen = ticket
	e.items = items
	return true
}

// Cached returns the last reconciled collection for the viewer (nil if none).
func (s *Service) Cached(viewer string) []domain.UnifiedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.caches == nil {
		return nil
	}
	if e, ok := s.caches[viewer]; ok {
		return e.items
	}
	return nil
}

// FetchMerged is the pure read half of a reconcile: both collections fetched
// concurrently, awaited jointly, normalized and concatenated listings-first.
// If either fetch fails the whole read fails — no partial merge.
func (s *Service) FetchMerged(ctx context.Context, token string, scope upstream.Scope) ([]domain.UnifiedItem, error) {
	var (
		wg       sync.WaitGroup
		listings []domain.RawListing
		hotels   []domain.RawHotel
		listErr  error
		hotelErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		listings, listErr = s.Upstream.FetchListings(ctx, token, scope)
	}()
	go func() {
		defer wg.Done()
		hotels, hotelErr = s.Upstream.FetchHotels(ctx, token, scope)
	}()
	wg.Wait()

	if listErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, listErr)
	}
	if hotelErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, hotelErr)
	}
	return Normalize(listings, hotels), nil
}

// AutoPublishPending approves every pending item in place, concurrently, with
// per-item failure isolation: a failed approve leaves only that item pending
// and never fails the pass. Returns the number of items published.
func (s *Service) AutoPublishPending(ctx context.Context, token string, items []domain.UnifiedItem) int {
	var pending []int
	for i := range items {
		if items[i].Status == domain.StatusPending {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return 0
	}

	approved := make([]bool, len(pending))
	var wg sync.WaitGroup
	for n, idx := range pending {
		wg.Add(1)
		go func(n, idx int) {
			defer wg.Done()
			item := items[idx]
			if err := s.Upstream.ApproveItem(ctx, token, item.IsHotel(), item.ID); err != nil {
				log.Warn().Str("item_id", item.ID).Str("kind", string(item.Kind)).Err(err).
					Msg("auto-publish approve failed; item stays pending")
				return
			}
			approved[n] = true
		}(n, idx)
	}
	wg.Wait()

	published := 0
	for n, idx := range pending {
		if approved[n] {
			items[idx].Status = domain.StatusPublished
			published++
		}
	}
	return published
}

// Reconcile runs the full cycle: fetch both collections, normalize and merge,
// optionally auto-publish pending items, then swap the viewer's cache. On
// fetch failure the prior cache is retained and ErrFetchFailed returned.
func (s *Service) Reconcile(ctx context.Context, token string, scope upstream.Scope, autoPublish bool) ([]domain.UnifiedItem, error) {
	viewer := ViewerKey(token)
	ticket := s.beginReconcile(viewer)

	items, err := s.FetchMerged(ctx, token, scope)
	if err != nil {
		return nil, err
	}
	if autoPublish {
		s.AutoPublishPending(ctx, token, items)
	}
	if !s.storeCache(viewer, ticket, items) {
		// A newer reconcile finished first; serve its result instead.
		return s.Cached(viewer), nil
	}
	return items, nil
}

// PredicateAll matches every item regardless of status.
const PredicateAll = "all"

// Filter applies a status predicate over the viewer's cached collection. It
// never fetches: "all" returns the cache as-is, anything else keeps exact
// case-insensitive status matches (unknown predicates simply match nothing).
func (s *Service) Filter(token, predicate string) []domain.UnifiedItem {
	cached := s.Cached(ViewerKey(token))
	if predicate == "" || strings.EqualFold(predicate, PredicateAll) {
		return cached
	}
	filtered := make([]domain.UnifiedItem, 0, len(cached))
	for _, item := range cached {
		if strings.EqualFold(string(item.Status), predicate) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Detail is an item fetched for edit prefill. Degraded is set when the
// upstream detail read failed and the rendered snapshot served stale data.
type Detail struct {
	Item     domain.UnifiedItem `json:"item"`
	IsHotel  bool               `json:"isHotel"`
	Degraded bool               `json:"degraded"`
}

// Detail resolves an item for editing: snapshot first for the kind, then the
// matching detail endpoint. If the detail fetch fails but the snapshot still
// has the item, it degrades to the stale copy instead of blocking the edit.
func (s *Service) Detail(ctx context.Context, token, id string) (*Detail, error) {
	snap, haveSnap := s.lookupSnapshot(token, id)

	if haveSnap && snap.IsHotel() {
		h, err := s.Upstream.GetHotel(ctx, token, id)
		if err != nil {
			return &Detail{Item: snap, IsHotel: true, Degraded: true}, nil
		}
		return &Detail{Item: normalizeHotel(*h), IsHotel: true}, nil
	}

	l, err := s.Upstream.GetListing(ctx, token, id)
	if err == nil {
		return &Detail{Item: normalizeListing(*l)}, nil
	}
	if upstream.IsNotFound(err) {
		if h, herr := s.Upstream.GetHotel(ctx, token, id); herr == nil {
			return &Detail{Item: normalizeHotel(*h), IsHotel: true}, nil
		}
	}
	if haveSnap {
		return &Detail{Item: snap, IsHotel: snap.IsHotel(), Degraded: true}, nil
	}
	return nil, fmt.Errorf("detail %s: %w", id, err)
}

// Create validates nothing itself — the handler has already checked the form.
// It forwards the multipart body upstream and resynchronizes on success.
func (s *Service) Create(ctx context.Context, token, contentType string, form io.Reader, scope upstream.Scope) ([]domain.UnifiedItem, error) {
	if err := s.Upstream.CreateListing(ctx, token, contentType, form); err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, token, scope, true)
}

// Edit updates an item upstream, then resynchronizes. Nothing local changes
// until the upstream confirms.
func (s *Service) Edit(ctx context.Context, token, id string, fields map[string]interface{}, scope upstream.Scope, autoPublish bool) ([]domain.UnifiedItem, error) {
	isHotel, err := s.resolveKind(ctx, token, id)
	if err != nil {
		return nil, err
	}
	if err := s.Upstream.UpdateItem(ctx, token, isHotel, id, fields); err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, token, scope, autoPublish)
}

// Delete removes an item upstream, then resynchronizes.
func (s *Service) Delete(ctx context.Context, token, id string, scope upstream.Scope, autoPublish bool) ([]domain.UnifiedItem, error) {
	isHotel, err := s.resolveKind(ctx, token, id)
	if err != nil {
		return nil, err
	}
	if err := s.Upstream.DeleteItem(ctx, token, isHotel, id); err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, token, scope, autoPublish)
}

// Approve publishes a pending item, then resynchronizes.
func (s *Service) Approve(ctx context.Context, token, id string, scope upstream.Scope, autoPublish bool) ([]domain.UnifiedItem, error) {
	isHotel, err := s.resolveKind(ctx, token, id)
	if err != nil {
		return nil, err
	}
	if err := s.Upstream.ApproveItem(ctx, token, isHotel, id); err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, token, scope, autoPublish)
}

// Decline moves a pending item back to draft with an optional rejection
// reason. Like every other mutation it confirms upstream before any local
// state changes — the reason is never recorded optimistically.
func (s *Service) Decline(ctx context.Context, token, id, reason string, scope upstream.Scope, autoPublish bool) ([]domain.UnifiedItem, error) {
	isHotel, err := s.resolveKind(ctx, token, id)
	if err != nil {
		return nil, err
	}
	if err := s.Upstream.DeclineItem(ctx, token, isHotel, id, reason); err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, token, scope, autoPublish)
}

func (s *Service) lookupSnapshot(token, id string) (domain.UnifiedItem, bool) {
	if s.Snapshot == nil {
		return domain.UnifiedItem{}, false
	}
	return s.Snapshot.Lookup(ViewerKey(token), id)
}

// resolveKind decides listing vs hotel from the rendered snapshot, falling
// back to detail probes when the item was never rendered.
func (s *Service) resolveKind(ctx context.Context, token, id string) (bool, error) {
	if item, ok := s.lookupSnapshot(token, id); ok {
		return item.IsHotel(), nil
	}
	if _, err := s.Upstream.GetListing(ctx, token, id); err == nil {
		return false, nil
	} else if !upstream.IsNotFound(err) {
		return false, err
	}
	if _, err := s.Upstream.GetHotel(ctx, token, id); err == nil {
		return true, nil
	} else if !upstream.IsNotFound(err) {
		return true, err
	}
	return false, fmt.Errorf("%w: %s", ErrNotFound, id)
}
