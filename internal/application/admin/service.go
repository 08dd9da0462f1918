package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cribz-gateway/internal/application/catalog"
	"cribz-gateway/internal/domain"
	"cribz-gateway/internal/upstream"
)

// ErrInvalidCredit rejects credit requests with a missing user or a
// non-positive amount before anything is sent upstream.
var ErrInvalidCredit = errors.New("invalid credit request")

// Upstream is the slice of the CribzConnect client the admin dashboard needs.
type Upstream interface {
	FetchListings(ctx context.Context, token string, scope upstream.Scope) ([]domain.RawListing, error)
	FetchHotels(ctx context.Context, token string, scope upstream.Scope) ([]domain.RawHotel, error)
	FetchUsers(ctx context.Context, token string) ([]domain.User, error)
	FetchStats(ctx context.Context, token string) (*domain.PlatformStats, error)
	FetchTransactions(ctx context.Context, token string) ([]domain.Transaction, error)
	FetchWithdrawals(ctx context.Context, token string) ([]domain.Withdrawal, error)
	CreditUser(ctx context.Context, token, userID string, amount float64) error
	ApproveItem(ctx context.Context, token string, isHotel bool, id string) error
	DeclineItem(ctx context.Context, token string, isHotel bool, id, reason string) error
	DeleteItem(ctx context.Context, token string, isHotel bool, id string) error
}

type Service struct {
	Upstream Upstream
}

// Overview is the admin dashboard aggregate: every property (both kinds,
// normalized), every account, and derived counts.
type Overview struct {
	Properties      []domain.UnifiedItem  `json:"properties"`
	Users           []domain.User         `json:"users"`
	TotalProperties int                   `json:"totalProperties"`
	TotalUsers      int                   `json:"totalUsers"`
	StatusCounts    map[domain.Status]int `json:"statusCounts"`
}

// Dashboard fetches all listings, all hotels and all users concurrently and
// merges the properties through the shared normalizer. Any failed fetch fails
// the whole aggregate — a partial dashboard would misreport the counts.
func (s *Service) Dashboard(ctx context.Context, token string) (*Overview, error) {
	var (
		wg       sync.WaitGroup
		listings []domain.RawListing
		hotels   []domain.RawHotel
		users    []domain.User
		errs     [3]error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		listings, errs[0] = s.Upstream.FetchListings(ctx, token, upstream.ScopeAll)
	}()
	go func() {
		defer wg.Done()
		hotels, errs[1] = s.Upstream.FetchHotels(ctx, token, upstream.ScopeAll)
	}()
	go func() {
		defer wg.Done()
		users, errs[2] = s.Upstream.FetchUsers(ctx, token)
	}()
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("admin dashboard: %w", err)
		}
	}

	properties := catalog.Normalize(listings, hotels)
	counts := make(map[domain.Status]int)
	for _, p := range properties {
		counts[p.Status]++
	}
	return &Overview{
		Properties:      properties,
		Users:           users,
		TotalProperties: len(properties),
		TotalUsers:      len(users),
		StatusCounts:    counts,
	}, nil
}

// PendingQueue returns the moderation queue: pending listings and hotels,
// normalized and merged listings-first like every other merge.
func (s *Service) PendingQueue(ctx context.Context, token string) ([]domain.UnifiedItem, error) {
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
		listings, listErr = s.Upstream.FetchListings(ctx, token, upstream.ScopePending)
	}()
	go func() {
		defer wg.Done()
		hotels, hotelErr = s.Upstream.FetchHotels(ctx, token, upstream.ScopePending)
	}()
	wg.Wait()
	if listErr != nil {
		return nil, fmt.Errorf("pending queue: %w", listErr)
	}
	if hotelErr != nil {
		return nil, fmt.Errorf("pending queue: %w", hotelErr)
	}
	return catalog.Normalize(listings, hotels), nil
}

// ApproveProperty publishes a pending property. The kind travels in the call,
// never inferred from presentation state.
func (s *Service) ApproveProperty(ctx context.Context, token, id string, kind domain.ListingKind) error {
	return s.Upstream.ApproveItem(ctx, token, kind == domain.KindHotel, id)
}

// RejectProperty declines a property back to draft with a rejection reason.
// The reason is only surfaced after the upstream confirms the decline.
func (s *Service) RejectProperty(ctx context.Context, token, id string, kind domain.ListingKind, reason string) error {
	return s.Upstream.DeclineItem(ctx, token, kind == domain.KindHotel, id, reason)
}

// DeleteProperty removes any property from either collection.
func (s *Service) DeleteProperty(ctx context.Context, token, id string, kind domain.ListingKind) error {
	return s.Upstream.DeleteItem(ctx, token, kind == domain.KindHotel, id)
}

// Users lists all upstream accounts.
func (s *Service) Users(ctx context.Context, token string) ([]domain.User, error) {
	return s.Upstream.FetchUsers(ctx, token)
}

// Stats proxies the upstream revenue/commission stats.
func (s *Service) Stats(ctx context.Context, token string) (*domain.PlatformStats, error) {
	return s.Upstream.FetchStats(ctx, token)
}

// Transactions proxies the upstream transaction log.
func (s *Service) Transactions(ctx context.Context, token string) ([]domain.Transaction, error) {
	return s.Upstream.FetchTransactions(ctx, token)
}

// Withdrawals proxies the pending withdrawal requests.
func (s *Service) Withdrawals(ctx context.Context, token string) ([]domain.Withdrawal, error) {
	return s.Upstream.FetchWithdrawals(ctx, token)
}

// CreditAgent adds funds to an agent account.
func (s *Service) CreditAgent(ctx context.Context, token, userID string, amount float64) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidCredit)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidCredit)
	}
	return s.Upstream.CreditUser(ctx, token, userID, amount)
}
