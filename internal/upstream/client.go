package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"cribz-gateway/internal/domain"
)

// Scope selects which slice of a collection to fetch.
type Scope string

const (
	ScopeMine    Scope = "mine"    // GET /api/<col>/me — the caller's own items
	ScopeAll     Scope = "all"     // GET /api/<col> — public/admin view
	ScopePending Scope = "pending" // GET /api/<col>?status=pending — admin queue
)

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s: status %d body: %s", e.Op, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Client talks to the CribzConnect REST API. The bearer token is passed per
// call because it belongs to the viewer, not the gateway; an empty token
// sends the request unauthenticated and lets the upstream decide.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	initOnce sync.Once
}

const defaultTimeout = 15 * time.Second

// httpClient defaults HTTP exactly once; both collection fetches of a
// reconcile hit the shared client concurrently.
func (c *Client) httpClient() *http.Client {
	c.initOnce.Do(func() {
		if c.HTTP == nil {
			c.HTTP = &http.Client{Timeout: defaultTimeout}
		}
	})
	return c.HTTP
}

func (c *Client) do(ctx context.Context, op, method, path, token, contentType string, body io.Reader) ([]byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream %s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

func (c *Client) getJSON(ctx context.Context, op, path, token string, out interface{}) error {
	b, err := c.do(ctx, op, http.MethodGet, path, token, "", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("upstream %s: decode: %w", op, err)
	}
	return nil
}

func collectionPath(collection string, scope Scope) string {
	switch scope {
	case ScopeMine:
		return "/api/" + collection + "/me"
	case ScopePending:
		return "/api/" + collection + "?status=pending"
	default:
		return "/api/" + collection
	}
}

// FetchListings returns the raw listings collection for the given scope.
func (c *Client) FetchListings(ctx context.Context, token string, scope Scope) ([]domain.RawListing, error) {
	var out []domain.RawListing
	if err := c.getJSON(ctx, "fetch listings", collectionPath("listings", scope), token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchHotels returns the raw hotels collection for the given scope.
func (c *Client) FetchHotels(ctx context.Context, token string, scope Scope) ([]domain.RawHotel, error) {
	var out []domain.RawHotel
	if err := c.getJSON(ctx, "fetch hotels", collectionPath("hotels", scope), token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetListing fetches a single listing detail.
func (c *Client) GetListing(ctx context.Context, token, id string) (*domain.RawListing, error) {
	var out domain.RawListing
	if err := c.getJSON(ctx, "get listing", "/api/listings/"+id, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHotel fetches a single hotel detail.
func (c *Client) GetHotel(ctx context.Context, token, id string) (*domain.RawHotel, error) {
	var out domain.RawHotel
	if err := c.getJSON(ctx, "get hotel", "/api/hotels/"+id, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateListing forwards a multipart create-listing form as-is. contentType
// must be the original multipart content type so the boundary survives.
func (c *Client) CreateListing(ctx context.Context, token, contentType string, form io.Reader) error {
	_, err := c.do(ctx, "create listing", http.MethodPost, "/api/listings", token, contentType, form)
	return err
}

// UpdateItem PUTs the edited fields for a listing or hotel.
func (c *Client) UpdateItem(ctx context.Context, token string, isHotel bool, id string, fields map[string]interface{}) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	op, path := "update listing", "/api/listings/"+id
	if isHotel {
		op, path = "update hotel", "/api/hotels/"+id
	}
	_, err = c.do(ctx, op, http.MethodPut, path, token, "application/json", bytes.NewReader(body))
	return err
}

// DeleteItem removes a listing or hotel.
func (c *Client) DeleteItem(ctx context.Context, token string, isHotel bool, id string) error {
	op, path := "delete listing", "/api/listings/"+id
	if isHotel {
		op, path = "delete hotel", "/api/hotels/"+id
	}
	_, err := c.do(ctx, op, http.MethodDelete, path, token, "", nil)
	return err
}

// ApproveItem promotes a pending listing or hotel to published.
func (c *Client) ApproveItem(ctx context.Context, token string, isHotel bool, id string) error {
	op, path := "approve listing", "/api/listings/"+id+"/approve"
	if isHotel {
		op, path = "approve hotel", "/api/hotels/"+id+"/approve"
	}
	_, err := c.do(ctx, op, http.MethodPatch, path, token, "", nil)
	return err
}

// DeclineItem moves a pending listing or hotel back to draft. The rejection
// reason rides in the same approve endpoint's body, matching the upstream API.
func (c *Client) DeclineItem(ctx context.Context, token string, isHotel bool, id, reason string) error {
	payload := map[string]interface{}{"status": "draft"}
	if reason != "" {
		payload["rejectionReason"] = reason
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	op, path := "decline listing", "/api/listings/"+id+"/approve"
	if isHotel {
		op, path = "decline hotel", "/api/hotels/"+id+"/approve"
	}
	_, err = c.do(ctx, op, http.MethodPatch, path, token, "application/json", bytes.NewReader(body))
	return err
}

// FetchUsers returns all upstream accounts (admin only).
func (c *Client) FetchUsers(ctx context.Context, token string) ([]domain.User, error) {
	var out []domain.User
	if err := c.getJSON(ctx, "fetch users", "/api/users", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchStats returns the upstream platform stats (admin only).
func (c *Client) FetchStats(ctx context.Context, token string) (*domain.PlatformStats, error) {
	var out domain.PlatformStats
	if err := c.getJSON(ctx, "fetch stats", "/api/admin/stats", token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchTransactions returns the upstream transaction log (admin only).
func (c *Client) FetchTransactions(ctx context.Context, token string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	if err := c.getJSON(ctx, "fetch transactions", "/api/admin/transactions", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchWithdrawals returns pending withdrawal requests (admin only).
func (c *Client) FetchWithdrawals(ctx context.Context, token string) ([]domain.Withdrawal, error) {
	var out []domain.Withdrawal
	if err := c.getJSON(ctx, "fetch withdrawals", "/api/admin/withdrawals", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreditUser adds funds to an agent's account (admin only).
func (c *Client) CreditUser(ctx context.Context, token, userID string, amount float64) error {
	body, err := json.Marshal(map[string]interface{}{"userId": userID, "amount": amount})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, "credit user", http.MethodPost, "/api/users/credit", token, "application/json", bytes.NewReader(body))
	return err
}

// Ping reports upstream API reachability for health checks.
func (c *Client) Ping(ctx context.Context) *int64 {
	start := time.Now()
	if _, err := c.do(ctx, "ping", http.MethodGet, "/api/listings", "", "", nil); err != nil {
		return nil
	}
	ms := time.Since(start).Milliseconds()
	return &ms
}
