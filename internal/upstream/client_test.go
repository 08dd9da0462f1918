package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchListings_ScopePathsAndAuth(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[{"_id":"l1","title":"Villa"}]`))
	}))
	defer srv.Close()
	c := &Client{BaseURL: srv.URL}

	listings, err := c.FetchListings(context.Background(), "tok", ScopeMine)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "l1", listings[0].ID)
	assert.Equal(t, "/api/listings/me", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)

	_, err = c.FetchListings(context.Background(), "tok", ScopePending)
	require.NoError(t, err)
	assert.Equal(t, "/api/listings", gotPath)
	assert.Equal(t, "status=pending", gotQuery)

	_, err = c.FetchListings(context.Background(), "", ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, "/api/listings", gotPath)
	assert.Empty(t, gotAuth)
}

func TestFetchHotels_DecodesHotelShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/hotels", r.URL.Path)
		w.Write([]byte(`[{"_id":"h1","name":"Grand","rooms":10}]`))
	}))
	defer srv.Close()
	c := &Client{BaseURL: srv.URL}

	hotels, err := c.FetchHotels(context.Background(), "tok", ScopeAll)
	require.NoError(t, err)
	require.Len(t, hotels, 1)
	assert.Equal(t, "Grand", hotels[0].Name)
	assert.Equal(t, 10, hotels[0].Rooms)
}

func TestStatusError_SurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"kaput"}`))
	}))
	defer srv.Close()
	c := &Client{BaseURL: srv.URL}

	_, err := c.FetchListings(context.Background(), "tok", ScopeAll)
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Contains(t, se.Body, "kaput")
	assert.False(t, IsNotFound(err))
}

func TestIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()
	c := &Client{BaseURL: srv.URL}

	_, err := c.GetListing(context.Background(), "tok", "ghost")
	assert.True(t, IsNotFound(err))
}

func TestDeclineItem_SendsDraftStatusAndReason(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody = nil
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	c := &Client{BaseURL: srv.URL}

	err := c.DeclineItem(context.Background(), "tok", true, "h1", "blurry photos")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/hotels/h1/approve", gotPath)
	assert.Equal(t, "draft", gotBody["status"])
	assert.Equal(t, "blurry photos", gotBody["rejectionReason"])

	err = c.DeclineItem(context.Background(), "tok", false, "l1", "")
	require.NoError(t, err)
	assert.Equal(t, "/api/listings/l1/approve", gotPath)
	_, hasReason := gotBody["rejectionReason"]
	assert.False(t, hasReason)
}

func TestUpdateAndDeleteItem_PickCollectionByKind(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	c := &Client{BaseURL: srv.URL}

	require.NoError(t, c.UpdateItem(context.Background(), "tok", false, "l1", map[string]interface{}{"title": "x"}))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/listings/l1", gotPath)

	require.NoError(t, c.DeleteItem(context.Background(), "tok", true, "h1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/hotels/h1", gotPath)
}

func TestCreateListing_ForwardsContentType(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()
	c := &Client{BaseURL: srv.URL}

	err := c.CreateListing(context.Background(), "tok", "multipart/form-data; boundary=xyz", nil)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data; boundary=xyz", gotContentType)
}

func TestConcurrentFetches_ShareOneClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	// A reconcile fetches both collections from two goroutines on the same
	// client with HTTP left nil; the lazy default must be race-free.
	c := &Client{BaseURL: srv.URL}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := c.FetchListings(context.Background(), "tok", ScopeMine)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := c.FetchHotels(context.Background(), "tok", ScopeMine)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.NotNil(t, c.HTTP)
	assert.Equal(t, defaultTimeout, c.HTTP.Timeout)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	c := &Client{BaseURL: srv.URL}
	require.NotNil(t, c.Ping(context.Background()))

	srv.Close()
	assert.Nil(t, c.Ping(context.Background()))
}
