package iracing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakeAPI is an httptest stand-in for oauth.iracing.com and
// data.iracing.com in one server
type fakeAPI struct {
	mu            sync.Mutex
	tokenRequests int
	tokenCounter  int
	lastAuth      string
	results       map[int64]RaceResult
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenRequests++
		f.tokenCounter++
		token := fmt.Sprintf("token-%d", f.tokenCounter)
		f.mu.Unlock()

		if r.FormValue("grant_type") != "refresh_token" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  token,
			"refresh_token": "refresh-next",
			"expires_in":    3600,
			"token_type":    "Bearer",
		})
	})

	mux.HandleFunc("/data/results/get", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastAuth = r.Header.Get("Authorization")
		f.mu.Unlock()

		var subsessionID int64
		fmt.Sscanf(r.URL.Query().Get("subsession_id"), "%d", &subsessionID)

		result, ok := f.results[subsessionID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(result)
	})

	return mux
}

func newTestClient(t *testing.T, api *fakeAPI, clock func() time.Time) (*Client, *httptest.Server) {
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	client := NewClient("client-id", "client-secret", "http://localhost/callback",
		WithBaseURLs(srv.URL, srv.URL),
		WithRefreshToken("refresh-1"),
		WithClock(clock),
	)
	return client, srv
}

func TestGetRaceResultsNotPublishedYet(t *testing.T) {
	api := &fakeAPI{results: map[int64]RaceResult{}}
	client, _ := newTestClient(t, api, time.Now)

	result, err := client.GetRaceResults(context.Background(), 12345)
	if err != nil {
		t.Fatalf("expected nil error for unpublished results, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result for unpublished results, got %+v", result)
	}
}

func TestGetRaceResultsParsesResultSheet(t *testing.T) {
	api := &fakeAPI{results: map[int64]RaceResult{
		12345: {
			SubsessionID: 12345,
			Name:         "Nürburgring 24h",
			Results: []DriverResult{
				{CustID: 501, DisplayName: "Driver Alpha", FinishPosition: 0, LapsCompleted: 30},
				{CustID: 502, DisplayName: "Driver Beta", FinishPosition: -1, LapsCompleted: 12},
			},
		},
	}}
	client, _ := newTestClient(t, api, time.Now)

	result, err := client.GetRaceResults(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetRaceResults failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result sheet")
	}
	if result.SubsessionID != 12345 {
		t.Errorf("subsession id %d, want 12345", result.SubsessionID)
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 result rows, got %d", len(result.Results))
	}
	if result.Results[1].FinishPosition != -1 {
		t.Errorf("expected DNF sentinel -1, got %d", result.Results[1].FinishPosition)
	}
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	api := &fakeAPI{results: map[int64]RaceResult{1: {SubsessionID: 1}}}
	client, _ := newTestClient(t, api, time.Now)

	for i := 0; i < 3; i++ {
		if _, err := client.GetRaceResults(context.Background(), 1); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}

	if api.tokenRequests != 1 {
		t.Errorf("expected 1 token request for 3 calls, got %d", api.tokenRequests)
	}
	if api.lastAuth != "Bearer token-1" {
		t.Errorf("expected cached token on requests, got %q", api.lastAuth)
	}
}

func TestTokenRefreshInsideExpiryMargin(t *testing.T) {
	api := &fakeAPI{results: map[int64]RaceResult{1: {SubsessionID: 1}}}

	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }
	client, _ := newTestClient(t, api, clock)

	if _, err := client.GetRaceResults(context.Background(), 1); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	// Still inside the token lifetime minus the safety margin: no refresh
	current = current.Add(54 * time.Minute)
	if _, err := client.GetRaceResults(context.Background(), 1); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if api.tokenRequests != 1 {
		t.Fatalf("expected no refresh at 54m for a 60m token with 5m margin, got %d requests", api.tokenRequests)
	}

	// Past the margin boundary: the token is treated as expired
	current = current.Add(2 * time.Minute)
	if _, err := client.GetRaceResults(context.Background(), 1); err != nil {
		t.Fatalf("third call failed: %v", err)
	}
	if api.tokenRequests != 2 {
		t.Fatalf("expected a refresh at 56m, got %d requests", api.tokenRequests)
	}
	if api.lastAuth != "Bearer token-2" {
		t.Errorf("expected refreshed token on requests, got %q", api.lastAuth)
	}
}

func TestGetRaceResultsWithoutCredentials(t *testing.T) {
	client := NewClient("client-id", "client-secret", "http://localhost/callback")

	_, err := client.GetRaceResults(context.Background(), 1)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated without a refresh token, got %v", err)
	}
}
