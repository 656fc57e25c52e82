package iracing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultAuthBaseURL = "https://oauth.iracing.com"
	defaultDataBaseURL = "https://data.iracing.com"

	// Tokens are treated as expired this long before their real expiry
	tokenExpiryMargin = 5 * time.Minute
)

// ErrNotAuthenticated is returned when no access token has been obtained yet
var ErrNotAuthenticated = errors.New("iracing: no access token available")

// Client is the live iRacing data API client. It performs the OAuth2
// code-exchange and refresh-token flows against oauth.iracing.com and
// keeps the current token pair cached in memory.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	authBaseURL  string
	dataBaseURL  string
	httpClient   *http.Client
	now          func() time.Time

	tokenMux     sync.Mutex
	accessToken  string
	refreshToken string
	tokenExpiry  time.Time
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURLs overrides the OAuth and data API base URLs
func WithBaseURLs(authBase, dataBase string) Option {
	return func(c *Client) {
		c.authBaseURL = strings.TrimRight(authBase, "/")
		c.dataBaseURL = strings.TrimRight(dataBase, "/")
	}
}

// WithClock injects the time source used for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithRefreshToken seeds the token cache with a long-lived refresh token
// so server-side jobs can authenticate without an interactive code exchange
func WithRefreshToken(token string) Option {
	return func(c *Client) { c.refreshToken = token }
}

// NewClient creates a live iRacing API client
func NewClient(clientID, clientSecret, redirectURI string, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authBaseURL:  defaultAuthBaseURL,
		dataBaseURL:  defaultDataBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// tokenResponse is the OAuth token endpoint payload
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// AuthorizationURL returns the URL a user visits to begin the OAuth flow
func (c *Client) AuthorizationURL() string {
	return fmt.Sprintf(
		"%s/oauth2/authorize?client_id=%s&response_type=code&redirect_uri=%s&scope=iracing.auth",
		c.authBaseURL, url.QueryEscape(c.clientID), url.QueryEscape(c.redirectURI),
	)
}

// ExchangeCode exchanges an authorization code for a token pair
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.redirectURI},
	}

	tokens, err := c.requestToken(ctx, form)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	c.tokenMux.Lock()
	c.setTokens(tokens)
	c.tokenMux.Unlock()

	return nil
}

// refreshAccessToken swaps the refresh token for a fresh token pair.
// Caller must hold tokenMux.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	if c.refreshToken == "" {
		return ErrNotAuthenticated
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.refreshToken},
	}

	tokens, err := c.requestToken(ctx, form)
	if err != nil {
		return fmt.Errorf("failed to refresh access token: %w", err)
	}

	c.setTokens(tokens)
	return nil
}

// setTokens stores a token pair with the expiry safety margin applied.
// Caller must hold tokenMux.
func (c *Client) setTokens(tokens *tokenResponse) {
	c.accessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		c.refreshToken = tokens.RefreshToken
	}
	c.tokenExpiry = c.now().Add(time.Duration(tokens.ExpiresIn)*time.Second - tokenExpiryMargin)
}

// requestToken performs a client-credentialed call to the token endpoint
func (c *Client) requestToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authBaseURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tokens tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokens, nil
}

// ensureValidToken returns a usable access token, refreshing it when the
// cached one is missing or inside the expiry margin
func (c *Client) ensureValidToken(ctx context.Context) (string, error) {
	c.tokenMux.Lock()
	defer c.tokenMux.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	if err := c.refreshAccessToken(ctx); err != nil {
		return "", err
	}

	return c.accessToken, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into out
func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	token, err := c.ensureValidToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

var errNotFound = errors.New("iracing: not found")

// GetProfile fetches the authenticated member's profile
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.getJSON(ctx, c.authBaseURL+"/oauth2/iracing/profile", &profile); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &profile, nil
}

// GetUserRaces fetches a member's recent race history
func (c *Client) GetUserRaces(ctx context.Context, custID int64) ([]MemberRace, error) {
	var payload struct {
		Races []MemberRace `json:"races"`
	}

	rawURL := fmt.Sprintf("%s/data/member/recent_races?cust_id=%d", c.dataBaseURL, custID)
	if err := c.getJSON(ctx, rawURL, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch recent races: %w", err)
	}

	return payload.Races, nil
}

// GetRaceResults fetches the result sheet for a subsession. A nil result
// with nil error means the results are not published yet; callers keep
// polling on their next run.
func (c *Client) GetRaceResults(ctx context.Context, subsessionID int64) (*RaceResult, error) {
	var result RaceResult

	rawURL := fmt.Sprintf("%s/data/results/get?subsession_id=%d", c.dataBaseURL, subsessionID)
	err := c.getJSON(ctx, rawURL, &result)
	if errors.Is(err, errNotFound) {
		log.Printf("[IRacing] No results published yet for subsession %d", subsessionID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results for subsession %d: %w", subsessionID, err)
	}

	return &result, nil
}

// GetActiveSeries fetches the list of currently active series
func (c *Client) GetActiveSeries(ctx context.Context) ([]Series, error) {
	var series []Series
	if err := c.getJSON(ctx, c.dataBaseURL+"/data/series/active", &series); err != nil {
		return nil, fmt.Errorf("failed to fetch active series: %w", err)
	}
	return series, nil
}
