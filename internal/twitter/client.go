// Package twitter talks to the twitter241 RapidAPI scraper and turns a
// handle's recent tweets into an ETHMumbai activity analysis.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/metrics"
)

const (
	defaultBaseURL = "https://twitter241.p.rapidapi.com"

	// fetchTimeout bounds every single upstream request. The scraper is
	// slow and occasionally hangs, so a stuck page must not stall a check.
	fetchTimeout = 10 * time.Second

	// tweetsPerPage is the page size the scraper accepts on /user-tweets.
	tweetsPerPage = 40
)

// Config holds the credentials and endpoint for the twitter241 scraper.
type Config struct {
	BaseURL string
	APIKey  string
	Host    string
	Timeout time.Duration
}

// Profile is the subset of account data the scoring flow needs.
type Profile struct {
	ID          string
	Handle      string
	DisplayName string
	AvatarURL   string
	TotalTweets int
}

// TweetPage is one page of tweet texts plus the cursor to the next page.
// An empty Cursor means there are no further pages.
type TweetPage struct {
	Texts  []string
	Cursor string
}

// Client is a thin HTTP client for the twitter241 scraper. All requests
// share one circuit breaker so a misbehaving upstream trips fast instead
// of burning the shared rate budget on timeouts.
type Client struct {
	baseURL    string
	apiKey     string
	host       string
	httpClient *http.Client
	cb         circuitbreaker.CircuitBreaker[any]
}

// NewClient creates a scraper client with the following breaker settings:
// - WithFailureRateThreshold: 60% failure rate, min 5 requests, 30s rolling window
// - WithDelay: 30s before transitioning from open to half-open
// - WithSuccessThreshold: 1 successful request in half-open to close
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = fetchTimeout
	}

	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 30*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "twitter",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			metrics.CircuitBreakerState.Set(breakerStateValue(e.NewState))
		}).
		Build()

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		host:       cfg.Host,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         cb,
	}
}

func breakerStateValue(s circuitbreaker.State) float64 {
	switch s {
	case circuitbreaker.OpenState:
		return 2
	case circuitbreaker.HalfOpenState:
		return 1
	default:
		return 0
	}
}

// FetchProfile looks up an account by handle. It returns
// domain.ErrUserNotFound when the scraper has no such account and
// domain.ErrTweetUnavailable for transport or upstream failures.
func (c *Client) FetchProfile(ctx context.Context, handle string) (*Profile, error) {
	q := url.Values{"username": {handle}}
	body, err := c.get(ctx, "user", "/user?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var envelope userEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding user response: %w: %v", domain.ErrTweetUnavailable, err)
	}

	result := envelope.userResult()
	if result == nil || result.RestID == "" {
		return nil, fmt.Errorf("user %q: %w", handle, domain.ErrUserNotFound)
	}

	return result.profile(handle), nil
}

// FetchTweets retrieves one page of tweets for a user ID. Pass the cursor
// from the previous page to continue, or empty for the first page.
func (c *Client) FetchTweets(ctx context.Context, userID, cursor string) (*TweetPage, error) {
	q := url.Values{
		"user":  {userID},
		"count": {strconv.Itoa(tweetsPerPage)},
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	body, err := c.get(ctx, "user-tweets", "/user-tweets?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var envelope timelineEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding tweets response: %w: %v", domain.ErrTweetUnavailable, err)
	}

	return &TweetPage{
		Texts:  envelope.tweetTexts(),
		Cursor: envelope.bottomCursor(),
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("rapidapi key not configured: %w", domain.ErrTweetUnavailable)
	}
	if !c.cb.TryAcquirePermit() {
		metrics.TwitterRequestsTotal.WithLabelValues(endpoint, "breaker_open").Inc()
		return nil, fmt.Errorf("twitter circuit breaker open: %w", domain.ErrTweetUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		c.cb.RecordError(err)
		return nil, fmt.Errorf("building request: %w: %v", domain.ErrTweetUnavailable, err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.TwitterRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.cb.RecordError(err)
		metrics.TwitterRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("requesting %s: %w: %v", endpoint, domain.ErrTweetUnavailable, err)
	}
	defer resp.Body.Close()

	metrics.TwitterRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotFound {
		// A missing account is the caller's problem, not upstream health.
		c.cb.RecordSuccess()
		return nil, fmt.Errorf("upstream returned 404: %w", domain.ErrUserNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		c.cb.RecordError(fmt.Errorf("status %d", resp.StatusCode))
		return nil, fmt.Errorf("upstream returned %d: %w", resp.StatusCode, domain.ErrTweetUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.cb.RecordError(err)
		return nil, fmt.Errorf("reading response: %w: %v", domain.ErrTweetUnavailable, err)
	}

	c.cb.RecordSuccess()
	return body, nil
}
