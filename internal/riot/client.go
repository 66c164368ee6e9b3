package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultContinent = "americas"
	// Platform host used for the lightweight key-validation probe; the
	// account/match endpoints live on the continent host instead.
	defaultStatusBaseURL = "https://na1.api.riotgames.com"
	statusEndpoint       = "/lol/status/v4/platform-data"

	// Riot's match-v5 ids endpoint accepts counts in 1..100.
	minMatchCount = 1
	maxMatchCount = 100

	defaultRequestInterval = time.Second
	defaultMaxAttempts     = 3
	defaultBackoffBase     = 500 * time.Millisecond
	defaultHTTPTimeout     = 30 * time.Second
)

// errStatusNotFound signals a 404 inside doRequest; the public methods wrap
// it with the resource and key so callers get a useful NotFoundError.
var errStatusNotFound = errors.New("resource not found")

// Client talks to the Riot API on behalf of a single analysis run.
//
// Every outbound request blocks the caller until the minimum inter-request
// interval has elapsed since the previous one, and all successful responses
// are memoized for the client's lifetime (historical match data is treated
// as immutable). The caches are guarded for the single-caller pipeline this
// client is designed for; do not share one Client across concurrent analysis
// requests without external synchronization.
type Client struct {
	apiKey        string
	baseURL       string
	statusBaseURL string
	httpClient    *http.Client
	log           *zap.Logger

	// Rate limiting and retry policy
	interval    time.Duration
	maxAttempts int
	backoffBase time.Duration

	mu   sync.Mutex
	last time.Time

	// Memoization, keyed by request parameters. Riot IDs are cached exactly
	// as passed in; case rules are the remote service's concern.
	accounts map[string]*Identity
	idLists  map[string][]string
	matches  map[string]*Match
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a custom host (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
		c.statusBaseURL = u
	}
}

// WithContinent selects the routing continent (americas, europe, asia).
func WithContinent(continent string) Option {
	return func(c *Client) {
		c.baseURL = fmt.Sprintf("https://%s.api.riotgames.com", continent)
	}
}

// WithRequestInterval overrides the minimum spacing between outbound requests.
func WithRequestInterval(d time.Duration) Option {
	return func(c *Client) { c.interval = d }
}

// WithRetryPolicy bounds the retry loop: maxAttempts total tries per request
// and an exponential backoff curve starting at base.
func WithRetryPolicy(maxAttempts int, base time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
		c.backoffBase = base
	}
}

// WithHTTPTimeout overrides the per-request HTTP timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger attaches a structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a rate-limited, memoizing Riot API client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("riot: API key cannot be empty")
	}

	c := &Client{
		apiKey:        apiKey,
		baseURL:       fmt.Sprintf("https://%s.api.riotgames.com", defaultContinent),
		statusBaseURL: defaultStatusBaseURL,
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
		log:           zap.NewNop(),
		interval:      defaultRequestInterval,
		maxAttempts:   defaultMaxAttempts,
		backoffBase:   defaultBackoffBase,
		accounts:      make(map[string]*Identity),
		idLists:       make(map[string][]string),
		matches:       make(map[string]*Match),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ResolveIdentity looks up a player's PUUID by Riot ID. The (name, tag) pair
// is memoized as passed in.
func (c *Client) ResolveIdentity(ctx context.Context, name, tag string) (*Identity, error) {
	key := name + "#" + tag
	if id, ok := c.accounts[key]; ok {
		return id, nil
	}

	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.baseURL, url.PathEscape(name), url.PathEscape(tag))

	var id Identity
	if err := c.doRequest(ctx, u, &id); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, &NotFoundError{Resource: "account", Key: key}
		}
		return nil, err
	}

	c.accounts[key] = &id
	return &id, nil
}

// ListRecentMatchIDs returns up to count match ids for the player, most
// recent first. count is clamped to Riot's supported 1..100 range; the
// memoization key includes the clamped count.
func (c *Client) ListRecentMatchIDs(ctx context.Context, puuid string, count int) ([]string, error) {
	if count < minMatchCount {
		c.log.Warn("match count below supported range, clamping",
			zap.Int("requested", count), zap.Int("clamped", minMatchCount))
		count = minMatchCount
	}
	if count > maxMatchCount {
		c.log.Warn("match count above supported range, clamping",
			zap.Int("requested", count), zap.Int("clamped", maxMatchCount))
		count = maxMatchCount
	}

	key := fmt.Sprintf("%s:%d", puuid, count)
	if ids, ok := c.idLists[key]; ok {
		return ids, nil
	}

	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?start=0&count=%d",
		c.baseURL, url.PathEscape(puuid), count)

	var ids []string
	if err := c.doRequest(ctx, u, &ids); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, &NotFoundError{Resource: "account", Key: puuid}
		}
		return nil, err
	}

	c.idLists[key] = ids
	return ids, nil
}

// FetchMatch returns the full match document for one match id. A stale or
// unknown id yields NotFoundError, which callers tolerate per match.
func (c *Client) FetchMatch(ctx context.Context, matchID string) (*Match, error) {
	if m, ok := c.matches[matchID]; ok {
		return m, nil
	}

	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.baseURL, url.PathEscape(matchID))

	var m Match
	if err := c.doRequest(ctx, u, &m); err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, &NotFoundError{Resource: "match", Key: matchID}
		}
		return nil, err
	}

	c.matches[matchID] = &m
	return &m, nil
}

// ValidateKey probes a lightweight status endpoint to check the API key.
// Returns (false, nil) for a rejected key (401/403) and (false, err) when
// validity could not be determined.
func (c *Client) ValidateKey(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusBaseURL+statusEndpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build validation request: %w", err)
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("validation request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d from validation endpoint", resp.StatusCode)
	}
}

// waitTurn blocks the caller until the minimum inter-request interval has
// elapsed since the previous outbound request. This is the pipeline's sole
// backpressure mechanism.
func (c *Client) waitTurn() {
	c.mu.Lock()
	wait := c.interval - time.Since(c.last)
	if wait > 0 {
		c.mu.Unlock()
		time.Sleep(wait)
		c.mu.Lock()
	}
	c.last = time.Now()
	c.mu.Unlock()
}

// doRequest performs one rate-limited GET with bounded retries. 429 and 5xx
// responses are retried with exponential backoff (429 honors Retry-After);
// once the budget is exhausted they surface as RateLimitError and
// TransientError respectively.
func (c *Client) doRequest(ctx context.Context, u string, result any) error {
	var lastRetryAfter time.Duration
	var lastStatus int
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoffBase << (attempt - 2)
			if lastRetryAfter > backoff {
				backoff = lastRetryAfter
			}
			c.log.Warn("retrying request",
				zap.Int("attempt", attempt),
				zap.Int("status", lastStatus),
				zap.Duration("backoff", backoff))
			time.Sleep(backoff)
		}

		c.waitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("X-Riot-Token", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastStatus, lastErr = 0, err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(result)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return errStatusNotFound

		case resp.StatusCode == http.StatusTooManyRequests:
			lastRetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			lastStatus = resp.StatusCode
			resp.Body.Close()

		case resp.StatusCode >= 500:
			lastStatus, lastErr = resp.StatusCode, nil
			resp.Body.Close()

		default:
			// 401/403 and other 4xx are not retryable.
			status := resp.StatusCode
			resp.Body.Close()
			return fmt.Errorf("riot API returned status %d for %s", status, u)
		}
	}

	if lastStatus == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: lastRetryAfter}
	}
	return &TransientError{StatusCode: lastStatus, Err: lastErr}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
