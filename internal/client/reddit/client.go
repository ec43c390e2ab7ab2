// internal/client/reddit/client.go

package reddit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrorKind classifies why a fetch settled as a failure.
type ErrorKind string

const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindTimeout      ErrorKind = "timeout"
	KindTransport    ErrorKind = "transport"
	KindStatus       ErrorKind = "status"
	KindCanceled     ErrorKind = "canceled"
)

// BackoffPolicy selects the delay shape between retry attempts. The
// policy is chosen per call site because upstream recovery behavior
// differs by resource class.
type BackoffPolicy int

const (
	BackoffLinear BackoffPolicy = iota
	BackoffExponential
)

// delay returns the wait before the next attempt, given how many
// attempts have failed so far (n >= 1), scaled by base.
func (p BackoffPolicy) delay(n int, base time.Duration) time.Duration {
	switch p {
	case BackoffExponential:
		return base * time.Duration(1<<(n-1))
	default:
		return base * time.Duration(n)
	}
}

// Request describes one logical GET against an upstream resource. Zero
// values fall back to the client defaults.
type Request struct {
	URL         string
	MaxAttempts int
	Timeout     time.Duration
	Backoff     BackoffPolicy
}

// Outcome is the settled result of one fetch: a payload on success, or a
// classified error after all attempts are exhausted. A fetch never
// produces a partially successful outcome.
type Outcome struct {
	Payload    []byte
	StatusCode int
	Kind       ErrorKind
	Err        error
}

// OK reports whether the fetch succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Config holds the client tunables. The rate-limit settings apply to the
// whole process: one Client is shared by all concurrent pipeline runs.
type Config struct {
	UserAgent      string
	MaxAttempts    int
	AttemptTimeout time.Duration
	BackoffBase    time.Duration

	// WindowRequests per WindowInterval, additionally capped at
	// SustainedRPS requests per second.
	WindowRequests int
	WindowInterval time.Duration
	SustainedRPS   float64
}

// Limiter gates request admission. Callers over the limit block until a
// slot frees; they never fail. Admission order is best-effort FIFO.
type Limiter struct {
	window    *rate.Limiter
	sustained *rate.Limiter
}

// NewLimiter creates a shared admission gate allowing windowRequests per
// window and at most sustainedRPS requests per second.
func NewLimiter(windowRequests int, window time.Duration, sustainedRPS float64) *Limiter {
	return &Limiter{
		window:    rate.NewLimiter(rate.Every(window/time.Duration(windowRequests)), windowRequests),
		sustained: rate.NewLimiter(rate.Limit(sustainedRPS), 1),
	}
}

// Wait blocks until both limits admit a request or the context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.window.Wait(ctx); err != nil {
		return err
	}
	return l.sustained.Wait(ctx)
}

// Client issues rate-limited, retrying GETs against upstream JSON
// resources. It performs no caching and logs no business data.
type Client struct {
	httpClient *http.Client
	limiter    *Limiter
	config     Config
	logger     *slog.Logger
}

// NewClient creates a client with a process-wide admission gate.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "threadscope/1.0"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 10 * time.Second
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.WindowRequests <= 0 {
		cfg.WindowRequests = 10
	}
	if cfg.WindowInterval <= 0 {
		cfg.WindowInterval = time.Minute
	}
	if cfg.SustainedRPS <= 0 {
		cfg.SustainedRPS = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{},
		limiter:    NewLimiter(cfg.WindowRequests, cfg.WindowInterval, cfg.SustainedRPS),
		config:     cfg,
		logger:     logger,
	}
}

// Fetch performs one logical GET with bounded retry. Malformed URLs are
// rejected before any network attempt; every other failure mode is
// retried until attempts run out and then reported as a failed Outcome.
func (c *Client) Fetch(ctx context.Context, req Request) Outcome {
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Outcome{
			Kind: KindInvalidInput,
			Err:  fmt.Errorf("invalid request URL %q", req.URL),
		}
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = c.config.MaxAttempts
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.config.AttemptTimeout
	}

	var last Outcome
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return Outcome{Kind: KindCanceled, Err: err}
		}

		last = c.attempt(ctx, req.URL, timeout)
		if last.OK() {
			return last
		}

		c.logger.Debug("fetch attempt failed",
			"url", req.URL, "attempt", attempt, "kind", last.Kind, "error", last.Err)

		if attempt == maxAttempts {
			break
		}

		select {
		case <-time.After(req.Backoff.delay(attempt, c.config.BackoffBase)):
		case <-ctx.Done():
			return Outcome{Kind: KindCanceled, Err: ctx.Err()}
		}
	}

	return last
}

// FetchAll issues every request concurrently and waits until all of them
// have settled. The returned map has exactly the same key set as reqs; a
// failing slot is recorded as a failed Outcome and never cancels its
// siblings.
func (c *Client) FetchAll(ctx context.Context, reqs map[string]Request) map[string]Outcome {
	results := make(map[string]Outcome, len(reqs))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, req := range reqs {
		wg.Add(1)
		go func(name string, req Request) {
			defer wg.Done()
			out := c.Fetch(ctx, req)

			mu.Lock()
			results[name] = out
			mu.Unlock()
		}(name, req)
	}

	wg.Wait()
	return results
}

// attempt runs a single GET with its own timeout.
func (c *Client) attempt(ctx context.Context, rawURL string, timeout time.Duration) Outcome {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Outcome{Kind: KindTransport, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			return Outcome{Kind: KindTimeout, Err: fmt.Errorf("attempt timed out after %s: %w", timeout, err)}
		}
		return Outcome{Kind: KindTransport, Err: fmt.Errorf("transport error: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Outcome{
			StatusCode: resp.StatusCode,
			Kind:       KindStatus,
			Err:        fmt.Errorf("upstream returned status %d", resp.StatusCode),
		}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Kind: KindTransport, Err: fmt.Errorf("reading response body: %w", err)}
	}

	return Outcome{Payload: payload, StatusCode: resp.StatusCode}
}
