package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/propdash/internal/document"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 2
	maxBodyBytes      = 8 << 20
	maxBackoff        = 10 * time.Second
)

// StatusError is a non-2xx API response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		return fmt.Sprintf("api status %d", e.StatusCode)
	}
	return fmt.Sprintf("api status %d: %s", e.StatusCode, truncate(msg, 200))
}

// RetryableError marks a transient failure: a 5xx or 429 response or a
// transport error.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * 250 * time.Millisecond
	if base > maxBackoff {
		base = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(base)/2 + 1))
	return base + jitter
}

// HTTPSource fetches documents from the property API.
type HTTPSource struct {
	endpoint     string
	apiKey       string
	apiKeyHeader string
	timeout      time.Duration
	maxRetries   int
	backoff      func(attempt int) time.Duration
	client       *http.Client
	log          logr.Logger
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithAPIKey sends key in header on every request. An empty key sends nothing.
func WithAPIKey(header, key string) HTTPOption {
	return func(s *HTTPSource) {
		s.apiKeyHeader = header
		s.apiKey = key
	}
}

// WithTimeout bounds each attempt, not the whole Fetch.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.timeout = d }
}

// WithMaxRetries sets how many times a transient failure is retried.
// Negative values are treated as zero.
func WithMaxRetries(n int) HTTPOption {
	return func(s *HTTPSource) { s.maxRetries = max(0, n) }
}

// WithBackoff replaces the wait before retry attempt n (zero based).
func WithBackoff(fn func(attempt int) time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.backoff = fn }
}

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithLogger sets the logger for retries and failures.
func WithLogger(log logr.Logger) HTTPOption {
	return func(s *HTTPSource) { s.log = log }
}

// NewHTTPSource builds a source for baseURL joined with path.
func NewHTTPSource(baseURL, path string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		endpoint:   strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		backoff:    Backoff,
		client:     &http.Client{},
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Endpoint is the URL queries are sent to, without parameters.
func (s *HTTPSource) Endpoint() string { return s.endpoint }

// Fetch performs the request, retrying transient failures.
func (s *HTTPSource) Fetch(ctx context.Context, q Query) (document.Value, error) {
	if err := q.Validate(); err != nil {
		return document.Value{}, err
	}
	target := s.endpoint + "?" + q.Values().Encode()

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			wait := s.backoff(attempt - 1)
			s.log.V(1).Info("retrying fetch", "attempt", attempt, "wait", wait.String(), "error", lastErr.Error())
			if err := sleep(ctx, wait); err != nil {
				return document.Value{}, err
			}
		}

		doc, err := s.fetchOnce(ctx, target)
		if err == nil {
			s.log.V(1).Info("fetched document", "query", q.String(), "attempts", attempt+1)
			return doc, nil
		}
		if ctx.Err() != nil {
			return document.Value{}, ctx.Err()
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}
	s.log.Error(lastErr, "fetch failed", "query", q.String())
	return document.Value{}, lastErr
}

func (s *HTTPSource) fetchOnce(ctx context.Context, target string) (document.Value, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return document.Value{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" && s.apiKeyHeader != "" {
		req.Header.Set(s.apiKeyHeader, s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return document.Value{}, &RetryableError{Err: fmt.Errorf("property api: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return document.Value{}, &RetryableError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return document.Value{}, &RetryableError{Err: statusErr}
		}
		return document.Value{}, statusErr
	}

	doc, err := document.Parse(body)
	if err != nil {
		return document.Value{}, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
