package mdblist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/bardbit/stremio-mdblist-importer/config"
	"github.com/bardbit/stremio-mdblist-importer/internal/logging"
)

// Minimal MDBList client: list items for catalogs and the owned-lists lookup used by
// the configuration page.

const maxBodyBytes = 64 << 20

// retryDelay is the base backoff between attempts; tests shorten it.
var retryDelay = 500 * time.Millisecond

type Client struct {
	httpc        *http.Client
	itemsBaseURL string
	userListsURL string
	userAgent    string
	attempts     uint
	limiter      *rate.Limiter
}

// NewClient builds a client from settings. A nil httpc gets a client with the
// configured request timeout.
func NewClient(cfg config.MDBListSettings, httpc *http.Client) *Client {
	if httpc == nil {
		timeout := cfg.RequestTimeout()
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}

	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		httpc:        httpc,
		itemsBaseURL: strings.TrimRight(cfg.ItemsBaseURL, "/"),
		userListsURL: cfg.UserListsURL,
		userAgent:    cfg.UserAgent,
		attempts:     uint(attempts),
		limiter:      limiter,
	}
}

// response is an upstream reply with its body already drained.
type response struct {
	status      int
	contentType string
	body        []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status <= 299
}

// statusError marks a reply worth another attempt (5xx, 429).
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("mdblist request failed: %d %s", e.status, http.StatusText(e.status))
}

// get performs a GET with the configured attempt budget. Transport errors, 5xx and
// 429 are retried; when the budget runs out on a retryable status, the last reply is
// returned so the caller can classify it.
func (c *Client) get(ctx context.Context, rawURL string) (*response, error) {
	var last *response
	err := retry.Do(
		func() error {
			resp, err := c.getOnce(ctx, rawURL)
			if err != nil {
				return err
			}
			last = resp
			if resp.status >= 500 || resp.status == http.StatusTooManyRequests {
				return &statusError{status: resp.status}
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[mdblist] retrying %s (attempt %d/%d): %v", logging.RedactURL(rawURL), n+2, c.attempts, err)
		}),
	)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && last != nil {
			return last, nil
		}
		return nil, err
	}
	return last, nil
}

func (c *Client) getOnce(ctx context.Context, rawURL string) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", redactURLError(err)))
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mdblist http error: %w", redactURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read mdblist body: %w", err)
	}

	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// redactURLError strips api keys from the URL embedded in net/http errors.
func redactURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = logging.RedactURL(ue.URL)
	}
	return err
}

// isJSONContent reports whether a Content-Type header declares JSON. Additional
// acceptable media types may be passed in extra.
func isJSONContent(contentType string, extra ...string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		return true
	}
	for _, alt := range extra {
		if mediaType == alt {
			return true
		}
	}
	return false
}

// excerpt returns at most n bytes of body for diagnostics, cut on a rune boundary.
func excerpt(body []byte, n int) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n] + "..."
}
