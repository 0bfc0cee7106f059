package azdo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// apiVersion is the Azure DevOps REST API version every request pins.
const apiVersion = "7.1"

const (
	defaultBaseURL = "https://dev.azure.com"
	requestTimeout = 30 * time.Second
	maxGetRetries  = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Client is an authenticated Azure DevOps REST client scoped to one
// organization. The Basic auth header is computed once at construction and
// reused for every call.
type Client struct {
	org     string
	baseURL string
	auth    string
	http    *http.Client
	group   singleflight.Group
}

type options struct {
	baseURL string
	verbose bool
	// writer controls where verbose HTTP logs go (typically stderr) so
	// structured output on stdout stays clean and tests can capture logs.
	writer io.Writer
}

type Option func(*options)

func WithVerbose(enabled bool, writer io.Writer) Option {
	return func(o *options) {
		o.verbose = enabled
		o.writer = writer
	}
}

// WithBaseURL overrides the service base URL. Used by tests and
// on-premises Azure DevOps Server installs.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// loggingRoundTripper wraps an underlying transport and emits one line per
// request and response (including latency) when verbose logging is enabled.
// It never logs the Authorization header.
type loggingRoundTripper struct {
	base http.RoundTripper
	w    io.Writer
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	if t.w != nil {
		_, _ = fmt.Fprintf(t.w, "[verbose] azdo api: %s %s\n", req.Method, req.URL.String())
	}
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start)
	if t.w != nil {
		if err != nil {
			_, _ = fmt.Fprintf(t.w, "[verbose] azdo api: error after %s: %v\n", dur.Truncate(time.Millisecond), err)
		} else {
			_, _ = fmt.Fprintf(t.w, "[verbose] azdo api: %d %s (%s)\n", resp.StatusCode, http.StatusText(resp.StatusCode), dur.Truncate(time.Millisecond))
		}
	}
	return resp, err
}

func NewClient(org, pat string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(org) == "" {
		return nil, errors.New("azdo client: organization is required")
	}
	if strings.TrimSpace(pat) == "" {
		return nil, errors.New("azdo client: personal access token is required")
	}

	o := &options{baseURL: defaultBaseURL}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.verbose && o.writer == nil {
		o.writer = os.Stderr
	}

	transport := http.DefaultTransport
	if o.verbose {
		transport = &loggingRoundTripper{base: transport, w: o.writer}
	}

	return &Client{
		org:     org,
		baseURL: strings.TrimRight(o.baseURL, "/"),
		auth:    "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+pat)),
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
	}, nil
}

// Organization returns the organization this client is scoped to.
func (c *Client) Organization() string {
	return c.org
}

// RequestError is returned for non-2xx responses. It carries the HTTP
// status and response body so callers can decide whether to abort or
// record-and-continue.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	if body == "" {
		return fmt.Sprintf("azdo api: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("azdo api: request failed with status %d: %s", e.Status, body)
}

// IsPermissionDenied reports whether err is an HTTP 401/403 response.
// Per-target permission failures are expected on large organizations and
// are logged at reduced severity.
func IsPermissionDenied(err error) bool {
	var re *RequestError
	if !errors.As(err, &re) {
		return false
	}
	return re.Status == http.StatusUnauthorized || re.Status == http.StatusForbidden
}

// getJSON issues a GET against path (relative to the organization) and
// decodes the JSON response into out. Transient failures (429, 5xx,
// transport errors) are retried with bounded exponential backoff; GET is
// idempotent so this is safe.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	body, err := c.doGET(ctx, c.requestURL(path, params))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("azdo api: decode %s: %w", path, err)
	}
	return nil
}

// getJSONShared is getJSON with identical in-flight requests coalesced:
// concurrent callers asking for the same URL share one round trip. Used for
// list endpoints that several workers may request at once.
func (c *Client) getJSONShared(ctx context.Context, path string, params url.Values, out any) error {
	u := c.requestURL(path, params)
	v, err, _ := c.group.Do(u, func() (any, error) {
		return c.doGET(ctx, u)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(v.([]byte), out); err != nil {
		return fmt.Errorf("azdo api: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) requestURL(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api-version", apiVersion)
	return c.baseURL + "/" + url.PathEscape(c.org) + "/" + strings.TrimLeft(path, "/") + "?" + params.Encode()
}

func (c *Client) doGET(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxGetRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", c.auth)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				return nil, readErr
			}
			if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
				return body, nil
			}
			if !shouldRetry(resp.StatusCode) {
				return nil, &RequestError{Status: resp.StatusCode, Body: string(body)}
			}
			lastErr = &RequestError{Status: resp.StatusCode, Body: string(body)}
			if wait := retryAfter(resp.Header.Get("Retry-After")); wait > 0 {
				backoff = wait
			}
		}

		if attempt == maxGetRetries {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return nil, lastErr
}

func shouldRetry(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func retryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
