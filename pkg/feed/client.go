// Package feed is the client for the storefront's realtime database,
// reached over its REST surface. It offers one-shot snapshot fetches,
// streaming subscriptions, and the write primitives the presence
// telemetry needs. All catalog data is read-only from this side.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"

	"github.com/shashiranjanraj/kankarej/pkg/logger"
	"github.com/shashiranjanraj/kankarej/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to one realtime database instance.
type Client struct {
	baseURL string
	timeout time.Duration
	log     *slog.Logger

	// streaming connections manage their own lifetime via context,
	// so the SSE client must not carry an overall timeout.
	sse *http.Client
}

// NewClient returns a Client rooted at baseURL. timeout bounds every
// one-shot fetch; zero falls back to 10s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		log:     logger.For("feed"),
		sse:     &http.Client{},
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.Trim(path, "/") + ".json"
}

func lastSegment(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// FetchOnce reads a point-in-time snapshot of the subtree at path.
// The call is bounded by the client timeout and is never retried:
// a timeout surfaces as ErrFetchTimeout, a backend failure as
// *BackendError, and the caller decides what to show the user.
func (c *Client) FetchOnce(ctx context.Context, path string) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		code int
		body []byte
	)
	err := gout.GET(c.url(path)).
		WithContext(ctx).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		metrics.FeedFetchErrors.Inc()
		if ctx.Err() == context.DeadlineExceeded {
			c.log.Warn("fetch timed out", "path", path, "timeout", c.timeout)
			return Snapshot{}, ErrFetchTimeout
		}
		return Snapshot{}, fmt.Errorf("feed: fetch %q: %w", path, err)
	}
	if code < 200 || code >= 300 {
		metrics.FeedFetchErrors.Inc()
		return Snapshot{}, &BackendError{Path: path, Status: code, Body: strings.TrimSpace(string(body))}
	}

	var val any
	if err := json.Unmarshal(body, &val); err != nil {
		return Snapshot{}, fmt.Errorf("feed: decode %q: %w", path, err)
	}
	metrics.FeedFetches.Inc()
	return NewSnapshot(lastSegment(path), val), nil
}

// Push appends value under path with a server-generated key and returns
// that key. Used by the presence telemetry; failures are the caller's to
// ignore or log, there is nothing to retry.
func (c *Client) Push(ctx context.Context, path string, value any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		code int
		resp struct {
			Name string `json:"name"`
		}
	)
	err := gout.POST(c.url(path)).
		WithContext(ctx).
		SetJSON(value).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrFetchTimeout
		}
		return "", fmt.Errorf("feed: push %q: %w", path, err)
	}
	if code < 200 || code >= 300 {
		return "", &BackendError{Path: path, Status: code}
	}
	return resp.Name, nil
}

// Delete removes the subtree at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var code int
	err := gout.DELETE(c.url(path)).
		WithContext(ctx).
		Code(&code).
		Do()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrFetchTimeout
		}
		return fmt.Errorf("feed: delete %q: %w", path, err)
	}
	if code < 200 || code >= 300 {
		return &BackendError{Path: path, Status: code}
	}
	return nil
}
