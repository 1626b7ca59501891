// Package backend fetches the knowledge graph from the lead-hunting API.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/gyaneshwarpardhi/huntgraph/internal/graph"
	"github.com/gyaneshwarpardhi/huntgraph/internal/metrics"
)

// ErrFetchFailed wraps every failure of FetchGraph: transport errors,
// non-2xx responses, undecodable payloads and an open breaker.
var ErrFetchFailed = errors.New("graph fetch failed")

const maxPayloadBytes = 32 << 20

// BreakerOptions mirrors gobreaker.Settings with a failure-ratio trip rule.
type BreakerOptions struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerOptions returns the breaker tuning used when none is configured.
func DefaultBreakerOptions() BreakerOptions {
	return BreakerOptions{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	GraphPath  string
	Timeout    time.Duration
	Breaker    BreakerOptions
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is a read-only client for the graph endpoint.
type Client struct {
	url     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger
	now     func() time.Time
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("backend: base url is required")
	}
	if opts.GraphPath == "" {
		opts.GraphPath = "/api/graph"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Breaker == (BreakerOptions{}) {
		opts.Breaker = DefaultBreakerOptions()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	log := opts.Logger.With("component", "backend")
	url := strings.TrimRight(opts.BaseURL, "/") + "/" + strings.TrimLeft(opts.GraphPath, "/")

	b := opts.Breaker
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "graph-backend",
		MaxRequests: b.MaxRequests,
		Interval:    b.Interval,
		Timeout:     b.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < b.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= b.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		url:     url,
		http:    opts.HTTPClient,
		breaker: cb,
		log:     log,
		now:     time.Now,
	}, nil
}

// URL returns the full graph endpoint.
func (c *Client) URL() string { return c.url }

// BreakerState reports the breaker state ("closed", "half-open", "open").
func (c *Client) BreakerState() string { return c.breaker.State().String() }

// FetchGraph downloads and decodes the current graph. Items the decoder drops
// are logged and counted but do not fail the fetch.
func (c *Client) FetchGraph(ctx context.Context) (*graph.Snapshot, error) {
	start := c.now()
	reqID := uuid.NewString()

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, reqID)
	})
	metrics.GraphFetchDuration.Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		status := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			status = "breaker_open"
		}
		metrics.GraphFetches.WithLabelValues(status).Inc()
		c.log.Warn("graph fetch failed", "request_id", reqID, "err", err)
		if errors.Is(err, ErrFetchFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	metrics.GraphFetches.WithLabelValues("ok").Inc()

	snap := out.(*graph.Snapshot)
	snap.FetchedAt = c.now()
	for _, r := range snap.Rejected {
		metrics.RejectedItems.WithLabelValues(r.Kind).Inc()
		c.log.Warn("payload item rejected",
			"request_id", reqID, "kind", r.Kind, "index", r.Index, "id", r.ID, "reason", r.Reason)
	}
	c.log.Debug("graph fetched",
		"request_id", reqID, "nodes", len(snap.Nodes), "links", len(snap.Edges),
		"duration_ms", time.Since(start).Milliseconds())
	return snap, nil
}

func (c *Client) fetch(ctx context.Context, reqID string) (*graph.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetchFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrFetchFailed, c.url, resp.StatusCode, snippet(body))
	}
	snap, err := graph.DecodeSnapshot(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return snap, nil
}

func snippet(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
