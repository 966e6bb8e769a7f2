// Package placeholder talks to a jsonplaceholder-style todo API, the
// external source for bulk task imports.
package placeholder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/taskpit/taskpit/internal/cache"
	"github.com/taskpit/taskpit/internal/observability"
)

const todosCacheKey = "placeholder:todos"

type Todo struct {
	UserID    int    `json:"userId"`
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache // nil disables caching
	metrics    *observability.Prom
}

// New builds a client with explicit transport timeouts; the upstream is the
// only unbounded-latency dependency in the system.
func New(baseURL string, timeout time.Duration, c *cache.Cache, metrics *observability.Prom) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: timeout,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		cache:   c,
		metrics: metrics,
	}
}

func (c *Client) ListTodos(ctx context.Context) ([]Todo, error) {
	if c.cache != nil {
		if raw, ok := c.cache.Get(ctx, todosCacheKey); ok {
			var todos []Todo
			if err := json.Unmarshal(raw, &todos); err == nil {
				c.countFetch("cache_hit")
				return todos, nil
			}
			// stale/corrupt entry; drop it and fetch fresh
			c.cache.Delete(ctx, todosCacheKey)
		}
	}

	start := time.Now()
	raw, err := c.fetchTodos(ctx)
	c.observeFetch(time.Since(start))

	if err != nil {
		c.countFetch("error")
		return nil, err
	}

	c.countFetch("ok")

	var todos []Todo
	if err := json.Unmarshal(raw, &todos); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}

	if c.cache != nil {
		c.cache.Set(ctx, todosCacheKey, raw)
	}

	return todos, nil
}

func (c *Client) fetchTodos(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/todos", nil)
	if err != nil {
		return nil, fmt.Errorf("build todos request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch todos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch todos: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read todos body: %w", err)
	}

	return raw, nil
}

func (c *Client) countFetch(result string) {
	if c.metrics != nil {
		c.metrics.ImportFetches.WithLabelValues(result).Inc()
	}
}

func (c *Client) observeFetch(d time.Duration) {
	if c.metrics != nil {
		c.metrics.ImportDuration.Observe(d.Seconds())
	}
}
