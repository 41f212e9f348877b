// Package catalog reads album metadata from the catalog service.
package catalog

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/maxcasase/BDPW-Back-End/internal/domain"
	"github.com/maxcasase/BDPW-Back-End/internal/identity"
	"github.com/maxcasase/BDPW-Back-End/pkg/httpclient"
)

// Config configures the catalog client.
type Config struct {
	// BaseURL of the catalog service. Empty disables lookups.
	BaseURL string
	Timeout time.Duration
	// Form of album ids returned by the catalog.
	Form identity.Form
}

type albumsResponse struct {
	Data []struct {
		ID       any    `json:"id"`
		Title    string `json:"title"`
		Artist   string `json:"artist"`
		CoverURL string `json:"cover_url"`
		Year     int    `json:"year"`
	} `json:"data"`
}

// Client fetches albums through a circuit breaker. A nil or disabled Client
// returns no metadata.
type Client struct {
	baseURL string
	form    identity.Form
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// New creates a catalog client, or returns nil when cfg.BaseURL is empty.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		return nil
	}
	httpCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		form:    cfg.Form,
		http:    httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), httpclient.DefaultCircuitBreakerConfig("catalog"), logger),
		logger:  logger,
	}
}

// Albums looks up every distinct key in one request. Failures, including an
// open breaker, are logged and yield an empty map so callers can render the
// page without metadata.
func (c *Client) Albums(ctx context.Context, keys []identity.Key) map[identity.Key]domain.Album {
	albums := make(map[identity.Key]domain.Album)
	keys = identity.Distinct(keys)
	if c == nil || len(keys) == 0 {
		return albums
	}

	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = k.String()
	}
	endpoint := c.baseURL + "/api/v1/albums?" + url.Values{"ids": {strings.Join(ids, ",")}}.Encode()

	var resp albumsResponse
	if err := c.http.GetJSON(ctx, endpoint, &resp); err != nil {
		c.logger.WarnContext(ctx, "album metadata unavailable",
			slog.Int("albums", len(keys)),
			slog.String("breaker", c.http.State().String()),
			slog.String("error", err.Error()),
		)
		return albums
	}

	for _, a := range resp.Data {
		key, err := identity.Normalize(a.ID, c.form)
		if err != nil {
			c.logger.WarnContext(ctx, "catalog returned malformed album id", slog.Any("id", a.ID))
			continue
		}
		albums[key] = domain.Album{
			ID:       key,
			Title:    a.Title,
			Artist:   a.Artist,
			CoverURL: a.CoverURL,
			Year:     a.Year,
		}
	}
	return albums
}
