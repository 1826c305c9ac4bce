// Package watchlist is the client for the starred asset set.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dense-analysis/nexus/internal/cache"
	"github.com/dense-analysis/nexus/internal/metrics"
	"github.com/dense-analysis/nexus/internal/model"
	"github.com/dense-analysis/nexus/internal/remote"
)

var logger = log.New(log.Writer(), "[watchlist] ", log.LstdFlags)

// DefaultWindow is how long a fetched watchlist stays fresh.
const DefaultWindow = time.Minute

const cacheKey = "watchlist"

// ErrInvalidID is returned for ids that cannot name a watchlist item.
var ErrInvalidID = errors.New("invalid watchlist id")

// ValidateID checks an id is non-empty and fits in one path segment of
// /api/watchlist/{id}.
//
// The router matches on the decoded path, so DELETE of an id with a slash
// would miss the item route and come back as a 404 that looks like success.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: an id is required", ErrInvalidID)
	}

	if strings.Contains(id, "/") {
		return fmt.Errorf("%w: %q contains a slash", ErrInvalidID, id)
	}

	return nil
}

// Remote is the store the watchlist lives in.
type Remote interface {
	List(ctx context.Context) ([]model.WatchlistItem, error)
	Add(ctx context.Context, item model.WatchlistItem) error
	Remove(ctx context.Context, id string) error
}

// Client caches the watchlist from a Remote and invalidates the cache after
// every successful change.
type Client struct {
	remote Remote
	cache  *cache.Cache[[]model.WatchlistItem]
}

func NewClient(remote Remote, window time.Duration) *Client {
	return &Client{
		remote: remote,
		cache:  cache.New[[]model.WatchlistItem]("watchlist", window),
	}
}

// SetClock replaces the time source, for tests.
func (c *Client) SetClock(now func() time.Time) {
	c.cache.SetClock(now)
}

// List returns the watchlist in the order the store returned it.
//
// A response of the wrong shape is treated as an empty watchlist.
func (c *Client) List(ctx context.Context) ([]model.WatchlistItem, error) {
	if items, ok := c.cache.Get(cacheKey); ok {
		return items, nil
	}

	seq := c.cache.Begin(cacheKey)
	items, err := c.remote.List(ctx)

	if errors.Is(err, remote.ErrMalformedResponse) {
		logger.Printf("treating malformed watchlist as empty: %s", err)
		metrics.MalformedResponses.WithLabelValues("watchlist").Inc()
		items, err = []model.WatchlistItem{}, nil
	}

	if err != nil {
		metrics.FetchErrors.WithLabelValues("watchlist").Inc()

		return nil, err
	}

	if items == nil {
		items = []model.WatchlistItem{}
	}

	if !c.cache.Commit(cacheKey, seq, items) {
		if newer, ok := c.cache.Newer(cacheKey, seq); ok {
			return newer, nil
		}
	}

	return items, nil
}

// Add stars an asset.
func (c *Client) Add(ctx context.Context, item model.WatchlistItem) error {
	if err := ValidateID(item.ID); err != nil {
		return err
	}

	if err := c.remote.Add(ctx, item); err != nil {
		metrics.WatchlistMutations.WithLabelValues("add", "error").Inc()

		return err
	}

	metrics.WatchlistMutations.WithLabelValues("add", "ok").Inc()
	c.cache.Invalidate(cacheKey)

	return nil
}

// Remove unstars an asset. Removing an id that is not there succeeds.
func (c *Client) Remove(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	if err := c.remote.Remove(ctx, id); err != nil && !remote.IsNotFound(err) {
		metrics.WatchlistMutations.WithLabelValues("remove", "error").Inc()

		return err
	}

	metrics.WatchlistMutations.WithLabelValues("remove", "ok").Inc()
	c.cache.Invalidate(cacheKey)

	return nil
}

// HTTPRemote talks to the /api/watchlist endpoints.
type HTTPRemote struct {
	client *remote.Client
}

func NewHTTPRemote(client *remote.Client) *HTTPRemote {
	return &HTTPRemote{client: client}
}

// AddRequest is the body of POST /api/watchlist.
type AddRequest struct {
	Item model.WatchlistItem `json:"item"`
}

func (r *HTTPRemote) List(ctx context.Context) ([]model.WatchlistItem, error) {
	return remote.GetList[model.WatchlistItem](ctx, r.client, "/api/watchlist")
}

func (r *HTTPRemote) Add(ctx context.Context, item model.WatchlistItem) error {
	_, err := r.client.Do(ctx, http.MethodPost, "/api/watchlist", AddRequest{Item: item})

	return err
}

func (r *HTTPRemote) Remove(ctx context.Context, id string) error {
	_, err := r.client.Do(ctx, http.MethodDelete, "/api/watchlist/"+url.PathEscape(id), nil)

	return err
}
