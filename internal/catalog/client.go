// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/aurastream/corehub/internal/cache"
	"github.com/aurastream/corehub/internal/logging"
	"github.com/aurastream/corehub/internal/metrics"
)

const (
	DefaultPrimaryTimeout  = 2200 * time.Millisecond
	DefaultFallbackTimeout = 1800 * time.Millisecond
	DefaultLookupTimeout   = 1500 * time.Millisecond

	// lookupCacheTTL bounds how long a by-id/by-language lookup is served
	// from the response cache before the adapter re-fetches upstream.
	lookupCacheTTL      = 5 * time.Minute
	lookupCacheCapacity = 4000
)

// Config configures the Upstream Catalog Adapter.
type Config struct {
	PrimaryBaseURL  string
	FallbackBaseURL string

	PrimaryTimeout  time.Duration
	FallbackTimeout time.Duration
	LookupTimeout   time.Duration

	// RequestsPerSecond bounds outbound calls per provider; zero disables
	// limiting for that provider.
	PrimaryRPS  float64
	FallbackRPS float64
}

func (c *Config) setDefaults() {
	if c.PrimaryTimeout <= 0 {
		c.PrimaryTimeout = DefaultPrimaryTimeout
	}
	if c.FallbackTimeout <= 0 {
		c.FallbackTimeout = DefaultFallbackTimeout
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = DefaultLookupTimeout
	}
}

// Client is the Upstream Catalog Adapter: it issues timeout-bounded HTTP
// requests to a primary and a fallback catalog provider and normalizes
// both response shapes to Song.
type Client struct {
	cfg Config
	hc  *http.Client

	primaryBreaker  *gobreaker.CircuitBreaker[any]
	fallbackBreaker *gobreaker.CircuitBreaker[any]

	primaryLimiter  *rate.Limiter
	fallbackLimiter *rate.Limiter

	// lookupCache holds SongByID/AlbumByID/ArtistsByLanguage responses.
	// These are requested repeatedly for the same id/language by different
	// callers in a short window, unlike the free-text search paths, which
	// the Smart Search Engine already caches itself.
	lookupCache cache.Cacher
}

// New builds a Client with per-provider circuit breakers and limiters.
func New(cfg Config) *Client {
	cfg.setDefaults()

	c := &Client{
		cfg:         cfg,
		hc:          &http.Client{},
		lookupCache: cache.NewLFU(lookupCacheCapacity, lookupCacheTTL),
		primaryBreaker: newBreaker(BreakerConfig{
			Name:             "catalog-primary",
			MaxRequests:      3,
			Interval:         30 * time.Second,
			Timeout:          15 * time.Second,
			FailureThreshold: 5,
		}),
		fallbackBreaker: newBreaker(BreakerConfig{
			Name:             "catalog-fallback",
			MaxRequests:      3,
			Interval:         30 * time.Second,
			Timeout:          15 * time.Second,
			FailureThreshold: 5,
		}),
	}
	if cfg.PrimaryRPS > 0 {
		c.primaryLimiter = rate.NewLimiter(rate.Limit(cfg.PrimaryRPS), int(cfg.PrimaryRPS)+1)
	}
	if cfg.FallbackRPS > 0 {
		c.fallbackLimiter = rate.NewLimiter(rate.Limit(cfg.FallbackRPS), int(cfg.FallbackRPS)+1)
	}
	return c
}

// primaryGet performs a GET against the primary provider through its
// circuit breaker and rate limiter, decoding the JSON body into out.
func (c *Client) primaryGet(ctx context.Context, path string, q url.Values, out any) error {
	return c.get(ctx, "primary", c.cfg.PrimaryBaseURL, path, q, c.primaryBreaker, c.primaryLimiter, c.cfg.PrimaryTimeout, out)
}

func (c *Client) fallbackGet(ctx context.Context, path string, q url.Values, out any) error {
	return c.get(ctx, "fallback", c.cfg.FallbackBaseURL, path, q, c.fallbackBreaker, c.fallbackLimiter, c.cfg.FallbackTimeout, out)
}

func (c *Client) get(ctx context.Context, provider, base, path string, q url.Values, breaker *gobreaker.CircuitBreaker[any], limiter *rate.Limiter, timeout time.Duration, out any) error {
	start := time.Now()
	operation := strings.TrimPrefix(path, "/")
	var errKind string
	defer func() {
		metrics.RecordUpstreamCall(provider, operation, time.Since(start), errKind)
	}()

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			errKind = ErrTimeout.String()
			return &UpstreamError{Provider: provider, Kind: ErrTimeout, Cause: err}
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	full := base + path
	if len(q) > 0 {
		full += "?" + q.Encode()
	}

	body, err := breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, full, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		var raw json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return raw, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			errKind = ErrTimeout.String()
			return breakerOpenError(provider, err)
		}
		if reqCtx.Err() != nil {
			errKind = ErrTimeout.String()
			return &UpstreamError{Provider: provider, Kind: ErrTimeout, Cause: err}
		}
		errKind = ErrStatus.String()
		return &UpstreamError{Provider: provider, Kind: ErrStatus, Cause: err}
	}

	raw, _ := body.(json.RawMessage)
	if err := json.Unmarshal(raw, out); err != nil {
		errKind = ErrParse.String()
		return &UpstreamError{Provider: provider, Kind: ErrParse, Cause: err}
	}
	return nil
}

// PrimarySongs issues `primarySongs(query, page)`.
func (c *Client) PrimarySongs(ctx context.Context, query string, page int) (PagedSongs, error) {
	var resp struct {
		Data struct {
			Start   int              `json:"start"`
			Total   int              `json:"total"`
			Results []rawPrimarySong `json:"results"`
		} `json:"data"`
	}
	q := url.Values{"query": {query}, "page": {strconv.Itoa(page)}}
	if err := c.primaryGet(ctx, "/api/search/songs", q, &resp); err != nil {
		return PagedSongs{}, err
	}
	out := PagedSongs{Start: resp.Data.Start, Total: resp.Data.Total}
	for _, r := range resp.Data.Results {
		if s, ok := fromPrimary(r); ok {
			out.Results = append(out.Results, s)
		}
	}
	return out, nil
}

// FallbackSongs issues `fallbackSongs(query)`. The adapter never throws
// for fallback-absence: any error is absorbed into an empty list by the
// caller, this method still reports it so the caller can log it.
func (c *Client) FallbackSongs(ctx context.Context, query string) ([]Song, error) {
	var raw []rawFallbackSong
	q := url.Values{"query": {query}, "lyrics": {"false"}}
	if err := c.fallbackGet(ctx, "/search", q, &raw); err != nil {
		return nil, err
	}
	out := make([]Song, 0, len(raw))
	for _, r := range raw {
		if s, ok := fromFallback(r); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// BroadSearch issues `broadSearch(query, page)`, returning songs, albums
// and artists from the primary provider's combined search endpoint.
func (c *Client) BroadSearch(ctx context.Context, query string, page int) (BroadResult, error) {
	var resp struct {
		Data struct {
			Songs struct {
				Results []rawPrimarySong `json:"results"`
			} `json:"songs"`
			Albums struct {
				Results []struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"results"`
			} `json:"albums"`
			Artists struct {
				Results []struct {
					ID    string `json:"id"`
					Name  string `json:"name"`
				} `json:"results"`
			} `json:"artists"`
		} `json:"data"`
	}
	q := url.Values{"query": {query}, "page": {strconv.Itoa(page)}}
	if err := c.primaryGet(ctx, "/api/search", q, &resp); err != nil {
		return BroadResult{}, err
	}
	var out BroadResult
	for _, r := range resp.Data.Songs.Results {
		if s, ok := fromPrimary(r); ok {
			out.Songs = append(out.Songs, s)
		}
	}
	for _, a := range resp.Data.Albums.Results {
		out.Albums = append(out.Albums, Album{ID: a.ID, Name: a.Name})
	}
	for _, a := range resp.Data.Artists.Results {
		out.Artists = append(out.Artists, Artist{ID: a.ID, Name: a.Name})
	}
	return out, nil
}

// SongByID looks up a single song by id from the primary provider.
func (c *Client) SongByID(ctx context.Context, id string) (Song, error) {
	cacheKey := "song:" + id
	if v, ok := c.lookupCache.Get(cacheKey); ok {
		metrics.RecordCacheHit("catalog_lookup")
		return v.(Song), nil
	}
	metrics.RecordCacheMiss("catalog_lookup")

	var resp struct {
		Data []rawPrimarySong `json:"data"`
	}
	if err := c.primaryGet(ctx, "/api/songs/"+url.PathEscape(id), nil, &resp); err != nil {
		return Song{}, err
	}
	if len(resp.Data) == 0 {
		return Song{}, &UpstreamError{Provider: "primary", Kind: ErrParse, Cause: errors.New("empty song payload")}
	}
	s, ok := fromPrimary(resp.Data[0])
	if !ok {
		return Song{}, &UpstreamError{Provider: "primary", Kind: ErrParse, Cause: errors.New("malformed song record")}
	}
	c.lookupCache.Set(cacheKey, s)
	return s, nil
}

// AlbumByID looks up an album, including its tracklist, by id.
func (c *Client) AlbumByID(ctx context.Context, id string) (json.RawMessage, error) {
	cacheKey := "album:" + id
	if v, ok := c.lookupCache.Get(cacheKey); ok {
		metrics.RecordCacheHit("catalog_lookup")
		return v.(json.RawMessage), nil
	}
	metrics.RecordCacheMiss("catalog_lookup")

	var resp json.RawMessage
	if err := c.primaryGet(ctx, "/api/albums", url.Values{"id": {id}}, &resp); err != nil {
		return nil, err
	}
	c.lookupCache.Set(cacheKey, resp)
	return resp, nil
}

// AlbumsByQuery searches for albums by free-text query.
func (c *Client) AlbumsByQuery(ctx context.Context, query string) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.primaryGet(ctx, "/api/albums", url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ArtistsByQuery searches for artists by free-text query.
func (c *Client) ArtistsByQuery(ctx context.Context, query string) ([]Artist, error) {
	var resp struct {
		Data struct {
			Results []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"results"`
		} `json:"data"`
	}
	if err := c.primaryGet(ctx, "/api/search/artists", url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}
	out := make([]Artist, 0, len(resp.Data.Results))
	for _, a := range resp.Data.Results {
		out = append(out, Artist{ID: a.ID, Name: a.Name})
	}
	return out, nil
}

// ArtistsByLanguage issues two parallel queries ("Top <L> Artists" and
// "Popular <L> Artists") and merges the results by id.
func (c *Client) ArtistsByLanguage(ctx context.Context, language string) ([]Artist, error) {
	cacheKey := "artists-by-language:" + strings.ToLower(language)
	if v, ok := c.lookupCache.Get(cacheKey); ok {
		metrics.RecordCacheHit("catalog_lookup")
		return v.([]Artist), nil
	}
	metrics.RecordCacheMiss("catalog_lookup")

	var (
		wg         sync.WaitGroup
		topErr     error
		popularErr error
		top        []Artist
		popular    []Artist
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		top, topErr = c.ArtistsByQuery(ctx, "Top "+language+" Artists")
	}()
	go func() {
		defer wg.Done()
		popular, popularErr = c.ArtistsByQuery(ctx, "Popular "+language+" Artists")
	}()
	wg.Wait()

	if topErr != nil {
		logging.Warn().Err(topErr).Str("language", language).Msg("catalog: top-artists query failed")
	}
	if popularErr != nil {
		logging.Warn().Err(popularErr).Str("language", language).Msg("catalog: popular-artists query failed")
	}
	if topErr != nil && popularErr != nil {
		return nil, topErr
	}

	seen := make(map[string]struct{}, len(top)+len(popular))
	merged := make([]Artist, 0, len(top)+len(popular))
	for _, list := range [][]Artist{top, popular} {
		for _, a := range list {
			key := a.ID
			if key == "" {
				key = a.Name
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, a)
		}
	}
	c.lookupCache.Set(cacheKey, merged)
	return merged, nil
}

// ArtistAlbums looks up an artist's albums, paginated.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string, limit, page int) (json.RawMessage, error) {
	var resp json.RawMessage
	q := url.Values{"id": {artistID}, "page": {strconv.Itoa(page)}, "songCount": {strconv.Itoa(limit)}}
	if err := c.primaryGet(ctx, "/api/artists/"+url.PathEscape(artistID)+"/albums", q, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
