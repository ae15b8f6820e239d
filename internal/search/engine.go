// Package search orchestrates a nearby request: cache lookup, provider
// fetch on miss, write-through, and the response envelope.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cafescout/cafescout/internal/cache"
	"github.com/cafescout/cafescout/internal/cache/keys"
	"github.com/cafescout/cafescout/internal/logger"
	"github.com/cafescout/cafescout/internal/model"
	"github.com/cafescout/cafescout/internal/observability"
	"github.com/cafescout/cafescout/internal/provider"
)

// CacheSourceHit labels responses served from the store.
const CacheSourceHit = "cache"

// Provider is the upstream fetch seam; satisfied by *provider.Client.
type Provider interface {
	Nearby(ctx context.Context, req model.SearchRequest) provider.Result
}

// Engine owns the cache store explicitly; there is no ambient global
// instance, the caller constructs and wires one per process.
type Engine struct {
	logger *slog.Logger
	store  cache.Interface
	places Provider
	now    func() time.Time
}

func New(logger *slog.Logger, store cache.Interface, places Provider) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger: logger,
		store:  store,
		places: places,
		now:    time.Now,
	}
}

// Search serves one nearby request. Paginated requests never consult or
// populate the cache; only non-empty first pages are written through.
func (e *Engine) Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	start := e.now()
	key := keys.Search(req)

	if !req.Paginated() {
		if raw, ok := e.store.Get(key); ok {
			var stored provider.Result
			if err := json.Unmarshal(raw, &stored); err != nil {
				// Unreadable entry: drop it and fall through to a fetch.
				e.logger.Warn("discarding corrupt cache entry", "key", key, "err", err)
				e.store.Delete(key)
			} else {
				observability.IncCacheHit()
				e.logger.DebugContext(logger.WithCacheSource(ctx, CacheSourceHit),
					"cache hit", "key", key, "count", len(stored.Points))
				return e.envelope(stored, true, CacheSourceHit, start), nil
			}
		}
		observability.IncCacheMiss()
	}

	res := e.places.Nearby(ctx, req)

	if !req.Paginated() && len(res.Points) > 0 {
		raw, err := json.Marshal(res)
		if err != nil {
			return model.SearchResponse{}, fmt.Errorf("encode cache payload: %w", err)
		}
		e.store.Set(key, raw)
	}

	e.logger.DebugContext(logger.WithCacheSource(ctx, string(res.Source)),
		"served from provider", "key", key, "count", len(res.Points))
	return e.envelope(res, false, string(res.Source), start), nil
}

func (e *Engine) envelope(res provider.Result, hit bool, source string, start time.Time) model.SearchResponse {
	points := res.Points
	if hit {
		// Stored payloads are returned verbatim apart from this
		// informational flag.
		points = make([]model.PointOfInterest, len(res.Points))
		copy(points, res.Points)
		for i := range points {
			points[i].Cached = true
		}
	}
	if points == nil {
		points = []model.PointOfInterest{}
	}

	return model.SearchResponse{
		Success:       true,
		Data:          points,
		NextPageToken: res.NextPageToken,
		Meta: model.Meta{
			Count:        len(points),
			CacheHit:     hit,
			CacheSource:  source,
			ResponseTime: fmt.Sprintf("%dms", e.now().Sub(start).Milliseconds()),
			Timestamp:    e.now().UTC().Format(time.RFC3339),
			HasMore:      res.NextPageToken != "",
		},
	}
}
