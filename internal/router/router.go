// Package router validates nearby-search query parameters and bridges them
// to the search engine.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cafescout/cafescout/internal/config"
	"github.com/cafescout/cafescout/internal/model"
	"github.com/cafescout/cafescout/internal/observability"
)

// ErrMissingCoordinates is the client-facing validation failure for absent
// or zero coordinates. The message text is part of the API contract.
var ErrMissingCoordinates = errors.New("Latitude and longitude are required")

// SearchHandler serves a validated nearby request.
type SearchHandler interface {
	Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error)
}

// HandleNearby validates input and calls the engine, converting the outcome
// to the response envelope.
func HandleNearby(logger *slog.Logger, cfg config.Config, h SearchHandler) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		req, err := ParseSearchRequest(r, cfg)
		if err != nil {
			writeError(sw, http.StatusBadRequest, err.Error(), "")
			observability.ObserveHTTP(r.Method, "/api/cafes/nearby", http.StatusBadRequest, time.Since(start).Seconds())
			return
		}

		resp, err := h.Search(r.Context(), req)
		if err != nil {
			logger.Error("search failed", "err", err)
			writeError(sw, http.StatusInternalServerError, "Internal server error", "")
			observability.ObserveHTTP(r.Method, "/api/cafes/nearby", http.StatusInternalServerError, time.Since(start).Seconds())
			return
		}

		writeJSON(sw, http.StatusOK, resp)
		observability.ObserveHTTP(r.Method, "/api/cafes/nearby", sw.code, time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// ParseSearchRequest validates user input for the nearby endpoint and
// returns a normalized request. A missing or zero coordinate is rejected;
// zero is indistinguishable from "not provided" in the upstream contract.
func ParseSearchRequest(r *http.Request, cfg config.Config) (model.SearchRequest, error) {
	q := r.URL.Query()

	lat, err := parseCoord(q.Get("lat"))
	if err != nil {
		return model.SearchRequest{}, err
	}
	lng, err := parseCoord(q.Get("lng"))
	if err != nil {
		return model.SearchRequest{}, err
	}
	if lat == 0 || lng == 0 {
		return model.SearchRequest{}, ErrMissingCoordinates
	}
	if lat < -90 || lat > 90 {
		return model.SearchRequest{}, errors.New("latitude must be in [-90,90]")
	}
	if lng < -180 || lng > 180 {
		return model.SearchRequest{}, errors.New("longitude must be in [-180,180]")
	}

	radius := cfg.RadiusDefault
	if raw := strings.TrimSpace(q.Get("radius")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return model.SearchRequest{}, fmt.Errorf("invalid radius: %q", raw)
		}
		if cfg.RadiusMax > 0 && n > cfg.RadiusMax {
			n = cfg.RadiusMax
		}
		radius = n
	}

	return model.SearchRequest{
		Latitude:  lat,
		Longitude: lng,
		Radius:    radius,
		Query:     strings.TrimSpace(q.Get("query")),
		PageToken: strings.TrimSpace(q.Get("pageToken")),
	}, nil
}

func parseCoord(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, ErrMissingCoordinates
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errMsg, detail string) {
	writeJSON(w, code, model.ErrorResponse{
		Success: false,
		Error:   errMsg,
		Message: detail,
	})
}
