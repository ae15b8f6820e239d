package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

type ReadinessReporter interface {
	Ready() bool
}

// State is a trivially settable ReadinessReporter, ready by default. The
// invalidation consumer flips it while it is (re)connecting.
type State struct {
	notReady atomic.Bool
}

func (s *State) Ready() bool    { return !s.notReady.Load() }
func (s *State) Set(ready bool) { s.notReady.Store(!ready) }

func Readiness(rr ReadinessReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		type resp struct {
			Status string `json:"status"`
		}
		out := resp{Status: "ready"}
		w.Header().Set("Content-Type", "application/json")
		if !rr.Ready() {
			out.Status = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
