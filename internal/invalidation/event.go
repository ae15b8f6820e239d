// Package invalidation defines the cache invalidation event contract.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

// Event announces that place data changed and cached search results may be
// stale. Version is a per-place monotonic counter used for deduplication.
type Event struct {
	Schema  int       `json:"schema"`
	Op      string    `json:"op"`
	PlaceID string    `json:"place_id,omitempty"`
	Version uint64    `json:"version"`
	Lat     float64   `json:"lat,omitempty"`
	Lng     float64   `json:"lng,omitempty"`
	TS      time.Time `json:"ts"`
	Source  string    `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Schema != 1 {
		return fmt.Errorf("schema must be 1")
	}
	switch e.Op {
	case "update", "delete":
		if strings.TrimSpace(e.PlaceID) == "" {
			return fmt.Errorf("place_id is required for op %s", e.Op)
		}
		if e.Lat < -90 || e.Lat > 90 {
			return fmt.Errorf("lat out of range")
		}
		if e.Lng < -180 || e.Lng > 180 {
			return fmt.Errorf("lng out of range")
		}
	case "clear":
	default:
		return fmt.Errorf("op must be update|delete|clear")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}
