// Package keys builds deterministic cache keys for nearby searches.
package keys

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/cafescout/cafescout/internal/model"
)

// Search composes the cache key for a search request. Coordinates are
// rounded to 3 decimal places (~111 m at the equator) so nearby origins
// collapse onto the same entry. A page token gets its own suffix: paginated
// fetches must never collide with a first-page lookup.
func Search(req model.SearchRequest) string {
	query := strings.TrimSpace(req.Query)
	querySafe := sanitizeForKey(query)

	const maxQuerySegmentLen = 80
	if len(querySafe) > maxQuerySegmentLen {
		querySafe = querySafe[:maxQuerySegmentLen]
	}

	sum := xxhash.Sum64String(query)

	key := fmt.Sprintf("cafes:%.3f:%.3f:r%d:q=%s:f=%016x",
		req.Latitude, req.Longitude, req.Radius, querySafe, sum)

	if req.PageToken != "" {
		key += fmt.Sprintf(":p=%016x", xxhash.Sum64String(req.PageToken))
	}
	return key
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-':
			out = r
		default:
			// Any other rune (including non-ASCII) becomes '-'
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
