package provider

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/cafescout/cafescout/internal/geo"
	"github.com/cafescout/cafescout/internal/model"
)

// typeTags maps provider place types to display tags. The generic "Cafe"
// tag is always present and always first.
var typeTags = map[string]string{
	"cafe":           "Cafe",
	"coffee_shop":    "Coffee",
	"bakery":         "Bakery",
	"restaurant":     "Restaurant",
	"bar":            "Bar",
	"meal_takeaway":  "Takeaway",
	"book_store":     "Books",
	"store":          "Shop",
	"breakfast_spot": "Brunch",
}

const maxTags = 3

func (c *Client) transformAll(req model.SearchRequest, raws []rawPlace) []model.PointOfInterest {
	points := make([]model.PointOfInterest, 0, len(raws))
	for _, raw := range raws {
		points = append(points, c.transform(req, raw))
	}
	sortByDistance(points)
	return points
}

func (c *Client) transform(req model.SearchRequest, raw rawPlace) model.PointOfInterest {
	lat := raw.Geometry.Location.Lat
	lng := raw.Geometry.Location.Lng
	dist := geo.DistanceMeters(req.Latitude, req.Longitude, lat, lng)

	open := deriveOpenNow(raw)
	crowd := c.crowdLevel(open)

	return model.PointOfInterest{
		ID:                 stableID(raw.PlaceID),
		ExternalID:         raw.PlaceID,
		Name:               raw.Name,
		Address:            raw.Vicinity,
		Latitude:           lat,
		Longitude:          lng,
		Rating:             raw.Rating,
		PriceLevel:         raw.PriceLevel,
		DistanceMeters:     dist,
		DistanceLabel:      geo.FormatDistance(dist),
		CrowdLevel:         crowd,
		PredictedWaitLabel: waitLabel(crowd),
		Tags:               tagsFor(raw.Types),
		AIScore:            c.aiScore(),
		OpenNow:            open,
	}
}

// deriveOpenNow is the conjunction of "operationally active" and "currently
// within opening hours". Missing opening-hours data defaults to open.
func deriveOpenNow(raw rawPlace) bool {
	if raw.BusinessStatus != "" && raw.BusinessStatus != "OPERATIONAL" {
		return false
	}
	if raw.OpeningHours == nil || raw.OpeningHours.OpenNow == nil {
		return true
	}
	return *raw.OpeningHours.OpenNow
}

// crowdLevel is regenerated per fetch: it is a live-ish estimate, not a
// persisted signal.
func (c *Client) crowdLevel(open bool) int {
	if !open {
		return 0
	}
	return 1 + c.randIntn(5)
}

func (c *Client) aiScore() int {
	return 80 + c.randIntn(20)
}

func waitLabel(crowd int) string {
	switch crowd {
	case 0:
		return "Closed"
	case 1:
		return "< 5 min"
	case 2:
		return "5-10 min"
	case 3:
		return "10-15 min"
	case 4:
		return "15-25 min"
	default:
		return "25-40 min"
	}
}

func tagsFor(types []string) []string {
	tags := []string{"Cafe"}
	seen := map[string]bool{"Cafe": true}
	for _, t := range types {
		label, ok := typeTags[t]
		if !ok || seen[label] {
			continue
		}
		tags = append(tags, label)
		seen[label] = true
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

// stableID hashes the provider's opaque identifier into a non-negative
// integer so the UI has a stable sortable key.
func stableID(externalID string) int64 {
	return int64(xxhash.Sum64String(externalID) & (1<<63 - 1))
}

func sortByDistance(points []model.PointOfInterest) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].DistanceMeters < points[j].DistanceMeters
	})
}
