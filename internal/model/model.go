// Package model defines the domain types shared across the service.
package model

// PointOfInterest is a single cafe record as returned to clients.
type PointOfInterest struct {
	ID         int64   `json:"id"`
	ExternalID string  `json:"externalId"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Rating     float64 `json:"rating"`
	PriceLevel int     `json:"priceLevel"`

	// DistanceMeters is used for ordering only and is not part of the
	// client payload; DistanceLabel is the formatted value clients see.
	DistanceMeters float64 `json:"-"`
	DistanceLabel  string  `json:"distanceLabel"`

	// CrowdLevel is 1-5 while open, 0 when closed. Regenerated on every
	// provider fetch, so repeated fetches may disagree.
	CrowdLevel         int      `json:"crowdLevel"`
	PredictedWaitLabel string   `json:"predictedWaitLabel"`
	Tags               []string `json:"tags"`
	AIScore            int      `json:"aiScore"`
	OpenNow            bool     `json:"openNow"`

	// Cached is informational: false at creation, flipped to true when the
	// record is served from the cache.
	Cached bool `json:"cached"`
}

// SearchRequest is a validated, normalized nearby-search request.
type SearchRequest struct {
	Latitude  float64
	Longitude float64
	Radius    int
	Query     string
	PageToken string
}

// Paginated reports whether the request continues a previous result page.
// Paginated requests bypass the cache in both directions.
func (r SearchRequest) Paginated() bool { return r.PageToken != "" }

// Meta carries per-response diagnostics.
type Meta struct {
	Count        int    `json:"count"`
	CacheHit     bool   `json:"cacheHit"`
	CacheSource  string `json:"cacheSource"`
	ResponseTime string `json:"responseTime"`
	Timestamp    string `json:"timestamp"`
	HasMore      bool   `json:"hasMore"`
}

// SearchResponse is the success envelope for the nearby endpoint.
type SearchResponse struct {
	Success       bool              `json:"success"`
	Data          []PointOfInterest `json:"data"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
	Meta          Meta              `json:"meta"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
