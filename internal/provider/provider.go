// Package provider fetches nearby cafes from the places API and degrades to
// synthetic data when the upstream is unavailable or unconfigured.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cafescout/cafescout/internal/model"
	"github.com/cafescout/cafescout/internal/observability"
)

// Source identifies which branch produced a result.
type Source string

const (
	SourcePlacesAPI Source = "places_api"
	SourceMock      Source = "mock"
)

// Result is the two-branch fetch outcome. Both branches are successes at
// the transport boundary; Source records which one was taken.
type Result struct {
	Points        []model.PointOfInterest `json:"points"`
	NextPageToken string                  `json:"nextPageToken,omitempty"`
	Source        Source                  `json:"source"`
}

const defaultTimeout = 5 * time.Second

type Client struct {
	logger  *slog.Logger
	http    *http.Client
	baseURL string
	apiKey  string
	timeout time.Duration

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRand substitutes the randomness source so tests can seed it.
func WithRand(r *rand.Rand) Option {
	return func(c *Client) { c.rng = r }
}

func New(logger *slog.Logger, httpClient *http.Client, apiKey string, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		logger:  logger,
		http:    httpClient,
		baseURL: "https://maps.googleapis.com/maps/api/place/nearbysearch/json",
		apiKey:  apiKey,
		timeout: defaultTimeout,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, f := range opts {
		f(c)
	}
	return c
}

// Nearby returns cafes around the request origin, sorted ascending by
// distance. It never fails: any provider problem other than a legitimate
// empty result set falls back to the synthetic batch.
func (c *Client) Nearby(ctx context.Context, req model.SearchRequest) Result {
	if c.apiKey == "" {
		c.logger.Debug("no places api key configured, serving mock data")
		observability.IncProviderResult(string(SourceMock))
		return c.synthetic(req)
	}

	res, err := c.fetch(ctx, req)
	if err != nil {
		c.logger.Warn("places fetch failed, serving mock data", "err", err)
		observability.IncProviderResult(string(SourceMock))
		return c.synthetic(req)
	}
	observability.IncProviderResult(string(SourcePlacesAPI))
	return res
}

// placesResponse mirrors the Nearby Search JSON body.
type placesResponse struct {
	Results       []rawPlace `json:"results"`
	Status        string     `json:"status"`
	NextPageToken string     `json:"next_page_token"`
	ErrorMessage  string     `json:"error_message"`
}

type rawPlace struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating         float64  `json:"rating"`
	PriceLevel     int      `json:"price_level"`
	Types          []string `json:"types"`
	BusinessStatus string   `json:"business_status"`
	OpeningHours   *struct {
		OpenNow *bool `json:"open_now"`
	} `json:"opening_hours"`
}

func (c *Client) fetch(ctx context.Context, req model.SearchRequest) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", req.Latitude, req.Longitude))
	params.Set("radius", fmt.Sprintf("%d", req.Radius))
	params.Set("type", "cafe")
	params.Set("key", c.apiKey)
	if req.Query != "" {
		params.Set("keyword", req.Query)
	}
	if req.PageToken != "" {
		params.Set("pagetoken", req.PageToken)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	observability.ObserveUpstreamLatency("places_api", time.Since(start).Seconds())
	if err != nil {
		return Result{}, fmt.Errorf("places request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("places status %d: %s", resp.StatusCode, string(b))
	}

	var body placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("decode places response: %w", err)
	}

	switch body.Status {
	case "OK":
		return Result{
			Points:        c.transformAll(req, body.Results),
			NextPageToken: body.NextPageToken,
			Source:        SourcePlacesAPI,
		}, nil
	case "ZERO_RESULTS":
		// A legitimate empty result set is authoritative, not a failure.
		return Result{Points: []model.PointOfInterest{}, Source: SourcePlacesAPI}, nil
	default:
		return Result{}, fmt.Errorf("places status %s: %s", body.Status, body.ErrorMessage)
	}
}

func (c *Client) randIntn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Intn(n)
}

func (c *Client) randFloat() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Float64()
}
