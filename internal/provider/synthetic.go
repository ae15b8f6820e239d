package provider

import (
	"fmt"
	"math"

	"github.com/cafescout/cafescout/internal/geo"
	"github.com/cafescout/cafescout/internal/model"
)

// syntheticBatchSize is fixed: the fallback always produces exactly this
// many points and never a continuation token.
const syntheticBatchSize = 10

var (
	mockPrefixes = []string{
		"Velvet", "Daily", "Golden", "Rustic", "Corner",
		"Urban", "Hidden", "Morning", "Copper", "Paper",
	}
	mockSuffixes = []string{
		"Bean", "Grind", "Roast", "Cup", "Press",
		"Mug", "Brew", "Crema", "Filter", "Whisk",
	}
	mockStreets = []string{
		"Market St", "Oak Ave", "Station Rd", "Mill Lane", "Harbor Blvd",
	}
	mockTags = []string{"Cozy", "Wi-Fi", "Outdoor", "Brunch", "Roastery"}
)

const metersPerDegreeLat = 111111.0

// synthetic scatters a fixed-size batch of plausible placeholder cafes
// within the requested radius. This is the guaranteed success path: no
// allocation here can fail and no I/O happens.
func (c *Client) synthetic(req model.SearchRequest) Result {
	points := make([]model.PointOfInterest, 0, syntheticBatchSize)
	for i := 0; i < syntheticBatchSize; i++ {
		points = append(points, c.syntheticPoint(req, i))
	}
	sortByDistance(points)
	return Result{Points: points, Source: SourceMock}
}

func (c *Client) syntheticPoint(req model.SearchRequest, i int) model.PointOfInterest {
	// Random bearing and distance, inverse-projected around the origin.
	dist := c.randFloat() * float64(req.Radius)
	bearing := c.randFloat() * 2 * math.Pi
	lat := req.Latitude + dist*math.Cos(bearing)/metersPerDegreeLat
	lng := req.Longitude + dist*math.Sin(bearing)/
		(metersPerDegreeLat*math.Cos(req.Latitude*math.Pi/180))

	open := c.randIntn(10) < 9
	crowd := c.crowdLevel(open)
	externalID := fmt.Sprintf("mock-%d", i+1)

	name := fmt.Sprintf("%s %s",
		mockPrefixes[c.randIntn(len(mockPrefixes))],
		mockSuffixes[c.randIntn(len(mockSuffixes))])
	address := fmt.Sprintf("%d %s",
		100+c.randIntn(900), mockStreets[c.randIntn(len(mockStreets))])

	tags := []string{"Cafe", mockTags[c.randIntn(len(mockTags))]}

	return model.PointOfInterest{
		ID:                 stableID(externalID),
		ExternalID:         externalID,
		Name:               name,
		Address:            address,
		Latitude:           lat,
		Longitude:          lng,
		Rating:             math.Round((3.5+c.randFloat()*1.5)*10) / 10,
		PriceLevel:         1 + c.randIntn(3),
		DistanceMeters:     dist,
		DistanceLabel:      geo.FormatDistance(dist),
		CrowdLevel:         crowd,
		PredictedWaitLabel: waitLabel(crowd),
		Tags:               tags,
		AIScore:            c.aiScore(),
		OpenNow:            open,
	}
}
