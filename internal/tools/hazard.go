package tools

import (
	"context"
	"hash/fnv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// perilScores is the per-county base table. Counties not listed fall back
// to defaultPerils.
type perilScores struct {
	wildfire   float64
	flood      float64
	wind       float64
	earthquake float64
}

var countyPerils = map[string]perilScores{
	"Los Angeles County":   {wildfire: 0.7, flood: 0.3, wind: 0.2, earthquake: 0.8},
	"San Francisco County": {wildfire: 0.1, flood: 0.4, wind: 0.3, earthquake: 0.9},
	"San Diego County":     {wildfire: 0.8, flood: 0.2, wind: 0.4, earthquake: 0.6},
	"Sacramento County":    {wildfire: 0.4, flood: 0.5, wind: 0.2, earthquake: 0.5},
	"Fresno County":        {wildfire: 0.6, flood: 0.3, wind: 0.3, earthquake: 0.4},
}

var defaultPerils = perilScores{wildfire: 0.3, flood: 0.3, wind: 0.3, earthquake: 0.3}

// hazardZone is a point source of elevated peril risk. When the address has
// coordinates, proximity to a zone nudges the matching peril upward by at
// most zoneMaxAdjust.
type hazardZone struct {
	name     string
	centroid geom.Coord // lon, lat
	radius   float64    // decay radius in degrees
	peril    string
}

var hazardZones = []hazardZone{
	{name: "san_andreas_fault", centroid: geom.Coord{-121.5, 36.5}, radius: 2.5, peril: "earthquake"},
	{name: "sierra_foothill_burn_area", centroid: geom.Coord{-120.5, 38.8}, radius: 2.0, peril: "wildfire"},
	{name: "central_valley_floodplain", centroid: geom.Coord{-121.5, 38.5}, radius: 1.5, peril: "flood"},
}

const (
	zoneMaxAdjust   = 0.03
	jitterAmplitude = 0.05
)

// HazardScorer derives the four peril scores for a normalized address.
// Deterministic: the same address always produces the same scores. The
// county base table is perturbed by an address-seeded jitter so distinct
// addresses within a county do not collapse to identical scores, plus a
// small proximity adjustment from known hazard-zone centroids.
type HazardScorer struct{}

// NewHazardScorer creates a HazardScorer.
func NewHazardScorer() *HazardScorer {
	return &HazardScorer{}
}

// Score returns the peril scores for the address, each clamped to [0,1].
func (h *HazardScorer) Score(_ context.Context, addr *model.NormalizedAddress) (*model.HazardScores, error) {
	if addr == nil {
		return nil, eris.New("hazard: nil address")
	}

	base, ok := countyPerils[addr.County]
	if !ok {
		base = defaultPerils
	}

	seed := addr.StreetAddress + "|" + addr.City + "|" + addr.ZipCode
	scores := &model.HazardScores{
		WildfireRisk:   clamp01(base.wildfire + jitter(seed, "wildfire")),
		FloodRisk:      clamp01(base.flood + jitter(seed, "flood")),
		WindRisk:       clamp01(base.wind + jitter(seed, "wind")),
		EarthquakeRisk: clamp01(base.earthquake + jitter(seed, "earthquake")),
	}

	if addr.Latitude != nil && addr.Longitude != nil {
		pt := geom.Coord{*addr.Longitude, *addr.Latitude}
		for _, zone := range hazardZones {
			adj := zoneAdjustment(pt, zone)
			if adj == 0 {
				continue
			}
			switch zone.peril {
			case "wildfire":
				scores.WildfireRisk = clamp01(scores.WildfireRisk + adj)
			case "flood":
				scores.FloodRisk = clamp01(scores.FloodRisk + adj)
			case "wind":
				scores.WindRisk = clamp01(scores.WindRisk + adj)
			case "earthquake":
				scores.EarthquakeRisk = clamp01(scores.EarthquakeRisk + adj)
			}
		}
	}

	return scores, nil
}

// zoneAdjustment decays linearly from zoneMaxAdjust at the centroid to zero
// at the zone radius.
func zoneAdjustment(pt geom.Coord, zone hazardZone) float64 {
	d := xy.Distance(pt, zone.centroid)
	if d >= zone.radius {
		return 0
	}
	return zoneMaxAdjust * (1 - d/zone.radius)
}

// jitter maps (seed, dimension) to a uniform value in
// [-jitterAmplitude, +jitterAmplitude] via FNV-1a.
func jitter(seed, dimension string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(dimension))
	frac := float64(h.Sum64()%10_000) / 10_000 // [0,1)
	return (frac*2 - 1) * jitterAmplitude
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
