package model

// NormalizedAddress is the parsed, geocoded form of a submission address.
// Best-effort: empty city/state are acceptable for malformed input.
type NormalizedAddress struct {
	StreetAddress string   `json:"street_address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	ZipCode       string   `json:"zip_code"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	County        string   `json:"county,omitempty"`
}

// HazardScores holds the four peril risk fractions, each in [0,1].
type HazardScores struct {
	WildfireRisk   float64 `json:"wildfire_risk"`
	FloodRisk      float64 `json:"flood_risk"`
	WindRisk       float64 `json:"wind_risk"`
	EarthquakeRisk float64 `json:"earthquake_risk"`
}

// Max returns the highest of the four peril scores.
func (h HazardScores) Max() float64 {
	m := h.WildfireRisk
	for _, v := range []float64{h.FloodRisk, h.WindRisk, h.EarthquakeRisk} {
		if v > m {
			m = v
		}
	}
	return m
}

// InBounds reports whether every peril score is within [0,1].
func (h HazardScores) InBounds() bool {
	for _, v := range []float64{h.WildfireRisk, h.FloodRisk, h.WindRisk, h.EarthquakeRisk} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// EnrichmentResult is the derived data attached to a submission by the
// enrichment stage.
type EnrichmentResult struct {
	NormalizedAddress NormalizedAddress `json:"normalized_address"`
	HazardScores      HazardScores      `json:"hazard_scores"`
	PropertyDetails   map[string]any    `json:"property_details,omitempty"`
}
