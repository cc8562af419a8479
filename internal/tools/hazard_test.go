package tools

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

func scoreAddress(t *testing.T, addr *model.NormalizedAddress) *model.HazardScores {
	t.Helper()
	h := NewHazardScorer()
	scores, err := h.Score(context.Background(), addr)
	require.NoError(t, err)
	return scores
}

func TestScore_Deterministic(t *testing.T) {
	addr := &model.NormalizedAddress{
		StreetAddress: "1200 J Street",
		City:          "Sacramento",
		ZipCode:       "95814",
		County:        "Sacramento County",
	}

	first := scoreAddress(t, addr)
	second := scoreAddress(t, addr)
	assert.Equal(t, first, second)
}

func TestScore_AddressesWithinCountyDiffer(t *testing.T) {
	a := scoreAddress(t, &model.NormalizedAddress{
		StreetAddress: "1200 J Street", City: "Sacramento", ZipCode: "95814", County: "Sacramento County",
	})
	b := scoreAddress(t, &model.NormalizedAddress{
		StreetAddress: "800 K Street", City: "Sacramento", ZipCode: "95814", County: "Sacramento County",
	})

	assert.NotEqual(t, *a, *b)
}

func TestScore_CountyBaseDominatesJitter(t *testing.T) {
	// San Diego wildfire base is 0.8; jitter is at most 0.05 so the score
	// always stays high-risk.
	for i := 0; i < 25; i++ {
		scores := scoreAddress(t, &model.NormalizedAddress{
			StreetAddress: fmt.Sprintf("%d Ocean Blvd", i),
			City:          "San Diego",
			ZipCode:       "92101",
			County:        "San Diego County",
		})
		assert.Greater(t, scores.WildfireRisk, 0.7)
	}
}

func TestScore_UnknownCountyFallback(t *testing.T) {
	for i := 0; i < 25; i++ {
		scores := scoreAddress(t, &model.NormalizedAddress{
			StreetAddress: fmt.Sprintf("%d Rural Route", i),
			City:          "Weed",
			ZipCode:       "96094",
			County:        "Unknown County",
		})
		for _, v := range []float64{scores.WildfireRisk, scores.FloodRisk, scores.WindRisk, scores.EarthquakeRisk} {
			assert.GreaterOrEqual(t, v, 0.25-0.001)
			assert.LessOrEqual(t, v, 0.35+zoneMaxAdjust+0.001)
		}
	}
}

func TestScore_AlwaysInBounds(t *testing.T) {
	counties := []string{
		"Los Angeles County", "San Francisco County", "San Diego County",
		"Sacramento County", "Fresno County", "Unknown County",
	}
	lat, lon := 38.5816, -121.4944

	for _, county := range counties {
		for i := 0; i < 50; i++ {
			scores := scoreAddress(t, &model.NormalizedAddress{
				StreetAddress: fmt.Sprintf("%d Test Street", i),
				City:          "Anywhere",
				ZipCode:       fmt.Sprintf("9%04d", i),
				County:        county,
				Latitude:      &lat,
				Longitude:     &lon,
			})
			assert.True(t, scores.InBounds(), "county %s iteration %d: %+v", county, i, *scores)
		}
	}
}

func TestScore_ZoneProximityRaisesPeril(t *testing.T) {
	base := &model.NormalizedAddress{
		StreetAddress: "1200 J Street",
		City:          "Sacramento",
		ZipCode:       "95814",
		County:        "Sacramento County",
	}
	without := scoreAddress(t, base)

	// Sacramento sits inside the central valley floodplain zone.
	lat, lon := 38.5816, -121.4944
	withCoords := *base
	withCoords.Latitude = &lat
	withCoords.Longitude = &lon
	with := scoreAddress(t, &withCoords)

	assert.Greater(t, with.FloodRisk, without.FloodRisk)
	assert.LessOrEqual(t, with.FloodRisk-without.FloodRisk, zoneMaxAdjust+0.001)
}

func TestScore_NilAddress(t *testing.T) {
	h := NewHazardScorer()
	_, err := h.Score(context.Background(), nil)
	assert.Error(t, err)
}

func TestJitter_Bounds(t *testing.T) {
	for i := 0; i < 200; i++ {
		v := jitter(fmt.Sprintf("seed-%d", i), "wildfire")
		assert.GreaterOrEqual(t, v, -jitterAmplitude)
		assert.LessOrEqual(t, v, jitterAmplitude)
	}
}

func TestJitter_DimensionsIndependent(t *testing.T) {
	seed := "1200 J Street|Sacramento|95814"
	assert.NotEqual(t, jitter(seed, "wildfire"), jitter(seed, "flood"))
}
