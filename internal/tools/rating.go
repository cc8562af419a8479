package tools

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// ratingReferenceYear fixes the construction-age computation so rating is
// reproducible across runs and in tests.
const ratingReferenceYear = 2025

const baseRatePer1000 = 2.50

var propertyMultipliers = map[string]float64{
	"single_family": 1.0,
	"condo":         0.8,
	"townhouse":     0.9,
	"commercial":    1.5,
}

// Peril weights applied to (risk x base premium) for the surcharge.
const (
	wildfireWeight   = 0.3
	floodWeight      = 0.4
	windWeight       = 0.2
	earthquakeWeight = 0.5
)

// RatingTool is the deterministic premium calculator. Placeholder for a
// real actuarial rating engine; the premium arithmetic itself is exact.
type RatingTool struct{}

// NewRatingTool creates a RatingTool.
func NewRatingTool() *RatingTool {
	return &RatingTool{}
}

// Price computes the premium breakdown for the given coverage and risk
// profile. Total is always base + surcharge, each rounded to cents.
func (r *RatingTool) Price(_ context.Context, coverage float64, propertyType string, hazard model.HazardScores, constructionYear *int) (*model.PremiumBreakdown, error) {
	if coverage < 0 {
		return nil, eris.Errorf("rating: negative coverage amount %.2f", coverage)
	}

	base := (coverage / 1000) * baseRatePer1000

	propMultiplier, ok := propertyMultipliers[propertyType]
	if !ok {
		propMultiplier = 1.0
	}
	base *= propMultiplier

	factors := map[string]float64{
		"base_rate":           baseRatePer1000,
		"property_multiplier": propMultiplier,
	}

	if constructionYear != nil {
		age := ratingReferenceYear - *constructionYear
		switch {
		case age < 10:
			base *= 0.9
			factors["construction_discount"] = 0.9
		case age > 50:
			base *= 1.2
			factors["construction_surcharge"] = 1.2
		}
	}

	surcharge := hazard.WildfireRisk*base*wildfireWeight +
		hazard.FloodRisk*base*floodWeight +
		hazard.WindRisk*base*windWeight +
		hazard.EarthquakeRisk*base*earthquakeWeight

	if base > 0 {
		factors["hazard_load"] = surcharge / base
	} else {
		factors["hazard_load"] = 0
	}

	return &model.PremiumBreakdown{
		BasePremium:     model.Round2(base),
		HazardSurcharge: model.Round2(surcharge),
		TotalPremium:    model.Round2(model.Round2(base) + model.Round2(surcharge)),
		RatingFactors:   factors,
	}, nil
}
