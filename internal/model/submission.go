package model

import (
	"strconv"
	"strings"
)

// QuoteSubmission is the applicant-provided quote request. It is immutable
// for the duration of a run except when missing-info answers are applied.
type QuoteSubmission struct {
	ApplicantName    string   `json:"applicant_name"`
	Address          string   `json:"address"`
	PropertyType     string   `json:"property_type"` // e.g. single_family, condo, townhouse, commercial
	CoverageAmount   float64  `json:"coverage_amount"`
	ConstructionYear *int     `json:"construction_year,omitempty"`
	SquareFootage    *float64 `json:"square_footage,omitempty"`
	RoofType         string   `json:"roof_type,omitempty"`
	FoundationType   string   `json:"foundation_type,omitempty"`
	Notes            string   `json:"notes,omitempty"`
}

// ApplyAnswer sets the named submission field from a follow-up answer,
// coercing numeric values as needed. Unknown fields are reported so the
// caller can surface bad answer keys instead of silently dropping them.
func (s *QuoteSubmission) ApplyAnswer(field string, value any) bool {
	switch field {
	case "applicant_name":
		s.ApplicantName = toString(value)
	case "address":
		s.Address = toString(value)
	case "property_type":
		s.PropertyType = toString(value)
	case "coverage_amount":
		if f, ok := toFloat(value); ok {
			s.CoverageAmount = f
		} else {
			return false
		}
	case "construction_year":
		if f, ok := toFloat(value); ok {
			year := int(f)
			s.ConstructionYear = &year
		} else {
			return false
		}
	case "square_footage":
		if f, ok := toFloat(value); ok {
			s.SquareFootage = &f
		} else {
			return false
		}
	case "roof_type":
		s.RoofType = toString(value)
	case "foundation_type":
		s.FoundationType = toString(value)
	case "notes":
		s.Notes = toString(value)
	default:
		return false
	}
	return true
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// toFloat accepts native numbers, JSON-decoded float64s, and numeric strings
// (answers arriving over HTTP forms are often strings).
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
