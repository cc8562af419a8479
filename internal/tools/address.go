// Package tools provides the enrichment and rating collaborators consumed
// by the underwriting workflow. All of them are pure and deterministic for
// a given input; the address and hazard implementations are placeholder
// heuristics standing in for real geocoding and catastrophe-model services.
package tools

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

var zipRe = regexp.MustCompile(`(\d{5}(?:-\d{4})?)`)

// cityGeo carries the mock geocode data for well-known cities.
type cityGeo struct {
	county string
	lat    float64
	lon    float64
}

var cityGeoData = map[string]cityGeo{
	"Los Angeles":   {county: "Los Angeles County", lat: 34.0522, lon: -118.2437},
	"San Francisco": {county: "San Francisco County", lat: 37.7749, lon: -122.4194},
	"San Diego":     {county: "San Diego County", lat: 32.7157, lon: -117.1611},
	"Sacramento":    {county: "Sacramento County", lat: 38.5816, lon: -121.4944},
	"Fresno":        {county: "Fresno County", lat: 36.7378, lon: -119.7871},
}

// AddressNormalizer parses a free-form submission address into a
// NormalizedAddress. Best-effort: malformed input yields empty city/state,
// never an error (the only error is a nil submission).
type AddressNormalizer struct {
	titler cases.Caser
}

// NewAddressNormalizer creates an AddressNormalizer.
func NewAddressNormalizer() *AddressNormalizer {
	return &AddressNormalizer{titler: cases.Title(language.AmericanEnglish)}
}

// Normalize splits the address on commas into street/city/state+zip, pulls
// the zip code out with a regexp, and attaches mock geocode data for known
// cities.
func (n *AddressNormalizer) Normalize(_ context.Context, sub *model.QuoteSubmission) (*model.NormalizedAddress, error) {
	if sub == nil {
		return nil, eris.New("address: nil submission")
	}

	parts := strings.Split(sub.Address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var street, city, stateZip string
	switch {
	case len(parts) >= 3:
		street, city, stateZip = parts[0], parts[1], parts[2]
	case len(parts) == 2:
		street = parts[0]
		city, stateZip = splitCityStateZip(parts[1])
	default:
		street = strings.TrimSpace(sub.Address)
	}

	state := stateZip
	zip := ""
	if m := zipRe.FindString(stateZip); m != "" {
		zip = m
		state = strings.Trim(strings.TrimSpace(strings.Replace(stateZip, m, "", 1)), ",")
		state = strings.TrimSpace(state)
	}

	addr := &model.NormalizedAddress{
		StreetAddress: street,
		City:          n.titler.String(strings.ToLower(city)),
		State:         state,
		ZipCode:       zip,
		County:        "Unknown County",
	}
	if geo, ok := cityGeoData[addr.City]; ok {
		lat, lon := geo.lat, geo.lon
		addr.Latitude = &lat
		addr.Longitude = &lon
		addr.County = geo.county
	}
	return addr, nil
}

// splitCityStateZip handles two-part addresses like
// "123 Main St, Sacramento CA 95814" where city and state share a segment.
func splitCityStateZip(s string) (city, stateZip string) {
	if m := zipRe.FindStringIndex(s); m != nil {
		head := strings.TrimSpace(s[:m[0]])
		fields := strings.Fields(head)
		if len(fields) > 1 {
			// Assume the last token before the zip is the state abbreviation.
			city = strings.Join(fields[:len(fields)-1], " ")
			stateZip = fields[len(fields)-1] + " " + s[m[0]:]
			return city, stateZip
		}
		return head, s[m[0]:]
	}

	fields := strings.Fields(s)
	if len(fields) > 1 {
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
	return s, ""
}
