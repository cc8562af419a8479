package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

func normalize(t *testing.T, address string) *model.NormalizedAddress {
	t.Helper()
	n := NewAddressNormalizer()
	addr, err := n.Normalize(context.Background(), &model.QuoteSubmission{Address: address})
	require.NoError(t, err)
	return addr
}

func TestNormalize_ThreePartAddress(t *testing.T) {
	addr := normalize(t, "1200 J Street, Sacramento, CA 95814")

	assert.Equal(t, "1200 J Street", addr.StreetAddress)
	assert.Equal(t, "Sacramento", addr.City)
	assert.Equal(t, "CA", addr.State)
	assert.Equal(t, "95814", addr.ZipCode)
	assert.Equal(t, "Sacramento County", addr.County)
	require.NotNil(t, addr.Latitude)
	require.NotNil(t, addr.Longitude)
	assert.InDelta(t, 38.5816, *addr.Latitude, 0.001)
	assert.InDelta(t, -121.4944, *addr.Longitude, 0.001)
}

func TestNormalize_TwoPartAddress(t *testing.T) {
	addr := normalize(t, "500 Main St, Fresno CA 93721")

	assert.Equal(t, "500 Main St", addr.StreetAddress)
	assert.Equal(t, "Fresno", addr.City)
	assert.Equal(t, "CA", addr.State)
	assert.Equal(t, "93721", addr.ZipCode)
	assert.Equal(t, "Fresno County", addr.County)
}

func TestNormalize_CityCaseInsensitive(t *testing.T) {
	addr := normalize(t, "10 Elm Ave, SAN DIEGO, CA 92101")

	assert.Equal(t, "San Diego", addr.City)
	assert.Equal(t, "San Diego County", addr.County)
	require.NotNil(t, addr.Latitude)
}

func TestNormalize_UnknownCity(t *testing.T) {
	addr := normalize(t, "1 Harbor Way, Eureka, CA 95501")

	assert.Equal(t, "Eureka", addr.City)
	assert.Equal(t, "Unknown County", addr.County)
	assert.Nil(t, addr.Latitude)
	assert.Nil(t, addr.Longitude)
}

func TestNormalize_ZipPlusFour(t *testing.T) {
	addr := normalize(t, "1200 J Street, Sacramento, CA 95814-2900")

	assert.Equal(t, "95814-2900", addr.ZipCode)
	assert.Equal(t, "CA", addr.State)
}

func TestNormalize_StreetOnly(t *testing.T) {
	addr := normalize(t, "123 Lonely Road")

	assert.Equal(t, "123 Lonely Road", addr.StreetAddress)
	assert.Equal(t, "", addr.City)
	assert.Equal(t, "Unknown County", addr.County)
}

func TestNormalize_NilSubmission(t *testing.T) {
	n := NewAddressNormalizer()
	_, err := n.Normalize(context.Background(), nil)
	assert.Error(t, err)
}

func TestSplitCityStateZip(t *testing.T) {
	city, stateZip := splitCityStateZip("Sacramento CA 95814")
	assert.Equal(t, "Sacramento", city)
	assert.Equal(t, "CA 95814", stateZip)

	city, stateZip = splitCityStateZip("San Francisco CA 94105")
	assert.Equal(t, "San Francisco", city)
	assert.Equal(t, "CA 94105", stateZip)

	city, stateZip = splitCityStateZip("Fresno CA")
	assert.Equal(t, "Fresno", city)
	assert.Equal(t, "CA", stateZip)
}
