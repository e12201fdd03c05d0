package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func TestAddressLine(t *testing.T) {
	tests := []struct {
		name string
		st   Station
		want string
	}{
		{"full", Station{Address: "100 Main St", City: "Austin", State: "TX"}, "100 Main St, Austin, TX"},
		{"city and state only", Station{City: "Austin", State: "TX"}, "Austin, TX"},
		{"whitespace parts dropped", Station{Address: "  ", City: "Austin"}, "Austin"},
		{"empty", Station{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.st.AddressLine())
		})
	}
}

func TestHasCoordinates(t *testing.T) {
	assert.False(t, Station{}.HasCoordinates())
	assert.False(t, Station{Latitude: fp(30.0)}.HasCoordinates())
	assert.True(t, Station{Latitude: fp(30.0), Longitude: fp(-97.0)}.HasCoordinates())
}

func TestSortForListing_HomeFirstThenAlphabetical(t *testing.T) {
	stations := []Station{
		{ID: 1, Name: "shell downtown"},
		{ID: 2, Name: "Chevron"},
		{ID: 3, Name: "QT #714", IsHome: true},
		{ID: 4, Name: "HEB Fuel"},
	}

	SortForListing(stations)

	names := make([]string, len(stations))
	for i, st := range stations {
		names[i] = st.Name
	}
	assert.Equal(t, []string{"QT #714", "Chevron", "HEB Fuel", "shell downtown"}, names)
}

func TestSortForListing_CaseInsensitive(t *testing.T) {
	stations := []Station{
		{ID: 1, Name: "exxon"},
		{ID: 2, Name: "Chevron"},
	}

	SortForListing(stations)
	assert.Equal(t, "Chevron", stations[0].Name)
}

func TestDistanceKM(t *testing.T) {
	austin := Station{Latitude: fp(30.2672), Longitude: fp(-97.7431)}
	dallas := Station{Latitude: fp(32.7767), Longitude: fp(-96.7970)}

	km, ok := DistanceKM(austin, dallas)
	require.True(t, ok)
	// Austin to Dallas is roughly 292 km as the crow flies.
	assert.InDelta(t, 292, km, 10)

	same, ok := DistanceKM(austin, austin)
	require.True(t, ok)
	assert.InDelta(t, 0, same, 0.001)
}

func TestDistanceKM_MissingCoordinates(t *testing.T) {
	located := Station{Latitude: fp(30.0), Longitude: fp(-97.0)}

	_, ok := DistanceKM(located, Station{})
	assert.False(t, ok)
	_, ok = DistanceKM(Station{}, located)
	assert.False(t, ok)
}
