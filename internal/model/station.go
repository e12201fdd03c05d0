package model

import (
	"sort"
	"strings"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Station is a fuel station in the directory. Coordinates are nullable until
// the geocode cache-filler (or an admin) resolves them; once set they are
// never cleared by this backend.
type Station struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Latitude  *float64  `json:"lat,omitempty"`
	Longitude *float64  `json:"lng,omitempty"`
	IsHome    bool      `json:"is_home"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (s Station) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// AddressLine joins the present address parts with ", " for geocoding and
// display. Returns "" when no part is present.
func (s Station) AddressLine() string {
	var parts []string
	for _, p := range []string{s.Address, s.City, s.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// SortForListing orders stations for the public listing: the home station
// first, the rest alphabetically by name (case-insensitive, locale-aware).
func SortForListing(stations []Station) {
	// Collators are not safe for concurrent use, so build one per call.
	c := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(stations, func(i, j int) bool {
		if stations[i].IsHome != stations[j].IsHome {
			return stations[i].IsHome
		}
		return c.CompareString(stations[i].Name, stations[j].Name) < 0
	})
}

// DistanceKM returns the haversine distance in kilometers between two
// stations, and false when either end is missing coordinates.
func DistanceKM(a, b Station) (float64, bool) {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return 0, false
	}
	meters := gpx.Distance2D(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude, true)
	return meters / 1000, true
}
