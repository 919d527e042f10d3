package environment

// #region boxes

type boundingBox struct {
	country        string
	minLat, maxLat float64
	minLon, maxLon float64
}

// countryBoxes is checked in order; smaller countries precede the larger
// boxes that overlap them.
var countryBoxes = []boundingBox{
	{"KR", 33.0, 38.7, 124.5, 129.6}, // east edge stops short of Kyushu
	{"KR", 37.2, 37.6, 130.7, 131.0}, // Ulleungdo
	{"JP", 24.0, 45.6, 122.9, 146.0},
	{"GB", 49.9, 60.9, -8.2, 1.8},
	{"US", 24.5, 49.5, -125.0, -66.9},
	{"AU", -43.7, -10.7, 113.0, 153.7},
	{"CN", 18.0, 53.6, 73.5, 135.0},
}

// DefaultCountry is used when no bounding box contains the location.
const DefaultCountry = "KR"

// #endregion boxes

// #region lookup

// CountryFor returns the ISO 3166 alpha-2 code whose coarse bounding box
// contains loc, or DefaultCountry. This is not reverse geocoding.
func CountryFor(loc Location) string {
	for _, b := range countryBoxes {
		if loc.Latitude >= b.minLat && loc.Latitude <= b.maxLat &&
			loc.Longitude >= b.minLon && loc.Longitude <= b.maxLon {
			return b.country
		}
	}
	return DefaultCountry
}

// #endregion lookup
