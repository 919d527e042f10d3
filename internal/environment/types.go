package environment

import (
	"fmt"
	"math"
	"time"
)

// #region location

// Location is a coordinate pair in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns the cache key for coordinate-scoped data. Two decimals
// (~1 km) so nearby requests share an entry.
func (l Location) Key() string {
	return fmt.Sprintf("%.2f,%.2f", l.Latitude, l.Longitude)
}

// Valid reports whether the coordinates are on the globe.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// LocalTime approximates the solar local time at l from its longitude.
func (l Location) LocalTime(t time.Time) time.Time {
	offset := time.Duration(math.Round(l.Longitude/15)) * time.Hour
	return t.UTC().Add(offset)
}

// #endregion location

// #region category

// Category names one independently sourced slice of context.
type Category string

const (
	CategoryWeather      Category = "weather"
	CategoryCultural     Category = "cultural"
	CategoryEconomic     Category = "economic"
	CategoryGeopolitical Category = "geopolitical"
)

// Categories lists every category in a fixed order.
var Categories = []Category{CategoryWeather, CategoryCultural, CategoryEconomic, CategoryGeopolitical}

// Source records where a category's data came from for one context.
type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// #endregion category

// #region weather

// WeatherReading is the raw provider observation.
type WeatherReading struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
	UVIndex     float64 `json:"uv_index"`
	AirQuality  int     `json:"air_quality"` // US AQI 0-500
	ConditionID int     `json:"condition_id"`
	Description string  `json:"description"`
}

// RiskLevel buckets the weather risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Impacts are recommendation lists derived from a reading.
type Impacts struct {
	Skincare []string `json:"skincare"`
	Activity []string `json:"activity"`
	Mood     []string `json:"mood"`
	Health   []string `json:"health"`
}

// WeatherData is a reading plus its derived impacts and risk.
type WeatherData struct {
	Reading   WeatherReading `json:"reading"`
	Impacts   Impacts        `json:"impacts"`
	RiskScore int            `json:"risk_score"`
	RiskLevel RiskLevel      `json:"risk_level"`
}

// #endregion weather

// #region profiles

// CulturalProfile describes social norms for a country.
type CulturalProfile struct {
	Country            string   `json:"country"`
	Language           string   `json:"language"`
	CommunicationStyle string   `json:"communication_style"`
	Values             []string `json:"values"`
	Observances        []string `json:"observances"`
}

// EconomicProfile summarises the economic climate for a country.
type EconomicProfile struct {
	Country           string  `json:"country"`
	Currency          string  `json:"currency"`
	InflationRate     float64 `json:"inflation_rate"`
	ConsumerSentiment int     `json:"consumer_sentiment"` // 0-100
	Trend             string  `json:"trend"`              // growing | stable | declining
}

// GeopoliticalProfile summarises stability and advisories for a country.
type GeopoliticalProfile struct {
	Country        string   `json:"country"`
	StabilityIndex int      `json:"stability_index"` // 0-100, higher is calmer
	AdvisoryLevel  int      `json:"advisory_level"`  // 1-4
	Alerts         []string `json:"alerts"`
}

// #endregion profiles

// #region context

// Context is the composed environmental picture for one location.
// Degraded is true when at least one category used its fallback.
type Context struct {
	Weather      WeatherData         `json:"weather"`
	Cultural     CulturalProfile     `json:"cultural"`
	Economic     EconomicProfile     `json:"economic"`
	Geopolitical GeopoliticalProfile `json:"geopolitical"`
	Timestamp    time.Time           `json:"timestamp"`
	Location     Location            `json:"location"`
	Country      string              `json:"country"`
	Degraded     bool                `json:"degraded"`
	Sources      map[Category]Source `json:"sources"`
}

// FallbackCategories lists the categories served from fallbacks, in order.
func (c Context) FallbackCategories() []Category {
	var out []Category
	for _, cat := range Categories {
		if c.Sources[cat] == SourceFallback {
			out = append(out, cat)
		}
	}
	return out
}

// #endregion context
