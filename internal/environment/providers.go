package environment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// #region interfaces

// WeatherProvider fetches the current observation at a location.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, loc Location) (WeatherReading, error)
}

// CulturalProvider fetches a country's cultural profile.
type CulturalProvider interface {
	Cultural(ctx context.Context, country string) (CulturalProfile, error)
}

// EconomicProvider fetches a country's economic profile.
type EconomicProvider interface {
	Economic(ctx context.Context, country string) (EconomicProfile, error)
}

// GeopoliticalProvider fetches a country's geopolitical profile.
type GeopoliticalProvider interface {
	Geopolitical(ctx context.Context, country string) (GeopoliticalProfile, error)
}

// Providers wires one source per category. A nil provider fails its
// category, which then resolves to the fallback.
type Providers struct {
	Weather      WeatherProvider
	Cultural     CulturalProvider
	Economic     EconomicProvider
	Geopolitical GeopoliticalProvider
}

// ErrNoProvider is returned for a category with no configured source.
var ErrNoProvider = errors.New("no provider configured")

// ErrUnknownCountry is returned by StaticProfiles for countries it lacks.
var ErrUnknownCountry = errors.New("unknown country")

// #endregion interfaces

// #region static-profiles

// StaticProfiles serves built-in country profiles without network access.
type StaticProfiles struct{}

var culturalTable = map[string]CulturalProfile{
	"KR": {Country: "KR", Language: "ko", CommunicationStyle: "high-context",
		Values: []string{"respect for elders", "collective harmony", "diligence"}, Observances: []string{"Seollal", "Chuseok"}},
	"JP": {Country: "JP", Language: "ja", CommunicationStyle: "high-context",
		Values: []string{"harmony", "politeness", "craftsmanship"}, Observances: []string{"Shogatsu", "Obon"}},
	"CN": {Country: "CN", Language: "zh", CommunicationStyle: "high-context",
		Values: []string{"family", "face", "perseverance"}, Observances: []string{"Spring Festival", "Mid-Autumn Festival"}},
	"US": {Country: "US", Language: "en", CommunicationStyle: "low-context",
		Values: []string{"independence", "directness", "optimism"}, Observances: []string{"Thanksgiving", "Independence Day"}},
	"GB": {Country: "GB", Language: "en", CommunicationStyle: "understated",
		Values: []string{"politeness", "humour", "fair play"}, Observances: []string{"Bonfire Night", "Boxing Day"}},
	"AU": {Country: "AU", Language: "en", CommunicationStyle: "low-context",
		Values: []string{"mateship", "egalitarianism", "informality"}, Observances: []string{"Australia Day", "Anzac Day"}},
}

var economicTable = map[string]EconomicProfile{
	"KR": {Country: "KR", Currency: "KRW", InflationRate: 2.3, ConsumerSentiment: 48, Trend: "stable"},
	"JP": {Country: "JP", Currency: "JPY", InflationRate: 2.8, ConsumerSentiment: 45, Trend: "stable"},
	"CN": {Country: "CN", Currency: "CNY", InflationRate: 0.4, ConsumerSentiment: 42, Trend: "declining"},
	"US": {Country: "US", Currency: "USD", InflationRate: 3.0, ConsumerSentiment: 55, Trend: "growing"},
	"GB": {Country: "GB", Currency: "GBP", InflationRate: 3.5, ConsumerSentiment: 44, Trend: "stable"},
	"AU": {Country: "AU", Currency: "AUD", InflationRate: 2.9, ConsumerSentiment: 52, Trend: "growing"},
}

var geopoliticalTable = map[string]GeopoliticalProfile{
	"KR": {Country: "KR", StabilityIndex: 72, AdvisoryLevel: 1, Alerts: []string{"regional tension monitoring"}},
	"JP": {Country: "JP", StabilityIndex: 85, AdvisoryLevel: 1, Alerts: []string{"seismic activity awareness"}},
	"CN": {Country: "CN", StabilityIndex: 68, AdvisoryLevel: 2, Alerts: []string{"local regulation changes"}},
	"US": {Country: "US", StabilityIndex: 70, AdvisoryLevel: 1, Alerts: []string{}},
	"GB": {Country: "GB", StabilityIndex: 80, AdvisoryLevel: 1, Alerts: []string{}},
	"AU": {Country: "AU", StabilityIndex: 86, AdvisoryLevel: 1, Alerts: []string{"bushfire season advisories"}},
}

// Cultural returns the built-in cultural profile.
func (StaticProfiles) Cultural(_ context.Context, country string) (CulturalProfile, error) {
	p, ok := culturalTable[strings.ToUpper(country)]
	if !ok {
		return CulturalProfile{}, fmt.Errorf("cultural %s: %w", country, ErrUnknownCountry)
	}
	return p, nil
}

// Economic returns the built-in economic profile.
func (StaticProfiles) Economic(_ context.Context, country string) (EconomicProfile, error) {
	p, ok := economicTable[strings.ToUpper(country)]
	if !ok {
		return EconomicProfile{}, fmt.Errorf("economic %s: %w", country, ErrUnknownCountry)
	}
	return p, nil
}

// Geopolitical returns the built-in geopolitical profile.
func (StaticProfiles) Geopolitical(_ context.Context, country string) (GeopoliticalProfile, error) {
	p, ok := geopoliticalTable[strings.ToUpper(country)]
	if !ok {
		return GeopoliticalProfile{}, fmt.Errorf("geopolitical %s: %w", country, ErrUnknownCountry)
	}
	return p, nil
}

// #endregion static-profiles

// #region http

// getJSON performs a GET and decodes a 200 response into out.
func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// #endregion http

// #region openweather

// OpenWeatherClient reads current conditions, air pollution and UV index
// from an OpenWeather-compatible API.
type OpenWeatherClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewOpenWeatherClient creates a client. timeout bounds each request.
func NewOpenWeatherClient(baseURL, apiKey string, timeout time.Duration) *OpenWeatherClient {
	return &OpenWeatherClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type owCurrent struct {
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
}

type owAir struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}

type owUV struct {
	Value float64 `json:"value"`
}

func (c *OpenWeatherClient) endpoint(path string, loc Location, extra url.Values) string {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.4f", loc.Latitude))
	q.Set("lon", fmt.Sprintf("%.4f", loc.Longitude))
	q.Set("appid", c.apiKey)
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return c.baseURL + path + "?" + q.Encode()
}

// CurrentWeather fetches the observation. Air quality and UV are best
// effort: their failures leave the fields at zero.
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, loc Location) (WeatherReading, error) {
	if c.apiKey == "" {
		return WeatherReading{}, errors.New("weather api key not configured")
	}

	var cur owCurrent
	if err := getJSON(ctx, c.http, c.endpoint("/data/2.5/weather", loc, url.Values{"units": {"metric"}}), &cur); err != nil {
		return WeatherReading{}, fmt.Errorf("current weather: %w", err)
	}
	reading := WeatherReading{
		Temperature: cur.Main.Temp,
		Humidity:    cur.Main.Humidity,
	}
	if len(cur.Weather) > 0 {
		reading.ConditionID = cur.Weather[0].ID
		reading.Description = cur.Weather[0].Description
	}

	var air owAir
	if err := getJSON(ctx, c.http, c.endpoint("/data/2.5/air_pollution", loc, nil), &air); err == nil && len(air.List) > 0 {
		reading.AirQuality = usAQIFromIndex(air.List[0].Main.AQI)
	}
	var uv owUV
	if err := getJSON(ctx, c.http, c.endpoint("/data/2.5/uvi", loc, nil), &uv); err == nil {
		reading.UVIndex = uv.Value
	}
	return reading, nil
}

// usAQIFromIndex maps OpenWeather's 1–5 index to a representative US AQI.
func usAQIFromIndex(idx int) int {
	switch idx {
	case 1:
		return 25
	case 2:
		return 75
	case 3:
		return 125
	case 4:
		return 175
	case 5:
		return 250
	}
	return 0
}

// #endregion openweather

// #region profile-client

// ProfileClient fetches country profiles from a JSON service laid out as
// {base}/v1/profiles/{category}/{country}.
type ProfileClient struct {
	baseURL string
	http    *http.Client
}

// NewProfileClient creates a client. timeout bounds each request.
func NewProfileClient(baseURL string, timeout time.Duration) *ProfileClient {
	return &ProfileClient{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: timeout}}
}

func (c *ProfileClient) url(cat Category, country string) string {
	return fmt.Sprintf("%s/v1/profiles/%s/%s", c.baseURL, cat, url.PathEscape(strings.ToUpper(country)))
}

// Cultural fetches the cultural profile.
func (c *ProfileClient) Cultural(ctx context.Context, country string) (CulturalProfile, error) {
	var p CulturalProfile
	if err := getJSON(ctx, c.http, c.url(CategoryCultural, country), &p); err != nil {
		return CulturalProfile{}, fmt.Errorf("cultural profile: %w", err)
	}
	return p, nil
}

// Economic fetches the economic profile.
func (c *ProfileClient) Economic(ctx context.Context, country string) (EconomicProfile, error) {
	var p EconomicProfile
	if err := getJSON(ctx, c.http, c.url(CategoryEconomic, country), &p); err != nil {
		return EconomicProfile{}, fmt.Errorf("economic profile: %w", err)
	}
	return p, nil
}

// Geopolitical fetches the geopolitical profile.
func (c *ProfileClient) Geopolitical(ctx context.Context, country string) (GeopoliticalProfile, error) {
	var p GeopoliticalProfile
	if err := getJSON(ctx, c.http, c.url(CategoryGeopolitical, country), &p); err != nil {
		return GeopoliticalProfile{}, fmt.Errorf("geopolitical profile: %w", err)
	}
	return p, nil
}

// #endregion profile-client
