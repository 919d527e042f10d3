package environment

// #region fallback

// fallbackReading is the fixed default observation: 20°C, 50% humidity, clear.
var fallbackReading = WeatherReading{
	Temperature: 20,
	Humidity:    50,
	UVIndex:     3,
	AirQuality:  50,
	ConditionID: 800,
	Description: "clear sky",
}

// FallbackWeather returns the default weather used when the provider fails.
func FallbackWeather() WeatherData {
	return DeriveWeather(fallbackReading)
}

// FallbackCultural returns a generic profile for country.
func FallbackCultural(country string) CulturalProfile {
	return CulturalProfile{
		Country:            country,
		Language:           "en",
		CommunicationStyle: "neutral",
		Values:             []string{"respect", "courtesy"},
		Observances:        []string{},
	}
}

// FallbackEconomic returns a neutral economic profile for country.
func FallbackEconomic(country string) EconomicProfile {
	return EconomicProfile{
		Country:           country,
		Currency:          "USD",
		InflationRate:     2.0,
		ConsumerSentiment: 50,
		Trend:             "stable",
	}
}

// FallbackGeopolitical returns a neutral stability profile for country.
func FallbackGeopolitical(country string) GeopoliticalProfile {
	return GeopoliticalProfile{
		Country:        country,
		StabilityIndex: 70,
		AdvisoryLevel:  1,
		Alerts:         []string{},
	}
}

// #endregion fallback
