package signals

import "time"

// #region derive

// WeatherFromConditionID buckets an OpenWeather-style condition code.
// Unknown codes map to "" (no adjustment).
func WeatherFromConditionID(id int) Weather {
	switch {
	case id >= 200 && id < 300:
		return WeatherStormy
	case id >= 300 && id < 600:
		return WeatherRainy
	case id >= 600 && id < 700:
		return WeatherSnowy
	case id >= 700 && id < 800:
		return WeatherFoggy
	case id == 800:
		return WeatherClear
	case id > 800 && id < 900:
		return WeatherCloudy
	}
	return ""
}

// TimeOfDayFor buckets a local hour: 5–11 morning, 12–16 afternoon,
// 17–20 evening, otherwise night.
func TimeOfDayFor(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	}
	return Night
}

// SeasonFor returns the meteorological season for a month, flipped for the
// southern hemisphere.
func SeasonFor(month time.Month, southern bool) Season {
	var s Season
	switch month {
	case time.March, time.April, time.May:
		s = Spring
	case time.June, time.July, time.August:
		s = Summer
	case time.September, time.October, time.November:
		s = Autumn
	default:
		s = Winter
	}
	if !southern {
		return s
	}
	switch s {
	case Spring:
		return Autumn
	case Summer:
		return Winter
	case Autumn:
		return Spring
	}
	return Summer
}

// DeriveConditions builds Conditions from a weather code, the local time of
// the observation and the observer's latitude.
func DeriveConditions(conditionID int, local time.Time, latitude float64) Conditions {
	return Conditions{
		Weather:   WeatherFromConditionID(conditionID),
		TimeOfDay: TimeOfDayFor(local.Hour()),
		Season:    SeasonFor(local.Month(), latitude < 0),
	}
}

// #endregion derive
