package environment

// #region risk

// RiskScore adds fixed points for each threshold crossed by the reading.
func RiskScore(r WeatherReading) int {
	score := 0
	switch {
	case r.UVIndex >= 8:
		score += 3
	case r.UVIndex >= 6:
		score += 2
	case r.UVIndex >= 3:
		score++
	}
	switch {
	case r.AirQuality > 150:
		score += 3
	case r.AirQuality > 100:
		score += 2
	case r.AirQuality > 50:
		score++
	}
	switch {
	case r.Temperature >= 35 || r.Temperature <= -10:
		score += 2
	case r.Temperature >= 30 || r.Temperature <= 0:
		score++
	}
	return score
}

// RiskLevelFor buckets a score: >=5 high, >=3 medium, otherwise low.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= 5:
		return RiskHigh
	case score >= 3:
		return RiskMedium
	}
	return RiskLow
}

// #endregion risk

// #region impacts

func precipitating(conditionID int) bool {
	return conditionID >= 200 && conditionID < 700
}

func overcast(conditionID int) bool {
	return precipitating(conditionID) || (conditionID > 800 && conditionID < 900)
}

// ComputeImpacts derives skincare, activity, mood and health guidance.
func ComputeImpacts(r WeatherReading) Impacts {
	var im Impacts

	switch {
	case r.UVIndex >= 6:
		im.Skincare = append(im.Skincare, "Apply broad-spectrum SPF 50+ and reapply every two hours")
	case r.UVIndex >= 3:
		im.Skincare = append(im.Skincare, "Use SPF 30 sunscreen outdoors")
	}
	if r.Humidity < 30 {
		im.Skincare = append(im.Skincare, "Use a rich moisturizer; the air is dry")
	} else if r.Humidity > 70 {
		im.Skincare = append(im.Skincare, "Choose lightweight, oil-control skincare")
	}
	if r.AirQuality > 100 {
		im.Skincare = append(im.Skincare, "Double-cleanse in the evening to remove pollutants")
	}
	if len(im.Skincare) == 0 {
		im.Skincare = []string{"Keep your regular skincare routine"}
	}

	switch {
	case r.AirQuality > 150:
		im.Activity = append(im.Activity, "Stay indoors and skip outdoor exercise")
	case r.AirQuality > 100:
		im.Activity = append(im.Activity, "Limit strenuous outdoor activity")
	}
	if r.Temperature >= 30 {
		im.Activity = append(im.Activity, "Exercise in the early morning or evening")
	} else if r.Temperature <= 0 {
		im.Activity = append(im.Activity, "Layer up before going outside")
	}
	if precipitating(r.ConditionID) {
		im.Activity = append(im.Activity, "Plan indoor activities")
	}
	if len(im.Activity) == 0 {
		im.Activity = []string{"Good conditions for outdoor activity"}
	}

	if overcast(r.ConditionID) {
		im.Mood = append(im.Mood, "Seek bright light to lift your mood")
	} else if r.ConditionID == 800 {
		im.Mood = append(im.Mood, "Spend time outside in the daylight")
	}
	if r.Temperature >= 33 || r.Temperature <= -5 {
		im.Mood = append(im.Mood, "Extreme temperatures shorten patience; pace yourself")
	}
	if len(im.Mood) == 0 {
		im.Mood = []string{"Conditions are neutral for mood"}
	}

	if r.AirQuality > 100 {
		im.Health = append(im.Health, "Wear a KF94 or N95 mask outdoors")
	}
	if r.UVIndex >= 8 {
		im.Health = append(im.Health, "Avoid direct sun around midday")
	}
	if r.Temperature >= 33 {
		im.Health = append(im.Health, "Hydrate frequently to prevent heat illness")
	} else if r.Temperature <= -5 {
		im.Health = append(im.Health, "Watch for signs of frostbite")
	}
	if r.Humidity < 30 {
		im.Health = append(im.Health, "Drink water often; dry air irritates airways")
	}
	if len(im.Health) == 0 {
		im.Health = []string{"No special health precautions"}
	}
	return im
}

// #endregion impacts

// #region derive

// DeriveWeather attaches impacts and risk to a reading.
func DeriveWeather(r WeatherReading) WeatherData {
	score := RiskScore(r)
	return WeatherData{
		Reading:   r,
		Impacts:   ComputeImpacts(r),
		RiskScore: score,
		RiskLevel: RiskLevelFor(score),
	}
}

// #endregion derive
