package advisor

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/persona-fusion/internal/environment"
)

// #region types

// Recommendations are categorized suggestions for one persona in one context.
type Recommendations struct {
	PersonaCode  string   `json:"persona_code"`
	Immediate    []string `json:"immediate"`
	Lifestyle    []string `json:"lifestyle"`
	Cultural     []string `json:"cultural"`
	Economic     []string `json:"economic"`
	MentalHealth []string `json:"mental_health"`
}

// personaGuide holds the archetype-specific lines.
type personaGuide struct {
	lifestyle    []string
	mentalHealth []string
	spending     string
	social       string
	badWeather   string
}

var guides = map[string]personaGuide{
	"MG": {
		lifestyle:    []string{"Protect a quiet block of time for reflective work", "Keep a short evening journal"},
		mentalHealth: []string{"Schedule solitude before you feel drained", "Share one worry with a trusted person this week"},
		spending:     "Favor durable purchases you have researched",
		social:       "Choose one-to-one conversations over large gatherings",
		badWeather:   "Use the indoor day for reading or a long-form project",
	},
	"SC": {
		lifestyle:    []string{"Set three priorities for the day and close them out", "Block recovery time after intense meetings"},
		mentalHealth: []string{"Delegate one task you would normally hold on to", "Take a screen-free walk between decisions"},
		spending:     "Review investments against your long-term plan",
		social:       "Lead with questions before giving direction",
		badWeather:   "Move outdoor commitments to calls and keep momentum",
	},
	"RE": {
		lifestyle:    []string{"Try one new place or activity this week", "Pair spontaneity with a simple daily anchor"},
		mentalHealth: []string{"Notice when excitement turns into restlessness", "Sleep on impulsive commitments"},
		spending:     "Set a fixed budget for experiences before you go out",
		social:       "Invite friends to something you have never done together",
		badWeather:   "Explore an indoor venue you have not visited yet",
	},
	"HD": {
		lifestyle:    []string{"Spend time on a creative hobby without a goal", "Keep a loose weekly rhythm rather than a strict plan"},
		mentalHealth: []string{"Write down feelings before they pile up", "Set gentle boundaries with people who drain you"},
		spending:     "Budget for small comforts that restore you",
		social:       "Reconnect with a friend who shares your values",
		badWeather:   "Make the rainy day a cozy creative session",
	},
}

// defaultGuide covers unknown codes.
var defaultGuide = personaGuide{
	lifestyle:    []string{"Keep a steady sleep and meal routine"},
	mentalHealth: []string{"Take short breaks and check in with how you feel"},
	spending:     "Track spending for a week before changing habits",
	social:       "Stay in touch with people who energize you",
	badWeather:   "Plan something pleasant indoors",
}

// #endregion types

// #region generate

// GenerateComprehensiveRecommendations combines an archetype code with an
// environmental context. It performs no I/O.
func GenerateComprehensiveRecommendations(code string, ctx environment.Context) Recommendations {
	g, ok := guides[strings.ToUpper(code)]
	if !ok {
		g = defaultGuide
	}
	w := ctx.Weather
	rec := Recommendations{PersonaCode: strings.ToUpper(code)}

	// immediate: weather-driven and time sensitive
	switch w.RiskLevel {
	case environment.RiskHigh:
		rec.Immediate = append(rec.Immediate, fmt.Sprintf("Weather risk is high (score %d): limit time outdoors today", w.RiskScore))
	case environment.RiskMedium:
		rec.Immediate = append(rec.Immediate, fmt.Sprintf("Weather risk is moderate (score %d): take precautions outside", w.RiskScore))
	}
	rec.Immediate = append(rec.Immediate, w.Impacts.Health...)
	if len(w.Impacts.Skincare) > 0 {
		rec.Immediate = append(rec.Immediate, w.Impacts.Skincare[0])
	}

	rec.Lifestyle = append(rec.Lifestyle, g.lifestyle...)
	if precipitating(w.Reading.ConditionID) || w.RiskLevel == environment.RiskHigh {
		rec.Lifestyle = append(rec.Lifestyle, g.badWeather)
	}
	rec.Lifestyle = append(rec.Lifestyle, w.Impacts.Activity...)

	c := ctx.Cultural
	rec.Cultural = append(rec.Cultural, g.social)
	if c.CommunicationStyle != "" {
		rec.Cultural = append(rec.Cultural, fmt.Sprintf("Local communication tends to be %s; adjust how directly you speak", c.CommunicationStyle))
	}
	if len(c.Values) > 0 {
		rec.Cultural = append(rec.Cultural, fmt.Sprintf("Valued here: %s", strings.Join(c.Values, ", ")))
	}
	if len(c.Observances) > 0 {
		rec.Cultural = append(rec.Cultural, fmt.Sprintf("Plan around local observances such as %s", c.Observances[0]))
	}

	e := ctx.Economic
	rec.Economic = append(rec.Economic, g.spending)
	switch {
	case e.InflationRate >= 4:
		rec.Economic = append(rec.Economic, fmt.Sprintf("Inflation is high at %.1f%%: prioritize essentials", e.InflationRate))
	case e.InflationRate >= 2.5:
		rec.Economic = append(rec.Economic, fmt.Sprintf("Inflation is %.1f%%: compare prices before large purchases", e.InflationRate))
	}
	switch e.Trend {
	case "declining":
		rec.Economic = append(rec.Economic, "The economy is softening; keep an emergency fund")
	case "growing":
		rec.Economic = append(rec.Economic, "The economy is growing; a good time to invest in skills")
	}

	rec.MentalHealth = append(rec.MentalHealth, g.mentalHealth...)
	rec.MentalHealth = append(rec.MentalHealth, w.Impacts.Mood...)
	geo := ctx.Geopolitical
	if geo.AdvisoryLevel >= 3 || (geo.StabilityIndex > 0 && geo.StabilityIndex < 50) {
		rec.MentalHealth = append(rec.MentalHealth, "Limit news intake to set times to manage stress")
	}
	if ctx.Degraded {
		rec.MentalHealth = append(rec.MentalHealth, "Some local data is unavailable; treat these suggestions as general guidance")
	}
	return rec
}

func precipitating(conditionID int) bool {
	return conditionID >= 200 && conditionID < 700
}

// #endregion generate

// #region render

// Render formats recommendations as a labeled plain-text block.
func Render(rec Recommendations) string {
	var b strings.Builder
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(fmt.Sprintf("[%s]\n", title))
		for _, it := range items {
			b.WriteString(fmt.Sprintf("- %s\n", it))
		}
	}
	section("IMMEDIATE", rec.Immediate)
	section("LIFESTYLE", rec.Lifestyle)
	section("CULTURAL", rec.Cultural)
	section("ECONOMIC", rec.Economic)
	section("MENTAL HEALTH", rec.MentalHealth)
	return b.String()
}

// #endregion render
