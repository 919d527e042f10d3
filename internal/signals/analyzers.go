package signals

import (
	"strings"

	"github.com/danielpatrickdp/persona-fusion/internal/disposition"
)

// #region facial

// FacialAnalyzer maps categorical facial tags to trait adjustments.
type FacialAnalyzer struct{}

// Analyze starts every trait at 50 and applies the deltas of each recognized
// feature tag, clamping after every adjustment. Unknown features or tags
// contribute nothing.
func (FacialAnalyzer) Analyze(features FacialFeatures) disposition.Vector {
	vec := disposition.Neutral()
	normalized := make(map[string]string, len(features))
	for k, v := range features {
		normalized[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	for _, feature := range facialFeatureOrder {
		tag, ok := normalized[feature]
		if !ok {
			continue
		}
		vec = applyClamped(vec, facialTable[feature][tag])
	}
	return vec
}

// #endregion facial

// #region text

// TextAnalyzer maps keywords and punctuation in free text to adjustments.
type TextAnalyzer struct{}

// Analyze starts every trait at 50. Every keyword found (case-insensitive
// substring) applies once; '?' and '!' each apply once when present.
func (TextAnalyzer) Analyze(text string) disposition.Vector {
	vec := disposition.Neutral()
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return vec
	}
	for _, rule := range textKeywords {
		if strings.Contains(lower, rule.keyword) {
			vec = applyClamped(vec, rule.deltas)
		}
	}
	if strings.ContainsAny(lower, "?？") {
		vec = applyClamped(vec, questionDeltas)
	}
	if strings.ContainsAny(lower, "!！") {
		vec = applyClamped(vec, exclamationDeltas)
	}
	return vec
}

// #endregion text

// #region environment

// EnvironmentAnalyzer maps weather, time of day and season to adjustments.
// Its output is an offset layer: it starts at 0 and is never clamped.
type EnvironmentAnalyzer struct{}

// Analyze sums the deltas of every recognized condition.
func (EnvironmentAnalyzer) Analyze(c Conditions) disposition.Vector {
	vec := disposition.Zero()
	vec = applyRaw(vec, weatherTable[Weather(normalize(string(c.Weather)))])
	vec = applyRaw(vec, timeTable[TimeOfDay(normalize(string(c.TimeOfDay)))])
	season := normalize(string(c.Season))
	if season == "fall" {
		season = string(Autumn)
	}
	vec = applyRaw(vec, seasonTable[Season(season)])
	return vec
}

// #endregion environment

// #region producer

// ProduceInput carries whatever sources one observation supplied.
// A nil Facial map, nil Text or nil Conditions marks the source as absent.
type ProduceInput struct {
	Facial     FacialFeatures
	Text       *string
	Conditions *Conditions
}

// Producer runs all three analyzers over one observation.
type Producer struct {
	facial FacialAnalyzer
	text   TextAnalyzer
	env    EnvironmentAnalyzer
}

// NewProducer creates a Producer with the built-in tables.
func NewProducer() *Producer {
	return &Producer{}
}

// Produce analyzes every present source. Absent sources stay nil in the
// returned Readings so the caller decides the default explicitly.
func (p *Producer) Produce(input ProduceInput) Readings {
	var r Readings
	if input.Facial != nil {
		v := p.facial.Analyze(input.Facial)
		r.Facial = &v
	}
	if input.Text != nil {
		v := p.text.Analyze(*input.Text)
		r.Text = &v
	}
	if input.Conditions != nil {
		v := p.env.Analyze(*input.Conditions)
		r.Environment = &v
	}
	return r
}

// #endregion producer

// #region helpers

func applyClamped(vec disposition.Vector, deltas []Delta) disposition.Vector {
	for _, dl := range deltas {
		vec = vec.Adjust(dl.Trait, dl.Amount)
	}
	return vec
}

func applyRaw(vec disposition.Vector, deltas []Delta) disposition.Vector {
	for _, dl := range deltas {
		vec = vec.Add(dl.Trait, dl.Amount)
	}
	return vec
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// #endregion helpers
