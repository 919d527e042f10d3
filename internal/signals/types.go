package signals

import (
	"github.com/danielpatrickdp/persona-fusion/internal/disposition"
)

// #region delta

// Delta is a fixed signed adjustment applied to one trait.
type Delta struct {
	Trait  disposition.Trait
	Amount int
}

func d(t disposition.Trait, amount int) Delta {
	return Delta{Trait: t, Amount: amount}
}

// #endregion delta

// #region facial-input

// FacialFeatures maps a facial feature name to its derived tag,
// e.g. {"eyes": "bright"}. Tags arrive already extracted upstream.
type FacialFeatures map[string]string

// facialFeatureOrder fixes the application order so clamping is deterministic.
var facialFeatureOrder = []string{"eyes", "mouth", "forehead", "jaw", "overall"}

// facialTable holds feature → tag → deltas.
var facialTable = map[string]map[string][]Delta{
	"eyes": {
		"bright": {d(disposition.Introversion, -10), d(disposition.Driving, 5)},
		"deep":   {d(disposition.Thinking, 10), d(disposition.Introversion, 20)},
		"gentle": {d(disposition.Thinking, -10), d(disposition.Driving, -5)},
		"sharp":  {d(disposition.Thinking, 10), d(disposition.Driving, 10)},
	},
	"mouth": {
		"soft":    {d(disposition.Introversion, 10), d(disposition.Driving, -10)},
		"firm":    {d(disposition.Driving, 15), d(disposition.Stable, 5)},
		"smiling": {d(disposition.Introversion, -15), d(disposition.Thinking, -5)},
		"wide":    {d(disposition.Introversion, -10), d(disposition.Practical, -5)},
	},
	"forehead": {
		"high":   {d(disposition.Thinking, 10), d(disposition.Practical, -10)},
		"broad":  {d(disposition.Practical, 10), d(disposition.Stable, 5)},
		"narrow": {d(disposition.Practical, 5), d(disposition.Thinking, -5)},
	},
	"jaw": {
		"round":   {d(disposition.Driving, -10), d(disposition.Stable, 10)},
		"square":  {d(disposition.Driving, 15), d(disposition.Practical, 5)},
		"pointed": {d(disposition.Stable, -10), d(disposition.Practical, -5)},
	},
	"overall": {
		"thoughtful": {d(disposition.Thinking, 10), d(disposition.Introversion, 20), d(disposition.Stable, 10)},
		"energetic":  {d(disposition.Introversion, -20), d(disposition.Stable, -10), d(disposition.Driving, 10)},
		"calm":       {d(disposition.Stable, 15), d(disposition.Introversion, 5)},
		"warm":       {d(disposition.Thinking, -15), d(disposition.Introversion, -5), d(disposition.Driving, -5)},
		"confident":  {d(disposition.Driving, 15), d(disposition.Introversion, -10)},
	},
}

// #endregion facial-input

// #region text-input

// keywordRule applies its deltas once when keyword occurs anywhere in the text.
type keywordRule struct {
	keyword string
	deltas  []Delta
}

// textKeywords are matched case-insensitively as substrings. Every hit applies.
var textKeywords = []keywordRule{
	// thinking ↔ feeling
	{"분석", []Delta{d(disposition.Thinking, 15)}},
	{"논리", []Delta{d(disposition.Thinking, 15)}},
	{"analy", []Delta{d(disposition.Thinking, 15)}},
	{"logic", []Delta{d(disposition.Thinking, 15)}},
	{"감정", []Delta{d(disposition.Thinking, -15)}},
	{"느낌", []Delta{d(disposition.Thinking, -10)}},
	{"feel", []Delta{d(disposition.Thinking, -10)}},

	// introversion ↔ extroversion
	{"혼자", []Delta{d(disposition.Introversion, 15)}},
	{"조용", []Delta{d(disposition.Introversion, 10)}},
	{"alone", []Delta{d(disposition.Introversion, 15)}},
	{"quiet", []Delta{d(disposition.Introversion, 10)}},
	{"친구", []Delta{d(disposition.Introversion, -10)}},
	{"모임", []Delta{d(disposition.Introversion, -15)}},
	{"party", []Delta{d(disposition.Introversion, -15)}},
	{"friends", []Delta{d(disposition.Introversion, -10)}},

	// driving ↔ cooperative
	{"목표", []Delta{d(disposition.Driving, 15)}},
	{"리더", []Delta{d(disposition.Driving, 15)}},
	{"적극", []Delta{d(disposition.Driving, 10)}},
	{"goal", []Delta{d(disposition.Driving, 15)}},
	{"lead", []Delta{d(disposition.Driving, 15)}},
	{"협력", []Delta{d(disposition.Driving, -15)}},
	{"함께", []Delta{d(disposition.Driving, -10)}},
	{"together", []Delta{d(disposition.Driving, -10)}},

	// practical ↔ idealistic
	{"체계", []Delta{d(disposition.Practical, 10)}},
	{"현실", []Delta{d(disposition.Practical, 15)}},
	{"계획", []Delta{d(disposition.Practical, 10)}},
	{"plan", []Delta{d(disposition.Practical, 10)}},
	{"practical", []Delta{d(disposition.Practical, 15)}},
	{"꿈", []Delta{d(disposition.Practical, -15)}},
	{"상상", []Delta{d(disposition.Practical, -15)}},
	{"dream", []Delta{d(disposition.Practical, -15)}},
	{"imagin", []Delta{d(disposition.Practical, -15)}},

	// stable ↔ changeable
	{"안정", []Delta{d(disposition.Stable, 15)}},
	{"꾸준", []Delta{d(disposition.Stable, 10)}},
	{"stable", []Delta{d(disposition.Stable, 15)}},
	{"routine", []Delta{d(disposition.Stable, 10)}},
	{"변화", []Delta{d(disposition.Stable, -15)}},
	{"모험", []Delta{d(disposition.Stable, -15)}},
	{"change", []Delta{d(disposition.Stable, -10)}},
	{"adventure", []Delta{d(disposition.Stable, -15)}},
}

var (
	questionDeltas    = []Delta{d(disposition.Thinking, 5), d(disposition.Introversion, 5)}
	exclamationDeltas = []Delta{d(disposition.Driving, 5), d(disposition.Introversion, -5)}
)

// #endregion text-input

// #region environment-input

// Weather is the coarse sky condition fed to the environment analyzer.
type Weather string

const (
	WeatherSunny  Weather = "sunny"
	WeatherClear  Weather = "clear"
	WeatherCloudy Weather = "cloudy"
	WeatherRainy  Weather = "rainy"
	WeatherSnowy  Weather = "snowy"
	WeatherStormy Weather = "stormy"
	WeatherFoggy  Weather = "foggy"
)

// TimeOfDay buckets the local hour.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// Season is the meteorological season at the observer's location.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// Conditions describes the ambient environment during an observation.
// Empty fields contribute no adjustment.
type Conditions struct {
	Weather   Weather   `json:"weather,omitempty" yaml:"weather,omitempty"`
	TimeOfDay TimeOfDay `json:"time_of_day,omitempty" yaml:"time_of_day,omitempty"`
	Season    Season    `json:"season,omitempty" yaml:"season,omitempty"`
}

var weatherTable = map[Weather][]Delta{
	WeatherSunny:  {d(disposition.Introversion, -10), d(disposition.Stable, 5)},
	WeatherClear:  {d(disposition.Introversion, -10), d(disposition.Stable, 5)},
	WeatherCloudy: {d(disposition.Introversion, 5), d(disposition.Thinking, 5)},
	WeatherRainy:  {d(disposition.Introversion, 10), d(disposition.Thinking, 5), d(disposition.Driving, -5)},
	WeatherSnowy:  {d(disposition.Introversion, 5), d(disposition.Stable, -5), d(disposition.Practical, -5)},
	WeatherStormy: {d(disposition.Stable, -10), d(disposition.Driving, 5)},
	WeatherFoggy:  {d(disposition.Thinking, -5), d(disposition.Practical, -5)},
}

var timeTable = map[TimeOfDay][]Delta{
	Morning:   {d(disposition.Driving, 10), d(disposition.Practical, 5)},
	Afternoon: {d(disposition.Practical, 5)},
	Evening:   {d(disposition.Thinking, -5), d(disposition.Introversion, 5)},
	Night:     {d(disposition.Introversion, 10), d(disposition.Practical, -10)},
}

var seasonTable = map[Season][]Delta{
	Spring: {d(disposition.Stable, -5), d(disposition.Practical, -5), d(disposition.Introversion, -5)},
	Summer: {d(disposition.Introversion, -10), d(disposition.Driving, 5)},
	Autumn: {d(disposition.Thinking, 5), d(disposition.Introversion, 5)},
	Winter: {d(disposition.Introversion, 10), d(disposition.Stable, 5)},
}

// #endregion environment-input

// #region readings

// Readings bundles the per-source vectors of one observation. A nil entry
// means the source supplied no input at all.
type Readings struct {
	Facial      *disposition.Vector
	Text        *disposition.Vector
	Environment *disposition.Vector
}

// #endregion readings
