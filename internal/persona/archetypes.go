package persona

import (
	"fmt"

	"github.com/danielpatrickdp/persona-fusion/internal/disposition"
)

// #region types

// Range is an inclusive [Min, Max] band on one trait.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether score lies within the band.
func (r Range) Contains(score int) bool {
	return score >= r.Min && score <= r.Max
}

// Distance returns how far score lies outside the band (0 when inside).
func (r Range) Distance(score int) int {
	switch {
	case score < r.Min:
		return r.Min - score
	case score > r.Max:
		return score - r.Max
	}
	return 0
}

// Archetype is one fixed persona category. Values are immutable; the set is
// declared once in archetypes below.
type Archetype struct {
	Code           string                       `json:"code"`
	Name           string                       `json:"name"`
	LocalizedName  string                       `json:"localized_name"`
	Description    string                       `json:"description"`
	Ranges         [disposition.NumTraits]Range `json:"ranges"`
	BaseConfidence float64                      `json:"base_confidence"`
}

// Range returns the archetype's band for t.
func (a Archetype) Range(t disposition.Trait) Range {
	return a.Ranges[t]
}

// #endregion types

// #region taxonomy

const (
	CodeMindfulGuardian    = "MG"
	CodeStrategicCommander = "SC"
	CodeRadiantExplorer    = "RE"
	CodeHarmoniousDreamer  = "HD"
)

// archetypes is the fixed taxonomy in declaration order. Order is the
// tie-break when two archetypes match equally well.
var archetypes = []Archetype{
	{
		Code:          CodeMindfulGuardian,
		Name:          "Mindful Guardian",
		LocalizedName: "마인드풀 가디언",
		Description:   "Reflective and analytical, recharges alone, values steady routines and careful judgment.",
		Ranges: [disposition.NumTraits]Range{
			disposition.Thinking:     {60, 100},
			disposition.Introversion: {70, 100},
			disposition.Driving:      {0, 50},
			disposition.Practical:    {30, 70},
			disposition.Stable:       {50, 100},
		},
		BaseConfidence: 0.80,
	},
	{
		Code:          CodeStrategicCommander,
		Name:          "Strategic Commander",
		LocalizedName: "전략적 지휘관",
		Description:   "Goal-driven and outgoing, plans concretely and takes the lead under pressure.",
		Ranges: [disposition.NumTraits]Range{
			disposition.Thinking:     {55, 100},
			disposition.Introversion: {0, 45},
			disposition.Driving:      {60, 100},
			disposition.Practical:    {55, 100},
			disposition.Stable:       {40, 90},
		},
		BaseConfidence: 0.75,
	},
	{
		Code:          CodeRadiantExplorer,
		Name:          "Radiant Explorer",
		LocalizedName: "빛나는 탐험가",
		Description:   "Warm and sociable, chases novelty and imagines possibilities before plans.",
		Ranges: [disposition.NumTraits]Range{
			disposition.Thinking:     {0, 45},
			disposition.Introversion: {0, 40},
			disposition.Driving:      {40, 80},
			disposition.Practical:    {0, 50},
			disposition.Stable:       {0, 45},
		},
		BaseConfidence: 0.70,
	},
	{
		Code:          CodeHarmoniousDreamer,
		Name:          "Harmonious Dreamer",
		LocalizedName: "조화로운 몽상가",
		Description:   "Empathetic and inward, cooperative by nature, guided by ideals more than schedules.",
		Ranges: [disposition.NumTraits]Range{
			disposition.Thinking:     {0, 45},
			disposition.Introversion: {55, 100},
			disposition.Driving:      {0, 45},
			disposition.Practical:    {0, 45},
			disposition.Stable:       {30, 75},
		},
		BaseConfidence: 0.72,
	},
}

func init() {
	if err := Validate(archetypes); err != nil {
		panic(fmt.Sprintf("persona: invalid archetype table: %v", err))
	}
}

// Archetypes returns a copy of the taxonomy in declaration order.
func Archetypes() []Archetype {
	out := make([]Archetype, len(archetypes))
	copy(out, archetypes)
	return out
}

// Lookup returns the archetype with the given code.
func Lookup(code string) (Archetype, bool) {
	for _, a := range archetypes {
		if a.Code == code {
			return a, true
		}
	}
	return Archetype{}, false
}

// #endregion taxonomy

// #region validate

// ArchetypeCount is the fixed size of the taxonomy.
const ArchetypeCount = 4

// Validate checks a taxonomy: exact size, unique codes, well-formed bands
// inside [0,100] and a base confidence in [0,1].
func Validate(set []Archetype) error {
	if len(set) != ArchetypeCount {
		return fmt.Errorf("expected %d archetypes, got %d", ArchetypeCount, len(set))
	}
	seen := make(map[string]bool, len(set))
	for _, a := range set {
		if a.Code == "" {
			return fmt.Errorf("archetype %q has empty code", a.Name)
		}
		if seen[a.Code] {
			return fmt.Errorf("duplicate archetype code %q", a.Code)
		}
		seen[a.Code] = true
		for _, t := range disposition.Traits {
			r := a.Ranges[t]
			if r.Min < disposition.MinScore || r.Max > disposition.MaxScore || r.Min > r.Max {
				return fmt.Errorf("archetype %s: bad %s range [%d,%d]", a.Code, t, r.Min, r.Max)
			}
		}
		if a.BaseConfidence < 0 || a.BaseConfidence > 1 {
			return fmt.Errorf("archetype %s: base confidence %.2f outside [0,1]", a.Code, a.BaseConfidence)
		}
	}
	return nil
}

// #endregion validate
