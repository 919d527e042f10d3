package disposition

import (
	"encoding/json"
	"fmt"
	"strings"
)

// #region trait

// Trait identifies one of the five bipolar disposition dimensions.
// A score of 100 leans fully toward the first pole named in the comment.
type Trait int

const (
	Thinking     Trait = iota // thinking ↔ feeling
	Introversion              // introversion ↔ extroversion
	Driving                   // driving ↔ cooperative
	Practical                 // practical ↔ idealistic
	Stable                    // stable ↔ changeable
)

// NumTraits is the fixed dimensionality of a Vector.
const NumTraits = 5

// Traits lists every trait in canonical order.
var Traits = [NumTraits]Trait{Thinking, Introversion, Driving, Practical, Stable}

var traitNames = [NumTraits]string{"thinking", "introversion", "driving", "practical", "stable"}

// String returns the trait's wire name.
func (t Trait) String() string {
	if t < 0 || int(t) >= NumTraits {
		return fmt.Sprintf("trait(%d)", int(t))
	}
	return traitNames[t]
}

// ParseTrait resolves a wire name (case-insensitive) to a Trait.
func ParseTrait(name string) (Trait, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, n := range traitNames {
		if n == lower {
			return Trait(i), true
		}
	}
	return 0, false
}

// #endregion trait

// #region bounds

const (
	MinScore     = 0
	MaxScore     = 100
	NeutralScore = 50
)

// Clamp restricts a score to [MinScore, MaxScore].
func Clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// #endregion bounds

// #region vector

// Vector holds one score per trait. It is a value type: every method
// returns a new Vector and leaves the receiver untouched.
type Vector [NumTraits]int

// Neutral returns the vector with every trait at NeutralScore.
func Neutral() Vector {
	var v Vector
	for i := range v {
		v[i] = NeutralScore
	}
	return v
}

// Zero returns the all-zero adjustment vector.
func Zero() Vector {
	return Vector{}
}

// Get returns the score for t.
func (v Vector) Get(t Trait) int {
	return v[t]
}

// With returns a copy of v with t set to score (clamped).
func (v Vector) With(t Trait, score int) Vector {
	v[t] = Clamp(score)
	return v
}

// Adjust returns a copy of v with delta applied to t, clamped to [0,100].
func (v Vector) Adjust(t Trait, delta int) Vector {
	v[t] = Clamp(v[t] + delta)
	return v
}

// Add returns a copy of v with delta applied to t without clamping.
// Used by adjustment layers whose values are offsets, not scores.
func (v Vector) Add(t Trait, delta int) Vector {
	v[t] += delta
	return v
}

// Clamped returns a copy of v with every trait clamped to [0,100].
func (v Vector) Clamped() Vector {
	for i := range v {
		v[i] = Clamp(v[i])
	}
	return v
}

// Map returns the vector keyed by trait wire name.
func (v Vector) Map() map[string]int {
	m := make(map[string]int, NumTraits)
	for _, t := range Traits {
		m[t.String()] = v[t]
	}
	return m
}

// FromMap builds a vector from wire names. Missing traits take fill;
// unknown names are ignored.
func FromMap(m map[string]int, fill int) Vector {
	var v Vector
	for i := range v {
		v[i] = fill
	}
	for name, score := range m {
		if t, ok := ParseTrait(name); ok {
			v[t] = score
		}
	}
	return v
}

// String renders the vector as "thinking=50 introversion=50 ...".
func (v Vector) String() string {
	parts := make([]string, 0, NumTraits)
	for _, t := range Traits {
		parts = append(parts, fmt.Sprintf("%s=%d", t, v[t]))
	}
	return strings.Join(parts, " ")
}

// MarshalJSON encodes the vector as an object keyed by trait name.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON decodes an object keyed by trait name. Absent traits are 0.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode disposition vector: %w", err)
	}
	*v = FromMap(m, 0)
	return nil
}

// #endregion vector
