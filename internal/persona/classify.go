package persona

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/persona-fusion/internal/disposition"
)

// #region weights

// Fusion weights per source. They sum to 1.0.
const (
	FacialWeight      = 0.5
	TextWeight        = 0.3
	EnvironmentWeight = 0.2
)

// #endregion weights

// #region inputs

// ErrMissingVector is returned when a fusion term is absent.
var ErrMissingVector = errors.New("missing disposition vector")

// Inputs carries the three analyzer outputs for one classification.
// Every term must be present; callers that lack a source must opt into the
// neutral default through WithDefaults.
type Inputs struct {
	Facial      *disposition.Vector
	Text        *disposition.Vector
	Environment *disposition.Vector
}

// Validate rejects inputs with any absent term.
func (in Inputs) Validate() error {
	switch {
	case in.Facial == nil:
		return fmt.Errorf("facial: %w", ErrMissingVector)
	case in.Text == nil:
		return fmt.Errorf("text: %w", ErrMissingVector)
	case in.Environment == nil:
		return fmt.Errorf("environment: %w", ErrMissingVector)
	}
	return nil
}

// WithDefaults returns a copy with every absent term replaced by the neutral
// vector (all traits 50), so the fusion weights always sum to 1.0.
func (in Inputs) WithDefaults() Inputs {
	out := in
	if out.Facial == nil {
		n := disposition.Neutral()
		out.Facial = &n
	}
	if out.Text == nil {
		n := disposition.Neutral()
		out.Text = &n
	}
	if out.Environment == nil {
		n := disposition.Neutral()
		out.Environment = &n
	}
	return out
}

// #endregion inputs

// #region result

// Result is the outcome of one classification. Owned by the caller.
type Result struct {
	Archetype  Archetype          `json:"archetype"`
	Confidence float64            `json:"confidence"`
	Final      disposition.Vector `json:"final_vector"`
	Scores     map[string]float64 `json:"scores"`
}

// ScoredArchetype pairs an archetype code with its match ratio.
type ScoredArchetype struct {
	Code  string  `json:"code"`
	Ratio float64 `json:"ratio"`
}

// Ranked returns every archetype's ratio, best first. Equal ratios keep
// declaration order.
func (r Result) Ranked() []ScoredArchetype {
	out := make([]ScoredArchetype, 0, len(archetypes))
	for _, a := range archetypes {
		if ratio, ok := r.Scores[a.Code]; ok {
			out = append(out, ScoredArchetype{Code: a.Code, Ratio: ratio})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ratio > out[j].Ratio })
	return out
}

// #endregion result

// #region fuse

// Fuse combines three vectors with the fixed weights, rounding half away
// from zero. The result is clamped to [0,100]; the clamp only bites when the
// environmental offset is negative enough to pull a trait below zero.
func Fuse(facial, text, env disposition.Vector) disposition.Vector {
	var out disposition.Vector
	for _, t := range disposition.Traits {
		raw := float64(facial[t])*FacialWeight + float64(text[t])*TextWeight + float64(env[t])*EnvironmentWeight
		out[t] = disposition.Clamp(int(math.Round(raw)))
	}
	return out
}

// #endregion fuse

// #region match

// MatchRatio scores v against a's bands: 100 points per trait inside its
// band, otherwise max(0, 100 - 2*distance). The sum over 500 is in [0,1].
func MatchRatio(a Archetype, v disposition.Vector) float64 {
	total := 0
	for _, t := range disposition.Traits {
		r := a.Ranges[t]
		if r.Contains(v[t]) {
			total += 100
			continue
		}
		pts := 100 - 2*r.Distance(v[t])
		if pts > 0 {
			total += pts
		}
	}
	return float64(total) / float64(100*disposition.NumTraits)
}

// #endregion match

// #region classify

// Classify fuses the three vectors and picks the best-matching archetype.
// It is total: any three vectors yield a Result.
func Classify(facial, text, env disposition.Vector) Result {
	final := Fuse(facial, text, env)
	scores := make(map[string]float64, len(archetypes))

	best := -1
	bestRatio := -1.0
	for i, a := range archetypes {
		ratio := MatchRatio(a, final)
		scores[a.Code] = ratio
		// strict > keeps the first-declared archetype on ties
		if ratio > bestRatio {
			best = i
			bestRatio = ratio
		}
	}

	return Result{
		Archetype:  archetypes[best],
		Confidence: bestRatio,
		Final:      final,
		Scores:     scores,
	}
}

// ClassifyInputs validates that every term is present and classifies.
func ClassifyInputs(in Inputs) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, fmt.Errorf("classify: %w", err)
	}
	return Classify(*in.Facial, *in.Text, *in.Environment), nil
}

// #endregion classify
