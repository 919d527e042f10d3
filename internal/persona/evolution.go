package persona

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/persona-fusion/internal/disposition"
)

// SignificanceThreshold is the minimum absolute per-trait change reported.
const SignificanceThreshold = 10

// EvolutionReport compares two classifications of the same user.
type EvolutionReport struct {
	FirstObservation bool           `json:"first_observation"`
	Deltas           map[string]int `json:"deltas"`
	ArchetypeChanged bool           `json:"archetype_changed"`
	PreviousCode     string         `json:"previous_code,omitempty"`
	CurrentCode      string         `json:"current_code"`
	Summary          string         `json:"summary"`
}

// TrackEvolution reports the significant per-trait movement from previous to
// current. A nil previous marks the first observation. Holds no history.
func TrackEvolution(current Result, previous *Result) EvolutionReport {
	report := EvolutionReport{
		Deltas:      map[string]int{},
		CurrentCode: current.Archetype.Code,
	}
	if previous == nil {
		report.FirstObservation = true
		report.Summary = fmt.Sprintf("first observation: %s", current.Archetype.Name)
		return report
	}

	report.PreviousCode = previous.Archetype.Code
	report.ArchetypeChanged = previous.Archetype.Code != current.Archetype.Code

	var parts []string
	for _, t := range disposition.Traits {
		delta := current.Final[t] - previous.Final[t]
		if abs(delta) < SignificanceThreshold {
			continue
		}
		report.Deltas[t.String()] = delta
		direction := "increase"
		if delta < 0 {
			direction = "decrease"
		}
		parts = append(parts, fmt.Sprintf("%s %s by %d", t, direction, abs(delta)))
	}

	var b strings.Builder
	if report.ArchetypeChanged {
		fmt.Fprintf(&b, "persona shifted from %s to %s; ", previous.Archetype.Name, current.Archetype.Name)
	}
	if len(parts) == 0 {
		fmt.Fprintf(&b, "persona is stable: no trait moved by %d or more", SignificanceThreshold)
	} else {
		b.WriteString(strings.Join(parts, ", "))
	}
	report.Summary = b.String()
	return report
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
