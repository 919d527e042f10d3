package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/persona-fusion/internal/logging"
	"github.com/danielpatrickdp/persona-fusion/internal/signals"
	"gopkg.in/yaml.v3"
)

// #region export

// FromAnalyses builds a fixture from analysis log rows, newest first as
// ListAnalyses returns them. Expected outcomes are what was logged, so a
// replay of the fixture flags any drift in the analyzers since then.
// Rows without a decodable record are skipped.
func FromAnalyses(userID string, entries []logging.AnalysisEntry) (Fixture, error) {
	f := Fixture{UserID: userID}
	prevCode := ""
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		var rec logging.AnalysisRecord
		if err := json.Unmarshal([]byte(e.RecordJSON), &rec); err != nil {
			continue
		}

		obs := Observation{
			ID:     e.AnalysisID,
			Facial: signals.FacialFeatures(rec.Facial),
			At:     e.CreatedAt,
		}
		if rec.Text != "" {
			text := rec.Text
			obs.Text = &text
		}
		if rec.Conditions != nil {
			obs.Conditions = &signals.Conditions{
				Weather:   signals.Weather(rec.Conditions.Weather),
				TimeOfDay: signals.TimeOfDay(rec.Conditions.TimeOfDay),
				Season:    signals.Season(rec.Conditions.Season),
			}
		}

		// the first exported row has nothing before it in the fixture
		action := ActionStable
		switch {
		case len(f.Observations) == 0:
			action = ActionFirst
		case e.ArchetypeCode != prevCode:
			action = ActionSwitch
		case len(rec.Deltas) > 0:
			action = ActionDrift
		}
		prevCode = e.ArchetypeCode

		f.Observations = append(f.Observations, obs)
		f.Expected = append(f.Expected, ExpectedOutcome{ID: obs.ID, Archetype: e.ArchetypeCode, Action: action})
	}
	if len(f.Observations) == 0 {
		return Fixture{}, fmt.Errorf("no analysis records for user %s", userID)
	}
	f.Description = fmt.Sprintf("Export of %d logged analyses for %s", len(f.Observations), userID)
	return f, nil
}

// WriteFixture writes f as YAML to path.
func WriteFixture(f Fixture, path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion export
