package replay

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/orchestrator"
	"github.com/danielpatrickdp/persona-fusion/internal/signals"
	"gopkg.in/yaml.v3"
)

// #region fixture-types

// Fixture is the top-level YAML structure for a replay fixture.
type Fixture struct {
	Description  string            `yaml:"description"`
	UserID       string            `yaml:"user_id"`
	Observations []Observation     `yaml:"observations"`
	Expected     []ExpectedOutcome `yaml:"expected"`
}

// Observation is one recorded analysis input.
type Observation struct {
	ID         string                 `yaml:"id"`
	Facial     signals.FacialFeatures `yaml:"facial,omitempty"`
	Text       *string                `yaml:"text,omitempty"`
	Conditions *signals.Conditions    `yaml:"conditions,omitempty"`
	At         time.Time              `yaml:"at,omitempty"`
}

// ExpectedOutcome captures the expected archetype and action per observation.
type ExpectedOutcome struct {
	ID        string `yaml:"id"`
	Archetype string `yaml:"archetype"`
	Action    string `yaml:"action"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a YAML fixture file. Unknown keys are
// rejected so typos in hand-written fixtures surface early.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Observations) == 0 {
		return nil, fmt.Errorf("fixture %s: no observations", path)
	}
	for i := range f.Observations {
		if f.Observations[i].ID == "" {
			f.Observations[i].ID = fmt.Sprintf("obs-%d", i+1)
		}
	}
	return &f, nil
}

// ToRequest converts an observation into an analyze request for userID.
func (o Observation) ToRequest(userID string) orchestrator.AnalyzeRequest {
	return orchestrator.AnalyzeRequest{
		UserID:     userID,
		Facial:     o.Facial,
		Text:       o.Text,
		Conditions: o.Conditions,
		At:         o.At,
		Trigger:    "replay",
	}
}

// #endregion fixture-loader
