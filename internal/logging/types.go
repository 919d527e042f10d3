package logging

import "time"

// #region analysis-entry
// AnalysisEntry is a single row in the analysis_log table.
type AnalysisEntry struct {
	AnalysisID    string
	UserID        string
	VersionID     string
	ArchetypeCode string
	Confidence    float64
	Trigger       string // "cli" | "api" | "chat" | "replay"
	RecordJSON    string
	Degraded      bool
	Fallbacks     string // comma-separated categories
	CreatedAt     time.Time
}
// #endregion analysis-entry

// #region analysis-record
// AnalysisRecord captures the complete inputs and outputs of one analysis.
// Serialized as JSON into analysis_log.record_json so a run can be replayed.
type AnalysisRecord struct {
	Facial     map[string]string `json:"facial,omitempty"`
	Text       string            `json:"text,omitempty"`
	Conditions *RecordConditions `json:"conditions,omitempty"`

	// Per-source vectors as fused
	FacialVector      map[string]int `json:"facial_vector"`
	TextVector        map[string]int `json:"text_vector"`
	EnvironmentVector map[string]int `json:"environment_vector"`
	FinalVector       map[string]int `json:"final_vector"`

	Scores map[string]float64 `json:"scores"`

	// Evolution against the previously active snapshot
	FirstObservation bool           `json:"first_observation"`
	Deltas           map[string]int `json:"deltas,omitempty"`
	Summary          string         `json:"summary"`
}

// RecordConditions are the environment conditions the analyzer saw.
type RecordConditions struct {
	Weather   string `json:"weather,omitempty"`
	TimeOfDay string `json:"time_of_day,omitempty"`
	Season    string `json:"season,omitempty"`
	Derived   bool   `json:"derived"` // true when taken from live context
}
// #endregion analysis-record
