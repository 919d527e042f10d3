package state

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/persona"
)

// ErrNoSnapshot is returned when a user or version has no stored snapshot.
var ErrNoSnapshot = errors.New("no persona snapshot")

// #region snapshot
// Snapshot is one versioned classification for a user. ParentID links to
// the snapshot that was active when this one was saved.
type Snapshot struct {
	VersionID string          `json:"version_id"`
	ParentID  string          `json:"parent_id,omitempty"`
	UserID    string          `json:"user_id"`
	Result    persona.Result  `json:"result"`
	Context   *ContextSummary `json:"context,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
// #endregion snapshot

// #region context-summary
// ContextSummary is the slice of environmental context kept with a snapshot.
type ContextSummary struct {
	Country     string  `json:"country"`
	Weather     string  `json:"weather"`
	Temperature float64 `json:"temperature"`
	RiskLevel   string  `json:"risk_level"`
	Degraded    bool    `json:"degraded"`
}
// #endregion context-summary
