package orchestrator

// #region imports
import (
	"context"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/advisor"
	"github.com/danielpatrickdp/persona-fusion/internal/codec"
	"github.com/danielpatrickdp/persona-fusion/internal/creative"
	"github.com/danielpatrickdp/persona-fusion/internal/environment"
	"github.com/danielpatrickdp/persona-fusion/internal/persona"
	"github.com/danielpatrickdp/persona-fusion/internal/signals"
	"github.com/danielpatrickdp/persona-fusion/internal/state"
)

// #endregion

// #region intent

// Intent is the routed category of a chat message.
type Intent string

const (
	IntentAnalyze   Intent = "analyze"
	IntentDiary     Intent = "diary"
	IntentWeather   Intent = "weather"
	IntentRecommend Intent = "recommend"
	IntentImage     Intent = "image"
	IntentChat      Intent = "chat"
)

// Intents lists every intent label.
var Intents = []Intent{IntentAnalyze, IntentDiary, IntentWeather, IntentRecommend, IntentImage, IntentChat}

// ParseIntent reports whether s is a known intent label.
func ParseIntent(s string) (Intent, bool) {
	for _, in := range Intents {
		if string(in) == s {
			return in, true
		}
	}
	return "", false
}

// IntentSource records which classifier produced an intent.
type IntentSource string

const (
	SourceService IntentSource = "service"
	SourceKeyword IntentSource = "keyword"
)

// IntentClassification is the routing decision for one message.
type IntentClassification struct {
	Intent     Intent       `json:"intent"`
	Confidence float64      `json:"confidence"`
	Source     IntentSource `json:"source"`
}

// #endregion

// #region analyze-request

// AnalyzeRequest is one observation to classify. Absent facial features,
// text or location are allowed; Conditions overrides the conditions that
// would otherwise be derived from the location's context.
type AnalyzeRequest struct {
	UserID     string                 `json:"user_id" yaml:"user_id"`
	Facial     signals.FacialFeatures `json:"facial,omitempty" yaml:"facial,omitempty"`
	Text       *string                `json:"text,omitempty" yaml:"text,omitempty"`
	Conditions *signals.Conditions    `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Location   *environment.Location  `json:"location,omitempty" yaml:"location,omitempty"`
	At         time.Time              `json:"at,omitempty" yaml:"at,omitempty"`
	Portrait   bool                   `json:"portrait,omitempty" yaml:"portrait,omitempty"`
	Trigger    string                 `json:"-" yaml:"-"`
}

// #endregion

// #region analyze-response

// AnalyzeResponse is everything one analysis produced.
type AnalyzeResponse struct {
	AnalysisID      string                   `json:"analysis_id"`
	VersionID       string                   `json:"version_id"`
	Result          persona.Result           `json:"result"`
	Evolution       persona.EvolutionReport  `json:"evolution"`
	Readings        signals.Readings         `json:"-"`
	Conditions      *signals.Conditions      `json:"conditions,omitempty"`
	Context         *environment.Context     `json:"context,omitempty"`
	Recommendations *advisor.Recommendations `json:"recommendations,omitempty"`
	Portrait        *creative.Image          `json:"portrait,omitempty"`
}

// #endregion

// #region interfaces

// ContextSource supplies environmental context for a location.
type ContextSource interface {
	GetContext(ctx context.Context, loc environment.Location, at time.Time) environment.Context
}

// SnapshotStore persists per-user classifications.
type SnapshotStore interface {
	Latest(userID string) (state.Snapshot, error)
	Save(snap state.Snapshot) (state.Snapshot, error)
}

// IntentService is a remote intent classifier.
type IntentService interface {
	ClassifyIntent(ctx context.Context, text string) (codec.IntentResult, error)
}

// Portraits renders a classification as an image.
type Portraits interface {
	Portrait(ctx context.Context, r persona.Result) creative.Image
}

// #endregion
