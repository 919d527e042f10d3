package orchestrator

// #region imports
import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/advisor"
	"github.com/danielpatrickdp/persona-fusion/internal/environment"
	"github.com/danielpatrickdp/persona-fusion/internal/logging"
	"github.com/danielpatrickdp/persona-fusion/internal/persona"
	"github.com/danielpatrickdp/persona-fusion/internal/signals"
	"github.com/danielpatrickdp/persona-fusion/internal/state"
	"github.com/golang/groupcache/lru"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// #endregion

// #region orchestrator-struct

// ErrInvalidRequest marks analyze requests rejected before any work is done.
var ErrInvalidRequest = errors.New("invalid analyze request")

// minServiceHealth is the decayed success rate below which the remote
// intent classifier is skipped.
const minServiceHealth = 0.2

// maxIntentSessions bounds how many users' previous intents are remembered.
const maxIntentSessions = 1024

// Deps wires an Orchestrator. Only Snapshots is required.
type Deps struct {
	Snapshots SnapshotStore
	Context   ContextSource // nil: locations are ignored
	AuditDB   *sql.DB       // nil: no analysis_log rows
	Intents   IntentService // nil: keyword routing only
	Memory    *RoutingMemory
	Portraits Portraits
	Logger    *zap.Logger
	Now       func() time.Time
}

// Orchestrator runs the analyze pipeline and routes chat intents.
type Orchestrator struct {
	producer  *signals.Producer
	snapshots SnapshotStore
	envSource ContextSource
	auditDB   *sql.DB
	intents   IntentService
	memory    *RoutingMemory
	portraits Portraits
	logger    *zap.Logger
	now       func() time.Time

	mu          sync.Mutex
	lastIntents *lru.Cache // user ID -> previous message's intent
}

// #endregion

// #region constructor

// NewOrchestrator creates a fully wired orchestrator.
func NewOrchestrator(d Deps) (*Orchestrator, error) {
	if d.Snapshots == nil {
		return nil, errors.New("orchestrator: snapshot store is required")
	}
	if d.AuditDB != nil {
		if err := logging.EnsureSchema(d.AuditDB); err != nil {
			return nil, err
		}
	}
	o := &Orchestrator{
		producer:  signals.NewProducer(),
		snapshots: d.Snapshots,
		envSource: d.Context,
		auditDB:   d.AuditDB,
		intents:   d.Intents,
		memory:    d.Memory,
		portraits: d.Portraits,
		logger:    logging.OrNop(d.Logger).Named("orch"),
		now:       d.Now,

		lastIntents: lru.New(maxIntentSessions),
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}

// #endregion

// #region analyze

// Analyze classifies one observation, compares it with the user's active
// snapshot, stores the result and writes an audit row.
func (o *Orchestrator) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return AnalyzeResponse{}, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	at := req.At
	if at.IsZero() {
		at = o.now()
	}

	var resp AnalyzeResponse
	conds := req.Conditions
	derived := false
	if req.Location != nil && !req.Location.Valid() {
		return AnalyzeResponse{}, fmt.Errorf("%w: location %v is off the globe", ErrInvalidRequest, *req.Location)
	}
	if req.Location != nil && o.envSource != nil {
		envCtx := o.envSource.GetContext(ctx, *req.Location, at)
		resp.Context = &envCtx
		if conds == nil {
			c := signals.DeriveConditions(envCtx.Weather.Reading.ConditionID, req.Location.LocalTime(at), req.Location.Latitude)
			conds = &c
			derived = true
		}
	}
	resp.Conditions = conds

	resp.Readings = o.producer.Produce(signals.ProduceInput{
		Facial:     req.Facial,
		Text:       req.Text,
		Conditions: conds,
	})
	inputs := persona.Inputs{
		Facial:      resp.Readings.Facial,
		Text:        resp.Readings.Text,
		Environment: resp.Readings.Environment,
	}.WithDefaults()
	result, err := persona.ClassifyInputs(inputs)
	if err != nil {
		return AnalyzeResponse{}, fmt.Errorf("classify: %w", err)
	}
	resp.Result = result

	var previous *persona.Result
	prevSnap, err := o.snapshots.Latest(req.UserID)
	switch {
	case err == nil:
		previous = &prevSnap.Result
	case !errors.Is(err, state.ErrNoSnapshot):
		return AnalyzeResponse{}, fmt.Errorf("load previous snapshot: %w", err)
	}
	resp.Evolution = persona.TrackEvolution(result, previous)

	snap, err := o.snapshots.Save(state.Snapshot{
		UserID:    req.UserID,
		Result:    result,
		Context:   summarize(resp.Context),
		CreatedAt: at,
	})
	if err != nil {
		return AnalyzeResponse{}, fmt.Errorf("save snapshot: %w", err)
	}
	resp.VersionID = snap.VersionID
	resp.AnalysisID = uuid.New().String()

	if resp.Context != nil {
		rec := advisor.GenerateComprehensiveRecommendations(result.Archetype.Code, *resp.Context)
		resp.Recommendations = &rec
	}
	if req.Portrait && o.portraits != nil {
		img := o.portraits.Portrait(ctx, result)
		resp.Portrait = &img
	}

	o.audit(req, resp, inputs, derived, at)

	o.logger.Info("analysis complete",
		zap.String("user", req.UserID),
		zap.String("persona", result.Archetype.Code),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("first", resp.Evolution.FirstObservation),
		zap.Int("deltas", len(resp.Evolution.Deltas)),
	)
	return resp, nil
}

// audit writes the analysis_log row. Failures are logged, not returned:
// the snapshot is already committed.
func (o *Orchestrator) audit(req AnalyzeRequest, resp AnalyzeResponse, in persona.Inputs, derived bool, at time.Time) {
	if o.auditDB == nil {
		return
	}
	record := logging.AnalysisRecord{
		Facial:            req.Facial,
		FacialVector:      in.Facial.Map(),
		TextVector:        in.Text.Map(),
		EnvironmentVector: in.Environment.Map(),
		FinalVector:       resp.Result.Final.Map(),
		Scores:            resp.Result.Scores,
		FirstObservation:  resp.Evolution.FirstObservation,
		Deltas:            resp.Evolution.Deltas,
		Summary:           resp.Evolution.Summary,
	}
	if req.Text != nil {
		record.Text = *req.Text
	}
	if resp.Conditions != nil {
		record.Conditions = &logging.RecordConditions{
			Weather:   string(resp.Conditions.Weather),
			TimeOfDay: string(resp.Conditions.TimeOfDay),
			Season:    string(resp.Conditions.Season),
			Derived:   derived,
		}
	}
	recordJSON, err := json.Marshal(record)
	if err != nil {
		o.logger.Warn("marshal analysis record", zap.Error(err))
	}

	entry := logging.AnalysisEntry{
		AnalysisID:    resp.AnalysisID,
		UserID:        req.UserID,
		VersionID:     resp.VersionID,
		ArchetypeCode: resp.Result.Archetype.Code,
		Confidence:    resp.Result.Confidence,
		Trigger:       req.Trigger,
		RecordJSON:    string(recordJSON),
		CreatedAt:     at,
	}
	if entry.Trigger == "" {
		entry.Trigger = "api"
	}
	if resp.Context != nil {
		entry.Degraded = resp.Context.Degraded
		var cats []string
		for _, c := range resp.Context.FallbackCategories() {
			cats = append(cats, string(c))
		}
		entry.Fallbacks = strings.Join(cats, ",")
	}
	if err := logging.LogAnalysis(o.auditDB, entry); err != nil {
		o.logger.Warn("failed to write analysis log", zap.String("analysis", resp.AnalysisID), zap.Error(err))
	}
}

func summarize(c *environment.Context) *state.ContextSummary {
	if c == nil {
		return nil
	}
	return &state.ContextSummary{
		Country:     c.Country,
		Weather:     c.Weather.Reading.Description,
		Temperature: c.Weather.Reading.Temperature,
		RiskLevel:   string(c.Weather.RiskLevel),
		Degraded:    c.Degraded,
	}
}

// #endregion

// #region route-intent

// RouteIntent asks the remote classifier first and falls back to keyword
// routing when it is absent, unhealthy, failing or returns an unknown label.
// Follow-ups inherit only the same user's previous intent.
func (o *Orchestrator) RouteIntent(ctx context.Context, userID, text string) IntentClassification {
	o.mu.Lock()
	var prev Intent
	if v, ok := o.lastIntents.Get(userID); ok {
		prev = v.(Intent)
	}
	o.mu.Unlock()

	class, serviceOK := o.routeViaService(ctx, text)
	if serviceOK == nil || !*serviceOK {
		class = ClassifyIntent(text, prev)
	}

	o.mu.Lock()
	o.lastIntents.Add(userID, class.Intent)
	o.mu.Unlock()

	if o.memory != nil {
		rec := RouteRecord{Intent: class.Intent, Source: class.Source, Confidence: class.Confidence, ServiceOK: serviceOK}
		if err := o.memory.RecordRoute(rec); err != nil {
			o.logger.Warn("failed to record route", zap.Error(err))
		}
	}

	o.logger.Debug("intent routed",
		zap.String("user", userID),
		zap.String("intent", string(class.Intent)),
		zap.String("source", string(class.Source)),
		zap.Float64("confidence", class.Confidence),
	)
	return class
}

// routeViaService returns the service classification and whether the
// service was consulted successfully (nil when it was not consulted).
func (o *Orchestrator) routeViaService(ctx context.Context, text string) (IntentClassification, *bool) {
	if o.intents == nil {
		return IntentClassification{}, nil
	}
	if o.memory != nil {
		health, n, err := o.memory.ServiceHealth()
		if err == nil && health < minServiceHealth {
			o.logger.Info("skipping intent service", zap.Float64("health", health), zap.Int("samples", n))
			return IntentClassification{}, nil
		}
	}

	ok := false
	res, err := o.intents.ClassifyIntent(ctx, text)
	if err != nil {
		o.logger.Warn("intent service failed, using keywords", zap.Error(err))
		return IntentClassification{}, &ok
	}
	intent, known := ParseIntent(res.Intent)
	if !known {
		o.logger.Warn("intent service returned unknown label", zap.String("label", res.Intent))
		return IntentClassification{}, &ok
	}
	ok = true
	return IntentClassification{Intent: intent, Confidence: res.Confidence, Source: SourceService}, &ok
}

// #endregion
