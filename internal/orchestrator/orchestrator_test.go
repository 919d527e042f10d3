package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/codec"
	"github.com/danielpatrickdp/persona-fusion/internal/creative"
	"github.com/danielpatrickdp/persona-fusion/internal/disposition"
	"github.com/danielpatrickdp/persona-fusion/internal/environment"
	"github.com/danielpatrickdp/persona-fusion/internal/logging"
	"github.com/danielpatrickdp/persona-fusion/internal/persona"
	"github.com/danielpatrickdp/persona-fusion/internal/signals"
	"github.com/danielpatrickdp/persona-fusion/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// #region fakes

type fakeContext struct {
	calls int
	ctx   environment.Context
}

func (f *fakeContext) GetContext(_ context.Context, loc environment.Location, at time.Time) environment.Context {
	f.calls++
	c := f.ctx
	c.Location = loc
	c.Timestamp = at
	return c
}

type fakeIntents struct {
	res codec.IntentResult
	err error
}

func (f *fakeIntents) ClassifyIntent(context.Context, string) (codec.IntentResult, error) {
	return f.res, f.err
}

type fakePortraits struct{}

func (fakePortraits) Portrait(_ context.Context, r persona.Result) creative.Image {
	return creative.Placeholder(r.Archetype.Code, "p")
}

func newStore(t *testing.T) *state.Store {
	t.Helper()
	s, err := state.NewStore(filepath.Join(t.TempDir(), "orch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

var thoughtfulFace = signals.FacialFeatures{
	"eyes": "deep", "mouth": "soft", "forehead": "high", "jaw": "round", "overall": "thoughtful",
}

// rainy night in Seoul: 2026-01-15 14:00 UTC is 22:00 local
var (
	seoul      = environment.Location{Latitude: 37.57, Longitude: 126.98}
	winterNite = time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)
)

func rainyContext() environment.Context {
	return environment.Context{
		Weather:  environment.DeriveWeather(environment.WeatherReading{Temperature: 3, Humidity: 90, ConditionID: 501, Description: "moderate rain"}),
		Cultural: environment.FallbackCultural("KR"),
		Economic: environment.FallbackEconomic("KR"),
		Country:  "KR",
		Sources: map[environment.Category]environment.Source{
			environment.CategoryWeather:      environment.SourceLive,
			environment.CategoryCultural:     environment.SourceLive,
			environment.CategoryEconomic:     environment.SourceFallback,
			environment.CategoryGeopolitical: environment.SourceLive,
		},
		Degraded: true,
	}
}

// #endregion

// #region analyze-tests

func TestAnalyze_FacialOnlyMindfulGuardian(t *testing.T) {
	store := newStore(t)
	o, err := NewOrchestrator(Deps{Snapshots: store, AuditDB: store.DB()})
	require.NoError(t, err)

	resp, err := o.Analyze(context.Background(), AnalyzeRequest{UserID: "u1", Facial: thoughtfulFace, Trigger: "cli"})
	require.NoError(t, err)

	assert.Equal(t, "MG", resp.Result.Archetype.Code)
	assert.Equal(t, 1.0, resp.Result.Confidence)
	assert.Equal(t, disposition.Vector{65, 75, 40, 45, 60}, resp.Result.Final)
	assert.True(t, resp.Evolution.FirstObservation)
	assert.Nil(t, resp.Context)
	assert.Nil(t, resp.Recommendations)
	assert.NotEmpty(t, resp.VersionID)

	latest, err := store.Latest("u1")
	require.NoError(t, err)
	assert.Equal(t, resp.VersionID, latest.VersionID)

	entries, err := logging.ListAnalyses(store.DB(), "u1", 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, resp.AnalysisID, entries[0].AnalysisID)
	assert.Equal(t, "cli", entries[0].Trigger)
	assert.Contains(t, entries[0].RecordJSON, `"first_observation":true`)
}

func TestAnalyze_TracksEvolutionAcrossCalls(t *testing.T) {
	store := newStore(t)
	o, err := NewOrchestrator(Deps{Snapshots: store})
	require.NoError(t, err)

	_, err = o.Analyze(context.Background(), AnalyzeRequest{UserID: "u1", Facial: thoughtfulFace})
	require.NoError(t, err)

	resp, err := o.Analyze(context.Background(), AnalyzeRequest{UserID: "u1", Text: strPtr("I like to plan")})
	require.NoError(t, err)

	assert.False(t, resp.Evolution.FirstObservation)
	assert.Equal(t, "MG", resp.Evolution.PreviousCode)
	assert.Equal(t, map[string]int{"thinking": -15, "introversion": -25, "driving": 10, "stable": -10}, resp.Evolution.Deltas)

	history, err := store.List("u1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, history[1].VersionID, history[0].ParentID)
}

func TestAnalyze_DerivesConditionsFromContext(t *testing.T) {
	store := newStore(t)
	fc := &fakeContext{ctx: rainyContext()}
	o, err := NewOrchestrator(Deps{Snapshots: store, Context: fc, AuditDB: store.DB()})
	require.NoError(t, err)

	resp, err := o.Analyze(context.Background(), AnalyzeRequest{UserID: "u1", Location: &seoul, At: winterNite})
	require.NoError(t, err)

	assert.Equal(t, 1, fc.calls)
	require.NotNil(t, resp.Conditions)
	assert.Equal(t, signals.Conditions{Weather: signals.WeatherRainy, TimeOfDay: signals.Night, Season: signals.Winter}, *resp.Conditions)
	require.NotNil(t, resp.Readings.Environment)
	assert.Equal(t, disposition.Vector{5, 30, -5, -10, 5}, *resp.Readings.Environment)
	require.NotNil(t, resp.Recommendations)
	assert.Equal(t, resp.Result.Archetype.Code, resp.Recommendations.PersonaCode)

	latest, _ := store.Latest("u1")
	require.NotNil(t, latest.Context)
	assert.Equal(t, "moderate rain", latest.Context.Weather)
	assert.True(t, latest.Context.Degraded)

	entries, _ := logging.ListAnalyses(store.DB(), "u1", 1)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Degraded)
	assert.Equal(t, "economic", entries[0].Fallbacks)
	assert.Equal(t, "api", entries[0].Trigger)
}

func TestAnalyze_ExplicitConditionsWin(t *testing.T) {
	store := newStore(t)
	fc := &fakeContext{ctx: rainyContext()}
	o, _ := NewOrchestrator(Deps{Snapshots: store, Context: fc})

	conds := signals.Conditions{Weather: signals.WeatherSunny, TimeOfDay: signals.Morning}
	resp, err := o.Analyze(context.Background(), AnalyzeRequest{UserID: "u1", Location: &seoul, Conditions: &conds})
	require.NoError(t, err)
	assert.Equal(t, conds, *resp.Conditions)
	assert.NotNil(t, resp.Context)
}

func TestAnalyze_Validation(t *testing.T) {
	o, _ := NewOrchestrator(Deps{Snapshots: newStore(t)})

	_, err := o.Analyze(context.Background(), AnalyzeRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	bad := environment.Location{Latitude: 120}
	_, err = o.Analyze(context.Background(), AnalyzeRequest{UserID: "u1", Location: &bad})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = NewOrchestrator(Deps{})
	assert.Error(t, err)
}

func TestAnalyze_Portrait(t *testing.T) {
	o, _ := NewOrchestrator(Deps{Snapshots: newStore(t), Portraits: fakePortraits{}})
	resp, err := o.Analyze(context.Background(), AnalyzeRequest{UserID: "u1", Facial: thoughtfulFace, Portrait: true})
	require.NoError(t, err)
	require.NotNil(t, resp.Portrait)
	assert.Equal(t, "/static/personas/mg.png", resp.Portrait.URL)
}

type brokenStore struct{}

func (brokenStore) Latest(string) (state.Snapshot, error) { return state.Snapshot{}, errors.New("disk gone") }
func (brokenStore) Save(state.Snapshot) (state.Snapshot, error) {
	return state.Snapshot{}, errors.New("disk gone")
}

func TestAnalyze_StoreErrorsPropagate(t *testing.T) {
	o, _ := NewOrchestrator(Deps{Snapshots: brokenStore{}})
	_, err := o.Analyze(context.Background(), AnalyzeRequest{UserID: "u1"})
	assert.ErrorContains(t, err, "load previous snapshot")
}

// #endregion

// #region route-intent-tests

func TestRouteIntent_ServiceWins(t *testing.T) {
	o, _ := NewOrchestrator(Deps{Snapshots: newStore(t), Intents: &fakeIntents{res: codec.IntentResult{Intent: "diary", Confidence: 0.9}}})
	got := o.RouteIntent(context.Background(), "u1", "오늘 날씨 어때?")
	assert.Equal(t, IntentClassification{Intent: IntentDiary, Confidence: 0.9, Source: SourceService}, got)
}

func TestRouteIntent_FallsBackToKeywords(t *testing.T) {
	tests := []struct {
		name    string
		intents IntentService
	}{
		{"no service", nil},
		{"service error", &fakeIntents{err: errors.New("unavailable")}},
		{"unknown label", &fakeIntents{res: codec.IntentResult{Intent: "dance"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := NewOrchestrator(Deps{Snapshots: newStore(t), Intents: tt.intents})
			got := o.RouteIntent(context.Background(), "u1", "오늘 날씨 어때?")
			assert.Equal(t, IntentWeather, got.Intent)
			assert.Equal(t, SourceKeyword, got.Source)
		})
	}
}

func TestRouteIntent_InheritsPreviousIntent(t *testing.T) {
	o, _ := NewOrchestrator(Deps{Snapshots: newStore(t)})
	o.RouteIntent(context.Background(), "u1", "weather in Seoul")
	got := o.RouteIntent(context.Background(), "u1", "and tomorrow?")
	assert.Equal(t, IntentWeather, got.Intent)
}

func TestRouteIntent_FollowUpsStayPerUser(t *testing.T) {
	o, _ := NewOrchestrator(Deps{Snapshots: newStore(t)})
	ctx := context.Background()

	assert.Equal(t, IntentWeather, o.RouteIntent(ctx, "alice", "오늘 날씨 어때").Intent)
	// bob has no history, so his follow-up is plain chat
	assert.Equal(t, IntentChat, o.RouteIntent(ctx, "bob", "그럼 더?").Intent)
	assert.Equal(t, IntentImage, o.RouteIntent(ctx, "bob", "draw my persona").Intent)

	assert.Equal(t, IntentWeather, o.RouteIntent(ctx, "alice", "그럼 더?").Intent)
	assert.Equal(t, IntentImage, o.RouteIntent(ctx, "bob", "그럼 더?").Intent)
}

func TestRouteIntent_SkipsUnhealthyService(t *testing.T) {
	db := newTestDB(t)
	mem, err := NewRoutingMemory(db)
	require.NoError(t, err)
	svc := &fakeIntents{err: errors.New("unavailable")}
	o, _ := NewOrchestrator(Deps{Snapshots: newStore(t), Intents: svc, Memory: mem})

	for i := 0; i < 3; i++ {
		o.RouteIntent(context.Background(), "u1", "hello")
	}
	health, n, err := mem.ServiceHealth()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 0.0, health)

	// the service would now succeed but is skipped until health recovers
	svc.err = nil
	svc.res = codec.IntentResult{Intent: "image", Confidence: 1}
	got := o.RouteIntent(context.Background(), "u1", "hello")
	assert.Equal(t, SourceKeyword, got.Source)
	_, n, _ = mem.ServiceHealth()
	assert.Equal(t, 3, n)
}

// #endregion
