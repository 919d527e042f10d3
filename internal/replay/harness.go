package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/persona-fusion/internal/orchestrator"
	"github.com/danielpatrickdp/persona-fusion/internal/persona"
	"github.com/danielpatrickdp/persona-fusion/internal/signals"
)

// #region types

// Actions describe how an observation relates to the one before it.
const (
	ActionFirst  = "first"  // no previous observation
	ActionStable = "stable" // same archetype, no significant trait movement
	ActionDrift  = "drift"  // same archetype, at least one significant delta
	ActionSwitch = "switch" // archetype changed
)

// ReplayResult captures the outcome of replaying one observation.
type ReplayResult struct {
	ObservationID string                  `json:"observation_id"`
	Action        string                  `json:"action"`
	Result        persona.Result          `json:"result"`
	Evolution     persona.EvolutionReport `json:"evolution"`
	VersionID     string                  `json:"version_id,omitempty"` // set only by Persist
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalObservations int            `json:"total_observations"`
	Switches          int            `json:"switches"`
	Drifts            int            `json:"drifts"`
	Stable            int            `json:"stable"`
	LongestStableRun  int            `json:"longest_stable_run"` // consecutive observations with one archetype
	Distribution      map[string]int `json:"distribution"`
	FinalCode         string         `json:"final_code"`
}

// Analyzer is the part of the orchestrator a persisted replay needs.
type Analyzer interface {
	Analyze(ctx context.Context, req orchestrator.AnalyzeRequest) (orchestrator.AnalyzeResponse, error)
}

// #endregion types

// #region replay

// Replay classifies observations in order and tracks evolution between
// consecutive results. Operates entirely in-memory; absent sources take
// the neutral default.
func Replay(observations []Observation) ([]ReplayResult, error) {
	producer := signals.NewProducer()
	results := make([]ReplayResult, 0, len(observations))
	var previous *persona.Result

	for _, obs := range observations {
		readings := producer.Produce(signals.ProduceInput{
			Facial:     obs.Facial,
			Text:       obs.Text,
			Conditions: obs.Conditions,
		})
		res, err := persona.ClassifyInputs(persona.Inputs{
			Facial:      readings.Facial,
			Text:        readings.Text,
			Environment: readings.Environment,
		}.WithDefaults())
		if err != nil {
			return results, fmt.Errorf("observation %s: %w", obs.ID, err)
		}
		evo := persona.TrackEvolution(res, previous)
		results = append(results, ReplayResult{
			ObservationID: obs.ID,
			Action:        actionFor(evo),
			Result:        res,
			Evolution:     evo,
		})
		previous = &res
	}
	return results, nil
}

// Persist runs observations through the full analyze pipeline for userID,
// so each one becomes a stored snapshot and an analysis log row.
func Persist(ctx context.Context, a Analyzer, userID string, observations []Observation) ([]ReplayResult, error) {
	results := make([]ReplayResult, 0, len(observations))
	for _, obs := range observations {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		resp, err := a.Analyze(ctx, obs.ToRequest(userID))
		if err != nil {
			return results, fmt.Errorf("observation %s: %w", obs.ID, err)
		}
		results = append(results, ReplayResult{
			ObservationID: obs.ID,
			Action:        actionFor(resp.Evolution),
			Result:        resp.Result,
			Evolution:     resp.Evolution,
			VersionID:     resp.VersionID,
		})
	}
	return results, nil
}

func actionFor(evo persona.EvolutionReport) string {
	switch {
	case evo.FirstObservation:
		return ActionFirst
	case evo.ArchetypeChanged:
		return ActionSwitch
	case len(evo.Deltas) > 0:
		return ActionDrift
	}
	return ActionStable
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{
		TotalObservations: len(results),
		Distribution:      map[string]int{},
	}
	run := 0
	for _, r := range results {
		s.Distribution[r.Result.Archetype.Code]++
		switch r.Action {
		case ActionSwitch:
			s.Switches++
			run = 0
		case ActionDrift:
			s.Drifts++
		case ActionStable:
			s.Stable++
		}
		run++
		if run > s.LongestStableRun {
			s.LongestStableRun = run
		}
	}
	if n := len(results); n > 0 {
		s.FinalCode = results[n-1].Result.Archetype.Code
	}
	return s
}

// #endregion replay
