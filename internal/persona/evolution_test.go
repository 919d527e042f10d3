package persona

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/danielpatrickdp/persona-fusion/internal/disposition"
)

func resultWith(v disposition.Vector) Result {
	return Classify(v, v, v)
}

func TestTrackEvolution_FirstObservation(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 50; i++ {
		rep := TrackEvolution(resultWith(randomVector(rng)), nil)
		if !rep.FirstObservation {
			t.Fatal("expected first observation")
		}
		if len(rep.Deltas) != 0 {
			t.Fatalf("expected no deltas, got %v", rep.Deltas)
		}
	}
}

func TestTrackEvolution_Antisymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 200; i++ {
		a, b := resultWith(randomVector(rng)), resultWith(randomVector(rng))
		ab := TrackEvolution(a, &b)
		ba := TrackEvolution(b, &a)
		if len(ab.Deltas) != len(ba.Deltas) {
			t.Fatalf("delta sets differ: %v vs %v", ab.Deltas, ba.Deltas)
		}
		for trait, d := range ab.Deltas {
			if ba.Deltas[trait] != -d {
				t.Fatalf("%s: %d vs %d", trait, d, ba.Deltas[trait])
			}
		}
	}
}

func TestTrackEvolution_Threshold(t *testing.T) {
	prev := Result{Archetype: archetypes[0], Final: disposition.Vector{50, 50, 50, 50, 50}}
	cur := Result{Archetype: archetypes[0], Final: disposition.Vector{60, 41, 50, 35, 50}}
	rep := TrackEvolution(cur, &prev)

	if rep.FirstObservation {
		t.Fatal("not a first observation")
	}
	if rep.Deltas["thinking"] != 10 {
		t.Errorf("delta of exactly 10 should be included, got %v", rep.Deltas)
	}
	if _, ok := rep.Deltas["introversion"]; ok {
		t.Error("delta of 9 should be excluded")
	}
	if rep.Deltas["practical"] != -15 {
		t.Errorf("expected practical -15, got %v", rep.Deltas)
	}
	if !strings.Contains(rep.Summary, "thinking increase by 10") || !strings.Contains(rep.Summary, "practical decrease by 15") {
		t.Errorf("unexpected summary %q", rep.Summary)
	}
	if rep.ArchetypeChanged {
		t.Error("archetype did not change")
	}
}

func TestTrackEvolution_Stable(t *testing.T) {
	prev := Result{Archetype: archetypes[1], Final: disposition.Vector{70, 30, 70, 70, 60}}
	cur := Result{Archetype: archetypes[1], Final: disposition.Vector{72, 25, 66, 79, 60}}
	rep := TrackEvolution(cur, &prev)
	if len(rep.Deltas) != 0 {
		t.Fatalf("expected no significant deltas, got %v", rep.Deltas)
	}
	if !strings.Contains(rep.Summary, "stable") {
		t.Errorf("summary should say stable, got %q", rep.Summary)
	}
}

func TestTrackEvolution_ArchetypeShift(t *testing.T) {
	prev := Result{Archetype: archetypes[0], Final: disposition.Vector{65, 75, 40, 45, 60}}
	cur := Result{Archetype: archetypes[2], Final: disposition.Vector{30, 20, 60, 30, 30}}
	rep := TrackEvolution(cur, &prev)
	if !rep.ArchetypeChanged || rep.PreviousCode != archetypes[0].Code || rep.CurrentCode != archetypes[2].Code {
		t.Errorf("expected archetype shift, got %+v", rep)
	}
	if !strings.HasPrefix(rep.Summary, "persona shifted from") {
		t.Errorf("unexpected summary %q", rep.Summary)
	}
}
