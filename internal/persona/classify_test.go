package persona

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/persona-fusion/internal/disposition"
	"github.com/danielpatrickdp/persona-fusion/internal/signals"
)

// #region helpers

func randomVector(rng *rand.Rand) disposition.Vector {
	var v disposition.Vector
	for i := range v {
		v[i] = rng.Intn(101)
	}
	return v
}

func ptr(v disposition.Vector) *disposition.Vector { return &v }

// #endregion helpers

// #region scenario-tests

func TestClassify_ThoughtfulFaceIsMindfulGuardian(t *testing.T) {
	facial := signals.FacialAnalyzer{}.Analyze(signals.FacialFeatures{
		"eyes": "deep", "mouth": "soft", "forehead": "high", "jaw": "round", "overall": "thoughtful",
	})
	res := Classify(facial, disposition.Neutral(), disposition.Neutral())

	if res.Archetype.Code != CodeMindfulGuardian {
		t.Fatalf("expected Mindful Guardian, got %s (%v)", res.Archetype.Name, res.Scores)
	}
	if res.Final.Get(disposition.Thinking) < 60 || res.Final.Get(disposition.Introversion) < 70 {
		t.Errorf("expected high thinking/introversion, got %v", res.Final)
	}
	if res.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0 for full range match, got %f", res.Confidence)
	}
	want := disposition.Vector{65, 75, 40, 45, 60}
	if diff := cmp.Diff(want, res.Final); diff != "" {
		t.Errorf("final vector mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_TextOnlyLeavesOtherTraitsNeutral(t *testing.T) {
	text := signals.TextAnalyzer{}.Analyze("분석적이고 체계적으로")
	res := Classify(disposition.Neutral(), text, disposition.Neutral())
	if res.Final.Get(disposition.Thinking) <= 50 || res.Final.Get(disposition.Practical) <= 50 {
		t.Errorf("thinking/practical should rise, got %v", res.Final)
	}
	for _, tr := range []disposition.Trait{disposition.Introversion, disposition.Driving, disposition.Stable} {
		if res.Final.Get(tr) != 50 {
			t.Errorf("%s should stay at 50, got %d", tr, res.Final.Get(tr))
		}
	}
}

// #endregion scenario-tests

// #region fusion-tests

func TestFuse_MatchesWeightedFormula(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		f, x, e := randomVector(rng), randomVector(rng), randomVector(rng)
		res := Classify(f, x, e)
		for _, tr := range disposition.Traits {
			want := int(math.Round(float64(f[tr])*0.5 + float64(x[tr])*0.3 + float64(e[tr])*0.2))
			if res.Final[tr] != want {
				t.Fatalf("trait %s: got %d, want %d (f=%d t=%d e=%d)", tr, res.Final[tr], want, f[tr], x[tr], e[tr])
			}
		}
		if res.Confidence < 0 || res.Confidence > 1 {
			t.Fatalf("confidence out of range: %f", res.Confidence)
		}
		for code, ratio := range res.Scores {
			if ratio < 0 || ratio > 1 {
				t.Fatalf("%s ratio out of range: %f", code, ratio)
			}
		}
		if len(res.Scores) != ArchetypeCount {
			t.Fatalf("expected %d scores, got %d", ArchetypeCount, len(res.Scores))
		}
	}
}

func TestFuse_Linear(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, k := range []float64{0, 0.5, 0.8, 1.2} {
		for i := 0; i < 200; i++ {
			f, x, e := randomVector(rng), randomVector(rng), randomVector(rng)
			base := Fuse(f, x, e)
			scale := func(v disposition.Vector) disposition.Vector {
				var out disposition.Vector
				for j := range v {
					out[j] = disposition.Clamp(int(math.Round(float64(v[j]) * k)))
				}
				return out
			}
			scaled := Fuse(scale(f), scale(x), scale(e))
			for _, tr := range disposition.Traits {
				if k > 1 && (f[tr]*6 > 500 || x[tr]*6 > 500 || e[tr]*6 > 500) {
					continue // clamped inputs break proportionality
				}
				want := disposition.Clamp(int(math.Round(float64(base[tr]) * k)))
				if d := scaled[tr] - want; d > 2 || d < -2 {
					t.Fatalf("k=%.1f %s: scaled %d vs expected %d", k, tr, scaled[tr], want)
				}
			}
		}
	}
}

func TestFuse_NegativeEnvironmentClampsAtZero(t *testing.T) {
	env := disposition.Zero().Add(disposition.Stable, -100)
	got := Fuse(disposition.Zero(), disposition.Zero(), env)
	if got.Get(disposition.Stable) != 0 {
		t.Errorf("expected clamp to 0, got %d", got.Get(disposition.Stable))
	}
}

// #endregion fusion-tests

// #region match-tests

func TestMatchRatio(t *testing.T) {
	mg, _ := Lookup(CodeMindfulGuardian)
	inside := disposition.Vector{65, 75, 40, 45, 60}
	if r := MatchRatio(mg, inside); r != 1.0 {
		t.Errorf("expected 1.0, got %f", r)
	}
	// thinking 10 below min → 80 points; introversion 60 below → 0 points
	partial := disposition.Vector{50, 10, 40, 45, 60}
	if r := MatchRatio(mg, partial); math.Abs(r-380.0/500.0) > 1e-9 {
		t.Errorf("expected 0.76, got %f", r)
	}
}

func TestClassify_TiesGoToFirstDeclared(t *testing.T) {
	order := make(map[string]int, len(archetypes))
	for i, a := range archetypes {
		order[a.Code] = i
	}
	rng := rand.New(rand.NewSource(3))
	ties := 0
	for i := 0; i < 5000; i++ {
		res := Classify(randomVector(rng), randomVector(rng), randomVector(rng))
		for code, ratio := range res.Scores {
			if ratio == res.Confidence && order[code] < order[res.Archetype.Code] {
				t.Fatalf("tie with earlier archetype %s not honored (winner %s)", code, res.Archetype.Code)
			}
			if ratio == res.Confidence && code != res.Archetype.Code {
				ties++
			}
		}
	}
	t.Logf("observed %d tied scores", ties)
}

func TestRanked_StableOnTies(t *testing.T) {
	res := Result{Scores: map[string]float64{
		CodeMindfulGuardian: 0.5, CodeStrategicCommander: 0.9, CodeRadiantExplorer: 0.5, CodeHarmoniousDreamer: 0.9,
	}}
	got := res.Ranked()
	wantCodes := []string{CodeStrategicCommander, CodeHarmoniousDreamer, CodeMindfulGuardian, CodeRadiantExplorer}
	for i, c := range wantCodes {
		if got[i].Code != c {
			t.Fatalf("rank %d: got %s, want %s", i, got[i].Code, c)
		}
	}
}

// #endregion match-tests

// #region inputs-tests

func TestClassifyInputs_RejectsMissing(t *testing.T) {
	_, err := ClassifyInputs(Inputs{Facial: ptr(disposition.Neutral()), Text: ptr(disposition.Neutral())})
	if !errors.Is(err, ErrMissingVector) {
		t.Fatalf("expected ErrMissingVector, got %v", err)
	}
}

func TestClassifyInputs_WithDefaults(t *testing.T) {
	in := Inputs{Facial: ptr(disposition.Vector{90, 90, 90, 90, 90})}.WithDefaults()
	res, err := ClassifyInputs(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 45 + 15 + 10
	want := disposition.Vector{70, 70, 70, 70, 70}
	if diff := cmp.Diff(want, res.Final); diff != "" {
		t.Errorf("final mismatch (-want +got):\n%s", diff)
	}
}

// #endregion inputs-tests

// #region taxonomy-tests

func TestValidate(t *testing.T) {
	if err := Validate(Archetypes()); err != nil {
		t.Fatalf("built-in taxonomy invalid: %v", err)
	}
	if err := Validate(Archetypes()[:3]); err == nil {
		t.Error("expected error for 3 archetypes")
	}
	dup := Archetypes()
	dup[1].Code = dup[0].Code
	if err := Validate(dup); err == nil {
		t.Error("expected error for duplicate code")
	}
	bad := Archetypes()
	bad[2].Ranges[disposition.Driving] = Range{Min: 80, Max: 20}
	if err := Validate(bad); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestArchetypes_ReturnsCopy(t *testing.T) {
	a := Archetypes()
	a[0].Name = "mutated"
	if archetypes[0].Name == "mutated" {
		t.Error("Archetypes must not expose the backing table")
	}
}

// #endregion taxonomy-tests
