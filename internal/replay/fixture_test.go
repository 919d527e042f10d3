package replay

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// #region fixture-tests

// TestFixture_DriftSession is the regression baseline: if analyzer tables,
// fusion weights or archetype bands change, the per-observation actions drift.
func TestFixture_DriftSession(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "drift_session.yaml"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.UserID != "replay-user" {
		t.Errorf("user_id = %q", f.UserID)
	}
	if want := time.Date(2026, 7, 1, 19, 0, 0, 0, time.UTC); !f.Observations[4].At.Equal(want) {
		t.Errorf("obs-5 at = %v, want %v", f.Observations[4].At, want)
	}

	results, err := Replay(f.Observations)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(results) != len(f.Expected) {
		t.Fatalf("expected %d results, got %d", len(f.Expected), len(results))
	}
	for i, expected := range f.Expected {
		actual := results[i]
		if actual.ObservationID != expected.ID {
			t.Errorf("obs %d: expected id=%s, got %s", i, expected.ID, actual.ObservationID)
		}
		if actual.Result.Archetype.Code != expected.Archetype {
			t.Errorf("obs %d (%s): expected archetype=%s, got %s (final %v)",
				i, expected.ID, expected.Archetype, actual.Result.Archetype.Code, actual.Result.Final)
		}
		if actual.Action != expected.Action {
			t.Errorf("obs %d (%s): expected action=%s, got %s (%s)",
				i, expected.ID, expected.Action, actual.Action, actual.Evolution.Summary)
		}
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	if _, err := LoadFixture("testdata/nonexistent.yaml"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadFixture_Invalid(t *testing.T) {
	tests := map[string]string{
		"malformed":       "observations: [",
		"unknown field":   "user_id: u\nobservatons:\n  - id: a\n",
		"no observations": "user_id: u\nobservations: []\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatalf("write temp file: %v", err)
			}
			if _, err := LoadFixture(path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoadFixture_DefaultsIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.yaml")
	body := "user_id: u\nobservations:\n  - text: calm\n  - id: named\n    text: calm\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.Observations[0].ID != "obs-1" || f.Observations[1].ID != "named" {
		t.Errorf("ids = %s, %s", f.Observations[0].ID, f.Observations[1].ID)
	}
	req := f.Observations[0].ToRequest("u")
	if req.Trigger != "replay" || req.Text == nil || *req.Text != "calm" {
		t.Errorf("unexpected request %+v", req)
	}
}

// #endregion fixture-tests
