package diary

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// #region helpers

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	s, err := NewStore(db)
	require.NoError(t, err)
	return s
}

// #endregion helpers

// #region store-tests

func TestAddAndGet(t *testing.T) {
	s := testStore(t)
	at := time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)

	added, err := s.Add("u1", Entry{
		Content:    "Morning run by the river",
		Mood:       " Happy ",
		Activities: []string{"Running", "running"},
		Tags:       []string{"River", ""},
		Persona:    "RE",
		Weather:    "clear sky",
		CreatedAt:  at,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "happy", added.Mood)
	assert.Equal(t, []string{"running"}, added.Activities)
	assert.Equal(t, []string{"river"}, added.Tags)

	got, err := s.Get("u1", added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.Content, got.Content)
	assert.Equal(t, "RE", got.Persona)
	assert.Equal(t, "clear sky", got.Weather)
	assert.True(t, at.Equal(got.CreatedAt))

	_, err = s.Get("u2", added.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAddRejectsEmptyContent(t *testing.T) {
	s := testStore(t)
	_, err := s.Add("u1", Entry{Content: "   "})
	assert.Error(t, err)
}

func TestAddDetectsActivities(t *testing.T) {
	s := testStore(t)
	e, err := s.Add("u1", Entry{Content: "오늘은 친구들과 요리를 하고 책을 읽었다"})
	require.NoError(t, err)
	assert.Equal(t, []string{"reading", "cooking", "socializing"}, e.Activities)
}

func TestListNewestFirst(t *testing.T) {
	s := testStore(t)
	for _, c := range []string{"first", "second", "third"} {
		_, err := s.Add("u1", Entry{Content: c})
		require.NoError(t, err)
	}
	_, _ = s.Add("u2", Entry{Content: "other user"})

	list, err := s.List("u1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Content)
	assert.Equal(t, "second", list[1].Content)
}

func TestSearch(t *testing.T) {
	s := testStore(t)
	_, _ = s.Add("u1", Entry{Content: "Quiet evening with a BOOK", Tags: []string{"calm"}})
	_, _ = s.Add("u1", Entry{Content: "Team meeting ran long", Activities: []string{"work"}, Tags: []string{"office"}})
	_, _ = s.Add("u1", Entry{Content: "비 오는 날 산책", Tags: []string{"rain"}})
	_, _ = s.Add("u2", Entry{Content: "another book"})

	tests := []struct {
		query string
		want  []string
	}{
		{"book", []string{"Quiet evening with a BOOK"}},
		{"OFFICE", []string{"Team meeting ran long"}},
		{"work", []string{"Team meeting ran long"}},
		{"산책", []string{"비 오는 날 산책"}},
		{"walking", []string{"비 오는 날 산책"}},
		{"100%", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Search("u1", tt.query)
			require.NoError(t, err)
			var contents []string
			for _, e := range got {
				contents = append(contents, e.Content)
			}
			assert.Equal(t, tt.want, contents)
		})
	}
}

func TestSearch_FoldsNonASCIICase(t *testing.T) {
	s := testStore(t)
	_, err := s.Add("u1", Entry{Content: "Ärger im Büro heute", Tags: []string{"ÉTÉ"}})
	require.NoError(t, err)

	for _, q := range []string{"ärger", "BÜRO", "été"} {
		got, err := s.Search("u1", q)
		require.NoError(t, err, q)
		require.Len(t, got, 1, q)
		assert.Equal(t, "Ärger im Büro heute", got[0].Content)
	}
}

func TestStats(t *testing.T) {
	s := testStore(t)
	_, _ = s.Add("u1", Entry{Content: "gym then reading", Mood: "happy"})
	_, _ = s.Add("u1", Entry{Content: "long workout", Mood: "tired"})
	_, _ = s.Add("u1", Entry{Content: "nothing much", Mood: "happy"})

	st, err := s.Stats("u1")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, map[string]int{"happy": 2, "tired": 1}, st.MoodDistribution)
	assert.Equal(t, map[string]int{"exercise": 2, "reading": 1}, st.ActivityFrequency)
	assert.Equal(t, []Count{{"exercise", 2}, {"reading", 1}}, st.TopActivities(5))
	assert.Len(t, st.TopActivities(1), 1)

	empty, err := s.Stats("nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.MoodDistribution)
}

// #endregion store-tests

// #region detect-tests

func TestDetectActivities(t *testing.T) {
	assert.Nil(t, DetectActivities("   "))
	assert.Equal(t, []string{"music", "travel"}, DetectActivities("Concert during my trip"))
	assert.Equal(t, []string{"meditation"}, DetectActivities("아침 요가"))
}

// #endregion detect-tests
