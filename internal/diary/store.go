package diary

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an entry does not exist for the user.
var ErrNotFound = errors.New("diary entry not found")

// #region types

// Entry is one diary record. Persona and Weather are filled in by the
// caller from the current classification and context.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	Mood       string    `json:"mood"`
	Activities []string  `json:"activities"`
	Tags       []string  `json:"tags"`
	Persona    string    `json:"persona,omitempty"`
	Weather    string    `json:"weather,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Stats aggregates a user's diary.
type Stats struct {
	Total             int            `json:"total"`
	MoodDistribution  map[string]int `json:"mood_distribution"`
	ActivityFrequency map[string]int `json:"activity_frequency"`
}

// Count is a label with its frequency.
type Count struct {
	Label string
	N     int
}

// TopActivities returns activities by descending frequency, ties by name.
func (s Stats) TopActivities(n int) []Count {
	out := make([]Count, 0, len(s.ActivityFrequency))
	for k, v := range s.ActivityFrequency {
		out = append(out, Count{Label: k, N: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Label < out[j].Label
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// #endregion types

// #region store

// Store persists diary entries in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates the diary_entries table if needed and returns a store.
func NewStore(db *sql.DB) (*Store, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS diary_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entry_id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		mood TEXT NOT NULL DEFAULT '',
		activities TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]',
		persona TEXT,
		weather TEXT,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create diary_entries table: %w", err)
	}
	return &Store{db: db}, nil
}

// Add stores e for userID and returns it with ID and CreatedAt set. When
// no activities are given they are detected from the content.
func (s *Store) Add(userID string, e Entry) (Entry, error) {
	if strings.TrimSpace(e.Content) == "" {
		return Entry{}, errors.New("add diary entry: empty content")
	}
	e.ID = uuid.New().String()
	e.UserID = userID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if len(e.Activities) == 0 {
		e.Activities = DetectActivities(e.Content)
	}
	e.Mood = strings.ToLower(strings.TrimSpace(e.Mood))
	e.Activities = normalize(e.Activities)
	e.Tags = normalize(e.Tags)

	acts, err := json.Marshal(e.Activities)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal activities: %w", err)
	}
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal tags: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO diary_entries (entry_id, user_id, content, mood, activities, tags, persona, weather, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, userID, e.Content, e.Mood, string(acts), string(tags),
		nullIfEmpty(e.Persona), nullIfEmpty(e.Weather), e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert diary entry: %w", err)
	}
	return e, nil
}

const selectEntry = `SELECT entry_id, user_id, content, mood, activities, tags, persona, weather, created_at FROM diary_entries`

// Get returns one entry owned by userID.
func (s *Store) Get(userID, id string) (Entry, error) {
	rows, err := s.db.Query(selectEntry+` WHERE user_id = ? AND entry_id = ?`, userID, id)
	if err != nil {
		return Entry{}, fmt.Errorf("get diary entry: %w", err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return entries[0], nil
}

// List returns the user's most recent entries, newest first.
func (s *Store) List(userID string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(selectEntry+` WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list diary entries: %w", err)
	}
	return scanEntries(rows)
}

// Search returns entries whose content, tags or activities contain query,
// case-insensitively, newest first.
func (s *Store) Search(userID, query string) ([]Entry, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	// SQLite's LOWER and LIKE fold ASCII only, so matching happens in Go
	rows, err := s.db.Query(selectEntry+` WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("search diary entries: %w", err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range entries {
		if matches(e, q) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Stats returns the mood distribution and activity frequency for userID.
func (s *Store) Stats(userID string) (Stats, error) {
	rows, err := s.db.Query(`SELECT mood, activities FROM diary_entries WHERE user_id = ?`, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("diary stats: %w", err)
	}
	defer rows.Close()

	st := Stats{MoodDistribution: map[string]int{}, ActivityFrequency: map[string]int{}}
	for rows.Next() {
		var mood, acts string
		if err := rows.Scan(&mood, &acts); err != nil {
			return Stats{}, fmt.Errorf("scan diary stats: %w", err)
		}
		st.Total++
		if mood != "" {
			st.MoodDistribution[mood]++
		}
		var list []string
		if err := json.Unmarshal([]byte(acts), &list); err != nil {
			return Stats{}, fmt.Errorf("unmarshal activities: %w", err)
		}
		for _, a := range list {
			st.ActivityFrequency[a]++
		}
	}
	return st, rows.Err()
}

// #endregion store

// #region helpers

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var acts, tags, ts string
		var persona, weather sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.Mood, &acts, &tags, &persona, &weather, &ts); err != nil {
			return nil, fmt.Errorf("scan diary entry: %w", err)
		}
		if err := json.Unmarshal([]byte(acts), &e.Activities); err != nil {
			return nil, fmt.Errorf("unmarshal activities: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		e.Persona = persona.String
		e.Weather = weather.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func matches(e Entry, q string) bool {
	if strings.Contains(strings.ToLower(e.Content), q) {
		return true
	}
	for _, list := range [][]string{e.Tags, e.Activities} {
		for _, v := range list {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
	}
	return false
}

func normalize(in []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
