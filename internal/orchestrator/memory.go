package orchestrator

// #region imports
import (
	"database/sql"
	"math"
	"time"
)

// #endregion

// #region schema

const intentRoutesSchema = `
CREATE TABLE IF NOT EXISTS intent_routes (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    intent        TEXT NOT NULL,
    source        TEXT NOT NULL,
    confidence    REAL NOT NULL,
    service_ok    INTEGER,
    created_at    TEXT NOT NULL
);
`

const intentRoutesIndex = `
CREATE INDEX IF NOT EXISTS idx_intent_routes_created
ON intent_routes(created_at);
`

// #endregion

// #region memory-struct

// RoutingMemory persists intent routing outcomes in SQLite and scores the
// remote classifier's recent reliability.
type RoutingMemory struct {
	db  *sql.DB
	now func() time.Time
}

// NewRoutingMemory initializes the intent_routes table and returns a RoutingMemory.
func NewRoutingMemory(db *sql.DB) (*RoutingMemory, error) {
	if _, err := db.Exec(intentRoutesSchema); err != nil {
		return nil, err
	}
	if _, err := db.Exec(intentRoutesIndex); err != nil {
		return nil, err
	}
	return &RoutingMemory{db: db, now: time.Now}, nil
}

// #endregion

// #region record-route

// RouteRecord is a single row for intent_routes. ServiceOK is nil when the
// remote classifier was not consulted.
type RouteRecord struct {
	Intent     Intent
	Source     IntentSource
	Confidence float64
	ServiceOK  *bool
	CreatedAt  time.Time
}

// RecordRoute persists a single routing outcome.
func (m *RoutingMemory) RecordRoute(rec RouteRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	var ok interface{}
	if rec.ServiceOK != nil {
		if *rec.ServiceOK {
			ok = 1
		} else {
			ok = 0
		}
	}
	_, err := m.db.Exec(`
		INSERT INTO intent_routes (intent, source, confidence, service_ok, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(rec.Intent),
		string(rec.Source),
		rec.Confidence,
		ok,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// #endregion

// #region service-health

// minHealthSamples is the number of service calls needed before health
// is trusted.
const minHealthSamples = 3

// ServiceHealth returns the decay-weighted success rate of remote classifier
// calls and the sample count. Returns (1, n, nil) when n < minHealthSamples.
func (m *RoutingMemory) ServiceHealth() (float64, int, error) {
	rows, err := m.db.Query(`
		SELECT service_ok, created_at
		FROM intent_routes
		WHERE service_ok IS NOT NULL`,
	)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	now := m.now()
	halfLife := 24.0 // hours
	var weightedOK, totalWeight float64
	count := 0

	for rows.Next() {
		var ok int
		var createdAtStr string
		if err := rows.Scan(&ok, &createdAtStr); err != nil {
			return 0, 0, err
		}
		createdAt, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			continue
		}
		ageHours := now.Sub(createdAt).Hours()
		weight := math.Exp(-ageHours / halfLife)
		weightedOK += float64(ok) * weight
		totalWeight += weight
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}

	if count < minHealthSamples || totalWeight == 0 {
		return 1, count, nil
	}
	return weightedOK / totalWeight, count, nil
}

// IntentCounts returns how often each intent was routed since t.
func (m *RoutingMemory) IntentCounts(since time.Time) (map[Intent]int, error) {
	rows, err := m.db.Query(`
		SELECT intent, COUNT(*) FROM intent_routes
		WHERE created_at >= ?
		GROUP BY intent`,
		since.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[Intent]int{}
	for rows.Next() {
		var intent string
		var n int
		if err := rows.Scan(&intent, &n); err != nil {
			return nil, err
		}
		out[Intent(intent)] = n
	}
	return out, rows.Err()
}

// #endregion
