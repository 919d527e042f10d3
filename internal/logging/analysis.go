package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS analysis_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	analysis_id    TEXT NOT NULL UNIQUE,
	user_id        TEXT NOT NULL,
	version_id     TEXT,
	archetype_code TEXT NOT NULL,
	confidence     REAL NOT NULL,
	trigger_type   TEXT NOT NULL,
	record_json    TEXT,
	degraded       INTEGER NOT NULL DEFAULT 0,
	fallbacks      TEXT,
	created_at     TEXT NOT NULL
);
`

// EnsureSchema creates the analysis_log table if needed.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create analysis_log: %w", err)
	}
	return nil
}
// #endregion schema

// #region log-analysis
// LogAnalysis writes an entry to the analysis_log table.
func LogAnalysis(db *sql.DB, entry AnalysisEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO analysis_log (analysis_id, user_id, version_id, archetype_code, confidence, trigger_type, record_json, degraded, fallbacks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.AnalysisID,
		entry.UserID,
		nullIfEmpty(entry.VersionID),
		entry.ArchetypeCode,
		entry.Confidence,
		entry.Trigger,
		nullIfEmpty(entry.RecordJSON),
		entry.Degraded,
		nullIfEmpty(entry.Fallbacks),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log analysis: %w", err)
	}
	return nil
}
// #endregion log-analysis

// #region list-analyses
// ListAnalyses returns a user's most recent entries, newest first.
func ListAnalyses(db *sql.DB, userID string, limit int) ([]AnalysisEntry, error) {
	rows, err := db.Query(
		`SELECT analysis_id, user_id, version_id, archetype_code, confidence, trigger_type, record_json, degraded, fallbacks, created_at
		 FROM analysis_log WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []AnalysisEntry
	for rows.Next() {
		var e AnalysisEntry
		var versionID, recordJSON, fallbacks sql.NullString
		var createdStr string
		if err := rows.Scan(&e.AnalysisID, &e.UserID, &versionID, &e.ArchetypeCode, &e.Confidence,
			&e.Trigger, &recordJSON, &e.Degraded, &fallbacks, &createdStr); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		e.VersionID = versionID.String
		e.RecordJSON = recordJSON.String
		e.Fallbacks = fallbacks.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion list-analyses

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
