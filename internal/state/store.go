package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/persona-fusion/internal/disposition"
	"github.com/danielpatrickdp/persona-fusion/internal/persona"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS persona_versions (
	version_id     TEXT PRIMARY KEY,
	parent_id      TEXT,
	user_id        TEXT NOT NULL,
	archetype_code TEXT NOT NULL,
	confidence     REAL NOT NULL,
	final_vector   BLOB NOT NULL,
	scores_json    TEXT NOT NULL,
	context_json   TEXT,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES persona_versions(version_id)
);

CREATE INDEX IF NOT EXISTS idx_persona_versions_user ON persona_versions(user_id, created_at);

CREATE TABLE IF NOT EXISTS active_persona (
	user_id       TEXT PRIMARY KEY,
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES persona_versions(version_id)
);
`

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
// #endregion schema

// #region store-struct
// Store manages versioned persona snapshots in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for the analysis log and diary tables.
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region save
// Save inserts snap as a new version and makes it the user's active one.
// Empty VersionID, ParentID and CreatedAt are filled in: the parent is the
// currently active version.
func (s *Store) Save(snap Snapshot) (Snapshot, error) {
	if snap.UserID == "" {
		return Snapshot{}, errors.New("save snapshot: empty user id")
	}
	if snap.VersionID == "" {
		snap.VersionID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	scoresJSON, err := json.Marshal(snap.Result.Scores)
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal scores: %w", err)
	}
	var ctxPtr interface{}
	if snap.Context != nil {
		b, err := json.Marshal(snap.Context)
		if err != nil {
			return Snapshot{}, fmt.Errorf("marshal context: %w", err)
		}
		ctxPtr = string(b)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if snap.ParentID == "" {
		var active string
		err := tx.QueryRow(`SELECT version_id FROM active_persona WHERE user_id = ?`, snap.UserID).Scan(&active)
		switch {
		case err == nil:
			snap.ParentID = active
		case !errors.Is(err, sql.ErrNoRows):
			return Snapshot{}, fmt.Errorf("get active: %w", err)
		}
	}
	var parentPtr interface{}
	if snap.ParentID != "" {
		parentPtr = snap.ParentID
	}

	_, err = tx.Exec(
		`INSERT INTO persona_versions (version_id, parent_id, user_id, archetype_code, confidence, final_vector, scores_json, context_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.VersionID, parentPtr, snap.UserID, snap.Result.Archetype.Code, snap.Result.Confidence,
		encodeVector(snap.Result.Final), string(scoresJSON), ctxPtr, snap.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_persona (user_id, version_id) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET version_id = excluded.version_id`,
		snap.UserID, snap.VersionID,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("commit: %w", err)
	}
	return snap, nil
}
// #endregion save

// #region latest
// Latest returns the user's active snapshot, or ErrNoSnapshot.
func (s *Store) Latest(userID string) (Snapshot, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_persona WHERE user_id = ?`, userID).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("user %s: %w", userID, ErrNoSnapshot)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get active: %w", err)
	}
	return s.Get(versionID)
}
// #endregion latest

// #region get
const selectColumns = `SELECT version_id, parent_id, user_id, archetype_code, confidence, final_vector, scores_json, context_json, created_at
		 FROM persona_versions`

// Get retrieves a specific snapshot by version ID.
func (s *Store) Get(versionID string) (Snapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRow(selectColumns+` WHERE version_id = ?`, versionID))
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("version %s: %w", versionID, ErrNoSnapshot)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get version %s: %w", versionID, err)
	}
	return snap, nil
}
// #endregion get

// #region list
// List returns the user's most recent snapshots, newest first.
func (s *Store) List(userID string, limit int) ([]Snapshot, error) {
	rows, err := s.db.Query(
		selectColumns+` WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
// #endregion list

// #region rollback
// Rollback points the user's active snapshot at an earlier version.
func (s *Store) Rollback(userID, targetVersionID string) error {
	var owner string
	err := s.db.QueryRow(
		`SELECT user_id FROM persona_versions WHERE version_id = ?`, targetVersionID,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return fmt.Errorf("version %s for user %s: %w", targetVersionID, userID, ErrNoSnapshot)
	}
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}

	_, err = s.db.Exec(`UPDATE active_persona SET version_id = ? WHERE user_id = ?`, targetVersionID, userID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
// #endregion rollback

// #region scan
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r rowScanner) (Snapshot, error) {
	var snap Snapshot
	var parentID, contextJSON sql.NullString
	var code, scoresJSON, createdStr string
	var vecBlob []byte

	err := r.Scan(&snap.VersionID, &parentID, &snap.UserID, &code, &snap.Result.Confidence,
		&vecBlob, &scoresJSON, &contextJSON, &createdStr)
	if err != nil {
		return Snapshot{}, err
	}
	if parentID.Valid {
		snap.ParentID = parentID.String
	}
	if a, ok := persona.Lookup(code); ok {
		snap.Result.Archetype = a
	} else {
		snap.Result.Archetype = persona.Archetype{Code: code}
	}
	snap.Result.Final = decodeVector(vecBlob)
	if err := json.Unmarshal([]byte(scoresJSON), &snap.Result.Scores); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal scores: %w", err)
	}
	if contextJSON.Valid {
		var cs ContextSummary
		if err := json.Unmarshal([]byte(contextJSON.String), &cs); err != nil {
			return Snapshot{}, fmt.Errorf("unmarshal context: %w", err)
		}
		snap.Context = &cs
	}
	snap.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	return snap, nil
}
// #endregion scan

// #region vector-encoding
// Scores are 0-100 so each trait fits one byte.
func encodeVector(v disposition.Vector) []byte {
	buf := make([]byte, disposition.NumTraits)
	for i, score := range v {
		buf[i] = byte(disposition.Clamp(score))
	}
	return buf
}

func decodeVector(b []byte) disposition.Vector {
	var v disposition.Vector
	for i := range v {
		if i < len(b) {
			v[i] = int(b[i])
		}
	}
	return v
}
// #endregion vector-encoding
