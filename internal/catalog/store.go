package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"broll/internal/contextutil"
	"broll/internal/vectorindex"
)

const schema = `
CREATE TABLE IF NOT EXISTS clips (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_path TEXT NOT NULL UNIQUE,
	file_name TEXT NOT NULL,
	size_bytes INTEGER NOT NULL,
	file_hash TEXT NOT NULL,
	device TEXT NOT NULL,
	preview_path TEXT NOT NULL DEFAULT '',
	duration_seconds REAL,
	width INTEGER,
	height INTEGER,
	resolution TEXT NOT NULL DEFAULT '',
	fps REAL,
	codec TEXT NOT NULL DEFAULT '',
	creation_date TEXT NOT NULL DEFAULT '',
	latitude REAL,
	longitude REAL,
	location_name TEXT NOT NULL DEFAULT '',
	scene_description TEXT,
	tags TEXT,
	mood TEXT,
	camera_movement TEXT,
	time_of_day TEXT,
	thumbnail_path TEXT NOT NULL DEFAULT '',
	processed_at TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clips_hash ON clips (file_path, file_hash);

CREATE VIRTUAL TABLE IF NOT EXISTS clips_fts USING fts5(
	name, scene_description, tags, mood, camera_movement, time_of_day, location_name
);

CREATE TABLE IF NOT EXISTS clips_vec (
	clip_id INTEGER PRIMARY KEY,
	embedding BLOB NOT NULL
);
`

// Open opens (creating if needed) the catalog database at path and runs
// the migration. WAL keeps readers unblocked during ingestion; a single
// connection sidesteps SQLITE_BUSY on the write path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// Store is the catalog of clips. It owns the clips table and its
// full-text mirror, and keeps the configured vector index in step with
// every write so the three views never disagree about which clips exist.
type Store struct {
	db      *sql.DB
	vectors vectorindex.Index

	// mu serializes writers. SQLite allows one writer at a time anyway;
	// holding the lock across the whole delete-then-insert keeps the
	// vector write-through ordered for non-transactional backends too.
	mu sync.Mutex
}

// NewStore wraps an open catalog database and a vector index.
func NewStore(db *sql.DB, vectors vectorindex.Index) *Store {
	return &Store{db: db, vectors: vectors}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for index backends that live in the
// same database file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Put inserts an entry, replacing any existing entry at the same path.
// Replacement is delete-then-insert so a re-fingerprinted file gets a
// fresh id and no stale analysis, FTS, or vector rows survive. The
// entry row and its FTS mirror commit in one transaction; when the
// vector index supports transactional writes the embedding commits with
// them, otherwise it is written through after commit.
func (s *Store) Put(ctx context.Context, entry *Entry, embedding []float32) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := contextutil.LoggerFromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txVec, vecInTx := s.vectors.(vectorindex.TxWriter)

	// Remove any previous entry at this path along with its mirrors.
	var oldID int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM clips WHERE file_path = ?", entry.Path).Scan(&oldID)
	switch {
	case err == sql.ErrNoRows:
		oldID = 0
	case err != nil:
		return 0, fmt.Errorf("failed to look up existing entry: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, "DELETE FROM clips WHERE id = ?", oldID); err != nil {
			return 0, fmt.Errorf("failed to delete existing entry: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM clips_fts WHERE rowid = ?", oldID); err != nil {
			return 0, fmt.Errorf("failed to delete existing search row: %w", err)
		}
		if vecInTx {
			if err := txVec.DeleteTx(tx, oldID); err != nil {
				return 0, fmt.Errorf("failed to delete existing vector: %w", err)
			}
		}
	}

	tags, err := marshalTags(entry.Tags)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	if entry.ProcessedAt.IsZero() {
		entry.ProcessedAt = now
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO clips (
			file_path, file_name, size_bytes, file_hash, device, preview_path,
			duration_seconds, width, height, resolution, fps, codec, creation_date,
			latitude, longitude, location_name,
			scene_description, tags, mood, camera_movement, time_of_day,
			thumbnail_path, processed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Path, entry.Name, entry.SizeBytes, entry.Fingerprint, entry.Device, entry.PreviewPath,
		entry.DurationSeconds, entry.Width, entry.Height, entry.Resolution, entry.FPS, entry.Codec, entry.CreationDate,
		entry.Latitude, entry.Longitude, entry.LocationName,
		entry.SceneDescription, tags, entry.Mood, entry.CameraMovement, entry.TimeOfDay,
		entry.ThumbnailPath, entry.ProcessedAt.Format(time.RFC3339), entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get entry id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO clips_fts (rowid, name, scene_description, tags, mood, camera_movement, time_of_day, location_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, entry.Name, deref(entry.SceneDescription), strings.Join(entry.Tags, " "),
		deref(entry.Mood), deref(entry.CameraMovement), deref(entry.TimeOfDay), entry.LocationName,
	); err != nil {
		return 0, fmt.Errorf("failed to insert search row: %w", err)
	}

	if vecInTx && len(embedding) > 0 {
		if err := txVec.UpsertTx(tx, id, embedding); err != nil {
			return 0, fmt.Errorf("failed to store vector: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit entry: %w", err)
	}
	entry.ID = id

	// Remote vector backends are written through after commit; a failure
	// here leaves the entry searchable by text, so log and move on.
	if !vecInTx {
		if oldID != 0 {
			if err := s.vectors.Delete(ctx, oldID); err != nil {
				logger.WarnContext(ctx, "failed to delete stale vector", "id", oldID, "error", err)
			}
		}
		if len(embedding) > 0 {
			if err := s.vectors.Upsert(ctx, id, embedding); err != nil {
				logger.WarnContext(ctx, "failed to write vector", "id", id, "error", err)
			}
		}
	}

	return id, nil
}

// Delete removes an entry and its search and vector rows. Deleting a
// missing id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM clips WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM clips_fts WHERE rowid = ?", id); err != nil {
		return fmt.Errorf("failed to delete search row: %w", err)
	}
	if txVec, ok := s.vectors.(vectorindex.TxWriter); ok {
		if err := txVec.DeleteTx(tx, id); err != nil {
			return fmt.Errorf("failed to delete vector: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	if _, ok := s.vectors.(vectorindex.TxWriter); !ok {
		if err := s.vectors.Delete(ctx, id); err != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to delete vector", "id", id, "error", err)
		}
	}
	return nil
}

const entryColumns = `
	id, file_path, file_name, size_bytes, file_hash, device, preview_path,
	duration_seconds, width, height, resolution, fps, codec, creation_date,
	latitude, longitude, location_name,
	scene_description, tags, mood, camera_movement, time_of_day,
	thumbnail_path, processed_at, created_at`

// GetByPath returns the entry at a relative path, or ErrNotFound.
func (s *Store) GetByPath(ctx context.Context, path string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT"+entryColumns+" FROM clips WHERE file_path = ?", path)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry by path: %w", err)
	}
	return entry, nil
}

// GetByID returns the entry with the given id, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT"+entryColumns+" FROM clips WHERE id = ?", id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry by id: %w", err)
	}
	return entry, nil
}

// GetManyByIDs returns the entries for the given ids, preserving input
// order. Ids with no entry are silently dropped; fused rankings can
// reference entries deleted since the candidate lists were built.
func (s *Store) GetManyByIDs(ctx context.Context, ids []int64) ([]*Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT"+entryColumns+" FROM clips WHERE id IN ("+strings.Join(placeholders, ", ")+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	byID := make(map[int64]*Entry, len(ids))
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		byID[entry.ID] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	ordered := make([]*Entry, 0, len(ids))
	for _, id := range ids {
		if entry, ok := byID[id]; ok {
			ordered = append(ordered, entry)
		}
	}
	return ordered, nil
}

// AllFingerprints returns path -> fingerprint for every cataloged clip,
// the lookup the scanner uses to skip unchanged files.
func (s *Store) AllFingerprints(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT file_path, file_hash FROM clips")
	if err != nil {
		return nil, fmt.Errorf("failed to list fingerprints: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint row: %w", err)
		}
		out[path] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fingerprints: %w", err)
	}
	return out, nil
}

// List returns entries ordered by path, paged by limit and offset. A
// limit of 0 or less returns everything.
func (s *Store) List(ctx context.Context, limit, offset int) ([]*Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+entryColumns+" FROM clips ORDER BY file_path LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

// SearchText runs an FTS5 MATCH query and returns hits best-first. An
// unmatchable or syntactically invalid query is the caller's problem;
// the search engine handles fallback quoting.
func (s *Store) SearchText(ctx context.Context, query string, limit int) ([]TextMatch, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT rowid, rank FROM clips_fts WHERE clips_fts MATCH ? ORDER BY rank LIMIT ?", query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search text: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var matches []TextMatch
	for rows.Next() {
		var m TextMatch
		if err := rows.Scan(&m.ID, &m.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search rows: %w", err)
	}
	return matches, nil
}

// SearchVector returns the k nearest entries to the query embedding.
func (s *Store) SearchVector(ctx context.Context, query []float32, k int) ([]vectorindex.Match, error) {
	return s.vectors.Search(ctx, query, k)
}

// Stats summarizes the catalog.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ClipsByDevice: make(map[string]int)}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(size_bytes), 0),
			COALESCE(SUM(duration_seconds), 0),
			COALESCE(SUM(CASE WHEN scene_description IS NOT NULL AND scene_description NOT LIKE 'ERROR:%' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN scene_description LIKE 'ERROR:%' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN latitude IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(MIN(NULLIF(creation_date, '')), ''),
			COALESCE(MAX(NULLIF(creation_date, '')), '')
		FROM clips`).Scan(
		&stats.TotalClips, &stats.TotalSizeBytes, &stats.TotalDuration,
		&stats.AnalyzedClips, &stats.FailedClips, &stats.ClipsWithGPS,
		&stats.EarliestCreated, &stats.LatestCreated,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT device, COUNT(*) FROM clips GROUP BY device")
	if err != nil {
		return nil, fmt.Errorf("failed to count devices: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var device string
		var n int
		if err := rows.Scan(&device, &n); err != nil {
			return nil, fmt.Errorf("failed to scan device count: %w", err)
		}
		stats.ClipsByDevice[device] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate device counts: %w", err)
	}

	// Ask the configured index so the count is right for remote backends
	// too, not just the in-file table.
	embedded, err := s.vectors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count embeddings: %w", err)
	}
	stats.EmbeddedClips = embedded
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var tags sql.NullString
	var processedAt, createdAt string

	err := row.Scan(
		&e.ID, &e.Path, &e.Name, &e.SizeBytes, &e.Fingerprint, &e.Device, &e.PreviewPath,
		&e.DurationSeconds, &e.Width, &e.Height, &e.Resolution, &e.FPS, &e.Codec, &e.CreationDate,
		&e.Latitude, &e.Longitude, &e.LocationName,
		&e.SceneDescription, &tags, &e.Mood, &e.CameraMovement, &e.TimeOfDay,
		&e.ThumbnailPath, &processedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if tags.Valid {
		if err := json.Unmarshal([]byte(tags.String), &e.Tags); err != nil {
			return nil, fmt.Errorf("corrupt tags for clip %d: %w", e.ID, err)
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
	}
	if t, err := time.Parse(time.RFC3339, processedAt); err == nil {
		e.ProcessedAt = t
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		e.CreatedAt = t
	}
	return &e, nil
}

func marshalTags(tags []string) (any, error) {
	if tags == nil {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
