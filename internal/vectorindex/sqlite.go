package vectorindex

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// SQLiteIndex stores embeddings as float32 blobs in the catalog database
// itself, so vectors travel with the media. Search is a brute-force
// cosine scan; catalogs are thousands of clips, not millions, and a full
// scan of a few thousand 768-dim vectors is well under a millisecond.
type SQLiteIndex struct {
	db *sql.DB
}

// NewSQLiteIndex creates the index over an open catalog database. The
// clips_vec table is created by the catalog migration.
func NewSQLiteIndex(db *sql.DB) *SQLiteIndex {
	return &SQLiteIndex{db: db}
}

// Upsert stores or replaces the vector for an entry.
func (s *SQLiteIndex) Upsert(ctx context.Context, id int64, vec []float32) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clips_vec (clip_id, embedding) VALUES (?, ?)
		 ON CONFLICT (clip_id) DO UPDATE SET embedding = excluded.embedding`,
		id, EncodeVector(vec),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vector for clip %d: %w", id, err)
	}
	return nil
}

// UpsertTx is the transactional variant used inside the catalog store's
// write transaction.
func (s *SQLiteIndex) UpsertTx(tx *sql.Tx, id int64, vec []float32) error {
	_, err := tx.Exec(
		`INSERT INTO clips_vec (clip_id, embedding) VALUES (?, ?)
		 ON CONFLICT (clip_id) DO UPDATE SET embedding = excluded.embedding`,
		id, EncodeVector(vec),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vector for clip %d: %w", id, err)
	}
	return nil
}

// Delete removes the vector for an entry.
func (s *SQLiteIndex) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM clips_vec WHERE clip_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete vector for clip %d: %w", id, err)
	}
	return nil
}

// DeleteTx is the transactional variant of Delete.
func (s *SQLiteIndex) DeleteTx(tx *sql.Tx, id int64) error {
	if _, err := tx.Exec("DELETE FROM clips_vec WHERE clip_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete vector for clip %d: %w", id, err)
	}
	return nil
}

// Count reports how many vectors are stored.
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clips_vec").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return n, nil
}

// Search scans all stored vectors and returns the k nearest by cosine
// distance, ascending.
func (s *SQLiteIndex) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	rows, err := s.db.QueryContext(ctx, "SELECT clip_id, embedding FROM clips_vec")
	if err != nil {
		return nil, fmt.Errorf("failed to scan vectors: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var matches []Match
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan vector row: %w", err)
		}
		vec, err := DecodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("corrupt vector for clip %d: %w", id, err)
		}
		matches = append(matches, Match{ID: id, Distance: cosineDistance(query, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vectors: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
