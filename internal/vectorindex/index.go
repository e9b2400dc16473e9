package vectorindex

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index.go -package=mocks broll/internal/vectorindex Index

import (
	"context"
	"database/sql"
)

// Match is one nearest-neighbor result. Distance is ascending-better
// (0 = identical direction for cosine distance).
type Match struct {
	ID       int64
	Distance float64
}

// Index is a nearest-neighbor index over fixed-dimension embeddings,
// holding at most one vector per catalog entry id.
type Index interface {
	// Upsert stores or replaces the vector for an entry.
	Upsert(ctx context.Context, id int64, vec []float32) error

	// Delete removes the vector for an entry. Deleting a missing id is
	// not an error.
	Delete(ctx context.Context, id int64) error

	// Search returns up to k matches ranked by ascending distance.
	Search(ctx context.Context, query []float32, k int) ([]Match, error)

	// Count reports how many vectors the index holds.
	Count(ctx context.Context) (int, error)
}

// TxWriter is implemented by indexes that can participate in the catalog
// store's write transaction, making the entry/vector write atomic.
type TxWriter interface {
	UpsertTx(tx *sql.Tx, id int64, vec []float32) error
	DeleteTx(tx *sql.Tx, id int64) error
}
