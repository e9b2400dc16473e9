package vectorindex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"broll/internal/contextutil"
)

// QdrantIndex is an opt-in remote vector index backend for catalogs
// large enough that the in-file brute-force scan stops being free. The
// catalog remains authoritative; this index can always be rebuilt from
// the stored entries.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantIndex connects to Qdrant at urlStr ("http://host:port"; the
// gRPC port is derived as HTTP port + 1) and ensures the collection
// exists with the given vector size and cosine distance.
func NewQdrantIndex(ctx context.Context, urlStr, collection string, vectorSize int) (*QdrantIndex, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	idx := &QdrantIndex{client: client, collection: collection}
	if err := idx.ensureCollection(ctx, vectorSize); err != nil {
		return nil, err
	}
	return idx, nil
}

func (q *QdrantIndex) ensureCollection(ctx context.Context, vectorSize int) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Upsert stores or replaces the vector for an entry.
func (q *QdrantIndex) Upsert(ctx context.Context, id int64, vec []float32) error {
	logger := contextutil.LoggerFromContext(ctx)

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDNum(uint64(id)),
				Vectors: qdrant.NewVectors(vec...),
			},
		},
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert point", "collection", q.collection, "id", id, "error", err)
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

// Delete removes the vector for an entry.
func (q *QdrantIndex) Delete(ctx context.Context, id int64) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points:         qdrant.NewPointsSelector(qdrant.NewIDNum(uint64(id))),
	})
	if err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}
	return nil
}

// Count reports how many points the collection holds.
func (q *QdrantIndex) Count(ctx context.Context) (int, error) {
	n, err := q.client.Count(ctx, &qdrant.CountPoints{CollectionName: q.collection})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(n), nil
}

// Search returns up to k matches by ascending cosine distance. Qdrant
// reports cosine similarity (descending-better), converted here so both
// backends rank the same way.
func (q *QdrantIndex) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	scored, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	matches := make([]Match, 0, len(scored))
	for _, p := range scored {
		if p.Id == nil {
			continue
		}
		matches = append(matches, Match{
			ID:       int64(p.Id.GetNum()),
			Distance: 1 - float64(p.Score),
		})
	}
	return matches, nil
}
