package search

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks broll/internal/search Catalog,Embedder

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"broll/internal/catalog"
	"broll/internal/contextutil"
	"broll/internal/vectorindex"
)

const (
	// rrfK dampens the head of each ranking so that appearing in both
	// lists beats topping one of them.
	rrfK = 60

	// candidateMultiplier sizes each source's candidate pool relative to
	// the requested limit, giving fusion room to promote overlap.
	candidateMultiplier = 3
)

// Mode selects which retrieval paths a search uses.
type Mode string

const (
	ModeHybrid   Mode = "hybrid"
	ModeKeyword  Mode = "keyword"
	ModeSemantic Mode = "semantic"
)

// ParseMode maps a user-supplied mode string to a Mode, defaulting to
// hybrid for anything unrecognized.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeKeyword:
		return ModeKeyword
	case ModeSemantic:
		return ModeSemantic
	default:
		return ModeHybrid
	}
}

// Catalog is the slice of the catalog store the engine needs.
type Catalog interface {
	SearchText(ctx context.Context, query string, limit int) ([]catalog.TextMatch, error)
	SearchVector(ctx context.Context, query []float32, k int) ([]vectorindex.Match, error)
	GetManyByIDs(ctx context.Context, ids []int64) ([]*catalog.Entry, error)
}

// Embedder turns query text into an embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Hit is one search result. Score is mode-dependent: the fused RRF
// score for hybrid, negated FTS rank for keyword, cosine distance for
// semantic. Within one response higher-ranked hits always come first.
type Hit struct {
	Entry     *catalog.Entry
	Score     float64
	InLexical bool
	InVector  bool
}

// Engine runs keyword, semantic, and hybrid searches over the catalog.
// Hybrid fuses the two candidate lists with Reciprocal Rank Fusion:
// each source contributes weight / (k + rank + 1) per candidate and the
// contributions add, so clips found by both sources rise.
type Engine struct {
	catalog  Catalog
	embedder Embedder

	LexicalWeight float64
	VectorWeight  float64
}

// NewEngine creates an engine with equal source weights.
func NewEngine(c Catalog, e Embedder) *Engine {
	return &Engine{catalog: c, embedder: e, LexicalWeight: 1.0, VectorWeight: 1.0}
}

// Search runs a query in the given mode and returns at most limit hits.
// A blank query returns no hits. Source failures degrade rather than
// fail: a hybrid search with an unreachable embedder still returns the
// lexical results.
func (e *Engine) Search(ctx context.Context, query string, mode Mode, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	switch mode {
	case ModeKeyword:
		return e.keywordSearch(ctx, query, limit)
	case ModeSemantic:
		return e.semanticSearch(ctx, query, limit)
	default:
		return e.hybridSearch(ctx, query, limit)
	}
}

func (e *Engine) keywordSearch(ctx context.Context, query string, limit int) ([]Hit, error) {
	matches := e.lexicalCandidates(ctx, query, limit)
	ids := make([]int64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	entries, err := e.catalog.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword results: %w", err)
	}

	rank := make(map[int64]float64, len(matches))
	for _, m := range matches {
		rank[m.ID] = m.Rank
	}
	hits := make([]Hit, 0, len(entries))
	for _, entry := range entries {
		hits = append(hits, Hit{Entry: entry, Score: -rank[entry.ID], InLexical: true})
	}
	return hits, nil
}

func (e *Engine) semanticSearch(ctx context.Context, query string, limit int) ([]Hit, error) {
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	matches, err := e.catalog.SearchVector(ctx, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}

	ids := make([]int64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	entries, err := e.catalog.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load semantic results: %w", err)
	}

	distance := make(map[int64]float64, len(matches))
	for _, m := range matches {
		distance[m.ID] = m.Distance
	}
	hits := make([]Hit, 0, len(entries))
	for _, entry := range entries {
		hits = append(hits, Hit{Entry: entry, Score: distance[entry.ID], InVector: true})
	}
	return hits, nil
}

type fused struct {
	id        int64
	score     float64
	inLexical bool
	inVector  bool
}

func (e *Engine) hybridSearch(ctx context.Context, query string, limit int) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)
	pool := limit * candidateMultiplier

	lexical := e.lexicalCandidates(ctx, query, pool)

	var vector []vectorindex.Match
	if vec, err := e.embedder.Embed(ctx, query); err != nil {
		logger.WarnContext(ctx, "embedding unavailable, falling back to lexical only", "error", err)
	} else if matches, err := e.catalog.SearchVector(ctx, vec, pool); err != nil {
		logger.WarnContext(ctx, "vector search failed, falling back to lexical only", "error", err)
	} else {
		vector = matches
	}

	byID := make(map[int64]*fused)
	var order []int64

	accumulate := func(id int64, contribution float64, lex bool) {
		f, ok := byID[id]
		if !ok {
			f = &fused{id: id}
			byID[id] = f
			order = append(order, id)
		}
		f.score += contribution
		if lex {
			f.inLexical = true
		} else {
			f.inVector = true
		}
	}
	for rank, m := range lexical {
		accumulate(m.ID, e.LexicalWeight/float64(rrfK+rank+1), true)
	}
	for rank, m := range vector {
		accumulate(m.ID, e.VectorWeight/float64(rrfK+rank+1), false)
	}

	// Stable sort keeps first-seen order for exact ties, so results are
	// deterministic across runs.
	sort.SliceStable(order, func(i, j int) bool {
		return byID[order[i]].score > byID[order[j]].score
	})
	if len(order) > limit {
		order = order[:limit]
	}

	entries, err := e.catalog.GetManyByIDs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to load hybrid results: %w", err)
	}

	hits := make([]Hit, 0, len(entries))
	for _, entry := range entries {
		f := byID[entry.ID]
		hits = append(hits, Hit{Entry: entry, Score: f.score, InLexical: f.inLexical, InVector: f.inVector})
	}
	return hits, nil
}

// lexicalCandidates runs the FTS query, retrying with every term quoted
// and OR-joined when the raw query is invalid FTS5 syntax or matches
// nothing. Quoting turns operator characters in user queries ("drone-
// shot", "b&w") into plain terms.
func (e *Engine) lexicalCandidates(ctx context.Context, query string, limit int) []catalog.TextMatch {
	logger := contextutil.LoggerFromContext(ctx)

	matches, err := e.catalog.SearchText(ctx, query, limit)
	if err == nil && len(matches) > 0 {
		return matches
	}
	if err != nil {
		logger.DebugContext(ctx, "raw text query failed, retrying quoted", "query", query, "error", err)
	}

	fallback := quotedOrQuery(query)
	if fallback == "" {
		return nil
	}
	matches, err = e.catalog.SearchText(ctx, fallback, limit)
	if err != nil {
		logger.WarnContext(ctx, "text search failed", "query", fallback, "error", err)
		return nil
	}
	return matches
}

func quotedOrQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}
