package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neptou/go-travel-assistant/app/observability/metrics"
	"github.com/neptou/go-travel-assistant/internal/types"
)

// ErrDimensionMismatch is returned when a query embedding's dimension does
// not match the index. It is fatal to the single search call and never
// retried silently.
var ErrDimensionMismatch = errors.New("query embedding dimension does not match index dimension")

var _ Service = (*ServiceImpl)(nil)

// Embedder turns free text into an embedding vector in the same space as
// the indexed items.
type Embedder interface {
	GenerateQueryEmbedding(ctx context.Context, text string) ([]float32, error)
}

// SearchOptions tunes one search call.
type SearchOptions struct {
	// TopK caps the number of results. Values below 1 are clamped to 1.
	TopK int
	// MinScore excludes items scoring below it even when they would
	// otherwise rank in the top K. Must be within [-1, 1].
	MinScore float64
	// SourceKinds restricts the search to the given kinds. Empty means all.
	SourceKinds []types.SourceKind
	// Query carries the raw query text. It is used only by the emergency
	// boost pass for area/keyword context matching, never for scoring.
	Query string
}

// Service defines the semantic retrieval contract over the embedding index.
type Service interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]types.SearchResult, error)
	SearchVector(ctx context.Context, queryVector []float32, opts SearchOptions) ([]types.SearchResult, error)
	Reload(ctx context.Context) error
}

type ServiceImpl struct {
	logger     *slog.Logger
	index      *Index
	embedder   Embedder
	repository Repository
}

func NewServiceImpl(index *Index, repository Repository, embedder Embedder, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		index:      index,
		embedder:   embedder,
		repository: repository,
	}
}

// Search embeds the query text and ranks the index against it. An empty
// query or empty index degrades to an empty result set, never an error.
func (s *ServiceImpl) Search(ctx context.Context, query string, opts SearchOptions) ([]types.SearchResult, error) {
	ctx, span := otel.Tracer("KnowledgeService").Start(ctx, "Search", trace.WithAttributes(
		attribute.Int("search.top_k", opts.TopK),
		attribute.Float64("search.min_score", opts.MinScore),
	))
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" || s.index.Snapshot().Len() == 0 {
		span.SetStatus(codes.Ok, "Degenerate input, empty result")
		return []types.SearchResult{}, nil
	}

	queryVector, err := s.embedder.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to embed search query", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query embedding failed")
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	opts.Query = query
	return s.SearchVector(ctx, queryVector, opts)
}

// SearchVector ranks every indexed item against the query vector by cosine
// similarity and returns the top K at or above MinScore, ordered descending
// by score with ties broken by ascending item ID. Scores are computed
// independently per source kind; context-matched emergency contacts are then
// promoted in a distinct post-ranking pass.
func (s *ServiceImpl) SearchVector(ctx context.Context, queryVector []float32, opts SearchOptions) ([]types.SearchResult, error) {
	ctx, span := otel.Tracer("KnowledgeService").Start(ctx, "SearchVector")
	defer span.End()

	start := time.Now()
	snap := s.index.Snapshot()

	if snap.Len() == 0 || len(queryVector) == 0 {
		span.SetStatus(codes.Ok, "Empty index or query vector")
		return []types.SearchResult{}, nil
	}
	if len(queryVector) != snap.Dimension() {
		err := fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(queryVector), snap.Dimension())
		span.RecordError(err)
		span.SetStatus(codes.Error, "Dimension mismatch")
		return nil, err
	}

	topK := opts.TopK
	if topK < 1 {
		topK = 1
	}
	allowed := allowedKindSet(opts.SourceKinds)

	// Score each kind independently. The scoring itself is kind-agnostic;
	// kinds only matter to the merge policy below.
	byKind := make(map[types.SourceKind][]types.SearchResult, 3)
	for _, item := range snap.Items() {
		if _, ok := allowed[item.SourceKind]; !ok {
			continue
		}
		score := CosineSimilarity(queryVector, item.Embedding)
		if score < opts.MinScore {
			continue
		}
		byKind[item.SourceKind] = append(byKind[item.SourceKind], types.SearchResult{
			ID:         item.ID,
			SourceKind: item.SourceKind,
			Text:       item.Text,
			Metadata:   item.Metadata,
			Score:      score,
		})
	}

	var merged []types.SearchResult
	for _, results := range byKind {
		merged = append(merged, results...)
	}
	sortResults(merged)

	// Deliberate business rule, applied after ranking: safety-relevant
	// emergency contacts surface ahead of generic content with equal or
	// lower scores. Raw scores are never inflated.
	promoteEmergencyMatches(merged, opts.Query)

	if len(merged) > topK {
		merged = merged[:topK]
	}

	metrics.Get().SearchRequestsTotal.Add(ctx, 1)
	metrics.Get().SearchDurationSeconds.Record(ctx, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("search.results", len(merged)))
	span.SetStatus(codes.Ok, "Search completed")
	return merged, nil
}

// Reload rebuilds the index from the corpus repository and publishes it with
// an atomic swap, so concurrent searches never observe a mix of generations.
func (s *ServiceImpl) Reload(ctx context.Context) error {
	ctx, span := otel.Tracer("KnowledgeService").Start(ctx, "Reload")
	defer span.End()

	items, err := s.repository.LoadCorpus(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Corpus load failed")
		return fmt.Errorf("failed to load knowledge corpus: %w", err)
	}

	snap, err := NewSnapshot(items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Snapshot build failed")
		return fmt.Errorf("failed to build index snapshot: %w", err)
	}

	s.index.Swap(snap)
	s.logger.InfoContext(ctx, "Embedding index reloaded",
		slog.Int("items", snap.Len()),
		slog.Int("dimension", snap.Dimension()))
	span.SetStatus(codes.Ok, "Index reloaded")
	return nil
}

func allowedKindSet(kinds []types.SourceKind) map[types.SourceKind]struct{} {
	set := make(map[types.SourceKind]struct{}, 3)
	if len(kinds) == 0 {
		set[types.SourceKindPlace] = struct{}{}
		set[types.SourceKindInsight] = struct{}{}
		set[types.SourceKindEmergencyContact] = struct{}{}
		return set
	}
	for _, k := range kinds {
		if k.Valid() {
			set[k] = struct{}{}
		}
	}
	return set
}

// sortResults orders descending by score with a stable, deterministic
// secondary key (ascending ID), so identical inputs always produce
// identical output order.
func sortResults(results []types.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}

// promoteEmergencyMatches moves each context-matched emergency contact ahead
// of any other-kind result with an equal or lower score. On an already
// sorted slice this only ever promotes past equal-scoring neighbours, which
// resolves cross-kind score ties deterministically in favour of safety
// content.
func promoteEmergencyMatches(results []types.SearchResult, query string) {
	if query == "" {
		return
	}
	for i := 1; i < len(results); i++ {
		if results[i].SourceKind != types.SourceKindEmergencyContact {
			continue
		}
		if !matchesEmergencyContext(results[i].Metadata, query) {
			continue
		}
		for j := i; j > 0; j-- {
			prev := results[j-1]
			if prev.SourceKind == types.SourceKindEmergencyContact || prev.Score > results[j].Score {
				break
			}
			results[j-1], results[j] = results[j], results[j-1]
		}
	}
}

// matchesEmergencyContext reports whether the query mentions the contact's
// area or any of its service tags.
func matchesEmergencyContext(meta types.ItemMetadata, query string) bool {
	q := strings.ToLower(query)
	if meta.Area != "" && strings.Contains(q, strings.ToLower(meta.Area)) {
		return true
	}
	for _, tag := range meta.Tags {
		if tag != "" && strings.Contains(q, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}
