package location

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neptou/go-travel-assistant/app/observability/metrics"
	"github.com/neptou/go-travel-assistant/internal/api/knowledge"
	"github.com/neptou/go-travel-assistant/internal/types"
)

// ErrNotFound is returned when a place name cannot be resolved to
// coordinates by either the catalog or the semantic fallback.
var ErrNotFound = errors.New("location not found")

// Searcher is the slice of the knowledge service the resolver needs for its
// semantic fallback.
type Searcher interface {
	Search(ctx context.Context, query string, opts knowledge.SearchOptions) ([]types.SearchResult, error)
}

// Resolver maps free-form place names to coordinates.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*types.ResolvedLocation, error)
}

var _ Resolver = (*ResolverImpl)(nil)

// ResolverImpl resolves names in two steps: an exact catalog lookup first,
// then a semantic search over place embeddings. Resolutions are cached
// because itineraries tend to repeat the same handful of places.
type ResolverImpl struct {
	logger   *slog.Logger
	catalog  *Catalog
	searcher Searcher
	cache    *cache.Cache
	minScore float64
}

func NewResolver(catalog *Catalog, searcher Searcher, minScore float64, logger *slog.Logger) *ResolverImpl {
	return &ResolverImpl{
		logger:   logger,
		catalog:  catalog,
		searcher: searcher,
		cache:    cache.New(30*time.Minute, 10*time.Minute),
		minScore: minScore,
	}
}

// Resolve returns the coordinates for a place name, or ErrNotFound. A
// catalog hit settles the resolution either way: an entry without
// coordinates resolves to ErrNotFound rather than falling through to the
// semantic search, which would only guess at a place we already know.
func (r *ResolverImpl) Resolve(ctx context.Context, name string) (*types.ResolvedLocation, error) {
	ctx, span := otel.Tracer("LocationResolver").Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("location.name", name),
	))
	defer span.End()

	key := normalizeName(name)
	if key == "" {
		span.SetStatus(codes.Error, "Empty name")
		return nil, ErrNotFound
	}

	if cached, found := r.cache.Get(key); found {
		span.SetAttributes(attribute.String("location.source", "cache"))
		span.SetStatus(codes.Ok, "Cache hit")
		return cached.(*types.ResolvedLocation), nil
	}

	if place, ok := r.catalog.Lookup(name); ok {
		if !place.HasCoordinates() {
			span.SetStatus(codes.Error, "Catalog entry without coordinates")
			return nil, ErrNotFound
		}
		loc := &types.ResolvedLocation{
			Latitude:  *place.Latitude,
			Longitude: *place.Longitude,
			Area:      place.Area,
			Category:  place.Category,
		}
		r.cache.SetDefault(key, loc)
		span.SetAttributes(attribute.String("location.source", "catalog"))
		span.SetStatus(codes.Ok, "Catalog hit")
		return loc, nil
	}

	loc, err := r.resolveBySearch(ctx, name)
	if err != nil {
		span.SetStatus(codes.Error, "Unresolved")
		return nil, err
	}
	r.cache.SetDefault(key, loc)
	span.SetAttributes(attribute.String("location.source", "vector_search"))
	span.SetStatus(codes.Ok, "Fallback hit")
	return loc, nil
}

func (r *ResolverImpl) resolveBySearch(ctx context.Context, name string) (*types.ResolvedLocation, error) {
	metrics.Get().ResolverFallbackTotal.Add(ctx, 1)

	results, err := r.searcher.Search(ctx, name, knowledge.SearchOptions{
		TopK:        1,
		MinScore:    r.minScore,
		SourceKinds: []types.SourceKind{types.SourceKindPlace},
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Semantic location fallback failed",
			slog.String("name", name), slog.Any("error", err))
		return nil, ErrNotFound
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	meta := results[0].Metadata
	if meta.Latitude == nil || meta.Longitude == nil {
		return nil, ErrNotFound
	}
	r.logger.DebugContext(ctx, "Resolved location via semantic search",
		slog.String("name", name),
		slog.String("matched", results[0].Text),
		slog.Float64("score", results[0].Score))
	return &types.ResolvedLocation{
		Latitude:  *meta.Latitude,
		Longitude: *meta.Longitude,
		Area:      meta.Area,
		Category:  meta.Category,
	}, nil
}
