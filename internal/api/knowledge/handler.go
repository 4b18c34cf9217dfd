package knowledge

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/neptou/go-travel-assistant/internal/api"
	"github.com/neptou/go-travel-assistant/internal/types"
)

const (
	maxQueryLength  = 200
	defaultTopK     = 20
	defaultMinScore = 0.2
)

type Handler struct {
	searchService Service
	logger        *slog.Logger
}

func NewHandler(searchService Service, logger *slog.Logger) *Handler {
	return &Handler{
		searchService: searchService,
		logger:        logger,
	}
}

// Search handles semantic search over the knowledge base.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("KnowledgeHandler").Start(r.Context(), "Search", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/search"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Search"))

	var req types.SearchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Query == "" || len(req.Query) > maxQueryLength {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid search query (max 200 characters)")
		return
	}

	opts := SearchOptions{
		TopK:        req.TopK,
		MinScore:    defaultMinScore,
		SourceKinds: req.SourceKinds,
	}
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if req.MinScore != nil {
		if *req.MinScore < -1 || *req.MinScore > 1 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "min_score must be within [-1, 1]")
			return
		}
		opts.MinScore = *req.MinScore
	}

	results, err := h.searchService.Search(ctx, req.Query, opts)
	if err != nil {
		if errors.Is(err, ErrDimensionMismatch) {
			l.ErrorContext(ctx, "Query embedding dimension mismatch", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		l.ErrorContext(ctx, "Search failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "An error occurred during search")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.SearchResponse{
		Query:   req.Query,
		Results: results,
		Count:   len(results),
	})
}

// ReloadIndex rebuilds the embedding index from the corpus files and
// publishes it atomically.
func (h *Handler) ReloadIndex(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("KnowledgeHandler").Start(r.Context(), "ReloadIndex", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/knowledge/reload"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ReloadIndex"))

	if err := h.searchService.Reload(ctx); err != nil {
		l.ErrorContext(ctx, "Index reload failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to reload knowledge index")
		return
	}

	l.InfoContext(ctx, "Knowledge index reloaded")
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "Knowledge index reloaded"})
}
