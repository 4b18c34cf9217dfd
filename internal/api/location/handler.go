package location

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/neptou/go-travel-assistant/internal/api"
	"github.com/neptou/go-travel-assistant/internal/types"
)

type Handler struct {
	catalog  *Catalog
	resolver Resolver
	logger   *slog.Logger
}

func NewHandler(catalog *Catalog, resolver Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:  catalog,
		resolver: resolver,
		logger:   logger,
	}
}

// ListPlaces returns catalog entries filtered by optional category and area
// query parameters.
func (h *Handler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("LocationHandler").Start(r.Context(), "ListPlaces", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places"),
	))
	defer span.End()

	category := r.URL.Query().Get("category")
	area := r.URL.Query().Get("area")

	places := h.catalog.Filter(category, area)
	total := len(places)

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if limit < len(places) {
			places = places[:limit]
		}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.PlacesResponse{
		Places: places,
		Count:  len(places),
		Total:  total,
	})
}

// ResolveLocation resolves a single place name to coordinates.
func (h *Handler) ResolveLocation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LocationHandler").Start(r.Context(), "ResolveLocation", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/locations/resolve"),
	))
	defer span.End()

	name := r.URL.Query().Get("name")
	if name == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing required query parameter: name")
		return
	}

	loc, err := h.resolver.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Location not found: "+name)
			return
		}
		h.logger.ErrorContext(ctx, "Location resolution failed",
			slog.String("name", name), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "An error occurred resolving the location")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, loc)
}
