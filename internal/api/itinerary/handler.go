package itinerary

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/neptou/go-travel-assistant/internal/api"
	"github.com/neptou/go-travel-assistant/internal/types"
)

type Handler struct {
	itineraryService Service
	logger           *slog.Logger
}

func NewHandler(itineraryService Service, logger *slog.Logger) *Handler {
	return &Handler{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

// Optimize reorders and schedules the submitted itinerary.
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "Optimize", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itinerary/optimize"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Optimize"))

	var req types.OptimizeItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Itinerary.Days) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Itinerary must contain at least one day")
		return
	}

	optimized, err := h.itineraryService.OptimizeItinerary(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Itinerary optimization failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, optimized)
}
