package trips

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/neptou/go-travel-assistant/internal/api"
	"github.com/neptou/go-travel-assistant/internal/types"
)

type Handler struct {
	tripsService Service
	logger       *slog.Logger
}

func NewHandler(tripsService Service, logger *slog.Logger) *Handler {
	return &Handler{
		tripsService: tripsService,
		logger:       logger,
	}
}

// SaveTrip persists a named itinerary.
func (h *Handler) SaveTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "SaveTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SaveTrip"))

	var req types.SaveTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.tripsService.SaveTrip(ctx, req)
	if err != nil {
		if errors.Is(err, ErrInvalidTrip) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to save trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save trip")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, trip)
}

// GetTrip returns one saved trip by ID.
func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "GetTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	trip, err := h.tripsService.GetTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to get trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get trip")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

// ListTrips returns a page of saved trips, newest first.
func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "ListTrips", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips"),
	))
	defer span.End()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	resp, err := h.tripsService.ListTrips(ctx, page, pageSize)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list trips")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// UpdateTrip replaces a saved trip's name and itinerary.
func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "UpdateTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	var req types.SaveTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.tripsService.UpdateTrip(ctx, tripID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTrip):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrTripNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		default:
			h.logger.ErrorContext(ctx, "Failed to update trip", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update trip")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

// DeleteTrip removes a saved trip.
func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "DeleteTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	if err := h.tripsService.DeleteTrip(ctx, tripID); err != nil {
		if errors.Is(err, ErrTripNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to delete trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete trip")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
