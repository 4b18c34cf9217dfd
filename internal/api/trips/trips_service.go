package trips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neptou/go-travel-assistant/internal/types"
)

// ErrInvalidTrip is returned for requests that fail validation.
var ErrInvalidTrip = errors.New("invalid trip")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the interface for saving and retrieving trips
type Service interface {
	SaveTrip(ctx context.Context, req types.SaveTripRequest) (types.Trip, error)
	GetTrip(ctx context.Context, tripID uuid.UUID) (types.Trip, error)
	ListTrips(ctx context.Context, page, pageSize int) (types.PaginatedTripsResponse, error)
	UpdateTrip(ctx context.Context, tripID uuid.UUID, req types.SaveTripRequest) (types.Trip, error)
	DeleteTrip(ctx context.Context, tripID uuid.UUID) error
}

type ServiceImpl struct {
	logger     *slog.Logger
	repository Repository
}

func NewServiceImpl(repository Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		repository: repository,
	}
}

func validateTrip(req types.SaveTripRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTrip)
	}
	if len(req.Itinerary.Days) == 0 {
		return fmt.Errorf("%w: itinerary must contain at least one day", ErrInvalidTrip)
	}
	return nil
}

func (s *ServiceImpl) SaveTrip(ctx context.Context, req types.SaveTripRequest) (types.Trip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "SaveTrip", trace.WithAttributes(
		attribute.String("trip.name", req.Name),
	))
	defer span.End()

	if err := validateTrip(req); err != nil {
		span.SetStatus(codes.Error, "Validation failed")
		return types.Trip{}, err
	}

	trip, err := s.repository.CreateTrip(ctx, strings.TrimSpace(req.Name), req.Itinerary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create failed")
		return types.Trip{}, err
	}
	s.logger.InfoContext(ctx, "Trip saved", slog.String("trip_id", trip.ID.String()))
	span.SetStatus(codes.Ok, "Trip saved")
	return trip, nil
}

func (s *ServiceImpl) GetTrip(ctx context.Context, tripID uuid.UUID) (types.Trip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "GetTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	trip, err := s.repository.GetTrip(ctx, tripID)
	if err != nil {
		span.SetStatus(codes.Error, "Get failed")
		return types.Trip{}, err
	}
	span.SetStatus(codes.Ok, "Trip fetched")
	return trip, nil
}

func (s *ServiceImpl) ListTrips(ctx context.Context, page, pageSize int) (types.PaginatedTripsResponse, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "ListTrips")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	trips, total, err := s.repository.ListTrips(ctx, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "List failed")
		return types.PaginatedTripsResponse{}, err
	}
	span.SetStatus(codes.Ok, "Trips listed")
	return types.PaginatedTripsResponse{
		Trips:        trips,
		TotalRecords: total,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

func (s *ServiceImpl) UpdateTrip(ctx context.Context, tripID uuid.UUID, req types.SaveTripRequest) (types.Trip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "UpdateTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	if err := validateTrip(req); err != nil {
		span.SetStatus(codes.Error, "Validation failed")
		return types.Trip{}, err
	}

	trip, err := s.repository.UpdateTrip(ctx, tripID, strings.TrimSpace(req.Name), req.Itinerary)
	if err != nil {
		span.SetStatus(codes.Error, "Update failed")
		return types.Trip{}, err
	}
	span.SetStatus(codes.Ok, "Trip updated")
	return trip, nil
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "DeleteTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	if err := s.repository.DeleteTrip(ctx, tripID); err != nil {
		span.SetStatus(codes.Error, "Delete failed")
		return err
	}
	s.logger.InfoContext(ctx, "Trip deleted", slog.String("trip_id", tripID.String()))
	span.SetStatus(codes.Ok, "Trip deleted")
	return nil
}
