package trips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/neptou/go-travel-assistant/app/observability/metrics"
	"github.com/neptou/go-travel-assistant/internal/types"
)

// ErrTripNotFound is returned when no trip exists for the given ID.
var ErrTripNotFound = errors.New("trip not found")

// DB is the slice of pgxpool.Pool the repository uses. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ensure RepositoryImpl implements the Repository interface
var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the interface for trip persistence
type Repository interface {
	CreateTrip(ctx context.Context, name string, itinerary types.Itinerary) (types.Trip, error)
	GetTrip(ctx context.Context, tripID uuid.UUID) (types.Trip, error)
	ListTrips(ctx context.Context, page, pageSize int) ([]types.Trip, int, error)
	UpdateTrip(ctx context.Context, tripID uuid.UUID, name string, itinerary types.Itinerary) (types.Trip, error)
	DeleteTrip(ctx context.Context, tripID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     DB
}

func NewRepository(db DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

// CreateTrip inserts a new trip with its itinerary stored as JSONB
func (r *RepositoryImpl) CreateTrip(ctx context.Context, name string, itinerary types.Itinerary) (types.Trip, error) {
	start := time.Now()
	defer func() {
		metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	itineraryData, err := json.Marshal(itinerary)
	if err != nil {
		return types.Trip{}, fmt.Errorf("failed to marshal itinerary: %w", err)
	}

	query := `
        INSERT INTO trips (id, name, itinerary_data, created_at, updated_at)
        VALUES ($1, $2, $3, now(), now())
        RETURNING id, name, itinerary_data, created_at, updated_at
    `
	row := r.db.QueryRow(ctx, query, uuid.New(), name, itineraryData)
	trip, err := scanTrip(row)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to create trip", slog.Any("error", err))
		return types.Trip{}, fmt.Errorf("failed to create trip: %w", err)
	}
	return trip, nil
}

// GetTrip retrieves a trip by its ID
func (r *RepositoryImpl) GetTrip(ctx context.Context, tripID uuid.UUID) (types.Trip, error) {
	query := `
        SELECT id, name, itinerary_data, created_at, updated_at
        FROM trips
        WHERE id = $1
    `
	row := r.db.QueryRow(ctx, query, tripID)
	trip, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Trip{}, ErrTripNotFound
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to get trip", slog.Any("error", err))
		return types.Trip{}, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

// ListTrips returns one page of trips, newest first, plus the total count
func (r *RepositoryImpl) ListTrips(ctx context.Context, page, pageSize int) ([]types.Trip, int, error) {
	start := time.Now()
	defer func() {
		metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips`).Scan(&total); err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	query := `
        SELECT id, name, itinerary_data, created_at, updated_at
        FROM trips
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2
    `
	rows, err := r.db.Query(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	trips := make([]types.Trip, 0, pageSize)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan trip row: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate trip rows: %w", err)
	}
	return trips, total, nil
}

// UpdateTrip replaces a trip's name and itinerary
func (r *RepositoryImpl) UpdateTrip(ctx context.Context, tripID uuid.UUID, name string, itinerary types.Itinerary) (types.Trip, error) {
	itineraryData, err := json.Marshal(itinerary)
	if err != nil {
		return types.Trip{}, fmt.Errorf("failed to marshal itinerary: %w", err)
	}

	query := `
        UPDATE trips
        SET name = $2, itinerary_data = $3, updated_at = now()
        WHERE id = $1
        RETURNING id, name, itinerary_data, created_at, updated_at
    `
	row := r.db.QueryRow(ctx, query, tripID, name, itineraryData)
	trip, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Trip{}, ErrTripNotFound
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to update trip", slog.Any("error", err))
		return types.Trip{}, fmt.Errorf("failed to update trip: %w", err)
	}
	return trip, nil
}

// DeleteTrip removes a trip by its ID
func (r *RepositoryImpl) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, tripID)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to delete trip", slog.Any("error", err))
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}

func scanTrip(row pgx.Row) (types.Trip, error) {
	var trip types.Trip
	var itineraryData []byte
	if err := row.Scan(&trip.ID, &trip.Name, &itineraryData, &trip.CreatedAt, &trip.UpdatedAt); err != nil {
		return types.Trip{}, err
	}
	if err := json.Unmarshal(itineraryData, &trip.Itinerary); err != nil {
		return types.Trip{}, fmt.Errorf("failed to unmarshal itinerary data: %w", err)
	}
	return trip, nil
}
