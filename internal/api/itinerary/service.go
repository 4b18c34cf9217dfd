package itinerary

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neptou/go-travel-assistant/app/observability/metrics"
	"github.com/neptou/go-travel-assistant/internal/api/location"
	"github.com/neptou/go-travel-assistant/internal/types"
)

// Defaults applied when a request leaves the knobs unset.
const (
	defaultDayStart     = "09:00 AM"
	defaultVisitMinutes = 120
)

var _ Service = (*ServiceImpl)(nil)

// Service optimizes itineraries: resolves activity locations, reorders each
// day into a short route and assigns a time schedule.
type Service interface {
	OptimizeItinerary(ctx context.Context, req types.OptimizeItineraryRequest) (*types.Itinerary, error)
}

type ServiceImpl struct {
	logger        *slog.Logger
	resolver      location.Resolver
	dayStart      string
	visitMinutes  int
	transportMode string
}

// NewServiceImpl wires the optimizer. Empty dayStart or non-positive
// visitMinutes fall back to the package defaults; transportMode is the
// default for requests that do not specify one.
func NewServiceImpl(resolver location.Resolver, transportMode, dayStart string, visitMinutes int, logger *slog.Logger) *ServiceImpl {
	if dayStart == "" {
		dayStart = defaultDayStart
	}
	if visitMinutes <= 0 {
		visitMinutes = defaultVisitMinutes
	}
	return &ServiceImpl{
		logger:        logger,
		resolver:      resolver,
		dayStart:      dayStart,
		visitMinutes:  visitMinutes,
		transportMode: transportMode,
	}
}

// OptimizeItinerary processes each day independently: activities are
// resolved to coordinates, reordered into a greedy nearest-neighbour route
// and scheduled from the day start time. Activities that cannot be resolved
// keep their original positions and never block the rest of the day.
func (s *ServiceImpl) OptimizeItinerary(ctx context.Context, req types.OptimizeItineraryRequest) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "OptimizeItinerary", trace.WithAttributes(
		attribute.Int("itinerary.days", len(req.Itinerary.Days)),
		attribute.String("itinerary.transport_mode", req.TransportMode),
	))
	defer span.End()

	begin := time.Now()
	modeStr := req.TransportMode
	if modeStr == "" {
		modeStr = s.transportMode
	}
	mode := types.ParseTransportMode(modeStr)

	dayStartStr := req.DayStartTime
	if dayStartStr == "" {
		dayStartStr = s.dayStart
	}
	dayStart, err := parseClock(dayStartStr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid day start time")
		return nil, err
	}

	optimized := types.Itinerary{
		Name: req.Itinerary.Name,
		Days: make([]types.Day, 0, len(req.Itinerary.Days)),
	}

	for _, day := range req.Itinerary.Days {
		activities := s.resolveActivities(ctx, day.Activities)
		activities = optimizeRoute(activities, nil)
		activities = scheduleDay(activities, dayStart, s.visitMinutes, mode)
		optimized.Days = append(optimized.Days, types.Day{
			DayNumber:  day.DayNumber,
			Activities: activities,
		})
	}

	metrics.Get().OptimizeRequestsTotal.Add(ctx, 1)
	metrics.Get().OptimizeDurationSecs.Record(ctx, time.Since(begin).Seconds())
	span.SetStatus(codes.Ok, "Itinerary optimized")
	return &optimized, nil
}

// resolveActivities annotates each activity with its resolved location. A
// failed resolution is logged and the activity kept unlocated.
func (s *ServiceImpl) resolveActivities(ctx context.Context, activities []types.Activity) []types.Activity {
	out := make([]types.Activity, len(activities))
	copy(out, activities)

	for i := range out {
		if out[i].ResolvedLocation != nil {
			continue
		}
		loc, err := s.resolver.Resolve(ctx, out[i].PlaceName)
		if err != nil {
			if !errors.Is(err, location.ErrNotFound) {
				s.logger.ErrorContext(ctx, "Location resolution failed",
					slog.String("place", out[i].PlaceName), slog.Any("error", err))
			} else {
				s.logger.DebugContext(ctx, "Activity location unresolved",
					slog.String("place", out[i].PlaceName))
			}
			continue
		}
		out[i].ResolvedLocation = loc
	}
	return out
}
