package itinerary

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/neptou/go-travel-assistant/internal/api/location"
	"github.com/neptou/go-travel-assistant/internal/types"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, name string) (*types.ResolvedLocation, error) {
	args := m.Called(ctx, name)
	loc, _ := args.Get(0).(*types.ResolvedLocation)
	return loc, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOptimizeItinerary(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves, reorders and schedules each day", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "Swayambhunath").
			Return(&types.ResolvedLocation{Latitude: 27.7104, Longitude: 85.3488}, nil)
		resolver.On("Resolve", mock.Anything, "Boudhanath Stupa").
			Return(&types.ResolvedLocation{Latitude: 27.7215, Longitude: 85.3620}, nil)
		resolver.On("Resolve", mock.Anything, "Thamel Market").
			Return(&types.ResolvedLocation{Latitude: 27.7148, Longitude: 85.2906}, nil)

		svc := NewServiceImpl(resolver, "car", "09:00 AM", 120, testLogger())

		got, err := svc.OptimizeItinerary(ctx, types.OptimizeItineraryRequest{
			Itinerary: types.Itinerary{
				Name: "Kathmandu day trip",
				Days: []types.Day{{
					DayNumber: 1,
					Activities: []types.Activity{
						{PlaceName: "Swayambhunath"},
						{PlaceName: "Thamel Market"},
						{PlaceName: "Boudhanath Stupa"},
					},
				}},
			},
			TransportMode: "car",
		})
		require.NoError(t, err)
		require.Len(t, got.Days, 1)

		day := got.Days[0]
		require.Len(t, day.Activities, 3)
		// Boudhanath is nearer to Swayambhunath than Thamel Market is.
		assert.Equal(t, "Swayambhunath", day.Activities[0].PlaceName)
		assert.Equal(t, "Boudhanath Stupa", day.Activities[1].PlaceName)
		assert.Equal(t, "Thamel Market", day.Activities[2].PlaceName)
		assert.Equal(t, "09:00 AM", day.Activities[0].StartTime)
		assert.Equal(t, "11:00 AM", day.Activities[0].EndTime)
		for _, a := range day.Activities {
			assert.NotNil(t, a.ResolvedLocation)
			assert.NotEmpty(t, a.StartTime)
			assert.NotEmpty(t, a.EndTime)
		}
	})

	t.Run("unresolved activities are kept in place and scheduled", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "Swayambhunath").
			Return(&types.ResolvedLocation{Latitude: 27.7104, Longitude: 85.3488}, nil)
		resolver.On("Resolve", mock.Anything, "somewhere nice for lunch").
			Return(nil, location.ErrNotFound)

		svc := NewServiceImpl(resolver, "car", "09:00 AM", 60, testLogger())

		got, err := svc.OptimizeItinerary(ctx, types.OptimizeItineraryRequest{
			Itinerary: types.Itinerary{
				Days: []types.Day{{
					DayNumber: 1,
					Activities: []types.Activity{
						{PlaceName: "Swayambhunath"},
						{PlaceName: "somewhere nice for lunch"},
					},
				}},
			},
		})
		require.NoError(t, err)

		day := got.Days[0]
		require.Len(t, day.Activities, 2)
		assert.Equal(t, "somewhere nice for lunch", day.Activities[1].PlaceName)
		assert.Nil(t, day.Activities[1].ResolvedLocation)
		assert.Equal(t, "10:00 AM", day.Activities[1].StartTime)
		assert.Equal(t, "11:00 AM", day.Activities[1].EndTime)
	})

	t.Run("days are optimized independently", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, mock.Anything).
			Return(&types.ResolvedLocation{Latitude: 27.71, Longitude: 85.34}, nil)

		svc := NewServiceImpl(resolver, "car", "09:00 AM", 120, testLogger())

		got, err := svc.OptimizeItinerary(ctx, types.OptimizeItineraryRequest{
			Itinerary: types.Itinerary{
				Days: []types.Day{
					{DayNumber: 1, Activities: []types.Activity{{PlaceName: "a"}}},
					{DayNumber: 2, Activities: []types.Activity{{PlaceName: "b"}}},
				},
			},
		})
		require.NoError(t, err)
		require.Len(t, got.Days, 2)
		// Both days start fresh from the day start time.
		assert.Equal(t, "09:00 AM", got.Days[0].Activities[0].StartTime)
		assert.Equal(t, "09:00 AM", got.Days[1].Activities[0].StartTime)
	})

	t.Run("submitted activity durations survive optimization", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, mock.Anything).
			Return(nil, location.ErrNotFound)

		svc := NewServiceImpl(resolver, "car", "09:00 AM", 120, testLogger())

		got, err := svc.OptimizeItinerary(ctx, types.OptimizeItineraryRequest{
			Itinerary: types.Itinerary{
				Days: []types.Day{{
					DayNumber: 1,
					Activities: []types.Activity{
						{PlaceName: "breakfast", StartTime: "08:00 AM", EndTime: "09:00 AM"},
						{PlaceName: "museum"},
					},
				}},
			},
		})
		require.NoError(t, err)

		day := got.Days[0]
		require.Len(t, day.Activities, 2)
		// The one-hour interval is kept (rebased onto the day start), the
		// untimed activity gets the default duration.
		assert.Equal(t, "09:00 AM", day.Activities[0].StartTime)
		assert.Equal(t, "10:00 AM", day.Activities[0].EndTime)
		assert.Equal(t, "10:00 AM", day.Activities[1].StartTime)
		assert.Equal(t, "12:00 PM", day.Activities[1].EndTime)
	})

	t.Run("invalid day start time is rejected", func(t *testing.T) {
		svc := NewServiceImpl(new(MockResolver), "car", "09:00 AM", 120, testLogger())

		_, err := svc.OptimizeItinerary(ctx, types.OptimizeItineraryRequest{
			Itinerary:    types.Itinerary{Days: []types.Day{{DayNumber: 1}}},
			DayStartTime: "early morning",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid time format")
	})

	t.Run("request day start overrides the default", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, mock.Anything).
			Return(nil, location.ErrNotFound)

		svc := NewServiceImpl(resolver, "car", "09:00 AM", 120, testLogger())

		got, err := svc.OptimizeItinerary(ctx, types.OptimizeItineraryRequest{
			Itinerary: types.Itinerary{
				Days: []types.Day{{DayNumber: 1, Activities: []types.Activity{{PlaceName: "a"}}}},
			},
			DayStartTime: "07:30",
		})
		require.NoError(t, err)
		assert.Equal(t, "07:30 AM", got.Days[0].Activities[0].StartTime)
	})
}
