package itinerary

import (
	"fmt"
	"math"
	"time"

	"github.com/neptou/go-travel-assistant/internal/types"
)

const (
	clockLayout12 = "03:04 PM"
	clockLayout24 = "15:04"
)

// parseClock accepts both 12-hour ("09:00 AM") and 24-hour ("09:00") wall
// clock strings.
func parseClock(s string) (time.Time, error) {
	if t, err := time.Parse(clockLayout12, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(clockLayout24, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time format %q, expected %q or %q", s, clockLayout12, clockLayout24)
}

// travelMinutes returns the rounded-up travel time between two resolved
// locations at the mode's assumed speed. Either side unresolved means the
// travel time is unknown, which schedules as zero.
func travelMinutes(from, to *types.ResolvedLocation, mode types.TransportMode) int {
	if from == nil || to == nil {
		return 0
	}
	km := haversineKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	return int(math.Ceil(km / mode.SpeedKmh() * 60))
}

// activityMinutes is the visit duration for one activity: the length of its
// incoming start/end interval when both parse and end is after start,
// otherwise the default. Malformed or missing times never error, they just
// fall back.
func activityMinutes(a types.Activity, visitMinutes int) int {
	if a.StartTime == "" || a.EndTime == "" {
		return visitMinutes
	}
	start, err := parseClock(a.StartTime)
	if err != nil {
		return visitMinutes
	}
	end, err := parseClock(a.EndTime)
	if err != nil {
		return visitMinutes
	}
	if !end.After(start) {
		return visitMinutes
	}
	return int(end.Sub(start).Minutes())
}

// scheduleDay assigns start and end times to an already ordered day. An
// activity keeps its submitted duration when its input times form a valid
// interval and gets the default visit duration otherwise; consecutive
// resolved activities are separated by the travel time between them.
func scheduleDay(activities []types.Activity, dayStart time.Time, visitMinutes int, mode types.TransportMode) []types.Activity {
	out := make([]types.Activity, len(activities))
	copy(out, activities)

	current := dayStart
	for i := range out {
		if i > 0 {
			current = current.Add(time.Duration(travelMinutes(out[i-1].ResolvedLocation, out[i].ResolvedLocation, mode)) * time.Minute)
		}
		end := current.Add(time.Duration(activityMinutes(out[i], visitMinutes)) * time.Minute)
		out[i].StartTime = current.Format(clockLayout12)
		out[i].EndTime = end.Format(clockLayout12)
		current = end
	}
	return out
}
