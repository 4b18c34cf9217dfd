package itinerary

import (
	"math"

	"github.com/neptou/go-travel-assistant/internal/types"
)

const earthRadiusKm = 6371

// distanceTolerance absorbs floating point noise when comparing candidate
// distances, so ties resolve by original itinerary order instead of by
// accumulated rounding error.
const distanceTolerance = 1e-9

// haversineKm calculates the great-circle distance between two points in km.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// optimizeRoute reorders a day's resolved activities into a greedy
// nearest-neighbour route. The first resolved activity anchors the route
// unless an explicit start location is given. Unresolved activities keep
// their exact original positions; only the resolved ones move between the
// remaining slots. With one or zero resolved activities there is nothing to
// reorder.
func optimizeRoute(activities []types.Activity, start *types.ResolvedLocation) []types.Activity {
	out := make([]types.Activity, len(activities))
	copy(out, activities)

	var slots []int
	for i, a := range activities {
		if a.ResolvedLocation != nil {
			slots = append(slots, i)
		}
	}
	if len(slots) <= 1 {
		return out
	}

	remaining := make([]types.Activity, 0, len(slots))
	for _, i := range slots {
		remaining = append(remaining, activities[i])
	}

	route := make([]types.Activity, 0, len(remaining))
	current := start
	if current == nil {
		route = append(route, remaining[0])
		current = remaining[0].ResolvedLocation
		remaining = remaining[1:]
	}

	for len(remaining) > 0 {
		best := 0
		bestDist := haversineKm(current.Latitude, current.Longitude,
			remaining[0].ResolvedLocation.Latitude, remaining[0].ResolvedLocation.Longitude)
		for j := 1; j < len(remaining); j++ {
			d := haversineKm(current.Latitude, current.Longitude,
				remaining[j].ResolvedLocation.Latitude, remaining[j].ResolvedLocation.Longitude)
			if d < bestDist-distanceTolerance {
				best, bestDist = j, d
			}
		}
		next := remaining[best]
		route = append(route, next)
		current = next.ResolvedLocation
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	for k, i := range slots {
		out[i] = route[k]
	}
	return out
}
