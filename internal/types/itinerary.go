package types

import (
	"time"

	"github.com/google/uuid"
)

// TransportMode selects the assumed travel speed between activities.
type TransportMode string

const (
	TransportModeCar    TransportMode = "car"
	TransportModeWalk   TransportMode = "walk"
	TransportModePublic TransportMode = "public"
)

// SpeedKmh returns the assumed average speed for the mode. Unknown modes
// fall back to car.
func (m TransportMode) SpeedKmh() float64 {
	switch m {
	case TransportModeWalk:
		return 5
	case TransportModePublic:
		return 25
	default:
		return 40
	}
}

// ParseTransportMode maps a request string onto a known mode, defaulting to
// car for empty or unrecognised values.
func ParseTransportMode(s string) TransportMode {
	switch TransportMode(s) {
	case TransportModeWalk:
		return TransportModeWalk
	case TransportModePublic:
		return TransportModePublic
	default:
		return TransportModeCar
	}
}

// Activity is one itinerary entry. StartTime and EndTime are wall-clock
// strings ("09:00 AM"); they are absent until scheduling has run.
// ResolvedLocation is populated by the location resolver; activities it
// could not resolve keep a nil location and are excluded from geometric
// reasoning but never dropped.
type Activity struct {
	PlaceName        string            `json:"place_name"`
	Notes            string            `json:"notes,omitempty"`
	StartTime        string            `json:"start_time,omitempty"`
	EndTime          string            `json:"end_time,omitempty"`
	ResolvedLocation *ResolvedLocation `json:"resolved_location,omitempty"`
}

// Day holds the ordered activities of one itinerary day.
type Day struct {
	DayNumber  int        `json:"day_number"`
	Activities []Activity `json:"activities"`
}

// Itinerary is an ordered collection of days.
type Itinerary struct {
	Name string `json:"name,omitempty"`
	Days []Day  `json:"days"`
}

// OptimizeItineraryRequest is the JSON body of the optimize endpoint.
type OptimizeItineraryRequest struct {
	Itinerary     Itinerary `json:"itinerary"`
	TransportMode string    `json:"transport_mode,omitempty"`
	DayStartTime  string    `json:"day_start_time,omitempty"`
}

// Trip is a persisted itinerary.
type Trip struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Itinerary Itinerary `json:"itinerary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SaveTripRequest struct {
	Name      string    `json:"name"`
	Itinerary Itinerary `json:"itinerary"`
}

type PaginatedTripsResponse struct {
	Trips        []Trip `json:"trips"`
	TotalRecords int    `json:"total_records"`
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
}

// ChatRequest is the JSON body of the assistant endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string         `json:"response"`
	Sources  []SearchResult `json:"sources,omitempty"`
}
