package types

// Place is one entry of the structured place catalog. A place without
// coordinates is still a valid catalog entry but is excluded from routing.
type Place struct {
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Category     string   `json:"category"`
	Area         string   `json:"area"`
	Description  string   `json:"description,omitempty"`
	OpeningHours string   `json:"opening_hours,omitempty"`
	EntryFee     string   `json:"entry_fee,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// HasCoordinates reports whether the place carries a usable lat/lon pair.
func (p *Place) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil &&
		*p.Latitude >= -90 && *p.Latitude <= 90 &&
		*p.Longitude >= -180 && *p.Longitude <= 180
}

// ResolvedLocation is the geographic resolution of an activity name.
type ResolvedLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Area      string  `json:"area,omitempty"`
	Category  string  `json:"category,omitempty"`
}

type PlacesResponse struct {
	Places []Place `json:"places"`
	Count  int     `json:"count"`
	Total  int     `json:"total"`
}
