package models

// NearbyPlace is an external point of interest around the search center.
// Fetched from the map-data service, never derived from the import, and
// replaced wholesale whenever the center or radius changes.
type NearbyPlace struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  float64 `json:"distance"`
	Address   string  `json:"address,omitempty"`
	Rating    float64 `json:"rating"`
}
