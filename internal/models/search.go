package models

// SearchMode selects how the visible project set is determined.
type SearchMode string

const (
	// SearchModeLocation keeps projects within RadiusKM of the center,
	// optionally further restricted to the selected area codes.
	SearchModeLocation SearchMode = "location"

	// SearchModeCode keeps projects tagged with any selected area code,
	// regardless of distance. The radius is never consulted.
	SearchModeCode SearchMode = "code"
)

// SortKey names a total order over the filtered project list.
type SortKey string

const (
	SortDistance    SortKey = "distance"
	SortPercentSold SortKey = "percent_sold"
	SortSpeed6M     SortKey = "speed_6m"
	SortSpeedTotal  SortKey = "speed_total"
	SortUnitsLeft   SortKey = "units_left"
	SortLaunch      SortKey = "launch"
	SortPriceAsc    SortKey = "price_asc"
	SortPriceDesc   SortKey = "price_desc"
)

// SearchState is the single filter/sort configuration for the session.
// Prices are in millions (see MillionScaleThreshold). A nil price bound is
// open, a nil Segment means no segment filter, and a nil MaxPercentSold means
// no sold ceiling. An explicit ceiling of 0 keeps only fully unsold projects.
type SearchState struct {
	Mode           SearchMode `json:"mode"`
	CenterLat      float64    `json:"center_lat"`
	CenterLng      float64    `json:"center_lng"`
	RadiusKM       float64    `json:"radius_km"`
	AreaCodes      []string   `json:"area_codes"`
	Types          []string   `json:"types"`
	SortKey        SortKey    `json:"sort_key"`
	MinPrice       *float64   `json:"min_price"`
	MaxPrice       *float64   `json:"max_price"`
	LaunchFloor    string     `json:"launch_floor"`
	MaxPercentSold *float64   `json:"max_percent_sold"`
	Segment        *int       `json:"segment"`
}

// DefaultSearchState returns the state the session starts with.
func DefaultSearchState() SearchState {
	maxSold := 100.0
	return SearchState{
		Mode:           SearchModeLocation,
		RadiusKM:       3,
		SortKey:        SortDistance,
		MaxPercentSold: &maxSold,
	}
}
