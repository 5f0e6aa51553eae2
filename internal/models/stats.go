package models

// SegmentCount is one histogram bar: how many filtered projects land in the
// price segment by their own weighted average price.
type SegmentCount struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// TypeSlice is one slice of the type-distribution chart. Share values across
// all slices (top five plus Others) sum to 1.
type TypeSlice struct {
	Type  string  `json:"type"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// ProjectStatsRow is the per-project derived row feeding both the on-screen
// table and the CSV export. Monetary averages are in millions.
type ProjectStatsRow struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Developer         string  `json:"developer"`
	AreaCode          string  `json:"area_code"`
	AvgPrice          float64 `json:"avg_price"`
	AvgUsableArea     float64 `json:"avg_usable_area"`
	AvgLandArea       float64 `json:"avg_land_area"`
	PricePerArea      float64 `json:"price_per_area"`
	EarliestLaunch    string  `json:"earliest_launch"`
	TotalUnits        int     `json:"total_units"`
	SoldUnits         int     `json:"sold_units"`
	PercentSold       float64 `json:"percent_sold"`
	LatestPeriodSpeed float64 `json:"latest_period_speed"`
	SaleSpeed6M       float64 `json:"sale_speed_6m"`
	SaleSpeedTotal    float64 `json:"sale_speed_total"`
}

// Dashboard is the full aggregation payload for the stats endpoint and the
// export dashboard.
type Dashboard struct {
	ProjectCount   int               `json:"project_count"`
	ActiveType     string            `json:"active_type,omitempty"`
	GlobalAvgPrice float64           `json:"global_avg_price"`
	Segments       []SegmentCount    `json:"segments"`
	Types          []TypeSlice       `json:"types"`
	TopBySpeed6M   []ProjectStatsRow `json:"top_by_speed_6m"`
	Rows           []ProjectStatsRow `json:"rows"`
}
