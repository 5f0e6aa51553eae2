package models

import "time"

// SubUnit is one priced product variant inside a project. A raw import row
// maps to exactly one SubUnit.
type SubUnit struct {
	Type         string             `json:"type"`
	UsableArea   float64            `json:"usable_area"`
	LandArea     float64            `json:"land_area"`
	TotalUnits   int                `json:"total_units"`
	SoldUnits    int                `json:"sold_units"`
	PercentSold  float64            `json:"percent_sold"`
	Price        float64            `json:"price"`
	LaunchPeriod string             `json:"launch_period"`
	SaleSpeed    float64            `json:"sale_speed"`
	SaleSpeed6M  float64            `json:"sale_speed_6m"`
	History      map[string]float64 `json:"history,omitempty"`
}

// Project is a housing development assembled from all import rows sharing
// the same project ID. Immutable after import except for Distance, which is
// recomputed whenever the search center moves.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Developer   string    `json:"developer"`
	AreaCode    string    `json:"area_code"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	SubUnits    []SubUnit `json:"sub_units"`
	TotalUnits  int       `json:"total_units"`
	SoldUnits   int       `json:"sold_units"`
	PercentSold float64   `json:"percent_sold"`
	PriceRange  string    `json:"price_range"`
	SaleSpeed   float64   `json:"sale_speed"`
	SaleSpeed6M float64   `json:"sale_speed_6m"`
	Distance    float64   `json:"distance"`
}

// UnitsLeft returns the unsold inventory of the project.
func (p *Project) UnitsLeft() int {
	return p.TotalUnits - p.SoldUnits
}

// ImportSummary reports the outcome of one CSV import.
type ImportSummary struct {
	ImportID    string    `json:"import_id"`
	Projects    int       `json:"projects"`
	SubUnits    int       `json:"sub_units"`
	RowsSkipped int       `json:"rows_skipped"`
	ImportedAt  time.Time `json:"imported_at"`
}
