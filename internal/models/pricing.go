package models

import "math"

// MillionScaleThreshold is the inherited unit-scale cutoff: raw price values
// below it are treated as already expressed in millions, values at or above
// it are divided by 1e6. The threshold is deliberately preserved as-is from
// the legacy data convention; changing it silently re-scales every price band.
const MillionScaleThreshold = 1000

// ToMillions applies the unit-scale rule to a raw price value.
func ToMillions(price float64) float64 {
	if price < MillionScaleThreshold {
		return price
	}
	return price / 1e6
}

// PriceSegment is one of the fixed price bands, bounds in millions.
// Max is +Inf for the open-ended top band. The overlap convention is
// half-open: a range [min,max] falls in the segment when
// min < segment.Max && max >= segment.Min.
type PriceSegment struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// PriceSegments is the fixed eight-band partition used by both the segment
// filter and the dashboard histogram.
var PriceSegments = []PriceSegment{
	{Label: "<0.5", Min: 0, Max: 0.5},
	{Label: "0.5-1.0", Min: 0.5, Max: 1.0},
	{Label: "1.0-2.0", Min: 1.0, Max: 2.0},
	{Label: "2.0-3.0", Min: 2.0, Max: 3.0},
	{Label: "3.0-5.0", Min: 3.0, Max: 5.0},
	{Label: "5.0-10", Min: 5.0, Max: 10.0},
	{Label: "10-20", Min: 10.0, Max: 20.0},
	{Label: ">20", Min: 20.0, Max: math.Inf(1)},
}

// Contains reports whether a single price (in millions) falls in the segment.
func (s PriceSegment) Contains(priceMB float64) bool {
	return priceMB >= s.Min && priceMB < s.Max
}

// Overlaps reports whether a [minMB, maxMB] range intersects the segment.
func (s PriceSegment) Overlaps(minMB, maxMB float64) bool {
	return minMB < s.Max && maxMB >= s.Min
}

// PriceRangeMB returns the project's price range in millions across subunits
// with a positive price. ok is false when no subunit carries a price.
func (p *Project) PriceRangeMB() (minMB, maxMB float64, ok bool) {
	for _, su := range p.SubUnits {
		if su.Price <= 0 {
			continue
		}
		mb := ToMillions(su.Price)
		if !ok || mb < minMB {
			minMB = mb
		}
		if !ok || mb > maxMB {
			maxMB = mb
		}
		ok = true
	}
	return minMB, maxMB, ok
}

// MinPositivePrice returns the smallest positive raw subunit price.
// ok is false when the project has no priced subunit.
func (p *Project) MinPositivePrice() (price float64, ok bool) {
	for _, su := range p.SubUnits {
		if su.Price <= 0 {
			continue
		}
		if !ok || su.Price < price {
			price = su.Price
		}
		ok = true
	}
	return price, ok
}
