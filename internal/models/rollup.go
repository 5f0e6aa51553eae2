package models

import "fmt"

// PercentSoldOf derives a sold percentage clamped to [0, 100]; zero total
// units means 0.
func PercentSoldOf(sold, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(sold) / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Finalize recomputes the project-level rollups from the subunits. Called
// after the subunit list is assembled, both at import time and when an
// archived import is rehydrated.
func (p *Project) Finalize() {
	p.TotalUnits, p.SoldUnits = 0, 0
	p.SaleSpeed, p.SaleSpeed6M = 0, 0
	for _, su := range p.SubUnits {
		p.TotalUnits += su.TotalUnits
		p.SoldUnits += su.SoldUnits
		p.SaleSpeed += su.SaleSpeed
		p.SaleSpeed6M += su.SaleSpeed6M
	}
	p.PercentSold = PercentSoldOf(p.SoldUnits, p.TotalUnits)
	p.PriceRange = p.priceRangeDisplay()
}

// priceRangeDisplay renders the price span under the inherited million-scale
// rule, e.g. "2.50 MB - 5.00 MB".
func (p *Project) priceRangeDisplay() string {
	minMB, maxMB, ok := p.PriceRangeMB()
	if !ok {
		return "-"
	}
	if minMB == maxMB {
		return FormatMB(minMB)
	}
	return fmt.Sprintf("%s - %s", FormatMB(minMB), FormatMB(maxMB))
}

// FormatMB renders a price in millions for display.
func FormatMB(mb float64) string {
	return fmt.Sprintf("%.2f MB", mb)
}
