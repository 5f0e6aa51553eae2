package stats

import (
	"sort"

	"marketscope/server/internal/models"
)

// TopRankSize is how many projects the speed ranking and the type chart keep
// before aggregating the remainder.
const TopRankSize = 5

// OthersLabel is the aggregate slice for types outside the top ranking.
const OthersLabel = "Others"

// BuildDashboard computes the full aggregation payload over a filtered
// project list, optionally restricted to one subunit type. Pure and
// idempotent: same inputs, same output.
func BuildDashboard(projects []*models.Project, activeType string) models.Dashboard {
	activeType = models.NormalizeLabel(activeType)

	dashboard := models.Dashboard{
		ProjectCount:   len(projects),
		ActiveType:     activeType,
		GlobalAvgPrice: GlobalAvgPriceMB(projects, activeType),
		Segments:       SegmentHistogram(projects, activeType),
		Types:          TypeDistribution(projects),
	}

	dashboard.Rows = make([]models.ProjectStatsRow, 0, len(projects))
	for _, p := range projects {
		dashboard.Rows = append(dashboard.Rows, ProjectRow(p, activeType))
	}
	dashboard.TopBySpeed6M = TopBySpeed6M(projects, activeType, TopRankSize)

	return dashboard
}

// qualifies reports whether a subunit participates under the active type
// restriction.
func qualifies(su models.SubUnit, activeType string) bool {
	return activeType == "" || su.Type == activeType
}

// weightedPriceMB is sum(price*units)/sum(units) over qualifying subunits
// with a positive price and unit count, scaled to millions. priced is true
// when any qualifying subunit carries a price at all; a priced project whose
// unit counts are all zero averages to 0, it does not disappear.
func weightedPriceMB(p *models.Project, activeType string) (avg float64, priced bool) {
	var num, den float64
	for _, su := range p.SubUnits {
		if !qualifies(su, activeType) || su.Price <= 0 {
			continue
		}
		priced = true
		if su.TotalUnits <= 0 {
			continue
		}
		num += su.Price * float64(su.TotalUnits)
		den += float64(su.TotalUnits)
	}
	if den == 0 {
		return 0, priced
	}
	return models.ToMillions(num / den), priced
}

// WeightedAvgPriceMB returns the project's weighted average price in
// millions, 0 when no subunit qualifies (rendered as "-").
func WeightedAvgPriceMB(p *models.Project, activeType string) float64 {
	activeType = models.NormalizeLabel(activeType)
	avg, _ := weightedPriceMB(p, activeType)
	return avg
}

// GlobalAvgPriceMB applies the same weighting across all qualifying subunits
// of all projects.
func GlobalAvgPriceMB(projects []*models.Project, activeType string) float64 {
	activeType = models.NormalizeLabel(activeType)
	var num, den float64
	for _, p := range projects {
		for _, su := range p.SubUnits {
			if !qualifies(su, activeType) || su.Price <= 0 || su.TotalUnits <= 0 {
				continue
			}
			num += su.Price * float64(su.TotalUnits)
			den += float64(su.TotalUnits)
		}
	}
	if den == 0 {
		return 0
	}
	return models.ToMillions(num / den)
}

// SegmentHistogram buckets each project into exactly one fixed price band by
// its own weighted average price. Only projects with no qualifying priced
// subunit land in no bucket at all.
func SegmentHistogram(projects []*models.Project, activeType string) []models.SegmentCount {
	activeType = models.NormalizeLabel(activeType)
	counts := make([]models.SegmentCount, len(models.PriceSegments))
	for i, seg := range models.PriceSegments {
		counts[i] = models.SegmentCount{Label: seg.Label, Min: seg.Min, Max: seg.Max}
	}

	for _, p := range projects {
		avg, ok := weightedPriceMB(p, activeType)
		if !ok {
			continue
		}
		for i, seg := range models.PriceSegments {
			if seg.Contains(avg) {
				counts[i].Count++
				break
			}
		}
	}
	return counts
}

// TypeDistribution counts each distinct subunit type once per project, then
// reports the top five types plus an aggregated Others slice. Shares across
// all slices sum to 1.
func TypeDistribution(projects []*models.Project) []models.TypeSlice {
	counts := make(map[string]int)
	for _, p := range projects {
		seen := make(map[string]bool)
		for _, su := range p.SubUnits {
			if su.Type == "" || seen[su.Type] {
				continue
			}
			seen[su.Type] = true
			counts[su.Type]++
		}
	}

	types := make([]models.TypeSlice, 0, len(counts))
	total := 0
	for t, c := range counts {
		types = append(types, models.TypeSlice{Type: t, Count: c})
		total += c
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].Count != types[j].Count {
			return types[i].Count > types[j].Count
		}
		return types[i].Type < types[j].Type
	})

	if len(types) > TopRankSize {
		others := models.TypeSlice{Type: OthersLabel}
		for _, t := range types[TopRankSize:] {
			others.Count += t.Count
		}
		types = append(types[:TopRankSize], others)
	}

	for i := range types {
		if total > 0 {
			types[i].Share = float64(types[i].Count) / float64(total)
		}
	}
	return types
}

// TopBySpeed6M ranks projects by trailing-6-month sale speed, descending,
// ties kept in input order.
func TopBySpeed6M(projects []*models.Project, activeType string, n int) []models.ProjectStatsRow {
	activeType = models.NormalizeLabel(activeType)
	ranked := make([]*models.Project, len(projects))
	copy(ranked, projects)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SaleSpeed6M > ranked[j].SaleSpeed6M
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	rows := make([]models.ProjectStatsRow, 0, len(ranked))
	for _, p := range ranked {
		rows = append(rows, ProjectRow(p, activeType))
	}
	return rows
}

// ProjectRow derives the display/export row for one project.
func ProjectRow(p *models.Project, activeType string) models.ProjectStatsRow {
	activeType = models.NormalizeLabel(activeType)
	row := models.ProjectStatsRow{
		ID:             p.ID,
		Name:           p.Name,
		Developer:      p.Developer,
		AreaCode:       p.AreaCode,
		AvgPrice:       WeightedAvgPriceMB(p, activeType),
		AvgUsableArea:  weightedArea(p, activeType, func(su models.SubUnit) float64 { return su.UsableArea }),
		AvgLandArea:    weightedArea(p, activeType, func(su models.SubUnit) float64 { return su.LandArea }),
		EarliestLaunch: earliestLaunch(p, activeType),
		TotalUnits:     p.TotalUnits,
		SoldUnits:      p.SoldUnits,
		PercentSold:    p.PercentSold,
		SaleSpeed6M:    p.SaleSpeed6M,
		SaleSpeedTotal: p.SaleSpeed,
	}

	// Price-per-area follows the same million-scale convention as display
	// prices: avg price is in millions, area in square meters.
	if row.AvgUsableArea > 0 {
		row.PricePerArea = row.AvgPrice / row.AvgUsableArea * 1e6
	}

	row.LatestPeriodSpeed = LatestPeriodSpeed(p, activeType)
	return row
}

func weightedArea(p *models.Project, activeType string, value func(models.SubUnit) float64) float64 {
	var num, den float64
	for _, su := range p.SubUnits {
		v := value(su)
		if !qualifies(su, activeType) || v <= 0 || su.TotalUnits <= 0 {
			continue
		}
		num += v * float64(su.TotalUnits)
		den += float64(su.TotalUnits)
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func earliestLaunch(p *models.Project, activeType string) string {
	earliest := ""
	for _, su := range p.SubUnits {
		if !qualifies(su, activeType) || su.LaunchPeriod == "" {
			continue
		}
		if earliest == "" || su.LaunchPeriod < earliest {
			earliest = su.LaunchPeriod
		}
	}
	return earliest
}

// LatestPeriodSpeed sums, across qualifying subunits, each subunit's history
// value at the most recent period key seen anywhere in the project. A subunit
// lacking that period contributes 0.
func LatestPeriodSpeed(p *models.Project, activeType string) float64 {
	activeType = models.NormalizeLabel(activeType)
	var latest models.Period
	found := false
	for _, su := range p.SubUnits {
		if !qualifies(su, activeType) {
			continue
		}
		for label := range su.History {
			period, ok := models.ParsePeriod(label)
			if !ok {
				continue
			}
			if !found || period.After(latest) {
				latest, found = period, true
			}
		}
	}
	if !found {
		return 0
	}

	var total float64
	for _, su := range p.SubUnits {
		if !qualifies(su, activeType) {
			continue
		}
		total += historyValueAt(su, latest)
	}
	return total
}

// historyValueAt finds the subunit's value for a period, preferring the plain
// half-year label over a 12M-marked one when both exist.
func historyValueAt(su models.SubUnit, period models.Period) float64 {
	var twelveM float64
	var haveTwelveM bool
	for label, value := range su.History {
		p, ok := models.ParsePeriod(label)
		if !ok || !p.SamePeriod(period) {
			continue
		}
		if !p.TwelveM {
			return value
		}
		twelveM, haveTwelveM = value, true
	}
	if haveTwelveM {
		return twelveM
	}
	return 0
}
