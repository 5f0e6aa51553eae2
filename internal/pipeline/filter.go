package pipeline

import (
	"strconv"

	"marketscope/server/internal/geo"
	"marketscope/server/internal/models"
)

// Apply recomputes the visible project set from scratch: every project's
// distance from the active center is refreshed, all active filters are ANDed,
// and the result is sorted by the state's sort key. The input projects are
// never mutated; rows in the output are copies. Malformed data excludes a
// project, it never errors.
func Apply(projects []*models.Project, state models.SearchState) []*models.Project {
	filtered := make([]*models.Project, 0, len(projects))

	for _, p := range projects {
		row := *p
		row.Distance = geo.Distance(state.CenterLat, state.CenterLng, p.Latitude, p.Longitude)
		if !matches(&row, state) {
			continue
		}
		filtered = append(filtered, &row)
	}

	Sort(filtered, state.SortKey)
	return filtered
}

func matches(p *models.Project, state models.SearchState) bool {
	if !matchesMembership(p, state) {
		return false
	}
	if !matchesType(p, state.Types) {
		return false
	}
	if !matchesPriceBand(p, state.MinPrice, state.MaxPrice) {
		return false
	}
	if !matchesSegment(p, state.Segment) {
		return false
	}
	if !matchesLaunchFloor(p, state.LaunchFloor) {
		return false
	}
	return state.MaxPercentSold == nil || p.PercentSold <= *state.MaxPercentSold
}

// matchesMembership applies the mode asymmetry: location mode is a radius
// test optionally narrowed by selected codes, code mode is a pure code test
// with the radius ignored entirely.
func matchesMembership(p *models.Project, state models.SearchState) bool {
	switch state.Mode {
	case models.SearchModeCode:
		return matchesCodes(p, state.AreaCodes)
	default:
		if p.Distance > state.RadiusKM {
			return false
		}
		if len(state.AreaCodes) == 0 {
			return true
		}
		return matchesCodes(p, state.AreaCodes)
	}
}

func matchesCodes(p *models.Project, codes []string) bool {
	for _, code := range codes {
		if p.AreaCode == code {
			return true
		}
	}
	return false
}

// matchesType keeps a project when any subunit type equals any selected type.
// Selections are normalized the same way subunit labels were at import time.
func matchesType(p *models.Project, types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		want := models.NormalizeLabel(t)
		for _, su := range p.SubUnits {
			if su.Type == want {
				return true
			}
		}
	}
	return false
}

// matchesPriceBand is an overlap test against [min, max] in millions, either
// bound open. A project with no priced subunits drops out as soon as any
// bound is set.
func matchesPriceBand(p *models.Project, min, max *float64) bool {
	if min == nil && max == nil {
		return true
	}
	minMB, maxMB, ok := p.PriceRangeMB()
	if !ok {
		return false
	}
	if min != nil && maxMB < *min {
		return false
	}
	if max != nil && minMB > *max {
		return false
	}
	return true
}

func matchesSegment(p *models.Project, segment *int) bool {
	if segment == nil {
		return true
	}
	idx := *segment
	if idx < 0 || idx >= len(models.PriceSegments) {
		return true
	}
	minMB, maxMB, ok := p.PriceRangeMB()
	if !ok {
		return false
	}
	return models.PriceSegments[idx].Overlaps(minMB, maxMB)
}

// matchesLaunchFloor keeps a project when any subunit launched at or after
// the floor, comparing "YY.MM" tokens as decimals. Projects without a single
// parseable launch token drop out once a floor is set.
func matchesLaunchFloor(p *models.Project, floor string) bool {
	if floor == "" {
		return true
	}
	floorValue, err := strconv.ParseFloat(floor, 64)
	if err != nil {
		return true
	}
	for _, su := range p.SubUnits {
		v, err := strconv.ParseFloat(su.LaunchPeriod, 64)
		if err != nil {
			continue
		}
		if v >= floorValue {
			return true
		}
	}
	return false
}
