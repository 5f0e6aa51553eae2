package pipeline

import (
	"sort"

	"marketscope/server/internal/models"
)

// Sort orders the filtered list in place by the given key. Ties keep input
// order.
func Sort(projects []*models.Project, key models.SortKey) {
	less := comparator(key)
	if less == nil {
		return
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return less(projects[i], projects[j])
	})
}

func comparator(key models.SortKey) func(a, b *models.Project) bool {
	switch key {
	case models.SortDistance:
		return func(a, b *models.Project) bool { return a.Distance < b.Distance }
	case models.SortPercentSold:
		return func(a, b *models.Project) bool { return a.PercentSold > b.PercentSold }
	case models.SortSpeed6M:
		return func(a, b *models.Project) bool { return a.SaleSpeed6M > b.SaleSpeed6M }
	case models.SortSpeedTotal:
		return func(a, b *models.Project) bool { return a.SaleSpeed > b.SaleSpeed }
	case models.SortUnitsLeft:
		return func(a, b *models.Project) bool { return a.UnitsLeft() > b.UnitsLeft() }
	case models.SortLaunch:
		return launchLess
	case models.SortPriceAsc:
		return priceLess(false)
	case models.SortPriceDesc:
		return priceLess(true)
	default:
		return nil
	}
}

// launchLess orders by the earliest launch token, newest first. The token is
// compared lexicographically, which holds only while years stay zero-padded
// two-digit; the filter floor uses decimal comparison instead.
func launchLess(a, b *models.Project) bool {
	la, lb := earliestLaunch(a), earliestLaunch(b)
	if la == "" || lb == "" {
		return la != "" && lb == ""
	}
	return la > lb
}

func earliestLaunch(p *models.Project) string {
	earliest := ""
	for _, su := range p.SubUnits {
		if su.LaunchPeriod == "" {
			continue
		}
		if earliest == "" || su.LaunchPeriod < earliest {
			earliest = su.LaunchPeriod
		}
	}
	return earliest
}

// priceLess orders by the minimum positive subunit price; projects with no
// priced subunit sort last regardless of direction.
func priceLess(desc bool) func(a, b *models.Project) bool {
	return func(a, b *models.Project) bool {
		pa, okA := a.MinPositivePrice()
		pb, okB := b.MinPositivePrice()
		if !okA || !okB {
			return okA && !okB
		}
		if desc {
			return pa > pb
		}
		return pa < pb
	}
}
