package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketscope/server/internal/models"
)

func finalized(id string, subUnits ...models.SubUnit) *models.Project {
	p := &models.Project{ID: id, SubUnits: subUnits}
	p.Finalize()
	return p
}

func TestWeightedAvgPriceMB(t *testing.T) {
	p := finalized("P1",
		models.SubUnit{Type: "Condo", Price: 2000000, TotalUnits: 30},
		models.SubUnit{Type: "Condo", Price: 4000000, TotalUnits: 10},
	)

	// (2M*30 + 4M*10) / 40 = 2.5M
	assert.InDelta(t, 2.5, WeightedAvgPriceMB(p, ""), 1e-9)
}

func TestWeightedAvgPriceIgnoresUnpricedAndZeroUnitSubUnits(t *testing.T) {
	p := finalized("P1",
		models.SubUnit{Type: "Condo", Price: 3000000, TotalUnits: 10},
		models.SubUnit{Type: "Condo", Price: 0, TotalUnits: 50},
		models.SubUnit{Type: "Condo", Price: 9000000, TotalUnits: 0},
	)

	assert.InDelta(t, 3.0, WeightedAvgPriceMB(p, ""), 1e-9)
}

func TestWeightedAvgPriceRespectsTypeFilter(t *testing.T) {
	p := finalized("P1",
		models.SubUnit{Type: "Condo", Price: 2000000, TotalUnits: 10},
		models.SubUnit{Type: "Villa", Price: 8000000, TotalUnits: 10},
	)

	assert.InDelta(t, 5.0, WeightedAvgPriceMB(p, ""), 1e-9)
	assert.InDelta(t, 2.0, WeightedAvgPriceMB(p, "Condo"), 1e-9)
	assert.InDelta(t, 8.0, WeightedAvgPriceMB(p, "Villa"), 1e-9)
	assert.Equal(t, 0.0, WeightedAvgPriceMB(p, "Townhouse"))
}

func TestWeightedAvgPriceScalesLargeValues(t *testing.T) {
	// Values at or above the threshold are raw currency and get divided down.
	raw := finalized("RAW", models.SubUnit{Type: "Condo", Price: 2500000, TotalUnits: 10})
	preScaled := finalized("MB", models.SubUnit{Type: "Condo", Price: 2.5, TotalUnits: 10})

	assert.InDelta(t, 2.5, WeightedAvgPriceMB(raw, ""), 1e-9)
	assert.InDelta(t, 2.5, WeightedAvgPriceMB(preScaled, ""), 1e-9)
}

func TestGlobalAvgPriceMB(t *testing.T) {
	projects := []*models.Project{
		finalized("P1", models.SubUnit{Type: "Condo", Price: 2000000, TotalUnits: 10}),
		finalized("P2", models.SubUnit{Type: "Condo", Price: 4000000, TotalUnits: 30}),
	}

	// (2M*10 + 4M*30) / 40 = 3.5M
	assert.InDelta(t, 3.5, GlobalAvgPriceMB(projects, ""), 1e-9)
	assert.Equal(t, 0.0, GlobalAvgPriceMB(nil, ""))
}

func TestSegmentHistogram(t *testing.T) {
	projects := []*models.Project{
		finalized("CHEAP", models.SubUnit{Type: "Condo", Price: 1500000, TotalUnits: 10}),
		finalized("MID", models.SubUnit{Type: "Condo", Price: 4000000, TotalUnits: 10}),
		finalized("MID2", models.SubUnit{Type: "Condo", Price: 3000000, TotalUnits: 10}),
		finalized("LUXURY", models.SubUnit{Type: "Condo", Price: 60000000, TotalUnits: 10}),
		finalized("UNPRICED", models.SubUnit{Type: "Condo"}),
	}

	hist := SegmentHistogram(projects, "")
	require.Len(t, hist, len(models.PriceSegments))

	bucketed := 0
	for _, seg := range hist {
		bucketed += seg.Count
	}
	// The unpriced project lands in no bucket.
	assert.Equal(t, 4, bucketed)

	byLabel := make(map[string]int)
	for _, seg := range hist {
		byLabel[seg.Label] = seg.Count
	}
	assert.Equal(t, 1, byLabel["1.0-2.0"])
	assert.Equal(t, 2, byLabel["3.0-5.0"])
	assert.Equal(t, 1, byLabel[">20"])
}

func TestSegmentHistogramBucketsPricedProjectWithoutUnits(t *testing.T) {
	projects := []*models.Project{
		finalized("NO_UNITS", models.SubUnit{Type: "Condo", Price: 2000000}),
		finalized("NO_PRICE", models.SubUnit{Type: "Condo", TotalUnits: 10}),
	}

	hist := SegmentHistogram(projects, "")

	bucketed := 0
	for _, seg := range hist {
		bucketed += seg.Count
	}
	// The priced project averages to 0 and lands in the bottom band; only
	// the project without any priced subunit is excluded.
	assert.Equal(t, 1, bucketed)
	assert.Equal(t, 1, hist[0].Count)
}

func TestTypeDistributionCountsOncePerProject(t *testing.T) {
	projects := []*models.Project{
		finalized("P1",
			models.SubUnit{Type: "Condo"},
			models.SubUnit{Type: "Condo"},
			models.SubUnit{Type: "Villa"},
		),
		finalized("P2", models.SubUnit{Type: "Condo"}),
	}

	dist := TypeDistribution(projects)
	require.Len(t, dist, 2)
	assert.Equal(t, "Condo", dist[0].Type)
	assert.Equal(t, 2, dist[0].Count)
	assert.Equal(t, "Villa", dist[1].Type)
	assert.Equal(t, 1, dist[1].Count)

	var shareSum float64
	for _, s := range dist {
		shareSum += s.Share
	}
	assert.InDelta(t, 1.0, shareSum, 1e-9)
}

func TestTypeDistributionAggregatesOthers(t *testing.T) {
	labels := []string{"A", "B", "C", "D", "E", "F", "G"}
	projects := make([]*models.Project, 0)
	for i, label := range labels {
		// Descending counts so the top five are unambiguous.
		for n := 0; n < len(labels)-i; n++ {
			projects = append(projects, finalized(label, models.SubUnit{Type: label}))
		}
	}

	dist := TypeDistribution(projects)
	require.Len(t, dist, TopRankSize+1)
	assert.Equal(t, OthersLabel, dist[TopRankSize].Type)
	assert.Equal(t, 2+1, dist[TopRankSize].Count) // F and G collapsed

	var shareSum float64
	for _, s := range dist {
		shareSum += s.Share
	}
	assert.InDelta(t, 1.0, shareSum, 1e-9)
}

func TestTopBySpeed6M(t *testing.T) {
	projects := []*models.Project{
		finalized("SLOW", models.SubUnit{Type: "Condo", SaleSpeed6M: 0.2}),
		finalized("FAST", models.SubUnit{Type: "Condo", SaleSpeed6M: 5.0}),
		finalized("MID", models.SubUnit{Type: "Condo", SaleSpeed6M: 2.0}),
	}

	top := TopBySpeed6M(projects, "", 2)
	require.Len(t, top, 2)
	assert.Equal(t, "FAST", top[0].ID)
	assert.Equal(t, "MID", top[1].ID)
}

func TestLatestPeriodSpeedSumsAcrossSubUnits(t *testing.T) {
	p := finalized("P1",
		models.SubUnit{Type: "Condo", History: map[string]float64{
			"H1.67": 1.2,
			"H2.67": 0.9,
		}},
		models.SubUnit{Type: "Villa", History: map[string]float64{
			"H2.67": 0.4,
		}},
		models.SubUnit{Type: "Condo", History: map[string]float64{
			"H1.67": 2.0,
		}},
	)

	// Latest period across the project is H2.67; the third subunit has no
	// entry for it and contributes 0.
	assert.InDelta(t, 1.3, LatestPeriodSpeed(p, ""), 1e-9)
	assert.InDelta(t, 0.9, LatestPeriodSpeed(p, "Condo"), 1e-9)
}

func TestLatestPeriodSpeedPrefersPlainOverTwelveM(t *testing.T) {
	p := finalized("P1",
		models.SubUnit{Type: "Condo", History: map[string]float64{
			"H2.67":       0.9,
			"H2.67 (12M)": 1.5,
		}},
	)

	assert.InDelta(t, 0.9, LatestPeriodSpeed(p, ""), 1e-9)
}

func TestLatestPeriodSpeedFallsBackToTwelveM(t *testing.T) {
	p := finalized("P1",
		models.SubUnit{Type: "Condo", History: map[string]float64{
			"H2.67 (12M)": 1.5,
		}},
	)

	assert.InDelta(t, 1.5, LatestPeriodSpeed(p, ""), 1e-9)
}

func TestLatestPeriodSpeedNoHistory(t *testing.T) {
	p := finalized("P1", models.SubUnit{Type: "Condo"})
	assert.Equal(t, 0.0, LatestPeriodSpeed(p, ""))
}

func TestProjectRowPricePerArea(t *testing.T) {
	p := finalized("P1",
		models.SubUnit{Type: "Condo", Price: 3000000, TotalUnits: 10, UsableArea: 30},
	)

	row := ProjectRow(p, "")
	assert.InDelta(t, 3.0, row.AvgPrice, 1e-9)
	assert.InDelta(t, 30.0, row.AvgUsableArea, 1e-9)
	// 3 MB over 30 sqm is 100k per sqm.
	assert.InDelta(t, 100000.0, row.PricePerArea, 1e-6)
}

func TestProjectRowWithoutAreaLeavesPricePerAreaZero(t *testing.T) {
	p := finalized("P1", models.SubUnit{Type: "Condo", Price: 3000000, TotalUnits: 10})
	row := ProjectRow(p, "")
	assert.Equal(t, 0.0, row.PricePerArea)
}

func TestBuildDashboard(t *testing.T) {
	projects := []*models.Project{
		finalized("P1", models.SubUnit{Type: "Condo", Price: 2000000, TotalUnits: 10}),
		finalized("P2", models.SubUnit{Type: "Villa", Price: 8000000, TotalUnits: 10}),
	}

	d := BuildDashboard(projects, "")
	assert.Equal(t, 2, d.ProjectCount)
	assert.Len(t, d.Rows, 2)
	assert.Len(t, d.Types, 2)
	assert.InDelta(t, 5.0, d.GlobalAvgPrice, 1e-9)
	assert.LessOrEqual(t, len(d.TopBySpeed6M), TopRankSize)

	// Same inputs, same output.
	assert.Equal(t, d, BuildDashboard(projects, ""))
}

func TestBuildDashboardNormalizesActiveType(t *testing.T) {
	projects := []*models.Project{
		finalized("P1", models.SubUnit{Type: "Condo", Price: 2000000, TotalUnits: 10}),
	}

	d := BuildDashboard(projects, "  Condo\u200b ")
	assert.Equal(t, "Condo", d.ActiveType)
	assert.InDelta(t, 2.0, d.GlobalAvgPrice, 1e-9)
}
