package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketscope/server/internal/models"
)

func TestWriteReportStartsWithBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "\ufeff"))
}

func TestWriteReportRanksByLatestPeriodSpeed(t *testing.T) {
	rows := []models.ProjectStatsRow{
		{Name: "Slow Gardens", LatestPeriodSpeed: 0.4},
		{Name: "Fast Residences", LatestPeriodSpeed: 3.1},
		{Name: "Mid Towers", LatestPeriodSpeed: 1.2},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, rows))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, reportHeader, records[0])
	assert.Equal(t, []string{"1", "Fast Residences"}, records[1][:2])
	assert.Equal(t, []string{"2", "Mid Towers"}, records[2][:2])
	assert.Equal(t, []string{"3", "Slow Gardens"}, records[3][:2])

	// Export order is independent of the incoming slice order.
	assert.Equal(t, "Slow Gardens", rows[0].Name)
}

func TestWriteReportFormatsValues(t *testing.T) {
	rows := []models.ProjectStatsRow{
		{
			Name:              "Central, Park \"West\"",
			Developer:         "Acme Estates",
			EarliestLaunch:    "66.03",
			AvgUsableArea:     120.5,
			PricePerArea:      98765.4321,
			AvgPrice:          4.5,
			PercentSold:       62.0,
			TotalUnits:        200,
			SoldUnits:         124,
			LatestPeriodSpeed: 1.5,
			SaleSpeedTotal:    2.25,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, rows))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := records[1]
	assert.Equal(t, "Central, Park \"West\"", row[1])
	assert.Equal(t, "66.03", row[3])
	assert.Equal(t, "120.50", row[4])
	assert.Equal(t, "-", row[5]) // no land area
	assert.Equal(t, "98765.43", row[6])
	assert.Equal(t, "4.50", row[7])
	assert.Equal(t, "62.0", row[8])
	assert.Equal(t, "200", row[9])
	assert.Equal(t, "124", row[10])
	assert.Equal(t, "1.50", row[11])
	assert.Equal(t, "2.25", row[12])

	// Comma and quote in the name survive a round trip, so the raw output
	// must be quoted.
	assert.Contains(t, buf.String(), `"Central, Park ""West"""`)
}

func TestWriteReportRendersZeroesAsDash(t *testing.T) {
	rows := []models.ProjectStatsRow{{Name: "Bare"}}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, rows))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)

	row := records[1]
	assert.Equal(t, "-", row[4])
	assert.Equal(t, "-", row[7])
	assert.Equal(t, "0.0", row[8])
	assert.Equal(t, "-", row[11])
}
