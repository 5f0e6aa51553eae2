package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"marketscope/server/internal/models"
)

// reportHeader is the fixed column set of the summary report.
var reportHeader = []string{
	"Rank",
	"Project",
	"Developer",
	"Launch",
	"Avg Usable Area",
	"Avg Land Area",
	"Price/Area",
	"Avg Price (MB)",
	"Sold %",
	"Total Units",
	"Sold Units",
	"Latest Speed",
	"Total Speed",
}

// WriteReport writes the summary CSV: UTF-8 with a BOM so spreadsheet
// applications pick up the encoding, quoting per standard CSV rules. Rows
// are ranked by latest-period sale speed descending, independent of the
// on-screen sort order.
func WriteReport(w io.Writer, rows []models.ProjectStatsRow) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	ranked := make([]models.ProjectStatsRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].LatestPeriodSpeed > ranked[j].LatestPeriodSpeed
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range ranked {
		record := []string{
			fmt.Sprintf("%d", i+1),
			row.Name,
			row.Developer,
			row.EarliestLaunch,
			formatNumber(row.AvgUsableArea),
			formatNumber(row.AvgLandArea),
			formatNumber(row.PricePerArea),
			formatPrice(row.AvgPrice),
			fmt.Sprintf("%.1f", row.PercentSold),
			fmt.Sprintf("%d", row.TotalUnits),
			fmt.Sprintf("%d", row.SoldUnits),
			formatNumber(row.LatestPeriodSpeed),
			formatNumber(row.SaleSpeedTotal),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatNumber(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func formatPrice(mb float64) string {
	if mb == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", mb)
}
