package normalizer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"marketscope/server/internal/models"
)

// ErrEmptyInput is returned when the input contains no data rows at all.
var ErrEmptyInput = errors.New("input contains no rows")

// Result is the outcome of one normalization pass.
type Result struct {
	Projects    []*models.Project
	Rows        int
	RowsSkipped int
}

// Normalizer turns raw delimited input into the canonical Project graph.
type Normalizer struct {
	logger *logrus.Logger
}

// New creates a normalizer. A nil logger gets a default one.
func New(logger *logrus.Logger) *Normalizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Normalizer{logger: logger}
}

// rawRow is one data line keyed by canonical (lowercased, trimmed) header
// name, plus the period-history cells keyed by their original trimmed label.
type rawRow struct {
	fields  map[string]string
	history map[string]string
	line    int
}

// Normalize parses the input and produces one Project per distinct ID, in
// first-seen order. Rows that cannot form a valid project (missing ID,
// unparseable or zero coordinates) are skipped and counted, never fatal.
// Only structurally unreadable input fails the whole import.
func (n *Normalizer) Normalize(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read tabular input: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	headerIdx := detectHeader(records)
	if len(records) <= headerIdx+1 {
		return nil, ErrEmptyInput
	}

	header := records[headerIdx]
	columns, historyColumns := classifyColumns(header)

	rows := make([]rawRow, 0, len(records)-headerIdx-1)
	for i, record := range records[headerIdx+1:] {
		rows = append(rows, buildRow(record, columns, historyColumns, headerIdx+2+i))
	}

	result := &Result{Rows: len(rows)}
	n.groupRows(rows, result)
	return result, nil
}

// detectHeader finds the first record that names both coordinate columns.
// Input files often carry titles or export junk above the real header; if no
// record qualifies, the first line is the header.
func detectHeader(records [][]string) int {
	for i, record := range records {
		hasLat, hasLng := false, false
		for _, cell := range record {
			canon := canonicalName(cell)
			if containsAlias(fieldAliases[fieldLat], canon) {
				hasLat = true
			}
			if containsAlias(fieldAliases[fieldLng], canon) {
				hasLng = true
			}
		}
		if hasLat && hasLng {
			return i
		}
	}
	return 0
}

func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

func containsAlias(aliases []string, canon string) bool {
	for _, a := range aliases {
		if a == canon {
			return true
		}
	}
	return false
}

// classifyColumns maps canonical header names to indices and pulls out the
// period-history columns ("H1.67", "H2.67 (12M)", ...).
func classifyColumns(header []string) (map[string]int, map[string]int) {
	columns := make(map[string]int, len(header))
	historyColumns := make(map[string]int)
	for i, cell := range header {
		label := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		if _, ok := models.ParsePeriod(label); ok {
			historyColumns[label] = i
			continue
		}
		canon := canonicalName(cell)
		if _, exists := columns[canon]; !exists {
			columns[canon] = i
		}
	}
	return columns, historyColumns
}

func buildRow(record []string, columns map[string]int, historyColumns map[string]int, line int) rawRow {
	row := rawRow{
		fields:  make(map[string]string, len(columns)),
		history: make(map[string]string, len(historyColumns)),
		line:    line,
	}
	for name, idx := range columns {
		if idx < len(record) {
			row.fields[name] = strings.TrimSpace(record[idx])
		}
	}
	for label, idx := range historyColumns {
		if idx < len(record) {
			row.history[label] = strings.TrimSpace(record[idx])
		}
	}
	return row
}

// resolve returns the first non-empty value among the field's aliases.
func (r rawRow) resolve(field string) string {
	for _, alias := range fieldAliases[field] {
		if v, ok := r.fields[alias]; ok && v != "" {
			return v
		}
	}
	return ""
}

// groupRows merges rows by project ID and appends the surviving projects to
// the result.
func (n *Normalizer) groupRows(rows []rawRow, result *Result) {
	groups := make(map[string][]rawRow)
	var order []string

	for _, row := range rows {
		id := row.resolve(fieldID)
		if id == "" {
			n.logger.WithField("line", row.line).Warn("Skipping row without a project ID")
			result.RowsSkipped++
			continue
		}
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], row)
	}

	for _, id := range order {
		group := groups[id]
		project, ok := n.buildProject(id, group)
		if !ok {
			result.RowsSkipped += len(group)
			continue
		}
		result.Projects = append(result.Projects, project)
	}
}

// buildProject assembles one Project from its row group. Shared fields come
// from the first row; every row becomes a SubUnit. The whole group is dropped
// when the coordinates are unusable.
func (n *Normalizer) buildProject(id string, group []rawRow) (*models.Project, bool) {
	first := group[0]

	lat, latErr := strconv.ParseFloat(first.resolve(fieldLat), 64)
	lng, lngErr := strconv.ParseFloat(first.resolve(fieldLng), 64)
	if latErr != nil || lngErr != nil || lat == 0 || lng == 0 {
		n.logger.WithFields(logrus.Fields{
			"project_id": id,
			"line":       first.line,
		}).Warn("Skipping project with invalid coordinates")
		return nil, false
	}

	project := &models.Project{
		ID:        id,
		Name:      strings.TrimSpace(first.resolve(fieldName)),
		Developer: strings.TrimSpace(first.resolve(fieldDeveloper)),
		AreaCode:  strings.TrimSpace(first.resolve(fieldAreaCode)),
		Latitude:  lat,
		Longitude: lng,
	}

	for _, row := range group {
		project.SubUnits = append(project.SubUnits, buildSubUnit(row))
	}

	project.Finalize()
	return project, true
}

func buildSubUnit(row rawRow) models.SubUnit {
	su := models.SubUnit{
		Type:         models.NormalizeLabel(row.resolve(fieldType)),
		UsableArea:   coerceFloat(row.resolve(fieldUsableArea)),
		LandArea:     coerceFloat(row.resolve(fieldLandArea)),
		TotalUnits:   coerceInt(row.resolve(fieldTotalUnits)),
		SoldUnits:    coerceInt(row.resolve(fieldSoldUnits)),
		Price:        coerceFloat(row.resolve(fieldPrice)),
		LaunchPeriod: strings.TrimSpace(row.resolve(fieldLaunch)),
		SaleSpeed:    coerceFloat(row.resolve(fieldSpeed)),
		SaleSpeed6M:  coerceFloat(row.resolve(fieldSpeed6M)),
	}
	su.PercentSold = models.PercentSoldOf(su.SoldUnits, su.TotalUnits)

	for label, cell := range row.history {
		if cell == "" {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
		if err != nil {
			continue
		}
		if su.History == nil {
			su.History = make(map[string]float64)
		}
		su.History[label] = value
	}

	backfillSpeed6M(&su)
	return su
}

// backfillSpeed6M fills a zero 6-month speed from the history: entries with
// the 12M marker win, then the chronologically latest period.
func backfillSpeed6M(su *models.SubUnit) {
	if su.SaleSpeed6M != 0 || len(su.History) == 0 {
		return
	}

	var (
		bestLabel string
		best      models.Period
		found     bool
	)
	for label := range su.History {
		p, ok := models.ParsePeriod(label)
		if !ok {
			continue
		}
		if !found || betterBackfill(p, best) {
			bestLabel, best, found = label, p, true
		}
	}
	if found {
		su.SaleSpeed6M = su.History[bestLabel]
	}
}

func betterBackfill(p, best models.Period) bool {
	if p.TwelveM != best.TwelveM {
		return p.TwelveM
	}
	return p.After(best)
}

func coerceFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

func coerceInt(s string) int {
	return int(coerceFloat(s))
}
