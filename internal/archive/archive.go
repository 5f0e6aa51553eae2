package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"marketscope/server/internal/models"
)

// Store is the write-behind sqlite archive of accepted imports. The live
// session never reads from it; it only exists so a restarted server can
// rehydrate the most recent import.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// Import is one archived CSV import.
type Import struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// ProjectRecord is the flattened archived form of a Project.
type ProjectRecord struct {
	ID        uint   `gorm:"primaryKey"`
	ImportID  string `gorm:"index"`
	Code      string
	Name      string
	Developer string
	AreaCode  string
	Latitude  float64
	Longitude float64
	Position  int
	SubUnits  []SubUnitRecord `gorm:"foreignKey:ProjectRecordID"`
}

// SubUnitRecord is the archived form of a SubUnit; the history map is stored
// as JSON.
type SubUnitRecord struct {
	ID              uint `gorm:"primaryKey"`
	ProjectRecordID uint `gorm:"index"`
	Type            string
	UsableArea      float64
	LandArea        float64
	TotalUnits      int
	SoldUnits       int
	Price           float64
	LaunchPeriod    string
	SaleSpeed       float64
	SaleSpeed6M     float64
	HistoryJSON     string
}

// NewStore opens (creating if needed) the archive database and migrates the
// schema.
func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %v", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %v", err)
	}

	if err := db.AutoMigrate(&Import{}, &ProjectRecord{}, &SubUnitRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive schema: %v", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// SaveImport writes one import and all its projects in a single transaction.
func (s *Store) SaveImport(importID string, importedAt time.Time, projects []*models.Project) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&Import{ID: importID, CreatedAt: importedAt}).Error; err != nil {
			return fmt.Errorf("failed to archive import: %w", err)
		}

		for i, p := range projects {
			record := ProjectRecord{
				ImportID:  importID,
				Code:      p.ID,
				Name:      p.Name,
				Developer: p.Developer,
				AreaCode:  p.AreaCode,
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
				Position:  i,
			}
			for _, su := range p.SubUnits {
				record.SubUnits = append(record.SubUnits, toSubUnitRecord(su))
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to archive project %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

// LatestImport rehydrates the most recent archived import. ok is false when
// the archive is empty.
func (s *Store) LatestImport() (importID string, importedAt time.Time, projects []*models.Project, ok bool, err error) {
	var imp Import
	result := s.db.Order("created_at DESC").First(&imp)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return "", time.Time{}, nil, false, nil
	}
	if result.Error != nil {
		return "", time.Time{}, nil, false, fmt.Errorf("failed to read archive: %w", result.Error)
	}

	var records []ProjectRecord
	if err := s.db.Preload("SubUnits").Where("import_id = ?", imp.ID).Order("position ASC").Find(&records).Error; err != nil {
		return "", time.Time{}, nil, false, fmt.Errorf("failed to load archived projects: %w", err)
	}

	projects = make([]*models.Project, 0, len(records))
	for _, record := range records {
		p := &models.Project{
			ID:        record.Code,
			Name:      record.Name,
			Developer: record.Developer,
			AreaCode:  record.AreaCode,
			Latitude:  record.Latitude,
			Longitude: record.Longitude,
		}
		for _, sr := range record.SubUnits {
			p.SubUnits = append(p.SubUnits, fromSubUnitRecord(sr))
		}
		p.Finalize()
		projects = append(projects, p)
	}

	return imp.ID, imp.CreatedAt, projects, true, nil
}

func toSubUnitRecord(su models.SubUnit) SubUnitRecord {
	record := SubUnitRecord{
		Type:         su.Type,
		UsableArea:   su.UsableArea,
		LandArea:     su.LandArea,
		TotalUnits:   su.TotalUnits,
		SoldUnits:    su.SoldUnits,
		Price:        su.Price,
		LaunchPeriod: su.LaunchPeriod,
		SaleSpeed:    su.SaleSpeed,
		SaleSpeed6M:  su.SaleSpeed6M,
	}
	if len(su.History) > 0 {
		if data, err := json.Marshal(su.History); err == nil {
			record.HistoryJSON = string(data)
		}
	}
	return record
}

func fromSubUnitRecord(record SubUnitRecord) models.SubUnit {
	su := models.SubUnit{
		Type:         record.Type,
		UsableArea:   record.UsableArea,
		LandArea:     record.LandArea,
		TotalUnits:   record.TotalUnits,
		SoldUnits:    record.SoldUnits,
		Price:        record.Price,
		LaunchPeriod: record.LaunchPeriod,
		SaleSpeed:    record.SaleSpeed,
		SaleSpeed6M:  record.SaleSpeed6M,
	}
	su.PercentSold = models.PercentSoldOf(su.SoldUnits, su.TotalUnits)
	if record.HistoryJSON != "" {
		var history map[string]float64
		if err := json.Unmarshal([]byte(record.HistoryJSON), &history); err == nil {
			su.History = history
		}
	}
	return su
}
