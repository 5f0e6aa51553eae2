package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketscope/server/internal/models"
)

// Session is the single owner of the in-memory analysis state: the imported
// project list, the search/filter configuration and the fetched nearby
// places. Mutations replace values wholesale so readers always observe a
// consistent snapshot; the pipeline itself stays a pure function of
// (projects, state).
type Session struct {
	mu         sync.RWMutex
	logger     *logrus.Logger
	projects   []*models.Project
	state      models.SearchState
	places     []models.NearbyPlace
	placesErr  string
	generation uint64
	summary    models.ImportSummary
}

// New creates an empty session with the default search state.
func New(logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{
		logger: logger,
		state:  models.DefaultSearchState(),
	}
}

// ReplaceDataset swaps in a freshly imported project list, destroying the
// previous one, and tags the import with a new ID.
func (s *Session) ReplaceDataset(projects []*models.Project, rowsSkipped int) models.ImportSummary {
	summary := models.ImportSummary{
		ImportID:    uuid.NewString(),
		Projects:    len(projects),
		RowsSkipped: rowsSkipped,
		ImportedAt:  time.Now().UTC(),
	}
	for _, p := range projects {
		summary.SubUnits += len(p.SubUnits)
	}

	s.mu.Lock()
	s.projects = projects
	s.summary = summary
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"import_id":    summary.ImportID,
		"projects":     summary.Projects,
		"sub_units":    summary.SubUnits,
		"rows_skipped": summary.RowsSkipped,
	}).Info("Replaced session dataset")

	return summary
}

// RestoreDataset reinstates an archived import under its original ID, used
// at startup rehydration.
func (s *Session) RestoreDataset(importID string, importedAt time.Time, projects []*models.Project) {
	summary := models.ImportSummary{
		ImportID:   importID,
		Projects:   len(projects),
		ImportedAt: importedAt,
	}
	for _, p := range projects {
		summary.SubUnits += len(p.SubUnits)
	}

	s.mu.Lock()
	s.projects = projects
	s.summary = summary
	s.mu.Unlock()
}

// Snapshot returns the current project list and search state. The list is
// shared and must be treated as immutable by callers.
func (s *Session) Snapshot() ([]*models.Project, models.SearchState) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects, s.state
}

// State returns the current search state.
func (s *Session) State() models.SearchState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Summary returns the summary of the active import.
func (s *Session) Summary() models.ImportSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// UpdateState replaces the search state and advances the places-fetch
// generation by exactly one. The returned generation identifies the fetch
// this change entitles. An omitted sold ceiling defaults to 100; an explicit
// 0 is kept as-is.
func (s *Session) UpdateState(state models.SearchState) uint64 {
	if state.MaxPercentSold == nil {
		maxSold := 100.0
		state.MaxPercentSold = &maxSold
	}
	if state.Mode == "" {
		state.Mode = models.SearchModeLocation
	}

	s.mu.Lock()
	s.state = state
	s.generation++
	gen := s.generation
	s.mu.Unlock()
	return gen
}

// Generation returns the current places-fetch generation.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// CommitPlaces installs fetch results if and only if they belong to the
// latest generation; stale results are discarded so a superseded fetch can
// never clobber a newer one. A non-empty errMsg records an all-mirrors
// failure while keeping previously committed places visible.
func (s *Session) CommitPlaces(generation uint64, places []models.NearbyPlace, errMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		s.logger.WithFields(logrus.Fields{
			"fetched_generation": generation,
			"current_generation": s.generation,
		}).Debug("Discarding stale places fetch")
		return false
	}
	if errMsg == "" {
		s.places = places
	}
	s.placesErr = errMsg
	return true
}

// Places returns the committed nearby places and the inline error from the
// last fetch, if every mirror failed.
func (s *Session) Places() ([]models.NearbyPlace, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.places, s.placesErr
}
