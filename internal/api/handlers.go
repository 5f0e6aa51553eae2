package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"marketscope/server/internal/export"
	"marketscope/server/internal/geo"
	"marketscope/server/internal/models"
	"marketscope/server/internal/normalizer"
	"marketscope/server/internal/pipeline"
	"marketscope/server/internal/places"
	"marketscope/server/internal/queue"
	"marketscope/server/internal/session"
	"marketscope/server/internal/stats"
)

type Handler struct {
	session    *session.Session
	normalizer *normalizer.Normalizer
	queue      *queue.ImportQueue
	fetcher    *places.Fetcher
	logger     *logrus.Logger
}

func NewHandler(sess *session.Session, q *queue.ImportQueue, fetcher *places.Fetcher, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		session:    sess,
		normalizer: normalizer.New(logger),
		queue:      q,
		fetcher:    fetcher,
		logger:     logger,
	}
}

// ImportCSV accepts a CSV upload (multipart "file" field or raw body),
// normalizes it and replaces the session dataset wholesale. The archive
// write happens in the background; a full queue is logged but never fails
// the import.
func (h *Handler) ImportCSV(c *gin.Context) {
	reader, err := importBody(c)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read import body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "No CSV content provided"})
		return
	}
	defer reader.Close()

	result, err := h.normalizer.Normalize(reader)
	if err != nil {
		h.logger.WithError(err).Error("Failed to normalize import")
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unreadable CSV input: %v", err)})
		return
	}

	summary := h.session.ReplaceDataset(result.Projects, result.RowsSkipped)

	if h.queue != nil {
		batch := &queue.ImportBatch{
			ImportID:   summary.ImportID,
			ImportedAt: summary.ImportedAt,
			Projects:   result.Projects,
		}
		if err := h.queue.Push(batch); err != nil {
			h.logger.WithError(err).Warn("Import accepted but not queued for archiving")
		}
	}

	c.JSON(http.StatusOK, summary)
}

func importBody(c *gin.Context) (io.ReadCloser, error) {
	file, _, err := c.Request.FormFile("file")
	if err == nil {
		return file, nil
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, fmt.Errorf("empty request body")
	}
	return c.Request.Body, nil
}

// GetSearchState returns the active search configuration.
func (h *Handler) GetSearchState(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.State())
}

// UpdateSearchState replaces the search configuration and kicks off a
// debounced places fetch when the center or radius moved. Sort and filter
// changes reuse the places already committed.
func (h *Handler) UpdateSearchState(c *gin.Context) {
	var state models.SearchState
	if err := c.ShouldBindJSON(&state); err != nil {
		h.logger.WithError(err).Error("Failed to parse search state")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search state"})
		return
	}

	prev := h.session.State()
	generation := h.session.UpdateState(state)
	applied := h.session.State()

	if h.fetcher != nil && fetchAreaChanged(prev, applied) {
		h.fetcher.Trigger(generation, applied.CenterLat, applied.CenterLng, applied.RadiusKM)
	}

	c.JSON(http.StatusOK, gin.H{
		"state":      applied,
		"generation": generation,
	})
}

// fetchAreaChanged reports whether the places-relevant part of the state
// moved between two configurations.
func fetchAreaChanged(prev, next models.SearchState) bool {
	return prev.CenterLat != next.CenterLat ||
		prev.CenterLng != next.CenterLng ||
		prev.RadiusKM != next.RadiusKM
}

// GetProjects returns the filtered, sorted project list.
func (h *Handler) GetProjects(c *gin.Context) {
	projects, state := h.session.Snapshot()
	c.JSON(http.StatusOK, pipeline.Apply(projects, state))
}

// GetProjectsGeoJSON returns the filtered projects as a FeatureCollection
// for the map layer.
func (h *Handler) GetProjectsGeoJSON(c *gin.Context) {
	projects, state := h.session.Snapshot()
	c.JSON(http.StatusOK, geo.ProjectCollection(pipeline.Apply(projects, state)))
}

// GetStats returns the aggregation dashboard over the filtered set,
// optionally restricted to one subunit type via ?type=.
func (h *Handler) GetStats(c *gin.Context) {
	projects, state := h.session.Snapshot()
	filtered := pipeline.Apply(projects, state)
	c.JSON(http.StatusOK, stats.BuildDashboard(filtered, c.Query("type")))
}

// GetPlaces returns the committed nearby places, with the inline fetch error
// if the last fetch failed on every mirror.
func (h *Handler) GetPlaces(c *gin.Context) {
	list, errMsg := h.session.Places()
	response := gin.H{"places": list}
	if errMsg != "" {
		response["error"] = errMsg
	}
	c.JSON(http.StatusOK, response)
}

// GetPlacesGeoJSON returns the nearby places as a FeatureCollection.
func (h *Handler) GetPlacesGeoJSON(c *gin.Context) {
	list, _ := h.session.Places()
	c.JSON(http.StatusOK, geo.PlaceCollection(list))
}

// ExportCSV streams the summary report for the current filtered set.
func (h *Handler) ExportCSV(c *gin.Context) {
	projects, state := h.session.Snapshot()
	filtered := pipeline.Apply(projects, state)

	rows := make([]models.ProjectStatsRow, 0, len(filtered))
	for _, p := range filtered {
		rows = append(rows, stats.ProjectRow(p, c.Query("type")))
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, rows); err != nil {
		h.logger.WithError(err).Error("Failed to build CSV report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	filename := fmt.Sprintf("market-report-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
