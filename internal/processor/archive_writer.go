package processor

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"marketscope/server/config"
	"marketscope/server/internal/models"
	"marketscope/server/internal/queue"
)

// ImportSaver is the slice of the archive store the writer needs.
type ImportSaver interface {
	SaveImport(importID string, importedAt time.Time, projects []*models.Project) error
}

// ArchiveWriter drains the import queue into the archive with bounded
// retries. A write that keeps failing is logged and dropped; the live
// session is never affected.
type ArchiveWriter struct {
	store  ImportSaver
	queue  *queue.ImportQueue
	config *config.Config
	logger *logrus.Logger
}

// NewArchiveWriter creates a writer bound to the queue and store.
func NewArchiveWriter(store ImportSaver, q *queue.ImportQueue, cfg *config.Config, logger *logrus.Logger) *ArchiveWriter {
	if logger == nil {
		logger = logrus.New()
	}
	return &ArchiveWriter{
		store:  store,
		queue:  q,
		config: cfg,
		logger: logger,
	}
}

// Start subscribes the writer to the queue.
func (w *ArchiveWriter) Start() {
	w.queue.Subscribe(func(batch *queue.ImportBatch) error {
		return w.write(batch)
	})
}

// write persists one import, retrying on failure.
func (w *ArchiveWriter) write(batch *queue.ImportBatch) error {
	var err error
	for attempt := 0; attempt <= w.config.Archive.MaxRetries; attempt++ {
		if attempt > 0 {
			w.logger.Infof("Retrying archive write, attempt %d of %d", attempt, w.config.Archive.MaxRetries)
			time.Sleep(time.Duration(w.config.Archive.RetryDelay) * time.Second)
		}

		err = w.store.SaveImport(batch.ImportID, batch.ImportedAt, batch.Projects)
		if err == nil {
			w.logger.Infof("Archived import %s with %d projects", batch.ImportID, len(batch.Projects))
			return nil
		}

		w.logger.Errorf("Archive write failed: %v", err)
	}

	return fmt.Errorf("failed to archive import after %d attempts: %w", w.config.Archive.MaxRetries, err)
}
