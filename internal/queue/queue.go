package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"marketscope/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// ImportBatch is one accepted import bound for the archive.
type ImportBatch struct {
	ImportID   string
	ImportedAt time.Time
	Projects   []*models.Project
}

// ImportQueue is an in-memory queue decoupling the import request path from
// the archive writes.
type ImportQueue struct {
	items    chan *ImportBatch
	done     chan struct{}
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func(*ImportBatch) error
}

// NewImportQueue creates a queue with the specified buffer size.
func NewImportQueue(bufferSize int, logger *logrus.Logger) *ImportQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &ImportQueue{
		items:  make(chan *ImportBatch, bufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Push adds an import to the queue. Non-blocking: a full queue returns
// ErrQueueFull rather than stalling the request path.
func (q *ImportQueue) Push(batch *ImportBatch) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.items <- batch:
		q.logger.WithField("import_id", batch.ImportID).Debug("Queued import for archiving")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler called for each queued import.
func (q *ImportQueue) Subscribe(handler func(*ImportBatch) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins draining the queue.
func (q *ImportQueue) Start() {
	go q.process()
}

func (q *ImportQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			if batch == nil {
				return
			}
			q.dispatch(batch)
		}
	}
}

func (q *ImportQueue) dispatch(batch *ImportBatch) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).WithField("import_id", batch.ImportID).Error("Handler failed to process import")
		}
	}
}

// Close stops the queue and prevents new imports from being added. The items
// channel is deliberately left open: a Push racing Close may still enqueue,
// and sending on a closed channel would panic. The drain loop exits via done.
func (q *ImportQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)
	return nil
}

// Len returns the number of imports waiting in the queue.
func (q *ImportQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *ImportQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
