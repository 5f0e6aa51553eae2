package places

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"marketscope/server/internal/session"
)

// Fetcher schedules place fetches off search-state changes. Each change
// carries a generation number from the session; the fetch is debounced and a
// fetch that is no longer the latest generation by the time it starts, or
// finishes, never commits. Replaces the ad hoc liveness flag the UI used to
// carry.
type Fetcher struct {
	logger   *logrus.Logger
	client   *Client
	session  *session.Session
	debounce time.Duration
	timeout  time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewFetcher creates a fetcher bound to the session.
func NewFetcher(logger *logrus.Logger, client *Client, sess *session.Session, debounce, timeout time.Duration) *Fetcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Fetcher{
		logger:   logger,
		client:   client,
		session:  sess,
		debounce: debounce,
		timeout:  timeout,
	}
}

// Trigger schedules a fetch for the given generation and center, resetting
// the debounce window. Only the last trigger inside the window runs.
func (f *Fetcher) Trigger(generation uint64, lat, lng, radiusKM float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.debounce, func() {
		f.run(generation, lat, lng, radiusKM)
	})
}

func (f *Fetcher) run(generation uint64, lat, lng, radiusKM float64) {
	if f.session.Generation() != generation {
		f.logger.WithField("generation", generation).Debug("Skipping superseded places fetch")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	fetched, err := f.client.FetchNearby(ctx, lat, lng, radiusKM)
	if err != nil {
		// Keep whatever was committed before; surface the failure inline.
		f.session.CommitPlaces(generation, nil, "nearby places are temporarily unavailable")
		return
	}

	if !f.session.CommitPlaces(generation, fetched, "") {
		f.logger.WithField("generation", generation).Debug("Places fetch superseded before commit")
	}
}
