package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(size int) *ImportQueue {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewImportQueue(size, logger)
}

func TestPushAndDispatch(t *testing.T) {
	q := newTestQueue(4)
	defer q.Close()

	var mu sync.Mutex
	var received []string
	q.Subscribe(func(batch *ImportBatch) error {
		mu.Lock()
		received = append(received, batch.ImportID)
		mu.Unlock()
		return nil
	})
	q.Start()

	require.NoError(t, q.Push(&ImportBatch{ImportID: "a"}))
	require.NoError(t, q.Push(&ImportBatch{ImportID: "b"}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"a", "b"}, received)
	mu.Unlock()
}

func TestPushFullQueue(t *testing.T) {
	q := newTestQueue(1)
	defer q.Close()

	// Not started, so the single slot fills and stays full.
	require.NoError(t, q.Push(&ImportBatch{ImportID: "a"}))
	assert.ErrorIs(t, q.Push(&ImportBatch{ImportID: "b"}), ErrQueueFull)
	assert.Equal(t, 1, q.Len())
}

func TestPushAfterClose(t *testing.T) {
	q := newTestQueue(1)
	require.NoError(t, q.Close())

	assert.True(t, q.IsClosed())
	assert.ErrorIs(t, q.Push(&ImportBatch{ImportID: "a"}), ErrQueueClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	q := newTestQueue(1)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
}

func TestPushConcurrentWithClose(t *testing.T) {
	q := newTestQueue(64)
	q.Start()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Either outcome is fine; it must never panic on a closed channel.
			_ = q.Push(&ImportBatch{ImportID: "race"})
		}()
	}

	require.NoError(t, q.Close())
	wg.Wait()
	assert.True(t, q.IsClosed())
}

func TestDispatchContinuesPastFailingHandler(t *testing.T) {
	q := newTestQueue(2)
	defer q.Close()

	var mu sync.Mutex
	calls := 0
	q.Subscribe(func(batch *ImportBatch) error {
		return assert.AnError
	})
	q.Subscribe(func(batch *ImportBatch) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})
	q.Start()

	require.NoError(t, q.Push(&ImportBatch{ImportID: "a"}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, 2*time.Second, 10*time.Millisecond)
}
