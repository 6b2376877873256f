package status

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerTransitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refresh_status.json")
	tracker := NewTracker(path)

	assert.Equal(t, StateIdle, tracker.Snapshot().Status)
	assert.False(t, tracker.InProgress())

	assert.NoError(t, tracker.Begin("crawling 5 competitors"))
	record := tracker.Snapshot()
	assert.Equal(t, StateRunning, record.Status)
	assert.True(t, record.InProgress)
	assert.NotEmpty(t, record.StartedAt)
	assert.True(t, tracker.InProgress())

	tracker.Succeed("crawl finished")
	record = tracker.Snapshot()
	assert.Equal(t, StateSuccess, record.Status)
	assert.False(t, record.InProgress)
	assert.NotEmpty(t, record.FinishedAt)

	// the file reflects the final state
	reloaded := NewTracker(path)
	assert.Equal(t, StateSuccess, reloaded.Snapshot().Status)
}

func TestTrackerRejectsConcurrentBegin(t *testing.T) {
	tracker := NewTracker(filepath.Join(t.TempDir(), "status.json"))

	assert.NoError(t, tracker.Begin("first"))
	assert.ErrorIs(t, tracker.Begin("second"), ErrAlreadyRunning)

	tracker.Fail("boom")
	record := tracker.Snapshot()
	assert.Equal(t, StateFailed, record.Status)
	assert.Equal(t, "boom", record.Message)

	// a finished run releases the guard
	assert.NoError(t, tracker.Begin("third"))
}

func TestTrackerConcurrentBeginAllowsExactlyOne(t *testing.T) {
	tracker := NewTracker(filepath.Join(t.TempDir(), "status.json"))

	var wg sync.WaitGroup
	successes := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tracker.Begin("race") == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestTrackerMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	assert.NoError(t, os.WriteFile(path, []byte("{oops"), 0644))

	tracker := NewTracker(path)
	assert.Equal(t, StateIdle, tracker.Snapshot().Status)
}

func TestTrackerStaleRunningFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"status":"running","in_progress":true}`), 0644))

	tracker := NewTracker(path)
	record := tracker.Snapshot()
	assert.Equal(t, StateFailed, record.Status)
	assert.False(t, record.InProgress)
	assert.False(t, tracker.InProgress())
}
