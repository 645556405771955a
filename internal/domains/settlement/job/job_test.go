package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/config"
	"marketplace-backend/internal/shared"
)

// fakeLocker hands out a fixed token and records how it is released.
type fakeLocker struct {
	held bool

	acquireErr    error
	acquired      int
	releasedToken string
	releases      int
}

func (l *fakeLocker) Acquire(ctx context.Context, jobName string) (string, bool, error) {
	if l.acquireErr != nil {
		return "", false, l.acquireErr
	}
	if l.held {
		return "", false, nil
	}
	l.acquired++
	return "run-token-1", true, nil
}

func (l *fakeLocker) Release(ctx context.Context, jobName, token string) error {
	l.releases++
	l.releasedToken = token
	return nil
}

type fakeNotifier struct {
	failures []string
}

func (n *fakeNotifier) NotifyBatchFailure(ctx context.Context, batchName string, cause error) {
	n.failures = append(n.failures, batchName)
}

func newEnvelopeHandlers(lock *fakeLocker, notifier *fakeNotifier) *Handlers {
	return &Handlers{
		lock:     lock,
		notifier: notifier,
		cfg:      config.SettlementConfig{BrandChunkSize: 100, SkipLimit: 2},
		now:      time.Now,
	}
}

func TestRunLockedReleasesWithAcquiredToken(t *testing.T) {
	lock := &fakeLocker{}
	h := newEnvelopeHandlers(lock, &fakeNotifier{})

	ran := false
	err := h.runLocked(context.Background(), "test_job", shared.BatchTrigger{}, func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.releases)
	// Release must carry the token this run acquired, never a blind delete.
	assert.Equal(t, "run-token-1", lock.releasedToken)
}

func TestRunLockedSkipsWhenLockHeld(t *testing.T) {
	lock := &fakeLocker{held: true}
	h := newEnvelopeHandlers(lock, &fakeNotifier{})

	ran := false
	err := h.runLocked(context.Background(), "test_job", shared.BatchTrigger{}, func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)

	assert.False(t, ran)
	// A run that never owned the lock must not release it either.
	assert.Zero(t, lock.releases)
}

func TestRunLockedFailureAlertsAndStillReleases(t *testing.T) {
	lock := &fakeLocker{}
	notifier := &fakeNotifier{}
	h := newEnvelopeHandlers(lock, notifier)

	runErr := errors.New("aggregation blew up")
	err := h.runLocked(context.Background(), "test_job", shared.BatchTrigger{}, func(ctx context.Context) error {
		return runErr
	})
	assert.ErrorIs(t, err, runErr)

	assert.Equal(t, []string{"test_job"}, notifier.failures)
	assert.Equal(t, 1, lock.releases)
	assert.Equal(t, "run-token-1", lock.releasedToken)
}

func TestRunLockedAcquireErrorAlerts(t *testing.T) {
	lock := &fakeLocker{acquireErr: errors.New("redis down")}
	notifier := &fakeNotifier{}
	h := newEnvelopeHandlers(lock, notifier)

	err := h.runLocked(context.Background(), "test_job", shared.BatchTrigger{}, func(ctx context.Context) error {
		t.Fatal("job body must not run without the lock")
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, []string{"test_job"}, notifier.failures)
	assert.Zero(t, lock.releases)
}
