package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when the stored token still belongs to
// this run. A run that outlived its TTL must not delete the lock a successor
// has since acquired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock prevents overlapping firings of the same scheduled job: the lock is
// a per-job-name key acquired with SET NX and a TTL, so a crashed run cannot
// block the schedule forever. Each acquisition stores a per-run token and
// release is compare-and-delete on that token.
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	return &RunLock{client: client, ttl: ttl}
}

func (l *RunLock) key(jobName string) string {
	return "settlement:run_lock:" + jobName
}

// Acquire returns the run token and true when this run now owns the lock for
// jobName. The token must be passed back to Release.
func (l *RunLock) Acquire(ctx context.Context, jobName string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(jobName), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire run lock for %s: %w", jobName, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release drops the lock when token still owns it. Best effort: an expired
// lock is already gone, and a lock re-acquired by a successor is left alone.
func (l *RunLock) Release(ctx context.Context, jobName, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(jobName)}, token).Err(); err != nil {
		return fmt.Errorf("release run lock for %s: %w", jobName, err)
	}
	return nil
}
