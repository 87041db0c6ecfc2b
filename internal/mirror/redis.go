// internal/mirror/redis.go
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"assessment-service/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// RedisMirror keeps snapshots in Redis with an optional TTL.
type RedisMirror struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMirror builds a mirror on the given client. A zero ttl means
// snapshots never expire.
func NewRedisMirror(client *redis.Client, ttl time.Duration) *RedisMirror {
	return &RedisMirror{client: client, ttl: ttl}
}

func (m *RedisMirror) Write(ctx context.Context, assessmentID string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		metrics.MirrorErrors.WithLabelValues("write").Inc()
		return err
	}
	if err := m.client.Set(ctx, Key(assessmentID), data, m.ttl).Err(); err != nil {
		metrics.MirrorErrors.WithLabelValues("write").Inc()
		return err
	}
	return nil
}

func (m *RedisMirror) Read(ctx context.Context, assessmentID string) (*Snapshot, error) {
	val, err := m.client.Get(ctx, Key(assessmentID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		metrics.MirrorErrors.WithLabelValues("read").Inc()
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		// A corrupt snapshot is a read error. The session ignores it while
		// the remote is healthy and only fails hard when both sides are down.
		metrics.MirrorErrors.WithLabelValues("read").Inc()
		return nil, err
	}
	return &snap, nil
}

func (m *RedisMirror) Clear(ctx context.Context, assessmentID string) error {
	if err := m.client.Del(ctx, Key(assessmentID)).Err(); err != nil {
		metrics.MirrorErrors.WithLabelValues("clear").Inc()
		return err
	}
	return nil
}
