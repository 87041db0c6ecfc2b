// internal/mirror/redis_test.go
package mirror

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-service/internal/models"
)

func newTestMirror(t *testing.T, ttl time.Duration) (*RedisMirror, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisMirror(client, ttl), mr
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		Responses: models.ResponseSet{
			"step-1": {
				"industry":       models.StringAnswer("retail"),
				"employee-count": models.NumberAnswer(250),
				"ai-tools":       models.ListAnswer("chatbots", "analytics"),
			},
		},
		CompletedSteps: []int{1},
		LastSaved:      time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
}

func TestRedisMirrorRoundTrip(t *testing.T) {
	m, _ := newTestMirror(t, 0)
	ctx := context.Background()

	require.NoError(t, m.Write(ctx, "a-1", sampleSnapshot()))

	snap, err := m.Read(ctx, "a-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, models.StringAnswer("retail"), snap.Responses["step-1"]["industry"])
	assert.Equal(t, models.NumberAnswer(250), snap.Responses["step-1"]["employee-count"])
	assert.Equal(t, models.ListAnswer("chatbots", "analytics"), snap.Responses["step-1"]["ai-tools"])
	assert.Equal(t, []int{1}, snap.CompletedSteps)
}

func TestRedisMirrorKeyFormat(t *testing.T) {
	m, mr := newTestMirror(t, 0)
	require.NoError(t, m.Write(context.Background(), "abc-123", sampleSnapshot()))
	assert.True(t, mr.Exists("assessment_abc-123_responses"))
}

func TestRedisMirrorAbsentReadsNil(t *testing.T) {
	m, _ := newTestMirror(t, 0)
	snap, err := m.Read(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRedisMirrorCorruptPayload(t *testing.T) {
	m, mr := newTestMirror(t, 0)
	require.NoError(t, mr.Set(Key("a-1"), "{not-json"))

	snap, err := m.Read(context.Background(), "a-1")
	assert.Error(t, err)
	assert.Nil(t, snap)
}

func TestRedisMirrorClear(t *testing.T) {
	m, mr := newTestMirror(t, 0)
	ctx := context.Background()

	require.NoError(t, m.Write(ctx, "a-1", sampleSnapshot()))
	require.NoError(t, m.Clear(ctx, "a-1"))
	assert.False(t, mr.Exists(Key("a-1")))

	// Clearing an absent key is not an error.
	assert.NoError(t, m.Clear(ctx, "a-1"))
}

func TestRedisMirrorTTL(t *testing.T) {
	m, mr := newTestMirror(t, time.Minute)
	require.NoError(t, m.Write(context.Background(), "a-1", sampleSnapshot()))

	mr.FastForward(2 * time.Minute)
	snap, err := m.Read(context.Background(), "a-1")
	assert.NoError(t, err)
	assert.Nil(t, snap, "snapshot expires with the ttl")
}

func TestMemoryMirrorMatchesRedisBehaviour(t *testing.T) {
	m := NewMemoryMirror()
	ctx := context.Background()

	snap, err := m.Read(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, m.Write(ctx, "a-1", sampleSnapshot()))
	snap, err = m.Read(ctx, "a-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, []int{1}, snap.CompletedSteps)

	m.Corrupt("a-1")
	_, err = m.Read(ctx, "a-1")
	assert.Error(t, err)

	require.NoError(t, m.Clear(ctx, "a-1"))
	snap, err = m.Read(ctx, "a-1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}
