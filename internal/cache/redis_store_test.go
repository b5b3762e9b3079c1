package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/lending-engine/internal/config"
	"github.com/segyhp/lending-engine/internal/domain"
	"github.com/segyhp/lending-engine/internal/scoring"
	customError "github.com/segyhp/lending-engine/pkg/errors"
)

func TestKeys(t *testing.T) {
	id := uuid.MustParse("6f1c1d7e-4a5b-4c3d-8e9f-0a1b2c3d4e5f")

	assert.Equal(t, "lending:assessment:6f1c1d7e-4a5b-4c3d-8e9f-0a1b2c3d4e5f", AssessmentKey(id))
	assert.Equal(t, "lending:generate:2024-03-15", GenerationKey(time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)))
}

// newTestStore connects to REDIS_URL; the test is skipped when it is unset.
func newTestStore(t *testing.T) (Store, *redis.Client) {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	return NewRedisStore(client), client
}

func TestRedisStore_AssessmentRoundTrip(t *testing.T) {
	store, client := newTestStore(t)
	ctx := context.Background()
	borrowerID := uuid.New()
	t.Cleanup(func() { client.Del(ctx, AssessmentKey(borrowerID)) })

	_, found, err := store.GetAssessment(ctx, borrowerID)
	require.NoError(t, err)
	assert.False(t, found)

	asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	want := &scoring.Assessment{
		Score:         748,
		Info:          scoring.ClassifyScore(748),
		RiskRating:    domain.RiskLow,
		SuggestedRate: decimal.NewFromInt(11),
		AsOf:          asOf,
	}
	require.NoError(t, store.SetAssessment(ctx, borrowerID, want, time.Minute))

	got, found, err := store.GetAssessment(ctx, borrowerID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want.Score, got.Score)
	assert.Equal(t, want.Info, got.Info)
	assert.True(t, want.SuggestedRate.Equal(got.SuggestedRate))
	assert.True(t, want.AsOf.Equal(got.AsOf))

	require.NoError(t, store.InvalidateAssessment(ctx, borrowerID))
	_, found, err = store.GetAssessment(ctx, borrowerID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_AcquireOnce(t *testing.T) {
	store, client := newTestStore(t)
	ctx := context.Background()
	key := "lending:test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, key) })

	first, err := store.AcquireOnce(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := store.AcquireOnce(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, second)

	require.NoError(t, store.Release(ctx, key))
	third, err := store.AcquireOnce(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, third)
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(config.RedisConfig{Host: "cache", Port: "6380", DB: 2})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	assert.Equal(t, "cache:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)

	client, err = NewClient(config.RedisConfig{URL: "redis://:pw@redis.internal:6379/4", Host: "ignored"})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	assert.Equal(t, "redis.internal:6379", client.Options().Addr)
	assert.Equal(t, "pw", client.Options().Password)
	assert.Equal(t, 4, client.Options().DB)

	_, err = NewClient(config.RedisConfig{URL: "http://not-redis"})
	assert.Error(t, err)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, wrap(nil))

	err := wrap(context.DeadlineExceeded)
	assert.Equal(t, customError.ErrCodeCacheError, customError.Code(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
