package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/lending-engine/internal/scoring"
	customError "github.com/segyhp/lending-engine/pkg/errors"
)

const keyPrefix = "lending"

// Store caches derived scoring results and guards one-shot jobs
type Store interface {
	// GetAssessment returns the cached assessment of a borrower; found is
	// false on a cache miss.
	GetAssessment(ctx context.Context, borrowerID uuid.UUID) (assessment *scoring.Assessment, found bool, err error)

	// SetAssessment caches an assessment for ttl
	SetAssessment(ctx context.Context, borrowerID uuid.UUID, assessment *scoring.Assessment, ttl time.Duration) error

	// InvalidateAssessment drops a cached assessment
	InvalidateAssessment(ctx context.Context, borrowerID uuid.UUID) error

	// AcquireOnce reports whether the caller is the first to claim key within ttl
	AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops a key taken with AcquireOnce
	Release(ctx context.Context, key string) error

	// Ping checks connectivity
	Ping(ctx context.Context) error
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

// AssessmentKey is the cache key of a borrower's score assessment.
func AssessmentKey(borrowerID uuid.UUID) string {
	return fmt.Sprintf("%s:assessment:%s", keyPrefix, borrowerID)
}

// GenerationKey is the lock key of the due-today run for day.
func GenerationKey(day time.Time) string {
	return fmt.Sprintf("%s:generate:%s", keyPrefix, day.Format("2006-01-02"))
}

func (s *redisStore) GetAssessment(ctx context.Context, borrowerID uuid.UUID) (*scoring.Assessment, bool, error) {
	raw, err := s.client.Get(ctx, AssessmentKey(borrowerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap(err)
	}

	var assessment scoring.Assessment
	if err := json.Unmarshal(raw, &assessment); err != nil {
		return nil, false, wrap(fmt.Errorf("decode cached assessment: %w", err))
	}

	return &assessment, true, nil
}

func (s *redisStore) SetAssessment(ctx context.Context, borrowerID uuid.UUID, assessment *scoring.Assessment, ttl time.Duration) error {
	raw, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}

	return wrap(s.client.Set(ctx, AssessmentKey(borrowerID), raw, ttl).Err())
}

func (s *redisStore) InvalidateAssessment(ctx context.Context, borrowerID uuid.UUID) error {
	return wrap(s.client.Del(ctx, AssessmentKey(borrowerID)).Err())
}

func (s *redisStore) AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	return acquired, wrap(err)
}

func (s *redisStore) Release(ctx context.Context, key string) error {
	return wrap(s.client.Del(ctx, key).Err())
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// wrap tags redis failures with the cache error code
func wrap(err error) error {
	if err == nil {
		return nil
	}
	return customError.WrapCacheError(err)
}
