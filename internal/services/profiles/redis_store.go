package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vehicle-match-engine/internal/models"
)

const preferenceKeyPrefix = "profile:prefs:"

// RedisStore keeps complete profiles as JSON values.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// NewRedisStore returns a store on client. A zero ttl keeps profiles forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func preferenceKey(userID string) string {
	return preferenceKeyPrefix + userID
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*models.UserProfile, error) {
	val, err := s.client.Get(ctx, preferenceKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	var p models.UserProfile
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, fmt.Errorf("failed to decode preferences for %s: %w", userID, err)
	}
	return &p, nil
}

func (s *RedisStore) Save(ctx context.Context, profile *models.UserProfile) error {
	if profile == nil {
		return ErrNilProfile
	}
	if profile.UserID == "" {
		return models.ErrEmptyUserID
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.client.Set(ctx, preferenceKey(profile.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
