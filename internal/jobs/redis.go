package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	scheduleKey = "callkeeper:jobs:schedule"
	itemPrefix  = "callkeeper:jobs:item:"
	keyPrefix   = "callkeeper:jobs:key:"
)

// RedisStore is a redis-backed Store. Jobs survive process restarts; the
// schedule is a sorted set of job IDs scored by run time.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// RedisConfig holds the redis connection parameters.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("[Jobs] Connected to redis", "addr", cfg.Addr)
	return &RedisStore{client: rdb}, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, spec Spec, policy ReplacePolicy) error {
	if spec.Key != "" {
		existing, err := s.client.Get(ctx, keyPrefix+spec.Key).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("failed to check uniqueness key: %w", err)
		}
		if err == nil {
			if policy == Keep {
				return nil
			}
			if err := s.removeID(ctx, existing); err != nil {
				return err
			}
		}
		if err := s.client.Set(ctx, keyPrefix+spec.Key, spec.ID, 0).Err(); err != nil {
			return fmt.Errorf("failed to store uniqueness key: %w", err)
		}
	}

	data, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := s.client.Set(ctx, itemPrefix+spec.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store job: %w", err)
	}
	if err := s.client.ZAdd(ctx, scheduleKey, redis.Z{
		Score:  float64(spec.RunAt.UnixMilli()),
		Member: spec.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}
	return nil
}

// Claim implements Store.
func (s *RedisStore) Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]Spec, error) {
	ids, err := s.client.ZRangeByScore(ctx, scheduleKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now.UnixMilli()),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query due jobs: %w", err)
	}

	specs := make([]Spec, 0, len(ids))
	leaseScore := float64(now.Add(lease).UnixMilli())
	for _, id := range ids {
		data, err := s.client.Get(ctx, itemPrefix+id).Result()
		if err == redis.Nil {
			// Orphaned schedule entry; drop it.
			_ = s.client.ZRem(ctx, scheduleKey, id).Err()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load job %s: %w", id, err)
		}

		var spec Spec
		if err := json.Unmarshal([]byte(data), &spec); err != nil {
			slog.Warn("[Jobs] Dropping undecodable job", "job_id", id, "error", err)
			_ = s.removeID(ctx, id)
			continue
		}

		if err := s.client.ZAdd(ctx, scheduleKey, redis.Z{Score: leaseScore, Member: id}).Err(); err != nil {
			return nil, fmt.Errorf("failed to lease job %s: %w", id, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Reschedule implements Store.
func (s *RedisStore) Reschedule(ctx context.Context, spec Spec) error {
	data, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := s.client.Set(ctx, itemPrefix+spec.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return s.client.ZAdd(ctx, scheduleKey, redis.Z{
		Score:  float64(spec.RunAt.UnixMilli()),
		Member: spec.ID,
	}).Err()
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, id string) error {
	data, err := s.client.Get(ctx, itemPrefix+id).Result()
	if err == nil {
		var spec Spec
		if json.Unmarshal([]byte(data), &spec) == nil && spec.Key != "" {
			current, err := s.client.Get(ctx, keyPrefix+spec.Key).Result()
			if err == nil && current == id {
				_ = s.client.Del(ctx, keyPrefix+spec.Key).Err()
			}
		}
	}
	return s.removeID(ctx, id)
}

func (s *RedisStore) removeID(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, itemPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	return s.client.ZRem(ctx, scheduleKey, id).Err()
}
