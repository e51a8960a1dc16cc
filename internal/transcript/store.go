package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/eleven-am/voice-recognizer/internal/shared"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 24 * time.Hour
	metricsTTL = 7 * 24 * time.Hour
)

type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{redis: redisClient, ttl: ttl}
}

func (s *Store) Begin(ctx context.Context, t *Transcript) error {
	if t.ID == "" {
		t.ID = shared.NewID("trn_")
	}
	now := time.Now()
	t.Status = StatusActive
	t.StartedAt = now
	t.LastActiveAt = now
	t.EndedAt = nil

	if err := s.save(ctx, t); err != nil {
		return err
	}
	return s.IncrementMetric(ctx, "sessions", 1)
}

func (s *Store) Get(ctx context.Context, id string) (*Transcript, error) {
	data, err := s.redis.Get(ctx, RedisKey(id)).Bytes()
	if err == redis.Nil {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Append pushes an entry onto the session's list and refreshes the TTL of
// both the list and the session record.
func (s *Store) Append(ctx context.Context, id string, entry Entry) error {
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := s.redis.Pipeline()
	pipe.RPush(ctx, EntriesRedisKey(id), data)
	pipe.Expire(ctx, EntriesRedisKey(id), s.ttl)
	pipe.Expire(ctx, RedisKey(id), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append transcript entry: %w", err)
	}
	return s.IncrementMetric(ctx, "utterances", 1)
}

func (s *Store) List(ctx context.Context, id string) ([]Entry, error) {
	items, err := s.redis.LRange(ctx, EntriesRedisKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) End(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now()
	t.Status = StatusEnded
	t.LastActiveAt = now
	t.EndedAt = &now
	return s.save(ctx, t)
}

func (s *Store) save(ctx context.Context, t *Transcript) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, t.RedisKey(), data, s.ttl).Err()
}

func (s *Store) IncrementMetric(ctx context.Context, field string, value int64) error {
	now := time.Now().UTC()
	key := MetricsRedisKey(now.Format("2006-01-02"), now.Hour())

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, field, value)
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) IncrementErrors(ctx context.Context) error {
	return s.IncrementMetric(ctx, "errors", 1)
}

// GetMetrics returns the hourly counters of the last hours, newest first.
// Hours without activity are omitted.
func (s *Store) GetMetrics(ctx context.Context, hours int) ([]*Metrics, error) {
	now := time.Now().UTC()
	var metrics []*Metrics

	for i := 0; i < hours; i++ {
		t := now.Add(-time.Duration(i) * time.Hour)
		key := MetricsRedisKey(t.Format("2006-01-02"), t.Hour())

		data, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}

		m := &Metrics{
			Date: t.Format("2006-01-02"),
			Hour: t.Hour(),
		}
		m.Sessions, _ = strconv.ParseInt(data["sessions"], 10, 64)
		m.Utterances, _ = strconv.ParseInt(data["utterances"], 10, 64)
		m.Errors, _ = strconv.ParseInt(data["errors"], 10, 64)
		metrics = append(metrics, m)
	}

	return metrics, nil
}
