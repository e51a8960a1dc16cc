package transcript

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eleven-am/voice-recognizer/internal/shared"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewStore(redisClient, time.Hour), mr
}

func TestNewStore_DefaultTTL(t *testing.T) {
	s := NewStore(nil, 0)
	if s.ttl != DefaultTTL {
		t.Errorf("expected default ttl %v, got %v", DefaultTTL, s.ttl)
	}
}

func TestStore_Begin(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	ctx := context.Background()
	tr := &Transcript{Engine: "memory", Search: "commands"}
	if err := store.Begin(ctx, tr); err != nil {
		t.Fatalf("Begin error: %v", err)
	}

	if !strings.HasPrefix(tr.ID, "trn_") {
		t.Errorf("transcript ID should have prefix 'trn_', got %s", tr.ID)
	}
	if tr.Status != StatusActive {
		t.Errorf("expected status %s, got %s", StatusActive, tr.Status)
	}
	if tr.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}
	if ttl := mr.TTL(tr.RedisKey()); ttl != time.Hour {
		t.Errorf("expected ttl 1h, got %v", ttl)
	}
}

func TestStore_Begin_WithID(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	tr := &Transcript{ID: "session-1", Engine: "memory"}
	if err := store.Begin(context.Background(), tr); err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if tr.ID != "session-1" {
		t.Errorf("transcript ID should not be changed, got %s", tr.ID)
	}

	got, err := store.Get(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Engine != "memory" || got.Status != StatusActive {
		t.Errorf("unexpected transcript %+v", got)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	_, err := store.Get(context.Background(), "nonexistent")
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AppendList(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	ctx := context.Background()
	if err := store.Begin(ctx, &Transcript{ID: "s1"}); err != nil {
		t.Fatalf("Begin error: %v", err)
	}

	phrases := []string{"turn on the lights", "turn off the lights", "stop"}
	for _, p := range phrases {
		if err := store.Append(ctx, "s1", Entry{Text: p, Final: true}); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}

	entries, err := store.List(ctx, "s1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(entries) != len(phrases) {
		t.Fatalf("expected %d entries, got %d", len(phrases), len(entries))
	}
	for i, e := range entries {
		if e.Text != phrases[i] {
			t.Errorf("entry %d: expected %q, got %q", i, phrases[i], e.Text)
		}
		if e.At.IsZero() {
			t.Errorf("entry %d: timestamp should be set", i)
		}
	}
	if ttl := mr.TTL(EntriesRedisKey("s1")); ttl != time.Hour {
		t.Errorf("expected entries ttl 1h, got %v", ttl)
	}
}

func TestStore_List_Empty(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	entries, err := store.List(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestStore_End(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	ctx := context.Background()
	store.Begin(ctx, &Transcript{ID: "s1"})

	if err := store.End(ctx, "s1"); err != nil {
		t.Fatalf("End error: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Status != StatusEnded {
		t.Errorf("expected status %s, got %s", StatusEnded, got.Status)
	}
	if got.EndedAt == nil {
		t.Error("EndedAt should be set")
	}
}

func TestStore_End_NotFound(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	if err := store.End(context.Background(), "missing"); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	ctx := context.Background()
	store.Begin(ctx, &Transcript{ID: "s1"})
	store.Append(ctx, "s1", Entry{Text: "hello"})

	mr.FastForward(2 * time.Hour)

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected transcript to expire, got %v", err)
	}
	entries, _ := store.List(ctx, "s1")
	if len(entries) != 0 {
		t.Errorf("expected entries to expire, got %d", len(entries))
	}
}

func TestStore_GetMetrics(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	ctx := context.Background()
	store.Begin(ctx, &Transcript{ID: "s1"})
	store.Begin(ctx, &Transcript{ID: "s2"})
	store.Append(ctx, "s1", Entry{Text: "one"})
	store.IncrementErrors(ctx)

	metrics, err := store.GetMetrics(ctx, 1)
	if err != nil {
		t.Fatalf("GetMetrics error: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("expected 1 metrics bucket, got %d", len(metrics))
	}
	m := metrics[0]
	if m.Sessions != 2 || m.Utterances != 1 || m.Errors != 1 {
		t.Errorf("unexpected metrics %+v", m)
	}
}

func TestStore_GetMetrics_Empty(t *testing.T) {
	store, mr := newTestStore(t)
	defer mr.Close()

	metrics, err := store.GetMetrics(context.Background(), 24)
	if err != nil {
		t.Fatalf("GetMetrics error: %v", err)
	}
	if len(metrics) != 0 {
		t.Errorf("expected no metrics, got %d", len(metrics))
	}
}

func TestKeys(t *testing.T) {
	if RedisKey("abc") != "transcript:abc" {
		t.Errorf("unexpected key %s", RedisKey("abc"))
	}
	if EntriesRedisKey("abc") != "transcript:abc:entries" {
		t.Errorf("unexpected key %s", EntriesRedisKey("abc"))
	}
	if MetricsRedisKey("2024-01-15", 14) != "transcript:metrics:2024-01-15:14" {
		t.Errorf("unexpected key %s", MetricsRedisKey("2024-01-15", 14))
	}
}
