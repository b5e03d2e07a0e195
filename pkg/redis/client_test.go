package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "orders:user-1", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 1 {
		t.Fatalf("expected first hit allowed, got allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 || mock.expireCalls[0].key != "rx:rate_limit:orders:user-1" {
		t.Fatalf("expected expire on first hit, got %+v", mock.expireCalls)
	}

	if allowed, count, _ = client.FixedWindowAllow(ctx, "orders:user-1", 2, time.Minute); !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}
	if allowed, _, _ = client.FixedWindowAllow(ctx, "orders:user-1", 2, time.Minute); allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestIdempotencyReservationLifecycle(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.IdempotencyKey("user|POST|/api/v1/orders", "abc")

	if got, err := client.Lookup(ctx, key); err != nil || got != "" {
		t.Fatalf("expected empty lookup, got %q err=%v", got, err)
	}
	ok, err := client.Reserve(ctx, key, "pending", time.Hour)
	if err != nil || !ok {
		t.Fatalf("expected reservation, ok=%v err=%v", ok, err)
	}
	if ok, _ := client.Reserve(ctx, key, "pending", time.Hour); ok {
		t.Fatalf("second reservation must fail")
	}
	if err := client.Complete(ctx, key, "final", time.Hour); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got, _ := client.Lookup(ctx, key); got != "final" {
		t.Fatalf("expected final record, got %q", got)
	}
	if err := client.Release(ctx, key); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if got, _ := client.Lookup(ctx, key); got != "" {
		t.Fatalf("expected key removed, got %q", got)
	}
}

func TestKeyBuilder(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "rx:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := buildKey(rateLimitPrefix, " ", "x"); got != "rx:rate_limit:x" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestZeroClientReportsNotInitialized(t *testing.T) {
	var client *Client
	if _, err := client.Lookup(context.Background(), "k"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on nil client should be a no-op: %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@cache:6380/2", PoolSize: 7})
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.DB != 2 || opts.Password != "pw" || opts.PoolSize != 7 {
		t.Fatalf("unexpected options %+v", opts)
	}
	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 3, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("address config: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 3 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
