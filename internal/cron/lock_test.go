package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedisStore struct {
	values map[string]string
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}}
}

func (s *fakeRedisStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *fakeRedisStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *fakeRedisStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	ctx := context.Background()
	store := newFakeRedisStore()

	first, err := NewRedisLock(store, "sf:lock:cron", 55*time.Second)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	second, err := NewRedisLock(store, "sf:lock:cron", 55*time.Second)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}

	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire = %v, %v", ok, err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("second instance must not acquire a held lock")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire after release = %v, %v", ok, err)
	}
}

func TestRedisLockReleaseOnlyOwn(t *testing.T) {
	ctx := context.Background()
	store := newFakeRedisStore()

	lock, err := NewRedisLock(store, "sf:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	if ok, err := lock.Acquire(ctx); err != nil || !ok {
		t.Fatalf("acquire = %v, %v", ok, err)
	}

	// Simulate TTL expiry plus takeover by another instance.
	store.values["sf:lock:cron"] = "someone-else"
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["sf:lock:cron"] != "someone-else" {
		t.Fatal("release must not delete a lock it no longer owns")
	}
}
