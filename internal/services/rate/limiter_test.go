package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
)

type remoteStub struct {
	allowed int
	calls   int
	err     error
}

func (s *remoteStub) Allow(_ context.Context, _ string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.calls <= s.allowed {
		return &redis_rate.Result{Limit: limit, Allowed: 1, RetryAfter: -1}, nil
	}
	return &redis_rate.Result{Limit: limit, Allowed: 0, RetryAfter: 1500 * time.Millisecond}, nil
}

func TestAllowSwipeUsesRemoteBudget(t *testing.T) {
	remote := &remoteStub{allowed: 2}
	l := newLimiter(remote, 2, nil)

	for i := 0; i < 2; i++ {
		if _, ok, err := l.AllowSwipe(context.Background(), "u1"); err != nil || !ok {
			t.Fatalf("swipe %d must pass: ok=%v err=%v", i+1, ok, err)
		}
	}
	retry, ok, err := l.AllowSwipe(context.Background(), "u1")
	if err != nil || ok {
		t.Fatalf("third swipe must be limited: ok=%v err=%v", ok, err)
	}
	if retry != 2 {
		t.Fatalf("unexpected retry after: got %d want 2", retry)
	}
}

func TestAllowSwipeFallsBackToLocalBucket(t *testing.T) {
	remote := &remoteStub{err: errors.New("redis down")}
	l := newLimiter(remote, 3, nil)

	allowed := 0
	for i := 0; i < 5; i++ {
		_, ok, err := l.AllowSwipe(context.Background(), "u1")
		if err != nil {
			t.Fatalf("fallback must not fail: %v", err)
		}
		if ok {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("local bucket must allow the burst only: got %d want 3", allowed)
	}

	if _, ok, _ := l.AllowSwipe(context.Background(), "u2"); !ok {
		t.Fatalf("buckets must be per user")
	}
}

func TestAllowSwipeDisabled(t *testing.T) {
	l := newLimiter(&remoteStub{}, 0, nil)
	if _, ok, err := l.AllowSwipe(context.Background(), "u1"); err != nil || !ok {
		t.Fatalf("zero rate must disable limiting")
	}
	if _, _, err := l.AllowSwipe(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}
