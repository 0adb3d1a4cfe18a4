package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/online-social/apiserver/types"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client), mr
}

func TestRedisSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	sessions, mr := newTestRedisStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	session := types.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := sessions.Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := sessions.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.UserID != session.UserID || !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("unexpected session: %+v", got)
	}
	if ttl := mr.TTL(sessionKey(session.ID)); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected ttl: %s", ttl)
	}

	if err := sessions.Revoke(ctx, session.ID); err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	if _, err := sessions.Get(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after revoke, got %v", err)
	}
	if err := sessions.Revoke(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second revoke, got %v", err)
	}
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	sessions, mr := newTestRedisStore(t)

	session := types.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}
	if err := sessions.Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := sessions.Get(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}

func TestRedisSessionStoreRejectsExpired(t *testing.T) {
	sessions, _ := newTestRedisStore(t)

	err := sessions.Create(context.Background(), types.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(-time.Second),
	})
	if err == nil {
		t.Fatalf("expected error for already expired session")
	}
}
