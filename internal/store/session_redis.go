package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/types"
	"github.com/redis/go-redis/v9"
)

const sessionNamespace = "session"

// RedisSessionStore keeps sessions as JSON values that expire together with
// the session. Revoking deletes the key.
type RedisSessionStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client, now: time.Now}
}

func (s *RedisSessionStore) Create(ctx context.Context, session types.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, id uuid.UUID) (types.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.Session{}, ErrNotFound
		}
		return types.Session{}, err
	}

	var session types.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return types.Session{}, err
	}
	return session, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func sessionKey(id uuid.UUID) string {
	return sessionNamespace + ":" + id.String()
}
