package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/types"
)

func TestLikeToggleSequence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner")
	fan := env.register(t, "fan")
	post := env.post(t, owner, "hello")

	want := []types.LikeState{
		{Liked: true, Count: 1},
		{Liked: false, Count: 0},
		{Liked: true, Count: 1},
	}
	for i, expected := range want {
		got, err := env.likes.Toggle(ctx, fan, post.ID)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if got != expected {
			t.Fatalf("toggle %d: expected %+v, got %+v", i, expected, got)
		}
	}

	notifications := env.store.Notifications(owner.ID)
	if len(notifications) != 2 {
		t.Fatalf("expected a notification for each like, got %d", len(notifications))
	}
	n := notifications[0]
	if n.Type != types.NotificationLike || n.FromUserID != fan.ID || n.PostID.UUID != post.ID {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if n.Message != "fan лайкнул ваш пост" {
		t.Fatalf("unexpected message: %q", n.Message)
	}
	if got := len(env.publisher.Published()); got != 2 {
		t.Fatalf("expected 2 published notifications, got %d", got)
	}
}

func TestLikeCountsDistinctUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner")
	post := env.post(t, owner, "hello")

	for i, name := range []string{"first", "second", "third"} {
		state, err := env.likes.Toggle(ctx, env.register(t, name), post.ID)
		if err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if state.Count != i+1 {
			t.Fatalf("expected count %d, got %d", i+1, state.Count)
		}
	}
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner")
	post := env.post(t, owner, "hello")

	state, err := env.likes.Toggle(ctx, owner, post.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !state.Liked || state.Count != 1 {
		t.Fatalf("unexpected state: %+v", state)
	}
	if n := env.store.Notifications(owner.ID); len(n) != 0 {
		t.Fatalf("expected no notifications, got %d", len(n))
	}
	if n := env.publisher.Published(); len(n) != 0 {
		t.Fatalf("expected nothing published, got %d", len(n))
	}
}

func TestLikeMissingPost(t *testing.T) {
	env := newTestEnv(t)
	fan := env.register(t, "fan")

	_, err := env.likes.Toggle(context.Background(), fan, uuid.New())
	if !errors.Is(err, services.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}
