package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/types"
)

func TestPrivateProfileHiddenFromOthers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "owner")
	stranger := env.register(t, "stranger")
	env.post(t, owner, "secret")

	private := true
	if err := env.users.UpdateProfile(ctx, owner.ID, types.ProfileUpdate{IsPrivate: &private}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	for name, viewer := range map[string]*types.User{"anonymous": nil, "stranger": &stranger} {
		page, err := env.users.Profile(ctx, "owner", viewer)
		if err != nil {
			t.Fatalf("%s: profile: %v", name, err)
		}
		if !page.IsPrivateHidden || len(page.Posts) != 0 || page.Posts == nil {
			t.Fatalf("%s: expected hidden posts, got %+v", name, page)
		}
		if page.Profile.PostsCount != nil {
			t.Fatalf("%s: posts_count must be absent", name)
		}
	}

	page, err := env.users.Profile(ctx, "owner", &owner)
	if err != nil {
		t.Fatalf("owner profile: %v", err)
	}
	if page.IsPrivateHidden || len(page.Posts) != 1 {
		t.Fatalf("owner should see own posts, got %+v", page)
	}
	if page.Profile.PostsCount == nil || *page.Profile.PostsCount != 1 {
		t.Fatalf("expected posts_count 1, got %v", page.Profile.PostsCount)
	}
}

func TestProfileLookup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	if _, err := env.users.Profile(ctx, "nobody", nil); !errors.Is(err, services.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := env.users.Profile(ctx, " ", nil); validationMessage(err) != "username обязателен" {
		t.Fatalf("expected validation error, got %v", err)
	}
	page, err := env.users.Profile(ctx, "Alice", nil)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if page.Profile.Username != "alice" || page.Profile.PostsCount == nil || *page.Profile.PostsCount != 0 {
		t.Fatalf("unexpected profile: %+v", page.Profile)
	}
}

func TestUpdateProfileAcceptsEmptyValues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	bio := "hello"
	if err := env.users.UpdateProfile(ctx, alice.ID, types.ProfileUpdate{Bio: &bio}); err != nil {
		t.Fatalf("update bio: %v", err)
	}
	empty := ""
	if err := env.users.UpdateProfile(ctx, alice.ID, types.ProfileUpdate{Bio: &empty}); err != nil {
		t.Fatalf("clear bio: %v", err)
	}
	if err := env.users.UpdateProfile(ctx, alice.ID, types.ProfileUpdate{}); err != nil {
		t.Fatalf("empty update: %v", err)
	}

	page, err := env.users.Profile(ctx, "alice", &alice)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if page.Profile.Bio != "" || page.Profile.DisplayName != "alice" {
		t.Fatalf("unexpected profile: %+v", page.Profile)
	}
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	env.register(t, "bob")

	name := "Wonderland Queen"
	if err := env.users.UpdateProfile(ctx, alice.ID, types.ProfileUpdate{DisplayName: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}

	cases := map[string]int{
		"":      0,
		"   ":   0,
		"ALI":   1,
		"queen": 1,
		"o":     2,
		"zzz":   0,
	}
	for q, want := range cases {
		users, err := env.users.Search(ctx, q)
		if err != nil {
			t.Fatalf("search %q: %v", q, err)
		}
		if users == nil || len(users) != want {
			t.Fatalf("search %q: expected %d users, got %v", q, want, users)
		}
	}
}
