package services_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/online-social/apiserver/internal/services"
)

func TestDecodeImage(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0xe0, 'j', 'p', 'g'}
	encoded := base64.StdEncoding.EncodeToString(raw)

	cases := []struct {
		name    string
		payload string
	}{
		{"bare base64", encoded},
		{"data url", "data:image/jpeg;base64," + encoded},
		{"prefix without data scheme", "image/png;base64," + encoded},
		{"padded with spaces", "  " + encoded + "\n"},
		{"unpadded", strings.TrimRight(encoded, "=")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := services.DecodeImage(tc.payload)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if string(got) != string(raw) {
				t.Fatalf("unexpected bytes: %v", got)
			}
		})
	}

	if _, err := services.DecodeImage(""); validationMessage(err) != "Нет изображения" {
		t.Fatalf("expected missing image error, got %v", err)
	}
	for _, bad := range []string{"data:image/png;base64", "!!!not base64!!!"} {
		if _, err := services.DecodeImage(bad); !errors.Is(err, services.ErrInvalidImage) {
			t.Fatalf("expected ErrInvalidImage for %q, got %v", bad, err)
		}
	}
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	url, err := env.media.UploadAvatar(ctx, alice.ID, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("avatar")))
	if err != nil {
		t.Fatalf("upload avatar: %v", err)
	}

	key := "avatars/" + alice.ID.String() + ".jpg"
	if url != "https://cdn.example.com/media/"+key {
		t.Fatalf("unexpected url: %s", url)
	}
	data, contentType, ok := env.objects.Object(key)
	if !ok || string(data) != "avatar" || contentType != "image/jpeg" {
		t.Fatalf("unexpected object: %q %q %v", data, contentType, ok)
	}

	page, err := env.users.Profile(ctx, "alice", &alice)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if page.Profile.AvatarURL != url {
		t.Fatalf("expected avatar url to be persisted, got %q", page.Profile.AvatarURL)
	}
}

func TestUploadPostImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.media.UploadPostImage(ctx, base64.StdEncoding.EncodeToString([]byte("one")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	second, err := env.media.UploadPostImage(ctx, base64.StdEncoding.EncodeToString([]byte("two")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct keys")
	}
	if !strings.HasPrefix(first, "https://cdn.example.com/media/posts/") || !strings.HasSuffix(first, ".jpg") {
		t.Fatalf("unexpected url: %s", first)
	}
}
