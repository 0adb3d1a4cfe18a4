package storage

import (
	"context"
	"io"
	"testing"
)

type fakeBackend struct {
	bucket string
}

func (f fakeBackend) EnsureBucket(context.Context) error { return nil }

func (f fakeBackend) Put(context.Context, string, io.Reader, int64, string) error { return nil }

func (f fakeBackend) ObjectURL(key string) string {
	return "http://backend.local/" + f.bucket + "/" + escapeKey(key)
}

func (f fakeBackend) Bucket() string { return f.bucket }

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		key     string
		want    string
	}{
		{"base url", "https://cdn.example.com/media", "avatars/1.jpg", "https://cdn.example.com/media/avatars/1.jpg"},
		{"trailing slash", "https://cdn.example.com/media/", "posts/2.jpg", "https://cdn.example.com/media/posts/2.jpg"},
		{"escaped key", "https://cdn.example.com", "posts/a b.jpg", "https://cdn.example.com/posts/a%20b.jpg"},
		{"backend fallback", "", "avatars/1.jpg", "http://backend.local/online/avatars/1.jpg"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(fakeBackend{bucket: "online"}, tc.baseURL)
			if got := s.PublicURL(tc.key); got != tc.want {
				t.Fatalf("PublicURL(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestGCSObjectURL(t *testing.T) {
	g := &GCSClient{bucket: "online-media"}
	if got := g.ObjectURL("posts/x.jpg"); got != "https://storage.googleapis.com/online-media/posts/x.jpg" {
		t.Fatalf("unexpected url: %s", got)
	}
}
