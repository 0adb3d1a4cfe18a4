package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/types"
)

const imageContentType = "image/jpeg"

// ObjectStore is the subset of object storage the media service needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

// MediaService stores uploaded images and returns their public URLs.
type MediaService struct {
	store   Store
	objects ObjectStore
}

func NewMediaService(store Store, objects ObjectStore) *MediaService {
	return &MediaService{store: store, objects: objects}
}

// UploadAvatar stores the user's avatar and records its URL on the profile.
// A new upload replaces the previous avatar object.
func (s *MediaService) UploadAvatar(ctx context.Context, userID uuid.UUID, image string) (string, error) {
	url, err := s.put(ctx, fmt.Sprintf("avatars/%s.jpg", userID), image)
	if err != nil {
		return "", err
	}

	if err := s.store.Repositories().Users.UpdateProfile(ctx, userID, types.ProfileUpdate{AvatarURL: &url}); err != nil {
		return "", fmt.Errorf("update avatar url: %w", err)
	}
	return url, nil
}

// UploadPostImage stores an image for a future post under a random key.
func (s *MediaService) UploadPostImage(ctx context.Context, image string) (string, error) {
	return s.put(ctx, fmt.Sprintf("posts/%s.jpg", uuid.New()), image)
}

func (s *MediaService) put(ctx context.Context, key, image string) (string, error) {
	data, err := DecodeImage(image)
	if err != nil {
		return "", err
	}
	if err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), imageContentType); err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return s.objects.PublicURL(key), nil
}

// DecodeImage accepts a data URL ("data:image/png;base64,....") or bare
// base64 and returns the raw bytes. Anything up to the last comma is treated
// as a prefix and dropped.
func DecodeImage(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, invalid("Нет изображения")
	}
	if idx := strings.LastIndex(payload, ","); idx >= 0 {
		payload = payload[idx+1:]
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		data, err := enc.DecodeString(payload)
		if err == nil && len(data) > 0 {
			return data, nil
		}
	}
	return nil, ErrInvalidImage
}
