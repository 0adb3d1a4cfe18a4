package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/types"
)

// FeedPageSize is the number of posts per feed page.
const FeedPageSize = 20

// PostService encapsulates post use-cases.
type PostService struct {
	store Store
}

func NewPostService(store Store) *PostService {
	return &PostService{store: store}
}

type CreatePostInput struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// Feed returns one page of posts by non-private authors, newest first.
// Pages are 1-indexed; viewer is null for anonymous requests.
func (s *PostService) Feed(ctx context.Context, viewer uuid.NullUUID, page int) ([]types.PostView, error) {
	if page < 1 {
		page = 1
	}
	return s.store.Repositories().Posts.ListFeed(ctx, viewer, (page-1)*FeedPageSize, FeedPageSize)
}

func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, in CreatePostInput) (types.Post, error) {
	content := strings.TrimSpace(in.Content)
	imageURL := strings.TrimSpace(in.ImageURL)
	if content == "" && imageURL == "" {
		return types.Post{}, invalid("Напишите что-нибудь")
	}

	return s.store.Repositories().Posts.Create(ctx, types.Post{
		UserID:   authorID,
		Content:  content,
		ImageURL: imageURL,
	})
}
