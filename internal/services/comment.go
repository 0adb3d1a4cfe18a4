package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/internal/store"
	"github.com/online-social/apiserver/types"
)

// CommentService encapsulates comment use-cases.
type CommentService struct {
	store     Store
	publisher NotificationPublisher
}

func NewCommentService(store Store, publisher NotificationPublisher) *CommentService {
	return &CommentService{store: store, publisher: publisherOrNoop(publisher)}
}

type CreateCommentInput struct {
	PostID   uuid.UUID
	Content  string
	ParentID uuid.NullUUID
}

// List returns the comments of a post in creation order.
func (s *CommentService) List(ctx context.Context, postID uuid.UUID) ([]types.CommentView, error) {
	return s.store.Repositories().Comments.ListByPost(ctx, postID)
}

// Create adds a comment to a post. A reply must point at a comment of the
// same post.
func (s *CommentService) Create(ctx context.Context, actor types.User, in CreateCommentInput) (types.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if in.PostID == uuid.Nil || content == "" {
		return types.Comment{}, invalid("Заполните все поля")
	}

	var (
		comment types.Comment
		created []types.Notification
	)
	err := s.store.WithTx(ctx, func(repos Repositories) error {
		post, err := repos.Posts.Get(ctx, in.PostID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		if in.ParentID.Valid {
			parent, err := repos.Comments.Get(ctx, in.ParentID.UUID)
			if errors.Is(err, store.ErrNotFound) || (err == nil && parent.PostID != post.ID) {
				return ErrParentNotFound
			}
			if err != nil {
				return err
			}
		}

		comment, err = repos.Comments.Create(ctx, types.Comment{
			PostID:   post.ID,
			UserID:   actor.ID,
			Content:  content,
			ParentID: in.ParentID,
		})
		if err != nil {
			return fmt.Errorf("create comment: %w", err)
		}

		if post.UserID != actor.ID {
			n, err := repos.Notifications.Create(ctx, types.Notification{
				UserID:     post.UserID,
				Type:       types.NotificationComment,
				FromUserID: actor.ID,
				PostID:     uuid.NullUUID{UUID: post.ID, Valid: true},
				CommentID:  uuid.NullUUID{UUID: comment.ID, Valid: true},
				Message:    fmt.Sprintf("%s прокомментировал ваш пост", actor.DisplayName),
			})
			if err != nil {
				return fmt.Errorf("create notification: %w", err)
			}
			created = append(created, n)
		}
		return nil
	})
	if err != nil {
		return types.Comment{}, err
	}

	publishAll(ctx, s.publisher, created)
	return comment, nil
}
