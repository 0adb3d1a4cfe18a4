package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/internal/store"
	"github.com/online-social/apiserver/types"
)

// LikeService toggles likes and notifies post owners.
type LikeService struct {
	store     Store
	publisher NotificationPublisher
}

func NewLikeService(store Store, publisher NotificationPublisher) *LikeService {
	return &LikeService{store: store, publisher: publisherOrNoop(publisher)}
}

// Toggle flips actor's like on postID. The post owner is notified each time
// the like turns on, unless the owner is the actor.
func (s *LikeService) Toggle(ctx context.Context, actor types.User, postID uuid.UUID) (types.LikeState, error) {
	var (
		state   types.LikeState
		created []types.Notification
	)
	err := s.store.WithTx(ctx, func(repos Repositories) error {
		post, err := repos.Posts.Get(ctx, postID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		liked, err := repos.Likes.Toggle(ctx, postID, actor.ID)
		if err != nil {
			return fmt.Errorf("toggle like: %w", err)
		}

		if liked && post.UserID != actor.ID {
			n, err := repos.Notifications.Create(ctx, types.Notification{
				UserID:     post.UserID,
				Type:       types.NotificationLike,
				FromUserID: actor.ID,
				PostID:     uuid.NullUUID{UUID: postID, Valid: true},
				Message:    fmt.Sprintf("%s лайкнул ваш пост", actor.DisplayName),
			})
			if err != nil {
				return fmt.Errorf("create notification: %w", err)
			}
			created = append(created, n)
		}

		count, err := repos.Likes.Count(ctx, postID)
		if err != nil {
			return err
		}
		state = types.LikeState{Liked: liked, Count: count}
		return nil
	})
	if err != nil {
		return types.LikeState{}, err
	}

	publishAll(ctx, s.publisher, created)
	return state, nil
}
