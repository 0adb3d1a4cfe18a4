package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/types"
)

const notificationListLimit = 50

// NotificationPublisher fans a committed notification out to external
// consumers. Implementations handle their own delivery failures.
type NotificationPublisher interface {
	Publish(ctx context.Context, n types.Notification)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, types.Notification) {}

func publisherOrNoop(p NotificationPublisher) NotificationPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func publishAll(ctx context.Context, p NotificationPublisher, notifications []types.Notification) {
	for _, n := range notifications {
		p.Publish(ctx, n)
	}
}

// NotificationService encapsulates notification use-cases.
type NotificationService struct {
	store Store
}

func NewNotificationService(store Store) *NotificationService {
	return &NotificationService{store: store}
}

// List returns the newest notifications addressed to userID.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]types.NotificationView, error) {
	return s.store.Repositories().Notifications.ListForUser(ctx, userID, notificationListLimit)
}

// MarkAllRead flags every notification of userID as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.store.Repositories().Notifications.MarkAllRead(ctx, userID)
	return err
}
