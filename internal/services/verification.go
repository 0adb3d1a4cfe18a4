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

const (
	verificationApprovedMessage = "Ваша заявка на верификацию одобрена!"
	verificationRejectedMessage = "Ваша заявка на верификацию отклонена"
)

// VerificationService runs the verified-badge workflow.
type VerificationService struct {
	store     Store
	publisher NotificationPublisher
}

func NewVerificationService(store Store, publisher NotificationPublisher) *VerificationService {
	return &VerificationService{store: store, publisher: publisherOrNoop(publisher)}
}

// Submit files a verification request for actor. Only one request per user
// may be pending at a time.
func (s *VerificationService) Submit(ctx context.Context, actor types.User, reason string) (types.VerificationRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return types.VerificationRequest{}, invalid("Укажите причину")
	}

	req, err := s.store.Repositories().Verifications.Create(ctx, types.VerificationRequest{
		UserID: actor.ID,
		Reason: reason,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.VerificationRequest{}, ErrPendingRequestExists
		}
		return types.VerificationRequest{}, err
	}
	return req, nil
}

// ListPending returns the pending queue, oldest first.
func (s *VerificationService) ListPending(ctx context.Context, admin types.User) ([]types.VerificationRequestView, error) {
	if !admin.IsAdmin {
		return nil, ErrForbidden
	}
	return s.store.Repositories().Verifications.ListPending(ctx)
}

// Review approves or rejects a pending request and notifies the applicant.
func (s *VerificationService) Review(ctx context.Context, admin types.User, requestID uuid.UUID, action types.ReviewAction) error {
	if !admin.IsAdmin {
		return ErrForbidden
	}
	status, ok := action.Status()
	if !ok || requestID == uuid.Nil {
		return invalid("Неверные параметры")
	}

	var n types.Notification
	err := s.store.WithTx(ctx, func(repos Repositories) error {
		req, err := repos.Verifications.Review(ctx, requestID, status, admin.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		message := verificationRejectedMessage
		if status == types.VerificationApproved {
			if err := repos.Users.SetVerified(ctx, req.UserID); err != nil {
				return fmt.Errorf("set verified: %w", err)
			}
			message = verificationApprovedMessage
		}

		n, err = repos.Notifications.Create(ctx, types.Notification{
			UserID:     req.UserID,
			Type:       types.NotificationVerification,
			FromUserID: admin.ID,
			Message:    message,
		})
		if err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(ctx, n)
	return nil
}
