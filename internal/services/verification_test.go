package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/types"
)

func newAdmin(t *testing.T, env *testEnv) types.User {
	t.Helper()
	admin := env.register(t, "admin")
	env.store.SetAdmin(admin.ID, true)
	admin.IsAdmin = true
	return admin
}

func TestVerificationApproveFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := newAdmin(t, env)
	alice := env.register(t, "alice")

	req, err := env.verification.Submit(ctx, alice, " famous ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if req.Status != types.VerificationPending || req.Reason != "famous" {
		t.Fatalf("unexpected request: %+v", req)
	}

	if _, err := env.verification.Submit(ctx, alice, "again"); !errors.Is(err, services.ErrPendingRequestExists) {
		t.Fatalf("expected ErrPendingRequestExists, got %v", err)
	}

	pending, err := env.verification.ListPending(ctx, admin)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != req.ID || pending[0].Username != "alice" {
		t.Fatalf("unexpected pending list: %+v", pending)
	}

	if err := env.verification.Review(ctx, admin, req.ID, types.ReviewApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}

	page, err := env.users.Profile(ctx, "alice", nil)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !page.Profile.IsVerified {
		t.Fatalf("expected alice to be verified")
	}

	notifications := env.store.Notifications(alice.ID)
	if len(notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifications))
	}
	n := notifications[0]
	if n.Type != types.NotificationVerification || n.FromUserID != admin.ID || n.Message != "Ваша заявка на верификацию одобрена!" {
		t.Fatalf("unexpected notification: %+v", n)
	}

	if err := env.verification.Review(ctx, admin, req.ID, types.ReviewReject); !errors.Is(err, services.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound for reviewed request, got %v", err)
	}

	if _, err := env.verification.Submit(ctx, alice, "once more"); err != nil {
		t.Fatalf("resubmission after review should be allowed: %v", err)
	}
}

func TestVerificationReject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := newAdmin(t, env)
	bob := env.register(t, "bob")

	req, err := env.verification.Submit(ctx, bob, "please")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := env.verification.Review(ctx, admin, req.ID, types.ReviewReject); err != nil {
		t.Fatalf("reject: %v", err)
	}

	page, err := env.users.Profile(ctx, "bob", nil)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if page.Profile.IsVerified {
		t.Fatalf("rejected user must not be verified")
	}
	notifications := env.store.Notifications(bob.ID)
	if len(notifications) != 1 || notifications[0].Message != "Ваша заявка на верификацию отклонена" {
		t.Fatalf("unexpected notifications: %+v", notifications)
	}
	if got := len(env.publisher.Published()); got != 1 {
		t.Fatalf("expected one published notification, got %d", got)
	}
}

func TestVerificationGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := newAdmin(t, env)
	alice := env.register(t, "alice")

	if _, err := env.verification.Submit(ctx, alice, "   "); validationMessage(err) != "Укажите причину" {
		t.Fatalf("expected reason validation, got %v", err)
	}

	req, err := env.verification.Submit(ctx, alice, "reason")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := env.verification.ListPending(ctx, alice); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for list, got %v", err)
	}
	if err := env.verification.Review(ctx, alice, req.ID, types.ReviewApprove); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for review, got %v", err)
	}
	if err := env.verification.Review(ctx, admin, req.ID, "promote"); validationMessage(err) != "Неверные параметры" {
		t.Fatalf("expected invalid action error, got %v", err)
	}
	if err := env.verification.Review(ctx, admin, uuid.New(), types.ReviewApprove); !errors.Is(err, services.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}
