package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/online-social/apiserver/internal/services"
)

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name    string
		input   services.RegisterInput
		message string
	}{
		{"missing username", services.RegisterInput{Email: "a@example.com", Password: "secret123"}, "Все поля обязательны"},
		{"missing email", services.RegisterInput{Username: "alice", Password: "secret123"}, "Все поля обязательны"},
		{"missing password", services.RegisterInput{Username: "alice", Email: "a@example.com"}, "Все поля обязательны"},
		{"blank username", services.RegisterInput{Username: "   ", Email: "a@example.com", Password: "secret123"}, "Все поля обязательны"},
		{"short username", services.RegisterInput{Username: "al", Email: "a@example.com", Password: "secret123"}, "Username от 3 до 50 символов"},
		{"long username", services.RegisterInput{Username: strings.Repeat("a", 51), Email: "a@example.com", Password: "secret123"}, "Username от 3 до 50 символов"},
		{"short password", services.RegisterInput{Username: "alice", Email: "a@example.com", Password: "12345"}, "Пароль минимум 6 символов"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.auth.Register(context.Background(), tc.input)
			if got := validationMessage(err); got != tc.message {
				t.Fatalf("expected %q, got %v", tc.message, err)
			}
		})
	}
}

func TestRegisterNormalizesAndBoundaries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, services.RegisterInput{
		Username: "  Alice ",
		Email:    " Alice@Example.COM ",
		Password: "123456",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Username != "alice" || res.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized identity, got %q %q", res.User.Username, res.User.Email)
	}
	if res.User.DisplayName != "alice" {
		t.Fatalf("expected display name to default to username, got %q", res.User.DisplayName)
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}

	if _, err := env.auth.Register(ctx, services.RegisterInput{
		Username: strings.Repeat("b", 50),
		Email:    "b@example.com",
		Password: "secret123",
	}); err != nil {
		t.Fatalf("50 character username should be accepted: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	_, err := env.auth.Register(ctx, services.RegisterInput{
		Username: "alice2",
		Email:    "ALICE@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, services.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for duplicate email, got %v", err)
	}

	_, err = env.auth.Register(ctx, services.RegisterInput{
		Username: "Alice",
		Email:    "other@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, services.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for duplicate username, got %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	_, wrongPassword := env.auth.Login(ctx, services.LoginInput{Email: "alice@example.com", Password: "wrong-password"})
	_, unknownEmail := env.auth.Login(ctx, services.LoginInput{Email: "nobody@example.com", Password: "secret123"})

	if !errors.Is(wrongPassword, services.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, services.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownEmail)
	}

	_, err := env.auth.Login(ctx, services.LoginInput{Email: "alice@example.com"})
	if got := validationMessage(err); got != "Заполните все поля" {
		t.Fatalf("expected missing fields error, got %v", err)
	}
}

func TestLongPasswordsAreFullySignificant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	password := strings.Repeat("p", 100)
	if _, err := env.auth.Register(ctx, services.RegisterInput{Username: "alice", Email: "alice@example.com", Password: password}); err != nil {
		t.Fatalf("register with long password: %v", err)
	}
	if _, err := env.auth.Login(ctx, services.LoginInput{Email: "alice@example.com", Password: password}); err != nil {
		t.Fatalf("login with long password: %v", err)
	}

	// Same first 72 bytes, different tail.
	_, err := env.auth.Login(ctx, services.LoginInput{Email: "alice@example.com", Password: strings.Repeat("p", 99) + "q"})
	if !errors.Is(err, services.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for a different tail, got %v", err)
	}
}

func TestLoginOpensIndependentSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	first, err := env.auth.Login(ctx, services.LoginInput{Email: "ALICE@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := env.auth.Login(ctx, services.LoginInput{Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	for _, token := range []string{first.Token, second.Token} {
		user, _, err := env.auth.Authenticate(ctx, token)
		if err != nil {
			t.Fatalf("authenticate: %v", err)
		}
		if user.ID != first.User.ID {
			t.Fatalf("expected user %s, got %s", first.User.ID, user.ID)
		}
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, services.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	other := services.NewAuthService(env.store, env.sessions, "another-secret", time.Hour)
	if _, _, err := other.Authenticate(ctx, res.Token); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected token signed with another secret to be rejected, got %v", err)
	}

	for _, token := range []string{"", "garbage", res.Token + "x"} {
		if _, _, err := env.auth.Authenticate(ctx, token); !errors.Is(err, services.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for %q, got %v", token, err)
		}
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, services.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, session, err := env.auth.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := env.auth.Logout(ctx, session.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := env.auth.Authenticate(ctx, res.Token); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected revoked session to be rejected, got %v", err)
	}
	if err := env.auth.Logout(ctx, session.ID); err != nil {
		t.Fatalf("second logout should be a no-op, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	now := time.Now()
	services.SetAuthClock(env.auth, func() time.Time { return now })

	res, err := env.auth.Register(ctx, services.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	now = now.Add(59 * time.Minute)
	if _, _, err := env.auth.Authenticate(ctx, res.Token); err != nil {
		t.Fatalf("session should still be valid: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, _, err := env.auth.Authenticate(ctx, res.Token); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
}
