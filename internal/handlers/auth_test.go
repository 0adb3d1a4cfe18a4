package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/types"
	"go.uber.org/zap"
)

type stubAuthenticator struct {
	user types.User
	err  error
}

func (s stubAuthenticator) Authenticate(context.Context, string) (types.User, types.Session, error) {
	if s.err != nil {
		return types.User{}, types.Session{}, s.err
	}
	return s.user, types.Session{ID: uuid.New(), UserID: s.user.ID}, nil
}

func identityHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"user": ""})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user": user.Username})
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestRequireAuth(t *testing.T) {
	alice := types.User{ID: uuid.New(), Username: "alice"}
	ok := RequireAuth(stubAuthenticator{user: alice}, zap.NewNop())(http.HandlerFunc(identityHandler))
	denied := RequireAuth(stubAuthenticator{err: services.ErrUnauthorized}, zap.NewNop())(http.HandlerFunc(identityHandler))
	broken := RequireAuth(stubAuthenticator{err: errors.New("redis down")}, zap.NewNop())(http.HandlerFunc(identityHandler))

	if rec := serve(ok, "token"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := serve(ok, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := serve(denied, "token"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for rejected token, got %d", rec.Code)
	}
	if rec := serve(broken, "token"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for backend failure, got %d", rec.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	alice := types.User{ID: uuid.New(), Username: "alice"}
	known := OptionalAuth(stubAuthenticator{user: alice}, zap.NewNop())(http.HandlerFunc(identityHandler))
	rejected := OptionalAuth(stubAuthenticator{err: services.ErrUnauthorized}, zap.NewNop())(http.HandlerFunc(identityHandler))

	if rec := serve(known, "token"); rec.Body.String() != "{\"user\":\"alice\"}\n" {
		t.Fatalf("expected alice, got %s", rec.Body.String())
	}
	if rec := serve(known, ""); rec.Body.String() != "{\"user\":\"\"}\n" {
		t.Fatalf("expected anonymous, got %s", rec.Body.String())
	}
	if rec := serve(rejected, "stale"); rec.Code != http.StatusOK || rec.Body.String() != "{\"user\":\"\"}\n" {
		t.Fatalf("expected anonymous fallthrough, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	member := types.User{ID: uuid.New(), Username: "bob"}
	admin := types.User{ID: uuid.New(), Username: "root", IsAdmin: true}

	cases := []struct {
		name   string
		auth   stubAuthenticator
		token  string
		status int
	}{
		{"anonymous", stubAuthenticator{user: admin}, "", http.StatusForbidden},
		{"invalid token", stubAuthenticator{err: services.ErrUnauthorized}, "stale", http.StatusForbidden},
		{"member", stubAuthenticator{user: member}, "token", http.StatusForbidden},
		{"backend failure", stubAuthenticator{err: errors.New("redis down")}, "token", http.StatusInternalServerError},
		{"admin", stubAuthenticator{user: admin}, "token", http.StatusOK},
	}
	for _, tc := range cases {
		rec := serve(RequireAdmin(tc.auth, zap.NewNop())(http.HandlerFunc(identityHandler)), tc.token)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
		if tc.status == http.StatusForbidden && !strings.Contains(rec.Body.String(), "Доступ запрещен") {
			t.Fatalf("%s: unexpected body %s", tc.name, rec.Body.String())
		}
	}
}
