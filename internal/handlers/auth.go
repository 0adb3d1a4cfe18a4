package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/types"
	"go.uber.org/zap"
)

// Authenticator resolves bearer tokens to users.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (types.User, types.Session, error)
}

// AuthHandler provides registration, login and session endpoints.
type AuthHandler struct {
	authService *services.AuthService
	logger      *zap.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, authService *services.AuthService, logger *zap.Logger) {
	handler := NewAuthHandler(authService, logger)
	requireAuth := RequireAuth(authService, logger)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(requireAuth).Get("/me", handler.Me)
	r.With(requireAuth).Post("/logout", handler.Logout)
}

// RequireAuth rejects requests without a valid session and injects the
// caller into the request context.
func RequireAuth(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Не авторизован")
				return
			}

			user, session, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeServiceError(w, r, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), user, session)))
		})
	}
}

// OptionalAuth identifies the caller when a valid token is present. Missing
// or invalid tokens fall through as anonymous requests.
func OptionalAuth(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, session, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, services.ErrUnauthorized) {
					next.ServeHTTP(w, r)
					return
				}
				writeServiceError(w, r, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), user, session)))
		})
	}
}

// RequireAdmin admits only administrators. Missing or invalid tokens are
// answered like non-admin callers, with 403.
func RequireAdmin(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusForbidden, "Доступ запрещен")
				return
			}

			user, session, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, services.ErrUnauthorized) {
					writeError(w, http.StatusForbidden, "Доступ запрещен")
					return
				}
				writeServiceError(w, r, logger, err)
				return
			}
			if !user.IsAdmin {
				writeError(w, http.StatusForbidden, "Доступ запрещен")
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), user, session)))
		})
	}
}

// Register creates a new account and returns a session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[services.RegisterInput](w, r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	res, err := h.authService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[services.LoginInput](w, r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	res, err := h.authService.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Не авторизован")
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{User: user})
}

// Logout ends the session the request was made with.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Не авторизован")
		return
	}
	if err := h.authService.Logout(r.Context(), session.ID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

type MeResponse struct {
	User types.User `json:"user"`
}

// bearerToken reads the token from X-Authorization, falling back to
// Authorization. The "Bearer " prefix is optional.
func bearerToken(r *http.Request) string {
	for _, header := range []string{"X-Authorization", "Authorization"} {
		value := strings.TrimSpace(r.Header.Get(header))
		if value == "" {
			continue
		}
		if len(value) > len("Bearer ") && strings.EqualFold(value[:len("Bearer ")], "Bearer ") {
			value = strings.TrimSpace(value[len("Bearer "):])
		}
		return value
	}
	return ""
}
