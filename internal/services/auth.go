package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/online-social/apiserver/internal/store"
	"github.com/online-social/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultSessionTTL = 30 * 24 * time.Hour

	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
)

// AuthService registers users, logs them in and resolves session tokens.
type AuthService struct {
	store    Store
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(store Store, sessions SessionStore, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		store:    store,
		sessions: sessions,
		secret:   []byte(jwtSecret),
		ttl:      ttl,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// Register creates an account and opens its first session.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return AuthResult{}, invalid("Все поля обязательны")
	}
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return AuthResult{}, invalid("Username от 3 до 50 символов")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return AuthResult{}, invalid("Пароль минимум 6 символов")
	}

	hashed, err := bcrypt.GenerateFromPassword(passwordDigest(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	var user types.User
	err = s.store.WithTx(ctx, func(repos Repositories) error {
		exists, err := repos.Users.ExistsByUsernameOrEmail(ctx, username, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrUserExists
		}

		user, err = repos.Users.Create(ctx, types.User{
			Username:     username,
			Email:        email,
			DisplayName:  username,
			PasswordHash: string(hashed),
		})
		if errors.Is(err, store.ErrConflict) {
			return ErrUserExists
		}
		return err
	})
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.startSession(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and opens a new session. Existing sessions of
// the user stay valid.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return AuthResult{}, invalid("Заполните все поля")
	}

	user, err := s.store.Repositories().Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordDigest(in.Password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.startSession(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to its user and session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (types.User, types.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return types.User{}, types.Session{}, ErrUnauthorized
	}

	claims, err := parseToken(token, s.secret, s.now)
	if err != nil {
		return types.User{}, types.Session{}, ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return types.User{}, types.Session{}, ErrUnauthorized
	}
	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return types.User{}, types.Session{}, ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, types.Session{}, ErrUnauthorized
		}
		return types.User{}, types.Session{}, err
	}
	if session.UserID != userID || !session.Active(s.now()) {
		return types.User{}, types.Session{}, ErrUnauthorized
	}

	user, err := s.store.Repositories().Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, types.Session{}, ErrUnauthorized
		}
		return types.User{}, types.Session{}, err
	}
	return user, session, nil
}

// Logout revokes a session. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) startSession(ctx context.Context, userID uuid.UUID) (string, error) {
	now := s.now()
	session := types.Session{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	token, err := issueToken(session, s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// passwordDigest condenses a password of any length below bcrypt's 72 byte
// input limit.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func issueToken(session types.Session, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID.String(),
		Subject:   session.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseToken(tokenString string, secret []byte, now func() time.Time) (jwt.RegisteredClaims, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(now), jwt.WithExpirationRequired())
	if err != nil {
		return jwt.RegisteredClaims{}, err
	}
	if !token.Valid {
		return jwt.RegisteredClaims{}, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" || strings.TrimSpace(claims.ID) == "" {
		return jwt.RegisteredClaims{}, errors.New("missing claims")
	}
	return claims, nil
}
