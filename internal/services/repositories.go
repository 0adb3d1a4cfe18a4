package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/internal/db"
	"github.com/online-social/apiserver/internal/store"
	"github.com/online-social/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update types.ProfileUpdate) error
	SetVerified(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q string, limit int) ([]types.UserSummary, error)
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Get(ctx context.Context, id uuid.UUID) (types.Post, error)
	ListFeed(ctx context.Context, viewer uuid.NullUUID, offset, limit int) ([]types.PostView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, viewer uuid.NullUUID, limit int) ([]types.PostView, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	Toggle(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	Count(ctx context.Context, postID uuid.UUID) (int, error)
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	Get(ctx context.Context, id uuid.UUID) (types.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]types.CommentView, error)
}

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n types.Notification) (types.Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]types.NotificationView, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// VerificationRepository defines persistence operations for verification requests.
type VerificationRepository interface {
	Create(ctx context.Context, req types.VerificationRequest) (types.VerificationRequest, error)
	ListPending(ctx context.Context) ([]types.VerificationRequestView, error)
	Review(ctx context.Context, id uuid.UUID, status types.VerificationStatus, reviewerID uuid.UUID) (types.VerificationRequest, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, session types.Session) error
	Get(ctx context.Context, id uuid.UUID) (types.Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Users         UserRepository
	Posts         PostRepository
	Likes         LikeRepository
	Comments      CommentRepository
	Notifications NotificationRepository
	Verifications VerificationRepository
}

// Store hands out repositories, either standalone or inside a transaction.
type Store interface {
	Repositories() Repositories
	WithTx(ctx context.Context, fn func(repos Repositories) error) error
}

// SQLStore is the database/sql backed Store.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(conn *sql.DB) *SQLStore {
	return &SQLStore{db: conn}
}

func (s *SQLStore) Repositories() Repositories {
	return repositoriesFor(s.db)
}

// WithTx runs fn with repositories bound to a single transaction, committing
// on success and rolling back on any error.
func (s *SQLStore) WithTx(ctx context.Context, fn func(repos Repositories) error) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(repositoriesFor(tx))
	})
}

func repositoriesFor(conn store.DBTX) Repositories {
	return Repositories{
		Users:         store.NewUserRepository(conn),
		Posts:         store.NewPostRepository(conn),
		Likes:         store.NewLikeRepository(conn),
		Comments:      store.NewCommentRepository(conn),
		Notifications: store.NewNotificationRepository(conn),
		Verifications: store.NewVerificationRepository(conn),
	}
}
