package types

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies what caused a notification.
type NotificationType string

// Supported notification types.
const (
	NotificationLike         NotificationType = "like"
	NotificationComment      NotificationType = "comment"
	NotificationVerification NotificationType = "verification"
)

// Notification is a message addressed to a user, created as a side effect of
// likes, comments and verification reviews.
type Notification struct {
	// ID is the unique identifier of the notification.
	ID uuid.UUID `json:"id" db:"id"`

	// UserID identifies the recipient.
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	// Type describes the event that produced the notification.
	Type NotificationType `json:"type" db:"type"`

	// FromUserID identifies the user whose action produced the notification.
	// For verification reviews this is the reviewing admin.
	FromUserID uuid.UUID `json:"from_user_id" db:"from_user_id"`

	// PostID references the post involved, if any.
	PostID uuid.NullUUID `json:"post_id" db:"post_id"`

	// CommentID references the comment involved, if any.
	CommentID uuid.NullUUID `json:"comment_id" db:"comment_id"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// IsRead is set once the recipient marks their notifications as read.
	IsRead bool `json:"is_read" db:"is_read"`

	// CreatedAt is the timestamp when the notification was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NotificationView is a notification with the sender's display fields
// denormalized. The sender fields fall back to zero values when the sender
// cannot be resolved.
type NotificationView struct {
	Notification

	FromUsername    string `json:"from_username"`
	FromDisplayName string `json:"from_display_name"`
	FromAvatarURL   string `json:"from_avatar_url"`
	FromIsVerified  bool   `json:"from_is_verified"`
}
