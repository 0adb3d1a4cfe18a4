package types

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reply to a post. ParentID links a reply to another comment on
// the same post; the hierarchy is reconstructed by clients from the flat list.
type Comment struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	PostID    uuid.UUID     `json:"post_id" db:"post_id"`
	UserID    uuid.UUID     `json:"user_id" db:"user_id"`
	Content   string        `json:"content" db:"content"`
	ParentID  uuid.NullUUID `json:"parent_id" db:"parent_id"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// CommentView is a comment annotated with its author's display fields.
type CommentView struct {
	Comment

	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	IsVerified  bool   `json:"is_verified"`
}
