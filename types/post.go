package types

import (
	"time"

	"github.com/google/uuid"
)

// Post is a piece of content published by a user. Posts are immutable once
// created.
type Post struct {
	// ID is the unique identifier of the post.
	ID uuid.UUID `json:"id" db:"id"`

	// UserID identifies the author of the post.
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	// Content is the text body of the post. It may be empty when ImageURL is set.
	Content string `json:"content" db:"content"`

	// ImageURL is the public URL of an attached image, if any.
	ImageURL string `json:"image_url" db:"image_url"`

	// CreatedAt is the timestamp when the post was published.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostView is a post annotated with its author's display fields, its
// engagement counters and whether the viewer has liked it.
type PostView struct {
	Post

	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	IsVerified  bool   `json:"is_verified"`

	LikesCount    int  `json:"likes_count"`
	CommentsCount int  `json:"comments_count"`
	Liked         bool `json:"liked"`
}

// Like records a user's like on a post. There is at most one like row per
// (post, user) pair; toggling flips Liked instead of inserting or deleting.
type Like struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PostID    uuid.UUID `json:"post_id" db:"post_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Liked     bool      `json:"liked" db:"liked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LikeState is the result of a like toggle.
type LikeState struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}
