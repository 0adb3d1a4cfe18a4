package store

import (
	"context"

	"github.com/google/uuid"
)

// LikeRepository handles persistence for likes.
type LikeRepository struct {
	db DBTX
}

func NewLikeRepository(db DBTX) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle flips the like state of (postID, userID) in one statement and
// returns the new state. A missing row is created liked.
func (r *LikeRepository) Toggle(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	const query = `
		INSERT INTO likes (id, post_id, user_id, liked)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (post_id, user_id)
		DO UPDATE SET liked = NOT likes.liked, updated_at = NOW()
		RETURNING liked`
	var liked bool
	if err := r.db.QueryRowContext(ctx, query, uuid.New(), postID, userID).Scan(&liked); err != nil {
		return false, translate(err)
	}
	return liked, nil
}

// Count returns the number of users currently liking the post.
func (r *LikeRepository) Count(ctx context.Context, postID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM likes WHERE post_id = $1 AND liked`
	var count int
	if err := r.db.QueryRowContext(ctx, query, postID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
