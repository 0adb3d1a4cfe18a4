package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/types"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}

	const query = `
		INSERT INTO comments (id, post_id, user_id, content, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		comment.ID,
		comment.PostID,
		comment.UserID,
		comment.Content,
		comment.ParentID,
	).Scan(&comment.CreatedAt); err != nil {
		return types.Comment{}, translate(err)
	}
	return comment, nil
}

func (r *CommentRepository) Get(ctx context.Context, id uuid.UUID) (types.Comment, error) {
	const query = `
		SELECT id, post_id, user_id, content, parent_id, created_at
		FROM comments
		WHERE id = $1`
	var comment types.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.UserID,
		&comment.Content,
		&comment.ParentID,
		&comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Comment{}, ErrNotFound
		}
		return types.Comment{}, err
	}
	return comment, nil
}

// ListByPost returns every comment on the post, oldest first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]types.CommentView, error) {
	const query = `
		SELECT c.id, c.post_id, c.user_id, c.content, c.parent_id, c.created_at,
		       u.username, u.display_name, u.avatar_url, u.is_verified
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]types.CommentView, 0)
	for rows.Next() {
		var comment types.CommentView
		if err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.UserID,
			&comment.Content,
			&comment.ParentID,
			&comment.CreatedAt,
			&comment.Username,
			&comment.DisplayName,
			&comment.AvatarURL,
			&comment.IsVerified,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
