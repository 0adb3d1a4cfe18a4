package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/types"
)

// postViewColumns selects a post with its author, counters and whether the
// viewer bound to $1 currently likes it. A NULL viewer never likes anything.
const postViewColumns = `
	p.id, p.user_id, p.content, p.image_url, p.created_at,
	u.username, u.display_name, u.avatar_url, u.is_verified,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id AND l.liked),
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
	EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = $1 AND l.liked)`

// PostRepository handles persistence for posts.
type PostRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}

	const query = `
		INSERT INTO posts (id, user_id, content, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	if err := r.db.QueryRowContext(ctx, query, post.ID, post.UserID, post.Content, post.ImageURL).Scan(&post.CreatedAt); err != nil {
		return types.Post{}, translate(err)
	}
	return post, nil
}

func (r *PostRepository) Get(ctx context.Context, id uuid.UUID) (types.Post, error) {
	const query = `
		SELECT id, user_id, content, image_url, created_at
		FROM posts
		WHERE id = $1`
	var post types.Post
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.UserID,
		&post.Content,
		&post.ImageURL,
		&post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

// ListFeed returns posts by public authors, newest first.
func (r *PostRepository) ListFeed(ctx context.Context, viewer uuid.NullUUID, offset, limit int) ([]types.PostView, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const query = `
		SELECT` + postViewColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE u.is_private = FALSE
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3`
	return r.listViews(ctx, query, limit, viewer, limit, offset)
}

// ListByUser returns the most recent posts of one author.
func (r *PostRepository) ListByUser(ctx context.Context, userID uuid.UUID, viewer uuid.NullUUID, limit int) ([]types.PostView, error) {
	if limit < 1 {
		limit = 50
	}

	const query = `
		SELECT` + postViewColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $2
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3`
	return r.listViews(ctx, query, limit, viewer, userID, limit)
}

func (r *PostRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM posts WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PostRepository) listViews(ctx context.Context, query string, capacity int, args ...any) ([]types.PostView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]types.PostView, 0, capacity)
	for rows.Next() {
		var post types.PostView
		if err := rows.Scan(
			&post.ID,
			&post.UserID,
			&post.Content,
			&post.ImageURL,
			&post.CreatedAt,
			&post.Username,
			&post.DisplayName,
			&post.AvatarURL,
			&post.IsVerified,
			&post.LikesCount,
			&post.CommentsCount,
			&post.Liked,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}
