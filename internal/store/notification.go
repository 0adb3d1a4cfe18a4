package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/types"
)

// NotificationRepository handles persistence for notifications.
type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n types.Notification) (types.Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	const query = `
		INSERT INTO notifications (id, user_id, type, from_user_id, post_id, comment_id, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING is_read, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		n.ID,
		n.UserID,
		string(n.Type),
		n.FromUserID,
		n.PostID,
		n.CommentID,
		n.Message,
	).Scan(&n.IsRead, &n.CreatedAt); err != nil {
		return types.Notification{}, translate(err)
	}
	return n, nil
}

// ListForUser returns the newest notifications addressed to userID. Sender
// fields default to empty values when the sender no longer resolves.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]types.NotificationView, error) {
	if limit < 1 {
		limit = 50
	}

	const query = `
		SELECT n.id, n.user_id, n.type, n.from_user_id, n.post_id, n.comment_id, n.message, n.is_read, n.created_at,
		       COALESCE(u.username, ''), COALESCE(u.display_name, ''), COALESCE(u.avatar_url, ''), COALESCE(u.is_verified, FALSE)
		FROM notifications n
		LEFT JOIN users u ON u.id = n.from_user_id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]types.NotificationView, 0, limit)
	for rows.Next() {
		var n types.NotificationView
		var kind string
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&kind,
			&n.FromUserID,
			&n.PostID,
			&n.CommentID,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
			&n.FromUsername,
			&n.FromDisplayName,
			&n.FromAvatarURL,
			&n.FromIsVerified,
		); err != nil {
			return nil, err
		}
		n.Type = types.NotificationType(kind)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAllRead flags every notification of userID as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
