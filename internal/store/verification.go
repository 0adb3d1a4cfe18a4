package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/types"
)

// VerificationRepository handles persistence for verification requests.
type VerificationRepository struct {
	db DBTX
}

func NewVerificationRepository(db DBTX) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Create inserts a pending request. It returns ErrConflict when the user
// already has a pending request.
func (r *VerificationRepository) Create(ctx context.Context, req types.VerificationRequest) (types.VerificationRequest, error) {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.Status = types.VerificationPending

	const query = `
		INSERT INTO verification_requests (id, user_id, reason, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	if err := r.db.QueryRowContext(ctx, query, req.ID, req.UserID, req.Reason, string(req.Status)).Scan(&req.CreatedAt); err != nil {
		return types.VerificationRequest{}, translate(err)
	}
	return req, nil
}

// ListPending returns the pending queue, oldest first.
func (r *VerificationRepository) ListPending(ctx context.Context) ([]types.VerificationRequestView, error) {
	const query = `
		SELECT vr.id, vr.user_id, vr.reason, vr.status, vr.created_at,
		       u.username, u.display_name, u.avatar_url
		FROM verification_requests vr
		JOIN users u ON u.id = vr.user_id
		WHERE vr.status = 'pending'
		ORDER BY vr.created_at ASC, vr.id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]types.VerificationRequestView, 0)
	for rows.Next() {
		var req types.VerificationRequestView
		var status string
		if err := rows.Scan(
			&req.ID,
			&req.UserID,
			&req.Reason,
			&status,
			&req.CreatedAt,
			&req.Username,
			&req.DisplayName,
			&req.AvatarURL,
		); err != nil {
			return nil, err
		}
		req.Status = types.VerificationStatus(status)
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// Review moves a pending request to status. Only one concurrent reviewer can
// win; the others observe ErrNotFound.
func (r *VerificationRepository) Review(ctx context.Context, id uuid.UUID, status types.VerificationStatus, reviewerID uuid.UUID) (types.VerificationRequest, error) {
	const query = `
		UPDATE verification_requests
		SET status = $1,
			reviewed_by = $2,
			reviewed_at = NOW()
		WHERE id = $3 AND status = 'pending'
		RETURNING id, user_id, reason, status, reviewed_by, reviewed_at, created_at`
	var req types.VerificationRequest
	var newStatus string
	var reviewedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, string(status), reviewerID, id).Scan(
		&req.ID,
		&req.UserID,
		&req.Reason,
		&newStatus,
		&req.ReviewedBy,
		&reviewedAt,
		&req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.VerificationRequest{}, ErrNotFound
		}
		return types.VerificationRequest{}, err
	}
	req.Status = types.VerificationStatus(newStatus)
	if reviewedAt.Valid {
		req.ReviewedAt = &reviewedAt.Time
	}
	return req, nil
}
