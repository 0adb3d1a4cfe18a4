package types

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the state of a verification request.
// Requests start pending and move once to approved or rejected.
type VerificationStatus string

// Supported verification statuses.
const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// ReviewAction is an admin decision on a pending verification request.
type ReviewAction string

// Supported review actions.
const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
)

// Status returns the terminal status the action moves a request to.
func (a ReviewAction) Status() (VerificationStatus, bool) {
	switch a {
	case ReviewApprove:
		return VerificationApproved, true
	case ReviewReject:
		return VerificationRejected, true
	default:
		return "", false
	}
}

// VerificationRequest is a user's application for the verified badge.
type VerificationRequest struct {
	// ID is the unique identifier of the request.
	ID uuid.UUID `json:"id" db:"id"`

	// UserID identifies the applicant.
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	// Reason is the applicant's justification.
	Reason string `json:"reason" db:"reason"`

	// Status is the current state of the request.
	Status VerificationStatus `json:"status" db:"status"`

	// ReviewedBy identifies the admin who reviewed the request.
	ReviewedBy uuid.NullUUID `json:"reviewed_by" db:"reviewed_by"`

	// ReviewedAt is the timestamp of the review, if any.
	ReviewedAt *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`

	// CreatedAt is the timestamp when the request was submitted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// VerificationRequestView is a request annotated with the applicant's
// display fields, as shown in the admin queue.
type VerificationRequestView struct {
	VerificationRequest

	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}
