package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an account in the system.
// It contains identity, profile, privacy and role metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID uuid.UUID `json:"id" db:"id"`

	// Username is the unique, lower-cased login handle chosen at registration.
	Username string `json:"username" db:"username"`

	// Email is the user's unique, lower-cased email address.
	// It is only present in responses addressed to the user themselves.
	Email string `json:"email,omitempty" db:"email"`

	// DisplayName is the name shown next to the user's content.
	// It defaults to the username at registration.
	DisplayName string `json:"display_name" db:"display_name"`

	// Bio is a free-form profile description.
	Bio string `json:"bio" db:"bio"`

	// AvatarURL is the public URL of the user's avatar image, if any.
	AvatarURL string `json:"avatar_url" db:"avatar_url"`

	// IsPrivate hides the user's posts from everyone but the user.
	IsPrivate bool `json:"is_private" db:"is_private"`

	// IsVerified is set permanently once a verification request is approved.
	IsVerified bool `json:"is_verified" db:"is_verified"`

	// IsAdmin grants access to the verification review workflow.
	IsAdmin bool `json:"is_admin" db:"is_admin"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is the compact public view of a user returned by search.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	IsVerified  bool      `json:"is_verified"`
	IsAdmin     bool      `json:"is_admin"`
}

// Profile is the public view of a user shown on their profile page.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	IsPrivate   bool      `json:"is_private"`
	IsVerified  bool      `json:"is_verified"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`

	// PostsCount is only computed when the viewer may see the posts.
	PostsCount *int `json:"posts_count,omitempty"`
}

// ProfileFromUser builds the public profile view of u.
func ProfileFromUser(u User) Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		IsPrivate:   u.IsPrivate,
		IsVerified:  u.IsVerified,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
}

// ProfileUpdate carries a partial profile update. A nil field is left
// untouched; a non-nil empty string is a valid new value.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	IsPrivate   *bool   `json:"is_private"`
	AvatarURL   *string `json:"avatar_url"`
}

// UnmarshalJSON reads is_private loosely: besides booleans it accepts numbers,
// strings, arrays and objects, which count as true unless zero or empty.
func (u *ProfileUpdate) UnmarshalJSON(data []byte) error {
	type plain ProfileUpdate
	var aux struct {
		plain
		IsPrivate json.RawMessage `json:"is_private"`
	}
	err := json.Unmarshal(data, &aux)
	*u = ProfileUpdate(aux.plain)
	u.IsPrivate = truthy(aux.IsPrivate)
	return err
}

func truthy(raw json.RawMessage) *bool {
	var value any
	if len(raw) == 0 || json.Unmarshal(raw, &value) != nil || value == nil {
		return nil
	}
	var b bool
	switch v := value.(type) {
	case bool:
		b = v
	case float64:
		b = v != 0
	case string:
		b = v != ""
	case []any:
		b = len(v) > 0
	case map[string]any:
		b = len(v) > 0
	}
	return &b
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.DisplayName == nil && u.Bio == nil && u.IsPrivate == nil && u.AvatarURL == nil
}
