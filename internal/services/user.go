package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/internal/store"
	"github.com/online-social/apiserver/types"
)

const (
	profilePostsLimit = 50
	searchLimit       = 20
)

// UserService encapsulates profile and search use-cases.
type UserService struct {
	store Store
}

func NewUserService(store Store) *UserService {
	return &UserService{store: store}
}

// ProfilePage is a profile together with the posts the viewer may see.
type ProfilePage struct {
	Profile         types.Profile    `json:"profile"`
	Posts           []types.PostView `json:"posts"`
	IsPrivateHidden bool             `json:"is_private_hidden,omitempty"`
}

// Profile loads the profile of username as seen by viewer. A nil viewer is
// anonymous. Posts of a private user are hidden from everyone but the owner.
func (s *UserService) Profile(ctx context.Context, username string, viewer *types.User) (ProfilePage, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return ProfilePage{}, invalid("username обязателен")
	}

	repos := s.store.Repositories()
	user, err := repos.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ProfilePage{}, ErrUserNotFound
		}
		return ProfilePage{}, err
	}

	page := ProfilePage{Profile: types.ProfileFromUser(user)}
	isOwner := viewer != nil && viewer.ID == user.ID
	if user.IsPrivate && !isOwner {
		page.Posts = []types.PostView{}
		page.IsPrivateHidden = true
		return page, nil
	}

	var viewerID uuid.NullUUID
	if viewer != nil {
		viewerID = uuid.NullUUID{UUID: viewer.ID, Valid: true}
	}
	page.Posts, err = repos.Posts.ListByUser(ctx, user.ID, viewerID, profilePostsLimit)
	if err != nil {
		return ProfilePage{}, err
	}
	count, err := repos.Posts.CountByUser(ctx, user.ID)
	if err != nil {
		return ProfilePage{}, err
	}
	page.Profile.PostsCount = &count
	return page, nil
}

// UpdateProfile applies update to the user's own profile. Absent fields are
// left untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, update types.ProfileUpdate) error {
	if update.Empty() {
		return nil
	}
	err := s.store.Repositories().Users.UpdateProfile(ctx, userID, update)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// Search matches q case-insensitively against usernames and display names.
func (s *UserService) Search(ctx context.Context, q string) ([]types.UserSummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []types.UserSummary{}, nil
	}
	return s.store.Repositories().Users.Search(ctx, q, searchLimit)
}
