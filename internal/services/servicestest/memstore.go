// Package servicestest provides in-memory implementations of the services
// collaborators for use in tests.
package servicestest

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/internal/store"
	"github.com/online-social/apiserver/types"
)

type likeKey struct {
	postID uuid.UUID
	userID uuid.UUID
}

type state struct {
	users         map[uuid.UUID]types.User
	posts         map[uuid.UUID]types.Post
	likes         map[likeKey]bool
	comments      map[uuid.UUID]types.Comment
	notifications []types.Notification
	verifications map[uuid.UUID]types.VerificationRequest
}

func (s state) clone() state {
	c := state{
		users:         make(map[uuid.UUID]types.User, len(s.users)),
		posts:         make(map[uuid.UUID]types.Post, len(s.posts)),
		likes:         make(map[likeKey]bool, len(s.likes)),
		comments:      make(map[uuid.UUID]types.Comment, len(s.comments)),
		notifications: append([]types.Notification(nil), s.notifications...),
		verifications: make(map[uuid.UUID]types.VerificationRequest, len(s.verifications)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.posts {
		c.posts[k] = v
	}
	for k, v := range s.likes {
		c.likes[k] = v
	}
	for k, v := range s.comments {
		c.comments[k] = v
	}
	for k, v := range s.verifications {
		c.verifications[k] = v
	}
	return c
}

// Store is an in-memory services.Store. Transactions are serialized and
// rolled back on error.
type Store struct {
	mu    sync.Mutex
	state state
	clock time.Time
}

var _ services.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		state: state{
			users:         map[uuid.UUID]types.User{},
			posts:         map[uuid.UUID]types.Post{},
			likes:         map[likeKey]bool{},
			comments:      map[uuid.UUID]types.Comment{},
			verifications: map[uuid.UUID]types.VerificationRequest{},
		},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *Store) Repositories() services.Repositories {
	return s.repositories(&lockedTx{store: s})
}

func (s *Store) WithTx(ctx context.Context, fn func(repos services.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(s.repositories(&tx{store: s})); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// SetAdmin grants or removes the admin role. There is no API for it.
func (s *Store) SetAdmin(id uuid.UUID, admin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.state.users[id]
	u.IsAdmin = admin
	s.state.users[id] = u
}

// Notifications returns every stored notification addressed to userID.
func (s *Store) Notifications(userID uuid.UUID) []types.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Notification
	for _, n := range s.state.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// runner executes a repository call against the store state, taking the lock
// when the call happens outside of a transaction.
type runner interface {
	run(fn func(st *state, now func() time.Time))
}

type tx struct{ store *Store }

func (t *tx) run(fn func(st *state, now func() time.Time)) {
	fn(&t.store.state, t.store.tick)
}

type lockedTx struct{ store *Store }

func (t *lockedTx) run(fn func(st *state, now func() time.Time)) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	fn(&t.store.state, t.store.tick)
}

// tick advances the fake clock so creation order is strict.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) repositories(r runner) services.Repositories {
	return services.Repositories{
		Users:         userRepo{r},
		Posts:         postRepo{r},
		Likes:         likeRepo{r},
		Comments:      commentRepo{r},
		Notifications: notificationRepo{r},
		Verifications: verificationRepo{r},
	}
}

type userRepo struct{ r runner }

func (u userRepo) find(match func(types.User) bool) (types.User, error) {
	var (
		found types.User
		ok    bool
	)
	u.r.run(func(st *state, _ func() time.Time) {
		for _, user := range st.users {
			if match(user) {
				found, ok = user, true
				return
			}
		}
	})
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return found, nil
}

func (u userRepo) GetByID(_ context.Context, id uuid.UUID) (types.User, error) {
	return u.find(func(user types.User) bool { return user.ID == id })
}

func (u userRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	return u.find(func(user types.User) bool { return user.Username == username })
}

func (u userRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	return u.find(func(user types.User) bool { return user.Email == email })
}

func (u userRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	_, err := u.find(func(user types.User) bool { return user.Username == username || user.Email == email })
	return err == nil, nil
}

func (u userRepo) Create(_ context.Context, user types.User) (types.User, error) {
	var err error
	u.r.run(func(st *state, now func() time.Time) {
		for _, existing := range st.users {
			if existing.Username == user.Username || existing.Email == user.Email {
				err = store.ErrConflict
				return
			}
		}
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		user.CreatedAt = now()
		st.users[user.ID] = user
	})
	if err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (u userRepo) UpdateProfile(_ context.Context, id uuid.UUID, update types.ProfileUpdate) error {
	err := store.ErrNotFound
	u.r.run(func(st *state, _ func() time.Time) {
		user, ok := st.users[id]
		if !ok {
			return
		}
		if update.DisplayName != nil {
			user.DisplayName = *update.DisplayName
		}
		if update.Bio != nil {
			user.Bio = *update.Bio
		}
		if update.IsPrivate != nil {
			user.IsPrivate = *update.IsPrivate
		}
		if update.AvatarURL != nil {
			user.AvatarURL = *update.AvatarURL
		}
		st.users[id] = user
		err = nil
	})
	return err
}

func (u userRepo) SetVerified(_ context.Context, id uuid.UUID) error {
	err := store.ErrNotFound
	u.r.run(func(st *state, _ func() time.Time) {
		user, ok := st.users[id]
		if !ok {
			return
		}
		user.IsVerified = true
		st.users[id] = user
		err = nil
	})
	return err
}

func (u userRepo) Search(_ context.Context, q string, limit int) ([]types.UserSummary, error) {
	q = strings.ToLower(q)
	out := []types.UserSummary{}
	u.r.run(func(st *state, _ func() time.Time) {
		for _, user := range st.users {
			if strings.Contains(strings.ToLower(user.Username), q) || strings.Contains(strings.ToLower(user.DisplayName), q) {
				out = append(out, types.UserSummary{
					ID:          user.ID,
					Username:    user.Username,
					DisplayName: user.DisplayName,
					AvatarURL:   user.AvatarURL,
					IsVerified:  user.IsVerified,
					IsAdmin:     user.IsAdmin,
				})
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type postRepo struct{ r runner }

func (p postRepo) Create(_ context.Context, post types.Post) (types.Post, error) {
	var err error
	p.r.run(func(st *state, now func() time.Time) {
		if _, ok := st.users[post.UserID]; !ok {
			err = store.ErrNotFound
			return
		}
		if post.ID == uuid.Nil {
			post.ID = uuid.New()
		}
		post.CreatedAt = now()
		st.posts[post.ID] = post
	})
	if err != nil {
		return types.Post{}, err
	}
	return post, nil
}

func (p postRepo) Get(_ context.Context, id uuid.UUID) (types.Post, error) {
	var (
		post types.Post
		ok   bool
	)
	p.r.run(func(st *state, _ func() time.Time) {
		post, ok = st.posts[id]
	})
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return post, nil
}

func (p postRepo) list(viewer uuid.NullUUID, match func(st *state, post types.Post) bool) []types.PostView {
	out := []types.PostView{}
	p.r.run(func(st *state, _ func() time.Time) {
		for _, post := range st.posts {
			if !match(st, post) {
				continue
			}
			author := st.users[post.UserID]
			view := types.PostView{
				Post:        post,
				Username:    author.Username,
				DisplayName: author.DisplayName,
				AvatarURL:   author.AvatarURL,
				IsVerified:  author.IsVerified,
			}
			for key, liked := range st.likes {
				if key.postID == post.ID && liked {
					view.LikesCount++
				}
			}
			for _, c := range st.comments {
				if c.PostID == post.ID {
					view.CommentsCount++
				}
			}
			if viewer.Valid {
				view.Liked = st.likes[likeKey{postID: post.ID, userID: viewer.UUID}]
			}
			out = append(out, view)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func window(posts []types.PostView, offset, limit int) []types.PostView {
	if offset >= len(posts) {
		return []types.PostView{}
	}
	posts = posts[offset:]
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

func (p postRepo) ListFeed(_ context.Context, viewer uuid.NullUUID, offset, limit int) ([]types.PostView, error) {
	posts := p.list(viewer, func(st *state, post types.Post) bool {
		return !st.users[post.UserID].IsPrivate
	})
	return window(posts, offset, limit), nil
}

func (p postRepo) ListByUser(_ context.Context, userID uuid.UUID, viewer uuid.NullUUID, limit int) ([]types.PostView, error) {
	posts := p.list(viewer, func(_ *state, post types.Post) bool {
		return post.UserID == userID
	})
	return window(posts, 0, limit), nil
}

func (p postRepo) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	p.r.run(func(st *state, _ func() time.Time) {
		for _, post := range st.posts {
			if post.UserID == userID {
				count++
			}
		}
	})
	return count, nil
}

type likeRepo struct{ r runner }

func (l likeRepo) Toggle(_ context.Context, postID, userID uuid.UUID) (bool, error) {
	var liked bool
	l.r.run(func(st *state, _ func() time.Time) {
		key := likeKey{postID: postID, userID: userID}
		liked = !st.likes[key]
		st.likes[key] = liked
	})
	return liked, nil
}

func (l likeRepo) Count(_ context.Context, postID uuid.UUID) (int, error) {
	count := 0
	l.r.run(func(st *state, _ func() time.Time) {
		for key, liked := range st.likes {
			if key.postID == postID && liked {
				count++
			}
		}
	})
	return count, nil
}

type commentRepo struct{ r runner }

func (c commentRepo) Create(_ context.Context, comment types.Comment) (types.Comment, error) {
	c.r.run(func(st *state, now func() time.Time) {
		if comment.ID == uuid.Nil {
			comment.ID = uuid.New()
		}
		comment.CreatedAt = now()
		st.comments[comment.ID] = comment
	})
	return comment, nil
}

func (c commentRepo) Get(_ context.Context, id uuid.UUID) (types.Comment, error) {
	var (
		comment types.Comment
		ok      bool
	)
	c.r.run(func(st *state, _ func() time.Time) {
		comment, ok = st.comments[id]
	})
	if !ok {
		return types.Comment{}, store.ErrNotFound
	}
	return comment, nil
}

func (c commentRepo) ListByPost(_ context.Context, postID uuid.UUID) ([]types.CommentView, error) {
	out := []types.CommentView{}
	c.r.run(func(st *state, _ func() time.Time) {
		for _, comment := range st.comments {
			if comment.PostID != postID {
				continue
			}
			author := st.users[comment.UserID]
			out = append(out, types.CommentView{
				Comment:     comment,
				Username:    author.Username,
				DisplayName: author.DisplayName,
				AvatarURL:   author.AvatarURL,
				IsVerified:  author.IsVerified,
			})
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type notificationRepo struct{ r runner }

func (n notificationRepo) Create(_ context.Context, notification types.Notification) (types.Notification, error) {
	n.r.run(func(st *state, now func() time.Time) {
		if notification.ID == uuid.Nil {
			notification.ID = uuid.New()
		}
		notification.CreatedAt = now()
		st.notifications = append(st.notifications, notification)
	})
	return notification, nil
}

func (n notificationRepo) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]types.NotificationView, error) {
	out := []types.NotificationView{}
	n.r.run(func(st *state, _ func() time.Time) {
		for i := len(st.notifications) - 1; i >= 0 && len(out) < limit; i-- {
			notification := st.notifications[i]
			if notification.UserID != userID {
				continue
			}
			from := st.users[notification.FromUserID]
			out = append(out, types.NotificationView{
				Notification:    notification,
				FromUsername:    from.Username,
				FromDisplayName: from.DisplayName,
				FromAvatarURL:   from.AvatarURL,
				FromIsVerified:  from.IsVerified,
			})
		}
	})
	return out, nil
}

func (n notificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var updated int64
	n.r.run(func(st *state, _ func() time.Time) {
		for i := range st.notifications {
			if st.notifications[i].UserID == userID && !st.notifications[i].IsRead {
				st.notifications[i].IsRead = true
				updated++
			}
		}
	})
	return updated, nil
}

type verificationRepo struct{ r runner }

func (v verificationRepo) Create(_ context.Context, req types.VerificationRequest) (types.VerificationRequest, error) {
	var err error
	v.r.run(func(st *state, now func() time.Time) {
		for _, existing := range st.verifications {
			if existing.UserID == req.UserID && existing.Status == types.VerificationPending {
				err = store.ErrConflict
				return
			}
		}
		if req.ID == uuid.Nil {
			req.ID = uuid.New()
		}
		req.Status = types.VerificationPending
		req.CreatedAt = now()
		st.verifications[req.ID] = req
	})
	if err != nil {
		return types.VerificationRequest{}, err
	}
	return req, nil
}

func (v verificationRepo) ListPending(_ context.Context) ([]types.VerificationRequestView, error) {
	out := []types.VerificationRequestView{}
	v.r.run(func(st *state, _ func() time.Time) {
		for _, req := range st.verifications {
			if req.Status != types.VerificationPending {
				continue
			}
			applicant := st.users[req.UserID]
			out = append(out, types.VerificationRequestView{
				VerificationRequest: req,
				Username:            applicant.Username,
				DisplayName:         applicant.DisplayName,
				AvatarURL:           applicant.AvatarURL,
			})
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (v verificationRepo) Review(_ context.Context, id uuid.UUID, status types.VerificationStatus, reviewerID uuid.UUID) (types.VerificationRequest, error) {
	var (
		req types.VerificationRequest
		ok  bool
	)
	v.r.run(func(st *state, now func() time.Time) {
		req, ok = st.verifications[id]
		if !ok || req.Status != types.VerificationPending {
			ok = false
			return
		}
		reviewedAt := now()
		req.Status = status
		req.ReviewedBy = uuid.NullUUID{UUID: reviewerID, Valid: true}
		req.ReviewedAt = &reviewedAt
		st.verifications[id] = req
	})
	if !ok {
		return types.VerificationRequest{}, store.ErrNotFound
	}
	return req, nil
}

// Sessions is an in-memory services.SessionStore.
type Sessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]types.Session
}

var _ services.SessionStore = (*Sessions)(nil)

func NewSessions() *Sessions {
	return &Sessions{sessions: map[uuid.UUID]types.Session{}}
}

func (s *Sessions) Create(_ context.Context, session types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *Sessions) Get(_ context.Context, id uuid.UUID) (types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return types.Session{}, store.ErrNotFound
	}
	return session, nil
}

func (s *Sessions) Revoke(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || session.RevokedAt != nil {
		return store.ErrNotFound
	}
	now := time.Now()
	session.RevokedAt = &now
	s.sessions[id] = session
	return nil
}

// Objects is an in-memory services.ObjectStore.
type Objects struct {
	BaseURL string

	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
}

var _ services.ObjectStore = (*Objects)(nil)

func NewObjects(baseURL string) *Objects {
	return &Objects{
		BaseURL:      baseURL,
		objects:      map[string][]byte{},
		contentTypes: map[string]string{},
	}
}

func (o *Objects) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[key] = buf.Bytes()
	o.contentTypes[key] = contentType
	return nil
}

func (o *Objects) PublicURL(key string) string {
	return o.BaseURL + "/" + key
}

// Object returns the stored bytes and content type of key.
func (o *Objects) Object(key string) ([]byte, string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	data, ok := o.objects[key]
	return data, o.contentTypes[key], ok
}

// Publisher records published notifications.
type Publisher struct {
	mu        sync.Mutex
	published []types.Notification
}

var _ services.NotificationPublisher = (*Publisher)(nil)

func (p *Publisher) Publish(_ context.Context, n types.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, n)
}

func (p *Publisher) Published() []types.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.Notification(nil), p.published...)
}
