package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/internal/services/servicestest"
	"github.com/online-social/apiserver/types"
)

type testEnv struct {
	store     *servicestest.Store
	sessions  *servicestest.Sessions
	objects   *servicestest.Objects
	publisher *servicestest.Publisher

	auth          *services.AuthService
	users         *services.UserService
	posts         *services.PostService
	likes         *services.LikeService
	comments      *services.CommentService
	verification  *services.VerificationService
	notifications *services.NotificationService
	media         *services.MediaService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:     servicestest.NewStore(),
		sessions:  servicestest.NewSessions(),
		objects:   servicestest.NewObjects("https://cdn.example.com/media"),
		publisher: &servicestest.Publisher{},
	}
	env.auth = services.NewAuthService(env.store, env.sessions, "test-secret", time.Hour)
	env.users = services.NewUserService(env.store)
	env.posts = services.NewPostService(env.store)
	env.likes = services.NewLikeService(env.store, env.publisher)
	env.comments = services.NewCommentService(env.store, env.publisher)
	env.verification = services.NewVerificationService(env.store, env.publisher)
	env.notifications = services.NewNotificationService(env.store)
	env.media = services.NewMediaService(env.store, env.objects)
	return env
}

func (e *testEnv) register(t *testing.T, username string) types.User {
	t.Helper()

	res, err := e.auth.Register(context.Background(), services.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return res.User
}

func (e *testEnv) post(t *testing.T, author types.User, content string) types.Post {
	t.Helper()

	post, err := e.posts.Create(context.Background(), author.ID, services.CreatePostInput{Content: content})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func validationMessage(err error) string {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return ""
}
