package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/online-social/apiserver/config"
	"github.com/online-social/apiserver/internal/db"
	"github.com/online-social/apiserver/internal/handlers"
	"github.com/online-social/apiserver/internal/mq"
	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/internal/storage"
	"github.com/online-social/apiserver/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and its backing connections.
type Server struct {
	httpServer *http.Server
	router     http.Handler
	db         *sql.DB
	redis      *redis.Client
	mq         *mq.MQ
	logger     *zap.Logger
}

// Services groups the use-cases exposed over HTTP.
type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Posts         *services.PostService
	Likes         *services.LikeService
	Comments      *services.CommentService
	Verification  *services.VerificationService
	Notifications *services.NotificationService
	Media         *services.MediaService
}

// New connects to the database, session backend, object storage and message
// broker selected by cfg and builds the HTTP server on top of them.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	srv := &Server{logger: logger}
	ok := false
	defer func() {
		if !ok {
			srv.closeBackends()
		}
	}()

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	srv.db = dbConn

	var sessions services.SessionStore
	switch cfg.Session.Backend {
	case "", "postgres":
		sessions = store.NewSessionRepository(dbConn)
	case "redis":
		srv.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := srv.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		sessions = store.NewRedisSessionStore(srv.redis)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	media, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	srv.mq, err = mq.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var publisher services.NotificationPublisher
	if srv.mq != nil {
		publisher = mq.NewNotificationPublisher(srv.mq, cfg.MQ.NotificationChannel, logger)
	}

	sqlStore := services.NewSQLStore(dbConn)
	srv.router = NewRouter(Services{
		Auth:          services.NewAuthService(sqlStore, sessions, cfg.JWTSecret, cfg.Session.TTL),
		Users:         services.NewUserService(sqlStore),
		Posts:         services.NewPostService(sqlStore),
		Likes:         services.NewLikeService(sqlStore, publisher),
		Comments:      services.NewCommentService(sqlStore, publisher),
		Verification:  services.NewVerificationService(sqlStore, publisher),
		Notifications: services.NewNotificationService(sqlStore),
		Media:         services.NewMediaService(sqlStore, media),
	}, logger)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	srv.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ok = true
	return srv, nil
}

// NewRouter builds the HTTP route table.
func NewRouter(svcs Services, logger *zap.Logger) http.Handler {
	requireAuth := handlers.RequireAuth(svcs.Auth, logger)
	optionalAuth := handlers.OptionalAuth(svcs.Auth, logger)
	requireAdmin := handlers.RequireAdmin(svcs.Auth, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(logger),
		middleware.Recoverer,
		corsHeaders,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: corsMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         86400,
		}),
		handlers.LegacyRoute,
		metrics,
		middleware.Timeout(60*time.Second),
	)
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.NotFound)

	router.Get("/healthz", handlers.Healthz)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	router.Options("/*", handlers.Preflight)

	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, svcs.Auth, logger)
	})
	handlers.PostRouter(router, handlers.NewPostHandler(svcs.Posts, svcs.Likes, svcs.Comments, logger), requireAuth, optionalAuth)
	handlers.ProfileRouter(router, handlers.NewProfileHandler(svcs.Users, logger), requireAuth, optionalAuth)
	router.Route("/verification", func(r chi.Router) {
		handlers.VerificationRouter(r, handlers.NewVerificationHandler(svcs.Verification, logger), requireAuth, requireAdmin)
	})
	router.Route("/notifications", func(r chi.Router) {
		handlers.NotificationRouter(r, handlers.NewNotificationHandler(svcs.Notifications, logger), requireAuth)
	})
	router.Route("/upload", func(r chi.Router) {
		handlers.UploadRouter(r, handlers.NewUploadHandler(svcs.Media, logger), requireAuth)
	})

	return router
}

// Router exposes the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the backing connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.closeBackends()
	return err
}

func (s *Server) closeBackends() {
	if s.mq != nil {
		if err := s.mq.Close(); err != nil {
			s.logger.Warn("close mq", zap.Error(err))
		}
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
