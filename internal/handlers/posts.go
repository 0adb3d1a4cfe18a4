package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/types"
	"go.uber.org/zap"
)

// PostHandler serves the feed, likes and comments.
type PostHandler struct {
	postService    *services.PostService
	likeService    *services.LikeService
	commentService *services.CommentService
	logger         *zap.Logger
}

func NewPostHandler(
	postService *services.PostService,
	likeService *services.LikeService,
	commentService *services.CommentService,
	logger *zap.Logger,
) *PostHandler {
	return &PostHandler{
		postService:    postService,
		likeService:    likeService,
		commentService: commentService,
		logger:         logger,
	}
}

// PostRouter registers post, like and comment routes on the given router.
func PostRouter(
	r chi.Router,
	handler *PostHandler,
	requireAuth func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.With(optionalAuth).Get("/posts", handler.ListPosts)
	r.With(requireAuth).Post("/posts", handler.CreatePost)
	r.With(requireAuth).Post("/likes", handler.ToggleLike)
	r.Get("/comments", handler.ListComments)
	r.With(requireAuth).Post("/comments", handler.CreateComment)
}

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Неверные параметры")
		return
	}

	var viewer uuid.NullUUID
	if user, ok := userFromContext(r.Context()); ok {
		viewer = uuid.NullUUID{UUID: user.ID, Valid: true}
	}

	posts, err := h.postService.Feed(r.Context(), viewer, page)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: posts})
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	req, err := decodeBody[services.CreatePostInput](w, r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	post, err := h.postService.Create(r.Context(), user.ID, req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: post.ID.String()})
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	req, err := decodeBody[LikeRequest](w, r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	postID, ok := parsePostID(w, req.PostID)
	if !ok {
		return
	}

	state, err := h.likeService.Toggle(r.Context(), user, postID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := parsePostID(w, r.URL.Query().Get("post_id"))
	if !ok {
		return
	}

	comments, err := h.commentService.List(r.Context(), postID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, CommentListResponse{Comments: comments})
}

func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	req, err := decodeBody[CreateCommentRequest](w, r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	rawPostID := strings.TrimSpace(req.PostID)
	if rawPostID == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Заполните все поля")
		return
	}
	postID, ok := parsePostID(w, rawPostID)
	if !ok {
		return
	}

	var parentID uuid.NullUUID
	if raw := strings.TrimSpace(req.ParentID); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Комментарий не найден")
			return
		}
		parentID = uuid.NullUUID{UUID: parsed, Valid: true}
	}

	comment, err := h.commentService.Create(r.Context(), user, services.CreateCommentInput{
		PostID:   postID,
		Content:  req.Content,
		ParentID: parentID,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: comment.ID.String()})
}

type LikeRequest struct {
	PostID string `json:"post_id"`
}

type CreateCommentRequest struct {
	PostID   string `json:"post_id"`
	Content  string `json:"content"`
	ParentID string `json:"parent_id"`
}

type PostListResponse struct {
	Posts []types.PostView `json:"posts"`
}

type CommentListResponse struct {
	Comments []types.CommentView `json:"comments"`
}

// parsePage reads the 1-indexed page query parameter.
func parsePage(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, errors.New("invalid page")
	}
	return page, nil
}

// parsePostID writes the error response itself when raw is unusable. An
// identifier that is not a UUID cannot name an existing post.
func parsePostID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "post_id обязателен")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusNotFound, "Пост не найден")
		return uuid.Nil, false
	}
	return id, true
}
