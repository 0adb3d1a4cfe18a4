package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/types"
	"go.uber.org/zap"
)

// ProfileHandler serves profiles and user search.
type ProfileHandler struct {
	userService *services.UserService
	logger      *zap.Logger
}

func NewProfileHandler(userService *services.UserService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{userService: userService, logger: logger}
}

// ProfileRouter registers profile and search routes on the given router.
func ProfileRouter(
	r chi.Router,
	handler *ProfileHandler,
	requireAuth func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.With(optionalAuth).Get("/profile", handler.GetProfile)
	r.With(requireAuth).Post("/profile/update", handler.UpdateProfile)
	r.Get("/search", handler.Search)
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	var viewer *types.User
	if user, ok := userFromContext(r.Context()); ok {
		viewer = &user
	}

	page, err := h.userService.Profile(r.Context(), r.URL.Query().Get("username"), viewer)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	update, err := decodeBody[types.ProfileUpdate](w, r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	if err := h.userService.UpdateProfile(r.Context(), user.ID, update); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Users: users})
}

type SearchResponse struct {
	Users []types.UserSummary `json:"users"`
}
