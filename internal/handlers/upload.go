package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/online-social/apiserver/internal/services"
	"go.uber.org/zap"
)

// UploadHandler accepts base64 images for avatars and posts.
type UploadHandler struct {
	mediaService *services.MediaService
	logger       *zap.Logger
}

func NewUploadHandler(mediaService *services.MediaService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{mediaService: mediaService, logger: logger}
}

func UploadRouter(r chi.Router, handler *UploadHandler, requireAuth func(http.Handler) http.Handler) {
	r.Use(requireAuth)
	r.Post("/avatar", handler.UploadAvatar)
	r.Post("/image", handler.UploadImage)
}

func (h *UploadHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	req, err := decodeBody[UploadRequest](w, r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	url, err := h.mediaService.UploadAvatar(r.Context(), user.ID, req.Image)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{URL: url})
}

func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[UploadRequest](w, r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	url, err := h.mediaService.UploadPostImage(r.Context(), req.Image)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{URL: url})
}

type UploadRequest struct {
	Image string `json:"image"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
