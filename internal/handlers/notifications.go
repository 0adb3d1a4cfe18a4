package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/types"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *services.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

func NotificationRouter(r chi.Router, handler *NotificationHandler, requireAuth func(http.Handler) http.Handler) {
	r.Use(requireAuth)
	r.Get("/", handler.List)
	r.Post("/read", handler.MarkAllRead)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	notifications, err := h.notificationService.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, NotificationListResponse{Notifications: notifications})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	if err := h.notificationService.MarkAllRead(r.Context(), user.ID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

type NotificationListResponse struct {
	Notifications []types.NotificationView `json:"notifications"`
}
