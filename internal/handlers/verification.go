package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/online-social/apiserver/internal/services"
	"github.com/online-social/apiserver/types"
	"go.uber.org/zap"
)

// VerificationHandler serves the verification workflow.
type VerificationHandler struct {
	verificationService *services.VerificationService
	logger              *zap.Logger
}

func NewVerificationHandler(verificationService *services.VerificationService, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService, logger: logger}
}

// VerificationRouter registers verification routes. Listing and review are
// admin only.
func VerificationRouter(
	r chi.Router,
	handler *VerificationHandler,
	requireAuth func(http.Handler) http.Handler,
	requireAdmin func(http.Handler) http.Handler,
) {
	r.With(requireAuth).Post("/request", handler.Submit)
	r.With(requireAdmin).Get("/list", handler.ListPending)
	r.With(requireAdmin).Post("/review", handler.Review)
}

func (h *VerificationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	req, err := decodeBody[VerificationRequestBody](w, r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	created, err := h.verificationService.Submit(r.Context(), user, req.Reason)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: created.ID.String()})
}

func (h *VerificationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	admin, _ := userFromContext(r.Context())
	requests, err := h.verificationService.ListPending(r.Context(), admin)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, VerificationListResponse{Requests: requests})
}

func (h *VerificationHandler) Review(w http.ResponseWriter, r *http.Request) {
	admin, _ := userFromContext(r.Context())
	req, err := decodeBody[ReviewRequestBody](w, r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	requestID, err := uuid.Parse(strings.TrimSpace(req.RequestID))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Неверные параметры")
		return
	}

	action := types.ReviewAction(strings.TrimSpace(req.Action))
	if err := h.verificationService.Review(r.Context(), admin, requestID, action); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

type VerificationRequestBody struct {
	Reason string `json:"reason"`
}

type ReviewRequestBody struct {
	RequestID string `json:"request_id"`
	Action    string `json:"action"`
}

type VerificationListResponse struct {
	Requests []types.VerificationRequestView `json:"requests"`
}
