package handlers

import (
	"errors"
	"net/http"

	"github.com/online-social/apiserver/internal/services"
	"go.uber.org/zap"
)

const internalErrorMessage = "Внутренняя ошибка сервера"

var serviceErrors = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrUserExists, http.StatusBadRequest, "Пользователь уже существует"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Неверный email или пароль"},
	{services.ErrUnauthorized, http.StatusUnauthorized, "Не авторизован"},
	{services.ErrForbidden, http.StatusForbidden, "Доступ запрещен"},
	{services.ErrUserNotFound, http.StatusNotFound, "Пользователь не найден"},
	{services.ErrPostNotFound, http.StatusNotFound, "Пост не найден"},
	{services.ErrParentNotFound, http.StatusBadRequest, "Комментарий не найден"},
	{services.ErrRequestNotFound, http.StatusNotFound, "Заявка не найдена"},
	{services.ErrPendingRequestExists, http.StatusBadRequest, "Заявка уже подана"},
	{services.ErrInvalidImage, http.StatusBadRequest, "Некорректное изображение"},
	{errBodyTooLarge, http.StatusRequestEntityTooLarge, "Слишком большой запрос"},
}

// writeServiceError maps a service error to its status and user-facing
// message. Unknown errors are logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}
	for _, known := range serviceErrors {
		if errors.Is(err, known.err) {
			writeError(w, known.status, known.message)
			return
		}
	}

	logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, internalErrorMessage)
}
