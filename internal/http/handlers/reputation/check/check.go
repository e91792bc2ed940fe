// Package check реализует HTTP-обработчик проверки репутации email-адреса.
package check

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/digitalguardian/breachwatch/internal/http/middlewarectx"
	"github.com/digitalguardian/breachwatch/internal/http/response"
	"github.com/digitalguardian/breachwatch/internal/lib/sl"
	"github.com/digitalguardian/breachwatch/internal/models"
	libreputation "github.com/digitalguardian/breachwatch/internal/reputation"
	"github.com/digitalguardian/breachwatch/internal/services/reputation"
)

// Service описывает интерфейс бизнес-логики проверки репутации.
type Service interface {
	Check(ctx context.Context, userUID, userEmail, targetEmail string) (*models.EmailReputation, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Репутация email-адреса
// @Description Возвращает оценку доставляемости и качества адреса. Только для премиум-пользователей.
// @Tags Reputation
// @Produce json
// @Security BearerAuth
// @Param email query string true "Проверяемый адрес"
// @Success 200 {object} response.Response "Репутация адреса"
// @Failure 400 {object} response.ErrorResponse "Некорректный адрес"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется премиум-подписка"
// @Failure 503 {object} response.ErrorResponse "Внешний API не настроен"
// @Router /reputation [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reputation.check"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := middlewarectx.UserUIDFromContext(r.Context())
	userEmail := middlewarectx.EmailFromContext(r.Context())
	if userUID == "" {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	targetEmail := r.URL.Query().Get("email")
	if targetEmail == "" {
		targetEmail = userEmail
	}

	rep, err := h.service.Check(r.Context(), userUID, userEmail, targetEmail)
	if err != nil {
		switch {
		case errors.Is(err, reputation.ErrInvalidEmail):
			log.Error("invalid email for reputation check")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("valid email required"))
		case errors.Is(err, reputation.ErrEntitlementRequired):
			log.Info("reputation check denied, premium required", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("premium subscription required"))
		case errors.Is(err, libreputation.ErrNotConfigured):
			log.Error("reputation API not configured")
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("reputation API not configured"))
		default:
			log.Error("reputation check failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("reputation check failed"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(rep))
}
