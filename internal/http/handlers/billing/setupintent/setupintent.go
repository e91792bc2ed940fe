// Package setupintent реализует HTTP-обработчик создания setup intent
// для привязки платёжного средства.
package setupintent

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
	"github.com/digitalguardian/breachwatch/internal/services/billing"
)

// Service описывает интерфейс бизнес-логики биллинга.
type Service interface {
	CreateSetupIntent(ctx context.Context, userUID string) (string, error)
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
// @Summary Создать setup intent
// @Description Создает setup intent для привязки карты и возвращает client secret.
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Client secret"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 503 {object} response.ErrorResponse "Платёжный провайдер не настроен"
// @Router /billing/setup-intent [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.setupintent"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := middlewarectx.UserUIDFromContext(r.Context())
	if userUID == "" {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	clientSecret, err := h.service.CreateSetupIntent(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, billing.ErrPaymentNotConfigured) {
			log.Error("payment provider not configured")
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("payment provider not configured"))
			return
		}
		log.Error("failed to create setup intent", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create setup intent"))
		return
	}

	log.Info("setup intent created", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"clientSecret": clientSecret,
	}))
}
