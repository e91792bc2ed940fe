// Package checkout реализует HTTP-обработчик создания checkout-сессии
// платёжного провайдера.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/digitalguardian/breachwatch/internal/http/middlewarectx"
	"github.com/digitalguardian/breachwatch/internal/http/response"
	"github.com/digitalguardian/breachwatch/internal/lib/sl"
	"github.com/digitalguardian/breachwatch/internal/services/billing"
)

// Request — необязательные параметры checkout-сессии
type Request struct {
	PriceID string `json:"priceId"`
}

// Service описывает интерфейс бизнес-логики биллинга.
type Service interface {
	CreateCheckout(ctx context.Context, userUID, priceID string) (string, error)
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
// @Summary Создать checkout-сессию
// @Description Создает сессию оплаты подписки и возвращает URL редиректа.
// @Tags Billing
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param request body Request false "Параметры сессии"
// @Success 200 {object} response.Response "URL сессии оплаты"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 503 {object} response.ErrorResponse "Платёжный провайдер не настроен"
// @Router /billing/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"

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

	// Тело запроса необязательно.
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	url, err := h.service.CreateCheckout(r.Context(), userUID, req.PriceID)
	if err != nil {
		if errors.Is(err, billing.ErrPaymentNotConfigured) {
			log.Error("payment provider not configured")
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("payment provider not configured"))
			return
		}
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create checkout session"))
		return
	}

	log.Info("checkout session created", slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"url": url,
	}))
}
