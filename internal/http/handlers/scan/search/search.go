// Package search реализует HTTP-обработчик поиска по произвольному адресу.
//
// Операция доступна только премиум-пользователям; результаты не сохраняются.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/digitalguardian/breachwatch/internal/http/middlewarectx"
	"github.com/digitalguardian/breachwatch/internal/http/response"
	"github.com/digitalguardian/breachwatch/internal/lib/sl"
	"github.com/digitalguardian/breachwatch/internal/models"
	"github.com/digitalguardian/breachwatch/internal/services/scan"
)

// Request — адрес для поиска
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service описывает интерфейс бизнес-логики поиска.
type Service interface {
	Search(ctx context.Context, userUID, userEmail, searchEmail string) (*models.ScanReport, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Поиск утечек по произвольному адресу
// @Description Проверяет произвольный email по базам утечек. Только для премиум-пользователей; результаты не сохраняются.
// @Tags Scan
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Адрес для поиска"
// @Success 200 {object} response.Response "Результат поиска"
// @Failure 400 {object} response.ErrorResponse "Некорректный адрес"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется премиум-подписка"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Failure 502 {object} response.ErrorResponse "Провайдер данных недоступен"
// @Router /scan/search [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.scan.search"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	report, err := h.service.Search(r.Context(), userUID, userEmail, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, scan.ErrEntitlementRequired):
			log.Info("search denied, premium required", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("premium subscription required"))
		case errors.Is(err, scan.ErrInvalidEmail):
			log.Error("invalid search email")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("valid email required"))
		case errors.Is(err, scan.ErrScanFailed):
			log.Error("search failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("search failed, try again later"))
		default:
			log.Error("search failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("search finished", slog.String("user_uid", userUID), slog.Int("count", report.Count))
	render.JSON(w, r, response.StatusOKWithData(report))
}
