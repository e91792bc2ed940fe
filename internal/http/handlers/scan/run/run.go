// Package run реализует HTTP-обработчик сканирования собственного адреса.
//
// Адрес берется из JWT-контекста, найденные утечки сохраняются в историю
// пользователя. Тело запроса не требуется.
package run

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/digitalguardian/breachwatch/internal/http/middlewarectx"
	"github.com/digitalguardian/breachwatch/internal/http/response"
	"github.com/digitalguardian/breachwatch/internal/lib/sl"
	"github.com/digitalguardian/breachwatch/internal/models"
)

// Service описывает интерфейс бизнес-логики сканирования.
type Service interface {
	ScanOwn(ctx context.Context, userUID, email string) (*models.ScanReport, error)
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
// @Summary Сканировать собственный адрес
// @Description Проверяет email текущего пользователя по базам утечек и сохраняет результат.
// @Tags Scan
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Результат сканирования"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 502 {object} response.ErrorResponse "Провайдер данных недоступен"
// @Router /scan [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.scan.run"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := middlewarectx.UserUIDFromContext(r.Context())
	email := middlewarectx.EmailFromContext(r.Context())
	if userUID == "" || email == "" {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	report, err := h.service.ScanOwn(r.Context(), userUID, email)
	if err != nil {
		log.Error("scan failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("scan failed, try again later"))
		return
	}

	log.Info("scan finished", slog.String("user_uid", userUID), slog.Int("count", report.Count))
	render.JSON(w, r, response.StatusOKWithData(report))
}
