// Package list реализует HTTP-обработчик списка найденных утечек пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/digitalguardian/breachwatch/internal/http/middlewarectx"
	"github.com/digitalguardian/breachwatch/internal/http/response"
	"github.com/digitalguardian/breachwatch/internal/lib/classify"
	"github.com/digitalguardian/breachwatch/internal/lib/sl"
	"github.com/digitalguardian/breachwatch/internal/models"
)

// Service описывает интерфейс бизнес-логики чтения истории утечек.
type Service interface {
	ListExposures(ctx context.Context, userUID string) ([]*models.Exposure, error)
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
// @Summary Список найденных утечек
// @Description Возвращает историю утечек текущего пользователя, свежие первыми.
// @Tags Exposures
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список утечек"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /scan/results [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.exposure.list"

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

	exposures, err := h.service.ListExposures(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list exposures", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list exposures"))
		return
	}

	views := make([]models.ExposureView, 0, len(exposures))
	for _, e := range exposures {
		views = append(views, classify.MapView(*e))
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"exposures": views,
		"count":     len(views),
	}))
}
