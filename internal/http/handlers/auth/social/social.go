// Package social реализует HTTP-обработчик входа через внешнего провайдера.
// Пользователь создается при первом входе, пароль не хранится.
package social

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/digitalguardian/breachwatch/internal/http/response"
	"github.com/digitalguardian/breachwatch/internal/lib/sl"
	"github.com/digitalguardian/breachwatch/internal/models"
	"github.com/digitalguardian/breachwatch/internal/services/auth"
)

// Request — данные профиля от внешнего провайдера
type Request struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=100"`
}

// Service описывает интерфейс бизнес-логики социального входа.
type Service interface {
	SocialLogin(ctx context.Context, email, name string) (*auth.Session, error)
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
// @Summary Вход через внешнего провайдера
// @Description Создает пользователя при первом входе и возвращает JWT-токен.
// @Tags Auth
// @Accept  json
// @Produce json
// @Param request body Request true "Профиль от провайдера"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/social [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.social"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	session, err := h.service.SocialLogin(r.Context(), req.Email, req.Name)
	if err != nil {
		log.Error("social login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to login"))
		return
	}

	log.Info("social login", slog.String("user_uid", session.User.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": session.Token,
		"user": map[string]any{
			"uid":   session.User.UID,
			"email": session.User.Email,
			"name":  session.User.Name,
		},
		"subscription": models.SummarizeSubscription(session.Subscription),
	}))
}
