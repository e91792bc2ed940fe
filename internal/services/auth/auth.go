// Package auth содержит логику бизнес-уровня для работы с пользователями
// и аутентификацией: регистрация, вход по паролю, социальный вход,
// валидация JWT.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/digitalguardian/breachwatch/internal/lib/emailaddr"
	"github.com/digitalguardian/breachwatch/internal/lib/entitlement"
	"github.com/digitalguardian/breachwatch/internal/lib/jwt"
	"github.com/digitalguardian/breachwatch/internal/lib/password"
	"github.com/digitalguardian/breachwatch/internal/models"
)

// Ошибки уровня сервиса; обработчики переводят их в HTTP-статусы.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email либо (nil, nil).
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// SubscriptionRepository описывает создание подписки при регистрации.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users         UserRepository
	subs          SubscriptionRepository
	jwtMaker      jwt.Maker
	trialDuration time.Duration
	now           func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, subs SubscriptionRepository,
	jwtMaker jwt.Maker, trialDuration time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		subs:          subs,
		jwtMaker:      jwtMaker,
		trialDuration: trialDuration,
		now:           time.Now,
	}
}

// WithClock подменяет источник времени; используется в тестах.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Session — результат успешной аутентификации: пользователь, его подписка
// (nil, если записи нет) и JWT.
type Session struct {
	User         *models.User
	Subscription *models.Subscription
	Token        string
}

// Register создает нового пользователя с хэшированием пароля и подпиской
// в статусе trialing. Пробный период точной длительности, без округления
// до календарных суток.
func (s *AuthService) Register(ctx context.Context, email, name, rawPassword string) (*Session, error) {
	normalized := emailaddr.Normalize(email)
	existing, err := s.users.GetUserByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, err
	}
	user := models.User{
		UID:          uuid.NewString(),
		Email:        normalized,
		Name:         name,
		PasswordHash: hashed,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.UID = uid

	sub, err := s.createTrialSubscription(ctx, uid)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: &user, Subscription: sub, Token: token}, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, emailaddr.Normalize(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	sub, err := s.subs.GetSubscriptionByUserUID(ctx, user.UID)
	if err != nil {
		return nil, err
	}
	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Subscription: sub, Token: token}, nil
}

// SocialLogin находит пользователя по email или создаёт его при первом
// входе. Пароль не требуется и не создаётся.
func (s *AuthService) SocialLogin(ctx context.Context, email, name string) (*Session, error) {
	normalized := emailaddr.Normalize(email)
	user, err := s.users.GetUserByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	var sub *models.Subscription
	if user == nil {
		newUser := models.User{
			UID:   uuid.NewString(),
			Email: normalized,
			Name:  name,
		}
		uid, err := s.users.RegisterUser(ctx, newUser)
		if err != nil {
			return nil, err
		}
		newUser.UID = uid
		if sub, err = s.createTrialSubscription(ctx, uid); err != nil {
			return nil, err
		}
		user = &newUser
	} else {
		if sub, err = s.subs.GetSubscriptionByUserUID(ctx, user.UID); err != nil {
			return nil, err
		}
	}
	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Subscription: sub, Token: token}, nil
}

// ValidateToken проверяет JWT и возвращает claims пользователя.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}

func (s *AuthService) createTrialSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	trialEndsAt := entitlement.TrialEnd(s.now(), s.trialDuration)
	sub := models.Subscription{
		UserUID:     userUID,
		Status:      "trialing",
		TrialEndsAt: &trialEndsAt,
		Plan:        "free",
	}
	id, err := s.subs.CreateSubscription(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = id
	return &sub, nil
}
