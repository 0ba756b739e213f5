package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/pkg/apperror"
	"github.com/dkruglov/freemarket-backend/internal/repository"
	"github.com/dkruglov/freemarket-backend/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetBusinessProfile(ctx context.Context, userID uuid.UUID) (*models.BusinessProfile, error)
	UpsertBusinessProfile(ctx context.Context, profile *models.BusinessProfile) error
	GetFreelancerProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error)
	UpsertFreelancerProfile(ctx context.Context, profile *models.FreelancerProfile) error
}

// AuthService инкапсулирует регистрацию и аутентификацию.
type AuthService struct {
	repo         AuthRepository
	tokenManager *TokenManager
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *models.User `json:"user"`
	TokenPair *TokenPair   `json:"tokens"`
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{repo: repo, tokenManager: tokenManager}
}

// Register создаёт нового пользователя с выбранной ролью.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	details := map[string]string{}
	if err := validation.ValidateEmail(in.Email); err != nil {
		details["email"] = err.Error()
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		details["password"] = err.Error()
	}
	if in.Role != models.RoleBusiness && in.Role != models.RoleFreelancer {
		details["role"] = "роль должна быть BUSINESS или FREELANCER"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("некорректные данные регистрации", details)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(passHash),
		Role:         in.Role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperror.New(apperror.ErrCodeConflict, "email уже зарегистрирован")
		}
		return nil, err
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Login проверяет учётные данные и возвращает токены.
// Сообщение об ошибке одинаково для неизвестного email и неверного
// пароля, чтобы не раскрывать существование аккаунта.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Refresh выпускает новую пару токенов по refresh токену.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (*TokenPair, error) {
	claims, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "refresh токен невалиден")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "некорректный subject токена")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	tokenPair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}
	return tokenPair, nil
}

// GetUser возвращает пользователя по идентификатору.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetBusinessProfile возвращает профиль компании.
func (s *AuthService) GetBusinessProfile(ctx context.Context, userID uuid.UUID) (*models.BusinessProfile, error) {
	profile, err := s.repo.GetBusinessProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "профиль не найден")
		}
		return nil, err
	}
	return profile, nil
}

// UpdateBusinessProfile создаёт или обновляет профиль компании.
// Профиль можно редактировать только владельцу с ролью BUSINESS.
func (s *AuthService) UpdateBusinessProfile(ctx context.Context, actor models.Actor, profile *models.BusinessProfile) error {
	if actor.Role != models.RoleBusiness || actor.UserID != profile.UserID {
		return apperror.ErrForbidden
	}
	if strings.TrimSpace(profile.CompanyName) == "" {
		return apperror.Validation("некорректный профиль", map[string]string{"company_name": "название компании обязательно"})
	}
	return s.repo.UpsertBusinessProfile(ctx, profile)
}

// GetFreelancerProfile возвращает профиль исполнителя.
func (s *AuthService) GetFreelancerProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	profile, err := s.repo.GetFreelancerProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "профиль не найден")
		}
		return nil, err
	}
	return profile, nil
}

// UpdateFreelancerProfile создаёт или обновляет профиль исполнителя.
func (s *AuthService) UpdateFreelancerProfile(ctx context.Context, actor models.Actor, profile *models.FreelancerProfile) error {
	if actor.Role != models.RoleFreelancer || actor.UserID != profile.UserID {
		return apperror.ErrForbidden
	}
	if strings.TrimSpace(profile.DisplayName) == "" {
		return apperror.Validation("некорректный профиль", map[string]string{"display_name": "имя обязательно"})
	}
	return s.repo.UpsertFreelancerProfile(ctx, profile)
}
