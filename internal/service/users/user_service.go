package users

import (
	"context"
	"errors"
	"strings"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/auth"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/avelichko/ridepool/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type UserService struct {
	users  repository.UserRepository
	tokens *auth.Manager
}

func NewUserService(users repository.UserRepository, tokens *auth.Manager) *UserService {
	return &UserService{users: users, tokens: tokens}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" {
		return nil, apperrors.Validationf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.Validationf("valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.Validationf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        input.Phone,
		Role:         "student",
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns a signed bearer token. An
// unknown email and a wrong password are indistinguishable to the
// caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, apperrors.ErrUnauthorized
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrUnauthorized
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

var _ UserUseCase = (*UserService)(nil)
