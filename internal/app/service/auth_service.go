package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travelpoint/internal/common"
	"travelpoint/internal/common/security"
	"travelpoint/internal/domain/model"
	"travelpoint/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

const (
	MsgRegisterFieldsRequired = "Пожалуйста, заполните все обязательные поля."
	MsgEmailTaken             = "Пользователь с таким email уже существует."
	MsgPasswordTooLong        = "Пароль слишком длинный."
	MsgLoginFieldsRequired    = "Пожалуйста, введите email и пароль."
	MsgBadCredentials         = "Неверный email или пароль."
	MsgRegistered             = "Пользователь успешно зарегистрирован!"
	MsgLoggedIn               = "Вход выполнен успешно!"
)

// TokenIssuer signs bearer tokens for authenticated identities.
type TokenIssuer interface {
	Issue(id model.Identity) (string, error)
}

type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	log      logrus.FieldLogger
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, log logrus.FieldLogger) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, log: log.WithField("component", "auth_service")}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string         `json:"message"`
	User    model.Identity `json:"user"`
	Token   string         `json:"token"`
}

// Register creates a regular user. Roles are never taken from the request.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" || req.Password == "" {
		return nil, common.WithMessage(common.ErrValidation, MsgRegisterFieldsRequired)
	}
	// Limit is in bytes, so multi-byte passphrases reach it sooner.
	if len(req.Password) > security.MaxPasswordBytes {
		return nil, common.WithMessage(common.ErrValidation, MsgPasswordTooLong)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.WithMessage(common.ErrConflict, MsgEmailTaken)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	s.log.WithField("user_id", user.ID).Info("User registered")
	return &AuthResponse{Message: MsgRegistered, User: user.Identity(), Token: token}, nil
}

// Login checks credentials. Unknown email and wrong password produce the
// same error and cost the same bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, common.WithMessage(common.ErrValidation, MsgLoginFieldsRequired)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			security.BurnPasswordCheck(req.Password)
			return nil, common.WithMessage(common.ErrUnauthorized, MsgBadCredentials)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, common.WithMessage(common.ErrUnauthorized, MsgBadCredentials)
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Message: MsgLoggedIn, User: user.Identity(), Token: token}, nil
}
