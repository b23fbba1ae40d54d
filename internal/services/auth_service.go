package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	dto "taskmaster.com/taskmaster/internal/data_models"
	apperrors "taskmaster.com/taskmaster/internal/errors"
	repository "taskmaster.com/taskmaster/internal/repositories"
	"taskmaster.com/taskmaster/internal/validators"
	model "taskmaster.com/taskmaster/pkg/models"
)

type AuthResult struct {
	Token string            `json:"token"`
	User  *model.PublicUser `json:"user"`
}

type AuthService struct {
	users      *repository.UserRepository
	tokens     *TokenService
	bcryptCost int
	dummyHash  []byte
	logger     *logrus.Logger
}

func NewAuthService(
	users *repository.UserRepository,
	tokens *TokenService,
	bcryptCost int,
	logger *logrus.Logger,
) (*AuthService, error) {
	// compared against when the email is unknown so both login failures cost the same
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("taskmaster-unknown-user"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
		logger:     logger,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error) {
	if err := validators.ValidateRegisterRequest(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, req.Username, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperrors.ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	result, err := s.issue(user.Public())
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return result, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error) {
	if err := validators.ValidateLoginRequest(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		s.logger.Info("login rejected")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected")
		return nil, apperrors.ErrInvalidCredentials
	}

	result, err := s.issue(user.Public())
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")
	return result, nil
}

func (s *AuthService) Verify(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *model.PublicUser) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
