package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ctchen222/fatty-hosting/internal/api/apperror"
	"ctchen222/fatty-hosting/internal/api/models"
	"ctchen222/fatty-hosting/internal/api/repository"
	"ctchen222/fatty-hosting/internal/validator"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

const invalidCredentials = "Invalid credentials"

// UserService defines the interface for account business logic.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error)
	Verify(ctx context.Context, token string) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	tokens   *TokenIssuer
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, tokens *TokenIssuer) UserService {
	return &userService{userRepo: userRepo, tokens: tokens}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register handles user registration and returns a token for the new user.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error) {
	in := *req
	in.Email = NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.Struct(&in); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperror.Unknown("Registration failed", err)
	}
	if existingUser != nil {
		return nil, apperror.Conflict("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperror.Unknown("Registration failed", fmt.Errorf("failed to hash password: %w", err))
	}

	user, err := s.userRepo.CreateUser(ctx, in.Email, string(hashed), in.Name)
	if err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperror.Conflict("User already exists")
		}
		return nil, apperror.Unknown("Registration failed", err)
	}

	return s.authResult(user)
}

// Login checks credentials and returns a token on success. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	in := *req
	in.Email = NormalizeEmail(in.Email)
	if err := validator.Struct(&in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperror.Unknown("Login failed", err)
	}
	if user == nil {
		return nil, apperror.Auth(invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.Auth(invalidCredentials)
	}

	return s.authResult(user)
}

// Verify resolves a bearer token to its user.
func (s *userService) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperror.Auth("Invalid token")
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.Unknown("Failed to verify token", err)
	}
	if user == nil {
		return nil, apperror.Auth("Invalid token")
	}
	return user, nil
}

func (s *userService) authResult(user *models.User) (*models.AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Unknown("Failed to issue token", err)
	}
	return &models.AuthResult{Token: token, User: user.Public()}, nil
}
