package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_market/internal/models"
	"github.com/Skotchmaster/local_market/internal/repo"
	"github.com/Skotchmaster/local_market/pkg/hash"
	"github.com/Skotchmaster/local_market/pkg/logging"
	"github.com/Skotchmaster/local_market/pkg/tokens"
)

const minPasswordLen = 6

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	TokenTTL  time.Duration
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}

	switch {
	case in.Name == "":
		return nil, "", fmt.Errorf("%w: name is required", ErrValidation)
	case in.Email == "":
		return nil, "", fmt.Errorf("%w: email is required", ErrValidation)
	case len(in.Password) < minPasswordLen:
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	case !in.Role.Valid():
		return nil, "", fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}

	if _, err := s.Repo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, "", fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Errorw("register_error", "reason", "cannot hash the password", "error", err)
		return nil, "", err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         in.Role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, "", err
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}

	l.Infow("register_success", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: please provide email and password", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
		}
		return nil, "", err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// token outlived its user
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(u *models.User) (string, error) {
	return tokens.Issue(u.ID.String(), string(u.Role), s.TokenTTL, s.JWTSecret)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
