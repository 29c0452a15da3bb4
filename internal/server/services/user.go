// Package services contains server-side business logic. This file implements
// UserService: registration, login and JWT issuance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hamawards/internal/common"
	"hamawards/internal/server/auth"
	"hamawards/internal/server/config"
	"hamawards/internal/server/models"
	"hamawards/internal/server/repositories/repomanager"
)

// Principal is the authenticated caller as decoded from the access token.
type Principal struct {
	UserID   int64
	Callsign string
	Role     string
}

type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	secretKey             string
	tokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		secretKey:             cfg.SecretKey,
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new operator account. Callsigns are canonicalized to
// upper case and act as the login name. New accounts always get the plain
// user role.
func (s *UserService) Register(ctx context.Context, callsign, password string) (*models.User, error) {
	callsign = strings.ToUpper(strings.TrimSpace(callsign))
	if callsign == "" || password == "" {
		return nil, fmt.Errorf("%w: callsign and password are required", common.ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{Callsign: callsign, PasswordHash: hash, Role: "user"}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return u, nil
}

// Login verifies credentials and returns a signed access token.
func (s *UserService) Login(ctx context.Context, callsign, password string) (string, *models.User, error) {
	callsign = strings.ToUpper(strings.TrimSpace(callsign))

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByCallsign(ctx, callsign)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrUnauthorized
		}
		return "", nil, common.ErrInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(s.secretKey, user.ID, user.Callsign, user.Role, s.tokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrInternal
	}

	return token, user, nil
}
