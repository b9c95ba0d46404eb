// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, profile management and
// token revocation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/dmitrijs2005/dzakcloud/internal/cryptox"
	"github.com/dmitrijs2005/dzakcloud/internal/dbx"
	"github.com/dmitrijs2005/dzakcloud/internal/server/auth"
	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/repomanager"
)

// MinPasswordLength is the shortest password accepted on register and reset.
const MinPasswordLength = 6

// UserService provides authentication-related operations:
//   - Register / Login: create users and verify credentials, minting tokens
//   - Profile / UpdateProfile: read and change the caller's account
//   - Authenticate / Logout: verify and revoke access tokens
//   - ResetPassword: operator password reset from the admin CLI
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenManager
	hashParams  cryptox.Params
}

// NewUserService constructs a UserService. tokens may be nil for callers
// that never issue or verify tokens (the admin CLI).
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenManager) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		hashParams:  cryptox.DefaultParams,
	}
}

// Register creates a user and returns it with a fresh access token.
// A taken e-mail yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	if len(password) < MinPasswordLength {
		return nil, "", fmt.Errorf("%w: password too short", common.ErrorValidation)
	}
	email = common.NormalizeEmail(email)

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, "", common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, "", fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := cryptox.HashPasswordWithParams([]byte(password), s.hashParams)
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash, FullName: name})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("error issuing token: %w", err)
	}
	return u, token, nil
}

// Login verifies credentials. Unknown e-mails and wrong passwords both
// yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)

	u, err := repo.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", fmt.Errorf("error looking up user: %w", err)
	}

	ok, err := cryptox.VerifyPassword([]byte(password), u.PasswordHash)
	if err != nil || !ok {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("error issuing token: %w", err)
	}
	return u, token, nil
}

// Authenticate resolves a bearer token to a user id.
func (s *UserService) Authenticate(ctx context.Context, token string) (int64, error) {
	info, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return 0, err
	}
	return info.UserID, nil
}

// Logout revokes token. Invalid or expired tokens are accepted silently.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return u, nil
}

// UpdateProfile changes name and/or e-mail. At least one must be given.
// An e-mail owned by another user yields common.ErrorAlreadyExists. The
// check and the update share one transaction.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, email *string) (*models.User, error) {
	if name == nil && email == nil {
		return nil, fmt.Errorf("%w: no fields to update", common.ErrorValidation)
	}
	if email != nil {
		normalized := common.NormalizeEmail(*email)
		email = &normalized
	}

	var u *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if email != nil {
			taken, err := repo.EmailTakenByOther(ctx, *email, userID)
			if err != nil {
				return fmt.Errorf("error checking e-mail: %w", err)
			}
			if taken {
				return common.ErrorAlreadyExists
			}
		}

		var err error
		u, err = repo.UpdateProfile(ctx, userID, name, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorAlreadyExists) {
				return err
			}
			return fmt.Errorf("error updating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ResetPassword sets a new password for the user with the given e-mail.
func (s *UserService) ResetPassword(ctx context.Context, email, password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", common.ErrorValidation, MinPasswordLength)
	}

	repo := s.repomanager.Users(s.db)

	u, err := repo.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		return err
	}

	hash, err := cryptox.HashPasswordWithParams([]byte(password), s.hashParams)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return repo.UpdatePassword(ctx, u.ID, hash)
}

// IsAdmin reports whether the user's e-mail is in admins.
func (s *UserService) IsAdmin(ctx context.Context, userID int64, admins []string) (bool, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return false, err
	}
	email := common.NormalizeEmail(u.Email)
	for _, a := range admins {
		if a == email {
			return true, nil
		}
	}
	return false, nil
}
