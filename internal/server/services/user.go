// Package services contains server-side business logic. This file implements
// UserService, which registers users and reads them back.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hobbytracker/internal/common"
	"github.com/dmitrijs2005/hobbytracker/internal/dbx"
	"github.com/dmitrijs2005/hobbytracker/internal/logging"
	"github.com/dmitrijs2005/hobbytracker/internal/server/models"
	"github.com/dmitrijs2005/hobbytracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hobbytracker/internal/server/repositories/users"
	"github.com/jmoiron/sqlx"
)

// ConflictError is returned by Register when the uniqueness check finds an
// existing user. Fields lists which of "username" and "email" collided.
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	if len(e.Fields) == 0 {
		return "username or email already registered"
	}
	return strings.Join(e.Fields, " and ") + " already registered"
}

func (e *ConflictError) Unwrap() error { return common.ErrorConflict }

// UserService provides the registration flow:
//   - Register: uniqueness check and insert inside one transaction
//   - Get: read a user back by id
type UserService struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	logger      logging.Logger
}

// NewUserService constructs a UserService over the shared pool.
func NewUserService(db *sqlx.DB, m repomanager.RepositoryManager, h PasswordHasher, l logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      h,
		logger:      l.With("module", "user_service"),
	}
}

// Register creates a user after checking that neither username nor email is
// taken. The check and the insert share a transaction; any failure rolls it
// back, so either the user is fully stored or nothing is.
//
// Returned errors match (errors.Is) one of common.ErrorValidation,
// common.ErrorConflict (as *ConflictError), common.ErrorIntegrity or
// common.ErrorInternal. Causes of internal errors are logged, not returned.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", common.ErrorValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if err := ensureUnique(ctx, repo, username, email); err != nil {
			return err
		}

		u, err := repo.Create(ctx, &models.User{Username: username, Email: email, Password: hash})
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		created = u
		return nil
	})

	if err != nil {
		var conflict *ConflictError
		switch {
		case errors.As(err, &conflict):
			s.logger.Info(ctx, "registration rejected", "username", username, "reason", conflict.Error())
			return nil, conflict
		case errors.Is(err, common.ErrorIntegrity):
			s.logger.Warn(ctx, "registration rejected by constraint", "username", username, "constraint", dbx.ConstraintName(err))
			return nil, common.ErrorIntegrity
		default:
			s.logger.Error(ctx, "registration failed", "username", username, "error", err)
			return nil, common.ErrorInternal
		}
	}

	s.logger.Info(ctx, "user registered", "id", created.ID, "username", created.Username)
	return created, nil
}

// Get returns the user with the given id or common.ErrorNotFound.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "user lookup failed", "id", id, "error", err)
		return nil, common.ErrorInternal
	}

	return user, nil
}

// --- helpers below ---

func ensureUnique(ctx context.Context, repo users.Repository, username, email string) error {
	existing, err := repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return fmt.Errorf("error checking uniqueness: %w", err)
	}
	if len(existing) == 0 {
		return nil
	}

	var usernameTaken, emailTaken bool
	for _, u := range existing {
		usernameTaken = usernameTaken || u.Username == username
		emailTaken = emailTaken || u.Email == email
	}

	conflict := &ConflictError{}
	if usernameTaken {
		conflict.Fields = append(conflict.Fields, "username")
	}
	if emailTaken {
		conflict.Fields = append(conflict.Fields, "email")
	}
	return conflict
}
