// Package users implements persistence of registered users.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hobbytracker/internal/common"
	"github.com/dmitrijs2005/hobbytracker/internal/dbx"
	"github.com/dmitrijs2005/hobbytracker/internal/server/models"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
)

const (
	tableUsers  = "users"
	colID       = "id"
	colUsername = "username"
	colEmail    = "email"
	colPassword = "password"
)

var dialect = goqu.Dialect("postgres")

// PostgresRepository implements Repository over a dbx.DBTX (*sqlx.DB or *sqlx.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByUsernameOrEmail selects users colliding on either field.
func (r *PostgresRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) ([]*models.User, error) {
	query, args, err := dialect.From(tableUsers).
		Select(colID, colUsername, colEmail).
		Where(goqu.Or(
			goqu.C(colUsername).Eq(username),
			goqu.C(colEmail).Eq(email),
		)).
		Order(goqu.I(colID).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	users := make([]*models.User, 0)
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

// Create inserts a user. A unique constraint violation is reported as
// common.ErrorIntegrity wrapping the driver error.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query, args, err := dialect.Insert(tableUsers).
		Cols(colUsername, colEmail, colPassword).
		Vals(goqu.Vals{user.Username, user.Email, user.Password}).
		Returning(colID, colUsername, colEmail).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	created := &models.User{}
	if err := r.db.GetContext(ctx, created, query, args...); err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %w", common.ErrorIntegrity, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query, args, err := dialect.From(tableUsers).
		Select(colID, colUsername, colEmail).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	user := &models.User{}
	if err := r.db.GetContext(ctx, user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
