package users

import (
	"context"

	"github.com/dmitrijs2005/hobbytracker/internal/server/models"
)

type Repository interface {
	// FindByUsernameOrEmail returns every user whose username or email
	// matches. An empty slice means both values are free.
	FindByUsernameOrEmail(ctx context.Context, username, email string) ([]*models.User, error)
	// Create inserts the user and returns the stored row with its generated id.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
