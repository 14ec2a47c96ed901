package client

import (
	"context"

	"github.com/dmitrijs2005/hobbytracker/internal/client/models"
)

type Client interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	Ping(ctx context.Context) error
}
