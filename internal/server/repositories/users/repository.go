package users

import (
	"context"

	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

// Repository is the user directory. Emails match case-insensitively.
type Repository interface {
	Upsert(ctx context.Context, email string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
