package assets

import (
	"context"
	"time"

	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

// Repository persists asset rows. Every mutating call after Insert is a
// compare-and-swap on the version column and fails with
// common.ErrVersionConflict when the stored version moved on.
type Repository interface {
	Insert(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	SetStatus(ctx context.Context, id string, expectedVersion int64, status models.AssetStatus, sha256 *string) (*models.Asset, error)
	BumpVersion(ctx context.Context, id string, expectedVersion int64) (*models.Asset, error)
	Delete(ctx context.Context, id string, expectedVersion int64) error
	DeleteByID(ctx context.Context, id string) error
	ListVisible(ctx context.Context, userID string, before *time.Time, query string, limit int) ([]*models.Asset, error)
	ListAbandoned(ctx context.Context, expiredBefore time.Time, limit int) ([]*models.Asset, error)
}
