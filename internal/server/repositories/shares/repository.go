package shares

import (
	"context"

	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

type Repository interface {
	// Upsert creates the share or overwrites CanDownload on an existing one.
	Upsert(ctx context.Context, share *models.AssetShare) error
	// Delete removes the share. A missing row is not an error.
	Delete(ctx context.Context, assetID, toUserID string) error
	Get(ctx context.Context, assetID, toUserID string) (*models.AssetShare, error)
}
