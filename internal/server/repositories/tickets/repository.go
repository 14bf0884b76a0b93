package tickets

import (
	"context"

	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

// Repository persists upload tickets. There is at most one ticket per asset.
type Repository interface {
	Insert(ctx context.Context, ticket *models.UploadTicket) error
	GetByAssetID(ctx context.Context, assetID string) (*models.UploadTicket, error)
	// MarkUsed flips used from false to true. It returns
	// common.ErrVersionConflict when the ticket was already consumed.
	MarkUsed(ctx context.Context, assetID string) error
}
