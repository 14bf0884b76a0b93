package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
	"github.com/google/uuid"
)

// Relation is the relationship a caller needs to an asset.
type Relation int

const (
	// RelationOwner admits only the owner.
	RelationOwner Relation = iota
	// RelationDownloader admits the owner and share recipients with can_download.
	RelationDownloader
)

func (s *AssetService) authorize(ctx context.Context, asset *models.Asset, userID string, rel Relation) error {
	if asset.OwnerID == userID {
		return nil
	}
	if rel != RelationDownloader {
		return common.ErrForbidden
	}

	share, err := s.repomanager.Shares(s.db).Get(ctx, asset.ID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrForbidden
		}
		return err
	}
	if !share.CanDownload {
		return common.ErrForbidden
	}
	return nil
}

func (s *AssetService) loadAuthorized(ctx context.Context, userID, assetID string, rel Relation) (*models.Asset, error) {
	if userID == "" {
		return nil, common.ErrUnauthenticated
	}
	if _, err := uuid.Parse(assetID); err != nil {
		return nil, fmt.Errorf("asset %q: %w", assetID, common.ErrorNotFound)
	}

	asset, err := s.repomanager.Assets(s.db).GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, asset, userID, rel); err != nil {
		return nil, err
	}
	return asset, nil
}

// guardMutation is the common precondition of owner mutations: the asset
// exists, the caller owns it and saw its current version.
func (s *AssetService) guardMutation(ctx context.Context, userID, assetID string, version int64) (*models.Asset, error) {
	asset, err := s.loadAuthorized(ctx, userID, assetID, RelationOwner)
	if err != nil {
		return nil, err
	}
	if asset.Version != version {
		return nil, common.ErrVersionConflict
	}
	return asset, nil
}
