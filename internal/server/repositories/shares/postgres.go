// Package shares stores asset grants to other users in PostgreSQL.
package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/dbx"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, share *models.AssetShare) error {
	query :=
		`INSERT INTO asset_shares (asset_id, to_user_id, can_download)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (asset_id, to_user_id) DO UPDATE SET can_download = EXCLUDED.can_download
		 `

	_, err := r.db.ExecContext(ctx, query, share.AssetID, share.ToUserID, share.CanDownload)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, assetID, toUserID string) error {
	query := `DELETE FROM asset_shares WHERE asset_id = $1 AND to_user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, assetID, toUserID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, assetID, toUserID string) (*models.AssetShare, error) {
	query :=
		`SELECT asset_id, to_user_id, can_download, created_at FROM asset_shares
		 WHERE asset_id = $1 AND to_user_id = $2
		 `

	s := &models.AssetShare{}
	err := r.db.QueryRowContext(ctx, query, assetID, toUserID).
		Scan(&s.AssetID, &s.ToUserID, &s.CanDownload, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
