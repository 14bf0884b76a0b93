// Package tickets stores single-use upload tickets in PostgreSQL.
package tickets

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

func (r *PostgresRepository) Insert(ctx context.Context, ticket *models.UploadTicket) error {
	query :=
		`INSERT INTO upload_tickets (asset_id, user_id, nonce, expires_at, used)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		ticket.AssetID, ticket.UserID, ticket.Nonce, ticket.ExpiresAt, ticket.Used)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByAssetID(ctx context.Context, assetID string) (*models.UploadTicket, error) {
	query :=
		`SELECT asset_id, user_id, nonce, expires_at, used FROM upload_tickets
		 WHERE asset_id = $1
		 `

	t := &models.UploadTicket{}
	err := r.db.QueryRowContext(ctx, query, assetID).
		Scan(&t.AssetID, &t.UserID, &t.Nonce, &t.ExpiresAt, &t.Used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, assetID string) error {
	query :=
		`UPDATE upload_tickets SET used = true
		 WHERE asset_id = $1 AND used = false
		 `

	res, err := r.db.ExecContext(ctx, query, assetID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOne(res, common.ErrVersionConflict)
}
