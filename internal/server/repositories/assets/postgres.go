// Package assets provides the PostgreSQL repository for asset rows.
package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/dbx"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

const assetColumns = `a.id, a.owner_id, a.filename, a.mime, a.size, a.storage_path, a.sha256, a.status, a.version, a.created_at, a.updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (*models.Asset, error) {
	var (
		a      models.Asset
		sha    sql.NullString
		status string
	)
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Filename, &a.Mime, &a.Size, &a.StoragePath,
		&sha, &status, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if sha.Valid {
		a.SHA256 = &sha.String
	}
	a.Status = models.AssetStatus(status)
	return &a, nil
}

// Insert stores a new asset row as given (id, version and timestamps included).
func (r *PostgresRepository) Insert(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (id, owner_id, filename, mime, size, storage_path, sha256, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		asset.ID, asset.OwnerID, asset.Filename, asset.Mime, asset.Size, asset.StoragePath,
		asset.SHA256, string(asset.Status), asset.Version, asset.CreatedAt, asset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the asset or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets a WHERE a.id = $1`

	a, err := scanAsset(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// SetStatus writes status and digest and bumps the version, but only while
// the row is still at expectedVersion.
func (r *PostgresRepository) SetStatus(ctx context.Context, id string, expectedVersion int64, status models.AssetStatus, sha256 *string) (*models.Asset, error) {
	query := `
		UPDATE assets a
		SET status = $3, sha256 = COALESCE($4, a.sha256), version = a.version + 1, updated_at = now()
		WHERE a.id = $1 AND a.version = $2
		RETURNING ` + assetColumns

	return r.casReturning(ctx, query, id, expectedVersion, string(status), sha256)
}

// BumpVersion increments the version of an otherwise unchanged asset, used
// when share state attached to it changes.
func (r *PostgresRepository) BumpVersion(ctx context.Context, id string, expectedVersion int64) (*models.Asset, error) {
	query := `
		UPDATE assets a
		SET version = a.version + 1, updated_at = now()
		WHERE a.id = $1 AND a.version = $2
		RETURNING ` + assetColumns

	return r.casReturning(ctx, query, id, expectedVersion)
}

func (r *PostgresRepository) casReturning(ctx context.Context, query string, args ...any) (*models.Asset, error) {
	a, err := scanAsset(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrVersionConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// Delete removes the asset if it is still at expectedVersion.
func (r *PostgresRepository) Delete(ctx context.Context, id string, expectedVersion int64) error {
	query := `DELETE FROM assets WHERE id = $1 AND version = $2`

	res, err := r.db.ExecContext(ctx, query, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOne(res, common.ErrVersionConflict)
}

// DeleteByID removes the asset unconditionally. Deleting a missing row is
// not an error.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM assets WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListVisible returns up to limit assets the user owns or has been shared,
// newest first, created strictly before `before` when it is set, with the
// filename containing query (case-insensitive) when it is not empty.
func (r *PostgresRepository) ListVisible(ctx context.Context, userID string, before *time.Time, query string, limit int) ([]*models.Asset, error) {
	q := `
		SELECT ` + assetColumns + `
		FROM assets a
		WHERE (a.owner_id = $1 OR EXISTS (
				SELECT 1 FROM asset_shares s WHERE s.asset_id = a.id AND s.to_user_id = $1))
		  AND ($2::timestamptz IS NULL OR a.created_at < $2)
		  AND a.filename ILIKE $3 ESCAPE '\'
		ORDER BY a.created_at DESC
		LIMIT $4
	`
	cursor := sql.NullTime{}
	if before != nil {
		cursor = sql.NullTime{Time: *before, Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, q, userID, cursor, ContainsPattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select assets: %w", err)
	}
	return collect(rows)
}

// ListAbandoned returns assets still uploading whose ticket is unused and
// expired before expiredBefore, oldest ticket first.
func (r *PostgresRepository) ListAbandoned(ctx context.Context, expiredBefore time.Time, limit int) ([]*models.Asset, error) {
	q := `
		SELECT ` + assetColumns + `
		FROM assets a
		JOIN upload_tickets t ON t.asset_id = a.id
		WHERE a.status = 'uploading' AND NOT t.used AND t.expires_at < $1
		ORDER BY t.expires_at
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, expiredBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select abandoned assets: %w", err)
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]*models.Asset, error) {
	defer rows.Close()

	var result []*models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern matching any string that contains
// s literally. An empty s matches everything.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
