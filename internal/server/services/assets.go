package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/dbx"
	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/config"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/assetvault/internal/textx"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50

	nonceBytes = 32
	reapBatch  = 100
)

// ObjectStore is the part of the object store the asset service needs.
type ObjectStore interface {
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// AssetService runs the asset lifecycle: upload tickets, integrity
// verification on finalize, sharing, deletion, listing and download URLs.
//
// Every write that depends on a caller-observed version is a conditional
// update in the database, so two requests racing on the same version
// cannot both succeed.
type AssetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	config      *config.Config
	log         logging.Logger
	now         func() time.Time
}

func NewAssetService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, cfg *config.Config, log logging.Logger) *AssetService {
	return &AssetService{
		db:          db,
		repomanager: m,
		store:       store,
		config:      cfg,
		log:         log.With("module", "assets"),
		now:         time.Now,
	}
}

// AllowedMime reports whether uploads of the given media type are accepted:
// any image/* or video/* subtype, or application/pdf. Parameters are ignored.
func AllowedMime(v string) bool {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return false
	}
	if mt == "application/pdf" {
		return true
	}
	major, minor, ok := strings.Cut(mt, "/")
	return ok && minor != "" && (major == "image" || major == "video")
}

// StoragePath namespaces object keys by owner and creation month.
func StoragePath(ownerID, assetID, filename string, t time.Time) string {
	return fmt.Sprintf("%s/%04d/%02d/%s-%s", ownerID, t.Year(), int(t.Month()), assetID, filename)
}

func (s *AssetService) CreateUploadURL(ctx context.Context, userID, filename, mimeType string, size int64) (*models.UploadGrant, error) {
	if userID == "" {
		return nil, common.ErrUnauthenticated
	}
	if !AllowedMime(mimeType) {
		return nil, fmt.Errorf("%w: mime type %q is not accepted", common.ErrBadRequest, mimeType)
	}
	if size <= 0 || size > s.config.MaxUploadSize {
		return nil, fmt.Errorf("%w: size must be between 1 and %d bytes", common.ErrBadRequest, s.config.MaxUploadSize)
	}

	nonce, err := common.MakeRandHexString(nonceBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBadRequest, err)
	}

	now := s.now().UTC()
	id := uuid.NewString()
	name := textx.SanitizeFilename(filename)

	asset := &models.Asset{
		ID:          id,
		OwnerID:     userID,
		Filename:    name,
		Mime:        strings.TrimSpace(mimeType),
		Size:        size,
		StoragePath: StoragePath(userID, id, name, now),
		Status:      models.AssetStatusUploading,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ticket := &models.UploadTicket{
		AssetID:   id,
		UserID:    userID,
		Nonce:     nonce,
		ExpiresAt: now.Add(s.config.UploadTicketTTL),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Assets(tx).Insert(ctx, asset); err != nil {
			return err
		}
		return s.repomanager.Tickets(tx).Insert(ctx, ticket)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: error saving upload ticket: %v", common.ErrBadRequest, err)
	}

	url, err := s.store.PresignPut(ctx, asset.StoragePath, s.config.UploadTicketTTL)
	if err != nil {
		if derr := s.repomanager.Assets(s.db).DeleteByID(ctx, id); derr != nil {
			s.log.Error(ctx, "failed to remove asset after presign error", "asset_id", id, "error", derr)
		}
		return nil, fmt.Errorf("%w: error signing upload url: %v", common.ErrBadRequest, err)
	}

	s.log.Info(ctx, "upload ticket issued", "asset_id", id, "owner_id", userID, "size", size)

	return &models.UploadGrant{
		AssetID:     id,
		StoragePath: asset.StoragePath,
		UploadURL:   url,
		ExpiresAt:   ticket.ExpiresAt,
		Nonce:       nonce,
	}, nil
}

// FinalizeUpload hashes the stored object and settles the asset as ready
// or corrupt. A finalize on an already consumed ticket returns the current
// asset without touching it.
func (s *AssetService) FinalizeUpload(ctx context.Context, userID, assetID, clientSha256 string, version int64) (*models.Asset, error) {
	asset, err := s.loadAuthorized(ctx, userID, assetID, RelationOwner)
	if err != nil {
		return nil, err
	}

	ticket, err := s.repomanager.Tickets(s.db).GetByAssetID(ctx, assetID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("upload ticket: %w", common.ErrorNotFound)
		}
		return nil, err
	}
	if ticket.UserID != userID {
		return nil, common.ErrForbidden
	}
	if ticket.Used {
		return asset, nil
	}

	if asset.Version != version {
		return nil, common.ErrVersionConflict
	}
	if ticket.Expired(s.now()) {
		return nil, fmt.Errorf("%w: upload ticket expired", common.ErrBadRequest)
	}

	sum, tooLarge, err := s.hashObject(ctx, asset.StoragePath)
	if err != nil {
		if _, serr := s.repomanager.Assets(s.db).SetStatus(ctx, assetID, version, models.AssetStatusCorrupt, nil); serr != nil {
			if errors.Is(serr, common.ErrVersionConflict) {
				return nil, serr
			}
			s.log.Error(ctx, "failed to mark asset corrupt", "asset_id", assetID, "error", serr)
		}
		s.log.Warn(ctx, "stored object unavailable", "asset_id", assetID, "error", err)
		return nil, fmt.Errorf("%w: stored object unavailable", common.ErrIntegrity)
	}

	match := !tooLarge && strings.EqualFold(sum, strings.TrimSpace(clientSha256))
	status := models.AssetStatusReady
	if !match {
		status = models.AssetStatusCorrupt
	}

	var updated *models.Asset
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		updated, err = s.repomanager.Assets(tx).SetStatus(ctx, assetID, version, status, &sum)
		if err != nil {
			return err
		}
		return s.repomanager.Tickets(tx).MarkUsed(ctx, assetID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "upload finalized", "asset_id", assetID, "status", string(status))

	if !match {
		if tooLarge {
			return nil, fmt.Errorf("%w: stored object exceeds %d bytes", common.ErrIntegrity, s.config.MaxUploadSize)
		}
		return nil, fmt.Errorf("%w: sha256 mismatch", common.ErrIntegrity)
	}
	return updated, nil
}

// hashObject streams at most MaxUploadSize+1 bytes of the object through
// SHA-256 and reports whether the limit was exceeded.
func (s *AssetService) hashObject(ctx context.Context, key string) (string, bool, error) {
	rc, err := s.store.Open(ctx, key)
	if err != nil {
		return "", false, err
	}
	defer rc.Close()

	h := sha256.New()
	n, err := io.Copy(h, io.LimitReader(rc, s.config.MaxUploadSize+1))
	if err != nil {
		return "", false, err
	}
	return hex.EncodeToString(h.Sum(nil)), n > s.config.MaxUploadSize, nil
}

func (s *AssetService) ShareAsset(ctx context.Context, userID, assetID, toEmail string, canDownload bool, version int64) (*models.Asset, error) {
	asset, err := s.guardMutation(ctx, userID, assetID, version)
	if err != nil {
		return nil, err
	}

	target, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(toEmail))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("user %q: %w", toEmail, common.ErrorNotFound)
		}
		return nil, err
	}
	if target.ID == userID {
		return asset, nil
	}

	var updated *models.Asset
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := s.repomanager.Shares(tx).Upsert(ctx, &models.AssetShare{
			AssetID:     assetID,
			ToUserID:    target.ID,
			CanDownload: canDownload,
		})
		if err != nil {
			return err
		}
		updated, err = s.repomanager.Assets(tx).BumpVersion(ctx, assetID, version)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "asset shared", "asset_id", assetID, "to_user_id", target.ID, "can_download", canDownload)
	return updated, nil
}

// RevokeShare removes a share if there is one. Unknown emails and absent
// shares are not errors; the version is bumped either way.
func (s *AssetService) RevokeShare(ctx context.Context, userID, assetID, toEmail string, version int64) (*models.Asset, error) {
	if _, err := s.guardMutation(ctx, userID, assetID, version); err != nil {
		return nil, err
	}

	target, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(toEmail))
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	var updated *models.Asset
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if target != nil {
			if err := s.repomanager.Shares(tx).Delete(ctx, assetID, target.ID); err != nil {
				return err
			}
		}
		var err error
		updated, err = s.repomanager.Assets(tx).BumpVersion(ctx, assetID, version)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "share revoked", "asset_id", assetID, "email", toEmail)
	return updated, nil
}

// DeleteAsset hard-deletes the row; tickets and shares cascade. The object
// is removed afterwards on a best-effort basis.
func (s *AssetService) DeleteAsset(ctx context.Context, userID, assetID string, version int64) (bool, error) {
	asset, err := s.guardMutation(ctx, userID, assetID, version)
	if err != nil {
		return false, err
	}

	if err := s.repomanager.Assets(s.db).Delete(ctx, assetID, version); err != nil {
		return false, err
	}

	if err := s.store.Delete(ctx, asset.StoragePath); err != nil {
		s.log.Warn(ctx, "failed to delete stored object", "asset_id", assetID, "path", asset.StoragePath, "error", err)
	}

	s.log.Info(ctx, "asset deleted", "asset_id", assetID)
	return true, nil
}

// ListAssets returns a page of assets visible to userID, newest first.
// after is the RFC 3339 creation time of the last asset already seen.
func (s *AssetService) ListAssets(ctx context.Context, userID, after string, first int, q string) (*models.AssetPage, error) {
	if userID == "" {
		return nil, common.ErrUnauthenticated
	}

	first = min(max(first, 1), MaxPageSize)

	var before *time.Time
	if after != "" {
		t, err := time.Parse(time.RFC3339Nano, after)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed cursor", common.ErrBadRequest)
		}
		before = &t
	}

	rows, err := s.repomanager.Assets(s.db).ListVisible(ctx, userID, before, q, first+1)
	if err != nil {
		return nil, err
	}

	page := &models.AssetPage{Assets: rows}
	if len(rows) > first {
		page.Assets = rows[:first]
		page.HasNextPage = true
	}
	return page, nil
}

// EncodeCursor turns a creation time into a ListAssets cursor.
func EncodeCursor(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (s *AssetService) GetDownloadURL(ctx context.Context, userID, assetID string) (*models.DownloadGrant, error) {
	relation := RelationOwner
	if s.config.AllowSharedDownload {
		relation = RelationDownloader
	}

	asset, err := s.loadAuthorized(ctx, userID, assetID, relation)
	if err != nil {
		return nil, err
	}

	expires := s.now().Add(s.config.DownloadURLTTL)
	url, err := s.store.PresignGet(ctx, asset.StoragePath, s.config.DownloadURLTTL)
	if err != nil {
		return nil, err
	}
	return &models.DownloadGrant{URL: url, ExpiresAt: expires}, nil
}

// ReapAbandonedUploads deletes assets whose upload ticket expired more than
// ReapGrace ago without ever being finalized. It returns how many were removed.
func (s *AssetService) ReapAbandonedUploads(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.config.ReapGrace)

	repo := s.repomanager.Assets(s.db)
	stale, err := repo.ListAbandoned(ctx, cutoff, reapBatch)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, a := range stale {
		if err := repo.Delete(ctx, a.ID, a.Version); err != nil {
			if errors.Is(err, common.ErrVersionConflict) {
				continue
			}
			return removed, err
		}
		removed++
		if err := s.store.Delete(ctx, a.StoragePath); err != nil {
			s.log.Warn(ctx, "failed to delete abandoned object", "asset_id", a.ID, "error", err)
		}
	}

	if removed > 0 {
		s.log.Info(ctx, "abandoned uploads reaped", "count", removed)
	}
	return removed, nil
}
