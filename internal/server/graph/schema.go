// Package graph exposes the asset service as a GraphQL API.
package graph

import (
	"context"
	_ "embed"

	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
	graphql "github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaSDL string

const maxQueryDepth = 8

// AssetService is what the resolvers call into.
type AssetService interface {
	CreateUploadURL(ctx context.Context, userID, filename, mimeType string, size int64) (*models.UploadGrant, error)
	FinalizeUpload(ctx context.Context, userID, assetID, clientSha256 string, version int64) (*models.Asset, error)
	ShareAsset(ctx context.Context, userID, assetID, toEmail string, canDownload bool, version int64) (*models.Asset, error)
	RevokeShare(ctx context.Context, userID, assetID, toEmail string, version int64) (*models.Asset, error)
	DeleteAsset(ctx context.Context, userID, assetID string, version int64) (bool, error)
	ListAssets(ctx context.Context, userID, after string, first int, q string) (*models.AssetPage, error)
	GetDownloadURL(ctx context.Context, userID, assetID string) (*models.DownloadGrant, error)
}

// NewSchema parses the embedded SDL and binds it to the resolvers.
func NewSchema(svc AssetService, log logging.Logger) *graphql.Schema {
	r := &Resolver{svc: svc, log: log.With("module", "graph")}
	return graphql.MustParseSchema(schemaSDL, r, graphql.MaxDepth(maxQueryDepth))
}
