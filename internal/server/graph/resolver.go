package graph

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/auth"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
	"github.com/dmitrijs2005/assetvault/internal/server/services"
	graphql "github.com/graph-gophers/graphql-go"
)

// Resolver is the root resolver for both Query and Mutation.
type Resolver struct {
	svc AssetService
	log logging.Logger
}

func (r *Resolver) MyAssets(ctx context.Context, args struct {
	After *string
	First *int32
	Q     *string
}) (*connectionResolver, error) {
	first := services.DefaultPageSize
	if args.First != nil {
		first = int(*args.First)
	}
	page, err := r.svc.ListAssets(ctx, auth.UserIDFromContext(ctx), deref(args.After), first, deref(args.Q))
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return &connectionResolver{page: page}, nil
}

func (r *Resolver) CreateUploadURL(ctx context.Context, args struct {
	Filename string
	Mime     string
	Size     int32
}) (*uploadTicketResolver, error) {
	g, err := r.svc.CreateUploadURL(ctx, auth.UserIDFromContext(ctx), args.Filename, args.Mime, int64(args.Size))
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return &uploadTicketResolver{g}, nil
}

func (r *Resolver) FinalizeUpload(ctx context.Context, args struct {
	AssetID      graphql.ID
	ClientSha256 string
	Version      int32
}) (*assetResolver, error) {
	a, err := r.svc.FinalizeUpload(ctx, auth.UserIDFromContext(ctx), string(args.AssetID), args.ClientSha256, int64(args.Version))
	return r.asset(ctx, a, err)
}

func (r *Resolver) GetDownloadURL(ctx context.Context, args struct{ AssetID graphql.ID }) (*downloadURLResolver, error) {
	g, err := r.svc.GetDownloadURL(ctx, auth.UserIDFromContext(ctx), string(args.AssetID))
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return &downloadURLResolver{g}, nil
}

func (r *Resolver) ShareAsset(ctx context.Context, args struct {
	AssetID     graphql.ID
	ToEmail     string
	CanDownload bool
	Version     int32
}) (*assetResolver, error) {
	a, err := r.svc.ShareAsset(ctx, auth.UserIDFromContext(ctx), string(args.AssetID), args.ToEmail, args.CanDownload, int64(args.Version))
	return r.asset(ctx, a, err)
}

func (r *Resolver) RevokeShare(ctx context.Context, args struct {
	AssetID graphql.ID
	ToEmail string
	Version int32
}) (*assetResolver, error) {
	a, err := r.svc.RevokeShare(ctx, auth.UserIDFromContext(ctx), string(args.AssetID), args.ToEmail, int64(args.Version))
	return r.asset(ctx, a, err)
}

func (r *Resolver) DeleteAsset(ctx context.Context, args struct {
	AssetID graphql.ID
	Version int32
}) (bool, error) {
	ok, err := r.svc.DeleteAsset(ctx, auth.UserIDFromContext(ctx), string(args.AssetID), int64(args.Version))
	if err != nil {
		return false, r.toGraphQLError(ctx, err)
	}
	return ok, nil
}

func (r *Resolver) asset(ctx context.Context, a *models.Asset, err error) (*assetResolver, error) {
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return &assetResolver{a}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type assetResolver struct{ a *models.Asset }

func (r *assetResolver) ID() graphql.ID          { return graphql.ID(r.a.ID) }
func (r *assetResolver) OwnerID() graphql.ID     { return graphql.ID(r.a.OwnerID) }
func (r *assetResolver) Filename() string        { return r.a.Filename }
func (r *assetResolver) Mime() string            { return r.a.Mime }
func (r *assetResolver) Size() int32             { return int32(r.a.Size) }
func (r *assetResolver) StoragePath() string     { return r.a.StoragePath }
func (r *assetResolver) Sha256() *string         { return r.a.SHA256 }
func (r *assetResolver) Status() string          { return strings.ToUpper(string(r.a.Status)) }
func (r *assetResolver) Version() int32          { return int32(r.a.Version) }
func (r *assetResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.a.CreatedAt} }
func (r *assetResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.a.UpdatedAt} }

type connectionResolver struct{ page *models.AssetPage }

func (r *connectionResolver) Edges() []*edgeResolver {
	edges := make([]*edgeResolver, 0, len(r.page.Assets))
	for _, a := range r.page.Assets {
		edges = append(edges, &edgeResolver{a})
	}
	return edges
}

func (r *connectionResolver) PageInfo() *pageInfoResolver {
	pi := &pageInfoResolver{hasNext: r.page.HasNextPage}
	if n := len(r.page.Assets); n > 0 {
		c := services.EncodeCursor(r.page.Assets[n-1].CreatedAt)
		pi.endCursor = &c
	}
	return pi
}

type edgeResolver struct{ a *models.Asset }

func (r *edgeResolver) Cursor() string       { return services.EncodeCursor(r.a.CreatedAt) }
func (r *edgeResolver) Node() *assetResolver { return &assetResolver{r.a} }

type pageInfoResolver struct {
	endCursor *string
	hasNext   bool
}

func (r *pageInfoResolver) EndCursor() *string { return r.endCursor }
func (r *pageInfoResolver) HasNextPage() bool  { return r.hasNext }

type uploadTicketResolver struct{ g *models.UploadGrant }

func (r *uploadTicketResolver) AssetID() graphql.ID     { return graphql.ID(r.g.AssetID) }
func (r *uploadTicketResolver) StoragePath() string     { return r.g.StoragePath }
func (r *uploadTicketResolver) UploadURL() string       { return r.g.UploadURL }
func (r *uploadTicketResolver) ExpiresAt() graphql.Time { return graphql.Time{Time: r.g.ExpiresAt} }
func (r *uploadTicketResolver) Nonce() string           { return r.g.Nonce }

type downloadURLResolver struct{ g *models.DownloadGrant }

func (r *downloadURLResolver) URL() string             { return r.g.URL }
func (r *downloadURLResolver) ExpiresAt() graphql.Time { return graphql.Time{Time: r.g.ExpiresAt} }
