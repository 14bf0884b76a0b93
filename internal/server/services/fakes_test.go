package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/dbx"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/assets"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/shares"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/tickets"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/users"
)

// memDB backs all fake repositories so cascades and visibility behave like
// the real schema.
type memDB struct {
	assets  map[string]*models.Asset
	tickets map[string]*models.UploadTicket
	shares  map[[2]string]*models.AssetShare
	users   map[string]*models.User

	insertTicketErr error
}

func newMemDB() *memDB {
	return &memDB{
		assets:  map[string]*models.Asset{},
		tickets: map[string]*models.UploadTicket{},
		shares:  map[[2]string]*models.AssetShare{},
		users:   map[string]*models.User{},
	}
}

func (m *memDB) addUser(id, email string) {
	m.users[id] = &models.User{ID: id, Email: email}
}

func clone(a *models.Asset) *models.Asset {
	c := *a
	if a.SHA256 != nil {
		h := *a.SHA256
		c.SHA256 = &h
	}
	return &c
}

// -------- assets --------

type fakeAssetsRepo struct {
	assets.Repository
	m *memDB
}

func (f *fakeAssetsRepo) Insert(ctx context.Context, a *models.Asset) error {
	f.m.assets[a.ID] = clone(a)
	return nil
}

func (f *fakeAssetsRepo) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	a, ok := f.m.assets[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(a), nil
}

func (f *fakeAssetsRepo) cas(id string, version int64) (*models.Asset, error) {
	a, ok := f.m.assets[id]
	if !ok || a.Version != version {
		return nil, common.ErrVersionConflict
	}
	a.Version++
	a.UpdatedAt = a.UpdatedAt.Add(time.Second)
	return a, nil
}

func (f *fakeAssetsRepo) SetStatus(ctx context.Context, id string, version int64, status models.AssetStatus, sha *string) (*models.Asset, error) {
	a, err := f.cas(id, version)
	if err != nil {
		return nil, err
	}
	a.Status = status
	if sha != nil {
		h := *sha
		a.SHA256 = &h
	}
	return clone(a), nil
}

func (f *fakeAssetsRepo) BumpVersion(ctx context.Context, id string, version int64) (*models.Asset, error) {
	a, err := f.cas(id, version)
	if err != nil {
		return nil, err
	}
	return clone(a), nil
}

func (f *fakeAssetsRepo) Delete(ctx context.Context, id string, version int64) error {
	a, ok := f.m.assets[id]
	if !ok || a.Version != version {
		return common.ErrVersionConflict
	}
	return f.DeleteByID(ctx, id)
}

func (f *fakeAssetsRepo) DeleteByID(ctx context.Context, id string) error {
	delete(f.m.assets, id)
	delete(f.m.tickets, id)
	for k := range f.m.shares {
		if k[0] == id {
			delete(f.m.shares, k)
		}
	}
	return nil
}

func (f *fakeAssetsRepo) ListVisible(ctx context.Context, userID string, before *time.Time, q string, limit int) ([]*models.Asset, error) {
	var out []*models.Asset
	for _, a := range f.m.assets {
		_, shared := f.m.shares[[2]string{a.ID, userID}]
		if a.OwnerID != userID && !shared {
			continue
		}
		if before != nil && !a.CreatedAt.Before(*before) {
			continue
		}
		if !strings.Contains(strings.ToLower(a.Filename), strings.ToLower(q)) {
			continue
		}
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAssetsRepo) ListAbandoned(ctx context.Context, expiredBefore time.Time, limit int) ([]*models.Asset, error) {
	var out []*models.Asset
	for id, t := range f.m.tickets {
		a := f.m.assets[id]
		if a != nil && a.Status == models.AssetStatusUploading && !t.Used && t.ExpiresAt.Before(expiredBefore) {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

// -------- tickets --------

type fakeTicketsRepo struct {
	tickets.Repository
	m *memDB
}

func (f *fakeTicketsRepo) Insert(ctx context.Context, t *models.UploadTicket) error {
	if f.m.insertTicketErr != nil {
		return f.m.insertTicketErr
	}
	c := *t
	f.m.tickets[t.AssetID] = &c
	return nil
}

func (f *fakeTicketsRepo) GetByAssetID(ctx context.Context, id string) (*models.UploadTicket, error) {
	t, ok := f.m.tickets[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeTicketsRepo) MarkUsed(ctx context.Context, id string) error {
	t, ok := f.m.tickets[id]
	if !ok || t.Used {
		return common.ErrVersionConflict
	}
	t.Used = true
	return nil
}

// -------- shares --------

type fakeSharesRepo struct {
	shares.Repository
	m *memDB
}

func (f *fakeSharesRepo) Upsert(ctx context.Context, s *models.AssetShare) error {
	c := *s
	f.m.shares[[2]string{s.AssetID, s.ToUserID}] = &c
	return nil
}

func (f *fakeSharesRepo) Delete(ctx context.Context, assetID, toUserID string) error {
	delete(f.m.shares, [2]string{assetID, toUserID})
	return nil
}

func (f *fakeSharesRepo) Get(ctx context.Context, assetID, toUserID string) (*models.AssetShare, error) {
	s, ok := f.m.shares[[2]string{assetID, toUserID}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *s
	return &c, nil
}

// -------- users --------

type fakeUsersRepo struct {
	users.Repository
	m *memDB
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.m.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

// -------- manager --------

type fakeRepoManager struct {
	repomanager.RepositoryManager
	m *memDB
}

func (r *fakeRepoManager) Assets(dbx.DBTX) assets.Repository   { return &fakeAssetsRepo{m: r.m} }
func (r *fakeRepoManager) Tickets(dbx.DBTX) tickets.Repository { return &fakeTicketsRepo{m: r.m} }
func (r *fakeRepoManager) Shares(dbx.DBTX) shares.Repository   { return &fakeSharesRepo{m: r.m} }
func (r *fakeRepoManager) Users(dbx.DBTX) users.Repository     { return &fakeUsersRepo{m: r.m} }

// -------- object store --------

type fakeStore struct {
	objects    map[string][]byte
	presignErr error
	deleted    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://s3.test/put/" + key, nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://s3.test/get/" + key, nil
}

func (f *fakeStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}
