package shares

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestUpsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+asset_shares.*ON\s+CONFLICT\s+\(asset_id,\s*to_user_id\)\s+DO\s+UPDATE\s+SET\s+can_download\s*=\s*EXCLUDED\.can_download\s*$`

	mock.ExpectExec(q).WithArgs("a1", "u2", true).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("a1", "u2", false).WillReturnError(errors.New("db down"))

	if err := repo.Upsert(context.Background(), &models.AssetShare{AssetID: "a1", ToUserID: "u2", CanDownload: true}); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	err := repo.Upsert(context.Background(), &models.AssetShare{AssetID: "a1", ToUserID: "u2"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete_MissingRowIsFine(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM asset_shares WHERE asset_id = $1 AND to_user_id = $2`)).
		WithArgs("a1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "a1", "u2"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	q := `(?s)^SELECT\s+asset_id,\s*to_user_id,\s*can_download,\s*created_at\s+FROM\s+asset_shares`

	mock.ExpectQuery(q).
		WithArgs("a1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"asset_id", "to_user_id", "can_download", "created_at"}).
			AddRow("a1", "u2", true, created))
	mock.ExpectQuery(q).
		WithArgs("a1", "u3").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background(), "a1", "u2")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !got.CanDownload || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected share: %+v", got)
	}

	if _, err := repo.Get(context.Background(), "a1", "u3"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
