package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/assetvault/internal/dbx"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/assets"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/shares"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/tickets"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Assets(db dbx.DBTX) assets.Repository
	Tickets(db dbx.DBTX) tickets.Repository
	Shares(db dbx.DBTX) shares.Repository
	Users(db dbx.DBTX) users.Repository
}
