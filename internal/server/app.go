// Package server wires the asset vault together: database, migrations,
// object storage, the asset service and its HTTP and gRPC endpoints.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/config"
	"github.com/dmitrijs2005/assetvault/internal/server/graph"
	"github.com/dmitrijs2005/assetvault/internal/server/httpapi"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/assetvault/internal/server/services"
	"github.com/dmitrijs2005/assetvault/internal/server/storage"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/assetvault/internal/server/grpc"
)

// Reaper is the periodic cleanup the App drives.
type Reaper interface {
	ReapAbandonedUploads(ctx context.Context) (int, error)
}

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	reaper Reaper
	http   runner
	grpc   runner
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(logging.Options{Backend: c.LogBackend, Level: c.LogLevel, Path: c.LogPath})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, storage.Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	svc := services.NewAssetService(db, rm, store, c, logger)

	gin.SetMode(gin.ReleaseMode)
	schema := graph.NewSchema(svc, logger)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		reaper: svc,
		http:   httpapi.NewServer(c, schema, db, logger),
		grpc:   gs.NewHealthServer(c.EndpointAddrGRPC, db, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// serve runs r until ctx ends. A failing server takes the whole app down.
func (app *App) serve(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

func (app *App) reapLoop(ctx context.Context) {
	if app.config.ReapInterval <= 0 {
		return
	}

	ticker := time.NewTicker(app.config.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.reaper.ReapAbandonedUploads(ctx); err != nil {
				app.logger.Error(ctx, "reaper failed", "error", err)
			}
		}
	}
}

// Run blocks until a termination signal arrives, ctx is cancelled, or one
// of the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "http", app.http)
	}()
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "grpc", app.grpc)
	}()
	go func() {
		defer wg.Done()
		app.reapLoop(ctx)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
