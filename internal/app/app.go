package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/drstein77/shophub/internal/catalog"
	"github.com/drstein77/shophub/internal/config"
	"github.com/drstein77/shophub/internal/controllers"
	"github.com/drstein77/shophub/internal/dbkeeper"
	"github.com/drstein77/shophub/internal/logger"
	"github.com/drstein77/shophub/internal/middleware"
	"github.com/drstein77/shophub/internal/storage"
)

// ErrDatabaseUnavailable is returned when the configured database does not answer.
var ErrDatabaseUnavailable = errors.New("database is unavailable")

// shutdownTimeout bounds the HTTP drain when the root context is canceled.
const shutdownTimeout = 5 * time.Second

type Server struct {
	Log *logger.Logger

	ctx    context.Context
	option *config.Options
	stop   chan struct{}
	once   sync.Once

	mx       sync.Mutex
	stopping bool
	srv      *http.Server
	catalog  *catalog.Store
	keeper   *dbkeeper.DBKeeper
}

// NewServer parses the configuration and builds the logger.
func NewServer(ctx context.Context, option *config.Options) (*Server, error) {
	nLogger, err := logger.NewLogger(option.LogLevel())
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &Server{
		Log:    nLogger,
		ctx:    ctx,
		option: option,
		stop:   make(chan struct{}),
	}, nil
}

// NewSource picks the catalog source: postgres when a DSN is configured,
// otherwise the HTTP endpoint. The returned keeper is nil for HTTP.
func NewSource(ctx context.Context, option *config.Options, log *logger.Logger) (catalog.Source, *dbkeeper.DBKeeper, error) {
	if option.DataBaseDSN() == "" {
		timeout, ok := option.CatalogTimeout()
		if !ok {
			log.Warn("Invalid catalog timeout, using default", zap.Duration("timeout", timeout))
		}
		log.Info("Using HTTP catalog", zap.String("url", option.CatalogURL()))
		return catalog.NewHTTPSource(option.CatalogURL(), timeout), nil, nil
	}

	keeper, err := dbkeeper.NewDBKeeper(ctx, option.DataBaseDSN, log.Named("db"))
	if err != nil {
		return nil, nil, err
	}
	if !keeper.Ping(ctx) {
		keeper.Close()
		return nil, nil, ErrDatabaseUnavailable
	}
	if err := dbkeeper.Migrate(option.DataBaseDSN(), option.MigrationsPath(), log); err != nil {
		keeper.Close()
		return nil, nil, err
	}
	return keeper, keeper, nil
}

// Serve starts the catalog load and the HTTP server and blocks until the
// server is shut down, either by Shutdown or by canceling the root context.
func (server *Server) Serve() error {
	source, keeper, err := NewSource(server.ctx, server.option, server.Log)
	if err != nil {
		return err
	}
	store := catalog.NewStore(source, server.Log.Named("catalog"))

	session := storage.NewMemoryStorage(server.ctx, store, server.Log.Named("storage"))
	basecontr := controllers.NewBaseController(session, server.Log.Named("http"))

	// create router and mount routes
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(server.Log.Named("access")))
	r.Use(chimw.Recoverer)
	r.Mount("/", basecontr.Route())

	srv := &http.Server{
		Addr:              server.option.RunAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	server.mx.Lock()
	if server.stopping || server.ctx.Err() != nil {
		server.mx.Unlock()
		if keeper != nil {
			keeper.Close()
		}
		server.Log.Info("Shutdown requested before the server started")
		return nil
	}
	server.srv, server.catalog, server.keeper = srv, store, keeper
	server.mx.Unlock()

	g, gctx := errgroup.WithContext(server.ctx)
	g.Go(func() error {
		server.Log.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-server.stop:
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	})
	g.Go(func() error {
		store.Start(gctx)
		<-store.Done()
		st := store.Status()
		server.Log.Info("Initial catalog load finished", zap.String("state", string(st.State)), zap.Int("count", st.Count))
		return nil
	})

	err = g.Wait()
	store.Close()
	return err
}

// Shutdown stops accepting requests, cancels an in-flight catalog load and
// releases the database pool. It is safe to call before or during Serve.
func (server *Server) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	server.once.Do(func() { close(server.stop) })

	server.mx.Lock()
	server.stopping = true
	srv, store, keeper := server.srv, server.catalog, server.keeper
	server.mx.Unlock()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			server.Log.Error("Server shutdown failed", zap.Error(err))
		}
	}
	if store != nil {
		store.Close()
	}
	if keeper != nil {
		keeper.Close()
	}
	server.Log.Info("Server stopped")
	_ = server.Log.Sync()
}
