package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"note-weave/internal/clients/mongo"
	"note-weave/internal/clients/postgres"
	"note-weave/internal/clients/redis"
	"note-weave/internal/config"
	"note-weave/internal/logger"
	"note-weave/internal/utils/crypto"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 25 * time.Second

// store is the opened persistence backend.
type store struct {
	deps  routerDeps
	close func(ctx context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Create bootstrap logger for early errors
	bootstrapLog := log.New(os.Stderr, "bootstrap: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog.Printf("config load failed: %v", err)
		os.Exit(1)
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		bootstrapLog.Printf("logger init failed: %v", err)
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		// Validate only lets this through in dev mode.
		secret, err := crypto.RandomSecret(32)
		if err != nil {
			logg.Error("failed to generate dev secret", "error", err)
			os.Exit(1)
		}
		cfg.JWTSecret = secret
		logg.Warn("JWT_SECRET is empty, using an ephemeral secret: sessions will not survive a restart")
	}

	stopProfiling, err := startProfiling(cfg, logg)
	if err != nil {
		logg.Warn("profiling disabled", "error", err)
	}

	st, err := openStore(ctx, cfg, logg)
	if err != nil {
		logg.Error("store init", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	st.deps.cfg = cfg

	var limiterCloser io.Closer
	if cfg.RedisURL != "" {
		storage, err := redis.New(ctx, cfg.RedisURL, "limiter")
		if err != nil {
			logg.Error("redis init", "error", err)
			os.Exit(1)
		}
		st.deps.limiterStorage = storage
		limiterCloser = storage
		logg.Info("rate limiter uses redis storage")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	st.deps.registry = reg

	logg.Info("starting NoteWeave", "port", cfg.AppPort, "store", cfg.StoreDriver)

	// Setup router and start server
	app, hub := setupRouter(st.deps)
	portStr := fmt.Sprintf(":%d", cfg.AppPort)

	g.Go(func() error {
		err := app.Listen(portStr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		conns, dropped := hub.Stats()
		logg.Info("shutting down", "live_connections", conns, "dropped_events", dropped)

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		if limiterCloser != nil {
			if err := limiterCloser.Close(); err != nil {
				logg.Warn("failed to close redis", "error", err)
			}
		}
		stopProfiling()
		return st.close(shutdownCtx)
	})

	// Wait and exit
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("fatal", "err", err)
		os.Exit(1)
	}
	logg.Info("graceful shutdown complete")
}

// openStore connects the configured backend and returns its repositories.
func openStore(ctx context.Context, cfg config.Config, logg *slog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		cli, db, err := mongo.Init(ctx, cfg, logg)
		if err != nil {
			return nil, err
		}
		logg.Info("connected to mongo", "db", db.Name())

		users, err := mongo.NewUsersRepo(ctx, db)
		if err != nil {
			return nil, err
		}
		notesRepo, err := mongo.NewNotesRepo(ctx, db)
		if err != nil {
			return nil, err
		}
		return &store{
			deps: routerDeps{
				users: users,
				notes: notesRepo,
				ping: func(ctx context.Context) error {
					return cli.Ping(ctx, readpref.Primary())
				},
			},
			close: mongo.Shutdown,
		}, nil

	default:
		db, err := postgres.Open(ctx, cfg, logg)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &store{
			deps: routerDeps{
				users: postgres.NewUsersRepo(db),
				notes: postgres.NewNotesRepo(db),
				ping:  db.PingContext,
			},
			close: func(context.Context) error { return db.Close() },
		}, nil
	}
}
