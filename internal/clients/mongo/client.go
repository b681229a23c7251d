// Package mongo is the document store behind auth.UsersRepo and notes.Repository.
package mongo

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"note-weave/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	// ErrNotInitialized is returned by Shutdown when Init never produced a client.
	ErrNotInitialized = errors.New("mongo client not initialized")
	// ErrShutdown is returned by every Shutdown after the first.
	ErrShutdown = errors.New("mongo client already shut down")
)

var (
	drv driver = mongoDriver{}

	client  *mongo.Client
	db      *mongo.Database
	initErr error
	mu      sync.Mutex

	initOnce     sync.Once
	shutdownOnce sync.Once
)

// Init connects to MongoDB once. Later calls return the first outcome,
// including its error.
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	initOnce.Do(func() {
		opts := options.Client().
			ApplyURI(cfg.MongoURI).
			SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
			SetConnectTimeout(10 * time.Second).
			SetAppName("note-weave")

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		cli, err := drv.Connect(ctx, opts)
		if err != nil {
			log.Error("failed to connect to mongo", "error", err)
			setState(nil, nil, err)
			return
		}

		if err := drv.Ping(ctx, cli); err != nil {
			log.Error("failed to ping mongo", "error", err)
			_ = drv.Disconnect(ctx, cli)
			setState(nil, nil, err)
			return
		}

		database := cli.Database(cfg.MongoDBName)
		probeReplicaSet(ctx, database, log)
		setState(cli, database, nil)

		log.Info("successfully connected to mongo", "db", cfg.MongoDBName, "replica_set", IsReplicaSet())
	})

	mu.Lock()
	defer mu.Unlock()
	return client, db, initErr
}

func setState(cli *mongo.Client, database *mongo.Database, err error) {
	mu.Lock()
	defer mu.Unlock()
	client, db, initErr = cli, database, err
}

// Client returns the singleton MongoDB client instance.
func Client() *mongo.Client {
	mu.Lock()
	defer mu.Unlock()
	return client
}

// DB returns the singleton MongoDB database instance.
func DB() *mongo.Database {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// Shutdown disconnects the client. Only the first call does any work.
func Shutdown(ctx context.Context) error {
	err := ErrShutdown
	shutdownOnce.Do(func() {
		mu.Lock()
		cli := client
		client, db = nil, nil
		mu.Unlock()

		if cli == nil {
			err = ErrNotInitialized
			return
		}

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		err = drv.Disconnect(ctx, cli)
	})
	return err
}
