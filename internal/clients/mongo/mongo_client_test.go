package mongo

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"note-weave/internal/config"
	"note-weave/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const MongoTestURI = "mongodb://invalid/?connectTimeoutMS=1&serverSelectionTimeoutMS=1"

// stubDriver fails every call immediately.
type stubDriver struct{}

func (stubDriver) Connect(context.Context, *options.ClientOptions) (*mongo.Client, error) {
	return nil, context.DeadlineExceeded
}

func (stubDriver) Ping(context.Context, *mongo.Client) error { return context.DeadlineExceeded }

func (stubDriver) Disconnect(context.Context, *mongo.Client) error { return nil }

// reset clears the singleton without going through Shutdown.
func reset() {
	mu.Lock()
	client = nil
	db = nil
	initErr = nil
	mu.Unlock()

	initOnce = sync.Once{}
	shutdownOnce = sync.Once{}
	txnProbeOnce = sync.Once{}
	isReplicaSet.Store(false)
}

// withStubDriver swaps in stubDriver and a fresh singleton for one test.
func withStubDriver(t *testing.T) (config.Config, *slog.Logger) {
	t.Helper()
	old := drv
	drv = stubDriver{}
	reset()
	t.Cleanup(func() {
		drv = old
		reset()
	})

	cfg := config.Config{MongoURI: MongoTestURI, MongoDBName: "test", LogLevel: "error", LogFormat: "json"}
	log, err := logger.Init(cfg)
	require.NoError(t, err)
	return cfg, log
}

func TestMongoClientInitErrorIsCached(t *testing.T) {
	cfg, log := withStubDriver(t)

	client1, db1, err1 := Init(context.Background(), cfg, log)
	client2, db2, err2 := Init(context.Background(), cfg, log)

	assert.Nil(t, client1)
	assert.Nil(t, db1)
	assert.ErrorIs(t, err1, context.DeadlineExceeded)
	assert.Equal(t, client1, client2)
	assert.Equal(t, db1, db2)
	assert.Equal(t, err1, err2, "second Init returns the first outcome")
	assert.False(t, IsReplicaSet())
}

func TestMongoClientConcurrentInit(t *testing.T) {
	cfg, log := withStubDriver(t)

	const goroutines = 10
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	wg.Add(goroutines)
	for i := range goroutines {
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = Init(context.Background(), cfg, log)
		}(i)
	}
	wg.Wait()

	for i := range goroutines {
		assert.Error(t, errs[i])
		assert.Equal(t, errs[0], errs[i])
	}
	assert.Nil(t, Client())
	assert.Nil(t, DB())
}

func TestMongoClientShutdownIdempotency(t *testing.T) {
	cfg, log := withStubDriver(t)

	_, _, err := Init(context.Background(), cfg, log)
	require.Error(t, err)

	err1 := Shutdown(context.Background()) // client was never up
	err2 := Shutdown(context.Background())
	err3 := Shutdown(context.Background())

	assert.ErrorIs(t, err1, ErrNotInitialized)
	assert.ErrorIs(t, err2, ErrShutdown)
	assert.ErrorIs(t, err3, ErrShutdown)
	assert.Nil(t, Client())
	assert.Nil(t, DB())
}
