package mongo

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// 0 = stand-alone, 1 = replica set
var isReplicaSet atomic.Bool

var txnProbeOnce sync.Once

// IsReplicaSet reports whether the current deployment is a replica set.
// Callers MUST treat the result as a hint (cached & eventually consistent).
func IsReplicaSet() bool { return isReplicaSet.Load() }

// probeReplicaSet asks the server once whether it belongs to a replica set,
// which decides if multi-document transactions are available.
func probeReplicaSet(ctx context.Context, database *mongo.Database, log *slog.Logger) {
	txnProbeOnce.Do(func() {
		var hello struct {
			SetName string `bson:"setName"`
		}
		if err := database.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
			log.Warn("replica set probe failed, assuming stand-alone", "error", err)
			return
		}
		isReplicaSet.Store(hello.SetName != "")
	})
}
