// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/pastoralhub/internal/app/directory"
	streamfeature "github.com/dalemusser/pastoralhub/internal/app/features/stream"
	"github.com/dalemusser/pastoralhub/internal/app/system/identity"
	"github.com/dalemusser/pastoralhub/internal/app/system/ratelimit"
	"github.com/dalemusser/pastoralhub/internal/app/system/suggest"
	"github.com/dalemusser/pastoralhub/internal/app/system/tasks"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the back-end clients opened by ConnectDB.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Identity  identity.Provider
	Suggester suggest.Suggester
	Redis     *redis.Client // nil keeps pending confirmations in memory

	// Services is allocated by ConnectDB and filled by Startup. WAFFLE passes
	// DBDeps by value, so the pointer is what lets BuildHandler and Shutdown
	// see what Startup started.
	Services *Services
}

// Services are the long-running components started after the schema is in
// place, plus the limiters and the stream broker BuildHandler creates.
// Shutdown stops them all.
type Services struct {
	Directory *directory.Directory
	Scheduler *tasks.Scheduler

	LoginLimiter   *ratelimit.LoginLimiter
	SuggestLimiter *ratelimit.Limiter // nil when suggest_rate_per_minute is 0
	Stream         *streamfeature.Handler
}
