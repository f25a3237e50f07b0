package storage

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Supported primary engines. The set is closed: adding a backend means a
// new Backend implementation plus one case here.
const (
	EngineMySQL  = "mysql"
	EngineRedis  = "redis"
	EngineMemory = "memory"
)

// Options carries the connection handles the factory may draw from. Only
// the handle matching Engine has to be non-nil.
type Options struct {
	Engine string
	MySQL  *sqlx.DB
	Redis  *redis.Client

	// TTL applied by the redis engine; ignored by the others.
	RedisTTL time.Duration
}

// New selects the primary backend once at process start. This is the single
// dispatch point for backend polymorphism.
func New(opts Options) (Backend, error) {
	switch opts.Engine {
	case EngineMySQL:
		if opts.MySQL == nil {
			return nil, fmt.Errorf("storage: engine %q requires a mysql connection", opts.Engine)
		}
		return NewMySQL(opts.MySQL), nil
	case EngineRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("storage: engine %q requires a redis connection", opts.Engine)
		}
		return NewRedis(opts.Redis, opts.RedisTTL), nil
	case EngineMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown engine %q", opts.Engine)
	}
}
