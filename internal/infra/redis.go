package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client. The client serves two
// roles: the job queues (workers block on BRPOP) and the latest-run cache,
// so the pool must stay larger than the worker count or the blocking pops
// starve the cache reads.
func NewRedis(redisURL string, workerPoolSize int) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.PoolSize = workerPoolSize + 4
	opts.MinIdleConns = 1

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
