// Package redis provides the Redis connection and the cache used to memoise
// remote lookups: UniProt accession searches, fetched sequences, and PubChem
// SMILES resolutions are all cached here so repeated jobs against the same
// target do not hammer the public APIs.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arqgene/dockprep/internal/config"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// Client wraps the go-redis client with the service configuration.
type Client struct {
	rdb    redis.UniversalClient
	logger logging.Logger
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout+time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "redis connection failed")
	}

	log.Info("connected to redis", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))
	return &Client{rdb: rdb, logger: log}, nil
}

// Ping checks liveness; the health endpoint calls this.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
