package store

import (
	"context"

	"github.com/matzehuels/obvious/pkg/config"
	oerrors "github.com/matzehuels/obvious/pkg/errors"
)

// Open builds the cache selected by cfg: a [NullCache] for "none", a
// [FileCache] for "file" and a [RedisCache] for "redis".
func Open(ctx context.Context, cfg config.StoreConfig) (Cache, error) {
	switch cfg.Kind {
	case config.StoreNone:
		return NewNullCache(), nil
	case config.StoreFile:
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, oerrors.Wrap(oerrors.ErrCodeConfiguration, err, "open file store %s", cfg.Dir)
		}
		return c, nil
	case config.StoreRedis:
		c, err := NewRedisCache(ctx, RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Prefix: "obvious:"})
		if err != nil {
			return nil, oerrors.Wrap(oerrors.ErrCodeConfiguration, err, "connect to redis at %s", cfg.RedisAddr)
		}
		return c, nil
	}
	return nil, oerrors.New(oerrors.ErrCodeConfiguration, "unknown store kind %q", cfg.Kind)
}
