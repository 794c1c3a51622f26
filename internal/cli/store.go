package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksolve/pkg/cache"
	"github.com/matzehuels/stacksolve/pkg/deps"
	"github.com/matzehuels/stacksolve/pkg/deps/catalog"
	"github.com/matzehuels/stacksolve/pkg/deps/mongostore"
	"github.com/matzehuels/stacksolve/pkg/errors"
)

// storeFlags selects and tunes the metadata store. Non-empty flags override
// the config file.
type storeFlags struct {
	catalog  string
	mongoURI string
	mongoDB  string
	redisURL string
	noCache  bool
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "TOML package catalog")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "MongoDB URI (overrides --catalog; env "+envMongoURI+")")
	cmd.Flags().StringVar(&f.mongoDB, "mongo-db", "", "MongoDB database (default: "+mongostore.DefaultDatabase+")")
	cmd.Flags().StringVar(&f.redisURL, "redis-url", "", "cache lookups in Redis instead of the cache directory (env "+envRedisURL+")")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the metadata cache")
}

// merge returns the store config with flag values applied.
func (f storeFlags) merge(cfg *Config) (StoreConfig, CacheConfig) {
	s, c := cfg.Store, cfg.Cache
	if f.catalog != "" {
		s.Catalog = f.catalog
	}
	if f.mongoURI != "" {
		s.MongoURI = f.mongoURI
	}
	if f.mongoDB != "" {
		s.MongoDB = f.mongoDB
	}
	if f.redisURL != "" {
		c.RedisURL = f.redisURL
	}
	if f.noCache {
		c.Disabled = true
	}
	return s, c
}

// openStore opens the configured store. Remote stores are wrapped in the
// metadata cache. The returned function releases every connection.
func (c *CLI) openStore(ctx context.Context, f storeFlags) (deps.Store, func(), error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	sc, cc := f.merge(cfg)
	logger := loggerFromContext(ctx)

	if sc.MongoURI == "" {
		if sc.Catalog == "" {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no package source: pass --catalog or --mongo-uri")
		}
		cat, err := catalog.Load(sc.Catalog)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("catalog loaded", "path", sc.Catalog, "packages", cat.Len())
		return cat, func() {}, nil
	}

	ms, err := mongostore.Connect(ctx, sc.MongoURI, sc.MongoDB)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeMetadataFetch, err, "open store")
	}
	logger.Debug("mongo connected", "store", ms.Name())
	closeStore := func() {
		if err := ms.Close(context.Background()); err != nil {
			logger.Warn("close mongo", "err", err)
		}
	}

	if cc.Disabled {
		return ms, closeStore, nil
	}
	mc, err := openCache(ctx, cc)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return deps.NewCached(ms, mc, nil, cc.TTL.Duration), func() {
		_ = mc.Close()
		closeStore()
	}, nil
}

// openCache returns the Redis cache when a URL is configured and the file
// cache otherwise.
func openCache(ctx context.Context, cc CacheConfig) (cache.Cache, error) {
	if cc.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cc.RedisURL)
		if err != nil {
			return nil, err
		}
		loggerFromContext(ctx).Debug("redis cache enabled")
		return rc, nil
	}
	dir := cc.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}
