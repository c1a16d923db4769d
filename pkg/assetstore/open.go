package assetstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists every backend name.
var Backends = []string{BackendSQLite, BackendFile, BackendMemory, BackendRedis, BackendMongo}

// Options selects and configures a backend.
type Options struct {
	Backend string
	// DataDir holds the file store and the default SQLite database.
	DataDir string
	// SQLitePath overrides DataDir/assets.db.
	SQLitePath string
	Redis      RedisOptions
	Mongo      MongoOptions
}

// Open builds the store named by opts.Backend. An empty backend selects
// SQLite.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return wrap(NewFileStore(filepath.Join(opts.DataDir, "assets")))
	case BackendSQLite, "":
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.DataDir, "assets.db")
		}
		return wrap(NewSQLiteStore(path))
	case BackendRedis:
		return wrap(NewRedisStore(ctx, opts.Redis))
	case BackendMongo:
		return wrap(NewMongoStore(ctx, opts.Mongo))
	}
	return nil, fmt.Errorf("unknown asset backend %q (want one of %s)", opts.Backend, strings.Join(Backends, ", "))
}

// Location describes where opts keeps its data, for display.
func Location(opts Options) string {
	switch strings.ToLower(opts.Backend) {
	case BackendMemory:
		return "(in memory)"
	case BackendFile:
		return filepath.Join(opts.DataDir, "assets")
	case BackendSQLite, "":
		if opts.SQLitePath != "" {
			return opts.SQLitePath
		}
		return filepath.Join(opts.DataDir, "assets.db")
	case BackendRedis:
		prefix := opts.Redis.Prefix
		if prefix == "" {
			prefix = DefaultRedisPrefix
		}
		return fmt.Sprintf("redis://%s/%d %s*", opts.Redis.Addr, opts.Redis.DB, prefix)
	case BackendMongo:
		db, coll := opts.Mongo.Database, opts.Mongo.Collection
		if db == "" {
			db = DefaultMongoDatabase
		}
		if coll == "" {
			coll = DefaultMongoCollection
		}
		return fmt.Sprintf("%s %s.%s", opts.Mongo.URI, db, coll)
	}
	return opts.Backend
}

// wrap converts a constructor result to a Store without leaking a typed
// nil on error.
func wrap[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
