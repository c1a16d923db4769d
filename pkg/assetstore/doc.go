// Package assetstore persists image assets in a single keyed object store.
//
// Every backend implements [Store]: one keyspace (key = asset id), no
// secondary indices, upsert semantics on Put (last write wins) and
// idempotent Delete. Get reports [ErrNotFound] for missing ids.
//
// # Backends
//
//   - [MemoryStore]: in-process map, used by tests and ephemeral sessions
//   - [FileStore]: one JSON file per asset in a hashed directory layout
//   - [SQLiteStore]: a single table in a local SQLite database (default)
//   - [RedisStore]: one key per asset under a configurable prefix
//   - [MongoStore]: one document per asset keyed by _id
//
// [Open] builds a backend from [Options]. Network-backed stores retry
// transient failures with [RetryWithBackoff].
package assetstore
