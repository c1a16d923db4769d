// Package assets manages decoded image resources on top of an
// [assetstore.Store].
//
// # Cache
//
// [Cache] is an arena keyed by asset id. Each entry holds an object URL,
// the decoded [Image] and a reference count. [Cache.Acquire] returns a
// cached entry immediately, joins an in-flight load for the same id, or
// starts exactly one load (one store read, one decode) that every
// concurrent caller shares. A failed load is reported to all waiters and
// leaves no trace, so the next Acquire retries. [Cache.Release] drops a
// reference; at zero the object URL is revoked and the entry evicted at
// once, with no grace period.
//
// # Object URLs
//
// [URLRegistry] hands out blob:serenity/<uuid> URLs for in-memory blobs
// and can serve them over HTTP to local renderers.
//
// # Garbage collection
//
// [Collector] deletes assets that no node references. See
// [Collector.CollectGarbage] for the two passes and the re-check that
// protects assets re-attached while a collection is running.
package assets
