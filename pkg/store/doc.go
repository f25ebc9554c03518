// Package store persists snapshots of tables, networks and trees.
//
// # Caches
//
// A [Cache] is a byte store with optional expiry. Three implementations are
// provided:
//
//   - [FileCache]: JSON entry files under a directory, for CLI use
//   - [RedisCache]: shared storage in redis, with retry on connection errors
//   - [NullCache]: stores nothing, for disabled snapshots
//
// [Open] builds the cache named by the [store] section of the configuration.
//
// # Snapshots
//
// [Snapshots] encodes data structures with pkg/io and stores them under
// keys produced by a [Keyer]:
//
//	snaps := store.NewSnapshots(cache, store.WithTTL(24*time.Hour))
//	info, err := snaps.SaveTable(ctx, "people", people)
//	...
//	people, err = snaps.LoadTable(ctx, "people")
//
// Loading a snapshot that does not exist fails with NOT_FOUND. Each save and
// load reports to the store hooks in pkg/observability.
package store
