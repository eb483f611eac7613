// Package storage provides the key/value persistence the client state stores
// write through to, and that hydration reads back at startup.
//
// Backends:
//   - SQLite   : local file, schema managed by embedded goose migrations.
//   - Redis    : shared profile on a redis server, keys under a prefix.
//   - Memory   : process-local map, for tests and throwaway runs.
//   - Encrypted: wraps any backend and seals values with AES-GCM.
//
// A nil Storage means persistence is unavailable: stores stay memory-only and
// hydration starts cold.
package storage
