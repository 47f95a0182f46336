// Package store provides a SQLite-backed RDF triple store.
//
// Terms are interned once in the terms table; triples reference them by id
// and are unique per (s, p, o). Every load is recorded with a UUIDv7 id and
// a monotonically increasing seq.
//
// # Deterministic Results
//
// Queries are compiled by internal/querysql and ALWAYS end in an ORDER BY
// with a stable tiebreaker, so the same data and query produce the same
// rows in the same order on every run.
//
// # Database Files
//
// A store is either a scratch in-memory database (MemoryPath) or a file
// that keeps its triples between runs. File databases use WAL journaling
// with synchronous=NORMAL; both kinds enforce foreign keys. The layout
// version lives in PRAGMA user_version and Open refuses any database
// stamped with a version it does not read.
package store
