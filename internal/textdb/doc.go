// Package textdb provides concurrent-safe storage for records kept as
// delimited text lines, one file per record type.
//
// # Overview
//
// The package centers around [Table], a generic container that stores rows
// as pipe-delimited lines in a plain text file. Unlike a cached store,
// Table trusts the file: every read re-scans it. [CachedTable] is the
// inverted variant that keeps a full in-memory mirror and treats the file
// as a snapshot. [Allocator] issues monotonic per-table IDs backed by an
// append-only companion file.
//
// # Concurrency: Pessimistic Locking
//
// Each table holds its own lock for the entire read-modify-write cycle of
// a mutation. This guarantees success without retries at the cost of
// throughput under contention, which is acceptable for local file storage
// with low concurrency. Tables never share locks, so operations on
// different record types do not block each other.
//
// # File Format
//
// One UTF-8 line per record, fields separated by '|' in a fixed order,
// trailing newline, no header. Field values must not contain the
// delimiter; a value that does corrupts its row. Full-file rewrites go
// through a temp file in the same directory followed by an atomic rename,
// so a reader never observes a partially written file.
package textdb
