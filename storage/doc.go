// Package storage has persistent implementations of tracelib.Store.
//
// Both stores keep the same logical table: address, nullable lat and
// lng, is_private flag. FileStore is an append-only log of JSON rows,
// handy for a single instance. PostgresStore shares results between
// many instances.
package storage
