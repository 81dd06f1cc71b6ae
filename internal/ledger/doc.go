// Package ledger keeps a SQLite history of transfer runs.
//
// Each run is one row in runs with its counters; every per-item outcome is a
// row in details keyed by run id and position. The database lives at
// reporting.history_db and uses WAL mode with busy retries so a history
// query can run alongside a transfer.
package ledger
