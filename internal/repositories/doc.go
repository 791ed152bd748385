// Package repositories implements SQLite persistence for export history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [ExportRunRepository] : One row per category file written or attempted
//   - [ExportLedger] : Adapter recording engine results through the repository
//
// Sequence numbers provide stable, human-readable ordering (e.g. run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
