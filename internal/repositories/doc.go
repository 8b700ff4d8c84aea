// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [AdminRepository] : Verified administrator phone numbers, upserted on verification
//   - [MigrationRepository] : Migration sessions with the SQL-guarded Transition used by the pipeline
//   - [BackupRepository] : Opaque encrypted backup records with latest-first retrieval
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// Not-found is reported with the shared.ErrNotFound sentinel so HTTP handlers
// can map it to 404 instead of a generic server error. The one deliberate
// exception is [BackupRepository.Latest]: an owner with no backups is an
// expected state and yields (nil, nil).
package repositories
