// Package sqlite persists trajectories, fixes, markers, and statistics
// snapshots (SPEC_FULL.md §3, §4.5 expansion) in a schema-migrated SQLite
// database.
//
// Responsibilities: opening/migrating the database (embedded migrations via
// embed.FS + golang-migrate's iofs source driver), and CRUD for
// TrajectoryRecord/FixRecord/StatsSnapshotRecord, plus marker persistence
// keyed directly on stats.Marker. The detector
// and simulator packages never import this package; a caller (the CLI's
// `filter`/`serve`/`report` subcommands) is the only thing that wires
// stats.ProcessingResult into storage.
package sqlite
