package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/arcfix-nav/driftfilter/internal/geo"
	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
	"github.com/arcfix-nav/driftfilter/internal/stats"
)

// TrajectoryRecord is a persisted, named sequence of fixes plus its markers
// and statistics snapshots (SPEC_FULL.md §3 expansion).
type TrajectoryRecord struct {
	ID        uuid.UUID
	Name      string
	Source    string
	CreatedAt int64
}

// FixRecord is one fix within a trajectory, tagged with the detector's
// accept/reject decision.
type FixRecord struct {
	Seq      int
	Fix      gpsfix.Fix
	Accepted bool
}

// StatsSnapshotRecord is a stats.Snapshot scoped to a trajectory and a
// point in time.
type StatsSnapshotRecord struct {
	TakenAt  int64
	Snapshot stats.Snapshot
}

// CreateTrajectory inserts a new trajectory row and returns its generated ID.
func (db *DB) CreateTrajectory(name, source string, createdAt int64) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO trajectories (id, name, source, created_at) VALUES (?, ?, ?, ?)`,
		id.String(), name, source, createdAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("sqlite: create trajectory: %w", err)
	}
	return id, nil
}

// LatestTrajectoryID returns the most recently created trajectory's ID, for
// callers (like a live dashboard) that want "whatever was filtered last"
// without tracking an ID themselves.
func (db *DB) LatestTrajectoryID() (uuid.UUID, error) {
	var idStr string
	row := db.QueryRow(`SELECT id FROM trajectories ORDER BY created_at DESC LIMIT 1`)
	if err := row.Scan(&idStr); err != nil {
		return uuid.Nil, fmt.Errorf("sqlite: latest trajectory: %w", err)
	}
	return uuid.Parse(idStr)
}

// GetTrajectory fetches a trajectory by ID.
func (db *DB) GetTrajectory(id uuid.UUID) (TrajectoryRecord, error) {
	var rec TrajectoryRecord
	var idStr string
	row := db.QueryRow(`SELECT id, name, source, created_at FROM trajectories WHERE id = ?`, id.String())
	if err := row.Scan(&idStr, &rec.Name, &rec.Source, &rec.CreatedAt); err != nil {
		return TrajectoryRecord{}, fmt.Errorf("sqlite: get trajectory %s: %w", id, err)
	}
	rec.ID, _ = uuid.Parse(idStr)
	return rec, nil
}

// InsertFixes bulk-inserts a trajectory's fix records inside one transaction.
func (db *DB) InsertFixes(trajectoryID uuid.UUID, fixes []FixRecord) error {
	if len(fixes) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin insert fixes: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO fixes (trajectory_id, seq, lat, lng, time_ms, accepted) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert fixes: %w", err)
	}
	defer stmt.Close()

	for _, f := range fixes {
		if _, err := stmt.Exec(trajectoryID.String(), f.Seq, f.Fix.Lat, f.Fix.Lng, f.Fix.TimeMs, boolToInt(f.Accepted)); err != nil {
			return fmt.Errorf("sqlite: insert fix seq %d: %w", f.Seq, err)
		}
	}
	return tx.Commit()
}

// ListFixes returns every fix recorded for a trajectory, ordered by seq.
func (db *DB) ListFixes(trajectoryID uuid.UUID) ([]FixRecord, error) {
	rows, err := db.Query(
		`SELECT seq, lat, lng, time_ms, accepted FROM fixes WHERE trajectory_id = ? ORDER BY seq`,
		trajectoryID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list fixes: %w", err)
	}
	defer rows.Close()

	var out []FixRecord
	for rows.Next() {
		var r FixRecord
		var accepted int
		if err := rows.Scan(&r.Seq, &r.Fix.Lat, &r.Fix.Lng, &r.Fix.TimeMs, &accepted); err != nil {
			return nil, fmt.Errorf("sqlite: scan fix: %w", err)
		}
		r.Accepted = accepted != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertMarkers bulk-inserts a trajectory's markers inside one transaction.
func (db *DB) InsertMarkers(trajectoryID uuid.UUID, markers []stats.Marker) error {
	if len(markers) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin insert markers: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO markers (trajectory_id, kind, lat, lng, fix_time_ms, description, marker_time_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert markers: %w", err)
	}
	defer stmt.Close()

	for _, m := range markers {
		if _, err := stmt.Exec(trajectoryID.String(), string(m.Kind), m.Position.Lat, m.Position.Lng, m.Position.TimeMs, m.Description, m.TimeMs); err != nil {
			return fmt.Errorf("sqlite: insert marker: %w", err)
		}
	}
	return tx.Commit()
}

// ListMarkers returns every marker recorded for a trajectory, in insertion order.
func (db *DB) ListMarkers(trajectoryID uuid.UUID) ([]stats.Marker, error) {
	rows, err := db.Query(
		`SELECT kind, lat, lng, fix_time_ms, description, marker_time_ms FROM markers WHERE trajectory_id = ? ORDER BY id`,
		trajectoryID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list markers: %w", err)
	}
	defer rows.Close()

	var out []stats.Marker
	for rows.Next() {
		var m stats.Marker
		var kind string
		if err := rows.Scan(&kind, &m.Position.Lat, &m.Position.Lng, &m.Position.TimeMs, &m.Description, &m.TimeMs); err != nil {
			return nil, fmt.Errorf("sqlite: scan marker: %w", err)
		}
		m.Kind = stats.MarkerKind(kind)
		out = append(out, m)
	}
	return out, rows.Err()
}

// InsertStatsSnapshot persists one periodic Snapshot for a trajectory.
func (db *DB) InsertStatsSnapshot(trajectoryID uuid.UUID, takenAt int64, s stats.Snapshot) error {
	var basePointLat, basePointLng sql.NullFloat64
	if s.BasePoint != nil {
		basePointLat = sql.NullFloat64{Float64: s.BasePoint.Lat, Valid: true}
		basePointLng = sql.NullFloat64{Float64: s.BasePoint.Lng, Valid: true}
	}
	_, err := db.Exec(`
		INSERT INTO stats_snapshots (
			trajectory_id, taken_at, window_length, accepted_count, rejected_count,
			rebuild_count, has_base_point, base_radius, consecutive_drift_count,
			base_age_ms, base_expired, base_point_lat, base_point_lng,
			processing_time_ms, filtering_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trajectoryID.String(), takenAt, s.WindowLength, s.AcceptedCount, s.RejectedCount,
		s.RebuildCount, boolToInt(s.HasBasePoint), s.BaseRadius, s.ConsecutiveDriftCount,
		s.BaseAgeMs, boolToInt(s.BaseExpired), basePointLat, basePointLng,
		s.ProcessingTimeMs, s.FilteringRate,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert stats snapshot: %w", err)
	}
	return nil
}

// ListStatsSnapshots returns every snapshot recorded for a trajectory,
// ordered by when it was taken.
func (db *DB) ListStatsSnapshots(trajectoryID uuid.UUID) ([]StatsSnapshotRecord, error) {
	rows, err := db.Query(`
		SELECT taken_at, window_length, accepted_count, rejected_count, rebuild_count,
		       has_base_point, base_radius, consecutive_drift_count, base_age_ms,
		       base_expired, base_point_lat, base_point_lng, processing_time_ms, filtering_rate
		FROM stats_snapshots WHERE trajectory_id = ? ORDER BY taken_at`,
		trajectoryID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list stats snapshots: %w", err)
	}
	defer rows.Close()

	var out []StatsSnapshotRecord
	for rows.Next() {
		var r StatsSnapshotRecord
		var hasBase, expired int
		var baseLat, baseLng sql.NullFloat64
		if err := rows.Scan(
			&r.TakenAt, &r.Snapshot.WindowLength, &r.Snapshot.AcceptedCount, &r.Snapshot.RejectedCount,
			&r.Snapshot.RebuildCount, &hasBase, &r.Snapshot.BaseRadius, &r.Snapshot.ConsecutiveDriftCount,
			&r.Snapshot.BaseAgeMs, &expired, &baseLat, &baseLng, &r.Snapshot.ProcessingTimeMs, &r.Snapshot.FilteringRate,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan stats snapshot: %w", err)
		}
		r.Snapshot.HasBasePoint = hasBase != 0
		r.Snapshot.BaseExpired = expired != 0
		if baseLat.Valid && baseLng.Valid {
			r.Snapshot.BasePoint = &geo.Point{Lat: baseLat.Float64, Lng: baseLng.Float64}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// fixKey identifies a fix by its full position+time tuple, not just its
// timestamp, since gpsfix.Fix only promises monotone non-decreasing
// TimeMs values across a trajectory.
type fixKey struct {
	lat, lng float64
	timeMs   int64
}

func fixKeyOf(f gpsfix.Fix) fixKey {
	return fixKey{lat: f.Lat, lng: f.Lng, timeMs: f.TimeMs}
}

// SaveProcessingResult persists a full stats.ProcessingResult against a
// named trajectory: the trajectory row, every processed fix tagged by
// accept/reject, every marker, and one statistics snapshot taken at
// takenAt. Returns the new trajectory's ID.
func (db *DB) SaveProcessingResult(name, source string, createdAt int64, result stats.ProcessingResult, takenAt int64) (uuid.UUID, error) {
	id, err := db.CreateTrajectory(name, source, createdAt)
	if err != nil {
		return uuid.Nil, err
	}

	// Keyed on the full (Lat,Lng,TimeMs) tuple rather than TimeMs alone:
	// gpsfix.Fix only guarantees monotone non-decreasing timestamps, so a
	// trajectory can carry duplicate TimeMs values across distinct fixes.
	// The count lets each accepted occurrence of a tuple be consumed once,
	// so a duplicate that was actually rejected isn't also marked accepted.
	remaining := make(map[fixKey]int, len(result.ProcessedPoints))
	for _, f := range result.ProcessedPoints {
		remaining[fixKeyOf(f)]++
	}

	records := make([]FixRecord, len(result.OriginalPoints))
	for i, f := range result.OriginalPoints {
		key := fixKeyOf(f)
		accepted := remaining[key] > 0
		if accepted {
			remaining[key]--
		}
		records[i] = FixRecord{Seq: i, Fix: f, Accepted: accepted}
	}

	if err := db.InsertFixes(id, records); err != nil {
		return uuid.Nil, err
	}
	if err := db.InsertMarkers(id, result.Markers); err != nil {
		return uuid.Nil, err
	}
	if err := db.InsertStatsSnapshot(id, takenAt, result.Statistics); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
