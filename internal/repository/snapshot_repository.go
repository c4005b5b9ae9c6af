// Snapshot persistence.  schedule_snapshots is append-only history: rows
// are inserted inside the transaction of the mutation they checkpoint and
// are never updated or deleted by the application.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
)

// SnapshotRepo manages the append-only snapshot history of schedules.
type SnapshotRepo struct {
	db *sql.DB
}

// NewSnapshotRepo constructs a SnapshotRepo with the given DB handle.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// CreateTx inserts a snapshot row using the caller's transaction.  The
// caller is responsible for having read the document and version from the
// schedule row inside the same transaction, so the stored copy is the exact
// pre-mutation state.  The generated ID and created_at are populated on the
// given struct.
func (r *SnapshotRepo) CreateTx(ctx context.Context, tx *sql.Tx, snap *model.Snapshot) error {
	planJSON, err := json.Marshal(snap.Plan)
	if err != nil {
		return fmt.Errorf("encode snapshot document: %w", err)
	}
	const q = `INSERT INTO schedule_snapshots (schedule_id, plan_document, version, reason, actor_id)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, snap.ScheduleID, planJSON, snap.Version, snap.Reason, snap.ActorID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	snap.ID = uint64(id)
	const sel = `SELECT created_at FROM schedule_snapshots WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, snap.ID).Scan(&snap.CreatedAt)
}

// ListBySchedule returns up to limit snapshots of a schedule, newest first.
// It is read-only; no update or delete operation exists on snapshots.
func (r *SnapshotRepo) ListBySchedule(ctx context.Context, scheduleID uint64, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT id, schedule_id, plan_document, version, reason, actor_id, created_at
	           FROM schedule_snapshots
	           WHERE schedule_id = ?
	           ORDER BY id DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, scheduleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Snapshot, 0, limit)
	for rows.Next() {
		var (
			s        model.Snapshot
			planJSON []byte
		)
		if err := rows.Scan(&s.ID, &s.ScheduleID, &planJSON, &s.Version, &s.Reason, &s.ActorID, &s.CreatedAt); err != nil {
			return nil, err
		}
		if len(planJSON) > 0 {
			if err := json.Unmarshal(planJSON, &s.Plan); err != nil {
				return nil, fmt.Errorf("decode snapshot %d: %w", s.ID, err)
			}
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
