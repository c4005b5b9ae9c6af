// Schedule persistence.  The plan document is stored as a JSON column on
// the schedules row; the version column is the optimistic-lock token and
// every mutating statement is a compare-and-swap of the form
// `UPDATE ... WHERE id = ? AND version = ?` so a stale writer matches zero
// rows instead of silently overwriting.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
)

const scheduleColumns = `id, name, client_id, range_start, range_end, status,
	plan_document, version, created_by, published_by, published_at, created_at, updated_at`

// ScheduleRepo manages persistence for schedules.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// DB exposes the underlying sql.DB so callers can begin transactions that
// span multiple repositories.
func (r *ScheduleRepo) DB() *sql.DB {
	return r.db
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*model.Schedule, error) {
	var (
		s           model.Schedule
		planJSON    []byte
		publishedBy sql.NullInt64
		publishedAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.Name, &s.ClientID, &s.RangeStart, &s.RangeEnd, &s.Status,
		&planJSON, &s.Version, &s.CreatedBy, &publishedBy, &publishedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(planJSON) > 0 {
		if err := json.Unmarshal(planJSON, &s.Plan); err != nil {
			return nil, fmt.Errorf("decode plan document of schedule %d: %w", s.ID, err)
		}
	}
	if publishedBy.Valid {
		v := uint64(publishedBy.Int64)
		s.PublishedBy = &v
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		s.PublishedAt = &t
	}
	return &s, nil
}

// Create inserts a new draft schedule with version 1 and populates the
// generated ID and DB-default fields on the given struct.  A duplicate
// (client_id, name) pair is reported as ErrConflict.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	planJSON, err := json.Marshal(s.Plan)
	if err != nil {
		return fmt.Errorf("encode plan document: %w", err)
	}
	const q = `INSERT INTO schedules (name, client_id, range_start, range_end, status, plan_document, version, created_by)
	           VALUES (?, ?, ?, ?, ?, ?, 1, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.ClientID, s.RangeStart, s.RangeEnd,
		model.ScheduleStatusDraft, planJSON, s.CreatedBy)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("schedule %q for client %d: %w", s.Name, s.ClientID, ErrConflict)
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// GetByID retrieves a schedule by its ID.  It returns ErrScheduleNotFound
// when no matching row exists.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?`
	s, err := scanSchedule(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetForUpdateTx loads a schedule inside the given transaction with a row
// lock, so the snapshot taken from it is a true pre-mutation checkpoint and
// not a stale copy.
func (r *ScheduleRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ? FOR UPDATE`
	s, err := scanSchedule(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return s, nil
}

// UpdatePlanTx replaces the plan document and bumps the version by exactly
// one, guarded by the expected version.  A zero-row match means either the
// schedule vanished (ErrScheduleNotFound) or another writer advanced the
// version first (ErrVersionConflict).
func (r *ScheduleRepo) UpdatePlanTx(ctx context.Context, tx *sql.Tx, id uint64, doc model.PlanDocument, expectedVersion uint64) error {
	planJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode plan document: %w", err)
	}
	const q = `UPDATE schedules
	           SET plan_document = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q, planJSON, id, expectedVersion)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, tx, id, res)
}

// UpdateStatusTx moves a schedule from one status to another with the same
// version guard.  The from-status is part of the predicate so a concurrent
// transition also surfaces as a conflict.
func (r *ScheduleRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string, expectedVersion uint64) error {
	const q = `UPDATE schedules
	           SET status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND version = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, to, id, expectedVersion, from)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, tx, id, res)
}

// PublishTx performs the terminal draft-to-published transition: it stamps
// status, published_by and published_at and bumps the version, all in one
// conditional statement.  published_at is written exactly once because the
// DRAFT predicate can never match a published row again.
func (r *ScheduleRepo) PublishTx(ctx context.Context, tx *sql.Tx, id uint64, expectedVersion uint64, publisherID uint64, at time.Time) error {
	const q = `UPDATE schedules
	           SET status = ?, published_by = ?, published_at = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND version = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.ScheduleStatusPublished, publisherID, at.UTC(),
		id, expectedVersion, model.ScheduleStatusDraft)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, tx, id, res)
}

// checkAffected turns a zero-row conditional update into the right sentinel:
// missing row or lost version race.
func (r *ScheduleRepo) checkAffected(ctx context.Context, tx *sql.Tx, id uint64, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM schedules WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrScheduleNotFound
	}
	if err != nil {
		return err
	}
	return ErrVersionConflict
}
