// Package service implements the scheduling and assignment business logic
// on top of the repository layer.  Services depend on narrow store
// interfaces rather than concrete repositories so the transactional flows
// can be exercised in unit tests with in-memory fakes.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/studio-show-scheduling/internal/database"
	"github.com/iliyamo/studio-show-scheduling/internal/model"
)

// TxRunner abstracts database.RunInTx.  Production code wraps *sql.DB;
// tests substitute a pass-through runner that hands fn a nil transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(*sql.Tx) error) error
}

type sqlTxRunner struct{ db *sql.DB }

// NewTxRunner returns a TxRunner backed by the given database handle.
func NewTxRunner(db *sql.DB) TxRunner { return &sqlTxRunner{db: db} }

func (r *sqlTxRunner) RunInTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return database.RunInTx(ctx, r.db, fn)
}

// ScheduleStore is the subset of repository.ScheduleRepo the planning
// service needs.
type ScheduleStore interface {
	Create(ctx context.Context, s *model.Schedule) error
	GetByID(ctx context.Context, id uint64) (*model.Schedule, error)
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Schedule, error)
	UpdatePlanTx(ctx context.Context, tx *sql.Tx, id uint64, doc model.PlanDocument, expectedVersion uint64) error
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string, expectedVersion uint64) error
	PublishTx(ctx context.Context, tx *sql.Tx, id uint64, expectedVersion uint64, publisherID uint64, at time.Time) error
}

// SnapshotStore is the subset of repository.SnapshotRepo the planning
// service needs.
type SnapshotStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, snap *model.Snapshot) error
	ListBySchedule(ctx context.Context, scheduleID uint64, limit int) ([]model.Snapshot, error)
}

// ShowStore is the subset of repository.ShowRepo the assignment service
// needs.
type ShowStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, s *model.Show) error
	UpdateTx(ctx context.Context, tx *sql.Tx, s *model.Show) error
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Show, error)
}

// AssignmentStore is the subset of repository.AssignmentRepo the assignment
// service needs.
type AssignmentStore interface {
	ActiveHosts(ctx context.Context, showID uint64) ([]model.ShowHost, error)
	ActiveHostsTx(ctx context.Context, tx *sql.Tx, showID uint64) ([]model.ShowHost, error)
	SoftDeleteHostsNotInTx(ctx context.Context, tx *sql.Tx, showID uint64, keep []uint64) error
	SoftDeleteHostsTx(ctx context.Context, tx *sql.Tx, showID uint64, hostIDs []uint64) (int64, error)
	InsertHostsTx(ctx context.Context, tx *sql.Tx, showID uint64, rows []model.ShowHost) error

	ActivePlatforms(ctx context.Context, showID uint64) ([]model.ShowPlatform, error)
	ActivePlatformsTx(ctx context.Context, tx *sql.Tx, showID uint64) ([]model.ShowPlatform, error)
	SoftDeletePlatformsNotInTx(ctx context.Context, tx *sql.Tx, showID uint64, keep []uint64) error
	SoftDeletePlatformsTx(ctx context.Context, tx *sql.Tx, showID uint64, platformIDs []uint64) (int64, error)
	InsertPlatformsTx(ctx context.Context, tx *sql.Tx, showID uint64, rows []model.ShowPlatform) error
}

// CodeResolver resolves external reference codes to internal ids, inside or
// outside a transaction.  Soft-deleted entities never resolve.
type CodeResolver interface {
	ResolveCodes(ctx context.Context, kind string, codes []string) (map[string]uint64, error)
	ResolveCodesTx(ctx context.Context, tx *sql.Tx, kind string, codes []string) (map[string]uint64, error)
}
