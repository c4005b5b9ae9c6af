// Show persistence.  A Show row is always written inside the same
// transaction as its assignment rows (see AssignmentRepo), so a reader
// never observes a show without its assignments or vice versa.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
)

const showColumns = `id, name, room_id, client_id, show_type_id, show_status_id, show_standard_id,
	starts_at, ends_at, created_at, updated_at`

// ShowRepo manages persistence for persisted shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

func scanShow(row rowScanner) (*model.Show, error) {
	var s model.Show
	err := row.Scan(&s.ID, &s.Name, &s.RoomID, &s.ClientID, &s.ShowTypeID, &s.ShowStatusID,
		&s.ShowStandardID, &s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateTx inserts a new show using the provided transaction and populates
// the generated ID and DB-default fields on the given struct.  The caller
// must commit or roll back the transaction.
func (r *ShowRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Show) error {
	const q = `INSERT INTO shows (name, room_id, client_id, show_type_id, show_status_id, show_standard_id, starts_at, ends_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.Name, s.RoomID, s.ClientID, s.ShowTypeID,
		s.ShowStatusID, s.ShowStandardID, s.StartsAt.UTC(), s.EndsAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	fresh, err := r.GetByIDTx(ctx, tx, s.ID)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// UpdateTx rewrites a show's mutable fields inside the caller's
// transaction.  The struct is refreshed from the row afterwards, which
// doubles as the existence check: a vanished row yields ErrShowNotFound.
func (r *ShowRepo) UpdateTx(ctx context.Context, tx *sql.Tx, s *model.Show) error {
	const q = `UPDATE shows
	           SET name = ?, room_id = ?, client_id = ?, show_type_id = ?, show_status_id = ?,
	               show_standard_id = ?, starts_at = ?, ends_at = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, s.Name, s.RoomID, s.ClientID, s.ShowTypeID,
		s.ShowStatusID, s.ShowStandardID, s.StartsAt.UTC(), s.EndsAt.UTC(), s.ID); err != nil {
		return err
	}
	fresh, err := r.GetByIDTx(ctx, tx, s.ID)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// GetByID retrieves a show by its ID.  It returns ErrShowNotFound when no
// matching row exists.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`
	s, err := scanShow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetByIDTx is GetByID inside the caller's transaction.
func (r *ShowRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`
	s, err := scanShow(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return s, nil
}
