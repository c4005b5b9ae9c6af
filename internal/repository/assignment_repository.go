// Assignment persistence.  show_hosts and show_platforms are join tables
// between a show and its hosts/platforms.  Rows are never physically
// deleted by the application: removal stamps deleted_at and the default
// queries filter stamped rows out.  Re-adding a previously removed
// assignment revives the existing row via the (show_id, host_id) /
// (show_id, platform_id) unique keys, so history keeps a single row per
// pairing.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
)

// AssignmentRepo manages the host and platform assignment rows of shows.
type AssignmentRepo struct {
	db *sql.DB
}

// NewAssignmentRepo constructs an AssignmentRepo with the given DB handle.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

const activeHostsQuery = `SELECT sh.id, sh.show_id, sh.host_id, h.code, h.name, sh.note, sh.created_at
	FROM show_hosts sh
	JOIN hosts h ON h.id = sh.host_id
	WHERE sh.show_id = ? AND sh.deleted_at IS NULL
	ORDER BY h.code ASC`

func scanHosts(rows *sql.Rows) ([]model.ShowHost, error) {
	defer rows.Close()
	result := make([]model.ShowHost, 0)
	for rows.Next() {
		var a model.ShowHost
		if err := rows.Scan(&a.ID, &a.ShowID, &a.HostID, &a.HostCode, &a.HostName, &a.Note, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ActiveHosts returns the live host assignments of a show, ordered by host
// code for deterministic output.
func (r *AssignmentRepo) ActiveHosts(ctx context.Context, showID uint64) ([]model.ShowHost, error) {
	rows, err := r.db.QueryContext(ctx, activeHostsQuery, showID)
	if err != nil {
		return nil, err
	}
	return scanHosts(rows)
}

// ActiveHostsTx is ActiveHosts inside the caller's transaction.
func (r *AssignmentRepo) ActiveHostsTx(ctx context.Context, tx *sql.Tx, showID uint64) ([]model.ShowHost, error) {
	rows, err := tx.QueryContext(ctx, activeHostsQuery, showID)
	if err != nil {
		return nil, err
	}
	return scanHosts(rows)
}

// SoftDeleteHostsNotInTx stamps deleted_at on every active host assignment
// of the show whose host is not in keep.  An empty keep set removes all of
// them.
func (r *AssignmentRepo) SoftDeleteHostsNotInTx(ctx context.Context, tx *sql.Tx, showID uint64, keep []uint64) error {
	query := `UPDATE show_hosts SET deleted_at = CURRENT_TIMESTAMP WHERE show_id = ? AND deleted_at IS NULL`
	args := []any{showID}
	if len(keep) > 0 {
		query += ` AND host_id NOT IN (` + placeholders(len(keep)) + `)`
		for _, id := range keep {
			args = append(args, id)
		}
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// SoftDeleteHostsTx stamps deleted_at on the named subset of host
// assignments, leaving the rest untouched.  It returns the number of rows
// actually removed.
func (r *AssignmentRepo) SoftDeleteHostsTx(ctx context.Context, tx *sql.Tx, showID uint64, hostIDs []uint64) (int64, error) {
	if len(hostIDs) == 0 {
		return 0, nil
	}
	query := `UPDATE show_hosts SET deleted_at = CURRENT_TIMESTAMP
	          WHERE show_id = ? AND deleted_at IS NULL AND host_id IN (` + placeholders(len(hostIDs)) + `)`
	args := make([]any, 0, len(hostIDs)+1)
	args = append(args, showID)
	for _, id := range hostIDs {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertHostsTx inserts host assignment rows in one statement.  A row that
// already exists for the (show, host) pair is revived instead: deleted_at
// is cleared and the note refreshed.  Passing an empty slice is a no-op.
func (r *AssignmentRepo) InsertHostsTx(ctx context.Context, tx *sql.Tx, showID uint64, rows []model.ShowHost) error {
	if len(rows) == 0 {
		return nil
	}
	query := `INSERT INTO show_hosts (show_id, host_id, note) VALUES `
	args := make([]any, 0, len(rows)*3)
	for i, a := range rows {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, showID, a.HostID, a.Note)
	}
	query += ` ON DUPLICATE KEY UPDATE note = VALUES(note), deleted_at = NULL`
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const activePlatformsQuery = `SELECT sp.id, sp.show_id, sp.platform_id, p.code, p.name,
	sp.stream_link, sp.external_show_id, sp.viewer_count, sp.created_at
	FROM show_platforms sp
	JOIN platforms p ON p.id = sp.platform_id
	WHERE sp.show_id = ? AND sp.deleted_at IS NULL
	ORDER BY p.code ASC`

func scanPlatforms(rows *sql.Rows) ([]model.ShowPlatform, error) {
	defer rows.Close()
	result := make([]model.ShowPlatform, 0)
	for rows.Next() {
		var a model.ShowPlatform
		if err := rows.Scan(&a.ID, &a.ShowID, &a.PlatformID, &a.PlatformCode, &a.PlatformName,
			&a.StreamLink, &a.ExternalShowID, &a.ViewerCount, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ActivePlatforms returns the live platform assignments of a show.
func (r *AssignmentRepo) ActivePlatforms(ctx context.Context, showID uint64) ([]model.ShowPlatform, error) {
	rows, err := r.db.QueryContext(ctx, activePlatformsQuery, showID)
	if err != nil {
		return nil, err
	}
	return scanPlatforms(rows)
}

// ActivePlatformsTx is ActivePlatforms inside the caller's transaction.
func (r *AssignmentRepo) ActivePlatformsTx(ctx context.Context, tx *sql.Tx, showID uint64) ([]model.ShowPlatform, error) {
	rows, err := tx.QueryContext(ctx, activePlatformsQuery, showID)
	if err != nil {
		return nil, err
	}
	return scanPlatforms(rows)
}

// SoftDeletePlatformsNotInTx stamps deleted_at on every active platform
// assignment whose platform is not in keep.
func (r *AssignmentRepo) SoftDeletePlatformsNotInTx(ctx context.Context, tx *sql.Tx, showID uint64, keep []uint64) error {
	query := `UPDATE show_platforms SET deleted_at = CURRENT_TIMESTAMP WHERE show_id = ? AND deleted_at IS NULL`
	args := []any{showID}
	if len(keep) > 0 {
		query += ` AND platform_id NOT IN (` + placeholders(len(keep)) + `)`
		for _, id := range keep {
			args = append(args, id)
		}
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// SoftDeletePlatformsTx stamps deleted_at on the named subset of platform
// assignments and returns the number of rows removed.
func (r *AssignmentRepo) SoftDeletePlatformsTx(ctx context.Context, tx *sql.Tx, showID uint64, platformIDs []uint64) (int64, error) {
	if len(platformIDs) == 0 {
		return 0, nil
	}
	query := `UPDATE show_platforms SET deleted_at = CURRENT_TIMESTAMP
	          WHERE show_id = ? AND deleted_at IS NULL AND platform_id IN (` + placeholders(len(platformIDs)) + `)`
	args := make([]any, 0, len(platformIDs)+1)
	args = append(args, showID)
	for _, id := range platformIDs {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertPlatformsTx inserts platform assignment rows in one statement,
// reviving soft-deleted rows for the same (show, platform) pair.
func (r *AssignmentRepo) InsertPlatformsTx(ctx context.Context, tx *sql.Tx, showID uint64, rows []model.ShowPlatform) error {
	if len(rows) == 0 {
		return nil
	}
	query := `INSERT INTO show_platforms (show_id, platform_id, stream_link, external_show_id) VALUES `
	args := make([]any, 0, len(rows)*4)
	for i, a := range rows {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, showID, a.PlatformID, a.StreamLink, a.ExternalShowID)
	}
	query += ` ON DUPLICATE KEY UPDATE stream_link = VALUES(stream_link),
	           external_show_id = VALUES(external_show_id), deleted_at = NULL`
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
