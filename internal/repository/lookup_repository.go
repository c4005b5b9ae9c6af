// Reference-data lookups.  Every entity referenced from a plan document or
// an assignment payload carries a stable external code; this repository
// resolves batches of codes to internal ids and serves the read-only browse
// endpoints.  Soft-deleted rows never resolve, so "not found" and "deleted"
// are equally unusable for new references.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
)

// kindTables maps a resolver kind to its lookup table.  All tables share the
// (id, code, name, deleted_at) shape.
var kindTables = map[string]string{
	model.KindClient:       "clients",
	model.KindRoom:         "rooms",
	model.KindHost:         "hosts",
	model.KindPlatform:     "platforms",
	model.KindShowType:     "show_types",
	model.KindShowStatus:   "show_statuses",
	model.KindShowStandard: "show_standards",
}

// LookupRepo resolves external codes across the reference tables.
type LookupRepo struct {
	db *sql.DB
}

// NewLookupRepo constructs a LookupRepo with the given DB handle.
func NewLookupRepo(db *sql.DB) *LookupRepo {
	return &LookupRepo{db: db}
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx, letting the batch
// resolver run inside or outside a transaction.
type rowQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func resolveCodes(ctx context.Context, q rowQuerier, kind string, codes []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	table, ok := kindTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}
	placeholders := make([]string, len(codes))
	args := make([]any, len(codes))
	for i, c := range codes {
		placeholders[i] = "?"
		args[i] = c
	}
	query := `SELECT code, id FROM ` + table +
		` WHERE deleted_at IS NULL AND code IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			code string
			id   uint64
		)
		if err := rows.Scan(&code, &id); err != nil {
			return nil, err
		}
		out[code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveCodes resolves a batch of codes of one kind in a single query.
// Codes that are unknown or soft-deleted are simply absent from the result.
func (r *LookupRepo) ResolveCodes(ctx context.Context, kind string, codes []string) (map[string]uint64, error) {
	return resolveCodes(ctx, r.db, kind, codes)
}

// ResolveCodesTx is ResolveCodes inside the caller's transaction, used by
// the assignment orchestrator so its reference checks and writes observe
// one consistent state.
func (r *LookupRepo) ResolveCodesTx(ctx context.Context, tx *sql.Tx, kind string, codes []string) (map[string]uint64, error) {
	return resolveCodes(ctx, tx, kind, codes)
}

// ListByKind returns all live entities of one kind ordered by code.  Used
// by the reference browse endpoints.
func (r *LookupRepo) ListByKind(ctx context.Context, kind string) ([]model.ReferenceEntity, error) {
	table, ok := kindTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}
	query := `SELECT id, code, name FROM ` + table + ` WHERE deleted_at IS NULL ORDER BY code ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.ReferenceEntity, 0)
	for rows.Next() {
		var e model.ReferenceEntity
		if err := rows.Scan(&e.ID, &e.Code, &e.Name); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
