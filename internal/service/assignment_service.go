package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
)

// HostAssignment is one desired host of a show.
type HostAssignment struct {
	HostCode string `json:"host_code"`
	Note     string `json:"note,omitempty"`
}

// PlatformAssignment is one desired streaming platform of a show.
type PlatformAssignment struct {
	PlatformCode   string `json:"platform_code"`
	StreamLink     string `json:"stream_link,omitempty"`
	ExternalShowID string `json:"external_show_id,omitempty"`
}

// ShowInput is the full desired state of a show and its assignments, used
// by create and update.  All entity references are external codes.
type ShowInput struct {
	Name             string               `json:"name"`
	ClientCode       string               `json:"client_code"`
	RoomCode         string               `json:"room_code"`
	ShowTypeCode     string               `json:"show_type_code"`
	ShowStatusCode   string               `json:"show_status_code"`
	ShowStandardCode string               `json:"show_standard_code"`
	StartsAt         time.Time            `json:"starts_at"`
	EndsAt           time.Time            `json:"ends_at"`
	MCs              []HostAssignment     `json:"mcs"`
	Platforms        []PlatformAssignment `json:"platforms"`
}

// AssignmentService synchronizes a show's host and platform assignment rows
// with a desired set.  Every mutating operation runs inside one transaction
// and resolves all referenced codes before touching a row, so a missing
// entity aborts with nothing committed and readers never observe a partial
// replacement.
type AssignmentService struct {
	tx          TxRunner
	shows       ShowStore
	assignments AssignmentStore
	resolver    CodeResolver
}

// NewAssignmentService constructs an AssignmentService.  All dependencies
// must be non-nil.
func NewAssignmentService(tx TxRunner, shows ShowStore, assignments AssignmentStore, resolver CodeResolver) *AssignmentService {
	if tx == nil || shows == nil || assignments == nil || resolver == nil {
		panic("nil dependency passed to NewAssignmentService")
	}
	return &AssignmentService{tx: tx, shows: shows, assignments: assignments, resolver: resolver}
}

// resolveAll maps every code to its internal id or fails with NotFoundError
// for the first code that does not resolve to a live entity.  Codes are
// resolved as one batch per kind.
func (s *AssignmentService) resolveAll(ctx context.Context, tx *sql.Tx, kind string, codes []string) (map[string]uint64, error) {
	unique := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		unique = append(unique, c)
	}
	resolved, err := s.resolver.ResolveCodesTx(ctx, tx, kind, unique)
	if err != nil {
		return nil, err
	}
	for _, c := range codes {
		if _, ok := resolved[c]; !ok {
			return nil, &NotFoundError{Kind: kind, Code: c}
		}
	}
	return resolved, nil
}

// resolveOne resolves a single required code of the given kind.
func (s *AssignmentService) resolveOne(ctx context.Context, tx *sql.Tx, kind, code string) (uint64, error) {
	m, err := s.resolveAll(ctx, tx, kind, []string{code})
	if err != nil {
		return 0, err
	}
	return m[code], nil
}

// syncHostsTx makes the show's active host assignments equal the desired
// set: resolve every code, soft-delete actives outside the set, insert the
// missing ones.  Runs entirely on the caller's transaction.
func (s *AssignmentService) syncHostsTx(ctx context.Context, tx *sql.Tx, showID uint64, desired []HostAssignment) error {
	codes := make([]string, len(desired))
	for i, d := range desired {
		codes[i] = d.HostCode
	}
	resolved, err := s.resolveAll(ctx, tx, model.KindHost, codes)
	if err != nil {
		return err
	}
	keep := make([]uint64, 0, len(resolved))
	for _, id := range resolved {
		keep = append(keep, id)
	}
	sort.Slice(keep, func(i, j int) bool { return keep[i] < keep[j] })
	if err := s.assignments.SoftDeleteHostsNotInTx(ctx, tx, showID, keep); err != nil {
		return err
	}
	active, err := s.assignments.ActiveHostsTx(ctx, tx, showID)
	if err != nil {
		return err
	}
	activeSet := make(map[uint64]struct{}, len(active))
	for _, a := range active {
		activeSet[a.HostID] = struct{}{}
	}
	var toInsert []model.ShowHost
	inserted := make(map[uint64]struct{})
	for _, d := range desired {
		id := resolved[d.HostCode]
		if _, ok := activeSet[id]; ok {
			continue
		}
		if _, ok := inserted[id]; ok {
			continue
		}
		inserted[id] = struct{}{}
		toInsert = append(toInsert, model.ShowHost{HostID: id, Note: d.Note})
	}
	return s.assignments.InsertHostsTx(ctx, tx, showID, toInsert)
}

// syncPlatformsTx is syncHostsTx for platform assignments.
func (s *AssignmentService) syncPlatformsTx(ctx context.Context, tx *sql.Tx, showID uint64, desired []PlatformAssignment) error {
	codes := make([]string, len(desired))
	for i, d := range desired {
		codes[i] = d.PlatformCode
	}
	resolved, err := s.resolveAll(ctx, tx, model.KindPlatform, codes)
	if err != nil {
		return err
	}
	keep := make([]uint64, 0, len(resolved))
	for _, id := range resolved {
		keep = append(keep, id)
	}
	sort.Slice(keep, func(i, j int) bool { return keep[i] < keep[j] })
	if err := s.assignments.SoftDeletePlatformsNotInTx(ctx, tx, showID, keep); err != nil {
		return err
	}
	active, err := s.assignments.ActivePlatformsTx(ctx, tx, showID)
	if err != nil {
		return err
	}
	activeSet := make(map[uint64]struct{}, len(active))
	for _, a := range active {
		activeSet[a.PlatformID] = struct{}{}
	}
	var toInsert []model.ShowPlatform
	inserted := make(map[uint64]struct{})
	for _, d := range desired {
		id := resolved[d.PlatformCode]
		if _, ok := activeSet[id]; ok {
			continue
		}
		if _, ok := inserted[id]; ok {
			continue
		}
		inserted[id] = struct{}{}
		toInsert = append(toInsert, model.ShowPlatform{
			PlatformID:     id,
			StreamLink:     d.StreamLink,
			ExternalShowID: d.ExternalShowID,
		})
	}
	return s.assignments.InsertPlatformsTx(ctx, tx, showID, toInsert)
}

// GetShowWithAssignments loads a show together with its active host and
// platform assignments.
func (s *AssignmentService) GetShowWithAssignments(ctx context.Context, showID uint64) (*model.ShowWithAssignments, error) {
	show, err := s.shows.GetByID(ctx, showID)
	if err != nil {
		return nil, err
	}
	mcs, err := s.assignments.ActiveHosts(ctx, showID)
	if err != nil {
		return nil, err
	}
	platforms, err := s.assignments.ActivePlatforms(ctx, showID)
	if err != nil {
		return nil, err
	}
	return &model.ShowWithAssignments{Show: *show, MCs: mcs, Platforms: platforms}, nil
}

// ReplaceHostsForShow makes the show's host assignments match the desired
// set exactly.  Hosts outside the set are soft-deleted, missing hosts are
// inserted, hosts already assigned stay as they are.  Any unresolved host
// code aborts the transaction with NotFoundError and no partial replacement
// is ever committed.
func (s *AssignmentService) ReplaceHostsForShow(ctx context.Context, showID uint64, desired []HostAssignment) (*model.ShowWithAssignments, error) {
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.shows.GetByIDTx(ctx, tx, showID); err != nil {
			return err
		}
		return s.syncHostsTx(ctx, tx, showID, desired)
	})
	if err != nil {
		return nil, err
	}
	return s.GetShowWithAssignments(ctx, showID)
}

// ReplacePlatformsForShow is ReplaceHostsForShow for platform assignments.
func (s *AssignmentService) ReplacePlatformsForShow(ctx context.Context, showID uint64, desired []PlatformAssignment) (*model.ShowWithAssignments, error) {
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.shows.GetByIDTx(ctx, tx, showID); err != nil {
			return err
		}
		return s.syncPlatformsTx(ctx, tx, showID, desired)
	})
	if err != nil {
		return nil, err
	}
	return s.GetShowWithAssignments(ctx, showID)
}

// resolveShowRefs resolves the five entity references of a ShowInput onto a
// Show struct.
func (s *AssignmentService) resolveShowRefs(ctx context.Context, tx *sql.Tx, in *ShowInput, show *model.Show) error {
	var err error
	if show.ClientID, err = s.resolveOne(ctx, tx, model.KindClient, in.ClientCode); err != nil {
		return err
	}
	if show.RoomID, err = s.resolveOne(ctx, tx, model.KindRoom, in.RoomCode); err != nil {
		return err
	}
	if show.ShowTypeID, err = s.resolveOne(ctx, tx, model.KindShowType, in.ShowTypeCode); err != nil {
		return err
	}
	if show.ShowStatusID, err = s.resolveOne(ctx, tx, model.KindShowStatus, in.ShowStatusCode); err != nil {
		return err
	}
	if show.ShowStandardID, err = s.resolveOne(ctx, tx, model.KindShowStandard, in.ShowStandardCode); err != nil {
		return err
	}
	return nil
}

// CreateShowWithAssignments persists a show and its host/platform
// assignments in one transaction, so the show is never observable without
// its assignments.
func (s *AssignmentService) CreateShowWithAssignments(ctx context.Context, in ShowInput) (*model.ShowWithAssignments, error) {
	if !in.EndsAt.After(in.StartsAt) {
		return nil, ErrInvalidTimeRange
	}
	var showID uint64
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		show := &model.Show{
			Name:     in.Name,
			StartsAt: in.StartsAt,
			EndsAt:   in.EndsAt,
		}
		if err := s.resolveShowRefs(ctx, tx, &in, show); err != nil {
			return err
		}
		if err := s.shows.CreateTx(ctx, tx, show); err != nil {
			return err
		}
		showID = show.ID
		if err := s.syncHostsTx(ctx, tx, showID, in.MCs); err != nil {
			return err
		}
		return s.syncPlatformsTx(ctx, tx, showID, in.Platforms)
	})
	if err != nil {
		return nil, err
	}
	return s.GetShowWithAssignments(ctx, showID)
}

// UpdateShowWithAssignments rewrites the show row and synchronizes both
// assignment sets inside the same transaction.
func (s *AssignmentService) UpdateShowWithAssignments(ctx context.Context, showID uint64, in ShowInput) (*model.ShowWithAssignments, error) {
	if !in.EndsAt.After(in.StartsAt) {
		return nil, ErrInvalidTimeRange
	}
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		show, err := s.shows.GetByIDTx(ctx, tx, showID)
		if err != nil {
			return err
		}
		show.Name = in.Name
		show.StartsAt = in.StartsAt
		show.EndsAt = in.EndsAt
		if err := s.resolveShowRefs(ctx, tx, &in, show); err != nil {
			return err
		}
		if err := s.shows.UpdateTx(ctx, tx, show); err != nil {
			return err
		}
		if err := s.syncHostsTx(ctx, tx, showID, in.MCs); err != nil {
			return err
		}
		return s.syncPlatformsTx(ctx, tx, showID, in.Platforms)
	})
	if err != nil {
		return nil, err
	}
	return s.GetShowWithAssignments(ctx, showID)
}

// RemoveHostsFromShow soft-deletes the named hosts from a show without
// touching the rest of the assignment set.
func (s *AssignmentService) RemoveHostsFromShow(ctx context.Context, showID uint64, hostCodes []string) (*model.ShowWithAssignments, error) {
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.shows.GetByIDTx(ctx, tx, showID); err != nil {
			return err
		}
		resolved, err := s.resolveAll(ctx, tx, model.KindHost, hostCodes)
		if err != nil {
			return err
		}
		ids := make([]uint64, 0, len(resolved))
		for _, id := range resolved {
			ids = append(ids, id)
		}
		_, err = s.assignments.SoftDeleteHostsTx(ctx, tx, showID, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetShowWithAssignments(ctx, showID)
}

// RemovePlatformsFromShow soft-deletes the named platforms from a show.
func (s *AssignmentService) RemovePlatformsFromShow(ctx context.Context, showID uint64, platformCodes []string) (*model.ShowWithAssignments, error) {
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.shows.GetByIDTx(ctx, tx, showID); err != nil {
			return err
		}
		resolved, err := s.resolveAll(ctx, tx, model.KindPlatform, platformCodes)
		if err != nil {
			return err
		}
		ids := make([]uint64, 0, len(resolved))
		for _, id := range resolved {
			ids = append(ids, id)
		}
		_, err = s.assignments.SoftDeletePlatformsTx(ctx, tx, showID, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetShowWithAssignments(ctx, showID)
}
