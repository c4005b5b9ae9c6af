package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
	"github.com/iliyamo/studio-show-scheduling/internal/repository"
)

// passthroughRunner hands fn a nil transaction.  The in-memory stores ignore
// the tx argument, so transactional flows run as plain calls.
type passthroughRunner struct{}

func (passthroughRunner) RunInTx(_ context.Context, fn func(*sql.Tx) error) error {
	return fn(nil)
}

// memScheduleStore keeps schedules in a map and enforces the same version
// and status predicates the SQL layer does.
type memScheduleStore struct {
	nextID    uint64
	schedules map[uint64]*model.Schedule
}

func newMemScheduleStore() *memScheduleStore {
	return &memScheduleStore{nextID: 1, schedules: make(map[uint64]*model.Schedule)}
}

func (m *memScheduleStore) Create(_ context.Context, s *model.Schedule) error {
	s.ID = m.nextID
	m.nextID++
	s.Status = model.ScheduleStatusDraft
	s.Version = 1
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	cp.Plan = s.Plan.Clone()
	m.schedules[s.ID] = &cp
	return nil
}

func (m *memScheduleStore) get(id uint64) (*model.Schedule, error) {
	s, ok := m.schedules[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	cp := *s
	cp.Plan = s.Plan.Clone()
	return &cp, nil
}

func (m *memScheduleStore) GetByID(_ context.Context, id uint64) (*model.Schedule, error) {
	return m.get(id)
}

func (m *memScheduleStore) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Schedule, error) {
	return m.get(id)
}

func (m *memScheduleStore) UpdatePlanTx(_ context.Context, _ *sql.Tx, id uint64, doc model.PlanDocument, expectedVersion uint64) error {
	s, ok := m.schedules[id]
	if !ok {
		return repository.ErrScheduleNotFound
	}
	if s.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	s.Plan = doc.Clone()
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memScheduleStore) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, from, to string, expectedVersion uint64) error {
	s, ok := m.schedules[id]
	if !ok {
		return repository.ErrScheduleNotFound
	}
	if s.Version != expectedVersion || s.Status != from {
		return repository.ErrVersionConflict
	}
	s.Status = to
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memScheduleStore) PublishTx(_ context.Context, _ *sql.Tx, id uint64, expectedVersion uint64, publisherID uint64, at time.Time) error {
	s, ok := m.schedules[id]
	if !ok {
		return repository.ErrScheduleNotFound
	}
	if s.Version != expectedVersion || s.Status != model.ScheduleStatusDraft {
		return repository.ErrVersionConflict
	}
	s.Status = model.ScheduleStatusPublished
	s.PublishedBy = &publisherID
	t := at
	s.PublishedAt = &t
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// memSnapshotStore appends snapshots in insertion order.
type memSnapshotStore struct {
	nextID    uint64
	snapshots []model.Snapshot
}

func newMemSnapshotStore() *memSnapshotStore { return &memSnapshotStore{nextID: 1} }

func (m *memSnapshotStore) CreateTx(_ context.Context, _ *sql.Tx, snap *model.Snapshot) error {
	snap.ID = m.nextID
	m.nextID++
	snap.CreatedAt = time.Now().UTC()
	cp := *snap
	cp.Plan = snap.Plan.Clone()
	m.snapshots = append(m.snapshots, cp)
	return nil
}

func (m *memSnapshotStore) ListBySchedule(_ context.Context, scheduleID uint64, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []model.Snapshot
	for i := len(m.snapshots) - 1; i >= 0 && len(out) < limit; i-- {
		if m.snapshots[i].ScheduleID == scheduleID {
			out = append(out, m.snapshots[i])
		}
	}
	return out, nil
}

// memShowStore keeps show rows in a map.
type memShowStore struct {
	nextID uint64
	shows  map[uint64]*model.Show
}

func newMemShowStore() *memShowStore {
	return &memShowStore{nextID: 1, shows: make(map[uint64]*model.Show)}
}

func (m *memShowStore) CreateTx(_ context.Context, _ *sql.Tx, s *model.Show) error {
	s.ID = m.nextID
	m.nextID++
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.shows[s.ID] = &cp
	return nil
}

func (m *memShowStore) UpdateTx(_ context.Context, _ *sql.Tx, s *model.Show) error {
	if _, ok := m.shows[s.ID]; !ok {
		return repository.ErrShowNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	cp := *s
	m.shows[s.ID] = &cp
	return nil
}

func (m *memShowStore) get(id uint64) (*model.Show, error) {
	s, ok := m.shows[id]
	if !ok {
		return nil, repository.ErrShowNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memShowStore) GetByID(_ context.Context, id uint64) (*model.Show, error) {
	return m.get(id)
}

func (m *memShowStore) GetByIDTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Show, error) {
	return m.get(id)
}

// memAssignmentStore keeps join rows with the same soft-delete semantics as
// the SQL layer, including the revive-on-reinsert behavior.
type memAssignmentStore struct {
	nextID    uint64
	hosts     []model.ShowHost
	platforms []model.ShowPlatform
	hostCodes map[uint64]string
	platCodes map[uint64]string
}

func newMemAssignmentStore() *memAssignmentStore {
	return &memAssignmentStore{
		nextID:    1,
		hostCodes: make(map[uint64]string),
		platCodes: make(map[uint64]string),
	}
}

func (m *memAssignmentStore) ActiveHosts(_ context.Context, showID uint64) ([]model.ShowHost, error) {
	var out []model.ShowHost
	for _, h := range m.hosts {
		if h.ShowID == showID && h.DeletedAt == nil {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memAssignmentStore) ActiveHostsTx(ctx context.Context, _ *sql.Tx, showID uint64) ([]model.ShowHost, error) {
	return m.ActiveHosts(ctx, showID)
}

func (m *memAssignmentStore) SoftDeleteHostsNotInTx(_ context.Context, _ *sql.Tx, showID uint64, keep []uint64) error {
	keepSet := make(map[uint64]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}
	now := time.Now().UTC()
	for i := range m.hosts {
		h := &m.hosts[i]
		if h.ShowID != showID || h.DeletedAt != nil {
			continue
		}
		if _, ok := keepSet[h.HostID]; !ok {
			t := now
			h.DeletedAt = &t
		}
	}
	return nil
}

func (m *memAssignmentStore) SoftDeleteHostsTx(_ context.Context, _ *sql.Tx, showID uint64, hostIDs []uint64) (int64, error) {
	target := make(map[uint64]struct{}, len(hostIDs))
	for _, id := range hostIDs {
		target[id] = struct{}{}
	}
	now := time.Now().UTC()
	var n int64
	for i := range m.hosts {
		h := &m.hosts[i]
		if h.ShowID != showID || h.DeletedAt != nil {
			continue
		}
		if _, ok := target[h.HostID]; ok {
			t := now
			h.DeletedAt = &t
			n++
		}
	}
	return n, nil
}

func (m *memAssignmentStore) InsertHostsTx(_ context.Context, _ *sql.Tx, showID uint64, rows []model.ShowHost) error {
	for _, r := range rows {
		revived := false
		for i := range m.hosts {
			h := &m.hosts[i]
			if h.ShowID == showID && h.HostID == r.HostID {
				h.DeletedAt = nil
				h.Note = r.Note
				revived = true
				break
			}
		}
		if revived {
			continue
		}
		m.hosts = append(m.hosts, model.ShowHost{
			ID:        m.nextID,
			ShowID:    showID,
			HostID:    r.HostID,
			HostCode:  m.hostCodes[r.HostID],
			Note:      r.Note,
			CreatedAt: time.Now().UTC(),
		})
		m.nextID++
	}
	return nil
}

func (m *memAssignmentStore) ActivePlatforms(_ context.Context, showID uint64) ([]model.ShowPlatform, error) {
	var out []model.ShowPlatform
	for _, p := range m.platforms {
		if p.ShowID == showID && p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memAssignmentStore) ActivePlatformsTx(ctx context.Context, _ *sql.Tx, showID uint64) ([]model.ShowPlatform, error) {
	return m.ActivePlatforms(ctx, showID)
}

func (m *memAssignmentStore) SoftDeletePlatformsNotInTx(_ context.Context, _ *sql.Tx, showID uint64, keep []uint64) error {
	keepSet := make(map[uint64]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}
	now := time.Now().UTC()
	for i := range m.platforms {
		p := &m.platforms[i]
		if p.ShowID != showID || p.DeletedAt != nil {
			continue
		}
		if _, ok := keepSet[p.PlatformID]; !ok {
			t := now
			p.DeletedAt = &t
		}
	}
	return nil
}

func (m *memAssignmentStore) SoftDeletePlatformsTx(_ context.Context, _ *sql.Tx, showID uint64, platformIDs []uint64) (int64, error) {
	target := make(map[uint64]struct{}, len(platformIDs))
	for _, id := range platformIDs {
		target[id] = struct{}{}
	}
	now := time.Now().UTC()
	var n int64
	for i := range m.platforms {
		p := &m.platforms[i]
		if p.ShowID != showID || p.DeletedAt != nil {
			continue
		}
		if _, ok := target[p.PlatformID]; ok {
			t := now
			p.DeletedAt = &t
			n++
		}
	}
	return n, nil
}

func (m *memAssignmentStore) InsertPlatformsTx(_ context.Context, _ *sql.Tx, showID uint64, rows []model.ShowPlatform) error {
	for _, r := range rows {
		revived := false
		for i := range m.platforms {
			p := &m.platforms[i]
			if p.ShowID == showID && p.PlatformID == r.PlatformID {
				p.DeletedAt = nil
				p.StreamLink = r.StreamLink
				p.ExternalShowID = r.ExternalShowID
				revived = true
				break
			}
		}
		if revived {
			continue
		}
		m.platforms = append(m.platforms, model.ShowPlatform{
			ID:             m.nextID,
			ShowID:         showID,
			PlatformID:     r.PlatformID,
			PlatformCode:   m.platCodes[r.PlatformID],
			StreamLink:     r.StreamLink,
			ExternalShowID: r.ExternalShowID,
			CreatedAt:      time.Now().UTC(),
		})
		m.nextID++
	}
	return nil
}

// memResolver resolves codes from static per-kind maps.
type memResolver struct {
	codes map[string]map[string]uint64
}

func newMemResolver() *memResolver {
	return &memResolver{codes: make(map[string]map[string]uint64)}
}

func (m *memResolver) add(kind, code string, id uint64) {
	if m.codes[kind] == nil {
		m.codes[kind] = make(map[string]uint64)
	}
	m.codes[kind][code] = id
}

func (m *memResolver) ResolveCodes(_ context.Context, kind string, codes []string) (map[string]uint64, error) {
	out := make(map[string]uint64)
	for _, c := range codes {
		if id, ok := m.codes[kind][c]; ok {
			out[c] = id
		}
	}
	return out, nil
}

func (m *memResolver) ResolveCodesTx(ctx context.Context, _ *sql.Tx, kind string, codes []string) (map[string]uint64, error) {
	return m.ResolveCodes(ctx, kind, codes)
}
