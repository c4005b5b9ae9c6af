package planner

import (
	"context"
	"fmt"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
)

// Validation error type tags exposed on the wire.
const (
	ErrTypeDuplicateTempID  = "duplicate_temp_id"
	ErrTypeInvalidTimeRange = "invalid_time_range"
	ErrTypeMissingReference = "missing_reference"
	ErrTypeTimeConflict     = "time_conflict"
)

// ValidationError describes one defect found in a plan document.  ShowIndex
// and ShowTempID locate the offending item; ConflictsWith is set only for
// time_conflict errors and names the other show of the pair.
type ValidationError struct {
	Type          string `json:"type"`
	ShowIndex     *int   `json:"show_index,omitempty"`
	ShowTempID    string `json:"show_temp_id,omitempty"`
	Field         string `json:"field,omitempty"`
	ConflictsWith *int   `json:"conflicts_with,omitempty"`
	Message       string `json:"message"`
}

// ValidationResult is the outcome of validating a plan document.  A document
// with zero errors is valid and publishable.
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors"`
}

// ReferenceResolver resolves stable external codes to live entities of one
// kind.  Implementations must resolve the whole batch in a single lookup and
// must omit soft-deleted rows from the result, so an absent key means the
// code is unusable.
type ReferenceResolver interface {
	ResolveCodes(ctx context.Context, kind string, codes []string) (map[string]uint64, error)
}

// Validator decides whether a plan document is publishable.  Validation is
// read-only and collects every defect in one pass instead of stopping at the
// first, so a caller can fix everything at once.
type Validator struct {
	resolver ReferenceResolver
}

// NewValidator constructs a Validator using the given resolver for
// reference checks.
func NewValidator(resolver ReferenceResolver) *Validator {
	if resolver == nil {
		panic("nil resolver passed to NewValidator")
	}
	return &Validator{resolver: resolver}
}

// refField ties a reference kind to the document field holding its code.
type refField struct {
	kind  string
	field string
	code  func(*model.ShowPlanItem) string
}

// Reference fields checked on every show plan item.  Host and platform codes
// live in nested stubs and are handled separately.
var itemRefFields = []refField{
	{model.KindClient, "client_code", func(s *model.ShowPlanItem) string { return s.ClientCode }},
	{model.KindRoom, "room_code", func(s *model.ShowPlanItem) string { return s.RoomCode }},
	{model.KindShowType, "show_type_code", func(s *model.ShowPlanItem) string { return s.ShowTypeCode }},
	{model.KindShowStatus, "show_status_code", func(s *model.ShowPlanItem) string { return s.ShowStatusCode }},
	{model.KindShowStandard, "show_standard_code", func(s *model.ShowPlanItem) string { return s.ShowStandardCode }},
}

// Validate runs every check against the document and returns the collected
// errors.  The checks run in a fixed order: temp-id uniqueness, time ranges,
// reference resolution, then host/room conflicts.  An error return means a
// check itself could not run (resolver failure); defects in the document are
// reported through the result, never through the error.
func (v *Validator) Validate(ctx context.Context, doc *model.PlanDocument) (*ValidationResult, error) {
	res := &ValidationResult{Errors: []ValidationError{}}

	v.checkTempIDs(doc, res)
	v.checkTimeRanges(doc, res)
	if err := v.checkReferences(ctx, doc, res); err != nil {
		return nil, err
	}
	v.checkConflicts(doc, res)

	res.IsValid = len(res.Errors) == 0
	return res, nil
}

// checkTempIDs flags every show whose temp id was already used by an
// earlier show in the document.
func (v *Validator) checkTempIDs(doc *model.PlanDocument, res *ValidationResult) {
	seen := make(map[string]int, len(doc.Shows))
	for i := range doc.Shows {
		s := &doc.Shows[i]
		if s.TempID == "" {
			idx := i
			res.Errors = append(res.Errors, ValidationError{
				Type:      ErrTypeDuplicateTempID,
				ShowIndex: &idx,
				Field:     "temp_id",
				Message:   fmt.Sprintf("show %d has an empty temp_id", i),
			})
			continue
		}
		if first, ok := seen[s.TempID]; ok {
			idx := i
			res.Errors = append(res.Errors, ValidationError{
				Type:       ErrTypeDuplicateTempID,
				ShowIndex:  &idx,
				ShowTempID: s.TempID,
				Field:      "temp_id",
				Message:    fmt.Sprintf("temp_id %q already used by show %d", s.TempID, first),
			})
			continue
		}
		seen[s.TempID] = i
	}
}

// checkTimeRanges enforces end > start on every item.
func (v *Validator) checkTimeRanges(doc *model.PlanDocument, res *ValidationResult) {
	for i := range doc.Shows {
		s := &doc.Shows[i]
		if !s.EndsAt.After(s.StartsAt) {
			idx := i
			res.Errors = append(res.Errors, ValidationError{
				Type:       ErrTypeInvalidTimeRange,
				ShowIndex:  &idx,
				ShowTempID: s.TempID,
				Field:      "ends_at",
				Message:    fmt.Sprintf("show %q must end after it starts", s.TempID),
			})
		}
	}
}

// checkReferences batch-resolves every referenced external code and flags
// the ones that do not resolve to a live entity.  Codes are collected per
// kind and resolved with one lookup per kind to bound latency.
func (v *Validator) checkReferences(ctx context.Context, doc *model.PlanDocument, res *ValidationResult) error {
	codesByKind := make(map[string]map[string]struct{})
	collect := func(kind, code string) {
		if code == "" {
			return
		}
		set, ok := codesByKind[kind]
		if !ok {
			set = make(map[string]struct{})
			codesByKind[kind] = set
		}
		set[code] = struct{}{}
	}
	for i := range doc.Shows {
		s := &doc.Shows[i]
		for _, rf := range itemRefFields {
			collect(rf.kind, rf.code(s))
		}
		for _, mc := range s.MCs {
			collect(model.KindHost, mc.HostCode)
		}
		for _, p := range s.Platforms {
			collect(model.KindPlatform, p.PlatformCode)
		}
	}

	resolved := make(map[string]map[string]uint64, len(codesByKind))
	for kind, set := range codesByKind {
		codes := make([]string, 0, len(set))
		for c := range set {
			codes = append(codes, c)
		}
		m, err := v.resolver.ResolveCodes(ctx, kind, codes)
		if err != nil {
			return fmt.Errorf("resolve %s codes: %w", kind, err)
		}
		resolved[kind] = m
	}

	missing := func(kind, code string) bool {
		if code == "" {
			return true
		}
		_, ok := resolved[kind][code]
		return !ok
	}
	addErr := func(i int, tempID, kind, field, code string) {
		idx := i
		msg := fmt.Sprintf("show %q references unknown %s %q", tempID, kind, code)
		if code == "" {
			msg = fmt.Sprintf("show %q is missing its %s", tempID, field)
		}
		res.Errors = append(res.Errors, ValidationError{
			Type:       ErrTypeMissingReference,
			ShowIndex:  &idx,
			ShowTempID: tempID,
			Field:      field,
			Message:    msg,
		})
	}

	// Report in document order so the error list is stable across runs.
	for i := range doc.Shows {
		s := &doc.Shows[i]
		for _, rf := range itemRefFields {
			if missing(rf.kind, rf.code(s)) {
				addErr(i, s.TempID, rf.kind, rf.field, rf.code(s))
			}
		}
		for _, mc := range s.MCs {
			if missing(model.KindHost, mc.HostCode) {
				addErr(i, s.TempID, model.KindHost, "mcs.host_code", mc.HostCode)
			}
		}
		for _, p := range s.Platforms {
			if missing(model.KindPlatform, p.PlatformCode) {
				addErr(i, s.TempID, model.KindPlatform, "platforms.platform_code", p.PlatformCode)
			}
		}
	}
	return nil
}

// checkConflicts aggregates host and room intervals across all shows in the
// document and reports every overlapping pair.  Items with an invalid time
// range are skipped; they are already reported and their intervals would
// only produce noise.  Conflicts with already-published sibling schedules
// are a documented extension point: a caller holding sibling intervals can
// run DetectConflicts over the merged set itself.
func (v *Validator) checkConflicts(doc *model.PlanDocument, res *ValidationResult) {
	var intervals []Interval
	for i := range doc.Shows {
		s := &doc.Shows[i]
		if !s.EndsAt.After(s.StartsAt) {
			continue
		}
		if s.RoomCode != "" {
			intervals = append(intervals, Interval{
				SubjectID: model.KindRoom + ":" + s.RoomCode,
				Index:     i,
				Start:     s.StartsAt,
				End:       s.EndsAt,
			})
		}
		hostSeen := make(map[string]struct{}, len(s.MCs))
		for _, mc := range s.MCs {
			if mc.HostCode == "" {
				continue
			}
			// A host listed twice on one show is one booking, not a conflict.
			if _, dup := hostSeen[mc.HostCode]; dup {
				continue
			}
			hostSeen[mc.HostCode] = struct{}{}
			intervals = append(intervals, Interval{
				SubjectID: model.KindHost + ":" + mc.HostCode,
				Index:     i,
				Start:     s.StartsAt,
				End:       s.EndsAt,
			})
		}
	}
	for _, p := range DetectConflicts(intervals) {
		first, second := p.FirstIndex, p.SecondIndex
		res.Errors = append(res.Errors, ValidationError{
			Type:          ErrTypeTimeConflict,
			ShowIndex:     &first,
			ShowTempID:    doc.Shows[first].TempID,
			ConflictsWith: &second,
			Message: fmt.Sprintf("%s is double-booked by shows %d and %d",
				p.SubjectID, first, second),
		})
	}
}
