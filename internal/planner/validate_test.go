package planner

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
)

// stubResolver resolves codes from a static per-kind table.  Unknown codes
// are simply absent from the result, mirroring the repository behaviour for
// missing and soft-deleted rows.
type stubResolver struct {
	known map[string]map[string]uint64
}

func (r *stubResolver) ResolveCodes(_ context.Context, kind string, codes []string) (map[string]uint64, error) {
	out := make(map[string]uint64)
	for _, c := range codes {
		if id, ok := r.known[kind][c]; ok {
			out[c] = id
		}
	}
	return out, nil
}

func newTestValidator() *Validator {
	return NewValidator(&stubResolver{known: map[string]map[string]uint64{
		model.KindClient:       {"acme": 1},
		model.KindRoom:         {"studio-a": 1, "studio-b": 2},
		model.KindHost:         {"mc-ana": 1, "mc-bob": 2},
		model.KindPlatform:     {"ytube": 1, "twitch": 2},
		model.KindShowType:     {"live": 1},
		model.KindShowStatus:   {"confirmed": 1},
		model.KindShowStandard: {"hd": 1},
	}})
}

func planItem(tempID string, start, end time.Time) model.ShowPlanItem {
	return model.ShowPlanItem{
		TempID:           tempID,
		Name:             "Morning Block " + tempID,
		StartsAt:         start,
		EndsAt:           end,
		ClientCode:       "acme",
		RoomCode:         "studio-a",
		ShowTypeCode:     "live",
		ShowStatusCode:   "confirmed",
		ShowStandardCode: "hd",
		MCs:              []model.HostStub{{HostCode: "mc-ana"}},
		Platforms:        []model.PlatformStub{{PlatformCode: "ytube", StreamLink: "https://y.example/1"}},
	}
}

func TestValidateCleanDocument(t *testing.T) {
	v := newTestValidator()
	doc := &model.PlanDocument{Shows: []model.ShowPlanItem{
		planItem("s1", at(0), at(2)),
		planItem("s2", at(2), at(4)), // touches s1, no conflict
	}}
	res, err := v.Validate(context.Background(), doc)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.IsValid || len(res.Errors) != 0 {
		t.Fatalf("expected valid document, got %+v", res.Errors)
	}
}

func TestValidateDuplicateTempID(t *testing.T) {
	v := newTestValidator()
	doc := &model.PlanDocument{Shows: []model.ShowPlanItem{
		planItem("s1", at(0), at(1)),
		planItem("s1", at(2), at(3)),
	}}
	res, err := v.Validate(context.Background(), doc)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.IsValid || len(res.Errors) != 1 {
		t.Fatalf("expected one error, got %+v", res.Errors)
	}
	e := res.Errors[0]
	if e.Type != ErrTypeDuplicateTempID || e.ShowIndex == nil || *e.ShowIndex != 1 {
		t.Fatalf("unexpected error %+v", e)
	}
}

func TestValidateCollectsAllDefects(t *testing.T) {
	v := newTestValidator()
	bad := planItem("s1", at(3), at(1)) // inverted range
	dangling := planItem("s2", at(4), at(5))
	dangling.MCs = []model.HostStub{{HostCode: "mc-ghost"}} // unknown host
	doc := &model.PlanDocument{Shows: []model.ShowPlanItem{bad, dangling}}

	res, err := v.Validate(context.Background(), doc)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.IsValid {
		t.Fatal("expected invalid document")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected exactly two errors (no short-circuit), got %d: %+v", len(res.Errors), res.Errors)
	}
	if res.Errors[0].Type != ErrTypeInvalidTimeRange {
		t.Fatalf("expected invalid_time_range first, got %+v", res.Errors[0])
	}
	if res.Errors[1].Type != ErrTypeMissingReference || res.Errors[1].Field != "mcs.host_code" {
		t.Fatalf("expected missing_reference for host, got %+v", res.Errors[1])
	}
}

func TestValidateMissingRoomReference(t *testing.T) {
	v := newTestValidator()
	item := planItem("s1", at(0), at(1))
	item.RoomCode = "studio-z"
	doc := &model.PlanDocument{Shows: []model.ShowPlanItem{item}}

	res, err := v.Validate(context.Background(), doc)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Type != ErrTypeMissingReference || res.Errors[0].Field != "room_code" {
		t.Fatalf("unexpected errors %+v", res.Errors)
	}
}

func TestValidateRoomConflict(t *testing.T) {
	v := newTestValidator()
	doc := &model.PlanDocument{Shows: []model.ShowPlanItem{
		planItem("s1", at(0), at(3)),
		planItem("s2", at(2), at(4)), // same room, overlaps s1
	}}
	// Different hosts so only the room collides.
	doc.Shows[1].MCs = []model.HostStub{{HostCode: "mc-bob"}}

	res, err := v.Validate(context.Background(), doc)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected one conflict error, got %+v", res.Errors)
	}
	e := res.Errors[0]
	if e.Type != ErrTypeTimeConflict || e.ShowIndex == nil || *e.ShowIndex != 0 ||
		e.ConflictsWith == nil || *e.ConflictsWith != 1 {
		t.Fatalf("unexpected conflict error %+v", e)
	}
}

func TestValidateHostConflictAcrossRooms(t *testing.T) {
	v := newTestValidator()
	doc := &model.PlanDocument{Shows: []model.ShowPlanItem{
		planItem("s1", at(0), at(3)),
		planItem("s2", at(1), at(2)),
	}}
	// Different rooms, same MC: the host is the conflicting subject.
	doc.Shows[1].RoomCode = "studio-b"

	res, err := v.Validate(context.Background(), doc)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Type != ErrTypeTimeConflict {
		t.Fatalf("expected one host conflict, got %+v", res.Errors)
	}
}
