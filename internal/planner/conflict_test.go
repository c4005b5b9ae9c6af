package planner

import (
	"testing"
	"time"
)

var base = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

func at(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

func TestDetectConflictsTouchingIntervals(t *testing.T) {
	// [A,B) and [B,C) for the same subject touch but do not overlap.
	pairs := DetectConflicts([]Interval{
		{SubjectID: "room:studio-a", Index: 0, Start: at(0), End: at(2)},
		{SubjectID: "room:studio-a", Index: 1, Start: at(2), End: at(4)},
	})
	if len(pairs) != 0 {
		t.Fatalf("expected no conflicts for touching intervals, got %v", pairs)
	}
}

func TestDetectConflictsOverlappingPair(t *testing.T) {
	// [A,C) and [B,D) with A<B<C<D overlap exactly once.
	pairs := DetectConflicts([]Interval{
		{SubjectID: "host:mc-1", Index: 3, Start: at(0), End: at(3)},
		{SubjectID: "host:mc-1", Index: 1, Start: at(2), End: at(5)},
	})
	if len(pairs) != 1 {
		t.Fatalf("expected exactly one conflict, got %v", pairs)
	}
	p := pairs[0]
	if p.SubjectID != "host:mc-1" || p.FirstIndex != 1 || p.SecondIndex != 3 {
		t.Fatalf("unexpected pair %+v", p)
	}
}

func TestDetectConflictsDifferentSubjects(t *testing.T) {
	// Identical intervals on different subjects never collide.
	pairs := DetectConflicts([]Interval{
		{SubjectID: "room:studio-a", Index: 0, Start: at(0), End: at(2)},
		{SubjectID: "room:studio-b", Index: 1, Start: at(0), End: at(2)},
	})
	if len(pairs) != 0 {
		t.Fatalf("expected no cross-subject conflicts, got %v", pairs)
	}
}

func TestDetectConflictsZeroDuration(t *testing.T) {
	pairs := DetectConflicts([]Interval{
		{SubjectID: "room:studio-a", Index: 0, Start: at(1), End: at(1)},
		{SubjectID: "room:studio-a", Index: 1, Start: at(1), End: at(1)},
	})
	if len(pairs) != 0 {
		t.Fatalf("expected zero-duration intervals to never conflict, got %v", pairs)
	}
}

func TestDetectConflictsContainment(t *testing.T) {
	// An interval fully inside another still counts as one overlap.
	pairs := DetectConflicts([]Interval{
		{SubjectID: "host:mc-2", Index: 0, Start: at(0), End: at(6)},
		{SubjectID: "host:mc-2", Index: 1, Start: at(2), End: at(3)},
	})
	if len(pairs) != 1 {
		t.Fatalf("expected one conflict for containment, got %v", pairs)
	}
}

func TestDetectConflictsDeterministicOrder(t *testing.T) {
	in := []Interval{
		{SubjectID: "host:b", Index: 2, Start: at(0), End: at(2)},
		{SubjectID: "host:b", Index: 3, Start: at(1), End: at(3)},
		{SubjectID: "host:a", Index: 0, Start: at(0), End: at(2)},
		{SubjectID: "host:a", Index: 1, Start: at(1), End: at(3)},
	}
	first := DetectConflicts(in)
	second := DetectConflicts(in)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected two conflicts, got %v and %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("output not deterministic: %v vs %v", first, second)
		}
	}
	if first[0].SubjectID != "host:a" || first[1].SubjectID != "host:b" {
		t.Fatalf("expected subjects in lexicographic order, got %v", first)
	}
}
