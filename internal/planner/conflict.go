// Package planner implements the pure scheduling checks applied to a
// schedule's plan document: per-subject interval conflict detection and
// whole-document validation.  Nothing in this package touches the database
// directly; entity resolution is injected through an interface so the
// checks stay deterministic and trivially testable.
package planner

import (
	"sort"
	"time"
)

// Interval is one time-boxed booking of a subject (a host or a room).
// Index identifies the show plan item the interval came from, so a conflict
// can be reported against its source shows.
type Interval struct {
	SubjectID string
	Index     int
	Start     time.Time
	End       time.Time
}

// ConflictPair reports two intervals of the same subject that overlap.
// FirstIndex is always the smaller of the two show indices.
type ConflictPair struct {
	SubjectID   string
	FirstIndex  int
	SecondIndex int
}

// DetectConflicts reports every pair of intervals that overlap for the same
// subject.  Overlap uses half-open semantics: [s1,e1) and [s2,e2) collide
// iff s1 < e2 && s2 < e1.  Touching intervals (e1 == s2) therefore never
// conflict, and a zero-duration interval never conflicts with itself.
// Intervals of different subjects are never compared.  The input is not
// mutated and the function keeps no state, so any number of validators may
// call it concurrently.  Output order is deterministic: subjects in
// lexicographic order, pairs in index order within a subject.
func DetectConflicts(intervals []Interval) []ConflictPair {
	bySubject := make(map[string][]Interval)
	for _, iv := range intervals {
		bySubject[iv.SubjectID] = append(bySubject[iv.SubjectID], iv)
	}
	subjects := make([]string, 0, len(bySubject))
	for s := range bySubject {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	var pairs []ConflictPair
	for _, s := range subjects {
		ivs := bySubject[s]
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].Index < ivs[j].Index })
		for i := 0; i < len(ivs); i++ {
			for j := i + 1; j < len(ivs); j++ {
				a, b := ivs[i], ivs[j]
				if a.Start.Before(b.End) && b.Start.Before(a.End) {
					first, second := a.Index, b.Index
					if second < first {
						first, second = second, first
					}
					pairs = append(pairs, ConflictPair{SubjectID: s, FirstIndex: first, SecondIndex: second})
				}
			}
		}
	}
	return pairs
}
