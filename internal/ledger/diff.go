package ledger

import (
	"sort"
)

// DiffType categorizes a family's change between two runs.
type DiffType string

const (
	DiffAdded    DiffType = "added"
	DiffRemoved  DiffType = "removed"
	DiffModified DiffType = "modified"
)

// FamilyDiff is the change of one family between two runs.
type FamilyDiff struct {
	Family   string
	Type     DiffType
	Previous int
	Current  int
}

// Delta is Current minus Previous.
func (d FamilyDiff) Delta() int { return d.Current - d.Previous }

// Compare lists the families whose row count changed from prev to cur,
// sorted by family name. Families that failed to upload in either run are
// left out since their count says nothing about the tenancy.
func Compare(prev, cur Entry) []FamilyDiff {
	prevCounts := uploadedCounts(prev)
	curCounts := uploadedCounts(cur)

	var diffs []FamilyDiff
	for family, p := range prevCounts {
		c, ok := curCounts[family]
		switch {
		case !ok:
			if !failedIn(cur, family) {
				diffs = append(diffs, FamilyDiff{Family: family, Type: DiffRemoved, Previous: p})
			}
		case c != p:
			diffs = append(diffs, FamilyDiff{Family: family, Type: DiffModified, Previous: p, Current: c})
		}
	}
	for family, c := range curCounts {
		if _, ok := prevCounts[family]; !ok && !failedIn(prev, family) {
			diffs = append(diffs, FamilyDiff{Family: family, Type: DiffAdded, Current: c})
		}
	}

	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Family < diffs[j].Family })
	return diffs
}

func uploadedCounts(e Entry) map[string]int {
	m := make(map[string]int, len(e.Summary.Outcomes))
	for _, o := range e.Summary.Outcomes {
		if o.OK() {
			m[o.Family] = o.Records
		}
	}
	return m
}

func failedIn(e Entry, family string) bool {
	for _, o := range e.Summary.Outcomes {
		if o.Family == family && !o.OK() {
			return true
		}
	}
	return false
}
