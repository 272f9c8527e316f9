package domain

import (
	"fmt"
	"strings"
)

// ChangeKind classifies the outcome of comparing two snapshots.
type ChangeKind string

const (
	ChangeNone   ChangeKind = "none"
	ChangeNormal ChangeKind = "normal"
	ChangeUrgent ChangeKind = "urgent"
)

func (k ChangeKind) IsValid() bool {
	switch k {
	case ChangeNone, ChangeNormal, ChangeUrgent:
		return true
	}
	return false
}

// Change is the result of one poll cycle. Added holds items free now but not
// before, Removed items free before but not now, Free everything currently
// free. All slices are sorted by ID.
type Change struct {
	Kind    ChangeKind
	Added   []Slot
	Removed []Slot
	Free    []Slot
}

// Detect compares the previous snapshot with the newly observed one. The kind
// is ChangeNone when the free sets are identical, ChangeUrgent when at least
// one item became free, and ChangeNormal when items only disappeared. Urgency
// is driven solely by new availability; removals are informational.
func Detect(prev, next Snapshot) Change {
	var added, removed []Slot
	for id, slot := range next {
		if _, ok := prev[id]; !ok {
			added = append(added, slot)
		}
	}
	for id, slot := range prev {
		if _, ok := next[id]; !ok {
			removed = append(removed, slot)
		}
	}

	if len(added) == 0 && len(removed) == 0 {
		return Change{Kind: ChangeNone}
	}

	sortByID(added)
	sortByID(removed)

	kind := ChangeNormal
	if len(added) > 0 {
		kind = ChangeUrgent
	}
	return Change{Kind: kind, Added: added, Removed: removed, Free: next.Slots()}
}

// Report renders the change as a three-section message: newly free items,
// everything currently free, and items no longer free, followed by the
// source the data came from.
func (c Change) Report(source string) string {
	var b strings.Builder
	writeSection(&b, "Newly free:", c.Added)
	writeSection(&b, "Currently free:", c.Free)
	writeSection(&b, "No longer free:", c.Removed)
	fmt.Fprintf(&b, "Source: %s", source)
	return b.String()
}

func writeSection(b *strings.Builder, label string, slots []Slot) {
	b.WriteString(label)
	b.WriteByte('\n')
	for _, s := range slots {
		fmt.Fprintf(b, " * %s -- ID: %d\n", s.Name, s.ID)
	}
}
