package domain

import "sort"

// Slot is one bookable item that currently offers availability.
type Slot struct {
	ID   uint32
	Name string
}

// Snapshot is the full set of free items observed by a single poll, keyed by
// item ID. A snapshot is owned by the worker that produced it and is replaced
// wholesale on every successful poll, never merged in place.
type Snapshot map[uint32]Slot

// Slots returns the snapshot's items sorted by ID.
func (s Snapshot) Slots() []Slot {
	out := make([]Slot, 0, len(s))
	for _, slot := range s {
		out = append(out, slot)
	}
	sortByID(out)
	return out
}

func sortByID(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })
}
