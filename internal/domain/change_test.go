package domain_test

import (
	"strings"
	"testing"

	"github.com/slotwatch/slotwatch/internal/domain"
)

func snap(slots ...domain.Slot) domain.Snapshot {
	s := make(domain.Snapshot, len(slots))
	for _, sl := range slots {
		s[sl.ID] = sl
	}
	return s
}

func TestDetect(t *testing.T) {
	a := domain.Slot{ID: 1, Name: "Downtown"}
	b := domain.Slot{ID: 2, Name: "Riverside"}
	c := domain.Slot{ID: 3, Name: "Airport"}

	t.Run("identical snapshots yield none", func(t *testing.T) {
		ch := domain.Detect(snap(a, b), snap(a, b))
		if ch.Kind != domain.ChangeNone {
			t.Fatalf("expected ChangeNone, got %v", ch.Kind)
		}
		if len(ch.Added) != 0 || len(ch.Removed) != 0 {
			t.Fatalf("expected no diff, got added=%v removed=%v", ch.Added, ch.Removed)
		}
	})

	t.Run("newly free item yields urgent", func(t *testing.T) {
		ch := domain.Detect(snap(a, b), snap(a, b, c))
		if ch.Kind != domain.ChangeUrgent {
			t.Fatalf("expected ChangeUrgent, got %v", ch.Kind)
		}
		if len(ch.Added) != 1 || ch.Added[0].ID != 3 {
			t.Fatalf("expected added={3}, got %v", ch.Added)
		}
		if len(ch.Removed) != 0 {
			t.Fatalf("expected no removals, got %v", ch.Removed)
		}
	})

	t.Run("removed item yields normal", func(t *testing.T) {
		ch := domain.Detect(snap(a, b), snap(a))
		if ch.Kind != domain.ChangeNormal {
			t.Fatalf("expected ChangeNormal, got %v", ch.Kind)
		}
		if len(ch.Added) != 0 {
			t.Fatalf("expected no additions, got %v", ch.Added)
		}
		if len(ch.Removed) != 1 || ch.Removed[0].ID != 2 {
			t.Fatalf("expected removed={2}, got %v", ch.Removed)
		}
	})

	t.Run("mixed change is urgent", func(t *testing.T) {
		ch := domain.Detect(snap(a, b), snap(a, c))
		if ch.Kind != domain.ChangeUrgent {
			t.Fatalf("expected ChangeUrgent, got %v", ch.Kind)
		}
		if len(ch.Added) != 1 || len(ch.Removed) != 1 {
			t.Fatalf("expected one addition and one removal, got added=%v removed=%v", ch.Added, ch.Removed)
		}
	})

	t.Run("empty snapshots yield none", func(t *testing.T) {
		if ch := domain.Detect(snap(), snap()); ch.Kind != domain.ChangeNone {
			t.Fatalf("expected ChangeNone, got %v", ch.Kind)
		}
	})

	t.Run("first observation of free items is urgent", func(t *testing.T) {
		ch := domain.Detect(snap(), snap(a, b))
		if ch.Kind != domain.ChangeUrgent {
			t.Fatalf("expected ChangeUrgent, got %v", ch.Kind)
		}
		if len(ch.Added) != 2 {
			t.Fatalf("expected both items added, got %v", ch.Added)
		}
	})

	t.Run("everything disappearing is normal", func(t *testing.T) {
		ch := domain.Detect(snap(a, b), snap())
		if ch.Kind != domain.ChangeNormal {
			t.Fatalf("expected ChangeNormal, got %v", ch.Kind)
		}
		if len(ch.Removed) != 2 {
			t.Fatalf("expected both items removed, got %v", ch.Removed)
		}
	})

	t.Run("detect of a snapshot against itself is always none", func(t *testing.T) {
		for _, s := range []domain.Snapshot{snap(), snap(a), snap(a, b, c)} {
			if ch := domain.Detect(s, s); ch.Kind != domain.ChangeNone {
				t.Fatalf("snapshot %v: expected ChangeNone, got %v", s, ch.Kind)
			}
		}
	})

	t.Run("diff slices are sorted by id", func(t *testing.T) {
		ch := domain.Detect(snap(), snap(c, a, b))
		for i := 1; i < len(ch.Added); i++ {
			if ch.Added[i-1].ID >= ch.Added[i].ID {
				t.Fatalf("added not sorted: %v", ch.Added)
			}
		}
		if len(ch.Free) != 3 || ch.Free[0].ID != 1 || ch.Free[2].ID != 3 {
			t.Fatalf("free not sorted: %v", ch.Free)
		}
	})
}

func TestChangeReport(t *testing.T) {
	t.Run("renders all sections and the source", func(t *testing.T) {
		prev := snap(domain.Slot{ID: 1, Name: "Downtown"}, domain.Slot{ID: 2, Name: "Riverside"})
		next := snap(domain.Slot{ID: 1, Name: "Downtown"}, domain.Slot{ID: 3, Name: "Airport"})
		got := domain.Detect(prev, next).Report("https://booking.example.org")

		want := "Newly free:\n" +
			" * Airport -- ID: 3\n" +
			"Currently free:\n" +
			" * Downtown -- ID: 1\n" +
			" * Airport -- ID: 3\n" +
			"No longer free:\n" +
			" * Riverside -- ID: 2\n" +
			"Source: https://booking.example.org"
		if got != want {
			t.Fatalf("report mismatch:\ngot:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("empty sections keep their labels", func(t *testing.T) {
		ch := domain.Detect(snap(), snap(domain.Slot{ID: 7, Name: "Harbor"}))
		got := ch.Report("src")
		for _, label := range []string{"Newly free:", "Currently free:", "No longer free:", "Source: src"} {
			if !strings.Contains(got, label) {
				t.Fatalf("report missing %q:\n%s", label, got)
			}
		}
	})
}
