package engine

import (
	"fmt"
	"testing"
	"time"

	"linguadrill/internal/models"
)

func testItems(ids ...string) []models.PracticeItem {
	items := make([]models.PracticeItem, len(ids))
	for i, id := range ids {
		items[i] = models.PracticeItem{
			ID:          id,
			Translation: id,
			Fields: []models.AnswerField{
				{Name: models.SingleAnswerFieldName, Answer: id},
			},
		}
	}
	return items
}

func visibleIDs(v *View) []string {
	visible := v.Visible()
	ids := make([]string, len(visible))
	for i, item := range visible {
		ids[i] = item.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestViewStatisticsSorts(t *testing.T) {
	stats := map[string]models.Statistics{
		"A": {Correct: 5, Wrong: 1},
		"B": {Correct: 2, Wrong: 3},
		"C": {},
	}
	newStatsView := func() *View {
		return NewView(ViewConfig{
			Items:         testItems("A", "B", "C"),
			GetStatistics: func(id string) models.Statistics { return stats[id] },
		})
	}

	t.Run("most errors descends by wrong count", func(t *testing.T) {
		v := newStatsView()
		v.SetSortOption(SortMostErrors)

		expected := []string{"B", "A", "C"}
		if got := visibleIDs(v); !equalIDs(got, expected) {
			t.Errorf("Visible() = %v, want %v", got, expected)
		}
	})

	t.Run("worst performance descends by wrong minus correct", func(t *testing.T) {
		v := newStatsView()
		v.SetSortOption(SortWorstPerformance)

		expected := []string{"B", "C", "A"}
		if got := visibleIDs(v); !equalIDs(got, expected) {
			t.Errorf("Visible() = %v, want %v", got, expected)
		}
	})
}

func TestViewAlphabeticalSort(t *testing.T) {
	items := []models.PracticeItem{
		{ID: "1", Translation: "zucca"},
		{ID: "2", Translation: "albero"},
		{ID: "3", Translation: "mela"},
	}
	v := NewView(ViewConfig{Items: items})
	v.SetSortOption(SortAlphabetical)

	expected := []string{"2", "3", "1"}
	if got := visibleIDs(v); !equalIDs(got, expected) {
		t.Errorf("Visible() = %v, want %v", got, expected)
	}
}

func TestViewRandomSortDeterminism(t *testing.T) {
	ids := make([]string, 10)
	for i := range ids {
		ids[i] = fmt.Sprintf("item-%02d", i)
	}

	newSeededView := func(seedTime time.Time) *View {
		v := NewView(ViewConfig{Items: testItems(ids...)})
		v.now = func() time.Time { return seedTime }
		v.SetSortOption(SortRandom)
		return v
	}

	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	first := visibleIDs(newSeededView(t1))
	second := visibleIDs(newSeededView(t1))
	if !equalIDs(first, second) {
		t.Errorf("identical seeds produced different permutations: %v vs %v", first, second)
	}

	other := visibleIDs(newSeededView(t2))
	if equalIDs(first, other) {
		t.Errorf("different seeds produced the identical permutation %v", first)
	}

	if equalIDs(first, ids) {
		t.Errorf("shuffle left the items in input order: %v", first)
	}
}

func TestViewRefreshReseedsRandomSort(t *testing.T) {
	clock := newFakeClock()
	v := NewView(ViewConfig{Items: testItems("A", "B", "C", "D", "E", "F", "G", "H")})
	v.now = clock.now
	v.SetSortOption(SortRandom)

	before := visibleIDs(v)
	if !equalIDs(before, visibleIDs(v)) {
		t.Fatal("repeated renders without a refresh must not reorder")
	}

	clock.advance(7 * time.Second)
	v.Refresh()
	after := visibleIDs(v)
	if equalIDs(before, after) {
		t.Errorf("refresh with a new seed kept the permutation %v", before)
	}
}

func TestViewSnapshotFreezesOrdering(t *testing.T) {
	stats := map[string]models.Statistics{
		"A": {Wrong: 1},
		"B": {Wrong: 3},
		"C": {Wrong: 2},
	}
	v := NewView(ViewConfig{
		Items:         testItems("A", "B", "C"),
		GetStatistics: func(id string) models.Statistics { return stats[id] },
	})
	v.SetSortOption(SortMostErrors)

	expected := []string{"B", "C", "A"}
	if got := visibleIDs(v); !equalIDs(got, expected) {
		t.Fatalf("Visible() = %v, want %v", got, expected)
	}

	// Ongoing practice mutates the statistics source; the frozen snapshot
	// must keep the order stable.
	stats["A"] = models.Statistics{Wrong: 10}
	if got := visibleIDs(v); !equalIDs(got, expected) {
		t.Errorf("Visible() after mutation = %v, want unchanged %v", got, expected)
	}

	v.Refresh()
	expected = []string{"A", "B", "C"}
	if got := visibleIDs(v); !equalIDs(got, expected) {
		t.Errorf("Visible() after refresh = %v, want %v", got, expected)
	}
}

func TestViewFilterSnapshotKeepsMasteredItemsVisible(t *testing.T) {
	stats := map[string]models.Statistics{}
	mastered := func(item models.PracticeItem) bool {
		return stats[item.ID].Correct < 3
	}
	v := NewView(ViewConfig{
		Items:         testItems("A", "B", "C"),
		GetStatistics: func(id string) models.Statistics { return stats[id] },
		Filter:        mastered,
	})
	v.SetSortOption(SortNone)

	if got := visibleIDs(v); !equalIDs(got, []string{"A", "B", "C"}) {
		t.Fatalf("Visible() = %v, want all items", got)
	}

	// The user masters item B mid-session; it must not vanish until an
	// explicit refresh.
	stats["B"] = models.Statistics{Correct: 5}
	if got := visibleIDs(v); !equalIDs(got, []string{"A", "B", "C"}) {
		t.Errorf("Visible() = %v, want B still present before refresh", got)
	}

	v.Refresh()
	if got := visibleIDs(v); !equalIDs(got, []string{"A", "C"}) {
		t.Errorf("Visible() after refresh = %v, want %v", got, []string{"A", "C"})
	}
}

func TestViewInitialFilterFallback(t *testing.T) {
	excluded := map[string]bool{"B": true}
	v := NewView(ViewConfig{
		Items:  testItems("A", "B", "C"),
		Filter: func(item models.PracticeItem) bool { return !excluded[item.ID] },
	})

	// No capture has happened yet: the one-time initial filter applies.
	if got := visibleIDs(v); !equalIDs(got, []string{"A", "C"}) {
		t.Fatalf("Visible() = %v, want %v", got, []string{"A", "C"})
	}

	// Predicate changes are ignored until a capture.
	excluded["C"] = true
	if got := visibleIDs(v); !equalIDs(got, []string{"A", "C"}) {
		t.Errorf("Visible() = %v, want the initial filter to stay frozen", got)
	}

	v.Refresh()
	if got := visibleIDs(v); !equalIDs(got, []string{"A"}) {
		t.Errorf("Visible() after refresh = %v, want %v", got, []string{"A"})
	}
}

func TestViewDisplayWindow(t *testing.T) {
	ids := make([]string, 25)
	for i := range ids {
		ids[i] = fmt.Sprintf("item-%02d", i)
	}
	v := NewView(ViewConfig{Items: testItems(ids...)})

	v.SetDisplayCount(DisplayCount(10))
	got := visibleIDs(v)
	if len(got) != 10 {
		t.Fatalf("len(Visible()) = %d, want 10", len(got))
	}
	if !equalIDs(got, ids[:10]) {
		t.Errorf("Visible() = %v, want the first 10 in order", got)
	}

	v.SetDisplayCount(DisplayAll)
	if got := visibleIDs(v); len(got) != 25 {
		t.Errorf("len(Visible()) = %d, want 25", len(got))
	}
}

func TestViewCaptureInvokesRefetch(t *testing.T) {
	refetches := 0
	v := NewView(ViewConfig{
		Items:   testItems("A"),
		Refetch: func() { refetches++ },
	})

	v.SetSortOption(SortAlphabetical)
	v.Refresh()
	v.SetDisplayCount(DisplayCount(10))

	if refetches != 2 {
		t.Errorf("refetch invoked %d times, want 2 (sort change and refresh only)", refetches)
	}
}

func TestParseSortOption(t *testing.T) {
	tests := []struct {
		input    string
		expected SortOption
	}{
		{"alphabetical", SortAlphabetical},
		{"random", SortRandom},
		{"most-errors", SortMostErrors},
		{"worst-performance", SortWorstPerformance},
		{"none", SortNone},
		{"bogus", SortNone},
		{"", SortNone},
	}

	for _, tt := range tests {
		if got := ParseSortOption(tt.input); got != tt.expected {
			t.Errorf("ParseSortOption(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseDisplayCount(t *testing.T) {
	tests := []struct {
		input    int
		expected DisplayCount
	}{
		{10, DisplayCount(10)},
		{20, DisplayCount(20)},
		{30, DisplayCount(30)},
		{0, DisplayAll},
		{15, DisplayAll},
		{-1, DisplayAll},
	}

	for _, tt := range tests {
		if got := ParseDisplayCount(tt.input); got != tt.expected {
			t.Errorf("ParseDisplayCount(%d) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
