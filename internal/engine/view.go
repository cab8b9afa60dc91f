package engine

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"linguadrill/internal/models"
)

// SortOption selects the ordering of the visible item list.
type SortOption string

const (
	SortNone             SortOption = "none"
	SortAlphabetical     SortOption = "alphabetical"
	SortRandom           SortOption = "random"
	SortMostErrors       SortOption = "most-errors"
	SortWorstPerformance SortOption = "worst-performance"
)

// ParseSortOption maps a wire value to a SortOption, defaulting to SortNone.
func ParseSortOption(s string) SortOption {
	switch SortOption(s) {
	case SortAlphabetical, SortRandom, SortMostErrors, SortWorstPerformance:
		return SortOption(s)
	default:
		return SortNone
	}
}

// DisplayCount caps how many items are shown. DisplayAll disables the cap.
type DisplayCount int

const DisplayAll DisplayCount = 0

// ParseDisplayCount maps a requested count to one of the supported windows
// (10, 20, 30 or all).
func ParseDisplayCount(n int) DisplayCount {
	switch n {
	case 10, 20, 30:
		return DisplayCount(n)
	default:
		return DisplayAll
	}
}

// View computes the visible, ordered, windowed item list for a practice
// session.
//
// Ordering and membership are derived from two snapshots — a copy of per-item
// statistics and the set of item ids passing the filter — that are captured
// only when the sort option changes or the user explicitly refreshes. The
// statistics source keeps changing as the user answers, but items must not
// reorder or vanish mid-session: an item the user just mastered stays on
// screen until the next capture.
type View struct {
	items    []models.PracticeItem
	getStats func(id string) models.Statistics
	filter   func(item models.PracticeItem) bool
	refetch  func()

	sortOption   SortOption
	displayCount DisplayCount
	randomSeed   int64

	sortSnapshot   map[string]models.Statistics
	filterSnapshot map[string]bool

	// initialFilter is the one-time fallback used before any capture, so the
	// first render is not empty. It is computed once from the live predicate
	// and deliberately not updated if the predicate changes afterwards.
	initialFilter map[string]bool

	collator *collate.Collator
	now      func() time.Time
}

// ViewConfig carries the inputs of a View. GetStatistics and Filter may be
// nil; missing statistics default to zero counts and a nil filter keeps all
// items.
type ViewConfig struct {
	Items         []models.PracticeItem
	GetStatistics func(id string) models.Statistics
	Filter        func(item models.PracticeItem) bool
	Refetch       func()
}

// NewView creates a view in input order showing all items.
func NewView(cfg ViewConfig) *View {
	getStats := cfg.GetStatistics
	if getStats == nil {
		getStats = func(string) models.Statistics { return models.Statistics{} }
	}
	return &View{
		items:        cfg.Items,
		getStats:     getStats,
		filter:       cfg.Filter,
		refetch:      cfg.Refetch,
		sortOption:   SortNone,
		displayCount: DisplayAll,
		collator:     collate.New(language.Italian),
		now:          time.Now,
	}
}

// SortOption returns the current sort option.
func (v *View) SortOption() SortOption { return v.sortOption }

// DisplayCount returns the current display window.
func (v *View) DisplayCount() DisplayCount { return v.displayCount }

// SetSortOption changes the ordering and captures fresh snapshots.
func (v *View) SetSortOption(opt SortOption) {
	v.sortOption = opt
	v.capture()
}

// SetDisplayCount changes the window size. The window alone never triggers a
// capture; the underlying order stays frozen.
func (v *View) SetDisplayCount(count DisplayCount) {
	v.displayCount = count
}

// Refresh recaptures both snapshots, reseeds the shuffle when the current
// sort is random, and asks the statistics source to refetch.
func (v *View) Refresh() {
	v.capture()
}

// capture atomically replaces both snapshots with the current state of the
// statistics source and filter predicate. Between captures the visible list
// is derived from one consistent snapshot pair only.
func (v *View) capture() {
	if v.refetch != nil {
		v.refetch()
	}

	stats := make(map[string]models.Statistics, len(v.items))
	for _, item := range v.items {
		stats[item.ID] = v.getStats(item.ID)
	}
	v.sortSnapshot = stats

	passing := make(map[string]bool, len(v.items))
	for _, item := range v.items {
		if v.filter == nil || v.filter(item) {
			passing[item.ID] = true
		}
	}
	v.filterSnapshot = passing

	if v.sortOption == SortRandom {
		v.randomSeed = v.now().UnixMilli()
	}
}

// Visible returns the filtered, sorted, windowed item list.
func (v *View) Visible() []models.PracticeItem {
	visible := v.filtered()
	v.sortItems(visible)

	if v.displayCount != DisplayAll && len(visible) > int(v.displayCount) {
		visible = visible[:v.displayCount]
	}
	return visible
}

func (v *View) filtered() []models.PracticeItem {
	membership := v.filterSnapshot
	if membership == nil {
		if v.filter == nil {
			out := make([]models.PracticeItem, len(v.items))
			copy(out, v.items)
			return out
		}
		if v.initialFilter == nil {
			v.initialFilter = make(map[string]bool, len(v.items))
			for _, item := range v.items {
				if v.filter(item) {
					v.initialFilter[item.ID] = true
				}
			}
		}
		membership = v.initialFilter
	}

	out := make([]models.PracticeItem, 0, len(v.items))
	for _, item := range v.items {
		if membership[item.ID] {
			out = append(out, item)
		}
	}
	return out
}

func (v *View) sortItems(items []models.PracticeItem) {
	switch v.sortOption {
	case SortAlphabetical:
		sort.SliceStable(items, func(i, j int) bool {
			return v.collator.CompareString(items[i].Translation, items[j].Translation) < 0
		})
	case SortRandom:
		shuffle(items, v.randomSeed)
	case SortMostErrors:
		sort.SliceStable(items, func(i, j int) bool {
			return v.snapshotStats(items[i].ID).Wrong > v.snapshotStats(items[j].ID).Wrong
		})
	case SortWorstPerformance:
		sort.SliceStable(items, func(i, j int) bool {
			return performanceScore(v.snapshotStats(items[i].ID)) > performanceScore(v.snapshotStats(items[j].ID))
		})
	}
}

// snapshotStats reads from the frozen statistics copy; items missing from
// the snapshot count as never practiced.
func (v *View) snapshotStats(id string) models.Statistics {
	return v.sortSnapshot[id]
}

// performanceScore orders items for worst-performance sort: high wrong counts
// outweigh high correct counts.
func performanceScore(s models.Statistics) int {
	return s.Wrong - s.Correct
}

// shuffle applies a Fisher-Yates permutation driven by a small linear
// congruential generator. The same seed always yields the same permutation,
// so a "refresh" only changes the order when it changes the seed.
func shuffle(items []models.PracticeItem, seed int64) {
	rng := lcg{state: seed}
	for i := len(items) - 1; i > 0; i-- {
		j := int(rng.next() * float64(i+1))
		items[i], items[j] = items[j], items[i]
	}
}

const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

type lcg struct {
	state int64
}

// next advances the generator and returns a draw in [0, 1).
func (g *lcg) next() float64 {
	g.state = (g.state*lcgMultiplier + lcgIncrement) % lcgModulus
	if g.state < 0 {
		g.state += lcgModulus
	}
	return float64(g.state) / lcgModulus
}
