package budget

import (
	"errors"
	"fmt"
	"sort"

	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// OVERLAP VALIDATOR - Do two rules of one category fire together?
// =============================================================================

// Overlap names two rule positions (First < Second) whose active windows
// produce occurrences at the same time.
type Overlap struct {
	First       int
	Second      int
	Occurrences int // occurrences of the first-detected rule inside the other's window
}

func (o Overlap) String() string {
	return fmt.Sprintf("rules %d and %d overlap", o.First, o.Second)
}

// FindOverlaps checks every pair of distinct rules, by position, and returns
// all overlapping pairs ordered by (First, Second). Two identical rules at
// different positions are still two rules.
//
// Rule i overlaps rule j when i fires at least once inside j's window, where
// j's missing bounds fall back to window. A rule with inverted bounds has no
// usable window and is skipped.
func FindOverlaps(rules []CategoryRule, window generic.DateRange) ([]Overlap, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[[2]int]bool)
	var overlaps []Overlap
	for i, a := range rules {
		if a.HasInvertedBounds() {
			continue
		}
		for j, b := range rules {
			if i == j || b.HasInvertedBounds() {
				continue
			}
			key := pairKey(i, j)
			if seen[key] {
				continue
			}
			n, err := a.OccurrencesIn(otherWindow(b, window))
			if err != nil {
				if errors.Is(err, generic.ErrInvalidRange) {
					continue
				}
				return nil, fmt.Errorf("rule %d against rule %d: %w", i, j, err)
			}
			if n > 0 {
				seen[key] = true
				overlaps = append(overlaps, Overlap{First: key[0], Second: key[1], Occurrences: n})
			}
		}
	}

	sortOverlaps(overlaps)
	return overlaps, nil
}

// HasOverlap reports whether any two rules overlap.
func HasOverlap(rules []CategoryRule, window generic.DateRange) (bool, error) {
	overlaps, err := FindOverlaps(rules, window)
	if err != nil {
		return false, err
	}
	return len(overlaps) > 0, nil
}

// otherWindow is rule b's own window with open ends taken from the fallback.
// It can still come out inverted, e.g. a rule starting after the budget ends.
func otherWindow(b CategoryRule, fallback generic.DateRange) generic.DateRange {
	w := fallback
	if start, ok := b.StartDate(); ok {
		w.Start = start
	}
	if end, ok := b.EndDate(); ok {
		w.End = end
	}
	return w
}

func pairKey(i, j int) [2]int {
	if i > j {
		return [2]int{j, i}
	}
	return [2]int{i, j}
}

func sortOverlaps(o []Overlap) {
	sort.Slice(o, func(a, b int) bool {
		if o[a].First != o[b].First {
			return o[a].First < o[b].First
		}
		return o[a].Second < o[b].Second
	})
}
