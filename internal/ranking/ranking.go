// Package ranking orders a project's scored bids and derives rank and
// percentile. All computations are pure; persistence is the caller's
// concern.
package ranking

import (
	"sort"
	"time"
)

// Entry is one scored bid as seen by the ranking engine
type Entry struct {
	ID              string
	Score           int
	Amount          float64
	Status          string
	ExperienceYears int
	CreatedAt       time.Time
}

// Placement is the rank and percentile assigned to one bid
type Placement struct {
	ID         string
	Rank       int
	Percentile int
}

// Rank orders entries by score descending and assigns rank 1..N with no
// gaps. Ties break by earliest CreatedAt, then by id. Percentile is
// round(100*(N-rank)/(N-1)); a lone bid gets 100.
func Rank(entries []Entry) []Placement {
	n := len(entries)
	if n == 0 {
		return nil
	}

	ordered := make([]Entry, n)
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	placements := make([]Placement, n)
	for i, entry := range ordered {
		rank := i + 1
		placements[i] = Placement{
			ID:         entry.ID,
			Rank:       rank,
			Percentile: percentile(rank, n),
		}
	}
	return placements
}

func percentile(rank, n int) int {
	if n <= 1 {
		return 100
	}
	// Integer arithmetic with rounding: (N-rank)/(N-1) scaled to 100
	return (100*(n-rank) + (n-1)/2) / (n - 1)
}

// CompetitiveAdvantage labels a bid's standing from its rank
func CompetitiveAdvantage(rank int) string {
	switch {
	case rank == 1:
		return "Best overall bid"
	case rank == 2:
		return "Strong alternative option"
	case rank == 3:
		return "Solid third choice"
	case rank <= 5:
		return "Worth considering"
	default:
		return "Under review"
	}
}
