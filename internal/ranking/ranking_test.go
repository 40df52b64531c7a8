package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func entryAt(id string, score int, created time.Time) Entry {
	return Entry{ID: id, Score: score, CreatedAt: created}
}

func TestRankAssignsPermutation(t *testing.T) {
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		entryAt("c", 55, base),
		entryAt("a", 91, base.Add(time.Hour)),
		entryAt("d", 40, base),
		entryAt("b", 72, base),
	}

	placements := Rank(entries)

	assert.Len(t, placements, 4)
	seen := make(map[int]string)
	for _, p := range placements {
		seen[p.Rank] = p.ID
	}
	// Ranks 1..N with no gaps, ordered by score
	assert.Equal(t, "a", seen[1])
	assert.Equal(t, "b", seen[2])
	assert.Equal(t, "c", seen[3])
	assert.Equal(t, "d", seen[4])
}

func TestRankPercentileEndpoints(t *testing.T) {
	base := time.Now()
	entries := []Entry{
		entryAt("top", 95, base),
		entryAt("mid", 70, base),
		entryAt("low", 20, base),
	}

	placements := Rank(entries)

	byID := make(map[string]Placement)
	for _, p := range placements {
		byID[p.ID] = p
	}
	assert.Equal(t, 100, byID["top"].Percentile)
	assert.Equal(t, 50, byID["mid"].Percentile)
	assert.Equal(t, 0, byID["low"].Percentile)
}

func TestRankSingleBid(t *testing.T) {
	placements := Rank([]Entry{entryAt("only", 12, time.Now())})

	assert.Len(t, placements, 1)
	assert.Equal(t, 1, placements[0].Rank)
	assert.Equal(t, 100, placements[0].Percentile)
}

func TestRankEmpty(t *testing.T) {
	assert.Nil(t, Rank(nil))
	assert.Nil(t, Rank([]Entry{}))
}

func TestRankTieBreaksByCreationThenID(t *testing.T) {
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		entryAt("later", 80, base.Add(time.Minute)),
		entryAt("earlier", 80, base),
		entryAt("zz-same-time", 80, base),
	}

	placements := Rank(entries)

	assert.Equal(t, "earlier", placements[0].ID)
	assert.Equal(t, "zz-same-time", placements[1].ID)
	assert.Equal(t, "later", placements[2].ID)
	assert.Equal(t, []int{1, 2, 3}, []int{placements[0].Rank, placements[1].Rank, placements[2].Rank})
}

func TestRankDoesNotMutateInput(t *testing.T) {
	base := time.Now()
	entries := []Entry{
		entryAt("a", 10, base),
		entryAt("b", 90, base),
	}

	Rank(entries)

	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
}

func TestPercentileRounding(t *testing.T) {
	// Seven bids: rank 3 is round(100*4/6) = 67
	assert.Equal(t, 67, percentile(3, 7))
	assert.Equal(t, 100, percentile(1, 7))
	assert.Equal(t, 0, percentile(7, 7))
	assert.Equal(t, 100, percentile(1, 1))
}

func TestCompetitiveAdvantageLabels(t *testing.T) {
	assert.Equal(t, "Best overall bid", CompetitiveAdvantage(1))
	assert.Equal(t, "Strong alternative option", CompetitiveAdvantage(2))
	assert.Equal(t, "Solid third choice", CompetitiveAdvantage(3))
	assert.Equal(t, "Worth considering", CompetitiveAdvantage(5))
	assert.Equal(t, "Under review", CompetitiveAdvantage(6))
}

func TestSummarize(t *testing.T) {
	base := time.Now()
	entries := []Entry{
		{ID: "a", Score: 88, Amount: 80000, Status: "submitted", ExperienceYears: 11, CreatedAt: base},
		{ID: "b", Score: 64, Amount: 100000, Status: "submitted", ExperienceYears: 6, CreatedAt: base},
		{ID: "c", Score: 45, Amount: 120000, Status: "shortlisted", ExperienceYears: 3, CreatedAt: base},
		{ID: "d", Score: 20, Amount: 96000, Status: "rejected", ExperienceYears: 0, CreatedAt: base},
	}

	stats := Summarize(entries, 100000)

	assert.Equal(t, 4, stats.TotalBids)
	assert.Equal(t, 2, stats.CountsByStatus["submitted"])
	assert.Equal(t, 1, stats.CountsByStatus["shortlisted"])
	assert.Equal(t, float64(99000), stats.AverageBidAmount)
	assert.Equal(t, float64(80000), stats.LowestBid)
	assert.Equal(t, float64(120000), stats.HighestBid)
	assert.Equal(t, 54, stats.AverageScore)
	assert.Equal(t, 88, stats.TopScore)

	assert.Equal(t, BudgetVariance{UnderBudget: 2, OnBudget: 1, OverBudget: 1}, stats.BudgetVariance)
	assert.Equal(t, ExperienceDistribution{Expert: 1, Experienced: 1, Intermediate: 1, Junior: 1}, stats.ExperienceDistribution)
	assert.Equal(t, ScoreDistribution{Excellent: 1, Good: 1, Average: 1, Poor: 1}, stats.ScoreDistribution)
}

func TestSummarizeEmpty(t *testing.T) {
	stats := Summarize(nil, 50000)

	assert.Equal(t, 0, stats.TotalBids)
	assert.Empty(t, stats.CountsByStatus)
	assert.Zero(t, stats.AverageBidAmount)
}
