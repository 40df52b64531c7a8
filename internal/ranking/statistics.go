package ranking

import "math"

// BudgetVariance counts bids relative to the project budget
type BudgetVariance struct {
	UnderBudget int `json:"underBudget"`
	OnBudget    int `json:"onBudget"`
	OverBudget  int `json:"overBudget"`
}

// ExperienceDistribution buckets bidders by declared years of experience
type ExperienceDistribution struct {
	Expert       int `json:"expert"`       // >= 10 years
	Experienced  int `json:"experienced"`  // 5..9
	Intermediate int `json:"intermediate"` // 2..4
	Junior       int `json:"junior"`       // < 2
}

// ScoreDistribution buckets bids by score band
type ScoreDistribution struct {
	Excellent int `json:"excellent"` // >= 80
	Good      int `json:"good"`      // 60..79
	Average   int `json:"average"`   // 40..59
	Poor      int `json:"poor"`      // < 40
}

// Statistics is the read-side summary of a project's bid set
type Statistics struct {
	TotalBids              int                    `json:"totalBids"`
	CountsByStatus         map[string]int         `json:"countsByStatus"`
	AverageBidAmount       float64                `json:"averageBidAmount"`
	LowestBid              float64                `json:"lowestBid"`
	HighestBid             float64                `json:"highestBid"`
	AverageScore           int                    `json:"averageScore"`
	TopScore               int                    `json:"topScore"`
	BudgetVariance         BudgetVariance         `json:"budgetVariance"`
	ExperienceDistribution ExperienceDistribution `json:"experienceDistribution"`
	ScoreDistribution      ScoreDistribution      `json:"scoreDistribution"`
}

// Summarize computes the bid-set statistics for one project. Pure; no
// side effects.
func Summarize(entries []Entry, budget float64) Statistics {
	stats := Statistics{
		TotalBids:      len(entries),
		CountsByStatus: make(map[string]int),
	}
	if len(entries) == 0 {
		return stats
	}

	var amountSum float64
	var scoreSum int
	stats.LowestBid = entries[0].Amount
	stats.HighestBid = entries[0].Amount

	for _, e := range entries {
		stats.CountsByStatus[e.Status]++

		amountSum += e.Amount
		if e.Amount < stats.LowestBid {
			stats.LowestBid = e.Amount
		}
		if e.Amount > stats.HighestBid {
			stats.HighestBid = e.Amount
		}

		scoreSum += e.Score
		if e.Score > stats.TopScore {
			stats.TopScore = e.Score
		}

		switch {
		case e.Amount < budget:
			stats.BudgetVariance.UnderBudget++
		case e.Amount == budget:
			stats.BudgetVariance.OnBudget++
		default:
			stats.BudgetVariance.OverBudget++
		}

		switch {
		case e.ExperienceYears >= 10:
			stats.ExperienceDistribution.Expert++
		case e.ExperienceYears >= 5:
			stats.ExperienceDistribution.Experienced++
		case e.ExperienceYears >= 2:
			stats.ExperienceDistribution.Intermediate++
		default:
			stats.ExperienceDistribution.Junior++
		}

		switch {
		case e.Score >= 80:
			stats.ScoreDistribution.Excellent++
		case e.Score >= 60:
			stats.ScoreDistribution.Good++
		case e.Score >= 40:
			stats.ScoreDistribution.Average++
		default:
			stats.ScoreDistribution.Poor++
		}
	}

	stats.AverageBidAmount = math.Round(amountSum / float64(len(entries)))
	stats.AverageScore = int(math.Round(float64(scoreSum) / float64(len(entries))))
	return stats
}
