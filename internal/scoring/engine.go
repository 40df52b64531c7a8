// Package scoring computes the deterministic bid score used for award
// decisions. A score is a pure function of the bid and the project
// budget; re-scoring unchanged inputs always yields the same result.
package scoring

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Score bands used for review labels and distribution buckets
const (
	BandExcellent = 80
	BandGood      = 60
	BandAverage   = 40
)

// BidInput carries the bid signals the engine scores
type BidInput struct {
	Amount          float64
	Proposal        string
	TimelineWeeks   int
	TimelineText    string
	ExperienceYears int
	SimilarProjects int
	TeamSize        int
	Qualifications  []string
	References      []string
}

// ProjectInput carries the project-side scoring context
type ProjectInput struct {
	Budget         float64
	DurationMonths int
}

// Breakdown is the per-component sub-score contribution.
// Weights: price 30, proposal 25, experience 20, qualifications 15,
// timeline 10. The composite score is their sum, in [0, 100].
type Breakdown struct {
	Price          int `json:"price" bson:"price"`
	Proposal       int `json:"proposal" bson:"proposal"`
	Experience     int `json:"experience" bson:"experience"`
	Qualifications int `json:"qualifications" bson:"qualifications"`
	Timeline       int `json:"timeline" bson:"timeline"`
}

// Review is the human-readable assessment derived from the sub-scores
type Review struct {
	Overall        string   `json:"overall" bson:"overall"`
	Strengths      []string `json:"strengths" bson:"strengths"`
	Weaknesses     []string `json:"weaknesses" bson:"weaknesses"`
	Recommendation string   `json:"recommendation" bson:"recommendation"`
}

// RiskAssessment categorizes the bid's delivery risk
type RiskAssessment struct {
	OverallRisk string   `json:"overallRisk" bson:"overallRisk"`
	Factors     []string `json:"factors,omitempty" bson:"factors,omitempty"`
}

// Analysis is the complete scoring output for one bid
type Analysis struct {
	Score      int            `json:"aiScore" bson:"aiScore"`
	Breakdown  Breakdown      `json:"breakdown" bson:"breakdown"`
	Review     Review         `json:"review" bson:"review"`
	Risk       RiskAssessment `json:"risk" bson:"risk"`
	AnalyzedAt time.Time      `json:"analyzedAt" bson:"analyzedAt"`
}

// Engine scores bids against a project budget
type Engine struct{}

// NewEngine creates a bid scoring engine
func NewEngine() *Engine {
	return &Engine{}
}

// Score computes the composite score for one bid. now is injected so the
// scoring itself stays a pure function of the inputs.
func (e *Engine) Score(bid BidInput, project ProjectInput, now time.Time) Analysis {
	breakdown := Breakdown{
		Price:          priceScore(bid.Amount, project.Budget),
		Proposal:       proposalScore(bid.Proposal),
		Experience:     experienceScore(bid.ExperienceYears),
		Qualifications: qualificationScore(len(bid.Qualifications)),
		Timeline:       timelineScore(timelineWeeks(bid), expectedWeeks(project)),
	}

	score := breakdown.Price + breakdown.Proposal + breakdown.Experience +
		breakdown.Qualifications + breakdown.Timeline
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return Analysis{
		Score:      score,
		Breakdown:  breakdown,
		Review:     buildReview(bid, project, breakdown, score),
		Risk:       assessRisk(bid, project, score),
		AnalyzedAt: now,
	}
}

// ScoreAll scores every bid independently, preserving input order.
// Callers that need ranking sort the results descending by score; ties
// keep insertion order.
func (e *Engine) ScoreAll(bids []BidInput, project ProjectInput, now time.Time) []Analysis {
	analyses := make([]Analysis, len(bids))
	for i, bid := range bids {
		analyses[i] = e.Score(bid, project, now)
	}
	return analyses
}

// priceScore rewards bids under budget. Ratio buckets at 0.8/0.9/1.0/1.1;
// even an excessive overage keeps a floor contribution, never negative.
func priceScore(amount, budget float64) int {
	if budget <= 0 {
		return 10
	}
	ratio := amount / budget
	switch {
	case ratio <= 0.8:
		return 30
	case ratio <= 0.9:
		return 25
	case ratio <= 1.0:
		return 20
	case ratio <= 1.1:
		return 15
	default:
		return 10
	}
}

func proposalScore(proposal string) int {
	length := len(proposal)
	switch {
	case length > 1000:
		return 25
	case length > 500:
		return 20
	case length > 200:
		return 15
	default:
		return 10
	}
}

func experienceScore(years int) int {
	switch {
	case years >= 10:
		return 20
	case years >= 5:
		return 15
	case years >= 2:
		return 10
	default:
		return 5
	}
}

func qualificationScore(count int) int {
	switch {
	case count >= 5:
		return 15
	case count >= 3:
		return 12
	case count >= 1:
		return 8
	default:
		return 5
	}
}

func timelineScore(weeks, expected int) int {
	if expected <= 0 {
		expected = 48
	}
	switch {
	case weeks <= expected:
		return 10
	case float64(weeks) <= float64(expected)*1.2:
		return 8
	case float64(weeks) <= float64(expected)*1.5:
		return 5
	default:
		return 2
	}
}

var timelinePattern = regexp.MustCompile(`(?i)(\d+)\s*(week|month|year)`)

// timelineWeeks resolves the declared timeline to weeks, parsing free-form
// text like "6 months" when no numeric value was supplied.
func timelineWeeks(bid BidInput) int {
	if bid.TimelineWeeks > 0 {
		return bid.TimelineWeeks
	}
	match := timelinePattern.FindStringSubmatch(bid.TimelineText)
	if match == nil {
		return 48
	}
	value, _ := strconv.Atoi(match[1])
	switch strings.ToLower(match[2]) {
	case "week":
		return value
	case "month":
		return value * 4
	default:
		return value * 52
	}
}

func expectedWeeks(project ProjectInput) int {
	if project.DurationMonths <= 0 {
		return 48
	}
	return project.DurationMonths * 4
}

func buildReview(bid BidInput, project ProjectInput, breakdown Breakdown, score int) Review {
	review := Review{Overall: overallLabel(score)}

	ratio := 0.0
	if project.Budget > 0 {
		ratio = bid.Amount / project.Budget
	}
	weeks := timelineWeeks(bid)
	expected := expectedWeeks(project)

	if ratio > 0 && ratio <= 0.9 {
		review.Strengths = append(review.Strengths, "Competitive pricing")
	}
	if len(bid.Proposal) > 1000 {
		review.Strengths = append(review.Strengths, "Comprehensive proposal")
	}
	if bid.ExperienceYears >= 10 {
		review.Strengths = append(review.Strengths, "Extensive experience")
	}
	if len(bid.Qualifications) >= 5 {
		review.Strengths = append(review.Strengths, "Highly qualified")
	}
	if weeks <= expected {
		review.Strengths = append(review.Strengths, "Realistic timeline")
	}

	if ratio > 1.1 {
		review.Weaknesses = append(review.Weaknesses, "Price exceeds budget significantly")
	}
	if len(bid.Proposal) < 200 {
		review.Weaknesses = append(review.Weaknesses, "Limited proposal details")
	}
	if bid.ExperienceYears < 2 {
		review.Weaknesses = append(review.Weaknesses, "Limited experience")
	}
	if len(bid.Qualifications) < 1 {
		review.Weaknesses = append(review.Weaknesses, "Insufficient qualifications")
	}
	if float64(weeks) > float64(expected)*1.5 {
		review.Weaknesses = append(review.Weaknesses, "Unrealistic timeline")
	}

	switch {
	case score >= BandExcellent:
		review.Recommendation = "Highly recommended - Strong candidate for project award"
	case score >= BandGood:
		review.Recommendation = "Recommended - Good candidate with minor areas for improvement"
	case score >= BandAverage:
		review.Recommendation = "Consider with caution - Several areas need improvement"
	default:
		review.Recommendation = "Not recommended - Significant concerns identified"
	}

	return review
}

func overallLabel(score int) string {
	switch {
	case score >= BandExcellent:
		return "Excellent"
	case score >= BandGood:
		return "Good"
	case score >= BandAverage:
		return "Average"
	default:
		return "Poor"
	}
}

// assessRisk maps combined sub-scores to a categorical risk level: a
// strong score with real experience is low risk, weak scores are high.
func assessRisk(bid BidInput, project ProjectInput, score int) RiskAssessment {
	var factors []string
	if bid.ExperienceYears < 2 {
		factors = append(factors, "Limited company experience")
	}
	if project.Budget > 0 && bid.Amount/project.Budget > 1.1 {
		factors = append(factors, "Bid significantly over budget")
	}
	if len(bid.Proposal) < 200 {
		factors = append(factors, "Minimal proposal detail")
	}
	if bid.TeamSize > 0 && bid.TeamSize < 10 {
		factors = append(factors, "Small team size for project scale")
	}

	level := RiskHigh
	switch {
	case score >= BandExcellent && bid.ExperienceYears >= 5:
		level = RiskLow
	case score >= BandGood:
		level = RiskMedium
	}

	return RiskAssessment{OverallRisk: level, Factors: factors}
}
