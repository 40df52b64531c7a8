package bids

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"tenderdesk/tender-portal-backend/internal/auth"
	"tenderdesk/tender-portal-backend/internal/notifications"
	"tenderdesk/tender-portal-backend/internal/projects"
	"tenderdesk/tender-portal-backend/internal/ranking"
	"tenderdesk/tender-portal-backend/internal/scoring"
	"tenderdesk/tender-portal-backend/pkg/apperrors"
	"tenderdesk/tender-portal-backend/pkg/workflows"
)

// ProjectSummary is the project context returned with bid listings
type ProjectSummary struct {
	Title     string    `json:"title"`
	Budget    float64   `json:"budget"`
	Category  string    `json:"category,omitempty"`
	Deadline  time.Time `json:"deadline"`
	TotalBids int       `json:"totalBids"`
}

// RankingsSummary condenses the top of the field for the owner dashboard
type RankingsSummary struct {
	TotalAnalyzed       int `json:"totalAnalyzed"`
	TopPerformers       int `json:"topPerformers"`
	AverageTopScore     int `json:"averageTopScore"`
	BudgetCompliantTop5 int `json:"budgetCompliantTop5"`
}

// RankingsView is the owner-facing ranked snapshot of a project's bids
type RankingsView struct {
	Project    ProjectSummary     `json:"project"`
	Analytics  ranking.Statistics `json:"analytics"`
	RankedBids []RankedBid        `json:"rankedBids"`
	Top5       []RankedBid        `json:"top5Bids"`
	Summary    RankingsSummary    `json:"summary"`
}

// AnalyzeResult is the outcome of a batch analysis run
type AnalyzeResult struct {
	Project         ProjectSummary     `json:"project"`
	Analyzed        int                `json:"analyzed"`
	Analytics       ranking.Statistics `json:"analytics"`
	Recommendations []string           `json:"recommendations"`
	Top5            []RankedBid        `json:"top5Bids"`
}

// Service manages bid submission, analysis and award decisions
type Service interface {
	Submit(ctx context.Context, identity auth.Identity, req SubmitRequest) (*Bid, error)
	ListByProject(ctx context.Context, identity auth.Identity, projectID string) ([]*Bid, error)
	MyBids(ctx context.Context, identity auth.Identity) ([]*Bid, error)
	Get(ctx context.Context, identity auth.Identity, id string) (*Bid, error)
	UpdateProposal(ctx context.Context, identity auth.Identity, id string, req ProposalUpdateRequest) (*Bid, error)
	Withdraw(ctx context.Context, identity auth.Identity, id string) error
	Act(ctx context.Context, identity auth.Identity, req ActionRequest) (*Bid, error)
	Analyze(ctx context.Context, identity auth.Identity, projectID string) (*AnalyzeResult, error)
	Rankings(ctx context.Context, identity auth.Identity, projectID string) (*RankingsView, error)
}

type service struct {
	repo         Repository
	projectRepo  projects.Repository
	engine       *scoring.Engine
	notifier     notifications.Service
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
}

// NewService creates a bid service
func NewService(repo Repository, projectRepo projects.Repository, engine *scoring.Engine, notifier notifications.Service, logger *zap.Logger) Service {
	return &service{
		repo:         repo,
		projectRepo:  projectRepo,
		engine:       engine,
		notifier:     notifier,
		stateMachine: workflows.NewBidStateMachine(),
		logger:       logger,
	}
}

func (s *service) Submit(ctx context.Context, identity auth.Identity, req SubmitRequest) (*Bid, error) {
	if identity.UserType != auth.UserTypeBidder {
		return nil, fmt.Errorf("%w: only bidders can submit bids", apperrors.ErrForbidden)
	}

	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid project id", apperrors.ErrValidation)
	}
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project not found", apperrors.ErrNotFound)
	}
	if project.Status != projects.StatusOpen && project.Status != projects.StatusActive {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, closedBiddingMessage(project.Status))
	}

	if existing, err := s.repo.FindByProjectAndBidder(ctx, projectID, identity.UserID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: you have already submitted a bid for this project", apperrors.ErrConflict)
	}

	company := req.CompanyName
	if company == "" {
		company = identity.CompanyName
	}
	if existing, err := s.repo.FindByProjectAndCompany(ctx, projectID, company); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: your company has already submitted a bid for this project", apperrors.ErrConflict)
	}

	bid := &Bid{
		ProjectID:      projectID,
		BidderID:       identity.UserID,
		BidderCompany:  company,
		Amount:         req.Amount,
		Proposal:       req.Proposal,
		Timeline:       req.Timeline,
		Experience:     req.Experience,
		Qualifications: req.Qualifications,
		References:     req.References,
		Status:         StatusSubmitted,
	}
	analysis := s.engine.Score(scoringInput(bid), scoringProject(project), time.Now())
	bid.AIScore = analysis.Score
	bid.Analysis = &analysis

	if err := s.repo.Insert(ctx, bid); err != nil {
		return nil, err
	}
	if err := s.projectRepo.IncrementBidCount(ctx, projectID, 1); err != nil {
		s.logger.Warn("bid count update failed", zap.String("projectId", req.ProjectID), zap.Error(err))
	}
	s.rerank(ctx, projectID)

	s.notify(ctx, &notifications.Notification{
		UserID:    project.CreatedBy,
		Title:     "New Bid Received",
		Message:   fmt.Sprintf("%s submitted a bid on %q.", company, project.Title),
		Type:      notifications.TypeNewBid,
		ProjectID: req.ProjectID,
		BidID:     bid.ID.Hex(),
	})

	s.logger.Info("bid submitted",
		zap.String("bidId", bid.ID.Hex()),
		zap.String("projectId", req.ProjectID),
		zap.Int("aiScore", bid.AIScore))
	return s.repo.GetByID(ctx, bid.ID)
}

func (s *service) ListByProject(ctx context.Context, identity auth.Identity, projectID string) ([]*Bid, error) {
	oid, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid project id", apperrors.ErrValidation)
	}
	project, err := s.projectRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project not found", apperrors.ErrNotFound)
	}

	// Owners see every bid; bidders only their own
	if project.CreatedBy == identity.UserID {
		return s.repo.ListByProject(ctx, oid)
	}
	bid, err := s.repo.FindByProjectAndBidder(ctx, oid, identity.UserID)
	if err != nil {
		return nil, err
	}
	if bid == nil {
		return []*Bid{}, nil
	}
	return []*Bid{bid}, nil
}

func (s *service) MyBids(ctx context.Context, identity auth.Identity) ([]*Bid, error) {
	return s.repo.ListByBidder(ctx, identity.UserID)
}

func (s *service) Get(ctx context.Context, identity auth.Identity, id string) (*Bid, error) {
	bid, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if bid.BidderID == identity.UserID {
		return bid, nil
	}
	project, err := s.projectRepo.GetByID(ctx, bid.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil || project.CreatedBy != identity.UserID {
		return nil, fmt.Errorf("%w: you cannot view this bid", apperrors.ErrForbidden)
	}
	return bid, nil
}

// UpdateProposal revises a bid that is still in play, then rescores it
// and reranks the project.
func (s *service) UpdateProposal(ctx context.Context, identity auth.Identity, id string, req ProposalUpdateRequest) (*Bid, error) {
	bid, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if bid.BidderID != identity.UserID {
		return nil, fmt.Errorf("%w: you don't own this bid", apperrors.ErrForbidden)
	}
	if bid.Status != StatusSubmitted {
		return nil, fmt.Errorf("%w: bid can only be revised while submitted", apperrors.ErrConflict)
	}

	project, err := s.projectRepo.GetByID(ctx, bid.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project not found", apperrors.ErrNotFound)
	}
	if project.Status != projects.StatusOpen && project.Status != projects.StatusActive {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, closedBiddingMessage(project.Status))
	}

	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, fmt.Errorf("%w: bid amount must be positive", apperrors.ErrValidation)
		}
		bid.Amount = *req.Amount
	}
	if req.Proposal != nil {
		bid.Proposal = *req.Proposal
	}
	if req.Timeline != nil {
		bid.Timeline = *req.Timeline
	}

	analysis := s.engine.Score(scoringInput(bid), scoringProject(project), time.Now())
	set := bson.M{
		"bidAmount": bid.Amount,
		"proposal":  bid.Proposal,
		"timeline":  bid.Timeline,
		"aiScore":   analysis.Score,
		"analysis":  analysis,
	}
	if err := s.repo.Update(ctx, bid.ID, set); err != nil {
		return nil, err
	}
	s.rerank(ctx, bid.ProjectID)
	return s.repo.GetByID(ctx, bid.ID)
}

func (s *service) Withdraw(ctx context.Context, identity auth.Identity, id string) error {
	bid, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if bid.BidderID != identity.UserID {
		return fmt.Errorf("%w: you don't own this bid", apperrors.ErrForbidden)
	}
	if bid.Status != StatusSubmitted {
		return fmt.Errorf("%w: bid can only be withdrawn while submitted", apperrors.ErrConflict)
	}

	if err := s.repo.Delete(ctx, bid.ID); err != nil {
		return err
	}
	if err := s.projectRepo.IncrementBidCount(ctx, bid.ProjectID, -1); err != nil {
		s.logger.Warn("bid count update failed", zap.String("projectId", bid.ProjectID.Hex()), zap.Error(err))
	}
	s.rerank(ctx, bid.ProjectID)

	s.logger.Info("bid withdrawn",
		zap.String("bidId", id),
		zap.String("projectId", bid.ProjectID.Hex()))
	return nil
}

// Act applies an owner decision to a bid. Only the project creator may
// shortlist, award or reject; a mismatch fails before any write.
func (s *service) Act(ctx context.Context, identity auth.Identity, req ActionRequest) (*Bid, error) {
	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid project id", apperrors.ErrValidation)
	}
	bidID, err := primitive.ObjectIDFromHex(req.BidID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid bid id", apperrors.ErrValidation)
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project not found", apperrors.ErrNotFound)
	}
	if project.CreatedBy != identity.UserID {
		return nil, fmt.Errorf("%w: you don't own this project", apperrors.ErrForbidden)
	}

	bid, err := s.repo.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid == nil || bid.ProjectID != projectID {
		return nil, fmt.Errorf("%w: bid not found", apperrors.ErrNotFound)
	}

	target := map[string]string{
		ActionShortlist: StatusShortlisted,
		ActionAward:     StatusAwarded,
		ActionReject:    StatusRejected,
	}[req.Action]
	if !s.stateMachine.CanTransition(bid.Status, target) {
		return nil, fmt.Errorf("%w: cannot move bid from %s to %s",
			apperrors.ErrConflict, bid.Status, target)
	}

	switch req.Action {
	case ActionAward:
		return s.award(ctx, project, bidID)
	case ActionShortlist:
		if err := s.repo.Update(ctx, bidID, bson.M{"status": StatusShortlisted}); err != nil {
			return nil, err
		}
		s.notify(ctx, &notifications.Notification{
			UserID:    bid.BidderID,
			Title:     "Bid Shortlisted",
			Message:   fmt.Sprintf("Your bid for %q has been shortlisted. You're one step closer to winning this project!", project.Title),
			Type:      notifications.TypeShortlist,
			ProjectID: req.ProjectID,
			BidID:     req.BidID,
		})
	case ActionReject:
		reason := req.Reason
		if reason == "" {
			reason = "Not selected for this project"
		}
		if err := s.repo.Update(ctx, bidID, bson.M{
			"status":          StatusRejected,
			"rejectionReason": reason,
		}); err != nil {
			return nil, err
		}
		s.notify(ctx, &notifications.Notification{
			UserID:    bid.BidderID,
			Title:     "Project Update",
			Message:   fmt.Sprintf("Your bid for %q was not selected. Thank you for your interest.", project.Title),
			Type:      notifications.TypeReject,
			ProjectID: req.ProjectID,
			BidID:     req.BidID,
		})
	}

	s.logger.Info("bid action applied",
		zap.String("bidId", req.BidID),
		zap.String("action", req.Action))
	return s.repo.GetByID(ctx, bidID)
}

func (s *service) award(ctx context.Context, project *projects.Project, bidID primitive.ObjectID) (*Bid, error) {
	outcome, err := s.repo.Award(ctx, project.ID, bidID)
	if err != nil {
		return nil, err
	}

	// Notifications go out after the transaction commits
	s.notify(ctx, &notifications.Notification{
		UserID:    outcome.Awarded.BidderID,
		Title:     "Congratulations! Project Awarded",
		Message:   fmt.Sprintf("You have been awarded the project %q. Please check your dashboard for next steps.", project.Title),
		Type:      notifications.TypeAward,
		ProjectID: project.ID.Hex(),
		BidID:     bidID.Hex(),
	})
	batch := make([]*notifications.Notification, 0, len(outcome.Rejected))
	for _, rejected := range outcome.Rejected {
		batch = append(batch, &notifications.Notification{
			UserID:    rejected.BidderID,
			Title:     "Project Update",
			Message:   fmt.Sprintf("The project %q has been awarded to another bidder. Thank you for your participation.", project.Title),
			Type:      notifications.TypeProjectUpdate,
			ProjectID: project.ID.Hex(),
			BidID:     rejected.ID.Hex(),
		})
	}
	if len(batch) > 0 {
		if err := s.notifier.NotifyAll(ctx, batch); err != nil {
			s.logger.Warn("award notifications failed", zap.Error(err))
		}
	}

	s.logger.Info("project awarded",
		zap.String("projectId", project.ID.Hex()),
		zap.String("bidId", bidID.Hex()),
		zap.Int("rejectedBids", len(outcome.Rejected)))
	return outcome.Awarded, nil
}

// Analyze rescores every bid on a project and persists the refreshed
// scores and placements.
func (s *service) Analyze(ctx context.Context, identity auth.Identity, projectID string) (*AnalyzeResult, error) {
	project, err := s.ownedProject(ctx, identity, projectID)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no bids found for this project", apperrors.ErrNotFound)
	}

	now := time.Now()
	for _, bid := range list {
		analysis := s.engine.Score(scoringInput(bid), scoringProject(project), now)
		bid.AIScore = analysis.Score
		bid.Analysis = &analysis
		if err := s.repo.Update(ctx, bid.ID, bson.M{
			"aiScore":  analysis.Score,
			"analysis": analysis,
		}); err != nil {
			return nil, err
		}
	}
	s.rerank(ctx, project.ID)

	ranked, err := s.repo.ListByProjectRanked(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	decorated := decorate(ranked)
	analytics := ranking.Summarize(entries(ranked), project.Budget)
	top := top5(decorated)

	return &AnalyzeResult{
		Project:         summarize(project, len(ranked)),
		Analyzed:        len(ranked),
		Analytics:       analytics,
		Recommendations: recommendations(analytics, top, project.Budget),
		Top5:            top,
	}, nil
}

func (s *service) Rankings(ctx context.Context, identity auth.Identity, projectID string) (*RankingsView, error) {
	project, err := s.ownedProject(ctx, identity, projectID)
	if err != nil {
		return nil, err
	}

	ranked, err := s.repo.ListByProjectRanked(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	decorated := decorate(ranked)
	top := top5(decorated)

	return &RankingsView{
		Project:    summarize(project, len(ranked)),
		Analytics:  ranking.Summarize(entries(ranked), project.Budget),
		RankedBids: decorated,
		Top5:       top,
		Summary:    rankingsSummary(len(ranked), top, project.Budget),
	}, nil
}

func (s *service) ownedProject(ctx context.Context, identity auth.Identity, projectID string) (*projects.Project, error) {
	oid, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid project id", apperrors.ErrValidation)
	}
	project, err := s.projectRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project not found", apperrors.ErrNotFound)
	}
	if project.CreatedBy != identity.UserID {
		return nil, fmt.Errorf("%w: you don't own this project", apperrors.ErrForbidden)
	}
	return project, nil
}

// rerank recomputes rank and percentile for every bid on a project.
// Failures are logged; placements refresh on the next scoring event.
func (s *service) rerank(ctx context.Context, projectID primitive.ObjectID) {
	list, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Warn("rerank failed", zap.String("projectId", projectID.Hex()), zap.Error(err))
		return
	}
	if len(list) == 0 {
		return
	}

	byID := make(map[string]primitive.ObjectID, len(list))
	for _, bid := range list {
		byID[bid.ID.Hex()] = bid.ID
	}
	placements := ranking.Rank(entries(list))
	updates := make([]Placement, 0, len(placements))
	for _, p := range placements {
		updates = append(updates, Placement{
			BidID:      byID[p.ID],
			Rank:       p.Rank,
			Percentile: p.Percentile,
		})
	}
	if err := s.repo.ApplyPlacements(ctx, updates); err != nil {
		s.logger.Warn("rerank failed", zap.String("projectId", projectID.Hex()), zap.Error(err))
	}
}

func (s *service) notify(ctx context.Context, n *notifications.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("notification failed",
			zap.String("userId", n.UserID),
			zap.String("type", n.Type),
			zap.Error(err))
	}
}

func (s *service) load(ctx context.Context, id string) (*Bid, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid bid id", apperrors.ErrValidation)
	}
	bid, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if bid == nil {
		return nil, fmt.Errorf("%w: bid not found", apperrors.ErrNotFound)
	}
	return bid, nil
}

func scoringInput(bid *Bid) scoring.BidInput {
	return scoring.BidInput{
		Amount:          bid.Amount,
		Proposal:        bid.Proposal,
		TimelineWeeks:   bid.Timeline.Weeks,
		TimelineText:    bid.Timeline.Description,
		ExperienceYears: bid.Experience.Years,
		SimilarProjects: bid.Experience.SimilarProjects,
		TeamSize:        bid.Experience.TeamSize,
		Qualifications:  bid.Qualifications,
		References:      bid.References,
	}
}

func scoringProject(project *projects.Project) scoring.ProjectInput {
	return scoring.ProjectInput{
		Budget:         project.Budget,
		DurationMonths: durationMonths(project.Duration),
	}
}

// durationMonths reads the leading number out of a free-text duration
// like "12 months". Unparseable values fall back to 12.
func durationMonths(duration string) int {
	months := 0
	for _, r := range strings.TrimSpace(duration) {
		if r < '0' || r > '9' {
			break
		}
		months = months*10 + int(r-'0')
	}
	if months <= 0 {
		return 12
	}
	return months
}

func entries(list []*Bid) []ranking.Entry {
	out := make([]ranking.Entry, 0, len(list))
	for _, bid := range list {
		out = append(out, ranking.Entry{
			ID:              bid.ID.Hex(),
			Score:           bid.AIScore,
			Amount:          bid.Amount,
			Status:          bid.Status,
			ExperienceYears: bid.Experience.Years,
			CreatedAt:       bid.CreatedAt,
		})
	}
	return out
}

func summarize(project *projects.Project, totalBids int) ProjectSummary {
	return ProjectSummary{
		Title:     project.Title,
		Budget:    project.Budget,
		Category:  project.Category,
		Deadline:  project.Deadline,
		TotalBids: totalBids,
	}
}

func decorate(list []*Bid) []RankedBid {
	out := make([]RankedBid, 0, len(list))
	for _, bid := range list {
		out = append(out, RankedBid{
			Bid:                  bid,
			CompetitiveAdvantage: ranking.CompetitiveAdvantage(bid.Rank),
		})
	}
	return out
}

func top5(ranked []RankedBid) []RankedBid {
	if len(ranked) > 5 {
		return ranked[:5]
	}
	return ranked
}

// recommendations derives owner-facing guidance from the analyzed field.
func recommendations(stats ranking.Statistics, top []RankedBid, budget float64) []string {
	recs := []string{}
	if len(top) == 0 {
		return recs
	}

	topBid := top[0]
	if topBid.Amount > budget {
		recs = append(recs, "Consider negotiating with top-ranked bidders as they exceed budget")
	}
	if stats.AverageBidAmount > budget*1.1 {
		recs = append(recs, "Budget may be too low - consider increasing or adjusting requirements")
	}
	if stats.TotalBids < 3 {
		recs = append(recs, "Low bid count - consider extending deadline or improving project visibility")
	}
	if stats.ScoreDistribution.Excellent == 0 {
		recs = append(recs, "No excellent bids found - review project requirements or extend deadline")
	}

	if topBid.AIScore >= 80 {
		recs = append(recs, fmt.Sprintf("Top bid from %s shows excellent potential - recommend immediate consideration", topBid.BidderCompany))
	}
	if withinBudget(top, budget) > 0 {
		recs = append(recs, "Multiple competitive bids within budget - good negotiation position")
	}
	return recs
}

func rankingsSummary(total int, top []RankedBid, budget float64) RankingsSummary {
	summary := RankingsSummary{
		TotalAnalyzed: total,
		TopPerformers: len(top),
	}
	if len(top) == 0 {
		return summary
	}
	scoreSum := 0
	for _, bid := range top {
		scoreSum += bid.AIScore
	}
	summary.AverageTopScore = int(math.Round(float64(scoreSum) / float64(len(top))))
	summary.BudgetCompliantTop5 = withinBudget(top, budget)
	return summary
}

func withinBudget(ranked []RankedBid, budget float64) int {
	count := 0
	for _, bid := range ranked {
		if bid.Amount <= budget {
			count++
		}
	}
	return count
}

func closedBiddingMessage(status string) string {
	switch status {
	case projects.StatusClosed:
		return "this project has been closed and is no longer accepting bids"
	case projects.StatusAwarded:
		return "this project has already been awarded"
	case projects.StatusPaused:
		return "this project is temporarily paused"
	default:
		return "project is not accepting bids"
	}
}
