package bids

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"tenderdesk/tender-portal-backend/internal/auth"
	"tenderdesk/tender-portal-backend/internal/notifications"
	"tenderdesk/tender-portal-backend/internal/projects"
	"tenderdesk/tender-portal-backend/internal/scoring"
	"tenderdesk/tender-portal-backend/pkg/apperrors"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, bid *Bid) error {
	args := m.Called(ctx, bid)
	if bid.ID.IsZero() {
		bid.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Bid), args.Error(1)
}

func (m *MockRepository) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*Bid, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]*Bid), args.Error(1)
}

func (m *MockRepository) ListByProjectRanked(ctx context.Context, projectID primitive.ObjectID) ([]*Bid, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]*Bid), args.Error(1)
}

func (m *MockRepository) ListByBidder(ctx context.Context, bidderID string) ([]*Bid, error) {
	args := m.Called(ctx, bidderID)
	return args.Get(0).([]*Bid), args.Error(1)
}

func (m *MockRepository) FindByProjectAndBidder(ctx context.Context, projectID primitive.ObjectID, bidderID string) (*Bid, error) {
	args := m.Called(ctx, projectID, bidderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Bid), args.Error(1)
}

func (m *MockRepository) FindByProjectAndCompany(ctx context.Context, projectID primitive.ObjectID, company string) (*Bid, error) {
	args := m.Called(ctx, projectID, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Bid), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ApplyPlacements(ctx context.Context, placements []Placement) error {
	args := m.Called(ctx, placements)
	return args.Error(0)
}

func (m *MockRepository) ActiveBidderIDs(ctx context.Context, projectID primitive.ObjectID) ([]string, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) Award(ctx context.Context, projectID, bidID primitive.ObjectID) (*AwardOutcome, error) {
	args := m.Called(ctx, projectID, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AwardOutcome), args.Error(1)
}

// MockProjectRepository is a mock implementation of projects.Repository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *projects.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*projects.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projects.Project), args.Error(1)
}

func (m *MockProjectRepository) ListByCreator(ctx context.Context, creatorID string) ([]*projects.Project, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).([]*projects.Project), args.Error(1)
}

func (m *MockProjectRepository) List(ctx context.Context, filter projects.ListFilter) ([]*projects.Project, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*projects.Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockProjectRepository) IncrementBidCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

// MockNotifier is a mock implementation of notifications.Service
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n *notifications.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotifier) NotifyAll(ctx context.Context, ns []*notifications.Notification) error {
	args := m.Called(ctx, ns)
	return args.Error(0)
}

func (m *MockNotifier) List(ctx context.Context, userID string, limit int64) ([]*notifications.Notification, int64, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]*notifications.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotifier) MarkRead(ctx context.Context, userID, notificationID string) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

func (m *MockNotifier) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type fixture struct {
	repo        *MockRepository
	projectRepo *MockProjectRepository
	notifier    *MockNotifier
	service     Service
}

func newFixture() *fixture {
	repo := new(MockRepository)
	projectRepo := new(MockProjectRepository)
	notifier := new(MockNotifier)
	return &fixture{
		repo:        repo,
		projectRepo: projectRepo,
		notifier:    notifier,
		service:     NewService(repo, projectRepo, scoring.NewEngine(), notifier, zap.NewNop()),
	}
}

func ownerIdentity(project *projects.Project) auth.Identity {
	return auth.Identity{UserID: project.CreatedBy, UserType: auth.UserTypeTender}
}

func openProject() *projects.Project {
	return &projects.Project{
		ID:        primitive.NewObjectID(),
		Title:     "Highway Resurfacing",
		Budget:    500000,
		Duration:  "6 months",
		Status:    projects.StatusOpen,
		CreatedBy: primitive.NewObjectID().Hex(),
	}
}

func TestSubmitScoresAndReranks(t *testing.T) {
	f := newFixture()
	project := openProject()
	bidder := auth.Identity{UserID: "bidder-1", UserType: auth.UserTypeBidder, CompanyName: "Roadworks Ltd"}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.repo.On("FindByProjectAndBidder", mock.Anything, project.ID, "bidder-1").Return(nil, nil)
	f.repo.On("FindByProjectAndCompany", mock.Anything, project.ID, "Roadworks Ltd").Return(nil, nil)

	var inserted *Bid
	f.repo.On("Insert", mock.Anything, mock.AnythingOfType("*bids.Bid")).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(*Bid)
	}).Return(nil)
	f.projectRepo.On("IncrementBidCount", mock.Anything, project.ID, 1).Return(nil)
	f.repo.On("ListByProject", mock.Anything, project.ID).Return([]*Bid{}, nil)
	f.notifier.On("Notify", mock.Anything, mock.AnythingOfType("*notifications.Notification")).Return(nil)
	f.repo.On("GetByID", mock.Anything, mock.AnythingOfType("primitive.ObjectID")).Return(&Bid{Status: StatusSubmitted}, nil)

	_, err := f.service.Submit(context.Background(), bidder, SubmitRequest{
		ProjectID:  project.ID.Hex(),
		Amount:     400000,
		Proposal:   "Full resurfacing with milled base and warranty.",
		Timeline:   Timeline{Weeks: 20},
		Experience: Experience{Years: 8},
	})

	assert.NoError(t, err)
	if assert.NotNil(t, inserted) {
		assert.Equal(t, StatusSubmitted, inserted.Status)
		assert.Equal(t, "Roadworks Ltd", inserted.BidderCompany)
		assert.Greater(t, inserted.AIScore, 0)
		assert.NotNil(t, inserted.Analysis)
	}
	f.repo.AssertExpectations(t)
}

func TestSubmitRejectsDuplicateBidder(t *testing.T) {
	f := newFixture()
	project := openProject()
	bidder := auth.Identity{UserID: "bidder-1", UserType: auth.UserTypeBidder, CompanyName: "Roadworks Ltd"}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.repo.On("FindByProjectAndBidder", mock.Anything, project.ID, "bidder-1").Return(&Bid{}, nil)

	_, err := f.service.Submit(context.Background(), bidder, SubmitRequest{
		ProjectID: project.ID.Hex(),
		Amount:    400000,
		Proposal:  "second attempt",
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSubmitRejectsClosedProject(t *testing.T) {
	f := newFixture()
	project := openProject()
	project.Status = projects.StatusClosed
	bidder := auth.Identity{UserID: "bidder-1", UserType: auth.UserTypeBidder}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)

	_, err := f.service.Submit(context.Background(), bidder, SubmitRequest{
		ProjectID: project.ID.Hex(),
		Amount:    400000,
		Proposal:  "late bid",
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSubmitRequiresBidder(t *testing.T) {
	f := newFixture()
	tender := auth.Identity{UserID: "tender-1", UserType: auth.UserTypeTender}

	_, err := f.service.Submit(context.Background(), tender, SubmitRequest{
		ProjectID: primitive.NewObjectID().Hex(),
		Amount:    1000,
		Proposal:  "self-dealing",
	})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestActAwardSettlesProject(t *testing.T) {
	f := newFixture()
	project := openProject()
	project.Status = projects.StatusActive
	winnerID := primitive.NewObjectID()
	loser := &Bid{
		ID:              primitive.NewObjectID(),
		ProjectID:       project.ID,
		BidderID:        "bidder-2",
		Status:          StatusRejected,
		RejectionReason: "Project awarded to another bidder",
	}

	winner := &Bid{
		ID:            winnerID,
		ProjectID:     project.ID,
		BidderID:      "bidder-1",
		BidderCompany: "Roadworks Ltd",
		Amount:        450000,
		Status:        StatusShortlisted,
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.repo.On("GetByID", mock.Anything, winnerID).Return(winner, nil)
	awarded := *winner
	awarded.Status = StatusAwarded
	f.repo.On("Award", mock.Anything, project.ID, winnerID).Return(&AwardOutcome{
		Awarded:  &awarded,
		Rejected: []*Bid{loser},
	}, nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n *notifications.Notification) bool {
		return n.UserID == "bidder-1" && n.Type == notifications.TypeAward
	})).Return(nil)
	f.notifier.On("NotifyAll", mock.Anything, mock.MatchedBy(func(ns []*notifications.Notification) bool {
		return len(ns) == 1 && ns[0].UserID == "bidder-2"
	})).Return(nil)

	result, err := f.service.Act(context.Background(), ownerIdentity(project), ActionRequest{
		BidID:     winnerID.Hex(),
		ProjectID: project.ID.Hex(),
		Action:    ActionAward,
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusAwarded, result.Status)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestActRejectsNonOwnerWithoutMutation(t *testing.T) {
	f := newFixture()
	project := openProject()
	bidID := primitive.NewObjectID()
	intruder := auth.Identity{UserID: "someone-else", UserType: auth.UserTypeTender}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)

	_, err := f.service.Act(context.Background(), intruder, ActionRequest{
		BidID:     bidID.Hex(),
		ProjectID: project.ID.Hex(),
		Action:    ActionAward,
	})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	f.repo.AssertNotCalled(t, "Award", mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestActRejectUsesDefaultReason(t *testing.T) {
	f := newFixture()
	project := openProject()
	bid := &Bid{
		ID:        primitive.NewObjectID(),
		ProjectID: project.ID,
		BidderID:  "bidder-1",
		Status:    StatusSubmitted,
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.repo.On("GetByID", mock.Anything, bid.ID).Return(bid, nil)
	f.repo.On("Update", mock.Anything, bid.ID, mock.MatchedBy(func(set bson.M) bool {
		return set["status"] == StatusRejected && set["rejectionReason"] == "Not selected for this project"
	})).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.AnythingOfType("*notifications.Notification")).Return(nil)

	_, err := f.service.Act(context.Background(), ownerIdentity(project), ActionRequest{
		BidID:     bid.ID.Hex(),
		ProjectID: project.ID.Hex(),
		Action:    ActionReject,
	})

	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestActBlocksTerminalTransitions(t *testing.T) {
	f := newFixture()
	project := openProject()
	bid := &Bid{
		ID:        primitive.NewObjectID(),
		ProjectID: project.ID,
		Status:    StatusRejected,
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.repo.On("GetByID", mock.Anything, bid.ID).Return(bid, nil)

	_, err := f.service.Act(context.Background(), ownerIdentity(project), ActionRequest{
		BidID:     bid.ID.Hex(),
		ProjectID: project.ID.Hex(),
		Action:    ActionAward,
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.repo.AssertNotCalled(t, "Award", mock.Anything, mock.Anything, mock.Anything)
}

func TestRankingsIncludesSummary(t *testing.T) {
	f := newFixture()
	project := openProject()
	ranked := []*Bid{
		{ID: primitive.NewObjectID(), ProjectID: project.ID, Amount: 450000, AIScore: 80, Rank: 1, Status: StatusSubmitted},
		{ID: primitive.NewObjectID(), ProjectID: project.ID, Amount: 550000, AIScore: 60, Rank: 2, Status: StatusSubmitted},
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.repo.On("ListByProjectRanked", mock.Anything, project.ID).Return(ranked, nil)

	view, err := f.service.Rankings(context.Background(), ownerIdentity(project), project.ID.Hex())

	assert.NoError(t, err)
	assert.Equal(t, 2, view.Summary.TotalAnalyzed)
	assert.Equal(t, 2, view.Summary.TopPerformers)
	assert.Equal(t, 70, view.Summary.AverageTopScore)
	// Only the first bid stays inside the 500000 budget
	assert.Equal(t, 1, view.Summary.BudgetCompliantTop5)
}

func TestAnalyzeProducesRecommendations(t *testing.T) {
	f := newFixture()
	project := openProject()
	bids := []*Bid{
		{ID: primitive.NewObjectID(), ProjectID: project.ID, Amount: 600000, Proposal: "Quick job.", Status: StatusSubmitted},
		{ID: primitive.NewObjectID(), ProjectID: project.ID, Amount: 620000, Proposal: "We can do it.", Status: StatusSubmitted},
	}

	f.projectRepo.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.repo.On("ListByProject", mock.Anything, project.ID).Return(bids, nil)
	f.repo.On("Update", mock.Anything, mock.AnythingOfType("primitive.ObjectID"), mock.Anything).Return(nil)
	f.repo.On("ApplyPlacements", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("ListByProjectRanked", mock.Anything, project.ID).Return(bids, nil)

	result, err := f.service.Analyze(context.Background(), ownerIdentity(project), project.ID.Hex())

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Analyzed)
	// Two weak over-budget bids trigger every project-level warning
	assert.Equal(t, []string{
		"Consider negotiating with top-ranked bidders as they exceed budget",
		"Budget may be too low - consider increasing or adjusting requirements",
		"Low bid count - consider extending deadline or improving project visibility",
		"No excellent bids found - review project requirements or extend deadline",
	}, result.Recommendations)
}

func TestWithdrawDeletesAndReranks(t *testing.T) {
	f := newFixture()
	projectID := primitive.NewObjectID()
	bid := &Bid{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		BidderID:  "bidder-1",
		Status:    StatusSubmitted,
	}
	bidder := auth.Identity{UserID: "bidder-1", UserType: auth.UserTypeBidder}

	remaining := &Bid{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		AIScore:   70,
		Status:    StatusSubmitted,
		CreatedAt: time.Now(),
	}

	f.repo.On("GetByID", mock.Anything, bid.ID).Return(bid, nil)
	f.repo.On("Delete", mock.Anything, bid.ID).Return(nil)
	f.projectRepo.On("IncrementBidCount", mock.Anything, projectID, -1).Return(nil)
	f.repo.On("ListByProject", mock.Anything, projectID).Return([]*Bid{remaining}, nil)
	f.repo.On("ApplyPlacements", mock.Anything, mock.MatchedBy(func(ps []Placement) bool {
		return len(ps) == 1 && ps[0].Rank == 1 && ps[0].Percentile == 100
	})).Return(nil)

	err := f.service.Withdraw(context.Background(), bidder, bid.ID.Hex())

	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestWithdrawRequiresOwnership(t *testing.T) {
	f := newFixture()
	bid := &Bid{
		ID:        primitive.NewObjectID(),
		ProjectID: primitive.NewObjectID(),
		BidderID:  "bidder-1",
		Status:    StatusSubmitted,
	}
	f.repo.On("GetByID", mock.Anything, bid.ID).Return(bid, nil)

	err := f.service.Withdraw(context.Background(), auth.Identity{UserID: "bidder-2"}, bid.ID.Hex())

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
