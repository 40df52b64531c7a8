package projects

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"tenderdesk/tender-portal-backend/internal/auth"
	"tenderdesk/tender-portal-backend/internal/notifications"
	"tenderdesk/tender-portal-backend/pkg/apperrors"
	"tenderdesk/tender-portal-backend/pkg/workflows"
)

// BidderLister resolves the bidders with live bids on a project. The
// bids package implements it; an interface here avoids a package cycle.
type BidderLister interface {
	ActiveBidderIDs(ctx context.Context, projectID primitive.ObjectID) ([]string, error)
}

// Service manages tender project listings
type Service interface {
	Create(ctx context.Context, identity auth.Identity, req CreateRequest) (*Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	MyProjects(ctx context.Context, identity auth.Identity) ([]*Project, error)
	ListOpen(ctx context.Context, filter ListFilter) ([]*Project, error)
	Update(ctx context.Context, identity auth.Identity, id string, req UpdateRequest) (*Project, error)
	UpdateStatus(ctx context.Context, identity auth.Identity, id string, req StatusRequest) (int, error)
}

type service struct {
	repo         Repository
	bidders      BidderLister
	notifier     notifications.Service
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
}

// NewService creates a project service
func NewService(repo Repository, bidders BidderLister, notifier notifications.Service, logger *zap.Logger) Service {
	return &service{
		repo:         repo,
		bidders:      bidders,
		notifier:     notifier,
		stateMachine: workflows.NewProjectStateMachine(),
		logger:       logger,
	}
}

func (s *service) Create(ctx context.Context, identity auth.Identity, req CreateRequest) (*Project, error) {
	if identity.UserType != auth.UserTypeTender {
		return nil, fmt.Errorf("%w: only tender accounts can create projects", apperrors.ErrForbidden)
	}

	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		deadline, err = time.Parse("2006-01-02", req.Deadline)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid deadline format", apperrors.ErrValidation)
	}

	project := &Project{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Budget:         req.Budget,
		Location:       req.Location,
		Duration:       req.Duration,
		Deadline:       deadline,
		Specifications: req.Specifications,
		Requirements:   req.Requirements,
		Status:         StatusOpen,
		CreatedBy:      identity.UserID,
		TenderCompany:  identity.CompanyName,
	}
	if project.Requirements == nil {
		project.Requirements = []string{}
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		zap.String("projectId", project.ID.Hex()),
		zap.String("createdBy", identity.UserID))
	return project, nil
}

func (s *service) Get(ctx context.Context, id string) (*Project, error) {
	return s.load(ctx, id)
}

func (s *service) MyProjects(ctx context.Context, identity auth.Identity) ([]*Project, error) {
	return s.repo.ListByCreator(ctx, identity.UserID)
}

func (s *service) ListOpen(ctx context.Context, filter ListFilter) ([]*Project, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, identity auth.Identity, id string, req UpdateRequest) (*Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.CreatedBy != identity.UserID {
		return nil, fmt.Errorf("%w: you don't own this project", apperrors.ErrForbidden)
	}
	if project.Status != StatusOpen && project.Status != StatusActive {
		return nil, fmt.Errorf("%w: project can only be edited while open or active", apperrors.ErrConflict)
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Budget != nil {
		if *req.Budget <= 0 {
			return nil, fmt.Errorf("%w: budget must be positive", apperrors.ErrValidation)
		}
		set["budget"] = *req.Budget
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.Duration != nil {
		set["duration"] = *req.Duration
	}
	if req.Deadline != nil {
		deadline, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			deadline, err = time.Parse("2006-01-02", *req.Deadline)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: invalid deadline format", apperrors.ErrValidation)
		}
		set["deadline"] = deadline
	}
	if req.Specifications != nil {
		set["specifications"] = *req.Specifications
	}
	if req.Requirements != nil {
		set["requirements"] = *req.Requirements
	}
	if len(set) == 0 {
		return project, nil
	}

	if err := s.repo.Update(ctx, project.ID, set); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// UpdateStatus moves a project between open, active, paused and closed.
// Awarding is driven by the bid award command, not this endpoint.
// Returns the number of bidders notified.
func (s *service) UpdateStatus(ctx context.Context, identity auth.Identity, id string, req StatusRequest) (int, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}
	if project.CreatedBy != identity.UserID {
		return 0, fmt.Errorf("%w: you don't own this project", apperrors.ErrForbidden)
	}
	if req.Status == StatusAwarded {
		return 0, fmt.Errorf("%w: projects are awarded through a bid award, not a status change", apperrors.ErrValidation)
	}
	if !s.stateMachine.CanTransition(project.Status, req.Status) {
		return 0, fmt.Errorf("%w: cannot move project from %s to %s",
			apperrors.ErrConflict, project.Status, req.Status)
	}

	now := time.Now()
	set := bson.M{"status": req.Status}
	var title, message string

	switch req.Status {
	case StatusClosed:
		set["closedAt"] = now
		reason := req.Reason
		if reason == "" {
			reason = "Bidding period ended"
		}
		set["closureReason"] = reason
		title = "Bidding Closed"
		message = fmt.Sprintf("Bidding for %q has been closed. No new bids will be accepted.", project.Title)

	case StatusPaused:
		set["pausedAt"] = now
		reason := req.Reason
		if reason == "" {
			reason = "Temporarily paused"
		}
		set["pauseReason"] = reason
		title = "Project Paused"
		message = fmt.Sprintf("The project %q has been temporarily paused. We'll notify you when it resumes.", project.Title)

	case StatusActive:
		set["resumedAt"] = now
		title = "Project Resumed"
		message = fmt.Sprintf("The project %q is now accepting bids again.", project.Title)
	}

	if err := s.repo.Update(ctx, project.ID, set); err != nil {
		return 0, err
	}

	notified := s.notifyBidders(ctx, project, title, message)
	s.logger.Info("project status updated",
		zap.String("projectId", id),
		zap.String("from", project.Status),
		zap.String("to", req.Status),
		zap.Int("notifiedBidders", notified))
	return notified, nil
}

func (s *service) notifyBidders(ctx context.Context, project *Project, title, message string) int {
	if title == "" || s.bidders == nil {
		return 0
	}
	bidderIDs, err := s.bidders.ActiveBidderIDs(ctx, project.ID)
	if err != nil {
		s.logger.Warn("listing project bidders failed",
			zap.String("projectId", project.ID.Hex()),
			zap.Error(err))
		return 0
	}
	if len(bidderIDs) == 0 {
		return 0
	}

	batch := make([]*notifications.Notification, 0, len(bidderIDs))
	for _, bidderID := range bidderIDs {
		batch = append(batch, &notifications.Notification{
			UserID:    bidderID,
			Title:     title,
			Message:   message,
			Type:      notifications.TypeProjectUpdate,
			ProjectID: project.ID.Hex(),
		})
	}
	if err := s.notifier.NotifyAll(ctx, batch); err != nil {
		s.logger.Warn("notifying bidders failed",
			zap.String("projectId", project.ID.Hex()),
			zap.Error(err))
		return 0
	}
	return len(batch)
}

func (s *service) load(ctx context.Context, id string) (*Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid project id", apperrors.ErrValidation)
	}
	project, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project not found", apperrors.ErrNotFound)
	}
	return project, nil
}
