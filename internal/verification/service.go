package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"tenderdesk/tender-portal-backend/pkg/apperrors"
)

// Service drives field verification and the overall percentage
type Service struct {
	repo      Repository
	evaluator *Evaluator
	logger    *zap.Logger
}

// NewService creates a verification service
func NewService(repo Repository, evaluator *Evaluator, logger *zap.Logger) *Service {
	return &Service{repo: repo, evaluator: evaluator, logger: logger}
}

// VerifyOutcome is returned to the caller after one verification attempt
type VerifyOutcome struct {
	Result  Result `json:"result"`
	Overall int    `json:"overallPercentage"`
}

// Verify runs one verification attempt for a single field and recomputes
// the overall percentage.
func (s *Service) Verify(ctx context.Context, userID string, req VerifyRequest) (*VerifyOutcome, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", apperrors.ErrValidation)
	}

	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company", apperrors.ErrNotFound)
	}

	if !company.Status.Field(req.Type).CanTransition(StatusPending) {
		return nil, fmt.Errorf("%w: %s verification is already in progress", apperrors.ErrConflict, req.Type)
	}
	if err := s.repo.SetFieldPending(ctx, id, req.Type, req.Value); err != nil {
		return nil, fmt.Errorf("mark pending: %w", err)
	}

	result := s.evaluator.Evaluate(ctx, req.Type, req.Value, req.IFSC)

	status := StatusFailed
	if result.Success {
		status = StatusVerified
	}
	if err := s.repo.SetFieldResult(ctx, id, req.Type, status, result); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	overall, err := s.recomputeOverall(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("field verification finished",
		zap.String("userId", userID),
		zap.String("field", req.Type),
		zap.String("status", string(status)),
		zap.Int("overall", overall))

	return &VerifyOutcome{Result: result, Overall: overall}, nil
}

// BatchOutcome aggregates the per-field results of a batch verification
type BatchOutcome struct {
	Results map[string]Result `json:"results"`
	Overall int               `json:"overallPercentage"`
}

// VerifyBatch marks every requested field pending and then settles each
// one in turn; the overall percentage is recomputed once at the end.
func (s *Service) VerifyBatch(ctx context.Context, userID string, req BatchVerifyRequest) (*BatchOutcome, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", apperrors.ErrValidation)
	}

	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company", apperrors.ErrNotFound)
	}

	for _, v := range req.Verifications {
		if !company.Status.Field(v.Type).CanTransition(StatusPending) {
			return nil, fmt.Errorf("%w: %s verification is already in progress", apperrors.ErrConflict, v.Type)
		}
	}
	for _, v := range req.Verifications {
		if err := s.repo.SetFieldPending(ctx, id, v.Type, v.Value); err != nil {
			return nil, fmt.Errorf("mark pending: %w", err)
		}
	}

	results := make(map[string]Result, len(req.Verifications))
	for _, v := range req.Verifications {
		result := s.evaluator.Evaluate(ctx, v.Type, v.Value, v.IFSC)
		results[v.Type] = result

		status := StatusFailed
		if result.Success {
			status = StatusVerified
		}
		if err := s.repo.SetFieldResult(ctx, id, v.Type, status, result); err != nil {
			return nil, fmt.Errorf("store result for %s: %w", v.Type, err)
		}
	}

	overall, err := s.recomputeOverall(ctx, id)
	if err != nil {
		return nil, err
	}

	return &BatchOutcome{Results: results, Overall: overall}, nil
}

// AdminReviewOutcome reports the override result
type AdminReviewOutcome struct {
	NewStatus FieldStatus `json:"newStatus"`
	Overall   int         `json:"overallPercentage"`
}

// AdminReview applies an admin approve/reject override to a company field
// and records an audit entry. The caller must already be an admin.
func (s *Service) AdminReview(ctx context.Context, adminID, adminEmail string, req AdminReviewRequest) (*AdminReviewOutcome, error) {
	companyID, err := primitive.ObjectIDFromHex(req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid company id", apperrors.ErrValidation)
	}

	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company", apperrors.ErrNotFound)
	}

	previous := company.Status.Field(req.Field)
	newStatus := StatusFailed
	if req.Action == "approve" {
		newStatus = StatusVerified
	}
	if !previous.CanTransition(newStatus) {
		return nil, fmt.Errorf("%w: cannot %s a %s %s verification",
			apperrors.ErrConflict, req.Action, previous, req.Field)
	}

	if err := s.repo.SetFieldStatus(ctx, companyID, req.Field, newStatus); err != nil {
		return nil, fmt.Errorf("apply override: %w", err)
	}

	overall, err := s.recomputeOverall(ctx, companyID)
	if err != nil {
		return nil, err
	}

	entry := &AuditEntry{
		AuditID:        uuid.New().String(),
		AdminID:        adminID,
		AdminEmail:     adminEmail,
		Action:         req.Action + "_verification",
		CompanyID:      req.CompanyID,
		CompanyName:    company.CompanyName,
		Field:          req.Field,
		PreviousStatus: previous,
		NewStatus:      newStatus,
		Timestamp:      time.Now(),
	}
	if err := s.repo.RecordAudit(ctx, entry); err != nil {
		// Audit failure must not undo the override
		s.logger.Warn("audit entry not recorded", zap.Error(err))
	}

	return &AdminReviewOutcome{NewStatus: newStatus, Overall: overall}, nil
}

// BuildReport assembles the verification report for one company
func (s *Service) BuildReport(ctx context.Context, userID string) (*Report, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", apperrors.ErrValidation)
	}

	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company", apperrors.ErrNotFound)
	}

	return buildReport(company), nil
}

// ListCompanies returns the verification state of every company (admin)
func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	return s.repo.ListCompanies(ctx)
}

// recomputeOverall re-derives the overall percentage from the stored
// field statuses and persists it. Never trusts an already-stored value.
func (s *Service) recomputeOverall(ctx context.Context, id primitive.ObjectID) (int, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("reload company: %w", err)
	}
	if company == nil {
		return 0, fmt.Errorf("%w: company", apperrors.ErrNotFound)
	}

	overall := OverallPercent(company.Status)
	if err := s.repo.SetOverall(ctx, id, overall); err != nil {
		return 0, fmt.Errorf("store overall: %w", err)
	}
	return overall, nil
}

func buildReport(company *Company) *Report {
	numbers := map[string]string{
		FieldGST:  company.GSTNumber,
		FieldPAN:  company.PANNumber,
		FieldCIN:  company.CINNumber,
		FieldBank: company.BankAccount,
	}

	fields := make(map[string]ReportField, len(Fields))
	verified, pending, failed := 0, 0, 0
	for _, field := range Fields {
		status := company.Status.Field(field)
		rf := ReportField{
			Status: status,
			Number: numbers[field],
			Error:  company.Errors[field],
		}
		if data, ok := company.Data[field]; ok && data != nil {
			t := data.VerifiedAt
			rf.VerifiedAt = &t
		}
		fields[field] = rf

		switch status {
		case StatusVerified:
			verified++
		case StatusPending:
			pending++
		case StatusFailed:
			failed++
		}
	}

	overall := OverallPercent(company.Status)
	return &Report{
		Company: ReportCompany{
			Name:        company.CompanyName,
			Email:       company.Email,
			UserType:    company.UserType,
			Industry:    company.Industry,
			CompanySize: company.CompanySize,
		},
		Fields: fields,
		Compliance: ReportCompliance{
			Level:          ComplianceLevel(overall),
			Score:          overall,
			VerifiedFields: verified,
			TotalFields:    len(Fields),
			PendingFields:  pending,
			FailedFields:   failed,
		},
		GeneratedAt: time.Now(),
	}
}
