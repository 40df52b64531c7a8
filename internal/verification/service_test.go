package verification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"tenderdesk/tender-portal-backend/pkg/apperrors"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetCompany(ctx context.Context, id primitive.ObjectID) (*Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Company), args.Error(1)
}

func (m *MockRepository) ListCompanies(ctx context.Context) ([]Company, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Company), args.Error(1)
}

func (m *MockRepository) SetFieldPending(ctx context.Context, id primitive.ObjectID, field, value string) error {
	args := m.Called(ctx, id, field, value)
	return args.Error(0)
}

func (m *MockRepository) SetFieldResult(ctx context.Context, id primitive.ObjectID, field string, status FieldStatus, result Result) error {
	args := m.Called(ctx, id, field, status, result)
	return args.Error(0)
}

func (m *MockRepository) SetFieldStatus(ctx context.Context, id primitive.ObjectID, field string, status FieldStatus) error {
	args := m.Called(ctx, id, field, status)
	return args.Error(0)
}

func (m *MockRepository) SetOverall(ctx context.Context, id primitive.ObjectID, overall int) error {
	args := m.Called(ctx, id, overall)
	return args.Error(0)
}

func (m *MockRepository) RecordAudit(ctx context.Context, entry *AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func newTestService(repo Repository, registry RegistryClient) *Service {
	return NewService(repo, NewEvaluator(registry, 0), zap.NewNop())
}

func TestVerifySuccessfulField(t *testing.T) {
	companyID := primitive.NewObjectID()
	repo := new(MockRepository)
	registry := new(MockRegistry)

	company := &Company{ID: companyID, CompanyName: "Umbrella Infra"}
	verifiedCompany := &Company{
		ID:     companyID,
		Status: Status{GST: StatusVerified},
	}

	registry.On("LookupGST", mock.Anything, validGSTIN).Return(&RegistryRecord{
		LegalName:  "Umbrella Infra Pvt Ltd",
		Status:     "Active",
		Confidence: 90,
	}, nil)

	repo.On("GetCompany", mock.Anything, companyID).Return(company, nil).Once()
	repo.On("SetFieldPending", mock.Anything, companyID, FieldGST, validGSTIN).Return(nil)
	repo.On("SetFieldResult", mock.Anything, companyID, FieldGST, StatusVerified, mock.AnythingOfType("verification.Result")).Return(nil)
	repo.On("GetCompany", mock.Anything, companyID).Return(verifiedCompany, nil).Once()
	repo.On("SetOverall", mock.Anything, companyID, 25).Return(nil)

	service := newTestService(repo, registry)
	outcome, err := service.Verify(context.Background(), companyID.Hex(), VerifyRequest{
		Type:  FieldGST,
		Value: validGSTIN,
	})

	assert.NoError(t, err)
	assert.True(t, outcome.Result.Success)
	assert.Equal(t, 25, outcome.Overall)
	repo.AssertExpectations(t)
	registry.AssertExpectations(t)
}

func TestVerifyBankWithoutIFSCFailsWithoutRegistryCall(t *testing.T) {
	companyID := primitive.NewObjectID()
	repo := new(MockRepository)
	registry := new(MockRegistry)

	company := &Company{ID: companyID}
	repo.On("GetCompany", mock.Anything, companyID).Return(company, nil)
	repo.On("SetFieldPending", mock.Anything, companyID, FieldBank, validAccount).Return(nil)
	repo.On("SetFieldResult", mock.Anything, companyID, FieldBank, StatusFailed, mock.AnythingOfType("verification.Result")).Return(nil)
	repo.On("SetOverall", mock.Anything, companyID, 0).Return(nil)

	service := newTestService(repo, registry)
	outcome, err := service.Verify(context.Background(), companyID.Hex(), VerifyRequest{
		Type:  FieldBank,
		Value: validAccount,
	})

	assert.NoError(t, err)
	assert.False(t, outcome.Result.Success)
	assert.Equal(t, "IFSC code required", outcome.Result.Error)
	registry.AssertNotCalled(t, "LookupBank", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestVerifyUnknownCompany(t *testing.T) {
	companyID := primitive.NewObjectID()
	repo := new(MockRepository)
	repo.On("GetCompany", mock.Anything, companyID).Return(nil, nil)

	service := newTestService(repo, new(MockRegistry))
	_, err := service.Verify(context.Background(), companyID.Hex(), VerifyRequest{
		Type:  FieldGST,
		Value: validGSTIN,
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestVerifyBatchRecomputesOverallOnce(t *testing.T) {
	companyID := primitive.NewObjectID()
	repo := new(MockRepository)
	registry := new(MockRegistry)

	registry.On("LookupGST", mock.Anything, validGSTIN).Return(&RegistryRecord{LegalName: "Umbrella", Confidence: 88}, nil)
	registry.On("LookupPAN", mock.Anything, validPAN).Return(&RegistryRecord{LegalName: "Umbrella", Confidence: 92}, nil)

	repo.On("GetCompany", mock.Anything, companyID).Return(&Company{ID: companyID}, nil).Once()
	repo.On("SetFieldPending", mock.Anything, companyID, FieldGST, validGSTIN).Return(nil)
	repo.On("SetFieldPending", mock.Anything, companyID, FieldPAN, validPAN).Return(nil)
	repo.On("SetFieldResult", mock.Anything, companyID, FieldGST, StatusVerified, mock.AnythingOfType("verification.Result")).Return(nil)
	repo.On("SetFieldResult", mock.Anything, companyID, FieldPAN, StatusVerified, mock.AnythingOfType("verification.Result")).Return(nil)
	repo.On("GetCompany", mock.Anything, companyID).Return(&Company{
		ID:     companyID,
		Status: Status{GST: StatusVerified, PAN: StatusVerified},
	}, nil).Once()
	repo.On("SetOverall", mock.Anything, companyID, 50).Return(nil).Once()

	service := newTestService(repo, registry)
	outcome, err := service.VerifyBatch(context.Background(), companyID.Hex(), BatchVerifyRequest{
		Verifications: []VerifyRequest{
			{Type: FieldGST, Value: validGSTIN},
			{Type: FieldPAN, Value: validPAN},
		},
	})

	assert.NoError(t, err)
	assert.Len(t, outcome.Results, 2)
	assert.Equal(t, 50, outcome.Overall)
	repo.AssertExpectations(t)
	registry.AssertExpectations(t)
}

func TestVerifyBlockedWhileInProgress(t *testing.T) {
	companyID := primitive.NewObjectID()
	repo := new(MockRepository)
	registry := new(MockRegistry)

	repo.On("GetCompany", mock.Anything, companyID).Return(&Company{
		ID:     companyID,
		Status: Status{GST: StatusPending},
	}, nil)

	service := newTestService(repo, registry)
	_, err := service.Verify(context.Background(), companyID.Hex(), VerifyRequest{
		Type:  FieldGST,
		Value: validGSTIN,
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	repo.AssertNotCalled(t, "SetFieldPending", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	registry.AssertNotCalled(t, "LookupGST", mock.Anything, mock.Anything)
}

func TestAdminReviewApprove(t *testing.T) {
	companyID := primitive.NewObjectID()
	repo := new(MockRepository)

	repo.On("GetCompany", mock.Anything, companyID).Return(&Company{
		ID:          companyID,
		CompanyName: "Umbrella Infra",
		Status:      Status{Bank: StatusFailed},
	}, nil).Once()
	repo.On("SetFieldStatus", mock.Anything, companyID, FieldBank, StatusVerified).Return(nil)
	repo.On("GetCompany", mock.Anything, companyID).Return(&Company{
		ID:     companyID,
		Status: Status{Bank: StatusVerified},
	}, nil).Once()
	repo.On("SetOverall", mock.Anything, companyID, 25).Return(nil)
	repo.On("RecordAudit", mock.Anything, mock.AnythingOfType("*verification.AuditEntry")).Return(nil)

	service := newTestService(repo, new(MockRegistry))
	outcome, err := service.AdminReview(context.Background(), "admin-1", "admin@tenderdesk.in", AdminReviewRequest{
		CompanyID: companyID.Hex(),
		Field:     FieldBank,
		Action:    "approve",
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusVerified, outcome.NewStatus)
	assert.Equal(t, 25, outcome.Overall)

	repo.AssertExpectations(t)
	audit := repo.Calls[len(repo.Calls)-1].Arguments.Get(1).(*AuditEntry)
	assert.Equal(t, "approve_verification", audit.Action)
	assert.Equal(t, StatusFailed, audit.PreviousStatus)
	assert.Equal(t, StatusVerified, audit.NewStatus)
	assert.NotEmpty(t, audit.AuditID)
}

func TestAdminReviewRejectsUnattemptedField(t *testing.T) {
	companyID := primitive.NewObjectID()
	repo := new(MockRepository)

	// CIN was never submitted, so there is nothing to approve
	repo.On("GetCompany", mock.Anything, companyID).Return(&Company{
		ID:          companyID,
		CompanyName: "Umbrella Infra",
	}, nil)

	service := newTestService(repo, new(MockRegistry))
	_, err := service.AdminReview(context.Background(), "admin-1", "admin@tenderdesk.in", AdminReviewRequest{
		CompanyID: companyID.Hex(),
		Field:     FieldCIN,
		Action:    "approve",
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	repo.AssertNotCalled(t, "SetFieldStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "RecordAudit", mock.Anything, mock.Anything)
}

func TestBuildReport(t *testing.T) {
	companyID := primitive.NewObjectID()
	repo := new(MockRepository)

	repo.On("GetCompany", mock.Anything, companyID).Return(&Company{
		ID:          companyID,
		CompanyName: "Umbrella Infra",
		Email:       "ops@umbrella.in",
		UserType:    "bidder",
		GSTNumber:   validGSTIN,
		PANNumber:   validPAN,
		Status: Status{
			GST:  StatusVerified,
			PAN:  StatusVerified,
			Bank: StatusFailed,
		},
		Errors: map[string]string{FieldBank: "IFSC code required"},
	}, nil)

	service := newTestService(repo, new(MockRegistry))
	report, err := service.BuildReport(context.Background(), companyID.Hex())

	assert.NoError(t, err)
	assert.Equal(t, "Umbrella Infra", report.Company.Name)
	assert.Equal(t, 50, report.Compliance.Score)
	assert.Equal(t, CompliancePartial, report.Compliance.Level)
	assert.Equal(t, 2, report.Compliance.VerifiedFields)
	assert.Equal(t, 1, report.Compliance.FailedFields)
	assert.Equal(t, StatusNotStarted, report.Fields[FieldCIN].Status)
	assert.Equal(t, "IFSC code required", report.Fields[FieldBank].Error)
}
