package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tenderdesk/tender-portal-backend/pkg/apperrors"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) SetEmailVerified(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, "test-secret", 7*24*time.Hour, zap.NewNop())
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByEmail", mock.Anything, "ops@roadworks.in").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)

	service := newTestService(repo)
	user, err := service.Register(context.Background(), RegisterRequest{
		Email:       "ops@roadworks.in",
		Password:    "correct horse battery staple",
		CompanyName: "Roadworks Ltd",
		UserType:    UserTypeBidder,
	})

	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("correct horse battery staple")))
	assert.NotEmpty(t, user.EmailVerifyToken)
	repo.AssertExpectations(t)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByEmail", mock.Anything, "ops@roadworks.in").Return(&User{}, nil)

	service := newTestService(repo)
	_, err := service.Register(context.Background(), RegisterRequest{
		Email:       "ops@roadworks.in",
		Password:    "whatever",
		CompanyName: "Roadworks Ltd",
		UserType:    UserTypeBidder,
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginTokenRoundTrip(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret pass"), bcrypt.MinCost)
	user := &User{
		ID:          primitive.NewObjectID(),
		Email:       "ops@roadworks.in",
		Password:    string(hash),
		CompanyName: "Roadworks Ltd",
		UserType:    UserTypeBidder,
	}

	repo := new(MockRepository)
	repo.On("GetByEmail", mock.Anything, "ops@roadworks.in").Return(user, nil)

	service := newTestService(repo)
	resp, err := service.Login(context.Background(), LoginRequest{
		Email:    "ops@roadworks.in",
		Password: "secret pass",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	claims, err := service.ParseToken(resp.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, UserTypeBidder, claims.UserType)
	assert.Equal(t, "Roadworks Ltd", claims.CompanyName)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	repo := new(MockRepository)
	repo.On("GetByEmail", mock.Anything, "ops@roadworks.in").Return(&User{Password: string(hash)}, nil)

	service := newTestService(repo)
	_, err := service.Login(context.Background(), LoginRequest{
		Email:    "ops@roadworks.in",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByEmail", mock.Anything, "nobody@nowhere.in").Return(nil, nil)

	service := newTestService(repo)
	_, err := service.Login(context.Background(), LoginRequest{
		Email:    "nobody@nowhere.in",
		Password: "irrelevant",
	})

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	service := newTestService(new(MockRepository))
	other := NewService(new(MockRepository), "different-secret", time.Hour, zap.NewNop())

	user := &User{ID: primitive.NewObjectID(), UserType: UserTypeTender}
	token, err := other.issueToken(user)
	assert.NoError(t, err)

	_, err = service.ParseToken(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerifyEmail(t *testing.T) {
	user := &User{
		ID:               primitive.NewObjectID(),
		Email:            "ops@roadworks.in",
		EmailVerifyToken: "issued-token",
	}
	repo := new(MockRepository)
	repo.On("GetByEmail", mock.Anything, "ops@roadworks.in").Return(user, nil)
	repo.On("SetEmailVerified", mock.Anything, user.ID).Return(nil)

	service := newTestService(repo)

	assert.NoError(t, service.VerifyEmail(context.Background(), "ops@roadworks.in", "issued-token"))
	assert.ErrorIs(t, service.VerifyEmail(context.Background(), "ops@roadworks.in", "forged"), apperrors.ErrValidation)
}
