package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	"github.com/nexuspay/nexuspay/pkg/domain/identity/entities"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, u *entities.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, u *entities.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByOAuthID(ctx context.Context, provider, oauthID string) (*entities.User, error) {
	args := m.Called(ctx, provider, oauthID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByVerificationToken(ctx context.Context, token string) (*entities.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByResetToken(ctx context.Context, token string) (*entities.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func TestIdentityService_GetProfile_Found(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewIdentityService(users, nil, nil, nil, nil)

	want := entities.NewUser("ada@example.com", "Ada Lovelace")
	users.On("FindByID", mock.Anything, want.ID).Return(want, nil)

	got, err := svc.GetProfile(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got != want {
		t.Fatalf("expected the repository's user to be returned unchanged")
	}
	users.AssertExpectations(t)
}

func TestIdentityService_GetProfile_NotFound(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewIdentityService(users, nil, nil, nil, nil)

	id := uuid.New()
	users.On("FindByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.GetProfile(context.Background(), id)
	if err == nil {
		t.Fatal("expected an error for a missing user")
	}
	if _, ok := err.(*common.ErrNotFound); !ok {
		t.Fatalf("expected *common.ErrNotFound, got %T", err)
	}
}
