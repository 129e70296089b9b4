package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nexuspay/nexuspay/pkg/domain/apikey/entities"
	apikey_vo "github.com/nexuspay/nexuspay/pkg/domain/apikey/value-objects"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	ledger_entities "github.com/nexuspay/nexuspay/pkg/domain/ledger/entities"
)

type mockAPIKeyRepository struct {
	mock.Mock
}

func (m *mockAPIKeyRepository) Create(ctx context.Context, k *entities.APIKey) error {
	args := m.Called(ctx, k)
	return args.Error(0)
}

func (m *mockAPIKeyRepository) Update(ctx context.Context, k *entities.APIKey) error {
	args := m.Called(ctx, k)
	return args.Error(0)
}

func (m *mockAPIKeyRepository) FindByID(ctx context.Context, projectID, keyID uuid.UUID) (*entities.APIKey, error) {
	args := m.Called(ctx, projectID, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) ListByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]*entities.APIKey, int, error) {
	args := m.Called(ctx, projectID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.APIKey), args.Int(1), args.Error(2)
}

func (m *mockAPIKeyRepository) ListLookupCandidates(ctx context.Context, projectID uuid.UUID) ([]*entities.APIKey, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) RevokeAllForProject(ctx context.Context, projectID uuid.UUID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

type mockAPIKeyUsageRepository struct {
	mock.Mock
}

func (m *mockAPIKeyUsageRepository) Create(ctx context.Context, u *ledger_entities.APIKeyUsage) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockAPIKeyUsageRepository) ListByAPIKey(ctx context.Context, projectID, apiKeyID uuid.UUID, page, limit int) ([]*ledger_entities.APIKeyUsage, int, error) {
	args := m.Called(ctx, projectID, apiKeyID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*ledger_entities.APIKeyUsage), args.Int(1), args.Error(2)
}

func TestAPIKeyService_ListUsage_KeyNotFound(t *testing.T) {
	keys := new(mockAPIKeyRepository)
	usage := new(mockAPIKeyUsageRepository)
	svc := NewAPIKeyService(keys, nil, usage, nil)

	projectID, keyID := uuid.New(), uuid.New()
	keys.On("FindByID", mock.Anything, projectID, keyID).Return(nil, nil)

	_, _, err := svc.ListUsage(context.Background(), projectID, keyID, 1, 20)
	if _, ok := err.(*common.ErrNotFound); !ok {
		t.Fatalf("expected *common.ErrNotFound, got %T (%v)", err, err)
	}
	usage.AssertNotCalled(t, "ListByAPIKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAPIKeyService_ListUsage_DelegatesToRepository(t *testing.T) {
	keys := new(mockAPIKeyRepository)
	usage := new(mockAPIKeyUsageRepository)
	svc := NewAPIKeyService(keys, nil, usage, nil)

	projectID, keyID := uuid.New(), uuid.New()
	key := entities.NewAPIKey(projectID, uuid.New(), "server key", entities.KeyTypeProduction, []apikey_vo.Permission{}, nil)
	rows := []*ledger_entities.APIKeyUsage{
		ledger_entities.NewAPIKeyUsage(keyID, projectID, "/v1/wallets", "POST", 201, 42, "127.0.0.1", "curl"),
	}

	keys.On("FindByID", mock.Anything, projectID, keyID).Return(key, nil)
	usage.On("ListByAPIKey", mock.Anything, projectID, keyID, 2, 10).Return(rows, 1, nil)

	got, total, err := svc.ListUsage(context.Background(), projectID, keyID, 2, 10)
	if err != nil {
		t.Fatalf("ListUsage: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0] != rows[0] {
		t.Fatalf("unexpected result: got=%v total=%d", got, total)
	}
}
