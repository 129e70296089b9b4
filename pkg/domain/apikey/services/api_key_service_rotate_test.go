package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nexuspay/nexuspay/pkg/domain/apikey/entities"
	apikey_vo "github.com/nexuspay/nexuspay/pkg/domain/apikey/value-objects"
)

type stubEncryptor struct{}

func (stubEncryptor) Seal(projectID, plaintext string) (string, error) { return "sealed:" + plaintext, nil }
func (stubEncryptor) Open(projectID, encoded string) (string, error)   { return encoded, nil }

type mockRotationNotifier struct {
	mock.Mock
}

func (m *mockRotationNotifier) NotifyKeyRotated(ctx context.Context, key *entities.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func TestAPIKeyService_RotateKey_NotifiesOnSuccess(t *testing.T) {
	keys := new(mockAPIKeyRepository)
	notifier := new(mockRotationNotifier)
	svc := NewAPIKeyService(keys, stubEncryptor{}, nil, notifier)

	projectID, keyID := uuid.New(), uuid.New()
	oldKey := entities.NewAPIKey(projectID, uuid.New(), "server key", entities.KeyTypeProduction, []apikey_vo.Permission{}, nil)
	oldKey.ID = keyID

	keys.On("FindByID", mock.Anything, projectID, keyID).Return(oldKey, nil)
	keys.On("Create", mock.Anything, mock.AnythingOfType("*entities.APIKey")).Return(nil)
	keys.On("Update", mock.Anything, oldKey).Return(nil)
	notifier.On("NotifyKeyRotated", mock.Anything, mock.AnythingOfType("*entities.APIKey")).Return(nil)

	result, err := svc.RotateKey(context.Background(), projectID, keyID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NewKey == oldKey {
		t.Fatalf("expected a freshly minted key, got the old one back")
	}
	notifier.AssertCalled(t, "NotifyKeyRotated", mock.Anything, result.NewKey)
}

func TestAPIKeyService_RotateKey_KeyNotFound(t *testing.T) {
	keys := new(mockAPIKeyRepository)
	notifier := new(mockRotationNotifier)
	svc := NewAPIKeyService(keys, stubEncryptor{}, nil, notifier)

	projectID, keyID := uuid.New(), uuid.New()
	keys.On("FindByID", mock.Anything, projectID, keyID).Return(nil, nil)

	_, err := svc.RotateKey(context.Background(), projectID, keyID)
	if err == nil {
		t.Fatalf("expected an error for a missing key")
	}
	notifier.AssertNotCalled(t, "NotifyKeyRotated", mock.Anything, mock.Anything)
}
