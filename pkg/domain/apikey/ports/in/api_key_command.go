package in

import (
	"context"
	"time"

	apikey_vo "github.com/nexuspay/nexuspay/pkg/domain/apikey/value-objects"
	"github.com/nexuspay/nexuspay/pkg/domain/apikey/entities"
	ledger_entities "github.com/nexuspay/nexuspay/pkg/domain/ledger/entities"
	"github.com/google/uuid"
)

type CreateKeyInput struct {
	ProjectID   uuid.UUID
	CreatedBy   uuid.UUID
	Name        string
	Type        entities.KeyType
	Permissions []apikey_vo.Permission
	IPAllowlist []apikey_vo.IPAllowlistEntry
	ExpiresAt   *time.Time
}

// CreateKeyResult carries the plaintext key, shown exactly once (§4.4).
type CreateKeyResult struct {
	Key       *entities.APIKey
	Plaintext string
}

// RotateKeyResult carries the new key's plaintext and the old key entity
// (now status=rotated).
type RotateKeyResult struct {
	NewKey    *entities.APIKey
	Plaintext string
	OldKey    *entities.APIKey
}

type APIKeyCommand interface {
	CreateKey(ctx context.Context, input CreateKeyInput) (*CreateKeyResult, error)
	ListKeys(ctx context.Context, projectID uuid.UUID, page, limit int) ([]*entities.APIKey, int, error)
	ListUsage(ctx context.Context, projectID, keyID uuid.UUID, page, limit int) ([]*ledger_entities.APIKeyUsage, int, error)
	RotateKey(ctx context.Context, projectID, keyID uuid.UUID) (*RotateKeyResult, error)
	RevokeKey(ctx context.Context, projectID, keyID uuid.UUID) error
	UpdateIPAllowlist(ctx context.Context, projectID, keyID uuid.UUID, allowlist []apikey_vo.IPAllowlistEntry) error
	// FindByPresentedKey implements the request-time bounded scan-and-decrypt
	// lookup (§4.4).
	FindByPresentedKey(ctx context.Context, plaintext string) (*entities.APIKey, error)
}
