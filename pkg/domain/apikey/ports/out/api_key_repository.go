package out

import (
	"context"

	"github.com/google/uuid"
	"github.com/nexuspay/nexuspay/pkg/domain/apikey/entities"
)

type APIKeyRepository interface {
	Create(ctx context.Context, k *entities.APIKey) error
	Update(ctx context.Context, k *entities.APIKey) error
	FindByID(ctx context.Context, projectID, keyID uuid.UUID) (*entities.APIKey, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]*entities.APIKey, int, error)
	// ListLookupCandidates returns active/rotated keys for projectID, used by
	// the bounded decrypt-and-compare lookup in §4.4.
	ListLookupCandidates(ctx context.Context, projectID uuid.UUID) ([]*entities.APIKey, error)
	RevokeAllForProject(ctx context.Context, projectID uuid.UUID) error
}

// Encryptor wraps the project-scoped AEAD used to seal/open key plaintext
// (pkg/infra/crypto.SecretBox satisfies this).
type Encryptor interface {
	Seal(projectID, plaintext string) (string, error)
	Open(projectID, encoded string) (string, error)
}

// RotationNotifier emits the §6 `apikey.rotated` webhook once a key rotation
// completes.
type RotationNotifier interface {
	NotifyKeyRotated(ctx context.Context, key *entities.APIKey) error
}
