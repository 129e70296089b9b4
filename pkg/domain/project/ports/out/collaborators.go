package out

import (
	"context"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	"github.com/google/uuid"
)

// PaymasterProvisioner is the seam project_service.go uses to trigger §4.6
// synchronously during createProject, without the project package importing
// the paymaster package directly (avoids a domain-to-domain cycle; wired
// through the IoC container).
type PaymasterProvisioner interface {
	ProvisionForProject(ctx context.Context, projectID uuid.UUID, chains []chain_vo.ChainID) error
	// RollbackProject tears down any paymasters provisioned for projectID,
	// used when provisioning one chain among several fails.
	RollbackProject(ctx context.Context, projectID uuid.UUID) error
}

// APIKeyRevoker lets soft-delete cascade to "revoke all active api-keys"
// (§4.3) without importing the apikey package.
type APIKeyRevoker interface {
	RevokeAllForProject(ctx context.Context, projectID uuid.UUID) error
}

// PaymasterFreezer lets soft-delete cascade to "freeze paymasters" (§4.3).
type PaymasterFreezer interface {
	FreezeAllForProject(ctx context.Context, projectID uuid.UUID) error
}
