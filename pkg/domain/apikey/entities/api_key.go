package entities

import (
	"net"
	"strings"
	"time"

	apikey_vo "github.com/nexuspay/nexuspay/pkg/domain/apikey/value-objects"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	"github.com/google/uuid"
)

type KeyType string

const (
	KeyTypeDev        KeyType = "dev"
	KeyTypeProduction KeyType = "production"
	KeyTypeRestricted KeyType = "restricted"
)

type KeyStatus string

const (
	KeyStatusActive  KeyStatus = "active"
	KeyStatusRevoked KeyStatus = "revoked"
	KeyStatusExpired KeyStatus = "expired"
	KeyStatusRotated KeyStatus = "rotated"
)

// RotationGracePeriod is how long a rotated key is still accepted (§4.4).
const RotationGracePeriod = 24 * time.Hour

// APIKey is spec.md §3's APIKey. EncryptedKey holds the AEAD ciphertext of
// the full plaintext key; the plaintext itself is never persisted.
type APIKey struct {
	common.BaseEntity `bson:",inline"`

	Name string `bson:"name"`
	// ShortKeyID is the 8-hex-char segment embedded in the plaintext key
	// (parts[len-3] of npay_proj_<projectId>_<shortKeyId>_<type>_<hash>);
	// it narrows the §4.4 lookup scan before decrypting.
	ShortKeyID   string                       `bson:"short_key_id"`
	EncryptedKey string                       `bson:"encrypted_key"`
	KeyPreview   string                       `bson:"key_preview"`
	Type         KeyType                      `bson:"type"`
	Permissions  []apikey_vo.Permission       `bson:"permissions"`
	IPAllowlist  []apikey_vo.IPAllowlistEntry `bson:"ip_allowlist,omitempty"`
	CreatedBy    uuid.UUID                    `bson:"created_by"`
	LastUsedAt   time.Time                    `bson:"last_used_at,omitempty"`
	UsageCount   int64                        `bson:"usage_count"`
	ExpiresAt    *time.Time                   `bson:"expires_at,omitempty"`
	Status       KeyStatus                    `bson:"status"`
	RotatedAt    *time.Time                   `bson:"rotated_at,omitempty"`
}

func NewAPIKey(projectID, createdBy uuid.UUID, name string, keyType KeyType, permissions []apikey_vo.Permission, expiresAt *time.Time) *APIKey {
	base := common.NewEntity(projectID)
	if len(permissions) == 0 {
		permissions = apikey_vo.DefaultPermissions()
	}
	return &APIKey{
		BaseEntity:  base,
		Name:        name,
		Type:        keyType,
		Permissions: permissions,
		ExpiresAt:   expiresAt,
		Status:      KeyStatusActive,
	}
}

// KeyPreviewOf returns the "first-8...last-4" display form of a plaintext key.
func KeyPreviewOf(plaintext string) string {
	if len(plaintext) <= 12 {
		return plaintext
	}
	return plaintext[:8] + "..." + plaintext[len(plaintext)-4:]
}

func (k *APIKey) IsUsable(now time.Time) bool {
	if k.Status != KeyStatusActive && k.Status != KeyStatusRotated {
		return false
	}
	if k.Status == KeyStatusRotated {
		if k.RotatedAt == nil || now.After(k.RotatedAt.Add(RotationGracePeriod)) {
			return false
		}
	}
	if k.ExpiresAt != nil && now.After(*k.ExpiresAt) {
		return false
	}
	return true
}

func (k *APIKey) HasPermission(p apikey_vo.Permission) bool {
	return apikey_vo.Contains(k.Permissions, p)
}

// IPAllowed implements the equality-or-IPv4-CIDR-membership rule; an empty
// allowlist means "any IP" (§4.4).
func (k *APIKey) IPAllowed(callerIP string) bool {
	if len(k.IPAllowlist) == 0 {
		return true
	}
	ip := net.ParseIP(callerIP)
	for _, entry := range k.IPAllowlist {
		if entry.IPOrCIDR == callerIP {
			return true
		}
		if strings.Contains(entry.IPOrCIDR, "/") && ip != nil {
			_, cidr, err := net.ParseCIDR(entry.IPOrCIDR)
			if err == nil && cidr.Contains(ip) {
				return true
			}
		}
	}
	return false
}
