package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	apikey_vo "github.com/nexuspay/nexuspay/pkg/domain/apikey/value-objects"
	"github.com/nexuspay/nexuspay/pkg/domain/apikey/entities"
	in "github.com/nexuspay/nexuspay/pkg/domain/apikey/ports/in"
	out "github.com/nexuspay/nexuspay/pkg/domain/apikey/ports/out"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	ledger_entities "github.com/nexuspay/nexuspay/pkg/domain/ledger/entities"
	ledger_out "github.com/nexuspay/nexuspay/pkg/domain/ledger/ports/out"
	project_out "github.com/nexuspay/nexuspay/pkg/domain/project/ports/out"
)

type APIKeyService struct {
	keys      out.APIKeyRepository
	encryptor out.Encryptor
	usage     ledger_out.APIKeyUsageRepository
	rotations out.RotationNotifier
}

func NewAPIKeyService(keys out.APIKeyRepository, encryptor out.Encryptor, usage ledger_out.APIKeyUsageRepository, rotations out.RotationNotifier) *APIKeyService {
	return &APIKeyService{keys: keys, encryptor: encryptor, usage: usage, rotations: rotations}
}

var _ in.APIKeyCommand = (*APIKeyService)(nil)

// APIKeyService also satisfies project's out-of-package APIKeyRevoker seam
// (§4.3 soft-delete cascade), wired through the IoC container.
var _ project_out.APIKeyRevoker = (*APIKeyService)(nil)

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// buildPlaintext constructs npay_proj_<projectIdHex>_<shortKeyId>_<type>_<hash>.
func buildPlaintext(projectID uuid.UUID, shortKeyID string, keyType entities.KeyType, hash string) string {
	projectIDHex := strings.ReplaceAll(projectID.String(), "-", "")
	return strings.Join([]string{"npay", "proj", projectIDHex, shortKeyID, string(keyType), hash}, "_")
}

// parsePlaintext is the §4.1/§4.4 parser: prefix npay, proj, <projectId>
// (parts[2:len-3] joined by "_"), <shortKeyId>, <type>, <hash>.
func parsePlaintext(plaintext string) (projectID uuid.UUID, shortKeyID, keyType, hash string, err error) {
	parts := strings.Split(plaintext, "_")
	if len(parts) < 6 || parts[0] != "npay" || parts[1] != "proj" {
		return uuid.Nil, "", "", "", common.NewErrInvalidInput("malformed api key", "apiKey")
	}
	n := len(parts)
	projectIDRaw := strings.Join(parts[2:n-3], "_")
	shortKeyID = parts[n-3]
	keyType = parts[n-2]
	hash = parts[n-1]

	normalized := projectIDRaw
	if len(normalized) == 32 {
		normalized = normalized[0:8] + "-" + normalized[8:12] + "-" + normalized[12:16] + "-" + normalized[16:20] + "-" + normalized[20:32]
	}
	projectID, err = uuid.Parse(normalized)
	if err != nil {
		return uuid.Nil, "", "", "", common.NewErrInvalidInput("malformed api key", "apiKey")
	}
	return projectID, shortKeyID, keyType, hash, nil
}

func (s *APIKeyService) CreateKey(ctx context.Context, input in.CreateKeyInput) (*in.CreateKeyResult, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, common.NewErrInvalidInput("name is required", "name")
	}

	shortKeyID, err := randomHex(4)
	if err != nil {
		return nil, err
	}
	hashBytes, err := randomHex(16)
	if err != nil {
		return nil, err
	}

	plaintext := buildPlaintext(input.ProjectID, shortKeyID, input.Type, hashBytes)

	encrypted, err := s.encryptor.Seal(input.ProjectID.String(), plaintext)
	if err != nil {
		return nil, err
	}

	key := entities.NewAPIKey(input.ProjectID, input.CreatedBy, strings.TrimSpace(input.Name), input.Type, input.Permissions, input.ExpiresAt)
	key.ShortKeyID = shortKeyID
	key.EncryptedKey = encrypted
	key.KeyPreview = entities.KeyPreviewOf(plaintext)
	key.IPAllowlist = input.IPAllowlist

	if err := s.keys.Create(ctx, key); err != nil {
		return nil, err
	}

	return &in.CreateKeyResult{Key: key, Plaintext: plaintext}, nil
}

func (s *APIKeyService) ListKeys(ctx context.Context, projectID uuid.UUID, page, limit int) ([]*entities.APIKey, int, error) {
	return s.keys.ListByProject(ctx, projectID, page, limit)
}

// ListUsage backs §6's `GET .../api-keys/:keyId/usage`, confirming the key
// exists under projectID before listing its append-only usage rows.
func (s *APIKeyService) ListUsage(ctx context.Context, projectID, keyID uuid.UUID, page, limit int) ([]*ledger_entities.APIKeyUsage, int, error) {
	key, err := s.keys.FindByID(ctx, projectID, keyID)
	if err != nil {
		return nil, 0, err
	}
	if key == nil {
		return nil, 0, common.NewErrNotFound(common.ResourceTypeAPIKey, "id", keyID)
	}
	return s.usage.ListByAPIKey(ctx, projectID, keyID, page, limit)
}

func (s *APIKeyService) RotateKey(ctx context.Context, projectID, keyID uuid.UUID) (*in.RotateKeyResult, error) {
	oldKey, err := s.keys.FindByID(ctx, projectID, keyID)
	if err != nil {
		return nil, err
	}
	if oldKey == nil {
		return nil, common.NewErrNotFound(common.ResourceTypeAPIKey, "id", keyID)
	}

	result, err := s.CreateKey(ctx, in.CreateKeyInput{
		ProjectID:   projectID,
		CreatedBy:   oldKey.CreatedBy,
		Name:        oldKey.Name + " (rotated)",
		Type:        oldKey.Type,
		Permissions: oldKey.Permissions,
		IPAllowlist: oldKey.IPAllowlist,
		ExpiresAt:   oldKey.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	oldKey.Status = entities.KeyStatusRotated
	oldKey.RotatedAt = &now
	oldKey.Touch()
	if err := s.keys.Update(ctx, oldKey); err != nil {
		return nil, err
	}

	if s.rotations != nil {
		if err := s.rotations.NotifyKeyRotated(ctx, result.Key); err != nil {
			slog.ErrorContext(ctx, "apikey-rotated webhook failed", "key_id", result.Key.ID, "error", err)
		}
	}

	return &in.RotateKeyResult{NewKey: result.Key, Plaintext: result.Plaintext, OldKey: oldKey}, nil
}

func (s *APIKeyService) RevokeKey(ctx context.Context, projectID, keyID uuid.UUID) error {
	key, err := s.keys.FindByID(ctx, projectID, keyID)
	if err != nil {
		return err
	}
	if key == nil {
		return common.NewErrNotFound(common.ResourceTypeAPIKey, "id", keyID)
	}
	key.Status = entities.KeyStatusRevoked
	key.Touch()
	return s.keys.Update(ctx, key)
}

func (s *APIKeyService) RevokeAllForProject(ctx context.Context, projectID uuid.UUID) error {
	return s.keys.RevokeAllForProject(ctx, projectID)
}

func (s *APIKeyService) UpdateIPAllowlist(ctx context.Context, projectID, keyID uuid.UUID, allowlist []apikey_vo.IPAllowlistEntry) error {
	key, err := s.keys.FindByID(ctx, projectID, keyID)
	if err != nil {
		return err
	}
	if key == nil {
		return common.NewErrNotFound(common.ResourceTypeAPIKey, "id", keyID)
	}
	key.IPAllowlist = allowlist
	key.Touch()
	return s.keys.Update(ctx, key)
}

// FindByPresentedKey parses the plaintext, narrows candidates to the parsed
// project's active/rotated keys by ShortKeyID, then decrypts each to compare
// for equality (§4.4's bounded scan).
func (s *APIKeyService) FindByPresentedKey(ctx context.Context, plaintext string) (*entities.APIKey, error) {
	projectID, shortKeyID, _, _, err := parsePlaintext(plaintext)
	if err != nil {
		return nil, err
	}

	candidates, err := s.keys.ListLookupCandidates(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		if candidate.ShortKeyID != shortKeyID {
			continue
		}
		decrypted, err := s.encryptor.Open(projectID.String(), candidate.EncryptedKey)
		if err != nil {
			continue
		}
		if constantTimeEqual(decrypted, plaintext) {
			return candidate, nil
		}
	}
	return nil, nil
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	var diff byte
	for i := range ha {
		diff |= ha[i] ^ hb[i]
	}
	return diff == 0
}
