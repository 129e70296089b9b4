package out

import "context"

// PasswordHasher hashes and verifies user passwords. Implemented by
// pkg/infra/crypto's Argon2id adapter.
type PasswordHasher interface {
	HashPassword(ctx context.Context, password string) (string, error)
	ComparePassword(ctx context.Context, hashedPassword, password string) error
}
