package crypto

import (
	"context"
	"strings"
	"testing"
)

func TestArgon2idPasswordHasherAdapter_RoundTrip(t *testing.T) {
	hasher := NewArgon2idPasswordHasherAdapterWithParams(&Argon2idParams{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	})
	ctx := context.Background()

	encoded, err := hasher.HashPassword(ctx, "P@ssw0rd1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("expected PHC-formatted hash, got %q", encoded)
	}

	if err := hasher.ComparePassword(ctx, encoded, "P@ssw0rd1"); err != nil {
		t.Fatalf("ComparePassword with correct password: %v", err)
	}
}

func TestArgon2idPasswordHasherAdapter_WrongPassword(t *testing.T) {
	hasher := NewArgon2idPasswordHasherAdapterWithParams(&Argon2idParams{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	})
	ctx := context.Background()

	encoded, err := hasher.HashPassword(ctx, "P@ssw0rd1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if err := hasher.ComparePassword(ctx, encoded, "wrong-password"); err == nil {
		t.Fatal("expected ComparePassword to fail for a mismatched password")
	}
}

func TestArgon2idPasswordHasherAdapter_InvalidHashFormat(t *testing.T) {
	hasher := NewArgon2idPasswordHasherAdapter()
	ctx := context.Background()

	if err := hasher.ComparePassword(ctx, "not-a-valid-hash", "anything"); err == nil {
		t.Fatal("expected ComparePassword to reject a malformed hash")
	}
}

func TestArgon2idPasswordHasherAdapter_DistinctSaltsPerHash(t *testing.T) {
	hasher := NewArgon2idPasswordHasherAdapterWithParams(&Argon2idParams{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	})
	ctx := context.Background()

	first, err := hasher.HashPassword(ctx, "same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := hasher.HashPassword(ctx, "same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if first == second {
		t.Fatal("expected two hashes of the same password to differ due to random salts")
	}
}
