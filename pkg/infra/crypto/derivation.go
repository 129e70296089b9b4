package crypto

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"

	"github.com/mr-tron/base58"
)

// Derivation implements the deterministic, keyless-for-reads address
// derivation scheme from spec.md §4.5/§4.6: every derived value is
// H(domain | projectId | socialId | socialType | masterSecret), so recomputing
// from the same inputs always yields the same bytes (invariant 3, §8).
type Derivation struct {
	masterSecret []byte
}

func NewDerivation(masterSecret string) *Derivation {
	return &Derivation{masterSecret: []byte(masterSecret)}
}

func (d *Derivation) hmacSum(parts ...string) []byte {
	mac := hmac.New(sha256.New, d.masterSecret)
	for _, p := range parts {
		mac.Write([]byte(p))
		mac.Write([]byte{0}) // separator so concatenation ambiguity can't collide inputs
	}
	return mac.Sum(nil)
}

// OwnerPrivateKey derives the 32-byte seed for the EVM wallet-owner EOA that
// counterfactually controls the smart wallet for (projectID, socialID, socialType).
func (d *Derivation) OwnerPrivateKey(projectID, socialID, socialType string) []byte {
	return d.hmacSum("owner", projectID, socialID, socialType)
}

// Salt derives the CREATE2 salt for the smart-wallet factory call.
func (d *Derivation) Salt(projectID, socialID, socialType string) [32]byte {
	var salt [32]byte
	copy(salt[:], d.hmacSum("salt", projectID, socialID, socialType))
	return salt
}

// SolanaKeypair derives an Ed25519 keypair for Solana wallets.
func (d *Derivation) SolanaKeypair(projectID, socialID, socialType string) ed25519.PrivateKey {
	seed := d.hmacSum("svm", projectID, socialID, socialType)[:ed25519.SeedSize]
	return ed25519.NewKeyFromSeed(seed)
}

// SolanaSeedBase58 renders the raw derivation seed as the base58 "owner"
// string the Solana ChainAdapter expects (it re-derives the keypair itself).
func (d *Derivation) SolanaSeedBase58(projectID, socialID, socialType string) string {
	seed := d.hmacSum("svm", projectID, socialID, socialType)[:ed25519.SeedSize]
	return base58.Encode(seed)
}

// PaymasterSeed derives the seed for a project's per-chain paymaster keypair.
func (d *Derivation) PaymasterSeed(projectID, chain string) []byte {
	return d.hmacSum("pm", projectID, chain)
}

// PaymasterSalt derives the CREATE2 salt for the paymaster-factory deployment.
func (d *Derivation) PaymasterSalt(projectID, chain string) [32]byte {
	var salt [32]byte
	copy(salt[:], d.hmacSum("pmsalt", projectID, chain))
	return salt
}
