package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	identity_out "github.com/nexuspay/nexuspay/pkg/domain/identity/ports/out"
)

// No JWT library appears anywhere in the example pack, so session tokens are
// a hand-rolled HS256 compact JWT over stdlib crypto/hmac — the one ambient
// concern for which no pack dependency could be wired (see DESIGN.md).

var ErrInvalidToken = errors.New("invalid or expired token")

type SessionClaims struct {
	Sub   uuid.UUID `json:"sub"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Iss   string    `json:"iss"`
	Aud   string    `json:"aud"`
	Exp   int64     `json:"exp"`
	Iat   int64     `json:"iat"`
}

type JWTIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewJWTIssuer(secret, issuer, audience string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTIssuer{secret: []byte(secret), issuer: issuer, audience: audience, ttl: ttl}
}

func (j *JWTIssuer) Issue(userID uuid.UUID, email, name string) (string, error) {
	now := time.Now().UTC()
	claims := SessionClaims{
		Sub:   userID,
		Email: email,
		Name:  name,
		Iss:   j.issuer,
		Aud:   j.audience,
		Iat:   now.Unix(),
		Exp:   now.Add(j.ttl).Unix(),
	}
	return j.encode(claims)
}

func (j *JWTIssuer) encode(claims SessionClaims) (string, error) {
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	encodedHeader := b64(headerJSON)
	encodedClaims := b64(claimsJSON)
	signingInput := encodedHeader + "." + encodedClaims

	mac := hmac.New(sha256.New, j.secret)
	mac.Write([]byte(signingInput))
	sig := mac.Sum(nil)

	return signingInput + "." + b64(sig), nil
}

// Verify validates signature, issuer, audience and expiry. It does not check
// subject status — callers look the user up and reject if not active.
func (j *JWTIssuer) Verify(token string) (*identity_out.SessionClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	signingInput := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, j.secret)
	mac.Write([]byte(signingInput))
	expectedSig := mac.Sum(nil)

	actualSig, err := unb64(parts[2])
	if err != nil {
		return nil, ErrInvalidToken
	}
	if subtle.ConstantTimeCompare(expectedSig, actualSig) != 1 {
		return nil, ErrInvalidToken
	}

	claimsJSON, err := unb64(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims SessionClaims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Iss != j.issuer || claims.Aud != j.audience {
		return nil, ErrInvalidToken
	}
	if time.Now().UTC().Unix() > claims.Exp {
		return nil, ErrInvalidToken
	}

	return &identity_out.SessionClaims{
		Sub:   claims.Sub,
		Email: claims.Email,
		Name:  claims.Name,
		Exp:   claims.Exp,
	}, nil
}

func b64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func unb64(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64url: %w", err)
	}
	return b, nil
}
