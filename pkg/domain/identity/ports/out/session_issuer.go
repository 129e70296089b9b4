package out

import "github.com/google/uuid"

// SessionClaims mirrors pkg/infra/crypto.SessionClaims so the domain layer
// never imports the infra package directly.
type SessionClaims struct {
	Sub   uuid.UUID
	Email string
	Name  string
	Exp   int64
}

// SessionIssuer issues and verifies the Bearer session JWT (§4.1/§4.2).
type SessionIssuer interface {
	Issue(userID uuid.UUID, email, name string) (string, error)
	Verify(token string) (*SessionClaims, error)
}
