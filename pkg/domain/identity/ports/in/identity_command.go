package in

import (
	"context"

	"github.com/google/uuid"
	"github.com/nexuspay/nexuspay/pkg/domain/identity/entities"
)

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Company  string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	User  *entities.User
}

type OAuthSignInInput struct {
	Provider string
	OAuthID  string
	Email    string
	Name     string
}

// IdentityCommand is the single in-port for every write operation §4.2 names.
type IdentityCommand interface {
	Register(ctx context.Context, in RegisterInput) (*entities.User, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	OAuthSignIn(ctx context.Context, in OAuthSignInInput) (*LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, company string) (*entities.User, error)
}
