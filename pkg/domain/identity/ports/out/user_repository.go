package out

import (
	"context"

	"github.com/google/uuid"
	"github.com/nexuspay/nexuspay/pkg/domain/identity/entities"
)

type UserRepository interface {
	Create(ctx context.Context, u *entities.User) error
	Update(ctx context.Context, u *entities.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByOAuthID(ctx context.Context, provider, oauthID string) (*entities.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*entities.User, error)
	FindByResetToken(ctx context.Context, token string) (*entities.User, error)
}
