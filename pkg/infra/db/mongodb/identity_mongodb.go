package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nexuspay/nexuspay/pkg/domain/identity/entities"
	identity_out "github.com/nexuspay/nexuspay/pkg/domain/identity/ports/out"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// IdentityUserRepository implements identity_out.UserRepository against
// MongoDB with the same hand-rolled mongo.Collection calls as the other
// repositories in this package (e.g. TransactionLogRepository); user lookups
// are simple single-field queries.
type IdentityUserRepository struct {
	db *mongo.Database
}

func NewIdentityUserRepository(db *mongo.Database) identity_out.UserRepository {
	repo := &IdentityUserRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *IdentityUserRepository) ensureIndexes() {
	ctx := context.Background()
	collection := r.db.Collection(usersCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "oauth_provider", Value: 1}, {Key: "oauth_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "verification_token", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "reset_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

func (r *IdentityUserRepository) Create(ctx context.Context, u *entities.User) error {
	_, err := r.db.Collection(usersCollection).InsertOne(ctx, u)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *IdentityUserRepository) Update(ctx context.Context, u *entities.User) error {
	u.Touch()
	_, err := r.db.Collection(usersCollection).ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *IdentityUserRepository) findOne(ctx context.Context, filter bson.M) (*entities.User, error) {
	var u entities.User
	err := r.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (r *IdentityUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *IdentityUserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *IdentityUserRepository) FindByOAuthID(ctx context.Context, provider, oauthID string) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"oauth_provider": provider, "oauth_id": oauthID})
}

func (r *IdentityUserRepository) FindByVerificationToken(ctx context.Context, token string) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"verification_token": token})
}

func (r *IdentityUserRepository) FindByResetToken(ctx context.Context, token string) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"reset_token": token})
}
