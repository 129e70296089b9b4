package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nexuspay/nexuspay/pkg/domain/apikey/entities"
	apikey_out "github.com/nexuspay/nexuspay/pkg/domain/apikey/ports/out"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const apiKeysCollection = "api_keys"

// DEFAULT_PAGE_SIZE and MAX_PAGE_SIZE bound the limit of every paginated list
// query in this package.
const (
	DEFAULT_PAGE_SIZE = 50
	MAX_PAGE_SIZE     = 200
)

type APIKeyRepository struct {
	db *mongo.Database
}

func NewAPIKeyRepository(db *mongo.Database) apikey_out.APIKeyRepository {
	repo := &APIKeyRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *APIKeyRepository) ensureIndexes() {
	ctx := context.Background()
	collection := r.db.Collection(apiKeysCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "short_key_id", Value: 1}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

func (r *APIKeyRepository) Create(ctx context.Context, k *entities.APIKey) error {
	_, err := r.db.Collection(apiKeysCollection).InsertOne(ctx, k)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) Update(ctx context.Context, k *entities.APIKey) error {
	k.Touch()
	_, err := r.db.Collection(apiKeysCollection).ReplaceOne(ctx, bson.M{"_id": k.ID}, k)
	if err != nil {
		return fmt.Errorf("failed to update api key: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) FindByID(ctx context.Context, projectID, keyID uuid.UUID) (*entities.APIKey, error) {
	var k entities.APIKey
	err := r.db.Collection(apiKeysCollection).FindOne(ctx, bson.M{"_id": keyID, "project_id": projectID}).Decode(&k)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find api key: %w", err)
	}
	return &k, nil
}

func (r *APIKeyRepository) ListByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]*entities.APIKey, int, error) {
	collection := r.db.Collection(apiKeysCollection)
	filter := bson.M{"project_id": projectID}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count api keys: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DEFAULT_PAGE_SIZE
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []*entities.APIKey
	if err := cursor.All(ctx, &keys); err != nil {
		return nil, 0, fmt.Errorf("failed to decode api keys: %w", err)
	}
	return keys, int(total), nil
}

// ListLookupCandidates returns active/rotated keys for projectID (§4.4): the
// caller narrows further by ShortKeyID before decrypting each candidate.
func (r *APIKeyRepository) ListLookupCandidates(ctx context.Context, projectID uuid.UUID) ([]*entities.APIKey, error) {
	filter := bson.M{
		"project_id": projectID,
		"status":     bson.M{"$in": []entities.KeyStatus{entities.KeyStatusActive, entities.KeyStatusRotated}},
	}
	cursor, err := r.db.Collection(apiKeysCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list api key lookup candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []*entities.APIKey
	if err := cursor.All(ctx, &keys); err != nil {
		return nil, fmt.Errorf("failed to decode api key lookup candidates: %w", err)
	}
	return keys, nil
}

func (r *APIKeyRepository) RevokeAllForProject(ctx context.Context, projectID uuid.UUID) error {
	_, err := r.db.Collection(apiKeysCollection).UpdateMany(ctx,
		bson.M{"project_id": projectID, "status": bson.M{"$ne": entities.KeyStatusRevoked}},
		bson.M{"$set": bson.M{"status": entities.KeyStatusRevoked}},
	)
	if err != nil {
		return fmt.Errorf("failed to revoke api keys for project: %w", err)
	}
	return nil
}
