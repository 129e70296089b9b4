package db

import (
	"context"
	"fmt"
	"time"

	ledger_entities "github.com/nexuspay/nexuspay/pkg/domain/ledger/entities"
	ledger_out "github.com/nexuspay/nexuspay/pkg/domain/ledger/ports/out"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	transactionLogsCollection = "transaction_logs"
	userActivityCollection    = "user_activity"
	apiKeyUsageCollection     = "api_key_usage"
)

type TransactionLogRepository struct {
	db *mongo.Database
}

func NewTransactionLogRepository(db *mongo.Database) ledger_out.TransactionLogRepository {
	repo := &TransactionLogRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *TransactionLogRepository) ensureIndexes() {
	ctx := context.Background()
	collection := r.db.Collection(transactionLogsCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}, {Key: "confirmed_at", Value: -1}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "user_identifier", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

func (r *TransactionLogRepository) Create(ctx context.Context, t *ledger_entities.TransactionLog) error {
	_, err := r.db.Collection(transactionLogsCollection).InsertOne(ctx, t)
	if err != nil {
		return fmt.Errorf("failed to create transaction log: %w", err)
	}
	return nil
}

func (r *TransactionLogRepository) Patch(ctx context.Context, t *ledger_entities.TransactionLog) error {
	t.Touch()
	_, err := r.db.Collection(transactionLogsCollection).ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return fmt.Errorf("failed to patch transaction log: %w", err)
	}
	return nil
}

func (r *TransactionLogRepository) FindByID(ctx context.Context, projectID, id uuid.UUID) (*ledger_entities.TransactionLog, error) {
	var t ledger_entities.TransactionLog
	err := r.db.Collection(transactionLogsCollection).FindOne(ctx, bson.M{"_id": id, "project_id": projectID}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction log: %w", err)
	}
	return &t, nil
}

// ListByProjectAndWindow feeds analytics aggregation (§4.7): confined to
// confirmed rows within [since, until).
func (r *TransactionLogRepository) ListByProjectAndWindow(ctx context.Context, projectID uuid.UUID, since, until time.Time) ([]*ledger_entities.TransactionLog, error) {
	filter := bson.M{
		"project_id":   projectID,
		"status":       ledger_entities.TxStatusConfirmed,
		"confirmed_at": bson.M{"$gte": since, "$lt": until},
	}
	cursor, err := r.db.Collection(transactionLogsCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "confirmed_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []*ledger_entities.TransactionLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode transaction logs: %w", err)
	}
	return logs, nil
}

type UserActivityRepository struct {
	db *mongo.Database
}

func NewUserActivityRepository(db *mongo.Database) ledger_out.UserActivityRepository {
	repo := &UserActivityRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *UserActivityRepository) ensureIndexes() {
	ctx := context.Background()
	collection := r.db.Collection(userActivityCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "user_identifier", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "transactions_sent", Value: -1}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "total_gas_spent_usd", Value: -1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

func (r *UserActivityRepository) Upsert(ctx context.Context, a *ledger_entities.UserActivity) error {
	filter := bson.M{"project_id": a.ProjectID, "user_identifier": a.UserIdentifier}
	_, err := r.db.Collection(userActivityCollection).ReplaceOne(ctx, filter, a, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert user activity: %w", err)
	}
	return nil
}

func (r *UserActivityRepository) FindByUser(ctx context.Context, projectID uuid.UUID, userIdentifier string) (*ledger_entities.UserActivity, error) {
	var a ledger_entities.UserActivity
	filter := bson.M{"project_id": projectID, "user_identifier": userIdentifier}
	err := r.db.Collection(userActivityCollection).FindOne(ctx, filter).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user activity: %w", err)
	}
	return &a, nil
}

func (r *UserActivityRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*ledger_entities.UserActivity, error) {
	cursor, err := r.db.Collection(userActivityCollection).Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list user activity: %w", err)
	}
	defer cursor.Close(ctx)

	var activity []*ledger_entities.UserActivity
	if err := cursor.All(ctx, &activity); err != nil {
		return nil, fmt.Errorf("failed to decode user activity: %w", err)
	}
	return activity, nil
}

// TopUsers orders by transactionsSent or totalGasSpentUsd, capped at 100 (§4.7).
func (r *UserActivityRepository) TopUsers(ctx context.Context, projectID uuid.UUID, orderBy string, limit int) ([]*ledger_entities.UserActivity, error) {
	sortField := "transactions_sent"
	if orderBy == "totalGasSpentUsd" {
		sortField = "total_gas_spent_usd"
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.db.Collection(userActivityCollection).Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list top users: %w", err)
	}
	defer cursor.Close(ctx)

	var activity []*ledger_entities.UserActivity
	if err := cursor.All(ctx, &activity); err != nil {
		return nil, fmt.Errorf("failed to decode top users: %w", err)
	}
	return activity, nil
}

type APIKeyUsageRepository struct {
	db *mongo.Database
}

func NewAPIKeyUsageRepository(db *mongo.Database) ledger_out.APIKeyUsageRepository {
	repo := &APIKeyUsageRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *APIKeyUsageRepository) ensureIndexes() {
	ctx := context.Background()
	collection := r.db.Collection(apiKeyUsageCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "api_key_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60)},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

func (r *APIKeyUsageRepository) Create(ctx context.Context, u *ledger_entities.APIKeyUsage) error {
	_, err := r.db.Collection(apiKeyUsageCollection).InsertOne(ctx, u)
	if err != nil {
		return fmt.Errorf("failed to create api key usage: %w", err)
	}
	return nil
}

func (r *APIKeyUsageRepository) ListByAPIKey(ctx context.Context, projectID, apiKeyID uuid.UUID, page, limit int) ([]*ledger_entities.APIKeyUsage, int, error) {
	collection := r.db.Collection(apiKeyUsageCollection)
	filter := bson.M{"project_id": projectID, "api_key_id": apiKeyID}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count api key usage: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DEFAULT_PAGE_SIZE
	}
	if limit > MAX_PAGE_SIZE {
		limit = MAX_PAGE_SIZE
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list api key usage: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []*ledger_entities.APIKeyUsage
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, 0, fmt.Errorf("failed to decode api key usage: %w", err)
	}
	return rows, int(total), nil
}
