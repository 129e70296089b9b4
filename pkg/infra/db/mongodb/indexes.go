package db

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexDefinition represents a MongoDB index
type IndexDefinition struct {
	Collection string
	Name       string
	Keys       bson.D
	Options    *options.IndexOptions
}

// GetAllIndexes returns every index the NexusPay persistence layer
// requires, one group per collection.
func GetAllIndexes() []IndexDefinition {
	return []IndexDefinition{
		// Users
		{
			Collection: usersCollection,
			Name:       "idx_users_email",
			Keys:       bson.D{{Key: "email", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},
		{
			Collection: usersCollection,
			Name:       "idx_users_oauth_id",
			Keys:       bson.D{{Key: "oauth_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetSparse(true),
		},

		// Projects
		{
			Collection: projectsCollection,
			Name:       "idx_projects_slug",
			Keys:       bson.D{{Key: "slug", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},
		{
			Collection: projectsCollection,
			Name:       "idx_projects_owner_id",
			Keys:       bson.D{{Key: "owner_id", Value: 1}},
			Options:    options.Index(),
		},
		{
			Collection: projectsCollection,
			Name:       "idx_projects_owner_created",
			Keys: bson.D{
				{Key: "owner_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index(),
		},
		{
			Collection: projectMembersCollection,
			Name:       "idx_project_members_project_user",
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},

		// API keys
		{
			Collection: apiKeysCollection,
			Name:       "idx_api_keys_project_id",
			Keys:       bson.D{{Key: "project_id", Value: 1}},
			Options:    options.Index(),
		},
		{
			Collection: apiKeysCollection,
			Name:       "idx_api_keys_project_status_created",
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index(),
		},

		// Project paymasters (one signing address per project+chain)
		{
			Collection: paymastersCollection,
			Name:       "idx_project_paymasters_project_chain",
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "chain", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},

		// Paymaster balances
		{
			Collection: paymasterBalancesCollection,
			Name:       "idx_paymaster_balances_project_chain",
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "chain", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Collection: paymasterBalancesCollection,
			Name:       "idx_paymaster_balances_last_updated",
			Keys:       bson.D{{Key: "last_updated", Value: 1}},
			Options:    options.Index(),
		},

		// Paymaster payments
		{
			Collection: paymasterPaymentsCollection,
			Name:       "idx_paymaster_payments_tx_hash",
			Keys:       bson.D{{Key: "tx_hash", Value: 1}},
			Options:    options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Collection: paymasterPaymentsCollection,
			Name:       "idx_paymaster_payments_project_id",
			Keys:       bson.D{{Key: "project_id", Value: 1}},
			Options:    options.Index(),
		},
		{
			Collection: paymasterPaymentsCollection,
			Name:       "idx_paymaster_payments_project_created",
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index(),
		},

		// Transaction logs
		{
			Collection: transactionLogsCollection,
			Name:       "idx_transaction_logs_project_created",
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index(),
		},
		{
			Collection: transactionLogsCollection,
			Name:       "idx_transaction_logs_project_chain_created",
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "chain", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index(),
		},
		{
			Collection: transactionLogsCollection,
			Name:       "idx_transaction_logs_project_user_created",
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "user_identifier", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index(),
		},
		{
			Collection: transactionLogsCollection,
			Name:       "idx_transaction_logs_tx_hash",
			Keys:       bson.D{{Key: "tx_hash", Value: 1}},
			Options:    options.Index().SetSparse(true),
		},

		// User activity (one roll-up row per project+identifier)
		{
			Collection: userActivityCollection,
			Name:       "idx_user_activity_project_user",
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "user_identifier", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Collection: userActivityCollection,
			Name:       "idx_user_activity_project_last_active",
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "last_active", Value: -1},
			},
			Options: options.Index(),
		},

		// API key usage
		{
			Collection: apiKeyUsageCollection,
			Name:       "idx_api_key_usage_key_created",
			Keys: bson.D{
				{Key: "api_key_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index(),
		},
		{
			Collection: apiKeyUsageCollection,
			Name:       "idx_api_key_usage_project_created",
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index(),
		},
	}
}

// CreateIndexes creates all indexes for the database
func CreateIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	indexes := GetAllIndexes()

	slog.InfoContext(ctx, "Creating MongoDB indexes", "total_indexes", len(indexes))

	successCount := 0
	errorCount := 0

	for _, idx := range indexes {
		collection := db.Collection(idx.Collection)

		model := mongo.IndexModel{
			Keys:    idx.Keys,
			Options: idx.Options.SetName(idx.Name),
		}

		indexName, err := collection.Indexes().CreateOne(ctx, model)
		if err != nil {
			// Check if it's a "duplicate key" error (index already exists)
			if mongo.IsDuplicateKeyError(err) {
				slog.WarnContext(ctx, "Index already exists",
					"collection", idx.Collection,
					"index", idx.Name)
				successCount++
				continue
			}

			slog.ErrorContext(ctx, "Failed to create index",
				"collection", idx.Collection,
				"index", idx.Name,
				"error", err)
			errorCount++
			continue
		}

		slog.InfoContext(ctx, "Created index",
			"collection", idx.Collection,
			"index", indexName)
		successCount++
	}

	slog.InfoContext(ctx, "Index creation complete",
		"success", successCount,
		"errors", errorCount,
		"total", len(indexes))

	if errorCount > 0 {
		return fmt.Errorf("failed to create %d indexes", errorCount)
	}

	return nil
}

// DropAllIndexes drops all custom indexes (keeps _id index)
func DropAllIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	indexes := GetAllIndexes()

	slog.InfoContext(ctx, "Dropping MongoDB indexes", "total_indexes", len(indexes))

	successCount := 0
	errorCount := 0

	for _, idx := range indexes {
		collection := db.Collection(idx.Collection)

		_, err := collection.Indexes().DropOne(ctx, idx.Name)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to drop index",
				"collection", idx.Collection,
				"index", idx.Name,
				"error", err)
			errorCount++
			continue
		}

		slog.InfoContext(ctx, "Dropped index",
			"collection", idx.Collection,
			"index", idx.Name)
		successCount++
	}

	slog.InfoContext(ctx, "Index drop complete",
		"success", successCount,
		"errors", errorCount,
		"total", len(indexes))

	if errorCount > 0 {
		return fmt.Errorf("failed to drop %d indexes", errorCount)
	}

	return nil
}

// ListIndexes lists all indexes in a collection
func ListIndexes(ctx context.Context, client *mongo.Client, dbName, collectionName string) ([]bson.M, error) {
	collection := client.Database(dbName).Collection(collectionName)
	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}
	defer cursor.Close(ctx)

	var indexes []bson.M
	if err := cursor.All(ctx, &indexes); err != nil {
		return nil, fmt.Errorf("failed to decode indexes: %w", err)
	}

	return indexes, nil
}
