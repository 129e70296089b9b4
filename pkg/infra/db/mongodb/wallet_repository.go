package db

import (
	"context"
	"fmt"
	"time"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	wallet_entities "github.com/nexuspay/nexuspay/pkg/domain/wallet/entities"
	wallet_out "github.com/nexuspay/nexuspay/pkg/domain/wallet/ports/out"
	wallet_vo "github.com/nexuspay/nexuspay/pkg/domain/wallet/value-objects"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const walletsCollection = "wallets"

type WalletRepository struct {
	db *mongo.Database
}

func NewWalletRepository(db *mongo.Database) wallet_out.WalletRepository {
	repo := &WalletRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *WalletRepository) ensureIndexes() {
	ctx := context.Background()
	collection := r.db.Collection(walletsCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "social_id", Value: 1}, {Key: "social_type", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

func (r *WalletRepository) Create(ctx context.Context, w *wallet_entities.Wallet) error {
	_, err := r.db.Collection(walletsCollection).InsertOne(ctx, w)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *WalletRepository) Update(ctx context.Context, w *wallet_entities.Wallet) error {
	w.Touch()
	_, err := r.db.Collection(walletsCollection).ReplaceOne(ctx, bson.M{"_id": w.ID}, w)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	return nil
}

// CompareAndSwapDeployment applies next only if the stored status for chain
// still equals expectedStatus, enforcing at-most-one-concurrent-deploy (§4.5).
func (r *WalletRepository) CompareAndSwapDeployment(ctx context.Context, walletID uuid.UUID, chain chain_vo.ChainID, expectedStatus wallet_vo.DeploymentStatus, next wallet_vo.ChainDeployment) (bool, error) {
	statusField := fmt.Sprintf("deployment_status_by_chain.%s.status", chain)
	deploymentField := fmt.Sprintf("deployment_status_by_chain.%s", chain)

	filter := bson.M{"_id": walletID, statusField: expectedStatus}
	update := bson.M{"$set": bson.M{deploymentField: next, "updated_at": time.Now().UTC()}}

	res, err := r.db.Collection(walletsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-swap deployment: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *WalletRepository) FindByID(ctx context.Context, projectID, id uuid.UUID) (*wallet_entities.Wallet, error) {
	var w wallet_entities.Wallet
	err := r.db.Collection(walletsCollection).FindOne(ctx, bson.M{"_id": id, "project_id": projectID}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet: %w", err)
	}
	return &w, nil
}

func (r *WalletRepository) FindBySocialID(ctx context.Context, projectID uuid.UUID, socialID, socialType string) (*wallet_entities.Wallet, error) {
	var w wallet_entities.Wallet
	filter := bson.M{"project_id": projectID, "social_id": socialID, "social_type": socialType}
	err := r.db.Collection(walletsCollection).FindOne(ctx, filter).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet by social id: %w", err)
	}
	return &w, nil
}

func (r *WalletRepository) ListByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]*wallet_entities.Wallet, int, error) {
	collection := r.db.Collection(walletsCollection)
	filter := bson.M{"project_id": projectID}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count wallets: %w", err)
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
		return nil, 0, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer cursor.Close(ctx)

	var wallets []*wallet_entities.Wallet
	if err := cursor.All(ctx, &wallets); err != nil {
		return nil, 0, fmt.Errorf("failed to decode wallets: %w", err)
	}
	return wallets, int(total), nil
}

// ListPendingDeploys feeds the receipt poller: any wallet with at least one
// chain still in StatusPending is a candidate for reconciliation.
func (r *WalletRepository) ListPendingDeploys(ctx context.Context) ([]*wallet_entities.Wallet, error) {
	or := make([]bson.M, 0, len(chain_vo.SupportedChains()))
	for _, chain := range chain_vo.SupportedChains() {
		field := fmt.Sprintf("deployment_status_by_chain.%s.status", chain)
		or = append(or, bson.M{field: wallet_vo.StatusPending})
	}
	filter := bson.M{"$or": or}

	cursor, err := r.db.Collection(walletsCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending deploys: %w", err)
	}
	defer cursor.Close(ctx)

	var wallets []*wallet_entities.Wallet
	if err := cursor.All(ctx, &wallets); err != nil {
		return nil, fmt.Errorf("failed to decode pending deploys: %w", err)
	}
	return wallets, nil
}
