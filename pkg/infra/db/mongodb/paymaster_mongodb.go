package db

import (
	"context"
	"fmt"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	paymaster_entities "github.com/nexuspay/nexuspay/pkg/domain/paymaster/entities"
	paymaster_out "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/out"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	paymastersCollection        = "project_paymasters"
	paymasterBalancesCollection = "paymaster_balances"
	paymasterPaymentsCollection = "paymaster_payments"
)

type PaymasterRepository struct {
	db *mongo.Database
}

func NewPaymasterRepository(db *mongo.Database) paymaster_out.PaymasterRepository {
	repo := &PaymasterRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *PaymasterRepository) ensureIndexes() {
	ctx := context.Background()
	collection := r.db.Collection(paymastersCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "chain", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

func (r *PaymasterRepository) Create(ctx context.Context, p *paymaster_entities.ProjectPaymaster) error {
	_, err := r.db.Collection(paymastersCollection).InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create project paymaster: %w", err)
	}
	return nil
}

func (r *PaymasterRepository) Update(ctx context.Context, p *paymaster_entities.ProjectPaymaster) error {
	p.Touch()
	_, err := r.db.Collection(paymastersCollection).ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("failed to update project paymaster: %w", err)
	}
	return nil
}

func (r *PaymasterRepository) FindByProjectAndChain(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID) (*paymaster_entities.ProjectPaymaster, error) {
	var p paymaster_entities.ProjectPaymaster
	filter := bson.M{"project_id": projectID, "chain": chain}
	err := r.db.Collection(paymastersCollection).FindOne(ctx, filter).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project paymaster: %w", err)
	}
	return &p, nil
}

func (r *PaymasterRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*paymaster_entities.ProjectPaymaster, error) {
	cursor, err := r.db.Collection(paymastersCollection).Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list project paymasters: %w", err)
	}
	defer cursor.Close(ctx)

	var pms []*paymaster_entities.ProjectPaymaster
	if err := cursor.All(ctx, &pms); err != nil {
		return nil, fmt.Errorf("failed to decode project paymasters: %w", err)
	}
	return pms, nil
}

// ListAll feeds the background balance refresher (§4.6).
func (r *PaymasterRepository) ListAll(ctx context.Context) ([]*paymaster_entities.ProjectPaymaster, error) {
	cursor, err := r.db.Collection(paymastersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list all paymasters: %w", err)
	}
	defer cursor.Close(ctx)

	var pms []*paymaster_entities.ProjectPaymaster
	if err := cursor.All(ctx, &pms); err != nil {
		return nil, fmt.Errorf("failed to decode paymasters: %w", err)
	}
	return pms, nil
}

type BalanceRepository struct {
	db *mongo.Database
}

func NewBalanceRepository(db *mongo.Database) paymaster_out.BalanceRepository {
	repo := &BalanceRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *BalanceRepository) ensureIndexes() {
	ctx := context.Background()
	collection := r.db.Collection(paymasterBalancesCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "chain", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

func (r *BalanceRepository) Upsert(ctx context.Context, b *paymaster_entities.PaymasterBalance) error {
	filter := bson.M{"project_id": b.ProjectID, "chain": b.Chain}
	_, err := r.db.Collection(paymasterBalancesCollection).ReplaceOne(ctx, filter, b, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert paymaster balance: %w", err)
	}
	return nil
}

func (r *BalanceRepository) FindByProjectAndChain(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID) (*paymaster_entities.PaymasterBalance, error) {
	var b paymaster_entities.PaymasterBalance
	filter := bson.M{"project_id": projectID, "chain": chain}
	err := r.db.Collection(paymasterBalancesCollection).FindOne(ctx, filter).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find paymaster balance: %w", err)
	}
	return &b, nil
}

type PaymentRepository struct {
	db *mongo.Database
}

func NewPaymentRepository(db *mongo.Database) paymaster_out.PaymentRepository {
	repo := &PaymentRepository{db: db}
	repo.ensureIndexes()
	return repo
}

func (r *PaymentRepository) ensureIndexes() {
	ctx := context.Background()
	collection := r.db.Collection(paymasterPaymentsCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tx_hash", Value: 1}}, Options: options.Index().SetSparse(true).SetUnique(true)},
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "chain", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

func (r *PaymentRepository) Create(ctx context.Context, p *paymaster_entities.PaymasterPayment) error {
	_, err := r.db.Collection(paymasterPaymentsCollection).InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create paymaster payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) Patch(ctx context.Context, p *paymaster_entities.PaymasterPayment) error {
	p.Touch()
	_, err := r.db.Collection(paymasterPaymentsCollection).ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("failed to patch paymaster payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*paymaster_entities.PaymasterPayment, error) {
	var p paymaster_entities.PaymasterPayment
	err := r.db.Collection(paymasterPaymentsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find paymaster payment: %w", err)
	}
	return &p, nil
}

func (r *PaymentRepository) FindByTxHash(ctx context.Context, txHash string) (*paymaster_entities.PaymasterPayment, error) {
	var p paymaster_entities.PaymasterPayment
	err := r.db.Collection(paymasterPaymentsCollection).FindOne(ctx, bson.M{"tx_hash": txHash}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find paymaster payment by tx hash: %w", err)
	}
	return &p, nil
}

// ListPending feeds the receipt poller.
func (r *PaymentRepository) ListPending(ctx context.Context) ([]*paymaster_entities.PaymasterPayment, error) {
	cursor, err := r.db.Collection(paymasterPaymentsCollection).Find(ctx, bson.M{"status": paymaster_entities.PaymentStatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending paymaster payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*paymaster_entities.PaymasterPayment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode pending paymaster payments: %w", err)
	}
	return payments, nil
}

// ListByProjectAndChain feeds the §6 `GET .../paymaster/transactions`
// route, newest first.
func (r *PaymentRepository) ListByProjectAndChain(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, page, limit int) ([]*paymaster_entities.PaymasterPayment, int, error) {
	collection := r.db.Collection(paymasterPaymentsCollection)
	filter := bson.M{"project_id": projectID, "chain": chain}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count paymaster payments: %w", err)
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
		return nil, 0, fmt.Errorf("failed to list paymaster payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*paymaster_entities.PaymasterPayment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, 0, fmt.Errorf("failed to decode paymaster payments: %w", err)
	}
	return payments, int(total), nil
}

// TotalConfirmedUsd sums confirmed payments for a project scoped to one
// chain; spend is monotonic (§4.6).
func (r *PaymentRepository) TotalConfirmedUsd(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"project_id": projectID,
			"chain":      chain,
			"status":     paymaster_entities.PaymentStatusConfirmed,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$usd_value"},
		}}},
	}

	cursor, err := r.db.Collection(paymasterPaymentsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate confirmed payment total: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total float64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode confirmed payment total: %w", err)
		}
	}
	return result.Total, nil
}
