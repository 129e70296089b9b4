package paymaster_services

import (
	"context"
	"testing"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	paymaster_entities "github.com/nexuspay/nexuspay/pkg/domain/paymaster/entities"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockPaymasterRepository struct {
	mock.Mock
}

func (m *mockPaymasterRepository) Create(ctx context.Context, p *paymaster_entities.ProjectPaymaster) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymasterRepository) Update(ctx context.Context, p *paymaster_entities.ProjectPaymaster) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymasterRepository) FindByProjectAndChain(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID) (*paymaster_entities.ProjectPaymaster, error) {
	args := m.Called(ctx, projectID, chain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymaster_entities.ProjectPaymaster), args.Error(1)
}

func (m *mockPaymasterRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*paymaster_entities.ProjectPaymaster, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*paymaster_entities.ProjectPaymaster), args.Error(1)
}

func (m *mockPaymasterRepository) ListAll(ctx context.Context) ([]*paymaster_entities.ProjectPaymaster, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*paymaster_entities.ProjectPaymaster), args.Error(1)
}

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) Create(ctx context.Context, p *paymaster_entities.PaymasterPayment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymentRepository) Patch(ctx context.Context, p *paymaster_entities.PaymasterPayment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*paymaster_entities.PaymasterPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymaster_entities.PaymasterPayment), args.Error(1)
}

func (m *mockPaymentRepository) FindByTxHash(ctx context.Context, txHash string) (*paymaster_entities.PaymasterPayment, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymaster_entities.PaymasterPayment), args.Error(1)
}

func (m *mockPaymentRepository) ListPending(ctx context.Context) ([]*paymaster_entities.PaymasterPayment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*paymaster_entities.PaymasterPayment), args.Error(1)
}

func (m *mockPaymentRepository) TotalConfirmedUsd(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID) (float64, error) {
	args := m.Called(ctx, projectID, chain)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockPaymentRepository) ListByProjectAndChain(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, page, limit int) ([]*paymaster_entities.PaymasterPayment, int, error) {
	args := m.Called(ctx, projectID, chain, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*paymaster_entities.PaymasterPayment), args.Int(1), args.Error(2)
}

func TestPaymasterService_ListAddresses_DelegatesToRepository(t *testing.T) {
	paymasters := new(mockPaymasterRepository)
	svc := NewPaymasterService(paymasters, nil, nil, nil, nil, nil, nil, nil, nil, nil)

	projectID := uuid.New()
	want := []*paymaster_entities.ProjectPaymaster{
		paymaster_entities.NewProjectPaymaster(projectID, chain_vo.ChainEthereum, "0xabc", "sealed"),
	}
	paymasters.On("ListByProject", mock.Anything, projectID).Return(want, nil)

	got, err := svc.ListAddresses(context.Background(), projectID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("expected delegated result, got %v", got)
	}
}

func TestPaymasterService_ListPayments_DelegatesToRepository(t *testing.T) {
	payments := new(mockPaymentRepository)
	svc := NewPaymasterService(nil, nil, payments, nil, nil, nil, nil, nil, nil, nil)

	projectID := uuid.New()
	want := []*paymaster_entities.PaymasterPayment{
		paymaster_entities.NewPendingPayment(uuid.New(), projectID, "0xabc", chain_vo.ChainEthereum, paymaster_entities.OpTransactionSponsor, "1000"),
	}
	payments.On("ListByProjectAndChain", mock.Anything, projectID, chain_vo.ChainEthereum, 2, 10).Return(want, 1, nil)

	got, total, err := svc.ListPayments(context.Background(), projectID, chain_vo.ChainEthereum, 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0] != want[0] {
		t.Fatalf("expected delegated result, got %v (total=%d)", got, total)
	}
}

func TestPaymasterService_ConfirmPayment_NotifiesOnSuccess(t *testing.T) {
	payments := new(mockPaymentRepository)
	notifier := new(mockPaymentConfirmedNotifier)
	svc := NewPaymasterService(nil, nil, payments, &stubPriceOracle{price: 2000}, nil, notifier, nil, nil, nil, nil)

	projectID := uuid.New()
	payment := paymaster_entities.NewPendingPayment(uuid.New(), projectID, "0xabc", chain_vo.ChainEthereum, paymaster_entities.OpTransactionSponsor, "1000")

	payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)
	payments.On("Patch", mock.Anything, payment).Return(nil)
	notifier.On("NotifyPaymentConfirmed", mock.Anything, payment).Return(nil)

	err := svc.ConfirmPayment(context.Background(), payment.ID, "0xdeadbeef", 10, "1", 21000, "1000000000000000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payment.IsTerminal() {
		t.Fatalf("expected payment to be terminal after confirm")
	}
	notifier.AssertCalled(t, "NotifyPaymentConfirmed", mock.Anything, payment)
}

type mockPaymentConfirmedNotifier struct {
	mock.Mock
}

func (m *mockPaymentConfirmedNotifier) NotifyPaymentConfirmed(ctx context.Context, payment *paymaster_entities.PaymasterPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

type stubPriceOracle struct {
	price float64
}

func (s *stubPriceOracle) PriceUsd(ctx context.Context, chain chain_vo.ChainID) (float64, error) {
	return s.price, nil
}
