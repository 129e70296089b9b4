package paymaster

import (
	"context"
	"testing"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	paymaster_entities "github.com/nexuspay/nexuspay/pkg/domain/paymaster/entities"
	project_entities "github.com/nexuspay/nexuspay/pkg/domain/project/entities"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockProjectRepository struct {
	mock.Mock
}

func (m *mockProjectRepository) Create(ctx context.Context, p *project_entities.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProjectRepository) Update(ctx context.Context, p *project_entities.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project_entities.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project_entities.Project), args.Error(1)
}

func (m *mockProjectRepository) FindBySlug(ctx context.Context, slug string) (*project_entities.Project, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project_entities.Project), args.Error(1)
}

func (m *mockProjectRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *mockProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*project_entities.Project, int, error) {
	args := m.Called(ctx, ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*project_entities.Project), args.Int(1), args.Error(2)
}

func (m *mockProjectRepository) ListAllActive(ctx context.Context) ([]*project_entities.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project_entities.Project), args.Error(1)
}

type mockWebhookSender struct {
	mock.Mock
}

func (m *mockWebhookSender) Send(ctx context.Context, targetURL string, eventType string, payload interface{}) error {
	args := m.Called(ctx, targetURL, eventType, payload)
	return args.Error(0)
}

func TestPaymentConfirmedWebhookNotifier_SendsWhenWebhookConfigured(t *testing.T) {
	projects := new(mockProjectRepository)
	sender := new(mockWebhookSender)
	notifier := NewPaymentConfirmedWebhookNotifier(projects, sender)

	project := project_entities.NewProject(uuid.New(), "acme", []chain_vo.ChainID{chain_vo.ChainEthereum})
	project.Settings.WebhookURL = "https://example.com/hook"

	payment := paymaster_entities.NewPendingPayment(uuid.New(), project.ID, "0xabc", chain_vo.ChainEthereum, paymaster_entities.OpTransactionSponsor, "1000")
	payment.Confirm("0xdeadbeef", 10, "1", 21000, "1000000000000000000", 2000)

	projects.On("FindByID", mock.Anything, project.ID).Return(project, nil)
	sender.On("Send", mock.Anything, project.Settings.WebhookURL, "paymaster.payment_confirmed", mock.Anything).Return(nil)

	if err := notifier.NotifyPaymentConfirmed(context.Background(), payment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sender.AssertExpectations(t)
}

func TestPaymentConfirmedWebhookNotifier_SkipsWithoutWebhookURL(t *testing.T) {
	projects := new(mockProjectRepository)
	sender := new(mockWebhookSender)
	notifier := NewPaymentConfirmedWebhookNotifier(projects, sender)

	project := project_entities.NewProject(uuid.New(), "acme", []chain_vo.ChainID{chain_vo.ChainEthereum})
	payment := paymaster_entities.NewPendingPayment(uuid.New(), project.ID, "0xabc", chain_vo.ChainEthereum, paymaster_entities.OpTransactionSponsor, "1000")

	projects.On("FindByID", mock.Anything, project.ID).Return(project, nil)

	if err := notifier.NotifyPaymentConfirmed(context.Background(), payment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
