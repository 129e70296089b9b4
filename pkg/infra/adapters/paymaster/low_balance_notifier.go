package paymaster

import (
	"context"
	"fmt"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	paymaster_out "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/out"
	project_out "github.com/nexuspay/nexuspay/pkg/domain/project/ports/out"
	"github.com/google/uuid"
)

// webhookSender is the narrow seam onto pkg/infra/webhook.Dispatcher.
type webhookSender interface {
	Send(ctx context.Context, targetURL string, eventType string, payload interface{}) error
}

// LowBalanceWebhookNotifier delivers the §4.6 paymaster.low_balance event to
// a project's configured webhook endpoint.
type LowBalanceWebhookNotifier struct {
	projects project_out.ProjectRepository
	sender   webhookSender
}

func NewLowBalanceWebhookNotifier(projects project_out.ProjectRepository, sender webhookSender) paymaster_out.LowBalanceNotifier {
	return &LowBalanceWebhookNotifier{projects: projects, sender: sender}
}

func (n *LowBalanceWebhookNotifier) NotifyLowBalance(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, balanceUsd float64) error {
	project, err := n.projects.FindByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to look up project for low balance notification: %w", err)
	}
	if project == nil || project.Settings.WebhookURL == "" {
		return nil
	}

	payload := map[string]interface{}{
		"projectId":  projectID.String(),
		"chain":      string(chain),
		"balanceUsd": balanceUsd,
	}
	return n.sender.Send(ctx, project.Settings.WebhookURL, "paymaster.low_balance", payload)
}

var _ paymaster_out.LowBalanceNotifier = (*LowBalanceWebhookNotifier)(nil)
