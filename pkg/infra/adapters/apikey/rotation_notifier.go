package apikey

import (
	"context"
	"fmt"

	"github.com/nexuspay/nexuspay/pkg/domain/apikey/entities"
	apikey_out "github.com/nexuspay/nexuspay/pkg/domain/apikey/ports/out"
	project_out "github.com/nexuspay/nexuspay/pkg/domain/project/ports/out"
)

// webhookSender is the narrow seam onto pkg/infra/webhook.Dispatcher.
type webhookSender interface {
	Send(ctx context.Context, targetURL string, eventType string, payload interface{}) error
}

// RotationWebhookNotifier delivers the §6 apikey.rotated event to a
// project's configured webhook endpoint, the same shape
// paymaster's LowBalanceWebhookNotifier uses for paymaster.low_balance.
type RotationWebhookNotifier struct {
	projects project_out.ProjectRepository
	sender   webhookSender
}

func NewRotationWebhookNotifier(projects project_out.ProjectRepository, sender webhookSender) apikey_out.RotationNotifier {
	return &RotationWebhookNotifier{projects: projects, sender: sender}
}

func (n *RotationWebhookNotifier) NotifyKeyRotated(ctx context.Context, key *entities.APIKey) error {
	project, err := n.projects.FindByID(ctx, key.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to look up project for key-rotated notification: %w", err)
	}
	if project == nil || project.Settings.WebhookURL == "" {
		return nil
	}

	payload := map[string]interface{}{
		"projectId":  key.ProjectID.String(),
		"keyId":      key.ID.String(),
		"shortKeyId": key.ShortKeyID,
	}
	return n.sender.Send(ctx, project.Settings.WebhookURL, "apikey.rotated", payload)
}

var _ apikey_out.RotationNotifier = (*RotationWebhookNotifier)(nil)
