package paymaster

import (
	"context"
	"fmt"

	paymaster_entities "github.com/nexuspay/nexuspay/pkg/domain/paymaster/entities"
	paymaster_out "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/out"
	project_out "github.com/nexuspay/nexuspay/pkg/domain/project/ports/out"
)

// PaymentConfirmedWebhookNotifier delivers the §6 paymaster.payment_confirmed
// event to a project's configured webhook endpoint, the same shape
// LowBalanceWebhookNotifier uses for paymaster.low_balance.
type PaymentConfirmedWebhookNotifier struct {
	projects project_out.ProjectRepository
	sender   webhookSender
}

func NewPaymentConfirmedWebhookNotifier(projects project_out.ProjectRepository, sender webhookSender) paymaster_out.PaymentConfirmedNotifier {
	return &PaymentConfirmedWebhookNotifier{projects: projects, sender: sender}
}

func (n *PaymentConfirmedWebhookNotifier) NotifyPaymentConfirmed(ctx context.Context, payment *paymaster_entities.PaymasterPayment) error {
	project, err := n.projects.FindByID(ctx, payment.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to look up project for payment-confirmed notification: %w", err)
	}
	if project == nil || project.Settings.WebhookURL == "" {
		return nil
	}

	payload := map[string]interface{}{
		"projectId":     payment.ProjectID.String(),
		"paymentId":     payment.ID.String(),
		"chain":         string(payment.Chain),
		"txHash":        payment.TxHash,
		"operationType": string(payment.OperationType),
		"usdValue":      payment.UsdValue,
	}
	return n.sender.Send(ctx, project.Settings.WebhookURL, "paymaster.payment_confirmed", payload)
}

var _ paymaster_out.PaymentConfirmedNotifier = (*PaymentConfirmedWebhookNotifier)(nil)
