package workers

import (
	"context"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	chain_out "github.com/nexuspay/nexuspay/pkg/domain/chain/ports/out"
	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	ledger_in "github.com/nexuspay/nexuspay/pkg/domain/ledger/ports/in"
	paymaster_in "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/in"
	project_out "github.com/nexuspay/nexuspay/pkg/domain/project/ports/out"
	wallet_entities "github.com/nexuspay/nexuspay/pkg/domain/wallet/entities"
	wallet_out "github.com/nexuspay/nexuspay/pkg/domain/wallet/ports/out"
	wallet_vo "github.com/nexuspay/nexuspay/pkg/domain/wallet/value-objects"
)

// deployDeadline mirrors wallet_services.DeployDeadline: a deploy still
// pending this long after it was last touched is given up on (§4.5).
const deployDeadline = 15 * time.Minute

// webhookSender is the narrow seam onto pkg/infra/webhook.Dispatcher.
type webhookSender interface {
	Send(ctx context.Context, targetURL string, eventType string, payload interface{}) error
}

// ReceiptPoller reconciles every wallet deploy left "pending" after
// submission: it polls the owning chain adapter for the transaction's
// receipt and, once terminal, confirms or fails the TransactionLog and
// PaymasterPayment rows the deploy pre-recorded (§4.5).
type ReceiptPoller struct {
	wallets   wallet_out.WalletRepository
	projects  project_out.ProjectRepository
	adapters  map[chain_vo.ChainID]chain_out.ChainAdapter
	ledger    ledger_in.Recorder
	paymaster paymaster_in.PaymasterCommand
	webhooks  webhookSender
	ticker    *time.Ticker
	interval  time.Duration
}

func NewReceiptPoller(
	wallets wallet_out.WalletRepository,
	projects project_out.ProjectRepository,
	adapters map[chain_vo.ChainID]chain_out.ChainAdapter,
	ledger ledger_in.Recorder,
	paymaster paymaster_in.PaymasterCommand,
	webhooks webhookSender,
	interval time.Duration,
) *ReceiptPoller {
	if interval <= 0 {
		interval = 20 * time.Second
	}
	return &ReceiptPoller{
		wallets:   wallets,
		projects:  projects,
		adapters:  adapters,
		ledger:    ledger,
		paymaster: paymaster,
		webhooks:  webhooks,
		ticker:    time.NewTicker(interval),
		interval:  interval,
	}
}

func (j *ReceiptPoller) Run(ctx context.Context) {
	slog.InfoContext(ctx, "wallet deploy receipt poller started", "interval", j.interval)
	defer j.ticker.Stop()

	j.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "wallet deploy receipt poller stopped")
			return
		case <-j.ticker.C:
			j.poll(ctx)
		}
	}
}

func (j *ReceiptPoller) poll(ctx context.Context) {
	pending, err := j.wallets.ListPendingDeploys(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list pending deploys", "error", err)
		return
	}

	for _, wallet := range pending {
		for _, chain := range chain_vo.SupportedChains() {
			deployment := wallet.Deployment(chain)
			if deployment.Status != wallet_vo.StatusPending || deployment.TxHash == "" {
				continue
			}
			j.reconcileOne(ctx, wallet, chain, deployment)
		}
	}
}

func (j *ReceiptPoller) reconcileOne(ctx context.Context, wallet *wallet_entities.Wallet, chain chain_vo.ChainID, deployment wallet_vo.ChainDeployment) {
	adapter, ok := j.adapters[chain]
	if !ok {
		return
	}

	receipt, err := adapter.GetReceipt(ctx, deployment.TxHash)
	if err != nil {
		slog.ErrorContext(ctx, "receipt lookup failed", "wallet_id", wallet.ID, "chain", chain, "tx_hash", deployment.TxHash, "error", err)
		return
	}

	switch receipt.Status {
	case chain_out.ReceiptConfirmed:
		j.confirm(ctx, wallet, chain, deployment, receipt)
	case chain_out.ReceiptFailed:
		j.fail(ctx, wallet, chain, deployment, "transaction reverted")
	default:
		if time.Since(wallet.UpdatedAt) > deployDeadline {
			j.fail(ctx, wallet, chain, deployment, "deploy deadline exceeded")
		}
	}
}

func (j *ReceiptPoller) confirm(ctx context.Context, wallet *wallet_entities.Wallet, chain chain_vo.ChainID, deployment wallet_vo.ChainDeployment, receipt *chain_out.Receipt) {
	next := wallet_vo.ChainDeployment{Status: wallet_vo.StatusDeployed, TxHash: deployment.TxHash, BlockNumber: receipt.BlockNumber}
	swapped, err := j.wallets.CompareAndSwapDeployment(ctx, wallet.ID, chain, wallet_vo.StatusPending, next)
	if err != nil || !swapped {
		return
	}

	gasPrice := "0"
	if receipt.GasPrice != nil {
		gasPrice = receipt.GasPrice.String()
	}
	gasCost := gasCostWei(receipt.GasUsed, receipt.GasPrice)

	if j.ledger != nil && deployment.LogID != uuid.Nil {
		err := j.ledger.ConfirmTransaction(ctx, ledger_in.ConfirmInput{
			ProjectID:     wallet.ProjectID,
			LogID:         deployment.LogID,
			TxHash:        deployment.TxHash,
			BlockNumber:   receipt.BlockNumber,
			GasUsed:       receipt.GasUsed,
			GasPrice:      gasPrice,
			GasCost:       gasCost,
			PaymasterPaid: deployment.PaymentID != uuid.Nil,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to confirm transaction log", "log_id", deployment.LogID, "error", err)
		}
	}

	if j.paymaster != nil && deployment.PaymentID != uuid.Nil {
		if err := j.paymaster.ConfirmPayment(ctx, deployment.PaymentID, deployment.TxHash, receipt.BlockNumber, gasPrice, receipt.GasUsed, gasCost); err != nil {
			slog.ErrorContext(ctx, "failed to confirm paymaster payment", "payment_id", deployment.PaymentID, "error", err)
		}
	}

	j.notifyWebhook(ctx, wallet.ProjectID, "wallet.deployed", map[string]interface{}{
		"walletId": wallet.ID.String(),
		"chain":    string(chain),
		"txHash":   deployment.TxHash,
	})
}

func (j *ReceiptPoller) fail(ctx context.Context, wallet *wallet_entities.Wallet, chain chain_vo.ChainID, deployment wallet_vo.ChainDeployment, reason string) {
	next := wallet_vo.ChainDeployment{Status: wallet_vo.StatusFailed, TxHash: deployment.TxHash, Error: reason}
	swapped, err := j.wallets.CompareAndSwapDeployment(ctx, wallet.ID, chain, wallet_vo.StatusPending, next)
	if err != nil || !swapped {
		return
	}

	if j.ledger != nil && deployment.LogID != uuid.Nil {
		if err := j.ledger.FailTransaction(ctx, wallet.ProjectID, deployment.LogID, reason); err != nil {
			slog.ErrorContext(ctx, "failed to fail transaction log", "log_id", deployment.LogID, "error", err)
		}
	}
	if j.paymaster != nil && deployment.PaymentID != uuid.Nil {
		if err := j.paymaster.FailPayment(ctx, deployment.PaymentID); err != nil {
			slog.ErrorContext(ctx, "failed to fail paymaster payment", "payment_id", deployment.PaymentID, "error", err)
		}
	}

	j.notifyWebhook(ctx, wallet.ProjectID, "wallet.deploy_failed", map[string]interface{}{
		"walletId": wallet.ID.String(),
		"chain":    string(chain),
		"reason":   reason,
	})
}

func (j *ReceiptPoller) notifyWebhook(ctx context.Context, projectID uuid.UUID, eventType string, payload map[string]interface{}) {
	if j.webhooks == nil || j.projects == nil {
		return
	}
	project, err := j.projects.FindByID(ctx, projectID)
	if err != nil || project == nil || project.Settings.WebhookURL == "" {
		return
	}
	if err := j.webhooks.Send(ctx, project.Settings.WebhookURL, eventType, payload); err != nil {
		slog.WarnContext(ctx, "webhook delivery failed", "project_id", projectID, "event", eventType, "error", err)
	}
}

// gasCostWei renders gasUsed*gasPrice as a decimal wei string.
func gasCostWei(gasUsed uint64, gasPrice *big.Int) string {
	if gasPrice == nil {
		return "0"
	}
	cost := new(big.Int).Mul(new(big.Int).SetUint64(gasUsed), gasPrice)
	return cost.String()
}
