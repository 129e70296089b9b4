package wallet_services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	chain_out "github.com/nexuspay/nexuspay/pkg/domain/chain/ports/out"
	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	ledger_entities "github.com/nexuspay/nexuspay/pkg/domain/ledger/entities"
	ledger_in "github.com/nexuspay/nexuspay/pkg/domain/ledger/ports/in"
	paymaster_entities "github.com/nexuspay/nexuspay/pkg/domain/paymaster/entities"
	paymaster_in "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/in"
	wallet_entities "github.com/nexuspay/nexuspay/pkg/domain/wallet/entities"
	wallet_in "github.com/nexuspay/nexuspay/pkg/domain/wallet/ports/in"
	wallet_out "github.com/nexuspay/nexuspay/pkg/domain/wallet/ports/out"
	wallet_vo "github.com/nexuspay/nexuspay/pkg/domain/wallet/value-objects"
)

// DeployDeadline is the 15-minute window after which a still-pending deploy
// is marked failed by the receipt poller (§4.5).
const DeployDeadline = 15 * time.Minute

// Derivation is the narrow seam wallet_service.go needs from
// pkg/infra/crypto.Derivation, kept as an interface so the domain layer
// never imports infra.
type Derivation interface {
	Salt(projectID, socialID, socialType string) [32]byte
	OwnerPrivateKey(projectID, socialID, socialType string) []byte
	SolanaSeedBase58(projectID, socialID, socialType string) string
}

// ProjectPaymasterLookup is the narrow seam wallet_service.go needs from the
// project package to decide whether a deploy should be sponsored, kept as an
// interface so wallet never imports project directly (avoids a domain cycle;
// wired through the IoC container).
type ProjectPaymasterLookup interface {
	IsPaymasterEnabled(ctx context.Context, projectID uuid.UUID) (bool, error)
}

type WalletService struct {
	wallets    wallet_out.WalletRepository
	chains     *chain_vo.Registry
	adapters   map[chain_vo.ChainID]chain_out.ChainAdapter
	derivation Derivation
	ledger     ledger_in.Recorder
	paymaster  paymaster_in.PaymasterCommand
	projects   ProjectPaymasterLookup
}

func NewWalletService(wallets wallet_out.WalletRepository, chains *chain_vo.Registry, adapters map[chain_vo.ChainID]chain_out.ChainAdapter, derivation Derivation, ledger ledger_in.Recorder, paymaster paymaster_in.PaymasterCommand, projects ProjectPaymasterLookup) *WalletService {
	return &WalletService{wallets: wallets, chains: chains, adapters: adapters, derivation: derivation, ledger: ledger, paymaster: paymaster, projects: projects}
}

var _ wallet_in.WalletCommand = (*WalletService)(nil)
var _ wallet_in.WalletQuery = (*WalletService)(nil)

// GetWallet returns a project's wallet by id, annotated with per-chain
// deployment status even for chains that are still counterfactual (§4.5).
func (s *WalletService) GetWallet(ctx context.Context, projectID, walletID uuid.UUID) (*wallet_entities.Wallet, error) {
	w, err := s.wallets.FindByID(ctx, projectID, walletID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, common.NewErrNotFound(common.ResourceTypeWallet, "id", walletID)
	}
	return w, nil
}

// GetBySocialID looks a wallet up by the (socialId, socialType) pair it was
// derived from — the same lookup key CreateWallet is idempotent on.
func (s *WalletService) GetBySocialID(ctx context.Context, projectID uuid.UUID, socialID, socialType string) (*wallet_entities.Wallet, error) {
	w, err := s.wallets.FindBySocialID(ctx, projectID, socialID, socialType)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, common.NewErrNotFound(common.ResourceTypeWallet, "socialId", socialID)
	}
	return w, nil
}

func (s *WalletService) ListByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]*wallet_entities.Wallet, int, error) {
	return s.wallets.ListByProject(ctx, projectID, page, limit)
}

// CreateWallet derives deterministic addresses for every registry chain that
// has a chain adapter and persists them; the project's own chain list is not
// consulted. Safe to retry: derivation is a pure function
// of (projectId, socialId, socialType) (§4.5).
func (s *WalletService) CreateWallet(ctx context.Context, input wallet_in.CreateWalletInput) (*wallet_entities.Wallet, error) {
	if input.SocialID == "" || input.SocialType == "" {
		return nil, common.NewErrInvalidInput("socialId and socialType are required", "socialId")
	}

	existing, err := s.wallets.FindBySocialID(ctx, input.ProjectID, input.SocialID, input.SocialType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	wallet := wallet_entities.NewWallet(input.ProjectID, input.SocialID, input.SocialType)
	projectIDStr := input.ProjectID.String()

	for _, cfg := range s.chains.All() {
		chainID := cfg.ChainID
		adapter, ok := s.adapters[chainID]
		if !ok {
			continue
		}

		var address string
		var derivErr error
		if chainID.IsEVM() {
			owner := s.derivation.OwnerPrivateKey(projectIDStr, input.SocialID, input.SocialType)
			salt := s.derivation.Salt(projectIDStr, input.SocialID, input.SocialType)
			address, derivErr = adapter.PredictWalletAddress(ctx, hexOwnerAddress(owner), salt)
		} else {
			address, derivErr = adapter.PredictWalletAddress(ctx, s.derivation.SolanaSeedBase58(projectIDStr, input.SocialID, input.SocialType), [32]byte{})
		}
		if derivErr != nil {
			slog.ErrorContext(ctx, "address prediction failed", "chain", chainID, "error", derivErr)
			return nil, common.NewErrUpstream("failed to derive wallet address for chain " + string(chainID))
		}

		wallet.SetAddress(chainID, address)
	}

	if err := s.wallets.Create(ctx, wallet); err != nil {
		return nil, err
	}

	if s.ledger != nil {
		if err := s.ledger.RecordWalletCreated(ctx, input.ProjectID, input.SocialID); err != nil {
			slog.ErrorContext(ctx, "failed to record wallet creation activity", "project_id", input.ProjectID, "error", err)
		}
	}

	return wallet, nil
}

// hexOwnerAddress renders the HMAC-derived owner key bytes as the EVM-style
// address embedded in the CREATE2 salt computation (§4.5); the EVM adapter
// treats this as an opaque owner identity, not a real signing key.
func hexOwnerAddress(owner []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 2+40)
	out[0], out[1] = '0', 'x'
	for i := 0; i < 20 && i < len(owner); i++ {
		out[2+i*2] = hexdigits[owner[i]>>4]
		out[2+i*2+1] = hexdigits[owner[i]&0x0f]
	}
	return string(out)
}

func (s *WalletService) DeployWallet(ctx context.Context, input wallet_in.DeployWalletInput) (*wallet_in.DeployWalletResult, error) {
	wallet, err := s.wallets.FindByID(ctx, input.ProjectID, input.WalletID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, common.NewErrNotFound(common.ResourceTypeWallet, "id", input.WalletID)
	}

	current := wallet.Deployment(input.Chain)
	if current.Status == wallet_vo.StatusDeployed {
		return &wallet_in.DeployWalletResult{Wallet: wallet, AlreadyDone: true}, nil
	}
	if current.Status == wallet_vo.StatusPending {
		return &wallet_in.DeployWalletResult{Wallet: wallet, TxHash: current.TxHash, AlreadyDone: true}, nil
	}
	if !current.CanTransitionToPending() {
		return &wallet_in.DeployWalletResult{Wallet: wallet, AlreadyDone: true}, nil
	}

	adapter, ok := s.adapters[input.Chain]
	if !ok {
		return nil, common.NewErrInvalidInput("unsupported chain: "+string(input.Chain), "chain")
	}

	if _, ok := wallet.Address(input.Chain); !ok {
		return nil, common.NewErrInvalidInput("wallet has no address for chain "+string(input.Chain), "chain")
	}

	projectIDStr := input.ProjectID.String()
	cfg, err := s.chains.Get(input.Chain)
	if err != nil {
		return nil, common.NewErrInvalidInput("unsupported chain: "+string(input.Chain), "chain")
	}
	salt := s.derivation.Salt(projectIDStr, wallet.SocialID, wallet.SocialType)

	var owner string
	if cfg.ChainID.IsEVM() {
		owner = hexOwnerAddress(s.derivation.OwnerPrivateKey(projectIDStr, wallet.SocialID, wallet.SocialType))
	} else {
		owner = s.derivation.SolanaSeedBase58(projectIDStr, wallet.SocialID, wallet.SocialType)
	}

	pendingState := wallet_vo.ChainDeployment{Status: wallet_vo.StatusPending}
	swapped, err := s.wallets.CompareAndSwapDeployment(ctx, wallet.ID, input.Chain, current.Status, pendingState)
	if err != nil {
		return nil, err
	}
	if !swapped {
		refreshed, err := s.wallets.FindByID(ctx, input.ProjectID, input.WalletID)
		if err != nil {
			return nil, err
		}
		d := refreshed.Deployment(input.Chain)
		return &wallet_in.DeployWalletResult{Wallet: refreshed, TxHash: d.TxHash, AlreadyDone: true}, nil
	}

	walletAddr, _ := wallet.Address(input.Chain)
	logID, payment, err := s.preSubmission(ctx, input.ProjectID, input.Chain, walletAddr, wallet.SocialID, wallet.SocialType)
	if err != nil {
		failedState := wallet_vo.ChainDeployment{Status: wallet_vo.StatusFailed, Error: err.Error()}
		if _, swapErr := s.wallets.CompareAndSwapDeployment(ctx, wallet.ID, input.Chain, wallet_vo.StatusPending, failedState); swapErr != nil {
			slog.ErrorContext(ctx, "failed to persist failed deploy state", "error", swapErr)
		}
		return nil, err
	}

	var paymasterData *chain_out.PaymasterData
	if payment != nil {
		paymasterData = &chain_out.PaymasterData{PaymasterAddress: payment.PaymasterAddress}
	}

	txHash, err := adapter.DeployWallet(ctx, owner, salt, paymasterData)
	if err != nil {
		failedState := wallet_vo.ChainDeployment{Status: wallet_vo.StatusFailed, Error: err.Error()}
		if _, swapErr := s.wallets.CompareAndSwapDeployment(ctx, wallet.ID, input.Chain, wallet_vo.StatusPending, failedState); swapErr != nil {
			slog.ErrorContext(ctx, "failed to persist failed deploy state", "error", swapErr)
		}
		if s.ledger != nil && logID != uuid.Nil {
			if failErr := s.ledger.FailTransaction(ctx, input.ProjectID, logID, err.Error()); failErr != nil {
				slog.ErrorContext(ctx, "failed to mark transaction log failed", "error", failErr)
			}
		}
		if payment != nil && s.paymaster != nil {
			if failErr := s.paymaster.FailPayment(ctx, payment.ID); failErr != nil {
				slog.ErrorContext(ctx, "failed to mark paymaster payment failed", "error", failErr)
			}
		}
		return nil, common.NewErrUpstream("wallet deployment submission failed: " + err.Error())
	}

	var paymentID uuid.UUID
	if payment != nil {
		paymentID = payment.ID
	}
	deployedPending := wallet_vo.ChainDeployment{Status: wallet_vo.StatusPending, TxHash: txHash, LogID: logID, PaymentID: paymentID}
	if _, err := s.wallets.CompareAndSwapDeployment(ctx, wallet.ID, input.Chain, wallet_vo.StatusPending, deployedPending); err != nil {
		return nil, err
	}

	wallet.SetDeployment(input.Chain, deployedPending)
	return &wallet_in.DeployWalletResult{Wallet: wallet, TxHash: txHash}, nil
}

// preSubmission records the TransactionLog pending row and, when the project
// has paymaster sponsorship enabled, pre-records the PaymasterPayment before
// the chain submission is attempted (§4.5, §4.6) — so a crash between
// submission and receipt never loses track of either.
func (s *WalletService) preSubmission(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, walletAddr, socialID, socialType string) (uuid.UUID, *paymaster_entities.PaymasterPayment, error) {
	var logID uuid.UUID
	if s.ledger != nil {
		log, err := s.ledger.RecordPending(ctx, ledger_in.RecordPendingInput{
			ProjectID:       projectID,
			TransactionType: ledger_entities.TxTypeWalletDeployment,
			Chain:           chain,
			WalletAddress:   walletAddr,
			UserIdentifier:  socialID,
			SocialType:      socialType,
		})
		if err != nil {
			return uuid.Nil, nil, err
		}
		logID = log.ID
	}

	if s.paymaster == nil || s.projects == nil {
		return logID, nil, nil
	}
	enabled, err := s.projects.IsPaymasterEnabled(ctx, projectID)
	if err != nil || !enabled {
		return logID, nil, nil
	}

	payment, err := s.paymaster.PreRecordPayment(ctx, paymaster_in.SponsorRequest{
		ProjectID:          projectID,
		Chain:              chain,
		OperationType:      paymaster_entities.OpWalletDeploy,
		PredictedAmountWei: "0",
		PaymentID:          uuid.New(),
	})
	if err != nil {
		if common.IsPaymasterInsufficientFundsError(err) {
			return logID, nil, nil
		}
		return logID, nil, err
	}
	return logID, payment, nil
}
