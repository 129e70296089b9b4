package paymaster_services

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	chain_out "github.com/nexuspay/nexuspay/pkg/domain/chain/ports/out"
	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	in "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/in"
	out "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/out"
	paymaster_entities "github.com/nexuspay/nexuspay/pkg/domain/paymaster/entities"
	project_out "github.com/nexuspay/nexuspay/pkg/domain/project/ports/out"
	"github.com/google/uuid"
)

// BalanceRefreshInterval bounds the background refresher to the <=5min
// cadence spec.md §4.6 requires.
const BalanceRefreshInterval = 5 * time.Minute

// Derivation is the narrow seam onto pkg/infra/crypto.Derivation the
// paymaster engine needs; kept as an interface so the domain layer never
// imports infra directly.
type Derivation interface {
	PaymasterSeed(projectID, chain string) []byte
	PaymasterSalt(projectID, chain string) [32]byte
}

type PaymasterService struct {
	paymasters      out.PaymasterRepository
	balances        out.BalanceRepository
	payments        out.PaymentRepository
	oracle          out.PriceOracle
	notifier        out.LowBalanceNotifier
	paymentNotifier out.PaymentConfirmedNotifier
	funding         out.FundingGateway
	adapters        map[chain_vo.ChainID]chain_out.ChainAdapter
	derivation      Derivation
	encryptor       out.Encryptor

	lowThresholdUsd float64
	hardFloorUsd    float64
}

func NewPaymasterService(
	paymasters out.PaymasterRepository,
	balances out.BalanceRepository,
	payments out.PaymentRepository,
	oracle out.PriceOracle,
	notifier out.LowBalanceNotifier,
	paymentNotifier out.PaymentConfirmedNotifier,
	funding out.FundingGateway,
	adapters map[chain_vo.ChainID]chain_out.ChainAdapter,
	derivation Derivation,
	encryptor out.Encryptor,
) *PaymasterService {
	return &PaymasterService{
		paymasters:      paymasters,
		balances:        balances,
		payments:        payments,
		oracle:          oracle,
		notifier:        notifier,
		paymentNotifier: paymentNotifier,
		funding:         funding,
		adapters:        adapters,
		derivation:      derivation,
		encryptor:       encryptor,
		lowThresholdUsd: paymaster_entities.DefaultLowBalanceThresholdUsd,
		hardFloorUsd:    paymaster_entities.DefaultHardFloorUsd,
	}
}

var _ in.PaymasterCommand = (*PaymasterService)(nil)

// PaymasterService also satisfies project's out-of-package provisioner/
// freezer seams (§4.3, §4.6), wired through the IoC container.
var _ project_out.PaymasterProvisioner = (*PaymasterService)(nil)
var _ project_out.PaymasterFreezer = (*PaymasterService)(nil)

// ProvisionForProject deploys or predicts one paymaster per chain,
// synchronously, during project creation (§4.3, §4.6). On any chain failure
// it rolls back everything it already created for this project and returns
// the error, so createProject can fail the whole operation atomically.
func (s *PaymasterService) ProvisionForProject(ctx context.Context, projectID uuid.UUID, chains []chain_vo.ChainID) error {
	projectIDStr := projectID.String()
	for _, chain := range chains {
		adapter, ok := s.adapters[chain]
		if !ok {
			s.rollbackBestEffort(ctx, projectID)
			return common.NewErrInvalidInput("unsupported chain: "+string(chain), "chain")
		}

		salt := s.derivation.PaymasterSalt(projectIDStr, string(chain))
		address, err := adapter.PredictPaymasterAddress(ctx, salt)
		if err != nil {
			s.rollbackBestEffort(ctx, projectID)
			return common.NewErrUpstream("failed to predict paymaster address for chain " + string(chain))
		}

		seed := s.derivation.PaymasterSeed(projectIDStr, string(chain))
		encryptedKey, err := s.encryptor.Seal(projectIDStr, hex.EncodeToString(seed))
		if err != nil {
			s.rollbackBestEffort(ctx, projectID)
			return common.NewErrUpstream("failed to seal paymaster key")
		}

		pm := paymaster_entities.NewProjectPaymaster(projectID, chain, address, encryptedKey)
		if err := s.paymasters.Create(ctx, pm); err != nil {
			s.rollbackBestEffort(ctx, projectID)
			return err
		}

		_, deployTxHash, err := adapter.DeployPaymaster(ctx, salt)
		if err != nil {
			s.rollbackBestEffort(ctx, projectID)
			return common.NewErrUpstream("failed to deploy paymaster for chain " + string(chain))
		}
		pm.DeployTxHash = deployTxHash
		if err := s.paymasters.Update(ctx, pm); err != nil {
			s.rollbackBestEffort(ctx, projectID)
			return err
		}
	}
	return nil
}

func (s *PaymasterService) rollbackBestEffort(ctx context.Context, projectID uuid.UUID) {
	if err := s.RollbackProject(ctx, projectID); err != nil {
		slog.ErrorContext(ctx, "paymaster rollback failed", "project_id", projectID, "error", err)
	}
}

// RollbackProject tears down any paymasters provisioned for projectID; since
// ProjectPaymaster has no delete semantics at rest, rollback marks every
// existing record frozen (§4.6 provisioning is all-or-nothing at the
// application level, not a single atomic chain transaction).
func (s *PaymasterService) RollbackProject(ctx context.Context, projectID uuid.UUID) error {
	pms, err := s.paymasters.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	for _, pm := range pms {
		pm.Status = paymaster_entities.PaymasterStatusFrozen
		if err := s.paymasters.Update(ctx, pm); err != nil {
			return err
		}
	}
	return nil
}

// FreezeAllForProject blocks new sponsorships on soft-delete (§4.3).
func (s *PaymasterService) FreezeAllForProject(ctx context.Context, projectID uuid.UUID) error {
	pms, err := s.paymasters.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	for _, pm := range pms {
		pm.Status = paymaster_entities.PaymasterStatusFrozen
		if err := s.paymasters.Update(ctx, pm); err != nil {
			return err
		}
	}
	return nil
}

func (s *PaymasterService) GetBalance(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, refresh bool) (*paymaster_entities.PaymasterBalance, error) {
	if !refresh {
		cached, err := s.balances.FindByProjectAndChain(ctx, projectID, chain)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}

	pm, err := s.paymasters.FindByProjectAndChain(ctx, projectID, chain)
	if err != nil {
		return nil, err
	}
	if pm == nil {
		return nil, common.NewErrNotFound(common.ResourceTypeProjectPaymaster, "chain", chain)
	}
	return s.refreshOne(ctx, pm)
}

// RefreshAllBalances is invoked by the background worker on the <=5min
// cadence (§4.6); it scans every provisioned paymaster.
func (s *PaymasterService) RefreshAllBalances(ctx context.Context) error {
	pms, err := s.paymasters.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, pm := range pms {
		if _, err := s.refreshOne(ctx, pm); err != nil {
			slog.ErrorContext(ctx, "balance refresh failed", "paymaster_id", pm.ID, "chain", pm.Chain, "error", err)
		}
	}
	return nil
}

func (s *PaymasterService) refreshOne(ctx context.Context, pm *paymaster_entities.ProjectPaymaster) (*paymaster_entities.PaymasterBalance, error) {
	adapter, ok := s.adapters[pm.Chain]
	if !ok {
		return nil, common.NewErrInvalidInput("unsupported chain: "+string(pm.Chain), "chain")
	}

	wei, err := adapter.GetBalance(ctx, pm.Address)
	if err != nil {
		return nil, common.NewErrUpstream("failed to query on-chain balance: " + err.Error())
	}
	price, err := s.oracle.PriceUsd(ctx, pm.Chain)
	if err != nil {
		return nil, common.NewErrUpstream("failed to query token price: " + err.Error())
	}

	native := weiToNativeString(wei, pm.Chain)
	usd := nativeFloat(wei, pm.Chain) * price

	bal := &paymaster_entities.PaymasterBalance{
		ProjectID:     pm.ProjectID,
		Chain:         pm.Chain,
		Address:       pm.Address,
		BalanceNative: native,
		BalanceWei:    wei.String(),
		BalanceUsd:    usd,
		TokenPriceUsd: price,
		LastUpdated:   time.Now(),
	}
	if err := s.balances.Upsert(ctx, bal); err != nil {
		return nil, err
	}

	if bal.IsBelowLowThreshold(s.lowThresholdUsd) {
		if err := s.notifier.NotifyLowBalance(ctx, pm.ProjectID, pm.Chain, bal.BalanceUsd); err != nil {
			slog.ErrorContext(ctx, "low-balance webhook failed", "project_id", pm.ProjectID, "chain", pm.Chain, "error", err)
		}
	}
	return bal, nil
}

func (s *PaymasterService) Fund(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, method in.FundingMethod, amountUsd float64) (*in.FundResult, error) {
	pm, err := s.paymasters.FindByProjectAndChain(ctx, projectID, chain)
	if err != nil {
		return nil, err
	}
	if pm == nil {
		return nil, common.NewErrNotFound(common.ResourceTypeProjectPaymaster, "chain", chain)
	}

	if method == in.FundingMethodSelfCustodial {
		return &in.FundResult{
			DepositAddress: pm.Address,
			QRPayload:      fmt.Sprintf("nexuspay:%s?chain=%s", pm.Address, chain),
		}, nil
	}

	_, checkoutURL, err := s.funding.CreateFundingIntent(ctx, projectID, chain, amountUsd)
	if err != nil {
		return nil, common.NewErrUpstream("failed to create funding intent: " + err.Error())
	}
	return &in.FundResult{CheckoutURL: checkoutURL}, nil
}

// PreRecordPayment persists a pending PaymasterPayment before submission so
// the ledger survives a crash mid-flight (§4.6).
func (s *PaymasterService) PreRecordPayment(ctx context.Context, req in.SponsorRequest) (*paymaster_entities.PaymasterPayment, error) {
	pm, err := s.paymasters.FindByProjectAndChain(ctx, req.ProjectID, req.Chain)
	if err != nil {
		return nil, err
	}
	if pm == nil {
		return nil, common.NewErrNotFound(common.ResourceTypeProjectPaymaster, "chain", req.Chain)
	}
	if pm.Status == paymaster_entities.PaymasterStatusFrozen {
		return nil, common.NewErrForbidden("paymaster is frozen for this project")
	}

	bal, err := s.balances.FindByProjectAndChain(ctx, req.ProjectID, req.Chain)
	if err == nil && bal != nil && bal.IsBelowHardFloor(s.hardFloorUsd) {
		return nil, common.NewErrPaymasterInsufficientFunds()
	}

	payment := paymaster_entities.NewPendingPayment(req.PaymentID, req.ProjectID, pm.Address, req.Chain, req.OperationType, req.PredictedAmountWei)
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymasterService) ConfirmPayment(ctx context.Context, paymentID uuid.UUID, txHash string, blockNumber uint64, gasPrice string, gasUsed uint64, amountWei string) error {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return common.NewErrNotFound(common.ResourceTypePaymasterPayment, "id", paymentID)
	}
	if payment.IsTerminal() {
		return nil
	}

	price, err := s.oracle.PriceUsd(ctx, payment.Chain)
	if err != nil {
		price = 0
	}
	usdValue := nativeFloatFromDecimalWei(amountWei, payment.Chain) * price
	payment.Confirm(txHash, blockNumber, gasPrice, gasUsed, amountWei, usdValue)
	if err := s.payments.Patch(ctx, payment); err != nil {
		return err
	}

	if s.paymentNotifier != nil {
		if err := s.paymentNotifier.NotifyPaymentConfirmed(ctx, payment); err != nil {
			slog.ErrorContext(ctx, "payment-confirmed webhook failed", "payment_id", payment.ID, "error", err)
		}
	}
	return nil
}

func (s *PaymasterService) FailPayment(ctx context.Context, paymentID uuid.UUID) error {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return common.NewErrNotFound(common.ResourceTypePaymasterPayment, "id", paymentID)
	}
	if payment.IsTerminal() {
		return nil
	}
	payment.Fail()
	return s.payments.Patch(ctx, payment)
}

func (s *PaymasterService) TotalSpentUsd(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID) (float64, error) {
	return s.payments.TotalConfirmedUsd(ctx, projectID, chain)
}

// ListAddresses backs §6's `GET .../paymaster/addresses`: every chain's
// provisioned paymaster for the project, regardless of balance-refresh
// state.
func (s *PaymasterService) ListAddresses(ctx context.Context, projectID uuid.UUID) ([]*paymaster_entities.ProjectPaymaster, error) {
	return s.paymasters.ListByProject(ctx, projectID)
}

// ListPayments backs §6's `GET .../paymaster/transactions`: the append-only
// sponsored-payment ledger for one chain, newest first.
func (s *PaymasterService) ListPayments(ctx context.Context, projectID uuid.UUID, chain chain_vo.ChainID, page, limit int) ([]*paymaster_entities.PaymasterPayment, int, error) {
	return s.payments.ListByProjectAndChain(ctx, projectID, chain, page, limit)
}

// nativeDecimals is 18 for EVM chains (wei) and 9 for Solana (lamports).
func nativeDecimals(chain chain_vo.ChainID) int {
	if chain.IsSolana() {
		return 9
	}
	return 18
}

func decimalScale(chain chain_vo.ChainID) *big.Float {
	scale := new(big.Float).SetFloat64(1)
	for i := 0; i < nativeDecimals(chain); i++ {
		scale.Mul(scale, big.NewFloat(10))
	}
	return scale
}

func weiToNativeString(wei *big.Int, chain chain_vo.ChainID) string {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, decimalScale(chain))
	return f.Text('f', 8)
}

func nativeFloat(wei *big.Int, chain chain_vo.ChainID) float64 {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, decimalScale(chain))
	v, _ := f.Float64()
	return v
}

// nativeFloatFromDecimalWei converts a base-unit decimal string (wei or
// lamports) to its native-unit float value using the chain's decimals.
func nativeFloatFromDecimalWei(amount string, chain chain_vo.ChainID) float64 {
	v, ok := new(big.Float).SetString(amount)
	if !ok {
		return 0
	}
	v.Quo(v, decimalScale(chain))
	out, _ := v.Float64()
	return out
}
