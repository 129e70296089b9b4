package ioc

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	container "github.com/golobby/container/v3"
	"go.mongodb.org/mongo-driver/mongo"

	// infra
	db "github.com/nexuspay/nexuspay/pkg/infra/db/mongodb"
	nexuspay_crypto "github.com/nexuspay/nexuspay/pkg/infra/crypto"
	apikey_infra "github.com/nexuspay/nexuspay/pkg/infra/adapters/apikey"
	email_infra "github.com/nexuspay/nexuspay/pkg/infra/adapters/email"
	paymaster_infra "github.com/nexuspay/nexuspay/pkg/infra/adapters/paymaster"
	webhook_infra "github.com/nexuspay/nexuspay/pkg/infra/webhook"
	evm_infra "github.com/nexuspay/nexuspay/pkg/infra/chain/evm"
	solana_infra "github.com/nexuspay/nexuspay/pkg/infra/chain/solana"
	workers_infra "github.com/nexuspay/nexuspay/pkg/infra/workers"

	// domain: config/ports
	nexuspay_common "github.com/nexuspay/nexuspay/pkg/domain/common"
	chain_out "github.com/nexuspay/nexuspay/pkg/domain/chain/ports/out"
	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"

	identity_in "github.com/nexuspay/nexuspay/pkg/domain/identity/ports/in"
	identity_out "github.com/nexuspay/nexuspay/pkg/domain/identity/ports/out"
	identity_services "github.com/nexuspay/nexuspay/pkg/domain/identity/services"

	project_in "github.com/nexuspay/nexuspay/pkg/domain/project/ports/in"
	project_out "github.com/nexuspay/nexuspay/pkg/domain/project/ports/out"
	project_services "github.com/nexuspay/nexuspay/pkg/domain/project/services"

	apikey_in "github.com/nexuspay/nexuspay/pkg/domain/apikey/ports/in"
	apikey_out "github.com/nexuspay/nexuspay/pkg/domain/apikey/ports/out"
	apikey_services "github.com/nexuspay/nexuspay/pkg/domain/apikey/services"

	wallet_in "github.com/nexuspay/nexuspay/pkg/domain/wallet/ports/in"
	wallet_out "github.com/nexuspay/nexuspay/pkg/domain/wallet/ports/out"
	wallet_services "github.com/nexuspay/nexuspay/pkg/domain/wallet/services"

	ledger_in "github.com/nexuspay/nexuspay/pkg/domain/ledger/ports/in"
	ledger_out "github.com/nexuspay/nexuspay/pkg/domain/ledger/ports/out"
	ledger_services "github.com/nexuspay/nexuspay/pkg/domain/ledger/services"

	paymaster_in "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/in"
	paymaster_out "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/out"
	paymaster_services "github.com/nexuspay/nexuspay/pkg/domain/paymaster/services"

	analytics_in "github.com/nexuspay/nexuspay/pkg/domain/analytics/ports/in"
	analytics_services "github.com/nexuspay/nexuspay/pkg/domain/analytics/services"
)

// WithNexusPayConfig registers the control plane's Config (JWT, at-rest
// encryption, derivation, chain RPC wiring) as a singleton.
func (b *ContainerBuilder) WithNexusPayConfig() *ContainerBuilder {
	err := b.Container.Singleton(func() (nexuspay_common.Config, error) {
		return NexusPayConfig()
	})

	if err != nil {
		slog.Error("Failed to load NexusPayConfig.")
		panic(err)
	}

	return b
}

// InjectNexusPay wires every NexusPay bounded context (identity, project,
// apikey, wallet, ledger, paymaster, analytics, chain) onto the shared
// *mongo.Client InjectMongoDB already registers.
func InjectNexusPay(c container.Container) error {
	err := c.Singleton(func() (*mongo.Database, error) {
		var client *mongo.Client
		if err := c.Resolve(&client); err != nil {
			slog.Error("Failed to resolve mongo.Client for nexuspay *mongo.Database.", "err", err)
			return nil, err
		}
		var cfg nexuspay_common.Config
		if err := c.Resolve(&cfg); err != nil {
			slog.Error("Failed to resolve NexusPayConfig for *mongo.Database.", "err", err)
			return nil, err
		}
		return client.Database(cfg.MongoDB.DBName), nil
	})
	if err != nil {
		slog.Error("Failed to load nexuspay *mongo.Database.")
		return err
	}

	if err := injectChain(c); err != nil {
		return err
	}
	if err := injectIdentity(c); err != nil {
		return err
	}
	if err := injectAPIKey(c); err != nil {
		return err
	}
	if err := injectLedger(c); err != nil {
		return err
	}
	if err := injectPaymaster(c); err != nil {
		return err
	}
	if err := injectProject(c); err != nil {
		return err
	}
	if err := injectWallet(c); err != nil {
		return err
	}
	if err := injectAnalytics(c); err != nil {
		return err
	}
	if err := injectWorkers(c); err != nil {
		return err
	}

	return nil
}

// --- background workers (§5) --------------------------------------------

// injectWorkers wires the four §5 background processes: the API-key usage
// writer, the paymaster balance refresher, the wallet-deploy receipt
// poller, and the daily analytics roll-up. main.go resolves and starts each
// as its own goroutine.
func injectWorkers(c container.Container) error {
	err := c.Singleton(func() (*workers_infra.UsageWriter, error) {
		var ledger ledger_in.Recorder
		if err := c.Resolve(&ledger); err != nil {
			return nil, err
		}
		return workers_infra.NewUsageWriter(ledger), nil
	})
	if err != nil {
		slog.Error("Failed to load *workers.UsageWriter.")
		return err
	}

	err = c.Singleton(func() (*workers_infra.BalanceRefresher, error) {
		var paymaster paymaster_in.PaymasterCommand
		if err := c.Resolve(&paymaster); err != nil {
			return nil, err
		}
		return workers_infra.NewBalanceRefresher(paymaster, paymaster_services.BalanceRefreshInterval), nil
	})
	if err != nil {
		slog.Error("Failed to load *workers.BalanceRefresher.")
		return err
	}

	err = c.Singleton(func() (*workers_infra.ReceiptPoller, error) {
		var (
			wallets    wallet_out.WalletRepository
			projects   project_out.ProjectRepository
			adapters   map[chain_vo.ChainID]chain_out.ChainAdapter
			ledger     ledger_in.Recorder
			paymaster  paymaster_in.PaymasterCommand
			dispatcher *webhook_infra.Dispatcher
		)
		if err := c.Resolve(&wallets); err != nil {
			return nil, err
		}
		if err := c.Resolve(&projects); err != nil {
			return nil, err
		}
		if err := c.Resolve(&adapters); err != nil {
			return nil, err
		}
		if err := c.Resolve(&ledger); err != nil {
			return nil, err
		}
		if err := c.Resolve(&paymaster); err != nil {
			return nil, err
		}
		if err := c.Resolve(&dispatcher); err != nil {
			return nil, err
		}
		return workers_infra.NewReceiptPoller(wallets, projects, adapters, ledger, paymaster, dispatcher, 0), nil
	})
	if err != nil {
		slog.Error("Failed to load *workers.ReceiptPoller.")
		return err
	}

	return c.Singleton(func() (*workers_infra.AnalyticsRollup, error) {
		var projects project_out.ProjectRepository
		if err := c.Resolve(&projects); err != nil {
			return nil, err
		}
		var analytics analytics_in.AnalyticsQuery
		if err := c.Resolve(&analytics); err != nil {
			return nil, err
		}
		return workers_infra.NewAnalyticsRollup(projects, analytics, 0), nil
	})
}

// --- chain -------------------------------------------------------------

func injectChain(c container.Container) error {
	err := c.Singleton(func() (*chain_vo.Registry, error) {
		var cfg nexuspay_common.Config
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}

		entries := map[chain_vo.ChainID]chain_vo.ChainConfig{
			chain_vo.ChainEthereum: {
				ChainID: chain_vo.ChainEthereum, Type: chain_vo.ChainTypeEVM,
				EVMChainID: cfg.Chains.EVMChainIDs["ethereum"], RPCURL: cfg.Chains.RPCURLs["ethereum"],
				WalletFactoryAddr: cfg.Chains.FactoryAddresses["ethereum"], PaymasterFactoryAddr: cfg.Chains.PaymasterFactories["ethereum"],
				EntryPointAddr: cfg.Chains.EntryPointAddrs["ethereum"], Confirmations: 2, DeployTimeout: 900,
			},
			chain_vo.ChainArbitrum: {
				ChainID: chain_vo.ChainArbitrum, Type: chain_vo.ChainTypeEVM,
				EVMChainID: cfg.Chains.EVMChainIDs["arbitrum"], RPCURL: cfg.Chains.RPCURLs["arbitrum"],
				WalletFactoryAddr: cfg.Chains.FactoryAddresses["arbitrum"], PaymasterFactoryAddr: cfg.Chains.PaymasterFactories["arbitrum"],
				EntryPointAddr: cfg.Chains.EntryPointAddrs["arbitrum"], Confirmations: 2, DeployTimeout: 900,
			},
			chain_vo.ChainSolana: {
				ChainID: chain_vo.ChainSolana, Type: chain_vo.ChainTypeSolana,
				RPCURL: cfg.Chains.RPCURLs["solana"], Confirmations: 1, DeployTimeout: 900,
			},
		}
		return chain_vo.NewRegistry(entries), nil
	})
	if err != nil {
		slog.Error("Failed to load *chain_vo.Registry.")
		return err
	}

	err = c.Singleton(func() (map[chain_vo.ChainID]chain_out.ChainAdapter, error) {
		var registry *chain_vo.Registry
		if err := c.Resolve(&registry); err != nil {
			return nil, err
		}
		var cfg nexuspay_common.Config
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}

		adapters := map[chain_vo.ChainID]chain_out.ChainAdapter{}
		ctx := context.Background()

		for _, chainID := range []chain_vo.ChainID{chain_vo.ChainEthereum, chain_vo.ChainArbitrum} {
			cfgEntry, _ := registry.Get(chainID)
			if cfgEntry.RPCURL == "" {
				continue
			}
			client, err := evm_infra.DialEthClient(ctx, cfgEntry.RPCURL, cfg.Chains.SignerKeys[string(chainID)])
			if err != nil {
				slog.Error("Failed to dial EVM RPC endpoint, skipping chain adapter.", "chain", chainID, "err", err)
				continue
			}
			adapters[chainID] = evm_infra.NewAdapter(cfgEntry, client)
		}

		if solanaCfg, err := registry.Get(chain_vo.ChainSolana); err == nil && solanaCfg.RPCURL != "" {
			client := solana_infra.NewJSONRPCClient(solanaCfg.RPCURL)
			adapters[chain_vo.ChainSolana] = solana_infra.NewAdapter(solanaCfg, client)
		}

		return adapters, nil
	})
	if err != nil {
		slog.Error("Failed to load chain adapters map.")
		return err
	}

	return c.Singleton(func() (*nexuspay_crypto.Derivation, error) {
		var cfg nexuspay_common.Config
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return nexuspay_crypto.NewDerivation(cfg.MasterSecret), nil
	})
}

// --- identity ------------------------------------------------------------

func injectIdentity(c container.Container) error {
	err := c.Singleton(func() (identity_out.UserRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			return nil, err
		}
		return db.NewIdentityUserRepository(database), nil
	})
	if err != nil {
		slog.Error("Failed to load identity_out.UserRepository.")
		return err
	}

	err = c.Singleton(func() (identity_out.PasswordHasher, error) {
		return nexuspay_crypto.NewArgon2idPasswordHasherAdapter(), nil
	})
	if err != nil {
		slog.Error("Failed to load identity_out.PasswordHasher.")
		return err
	}

	err = c.Singleton(func() (identity_out.SessionIssuer, error) {
		var cfg nexuspay_common.Config
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return nexuspay_crypto.NewJWTIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, sessionTTL), nil
	})
	if err != nil {
		slog.Error("Failed to load identity_out.SessionIssuer.")
		return err
	}

	err = c.Singleton(func() (identity_out.EmailValidator, error) {
		return email_infra.NewMXEmailValidator(), nil
	})
	if err != nil {
		slog.Error("Failed to load identity_out.EmailValidator.")
		return err
	}

	err = c.Singleton(func() (identity_out.EmailSender, error) {
		host := os.Getenv("NEXUSPAY_SMTP_HOST")
		if host == "" {
			return email_infra.NewNoopIdentityEmailSender(true), nil
		}
		port, _ := strconv.Atoi(envOrDefault("NEXUSPAY_SMTP_PORT", "587"))
		return email_infra.NewIdentitySMTPEmailSender(email_infra.SMTPConfig{
			Host:      host,
			Port:      port,
			Username:  os.Getenv("NEXUSPAY_SMTP_USERNAME"),
			Password:  os.Getenv("NEXUSPAY_SMTP_PASSWORD"),
			FromEmail: envOrDefault("NEXUSPAY_SMTP_FROM_EMAIL", "noreply@nexuspay.io"),
			FromName:  envOrDefault("NEXUSPAY_SMTP_FROM_NAME", "NexusPay"),
			AppName:   "NexusPay",
			AppURL:    envOrDefault("NEXUSPAY_APP_URL", "https://app.nexuspay.io"),
		}), nil
	})
	if err != nil {
		slog.Error("Failed to load identity_out.EmailSender.")
		return err
	}

	return c.Singleton(func() (identity_in.IdentityCommand, error) {
		var (
			users          identity_out.UserRepository
			hasher         identity_out.PasswordHasher
			sessions       identity_out.SessionIssuer
			emailValidator identity_out.EmailValidator
			emailSender    identity_out.EmailSender
		)
		if err := c.Resolve(&users); err != nil {
			return nil, err
		}
		if err := c.Resolve(&hasher); err != nil {
			return nil, err
		}
		if err := c.Resolve(&sessions); err != nil {
			return nil, err
		}
		if err := c.Resolve(&emailValidator); err != nil {
			return nil, err
		}
		if err := c.Resolve(&emailSender); err != nil {
			return nil, err
		}
		return identity_services.NewIdentityService(users, hasher, sessions, emailValidator, emailSender), nil
	})
}

// --- apikey ----------------------------------------------------------------

func injectAPIKey(c container.Container) error {
	err := c.Singleton(func() (apikey_out.APIKeyRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			return nil, err
		}
		return db.NewAPIKeyRepository(database), nil
	})
	if err != nil {
		slog.Error("Failed to load apikey_out.APIKeyRepository.")
		return err
	}

	err = c.Singleton(func() (apikey_out.Encryptor, error) {
		var cfg nexuspay_common.Config
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return nexuspay_crypto.NewSecretBox(cfg.EncryptionKey)
	})
	if err != nil {
		slog.Error("Failed to load apikey_out.Encryptor.")
		return err
	}

	err = c.Singleton(func() (apikey_out.RotationNotifier, error) {
		var projects project_out.ProjectRepository
		if err := c.Resolve(&projects); err != nil {
			return nil, err
		}
		var dispatcher *webhook_infra.Dispatcher
		if err := c.Resolve(&dispatcher); err != nil {
			return nil, err
		}
		return apikey_infra.NewRotationWebhookNotifier(projects, dispatcher), nil
	})
	if err != nil {
		slog.Error("Failed to load apikey_out.RotationNotifier.")
		return err
	}

	err = c.Singleton(func() (*apikey_services.APIKeyService, error) {
		var (
			keys      apikey_out.APIKeyRepository
			encryptor apikey_out.Encryptor
			usage     ledger_out.APIKeyUsageRepository
			rotations apikey_out.RotationNotifier
		)
		if err := c.Resolve(&keys); err != nil {
			return nil, err
		}
		if err := c.Resolve(&encryptor); err != nil {
			return nil, err
		}
		if err := c.Resolve(&usage); err != nil {
			return nil, err
		}
		if err := c.Resolve(&rotations); err != nil {
			return nil, err
		}
		return apikey_services.NewAPIKeyService(keys, encryptor, usage, rotations), nil
	})
	if err != nil {
		slog.Error("Failed to load *apikey_services.APIKeyService.")
		return err
	}

	return c.Singleton(func() (apikey_in.APIKeyCommand, error) {
		var svc *apikey_services.APIKeyService
		if err := c.Resolve(&svc); err != nil {
			return nil, err
		}
		return svc, nil
	})
}

// --- ledger ------------------------------------------------------------

func injectLedger(c container.Container) error {
	err := c.Singleton(func() (ledger_out.TransactionLogRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			return nil, err
		}
		return db.NewTransactionLogRepository(database), nil
	})
	if err != nil {
		slog.Error("Failed to load ledger_out.TransactionLogRepository.")
		return err
	}

	err = c.Singleton(func() (ledger_out.UserActivityRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			return nil, err
		}
		return db.NewUserActivityRepository(database), nil
	})
	if err != nil {
		slog.Error("Failed to load ledger_out.UserActivityRepository.")
		return err
	}

	err = c.Singleton(func() (ledger_out.APIKeyUsageRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			return nil, err
		}
		return db.NewAPIKeyUsageRepository(database), nil
	})
	if err != nil {
		slog.Error("Failed to load ledger_out.APIKeyUsageRepository.")
		return err
	}

	return c.Singleton(func() (ledger_in.Recorder, error) {
		var (
			logs     ledger_out.TransactionLogRepository
			activity ledger_out.UserActivityRepository
			usage    ledger_out.APIKeyUsageRepository
		)
		if err := c.Resolve(&logs); err != nil {
			return nil, err
		}
		if err := c.Resolve(&activity); err != nil {
			return nil, err
		}
		if err := c.Resolve(&usage); err != nil {
			return nil, err
		}
		return ledger_services.NewLedgerService(logs, activity, usage), nil
	})
}

// --- paymaster ---------------------------------------------------------

func injectPaymaster(c container.Container) error {
	err := c.Singleton(func() (paymaster_out.PaymasterRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			return nil, err
		}
		return db.NewPaymasterRepository(database), nil
	})
	if err != nil {
		slog.Error("Failed to load paymaster_out.PaymasterRepository.")
		return err
	}

	err = c.Singleton(func() (paymaster_out.BalanceRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			return nil, err
		}
		return db.NewBalanceRepository(database), nil
	})
	if err != nil {
		slog.Error("Failed to load paymaster_out.BalanceRepository.")
		return err
	}

	err = c.Singleton(func() (paymaster_out.PaymentRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			return nil, err
		}
		return db.NewPaymentRepository(database), nil
	})
	if err != nil {
		slog.Error("Failed to load paymaster_out.PaymentRepository.")
		return err
	}

	err = c.Singleton(func() (paymaster_out.PriceOracle, error) {
		var cfg nexuspay_common.Config
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return paymaster_infra.NewCoinGeckoPriceOracle(cfg.PriceOracleKey), nil
	})
	if err != nil {
		slog.Error("Failed to load paymaster_out.PriceOracle.")
		return err
	}

	err = c.Singleton(func() (*webhook_infra.Dispatcher, error) {
		var cfg nexuspay_common.Config
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return webhook_infra.NewDispatcher(cfg.WebhookSecret), nil
	})
	if err != nil {
		slog.Error("Failed to load webhook.Dispatcher.")
		return err
	}

	err = c.Singleton(func() (paymaster_out.LowBalanceNotifier, error) {
		var projects project_out.ProjectRepository
		if err := c.Resolve(&projects); err != nil {
			return nil, err
		}
		var dispatcher *webhook_infra.Dispatcher
		if err := c.Resolve(&dispatcher); err != nil {
			return nil, err
		}
		return paymaster_infra.NewLowBalanceWebhookNotifier(projects, dispatcher), nil
	})
	if err != nil {
		slog.Error("Failed to load paymaster_out.LowBalanceNotifier.")
		return err
	}

	err = c.Singleton(func() (paymaster_out.PaymentConfirmedNotifier, error) {
		var projects project_out.ProjectRepository
		if err := c.Resolve(&projects); err != nil {
			return nil, err
		}
		var dispatcher *webhook_infra.Dispatcher
		if err := c.Resolve(&dispatcher); err != nil {
			return nil, err
		}
		return paymaster_infra.NewPaymentConfirmedWebhookNotifier(projects, dispatcher), nil
	})
	if err != nil {
		slog.Error("Failed to load paymaster_out.PaymentConfirmedNotifier.")
		return err
	}

	err = c.Singleton(func() (paymaster_out.FundingGateway, error) {
		appURL := envOrDefault("NEXUSPAY_APP_URL", "https://app.nexuspay.io")
		return paymaster_infra.NewStripeFundingGateway(os.Getenv("NEXUSPAY_STRIPE_API_KEY"), appURL+"/billing/success", appURL+"/billing/cancel"), nil
	})
	if err != nil {
		slog.Error("Failed to load paymaster_out.FundingGateway.")
		return err
	}

	err = c.Singleton(func() (paymaster_out.Encryptor, error) {
		var cfg nexuspay_common.Config
		if err := c.Resolve(&cfg); err != nil {
			return nil, err
		}
		return nexuspay_crypto.NewSecretBox(cfg.EncryptionKey)
	})
	if err != nil {
		slog.Error("Failed to load paymaster_out.Encryptor.")
		return err
	}

	err = c.Singleton(func() (*paymaster_services.PaymasterService, error) {
		var (
			paymasters      paymaster_out.PaymasterRepository
			balances        paymaster_out.BalanceRepository
			payments        paymaster_out.PaymentRepository
			oracle          paymaster_out.PriceOracle
			notifier        paymaster_out.LowBalanceNotifier
			paymentNotifier paymaster_out.PaymentConfirmedNotifier
			funding         paymaster_out.FundingGateway
			adapters        map[chain_vo.ChainID]chain_out.ChainAdapter
			derivation      *nexuspay_crypto.Derivation
			encryptor       paymaster_out.Encryptor
		)
		if err := c.Resolve(&paymasters); err != nil {
			return nil, err
		}
		if err := c.Resolve(&balances); err != nil {
			return nil, err
		}
		if err := c.Resolve(&payments); err != nil {
			return nil, err
		}
		if err := c.Resolve(&oracle); err != nil {
			return nil, err
		}
		if err := c.Resolve(&notifier); err != nil {
			return nil, err
		}
		if err := c.Resolve(&paymentNotifier); err != nil {
			return nil, err
		}
		if err := c.Resolve(&funding); err != nil {
			return nil, err
		}
		if err := c.Resolve(&adapters); err != nil {
			return nil, err
		}
		if err := c.Resolve(&derivation); err != nil {
			return nil, err
		}
		if err := c.Resolve(&encryptor); err != nil {
			return nil, err
		}
		return paymaster_services.NewPaymasterService(paymasters, balances, payments, oracle, notifier, paymentNotifier, funding, adapters, derivation, encryptor), nil
	})
	if err != nil {
		slog.Error("Failed to load *paymaster_services.PaymasterService.")
		return err
	}

	return c.Singleton(func() (paymaster_in.PaymasterCommand, error) {
		var svc *paymaster_services.PaymasterService
		if err := c.Resolve(&svc); err != nil {
			return nil, err
		}
		return svc, nil
	})
}

// --- project -------------------------------------------------------------

func injectProject(c container.Container) error {
	err := c.Singleton(func() (project_out.ProjectRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			return nil, err
		}
		return db.NewProjectRepository(database), nil
	})
	if err != nil {
		slog.Error("Failed to load project_out.ProjectRepository.")
		return err
	}

	err = c.Singleton(func() (project_out.ProjectMemberRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			return nil, err
		}
		return db.NewProjectMemberRepository(database), nil
	})
	if err != nil {
		slog.Error("Failed to load project_out.ProjectMemberRepository.")
		return err
	}

	err = c.Singleton(func() (project_out.PaymasterProvisioner, error) {
		var svc *paymaster_services.PaymasterService
		if err := c.Resolve(&svc); err != nil {
			return nil, err
		}
		return svc, nil
	})
	if err != nil {
		slog.Error("Failed to load project_out.PaymasterProvisioner.")
		return err
	}

	err = c.Singleton(func() (project_out.PaymasterFreezer, error) {
		var svc *paymaster_services.PaymasterService
		if err := c.Resolve(&svc); err != nil {
			return nil, err
		}
		return svc, nil
	})
	if err != nil {
		slog.Error("Failed to load project_out.PaymasterFreezer.")
		return err
	}

	err = c.Singleton(func() (project_out.APIKeyRevoker, error) {
		var svc *apikey_services.APIKeyService
		if err := c.Resolve(&svc); err != nil {
			return nil, err
		}
		return svc, nil
	})
	if err != nil {
		slog.Error("Failed to load project_out.APIKeyRevoker.")
		return err
	}

	return c.Singleton(func() (project_in.ProjectCommand, error) {
		var (
			projects    project_out.ProjectRepository
			members     project_out.ProjectMemberRepository
			users       identity_out.UserRepository
			paymasters  project_out.PaymasterProvisioner
			keyRevoker  project_out.APIKeyRevoker
			pmFreezer   project_out.PaymasterFreezer
			emailSender identity_out.EmailSender
		)
		if err := c.Resolve(&projects); err != nil {
			return nil, err
		}
		if err := c.Resolve(&members); err != nil {
			return nil, err
		}
		if err := c.Resolve(&users); err != nil {
			return nil, err
		}
		if err := c.Resolve(&paymasters); err != nil {
			return nil, err
		}
		if err := c.Resolve(&keyRevoker); err != nil {
			return nil, err
		}
		if err := c.Resolve(&pmFreezer); err != nil {
			return nil, err
		}
		if err := c.Resolve(&emailSender); err != nil {
			return nil, err
		}
		return project_services.NewProjectService(projects, members, users, paymasters, keyRevoker, pmFreezer, emailSender), nil
	})
}

// --- wallet --------------------------------------------------------------

func injectWallet(c container.Container) error {
	err := c.Singleton(func() (wallet_out.WalletRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			return nil, err
		}
		return db.NewWalletRepository(database), nil
	})
	if err != nil {
		slog.Error("Failed to load wallet_out.WalletRepository.")
		return err
	}

	err = c.Singleton(func() (wallet_services.ProjectPaymasterLookup, error) {
		var svc project_in.ProjectCommand
		if err := c.Resolve(&svc); err != nil {
			return nil, err
		}
		lookup, ok := svc.(wallet_services.ProjectPaymasterLookup)
		if !ok {
			slog.Error("project_in.ProjectCommand does not satisfy wallet_services.ProjectPaymasterLookup.")
		}
		return lookup, nil
	})
	if err != nil {
		slog.Error("Failed to load wallet_services.ProjectPaymasterLookup.")
		return err
	}

	err = c.Singleton(func() (*wallet_services.WalletService, error) {
		var (
			wallets    wallet_out.WalletRepository
			registry   *chain_vo.Registry
			adapters   map[chain_vo.ChainID]chain_out.ChainAdapter
			derivation *nexuspay_crypto.Derivation
			ledger     ledger_in.Recorder
			paymaster  paymaster_in.PaymasterCommand
			projects   wallet_services.ProjectPaymasterLookup
		)
		if err := c.Resolve(&wallets); err != nil {
			return nil, err
		}
		if err := c.Resolve(&registry); err != nil {
			return nil, err
		}
		if err := c.Resolve(&adapters); err != nil {
			return nil, err
		}
		if err := c.Resolve(&derivation); err != nil {
			return nil, err
		}
		if err := c.Resolve(&ledger); err != nil {
			return nil, err
		}
		if err := c.Resolve(&paymaster); err != nil {
			return nil, err
		}
		if err := c.Resolve(&projects); err != nil {
			return nil, err
		}
		return wallet_services.NewWalletService(wallets, registry, adapters, derivation, ledger, paymaster, projects), nil
	})
	if err != nil {
		slog.Error("Failed to load *wallet_services.WalletService.")
		return err
	}

	err = c.Singleton(func() (wallet_in.WalletCommand, error) {
		var svc *wallet_services.WalletService
		if err := c.Resolve(&svc); err != nil {
			return nil, err
		}
		return svc, nil
	})
	if err != nil {
		slog.Error("Failed to load wallet_in.WalletCommand.")
		return err
	}

	return c.Singleton(func() (wallet_in.WalletQuery, error) {
		var svc *wallet_services.WalletService
		if err := c.Resolve(&svc); err != nil {
			return nil, err
		}
		return svc, nil
	})
}

// --- analytics -----------------------------------------------------------

func injectAnalytics(c container.Container) error {
	return c.Singleton(func() (analytics_in.AnalyticsQuery, error) {
		var (
			logs     ledger_out.TransactionLogRepository
			activity ledger_out.UserActivityRepository
		)
		if err := c.Resolve(&logs); err != nil {
			return nil, err
		}
		if err := c.Resolve(&activity); err != nil {
			return nil, err
		}
		return analytics_services.NewAnalyticsService(logs, activity), nil
	})
}
