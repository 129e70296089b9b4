package ioc

import (
	"os"
	"time"

	nexuspay_common "github.com/nexuspay/nexuspay/pkg/domain/common"
)

// chainEnvSuffix maps a registry chain id to the env var suffix used below
// (NEXUSPAY_<SUFFIX>_RPC_URL, NEXUSPAY_<SUFFIX>_FACTORY_ADDR, etc).
var chainEnvSuffix = map[string]string{
	"ethereum": "ETHEREUM",
	"arbitrum": "ARBITRUM",
	"solana":   "SOLANA",
}

// NexusPayConfig builds the control-plane's own rich Config (JWT, at-rest
// encryption, wallet/paymaster derivation, per-chain RPC wiring) from env
// vars; WithNexusPayConfig registers it as the container's only Config
// singleton.
func NexusPayConfig() (nexuspay_common.Config, error) {
	chains := nexuspay_common.ChainsConfig{
		RPCURLs:            map[string]string{},
		FactoryAddresses:   map[string]string{},
		EntryPointAddrs:    map[string]string{},
		PaymasterFactories: map[string]string{},
		EVMChainIDs:        map[string]uint64{},
		SignerKeys:         map[string]string{},
	}

	for chainID, suffix := range chainEnvSuffix {
		if v := os.Getenv("NEXUSPAY_" + suffix + "_RPC_URL"); v != "" {
			chains.RPCURLs[chainID] = v
		}
		if v := os.Getenv("NEXUSPAY_" + suffix + "_FACTORY_ADDR"); v != "" {
			chains.FactoryAddresses[chainID] = v
		}
		if v := os.Getenv("NEXUSPAY_" + suffix + "_ENTRYPOINT_ADDR"); v != "" {
			chains.EntryPointAddrs[chainID] = v
		}
		if v := os.Getenv("NEXUSPAY_" + suffix + "_PAYMASTER_FACTORY_ADDR"); v != "" {
			chains.PaymasterFactories[chainID] = v
		}
		if v := os.Getenv("NEXUSPAY_" + suffix + "_SIGNER_KEY"); v != "" {
			chains.SignerKeys[chainID] = v
		}
	}
	chains.EVMChainIDs["ethereum"] = 1
	chains.EVMChainIDs["arbitrum"] = 42161

	config := nexuspay_common.Config{
		Environment: envOrDefault("NEXUSPAY_ENV", "development"),
		Port:        envOrDefault("NEXUSPAY_PORT", "8080"),
		MongoDB: nexuspay_common.MongoDBConfig{
			URI:    buildMongoURI(),
			DBName: envOrDefault("MONGODB_DATABASE", "nexuspay"),
		},
		JWTSecret:      os.Getenv("NEXUSPAY_JWT_SECRET"),
		JWTIssuer:      envOrDefault("NEXUSPAY_JWT_ISSUER", "nexuspay"),
		JWTAudience:    envOrDefault("NEXUSPAY_JWT_AUDIENCE", "nexuspay-api"),
		EncryptionKey:  os.Getenv("NEXUSPAY_ENCRYPTION_KEY"),
		MasterSecret:   os.Getenv("NEXUSPAY_MASTER_SECRET"),
		WebhookSecret:  os.Getenv("NEXUSPAY_WEBHOOK_SECRET"),
		PriceOracleKey: os.Getenv("NEXUSPAY_PRICE_ORACLE_KEY"),
		Chains:         chains,
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// sessionTTL is the Bearer session JWT lifetime (§4.1/§4.2).
const sessionTTL = 24 * time.Hour
