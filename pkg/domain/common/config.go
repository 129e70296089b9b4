package common

// Config holds every environment-derived setting the process needs, in the
// teacher's style of one flat struct assembled by ioc.NexusPayConfig.
type Config struct {
	Environment string // "production" | "staging" | "development" | "test"
	Port        string

	MongoDB MongoDBConfig

	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	EncryptionKey   string // 32-byte hex key for AES-GCM at-rest secrets
	MasterSecret    string // root secret for deterministic wallet/paymaster derivation
	WebhookSecret   string
	PriceOracleKey  string

	Chains ChainsConfig
}

type MongoDBConfig struct {
	URI    string
	DBName string
}

// ChainsConfig is keyed by CAIP-2-ish chain id ("ethereum", "arbitrum", "solana").
type ChainsConfig struct {
	RPCURLs            map[string]string
	FactoryAddresses   map[string]string
	EntryPointAddrs    map[string]string
	PaymasterFactories map[string]string
	// EVMChainIDs carries the numeric chain id EIP-155 signing needs, keyed
	// by the same chain ids as RPCURLs (absent for "solana").
	EVMChainIDs map[string]uint64
	// SignerKeys holds the hex-encoded EOA private key each chain's
	// EthClient signs broadcast transactions with, keyed by chain id.
	SignerKeys map[string]string
}
