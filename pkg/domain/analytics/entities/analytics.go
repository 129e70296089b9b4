// Package analytics_entities holds the read-model shapes returned by the
// analytics queries (§4.7); these are views over ledger_entities, not
// independently persisted aggregates (with the exception of the cached
// per-route TTL entries handled at the HTTP layer, §4.1).
package analytics_entities

import (
	"time"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
)

// Overview is the last-N-days summary (§4.7).
type Overview struct {
	Days                  int
	TotalTransactions     int
	DistinctWallets       int
	DistinctUsers         int
	TotalUsdGas           float64
	PaymasterCoveragePct  float64
}

// DailyMetric is one (date, chain) bucket.
type DailyMetric struct {
	Date           time.Time
	Chain          chain_vo.ChainID
	Count          int
	UniqueUsers    int
	UsdGas         float64
	PaymasterTx    int
}

type TopUserOrderBy string

const (
	OrderByTransactionsSent TopUserOrderBy = "transactionsSent"
	OrderByTotalGasSpentUsd TopUserOrderBy = "totalGasSpentUsd"
)

// TopUser is one row of the top-100 leaderboard (§4.7).
type TopUser struct {
	UserIdentifier   string
	TransactionsSent int
	TotalGasSpentUsd float64
	EngagementScore  int
}

type CohortWindow int

const (
	Cohort7Day  CohortWindow = 7
	Cohort30Day CohortWindow = 30
	Cohort90Day CohortWindow = 90
)

// Cohort buckets users by firstActive within the window (§4.7).
type Cohort struct {
	Window        CohortWindow
	TotalUsers    int
	AvgTx         float64
	AvgGasUsd     float64
	RetentionRate float64 // stillActiveLast7d / totalUsers * 100
}
