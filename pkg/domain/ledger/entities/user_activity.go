package ledger_entities

import (
	"time"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	"github.com/google/uuid"
)

const MaxEngagementScore = 1000

// UserActivity holds rolling per-(project,user) counters, updated on every
// confirmed transaction (§3, §4.7). Unlike TransactionLog it is mutable —
// it is a materialized summary, not a ledger.
type UserActivity struct {
	ProjectID             uuid.UUID                 `bson:"project_id"`
	UserIdentifier        string                    `bson:"user_identifier"`
	WalletsCreated        int                       `bson:"wallets_created"`
	TransactionsSent      int                       `bson:"transactions_sent"`
	TotalGasSpentUsd      float64                   `bson:"total_gas_spent_usd"`
	PaymasterTransactions int                       `bson:"paymaster_transactions"`
	UserPaidTransactions  int                       `bson:"user_paid_transactions"`
	ChainsUsed            map[chain_vo.ChainID]bool `bson:"chains_used"`
	TxTypesUsed           map[TransactionType]bool  `bson:"tx_types_used"`
	PreferredChain        chain_vo.ChainID          `bson:"preferred_chain,omitempty"`
	FirstActive           time.Time                 `bson:"first_active"`
	LastActive            time.Time                 `bson:"last_active"`
	StreakDays            int                       `bson:"streak_days"`
	EngagementScore       int                       `bson:"engagement_score"`
}

func NewUserActivity(projectID uuid.UUID, userIdentifier string) *UserActivity {
	now := time.Now()
	return &UserActivity{
		ProjectID:      projectID,
		UserIdentifier: userIdentifier,
		ChainsUsed:     make(map[chain_vo.ChainID]bool),
		TxTypesUsed:    make(map[TransactionType]bool),
		FirstActive:    now,
		LastActive:     now,
	}
}

// RecordWalletCreated is called once per createWallet (§4.7 engagement
// formula weights wallet creation at 5 points).
func (a *UserActivity) RecordWalletCreated() {
	a.WalletsCreated++
	a.touch()
}

// RecordConfirmedTransaction folds one confirmed TransactionLog row into the
// rolling counters and recomputes the engagement score.
func (a *UserActivity) RecordConfirmedTransaction(chain chain_vo.ChainID, txType TransactionType, gasUsd float64, paymasterPaid bool, now time.Time) {
	a.TransactionsSent++
	a.TotalGasSpentUsd += gasUsd
	if paymasterPaid {
		a.PaymasterTransactions++
	} else {
		a.UserPaidTransactions++
	}

	if a.ChainsUsed == nil {
		a.ChainsUsed = make(map[chain_vo.ChainID]bool)
	}
	a.ChainsUsed[chain] = true
	if a.TxTypesUsed == nil {
		a.TxTypesUsed = make(map[TransactionType]bool)
	}
	a.TxTypesUsed[txType] = true

	a.recomputePreferredChain(chain)
	a.recomputeStreak(now)
	a.recomputeEngagementScore(now) // uses the pre-update LastActive for recencyBonus
	a.LastActive = now
}

func (a *UserActivity) recomputePreferredChain(latest chain_vo.ChainID) {
	// Simple recency-biased heuristic: the most recently used chain becomes
	// preferred unless it's the only one seen so far.
	a.PreferredChain = latest
}

func (a *UserActivity) recomputeStreak(now time.Time) {
	daysSinceLast := int(now.Sub(a.LastActive).Hours() / 24)
	if daysSinceLast <= 1 {
		a.StreakDays++
	} else {
		a.StreakDays = 1
	}
}

func (a *UserActivity) touch() {
	a.LastActive = time.Now()
}

// recomputeEngagementScore implements §4.7's formula:
// 2·tx + 5·walletsCreated + 10·|chainsUsed| + 3·|txTypes| + recencyBonus + min(2·streakDays,50), capped at 1000.
func (a *UserActivity) recomputeEngagementScore(now time.Time) {
	a.EngagementScore = a.EngagementScoreAt(now)
}

// EngagementScoreAt recomputes the §4.7 score as of an arbitrary instant
// (used by analytics reads, where "now" decays the recency bonus even
// without a new confirmed transaction).
func (a *UserActivity) EngagementScoreAt(now time.Time) int {
	score := 2*a.TransactionsSent + 5*a.WalletsCreated + 10*len(a.ChainsUsed) + 3*len(a.TxTypesUsed)
	score += recencyBonus(a.LastActive, now)
	streakBonus := 2 * a.StreakDays
	if streakBonus > 50 {
		streakBonus = 50
	}
	score += streakBonus
	if score > MaxEngagementScore {
		score = MaxEngagementScore
	}
	return score
}

// recencyBonus awards 20/10/5 points for idle <=1/<=7/<=30 days, else 0.
func recencyBonus(lastActive, now time.Time) int {
	idleDays := now.Sub(lastActive).Hours() / 24
	switch {
	case idleDays <= 1:
		return 20
	case idleDays <= 7:
		return 10
	case idleDays <= 30:
		return 5
	default:
		return 0
	}
}
