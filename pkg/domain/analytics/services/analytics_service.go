package analytics_services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	analytics_entities "github.com/nexuspay/nexuspay/pkg/domain/analytics/entities"
	in "github.com/nexuspay/nexuspay/pkg/domain/analytics/ports/in"
	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	ledger_entities "github.com/nexuspay/nexuspay/pkg/domain/ledger/entities"
	ledger_out "github.com/nexuspay/nexuspay/pkg/domain/ledger/ports/out"
	"github.com/google/uuid"
)

const DefaultOverviewDays = 30

type AnalyticsService struct {
	logs     ledger_out.TransactionLogRepository
	activity ledger_out.UserActivityRepository
}

func NewAnalyticsService(logs ledger_out.TransactionLogRepository, activity ledger_out.UserActivityRepository) *AnalyticsService {
	return &AnalyticsService{logs: logs, activity: activity}
}

var _ in.AnalyticsQuery = (*AnalyticsService)(nil)

func (s *AnalyticsService) confirmedWindow(ctx context.Context, projectID uuid.UUID, days int) ([]*ledger_entities.TransactionLog, error) {
	if days <= 0 {
		days = DefaultOverviewDays
	}
	until := time.Now()
	since := until.AddDate(0, 0, -days)
	rows, err := s.logs.ListByProjectAndWindow(ctx, projectID, since, until)
	if err != nil {
		return nil, err
	}
	confirmed := make([]*ledger_entities.TransactionLog, 0, len(rows))
	for _, r := range rows {
		if r.Status == ledger_entities.TxStatusConfirmed {
			confirmed = append(confirmed, r)
		}
	}
	return confirmed, nil
}

// Overview implements §4.7: total transactions, distinct wallets/users,
// total USD gas, and paymaster-coverage % = paymasterTx / totalTx * 100.
func (s *AnalyticsService) Overview(ctx context.Context, projectID uuid.UUID, days int) (*analytics_entities.Overview, error) {
	if days <= 0 {
		days = DefaultOverviewDays
	}
	rows, err := s.confirmedWindow(ctx, projectID, days)
	if err != nil {
		return nil, err
	}

	wallets := make(map[string]bool)
	users := make(map[string]bool)
	var totalUsdGas float64
	var paymasterTx int

	for _, r := range rows {
		wallets[r.WalletAddress] = true
		users[r.UserIdentifier] = true
		totalUsdGas += r.GasCostUsd
		if r.PaymasterPaid {
			paymasterTx++
		}
	}

	coverage := 0.0
	if len(rows) > 0 {
		coverage = float64(paymasterTx) / float64(len(rows)) * 100
	}

	return &analytics_entities.Overview{
		Days:                 days,
		TotalTransactions:    len(rows),
		DistinctWallets:      len(wallets),
		DistinctUsers:        len(users),
		TotalUsdGas:          totalUsdGas,
		PaymasterCoveragePct: coverage,
	}, nil
}

// DailyMetrics groups confirmed transactions by (date, chain) (§4.7).
func (s *AnalyticsService) DailyMetrics(ctx context.Context, projectID uuid.UUID, days int) ([]analytics_entities.DailyMetric, error) {
	rows, err := s.confirmedWindow(ctx, projectID, days)
	if err != nil {
		return nil, err
	}

	type bucketKey struct {
		date  time.Time
		chain chain_vo.ChainID
	}
	buckets := make(map[bucketKey]*analytics_entities.DailyMetric)
	userSeen := make(map[bucketKey]map[string]bool)

	for _, r := range rows {
		day := r.ConfirmedAt.UTC().Truncate(24 * time.Hour)
		key := bucketKey{date: day, chain: r.Chain}
		m, ok := buckets[key]
		if !ok {
			m = &analytics_entities.DailyMetric{Date: day, Chain: r.Chain}
			buckets[key] = m
			userSeen[key] = make(map[string]bool)
		}
		m.Count++
		m.UsdGas += r.GasCostUsd
		if r.PaymasterPaid {
			m.PaymasterTx++
		}
		if !userSeen[key][r.UserIdentifier] {
			userSeen[key][r.UserIdentifier] = true
			m.UniqueUsers++
		}
	}

	out := make([]analytics_entities.DailyMetric, 0, len(buckets))
	for _, m := range buckets {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Chain < out[j].Chain
	})
	return out, nil
}

const TopUsersCap = 100

// TopUsers orders activity by transactionsSent or totalGasSpentUsd, capped
// at 100 (§4.7).
func (s *AnalyticsService) TopUsers(ctx context.Context, projectID uuid.UUID, orderBy analytics_entities.TopUserOrderBy, limit int) ([]analytics_entities.TopUser, error) {
	if limit <= 0 || limit > TopUsersCap {
		limit = TopUsersCap
	}
	orderField := string(orderBy)
	if orderField == "" {
		orderField = string(analytics_entities.OrderByTransactionsSent)
	}

	rows, err := s.activity.TopUsers(ctx, projectID, orderField, limit)
	if err != nil {
		return nil, err
	}

	out := make([]analytics_entities.TopUser, 0, len(rows))
	for _, a := range rows {
		out = append(out, analytics_entities.TopUser{
			UserIdentifier:   a.UserIdentifier,
			TransactionsSent: a.TransactionsSent,
			TotalGasSpentUsd: a.TotalGasSpentUsd,
			EngagementScore:  a.EngagementScoreAt(time.Now()),
		})
	}
	return out, nil
}

// Cohorts buckets users by firstActive into 7/30/90-day windows (§4.7).
func (s *AnalyticsService) Cohorts(ctx context.Context, projectID uuid.UUID) ([]analytics_entities.Cohort, error) {
	all, err := s.activity.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	windows := []analytics_entities.CohortWindow{
		analytics_entities.Cohort7Day,
		analytics_entities.Cohort30Day,
		analytics_entities.Cohort90Day,
	}

	out := make([]analytics_entities.Cohort, 0, len(windows))
	for _, w := range windows {
		cutoff := now.AddDate(0, 0, -int(w))
		var users []*ledger_entities.UserActivity
		for _, a := range all {
			if !a.FirstActive.Before(cutoff) {
				users = append(users, a)
			}
		}
		if len(users) == 0 {
			out = append(out, analytics_entities.Cohort{Window: w})
			continue
		}

		var totalTx int
		var totalGas float64
		var stillActive int
		activeCutoff := now.AddDate(0, 0, -7)
		for _, a := range users {
			totalTx += a.TransactionsSent
			totalGas += a.TotalGasSpentUsd
			if !a.LastActive.Before(activeCutoff) {
				stillActive++
			}
		}

		out = append(out, analytics_entities.Cohort{
			Window:        w,
			TotalUsers:    len(users),
			AvgTx:         float64(totalTx) / float64(len(users)),
			AvgGasUsd:     totalGas / float64(len(users)),
			RetentionRate: float64(stillActive) / float64(len(users)) * 100,
		})
	}
	return out, nil
}

// ExportCSV returns confirmed TransactionLog rows for [from,to) as CSV
// (§4.7); from/to are "2006-01-02" date strings.
func (s *AnalyticsService) ExportCSV(ctx context.Context, projectID uuid.UUID, from, to string) ([]byte, error) {
	since, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, common.NewErrInvalidInput("invalid 'from' date, expected YYYY-MM-DD", "from")
	}
	until, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, common.NewErrInvalidInput("invalid 'to' date, expected YYYY-MM-DD", "to")
	}

	rows, err := s.logs.ListByProjectAndWindow(ctx, projectID, since, until)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"date", "chain", "transactionType", "walletAddress", "userIdentifier", "txHash", "status", "gasCostUsd", "paymasterPaid"})
	for _, r := range rows {
		if r.Status != ledger_entities.TxStatusConfirmed {
			continue
		}
		_ = w.Write([]string{
			r.ConfirmedAt.UTC().Format(time.RFC3339),
			string(r.Chain),
			string(r.TransactionType),
			r.WalletAddress,
			r.UserIdentifier,
			r.TxHash,
			string(r.Status),
			fmt.Sprintf("%.6f", r.GasCostUsd),
			fmt.Sprintf("%t", r.PaymasterPaid),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, common.NewErrUpstream("failed to write CSV export: " + err.Error())
	}
	return buf.Bytes(), nil
}
