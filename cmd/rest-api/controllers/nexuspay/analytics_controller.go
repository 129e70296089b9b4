package nexuspay_controllers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/golobby/container/v3"

	analytics_entities "github.com/nexuspay/nexuspay/pkg/domain/analytics/entities"
	analytics_in "github.com/nexuspay/nexuspay/pkg/domain/analytics/ports/in"
)

// AnalyticsController adapts analytics_in.AnalyticsQuery to HTTP (§4.7).
// Every route requires the analytics:read permission on the project's API
// key; ExportCSV streams its own content type instead of the JSON envelope.
type AnalyticsController struct {
	analytics analytics_in.AnalyticsQuery
}

func NewAnalyticsController(c container.Container) *AnalyticsController {
	var analytics analytics_in.AnalyticsQuery
	if err := c.Resolve(&analytics); err != nil {
		slog.Error("Failed to resolve AnalyticsQuery", "error", err)
		panic(err)
	}
	return &AnalyticsController{analytics: analytics}
}

func daysParam(q url.Values, fallback int) int {
	if v := q.Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func (ctlr *AnalyticsController) Overview(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		overview, err := ctlr.analytics.Overview(r.Context(), projectID, daysParam(r.URL.Query(), 30))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, overview)
	}
}

func (ctlr *AnalyticsController) DailyMetrics(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		metrics, err := ctlr.analytics.DailyMetrics(r.Context(), projectID, daysParam(r.URL.Query(), 30))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, metrics)
	}
}

func (ctlr *AnalyticsController) TopUsers(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		q := r.URL.Query()
		orderBy := analytics_entities.OrderByTransactionsSent
		if v := q.Get("orderBy"); v == string(analytics_entities.OrderByTotalGasSpentUsd) {
			orderBy = analytics_entities.OrderByTotalGasSpentUsd
		}
		_, limit := queryPageLimit(r)

		users, err := ctlr.analytics.TopUsers(r.Context(), projectID, orderBy, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, users)
	}
}

func (ctlr *AnalyticsController) Cohorts(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		cohorts, err := ctlr.analytics.Cohorts(r.Context(), projectID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, cohorts)
	}
}

func (ctlr *AnalyticsController) ExportCSV(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		q := r.URL.Query()
		csv, err := ctlr.analytics.ExportCSV(r.Context(), projectID, q.Get("from"), q.Get("to"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "transactions.csv"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(csv)
	}
}
