package nexuspay_controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/golobby/container/v3"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	paymaster_in "github.com/nexuspay/nexuspay/pkg/domain/paymaster/ports/in"
)

// PaymasterController adapts paymaster_in.PaymasterCommand to HTTP (§4.6).
// Read-only balance checks require only paymaster:read; Fund requires
// paymaster:fund — PreRecord/Confirm/Fail/Provision/Freeze are internal,
// called from the wallet/chain flow rather than exposed as routes.
type PaymasterController struct {
	paymaster paymaster_in.PaymasterCommand
}

func NewPaymasterController(c container.Container) *PaymasterController {
	var paymaster paymaster_in.PaymasterCommand
	if err := c.Resolve(&paymaster); err != nil {
		slog.Error("Failed to resolve PaymasterCommand", "error", err)
		panic(err)
	}
	return &PaymasterController{paymaster: paymaster}
}

func (ctlr *PaymasterController) GetBalance(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		chain := chain_vo.ChainID(muxVar(r, "chain"))
		refresh := r.URL.Query().Get("refresh") == "true"

		balance, err := ctlr.paymaster.GetBalance(r.Context(), projectID, chain, refresh)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, balance)
	}
}

func (ctlr *PaymasterController) Fund(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		chain := chain_vo.ChainID(muxVar(r, "chain"))
		var body struct {
			Method    paymaster_in.FundingMethod `json:"method"`
			AmountUsd float64                    `json:"amountUsd"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		result, err := ctlr.paymaster.Fund(r.Context(), projectID, chain, body.Method, body.AmountUsd)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, result)
	}
}

func (ctlr *PaymasterController) ListAddresses(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		paymasters, err := ctlr.paymaster.ListAddresses(r.Context(), projectID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, paymasters)
	}
}

func (ctlr *PaymasterController) ListTransactions(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		chain := chain_vo.ChainID(muxVar(r, "chain"))
		page, limit := queryPageLimit(r)
		payments, total, err := ctlr.paymaster.ListPayments(r.Context(), projectID, chain, page, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writePaginated(w, r, payments, page, limit, total)
	}
}

func (ctlr *PaymasterController) TotalSpent(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		chain := chain_vo.ChainID(muxVar(r, "chain"))
		total, err := ctlr.paymaster.TotalSpentUsd(r.Context(), projectID, chain)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, map[string]string{"totalSpentUsd": strconv.FormatFloat(total, 'f', 2, 64)})
	}
}
