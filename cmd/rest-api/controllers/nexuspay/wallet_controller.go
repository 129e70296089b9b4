package nexuspay_controllers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/golobby/container/v3"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	wallet_in "github.com/nexuspay/nexuspay/pkg/domain/wallet/ports/in"
)

// WalletController adapts wallet_in.WalletCommand/WalletQuery to HTTP (§4.5).
// Every route sits behind the project's API key and the permission the
// operation needs (wallets:create, wallets:deploy, wallets:read).
type WalletController struct {
	command wallet_in.WalletCommand
	query   wallet_in.WalletQuery
}

func NewWalletController(c container.Container) *WalletController {
	var command wallet_in.WalletCommand
	var query wallet_in.WalletQuery
	if err := c.Resolve(&command); err != nil {
		slog.Error("Failed to resolve WalletCommand", "error", err)
		panic(err)
	}
	if err := c.Resolve(&query); err != nil {
		slog.Error("Failed to resolve WalletQuery", "error", err)
		panic(err)
	}
	return &WalletController{command: command, query: query}
}

func (ctlr *WalletController) Create(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var body struct {
			SocialID   string `json:"socialId"`
			SocialType string `json:"socialType"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		wallet, err := ctlr.command.CreateWallet(r.Context(), wallet_in.CreateWalletInput{
			ProjectID:  projectID,
			SocialID:   body.SocialID,
			SocialType: body.SocialType,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeCreated(w, r, wallet)
	}
}

func (ctlr *WalletController) Deploy(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		walletID, err := pathUUID(r, "wallet_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var body struct {
			Chain chain_vo.ChainID `json:"chain"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		result, err := ctlr.command.DeployWallet(r.Context(), wallet_in.DeployWalletInput{
			ProjectID: projectID,
			WalletID:  walletID,
			Chain:     body.Chain,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, result)
	}
}

func (ctlr *WalletController) Get(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		walletID, err := pathUUID(r, "wallet_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		wallet, err := ctlr.query.GetWallet(r.Context(), projectID, walletID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, wallet)
	}
}

func (ctlr *WalletController) GetBySocialID(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		q := r.URL.Query()
		wallet, err := ctlr.query.GetBySocialID(r.Context(), projectID, q.Get("socialId"), q.Get("socialType"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, wallet)
	}
}

func (ctlr *WalletController) List(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		page, limit := queryPageLimit(r)
		wallets, total, err := ctlr.query.ListByProject(r.Context(), projectID, page, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writePaginated(w, r, wallets, page, limit, total)
	}
}
