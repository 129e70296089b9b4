package nexuspay_controllers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/golobby/container/v3"

	"github.com/nexuspay/nexuspay/cmd/rest-api/middlewares"
	identity_in "github.com/nexuspay/nexuspay/pkg/domain/identity/ports/in"
)

// IdentityController adapts identity_in.IdentityCommand to HTTP (§4.2).
type IdentityController struct {
	identity identity_in.IdentityCommand
}

func NewIdentityController(c container.Container) *IdentityController {
	var identity identity_in.IdentityCommand
	if err := c.Resolve(&identity); err != nil {
		slog.Error("Failed to resolve IdentityCommand", "error", err)
		panic(err)
	}
	return &IdentityController{identity: identity}
}

func (ctlr *IdentityController) Register(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input identity_in.RegisterInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, r, err)
			return
		}
		user, err := ctlr.identity.Register(r.Context(), input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeCreated(w, r, user)
	}
}

func (ctlr *IdentityController) VerifyEmail(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if err := ctlr.identity.VerifyEmail(r.Context(), token); err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, map[string]bool{"verified": true})
	}
}

func (ctlr *IdentityController) Login(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input identity_in.LoginInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, r, err)
			return
		}
		result, err := ctlr.identity.Login(r.Context(), input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, result)
	}
}

func (ctlr *IdentityController) OAuthSignIn(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input identity_in.OAuthSignInInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, r, err)
			return
		}
		result, err := ctlr.identity.OAuthSignIn(r.Context(), input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, result)
	}
}

func (ctlr *IdentityController) RequestPasswordReset(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		if err := ctlr.identity.RequestPasswordReset(r.Context(), body.Email); err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, map[string]bool{"sent": true})
	}
}

func (ctlr *IdentityController) ResetPassword(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Token       string `json:"token"`
			NewPassword string `json:"newPassword"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		if err := ctlr.identity.ResetPassword(r.Context(), body.Token, body.NewPassword); err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, map[string]bool{"reset": true})
	}
}

func (ctlr *IdentityController) GetProfile(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		user, err := ctlr.identity.GetProfile(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, user)
	}
}

func (ctlr *IdentityController) UpdateProfile(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		var body struct {
			Name    string `json:"name"`
			Company string `json:"company"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		user, err := ctlr.identity.UpdateProfile(r.Context(), userID, body.Name, body.Company)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, user)
	}
}
