package nexuspay_controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golobby/container/v3"
	"github.com/xeipuuv/gojsonschema"

	"github.com/nexuspay/nexuspay/cmd/rest-api/middlewares"
	apikey_in "github.com/nexuspay/nexuspay/pkg/domain/apikey/ports/in"
	apikey_vo "github.com/nexuspay/nexuspay/pkg/domain/apikey/value-objects"
	"github.com/nexuspay/nexuspay/pkg/domain/apikey/entities"
	nexuspay_common "github.com/nexuspay/nexuspay/pkg/domain/common"
)

// createKeySchema constrains the permissions/ipAllowlist shape accepted by
// POST .../api-keys before it reaches the service layer — permissions must
// be drawn from the fixed grant vocabulary and allowlist entries must carry
// a non-empty CIDR/IP string.
var createKeySchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"type": {"type": "string", "enum": ["dev", "production", "restricted"]},
		"permissions": {
			"type": "array",
			"items": {
				"type": "string",
				"enum": ["wallets:create", "wallets:deploy", "wallets:read", "paymaster:fund", "paymaster:read", "analytics:read", "admin:*"]
			}
		},
		"ipAllowlist": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"ipOrCidr": {"type": "string", "minLength": 1}
				},
				"required": ["ipOrCidr"]
			}
		}
	},
	"required": ["name", "type"]
}`)

func validateCreateKeyBody(body []byte) error {
	result, err := gojsonschema.Validate(createKeySchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nexuspay_common.NewErrInvalidInput("malformed request body", "body")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nexuspay_common.NewErrInvalidInput(strings.Join(msgs, "; "), "body")
	}
	return nil
}

// APIKeyController adapts apikey_in.APIKeyCommand to HTTP (§4.4). Every
// route is scoped by the {project_id} path segment and sits behind the
// dashboard session, not an API key — keys manage themselves, they don't
// authenticate their own management.
type APIKeyController struct {
	keys apikey_in.APIKeyCommand
}

func NewAPIKeyController(c container.Container) *APIKeyController {
	var keys apikey_in.APIKeyCommand
	if err := c.Resolve(&keys); err != nil {
		slog.Error("Failed to resolve APIKeyCommand", "error", err)
		panic(err)
	}
	return &APIKeyController{keys: keys}
}

func (ctlr *APIKeyController) Create(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, r, nexuspay_common.NewErrInvalidInput("failed to read request body", "body"))
			return
		}
		r.Body.Close()
		if err := validateCreateKeyBody(raw); err != nil {
			writeError(w, r, err)
			return
		}

		var body struct {
			Name        string                        `json:"name"`
			Type        entities.KeyType              `json:"type"`
			Permissions []apikey_vo.Permission         `json:"permissions"`
			IPAllowlist []apikey_vo.IPAllowlistEntry   `json:"ipAllowlist"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			writeError(w, r, nexuspay_common.NewErrInvalidInput("malformed request body", "body"))
			return
		}
		createdBy, _ := middlewares.SessionUserID(r.Context())

		result, err := ctlr.keys.CreateKey(r.Context(), apikey_in.CreateKeyInput{
			ProjectID:   projectID,
			CreatedBy:   createdBy,
			Name:        body.Name,
			Type:        body.Type,
			Permissions: body.Permissions,
			IPAllowlist: body.IPAllowlist,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeCreated(w, r, result)
	}
}

func (ctlr *APIKeyController) List(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		page, limit := queryPageLimit(r)
		keys, total, err := ctlr.keys.ListKeys(r.Context(), projectID, page, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writePaginated(w, r, keys, page, limit, total)
	}
}

func (ctlr *APIKeyController) Usage(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		keyID, err := pathUUID(r, "key_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		page, limit := queryPageLimit(r)
		rows, total, err := ctlr.keys.ListUsage(r.Context(), projectID, keyID, page, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writePaginated(w, r, rows, page, limit, total)
	}
}

func (ctlr *APIKeyController) Rotate(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		keyID, err := pathUUID(r, "key_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		result, err := ctlr.keys.RotateKey(r.Context(), projectID, keyID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, result)
	}
}

func (ctlr *APIKeyController) Revoke(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		keyID, err := pathUUID(r, "key_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := ctlr.keys.RevokeKey(r.Context(), projectID, keyID); err != nil {
			writeError(w, r, err)
			return
		}
		nexuspayNoContent(w, r)
	}
}

func (ctlr *APIKeyController) UpdateIPAllowlist(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "project_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		keyID, err := pathUUID(r, "key_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var body struct {
			IPAllowlist []apikey_vo.IPAllowlistEntry `json:"ipAllowlist"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		if err := ctlr.keys.UpdateIPAllowlist(r.Context(), projectID, keyID, body.IPAllowlist); err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, map[string]bool{"updated": true})
	}
}
