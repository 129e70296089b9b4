// Package nexuspay_controllers holds the HTTP-layer adapters for the control
// plane's own bounded contexts (identity, project, apikey, wallet,
// paymaster, analytics) — siblings of cmd_controllers/query_controllers but
// built directly on pkg/domain/common's response envelope rather than
// controllers.ControllerHelper, since that helper speaks the teacher's older
// pkg/domain error types.
package nexuspay_controllers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	nexuspay_common "github.com/nexuspay/nexuspay/pkg/domain/common"
)

// errUnauthenticated is returned when a handler needs an actor the auth
// middleware didn't set — a wiring bug, not a client error, but MapError
// still resolves it to 401 rather than 500.
var errUnauthenticated error = nexuspay_common.NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(nexuspay_common.RequestIDKey).(string); ok && id != "" {
		return id
	}
	return r.Header.Get("X-Request-Id")
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := nexuspay_common.MapError(err)
	slog.ErrorContext(r.Context(), "nexuspay handler error", "error", err, "code", apiErr.Code)
	nexuspay_common.WriteErrorEnvelope(w, requestID(r), apiErr)
}

func writeOK(w http.ResponseWriter, r *http.Request, data interface{}) {
	nexuspay_common.WriteSuccess(w, requestID(r), http.StatusOK, data)
}

func writeCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	nexuspay_common.WriteSuccess(w, requestID(r), http.StatusCreated, data)
}

func nexuspayNoContent(w http.ResponseWriter, r *http.Request) {
	nexuspay_common.WriteJSON(w, http.StatusNoContent, nil)
}

func writePaginated(w http.ResponseWriter, r *http.Request, data interface{}, page, limit, total int) {
	nexuspay_common.WriteSuccessPaginated(w, requestID(r), data, nexuspay_common.NewPagination(page, limit, total))
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

func muxVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func queryPageLimit(r *http.Request) (page, limit int) {
	page, limit = 1, 20
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			if n > 100 {
				n = 100
			}
			limit = n
		}
	}
	return page, limit
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("not a positive integer: %q", s)
	}
	return n, nil
}
